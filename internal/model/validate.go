package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks a single record's field constraints.
func (r MatchRecord) Validate() error {
	if err := validate.Struct(r); err != nil {
		return describe(err)
	}
	return nil
}

// ValidateRecords checks every record and rejects duplicate ids.
// The returned error names the first offending record index.
func ValidateRecords(records []MatchRecord) error {
	seen := make(map[string]int, len(records))
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if j, dup := seen[r.ID]; dup {
			return fmt.Errorf("record %d: duplicate id %q (first seen at record %d)", i, r.ID, j)
		}
		seen[r.ID] = i
	}
	return nil
}

// describe flattens validator errors into one readable message.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "MatchRecord.")
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return errors.New(strings.Join(parts, "; "))
}
