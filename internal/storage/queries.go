package storage

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/ga2230/reefscout/internal/model"
)

var (
	// ErrInvalidImport marks a bulk import rejected before touching the store.
	ErrInvalidImport = errors.New("invalid import")
	// ErrDuplicateID is returned when appending a record whose id is already stored.
	ErrDuplicateID = errors.New("duplicate record id")
)

// ReadAll returns every stored record in insertion order.
// Rows whose payload no longer decodes are skipped.
func (db *DB) ReadAll() ([]model.MatchRecord, error) {
	rows, err := db.conn.Query("SELECT payload FROM match_records ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []model.MatchRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		var r model.MatchRecord
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			continue
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Append validates r and adds it to the end of the store.
func (db *DB) Append(r model.MatchRecord) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("validate record: %w", err)
	}
	if err := insertRecords(db.conn, []model.MatchRecord{r}); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("append record %s: %w", r.ID, ErrDuplicateID)
		}
		return fmt.Errorf("append record: %w", err)
	}
	return nil
}

// RecordExists returns true if a record with the given id is already stored.
func (db *DB) RecordExists(id string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM match_records WHERE id = ?", id).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// OverwriteAll replaces the whole store with records in a single transaction.
func (db *DB) OverwriteAll(records []model.MatchRecord) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM match_records"); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	if err := insertRecords(tx, records); err != nil {
		return err
	}
	return tx.Commit()
}

// Clear removes every stored record.
func (db *DB) Clear() error {
	if _, err := db.conn.Exec("DELETE FROM match_records"); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	return nil
}

// Import parses data as a JSON array of records, validates all of them and
// replaces the store. On any failure the store is left unchanged and the
// error wraps ErrInvalidImport.
func (db *DB) Import(data []byte) error {
	records, err := DecodeRecords(data)
	if err != nil {
		return err
	}
	if err := model.ValidateRecords(records); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	return db.OverwriteAll(records)
}

// DecodeRecords decodes a JSON array of records. Fields this version does not
// know about (older form exports) are ignored; wrong types are errors.
func DecodeRecords(data []byte) ([]model.MatchRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidImport)
	}
	if trimmed[0] != '[' {
		if looksLikeCSV(trimmed) {
			return nil, fmt.Errorf("%w: CSV is not supported, export as JSON", ErrInvalidImport)
		}
		return nil, fmt.Errorf("%w: expected a JSON array of records", ErrInvalidImport)
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	var records []model.MatchRecord
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after array", ErrInvalidImport)
	}
	return records, nil
}

// looksLikeCSV reports whether the first line is a comma-separated header.
func looksLikeCSV(data []byte) bool {
	first, _, _ := strings.Cut(string(data), "\n")
	return strings.Count(first, ",") > 0 && !strings.ContainsAny(first, "{[")
}

// isUniqueViolation reports a UNIQUE constraint failure from SQLite. Inserted
// records are validated first, so a plain constraint code can only be the id.
func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	switch serr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT:
		return true
	}
	return false
}

type execer interface {
	Prepare(query string) (*sql.Stmt, error)
}

// insertRecords bulk-inserts with a prepared statement on conn or tx.
func insertRecords(e execer, records []model.MatchRecord) error {
	stmt, err := e.Prepare(`
		INSERT INTO match_records(id, team_number, match_type, match_number, timestamp, payload)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encode record %s: %w", r.ID, err)
		}
		_, err = stmt.Exec(r.ID, r.TeamNumber, string(r.MatchType), r.MatchNumber, r.Timestamp, string(payload))
		if err != nil {
			return fmt.Errorf("insert record %s: %w", r.ID, err)
		}
	}
	return nil
}
