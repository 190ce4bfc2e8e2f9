package storage

import (
	"fmt"
)

// Overview is a high-level count of what the store holds.
type Overview struct {
	TotalRecords   int
	UniqueTeams    int
	EarliestMillis int64
	LatestMillis   int64
	MatchTypes     []MatchTypeCount
}

// MatchTypeCount is the number of records per match type.
type MatchTypeCount struct {
	MatchType string
	Records   int
}

// Overview summarises the store for the summary command.
func (db *DB) Overview() (Overview, error) {
	var ov Overview
	err := db.conn.QueryRow(`
		SELECT COUNT(1), COUNT(DISTINCT team_number),
		       COALESCE(MIN(timestamp), 0), COALESCE(MAX(timestamp), 0)
		FROM match_records`).Scan(&ov.TotalRecords, &ov.UniqueTeams, &ov.EarliestMillis, &ov.LatestMillis)
	if err != nil {
		return ov, fmt.Errorf("query overview: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT match_type, COUNT(1) FROM match_records
		GROUP BY match_type ORDER BY COUNT(1) DESC, match_type`)
	if err != nil {
		return ov, fmt.Errorf("query match types: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c MatchTypeCount
		if err := rows.Scan(&c.MatchType, &c.Records); err != nil {
			return ov, err
		}
		ov.MatchTypes = append(ov.MatchTypes, c)
	}
	return ov, rows.Err()
}

// QueryRaw runs an arbitrary query and returns column names and stringified rows.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(x)
			default:
				row[i] = fmt.Sprint(x)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}
