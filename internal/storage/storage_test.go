package storage

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ga2230/reefscout/internal/model"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func record(id, team string, ts int64) model.MatchRecord {
	return model.MatchRecord{
		ID:          id,
		Timestamp:   ts,
		MatchType:   model.MatchQualification,
		MatchNumber: "1",
		TeamNumber:  team,
		Alliance:    model.AllianceBlue,
		Auto:        model.AutoPhase{Counts: model.Counts{L4: 1}, PassedLine: true},
		Teleop:      model.TeleopPhase{Counts: model.Counts{L2: 2, CoralMissed: 1}},
		Endgame:     model.Endgame{DrivingLevel: 3, Cage: model.CageShallow, Comments: "ok"},
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func TestEmptyStore(t *testing.T) {
	db := openMemDB(t)
	recs, err := db.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("expected empty store, got %d records", len(recs))
	}
}

func TestAppendPreservesOrderAndFields(t *testing.T) {
	db := openMemDB(t)

	// Insertion order wins over timestamp order.
	for _, r := range []model.MatchRecord{record("b", "2230", 200), record("a", "1574", 100)} {
		if err := db.Append(r); err != nil {
			t.Fatalf("Append %s: %v", r.ID, err)
		}
	}
	recs, err := db.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(recs) != 2 || recs[0].ID != "b" || recs[1].ID != "a" {
		t.Fatalf("unexpected records: %+v", recs)
	}
	got := recs[0]
	if got.Auto.L4 != 1 || !got.Auto.PassedLine || got.Teleop.CoralMissed != 1 {
		t.Errorf("phase counters lost: %+v %+v", got.Auto, got.Teleop)
	}
	if got.Endgame.Cage != model.CageShallow || got.Endgame.Comments != "ok" {
		t.Errorf("endgame lost: %+v", got.Endgame)
	}
}

func TestAppendRejectsInvalid(t *testing.T) {
	db := openMemDB(t)
	bad := record("x", "2230", 1)
	bad.Teleop.L1 = -3
	if err := db.Append(bad); err == nil {
		t.Fatal("expected validation error")
	}
	recs, _ := db.ReadAll()
	if len(recs) != 0 {
		t.Errorf("invalid record was stored")
	}
}

func TestAppendDuplicateID(t *testing.T) {
	db := openMemDB(t)
	if err := db.Append(record("dup", "2230", 1)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := db.Append(record("dup", "1574", 2)); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("want ErrDuplicateID, got %v", err)
	}
	exists, err := db.RecordExists("dup")
	if err != nil || !exists {
		t.Errorf("RecordExists(dup) = %v, %v", exists, err)
	}
}

func TestOverwriteAllAndClear(t *testing.T) {
	db := openMemDB(t)
	db.Append(record("old", "2230", 1))

	if err := db.OverwriteAll([]model.MatchRecord{record("n1", "1690", 1), record("n2", "1690", 2)}); err != nil {
		t.Fatalf("OverwriteAll: %v", err)
	}
	recs, _ := db.ReadAll()
	if len(recs) != 2 || recs[0].ID != "n1" {
		t.Errorf("overwrite: got %+v", recs)
	}

	if err := db.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	recs, _ = db.ReadAll()
	if len(recs) != 0 {
		t.Errorf("expected empty store after Clear, got %d", len(recs))
	}
}

func TestImportReplacesStore(t *testing.T) {
	db := openMemDB(t)
	db.Append(record("old", "2230", 1))

	data := mustJSON(t, []model.MatchRecord{record("i1", "3339", 1), record("i2", "5987", 2)})
	if err := db.Import(data); err != nil {
		t.Fatalf("Import: %v", err)
	}
	recs, _ := db.ReadAll()
	if len(recs) != 2 || recs[0].ID != "i1" || recs[1].ID != "i2" {
		t.Errorf("import: got %+v", recs)
	}
}

func TestImportAcceptsLegacyFields(t *testing.T) {
	db := openMemDB(t)
	raw := `[{"id":"old1","timestamp":1,"matchType":"q","matchNumber":"3","teamNumber":"2230",
		"alliance":"Red","startPosition":null,
		"auto":{"l4":0,"l3":0,"l2":0,"l1":1,"processor":0,"net":0,"passedLine":true},
		"teleop":{"l4":1,"l3":0,"l2":0,"l1":0,"processor":0,"net":0},
		"endgame":{"defenceRobot":false,"defenceLevel":0,"drivingLevel":2,"scouterLevel":3,"disabled":false,"comments":""}}]`
	if err := db.Import([]byte(raw)); err != nil {
		t.Fatalf("Import legacy export: %v", err)
	}
	recs, _ := db.ReadAll()
	if len(recs) != 1 || recs[0].Auto.L1 != 1 {
		t.Errorf("legacy import: got %+v", recs)
	}
}

func TestImportIsAllOrNothing(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{{{"},
		{"object not array", `{"id":"a"}`},
		{"csv", "id,teamNumber,matchNumber\na,2230,1\n"},
		{"empty", "   "},
		{"wrong type", `[{"id":"a","teamNumber":2230}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openMemDB(t)
			db.Append(record("keep", "2230", 1))

			err := db.Import([]byte(tt.data))
			if !errors.Is(err, ErrInvalidImport) {
				t.Fatalf("want ErrInvalidImport, got %v", err)
			}
			recs, _ := db.ReadAll()
			if len(recs) != 1 || recs[0].ID != "keep" {
				t.Errorf("store changed after failed import: %+v", recs)
			}
		})
	}
}

func TestImportRejectsInvalidRecord(t *testing.T) {
	db := openMemDB(t)
	db.Append(record("keep", "2230", 1))

	bad := record("b", "1574", 2)
	bad.Endgame.DefenceLevel = 9
	data := mustJSON(t, []model.MatchRecord{record("a", "1574", 1), bad})

	err := db.Import(data)
	if !errors.Is(err, ErrInvalidImport) {
		t.Fatalf("want ErrInvalidImport, got %v", err)
	}
	if !strings.Contains(err.Error(), "record 1") || !strings.Contains(err.Error(), "DefenceLevel") {
		t.Errorf("error should name record 1 and the field: %v", err)
	}
	recs, _ := db.ReadAll()
	if len(recs) != 1 || recs[0].ID != "keep" {
		t.Errorf("store changed after failed import: %+v", recs)
	}
}

func TestImportCSVMessage(t *testing.T) {
	db := openMemDB(t)
	err := db.Import([]byte("team,match\n2230,1\n"))
	if err == nil || !strings.Contains(err.Error(), "CSV") {
		t.Errorf("expected CSV rejection, got %v", err)
	}
}

func TestReadAllSkipsCorruptRows(t *testing.T) {
	db := openMemDB(t)
	db.Append(record("good1", "2230", 1))
	if _, err := db.conn.Exec(
		`INSERT INTO match_records(id, team_number, payload) VALUES ('bad', '2230', '{not json')`); err != nil {
		t.Fatalf("insert corrupt row: %v", err)
	}
	db.Append(record("good2", "2230", 2))

	recs, err := db.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll should not fail on corrupt rows: %v", err)
	}
	if len(recs) != 2 || recs[0].ID != "good1" || recs[1].ID != "good2" {
		t.Errorf("want good1, good2; got %+v", recs)
	}
}

func TestOverview(t *testing.T) {
	db := openMemDB(t)
	ov, err := db.Overview()
	if err != nil {
		t.Fatalf("Overview empty: %v", err)
	}
	if ov.TotalRecords != 0 || len(ov.MatchTypes) != 0 {
		t.Errorf("empty overview: %+v", ov)
	}

	p := record("p1", "1574", 50)
	p.MatchType = model.MatchPractice
	db.Append(record("q1", "2230", 100))
	db.Append(record("q2", "1574", 300))
	db.Append(p)

	ov, err = db.Overview()
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if ov.TotalRecords != 3 || ov.UniqueTeams != 2 {
		t.Errorf("counts: %+v", ov)
	}
	if ov.EarliestMillis != 50 || ov.LatestMillis != 300 {
		t.Errorf("range: %d..%d", ov.EarliestMillis, ov.LatestMillis)
	}
	if len(ov.MatchTypes) != 2 || ov.MatchTypes[0].MatchType != "q" || ov.MatchTypes[0].Records != 2 {
		t.Errorf("match types: %+v", ov.MatchTypes)
	}
}

func TestQueryRaw(t *testing.T) {
	db := openMemDB(t)
	db.Append(record("a", "2230", 1))
	db.Append(record("b", "2230", 2))

	cols, rows, err := db.QueryRaw("SELECT team_number, COUNT(1) AS n FROM match_records GROUP BY team_number")
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if len(cols) != 2 || cols[1] != "n" {
		t.Errorf("columns: %v", cols)
	}
	if len(rows) != 1 || rows[0][0] != "2230" || rows[0][1] != "2" {
		t.Errorf("rows: %v", rows)
	}

	if _, _, err := db.QueryRaw("SELECT nope FROM nowhere"); err == nil {
		t.Error("expected error for bad query")
	}
}

func TestDuplicateIDSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scouting.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := db.Append(record("keep", "2230", 1)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	if err := db.Append(record("keep", "2230", 2)); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("want ErrDuplicateID after reopen, got %v", err)
	}
}

func TestIDsReusableAfterClearAndOverwrite(t *testing.T) {
	db := openMemDB(t)
	db.Append(record("a", "2230", 1))
	if err := db.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := db.Append(record("a", "2230", 2)); err != nil {
		t.Errorf("id should be free after Clear: %v", err)
	}

	if err := db.OverwriteAll([]model.MatchRecord{record("b", "1574", 1)}); err != nil {
		t.Fatalf("OverwriteAll: %v", err)
	}
	if err := db.Append(record("a", "2230", 3)); err != nil {
		t.Errorf("id should be free after overwrite: %v", err)
	}
	if err := db.Append(record("b", "1574", 4)); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("overwritten id should be taken, got %v", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if isUniqueViolation(errors.New("UNIQUE constraint failed: match_records.id")) {
		t.Error("plain error text must not count as a constraint failure")
	}

	db := openMemDB(t)
	if err := insertRecords(db.conn, []model.MatchRecord{record("u1", "2230", 1)}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	err := insertRecords(db.conn, []model.MatchRecord{record("u1", "2230", 2)})
	if err == nil {
		t.Fatal("want constraint error on repeated id")
	}
	if !isUniqueViolation(err) {
		t.Errorf("isUniqueViolation(%v) = false", err)
	}
}
