package aggregator

import (
	"math"
	"testing"

	"github.com/ga2230/reefscout/internal/model"
	"github.com/ga2230/reefscout/internal/scoring"
)

var knownTeams = []string{"1574", "1690", "2230", "3339", "5987"}

// makeRecord creates a minimal record for team with the given phases.
func makeRecord(id, team string, ts int64, auto model.AutoPhase, tele model.TeleopPhase, end model.Endgame) model.MatchRecord {
	return model.MatchRecord{
		ID:          id,
		Timestamp:   ts,
		MatchType:   model.MatchQualification,
		MatchNumber: id,
		TeamNumber:  team,
		Alliance:    model.AllianceRed,
		Auto:        auto,
		Teleop:      tele,
		Endgame:     end,
	}
}

// scenario2230 builds the two-match example: one scoring match, one defence match.
func scenario2230() []model.MatchRecord {
	a := makeRecord("A", "2230", 1000,
		model.AutoPhase{Counts: model.Counts{L4: 1}, PassedLine: true},
		model.TeleopPhase{Counts: model.Counts{L4: 2}},
		model.Endgame{},
	)
	b := makeRecord("B", "2230", 2000,
		model.AutoPhase{},
		model.TeleopPhase{PlayedDefence: true},
		model.Endgame{DefenceLevel: 3},
	)
	return []model.MatchRecord{a, b}
}

func statFor(t *testing.T, stats []model.TeamStat, team string) model.TeamStat {
	t.Helper()
	s := Find(stats, team)
	if s == nil {
		t.Fatalf("team %s missing from output", team)
	}
	return *s
}

// ---- Example scenario ----

func TestAggregate_Example2230(t *testing.T) {
	stats := Aggregate(scenario2230(), knownTeams, DefaultOptions(), nil)
	s := statFor(t, stats, "2230")

	if s.MatchesPlayed != 2 {
		t.Errorf("MatchesPlayed: want 2, got %d", s.MatchesPlayed)
	}
	if s.AvgAutoPoints != 5.0 {
		t.Errorf("AvgAutoPoints: want 5.0, got %v", s.AvgAutoPoints)
	}
	if s.AvgTeleopPoints != 5.0 {
		t.Errorf("AvgTeleopPoints: want 5.0, got %v", s.AvgTeleopPoints)
	}
	if s.AvgTotalPoints != 10.0 {
		t.Errorf("AvgTotalPoints: want 10.0, got %v", s.AvgTotalPoints)
	}
	if s.AvgDefenceRating != 3.0 {
		t.Errorf("AvgDefenceRating: want 3.0 (only match B counts), got %v", s.AvgDefenceRating)
	}
	if s.AvgL4 != 1.5 {
		t.Errorf("AvgL4: want 1.5, got %v", s.AvgL4)
	}
	// 1.2*5 + 5 + 2*1.5 + 1.5*3 = 18.5
	if s.AvgOverall != 18.5 {
		t.Errorf("AvgOverall: want 18.5, got %v", s.AvgOverall)
	}
	if s.Source != model.SourceLocal {
		t.Errorf("Source: want local-only, got %s", s.Source)
	}
	if s.EPATotal != nil {
		t.Errorf("EPATotal: want nil, got %v", *s.EPATotal)
	}
}

// ---- Universe and zero-match teams ----

func TestAggregate_ZeroMatchTeamsStillAppear(t *testing.T) {
	stats := Aggregate(scenario2230(), knownTeams, DefaultOptions(), nil)
	if len(stats) != len(knownTeams) {
		t.Fatalf("want %d teams, got %d", len(knownTeams), len(stats))
	}
	for _, s := range stats {
		if s.Team == "2230" {
			continue
		}
		if s.MatchesPlayed != 0 {
			t.Errorf("%s: MatchesPlayed want 0, got %d", s.Team, s.MatchesPlayed)
		}
		for _, m := range model.Metrics {
			if v := s.Value(m.Key); v != 0 {
				t.Errorf("%s: %s want 0, got %v", s.Team, m.Key, v)
			}
		}
	}
}

func TestAggregate_UnknownTeamRecordsIgnored(t *testing.T) {
	recs := []model.MatchRecord{
		makeRecord("x", "9999", 1, model.AutoPhase{PassedLine: true}, model.TeleopPhase{}, model.Endgame{}),
	}
	stats := Aggregate(recs, knownTeams, DefaultOptions(), nil)
	if Find(stats, "9999") != nil {
		t.Error("team outside the known list should not be reported")
	}
}

func TestAggregate_EmptyInput(t *testing.T) {
	if got := Aggregate(nil, nil, DefaultOptions(), nil); len(got) != 0 {
		t.Errorf("want empty output, got %d rows", len(got))
	}
}

// ---- Averages ----

func TestAggregate_AutoAverageTimesMatchesEqualsSum(t *testing.T) {
	recs := []model.MatchRecord{
		makeRecord("1", "1574", 1, model.AutoPhase{Counts: model.Counts{L4: 1, L2: 1}, PassedLine: true}, model.TeleopPhase{}, model.Endgame{}),
		makeRecord("2", "1574", 2, model.AutoPhase{Counts: model.Counts{L3: 2, Net: 1}}, model.TeleopPhase{}, model.Endgame{}),
		makeRecord("3", "1574", 3, model.AutoPhase{Counts: model.Counts{Processor: 1}, PassedLine: true}, model.TeleopPhase{}, model.Endgame{}),
	}
	sum := 0
	for _, r := range recs {
		sum += scoring.Auto(r.Auto)
	}
	s := statFor(t, Aggregate(recs, knownTeams, DefaultOptions(), nil), "1574")
	// Rounding to one decimal happens once at the end.
	if math.Abs(s.AvgAutoPoints*float64(s.MatchesPlayed)-float64(sum)) > 0.05*float64(s.MatchesPlayed) {
		t.Errorf("avg %v × %d does not match sum %d", s.AvgAutoPoints, s.MatchesPlayed, sum)
	}
	// (7+4+3) + (12+4) + (6+3) = 39 → 13.0
	if s.AvgAutoPoints != 13.0 {
		t.Errorf("AvgAutoPoints: want 13.0, got %v", s.AvgAutoPoints)
	}
}

func TestAggregate_RoundingAppliedLast(t *testing.T) {
	// Three matches of 1, 1, 0 L1 in teleop: 2/3 L1 → 0.7, points 4/3 → 1.3.
	recs := []model.MatchRecord{
		makeRecord("1", "1690", 1, model.AutoPhase{}, model.TeleopPhase{Counts: model.Counts{L1: 1}}, model.Endgame{}),
		makeRecord("2", "1690", 2, model.AutoPhase{}, model.TeleopPhase{Counts: model.Counts{L1: 1}}, model.Endgame{}),
		makeRecord("3", "1690", 3, model.AutoPhase{}, model.TeleopPhase{}, model.Endgame{}),
	}
	s := statFor(t, Aggregate(recs, knownTeams, DefaultOptions(), nil), "1690")
	if s.AvgL1 != 0.7 {
		t.Errorf("AvgL1: want 0.7, got %v", s.AvgL1)
	}
	if s.AvgTeleopPoints != 1.3 {
		t.Errorf("AvgTeleopPoints: want 1.3, got %v", s.AvgTeleopPoints)
	}
	// Overall from unrounded teleop: 4/3 = 1.333 → 1.3 (not 1.3 rounded twice).
	if s.AvgOverall != 1.3 {
		t.Errorf("AvgOverall: want 1.3, got %v", s.AvgOverall)
	}
}

// ---- Coral accuracy ----

func TestAggregate_CoralAccuracy(t *testing.T) {
	tests := []struct {
		name   string
		auto   model.Counts
		tele   model.Counts
		wantAc float64
	}{
		{"no attempts", model.Counts{}, model.Counts{}, 0},
		{"only misses", model.Counts{CoralMissed: 2}, model.Counts{CoralMissed: 1}, 0},
		{"perfect", model.Counts{L4: 1}, model.Counts{L1: 3}, 100},
		{"two thirds", model.Counts{L2: 1, CoralMissed: 1}, model.Counts{L3: 1}, 66.7},
		{"algae misses ignored", model.Counts{L1: 1, AlgaeMissed: 4}, model.Counts{}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := []model.MatchRecord{
				makeRecord("1", "3339", 1, model.AutoPhase{Counts: tt.auto}, model.TeleopPhase{Counts: tt.tele}, model.Endgame{}),
			}
			s := statFor(t, Aggregate(recs, knownTeams, DefaultOptions(), nil), "3339")
			if s.AvgCoralAccuracy != tt.wantAc {
				t.Errorf("accuracy: want %v, got %v", tt.wantAc, s.AvgCoralAccuracy)
			}
			if s.AvgCoralAccuracy < 0 || s.AvgCoralAccuracy > 100 {
				t.Errorf("accuracy out of range: %v", s.AvgCoralAccuracy)
			}
		})
	}
}

// ---- Defence ----

func TestAggregate_DefenceRatingOnlyFromDefenceMatches(t *testing.T) {
	recs := []model.MatchRecord{
		// Level recorded without playing defence must not count.
		makeRecord("1", "5987", 1, model.AutoPhase{}, model.TeleopPhase{}, model.Endgame{DefenceLevel: 5}),
		makeRecord("2", "5987", 2, model.AutoPhase{}, model.TeleopPhase{}, model.Endgame{}),
	}
	s := statFor(t, Aggregate(recs, knownTeams, DefaultOptions(), nil), "5987")
	if s.AvgDefenceRating != 0 {
		t.Errorf("no defence matches: want 0, got %v", s.AvgDefenceRating)
	}

	recs = append(recs,
		makeRecord("3", "5987", 3, model.AutoPhase{}, model.TeleopPhase{PlayedDefence: true}, model.Endgame{DefenceLevel: 4}),
		makeRecord("4", "5987", 4, model.AutoPhase{}, model.TeleopPhase{PlayedDefence: true}, model.Endgame{DefenceLevel: 1}),
	)
	s = statFor(t, Aggregate(recs, knownTeams, DefaultOptions(), nil), "5987")
	// (4+1)/2, not divided by the 4 matches played.
	if s.AvgDefenceRating != 2.5 {
		t.Errorf("AvgDefenceRating: want 2.5, got %v", s.AvgDefenceRating)
	}
}

func TestAggregate_ExcludeDefenseDropsWholeMatch(t *testing.T) {
	opts := DefaultOptions()
	base := statFor(t, Aggregate(scenario2230(), knownTeams, opts, nil), "2230")

	opts.ExcludeDefense = true
	filtered := statFor(t, Aggregate(scenario2230(), knownTeams, opts, nil), "2230")

	if filtered.MatchesPlayed != base.MatchesPlayed-1 {
		t.Errorf("MatchesPlayed: want %d, got %d", base.MatchesPlayed-1, filtered.MatchesPlayed)
	}
	// Only match A remains: auto 10, teleop 10, L4 3.
	if filtered.AvgAutoPoints != 10 || filtered.AvgTeleopPoints != 10 || filtered.AvgL4 != 3 {
		t.Errorf("filtered averages wrong: auto=%v teleop=%v l4=%v",
			filtered.AvgAutoPoints, filtered.AvgTeleopPoints, filtered.AvgL4)
	}
	if filtered.AvgDefenceRating != 0 {
		t.Errorf("AvgDefenceRating: want 0 after excluding defence matches, got %v", filtered.AvgDefenceRating)
	}
}

// ---- External blending ----

func TestAggregate_BlendThreeToTwo(t *testing.T) {
	ratings := model.Ratings{"2230": {Auto: 10, Teleop: 20, Total: 40}}
	opts := DefaultOptions()
	opts.BlendExternal = true

	s := statFor(t, Aggregate(scenario2230(), knownTeams, opts, ratings), "2230")
	// auto: (5*3 + 10*2)/5 = 7, teleop: (5*3 + 20*2)/5 = 11, total: (10*3 + 40*2)/5 = 22
	if s.AvgAutoPoints != 7 || s.AvgTeleopPoints != 11 || s.AvgTotalPoints != 22 {
		t.Errorf("blend: auto=%v teleop=%v total=%v", s.AvgAutoPoints, s.AvgTeleopPoints, s.AvgTotalPoints)
	}
	if s.Source != model.SourceBlended {
		t.Errorf("Source: want blended, got %s", s.Source)
	}
	if s.EPATotal == nil || *s.EPATotal != 40 {
		t.Errorf("EPATotal: want 40, got %v", s.EPATotal)
	}
	// Overall uses blended values: 1.2*7 + 11 + 2*1.5 + 1.5*3 = 26.9
	if s.AvgOverall != 26.9 {
		t.Errorf("AvgOverall: want 26.9, got %v", s.AvgOverall)
	}
	// Non-blended metrics are untouched.
	if s.AvgL4 != 1.5 || s.MatchesPlayed != 2 {
		t.Errorf("local-only metrics changed: l4=%v matches=%d", s.AvgL4, s.MatchesPlayed)
	}
}

func TestAggregate_BlendZeroLocalMatchesUsesExternal(t *testing.T) {
	ratings := model.Ratings{"1574": {Auto: 8.44, Teleop: 21.1, Total: 35.26}}
	opts := DefaultOptions()
	opts.BlendExternal = true

	s := statFor(t, Aggregate(nil, knownTeams, opts, ratings), "1574")
	if s.AvgAutoPoints != 8.4 || s.AvgTeleopPoints != 21.1 || s.AvgTotalPoints != 35.3 {
		t.Errorf("external passthrough: auto=%v teleop=%v total=%v", s.AvgAutoPoints, s.AvgTeleopPoints, s.AvgTotalPoints)
	}
	if s.MatchesPlayed != 0 || s.Source != model.SourceBlended {
		t.Errorf("want 0 matches and blended source, got %d %s", s.MatchesPlayed, s.Source)
	}
}

func TestAggregate_BlendWithoutEntryIsIdentity(t *testing.T) {
	ratings := model.Ratings{"1574": {Auto: 1, Teleop: 1, Total: 2}}
	plain := statFor(t, Aggregate(scenario2230(), knownTeams, DefaultOptions(), nil), "2230")

	opts := DefaultOptions()
	opts.BlendExternal = true
	blended := statFor(t, Aggregate(scenario2230(), knownTeams, opts, ratings), "2230")

	if plain.AvgOverall != blended.AvgOverall || plain.AvgAutoPoints != blended.AvgAutoPoints ||
		plain.AvgTotalPoints != blended.AvgTotalPoints || blended.Source != model.SourceLocal || blended.EPATotal != nil {
		t.Errorf("team without external entry changed:\nplain   %+v\nblended %+v", plain, blended)
	}
}

func TestAggregate_BlendOffIgnoresRatings(t *testing.T) {
	ratings := model.Ratings{"2230": {Auto: 100, Teleop: 100, Total: 200}}
	s := statFor(t, Aggregate(scenario2230(), knownTeams, DefaultOptions(), ratings), "2230")
	if s.AvgAutoPoints != 5 || s.Source != model.SourceLocal {
		t.Errorf("blend off: auto=%v source=%s", s.AvgAutoPoints, s.Source)
	}
	if s.EPATotal == nil || *s.EPATotal != 200 {
		t.Errorf("EPATotal should still be reported when data exists, got %v", s.EPATotal)
	}
}

// ---- Search and sort ----

func TestAggregate_Search(t *testing.T) {
	opts := DefaultOptions()
	opts.Search = "23"
	stats := Aggregate(nil, knownTeams, opts, nil)
	if len(stats) != 1 || stats[0].Team != "2230" {
		t.Errorf("search 23: got %+v", stats)
	}
}

// sortFixture yields auto averages 1574=14, 2230=6, 1690=3, 3339=3, 5987=0.
func sortFixture() []model.MatchRecord {
	line := model.AutoPhase{PassedLine: true}
	return []model.MatchRecord{
		makeRecord("1", "1574", 1, model.AutoPhase{Counts: model.Counts{L4: 2}}, model.TeleopPhase{}, model.Endgame{}),
		makeRecord("2", "1690", 2, line, model.TeleopPhase{}, model.Endgame{}),
		makeRecord("3", "2230", 3, model.AutoPhase{Counts: model.Counts{L1: 2}}, model.TeleopPhase{}, model.Endgame{}),
		makeRecord("4", "3339", 4, line, model.TeleopPhase{}, model.Endgame{}),
	}
}

func teamsOf(stats []model.TeamStat) []string {
	out := make([]string, len(stats))
	for i, s := range stats {
		out[i] = s.Team
	}
	return out
}

func equalOrder(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAggregate_SortStableTies(t *testing.T) {
	opts := Options{SortKey: model.MetricAuto, SortDescending: true}
	got := teamsOf(Aggregate(sortFixture(), knownTeams, opts, nil))
	// Ties (1690, 3339 at 3; 5987 at 0) keep known-teams order.
	want := []string{"1574", "2230", "1690", "3339", "5987"}
	if !equalOrder(got, want) {
		t.Errorf("desc: want %v, got %v", want, got)
	}

	opts.SortDescending = false
	got = teamsOf(Aggregate(sortFixture(), knownTeams, opts, nil))
	want = []string{"5987", "1690", "3339", "2230", "1574"}
	if !equalOrder(got, want) {
		t.Errorf("asc: want %v, got %v", want, got)
	}
}

func TestAggregate_SortReversesForDistinctValues(t *testing.T) {
	teams := []string{"1574", "1690", "2230"}
	recs := sortFixture()[:3]
	asc := teamsOf(Aggregate(recs, teams, Options{SortKey: model.MetricAuto}, nil))
	desc := teamsOf(Aggregate(recs, teams, Options{SortKey: model.MetricAuto, SortDescending: true}, nil))
	for i := range asc {
		if asc[i] != desc[len(desc)-1-i] {
			t.Fatalf("asc %v is not the reverse of desc %v", asc, desc)
		}
	}
}

func TestAggregate_Deterministic(t *testing.T) {
	opts := DefaultOptions()
	first := teamsOf(Aggregate(sortFixture(), knownTeams, opts, nil))
	for i := 0; i < 10; i++ {
		if got := teamsOf(Aggregate(sortFixture(), knownTeams, opts, nil)); !equalOrder(first, got) {
			t.Fatalf("run %d: order changed %v → %v", i, first, got)
		}
	}
}
