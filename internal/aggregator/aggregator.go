// Package aggregator turns raw scouting records into per-team statistics.
package aggregator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ga2230/reefscout/internal/model"
	"github.com/ga2230/reefscout/internal/scoring"
)

// Overall score weights.
const (
	WeightAuto    = 1.2
	WeightTeleop  = 1.0
	WeightL4      = 2.0
	WeightDefence = 1.5
)

// Blend ratio of local averages to external ratings.
const (
	localParts    = 3.0
	externalParts = 2.0
)

// Options are the per-request view settings for Aggregate.
type Options struct {
	ExcludeDefense bool
	BlendExternal  bool
	SortKey        model.MetricKey
	SortDescending bool
	Search         string
}

// DefaultOptions ranks by overall score, best first.
func DefaultOptions() Options {
	return Options{SortKey: model.MetricOverall, SortDescending: true}
}

// teamAccum holds raw sums for one team before averaging.
type teamAccum struct {
	matches        int
	auto, teleop   int
	l4, l3, l2, l1 int
	processor, net int
	coralMade      int
	coralMissed    int
	algae          int
	defenceSum     int
	defenceMatches int
}

func (a *teamAccum) add(r model.MatchRecord) {
	auto, teleop := scoring.Match(r)
	a.matches++
	a.auto += auto
	a.teleop += teleop
	a.l4 += r.Auto.L4 + r.Teleop.L4
	a.l3 += r.Auto.L3 + r.Teleop.L3
	a.l2 += r.Auto.L2 + r.Teleop.L2
	a.l1 += r.Auto.L1 + r.Teleop.L1
	a.processor += r.Auto.Processor + r.Teleop.Processor
	a.net += r.Auto.Net + r.Teleop.Net
	a.coralMade += r.Auto.Coral() + r.Teleop.Coral()
	a.coralMissed += r.Auto.CoralMissed + r.Teleop.CoralMissed
	a.algae += r.Auto.Algae() + r.Teleop.Algae()
	if r.Teleop.PlayedDefence {
		a.defenceSum += r.Endgame.DefenceLevel
		a.defenceMatches++
	}
}

// avg divides a raw sum by matches played, 0 when no matches.
func (a *teamAccum) avg(sum int) float64 {
	if a.matches == 0 {
		return 0
	}
	return float64(sum) / float64(a.matches)
}

// Aggregate computes ranked per-team statistics for every team in teams.
// Teams without records still appear with zeroed metrics; records for teams
// outside the list are ignored. ratings may be nil.
func Aggregate(records []model.MatchRecord, teams []string, opts Options, ratings model.Ratings) []model.TeamStat {
	// ---- Group raw sums by team. ----
	accums := make(map[string]*teamAccum, len(teams))
	for _, t := range teams {
		accums[t] = &teamAccum{}
	}
	for _, r := range records {
		if opts.ExcludeDefense && r.Teleop.PlayedDefence {
			continue
		}
		if a, ok := accums[r.TeamNumber]; ok {
			a.add(r)
		}
	}

	// ---- Derive averages in known-teams order. ----
	stats := make([]model.TeamStat, 0, len(teams))
	for _, t := range teams {
		a := accums[t]
		var ext *model.Rating
		if r, ok := ratings[t]; ok {
			ext = &r
		}
		s := summarize(t, a, ext, opts.BlendExternal)
		if opts.Search != "" && !s.HasTeam(opts.Search) {
			continue
		}
		stats = append(stats, s)
	}

	sortStats(stats, opts.SortKey, opts.SortDescending)
	return stats
}

// summarize builds the rounded TeamStat for one team.
func summarize(team string, a *teamAccum, ext *model.Rating, blend bool) model.TeamStat {
	avgAuto := a.avg(a.auto)
	avgTeleop := a.avg(a.teleop)
	avgTotal := avgAuto + avgTeleop
	avgL4 := a.avg(a.l4)

	accuracy := 0.0
	if attempts := a.coralMade + a.coralMissed; attempts > 0 {
		accuracy = float64(a.coralMade) / float64(attempts) * 100
	}

	// Defence is averaged over defence matches only, not matches played.
	avgDefence := 0.0
	if a.defenceMatches > 0 {
		avgDefence = float64(a.defenceSum) / float64(a.defenceMatches)
	}

	source := model.SourceLocal
	if blend && ext != nil {
		source = model.SourceBlended
		if a.matches > 0 {
			avgAuto = blendValue(avgAuto, ext.Auto)
			avgTeleop = blendValue(avgTeleop, ext.Teleop)
			avgTotal = blendValue(avgTotal, ext.Total)
		} else {
			avgAuto = ext.Auto
			avgTeleop = ext.Teleop
			avgTotal = ext.Total
		}
	}

	overall := WeightAuto*avgAuto + WeightTeleop*avgTeleop + WeightL4*avgL4 + WeightDefence*avgDefence

	s := model.TeamStat{
		Team:             team,
		MatchesPlayed:    a.matches,
		AvgTotalPoints:   round1(avgTotal),
		AvgAutoPoints:    round1(avgAuto),
		AvgTeleopPoints:  round1(avgTeleop),
		AvgOverall:       round1(overall),
		AvgCoral:         round1(a.avg(a.coralMade)),
		AvgCoralAccuracy: round1(accuracy),
		AvgAlgae:         round1(a.avg(a.algae)),
		AvgL4:            round1(avgL4),
		AvgL3:            round1(a.avg(a.l3)),
		AvgL2:            round1(a.avg(a.l2)),
		AvgL1:            round1(a.avg(a.l1)),
		AvgProcessor:     round1(a.avg(a.processor)),
		AvgNet:           round1(a.avg(a.net)),
		AvgDefenceRating: round1(avgDefence),
		Source:           source,
	}
	if ext != nil {
		epa := round1(ext.Total)
		s.EPATotal = &epa
	}
	return s
}

func blendValue(local, external float64) float64 {
	return (local*localParts + external*externalParts) / (localParts + externalParts)
}

// round1 rounds half away from zero to one decimal place.
func round1(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

// sortStats orders stats by key. Ties keep their current relative order.
func sortStats(stats []model.TeamStat, key model.MetricKey, desc bool) {
	if key == "" {
		key = model.MetricOverall
	}
	sort.SliceStable(stats, func(i, j int) bool {
		vi, vj := stats[i].Value(key), stats[j].Value(key)
		if desc {
			return vi > vj
		}
		return vi < vj
	})
}
