// Package mock generates plausible scouting records for demos and tests.
package mock

import (
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ga2230/reefscout/internal/model"
)

// Skill multipliers applied to per-level scoring ranges.
const (
	eliteSkill  = 1.5
	midSkill    = 1.0
	rookieSkill = 0.6
)

// Options control mock generation.
type Options struct {
	MinMatches int
	MaxMatches int
	Now        time.Time
}

// Epoch is the base time for seeded runs, so a seed alone fixes every field.
var Epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// DefaultOptions generates 8 to 12 matches per team ending at the current time.
func DefaultOptions() Options {
	return Options{MinMatches: 8, MaxMatches: 12, Now: time.Now()}
}

// SeededOptions is DefaultOptions with timestamps anchored at Epoch.
func SeededOptions() Options {
	opts := DefaultOptions()
	opts.Now = Epoch
	return opts
}

// Generator produces deterministic records for a given seed.
type Generator struct {
	rng *rand.Rand
}

// New returns a generator seeded with seed.
func New(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// intn returns a uniform int in [lo, hi].
func (g *Generator) intn(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.rng.Intn(hi-lo+1)
}

func (g *Generator) chance(p float64) bool {
	return g.rng.Float64() < p
}

func scaled(base, skill float64) int {
	return int(math.Ceil(base * skill))
}

// skillFor assigns a tier so data for one team is consistent across matches.
func (g *Generator) skillFor() float64 {
	switch r := g.rng.Float64(); {
	case r > 0.8:
		return eliteSkill
	case r > 0.4:
		return midSkill
	default:
		return rookieSkill
	}
}

// Records builds qualification records for every team. Match numbers run
// consecutively across all teams and timestamps step back one hour per match.
func (g *Generator) Records(teams []string, opts Options) []model.MatchRecord {
	skills := make(map[string]float64, len(teams))
	for _, t := range teams {
		skills[t] = g.skillFor()
	}

	var out []model.MatchRecord
	matchNo := 1
	for _, team := range teams {
		n := g.intn(opts.MinMatches, opts.MaxMatches)
		for i := 0; i < n; i++ {
			r := g.record(team, skills[team])
			r.MatchNumber = strconv.Itoa(matchNo)
			r.Timestamp = opts.Now.Add(-time.Duration(i) * time.Hour).UnixMilli()
			out = append(out, r)
			matchNo++
		}
	}
	return out
}

func (g *Generator) record(team string, m float64) model.MatchRecord {
	id, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		id = uuid.New()
	}

	alliance := model.AllianceBlue
	if g.chance(0.5) {
		alliance = model.AllianceRed
	}

	cage := model.CageNone
	switch roll := g.rng.Float64(); {
	case roll > 0.6:
		cage = model.CageDeep
	case roll > 0.4:
		cage = model.CageShallow
	case roll > 0.3:
		cage = model.CagePark
	}

	defence := g.chance(0.2)
	defenceLevel := 0
	if defence {
		defenceLevel = g.intn(2, 5)
	}

	return model.MatchRecord{
		ID:            id.String(),
		MatchType:     model.MatchQualification,
		TeamNumber:    team,
		Alliance:      alliance,
		StartPosition: model.StartMid,
		Auto: model.AutoPhase{
			Counts: model.Counts{
				L4:          g.intn(0, scaled(1, m)),
				L3:          g.intn(0, scaled(2, m)),
				L2:          g.intn(0, scaled(2, m)),
				L1:          g.intn(0, scaled(3, m)),
				CoralMissed: g.intn(0, 3),
				Processor:   g.intn(0, 1),
				Net:         g.intn(0, 1),
				AlgaeMissed: g.intn(0, 2),
			},
			PassedLine: g.chance(0.9),
		},
		Teleop: model.TeleopPhase{
			Counts: model.Counts{
				L4:          g.intn(0, scaled(3, m)),
				L3:          g.intn(0, scaled(4, m)),
				L2:          g.intn(1, scaled(5, m)),
				L1:          g.intn(2, scaled(6, m)),
				CoralMissed: g.intn(0, 5),
				Processor:   g.intn(0, scaled(2, m)),
				Net:         g.intn(0, scaled(2, m)),
				AlgaeMissed: g.intn(0, 4),
			},
			PlayedDefence: defence,
		},
		Endgame: model.Endgame{
			DefenceLevel: defenceLevel,
			DrivingLevel: g.intn(2, 5),
			ScouterLevel: 5,
			Cage:         cage,
			Disabled:     g.chance(0.05),
			Comments:     "Generated mock data",
		},
	}
}
