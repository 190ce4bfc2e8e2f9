// Package model holds the scouting record shapes and the derived per-team
// statistics the aggregator produces.
package model

import "strings"

// MatchType identifies the kind of match a record was scouted in.
type MatchType string

const (
	MatchQualification MatchType = "q"
	MatchPractice      MatchType = "p"
	MatchAlliance      MatchType = "a"
	MatchElimination   MatchType = "e"
)

func (m MatchType) String() string {
	switch m {
	case MatchQualification:
		return "Qual"
	case MatchPractice:
		return "Practice"
	case MatchAlliance:
		return "Alliance"
	case MatchElimination:
		return "Elim"
	default:
		return "?"
	}
}

// Alliance is the side a robot played on.
type Alliance string

const (
	AllianceRed  Alliance = "Red"
	AllianceBlue Alliance = "Blue"
)

// StartPosition is one of the five field zones a robot can start in.
// The zero value means the scout left it unset.
type StartPosition string

const (
	StartUnset     StartPosition = ""
	StartUp        StartPosition = "Up"
	StartMidUp     StartPosition = "Middle Up"
	StartMid       StartPosition = "Middle"
	StartMidBottom StartPosition = "Middle Bottom"
	StartBottom    StartPosition = "Bottom"
)

// StartPositions lists the field zones top to bottom.
var StartPositions = []StartPosition{StartUp, StartMidUp, StartMid, StartMidBottom, StartBottom}

// Cage is the endgame climb result.
type Cage string

const (
	CageNone    Cage = "None"
	CagePark    Cage = "Park"
	CageShallow Cage = "Shallow"
	CageDeep    Cage = "Deep"
)

// Normalize maps the empty value to CageNone.
func (c Cage) Normalize() Cage {
	if c == "" {
		return CageNone
	}
	return c
}

// ---- Raw records produced by the scouting form ----

// Counts are the per-phase scoring action tallies.
type Counts struct {
	L4          int `json:"l4" validate:"gte=0"`
	L3          int `json:"l3" validate:"gte=0"`
	L2          int `json:"l2" validate:"gte=0"`
	L1          int `json:"l1" validate:"gte=0"`
	CoralMissed int `json:"coralMissed" validate:"gte=0"`
	Processor   int `json:"processor" validate:"gte=0"`
	Net         int `json:"net" validate:"gte=0"`
	AlgaeMissed int `json:"algaeMissed" validate:"gte=0"`
}

// Coral returns the coral scored across all four levels.
func (c Counts) Coral() int { return c.L4 + c.L3 + c.L2 + c.L1 }

// Algae returns the algae scored in the processor and the net.
func (c Counts) Algae() int { return c.Processor + c.Net }

type AutoPhase struct {
	Counts
	PassedLine bool `json:"passedLine"`
}

type TeleopPhase struct {
	Counts
	PlayedDefence bool `json:"playedDefence"`
}

type Endgame struct {
	DefenceLevel int    `json:"defenceLevel" validate:"gte=0,lte=5"`
	DrivingLevel int    `json:"drivingLevel" validate:"gte=0,lte=5"`
	ScouterLevel int    `json:"scouterLevel" validate:"gte=0,lte=5"`
	Cage         Cage   `json:"cage" validate:"omitempty,oneof=None Park Shallow Deep"`
	Disabled     bool   `json:"disabled"`
	Comments     string `json:"comments"`
}

// MatchRecord is one scout's observation of one robot in one match.
// Records are never mutated after they are stored.
type MatchRecord struct {
	ID            string        `json:"id" validate:"required"`
	Timestamp     int64         `json:"timestamp" validate:"gte=0"`
	MatchType     MatchType     `json:"matchType" validate:"oneof=q p a e"`
	MatchNumber   string        `json:"matchNumber" validate:"required"`
	TeamNumber    string        `json:"teamNumber" validate:"required"`
	Alliance      Alliance      `json:"alliance" validate:"oneof=Red Blue"`
	StartPosition StartPosition `json:"startPosition" validate:"omitempty,oneof=Up 'Middle Up' Middle 'Middle Bottom' Bottom"`
	Auto          AutoPhase     `json:"auto"`
	Teleop        TeleopPhase   `json:"teleop"`
	Endgame       Endgame       `json:"endgame"`
}

// ---- External ratings ----

// Rating is a precomputed external performance rating (EPA) for one team.
type Rating struct {
	Auto   float64 `json:"auto"`
	Teleop float64 `json:"teleop"`
	Total  float64 `json:"total"`
}

// Ratings maps team id to its external rating. A missing team means no data.
type Ratings map[string]Rating

// ---- Aggregated metrics ----

// Source tags whether a TeamStat blends external ratings.
type Source string

const (
	SourceLocal   Source = "local-only"
	SourceBlended Source = "blended"
)

// TeamStat is the per-team summary recomputed on every aggregation.
type TeamStat struct {
	Team          string `json:"team"`
	MatchesPlayed int    `json:"matchesPlayed"`

	AvgTotalPoints   float64 `json:"avgTotalPoints"`
	AvgAutoPoints    float64 `json:"avgAutoPoints"`
	AvgTeleopPoints  float64 `json:"avgTeleopPoints"`
	AvgOverall       float64 `json:"avgOverall"`
	AvgCoral         float64 `json:"avgCoral"`
	AvgCoralAccuracy float64 `json:"avgCoralAccuracy"`
	AvgAlgae         float64 `json:"avgAlgae"`
	AvgL4            float64 `json:"avgL4"`
	AvgL3            float64 `json:"avgL3"`
	AvgL2            float64 `json:"avgL2"`
	AvgL1            float64 `json:"avgL1"`
	AvgProcessor     float64 `json:"avgProcessor"`
	AvgNet           float64 `json:"avgNet"`
	AvgDefenceRating float64 `json:"avgDefenceRating"`

	// EPATotal is nil when the external source has no entry for the team.
	EPATotal *float64 `json:"epaTotal,omitempty"`
	Source   Source   `json:"source"`
}

// HasTeam reports whether the team id contains the search term.
func (s TeamStat) HasTeam(term string) bool {
	return strings.Contains(s.Team, term)
}
