package aggregator

import (
	"sort"

	"github.com/ga2230/reefscout/internal/model"
	"github.com/ga2230/reefscout/internal/scoring"
)

// MaxCompare caps how many teams a comparison view holds.
const MaxCompare = 8

// Capability thresholds derived from aggregated averages.
const (
	highAutoPoints = 12.0
	defenderRating = 2.0
)

// MatchPoints is one row of a team's match history.
type MatchPoints struct {
	ID            string          `json:"id"`
	Timestamp     int64           `json:"timestamp"`
	MatchType     model.MatchType `json:"matchType"`
	MatchNumber   string          `json:"matchNumber"`
	Alliance      model.Alliance  `json:"alliance"`
	AutoPoints    int             `json:"autoPoints"`
	TeleopPoints  int             `json:"teleopPoints"`
	TotalPoints   int             `json:"totalPoints"`
	Coral         int             `json:"coral"`
	Algae         int             `json:"algae"`
	PlayedDefence bool            `json:"playedDefence"`
	Cage          model.Cage      `json:"cage"`
	Disabled      bool            `json:"disabled"`
	Comments      string          `json:"comments"`
}

// Capabilities are OR-reduced over every match a team played.
type Capabilities struct {
	L1        bool `json:"l1"`
	L2        bool `json:"l2"`
	L3        bool `json:"l3"`
	L4        bool `json:"l4"`
	Processor bool `json:"processor"`
	Net       bool `json:"net"`
	Deep      bool `json:"deep"`
	Shallow   bool `json:"shallow"`
	Park      bool `json:"park"`
	HighAuto  bool `json:"highAuto"`
	Defender  bool `json:"defender"`
}

// Names lists the capabilities that are set, coral levels first.
func (c Capabilities) Names() []string {
	flags := []struct {
		on   bool
		name string
	}{
		{c.L1, "L1"}, {c.L2, "L2"}, {c.L3, "L3"}, {c.L4, "L4"},
		{c.Processor, "Processor"}, {c.Net, "Net"},
		{c.Deep, "Deep"}, {c.Shallow, "Shallow"}, {c.Park, "Park"},
		{c.HighAuto, "High Auto"}, {c.Defender, "Defender"},
	}
	var names []string
	for _, f := range flags {
		if f.on {
			names = append(names, f.name)
		}
	}
	return names
}

// TeamDetail is the single-team projection used by the detail view.
type TeamDetail struct {
	Team         string          `json:"team"`
	Stat         *model.TeamStat `json:"stat,omitempty"`
	Matches      []MatchPoints   `json:"matches"`
	Capabilities Capabilities    `json:"capabilities"`
}

// Detail projects the match history and capabilities of one team.
// All of the team's records are used regardless of any leaderboard filter.
// stat, when non-nil, supplies the average-based capability flags.
func Detail(team string, records []model.MatchRecord, stat *model.TeamStat) TeamDetail {
	var mine []model.MatchRecord
	for _, r := range records {
		if r.TeamNumber == team {
			mine = append(mine, r)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].Timestamp < mine[j].Timestamp
	})

	d := TeamDetail{Team: team, Stat: stat, Matches: make([]MatchPoints, 0, len(mine))}
	c := &d.Capabilities
	for _, r := range mine {
		auto, teleop := scoring.Match(r)
		cage := r.Endgame.Cage.Normalize()
		d.Matches = append(d.Matches, MatchPoints{
			ID:            r.ID,
			Timestamp:     r.Timestamp,
			MatchType:     r.MatchType,
			MatchNumber:   r.MatchNumber,
			Alliance:      r.Alliance,
			AutoPoints:    auto,
			TeleopPoints:  teleop,
			TotalPoints:   auto + teleop,
			Coral:         r.Auto.Coral() + r.Teleop.Coral(),
			Algae:         r.Auto.Algae() + r.Teleop.Algae(),
			PlayedDefence: r.Teleop.PlayedDefence,
			Cage:          cage,
			Disabled:      r.Endgame.Disabled,
			Comments:      r.Endgame.Comments,
		})

		c.L1 = c.L1 || r.Auto.L1+r.Teleop.L1 > 0
		c.L2 = c.L2 || r.Auto.L2+r.Teleop.L2 > 0
		c.L3 = c.L3 || r.Auto.L3+r.Teleop.L3 > 0
		c.L4 = c.L4 || r.Auto.L4+r.Teleop.L4 > 0
		c.Processor = c.Processor || r.Auto.Processor+r.Teleop.Processor > 0
		c.Net = c.Net || r.Auto.Net+r.Teleop.Net > 0
		c.Deep = c.Deep || cage == model.CageDeep
		c.Shallow = c.Shallow || cage == model.CageShallow
		c.Park = c.Park || cage == model.CagePark
	}
	if stat != nil {
		c.HighAuto = stat.AvgAutoPoints > highAutoPoints
		c.Defender = stat.AvgDefenceRating > defenderRating
	}
	return d
}

// Find returns the stat for team, or nil if it is not in stats.
func Find(stats []model.TeamStat, team string) *model.TeamStat {
	for i := range stats {
		if stats[i].Team == team {
			return &stats[i]
		}
	}
	return nil
}

// Select keeps the stats of the chosen teams in their ranked order.
// At most limit teams are kept; limit <= 0 means MaxCompare.
func Select(stats []model.TeamStat, teams []string, limit int) []model.TeamStat {
	if limit <= 0 {
		limit = MaxCompare
	}
	want := make(map[string]bool, len(teams))
	for _, t := range teams {
		want[t] = true
	}
	out := make([]model.TeamStat, 0, len(teams))
	for _, s := range stats {
		if !want[s.Team] {
			continue
		}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}
