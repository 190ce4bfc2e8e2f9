package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/ga2230/reefscout/internal/aggregator"
	"github.com/ga2230/reefscout/internal/model"
	"github.com/ga2230/reefscout/internal/ratings"
	"github.com/ga2230/reefscout/internal/scoring"
	"github.com/ga2230/reefscout/internal/storage"
)

const missing = "—"

var (
	cOK   = color.New(color.FgGreen)
	cWarn = color.New(color.FgYellow)
	cOff  = color.New(color.Faint)
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
			// Labels are already upper-cased; auto-format would split "L4" into "L 4".
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
	}))
}

func f1(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// metricCell formats one metric; a missing EPA prints as a dash.
func metricCell(s model.TeamStat, k model.MetricKey) string {
	if k == model.MetricEPA && s.EPATotal == nil {
		return missing
	}
	if k == model.MetricAccuracy {
		return f1(s.AvgCoralAccuracy) + "%"
	}
	return f1(s.Value(k))
}

// LeaderboardOptions selects which metric groups are shown.
type LeaderboardOptions struct {
	Groups  []model.MetricGroup
	SortKey model.MetricKey
	Desc    bool
}

// columns returns the catalogue entries for the chosen groups, all when none.
func (o LeaderboardOptions) columns() []model.Metric {
	if len(o.Groups) == 0 {
		return model.Metrics
	}
	want := map[model.MetricGroup]bool{}
	for _, g := range o.Groups {
		want[g] = true
	}
	var out []model.Metric
	for _, m := range model.Metrics {
		if want[m.Group] {
			out = append(out, m)
		}
	}
	return out
}

// ParseGroups parses a comma-separated, case-insensitive list of group names.
func ParseGroups(s string) ([]model.MetricGroup, error) {
	var out []model.MetricGroup
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		found := false
		for _, g := range []model.MetricGroup{model.GroupSummary, model.GroupCoral, model.GroupAlgae, model.GroupMisc, model.GroupAPI} {
			if strings.EqualFold(part, string(g)) {
				out = append(out, g)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown metric group %q", part)
		}
	}
	return out, nil
}

// PrintLeaderboard prints the ranked team table. The sort column header
// carries an arrow showing the direction.
func PrintLeaderboard(w io.Writer, stats []model.TeamStat, opts LeaderboardOptions) {
	cols := opts.columns()
	arrow := "▲"
	if opts.Desc {
		arrow = "▼"
	}

	header := []any{"#", "TEAM", "MP"}
	if opts.SortKey == model.MetricMatches {
		header[2] = "MP " + arrow
	}
	for _, c := range cols {
		label := strings.ToUpper(c.Label)
		if c.Key == opts.SortKey {
			label += " " + arrow
		}
		header = append(header, label)
	}
	header = append(header, "SOURCE")

	table := newTable(w)
	table.Header(header...)
	for i, s := range stats {
		row := []any{strconv.Itoa(i + 1), s.Team, strconv.Itoa(s.MatchesPlayed)}
		for _, c := range cols {
			row = append(row, metricCell(s, c.Key))
		}
		row = append(row, string(s.Source))
		table.Append(row...)
	}
	table.Render()
}

// PrintComparison prints the chosen teams side by side, one metric per row.
// The best value in each row is marked with "*".
func PrintComparison(w io.Writer, stats []model.TeamStat) {
	header := []any{"METRIC"}
	for _, s := range stats {
		header = append(header, s.Team)
	}

	table := newTable(w)
	table.Header(header...)

	mp := []any{"Matches"}
	for _, s := range stats {
		mp = append(mp, strconv.Itoa(s.MatchesPlayed))
	}
	table.Append(mp...)

	for _, m := range model.Metrics {
		best := bestIndex(stats, m.Key)
		row := []any{m.Label}
		for i, s := range stats {
			cell := metricCell(s, m.Key)
			if i == best {
				cell = "*" + cell
			}
			row = append(row, cell)
		}
		table.Append(row...)
	}
	table.Render()
}

// bestIndex returns the team with the strictly highest value, -1 if none
// stands out or a single team is shown.
func bestIndex(stats []model.TeamStat, k model.MetricKey) int {
	if len(stats) < 2 {
		return -1
	}
	best, tie := 0, false
	for i := 1; i < len(stats); i++ {
		switch v, b := stats[i].Value(k), stats[best].Value(k); {
		case v > b:
			best, tie = i, false
		case v == b:
			tie = true
		}
	}
	if tie || stats[best].Value(k) == 0 {
		return -1
	}
	return best
}

// PrintTeamDetail prints one team's averages, capabilities and match history.
func PrintTeamDetail(w io.Writer, d aggregator.TeamDetail) {
	fmt.Fprintf(w, "\nTeam %s", d.Team)
	if d.Stat != nil {
		s := d.Stat
		fmt.Fprintf(w, "  |  Matches: %d  |  Overall: %s  |  Auto: %s  |  Tele: %s  |  Def: %s  |  EPA: %s  |  Source: %s",
			s.MatchesPlayed, f1(s.AvgOverall), f1(s.AvgAutoPoints), f1(s.AvgTeleopPoints),
			f1(s.AvgDefenceRating), metricCell(*s, model.MetricEPA), s.Source)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Capabilities: %s\n\n", capabilityList(d.Capabilities))

	if len(d.Matches) == 0 {
		fmt.Fprintln(w, "No matches scouted.")
		return
	}

	table := newTable(w)
	table.Header("MATCH", "ALLIANCE", "AUTO", "TELE", "TOTAL", "CORAL", "ALGAE", "DEF", "CAGE", "NOTES")
	for _, m := range d.Matches {
		def := ""
		if m.PlayedDefence {
			def = "yes"
		}
		notes := m.Comments
		if m.Disabled {
			notes = strings.TrimSpace("DISABLED " + notes)
		}
		table.Append(
			string(m.MatchType)+m.MatchNumber,
			string(m.Alliance),
			strconv.Itoa(m.AutoPoints),
			strconv.Itoa(m.TeleopPoints),
			strconv.Itoa(m.TotalPoints),
			strconv.Itoa(m.Coral),
			strconv.Itoa(m.Algae),
			def,
			string(m.Cage),
			notes,
		)
	}
	table.Render()
}

func capabilityList(c aggregator.Capabilities) string {
	names := c.Names()
	if len(names) == 0 {
		return missing
	}
	return strings.Join(names, ", ")
}

// PrintEntries prints raw stored records, one per row.
func PrintEntries(w io.Writer, records []model.MatchRecord) {
	table := newTable(w)
	table.Header("ID", "TIME", "MATCH", "TEAM", "ALLIANCE", "START", "AUTO", "TELE", "DEF", "CAGE")
	for _, r := range records {
		auto, teleop := scoring.Match(r)
		def := ""
		if r.Teleop.PlayedDefence {
			def = strconv.Itoa(r.Endgame.DefenceLevel)
		}
		start := string(r.StartPosition)
		if start == "" {
			start = missing
		}
		table.Append(
			shortID(r.ID),
			time.UnixMilli(r.Timestamp).Format("2006-01-02 15:04"),
			string(r.MatchType)+r.MatchNumber,
			r.TeamNumber,
			string(r.Alliance),
			start,
			strconv.Itoa(auto),
			strconv.Itoa(teleop),
			def,
			string(r.Endgame.Cage.Normalize()),
		)
	}
	table.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// PrintSummary prints the store overview.
func PrintSummary(w io.Writer, ov storage.Overview) {
	fmt.Fprintf(w, "\n=== Scouting Summary ===\n\n")
	fmt.Fprintf(w, "  Records stored : %d\n", ov.TotalRecords)
	fmt.Fprintf(w, "  Teams scouted  : %d\n", ov.UniqueTeams)
	fmt.Fprintf(w, "  Time range     : %s → %s\n",
		time.UnixMilli(ov.EarliestMillis).Format("2006-01-02 15:04"),
		time.UnixMilli(ov.LatestMillis).Format("2006-01-02 15:04"))

	if len(ov.MatchTypes) == 0 {
		return
	}
	fmt.Fprintf(w, "\n--- Match Types ---\n\n")
	table := newTable(w)
	table.Header("TYPE", "RECORDS")
	for _, t := range ov.MatchTypes {
		table.Append(model.MatchType(t.MatchType).String(), strconv.Itoa(t.Records))
	}
	table.Render()
}

// PrintRatingsStatus prints a one-line external ratings status.
func PrintRatingsStatus(w io.Writer, st ratings.Status, teams int, at time.Time) {
	switch st {
	case ratings.StatusLoaded:
		cOK.Fprintf(w, "EPA: loaded %d teams at %s\n", teams, at.Format("15:04:05"))
	case ratings.StatusUnavailable:
		cWarn.Fprintln(w, "EPA: unavailable, showing local data only")
	default:
		cOff.Fprintln(w, "EPA: off")
	}
}

// PrintQuery prints the result of a raw SQL query.
func PrintQuery(w io.Writer, cols []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no rows)")
		return
	}
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	table := newTable(w)
	table.Header(header...)
	for _, row := range rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		table.Append(cells...)
	}
	table.Render()
	fmt.Fprintf(w, "\n(%d rows)\n", len(rows))
}
