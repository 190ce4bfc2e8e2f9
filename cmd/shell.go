package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ga2230/reefscout/internal/aggregator"
	"github.com/ga2230/reefscout/internal/model"
	"github.com/ga2230/reefscout/internal/ratings"
	"github.com/ga2230/reefscout/internal/report"
	"github.com/ga2230/reefscout/internal/storage"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session against the store. View settings (sort, defence filter, EPA blend, search) persist between commands. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

// shellSession holds the view state of one REPL session.
type shellSession struct {
	ctx    context.Context
	db     *storage.DB
	opts   aggregator.Options
	groups []model.MetricGroup

	// src is created on first use and kept so EPA is fetched at most once.
	src          *ratings.Source
	closeRatings func()
}

func runShell(cmd *cobra.Command, _ []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	s := &shellSession{ctx: cmd.Context(), db: db, opts: aggregator.DefaultOptions(), closeRatings: func() {}}
	defer func() { s.closeRatings() }()

	cGreeting.Println("reefscout shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("reefscout")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		cmd, args := tokens[0], tokens[1:]

		switch cmd {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "board", "lb":
			s.board(args)
		case "sort":
			s.setSort(args)
		case "defense", "defence":
			s.toggle(args, &s.opts.ExcludeDefense, "excluding defence matches")
		case "epa":
			s.toggle(args, &s.opts.BlendExternal, "blending EPA")
		case "search":
			s.opts.Search = strings.Join(args, "")
			if s.opts.Search == "" {
				cMuted.Println("search cleared")
			}
		case "team":
			if len(args) != 1 {
				cError.Fprintln(os.Stderr, "usage: team <team-number>")
				continue
			}
			s.team(args[0])
		case "compare":
			if len(args) == 0 || len(args) > aggregator.MaxCompare {
				cError.Fprintf(os.Stderr, "usage: compare <team> [...] (up to %d)\n", aggregator.MaxCompare)
				continue
			}
			s.compare(args)
		case "list":
			s.list(args)
		case "summary":
			s.summary()
		case "status":
			s.status()
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", cmd)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"board [group,...]", "show the leaderboard, optionally only some column groups"},
		{"sort <metric> [asc|desc]", "change the ranking metric; same metric again flips direction"},
		{"defense on|off", "exclude matches where the robot played defence"},
		{"epa on|off", "blend Statbotics EPA into auto, teleop and total"},
		{"search [text]", "filter teams by number; no text clears the filter"},
		{"team <number>", "one team's averages, capabilities and matches"},
		{"compare <team> [...]", "side by side comparison of up to 8 teams"},
		{"list [team]", "raw stored records"},
		{"summary", "store overview"},
		{"status", "current view settings and EPA status"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-28s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

// stats aggregates the store with the current view settings.
func (s *shellSession) stats() ([]model.TeamStat, []model.MatchRecord, bool) {
	records, err := s.db.ReadAll()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return nil, nil, false
	}
	var ext model.Ratings
	if s.opts.BlendExternal || s.opts.SortKey == model.MetricEPA {
		if s.src == nil {
			s.src, s.closeRatings = newRatingsSource(s.ctx)
		}
		ext = s.src.Get(s.ctx)
	}
	return aggregator.Aggregate(records, cfg.Teams, s.opts, ext), records, true
}

func (s *shellSession) board(args []string) {
	if len(args) > 0 {
		groups, err := report.ParseGroups(strings.Join(args, ","))
		if err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
		s.groups = groups
	}
	stats, _, ok := s.stats()
	if !ok {
		return
	}
	if len(stats) == 0 {
		cMuted.Println("No teams match.")
		return
	}
	report.PrintLeaderboard(os.Stdout, stats, report.LeaderboardOptions{
		Groups:  s.groups,
		SortKey: s.opts.SortKey,
		Desc:    s.opts.SortDescending,
	})
}

// setSort follows the column-header convention: choosing a new metric sorts
// best-first, choosing the current one flips the direction.
func (s *shellSession) setSort(args []string) {
	if len(args) == 0 {
		cError.Fprintln(os.Stderr, "usage: sort <metric> [asc|desc]")
		return
	}
	k, err := model.ParseMetricKey(args[0])
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	switch {
	case len(args) > 1 && args[1] == "asc":
		s.opts.SortDescending = false
	case len(args) > 1 && args[1] == "desc":
		s.opts.SortDescending = true
	case k == s.opts.SortKey:
		s.opts.SortDescending = !s.opts.SortDescending
	default:
		s.opts.SortDescending = true
	}
	s.opts.SortKey = k
	dir := "descending"
	if !s.opts.SortDescending {
		dir = "ascending"
	}
	cMuted.Printf("sorting by %s, %s\n", k, dir)
}

func (s *shellSession) toggle(args []string, flag *bool, what string) {
	switch {
	case len(args) == 0:
		*flag = !*flag
	case args[0] == "on":
		*flag = true
	case args[0] == "off":
		*flag = false
	default:
		cError.Fprintln(os.Stderr, "expected on or off")
		return
	}
	state := "off"
	if *flag {
		state = "on"
	}
	cMuted.Printf("%s: %s\n", what, state)
}

func (s *shellSession) team(team string) {
	if !isKnownTeam(team) {
		cWarn.Fprintf(os.Stderr, "team %s is not in the known team list\n", team)
		return
	}
	stats, records, ok := s.stats()
	if !ok {
		return
	}
	report.PrintTeamDetail(os.Stdout, aggregator.Detail(team, records, aggregator.Find(stats, team)))
}

func (s *shellSession) compare(teams []string) {
	stats, _, ok := s.stats()
	if !ok {
		return
	}
	selected := aggregator.Select(stats, teams, aggregator.MaxCompare)
	if len(selected) == 0 {
		cMuted.Println("None of those teams are in the current view.")
		return
	}
	report.PrintComparison(os.Stdout, selected)
}

func (s *shellSession) list(args []string) {
	records, err := s.db.ReadAll()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(args) > 0 {
		var filtered []model.MatchRecord
		for _, r := range records {
			if r.TeamNumber == args[0] {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}
	if len(records) == 0 {
		cMuted.Println("No records stored yet.")
		return
	}
	report.PrintEntries(os.Stdout, records)
}

func (s *shellSession) summary() {
	ov, err := s.db.Overview()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if ov.TotalRecords == 0 {
		cMuted.Println("No records stored yet.")
		return
	}
	report.PrintSummary(os.Stdout, ov)
}

func (s *shellSession) status() {
	fmt.Printf("  sort    : %s (descending=%v)\n", s.opts.SortKey, s.opts.SortDescending)
	fmt.Printf("  defence : excluded=%v\n", s.opts.ExcludeDefense)
	fmt.Printf("  epa     : %v\n", s.opts.BlendExternal)
	fmt.Printf("  search  : %q\n", s.opts.Search)
	fmt.Print("  ")
	if s.src == nil {
		report.PrintRatingsStatus(os.Stdout, ratings.StatusOff, 0, time.Time{})
		return
	}
	printRatingsStatus(os.Stdout, s.src)
}
