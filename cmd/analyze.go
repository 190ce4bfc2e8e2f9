package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ga2230/reefscout/internal/aggregator"
	"github.com/ga2230/reefscout/internal/analysis"
)

var (
	analyzeModel  string
	analyzeAPIKey string
	analyzeView   viewFlags
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "AI scouting write-ups grounded in the stored data (requires ANTHROPIC_API_KEY)",
}

var analyzeTeamCmd = &cobra.Command{
	Use:   "team <team-number> <question>",
	Short: "Ask about one team's averages and match history",
	Args:  cobra.ExactArgs(2),
	RunE:  runAnalyzeTeam,
}

var analyzeCompareCmd = &cobra.Command{
	Use:   "compare <question> <team> [<team>...]",
	Short: "Ask about up to 8 teams side by side",
	Args:  cobra.RangeArgs(2, aggregator.MaxCompare+1),
	RunE:  runAnalyzeCompare,
}

func init() {
	analyzeCmd.PersistentFlags().StringVar(&analyzeModel, "model", "", "Anthropic model to use (default $ANALYZE_MODEL or "+analysis.DefaultModel+")")
	analyzeCmd.PersistentFlags().StringVar(&analyzeAPIKey, "api-key", "", "Anthropic API key (falls back to $ANTHROPIC_API_KEY)")
	analyzeCmd.PersistentFlags().BoolVar(&analyzeView.excludeDefense, "exclude-defense", false, "drop matches where the robot played defence")
	analyzeCmd.PersistentFlags().BoolVar(&analyzeView.epa, "epa", false, "blend Statbotics EPA into the numbers sent")

	analyzeCmd.AddCommand(analyzeTeamCmd)
	analyzeCmd.AddCommand(analyzeCompareCmd)
}

func newAnalysisClient() (*analysis.Client, error) {
	key, modelID := analyzeAPIKey, analyzeModel
	if key == "" {
		key = cfg.AnthropicAPIKey
	}
	if modelID == "" {
		modelID = cfg.AnalyzeModel
	}
	return analysis.NewClient(key, modelID)
}

func runAnalyzeTeam(cmd *cobra.Command, args []string) error {
	team, question := args[0], args[1]
	if !isKnownTeam(team) {
		return fmt.Errorf("team %s is not in the known team list", team)
	}
	client, err := newAnalysisClient()
	if err != nil {
		return err
	}
	opts, err := analyzeView.options()
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	stats, records, _, err := computeStats(cmd.Context(), db, opts)
	if err != nil {
		return err
	}
	contextJSON, err := analysis.TeamContext(aggregator.Detail(team, records, aggregator.Find(stats, team)))
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}
	return streamAnswer(cmd, client, contextJSON, question)
}

func runAnalyzeCompare(cmd *cobra.Command, args []string) error {
	question, teams := args[0], args[1:]
	for _, t := range teams {
		if !isKnownTeam(t) {
			return fmt.Errorf("team %s is not in the known team list", t)
		}
	}
	client, err := newAnalysisClient()
	if err != nil {
		return err
	}
	opts, err := analyzeView.options()
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	stats, _, _, err := computeStats(cmd.Context(), db, opts)
	if err != nil {
		return err
	}
	contextJSON, err := analysis.CompareContext(aggregator.Select(stats, teams, aggregator.MaxCompare))
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}
	return streamAnswer(cmd, client, contextJSON, question)
}

func streamAnswer(cmd *cobra.Command, client *analysis.Client, contextJSON, question string) error {
	fmt.Fprintln(os.Stdout, "\n─── AI Analysis ─────────────────────────────────────")
	err := client.Ask(cmd.Context(), os.Stdout, contextJSON, question)
	fmt.Fprintln(os.Stdout, "\n─────────────────────────────────────────────────────")
	return err
}
