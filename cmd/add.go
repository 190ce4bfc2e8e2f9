package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ga2230/reefscout/internal/model"
	"github.com/ga2230/reefscout/internal/scoring"
	"github.com/ga2230/reefscout/internal/storage"
)

var (
	addRec       model.MatchRecord
	addMatchType string
	addAlliance  string
	addStart     string
	addCage      string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Append one scouting record",
	Long: `Append a single match record to the store. Counters default to zero.

Example:
  reefscout add --team 2230 --match 12 --alliance Red --start Middle \
    --auto-l4 1 --passed-line --tele-l4 3 --tele-net 2 --cage Deep --driving 4`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

func init() {
	f := addCmd.Flags()
	f.StringVar(&addRec.ID, "id", "", "record id (default: random UUID)")
	f.Int64Var(&addRec.Timestamp, "timestamp", 0, "unix milliseconds (default: now)")
	f.StringVar(&addRec.TeamNumber, "team", "", "team number")
	f.StringVar(&addRec.MatchNumber, "match", "", "match number")
	f.StringVar(&addMatchType, "type", string(model.MatchQualification), "match type: q, p, a or e")
	f.StringVar(&addAlliance, "alliance", string(model.AllianceRed), "alliance: Red or Blue")
	f.StringVar(&addStart, "start", "", `start position: Up, "Middle Up", Middle, "Middle Bottom", Bottom`)

	bindCounts(addCmd, "auto", &addRec.Auto.Counts)
	f.BoolVar(&addRec.Auto.PassedLine, "passed-line", false, "robot left the starting line in auto")
	bindCounts(addCmd, "tele", &addRec.Teleop.Counts)
	f.BoolVar(&addRec.Teleop.PlayedDefence, "played-defence", false, "robot played defence in teleop")

	f.IntVar(&addRec.Endgame.DefenceLevel, "defence-level", 0, "defence rating 0-5")
	f.IntVar(&addRec.Endgame.DrivingLevel, "driving", 0, "driving rating 0-5")
	f.IntVar(&addRec.Endgame.ScouterLevel, "scouter", 0, "scouter confidence 0-5")
	f.StringVar(&addCage, "cage", string(model.CageNone), "endgame: None, Park, Shallow or Deep")
	f.BoolVar(&addRec.Endgame.Disabled, "disabled", false, "robot was disabled during the match")
	f.StringVar(&addRec.Endgame.Comments, "comments", "", "free text notes")

	addCmd.MarkFlagRequired("team")
	addCmd.MarkFlagRequired("match")
}

// bindCounts registers the scoring counters of one phase under a prefix.
func bindCounts(cmd *cobra.Command, prefix string, c *model.Counts) {
	f := cmd.Flags()
	f.IntVar(&c.L4, prefix+"-l4", 0, prefix+" coral scored on L4")
	f.IntVar(&c.L3, prefix+"-l3", 0, prefix+" coral scored on L3")
	f.IntVar(&c.L2, prefix+"-l2", 0, prefix+" coral scored on L2")
	f.IntVar(&c.L1, prefix+"-l1", 0, prefix+" coral scored on L1")
	f.IntVar(&c.CoralMissed, prefix+"-coral-missed", 0, prefix+" coral missed")
	f.IntVar(&c.Processor, prefix+"-processor", 0, prefix+" algae scored in the processor")
	f.IntVar(&c.Net, prefix+"-net", 0, prefix+" algae scored in the net")
	f.IntVar(&c.AlgaeMissed, prefix+"-algae-missed", 0, prefix+" algae missed")
}

func runAdd(cmd *cobra.Command, args []string) error {
	r := addRec
	r.MatchType = model.MatchType(addMatchType)
	r.Alliance = model.Alliance(addAlliance)
	r.StartPosition = model.StartPosition(addStart)
	r.Endgame.Cage = model.Cage(addCage)
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Timestamp == 0 {
		r.Timestamp = time.Now().UnixMilli()
	}
	if !isKnownTeam(r.TeamNumber) {
		fmt.Fprintf(os.Stderr, "warning: team %s is not in the known team list and will not be ranked\n", r.TeamNumber)
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Append(r); err != nil {
		if errors.Is(err, storage.ErrDuplicateID) {
			return fmt.Errorf("a record with id %s already exists", r.ID)
		}
		return err
	}
	auto, teleop := scoring.Match(r)
	logger.Debug("record appended", zap.String("id", r.ID), zap.String("team", r.TeamNumber))
	fmt.Fprintf(os.Stdout, "Added %s: team %s %s%s, auto %d, teleop %d\n",
		r.ID, r.TeamNumber, string(r.MatchType), r.MatchNumber, auto, teleop)
	return nil
}
