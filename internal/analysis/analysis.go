// Package analysis asks a language model for a scouting write-up grounded
// in the aggregated statistics.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/ga2230/reefscout/internal/aggregator"
	"github.com/ga2230/reefscout/internal/model"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-haiku-4-5-20251001"

const systemPrompt = `You are an FRC REEFSCAPE scouting analyst helping a drive team pick
alliance partners and plan matches. You are given structured data from a
scouting tool and a question.

Rules:
- Answer ONLY from the data provided. Never invent or estimate statistics.
- Always cite specific numbers when making a claim.
- If a team has few matches, say the sample is small.
- If the data is insufficient to answer confidently, say so explicitly.
- Be concise and practical.

Metrics glossary:
- auto / teleop / total: average points per match in that phase (coral L4=7/5, L3=6/4, L2=4/3, L1=3/2 auto/teleop; processor 6, net 4).
- overall: 1.2*auto + teleop + 2*avgL4 + 1.5*defence.
- coral accuracy %: scored coral / (scored + missed coral), pooled over all matches; 0 when nothing was attempted.
- defence: average scout defence rating (0-5), only over matches where the robot defended.
- epa: Statbotics expected points added for the season; blended 3:2 local to EPA when source is "blended".
- cage: endgame result (Deep, Shallow, Park, None).`

// Client streams answers from the Anthropic Messages API.
type Client struct {
	api   anthropic.Client
	model string
}

// NewClient returns a client for apiKey. An empty model selects DefaultModel.
func NewClient(apiKey, modelID string, opts ...option.RequestOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("no API key: set ANTHROPIC_API_KEY or use --api-key")
	}
	if modelID == "" {
		modelID = DefaultModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Client{api: anthropic.NewClient(opts...), model: modelID}, nil
}

// Ask streams the answer to question about dataJSON into w.
func (c *Client) Ask(ctx context.Context, w io.Writer, dataJSON, question string) error {
	userMsg := fmt.Sprintf("DATA:\n%s\n\nQUESTION: %s", dataJSON, question)

	stream := c.api.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMsg)),
		},
	})

	for stream.Next() {
		evt := stream.Current()
		if evt.Type == "content_block_delta" {
			delta := evt.AsContentBlockDelta()
			if delta.Delta.Type == "text_delta" {
				fmt.Fprint(w, delta.Delta.AsTextDelta().Text)
			}
		}
	}
	if err := stream.Err(); err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "401") || strings.Contains(errStr, "authentication") {
			return fmt.Errorf("API authentication failed, check your API key")
		}
		return fmt.Errorf("streaming error: %w", err)
	}
	return nil
}

// teamDoc is the compact per-team summary sent to the model.
type teamDoc struct {
	Team         string   `json:"team"`
	Matches      int      `json:"matches"`
	Source       string   `json:"source,omitempty"`
	Overall      float64  `json:"overall"`
	Auto         float64  `json:"auto"`
	Teleop       float64  `json:"teleop"`
	Total        float64  `json:"total"`
	Coral        float64  `json:"coral"`
	CoralAccPct  float64  `json:"coral_accuracy_pct"`
	Algae        float64  `json:"algae"`
	L4           float64  `json:"l4"`
	L3           float64  `json:"l3"`
	L2           float64  `json:"l2"`
	L1           float64  `json:"l1"`
	Net          float64  `json:"net"`
	Processor    float64  `json:"processor"`
	Defence      float64  `json:"defence"`
	EPA          *float64 `json:"epa,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
}

func newTeamDoc(s model.TeamStat) teamDoc {
	return teamDoc{
		Team:        s.Team,
		Matches:     s.MatchesPlayed,
		Source:      string(s.Source),
		Overall:     s.AvgOverall,
		Auto:        s.AvgAutoPoints,
		Teleop:      s.AvgTeleopPoints,
		Total:       s.AvgTotalPoints,
		Coral:       s.AvgCoral,
		CoralAccPct: s.AvgCoralAccuracy,
		Algae:       s.AvgAlgae,
		L4:          s.AvgL4,
		L3:          s.AvgL3,
		L2:          s.AvgL2,
		L1:          s.AvgL1,
		Net:         s.AvgNet,
		Processor:   s.AvgProcessor,
		Defence:     s.AvgDefenceRating,
		EPA:         s.EPATotal,
	}
}

type matchDoc struct {
	Match    string `json:"match"`
	Alliance string `json:"alliance"`
	Auto     int    `json:"auto"`
	Teleop   int    `json:"teleop"`
	Coral    int    `json:"coral"`
	Algae    int    `json:"algae"`
	Defended bool   `json:"defended,omitempty"`
	Cage     string `json:"cage"`
	Disabled bool   `json:"disabled,omitempty"`
	Comments string `json:"comments,omitempty"`
}

// TeamContext serialises one team's detail into compact JSON.
func TeamContext(d aggregator.TeamDetail) (string, error) {
	t := teamDoc{Team: d.Team}
	if d.Stat != nil {
		t = newTeamDoc(*d.Stat)
	}
	t.Capabilities = d.Capabilities.Names()

	matches := make([]matchDoc, 0, len(d.Matches))
	for _, m := range d.Matches {
		matches = append(matches, matchDoc{
			Match:    string(m.MatchType) + m.MatchNumber,
			Alliance: string(m.Alliance),
			Auto:     m.AutoPoints,
			Teleop:   m.TeleopPoints,
			Coral:    m.Coral,
			Algae:    m.Algae,
			Defended: m.PlayedDefence,
			Cage:     string(m.Cage),
			Disabled: m.Disabled,
			Comments: m.Comments,
		})
	}

	doc := map[string]interface{}{
		"subject": "team",
		"team":    t,
		"matches": matches,
	}
	b, err := json.Marshal(doc)
	return string(b), err
}

// CompareContext serialises several teams, in rank order, into compact JSON.
func CompareContext(stats []model.TeamStat) (string, error) {
	teams := make([]teamDoc, 0, len(stats))
	for _, s := range stats {
		teams = append(teams, newTeamDoc(s))
	}
	doc := map[string]interface{}{
		"subject": "comparison",
		"teams":   teams,
	}
	b, err := json.Marshal(doc)
	return string(b), err
}
