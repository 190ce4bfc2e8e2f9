package model

import (
	"fmt"
	"strings"
)

// MetricKey names a sortable TeamStat column.
type MetricKey string

const (
	MetricOverall   MetricKey = "overall"
	MetricTotal     MetricKey = "total"
	MetricAuto      MetricKey = "auto"
	MetricTeleop    MetricKey = "teleop"
	MetricCoral     MetricKey = "coral"
	MetricAccuracy  MetricKey = "accuracy"
	MetricAlgae     MetricKey = "algae"
	MetricL4        MetricKey = "l4"
	MetricL3        MetricKey = "l3"
	MetricL2        MetricKey = "l2"
	MetricL1        MetricKey = "l1"
	MetricNet       MetricKey = "net"
	MetricProcessor MetricKey = "processor"
	MetricDefence   MetricKey = "defence"
	MetricEPA       MetricKey = "epa"
	MetricMatches   MetricKey = "matches"
)

// MetricGroup clusters metrics for column selection.
type MetricGroup string

const (
	GroupSummary MetricGroup = "Summary"
	GroupCoral   MetricGroup = "Coral"
	GroupAlgae   MetricGroup = "Algae"
	GroupMisc    MetricGroup = "Misc"
	GroupAPI     MetricGroup = "API"
)

// Metric describes one leaderboard column.
type Metric struct {
	Key   MetricKey
	Label string
	Group MetricGroup
}

// Metrics is the leaderboard column catalogue in display order.
var Metrics = []Metric{
	{MetricOverall, "Overall", GroupSummary},
	{MetricTotal, "Total", GroupSummary},
	{MetricAuto, "Auto", GroupSummary},
	{MetricTeleop, "Tele", GroupSummary},
	{MetricCoral, "Coral", GroupCoral},
	{MetricAccuracy, "Acc %", GroupCoral},
	{MetricAlgae, "Algae", GroupAlgae},
	{MetricL4, "L4", GroupCoral},
	{MetricL3, "L3", GroupCoral},
	{MetricL2, "L2", GroupCoral},
	{MetricL1, "L1", GroupCoral},
	{MetricNet, "Net", GroupAlgae},
	{MetricProcessor, "Proc", GroupAlgae},
	{MetricDefence, "Def", GroupMisc},
	{MetricEPA, "EPA", GroupAPI},
}

// IsCoralLevel reports whether k is one of the per-level coral columns.
func (k MetricKey) IsCoralLevel() bool {
	switch k {
	case MetricL4, MetricL3, MetricL2, MetricL1:
		return true
	}
	return false
}

// ParseMetricKey validates a user-supplied sort key.
func ParseMetricKey(s string) (MetricKey, error) {
	k := MetricKey(strings.ToLower(strings.TrimSpace(s)))
	if k == MetricMatches {
		return k, nil
	}
	for _, m := range Metrics {
		if m.Key == k {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// MetricsInGroup returns the catalogue entries of one group, in display order.
func MetricsInGroup(g MetricGroup) []Metric {
	var out []Metric
	for _, m := range Metrics {
		if m.Group == g {
			out = append(out, m)
		}
	}
	return out
}

// Value returns the numeric value of the metric for s.
// A missing EPA rating reads as 0.
func (s TeamStat) Value(k MetricKey) float64 {
	switch k {
	case MetricOverall:
		return s.AvgOverall
	case MetricTotal:
		return s.AvgTotalPoints
	case MetricAuto:
		return s.AvgAutoPoints
	case MetricTeleop:
		return s.AvgTeleopPoints
	case MetricCoral:
		return s.AvgCoral
	case MetricAccuracy:
		return s.AvgCoralAccuracy
	case MetricAlgae:
		return s.AvgAlgae
	case MetricL4:
		return s.AvgL4
	case MetricL3:
		return s.AvgL3
	case MetricL2:
		return s.AvgL2
	case MetricL1:
		return s.AvgL1
	case MetricNet:
		return s.AvgNet
	case MetricProcessor:
		return s.AvgProcessor
	case MetricDefence:
		return s.AvgDefenceRating
	case MetricEPA:
		if s.EPATotal == nil {
			return 0
		}
		return *s.EPATotal
	case MetricMatches:
		return float64(s.MatchesPlayed)
	default:
		return 0
	}
}
