// Package scoring converts phase tallies into match points.
package scoring

import "github.com/ga2230/reefscout/internal/model"

// Table is a fixed point value per scoring action.
type Table struct {
	L4, L3, L2, L1 int
	Processor, Net int
	PassedLine     int // auto only
}

// Point tables for the REEFSCAPE season.
var (
	AutoTable   = Table{L4: 7, L3: 6, L2: 4, L1: 3, Processor: 6, Net: 4, PassedLine: 3}
	TeleopTable = Table{L4: 5, L3: 4, L2: 3, L1: 2, Processor: 6, Net: 4}
)

// Phase sums count × points over the scoring actions. Misses score nothing.
func Phase(c model.Counts, t Table) int {
	return c.L4*t.L4 + c.L3*t.L3 + c.L2*t.L2 + c.L1*t.L1 +
		c.Processor*t.Processor + c.Net*t.Net
}

// Auto scores the autonomous phase, including the line-cross bonus.
func Auto(a model.AutoPhase) int {
	pts := Phase(a.Counts, AutoTable)
	if a.PassedLine {
		pts += AutoTable.PassedLine
	}
	return pts
}

// Teleop scores the teleoperated phase.
func Teleop(p model.TeleopPhase) int {
	return Phase(p.Counts, TeleopTable)
}

// Match returns the auto and teleop points of one record.
func Match(r model.MatchRecord) (auto, teleop int) {
	return Auto(r.Auto), Teleop(r.Teleop)
}
