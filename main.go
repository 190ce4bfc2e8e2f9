// Package main is the entry point for the reefscout CLI, which stores FRC
// REEFSCAPE scouting records and ranks teams by their averaged performance.
package main

import "github.com/ga2230/reefscout/cmd"

func main() {
	cmd.Execute()
}
