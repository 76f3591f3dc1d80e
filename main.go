// Package main is the entry point for the prs CLI tool, which replays
// cricsheet match files and computes each player's Pressure Resistance Score.
package main

import "github.com/pable/go-cricket-prs/cmd"

func main() {
	cmd.Execute()
}
