// Package ui renders the terminal output of the godotserve CLI.
//
// The components follow a "run once and exit" pattern: they print polished
// boxes and step lists but never take over the terminal.
//
//   - Header: command banner with ordered parameters
//   - Banner: the "server running" block with URL and audio mode hint
//   - Progress: step list with an optional progress bar
//   - Result: success, warning and failure boxes
//   - Runner: header, steps and result for multi-step commands
//   - Confirm: typed confirmation before destructive operations
//
// Example:
//
//	runner := ui.NewRunner(ui.RunnerConfig{
//	    Title:     "Certificate",
//	    Command:   "godotserve cert ensure",
//	    StepNames: []string{"Check files", "Load certificate"},
//	})
//
//	err := runner.Run(func(onStep ui.StepCallback) (map[string]string, error) {
//	    onStep(1, ui.StepRunning, "")
//	    // ... do work ...
//	    onStep(1, ui.StepComplete, "existing")
//	    return nil, nil
//	})
//
// Log output goes to stderr through package logging, so it never interleaves
// with the boxes written to stdout.
package ui
