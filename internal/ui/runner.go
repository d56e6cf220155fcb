package ui

import (
	"fmt"
	"io"
	"os"
	"time"
)

// RunnerConfig describes a multi-step command.
type RunnerConfig struct {
	Title           string   // e.g., "Certificate"
	Command         string   // e.g., "godotserve cert ensure"
	Params          []Param  // Shown in the header
	StepNames       []string // One entry per step
	Troubleshooting []string // Shown when the operation fails
	Output          io.Writer
}

// StepCallback is how an operation reports progress. Step numbers are 1-based.
type StepCallback func(stepNumber int, status StepStatus, message string)

// Operation is the work a Runner wraps. The returned details are shown in
// the success box.
type Operation func(onStep StepCallback) (map[string]string, error)

// Runner prints the header, streams step updates and finishes with a
// result box.
type Runner struct {
	config   RunnerConfig
	progress *Progress
	output   io.Writer
	width    int
}

// NewRunner creates a runner for the given command
func NewRunner(config RunnerConfig) *Runner {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	width := GetTerminalWidth()
	progress := NewProgress("", config.StepNames...)
	progress.SetWidth(width)
	progress.ShowBar = false

	return &Runner{
		config:   config,
		progress: progress,
		output:   config.Output,
		width:    width,
	}
}

// Progress exposes the step list, mainly for tests.
func (r *Runner) Progress() *Progress {
	return r.progress
}

// Run executes operation and renders its outcome. The operation's error is returned unchanged.
func (r *Runner) Run(operation Operation) error {
	start := time.Now()

	_, _ = fmt.Fprintln(r.output, NewHeader(r.config.Title, r.config.Command, r.config.Params...).SetWidth(r.width).Render())
	_, _ = fmt.Fprintln(r.output)

	details, err := operation(r.onStep)
	duration := time.Since(start).Round(time.Millisecond)

	_, _ = fmt.Fprintln(r.output)
	if err != nil {
		result := NewFailureResult(r.config.Title+" failed", err, r.config.Troubleshooting)
		_, _ = fmt.Fprintln(r.output, result.SetWidth(r.width).Render())
		return err
	}

	result := NewSuccessResult(r.config.Title+" complete", details)
	result.AddDetail("Duration", duration.String())
	_, _ = fmt.Fprintln(r.output, result.SetWidth(r.width).Render())
	return nil
}

func (r *Runner) onStep(stepNumber int, status StepStatus, message string) {
	if stepNumber < 1 || stepNumber > r.progress.Total() {
		return
	}
	r.progress.UpdateStep(stepNumber, status, message)

	// Running lines are overwritten by the final state of the step.
	line := r.progress.RenderStep(r.progress.Steps[stepNumber-1])
	if status == StepRunning {
		_, _ = fmt.Fprint(r.output, line+"\r")
		return
	}
	_, _ = fmt.Fprintln(r.output, line)
}
