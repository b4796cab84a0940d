package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"

	"github.com/metacli/setup/internal/domain/detect"
)

// Terminal colors shared by the presenter and the status command.
var (
	colorSuccess = lipgloss.AdaptiveColor{Light: "#40a02b", Dark: "#a6e3a1"}
	colorError   = lipgloss.AdaptiveColor{Light: "#d20f39", Dark: "#f38ba8"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6c6f85", Dark: "#6c7086"}
	colorAccent  = lipgloss.AdaptiveColor{Light: "#1e66f5", Dark: "#89b4fa"}
)

var (
	percentStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	labelStyle   = lipgloss.NewStyle().Foreground(colorMuted).Width(14)
)

// consolePresenter renders run progress to a terminal and turns SIGINT into
// a cooperative cancellation request.
type consolePresenter struct {
	out       io.Writer
	cancelled atomic.Bool
	sigCh     chan os.Signal
}

func newConsolePresenter(out io.Writer) *consolePresenter {
	return &consolePresenter{out: out}
}

// watchInterrupts starts honoring Ctrl+C as a cancellation request.
func (p *consolePresenter) watchInterrupts() {
	p.sigCh = make(chan os.Signal, 1)
	signal.Notify(p.sigCh, os.Interrupt)
	go func() {
		for range p.sigCh {
			if p.cancelled.CompareAndSwap(false, true) {
				fmt.Fprintln(p.out, mutedStyle.Render("Cancelling after the current step..."))
			}
		}
	}()
}

// stopWatching restores default interrupt handling.
func (p *consolePresenter) stopWatching() {
	if p.sigCh != nil {
		signal.Stop(p.sigCh)
		close(p.sigCh)
	}
}

// OnProgress renders one progress line.
func (p *consolePresenter) OnProgress(percent int, description string) {
	fmt.Fprintf(p.out, "%s %s\n", percentStyle.Render(fmt.Sprintf("[%3d%%]", percent)), description)
}

// OnLog renders one informational line.
func (p *consolePresenter) OnLog(line string) {
	fmt.Fprintln(p.out, mutedStyle.Render(line))
}

// CancelRequested reports whether Ctrl+C was pressed.
func (p *consolePresenter) CancelRequested() bool {
	return p.cancelled.Load()
}

// OnComplete renders the terminal outcome.
func (p *consolePresenter) OnComplete(record *detect.Record, err error) {
	if err != nil {
		fmt.Fprintln(p.out, errorStyle.Render("✗ Operation did not complete"))
		return
	}
	fmt.Fprintln(p.out, successStyle.Render("✓ Operation completed"))
	if record != nil {
		fmt.Fprintf(p.out, "%s%s at %s\n",
			labelStyle.Render("Installed:"),
			record.Version, record.InstallPath)
		fmt.Fprintf(p.out, "%s%s\n",
			labelStyle.Render("Components:"),
			componentList(record.Components))
	}
}

// componentList renders the enabled components in stable order.
func componentList(components detect.Components) string {
	var names []string
	for _, kind := range detect.AllComponents() {
		if components[kind] {
			names = append(names, kind.String())
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
