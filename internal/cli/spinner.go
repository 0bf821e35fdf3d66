package cli

import (
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Progress is a terminal spinner shown while a command waits on remote
// collaborators. In quiet mode it does nothing so output stays pipeable.
type Progress struct {
	spin *spinner.Spinner
}

// StartProgress starts a spinner with the given suffix message.
// Call Stop (or Fail) exactly once when the operation finishes.
func StartProgress(quiet bool, suffix string) *Progress {
	if quiet {
		return &Progress{}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + suffix
	s.Start()
	return &Progress{spin: s}
}

// Stop halts the spinner and clears the line.
func (p *Progress) Stop() {
	if p.spin != nil {
		p.spin.Stop()
	}
}

// Fail halts the spinner leaving a red failure message behind.
func (p *Progress) Fail(msg string) {
	if p.spin != nil {
		p.spin.FinalMSG = text.FgRed.Sprint(msg) + "\n"
		p.spin.Stop()
	}
}
