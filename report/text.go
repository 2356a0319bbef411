// Package report renders run summaries for people and machines.
//
// The text form is for terminals. The canonical JSON form (RFC 8785) is the
// only machine-readable artifact; its SHA-256 digest is what replays and
// evidence files compare.
package report

import (
	"fmt"
	"io"

	"github.com/lattice-substrate/cryptval/runner"
)

// Style decorates text report fields. Nil functions leave text unchanged.
type Style struct {
	Pass func(string) string
	Fail func(string) string
	Dim  func(string) string
}

func (s Style) apply(fn func(string) string, text string) string {
	if fn == nil {
		return text
	}
	return fn(text)
}

// Status words are padded before styling so columns line up regardless of
// escape sequences.
const (
	passWord = "passed  "
	failWord = "FAILED  "
)

// WriteText writes one line per result followed by a totals line.
func WriteText(w io.Writer, s *runner.Summary, style Style) error {
	if s == nil {
		return fmt.Errorf("report: summary is nil")
	}
	for _, r := range s.Results {
		var err error
		if r.Passed {
			_, err = fmt.Fprintf(w, "%s%s\n", style.apply(style.Pass, passWord), r.Name)
		} else {
			detail := style.apply(style.Dim, fmt.Sprintf("[%s] %s", r.Class, r.Message))
			_, err = fmt.Fprintf(w, "%s%s %s\n", style.apply(style.Fail, failWord), r.Name, detail)
		}
		if err != nil {
			return fmt.Errorf("report: write result line: %w", err)
		}
	}

	passed, failed := s.Counts()
	mode := "default"
	if s.Thorough {
		mode = "thorough"
	}
	verdict := style.apply(style.Pass, "All validators passed.")
	if !s.Aggregate {
		verdict = style.apply(style.Fail, "Some validators FAILED.")
	}
	if _, err := fmt.Fprintf(w, "\n%s %d passed, %d failed (%s mode)\n", verdict, passed, failed, mode); err != nil {
		return fmt.Errorf("report: write totals line: %w", err)
	}
	return nil
}
