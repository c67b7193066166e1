package regen

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode"
)

// Report is the outcome of a planned (and possibly applied) run.
type Report struct {
	Tenant      string
	Namespace   string
	Assignments []Assignment
	Skipped     []Skip
	DryRun      bool

	// Written is the number of rows updated by Apply.
	Written int
}

// Total returns the number of users in the batch.
func (r *Report) Total() int {
	return len(r.Assignments) + len(r.Skipped)
}

// Changed returns the number of assignments that differ from the current email.
func (r *Report) Changed() int {
	n := 0
	for _, a := range r.Assignments {
		if a.Changed() {
			n++
		}
	}
	return n
}

// Unchanged returns the number of assignments equal to the current email.
func (r *Report) Unchanged() int {
	return len(r.Assignments) - r.Changed()
}

// Print writes a human readable summary: one line per changed assignment,
// one line per skipped user, then totals.
func (r *Report) Print(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	for _, a := range r.Assignments {
		if !a.Changed() {
			continue
		}
		fmt.Fprintf(tw, "update\t%s\t%s\t%s -> %s\n", a.UserID, printable(a.Name), printable(a.Current), a.Email)
	}
	for _, s := range r.Skipped {
		fmt.Fprintf(tw, "skip\t%s\t%s\t%s (%s)\n", s.UserID, printable(s.Name), printable(s.Current), s.Reason())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	mode := "applied"
	if r.DryRun {
		mode = "dry run"
	}
	_, err := fmt.Fprintf(w,
		"\nSummary (%s, tenant %s, namespace %s):\n  Total: %d\n  Changed: %d\n  Unchanged: %d\n  Skipped: %d\n  Written: %d\n",
		mode, r.Tenant, r.Namespace, r.Total(), r.Changed(), r.Unchanged(), len(r.Skipped), r.Written,
	)
	return err
}

// printable replaces tabs and newlines with spaces and drops other control
// characters, so stored values cannot break the report layout.
func printable(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
