package main

import (
	"fmt"
	"io"
	"time"

	"ci-reaper/src/contracts"
)

// printReport writes a human-readable cycle report.
func printReport(w io.Writer, r *contracts.CycleReport) {
	fmt.Fprintf(w, "%s  %s  branch %s  %s", r.CycleID, r.StartedAt.Format(time.RFC1123Z), r.Branch, r.Outcome)
	if r.DryRun {
		fmt.Fprint(w, "  (dry run)")
	}
	fmt.Fprintf(w, "  %s\n", r.Duration().Round(time.Millisecond))

	for _, c := range r.Checks {
		status := "ok"
		if c.Failed() {
			status = "error: " + c.Error
		}
		fmt.Fprintf(w, "  %-9s %-30s %s\n", c.Provider, c.Repository, status)
		for _, x := range c.Cancellations {
			verb := "cancelled"
			if x.DryRun {
				verb = "would cancel"
			}
			fmt.Fprintf(w, "            %s #%s (%s", verb, x.BuildNumber, x.Reason)
			if x.Detail != "" {
				fmt.Fprintf(w, ": %s", x.Detail)
			}
			fmt.Fprintln(w, ")")
		}
	}
	if r.Pending > 0 {
		fmt.Fprintf(w, "  %d checks still pending at the deadline\n", r.Pending)
	}
}
