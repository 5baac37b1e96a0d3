package batch

import (
	"fmt"
	"io"
	"strings"
)

type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeFailed    Outcome = "failed"
	OutcomeSkipped   Outcome = "skipped"
	// OutcomePlanned is a dry-run task; nothing was written.
	OutcomePlanned Outcome = "planned"
)

// Result is what happened to one task.
type Result struct {
	Path    string
	Outcome Outcome
	Status  int
	Commit  string
	// RemoteSHA is the probed blob of a planned task, empty if absent.
	RemoteSHA string
	Err       error
}

// Report collects task results in manifest order.
type Report struct {
	Total   int
	results []Result
}

func newReport(total int) *Report {
	return &Report{Total: total}
}

func (r *Report) add(res Result) {
	r.results = append(r.results, res)
}

func (r *Report) Results() []Result {
	out := make([]Result, len(r.results))
	copy(out, r.results)
	return out
}

func (r *Report) count(outcomes ...Outcome) int {
	n := 0
	for _, res := range r.results {
		for _, o := range outcomes {
			if res.Outcome == o {
				n++
			}
		}
	}
	return n
}

// Succeeded counts tasks whose write was answered with 200 or 201.
func (r *Report) Succeeded() int { return r.count(OutcomeCreated, OutcomeUpdated) }

func (r *Report) Failed() int    { return r.count(OutcomeFailed) }
func (r *Report) Skipped() int   { return r.count(OutcomeSkipped) }
func (r *Report) Unchanged() int { return r.count(OutcomeUnchanged) }

// Attempted counts tasks that reached the uploader.
func (r *Report) Attempted() int {
	return len(r.results) - r.Skipped()
}

func (r *Report) WriteSummary(w io.Writer, historyURL string) {
	fmt.Fprintf(w, "Summary: %d/%d files uploaded", r.Succeeded(), r.Total)
	var parts []string
	for _, c := range []struct {
		n    int
		what string
	}{{r.Failed(), "failed"}, {r.Skipped(), "skipped"}, {r.Unchanged(), "unchanged"}} {
		if c.n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c.n, c.what))
		}
	}
	if len(parts) > 0 {
		fmt.Fprintf(w, " (%s)", strings.Join(parts, ", "))
	}
	fmt.Fprintln(w)
	if historyURL != "" {
		fmt.Fprintf(w, "Commit history: %s\n", historyURL)
	}
}
