package ingest

import (
	"time"

	"marquee/internal/library"
	"marquee/internal/services"
)

// Status is the terminal state of one title in a sweep.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Outcome records what happened to one movie or show folder.
type Outcome struct {
	Kind     library.Kind
	Path     string
	Name     string
	Identity library.Identity
	Status   Status
	Err      error
	// Identified is true when the identity came from a catalog search rather
	// than the sidecar.
	Identified      bool
	Images          int
	Media           int
	Episodes        int
	EpisodeFailures int
	Duration        time.Duration
}

// Category returns the error classification of a failed or skipped outcome.
func (o Outcome) Category() string {
	return services.Category(o.Err)
}

// Report summarizes a sweep.
type Report struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Outcomes []Outcome
}

// Counts tallies outcomes by status.
func (r *Report) Counts() map[Status]int {
	counts := map[Status]int{StatusOK: 0, StatusSkipped: 0, StatusFailed: 0}
	if r == nil {
		return counts
	}
	for _, o := range r.Outcomes {
		counts[o.Status]++
	}
	return counts
}

// Failed returns the failed outcomes.
func (r *Report) Failed() []Outcome {
	if r == nil {
		return nil
	}
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			out = append(out, o)
		}
	}
	return out
}
