package scheduler

import (
	"time"

	"github.com/elonfeng/newsrelay/pkg/source"
)

// Report summarizes one poll cycle.
type Report struct {
	CycleID   string         `json:"cycle_id"`
	StartedAt time.Time      `json:"started_at"`
	Sources   []SourceReport `json:"sources"`
}

// SourceReport summarizes one source within a cycle.
type SourceReport struct {
	Source       source.SourceType `json:"source"`
	StateKey     string            `json:"state_key"`
	Fetched      int               `json:"fetched"`
	New          int               `json:"new"`
	Bootstrapped int               `json:"bootstrapped"`
	Delivered    int               `json:"delivered"`
	Suppressed   int               `json:"suppressed"` // dead or deleted upstream
	Skipped      int               `json:"skipped"`    // below relevance threshold
	Failed       int               `json:"failed"`     // detail fetch or delivery error
	Err          error             `json:"-"`
}

// Delivered returns the total number of messages sent in the cycle.
func (r Report) Delivered() int {
	n := 0
	for _, s := range r.Sources {
		n += s.Delivered
	}
	return n
}
