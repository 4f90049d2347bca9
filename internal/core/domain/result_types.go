package domain

import "time"

// Result is the outcome of reconciling one desired-state entry.
type Result struct {
	Kind       ReconcileKind     `json:"kind"`
	Name       string            `json:"name"`
	ID         string            `json:"id,omitempty"`
	Changed    bool              `json:"changed"`
	Message    string            `json:"msg"`
	Updates    *Changeset        `json:"updates"`
	TaskID     string            `json:"task_id,omitempty"`
	APIError   any               `json:"api_error,omitempty"`
	Validation *ValidationReport `json:"validation,omitempty"`
	Err        error             `json:"-"`
	Duration   time.Duration     `json:"-"`
}

func (r Result) Failed() bool {
	return r.Err != nil
}

// Summary aggregates a run for reporters and exit status.
type Summary struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Results   []Result  `json:"results"`
}

func (s Summary) Counts() (changed, unchanged, failed int) {
	for _, r := range s.Results {
		switch {
		case r.Failed():
			failed++
		case r.Changed:
			changed++
		default:
			unchanged++
		}
	}
	return changed, unchanged, failed
}

func (s Summary) HasFailures() bool {
	_, _, failed := s.Counts()
	return failed > 0
}
