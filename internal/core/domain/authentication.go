package domain

import (
	"fmt"
	"sort"
	"strings"
)

type AuthStatus string

const (
	AuthStatusValid   AuthStatus = "Valid"
	AuthStatusInvalid AuthStatus = "Invalid"
	AuthStatusNone    AuthStatus = "None"
)

// AuthenticationStatus is the remote view of an authentication record. The
// two timestamps are the only signal that a (re)validation finished.
type AuthenticationStatus struct {
	AuthType      string     `json:"authtype"`
	Status        AuthStatus `json:"status,omitempty"`
	StatusDetails string     `json:"status_details,omitempty"`
	LastValidOn   *string    `json:"last_valid_on,omitempty"`
	LastInvalidOn *string    `json:"last_invalid_on,omitempty"`
}

// ValidationStamp returns the (last_valid_on, last_invalid_on) pair.
func (a AuthenticationStatus) ValidationStamp() [2]string {
	var s [2]string
	if a.LastValidOn != nil {
		s[0] = *a.LastValidOn
	}
	if a.LastInvalidOn != nil {
		s[1] = *a.LastInvalidOn
	}
	return s
}

type ValidationOutcome string

const (
	ValidationValid    ValidationOutcome = "Valid"
	ValidationInvalid  ValidationOutcome = "Invalid"
	ValidationTimedOut ValidationOutcome = "Timed out"
	ValidationSkipped  ValidationOutcome = "Skipped Validation"
)

// AuthValidationDetail is the poll verdict for one authtype.
type AuthValidationDetail struct {
	Completed     bool       `json:"completed"`
	Status        AuthStatus `json:"status,omitempty"`
	StatusDetails string     `json:"status_details,omitempty"`
}

func (d AuthValidationDetail) String() string {
	if !d.Completed {
		return "Validation didn't complete"
	}
	if d.StatusDetails == "" {
		return string(d.Status)
	}
	return fmt.Sprintf("%s (%s)", d.Status, d.StatusDetails)
}

type ValidationReport struct {
	Outcome ValidationOutcome               `json:"outcome"`
	Details map[string]AuthValidationDetail `json:"details,omitempty"`
}

// Summary renders the details deterministically, sorted by authtype.
func (r ValidationReport) Summary() string {
	if r.Outcome == ValidationSkipped {
		return string(ValidationSkipped)
	}
	if len(r.Details) == 0 {
		return "no authentications to validate"
	}
	types := make([]string, 0, len(r.Details))
	for t := range r.Details {
		types = append(types, t)
	}
	sort.Strings(types)
	parts := make([]string, 0, len(types))
	for _, t := range types {
		parts = append(parts, fmt.Sprintf("%s: %s", t, r.Details[t]))
	}
	return strings.Join(parts, "; ")
}

// Pending returns the authtypes whose validation did not complete.
func (r ValidationReport) Pending() []string {
	var out []string
	for t, d := range r.Details {
		if !d.Completed {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}
