// Package doctor runs health checks over a tempo installation: the config
// file, the database, the signed-in identity and the notification history.
package doctor

import (
	"context"
	"fmt"
)

// Status is the outcome of a single item.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

func (s Status) severity() int {
	switch s {
	case StatusWarn:
		return 1
	case StatusFail:
		return 2
	default:
		return 0
	}
}

// Item is one finding of a check.
type Item struct {
	Label   string `json:"label"`
	Status  Status `json:"status"`
	Detail  string `json:"detail,omitempty"`
	Fixable bool   `json:"fixable,omitempty"`
}

// Result groups the items reported by one check.
type Result struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Worst returns the most severe status among the items.
func (r Result) Worst() Status {
	worst := StatusPass
	for _, item := range r.Items {
		if item.Status.severity() > worst.severity() {
			worst = item.Status
		}
	}
	return worst
}

// Check inspects one part of the installation.
type Check interface {
	Name() string
	Run(ctx context.Context) Result
}

// Summary counts items by status. Fixable counts warnings and failures that
// --autofix can repair.
type Summary struct {
	Passed  int `json:"passed"`
	Warned  int `json:"warned"`
	Failed  int `json:"failed"`
	Fixable int `json:"fixable"`
}

func (s Summary) String() string {
	warnings := "warnings"
	if s.Warned == 1 {
		warnings = "warning"
	}
	return fmt.Sprintf("%d passed, %d %s, %d failed", s.Passed, s.Warned, warnings, s.Failed)
}

// Report is the outcome of a doctor run. The installation is healthy when no
// item failed; warnings do not count against it.
type Report struct {
	Healthy bool     `json:"healthy"`
	Summary Summary  `json:"summary"`
	Checks  []Result `json:"checks"`
}

// Run executes checks in order. Checks not reached before ctx is done are
// reported as failed.
func Run(ctx context.Context, checks []Check) Report {
	results := make([]Result, 0, len(checks))
	for _, check := range checks {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{
				Name:  check.Name(),
				Items: []Item{{Label: "not run", Status: StatusFail, Detail: err.Error()}},
			})
			continue
		}
		results = append(results, check.Run(ctx))
	}

	summary := Summarize(results)
	return Report{
		Healthy: summary.Failed == 0,
		Summary: summary,
		Checks:  results,
	}
}

// Summarize counts the items of results.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		for _, item := range r.Items {
			switch item.Status {
			case StatusPass:
				s.Passed++
			case StatusWarn:
				s.Warned++
			case StatusFail:
				s.Failed++
			}
			if item.Fixable && item.Status != StatusPass {
				s.Fixable++
			}
		}
	}
	return s
}
