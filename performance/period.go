// Package performance computes team statistics, impact labels and quartile
// buckets over manager records. Every function here is pure: callers pass the
// records they loaded and get fresh values back.
package performance

import (
	"fmt"
	"strings"

	"renewalboard/manager"
)

// Period selects which slice of the quarter a computation looks at.
type Period string

const (
	Month1      Period = "month1"
	Month2      Period = "month2"
	Month3      Period = "month3"
	FullQuarter Period = "fullQuarter"
)

// Periods lists every reporting period in display order.
var Periods = []Period{Month1, Month2, Month3, FullQuarter}

// ParsePeriod accepts canonical names and the dashboard's short labels.
// The empty string selects FullQuarter.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "month1", "feb":
		return Month1, nil
	case "month2", "mar":
		return Month2, nil
	case "month3", "apr", "abr":
		return Month3, nil
	case "", "quarter", "fullquarter", "tri":
		return FullQuarter, nil
	}
	return "", &manager.ValidationError{Field: "period", Reason: fmt.Sprintf("unknown period %q", s)}
}

// Goals holds the renewal goal per manager for each period.
type Goals struct {
	Month1      int
	Month2      int
	Month3      int
	FullQuarter int
}

// DefaultGoals returns the standing Q1 targets.
func DefaultGoals() Goals {
	return Goals{Month1: 8, Month2: 13, Month3: 15, FullQuarter: 36}
}

// For returns the goal of p.
func (g Goals) For(p Period) int {
	switch p {
	case Month1:
		return g.Month1
	case Month2:
		return g.Month2
	case Month3:
		return g.Month3
	default:
		return g.FullQuarter
	}
}
