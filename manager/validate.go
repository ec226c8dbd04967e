package manager

import (
	"math"
	"strings"
)

// normalize trims the name and rounds lateness to the two decimals the
// store keeps.
func normalize(r Record) Record {
	r.Name = strings.TrimSpace(r.Name)
	if !math.IsNaN(r.LatePercentage) && !math.IsInf(r.LatePercentage, 0) {
		r.LatePercentage = math.Round(r.LatePercentage*100) / 100
	}
	return r
}

// maxCount is the largest count a Postgres INTEGER column holds.
const maxCount = math.MaxInt32

// validate checks the raw inputs of r. Derived fields are not inspected.
func validate(r Record) error {
	if r.Name == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}

	months := []struct {
		field string
		value int
	}{
		{"renewalsMonth1", r.RenewalsMonth1},
		{"renewalsMonth2", r.RenewalsMonth2},
		{"renewalsMonth3", r.RenewalsMonth3},
	}
	var total int64
	for _, m := range months {
		if m.value < 0 {
			return &ValidationError{Field: m.field, Reason: "must not be negative"}
		}
		if m.value > maxCount {
			return &ValidationError{Field: m.field, Reason: "too large"}
		}
		total += int64(m.value)
	}
	if total > maxCount {
		return &ValidationError{Field: "totalRenewals", Reason: "monthly renewals sum too large"}
	}

	if math.IsNaN(r.LatePercentage) || r.LatePercentage < 0 || r.LatePercentage > 100 {
		return &ValidationError{Field: "latePercentage", Reason: "must be within [0, 100]"}
	}
	if r.ManagedCount < 0 {
		return &ValidationError{Field: "managedCount", Reason: "must not be negative"}
	}
	if r.ManagedCount > maxCount {
		return &ValidationError{Field: "managedCount", Reason: "too large"}
	}
	if r.QualityScore < 0 || r.QualityScore > 100 {
		return &ValidationError{Field: "qualityScore", Reason: "must be within [0, 100]"}
	}

	return nil
}
