package performance

import (
	"sort"

	"renewalboard/manager"
)

// ComplianceTargets are the corporate indicators a manager must meet for
// integral compliance.
type ComplianceTargets struct {
	Renewals   int
	MinQuality int
	MaxLatePct float64
	MinManaged int
}

// DefaultComplianceTargets returns 36 renewals, 80% quality, at most 2%
// lateness and 180 managed cases.
func DefaultComplianceTargets() ComplianceTargets {
	return ComplianceTargets{Renewals: 36, MinQuality: 80, MaxLatePct: 2, MinManaged: 180}
}

// ComplianceReport groups the team by how many indicators each manager meets.
type ComplianceReport struct {
	// Integral meets the renewal goal and every other indicator.
	Integral []manager.Record
	// GoalOnly meets the renewal goal but misses at least one other indicator.
	GoalOnly  []manager.Record
	BelowGoal []manager.Record
}

// Meets reports whether rec satisfies every target.
func (t ComplianceTargets) Meets(rec manager.Record) bool {
	return rec.SumRenewals() >= t.Renewals &&
		rec.QualityScore >= t.MinQuality &&
		rec.LatePercentage <= t.MaxLatePct &&
		rec.ManagedCount >= t.MinManaged
}

// AnalyzeCompliance splits records into the three report groups, each ordered
// by quarter total descending.
func AnalyzeCompliance(records []manager.Record, t ComplianceTargets) ComplianceReport {
	var report ComplianceReport
	for _, rec := range records {
		rec.TotalRenewals = rec.SumRenewals()
		switch {
		case t.Meets(rec):
			report.Integral = append(report.Integral, rec)
		case rec.TotalRenewals >= t.Renewals:
			report.GoalOnly = append(report.GoalOnly, rec)
		default:
			report.BelowGoal = append(report.BelowGoal, rec)
		}
	}

	for _, group := range [][]manager.Record{report.Integral, report.GoalOnly, report.BelowGoal} {
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].TotalRenewals != group[j].TotalRenewals {
				return group[i].TotalRenewals > group[j].TotalRenewals
			}
			return group[i].ID < group[j].ID
		})
	}
	return report
}

// ComplianceBand is the dashboard color band of a compliance percentage.
type ComplianceBand string

const (
	BandOnGoal   ComplianceBand = "on_goal"
	BandAtRisk   ComplianceBand = "at_risk"
	BandCritical ComplianceBand = "critical"
)

// Band maps a compliance percentage onto its band.
func Band(compliancePct float64) ComplianceBand {
	switch {
	case compliancePct >= 100:
		return BandOnGoal
	case compliancePct >= 80:
		return BandAtRisk
	default:
		return BandCritical
	}
}
