package performance

import (
	"errors"
	"math"

	"renewalboard/manager"
)

// ErrEmptyDataset is returned when team statistics are requested for no records.
var ErrEmptyDataset = errors.New("performance: empty dataset")

// TeamStats is the team-wide summary for one period.
type TeamStats struct {
	Period               Period
	Goal                 int
	OverallCompliancePct float64
	// AverageCompliance is the mean scoped renewal count per manager.
	AverageCompliance float64
	AverageQuality    float64
	AverageLatePct    float64
	CountMeetingGoal  int
	TotalManagerCount int
	TotalManaged      int
	Quartiles         Quartiles
}

// Scoped is one record's figures for a period.
type Scoped struct {
	Renewals      int
	Managed       int
	Goal          int
	CompliancePct float64
}

// Scope narrows rec to period p. Managed volume is only reported for the
// whole quarter, so monthly views scale it by the period's share of the
// quarter goal.
func Scope(rec manager.Record, p Period, goals Goals) Scoped {
	goal := goals.For(p)
	sc := Scoped{Goal: goal, Managed: rec.ManagedCount}

	switch p {
	case Month1:
		sc.Renewals = rec.RenewalsMonth1
	case Month2:
		sc.Renewals = rec.RenewalsMonth2
	case Month3:
		sc.Renewals = rec.RenewalsMonth3
	default:
		sc.Renewals = rec.SumRenewals()
	}

	if p != FullQuarter && goals.FullQuarter > 0 {
		sc.Managed = int(math.Round(float64(rec.ManagedCount) * float64(goal) / float64(goals.FullQuarter)))
	}
	if goal > 0 {
		sc.CompliancePct = float64(sc.Renewals) / float64(goal) * 100
	}
	return sc
}

// ComputeTeamStats aggregates records for period p. It returns
// ErrEmptyDataset when records is empty.
func ComputeTeamStats(records []manager.Record, p Period, goals Goals, s ClassificationStrategy) (TeamStats, error) {
	if len(records) == 0 {
		return TeamStats{}, ErrEmptyDataset
	}

	goal := goals.For(p)
	stats := TeamStats{
		Period:            p,
		Goal:              goal,
		TotalManagerCount: len(records),
	}

	var renewals, quality int
	var late float64
	for _, rec := range records {
		sc := Scope(rec, p, goals)
		renewals += sc.Renewals
		stats.TotalManaged += sc.Managed
		if sc.Renewals >= goal {
			stats.CountMeetingGoal++
		}
		quality += rec.QualityScore
		late += rec.LatePercentage
	}

	n := float64(len(records))
	if goal > 0 {
		stats.OverallCompliancePct = float64(renewals) / (n * float64(goal)) * 100
	}
	stats.AverageCompliance = float64(renewals) / n
	stats.AverageQuality = float64(quality) / n
	stats.AverageLatePct = late / n
	stats.Quartiles = BucketQuartiles(records, s)

	return stats, nil
}
