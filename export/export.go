// Package export renders the manager table as CSV or XLSX.
package export

import (
	"fmt"

	"renewalboard/manager"
)

// Options shapes the exported table.
type Options struct {
	// MonthLabels titles the three monthly columns.
	MonthLabels []string
	// QuarterGoal is the renewal goal compliance is measured against.
	QuarterGoal int
}

func (o Options) withDefaults() Options {
	if len(o.MonthLabels) != 3 {
		o.MonthLabels = []string{"Feb", "Mar", "Apr"}
	}
	if o.QuarterGoal <= 0 {
		o.QuarterGoal = 36
	}
	return o
}

func header(o Options) []string {
	h := []string{"Name"}
	h = append(h, o.MonthLabels...)
	return append(h, "Total", "Compliance %", "Quality %", "Status")
}

func compliancePct(r manager.Record, goal int) float64 {
	return float64(r.SumRenewals()) / float64(goal) * 100
}

func row(r manager.Record, o Options) []string {
	return []string{
		r.Name,
		fmt.Sprint(r.RenewalsMonth1),
		fmt.Sprint(r.RenewalsMonth2),
		fmt.Sprint(r.RenewalsMonth3),
		fmt.Sprint(r.SumRenewals()),
		fmt.Sprintf("%.1f%%", compliancePct(r, o.QuarterGoal)),
		fmt.Sprintf("%d%%", r.QualityScore),
		r.Classification,
	}
}
