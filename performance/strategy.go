package performance

import (
	"math"

	"renewalboard/manager"
)

const (
	LabelHighPerformer    = "High Performer"
	LabelOnTrack          = "On Track"
	LabelNeedsImprovement = "Needs Improvement"
	LabelCritical         = "Critical"
)

// ClassificationStrategy scores a record and maps the score to a label.
// Lower scores are better.
type ClassificationStrategy interface {
	Score(rec manager.Record) float64
	Label(score float64) string
}

// Classify labels rec with s.
func Classify(s ClassificationStrategy, rec manager.Record) string {
	return s.Label(s.Score(rec))
}

// Weights are the impact index component weights.
type Weights struct {
	Renewals float64
	Quality  float64
	Late     float64
}

// Thresholds are the inclusive upper bounds of the first three labels.
// Anything above NeedsImprovement is Critical.
type Thresholds struct {
	HighPerformer    float64
	OnTrack          float64
	NeedsImprovement float64
}

// ImpactIndex is the weighted impact index: a score in [0, 1] combining the
// renewal shortfall against the quarter goal, the quality shortfall and
// capped lateness. 0 means no negative impact.
type ImpactIndex struct {
	Weights    Weights
	Thresholds Thresholds
	// RenewalTarget caps the renewal component; totals at or above it score 0.
	RenewalTarget int
	// LateCap is the lateness percentage that scores the full late weight.
	LateCap float64
}

// DefaultImpactIndex returns the standard weights (.50/.30/.20), thresholds
// (.25/.45/.65), a 36-renewal target and a 10% lateness cap.
func DefaultImpactIndex() ImpactIndex {
	return ImpactIndex{
		Weights:       Weights{Renewals: 0.50, Quality: 0.30, Late: 0.20},
		Thresholds:    Thresholds{HighPerformer: 0.25, OnTrack: 0.45, NeedsImprovement: 0.65},
		RenewalTarget: 36,
		LateCap:       10,
	}
}

// Score returns the impact index of rec. The quarter total is recomputed from
// the monthly values so a stale TotalRenewals cannot leak in.
func (ii ImpactIndex) Score(rec manager.Record) float64 {
	target := float64(ii.RenewalTarget)
	if target <= 0 {
		target = 36
	}
	lateCap := ii.LateCap
	if lateCap <= 0 {
		lateCap = 10
	}

	normRenewals := 1 - math.Min(float64(rec.SumRenewals()), target)/target
	normQuality := 1 - clamp(float64(rec.QualityScore), 0, 100)/100
	normLate := math.Min(clamp(rec.LatePercentage, 0, 100), lateCap) / lateCap

	return ii.Weights.Renewals*normRenewals + ii.Weights.Quality*normQuality + ii.Weights.Late*normLate
}

// Label maps an impact score onto the four labels.
func (ii ImpactIndex) Label(score float64) string {
	switch {
	case score <= ii.Thresholds.HighPerformer:
		return LabelHighPerformer
	case score <= ii.Thresholds.OnTrack:
		return LabelOnTrack
	case score <= ii.Thresholds.NeedsImprovement:
		return LabelNeedsImprovement
	default:
		return LabelCritical
	}
}

// Classify satisfies manager.Classifier.
func (ii ImpactIndex) Classify(rec manager.Record) string {
	return Classify(ii, rec)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
