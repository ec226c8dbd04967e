package performance

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renewalboard/manager"
)

func rec(id int64, m1, m2, m3 int, late float64, managed, quality int) manager.Record {
	return manager.Record{
		ID:             id,
		Name:           "gestor",
		RenewalsMonth1: m1,
		RenewalsMonth2: m2,
		RenewalsMonth3: m3,
		TotalRenewals:  m1 + m2 + m3,
		LatePercentage: late,
		ManagedCount:   managed,
		QualityScore:   quality,
	}
}

// seedRecords returns the embedded Q1 dataset with ids 1..23.
func seedRecords(t *testing.T) []manager.Record {
	t.Helper()
	rows, err := manager.DefaultSeed()
	require.NoError(t, err)
	out := make([]manager.Record, len(rows))
	for i, r := range rows {
		out[i] = rec(int64(i+1), r.RenewalsMonth1, r.RenewalsMonth2, r.RenewalsMonth3, r.LatePercentage, r.ManagedCount, r.QualityScore)
		out[i].Name = r.Name
	}
	return out
}

func recordIDs(recs []manager.Record) []int64 {
	out := make([]int64, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func TestParsePeriod(t *testing.T) {
	tests := map[string]Period{
		"":            FullQuarter,
		"quarter":     FullQuarter,
		"fullQuarter": FullQuarter,
		"tri":         FullQuarter,
		"month1":      Month1,
		"Feb":         Month1,
		"mar":         Month2,
		"apr":         Month3,
		"abr":         Month3,
	}
	for in, want := range tests {
		got, err := ParsePeriod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePeriod("may")
	require.Error(t, err)
	assert.True(t, manager.IsValidation(err))
}

func TestImpactIndex_Scenario(t *testing.T) {
	ii := DefaultImpactIndex()
	records := []manager.Record{
		rec(1, 15, 14, 14, 0.30, 180, 88),
		rec(2, 12, 12, 11, 1.60, 160, 84),
		rec(3, 6, 5, 5, 2.70, 236, 83),
		rec(4, 3, 3, 3, 5.90, 140, 74),
	}

	wantImpact := []float64{0.042, 0.0939, 0.3828, 0.571}
	wantLabel := []string{LabelHighPerformer, LabelHighPerformer, LabelOnTrack, LabelNeedsImprovement}
	for i, r := range records {
		assert.InDelta(t, wantImpact[i], ii.Score(r), 0.001, "record %d", r.ID)
		assert.Equal(t, wantLabel[i], ii.Classify(r), "record %d", r.ID)
	}
}

func TestImpactIndex_Bounds(t *testing.T) {
	ii := DefaultImpactIndex()

	best := rec(1, 20, 20, 20, 0, 300, 100)
	assert.Equal(t, 0.0, ii.Score(best))
	assert.Equal(t, LabelHighPerformer, ii.Classify(best))

	worst := rec(2, 0, 0, 0, 50, 0, 0)
	assert.InDelta(t, 1.0, ii.Score(worst), 1e-9)
	assert.Equal(t, LabelCritical, ii.Classify(worst))
}

func TestImpactIndex_Thresholds(t *testing.T) {
	ii := DefaultImpactIndex()
	assert.Equal(t, LabelHighPerformer, ii.Label(0.25))
	assert.Equal(t, LabelOnTrack, ii.Label(0.2501))
	assert.Equal(t, LabelOnTrack, ii.Label(0.45))
	assert.Equal(t, LabelNeedsImprovement, ii.Label(0.65))
	assert.Equal(t, LabelCritical, ii.Label(0.6501))
}

func TestImpactIndex_MonotonicInRenewals(t *testing.T) {
	ii := DefaultImpactIndex()
	prev := math.Inf(1)
	for total := 0; total <= 50; total++ {
		score := ii.Score(rec(1, total, 0, 0, 3.5, 150, 77))
		assert.LessOrEqual(t, score, prev, "total %d", total)
		prev = score
	}
}

func TestImpactIndex_IgnoresStaleTotal(t *testing.T) {
	ii := DefaultImpactIndex()
	r := rec(1, 12, 12, 12, 1, 180, 90)
	stale := r
	stale.TotalRenewals = 0

	assert.Equal(t, ii.Score(r), ii.Score(stale))
}

func TestClassify_Deterministic(t *testing.T) {
	ii := DefaultImpactIndex()
	for _, r := range seedRecords(t) {
		assert.Equal(t, Classify(ii, r), Classify(ii, r), r.Name)
	}
}

func TestBucketQuartiles_Sizes(t *testing.T) {
	ii := DefaultImpactIndex()

	tests := []struct {
		n    int
		want [4]int
	}{
		{0, [4]int{0, 0, 0, 0}},
		{1, [4]int{0, 1, 0, 0}},
		{2, [4]int{1, 0, 1, 0}},
		{3, [4]int{1, 1, 0, 1}},
		{4, [4]int{1, 1, 1, 1}},
		{23, [4]int{6, 6, 5, 6}},
	}
	for _, tt := range tests {
		records := make([]manager.Record, tt.n)
		for i := range records {
			records[i] = rec(int64(i+1), i, 0, 0, 1, 100, 80)
		}
		q := BucketQuartiles(records, ii)
		got := [4]int{len(q.Q1), len(q.Q2), len(q.Q3), len(q.Q4)}
		assert.Equal(t, tt.want, got, "n=%d", tt.n)
	}
}

func TestBucketQuartiles_PartitionIsContiguous(t *testing.T) {
	ii := DefaultImpactIndex()
	records := seedRecords(t)

	cls := ClassifyAndBucket(records, ii)
	q := cls.Quartiles

	var flattened []manager.Record
	for _, group := range [][]manager.Record{q.Q1, q.Q2, q.Q3, q.Q4} {
		flattened = append(flattened, group...)
	}
	require.Len(t, flattened, len(records))

	ranked := make([]int64, len(cls.Labeled))
	for i, sc := range cls.Labeled {
		assert.Equal(t, i+1, sc.Rank)
		if i > 0 {
			assert.GreaterOrEqual(t, sc.Impact, cls.Labeled[i-1].Impact)
		}
		ranked[i] = sc.Record.ID
	}
	if diff := cmp.Diff(ranked, recordIDs(flattened)); diff != "" {
		t.Fatalf("quartiles not contiguous by rank (-ranked +buckets):\n%s", diff)
	}

	seen := make(map[int64]bool)
	for _, id := range ranked {
		assert.False(t, seen[id], "id %d bucketed twice", id)
		seen[id] = true
	}
}

func TestBucketQuartiles_TiesKeepIDOrder(t *testing.T) {
	ii := DefaultImpactIndex()
	records := []manager.Record{
		rec(4, 10, 10, 10, 1, 100, 80),
		rec(2, 10, 10, 10, 1, 100, 80),
		rec(3, 10, 10, 10, 1, 100, 80),
		rec(1, 10, 10, 10, 1, 100, 80),
	}
	q := BucketQuartiles(records, ii)
	got := recordIDs(append(append(append(q.Q1, q.Q2...), q.Q3...), q.Q4...))
	assert.Equal(t, []int64{1, 2, 3, 4}, got)
}

func TestClassifyAndBucket_FreshLabels(t *testing.T) {
	ii := DefaultImpactIndex()
	stale := rec(1, 20, 20, 20, 0, 200, 95)
	stale.Classification = LabelCritical

	cls := ClassifyAndBucket([]manager.Record{stale}, ii)
	require.Len(t, cls.Labeled, 1)
	assert.Equal(t, LabelHighPerformer, cls.Labeled[0].Label)
	assert.Equal(t, LabelHighPerformer, cls.Labeled[0].Record.Classification)
	assert.Equal(t, LabelHighPerformer, cls.Quartiles.Q2[0].Classification)
}

func TestComputeTeamStats_Quarter(t *testing.T) {
	records := seedRecords(t)

	stats, err := ComputeTeamStats(records, FullQuarter, DefaultGoals(), DefaultImpactIndex())
	require.NoError(t, err)

	assert.Equal(t, FullQuarter, stats.Period)
	assert.Equal(t, 36, stats.Goal)
	assert.Equal(t, 23, stats.TotalManagerCount)
	assert.InDelta(t, 547.0/(23*36)*100, stats.OverallCompliancePct, 1e-9)
	assert.InDelta(t, 547.0/23, stats.AverageCompliance, 1e-9)
	assert.Equal(t, 4, stats.CountMeetingGoal)

	n := len(stats.Quartiles.Q1) + len(stats.Quartiles.Q2) + len(stats.Quartiles.Q3) + len(stats.Quartiles.Q4)
	assert.Equal(t, 23, n)
	assert.False(t, math.IsNaN(stats.AverageQuality))
	assert.False(t, math.IsNaN(stats.AverageLatePct))
}

func TestComputeTeamStats_Month1Scaling(t *testing.T) {
	records := []manager.Record{
		rec(1, 11, 16, 16, 0.3, 180, 88),
		rec(2, 7, 16, 17, 5.9, 140, 74),
	}

	stats, err := ComputeTeamStats(records, Month1, DefaultGoals(), DefaultImpactIndex())
	require.NoError(t, err)

	assert.Equal(t, 8, stats.Goal)
	assert.Equal(t, 1, stats.CountMeetingGoal)
	// round(180*8/36) + round(140*8/36) = 40 + 31
	assert.Equal(t, 71, stats.TotalManaged)
	assert.InDelta(t, 18.0/16*100, stats.OverallCompliancePct, 1e-9)
	assert.InDelta(t, 81.0, stats.AverageQuality, 1e-9)
	assert.InDelta(t, 3.1, stats.AverageLatePct, 1e-9)

	sc := Scope(records[0], Month1, DefaultGoals())
	assert.Equal(t, Scoped{Renewals: 11, Managed: 40, Goal: 8, CompliancePct: 137.5}, sc)
}

func TestComputeTeamStats_EveryPeriodNoNaN(t *testing.T) {
	records := seedRecords(t)
	for _, p := range Periods {
		stats, err := ComputeTeamStats(records, p, DefaultGoals(), DefaultImpactIndex())
		require.NoError(t, err)
		assert.False(t, math.IsNaN(stats.OverallCompliancePct), p)
		assert.False(t, math.IsNaN(stats.AverageCompliance), p)
	}
}

func TestComputeTeamStats_Empty(t *testing.T) {
	_, err := ComputeTeamStats(nil, FullQuarter, DefaultGoals(), DefaultImpactIndex())
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestAnalyzeCompliance(t *testing.T) {
	records := []manager.Record{
		rec(1, 12, 12, 12, 1.0, 200, 85),
		rec(2, 15, 15, 15, 3.0, 200, 85),
		rec(3, 5, 5, 5, 0.5, 300, 99),
		rec(4, 20, 20, 20, 0.0, 180, 80),
		rec(5, 12, 12, 11, 0.0, 400, 100),
	}

	report := AnalyzeCompliance(records, DefaultComplianceTargets())
	assert.Equal(t, []int64{4, 1}, recordIDs(report.Integral))
	assert.Equal(t, []int64{2}, recordIDs(report.GoalOnly))
	assert.Equal(t, []int64{5, 3}, recordIDs(report.BelowGoal))
}

func TestBand(t *testing.T) {
	assert.Equal(t, BandOnGoal, Band(100))
	assert.Equal(t, BandOnGoal, Band(137.5))
	assert.Equal(t, BandAtRisk, Band(80))
	assert.Equal(t, BandAtRisk, Band(99.99))
	assert.Equal(t, BandCritical, Band(79.9))
}
