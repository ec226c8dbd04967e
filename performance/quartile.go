package performance

import (
	"math"
	"sort"

	"renewalboard/manager"
)

// Quartiles partitions records by impact rank. Q1 holds the best performers.
type Quartiles struct {
	Q1 []manager.Record
	Q2 []manager.Record
	Q3 []manager.Record
	Q4 []manager.Record
}

// Scored is a record with its impact score, fresh label and 1-based rank
// (1 = lowest impact).
type Scored struct {
	Record manager.Record
	Impact float64
	Label  string
	Rank   int
}

// Classification is the labeled, ranked team plus its quartile partition.
type Classification struct {
	Labeled   []Scored
	Quartiles Quartiles
}

// rank scores records and orders them by ascending impact. Ties keep id order,
// then input order.
func rank(records []manager.Record, s ClassificationStrategy) []Scored {
	scored := make([]Scored, len(records))
	for i, rec := range records {
		score := s.Score(rec)
		rec.TotalRenewals = rec.SumRenewals()
		rec.Classification = s.Label(score)
		scored[i] = Scored{Record: rec, Impact: score, Label: rec.Classification}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Impact != scored[j].Impact {
			return scored[i].Impact < scored[j].Impact
		}
		return scored[i].Record.ID < scored[j].Record.ID
	})
	for i := range scored {
		scored[i].Rank = i + 1
	}
	return scored
}

// quartileCuts returns the exclusive end index of Q1, Q2 and Q3 for n records.
func quartileCuts(n int) (int, int, int) {
	cut := func(f float64) int { return int(math.Round(float64(n) * f)) }
	return cut(0.25), cut(0.50), cut(0.75)
}

func bucket(scored []Scored) Quartiles {
	c1, c2, c3 := quartileCuts(len(scored))
	take := func(from, to int) []manager.Record {
		out := make([]manager.Record, 0, to-from)
		for _, sc := range scored[from:to] {
			out = append(out, sc.Record)
		}
		return out
	}
	return Quartiles{
		Q1: take(0, c1),
		Q2: take(c1, c2),
		Q3: take(c2, c3),
		Q4: take(c3, len(scored)),
	}
}

// BucketQuartiles splits records into four contiguous rank groups by ascending
// impact. Group boundaries fall at round(n*.25), round(n*.5) and round(n*.75),
// so small teams may leave a group empty. A record's quartile and its label
// are computed independently and can disagree near a boundary.
func BucketQuartiles(records []manager.Record, s ClassificationStrategy) Quartiles {
	return bucket(rank(records, s))
}

// ClassifyAndBucket labels every record and partitions the team in one pass.
func ClassifyAndBucket(records []manager.Record, s ClassificationStrategy) Classification {
	scored := rank(records, s)
	return Classification{Labeled: scored, Quartiles: bucket(scored)}
}
