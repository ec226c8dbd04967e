package manager

import (
	"cmp"
	"slices"
	"strings"
)

func matchesQuery(r Record, query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Name), strings.ToLower(query))
}

// sortRecords orders records in place. Compliance against a shared quarter
// goal orders the same way as the quarter total, so both keys map to it.
// Ties fall back to ascending id.
func sortRecords(records []Record, key, order string) {
	compare := mapSortKey(key)
	desc := strings.ToLower(order) != "asc"
	if order == "" && (key == "name" || key == "id") {
		desc = false
	}

	slices.SortStableFunc(records, func(a, b Record) int {
		if c := compare(a, b); c != 0 {
			if desc {
				return -c
			}
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func mapSortKey(key string) func(a, b Record) int {
	switch key {
	case "name":
		return func(a, b Record) int { return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) }
	case "quality":
		return func(a, b Record) int { return cmp.Compare(a.QualityScore, b.QualityScore) }
	case "late":
		return func(a, b Record) int { return cmp.Compare(a.LatePercentage, b.LatePercentage) }
	case "managed":
		return func(a, b Record) int { return cmp.Compare(a.ManagedCount, b.ManagedCount) }
	case "id":
		return func(a, b Record) int { return cmp.Compare(a.ID, b.ID) }
	case "total", "compliance":
		fallthrough
	default:
		return func(a, b Record) int { return cmp.Compare(a.TotalRenewals, b.TotalRenewals) }
	}
}
