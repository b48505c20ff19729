package netprop

import "sort"

// AlignForComparison implements Design Notes §9's partition-sort for
// post-reduction property comparison: "group by critical-within-slop,
// then order groups by additive". It is used when two series/parallel
// expanded property trails still have differing lengths after reduction
// (spec.md §4.5, final paragraph) and must be ordered so that
// structurally equivalent subsequences line up before a pairwise compare.
//
// The comparator this implements is explicitly not a total order (two
// records within slop of a third may not be within slop of each other);
// Design Notes §9 calls for a partition sort rather than a naive total
// sort for exactly this reason.
func AlignForComparison(records []*Record, criticalKey, additiveKey string, slop float64) []*Record {
	out := make([]*Record, len(records))
	copy(out, records)

	sort.SliceStable(out, func(i, j int) bool {
		return numericValue(out[i], criticalKey) < numericValue(out[j], criticalKey)
	})

	groups := partitionBySlop(out, criticalKey, slop)

	result := make([]*Record, 0, len(records))
	for _, g := range groups {
		sort.SliceStable(g, func(i, j int) bool {
			return numericValue(g[i], additiveKey) < numericValue(g[j], additiveKey)
		})
		result = append(result, g...)
	}
	return result
}

// partitionBySlop groups a critical-value-sorted slice into runs whose
// adjacent elements differ by no more than slop.
func partitionBySlop(sorted []*Record, criticalKey string, slop float64) [][]*Record {
	if len(sorted) == 0 {
		return nil
	}
	var groups [][]*Record
	cur := []*Record{sorted[0]}
	for i := 1; i < len(sorted); i++ {
		prev := numericValue(sorted[i-1], criticalKey)
		v := numericValue(sorted[i], criticalKey)
		if !doubleWithinSlop(prev, v, slop) {
			groups = append(groups, cur)
			cur = nil
		}
		cur = append(cur, sorted[i])
	}
	groups = append(groups, cur)
	return groups
}

func numericValue(r *Record, key string) float64 {
	v, ok := r.Get(key)
	if !ok {
		return 0
	}
	switch v.Type {
	case TypeInt:
		return float64(v.Int)
	case TypeDouble:
		return v.Double
	default:
		return 0
	}
}
