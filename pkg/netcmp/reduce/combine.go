package reduce

import (
	"github.com/OpenTraceLab/netcmp/pkg/netcmp/celldef"
	"github.com/OpenTraceLab/netcmp/pkg/netprop"
)

// combine attempts to fold b into a under the given additive/critical
// policy pair (spec.md §4.4). On success it returns a new *device whose
// record carries the summed additive properties and whose trail is the
// concatenation of both inputs' trails (Design Notes: "preserve an
// expanded trail of property records... so that later property comparison
// sees the full network, not just one summary record").
func combine(def *celldef.CellDefinition, a, b *device, additive, critical celldef.MergePolicy) (bool, *device, error) {
	for key, kd := range def.PropKeys {
		policy := kd.ParallelPolicy
		if additive == celldef.SeriesAdditive {
			policy = kd.SeriesPolicy
		}
		if policy != critical {
			continue
		}
		v1, ok1 := a.record.Get(key)
		v2, ok2 := b.record.Get(key)
		if !ok1 || !ok2 {
			continue
		}
		if !criticalMatches(v1, v2, kd.Slop) {
			return false, nil, nil
		}
	}

	merged := netprop.NewRecord()
	keys := unionKeys(a.record, b.record, def)
	for _, key := range keys {
		kd := def.PropKeys[key]
		policy := additivePolicyFor(kd, additive)
		if policy == additive {
			merged.Set(key, sumAdditive(a.record, b.record, key))
			continue
		}
		// Non-critical, non-additive values: keep the first side's value
		// as-is (spec.md §4.4: "non-critical values may be averaged or
		// kept as-is").
		if v, ok := a.record.Get(key); ok {
			merged.Set(key, v)
		} else if v, ok := b.record.Get(key); ok {
			merged.Set(key, v)
		}
	}

	if err := netprop.ValidateMS(merged); err != nil {
		return false, nil, err
	}

	// An input that was never merged contributes its own record as its
	// one-entry trail.
	var trail []map[string]celldef.PropertyValue
	for _, x := range []*device{a, b} {
		if len(x.trail) > 0 {
			trail = append(trail, x.trail...)
		} else {
			trail = append(trail, netprop.ToRaw(x.record))
		}
	}

	out := &device{
		decl:   a.decl,
		record: merged,
		trail:  trail,
	}
	return true, out, nil
}

func additivePolicyFor(kd *celldef.PropertyKeyDef, additive celldef.MergePolicy) celldef.MergePolicy {
	if kd == nil {
		return ""
	}
	if additive == celldef.SeriesAdditive {
		return kd.SeriesPolicy
	}
	return kd.ParallelPolicy
}

func unionKeys(a, b *netprop.Record, def *celldef.CellDefinition) []string {
	seen := map[string]bool{}
	var keys []string
	for _, k := range a.Order {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for _, k := range b.Order {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for k := range def.PropKeys {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}

func criticalMatches(v1, v2 netprop.Value, slop float64) bool {
	if v1.Type != v2.Type {
		return false
	}
	switch v1.Type {
	case netprop.TypeDouble:
		return netprop.DoubleWithinSlop(v1.Double, v2.Double, slop)
	case netprop.TypeInt:
		return netprop.IntWithinSlop(v1.Int, v2.Int, slop)
	case netprop.TypeString:
		return v1.Str == v2.Str
	default:
		return false
	}
}

// sumAdditive implements the canonical M/S summation (spec.md §4.4: "M —
// multiplicity — is the canonical additive" for parallel merge, "S —
// series count" for series merge), promoting a missing value to the
// implicit default 1 first (spec.md §4.5 rule 1).
func sumAdditive(a, b *netprop.Record, key string) netprop.Value {
	v1 := a.IntOrDefault(key, 1)
	v2 := b.IntOrDefault(key, 1)
	return netprop.IntValue(v1 + v2)
}
