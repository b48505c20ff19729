package netprop

import (
	"errors"
	"fmt"
	"strings"

	"github.com/OpenTraceLab/netcmp/pkg/netcmp/celldef"
)

// ErrPropertyError is the sentinel for a property record that cannot be
// accepted, as opposed to a plain value disagreement (spec.md §7
// PropertyError). ErrAmbiguousMultiplicity wraps it; the reporter does not
// surface it.
var ErrPropertyError = errors.New("netprop: property error")

// ErrAmbiguousMultiplicity is returned by ValidateMS when a merged record
// carries both M>1 and S>1 (spec.md §9 open question 3: "either M or S may
// exceed 1, not both", preserving the source's rejection of the
// ambiguous interaction rather than guessing a resolution).
var ErrAmbiguousMultiplicity = fmt.Errorf("%w: a device record may not have both M>1 and S>1", ErrPropertyError)

// ValidateMS enforces the M/S exclusivity rule after a parallel or series
// merge combines property records (spec.md §4.4, §9.3).
func ValidateMS(r *Record) error {
	m := r.IntOrDefault("M", 1)
	s := r.IntOrDefault("S", 1)
	if m > 1 && s > 1 {
		return ErrAmbiguousMultiplicity
	}
	return nil
}

// MatchResult is the outcome of comparing two devices' property records.
type MatchResult struct {
	Mismatches int
	// Unresolved lists the keys whose comparison could not be decided
	// (expression-typed values, always unresolved per §4.5 rule 3c).
	Unresolved []string
	// NeedsDump mirrors spec.md §9 open question 1: an asymmetric missing
	// property record triggers a DumpNetwork-style report from the caller.
	NeedsDump bool
}

// PropertyMatch implements spec.md §4.5: compare the property records of
// two already-paired devices against the dictionary declared by their
// (shared) cell definition. The mismatch count is in MatchResult; the
// error return is always nil.
func PropertyMatch(dict map[string]*celldef.PropertyKeyDef, r1, r2 *Record) (MatchResult, error) {
	if r1 == nil && r2 == nil {
		return MatchResult{}, nil
	}
	if (r1 == nil) != (r2 == nil) {
		// spec.md §9 open question 1: one side carries no property record
		// at all while the other does ("t1type != PROPERTY && checked_one
		// == TRUE" in the source). The spec resolves this as a mismatch
		// that triggers a network dump, not a silent pass.
		return MatchResult{Mismatches: 1, NeedsDump: true}, nil
	}

	res := MatchResult{}
	seen := map[string]bool{}

	check := func(key string, def *celldef.PropertyKeyDef) {
		seen[key] = true
		v1, ok1 := r1.Get(key)
		v2, ok2 := r2.Get(key)

		// Rule 1: promote a missing M or S to the implicit default 1.
		if !ok1 && (key == "M" || key == "S") {
			v1, ok1 = IntValue(1), true
		}
		if !ok2 && (key == "M" || key == "S") {
			v2, ok2 = IntValue(1), true
		}

		switch {
		case !ok1 && !ok2:
			return
		case ok1 != ok2:
			// Rule 4: extra keys present only on one side are mismatches
			// unless implicitly M=1/S=1, already handled above.
			res.Mismatches++
			return
		}

		// Rule 2: numeric promotion (int <-> double); strings/expressions
		// never auto-promote.
		if v1.Type == TypeInt && v2.Type == TypeDouble {
			v1 = DoubleValue(float64(v1.Int))
		} else if v2.Type == TypeInt && v1.Type == TypeDouble {
			v2 = DoubleValue(float64(v2.Int))
		}
		if v1.Type != v2.Type {
			res.Mismatches++
			return
		}

		switch v1.Type {
		case TypeDouble:
			if !doubleWithinSlop(v1.Double, v2.Double, slopOf(def)) {
				res.Mismatches++
			}
		case TypeInt:
			if absInt(v1.Int-v2.Int) > int(slopOf(def)) {
				res.Mismatches++
			}
		case TypeString:
			if !stringMatches(v1.Str, v2.Str, def) {
				res.Mismatches++
			}
		case TypeExpression:
			// Rule 3: expression always reported as unresolved.
			res.Mismatches++
			res.Unresolved = append(res.Unresolved, key)
		}
	}

	for key, def := range dict {
		check(key, def)
	}
	// Cover keys present on an instance but absent from the dictionary
	// (still subject to rule 4's "both sides must have the same set").
	for _, key := range r1.Order {
		if !seen[key] {
			check(key, dict[key])
		}
	}
	for _, key := range r2.Order {
		if !seen[key] {
			check(key, dict[key])
		}
	}

	return res, nil
}

// PropertyMatchTrails implements spec.md §4.5's final paragraph: when two
// merged devices' expanded trails (pkg/netcmp/reduce's merge history)
// still differ in record count after reduction, align both by critical-
// then-additive value (AlignForComparison) and compare the aligned
// sequences pairwise, summing mismatches. A trail length mismatch that
// survives alignment itself counts as mismatches and triggers a dump,
// mirroring the asymmetric-record case in PropertyMatch.
func PropertyMatchTrails(dict map[string]*celldef.PropertyKeyDef, t1, t2 []*Record) (MatchResult, error) {
	criticalKey, additiveKey, slop := criticalAndAdditiveKeys(dict)
	a1 := AlignForComparison(t1, criticalKey, additiveKey, slop)
	a2 := AlignForComparison(t2, criticalKey, additiveKey, slop)

	res := MatchResult{}
	if len(a1) != len(a2) {
		res.Mismatches = absInt(len(a1) - len(a2))
		res.NeedsDump = true
	}
	n := len(a1)
	if len(a2) < n {
		n = len(a2)
	}
	for i := 0; i < n; i++ {
		r, err := PropertyMatch(dict, a1[i], a2[i])
		if err != nil {
			return MatchResult{}, err
		}
		res.Mismatches += r.Mismatches
		res.Unresolved = append(res.Unresolved, r.Unresolved...)
		res.NeedsDump = res.NeedsDump || r.NeedsDump
	}
	return res, nil
}

// criticalAndAdditiveKeys picks the first critical-policy key (either
// parallel or series) as the sort-grouping key and the first additive
// key as the secondary order, per spec.md §4.4/§4.5: "sorts the two
// property lists by critical values... then compares pairwise."
func criticalAndAdditiveKeys(dict map[string]*celldef.PropertyKeyDef) (criticalKey, additiveKey string, slop float64) {
	for k, kd := range dict {
		if criticalKey == "" && (kd.ParallelPolicy == celldef.ParallelCritical || kd.SeriesPolicy == celldef.SeriesCritical) {
			criticalKey, slop = k, kd.Slop
		}
		if additiveKey == "" && (kd.ParallelPolicy == celldef.ParallelAdditive || kd.SeriesPolicy == celldef.SeriesAdditive) {
			additiveKey = k
		}
	}
	return criticalKey, additiveKey, slop
}

func slopOf(def *celldef.PropertyKeyDef) float64 {
	if def == nil {
		return 0
	}
	return def.Slop
}

// DoubleWithinSlop is the exported form of the relative-tolerance check
// spec.md §4.5 rule 3 defines for double properties; pkg/netcmp/reduce
// reuses it for parallel/series "critical" property comparisons (§4.4),
// which apply the same slop semantics as the property matcher.
func DoubleWithinSlop(a, b, slop float64) bool { return doubleWithinSlop(a, b, slop) }

// IntWithinSlop is the exported absolute-tolerance check for integer
// properties, reused by pkg/netcmp/reduce for the same reason.
func IntWithinSlop(a, b int, slop float64) bool { return absInt(a-b) <= int(slop) }

func doubleWithinSlop(a, b, slop float64) bool {
	if a+b == 0 {
		return a == b
	}
	rel := 2 * absFloat(a-b) / (a + b)
	return rel <= slop
}

func stringMatches(a, b string, def *celldef.PropertyKeyDef) bool {
	if def != nil && def.Slop > 0 {
		n := int(def.Slop)
		return prefixEqual(a, b, n, def.CaseSensitive)
	}
	if def != nil && def.CaseSensitive {
		return a == b
	}
	return strings.EqualFold(a, b)
}

func prefixEqual(a, b string, n int, caseSensitive bool) bool {
	pa, pb := truncate(a, n), truncate(b, n)
	if caseSensitive {
		return pa == pb
	}
	return strings.EqualFold(pa, pb)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
