// Package symmetry implements spec.md §4.6's pick logic: given the
// current automorphic classes, decide which pair of elements (one per
// circuit) to force together next. It does not itself re-run refinement —
// that loop lives in pkg/netcmp, which applies a Pick's bias and then
// re-refines to a fixed point with exhaustive subdivision enabled. No class
// state is saved before a pick, so a pick is never undone: a wrong
// arbitrary pick shows up as a mismatch in the following VerifyMatching.
package symmetry

import (
	"github.com/OpenTraceLab/netcmp/pkg/netcmp/celldef"
	"github.com/OpenTraceLab/netcmp/pkg/netcmp/graph"
	"github.com/OpenTraceLab/netcmp/pkg/netprop"
)

// Pick names one element from each circuit to force into the same class
// (spec.md §4.6: "assign both a fresh magic").
type Pick struct {
	IsDevice bool
	I1, I2   int // arena index of the circuit-1 and circuit-2 member
	Reason   string
}

// PinNameMatches implements strategy 1 (spec.md §4.6): within each
// automorphic net class, pair up members whose names are identical across
// the two circuits.
func PinNameMatches(a *graph.Arena) []Pick {
	var picks []Pick
	for _, c := range a.NetClasses {
		if !c.Automorphism() {
			continue
		}
		named1 := map[string]graph.NetIndex{}
		named2 := map[string]graph.NetIndex{}
		for _, idx := range c.Members {
			n := a.Net(idx)
			if n.Circuit == graph.Circuit1 {
				named1[n.Name] = idx
			} else {
				named2[n.Name] = idx
			}
		}
		for name, i1 := range named1 {
			if i2, ok := named2[name]; ok {
				picks = append(picks, Pick{I1: int(i1), I2: int(i2), Reason: "pin-name:" + name})
			}
		}
	}
	return picks
}

// PropertyMatches implements strategy 2 (spec.md §4.6): within each
// automorphic device class, pair up members whose property records match
// (via pkg/netprop.PropertyMatch) with no mismatches.
func PropertyMatches(a *graph.Arena, dict map[string]*celldef.PropertyKeyDef) []Pick {
	var picks []Pick
	for _, c := range a.DeviceClasses {
		if !c.Automorphism() {
			continue
		}
		var side1, side2 []graph.DeviceIndex
		for _, idx := range c.Members {
			if a.Device(idx).Circuit == graph.Circuit1 {
				side1 = append(side1, idx)
			} else {
				side2 = append(side2, idx)
			}
		}
		used := map[graph.DeviceIndex]bool{}
		for _, i1 := range side1 {
			r1 := a.Device(i1).Props
			for _, i2 := range side2 {
				if used[i2] {
					continue
				}
				r2 := a.Device(i2).Props
				res, err := netprop.PropertyMatch(dict, r1, r2)
				if err == nil && res.Mismatches == 0 {
					picks = append(picks, Pick{IsDevice: true, I1: int(i1), I2: int(i2), Reason: "property:" + a.Device(i1).Name + "=" + a.Device(i2).Name})
					used[i2] = true
					break
				}
			}
		}
	}
	return picks
}

// Arbitrary implements strategy 3 (spec.md §4.6): pick one device (or, if
// none remain, one net) from each circuit in any remaining automorphic
// class.
func Arbitrary(a *graph.Arena) *Pick {
	for _, c := range a.DeviceClasses {
		if !c.Automorphism() {
			continue
		}
		var i1, i2 graph.DeviceIndex
		for _, idx := range c.Members {
			d := a.Device(idx)
			if d.Circuit == graph.Circuit1 && i1 == graph.NoDevice {
				i1 = idx
			}
			if d.Circuit == graph.Circuit2 && i2 == graph.NoDevice {
				i2 = idx
			}
		}
		if i1 != graph.NoDevice && i2 != graph.NoDevice {
			return &Pick{IsDevice: true, I1: int(i1), I2: int(i2), Reason: "arbitrary-device"}
		}
	}
	for _, c := range a.NetClasses {
		if !c.Automorphism() {
			continue
		}
		var i1, i2 graph.NetIndex
		for _, idx := range c.Members {
			n := a.Net(idx)
			if n.Circuit == graph.Circuit1 && i1 == graph.NoNet {
				i1 = idx
			}
			if n.Circuit == graph.Circuit2 && i2 == graph.NoNet {
				i2 = idx
			}
		}
		if i1 != graph.NoNet && i2 != graph.NoNet {
			return &Pick{IsDevice: false, I1: int(i1), I2: int(i2), Reason: "arbitrary-net"}
		}
	}
	return nil
}

// HasAutomorphism reports whether any class currently remains an
// automorphism.
func HasAutomorphism(a *graph.Arena) bool {
	for _, c := range a.DeviceClasses {
		if c.Automorphism() {
			return true
		}
	}
	for _, c := range a.NetClasses {
		if c.Automorphism() {
			return true
		}
	}
	return false
}
