// Package reduce implements spec.md §4.4's parallel/series pre-reduction:
// before refinement starts, devices are merged to canonical form wherever
// two policies (parallel-additive/critical/nothing, series-additive/
// critical/nothing) declared per property key in the cell's property
// dictionary say they may combine.
//
// Reduction operates directly on a celldef.CellDefinition's device
// declarations rather than on a built graph.Arena: merge-eligibility only
// needs the pin-to-net mapping and property records each device already
// carries, and working at this level keeps the arena allocator
// (pkg/netcmp/graph) free of a pre-reduction special case — it always
// builds from an already-reduced device list.
package reduce

import (
	"fmt"
	"sort"

	"github.com/OpenTraceLab/netcmp/pkg/netcmp/celldef"
	"github.com/OpenTraceLab/netcmp/pkg/netprop"
)

// Reduce runs parallel and series merging to a fixed point, alternating
// passes as spec.md §4.4 prescribes ("Reduction runs to fixed point,
// alternating parallel and series passes"), and rewrites def.Devices in
// place with the canonical, merged device list.
func Reduce(def *celldef.CellDefinition) error {
	working := toWorking(def)
	for {
		changedP, err := parallelPass(def, working)
		if err != nil {
			return err
		}
		working = changedP.devices
		changedS, err := seriesPass(def, working)
		if err != nil {
			return err
		}
		working = changedS.devices
		if !changedP.any && !changedS.any {
			break
		}
	}
	def.Devices = fromWorking(working)
	return nil
}

type device struct {
	decl   celldef.DeviceDecl
	record *netprop.Record
	trail  []map[string]celldef.PropertyValue
}

type passResult struct {
	devices []*device
	any     bool
}

func toWorking(def *celldef.CellDefinition) []*device {
	out := make([]*device, 0, len(def.Devices))
	for _, dd := range def.Devices {
		rec := netprop.BuildRecord(def.PropKeys, dd.Props)
		out = append(out, &device{decl: dd, record: rec, trail: dd.Trail})
	}
	return out
}

func fromWorking(devices []*device) []celldef.DeviceDecl {
	out := make([]celldef.DeviceDecl, 0, len(devices))
	for _, d := range devices {
		dd := d.decl
		dd.Props = netprop.ToRaw(d.record)
		dd.Trail = d.trail
		out = append(out, dd)
	}
	return out
}

// parallelPass implements spec.md §4.4's parallel-mergeable test: same
// class, all pins connect to the same nets up to permutation, all
// parallel-critical properties match within slop, and parallel-additive
// values (canonically M) can be summed.
func parallelPass(def *celldef.CellDefinition, devices []*device) (passResult, error) {
	used := make([]bool, len(devices))
	var out []*device
	any := false

	for i := range devices {
		if used[i] {
			continue
		}
		merged := devices[i]
		used[i] = true
		for j := i + 1; j < len(devices); j++ {
			if used[j] {
				continue
			}
			if !sameNetsUpToPermutation(def, merged.decl, devices[j].decl) {
				continue
			}
			ok, next, err := combine(def, merged, devices[j], celldef.ParallelAdditive, celldef.ParallelCritical)
			if err != nil {
				return passResult{}, err
			}
			if !ok {
				continue
			}
			merged = next
			used[j] = true
			any = true
		}
		out = append(out, merged)
	}
	return passResult{devices: out, any: any}, nil
}

// seriesPass implements spec.md §4.4's series-mergeable test, restricted
// (as a pragmatic scoping choice, not a spec requirement) to two-pin
// devices sharing their single internal net — the shape every worked
// example in spec.md §8 (E1/E2/E6) and real resistor/capacitor ladders
// take. A device with more than two pins is never considered for series
// merging.
func seriesPass(def *celldef.CellDefinition, devices []*device) (passResult, error) {
	netDegree := map[string]int{}
	for _, d := range devices {
		for _, n := range d.decl.PinNets {
			if n != "" {
				netDegree[n]++
			}
		}
	}

	used := make([]bool, len(devices))
	var out []*device
	any := false

	for i := range devices {
		if used[i] || len(devices[i].decl.PinNets) != 2 {
			if !used[i] {
				out = append(out, devices[i])
				used[i] = true
			}
			continue
		}
		merged := false
		for j := i + 1; j < len(devices); j++ {
			if used[j] || len(devices[j].decl.PinNets) != 2 {
				continue
			}
			shared, ok := internalSharedNet(def, devices[i].decl, devices[j].decl, netDegree)
			if !ok {
				continue
			}
			combined, next, err := combine(def, devices[i], devices[j], celldef.SeriesAdditive, celldef.SeriesCritical)
			if err != nil {
				return passResult{}, err
			}
			if !combined {
				continue
			}
			next.decl.PinNets = seriesRemainingPins(devices[i].decl, devices[j].decl, shared)
			out = append(out, next)
			used[i] = true
			used[j] = true
			any = true
			merged = true
			break
		}
		if !merged && !used[i] {
			out = append(out, devices[i])
			used[i] = true
		}
	}
	return passResult{devices: out, any: any}, nil
}

// internalSharedNet finds the one net shared by exactly these two devices
// (spec.md §4.4: "share exactly one internal net (connected to no other
// device)") that is not declared global (SPEC_FULL.md supplemented
// feature 3).
func internalSharedNet(def *celldef.CellDefinition, a, b celldef.DeviceDecl, degree map[string]int) (string, bool) {
	var shared []string
	setB := map[string]bool{}
	for _, n := range b.PinNets {
		setB[n] = true
	}
	for _, n := range a.PinNets {
		if n != "" && setB[n] {
			shared = append(shared, n)
		}
	}
	if len(shared) != 1 {
		return "", false
	}
	net := shared[0]
	if def.IsGlobal(net) {
		return "", false
	}
	if degree[net] != 2 {
		return "", false
	}
	return net, true
}

func seriesRemainingPins(a, b celldef.DeviceDecl, shared string) []string {
	var pins []string
	for _, n := range a.PinNets {
		if n != shared {
			pins = append(pins, n)
		}
	}
	for _, n := range b.PinNets {
		if n != shared {
			pins = append(pins, n)
		}
	}
	return pins
}

// sameNetsUpToPermutation compares two devices' pin-net assignments,
// treating positions declared permutable on the class (spec.md §4.3) as
// interchangeable.
func sameNetsUpToPermutation(def *celldef.CellDefinition, a, b celldef.DeviceDecl) bool {
	if a.Class != b.Class || len(a.PinNets) != len(b.PinNets) {
		return false
	}
	groups := permGroups(def, a.Class, len(a.PinNets))
	for _, g := range groups {
		sortedA := sortedSubset(a.PinNets, g)
		sortedB := sortedSubset(b.PinNets, g)
		for k := range sortedA {
			if sortedA[k] != sortedB[k] {
				return false
			}
		}
	}
	return true
}

// permGroups partitions pin indices [0,n) into singleton groups, except
// that declared-permutable pin name pairs are grouped together. Pin i is
// named after def.Pins[i], the containing cell's own pin signature, or
// "pinN" past its end, the same naming graph's builder uses.
func permGroups(def *celldef.CellDefinition, class string, n int) [][]int {
	name := func(i int) string {
		if i < len(def.Pins) {
			return def.Pins[i].Name
		}
		return fmt.Sprintf("pin%d", i)
	}
	assigned := make([]bool, n)
	var groups [][]int
	for i := 0; i < n; i++ {
		if assigned[i] {
			continue
		}
		group := []int{i}
		assigned[i] = true
		for _, p := range def.Permutes {
			if p.Class != class {
				continue
			}
			if name(i) == p.PinA || name(i) == p.PinB {
				other := p.PinB
				if name(i) == p.PinB {
					other = p.PinA
				}
				for j := 0; j < n; j++ {
					if !assigned[j] && name(j) == other {
						group = append(group, j)
						assigned[j] = true
					}
				}
			}
		}
		groups = append(groups, group)
	}
	return groups
}

func sortedSubset(pins []string, idxs []int) []string {
	out := make([]string, len(idxs))
	for i, idx := range idxs {
		out[i] = pins[idx]
	}
	sort.Strings(out)
	return out
}
