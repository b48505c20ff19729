package netcmp

import (
	"math/rand/v2"

	"github.com/OpenTraceLab/netcmp/pkg/netcmp/graph"
)

// assignClassMagics gives every live device and net class a fresh random
// 64-bit magic (spec.md §4.2, invariant 6: "no two distinct live classes
// share a magic"). rand/v2's Uint64 is a stdlib substitute for the
// teacher's golang.org/x/exp/rand (see DESIGN.md) — collisions are
// cryptographically negligible at this width and do not need to be
// checked for uniqueness across the small number of live classes.
func assignClassMagics(a *graph.Arena, rng *rand.Rand) {
	for _, c := range a.DeviceClasses {
		c.Magic = rng.Uint64()
	}
	for _, c := range a.NetClasses {
		c.Magic = rng.Uint64()
	}
}

// computeHashes implements DeviceHash and NetHash (spec.md §4.2). Both
// formulas read the *previous* round's device hash (d.PrevHash) together
// with this round's freshly randomized class magics, so the two passes
// have no ordering dependency on each other.
func computeHashes(a *graph.Arena) {
	for i := 1; i < len(a.Devices); i++ {
		d := &a.Devices[i]
		h := d.PrevHash
		for _, pin := range d.Pins {
			h ^= pin.PermMagic ^ netClassMagic(a, pin.Net)
		}
		d.Hash = h
	}
	for i := 1; i < len(a.Nets); i++ {
		n := &a.Nets[i]
		var h uint64
		for _, pin := range n.Pins {
			dev := a.Device(pin.Device)
			h ^= pin.PermMagic ^ dev.PrevHash ^ deviceClassMagic(a, pin.Device)
		}
		n.Hash = h
	}
}

// commitHashes carries this round's device hash forward as the next
// round's PrevHash (spec.md §4.2's DeviceHash accumulates history this
// way; nets carry no history of their own).
func commitHashes(a *graph.Arena) {
	for i := 1; i < len(a.Devices); i++ {
		a.Devices[i].PrevHash = a.Devices[i].Hash
	}
}

func netClassMagic(a *graph.Arena, idx graph.NetIndex) uint64 {
	if idx == graph.NoNet {
		return 0
	}
	if c := a.NetClassOf(idx); c != nil {
		return c.Magic
	}
	return 0
}

func deviceClassMagic(a *graph.Arena, idx graph.DeviceIndex) uint64 {
	if idx == graph.NoDevice {
		return 0
	}
	if c := a.DeviceClassOf(idx); c != nil {
		return c.Magic
	}
	return 0
}

// fractureDeviceClasses implements Fracture for the device class list
// (spec.md §4.2): bucket members of each class by new hash; classes with
// a single bucket remain unchanged; classes that split yield one new
// class per hash value. A matched pair (size 2, one member per circuit)
// is left alone unless exhaustive is requested.
func fractureDeviceClasses(a *graph.Arena, exhaustive bool) int {
	var out []*graph.DeviceClass
	splits := 0

	for _, c := range a.DeviceClasses {
		if !exhaustive && c.Matched() {
			out = append(out, c)
			continue
		}
		buckets, order := bucketDevices(a, c.Members)
		if len(buckets) == 1 {
			out = append(out, c)
			continue
		}
		splits++
		for _, h := range order {
			out = append(out, newDeviceClass(a, buckets[h]))
		}
	}

	a.SetDeviceClasses(mergeIllegalDeviceClasses(out))
	return splits
}

// fractureNetClasses mirrors fractureDeviceClasses for nets.
func fractureNetClasses(a *graph.Arena, exhaustive bool) int {
	var out []*graph.NetClass
	splits := 0

	for _, c := range a.NetClasses {
		if !exhaustive && c.Matched() {
			out = append(out, c)
			continue
		}
		buckets, order := bucketNets(a, c.Members)
		if len(buckets) == 1 {
			out = append(out, c)
			continue
		}
		splits++
		for _, h := range order {
			out = append(out, newNetClass(a, buckets[h]))
		}
	}

	a.SetNetClasses(mergeIllegalNetClasses(out))
	return splits
}

func bucketDevices(a *graph.Arena, members []graph.DeviceIndex) (map[uint64][]graph.DeviceIndex, []uint64) {
	buckets := map[uint64][]graph.DeviceIndex{}
	var order []uint64
	for _, idx := range members {
		h := a.Device(idx).Hash
		if _, ok := buckets[h]; !ok {
			order = append(order, h)
		}
		buckets[h] = append(buckets[h], idx)
	}
	return buckets, order
}

func bucketNets(a *graph.Arena, members []graph.NetIndex) (map[uint64][]graph.NetIndex, []uint64) {
	buckets := map[uint64][]graph.NetIndex{}
	var order []uint64
	for _, idx := range members {
		h := a.Net(idx).Hash
		if _, ok := buckets[h]; !ok {
			order = append(order, h)
		}
		buckets[h] = append(buckets[h], idx)
	}
	return buckets, order
}

func newDeviceClass(a *graph.Arena, members []graph.DeviceIndex) *graph.DeviceClass {
	var c1, c2 int
	for _, idx := range members {
		if a.Device(idx).Circuit == graph.Circuit1 {
			c1++
		} else {
			c2++
		}
	}
	return &graph.DeviceClass{Members: members, Count1: c1, Count2: c2, LegalPartition: c1 == c2}
}

func newNetClass(a *graph.Arena, members []graph.NetIndex) *graph.NetClass {
	var c1, c2 int
	for _, idx := range members {
		if a.Net(idx).Circuit == graph.Circuit1 {
			c1++
		} else {
			c2++
		}
	}
	return &graph.NetClass{Members: members, Count1: c1, Count2: c2, LegalPartition: c1 == c2}
}

// mergeIllegalDeviceClasses implements the bookkeeping sweep (spec.md
// §4.2): "gathers all !legal_partition classes under one merged 'illegal'
// class (prevents runaway fragmentation of the error region)".
func mergeIllegalDeviceClasses(classes []*graph.DeviceClass) []*graph.DeviceClass {
	var legal []*graph.DeviceClass
	var illegalMembers []graph.DeviceIndex
	var c1, c2 int
	found := false
	for _, c := range classes {
		if c.LegalPartition {
			legal = append(legal, c)
			continue
		}
		found = true
		illegalMembers = append(illegalMembers, c.Members...)
		c1 += c.Count1
		c2 += c.Count2
	}
	if !found {
		return legal
	}
	return append(legal, &graph.DeviceClass{Members: illegalMembers, Count1: c1, Count2: c2, LegalPartition: false})
}

// mergeIllegalNetClasses mirrors mergeIllegalDeviceClasses for nets.
func mergeIllegalNetClasses(classes []*graph.NetClass) []*graph.NetClass {
	var legal []*graph.NetClass
	var illegalMembers []graph.NetIndex
	var c1, c2 int
	found := false
	for _, c := range classes {
		if c.LegalPartition {
			legal = append(legal, c)
			continue
		}
		found = true
		illegalMembers = append(illegalMembers, c.Members...)
		c1 += c.Count1
		c2 += c.Count2
	}
	if !found {
		return legal
	}
	return append(legal, &graph.NetClass{Members: illegalMembers, Count1: c1, Count2: c2, LegalPartition: false})
}
