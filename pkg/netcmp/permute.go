package netcmp

import (
	"hash/fnv"

	"github.com/OpenTraceLab/netcmp/pkg/netcmp/celldef"
	"github.com/OpenTraceLab/netcmp/pkg/netcmp/graph"
)

// applyPermutes implements spec.md §4.3: for every declared permutable
// pin pair on a device class, set both pins' permutation magics to the
// same value on every device of that class, so refinement is blind to
// their order. Pin-permutation magics are otherwise stable across
// refinement (invariant 4); Permute is the one place that is allowed to
// write them, and only before the first Iterate call.
func applyPermutes(a *graph.Arena, perms []celldef.PermutePair) {
	if len(perms) == 0 {
		return
	}
	byClass := map[string][]celldef.PermutePair{}
	for _, p := range perms {
		byClass[p.Class] = append(byClass[p.Class], p)
	}

	for i := 1; i < len(a.Devices); i++ {
		d := &a.Devices[i]
		pairs, ok := byClass[d.Class]
		if !ok {
			continue
		}
		for _, p := range pairs {
			magic := pairMagic(d.Class, p.PinA, p.PinB)
			for pi := range d.Pins {
				if d.Pins[pi].PinName == p.PinA || d.Pins[pi].PinName == p.PinB {
					d.Pins[pi].PermMagic = magic
				}
			}
		}
	}
}

func pairMagic(class, pinA, pinB string) uint64 {
	a, b := pinA, pinB
	if b < a {
		a, b = b, a
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(class + "#" + a + "," + b))
	return h.Sum64()
}
