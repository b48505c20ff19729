package hierarchy

import (
	"fmt"

	"github.com/OpenTraceLab/netcmp/pkg/netcmp/celldef"
	"github.com/OpenTraceLab/netcmp/pkg/netcmp/graph"
)

// matchPins implements spec.md §4.7's match-pins post-step: after a
// successful subcell compare, reorder circuit 2's pin declarations to
// align with circuit 1's, using the net classes the just-completed compare
// settled on to discover which circuit-2 net corresponds to which named
// circuit-1 pin. Proxy pins (dummy, unconnected) are added to whichever
// side comes up short so both instances end with equal pin arity.
func matchPins(a *graph.Arena, def1, def2 *celldef.CellDefinition) {
	if a == nil || def1 == nil || def2 == nil {
		return
	}

	classOf1 := map[string]*graph.NetClass{}
	nameOf2 := map[*graph.NetClass]string{}
	for i := 1; i < len(a.Nets); i++ {
		n := &a.Nets[i]
		cls := a.NetClassOf(graph.NetIndex(i))
		if cls == nil {
			continue
		}
		switch n.Circuit {
		case graph.Circuit1:
			classOf1[n.Name] = cls
		case graph.Circuit2:
			nameOf2[cls] = n.Name
		}
	}

	ordered := make([]celldef.PinDecl, 0, len(def1.Pins))
	used2 := map[string]bool{}
	for _, p := range def1.Pins {
		cls, ok := classOf1[p.Name]
		if !ok {
			continue
		}
		name2, ok := nameOf2[cls]
		if !ok {
			continue
		}
		ordered = append(ordered, celldef.PinDecl{Name: name2})
		used2[name2] = true
	}
	for _, p := range def2.Pins {
		if !used2[p.Name] {
			ordered = append(ordered, p)
		}
	}
	def2.Pins = ordered

	for len(def1.Pins) < len(def2.Pins) {
		def1.Pins = append(def1.Pins, celldef.PinDecl{Name: fmt.Sprintf("proxy.%d", len(def1.Pins))})
	}
	for len(def2.Pins) < len(def1.Pins) {
		def2.Pins = append(def2.Pins, celldef.PinDecl{Name: fmt.Sprintf("proxy.%d", len(def2.Pins))})
	}
}
