package graph

import (
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/OpenTraceLab/netcmp/pkg/netcmp/celldef"
	"github.com/OpenTraceLab/netcmp/pkg/netprop"
)

// ErrCellNotFound is returned when a requested cell name cannot be
// resolved by a Registry (spec.md §7 CellNotFound).
var ErrCellNotFound = errors.New("graph: cell not found")

// Lookup is the minimal registry surface the builder needs; satisfied by
// *celldef.Registry.
type Lookup interface {
	Lookup(name string, fileTag int) (*celldef.CellDefinition, error)
}

// Build implements the Graph Builder (spec.md §4.1): given two cell names
// (each with its own file tag), it walks both cells' device tables and
// produces a single Arena holding both circuits spliced into one Device
// list and one Net list, each placed in a single root class.
func Build(lk Lookup, name1 string, tag1 int, name2 string, tag2 int) (*Arena, error) {
	def1, err := lk.Lookup(name1, tag1)
	if err != nil {
		return nil, fmt.Errorf("%w: %s (file %d)", ErrCellNotFound, name1, tag1)
	}
	def2, err := lk.Lookup(name2, tag2)
	if err != nil {
		return nil, fmt.Errorf("%w: %s (file %d)", ErrCellNotFound, name2, tag2)
	}

	a := New()
	nets1 := map[string]NetIndex{}
	nets2 := map[string]NetIndex{}

	for _, dd := range def1.Devices {
		addDevice(a, Circuit1, def1, dd, nets1)
	}
	for _, dd := range def2.Devices {
		addDevice(a, Circuit2, def2, dd, nets2)
	}

	padDummyPins(a)

	a.AllDevicesOneClass()
	a.AllNetsOneClass()
	return a, nil
}

func addDevice(a *Arena, circ Circuit, def *celldef.CellDefinition, dd celldef.DeviceDecl, nets map[string]NetIndex) DeviceIndex {
	di := a.AddDevice(Device{
		Circuit: circ,
		Name:    dd.Name,
		Class:   dd.Class,
		Props:   netprop.BuildRecord(def.PropKeys, dd.Props),
		Trail:   buildTrail(def, dd.Trail),
	})

	seed := seedMagic(dd.Class)
	pins := make([]PinEndpoint, 0, len(dd.PinNets))
	for pinIdx, netName := range dd.PinNets {
		pinName := pinNameForIndex(def, dd.Class, pinIdx)
		magic := seed + uint64(pinIdx)
		for _, p := range def.Permutes {
			if p.Class == dd.Class && (p.PinA == pinName || p.PinB == pinName) {
				// Both pins of a declared-permutable pair share one magic,
				// seeded from the pair identity so it is stable regardless
				// of which side we see first.
				magic = seedMagic(dd.Class+"#"+minmax(p.PinA, p.PinB))
			}
		}

		ep := PinEndpoint{Device: di, PinName: pinName, PermMagic: magic}

		if netName == "" {
			// Unconnected pin: retain the device-side endpoint with the
			// sentinel net reference; do not install a back-pointer
			// (spec.md §4.1 "Unconnected pins are dropped from the net
			// side but retain their device-side endpoint").
			ep.Net = NoNet
			pins = append(pins, ep)
			continue
		}

		ni, ok := nets[netName]
		if !ok {
			ni = a.AddNet(Net{Circuit: circ, Name: netName})
			nets[netName] = ni
		}
		ep.Net = ni
		pins = append(pins, ep)

		n := a.Net(ni)
		n.Pins = append(n.Pins, PinEndpoint{Device: di, Net: ni, PinName: pinName, PermMagic: magic})
	}
	a.Device(di).Pins = pins
	return di
}

// buildTrail converts a DeviceDecl's raw merge trail (pkg/netcmp/reduce's
// output) into typed records a device carries into comparison (spec.md
// §4.5's final paragraph: trail records feed PropertyMatchTrails when two
// merged devices have differing trail lengths).
func buildTrail(def *celldef.CellDefinition, raw []map[string]celldef.PropertyValue) []*netprop.Record {
	if len(raw) == 0 {
		return nil
	}
	trail := make([]*netprop.Record, len(raw))
	for i, rawRecord := range raw {
		trail[i] = netprop.BuildRecord(def.PropKeys, rawRecord)
	}
	return trail
}

// pinNameForIndex names pin position idx after the idx-th entry of
// def.Pins, the pin signature of the cell that contains the device; the
// class argument is not consulted, so a device class's own pin names are
// never looked up. Positions past the end of def.Pins get the positional
// label "pinN". Connected and disconnected pins are named the same way.
func pinNameForIndex(def *celldef.CellDefinition, class string, idx int) string {
	if idx < len(def.Pins) {
		return def.Pins[idx].Name
	}
	return fmt.Sprintf("pin%d", idx)
}

// seedMagic seeds a pin-permutation magic generator from a hash of the
// device's class name (spec.md §4.1).
func seedMagic(class string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(class))
	return h.Sum64()
}

func minmax(a, b string) string {
	if a < b {
		return a + "," + b
	}
	return b + "," + a
}

// padDummyPins inserts dummy pins so that the two cells being compared
// have equal pin arity (spec.md §4.7, referenced from §4.1). A
// disconnected pin keeps its ordinary pin name and is marked only by the
// NoNet sentinel; a dummy pin likewise never resolves to a real net.
//
// This operates at the whole-cell level: devices of the same Class across
// the two circuits get padded up to the max pin count observed for that
// class, using a synthetic "dummy.N" pin name that cannot collide with a
// declared name.
func padDummyPins(a *Arena) {
	maxPins := map[string]int{}
	for i := 1; i < len(a.Devices); i++ {
		d := &a.Devices[i]
		if n := len(d.Pins); n > maxPins[d.Class] {
			maxPins[d.Class] = n
		}
	}
	for i := 1; i < len(a.Devices); i++ {
		d := &a.Devices[i]
		want := maxPins[d.Class]
		for len(d.Pins) < want {
			d.Pins = append(d.Pins, PinEndpoint{
				Device:    DeviceIndex(i),
				Net:       NoNet,
				PinName:   fmt.Sprintf("dummy.%d", len(d.Pins)),
				PermMagic: seedMagic(d.Class) + uint64(len(d.Pins))<<32,
			})
		}
	}
}
