package symmetry

import (
	"testing"

	"github.com/OpenTraceLab/netcmp/pkg/netcmp/celldef"
	"github.com/OpenTraceLab/netcmp/pkg/netcmp/graph"
	"github.com/OpenTraceLab/netcmp/pkg/netprop"
)

// buildAutomorphicArena builds two identical 2-resistor parallel groups,
// one per circuit, left in a single automorphic class of size 4 (so the
// refinement loop could not tell them apart on its own).
func buildAutomorphicArena(t *testing.T) *graph.Arena {
	t.Helper()
	a := graph.New()
	dict := map[string]*celldef.PropertyKeyDef{"R": {Key: "R", Type: "double", Slop: 0.01}}

	rec := func() *netprop.Record {
		r := netprop.BuildRecord(dict, map[string]celldef.PropertyValue{"R": {Raw: "1000", Kind: "double"}})
		return r
	}

	var members []graph.DeviceIndex
	for _, circ := range []graph.Circuit{graph.Circuit1, graph.Circuit2} {
		for _, name := range []string{"ra", "rb"} {
			idx := a.AddDevice(graph.Device{Circuit: circ, Name: name, Class: "R", Props: rec()})
			members = append(members, idx)
		}
	}
	a.SetDeviceClasses([]*graph.DeviceClass{{
		Members: members, Count1: 2, Count2: 2, LegalPartition: true,
	}})

	var netMembers []graph.NetIndex
	for _, circ := range []graph.Circuit{graph.Circuit1, graph.Circuit2} {
		for _, name := range []string{"na", "nb"} {
			idx := a.AddNet(graph.Net{Circuit: circ, Name: name})
			netMembers = append(netMembers, idx)
		}
	}
	a.SetNetClasses([]*graph.NetClass{{
		Members: netMembers, Count1: 2, Count2: 2, LegalPartition: true,
	}})

	return a
}

func TestHasAutomorphismDetectsMultiMemberClass(t *testing.T) {
	a := buildAutomorphicArena(t)
	if !HasAutomorphism(a) {
		t.Errorf("expected an automorphism on a 2-vs-2 legal class")
	}
}

func TestHasAutomorphismFalseOnceMatched(t *testing.T) {
	a := graph.New()
	i1 := a.AddDevice(graph.Device{Circuit: graph.Circuit1, Name: "r1", Class: "R"})
	i2 := a.AddDevice(graph.Device{Circuit: graph.Circuit2, Name: "r1", Class: "R"})
	a.SetDeviceClasses([]*graph.DeviceClass{{
		Members: []graph.DeviceIndex{i1, i2}, Count1: 1, Count2: 1, LegalPartition: true,
	}})
	if HasAutomorphism(a) {
		t.Errorf("a matched 1-vs-1 class is not an automorphism")
	}
}

func TestPinNameMatchesPairsIdenticalNames(t *testing.T) {
	a := buildAutomorphicArena(t)
	picks := PinNameMatches(a)
	if len(picks) != 2 {
		t.Fatalf("got %d picks, want 2 (na and nb each pair by name)", len(picks))
	}
	for _, p := range picks {
		if p.IsDevice {
			t.Errorf("PinNameMatches should only ever pick nets")
		}
	}
}

func TestPropertyMatchesPairsEqualRecords(t *testing.T) {
	a := buildAutomorphicArena(t)
	dict := map[string]*celldef.PropertyKeyDef{"R": {Key: "R", Type: "double", Slop: 0.01}}
	picks := PropertyMatches(a, dict)
	if len(picks) == 0 {
		t.Fatalf("expected at least one property-matched pick")
	}
	for _, p := range picks {
		if !p.IsDevice {
			t.Errorf("PropertyMatches should only ever pick devices")
		}
	}
}

func TestArbitraryPicksOneFromEachCircuit(t *testing.T) {
	a := buildAutomorphicArena(t)
	pick := Arbitrary(a)
	if pick == nil {
		t.Fatalf("expected a pick from the remaining automorphic class")
	}
	d1 := a.Device(graph.DeviceIndex(pick.I1))
	d2 := a.Device(graph.DeviceIndex(pick.I2))
	if d1.Circuit != graph.Circuit1 || d2.Circuit != graph.Circuit2 {
		t.Errorf("Arbitrary must pick one member per circuit")
	}
}
