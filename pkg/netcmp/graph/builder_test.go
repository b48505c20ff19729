package graph

import (
	"testing"

	"github.com/OpenTraceLab/netcmp/pkg/netcmp/celldef"
)

func twoResistorLeaf(tag int) *celldef.CellDefinition {
	def := celldef.NewCellDefinition("leaf", tag)
	def.Pins = []celldef.PinDecl{{Name: "a"}, {Name: "b"}}
	def.Devices = []celldef.DeviceDecl{
		{Name: "r1", Class: "R", PinNets: []string{"a", "mid"}},
		{Name: "r2", Class: "R", PinNets: []string{"mid", "b"}},
	}
	return def
}

func TestBuildSplicesBothCircuits(t *testing.T) {
	reg := celldef.NewRegistry()
	reg.Add(twoResistorLeaf(1))
	reg.Add(twoResistorLeaf(2))

	a, err := Build(reg, "leaf", 1, "leaf", 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if a.DeviceCount() != 4 {
		t.Errorf("DeviceCount = %d, want 4", a.DeviceCount())
	}
	// a, mid and b per circuit, two circuits: 6 nets.
	if a.NetCount() != 6 {
		t.Errorf("NetCount = %d, want 6", a.NetCount())
	}
	if len(a.DeviceClasses) != 1 || len(a.DeviceClasses[0].Members) != 4 {
		t.Errorf("expected one root device class holding all 4 devices")
	}
	var c1, c2 int
	for _, idx := range a.DeviceClasses[0].Members {
		if a.Device(idx).Circuit == Circuit1 {
			c1++
		} else {
			c2++
		}
	}
	if c1 != 2 || c2 != 2 {
		t.Errorf("root class split = %d/%d, want 2/2", c1, c2)
	}
}

func TestBuildRejectsUnknownCell(t *testing.T) {
	reg := celldef.NewRegistry()
	if _, err := Build(reg, "missing", 1, "missing", 2); err == nil {
		t.Errorf("expected an error for an unregistered cell")
	}
}

func TestAddDevicePopulatesProps(t *testing.T) {
	def := celldef.NewCellDefinition("leaf", 1)
	def.PropKeys["w"] = &celldef.PropertyKeyDef{Key: "w", Type: "double", Default: "1.0"}
	dd := celldef.DeviceDecl{
		Name: "r1", Class: "R", PinNets: []string{"a", "b"},
		Props: map[string]celldef.PropertyValue{"w": {Raw: "2.0", Kind: "double"}},
	}
	a := New()
	idx := addDevice(a, Circuit1, def, dd, map[string]NetIndex{})
	if a.Device(idx).Props == nil {
		t.Fatalf("expected Device.Props to be populated")
	}
	if _, ok := a.Device(idx).Props.Values["w"]; !ok {
		t.Errorf("expected property %q to be recorded", "w")
	}
}

func TestAddDeviceCarriesTrail(t *testing.T) {
	def := celldef.NewCellDefinition("leaf", 1)
	def.PropKeys["R"] = &celldef.PropertyKeyDef{Key: "R", Type: "double"}
	dd := celldef.DeviceDecl{
		Name: "r1", Class: "R", PinNets: []string{"a", "b"},
		Props: map[string]celldef.PropertyValue{"R": {Raw: "2000", Kind: "double"}},
		Trail: []map[string]celldef.PropertyValue{
			{"R": {Raw: "1000", Kind: "double"}},
			{"R": {Raw: "1000", Kind: "double"}},
		},
	}
	a := New()
	idx := addDevice(a, Circuit1, def, dd, map[string]NetIndex{})
	if len(a.Device(idx).Trail) != 2 {
		t.Fatalf("Trail length = %d, want 2", len(a.Device(idx).Trail))
	}
	v, ok := a.Device(idx).Trail[0].Get("R")
	if !ok || v.Double != 1000 {
		t.Errorf("Trail[0][R] = %+v, want 1000", v)
	}
}

func TestAddDeviceLeavesTrailNilWhenUnmerged(t *testing.T) {
	def := celldef.NewCellDefinition("leaf", 1)
	dd := celldef.DeviceDecl{Name: "r1", Class: "R", PinNets: []string{"a", "b"}}
	a := New()
	idx := addDevice(a, Circuit1, def, dd, map[string]NetIndex{})
	if a.Device(idx).Trail != nil {
		t.Errorf("expected a nil Trail for a device with no merge history")
	}
}
