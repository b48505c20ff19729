package netscript

import (
	"testing"

	"github.com/OpenTraceLab/netcmp/pkg/netcmp"
	"github.com/OpenTraceLab/netcmp/pkg/netcmp/celldef"
)

func TestParseAllCommandKinds(t *testing.T) {
	src := `
# set up hints before comparing
equate elements m1 m2;
equate nodes net_a net_b;
equate classes inv 1 inv_b 2;
permute nfet drain source;
ignore R delete;
ignore C delete-if-shorted;
compare top 1 top 2;
`
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	s, err := p.ParseString(src)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if len(s.Commands) != 7 {
		t.Fatalf("got %d commands, want 7", len(s.Commands))
	}

	checks := []func(*Command) bool{
		func(c *Command) bool { return c.EquateElements != nil && c.EquateElements.Name1 == "m1" && c.EquateElements.Name2 == "m2" },
		func(c *Command) bool { return c.EquateNodes != nil && c.EquateNodes.Name1 == "net_a" },
		func(c *Command) bool {
			return c.EquateClasses != nil && c.EquateClasses.Tag1 == 1 && c.EquateClasses.Name2 == "inv_b" && c.EquateClasses.Tag2 == 2
		},
		func(c *Command) bool { return c.Permute != nil && c.Permute.Cell == "nfet" && c.Permute.Pin1 == "drain" && c.Permute.Pin2 == "source" },
		func(c *Command) bool { return c.Ignore != nil && c.Ignore.Class == "R" && c.Ignore.Mode == "delete" },
		func(c *Command) bool { return c.Ignore != nil && c.Ignore.Class == "C" && c.Ignore.Mode == "delete-if-shorted" },
		func(c *Command) bool { return c.Compare != nil && c.Compare.Top1 == "top" && c.Compare.Tag2 == 2 },
	}
	for i, check := range checks {
		if !check(s.Commands[i]) {
			t.Errorf("command %d did not match expected shape: %+v", i, s.Commands[i])
		}
	}
}

func TestApplySetsEngineHintsAndReturnsCompares(t *testing.T) {
	src := `
equate elements m1 m2;
permute nfet drain source;
ignore R delete;
compare top 1 top 2;
`
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	s, err := p.ParseString(src)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}

	reg := celldef.NewRegistry()
	eng := netcmp.EngineNew(reg, netcmp.DefaultOptions())
	compares, err := Apply(eng, s)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(compares) != 1 {
		t.Fatalf("got %d compare statements, want 1", len(compares))
	}
	if compares[0].Top1 != "top" || compares[0].Tag2 != 2 {
		t.Errorf("unexpected compare statement: %+v", compares[0])
	}
}

func TestIgnoreModeRejectsUnknown(t *testing.T) {
	if _, err := ignoreMode("bogus"); err == nil {
		t.Errorf("expected an error for an unknown ignore mode")
	}
}

func TestParseAndBuildCellBlock(t *testing.T) {
	src := `
cell inv 1;
pins in out vdd vss;
global vdd vss;
device m1 pfet in out vdd vdd;
device m2 nfet in out vss vss;
endcell;
`
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	s, err := p.ParseString(src)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if len(s.Commands) != 6 {
		t.Fatalf("got %d commands, want 6", len(s.Commands))
	}
	if s.Commands[0].Cell == nil || s.Commands[0].Cell.Name != "inv" || s.Commands[0].Cell.Tag != 1 {
		t.Fatalf("unexpected cell statement: %+v", s.Commands[0])
	}
	if s.Commands[1].Pins == nil || len(s.Commands[1].Pins.Names) != 4 {
		t.Fatalf("unexpected pins statement: %+v", s.Commands[1])
	}
	if s.Commands[2].Global == nil || len(s.Commands[2].Global.Names) != 2 {
		t.Fatalf("unexpected global statement: %+v", s.Commands[2])
	}
	if s.Commands[3].Device == nil || s.Commands[3].Device.Name != "m1" || s.Commands[3].Device.Class != "pfet" {
		t.Fatalf("unexpected device statement: %+v", s.Commands[3])
	}
	if len(s.Commands[3].Device.Nets) != 4 {
		t.Fatalf("got %d device nets, want 4", len(s.Commands[3].Device.Nets))
	}
	if s.Commands[5].EndCell == nil {
		t.Fatalf("unexpected endcell statement: %+v", s.Commands[5])
	}

	reg := celldef.NewRegistry()
	if err := BuildCells(reg, s); err != nil {
		t.Fatalf("BuildCells: %v", err)
	}
	def, err := reg.Lookup("inv", 1)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(def.Pins) != 4 {
		t.Errorf("got %d pins, want 4", len(def.Pins))
	}
	if len(def.Devices) != 2 {
		t.Errorf("got %d devices, want 2", len(def.Devices))
	}
	if !def.IsGlobal("vdd") || !def.IsGlobal("vss") {
		t.Errorf("expected vdd and vss to be global")
	}
}

func TestBuildCellsRejectsUnterminatedBlock(t *testing.T) {
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	s, err := p.ParseString(`cell inv 1; pins in out;`)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if err := BuildCells(celldef.NewRegistry(), s); err == nil {
		t.Errorf("expected an error for an unterminated cell block")
	}
}

func TestBuildCellsRejectsDeviceOutsideCell(t *testing.T) {
	p, err := NewParser()
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	s, err := p.ParseString(`device m1 pfet a b c d;`)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if err := BuildCells(celldef.NewRegistry(), s); err == nil {
		t.Errorf("expected an error for a device statement outside a cell block")
	}
}
