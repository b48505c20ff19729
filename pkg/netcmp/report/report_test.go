package report

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/OpenTraceLab/netcmp/pkg/netcmp"
	"github.com/OpenTraceLab/netcmp/pkg/netcmp/celldef"
)

func identicalPairRegistry(t *testing.T) *celldef.Registry {
	t.Helper()
	reg := celldef.NewRegistry()
	for _, tag := range []int{1, 2} {
		def := celldef.NewCellDefinition("inv", tag)
		def.Pins = []celldef.PinDecl{{Name: "in"}, {Name: "out"}, {Name: "vdd"}, {Name: "gnd"}}
		def.Devices = []celldef.DeviceDecl{
			{Name: "mp", Class: "pfet", PinNets: []string{"in", "out", "vdd", "vdd"}},
			{Name: "mn", Class: "nfet", PinNets: []string{"in", "out", "gnd", "gnd"}},
		}
		reg.Add(def)
	}
	return reg
}

func runCompare(t *testing.T, reg *celldef.Registry) (*netcmp.Engine, *celldef.CellDefinition, *celldef.CellDefinition) {
	t.Helper()
	eng := netcmp.EngineNew(reg, netcmp.DefaultOptions())
	if err := eng.CreateTwoLists("inv", 1, "inv", 2); err != nil {
		t.Fatalf("CreateTwoLists: %v", err)
	}
	eng.Permute()
	if err := eng.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	def1, def2 := eng.Definitions()
	return eng, def1, def2
}

func TestBuildMatchedSummary(t *testing.T) {
	reg := identicalPairRegistry(t)
	eng, def1, def2 := runCompare(t, reg)

	if v := eng.VerifyMatching(); v != 0 {
		t.Fatalf("VerifyMatching = %d, want 0 (perfect match)", v)
	}

	s := Build(eng.Arena(), def1, def2)
	if s.Devices1 != 2 || s.Devices2 != 2 {
		t.Errorf("Devices1/2 = %d/%d, want 2/2", s.Devices1, s.Devices2)
	}
	if len(s.Mismatched) != 0 {
		t.Errorf("expected no mismatched groups, got %+v", s.Mismatched)
	}
	if len(s.Matched) == 0 {
		t.Errorf("expected matched groups, got none")
	}

	var buf bytes.Buffer
	if err := WriteText(&buf, s); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if !strings.Contains(buf.String(), "matched:") {
		t.Errorf("text report missing matched section:\n%s", buf.String())
	}

	var jbuf bytes.Buffer
	if err := WriteJSON(&jbuf, s); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if !strings.Contains(jbuf.String(), "\"devices1\"") {
		t.Errorf("json report missing devices1 field:\n%s", jbuf.String())
	}
}

func TestBuildMismatchedSummary(t *testing.T) {
	reg := celldef.NewRegistry()
	def1 := celldef.NewCellDefinition("cell", 1)
	def1.Pins = []celldef.PinDecl{{Name: "a"}, {Name: "b"}}
	def1.Devices = []celldef.DeviceDecl{
		{Name: "r1", Class: "R", PinNets: []string{"a", "b"}},
	}
	reg.Add(def1)

	def2 := celldef.NewCellDefinition("cell", 2)
	def2.Pins = []celldef.PinDecl{{Name: "a"}, {Name: "b"}}
	def2.Devices = []celldef.DeviceDecl{
		{Name: "c1", Class: "C", PinNets: []string{"a", "b"}},
	}
	reg.Add(def2)

	eng, d1, d2 := runCompare2(t, reg)
	if v := eng.VerifyMatching(); v >= 0 {
		t.Fatalf("VerifyMatching = %d, want negative (mismatch)", v)
	}

	s := Build(eng.Arena(), d1, d2)
	if len(s.Mismatched) == 0 {
		t.Errorf("expected at least one mismatched group")
	}
}

func TestBuildCollectsNetworkDumpForTrailLengthMismatch(t *testing.T) {
	reg := celldef.NewRegistry()
	propKeys := map[string]*celldef.PropertyKeyDef{
		"R": {
			Key: "R", Type: "double", Slop: 0.01,
			ParallelPolicy: celldef.ParallelCritical, SeriesPolicy: celldef.SeriesCritical,
		},
	}

	def1 := celldef.NewCellDefinition("leaf", 1)
	def1.Pins = []celldef.PinDecl{{Name: "a"}, {Name: "b"}}
	def1.PropKeys = propKeys
	def1.Devices = []celldef.DeviceDecl{{
		Name: "r1", Class: "R", PinNets: []string{"a", "b"},
		Props: map[string]celldef.PropertyValue{"R": {Raw: "2000", Kind: "double"}},
		Trail: []map[string]celldef.PropertyValue{
			{"R": {Raw: "1000", Kind: "double"}},
			{"R": {Raw: "1000", Kind: "double"}},
		},
	}}
	reg.Add(def1)

	def2 := celldef.NewCellDefinition("leaf", 2)
	def2.Pins = []celldef.PinDecl{{Name: "a"}, {Name: "b"}}
	def2.PropKeys = propKeys
	def2.Devices = []celldef.DeviceDecl{{
		Name: "r1", Class: "R", PinNets: []string{"a", "b"},
		Props: map[string]celldef.PropertyValue{"R": {Raw: "2000", Kind: "double"}},
	}}
	reg.Add(def2)

	eng := netcmp.EngineNew(reg, netcmp.DefaultOptions())
	if err := eng.CreateTwoLists("leaf", 1, "leaf", 2); err != nil {
		t.Fatalf("CreateTwoLists: %v", err)
	}
	if err := eng.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	d1, d2 := eng.Definitions()
	s := Build(eng.Arena(), d1, d2)
	if len(s.NetworkDumps) != 2 {
		t.Fatalf("NetworkDumps = %d entries, want 2", len(s.NetworkDumps))
	}
	if !strings.Contains(s.NetworkDumps[0], "Circuit 1 instance r1 network:") {
		t.Errorf("first dump missing circuit 1 header:\n%s", s.NetworkDumps[0])
	}
	if !strings.Contains(s.NetworkDumps[1], "Circuit 2 instance r1 network:") {
		t.Errorf("second dump missing circuit 2 header:\n%s", s.NetworkDumps[1])
	}

	var buf bytes.Buffer
	if err := WriteText(&buf, s); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if !strings.Contains(buf.String(), "network:") {
		t.Errorf("text report missing rendered network dump:\n%s", buf.String())
	}
}

func runCompare2(t *testing.T, reg *celldef.Registry) (*netcmp.Engine, *celldef.CellDefinition, *celldef.CellDefinition) {
	t.Helper()
	eng := netcmp.EngineNew(reg, netcmp.DefaultOptions())
	if err := eng.CreateTwoLists("cell", 1, "cell", 2); err != nil {
		t.Fatalf("CreateTwoLists: %v", err)
	}
	eng.Permute()
	if err := eng.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	def1, def2 := eng.Definitions()
	return eng, def1, def2
}
