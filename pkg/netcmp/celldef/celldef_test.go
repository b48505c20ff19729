package celldef

import "testing"

func TestRegistryAddAndLookup(t *testing.T) {
	reg := NewRegistry()
	def := NewCellDefinition("inv", 1)
	reg.Add(def)

	got, err := reg.Lookup("inv", 1)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got != def {
		t.Errorf("Lookup returned a different definition than was added")
	}
}

func TestRegistryLookupMissing(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Lookup("missing", 1); err == nil {
		t.Errorf("expected an error for an unregistered cell")
	}
}

func TestRegistryLookupDistinguishesFileTag(t *testing.T) {
	reg := NewRegistry()
	reg.Add(NewCellDefinition("inv", 1))
	if _, err := reg.Lookup("inv", 2); err == nil {
		t.Errorf("expected file tag 2 to be distinct from file tag 1")
	}
}

func TestRegistryAllReturnsEveryDefinition(t *testing.T) {
	reg := NewRegistry()
	reg.Add(NewCellDefinition("a", 1))
	reg.Add(NewCellDefinition("b", 1))
	reg.Add(NewCellDefinition("a", 2))
	if got := len(reg.All()); got != 3 {
		t.Errorf("All() returned %d definitions, want 3", got)
	}
}

func TestIsGlobal(t *testing.T) {
	def := NewCellDefinition("cell", 1)
	def.GlobalNets["vdd"] = true
	if !def.IsGlobal("vdd") {
		t.Errorf("expected vdd to be global")
	}
	if def.IsGlobal("out") {
		t.Errorf("expected out to not be global")
	}
}

func TestDefaultTransistorPermutes(t *testing.T) {
	perms := DefaultTransistorPermutes("nfet")
	if len(perms) != 1 || perms[0].PinA != "drain" || perms[0].PinB != "source" {
		t.Fatalf("unexpected nfet permutes: %+v", perms)
	}
	if got := DefaultTransistorPermutes("R"); got != nil {
		t.Errorf("expected no default permutes for a resistor, got %+v", got)
	}
}
