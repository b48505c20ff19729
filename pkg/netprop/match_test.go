package netprop

import (
	"testing"

	"github.com/OpenTraceLab/netcmp/pkg/netcmp/celldef"
)

func TestPropertyMatchExactValues(t *testing.T) {
	dict := map[string]*celldef.PropertyKeyDef{
		"w": {Key: "w", Type: "double", Slop: 0.01},
	}
	r1 := NewRecord()
	r1.Set("w", DoubleValue(1.0))
	r2 := NewRecord()
	r2.Set("w", DoubleValue(1.0))

	res, err := PropertyMatch(dict, r1, r2)
	if err != nil {
		t.Fatalf("PropertyMatch: %v", err)
	}
	if res.Mismatches != 0 {
		t.Errorf("Mismatches = %d, want 0", res.Mismatches)
	}
}

func TestPropertyMatchWithinSlopIsNotAMismatch(t *testing.T) {
	dict := map[string]*celldef.PropertyKeyDef{
		"w": {Key: "w", Type: "double", Slop: 0.1},
	}
	r1 := NewRecord()
	r1.Set("w", DoubleValue(1.0))
	r2 := NewRecord()
	r2.Set("w", DoubleValue(1.02))

	res, err := PropertyMatch(dict, r1, r2)
	if err != nil {
		t.Fatalf("PropertyMatch: %v", err)
	}
	if res.Mismatches != 0 {
		t.Errorf("Mismatches = %d, want 0 (within slop)", res.Mismatches)
	}
}

func TestPropertyMatchOutsideSlopIsAMismatch(t *testing.T) {
	dict := map[string]*celldef.PropertyKeyDef{
		"w": {Key: "w", Type: "double", Slop: 0.01},
	}
	r1 := NewRecord()
	r1.Set("w", DoubleValue(1.0))
	r2 := NewRecord()
	r2.Set("w", DoubleValue(2.0))

	res, err := PropertyMatch(dict, r1, r2)
	if err != nil {
		t.Fatalf("PropertyMatch: %v", err)
	}
	if res.Mismatches != 1 {
		t.Errorf("Mismatches = %d, want 1", res.Mismatches)
	}
}

func TestPropertyMatchPromotesIntToDouble(t *testing.T) {
	dict := map[string]*celldef.PropertyKeyDef{
		"n": {Key: "n", Type: "double", Slop: 0.01},
	}
	r1 := NewRecord()
	r1.Set("n", IntValue(4))
	r2 := NewRecord()
	r2.Set("n", DoubleValue(4.0))

	res, err := PropertyMatch(dict, r1, r2)
	if err != nil {
		t.Fatalf("PropertyMatch: %v", err)
	}
	if res.Mismatches != 0 {
		t.Errorf("Mismatches = %d, want 0 after int->double promotion", res.Mismatches)
	}
}

func TestPropertyMatchExpressionAlwaysUnresolved(t *testing.T) {
	dict := map[string]*celldef.PropertyKeyDef{
		"r": {Key: "r", Type: "expr"},
	}
	r1 := NewRecord()
	r1.Set("r", ExpressionValue("(* w l)"))
	r2 := NewRecord()
	r2.Set("r", ExpressionValue("(* w l)"))

	res, err := PropertyMatch(dict, r1, r2)
	if err != nil {
		t.Fatalf("PropertyMatch: %v", err)
	}
	if res.Mismatches != 1 {
		t.Errorf("Mismatches = %d, want 1 (expressions are always unresolved)", res.Mismatches)
	}
	if len(res.Unresolved) != 1 || res.Unresolved[0] != "r" {
		t.Errorf("Unresolved = %v, want [\"r\"]", res.Unresolved)
	}
}

func TestPropertyMatchMissingOnOneSideIsAMismatch(t *testing.T) {
	dict := map[string]*celldef.PropertyKeyDef{
		"w": {Key: "w", Type: "double"},
	}
	r1 := NewRecord()
	r1.Set("w", DoubleValue(1.0))
	r2 := NewRecord()

	res, err := PropertyMatch(dict, r1, r2)
	if err != nil {
		t.Fatalf("PropertyMatch: %v", err)
	}
	if res.Mismatches != 1 {
		t.Errorf("Mismatches = %d, want 1", res.Mismatches)
	}
}

func TestPropertyMatchNilVsPopulatedTriggersDump(t *testing.T) {
	dict := map[string]*celldef.PropertyKeyDef{}
	r2 := NewRecord()
	r2.Set("w", DoubleValue(1.0))

	res, err := PropertyMatch(dict, nil, r2)
	if err != nil {
		t.Fatalf("PropertyMatch: %v", err)
	}
	if !res.NeedsDump {
		t.Errorf("expected NeedsDump when one side has no property record at all")
	}
}

func TestPropertyMatchStringCaseInsensitiveByDefault(t *testing.T) {
	dict := map[string]*celldef.PropertyKeyDef{
		"model": {Key: "model", Type: "string"},
	}
	r1 := NewRecord()
	r1.Set("model", StringValue("NMOS"))
	r2 := NewRecord()
	r2.Set("model", StringValue("nmos"))

	res, err := PropertyMatch(dict, r1, r2)
	if err != nil {
		t.Fatalf("PropertyMatch: %v", err)
	}
	if res.Mismatches != 0 {
		t.Errorf("Mismatches = %d, want 0 (case-insensitive default)", res.Mismatches)
	}
}

func TestPropertyMatchStringCaseSensitiveWhenFlagged(t *testing.T) {
	dict := map[string]*celldef.PropertyKeyDef{
		"model": {Key: "model", Type: "string", CaseSensitive: true},
	}
	r1 := NewRecord()
	r1.Set("model", StringValue("NMOS"))
	r2 := NewRecord()
	r2.Set("model", StringValue("nmos"))

	res, err := PropertyMatch(dict, r1, r2)
	if err != nil {
		t.Fatalf("PropertyMatch: %v", err)
	}
	if res.Mismatches != 1 {
		t.Errorf("Mismatches = %d, want 1 (case-sensitive)", res.Mismatches)
	}
}

func TestPropertyMatchTrailsAlignsEqualLengthTrails(t *testing.T) {
	dict := map[string]*celldef.PropertyKeyDef{
		"R": {Key: "R", Type: "double", Slop: 0.01, ParallelPolicy: celldef.ParallelCritical, SeriesPolicy: celldef.SeriesCritical},
		"M": {Key: "M", Type: "int", ParallelPolicy: celldef.ParallelAdditive, SeriesPolicy: celldef.SeriesNothing},
	}
	rec := func(r float64, m int) *Record {
		rec := NewRecord()
		rec.Set("R", DoubleValue(r))
		rec.Set("M", IntValue(m))
		return rec
	}
	// Same two records, reported in opposite order on each side; alignment
	// must still pair them up and find no mismatch.
	t1 := []*Record{rec(2000, 1), rec(1000, 1)}
	t2 := []*Record{rec(1000, 1), rec(2000, 1)}

	res, err := PropertyMatchTrails(dict, t1, t2)
	if err != nil {
		t.Fatalf("PropertyMatchTrails: %v", err)
	}
	if res.Mismatches != 0 {
		t.Errorf("Mismatches = %d, want 0 after alignment", res.Mismatches)
	}
	if res.NeedsDump {
		t.Errorf("did not expect NeedsDump for equal-length trails")
	}
}

func TestPropertyMatchTrailsFlagsLengthMismatch(t *testing.T) {
	dict := map[string]*celldef.PropertyKeyDef{
		"R": {Key: "R", Type: "double", Slop: 0.01, ParallelPolicy: celldef.ParallelCritical, SeriesPolicy: celldef.SeriesCritical},
	}
	rec := func(r float64) *Record {
		rec := NewRecord()
		rec.Set("R", DoubleValue(r))
		return rec
	}
	t1 := []*Record{rec(1000), rec(2000)}
	t2 := []*Record{rec(1000)}

	res, err := PropertyMatchTrails(dict, t1, t2)
	if err != nil {
		t.Fatalf("PropertyMatchTrails: %v", err)
	}
	if res.Mismatches == 0 {
		t.Errorf("expected a mismatch count for a trail length difference")
	}
	if !res.NeedsDump {
		t.Errorf("expected NeedsDump when trail lengths differ after alignment")
	}
}

func TestValidateMSRejectsBothMAndS(t *testing.T) {
	r := NewRecord()
	r.Set("M", IntValue(2))
	r.Set("S", IntValue(2))
	if err := ValidateMS(r); err == nil {
		t.Errorf("expected an error when both M>1 and S>1")
	}
}

func TestValidateMSAllowsOneSide(t *testing.T) {
	r := NewRecord()
	r.Set("M", IntValue(3))
	if err := ValidateMS(r); err != nil {
		t.Errorf("ValidateMS: %v", err)
	}
}
