package netcmp

// EngineOptions controls the behavior of a Compare call, grounded on
// pkg/reveng.Config's Default*()-constructor pattern.
type EngineOptions struct {
	// ExhaustiveSubdivision forces every class to be fractured each
	// iteration, including matched pairs of size 2 (spec.md §4.2). It is
	// turned on automatically between symmetry-breaking strategies and
	// can also be requested up front.
	ExhaustiveSubdivision bool

	// CaseSensitiveStrings is not read by the engine or the property
	// matcher: case sensitivity of string property comparison is set per
	// property key by celldef.PropertyKeyDef.CaseSensitive alone.
	CaseSensitiveStrings bool

	// IgnoreParasitics pre-populates the ignore list with the built-in
	// resistor/capacitor device classes before comparison starts,
	// matching the CLI's -i flag (SPEC_FULL.md supplemented feature 2).
	IgnoreParasitics bool

	// MaxIterations bounds the refinement loop as a last-resort safety
	// net on top of the natural bound (device+net count); spec.md §4.2
	// proves termination but a defensive cap avoids a runaway loop from
	// ever becoming a hang under a bug.
	MaxIterations int
}

// DefaultOptions returns the engine's default behavior: no exhaustive
// subdivision, case-insensitive string properties, parasitics included.
func DefaultOptions() EngineOptions {
	return EngineOptions{
		ExhaustiveSubdivision: false,
		CaseSensitiveStrings:  false,
		IgnoreParasitics:      false,
		MaxIterations:         0, // 0 means "derive from element count"
	}
}
