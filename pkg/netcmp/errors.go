package netcmp

import (
	"errors"

	"github.com/OpenTraceLab/netcmp/pkg/netcmp/graph"
)

// Error kinds named in spec.md §7. CellNotFound is re-exported from
// pkg/netcmp/graph so callers need only import this package's errors.
var (
	// ErrCellNotFound mirrors graph.ErrCellNotFound at the engine's public
	// surface.
	ErrCellNotFound = graph.ErrCellNotFound

	// ErrAllocationError names spec.md §7's AllocationError kind; no
	// engine operation returns it.
	ErrAllocationError = errors.New("netcmp: allocation error")

	// ErrReentrancyViolation is returned by the engine's internal acquire
	// guard when a run is already marked in progress; no exported engine
	// operation takes that guard, so callers do not receive it.
	ErrReentrancyViolation = errors.New("netcmp: reentrancy violation")

	// ErrFatalInternal is set when an invariant is violated, e.g. more
	// than MaxElements live at once (spec.md §7 FatalInternalError).
	ErrFatalInternal = errors.New("netcmp: fatal internal error")

	// ErrInterrupted signals that a caller-supplied cancel flag fired
	// during Iterate or ResolveAutomorphisms (spec.md §5, §7); the
	// reporter takes no context and is not interrupted.
	// Partial state is left intact and safe to inspect or discard.
	ErrInterrupted = errors.New("netcmp: interrupted")
)

// MaxElements bounds the combined device+net count the engine will
// process per Compare call before it raises ErrFatalInternal (Design
// Notes §9 "Recursive descent" / spec.md §7 "more than MAX_ELEMENTS").
const MaxElements = 2_000_000
