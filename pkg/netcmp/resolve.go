package netcmp

import (
	"context"

	"github.com/OpenTraceLab/netcmp/pkg/netcmp/graph"
	"github.com/OpenTraceLab/netcmp/pkg/netcmp/symmetry"
)

// ResolveAutomorphisms implements spec.md §6: one symmetry-breaking step,
// to be called repeatedly until it returns <= 0. Each call tries the
// three strategies of spec.md §4.6 in order — by pin name, by property,
// then one arbitrary pick — applies the first one that has anything to
// offer, and re-refines to a fixed point with exhaustive subdivision
// enabled (spec.md: "Between each strategy, the full refinement loop
// runs to fixed point with 'exhaustive subdivision' enabled").
func (e *Engine) ResolveAutomorphisms(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, ErrInterrupted
	}
	if !symmetry.HasAutomorphism(e.arena) {
		return e.VerifyMatching(), nil
	}

	picks := symmetry.PinNameMatches(e.arena)
	if len(picks) == 0 {
		picks = symmetry.PropertyMatches(e.arena, e.def1.PropKeys)
	}
	if len(picks) == 0 {
		if p := symmetry.Arbitrary(e.arena); p != nil {
			picks = []symmetry.Pick{*p}
		}
	}
	if len(picks) == 0 {
		// No strategy applies but automorphisms remain: nothing left to
		// try, report the current (non-zero) count rather than loop
		// forever.
		return e.VerifyMatching(), nil
	}

	for _, p := range picks {
		applyPick(e.arena, p)
	}

	prevExhaustive := e.opts.ExhaustiveSubdivision
	e.opts.ExhaustiveSubdivision = true
	err := e.Run(ctx)
	e.opts.ExhaustiveSubdivision = prevExhaustive
	if err != nil {
		return 0, err
	}
	return e.VerifyMatching(), nil
}

func applyPick(a *graph.Arena, p symmetry.Pick) {
	salt := fnvHash(p.Reason)
	if p.IsDevice {
		a.Device(graph.DeviceIndex(p.I1)).PrevHash ^= salt
		a.Device(graph.DeviceIndex(p.I2)).PrevHash ^= salt
		return
	}
	// Net classes have no history of their own; bias the devices wired to
	// the two picked nets instead, exactly like applyNodeHints.
	for _, pin := range a.Net(graph.NetIndex(p.I1)).Pins {
		a.Device(pin.Device).PrevHash ^= salt
	}
	for _, pin := range a.Net(graph.NetIndex(p.I2)).Pins {
		a.Device(pin.Device).PrevHash ^= salt
	}
}
