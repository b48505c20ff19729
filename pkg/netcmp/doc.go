// Package netcmp implements the NETCMP engine: an iterative
// partition-refinement algorithm that decides whether two netlists
// (bipartite graphs of devices and nets) are isomorphic up to renaming of
// devices and nets.
//
// # Overview
//
// A comparison walks through a fixed sequence of Engine calls, mirroring
// spec.md §6's external interface. There is no single Compare method; the
// caller makes these calls in order:
//
//  1. CreateTwoLists builds the Device/Net arena from the two input cells
//     (delegated to pkg/netcmp/graph).
//  2. Permute applies any declared pin-interchangeability.
//  3. Iterate is called repeatedly until it reports done; each call
//     assigns fresh class magics, recomputes device/net hashes, and
//     fractures both class lists along hash disagreement.
//  4. VerifyMatching reads off the outcome: -1 mismatch, 0 perfect match,
//     k>0 remaining automorphisms.
//  5. If automorphisms remain, ResolveAutomorphisms is called repeatedly
//     (each call re-runs Iterate to a fixed point internally) until it
//     returns <= 0.
//
// Pre-reduction (pkg/netcmp/reduce) runs once, before step 1's graph is
// first iterated, collapsing parallel/series device groups to canonical
// form. The hierarchical driver (pkg/netcmp/hierarchy) sits a level above
// this package, running this sequence once per subcell pair it schedules.
//
// # Usage
//
//	eng := netcmp.EngineNew(registry, netcmp.DefaultOptions())
//	defer eng.ResetState()
//
//	if err := eng.CreateTwoLists("top", 1, "top", 2); err != nil {
//		// ErrCellNotFound, ErrFatalInternal, ...
//	}
//	eng.Permute()
//	if err := eng.Run(ctx); err != nil {
//		// ErrInterrupted, ErrFatalInternal
//	}
//	verdict := eng.VerifyMatching()
//	for verdict > 0 {
//		var err error
//		if verdict, err = eng.ResolveAutomorphisms(ctx); err != nil {
//			// ErrInterrupted, ErrFatalInternal
//		}
//	}
//	if verdict < 0 {
//		// mismatch; report.Build lists the mismatched groups
//	}
package netcmp
