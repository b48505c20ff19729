// Package hierarchy implements the Hierarchical Driver (spec.md §4.7):
// bottom-up subcell matching, a CompareQueue of scheduled subcell pairs,
// and flatten-and-retry recovery when a subcell pair fails to match.
//
// It depends on pkg/netcmp rather than the other way around — the driver
// drives the core comparator, never the reverse — so importing it here
// cannot create a cycle back into pkg/netcmp.
package hierarchy
