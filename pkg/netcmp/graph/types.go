// Package graph holds the bipartite Device/Net arena that the netcmp engine
// refines: two owning arenas (one for devices, one for nets) with
// cross-references stored as indices rather than pointers, and class lists
// (slices of class pointers) built on top of those arenas.
//
// This mirrors the teacher's union-find pin arena in pkg/reveng/netlist.go
// (parent/rank maps addressed by a synthetic key) generalized to the
// two-sided device/net graph the comparator needs: instead of merging pins
// into nets via union-find, devices and nets are each partitioned into
// classes that get repeatedly fractured by hash disagreement.
package graph

import "github.com/OpenTraceLab/netcmp/pkg/netprop"

// Circuit tags identify which of the two input cells an element came from.
type Circuit uint8

const (
	Circuit1 Circuit = 1
	Circuit2 Circuit = 2
)

// DeviceIndex and NetIndex are arena-relative indices. The zero value is
// never a valid index; arenas reserve slot 0 as a sentinel.
type DeviceIndex int32
type NetIndex int32

const (
	NoDevice DeviceIndex = 0
	NoNet    NetIndex    = 0
)

// PinEndpoint is the edge between a Device and a Net: the back-pointers are
// arena indices, and PermMagic is the permutation magic (spec.md §3): two
// pin positions on the same device carry the same magic iff they are
// declared interchangeable. PermMagic is assigned once at build time and is
// never touched by refinement (invariant 4).
type PinEndpoint struct {
	Device    DeviceIndex
	Net       NetIndex // NoNet for a disconnected pin (sentinel, see Builder)
	PinName   string
	PermMagic uint64
}

// Device is one circuit instance (a transistor, a resistor, a subcell
// call). Pins is ordered exactly as declared by the originating cell.
type Device struct {
	Circuit  Circuit
	Name     string // instance name in its originating circuit
	Class    string // device-class / model name (e.g. "nfet", "R", a subcell name)
	Pins     []PinEndpoint
	Hash     uint64
	PrevHash uint64
	Props    *netprop.Record

	// Trail carries one typed record per original device folded into this
	// one by parallel/series pre-reduction, in merge order (spec.md §4.4's
	// "expanded trail of property records"). Nil for a device that was
	// never merged; PropertyMatch falls back to comparing Props directly
	// in that case.
	Trail    []*netprop.Record
	classIdx int // index into Arena.DeviceClasses, -1 if unassigned
}

// Net is one electrical node.
type Net struct {
	Circuit  Circuit
	Name     string
	Pins     []PinEndpoint // endpoints into devices; does not include dropped/disconnected pins
	Hash     uint64
	classIdx int
}

// DeviceClass is a partition block over device arena indices. Magic is a
// fresh random tag assigned once per refinement iteration (invariant 6);
// LegalPartition is false whenever the block holds unequal per-circuit
// counts (invariant 2).
type DeviceClass struct {
	Magic          uint64
	Members        []DeviceIndex
	Count1, Count2 int
	LegalPartition bool
}

// NetClass mirrors DeviceClass for the net side.
type NetClass struct {
	Magic          uint64
	Members        []NetIndex
	Count1, Count2 int
	LegalPartition bool
}

// Size returns the total member count of a device class.
func (c *DeviceClass) Size() int { return c.Count1 + c.Count2 }

// Size returns the total member count of a net class.
func (c *NetClass) Size() int { return c.Count1 + c.Count2 }

// Matched reports whether this class is a legal one-to-one pair (invariant
// 3's per-class condition).
func (c *DeviceClass) Matched() bool { return c.LegalPartition && c.Count1 == 1 && c.Count2 == 1 }

// Matched mirrors DeviceClass.Matched for nets.
func (c *NetClass) Matched() bool { return c.LegalPartition && c.Count1 == 1 && c.Count2 == 1 }

// Automorphism reports whether the class is a legal partition with more
// than one member per circuit, i.e. a symmetry requiring breaking.
func (c *DeviceClass) Automorphism() bool { return c.LegalPartition && c.Size() > 2 }
func (c *NetClass) Automorphism() bool    { return c.LegalPartition && c.Size() > 2 }
