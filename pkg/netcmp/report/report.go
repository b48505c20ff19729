// Package report implements the Reporter (spec.md §4.8): after refinement
// converges, format the matched and mismatched class groups, each
// mismatched member's fanout signature, and a summary of the compare.
//
// Structured types here mirror cmd/jtag/cmd/info.go's ChainInfo/DeviceInfo
// pattern: a plain struct tree with json tags that both encoding/json and
// the text/tabwriter renderer in render.go can consume, rather than
// inventing a bespoke report format.
package report

import (
	"strings"

	"github.com/OpenTraceLab/netcmp/pkg/netcmp/celldef"
	"github.com/OpenTraceLab/netcmp/pkg/netcmp/graph"
	"github.com/OpenTraceLab/netcmp/pkg/netprop"
)

// MatchedPair is one legal, one-to-one device or net class.
type MatchedPair struct {
	Kind    string `json:"kind"` // "device" or "net"
	Member1 string `json:"member1"`
	Member2 string `json:"member2"`
}

// Fanout is one mismatched class member's connectivity signature (spec.md
// §4.8: "pin-to-net counts per pin or per permutation group" for devices,
// "counts of model:pin-name endpoints" for nets).
type Fanout struct {
	Circuit int            `json:"circuit"`
	Name    string         `json:"name"`
	Counts  map[string]int `json:"counts"`
}

// MismatchedGroup is one illegal class, or one legal class left with
// unresolved automorphisms, with every member's fanout.
type MismatchedGroup struct {
	Kind    string   `json:"kind"`
	Members []Fanout `json:"members"`
}

// PropertyMismatch names one matched device pair with a disagreeing
// property record.
type PropertyMismatch struct {
	Device1    string `json:"device1"`
	Device2    string `json:"device2"`
	Mismatches int    `json:"mismatches"`
}

// PinCorrespondence is one matched subcell pair's pin-order alignment
// (spec.md §4.7's match-pins post-step, surfaced in the summary).
type PinCorrespondence struct {
	Subcell1 string   `json:"subcell1"`
	Subcell2 string   `json:"subcell2"`
	Pins1    []string `json:"pins1"`
	Pins2    []string `json:"pins2"`
}

// Summary is the reporter's top-level output (spec.md §4.8 closing
// paragraph: "total devices per circuit, total nets per circuit, pin
// correspondence for each matched subcell pair, and the full list of
// property mismatches").
type Summary struct {
	Devices1           int                 `json:"devices1"`
	Devices2           int                 `json:"devices2"`
	Nets1              int                 `json:"nets1"`
	Nets2              int                 `json:"nets2"`
	Matched            []MatchedPair       `json:"matched"`
	Mismatched         []MismatchedGroup   `json:"mismatched"`
	PinCorrespondence  []PinCorrespondence `json:"pin_correspondence,omitempty"`
	PropertyMismatches []PropertyMismatch  `json:"property_mismatches,omitempty"`

	// NetworkDumps holds one rendered DumpNetwork report per device whose
	// property comparison came back NeedsDump (spec.md §9 open question
	// 1): an asymmetric missing property record on one side only.
	NetworkDumps []string `json:"network_dumps,omitempty"`
}

// Build walks a and produces the full Summary. def1/def2 supply the
// property dictionaries PropertyMismatches compares against.
func Build(a *graph.Arena, def1, def2 *celldef.CellDefinition) Summary {
	s := Summary{}

	for i := 1; i < len(a.Devices); i++ {
		if a.Devices[i].Circuit == graph.Circuit1 {
			s.Devices1++
		} else {
			s.Devices2++
		}
	}
	for i := 1; i < len(a.Nets); i++ {
		if a.Nets[i].Circuit == graph.Circuit1 {
			s.Nets1++
		} else {
			s.Nets2++
		}
	}

	for _, c := range a.DeviceClasses {
		switch {
		case c.Matched():
			s.Matched = append(s.Matched, matchedDevicePair(a, c))
			if pm, dumps, ok := devicePropertyMismatch(a, def1, def2, c); ok {
				s.PropertyMismatches = append(s.PropertyMismatches, pm)
				s.NetworkDumps = append(s.NetworkDumps, dumps...)
			}
		case !c.LegalPartition || c.Automorphism():
			s.Mismatched = append(s.Mismatched, mismatchedDeviceGroup(a, c))
		}
	}
	for _, c := range a.NetClasses {
		switch {
		case c.Matched():
			s.Matched = append(s.Matched, matchedNetPair(a, c))
		case !c.LegalPartition || c.Automorphism():
			s.Mismatched = append(s.Mismatched, mismatchedNetGroup(a, c))
		}
	}
	return s
}

func matchedDevicePair(a *graph.Arena, c *graph.DeviceClass) MatchedPair {
	var m1, m2 string
	for _, idx := range c.Members {
		d := a.Device(idx)
		if d.Circuit == graph.Circuit1 {
			m1 = d.Name
		} else {
			m2 = d.Name
		}
	}
	return MatchedPair{Kind: "device", Member1: m1, Member2: m2}
}

func matchedNetPair(a *graph.Arena, c *graph.NetClass) MatchedPair {
	var m1, m2 string
	for _, idx := range c.Members {
		n := a.Net(idx)
		if n.Circuit == graph.Circuit1 {
			m1 = n.Name
		} else {
			m2 = n.Name
		}
	}
	return MatchedPair{Kind: "net", Member1: m1, Member2: m2}
}

func mismatchedDeviceGroup(a *graph.Arena, c *graph.DeviceClass) MismatchedGroup {
	g := MismatchedGroup{Kind: "device"}
	for _, idx := range c.Members {
		d := a.Device(idx)
		g.Members = append(g.Members, Fanout{
			Circuit: int(d.Circuit),
			Name:    d.Name,
			Counts:  deviceFanout(d),
		})
	}
	return g
}

func mismatchedNetGroup(a *graph.Arena, c *graph.NetClass) MismatchedGroup {
	g := MismatchedGroup{Kind: "net"}
	for _, idx := range c.Members {
		n := a.Net(idx)
		g.Members = append(g.Members, Fanout{
			Circuit: int(n.Circuit),
			Name:    n.Name,
			Counts:  netFanout(a, n),
		})
	}
	return g
}

// deviceFanout counts, per pin name, how many pins with that name connect
// to a real net (spec.md §4.8 "pin-to-net counts per pin").
func deviceFanout(d *graph.Device) map[string]int {
	counts := map[string]int{}
	for _, p := range d.Pins {
		if p.Net != graph.NoNet {
			counts[p.PinName]++
		}
	}
	return counts
}

// netFanout counts, per "class:pin-name" endpoint, how many devices of
// that class connect to this net on that pin (spec.md §4.8 "counts of
// model:pin-name endpoints").
func netFanout(a *graph.Arena, n *graph.Net) map[string]int {
	counts := map[string]int{}
	for _, p := range n.Pins {
		d := a.Device(p.Device)
		counts[d.Class+":"+p.PinName]++
	}
	return counts
}

func devicePropertyMismatch(a *graph.Arena, def1, def2 *celldef.CellDefinition, c *graph.DeviceClass) (PropertyMismatch, []string, bool) {
	var d1, d2 *graph.Device
	for _, idx := range c.Members {
		d := a.Device(idx)
		if d.Circuit == graph.Circuit1 {
			d1 = d
		} else {
			d2 = d
		}
	}
	if d1 == nil || d2 == nil || def1 == nil || def2 == nil {
		return PropertyMismatch{}, nil, false
	}

	var res netprop.MatchResult
	var err error
	if len(d1.Trail) != len(d2.Trail) && (len(d1.Trail) > 0 || len(d2.Trail) > 0) {
		res, err = netprop.PropertyMatchTrails(def1.PropKeys, trailOrSelf(d1), trailOrSelf(d2))
	} else {
		res, err = netprop.PropertyMatch(def1.PropKeys, d1.Props, d2.Props)
	}
	if err != nil || res.Mismatches == 0 {
		return PropertyMismatch{}, nil, false
	}

	var dumps []string
	if res.NeedsDump {
		var b1, b2 strings.Builder
		_ = DumpNetwork(&b1, int(graph.Circuit1), d1.Name, trailOrSelf(d1))
		_ = DumpNetwork(&b2, int(graph.Circuit2), d2.Name, trailOrSelf(d2))
		dumps = append(dumps, b1.String(), b2.String())
	}

	return PropertyMismatch{Device1: d1.Name, Device2: d2.Name, Mismatches: res.Mismatches}, dumps, true
}

// trailOrSelf returns a device's expanded merge trail, or its own summary
// record as a single-element trail when it was never merged (mirrors
// pkg/netcmp.trailOrSelf, kept local since report must not import the
// engine package).
func trailOrSelf(d *graph.Device) []*netprop.Record {
	if len(d.Trail) > 0 {
		return d.Trail
	}
	return []*netprop.Record{d.Props}
}
