// Package celldef models the external collaborator spec.md §3 calls the
// CellDefinition: a named container of a pin signature, a device netlist,
// and a property-key dictionary. In the real tool this is owned by the
// cell/hierarchy manager (out of scope, spec.md §1); the core only
// consumes it. Registry plays the same owns-the-definitions,
// consumed-by-the-runtime role that pkg/chain.Repository plays for BSDL
// device definitions: a name-indexed store the comparator looks up. The
// comparator does write back into it: CreateTwoLists replaces a compared
// cell's Devices with the ignore-filtered, pre-reduced list, and the
// hierarchical driver rewrites Pins and Devices when it matches pins or
// flattens a subcell.
package celldef

import (
	"fmt"
	"sync"
)

// PinDecl is one pin position in a cell's declared pin signature.
type PinDecl struct {
	Name string
}

// DeviceDecl is one device instance inside a cell's netlist, as the
// builder (pkg/netcmp/graph) will see it: a device class/model name plus
// an ordered pin-to-net mapping matching the device class's own pin
// signature.
type DeviceDecl struct {
	Name    string   // instance name
	Class   string   // device class / model name
	PinNets []string // net name per declared pin of Class, same order as Class's PinDecls
	Props   map[string]PropertyValue

	// Trail holds one entry per original device folded into this one by
	// parallel/series pre-reduction (spec.md §4.4), in merge order. It is
	// nil for a device that was never merged. pkg/netcmp/reduce appends to
	// it; pkg/netprop's post-reduction alignment (§4.5 final paragraph)
	// reads it when two merged networks still have differing record
	// counts after reduction.
	Trail []map[string]PropertyValue
}

// PropertyValue is a property assignment on a device instance, kept as a
// loosely typed container; pkg/netprop owns the authoritative typed
// representation and promotion rules. Using a string here keeps celldef
// free of a dependency on netprop's expression machinery, consistent with
// Design Notes §9 ("Property dictionaries: the property matcher
// parameterizes comparison on the definition, not on the device").
type PropertyValue struct {
	Raw  string
	Kind string // "int", "double", "string", "expr"; empty means infer from Raw
}

// PropertyKeyDef is one entry in a cell definition's recognized property
// dictionary (spec.md §3). spec.md §4.4 declares a parallel policy and a
// series policy independently per key ("Two policies are defined per
// property key"), so both are carried here rather than a single merged
// field.
type PropertyKeyDef struct {
	Key           string
	Type          string // "int", "double", "string", "expr"
	Default       string
	Slop          float64
	ParallelPolicy MergePolicy
	SeriesPolicy   MergePolicy
	CaseSensitive bool // for string comparison of this key (spec.md §4.5.3)
}

// MergePolicy names one of the six policies spec.md §4.4 defines per
// property key.
type MergePolicy string

const (
	ParallelAdditive MergePolicy = "parallel-additive"
	ParallelCritical MergePolicy = "parallel-critical"
	ParallelNothing  MergePolicy = "parallel-nothing"
	SeriesAdditive   MergePolicy = "series-additive"
	SeriesCritical   MergePolicy = "series-critical"
	SeriesNothing    MergePolicy = "series-nothing"
)

// PermutePair declares two pin names on a device class as interchangeable
// (spec.md §4.3).
type PermutePair struct {
	Class string
	PinA  string
	PinB  string
}

// IgnoreMode selects how IgnoreClass drops a device class from the
// database (spec.md §6, SPEC_FULL.md supplemented feature 1).
type IgnoreMode string

const (
	IgnoreDelete           IgnoreMode = "delete"
	IgnoreDeleteIfShorted  IgnoreMode = "delete-if-shorted"
)

// CellDefinition is one named cell: its pin signature, device netlist, and
// property-key dictionary.
type CellDefinition struct {
	Name       string
	FileTag    int // the "fileTag" of spec.md's Correspondence entry
	Pins       []PinDecl
	Devices    []DeviceDecl
	PropKeys   map[string]*PropertyKeyDef
	Permutes   []PermutePair
	GlobalNets map[string]bool // SPEC_FULL.md supplemented feature 3
}

// NewCellDefinition returns an empty, ready-to-populate definition.
func NewCellDefinition(name string, fileTag int) *CellDefinition {
	return &CellDefinition{
		Name:       name,
		FileTag:    fileTag,
		PropKeys:   make(map[string]*PropertyKeyDef),
		GlobalNets: make(map[string]bool),
	}
}

// IsGlobal reports whether netName is declared global for this cell
// (spec.md §4.4: a series-merge shared internal net must be non-global).
func (c *CellDefinition) IsGlobal(netName string) bool { return c.GlobalNets[netName] }

// DefaultTransistorPermutes returns the builtin source/drain permutation
// for a recognized 3-/4-terminal MOS device class (spec.md §4.3 "Default
// transistor rules").
func DefaultTransistorPermutes(class string) []PermutePair {
	switch class {
	case "nfet", "pfet", "nmos", "pmos", "mosfet":
		return []PermutePair{{Class: class, PinA: "drain", PinB: "source"}}
	default:
		return nil
	}
}

// Registry is a name-indexed store of CellDefinitions, consumed but not
// owned by the engine (spec.md §3 "external", Design Notes §9 "Global
// mutable state").
type Registry struct {
	mu    sync.RWMutex
	cells map[string]*CellDefinition
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{cells: make(map[string]*CellDefinition)}
}

// Add registers a cell definition, keyed by (name, fileTag).
func (r *Registry) Add(def *CellDefinition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cells[key(def.Name, def.FileTag)] = def
}

// Lookup resolves a cell definition by name and file tag.
func (r *Registry) Lookup(name string, fileTag int) (*CellDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.cells[key(name, fileTag)]
	if !ok {
		return nil, fmt.Errorf("celldef: cell %q (file %d) not found", name, fileTag)
	}
	return def, nil
}

// All returns every registered cell definition, in no particular order.
// The hierarchical driver uses it to sweep the whole registry when a
// flattening decision must be applied wherever a subcell class is
// instantiated, not just at the one site that triggered the mismatch.
func (r *Registry) All() []*CellDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*CellDefinition, 0, len(r.cells))
	for _, def := range r.cells {
		out = append(out, def)
	}
	return out
}

func key(name string, fileTag int) string { return fmt.Sprintf("%d:%s", fileTag, name) }
