package netcmp

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"sync"

	"github.com/OpenTraceLab/netcmp/pkg/netcmp/celldef"
	"github.com/OpenTraceLab/netcmp/pkg/netcmp/graph"
	"github.com/OpenTraceLab/netcmp/pkg/netcmp/reduce"
	"github.com/OpenTraceLab/netcmp/pkg/netprop"
)

// Engine is the engine value Design Notes §9 calls for in place of the
// source's file-scope Circuit1/Circuit2 globals: every operation in
// spec.md §6 is a method on *Engine. The running flag and its
// acquire/release guard are not taken by any exported method, so
// overlapping calls on one Engine are not detected or rejected.
type Engine struct {
	registry *celldef.Registry
	opts     EngineOptions

	mu      sync.Mutex
	running bool

	arena *graph.Arena
	def1  *celldef.CellDefinition
	def2  *celldef.CellDefinition

	rng *rand.Rand

	elementHints map[string]string // device name (circuit 1) -> device name (circuit 2)
	nodeHints    map[string]string // net name (circuit 1) -> net name (circuit 2)
	ignores      map[string]celldef.IgnoreMode
	pendingPerms []celldef.PermutePair

	iterations int
}

// EngineNew allocates an engine bound to registry, following spec.md §9's
// "engine value passed by reference through every operation" design.
func EngineNew(registry *celldef.Registry, opts EngineOptions) *Engine {
	return &Engine{
		registry:     registry,
		opts:         opts,
		elementHints: make(map[string]string),
		nodeHints:    make(map[string]string),
		ignores:      make(map[string]celldef.IgnoreMode),
	}
}

// ResetState frees all engine-owned structures (spec.md §6).
func (e *Engine) ResetState() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.arena = nil
	e.def1 = nil
	e.def2 = nil
	e.elementHints = make(map[string]string)
	e.nodeHints = make(map[string]string)
	e.ignores = make(map[string]celldef.IgnoreMode)
	e.pendingPerms = nil
	e.iterations = 0
	e.running = false
}

// acquire enforces spec.md §5/§7's reentrancy rule.
func (e *Engine) acquire() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return ErrReentrancyViolation
	}
	e.running = true
	return nil
}

func (e *Engine) release() {
	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
}

// EquivalenceElements records a user hint (spec.md §6) that device name1
// in circuit 1 corresponds to device name2 in circuit 2.
func (e *Engine) EquivalenceElements(name1, name2 string) { e.elementHints[name1] = name2 }

// EquivalenceNodes records a user hint that net name1 in circuit 1
// corresponds to net name2 in circuit 2.
func (e *Engine) EquivalenceNodes(name1, name2 string) { e.nodeHints[name1] = name2 }

// PermuteSetup declares a permutable pin pair on a device class, queued
// for Permute to apply.
func (e *Engine) PermuteSetup(cell, pin1, pin2 string) {
	e.pendingPerms = append(e.pendingPerms, celldef.PermutePair{Class: cell, PinA: pin1, PinB: pin2})
}

// IgnoreClass drops all devices of a class from the database (spec.md §6;
// SPEC_FULL.md supplemented feature 1 for the two kind semantics).
func (e *Engine) IgnoreClass(name string, kind celldef.IgnoreMode) { e.ignores[name] = kind }

// EquivalenceClasses records the class pair as an element hint keyed
// "name1#tag1" -> "name2#tag2", so it only affects devices whose instance
// names are literally those strings. The hierarchical driver does not read
// engine hints; its subcell matching consults Driver.EquateClasses instead.
func (e *Engine) EquivalenceClasses(name1 string, tag1 int, name2 string, tag2 int) {
	e.EquivalenceElements(fmt.Sprintf("%s#%d", name1, tag1), fmt.Sprintf("%s#%d", name2, tag2))
}

// CreateTwoLists implements spec.md §6's CreateTwoLists: build the graph
// for the two named cells.
func (e *Engine) CreateTwoLists(name1 string, tag1 int, name2 string, tag2 int) error {
	def1, err := e.registry.Lookup(name1, tag1)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrCellNotFound, err)
	}
	def2, err := e.registry.Lookup(name2, tag2)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrCellNotFound, err)
	}
	e.def1, e.def2 = def1, def2

	ignores := e.ignores
	if e.opts.IgnoreParasitics {
		ignores = withParasiticsIgnored(ignores)
	}
	applyIgnores(def1, ignores)
	applyIgnores(def2, ignores)

	// Pre-reduction runs before the first refinement pass (spec.md §4.4)
	// regardless of IgnoreParasitics, which only controls whether parasitic
	// classes are dropped outright before reduction ever sees them.
	if err := reduce.Reduce(def1); err != nil {
		return fmt.Errorf("%w: pre-reduction circuit 1: %s", ErrFatalInternal, err)
	}
	if err := reduce.Reduce(def2); err != nil {
		return fmt.Errorf("%w: pre-reduction circuit 2: %s", ErrFatalInternal, err)
	}

	a, err := graph.Build(e.registry, name1, tag1, name2, tag2)
	if err != nil {
		return err
	}
	if a.DeviceCount()+a.NetCount() > MaxElements {
		return fmt.Errorf("%w: %d elements exceeds MaxElements", ErrFatalInternal, a.DeviceCount()+a.NetCount())
	}
	e.arena = a
	e.rng = rand.New(rand.NewPCG(seedFrom(name1, tag1), seedFrom(name2, tag2)))

	applyElementHints(a, e.elementHints)
	applyNodeHints(a, e.nodeHints)
	return nil
}

// Arena exposes the built graph for callers that need direct access (the
// hierarchy driver's pin-matching post-step, the reporter).
func (e *Engine) Arena() *graph.Arena { return e.arena }

// Definitions exposes the two cell definitions bound by CreateTwoLists.
func (e *Engine) Definitions() (*celldef.CellDefinition, *celldef.CellDefinition) {
	return e.def1, e.def2
}

// Permute implements spec.md §6's Permute: apply declared pin
// permutations, including any PermuteSetup calls made since the graph was
// built (spec.md §4.3: "Users may add or remove permutations per cell
// class before comparison").
func (e *Engine) Permute() {
	if e.arena == nil {
		return
	}
	perms := append(append([]celldef.PermutePair{}, e.def1.Permutes...), e.def2.Permutes...)
	perms = append(perms, e.pendingPerms...)
	applyPermutes(e.arena, perms)
}

// Iterate implements spec.md §6's Iterate: one refinement round. It
// returns true once neither class list splits further.
func (e *Engine) Iterate(ctx context.Context) (bool, error) {
	if e.arena == nil {
		return false, fmt.Errorf("netcmp: Iterate called before CreateTwoLists")
	}
	if err := ctx.Err(); err != nil {
		return false, ErrInterrupted
	}
	assignClassMagics(e.arena, e.rng)
	computeHashes(e.arena)
	s1 := fractureDeviceClasses(e.arena, e.opts.ExhaustiveSubdivision)
	s2 := fractureNetClasses(e.arena, e.opts.ExhaustiveSubdivision)
	commitHashes(e.arena)
	e.iterations++
	maxIter := e.opts.MaxIterations
	if maxIter == 0 {
		maxIter = e.arena.DeviceCount() + e.arena.NetCount() + 1
	}
	if e.iterations > maxIter {
		return false, fmt.Errorf("%w: refinement did not converge within %d iterations", ErrFatalInternal, maxIter)
	}
	return s1 == 0 && s2 == 0, nil
}

// Run drives Iterate to a fixed point, checking ctx at each boundary
// (spec.md §5).
func (e *Engine) Run(ctx context.Context) error {
	for {
		done, err := e.Iterate(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// VerifyMatching implements spec.md §6: -1 mismatch, 0 perfect match,
// k>0 automorphism count.
func (e *Engine) VerifyMatching() int {
	illegal := 0
	automorphisms := 0
	for _, c := range e.arena.DeviceClasses {
		if !c.LegalPartition {
			illegal++
		} else if c.Size() > 2 {
			automorphisms++
		}
	}
	for _, c := range e.arena.NetClasses {
		if !c.LegalPartition {
			illegal++
		} else if c.Size() > 2 {
			automorphisms++
		}
	}
	if illegal > 0 {
		return -1
	}
	return automorphisms
}

// PropertyMatch implements spec.md §6: compare the property records of an
// already-paired device pair.
func (e *Engine) PropertyMatch(d1, d2 graph.DeviceIndex) (int, error) {
	dev1, dev2 := e.arena.Device(d1), e.arena.Device(d2)
	dict := e.def1.PropKeys
	if dev1.Circuit == graph.Circuit2 {
		dict = e.def2.PropKeys
	}

	// A differing trail length means the two sides' pre-reduction merge
	// folded a different number of original devices together; compare the
	// full expanded trails (spec.md §4.5 final paragraph) rather than just
	// the one summary record each device carries.
	if len(dev1.Trail) != len(dev2.Trail) && (len(dev1.Trail) > 0 || len(dev2.Trail) > 0) {
		res, err := netprop.PropertyMatchTrails(dict, trailOrSelf(dev1), trailOrSelf(dev2))
		if err != nil {
			return -1, err
		}
		return res.Mismatches, nil
	}

	res, err := netprop.PropertyMatch(dict, dev1.Props, dev2.Props)
	if err != nil {
		return -1, err
	}
	return res.Mismatches, nil
}

// trailOrSelf returns a device's expanded merge trail, or its own summary
// record as a single-element trail when it was never merged.
func trailOrSelf(d *graph.Device) []*netprop.Record {
	if len(d.Trail) > 0 {
		return d.Trail
	}
	return []*netprop.Record{d.Props}
}

// builtinParasiticClasses are the device classes the -i CLI flag drops
// (SPEC_FULL.md supplemented feature 2, grounded on netcmp.c's "r"/"c"
// PermuteSetup calls for the built-in resistor/capacitor device models).
var builtinParasiticClasses = []string{"R", "C"}

// withParasiticsIgnored returns a copy of ignores with the builtin
// resistor/capacitor classes added under IgnoreDelete, unless the caller
// already set an explicit mode for that class via IgnoreClass.
func withParasiticsIgnored(ignores map[string]celldef.IgnoreMode) map[string]celldef.IgnoreMode {
	out := make(map[string]celldef.IgnoreMode, len(ignores)+len(builtinParasiticClasses))
	for k, v := range ignores {
		out[k] = v
	}
	for _, class := range builtinParasiticClasses {
		if _, set := out[class]; !set {
			out[class] = celldef.IgnoreDelete
		}
	}
	return out
}

func applyIgnores(def *celldef.CellDefinition, ignores map[string]celldef.IgnoreMode) {
	if len(ignores) == 0 {
		return
	}
	kept := def.Devices[:0:0]
	for _, dd := range def.Devices {
		mode, found := ignores[dd.Class]
		if !found {
			kept = append(kept, dd)
			continue
		}
		switch mode {
		case celldef.IgnoreDelete:
			continue // drop unconditionally
		case celldef.IgnoreDeleteIfShorted:
			if deviceIsShorted(dd) {
				continue
			}
			kept = append(kept, dd)
		default:
			kept = append(kept, dd)
		}
	}
	def.Devices = kept
}

// deviceIsShorted reports whether every pin of dd resolves to the same
// net name, the condition IgnoreDeleteIfShorted drops on (SPEC_FULL.md
// supplemented feature 1).
func deviceIsShorted(dd celldef.DeviceDecl) bool {
	if len(dd.PinNets) == 0 {
		return false
	}
	first := dd.PinNets[0]
	for _, n := range dd.PinNets[1:] {
		if n != first {
			return false
		}
	}
	return true
}

func applyElementHints(a *graph.Arena, hints map[string]string) {
	if len(hints) == 0 {
		return
	}
	byName1 := map[string]graph.DeviceIndex{}
	byName2 := map[string]graph.DeviceIndex{}
	for i := 1; i < len(a.Devices); i++ {
		d := &a.Devices[i]
		if d.Circuit == graph.Circuit1 {
			byName1[d.Name] = graph.DeviceIndex(i)
		} else {
			byName2[d.Name] = graph.DeviceIndex(i)
		}
	}
	for n1, n2 := range hints {
		i1, ok1 := byName1[n1]
		i2, ok2 := byName2[n2]
		if !ok1 || !ok2 {
			continue
		}
		salt := fnvHash(n1 + "=" + n2)
		a.Device(i1).PrevHash ^= salt
		a.Device(i2).PrevHash ^= salt
	}
}

func applyNodeHints(a *graph.Arena, hints map[string]string) {
	if len(hints) == 0 {
		return
	}
	byName1 := map[string]graph.NetIndex{}
	byName2 := map[string]graph.NetIndex{}
	for i := 1; i < len(a.Nets); i++ {
		n := &a.Nets[i]
		if n.Circuit == graph.Circuit1 {
			byName1[n.Name] = graph.NetIndex(i)
		} else {
			byName2[n.Name] = graph.NetIndex(i)
		}
	}
	// Net hashes are recomputed from device PrevHash each round (spec.md
	// §4.2's NetHash carries no history of its own), so a node hint is
	// applied the same way: through the devices attached to the hinted
	// net, salted identically on both sides.
	for n1, n2 := range hints {
		i1, ok1 := byName1[n1]
		i2, ok2 := byName2[n2]
		if !ok1 || !ok2 {
			continue
		}
		salt := fnvHash("node:" + n1 + "=" + n2)
		for _, pin := range a.Net(i1).Pins {
			a.Device(pin.Device).PrevHash ^= salt
		}
		for _, pin := range a.Net(i2).Pins {
			a.Device(pin.Device).PrevHash ^= salt
		}
	}
}

func fnvHash(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

func seedFrom(name string, tag int) uint64 {
	return fnvHash(fmt.Sprintf("%s#%d", name, tag))
}
