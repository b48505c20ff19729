package hierarchy

import (
	"context"
	"fmt"

	"github.com/OpenTraceLab/netcmp/pkg/netcmp"
	"github.com/OpenTraceLab/netcmp/pkg/netcmp/celldef"
)

// Pair is one scheduled subcell comparison — the CompareQueue entry
// spec.md §3 defines as a Correspondence entry.
type Pair struct {
	Name1, Name2 string
	Tag1, Tag2   int
}

func (p Pair) key() string { return fmt.Sprintf("%s#%d=%s#%d", p.Name1, p.Tag1, p.Name2, p.Tag2) }

func classKey(name string, tag int) string { return fmt.Sprintf("%s#%d", name, tag) }

// Result records the outcome of one CompareQueue entry.
type Result struct {
	Pair      Pair
	Matched   bool
	Verify    int // Engine.VerifyMatching's return value
	Flattened bool
}

// Driver walks two cell hierarchies bottom-up, builds the CompareQueue, and
// consumes it by invoking the core comparator for each scheduled pair
// (spec.md §4.7).
type Driver struct {
	registry *celldef.Registry
	engine   *netcmp.Engine

	queue   []Pair
	parent  map[string]Pair // child pair key -> enclosing pair, for flatten-and-retry
	equated map[string]string // classKey -> classKey, symmetric

	Results []Result
}

// NewDriver builds a driver around registry, with its own private Engine
// (spec.md §5: engines are not shared across concurrent compares).
func NewDriver(registry *celldef.Registry, opts netcmp.EngineOptions) *Driver {
	return &Driver{
		registry: registry,
		engine:   netcmp.EngineNew(registry, opts),
		parent:   make(map[string]Pair),
		equated:  make(map[string]string),
	}
}

// Engine returns the driver's private comparator, so a caller can install
// equivalence/permute/ignore hints (spec.md §6) before CreateCompareQueue
// runs — the same Engine every scheduled Pair is compared with.
func (d *Driver) Engine() *netcmp.Engine { return d.engine }

// EquateClasses records a user-supplied correspondence between two subcell
// classes (spec.md §6 EquivalenceClasses), consulted first — ahead of
// class-hash and name matching — when matching subcells at each level.
func (d *Driver) EquateClasses(name1 string, tag1 int, name2 string, tag2 int) {
	k1, k2 := classKey(name1, tag1), classKey(name2, tag2)
	d.equated[k1] = k2
	d.equated[k2] = k1
}

// CreateCompareQueue implements spec.md §6's CreateCompareQueue: resolve
// both top-level cells, recurse their subcell trees, and schedule matched
// subcell pairs before the top pair itself so the queue consumes in
// dependency order. Returns 0 on success, 1 if top1 is unresolved, 2 if
// top2 is unresolved.
func (d *Driver) CreateCompareQueue(top1 string, tag1 int, top2 string, tag2 int) (int, error) {
	if _, err := d.registry.Lookup(top1, tag1); err != nil {
		return 1, nil
	}
	if _, err := d.registry.Lookup(top2, tag2); err != nil {
		return 2, nil
	}

	d.queue = nil
	d.parent = make(map[string]Pair)
	// Implementation Notes (spec.md §9 "Recursive descent"): the queue
	// builder is naturally recursive over the subcell DAG; visited guards
	// against runaway recursion on a cyclic or repeatedly shared subcell
	// reference, which would otherwise never terminate.
	visited := map[string]bool{}
	d.descend(top1, tag1, top2, tag2, nil, visited)
	return 0, nil
}

func (d *Driver) descend(name1 string, tag1 int, name2 string, tag2 int, parent *Pair, visited map[string]bool) {
	self := Pair{Name1: name1, Tag1: tag1, Name2: name2, Tag2: tag2}
	k := self.key()
	if parent != nil {
		d.parent[k] = *parent
	}
	if visited[k] {
		return
	}
	visited[k] = true

	def1, err1 := d.registry.Lookup(name1, tag1)
	def2, err2 := d.registry.Lookup(name2, tag2)
	if err1 != nil || err2 != nil {
		return
	}

	subs1 := subcellInstances(d.registry, def1)
	subs2 := subcellInstances(d.registry, def2)
	for _, p := range d.matchSubcells(subs1, subs2) {
		d.descend(p.Name1, p.Tag1, p.Name2, p.Tag2, &self, visited)
	}
	d.queue = append(d.queue, self)
}

type subcellRef struct {
	Name string
	Tag  int
}

// subcellInstances returns the distinct subcell classes def.Devices
// reference. A device class counts as a subcell when it resolves to
// another registered cell definition filed under the same FileTag as def
// — the scoping convention this driver assumes for one compare unit.
// Device classes that don't resolve (transistors, resistors, and other
// primitives) are left for the core comparator, never the driver.
func subcellInstances(reg *celldef.Registry, def *celldef.CellDefinition) []subcellRef {
	seen := map[string]bool{}
	var out []subcellRef
	for _, dd := range def.Devices {
		if _, err := reg.Lookup(dd.Class, def.FileTag); err != nil {
			continue
		}
		k := classKey(dd.Class, def.FileTag)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, subcellRef{Name: dd.Class, Tag: def.FileTag})
	}
	return out
}

// matchSubcells implements spec.md §4.7 step 2: for each unmatched subcell
// in circuit 1, find a candidate in circuit 2 via (a) user-supplied equate
// classes, (b) equal class-hash (an equivalence recorded by an earlier
// successful compare at this or another site), then (c) name equality
// modulo duplicate-suffix stripping. Subcells left unmatched here are not
// scheduled — their devices stay inline at the parent level, same as any
// other unresolved primitive, and the parent compare itself will report
// the mismatch.
func (d *Driver) matchSubcells(subs1, subs2 []subcellRef) []Pair {
	used2 := make([]bool, len(subs2))
	var pairs []Pair
	for _, s1 := range subs1 {
		idx := d.findCandidate(s1, subs2, used2)
		if idx < 0 {
			continue
		}
		used2[idx] = true
		pairs = append(pairs, Pair{Name1: s1.Name, Tag1: s1.Tag, Name2: subs2[idx].Name, Tag2: subs2[idx].Tag})
	}
	return pairs
}

func (d *Driver) findCandidate(s1 subcellRef, subs2 []subcellRef, used2 []bool) int {
	k1 := classKey(s1.Name, s1.Tag)

	if want, ok := d.equated[k1]; ok {
		for i, s2 := range subs2 {
			if !used2[i] && classKey(s2.Name, s2.Tag) == want {
				return i
			}
		}
	}
	for i, s2 := range subs2 {
		if !used2[i] && d.equated[k1] == classKey(s2.Name, s2.Tag) {
			return i
		}
	}
	base1 := stripDuplicateSuffix(s1.Name)
	for i, s2 := range subs2 {
		if !used2[i] && stripDuplicateSuffix(s2.Name) == base1 {
			return i
		}
	}
	return -1
}

// stripDuplicateSuffix drops a trailing numeric disambiguator such as
// "_2", "#2", or ".2" from an instance or class name (SPEC_FULL.md
// supplemented feature 4), so "inv_1" and "inv_2" both match a circuit-2
// class simply named "inv".
func stripDuplicateSuffix(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		c := name[i]
		if c >= '0' && c <= '9' {
			continue
		}
		if i == len(name)-1 {
			return name // no trailing digits at all
		}
		if (c == '_' || c == '#' || c == '.') && i > 0 {
			return name[:i]
		}
		return name
	}
	return name
}

// Run consumes the CompareQueue in order, invoking the core comparator for
// each pair (spec.md §4.7: "The driver consumes the queue in order").
func (d *Driver) Run(ctx context.Context) error {
	for _, pair := range d.queue {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := d.compareOne(ctx, pair)
		if err != nil {
			return err
		}
		d.Results = append(d.Results, res)
	}
	return nil
}

func (d *Driver) compareOne(ctx context.Context, pair Pair) (Result, error) {
	d.engine.ResetState()
	if err := d.engine.CreateTwoLists(pair.Name1, pair.Tag1, pair.Name2, pair.Tag2); err != nil {
		return Result{}, err
	}
	d.engine.Permute()
	if err := d.engine.Run(ctx); err != nil {
		return Result{}, err
	}
	// Each ResolveAutomorphisms call applies one symmetry-breaking step, so
	// it is repeated until no automorphisms remain.
	verify, err := d.engine.ResolveAutomorphisms(ctx)
	for err == nil && verify > 0 {
		verify, err = d.engine.ResolveAutomorphisms(ctx)
	}
	if err != nil {
		return Result{}, err
	}

	if verify < 0 {
		d.flatten(pair)
		return Result{Pair: pair, Matched: false, Verify: verify, Flattened: true}, nil
	}

	// Record the class-hash equivalence globally (spec.md §4.7: "On
	// success, record the class-hash equivalence globally; subsequent
	// callers treat the pair as one class").
	d.equated[classKey(pair.Name1, pair.Tag1)] = classKey(pair.Name2, pair.Tag2)
	d.equated[classKey(pair.Name2, pair.Tag2)] = classKey(pair.Name1, pair.Tag1)

	def1, def2 := d.engine.Definitions()
	matchPins(d.engine.Arena(), def1, def2)

	return Result{Pair: pair, Matched: true, Verify: verify}, nil
}

// flatten implements spec.md §4.7 step 3: on mismatch, flatten both
// subcells wherever they are instantiated, so that the already-scheduled
// parent pair (always later in the bottom-up queue) sees the inlined
// devices when its own turn comes, with no separate re-queue step needed.
func (d *Driver) flatten(pair Pair) {
	flattenClassEverywhere(d.registry, pair.Name1, pair.Tag1)
	flattenClassEverywhere(d.registry, pair.Name2, pair.Tag2)
}

func flattenClassEverywhere(reg *celldef.Registry, subName string, subTag int) {
	sub, err := reg.Lookup(subName, subTag)
	if err != nil {
		return
	}
	for _, def := range reg.All() {
		if def.Name == subName && def.FileTag == subTag {
			continue
		}
		var rebuilt []celldef.DeviceDecl
		changed := false
		for _, dd := range def.Devices {
			if dd.Class == subName && def.FileTag == subTag {
				rebuilt = append(rebuilt, inlineInstance(dd, sub)...)
				changed = true
				continue
			}
			rebuilt = append(rebuilt, dd)
		}
		if changed {
			def.Devices = rebuilt
		}
	}
}

// inlineInstance expands one subcell instance dd into the primitive
// devices of sub, mapping sub's external pins to dd's actual connections
// and scoping every internal net and device name to dd.Name so that two
// inlined instances of the same class never collide.
func inlineInstance(dd celldef.DeviceDecl, sub *celldef.CellDefinition) []celldef.DeviceDecl {
	portMap := make(map[string]string, len(sub.Pins))
	for i, p := range sub.Pins {
		if i < len(dd.PinNets) {
			portMap[p.Name] = dd.PinNets[i]
		}
	}
	resolve := func(n string) string {
		if n == "" {
			return ""
		}
		if mapped, ok := portMap[n]; ok {
			return mapped
		}
		return dd.Name + "." + n
	}

	out := make([]celldef.DeviceDecl, 0, len(sub.Devices))
	for _, inner := range sub.Devices {
		nd := celldef.DeviceDecl{
			Name:  dd.Name + "." + inner.Name,
			Class: inner.Class,
			Props: inner.Props,
			Trail: inner.Trail,
		}
		nd.PinNets = make([]string, len(inner.PinNets))
		for i, n := range inner.PinNets {
			nd.PinNets[i] = resolve(n)
		}
		out = append(out, nd)
	}
	return out
}
