package netscript

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/netcmp/pkg/netcmp"
	"github.com/OpenTraceLab/netcmp/pkg/netcmp/celldef"
)

// Apply executes every engine-level statement in s against eng, in order,
// and returns the CompareStmt entries verbatim for the caller to hand to a
// hierarchical driver (netscript stays a leaf package — it never imports
// pkg/netcmp/hierarchy — the same separation pkg/bsdl keeps from the chain
// builder that consumes its parsed AST).
func Apply(eng *netcmp.Engine, s *Script) ([]*CompareStmt, error) {
	var compares []*CompareStmt
	for _, cmd := range s.Commands {
		switch {
		case cmd.EquateElements != nil:
			eng.EquivalenceElements(cmd.EquateElements.Name1, cmd.EquateElements.Name2)
		case cmd.EquateNodes != nil:
			eng.EquivalenceNodes(cmd.EquateNodes.Name1, cmd.EquateNodes.Name2)
		case cmd.EquateClasses != nil:
			c := cmd.EquateClasses
			eng.EquivalenceClasses(c.Name1, c.Tag1, c.Name2, c.Tag2)
		case cmd.Permute != nil:
			eng.PermuteSetup(cmd.Permute.Cell, cmd.Permute.Pin1, cmd.Permute.Pin2)
		case cmd.Ignore != nil:
			mode, err := ignoreMode(cmd.Ignore.Mode)
			if err != nil {
				return compares, err
			}
			eng.IgnoreClass(cmd.Ignore.Class, mode)
		case cmd.Compare != nil:
			compares = append(compares, cmd.Compare)
		case cmd.Cell != nil, cmd.Pins != nil, cmd.Global != nil, cmd.Device != nil, cmd.EndCell != nil:
			// Netlist structure statements are consumed by BuildCells
			// (builder.go), not by Apply; a script mixing the two passes
			// over its own cell declarations here with no effect.
		default:
			return compares, fmt.Errorf("netscript: empty command")
		}
	}
	return compares, nil
}

func ignoreMode(kw string) (celldef.IgnoreMode, error) {
	switch strings.ToLower(kw) {
	case "delete":
		return celldef.IgnoreDelete, nil
	case "delete-if-shorted":
		return celldef.IgnoreDeleteIfShorted, nil
	default:
		return "", fmt.Errorf("netscript: unknown ignore mode %q", kw)
	}
}
