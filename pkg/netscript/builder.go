package netscript

import (
	"fmt"

	"github.com/OpenTraceLab/netcmp/pkg/netcmp/celldef"
)

// BuildCells consumes every Cell/Pins/Global/Device/EndCell statement in s,
// in order, constructing one celldef.CellDefinition per cell block and
// registering each in reg as its EndCellStmt closes the block. It is the
// netlist-loading half of the grammar; Apply handles the engine-hint half.
// The two coexist in one script because a netcomp invocation reads its two
// netlists and its compare setup through the same parser (spec.md §6's
// "a netcomp invocation takes two netlist files").
func BuildCells(reg *celldef.Registry, s *Script) error {
	var cur *celldef.CellDefinition
	for _, cmd := range s.Commands {
		switch {
		case cmd.Cell != nil:
			if cur != nil {
				return fmt.Errorf("netscript: cell %q opened before cell %q was closed", cmd.Cell.Name, cur.Name)
			}
			cur = celldef.NewCellDefinition(cmd.Cell.Name, cmd.Cell.Tag)
		case cmd.Pins != nil:
			if cur == nil {
				return fmt.Errorf("netscript: pins statement outside a cell block")
			}
			for _, name := range cmd.Pins.Names {
				cur.Pins = append(cur.Pins, celldef.PinDecl{Name: name})
			}
		case cmd.Global != nil:
			if cur == nil {
				return fmt.Errorf("netscript: global statement outside a cell block")
			}
			for _, name := range cmd.Global.Names {
				cur.GlobalNets[name] = true
			}
		case cmd.Device != nil:
			if cur == nil {
				return fmt.Errorf("netscript: device statement outside a cell block")
			}
			cur.Devices = append(cur.Devices, celldef.DeviceDecl{
				Name:    cmd.Device.Name,
				Class:   cmd.Device.Class,
				PinNets: cmd.Device.Nets,
			})
		case cmd.EndCell != nil:
			if cur == nil {
				return fmt.Errorf("netscript: endcell with no open cell block")
			}
			reg.Add(cur)
			cur = nil
		}
	}
	if cur != nil {
		return fmt.Errorf("netscript: unterminated cell block %q", cur.Name)
	}
	return nil
}
