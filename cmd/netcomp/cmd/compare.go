package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/OpenTraceLab/netcmp/pkg/netcmp"
	"github.com/OpenTraceLab/netcmp/pkg/netcmp/celldef"
	"github.com/OpenTraceLab/netcmp/pkg/netcmp/hierarchy"
	"github.com/OpenTraceLab/netcmp/pkg/netcmp/report"
	"github.com/OpenTraceLab/netcmp/pkg/netscript"
	"github.com/spf13/cobra"
)

var (
	ignoreParasitics bool
	verbose          bool
	quiet            bool
	top1Name         string
	top2Name         string
	jsonOutput       bool
)

var compareCmd = &cobra.Command{
	Use:   "compare <netlist1> <netlist2>",
	Short: "Compare two netlist files",
	Long: `Parse two netlist files written in the netcmp command script format
(cell/pins/global/device blocks, optionally followed by equate/permute/
ignore/compare statements) and report whether they are structurally
identical.

Each cell is registered under the file tag its own cell statement
declares (by convention 1 in the first file and 2 in the second); the
file's position on the command line does not set it. A compare statement in either file names the top-level cells to
compare; --top1/--top2 override it (and are required if neither file
has one).

Exit code 0 means the two circuits matched identically, 1 means they
differed, 2 means an error occurred before a verdict could be reached.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().BoolVarP(&ignoreParasitics, "ignore-parasitics", "i", false,
		"ignore resistor and capacitor device classes")
	compareCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	compareCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
	compareCmd.Flags().StringVar(&top1Name, "top1", "", "top-level cell name in netlist 1 (overrides a compare statement)")
	compareCmd.Flags().StringVar(&top2Name, "top2", "", "top-level cell name in netlist 2 (overrides a compare statement)")
	compareCmd.Flags().BoolVar(&jsonOutput, "json", false, "emit the summary as JSON")
}

func runCompare(cmd *cobra.Command, args []string) error {
	file1, file2 := args[0], args[1]

	parser, err := netscript.NewParser()
	if err != nil {
		return fmt.Errorf("netcomp: %w", err)
	}

	reg := celldef.NewRegistry()
	scripts := make([]*netscript.Script, 0, 2)
	for _, filename := range []string{file1, file2} {
		script, err := parser.ParseFile(filename)
		if err != nil {
			return fmt.Errorf("netcomp: parsing %s: %w", filename, err)
		}
		if err := netscript.BuildCells(reg, script); err != nil {
			return fmt.Errorf("netcomp: building cells from %s: %w", filename, err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "netcomp: loaded %s\n", filename)
		}
		scripts = append(scripts, script)
	}

	opts := netcmp.DefaultOptions()
	opts.IgnoreParasitics = ignoreParasitics
	driver := hierarchy.NewDriver(reg, opts)

	var compares []*netscript.CompareStmt
	for i, script := range scripts {
		stmts, err := netscript.Apply(driver.Engine(), script)
		if err != nil {
			return fmt.Errorf("netcomp: applying hints from %s: %w", args[i], err)
		}
		compares = append(compares, stmts...)
	}

	top1, top2 := top1Name, top2Name
	tag1, tag2 := 1, 2
	if top1 == "" && top2 == "" && len(compares) > 0 {
		c := compares[0]
		top1, tag1, top2, tag2 = c.Top1, c.Tag1, c.Top2, c.Tag2
	}
	if top1 == "" || top2 == "" {
		return fmt.Errorf("netcomp: --top1 and --top2 are required when neither netlist file carries a compare statement")
	}

	code, err := driver.CreateCompareQueue(top1, tag1, top2, tag2)
	if err != nil {
		return fmt.Errorf("netcomp: %w", err)
	}
	if code != 0 {
		fmt.Fprintf(os.Stderr, "netcomp: top-level cell %d could not be resolved\n", code)
		os.Exit(2)
	}

	if err := driver.Run(context.Background()); err != nil {
		return fmt.Errorf("netcomp: %w", err)
	}

	var topResult *hierarchy.Result
	for i := range driver.Results {
		r := &driver.Results[i]
		if r.Pair.Name1 == top1 && r.Pair.Tag1 == tag1 && r.Pair.Name2 == top2 && r.Pair.Tag2 == tag2 {
			topResult = r
		}
	}
	if topResult == nil {
		return fmt.Errorf("netcomp: top-level pair never compared")
	}

	if !quiet {
		a := driver.Engine().Arena()
		def1, def2 := driver.Engine().Definitions()
		if def1 != nil && def2 != nil && a != nil {
			summary := report.Build(a, def1, def2)
			var renderErr error
			if jsonOutput {
				renderErr = report.WriteJSON(os.Stdout, summary)
			} else {
				renderErr = report.WriteText(os.Stdout, summary)
			}
			if renderErr != nil {
				return fmt.Errorf("netcomp: %w", renderErr)
			}
		}
	}

	if !topResult.Matched {
		if !quiet {
			fmt.Println("netlists do not match")
		}
		os.Exit(1)
	}
	if !quiet {
		fmt.Println("netlists match")
	}
	return nil
}
