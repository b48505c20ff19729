package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/OpenTraceLab/netcmp/pkg/netprop"
)

// WriteText renders a Summary the way a terminal user reads a compare
// result: matched pairs side by side, then each mismatched group with its
// members' fanout signatures, then the summary counts.
func WriteText(w io.Writer, s Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "devices\t%d\t%d\n", s.Devices1, s.Devices2)
	fmt.Fprintf(tw, "nets\t%d\t%d\n", s.Nets1, s.Nets2)
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(s.Matched) > 0 {
		fmt.Fprintln(w, "\nmatched:")
		for _, m := range s.Matched {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", m.Kind, m.Member1, m.Member2)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	for _, g := range s.Mismatched {
		fmt.Fprintf(w, "\nmismatched %s group:\n", g.Kind)
		for _, f := range g.Members {
			fmt.Fprintf(tw, "  circuit %d\t%s\t%s\n", f.Circuit, f.Name, formatCounts(f.Counts))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(s.PropertyMismatches) > 0 {
		fmt.Fprintln(w, "\nproperty mismatches:")
		for _, pm := range s.PropertyMismatches {
			fmt.Fprintf(tw, "  %s\t%s\t%d mismatch(es)\n", pm.Device1, pm.Device2, pm.Mismatches)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(s.PinCorrespondence) > 0 {
		fmt.Fprintln(w, "\npin correspondence:")
		for _, pc := range s.PinCorrespondence {
			fmt.Fprintf(tw, "  %s\t%s\t%v\t%v\n", pc.Subcell1, pc.Subcell2, pc.Pins1, pc.Pins2)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	for _, dump := range s.NetworkDumps {
		if _, err := fmt.Fprintf(w, "\n%s", dump); err != nil {
			return err
		}
	}

	return nil
}

// WriteJSON marshals s for programmatic consumers, following cmd/jtag/cmd
// info.go's --json output path.
func WriteJSON(w io.Writer, s Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// DumpNetwork renders one circuit instance's full expanded property trail
// (spec.md §9 open question 1: an asymmetric missing property record
// triggers a DumpNetwork-style report), matching the original tool's
// DumpNetwork: a "Circuit N instance NAME network:" header followed by one
// "key = value" line per property in each trail record, in merge order,
// so the full merge history is visible rather than just the final summary.
func DumpNetwork(w io.Writer, circuit int, instance string, trail []*netprop.Record) error {
	if _, err := fmt.Fprintf(w, "Circuit %d instance %s network:\n", circuit, instance); err != nil {
		return err
	}
	for _, rec := range trail {
		for _, key := range rec.Order {
			v, _ := rec.Get(key)
			if _, err := fmt.Fprintf(w, "  %s = %s\n", key, formatPropertyValue(v)); err != nil {
				return err
			}
		}
	}
	return nil
}

func formatPropertyValue(v netprop.Value) string {
	switch v.Type {
	case netprop.TypeString:
		return v.Str
	case netprop.TypeInt:
		return strconv.Itoa(v.Int)
	case netprop.TypeDouble:
		return strconv.FormatFloat(v.Double, 'g', -1, 64)
	case netprop.TypeExpression:
		return "(expression)"
	default:
		return ""
	}
}

func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s=%d", k, counts[k])
	}
	return out
}
