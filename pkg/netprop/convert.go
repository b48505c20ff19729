package netprop

import (
	"strconv"

	"github.com/OpenTraceLab/netcmp/pkg/netcmp/celldef"
)

// BuildRecord converts a cell definition's raw, loosely typed property
// assignments (celldef.PropertyValue) into a typed Record, using the
// property dictionary to resolve type and promote numeric literals
// (spec.md §3: "a cell definition carries a dictionary of recognized
// property keys, each with: type, default value, ...").
func BuildRecord(dict map[string]*celldef.PropertyKeyDef, raw map[string]celldef.PropertyValue) *Record {
	r := NewRecord()
	for key, pv := range raw {
		r.Set(key, buildValue(dict[key], pv))
	}
	return r
}

func buildValue(def *celldef.PropertyKeyDef, pv celldef.PropertyValue) Value {
	kind := pv.Kind
	if kind == "" && def != nil {
		kind = def.Type
	}
	switch kind {
	case "int":
		if v, err := ParseNumeric(pv.Raw); err == nil && v.Type == TypeInt {
			return v
		}
		return StringValue(pv.Raw)
	case "double":
		if v, err := ParseNumeric(pv.Raw); err == nil {
			if v.Type == TypeInt {
				return DoubleValue(float64(v.Int))
			}
			return v
		}
		return StringValue(pv.Raw)
	case "expr":
		return ExpressionValue(pv.Raw)
	case "string":
		return StringValue(pv.Raw)
	default:
		if v, err := ParseNumeric(pv.Raw); err == nil {
			return v
		}
		return StringValue(pv.Raw)
	}
}

// ToRaw converts a typed Record back into the loosely typed map celldef
// works with, used by pkg/netcmp/reduce when it needs to stash a merged
// record into a DeviceDecl.Trail entry.
func ToRaw(r *Record) map[string]celldef.PropertyValue {
	out := make(map[string]celldef.PropertyValue, len(r.Order))
	for _, k := range r.Order {
		v := r.Values[k]
		switch v.Type {
		case TypeInt:
			out[k] = celldef.PropertyValue{Raw: strconv.Itoa(v.Int), Kind: "int"}
		case TypeDouble:
			out[k] = celldef.PropertyValue{Raw: strconv.FormatFloat(v.Double, 'g', -1, 64), Kind: "double"}
		case TypeString:
			out[k] = celldef.PropertyValue{Raw: v.Str, Kind: "string"}
		case TypeExpression:
			out[k] = celldef.PropertyValue{Raw: v.Str, Kind: "expr"}
		}
	}
	return out
}
