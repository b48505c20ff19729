// Package netprop implements spec.md §3's PropertyRecord and §4.5's
// Property Matcher: the instance-local ordered list of (key, type, value)
// triples attached to a device, and the comparison rules a cell
// definition's property-key dictionary parameterizes.
//
// Expression-typed values are held as parsed-but-never-evaluated
// s-expressions (github.com/chewxy/sexp), matching spec.md's rule that an
// expression property is "always reported as unresolved (never equal)"
// (§4.5 rule 3, §9 open question 1).
package netprop

import (
	"fmt"
	"strconv"

	"github.com/chewxy/sexp"
)

// ValueType names one of the four property value kinds spec.md §3 lists.
type ValueType int

const (
	TypeInt ValueType = iota
	TypeDouble
	TypeString
	TypeExpression
)

func (t ValueType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeDouble:
		return "double"
	case TypeString:
		return "string"
	case TypeExpression:
		return "expression"
	default:
		return "unknown"
	}
}

// Value is one typed property value. Exactly one of Int/Double/Str/Expr is
// meaningful, selected by Type.
type Value struct {
	Type   ValueType
	Int    int
	Double float64
	Str    string
	Expr   []sexp.Sexp // unresolved; never compared for equality (§4.5 rule 3)
}

// IntValue, DoubleValue and StringValue build a Value of the matching type.
func IntValue(v int) Value       { return Value{Type: TypeInt, Int: v} }
func DoubleValue(v float64) Value { return Value{Type: TypeDouble, Double: v} }
func StringValue(v string) Value  { return Value{Type: TypeString, Str: v} }

// ExpressionValue parses raw as an s-expression and returns it as an
// unresolved Expression value. A parse failure still yields a value (the
// raw text alone never resolves an expression anyway): the spec only ever
// asks "is this an expression", never "what does it evaluate to".
func ExpressionValue(raw string) Value {
	parsed, err := sexp.ParseString(raw)
	if err != nil {
		return Value{Type: TypeExpression, Str: raw}
	}
	return Value{Type: TypeExpression, Str: raw, Expr: parsed}
}

// Record is a device's ordered list of property entries, keyed by the
// cell definition's property dictionary.
type Record struct {
	Values map[string]Value
	Order  []string // declaration order, for deterministic reporting
}

// NewRecord returns an empty property record.
func NewRecord() *Record {
	return &Record{Values: make(map[string]Value)}
}

// Set assigns a property value, appending to Order on first assignment.
func (r *Record) Set(key string, v Value) {
	if _, ok := r.Values[key]; !ok {
		r.Order = append(r.Order, key)
	}
	r.Values[key] = v
}

// Get returns the value for key and whether it was present.
func (r *Record) Get(key string) (Value, bool) {
	v, ok := r.Values[key]
	return v, ok
}

// IntOrDefault returns the integer value of key, defaulting to def when
// absent. Used for the implicit M=1 / S=1 promotion (spec.md §4.5 rule 1,
// §4.4).
func (r *Record) IntOrDefault(key string, def int) int {
	v, ok := r.Values[key]
	if !ok {
		return def
	}
	switch v.Type {
	case TypeInt:
		return v.Int
	case TypeDouble:
		return int(v.Double)
	default:
		return def
	}
}

// Clone returns a deep-enough copy for merge operations to mutate safely.
func (r *Record) Clone() *Record {
	out := NewRecord()
	for _, k := range r.Order {
		out.Set(k, r.Values[k])
	}
	return out
}

// ParseNumeric parses a raw string into an int or double Value, used when
// celldef.PropertyValue.Kind is left empty and must be inferred.
func ParseNumeric(raw string) (Value, error) {
	if i, err := strconv.Atoi(raw); err == nil {
		return IntValue(i), nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return DoubleValue(f), nil
	}
	return Value{}, fmt.Errorf("netprop: %q is not numeric", raw)
}
