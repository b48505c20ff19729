package netscript

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer defines the lexical structure of the netcmp command script: a flat
// sequence of semicolon-terminated commands that declare cells and devices (cell/pins/
// global/device/endcell) and set up equivalence hints, pin permutations,
// ignore rules, and compare-queue requests before a compare runs (spec.md
// §6's engine API, surfaced as text instead of Go calls).
var Lexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `[\s\t\n\r]+`},

	{Name: "KwEquate", Pattern: `(?i)\bequate\b`},
	{Name: "KwElements", Pattern: `(?i)\belements\b`},
	{Name: "KwNodes", Pattern: `(?i)\bnodes\b`},
	{Name: "KwClasses", Pattern: `(?i)\bclasses\b`},
	{Name: "KwPermute", Pattern: `(?i)\bpermute\b`},
	{Name: "KwIgnore", Pattern: `(?i)\bignore\b`},
	// KwShorted must precede KwDelete: both start with "delete", and the
	// simple lexer takes the first rule that matches at the current
	// position, so the longer alternative needs first refusal.
	{Name: "KwShorted", Pattern: `(?i)\bdelete-if-shorted\b`},
	{Name: "KwDelete", Pattern: `(?i)\bdelete\b`},
	{Name: "KwCompare", Pattern: `(?i)\bcompare\b`},

	{Name: "KwCell", Pattern: `(?i)\bcell\b`},
	{Name: "KwPins", Pattern: `(?i)\bpins\b`},
	{Name: "KwGlobal", Pattern: `(?i)\bglobal\b`},
	{Name: "KwDevice", Pattern: `(?i)\bdevice\b`},
	{Name: "KwEndcell", Pattern: `(?i)\bendcell\b`},

	{Name: "Semicolon", Pattern: `;`},
	{Name: "Integer", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_./#\[\]]*`},
})
