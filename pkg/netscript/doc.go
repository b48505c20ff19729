// Package netscript parses the textual command-script surface for setting
// up a compare: equivalence hints, pin permutations, ignore rules, and the
// hierarchical compare request, each as a semicolon-terminated statement (spec.md §6's
// engine API expressed as text rather than direct Go calls). The same
// grammar also describes the netlist files themselves — cell/pins/global/
// device/endcell blocks — so a netcomp invocation's two input netlists and
// its compare setup both parse through this one package (spec.md §6's "a
// netcomp invocation takes two netlist files"). Apply consumes the
// engine-hint statements; BuildCells (builder.go) consumes the netlist
// structure statements.
//
// Grounded on pkg/bsdl's participle-based lexer/parser split: a custom
// lexer.SimpleRule token table in lexer.go, a participle-tagged AST in
// ast.go, and a thin Parser wrapper in parser.go.
package netscript
