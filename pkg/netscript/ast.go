package netscript

// Script is a parsed command script: a sequence of semicolon-terminated
// statements (line breaks are plain whitespace), applied to an Engine in
// order (see Apply in apply.go).
type Script struct {
	Commands []*Command `( @@ Semicolon )*`
}

// Command is the union of every statement kind the grammar accepts.
// Participle tries each alternative in order; KwEquate's three forms are
// disambiguated by the very next keyword (Elements/Nodes/Classes), which
// needs no backtracking.
type Command struct {
	Cell           *CellStmt           `  @@`
	Pins           *PinsStmt           `| @@`
	Global         *GlobalStmt         `| @@`
	Device         *DeviceStmt         `| @@`
	EndCell        *EndCellStmt        `| @@`
	EquateElements *EquateElementsStmt `| @@`
	EquateNodes    *EquateNodesStmt    `| @@`
	EquateClasses  *EquateClassesStmt  `| @@`
	Permute        *PermuteStmt        `| @@`
	Ignore         *IgnoreStmt         `| @@`
	Compare        *CompareStmt        `| @@`
}

// CellStmt opens a cell block: "cell name tag" — SPEC_FULL.md's netlist
// loading extension, registering a CellDefinition under (name, tag) for
// the Pins/Global/Device statements that follow up to the matching
// EndCellStmt.
type CellStmt struct {
	Name string `KwCell @Ident`
	Tag  int    `@Integer`
}

// PinsStmt declares the enclosing cell's external pin signature, in order:
// "pins name...".
type PinsStmt struct {
	Names []string `KwPins ( @Ident )+`
}

// GlobalStmt declares net names that are global within the enclosing cell
// (spec.md §4.4's series-merge non-global requirement reads this):
// "global name...".
type GlobalStmt struct {
	Names []string `KwGlobal ( @Ident )+`
}

// DeviceStmt declares one device instance inside the enclosing cell:
// "device name class net...".
type DeviceStmt struct {
	Name  string   `KwDevice @Ident`
	Class string   `@Ident`
	Nets  []string `( @Ident )+`
}

// EndCellStmt closes the cell block opened by the most recent CellStmt:
// "endcell". Matched is unused; participle requires at least one field
// to bind the literal token to.
type EndCellStmt struct {
	Matched bool `@KwEndcell`
}

// EquateElementsStmt is "equate elements name1 name2" — spec.md §6
// EquivalenceElements.
type EquateElementsStmt struct {
	Name1 string `KwEquate KwElements @Ident`
	Name2 string `@Ident`
}

// EquateNodesStmt is "equate nodes name1 name2" — spec.md §6
// EquivalenceNodes.
type EquateNodesStmt struct {
	Name1 string `KwEquate KwNodes @Ident`
	Name2 string `@Ident`
}

// EquateClassesStmt is "equate classes name1 tag1 name2 tag2" — spec.md §6
// EquivalenceClasses; Apply hands it to Engine.EquivalenceClasses.
type EquateClassesStmt struct {
	Name1 string `KwEquate KwClasses @Ident`
	Tag1  int    `@Integer`
	Name2 string `@Ident`
	Tag2  int    `@Integer`
}

// PermuteStmt is "permute cellClass pin1 pin2" — spec.md §6 PermuteSetup.
type PermuteStmt struct {
	Cell string `KwPermute @Ident`
	Pin1 string `@Ident`
	Pin2 string `@Ident`
}

// IgnoreStmt is "ignore className delete" or
// "ignore className delete-if-shorted" — spec.md §6 IgnoreClass.
type IgnoreStmt struct {
	Class string `KwIgnore @Ident`
	Mode  string `@( KwDelete | KwShorted )`
}

// CompareStmt is "compare top1 tag1 top2 tag2" — spec.md §6
// CreateCompareQueue, naming the two top-level cells to compare.
type CompareStmt struct {
	Top1 string `KwCompare @Ident`
	Tag1 int    `@Integer`
	Top2 string `@Ident`
	Tag2 int    `@Integer`
}
