package netscript

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/participle/v2"
)

// Parser parses a netcmp command script.
type Parser struct {
	parser *participle.Parser[Script]
}

// NewParser builds a Parser, following pkg/bsdl.NewParser's construction
// pattern (custom lexer, comments and whitespace elided).
func NewParser() (*Parser, error) {
	p, err := participle.Build[Script](
		participle.Lexer(Lexer),
		participle.Elide("Comment", "Whitespace"),
		participle.UseLookahead(2),
	)
	if err != nil {
		return nil, fmt.Errorf("netscript: failed to build parser: %w", err)
	}
	return &Parser{parser: p}, nil
}

// Parse parses a script from a reader.
func (p *Parser) Parse(r io.Reader) (*Script, error) {
	s, err := p.parser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("netscript: parse error: %w", err)
	}
	return s, nil
}

// ParseString parses a script from a string.
func (p *Parser) ParseString(input string) (*Script, error) {
	s, err := p.parser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("netscript: parse error: %w", err)
	}
	return s, nil
}

// ParseFile parses a script from a file path.
func (p *Parser) ParseFile(filename string) (*Script, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("netscript: failed to open file: %w", err)
	}
	defer f.Close()
	return p.Parse(f)
}
