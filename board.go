package drill2exc

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// MinBoardVersion is the oldest board format kicad-cli can export (KiCad 6.0).
const MinBoardVersion = 20211014

// boardLexer tokenizes KiCad s-expression files.
var boardLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "Symbol", Pattern: `[^\s()"]+`},
})

// boardFile is the whole file: a single root list.
type boardFile struct {
	Root *sexpNode `parser:"@@"`
}

// sexpNode is either a list or an atom.
type sexpNode struct {
	List []*sexpNode `parser:"  \"(\" @@* \")\""`
	Atom *string     `parser:"| @(Symbol | String)"`
}

// head returns the leading atom of a list node, or "".
func (n *sexpNode) head() string {
	if n == nil || len(n.List) == 0 || n.List[0].Atom == nil {
		return ""
	}
	return *n.List[0].Atom
}

// child returns the first sub-list whose head is key.
func (n *sexpNode) child(key string) (*sexpNode, bool) {
	for _, c := range n.List {
		if c.head() == key {
			return c, true
		}
	}
	return nil, false
}

// atomAt returns the atom at position i of a list node.
func (n *sexpNode) atomAt(i int) (string, bool) {
	if i >= len(n.List) || n.List[i].Atom == nil {
		return "", false
	}
	return *n.List[i].Atom, true
}

// BoardInfo holds the header fields of a KiCad board file.
type BoardInfo struct {
	Version   int
	Generator string
}

// BoardParser checks that a file is a KiCad board kicad-cli can export.
type BoardParser struct {
	parser *participle.Parser[boardFile]
}

// NewBoardParser creates a board parser.
func NewBoardParser() (*BoardParser, error) {
	parser, err := participle.Build[boardFile](
		participle.Lexer(boardLexer),
		participle.Elide("Whitespace"),
		participle.Unquote("String"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build board parser: %w", err)
	}
	return &BoardParser{parser: parser}, nil
}

// Parse reads a board from r. name is used in error positions only.
func (p *BoardParser) Parse(name string, r io.Reader) (*BoardInfo, error) {
	file, err := p.parser.Parse(name, r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBoard, err)
	}
	return boardInfo(file.Root)
}

// ParseFile reads a board from path.
func (p *BoardParser) ParseFile(path string) (*BoardInfo, error) {
	f, err := os.Open(path) // #nosec G304 -- board path is user-provided
	if err != nil {
		return nil, fmt.Errorf("opening board: %w", err)
	}
	defer func() { _ = f.Close() }()

	return p.Parse(path, f)
}

// boardInfo validates the root list and extracts its header.
func boardInfo(root *sexpNode) (*BoardInfo, error) {
	if got := root.head(); got != "kicad_pcb" {
		return nil, fmt.Errorf("%w: expected root 'kicad_pcb', got %q", ErrInvalidBoard, got)
	}

	versionNode, ok := root.child("version")
	if !ok {
		return nil, fmt.Errorf("%w: missing version", ErrInvalidBoard)
	}
	raw, _ := versionNode.atomAt(1)
	version, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: bad version %q", ErrInvalidBoard, raw)
	}
	if version < MinBoardVersion {
		return nil, fmt.Errorf("%w: version %d is older than KiCad 6 (%d)", ErrInvalidBoard, version, MinBoardVersion)
	}

	info := &BoardInfo{Version: version, Generator: "unknown"}
	// Older files use (host pcbnew "ver"), newer ones (generator "pcbnew").
	for _, key := range []string{"generator", "host"} {
		if n, ok := root.child(key); ok {
			if g, ok := n.atomAt(1); ok {
				info.Generator = g
				break
			}
		}
	}
	return info, nil
}
