package netlist

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/cockroachdb/errors"
)

// labelLexer splits a pin or signal label into bracket punctuation and text.
var labelLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "LBracket", Pattern: `\[`},
	{Name: "RBracket", Pattern: `\]`},
	{Name: "Text", Pattern: `[^\[\]]+`},
})

// labelAST is the grammar of a label with an optional width suffix:
//
//	head [ width ] tail
//
// The resulting name is head followed by tail.
type labelAST struct {
	Head  string       `parser:"@Text?"`
	Width *widthSuffix `parser:"@@?"`
	Tail  string       `parser:"@Text?"`
}

type widthSuffix struct {
	Expr string `parser:"LBracket @Text? RBracket"`
}

var labelParser = participle.MustBuild[labelAST](
	participle.Lexer(labelLexer),
)

// Label is a pin or signal label split into its base name and width.
type Label struct {
	Name       string
	Width      int    // vector width, 0 for scalar labels
	WidthParam string // generic that sizes the vector, e.g. "N" for "data[N]"
}

// HasWidth reports whether the label carried a width suffix.
func (l Label) HasWidth() bool {
	return l.Width > 0 || l.WidthParam != ""
}

// ParseLabel splits "name[width]" into name and width. The width is either a
// positive integer or an identifier naming a generic. Labels without an open
// bracket are returned unchanged.
func ParseLabel(label string) (Label, error) {
	if !strings.ContainsRune(label, '[') {
		return Label{Name: label}, nil
	}

	ast, err := labelParser.ParseString("", label)
	if err != nil {
		return Label{}, errors.Wrapf(err, "malformed width suffix in %q", label)
	}

	out := Label{Name: strings.TrimSpace(ast.Head + ast.Tail)}
	if ast.Width == nil {
		return out, nil
	}

	expr := strings.TrimSpace(ast.Width.Expr)
	switch {
	case expr == "":
		return Label{}, errors.Newf("empty width suffix in %q", label)
	case isDigits(expr):
		n, err := strconv.Atoi(expr)
		if err != nil || n <= 0 {
			return Label{}, errors.Newf("width suffix in %q must be positive", label)
		}
		out.Width = n
	case isIdentifier(expr):
		out.WidthParam = expr
	default:
		return Label{}, errors.Newf("width suffix %q in %q is neither a number nor a generic name", expr, label)
	}

	return out, nil
}

// FormatLabel is the inverse of ParseLabel.
func FormatLabel(l Label) string {
	switch {
	case l.Width > 0:
		return l.Name + "[" + strconv.Itoa(l.Width) + "]"
	case l.WidthParam != "":
		return l.Name + "[" + l.WidthParam + "]"
	}
	return l.Name
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

func isIdentifier(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		letter := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if !letter && (i == 0 || c < '0' || c > '9') {
			return false
		}
	}
	return s != ""
}
