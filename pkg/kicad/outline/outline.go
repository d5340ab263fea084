// Package outline builds a strict tag tree of an s-expression document.
//
// The netlist reader in package netlist is tolerant and only
// looks for the anchors it needs. Outline is the strict counterpart used by
// diagnostics: every list must be closed, strings must terminate, and errors
// carry the line they were found on.
package outline

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
)

// SyntaxError is a structural error at a given line.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Node is one list of the document. Tag is the first atom of the list, Atoms
// the remaining atoms and Children the nested lists, each in order.
type Node struct {
	Tag      string
	Atoms    []string
	Children []*Node
	Line     int
	EndLine  int
}

// Child returns the first direct child with the given tag.
func (n *Node) Child(tag string) *Node {
	for _, c := range n.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// Atom returns the first atom of the child with the given tag.
func (n *Node) Atom(tag string) (string, bool) {
	c := n.Child(tag)
	if c == nil || len(c.Atoms) == 0 {
		return "", false
	}
	return c.Atoms[0], true
}

// Count returns how many nodes below n, at any depth, carry tag.
func (n *Node) Count(tag string) int {
	total := 0
	for _, c := range n.Children {
		if c.Tag == tag {
			total++
		}
		total += c.Count(tag)
	}
	return total
}

// ParseFile parses the document at path.
func ParseFile(path string) ([]*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open document")
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads every top-level list of r.
func Parse(r io.Reader) ([]*Node, error) {
	p := &parser{lex: newLexer(r)}

	var roots []*Node
	for {
		tok, err := p.lex.next()
		if err != nil {
			return nil, err
		}
		switch tok.typ {
		case tokenEOF:
			return roots, nil
		case tokenOpen:
			n, err := p.parseList(tok.line)
			if err != nil {
				return nil, err
			}
			roots = append(roots, n)
		case tokenClose:
			return nil, &SyntaxError{Line: tok.line, Msg: "unexpected ')'"}
		default:
			return nil, &SyntaxError{Line: tok.line, Msg: fmt.Sprintf("atom %q outside of any list", tok.value)}
		}
	}
}

type parser struct {
	lex *lexer
}

// parseList parses the remainder of a list whose '(' was on line.
func (p *parser) parseList(line int) (*Node, error) {
	n := &Node{Line: line}
	first := true

	for {
		tok, err := p.lex.next()
		if err != nil {
			return nil, err
		}

		switch tok.typ {
		case tokenClose:
			n.EndLine = tok.line
			return n, nil

		case tokenEOF:
			return nil, &SyntaxError{Line: line, Msg: "list is never closed"}

		case tokenOpen:
			child, err := p.parseList(tok.line)
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)

		case tokenAtom:
			if first {
				n.Tag = tok.value
			} else {
				n.Atoms = append(n.Atoms, tok.value)
			}
		}
		first = false
	}
}
