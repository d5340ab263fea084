package outline

import (
	"bufio"
	"io"
	"unicode"

	"github.com/cockroachdb/errors"
)

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenOpen
	tokenClose
	tokenAtom
)

type token struct {
	typ   tokenType
	value string
	line  int
}

// lexer tokenizes an s-expression document and tracks line numbers.
// Unlike the netlist scanner it understands escaped quotes ("" and \").
type lexer struct {
	reader *bufio.Reader
	peeked *rune
	line   int
}

func newLexer(r io.Reader) *lexer {
	return &lexer{reader: bufio.NewReader(r), line: 1}
}

func (l *lexer) next() (token, error) {
	for {
		ch, err := l.peek()
		if err == io.EOF {
			return token{typ: tokenEOF, line: l.line}, nil
		}
		if err != nil {
			return token{}, errors.Wrap(err, "read failed")
		}
		if !unicode.IsSpace(ch) {
			break
		}
		l.read()
	}

	ch, _ := l.peek()
	switch ch {
	case '(':
		l.read()
		return token{typ: tokenOpen, value: "(", line: l.line}, nil
	case ')':
		l.read()
		return token{typ: tokenClose, value: ")", line: l.line}, nil
	case '"':
		return l.readString()
	default:
		return l.readSymbol()
	}
}

func (l *lexer) peek() (rune, error) {
	if l.peeked != nil {
		return *l.peeked, nil
	}
	ch, _, err := l.reader.ReadRune()
	if err != nil {
		return 0, err
	}
	l.peeked = &ch
	return ch, nil
}

func (l *lexer) read() (rune, error) {
	var (
		ch  rune
		err error
	)
	if l.peeked != nil {
		ch = *l.peeked
		l.peeked = nil
	} else {
		ch, _, err = l.reader.ReadRune()
	}
	if err == nil && ch == '\n' {
		l.line++
	}
	return ch, err
}

func (l *lexer) readString() (token, error) {
	start := l.line
	l.read()

	var result []rune
	escapedQuotes := 0
	for {
		ch, err := l.read()
		if err != nil {
			return token{}, &SyntaxError{Line: start, Msg: "unterminated string"}
		}

		switch ch {
		case '"':
			// A doubled quote is a literal quote.
			if next, err := l.peek(); err == nil && next == '"' {
				l.read()
				result = append(result, '"')
				continue
			}
			return token{typ: tokenAtom, value: string(result), line: start}, nil

		case '\\':
			next, err := l.read()
			if err != nil {
				return token{}, &SyntaxError{Line: start, Msg: "unterminated string"}
			}
			switch next {
			case 'n':
				result = append(result, '\n')
			case 't':
				result = append(result, '\t')
			case '"':
				// "C:\dir\" ends in a backslash: a \" that closes no earlier
				// \" and is followed by a separator terminates the string.
				if escapedQuotes%2 == 0 && l.atSeparator() {
					result = append(result, '\\')
					return token{typ: tokenAtom, value: string(result), line: start}, nil
				}
				escapedQuotes++
				result = append(result, '"')
			case '\\':
				result = append(result, next)
			default:
				// Windows paths: keep the backslash.
				result = append(result, '\\', next)
			}

		default:
			result = append(result, ch)
		}
	}
}

// atSeparator reports whether the next rune ends an atom or the input ends.
func (l *lexer) atSeparator() bool {
	ch, err := l.peek()
	return err != nil || unicode.IsSpace(ch) || ch == ')'
}

func (l *lexer) readSymbol() (token, error) {
	line := l.line
	var result []rune
	for {
		ch, err := l.peek()
		if err != nil {
			break
		}
		if unicode.IsSpace(ch) || ch == '(' || ch == ')' || ch == '"' {
			break
		}
		l.read()
		result = append(result, ch)
	}
	return token{typ: tokenAtom, value: string(result), line: line}, nil
}
