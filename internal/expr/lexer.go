package expr

import (
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokBool
	tokNull
	tokEq       // ==
	tokStrictEq // ===
	tokNeq      // !=
	tokStrictNe // !==
	tokLt       // <
	tokLte      // <=
	tokGt       // >
	tokGte      // >=
	tokAnd      // &&
	tokOr       // ||
	tokNot      // !
	tokLParen   // (
	tokRParen   // )
)

type token struct {
	kind tokenKind
	text string  // identifier dotted path or string literal
	num  float64 // number literal
	b    bool    // bool literal
	pos  int
}

// SyntaxError reports a malformed expression.
type SyntaxError struct {
	Expression string
	Pos        int
	Message    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid expression %q at offset %d: %s", e.Expression, e.Pos, e.Message)
}

type lexer struct {
	input string
	pos   int
}

func (l *lexer) errorf(pos int, format string, args ...any) error {
	return &SyntaxError{Expression: l.input, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func (l *lexer) tokens() ([]token, error) {
	var toks []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.kind == tokEOF {
			return toks, nil
		}
	}
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.input) && isSpace(l.input[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	c := l.input[l.pos]

	switch {
	case c == '(':
		l.pos++
		return token{kind: tokLParen, pos: start}, nil
	case c == ')':
		l.pos++
		return token{kind: tokRParen, pos: start}, nil
	case c == '&':
		if l.peekAt(1) != '&' {
			return token{}, l.errorf(start, "expected '&&'")
		}
		l.pos += 2
		return token{kind: tokAnd, pos: start}, nil
	case c == '|':
		if l.peekAt(1) != '|' {
			return token{}, l.errorf(start, "expected '||'")
		}
		l.pos += 2
		return token{kind: tokOr, pos: start}, nil
	case c == '=':
		if l.peekAt(1) != '=' {
			return token{}, l.errorf(start, "assignment is not allowed; use '==' to compare")
		}
		if l.peekAt(2) == '=' {
			l.pos += 3
			return token{kind: tokStrictEq, pos: start}, nil
		}
		l.pos += 2
		return token{kind: tokEq, pos: start}, nil
	case c == '!':
		if l.peekAt(1) == '=' {
			if l.peekAt(2) == '=' {
				l.pos += 3
				return token{kind: tokStrictNe, pos: start}, nil
			}
			l.pos += 2
			return token{kind: tokNeq, pos: start}, nil
		}
		l.pos++
		return token{kind: tokNot, pos: start}, nil
	case c == '<':
		if l.peekAt(1) == '=' {
			l.pos += 2
			return token{kind: tokLte, pos: start}, nil
		}
		l.pos++
		return token{kind: tokLt, pos: start}, nil
	case c == '>':
		if l.peekAt(1) == '=' {
			l.pos += 2
			return token{kind: tokGte, pos: start}, nil
		}
		l.pos++
		return token{kind: tokGt, pos: start}, nil
	case c == '\'' || c == '"':
		return l.lexString(c)
	case isDigit(c) || (c == '-' && isDigit(l.peekAt(1))) || (c == '+' && isDigit(l.peekAt(1))):
		return l.lexNumber()
	case isIdentStart(c):
		return l.lexIdent()
	default:
		return token{}, l.errorf(start, "unexpected character %q", c)
	}
}

func (l *lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *lexer) lexString(quote byte) (token, error) {
	start := l.pos
	l.pos++ // opening quote
	var sb strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == '\\' && l.pos+1 < len(l.input) {
			next := l.input[l.pos+1]
			switch next {
			case quote, '\\':
				sb.WriteByte(next)
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteByte('\\')
				sb.WriteByte(next)
			}
			l.pos += 2
			continue
		}
		if c == quote {
			l.pos++
			return token{kind: tokString, text: sb.String(), pos: start}, nil
		}
		sb.WriteByte(c)
		l.pos++
	}
	return token{}, l.errorf(start, "unterminated string literal")
}

func (l *lexer) lexNumber() (token, error) {
	start := l.pos
	if l.input[l.pos] == '-' || l.input[l.pos] == '+' {
		l.pos++
	}
	for l.pos < len(l.input) && (isDigit(l.input[l.pos]) || l.input[l.pos] == '.') {
		l.pos++
	}
	text := l.input[start:l.pos]
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, l.errorf(start, "invalid number %q", text)
	}
	return token{kind: tokNumber, num: n, pos: start}, nil
}

// lexIdent scans a dotted identifier path. A '-' continues the identifier
// only when followed by another identifier character, which keeps kebab-case
// ids readable without introducing subtraction.
func (l *lexer) lexIdent() (token, error) {
	start := l.pos
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case isIdentPart(c):
			l.pos++
		case c == '-' && isIdentPart(l.peekAt(1)):
			l.pos += 2
		case c == '.' && isIdentStart(l.peekAt(1)):
			l.pos += 2
		default:
			goto done
		}
	}
done:
	text := l.input[start:l.pos]
	switch text {
	case "true":
		return token{kind: tokBool, b: true, pos: start}, nil
	case "false":
		return token{kind: tokBool, b: false, pos: start}, nil
	case "null", "undefined":
		return token{kind: tokNull, pos: start}, nil
	}
	return token{kind: tokIdent, text: text, pos: start}, nil
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
