package expr

import (
	"fmt"
	"strings"
)

// node is a parsed expression fragment.
type node interface {
	eval(ctx map[string]any) (any, error)
}

type literalNode struct {
	value any
}

type identNode struct {
	path []string
}

type unaryNode struct {
	op tokenKind // tokNot
	x  node
}

type binaryNode struct {
	op   tokenKind
	l, r node
}

type parser struct {
	input string
	toks  []token
	pos   int
}

// parse builds the AST for an expression.
//
//	expr   := or
//	or     := and ('||' and)*
//	and    := unary ('&&' unary)*
//	unary  := '!' unary | compare
//	compare:= primary (op primary)?     op in == === != !== < <= > >=
//	primary:= literal | ident | '(' expr ')'
func parse(input string) (node, error) {
	toks, err := (&lexer{input: input}).tokens()
	if err != nil {
		return nil, err
	}
	p := &parser{input: input, toks: toks}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, p.errorf("unexpected trailing input")
	}
	return n, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) advance() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Expression: p.input, Pos: p.peek().pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: tokOr, l: left, r: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: tokAnd, l: left, r: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.peek().kind == tokNot {
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: tokNot, x: x}, nil
	}
	return p.parseCompare()
}

func (p *parser) parseCompare() (node, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	switch p.peek().kind {
	case tokEq, tokStrictEq, tokNeq, tokStrictNe, tokLt, tokLte, tokGt, tokGte:
		op := p.advance().kind
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &binaryNode{op: op, l: left, r: right}, nil
	}
	return left, nil
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.peek()
	switch tok.kind {
	case tokNumber:
		p.advance()
		return &literalNode{value: tok.num}, nil
	case tokString:
		p.advance()
		return &literalNode{value: tok.text}, nil
	case tokBool:
		p.advance()
		return &literalNode{value: tok.b}, nil
	case tokNull:
		p.advance()
		return &literalNode{value: nil}, nil
	case tokIdent:
		p.advance()
		return &identNode{path: strings.Split(tok.text, ".")}, nil
	case tokLParen:
		p.advance()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, p.errorf("expected ')'")
		}
		p.advance()
		return inner, nil
	default:
		return nil, p.errorf("expected a value")
	}
}
