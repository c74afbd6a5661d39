package formula

import (
	"fmt"
	"sort"
)

// node is one element of a parsed expression tree
type node interface {
	eval(vars map[string]float64) (float64, error)
}

type numberNode struct {
	value float64
}

func (n numberNode) eval(map[string]float64) (float64, error) {
	return n.value, nil
}

type identNode struct {
	name string
}

func (n identNode) eval(vars map[string]float64) (float64, error) {
	v, ok := vars[n.name]
	if !ok {
		return 0, fmt.Errorf("undefined variable %q", n.name)
	}
	return v, nil
}

type negateNode struct {
	operand node
}

func (n negateNode) eval(vars map[string]float64) (float64, error) {
	v, err := n.operand.eval(vars)
	if err != nil {
		return 0, err
	}
	return -v, nil
}

type binaryNode struct {
	op          tokenKind
	left, right node
}

func (n binaryNode) eval(vars map[string]float64) (float64, error) {
	l, err := n.left.eval(vars)
	if err != nil {
		return 0, err
	}
	r, err := n.right.eval(vars)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case tokenPlus:
		return l + r, nil
	case tokenMinus:
		return l - r, nil
	case tokenStar:
		return l * r, nil
	case tokenSlash:
		return l / r, nil
	}
	return 0, fmt.Errorf("unknown operator %d", n.op)
}

// Expr is a compiled arithmetic expression
type Expr struct {
	source string
	root   node
	idents []string
}

// Compile parses an expression into an evaluable tree.
//
// Grammar:
//
//	expr   = term { ("+" | "-") term }
//	term   = unary { ("*" | "/") unary }
//	unary  = ("+" | "-") unary | primary
//	primary = number | identifier | "(" expr ")"
func Compile(src string) (*Expr, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens, idents: make(map[string]struct{})}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokenEOF {
		tok := p.peek()
		return nil, fmt.Errorf("unexpected %q at %d", tok.text, tok.pos)
	}

	idents := make([]string, 0, len(p.idents))
	for name := range p.idents {
		idents = append(idents, name)
	}
	sort.Strings(idents)

	return &Expr{source: src, root: root, idents: idents}, nil
}

// Identifiers returns the variable names referenced by the expression, sorted
func (e *Expr) Identifiers() []string {
	out := make([]string, len(e.idents))
	copy(out, e.idents)
	return out
}

// String returns the source text the expression was compiled from
func (e *Expr) String() string {
	return e.source
}

// Eval evaluates the expression against the given variables
func (e *Expr) Eval(vars map[string]float64) (float64, error) {
	return e.root.eval(vars)
}

type parser struct {
	tokens []token
	pos    int
	idents map[string]struct{}
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) parseExpr() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		kind := p.peek().kind
		if kind != tokenPlus && kind != tokenMinus {
			return left, nil
		}
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: kind, left: left, right: right}
	}
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		kind := p.peek().kind
		if kind != tokenStar && kind != tokenSlash {
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: kind, left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	switch p.peek().kind {
	case tokenMinus:
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return negateNode{operand: operand}, nil
	case tokenPlus:
		p.next()
		return p.parseUnary()
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.next()
	switch tok.kind {
	case tokenNumber:
		return numberNode{value: tok.value}, nil
	case tokenIdent:
		p.idents[tok.text] = struct{}{}
		return identNode{name: tok.text}, nil
	case tokenLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokenRParen {
			return nil, fmt.Errorf("expected ) at %d", closing.pos)
		}
		return inner, nil
	case tokenEOF:
		return nil, fmt.Errorf("unexpected end of expression")
	}
	return nil, fmt.Errorf("unexpected %q at %d", tok.text, tok.pos)
}
