// Package parser parses annotations that appear in Go doc comments.
//
// An annotation starts with '@' followed by a possibly-qualified name and an
// optional value:
//
//    @viewbind.BindView(101)
//    @viewbind.BindView(ids.Base + 2)
//    @Marker
//    @other.Thing{Foo: "bar"}
//
// Values in parentheses are constant expressions. Values in braces are not
// interpreted (see RawNode).
package parser

import (
	"errors"
	"fmt"
	"go/constant"
	"go/token"
	"io"
	"strings"
	"text/scanner"
)

// multi-character operators, folded into a single token by the lexer
const (
	tokShl rune = -(iota + 100)
	tokShr
	tokAndNot
)

var operators = map[rune]string{
	tokShl:    "<<",
	tokShr:    ">>",
	tokAndNot: "&^",
}

// binary operator precedences, as in the Go spec
var precedence = map[string]int{
	"*": 2, "/": 2, "%": 2, "<<": 2, ">>": 2, "&": 2, "&^": 2,
	"+": 1, "-": 1, "|": 1, "^": 1,
}

type ParseError struct {
	err error
	pos scanner.Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.pos.Line, e.pos.Column, e.err)
}

func (e *ParseError) Underlying() error {
	return e.err
}

func (e *ParseError) Pos() scanner.Position {
	return e.pos
}

// ParseAnnotations parses all annotations in the given input. The input must
// start, after optional whitespace, with an annotation and contain nothing but
// annotations.
func ParseAnnotations(filename string, r io.Reader) ([]Annotation, *ParseError) {
	p := newParser(filename, r)
	var annos []Annotation
	for p.next(); p.tok != scanner.EOF; {
		a := p.parseAnnotation()
		if p.err != nil {
			return nil, p.err
		}
		annos = append(annos, a)
	}
	if p.err != nil {
		return nil, p.err
	}
	return annos, nil
}

type annoParser struct {
	s    scanner.Scanner
	tok  rune
	text string
	pos  scanner.Position
	err  *ParseError
}

func newParser(filename string, r io.Reader) *annoParser {
	var p annoParser
	p.s.Init(r)
	p.s.Filename = filename
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats |
		scanner.ScanChars | scanner.ScanStrings | scanner.ScanRawStrings
	p.s.Error = func(s *scanner.Scanner, msg string) {
		p.fail(s.Position, errors.New(msg))
	}
	return &p
}

func (p *annoParser) fail(pos scanner.Position, err error) {
	if p.err == nil {
		p.err = &ParseError{err: err, pos: pos}
	}
}

func (p *annoParser) failf(format string, args ...interface{}) {
	p.fail(p.pos, fmt.Errorf(format, args...))
}

func (p *annoParser) next() {
	if p.err != nil {
		p.tok = scanner.EOF
		return
	}
	p.tok = p.s.Scan()
	p.text = p.s.TokenText()
	p.pos = p.s.Position
	switch {
	case p.tok == '<' && p.s.Peek() == '<':
		p.s.Next()
		p.tok = tokShl
	case p.tok == '>' && p.s.Peek() == '>':
		p.s.Next()
		p.tok = tokShr
	case p.tok == '&' && p.s.Peek() == '^':
		p.s.Next()
		p.tok = tokAndNot
	}
	if op, ok := operators[p.tok]; ok {
		p.text = op
	}
}

func (p *annoParser) expect(r rune) bool {
	if p.tok != r {
		p.failf("expecting %s; got %s", scanner.TokenString(r), p.describe())
		return false
	}
	p.next()
	return true
}

func (p *annoParser) describe() string {
	switch p.tok {
	case scanner.EOF:
		return "end of input"
	case scanner.Ident:
		return fmt.Sprintf("identifier %q", p.text)
	case scanner.Int, scanner.Float, scanner.Char, scanner.String, scanner.RawString:
		return fmt.Sprintf("literal %s", p.text)
	default:
		return fmt.Sprintf("%q", p.text)
	}
}

func (p *annoParser) parseAnnotation() Annotation {
	var a Annotation
	a.Pos = p.pos
	if !p.expect('@') {
		return a
	}
	a.Type = p.parseIdentifier()
	if p.err != nil {
		return a
	}
	switch p.tok {
	case '(':
		p.next()
		a.Value = p.parseExpression(0)
		p.expect(')')
	case '{':
		a.Value = p.parseRaw()
	}
	return a
}

func (p *annoParser) parseIdentifier() Identifier {
	id := Identifier{Pos: p.pos, Name: p.text}
	if !p.expect(scanner.Ident) {
		return id
	}
	if p.tok == '.' {
		p.next()
		id.PackageAlias = id.Name
		id.Name = p.text
		p.expect(scanner.Ident)
	}
	return id
}

func (p *annoParser) parseExpression(minPrec int) ExpressionNode {
	left := p.parseUnary()
	for p.err == nil {
		prec, ok := precedence[p.text]
		if !ok || prec <= minPrec {
			return left
		}
		op, opPos := p.text, p.pos
		p.next()
		right := p.parseExpression(prec)
		left = BinaryOperatorNode{Left: left, Right: right, Operator: op, OperatorPos: opPos}
	}
	return left
}

func (p *annoParser) parseUnary() ExpressionNode {
	switch p.tok {
	case '+', '-', '^':
		op, pos := p.text, p.pos
		p.next()
		return PrefixOperatorNode{Operator: op, Value: p.parseUnary(), pos: pos}
	}
	return p.parsePrimary()
}

func (p *annoParser) parsePrimary() ExpressionNode {
	pos := p.pos
	switch p.tok {
	case scanner.Int:
		return p.literal(token.INT)
	case scanner.Float:
		return p.literal(token.FLOAT)
	case scanner.Char:
		return p.literal(token.CHAR)
	case scanner.String, scanner.RawString:
		return p.literal(token.STRING)
	case scanner.Ident:
		switch p.text {
		case "true", "false":
			v := constant.MakeBool(p.text == "true")
			p.next()
			return LiteralNode{Val: v, pos: pos}
		}
		return RefNode{Ident: p.parseIdentifier()}
	case '(':
		p.next()
		contents := p.parseExpression(0)
		p.expect(')')
		return ParenthesizedExpressionNode{Contents: contents, pos: pos}
	}
	p.failf("expecting expression; got %s", p.describe())
	return nil
}

func (p *annoParser) literal(tok token.Token) ExpressionNode {
	v := constant.MakeFromLiteral(p.text, tok, 0)
	if v.Kind() == constant.Unknown {
		p.failf("invalid literal %s", p.text)
	}
	n := LiteralNode{Val: v, pos: p.pos}
	p.next()
	return n
}

func (p *annoParser) parseRaw() ExpressionNode {
	pos := p.pos
	var buf strings.Builder
	var stack []rune
	closers := map[rune]rune{'{': '}', '(': ')', '[': ']'}
	for {
		switch p.tok {
		case scanner.EOF:
			p.failf("unterminated %q", "{")
			return nil
		case '{', '(', '[':
			stack = append(stack, closers[p.tok])
		case '}', ')', ']':
			if len(stack) == 0 || stack[len(stack)-1] != p.tok {
				p.failf("unexpected %q", p.text)
				return nil
			}
			stack = stack[:len(stack)-1]
		}
		buf.WriteString(p.text)
		p.next()
		if len(stack) == 0 {
			return RawNode{Text: buf.String(), pos: pos}
		}
		if p.tok != ',' && p.tok != ':' && p.tok != '}' && p.tok != ')' && p.tok != ']' {
			buf.WriteByte(' ')
		}
	}
}
