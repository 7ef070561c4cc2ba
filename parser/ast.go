package parser

import (
	"fmt"
	"go/constant"
	"text/scanner"
)

// ExpressionNode is a node in the AST for constant expressions that appear as
// annotation values.
type ExpressionNode interface {
	Pos() scanner.Position
}

// LiteralNode is an expression node that represents a literal value, such as a
// number, rune, string, or boolean.
type LiteralNode struct {
	Val constant.Value
	pos scanner.Position
}

func (n LiteralNode) Pos() scanner.Position {
	return n.pos
}

// RefNode is an expression node that is a reference to an identifier, which is
// expected to resolve to a constant.
type RefNode struct {
	Ident Identifier
}

func (n RefNode) Pos() scanner.Position {
	return n.Ident.Pos
}

// BinaryOperatorNode is an expression node that represents a binary operator
// and its two arguments: arithmetic and bitwise operations.
type BinaryOperatorNode struct {
	Left, Right ExpressionNode
	Operator    string
	OperatorPos scanner.Position
}

func (n BinaryOperatorNode) Pos() scanner.Position {
	return n.Left.Pos()
}

// ParenthesizedExpressionNode is an expression node that represents an
// expression surrounded by parentheses.
type ParenthesizedExpressionNode struct {
	Contents ExpressionNode
	pos      scanner.Position
}

func (n ParenthesizedExpressionNode) Pos() scanner.Position {
	return n.pos
}

// PrefixOperatorNode is an expression node that represents a prefix operator:
// unary plus (+), unary minus (-), or bitwise not (^).
type PrefixOperatorNode struct {
	Operator string
	Value    ExpressionNode
	pos      scanner.Position
}

func (n PrefixOperatorNode) Pos() scanner.Position {
	return n.pos
}

// RawNode is an expression node for a brace-delimited value. Its contents are
// not parsed, only checked for balanced delimiters. Such values belong to
// annotations of other tools and are carried along so that those annotations
// do not prevent the rest of a comment from being parsed.
type RawNode struct {
	Text string
	pos  scanner.Position
}

func (n RawNode) Pos() scanner.Position {
	return n.pos
}

// Identifier is an AST node that refers to an identifier, possibly qualified
// with a package name/alias.
type Identifier struct {
	PackageAlias string
	Name         string
	Pos          scanner.Position
}

func (id Identifier) String() string {
	if id.PackageAlias == "" {
		return id.Name
	}
	return fmt.Sprintf("%s.%s", id.PackageAlias, id.Name)
}

// Annotation is a fully parsed annotation. It identifies the annotation type
// and has an optional value, which is nil when the annotation has no
// arguments.
type Annotation struct {
	Type  Identifier
	Value ExpressionNode
	Pos   scanner.Position
}
