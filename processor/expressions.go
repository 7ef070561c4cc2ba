package processor

import (
	"errors"
	"fmt"
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"
	"math"

	"github.com/zakli/viewbind/parser"
)

var binaryOps = map[string]token.Token{
	"+":  token.ADD,
	"-":  token.SUB,
	"*":  token.MUL,
	"/":  token.QUO,
	"%":  token.REM,
	"&":  token.AND,
	"|":  token.OR,
	"^":  token.XOR,
	"&^": token.AND_NOT,
	"<<": token.SHL,
	">>": token.SHR,
}

var unaryOps = map[string]token.Token{
	"+": token.ADD,
	"-": token.SUB,
	"^": token.XOR,
}

// EvalInt evaluates the value of the given annotation, found on the given
// element, as a constant integer that fits in an int. References to constants
// are resolved in the scope of the file that declares the element.
//
// If the value is nothing more than a reference to a constant, that constant
// is also returned, so that generated code can refer to it by name.
func (c *Context) EvalInt(el *AnnotatedElement, m AnnotationMirror) (int64, *types.Const, error) {
	if m.Value == nil {
		return 0, nil, NewErrorWithPosition(m.Pos, fmt.Errorf("annotation %v requires a value", m.Type))
	}
	v, err := c.determineConstantValue(el.File, m.Value, m)
	if err != nil {
		return 0, nil, err
	}
	pos := m.Position(m.Value)
	iv := constant.ToInt(v)
	if iv.Kind() != constant.Int {
		return 0, nil, NewErrorWithPosition(pos, fmt.Errorf("value %v is not an integer", v))
	}
	i, exact := constant.Int64Val(iv)
	if !exact || i < math.MinInt || i > math.MaxInt {
		return 0, nil, NewErrorWithPosition(pos, fmt.Errorf("value %v overflows int", iv))
	}

	var ref *types.Const
	if r, ok := m.Value.(parser.RefNode); ok {
		ref, _ = c.resolveConst(el.File, r.Ident, m)
	}
	return i, ref, nil
}

func (c *Context) determineConstantValue(file *ast.File, node parser.ExpressionNode, m AnnotationMirror) (constant.Value, error) {
	pos := m.Position(node)
	switch node := node.(type) {
	case parser.LiteralNode:
		return node.Val, nil

	case parser.RefNode:
		cnst, err := c.resolveConst(file, node.Ident, m)
		if err != nil {
			return nil, err
		}
		return cnst.Val(), nil

	case parser.ParenthesizedExpressionNode:
		return c.determineConstantValue(file, node.Contents, m)

	case parser.PrefixOperatorNode:
		v, err := c.determineConstantValue(file, node.Value, m)
		if err != nil {
			return nil, err
		}
		if !isNumber(v) {
			return nil, NewErrorWithPosition(pos, fmt.Errorf("operator %s not defined for %v", node.Operator, v))
		}
		op := unaryOps[node.Operator]
		if op == token.XOR {
			if v = constant.ToInt(v); v.Kind() != constant.Int {
				return nil, NewErrorWithPosition(pos, fmt.Errorf("operator %s requires an integer operand", node.Operator))
			}
		}
		return constant.UnaryOp(op, v, 0), nil

	case parser.BinaryOperatorNode:
		left, err := c.determineConstantValue(file, node.Left, m)
		if err != nil {
			return nil, err
		}
		right, err := c.determineConstantValue(file, node.Right, m)
		if err != nil {
			return nil, err
		}
		opPos := m.src.position(node.OperatorPos)
		if !isNumber(left) || !isNumber(right) {
			return nil, NewErrorWithPosition(opPos, fmt.Errorf("operator %s not defined for %v and %v", node.Operator, left, right))
		}
		op := binaryOps[node.Operator]
		switch op {
		case token.SHL, token.SHR:
			left = constant.ToInt(left)
			count, ok := constant.Uint64Val(constant.ToInt(right))
			if left.Kind() != constant.Int || !ok || count > 64 {
				return nil, NewErrorWithPosition(opPos, fmt.Errorf("invalid shift %v %s %v", left, node.Operator, right))
			}
			return constant.Shift(left, op, uint(count)), nil
		case token.REM, token.AND, token.OR, token.XOR, token.AND_NOT, token.QUO:
			li, ri := constant.ToInt(left), constant.ToInt(right)
			isInt := li.Kind() == constant.Int && ri.Kind() == constant.Int
			if op != token.QUO && !isInt {
				return nil, NewErrorWithPosition(opPos, fmt.Errorf("operator %s requires integer operands", node.Operator))
			}
			if (op == token.QUO || op == token.REM) && isZero(right) {
				return nil, NewErrorWithPosition(opPos, errors.New("division by zero"))
			}
			if op == token.QUO && isInt {
				// integer division truncates, as it does in Go
				return constant.BinaryOp(li, token.QUO_ASSIGN, ri), nil
			}
			if isInt {
				left, right = li, ri
			}
		}
		return constant.BinaryOp(left, op, right), nil

	default:
		return nil, NewErrorWithPosition(pos, errors.New("value must be a constant expression"))
	}
}

func (c *Context) resolveConst(file *ast.File, id parser.Identifier, m AnnotationMirror) (*types.Const, error) {
	pos := m.src.position(id.Pos)
	var obj types.Object
	if id.PackageAlias == "" {
		obj = c.Package.Pkg.Scope().Lookup(id.Name)
		if obj == nil {
			for _, imp := range file.Imports {
				if imp.Name != nil && imp.Name.Name == "." {
					if p := c.importedPackage(imp); p != nil {
						if obj = p.Scope().Lookup(id.Name); obj != nil && obj.Exported() {
							break
						}
						obj = nil
					}
				}
			}
		}
	} else {
		for _, imp := range file.Imports {
			if c.importName(imp) != id.PackageAlias {
				continue
			}
			if p := c.importedPackage(imp); p != nil {
				obj = p.Scope().Lookup(id.Name)
				if obj != nil && !obj.Exported() {
					obj = nil
				}
			}
			break
		}
	}
	if obj == nil {
		return nil, NewErrorWithPosition(pos, fmt.Errorf("symbol %v does not exist", id))
	}
	cnst, ok := obj.(*types.Const)
	if !ok {
		return nil, NewErrorWithPosition(pos, fmt.Errorf("%v is not a constant", id))
	}
	return cnst, nil
}

func isNumber(v constant.Value) bool {
	switch v.Kind() {
	case constant.Int, constant.Float:
		return true
	}
	return false
}

func isZero(v constant.Value) bool {
	return constant.Sign(v) == 0
}
