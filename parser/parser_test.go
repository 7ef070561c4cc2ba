package parser

import (
	"go/constant"
	"strings"
	"testing"
)

func TestParseAnnotations(t *testing.T) {
	var input = `
@NoValue
@viewbind.BindView(101)
@viewbind.BindView(ids.Title)
@viewbind.BindView(-(0x10 + Base) * 2 &^ 1 << 3)
@other.Thing{Foo: {Bar, Baz}, Id: 10101, Name: "dilapidacious"}
@Runes('a')
`

	annos, err := ParseAnnotations("foo", strings.NewReader(input))
	if err != nil {
		t.Fatalf("failed to parse annotations: %v", err)
	}
	if len(annos) != 6 {
		t.Fatalf("expecting to have parsed 6 annotations; instead parsed %d", len(annos))
	}

	names := []string{"NoValue", "viewbind.BindView", "viewbind.BindView", "viewbind.BindView", "other.Thing", "Runes"}
	for i, n := range names {
		if got := annos[i].Type.String(); got != n {
			t.Errorf("annotation %d: expecting type %s; got %s", i, n, got)
		}
	}

	if annos[0].Value != nil {
		t.Errorf("expecting no value for @NoValue; got %v", annos[0].Value)
	}

	lit, ok := annos[1].Value.(LiteralNode)
	if !ok {
		t.Fatalf("expecting literal value; got %T", annos[1].Value)
	}
	if v, _ := constant.Int64Val(lit.Val); v != 101 {
		t.Errorf("expecting value 101; got %v", lit.Val)
	}
	if lit.Pos().Line != 3 || lit.Pos().Column != 20 {
		t.Errorf("wrong position for literal: %v", lit.Pos())
	}

	ref, ok := annos[2].Value.(RefNode)
	if !ok {
		t.Fatalf("expecting reference value; got %T", annos[2].Value)
	}
	if ref.Ident.PackageAlias != "ids" || ref.Ident.Name != "Title" {
		t.Errorf("wrong reference: %v", ref.Ident)
	}

	// *, &^, and << share a precedence and associate left:
	// ((-(...) * 2) &^ 1) << 3
	bin, ok := annos[3].Value.(BinaryOperatorNode)
	if !ok {
		t.Fatalf("expecting binary operator; got %T", annos[3].Value)
	}
	if bin.Operator != "<<" {
		t.Errorf("expecting top-level operator <<; got %s", bin.Operator)
	}
	if inner, ok := bin.Left.(BinaryOperatorNode); !ok || inner.Operator != "&^" {
		t.Errorf("expecting &^ on the left of <<; got %#v", bin.Left)
	}

	raw, ok := annos[4].Value.(RawNode)
	if !ok {
		t.Fatalf("expecting raw value; got %T", annos[4].Value)
	}
	if !strings.HasPrefix(raw.Text, "{") || !strings.HasSuffix(raw.Text, "}") {
		t.Errorf("raw value should keep its braces: %q", raw.Text)
	}
}

func TestParseAnnotations_Precedence(t *testing.T) {
	annos, err := ParseAnnotations("foo", strings.NewReader("@A(1 + 2 * 3 - 4)"))
	if err != nil {
		t.Fatalf("failed to parse annotations: %v", err)
	}
	// (1 + (2 * 3)) - 4
	top := annos[0].Value.(BinaryOperatorNode)
	if top.Operator != "-" {
		t.Fatalf("expecting top-level operator -; got %s", top.Operator)
	}
	left := top.Left.(BinaryOperatorNode)
	if left.Operator != "+" {
		t.Fatalf("expecting + under -; got %s", left.Operator)
	}
	if mul, ok := left.Right.(BinaryOperatorNode); !ok || mul.Operator != "*" {
		t.Fatalf("expecting * on the right of +; got %#v", left.Right)
	}
}

func TestParseAnnotations_Errors(t *testing.T) {
	testCases := []struct {
		input      string
		line, col  int
		errContent string
	}{
		{"@", 0, 0, "expecting Ident"},
		{"@Foo(", 0, 0, "expecting expression"},
		{"@Foo(1", 0, 0, "expecting \")\""},
		{"@Foo(1 2)", 1, 8, "expecting \")\""},
		{"@Foo{1, 2", 0, 0, "unterminated"},
		{"@Foo{1, 2)", 1, 10, "unexpected"},
		{"@Foo\nnot an annotation", 2, 1, "expecting \"@\""},
		{"@Foo.", 0, 0, "expecting Ident"},
	}
	for _, tc := range testCases {
		_, err := ParseAnnotations("foo", strings.NewReader(tc.input))
		if err == nil {
			t.Errorf("%q: expecting error; got none", tc.input)
			continue
		}
		if !strings.Contains(err.Error(), tc.errContent) {
			t.Errorf("%q: expecting error to contain %q; got %v", tc.input, tc.errContent, err)
		}
		if tc.line != 0 && (err.Pos().Line != tc.line || err.Pos().Column != tc.col) {
			t.Errorf("%q: expecting error at %d:%d; got %d:%d", tc.input, tc.line, tc.col, err.Pos().Line, err.Pos().Column)
		}
	}
}
