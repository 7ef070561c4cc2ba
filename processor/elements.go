package processor

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/zakli/viewbind/parser"
)

// ElementKind is an enumeration of the kinds of program elements that can
// carry annotations.
type ElementKind int

const (
	// Types are named types declared at the top level of a package.
	Types ElementKind = iota
	// Fields are fields of struct types declared at the top level of a
	// package. Embedded fields are named by their type.
	Fields
	// Functions are top-level functions, without receivers.
	Functions
	// Methods are functions with receivers.
	Methods
	// Variables are package-level variables.
	Variables
	// Constants are package-level constants.
	Constants
)

func (k ElementKind) String() string {
	switch k {
	case Types:
		return "types"
	case Fields:
		return "fields"
	case Functions:
		return "functions"
	case Methods:
		return "methods"
	case Variables:
		return "variables"
	case Constants:
		return "constants"
	default:
		return fmt.Sprintf("?%d?", int(k))
	}
}

// AnnotatedElement is a view of an element in source that may have
// annotations: a top-level type, a field of such a type, a function or method,
// a variable, or a constant.
type AnnotatedElement struct {
	// The actual source element, as a types.Object.
	Obj types.Object
	// The element's name/identifier in the source AST.
	Ident *ast.Ident
	// The AST for the file in which this element is defined.
	File *ast.File
	// The kind of element.
	Kind ElementKind

	// Child elements. The children of struct types are their fields, in
	// declaration order. Other elements do not have children.
	Children []*AnnotatedElement
	// The element's parent. The parent of a field will be the enclosing type.
	Parent *AnnotatedElement

	// The processor context for the package in which this element is defined.
	Context *Context

	// The annotations defined on this element, in source order.
	Annotations []AnnotationMirror
}

// Pos returns the source position of the element's identifier.
func (e *AnnotatedElement) Pos() token.Position {
	return e.Context.Program.Fset.Position(e.Ident.Pos())
}

// GetDeclaringFilename gets the name of the file that declared this element.
func (e *AnnotatedElement) GetDeclaringFilename() string {
	p := e.Context.Program.Fset.Position(e.File.Package)
	return p.Filename
}

// FindAnnotations returns annotation mirrors whose annotation type is the given
// type. The given type is described by its package path and name.
func (e *AnnotatedElement) FindAnnotations(packagePath, name string) []AnnotationMirror {
	at := annoType{packagePath: packagePath, name: name}
	var matches []AnnotationMirror
	for _, m := range e.Annotations {
		if m.annoType() == at {
			matches = append(matches, m)
		}
	}
	return matches
}

// AnnotationMirror is a representation of an annotation as it appears in
// source. The value is not interpreted; see Context.EvalInt.
type AnnotationMirror struct {
	// The annotation type as written in source.
	Type parser.Identifier
	// The import path of the package that declares the annotation type. If
	// the qualifier could not be resolved, this is the qualifier as written.
	PackagePath string
	// The name of the annotation type.
	Name string
	// The annotation value, or nil if the annotation has no value.
	Value parser.ExpressionNode
	// The location of the annotation in source.
	Pos token.Position

	src *annotationText
}

// QualifiedName returns the annotation type's package path and name, joined
// by a dot.
func (m AnnotationMirror) QualifiedName() string {
	if m.PackagePath == "" {
		return m.Name
	}
	return m.PackagePath + "." + m.Name
}

// Position returns the location in source of the given node of the
// annotation's value.
func (m AnnotationMirror) Position(n parser.ExpressionNode) token.Position {
	return m.src.position(n.Pos())
}

func (m AnnotationMirror) annoType() annoType {
	return annoType{packagePath: m.PackagePath, name: m.Name}
}

type annoType struct {
	packagePath, name string
}

func (c *Context) computeAllAnnotations() {
	processed := map[*ast.CommentGroup]struct{}{}
	for _, file := range c.Package.Files {
		c.computeAnnotationsFromFile(file, processed)
	}
}

func (c *Context) computeAnnotationsFromFile(file *ast.File, processed map[*ast.CommentGroup]struct{}) {
	for _, decl := range file.Decls {
		switch decl := decl.(type) {
		case *ast.GenDecl:
			for _, s := range decl.Specs {
				switch spec := s.(type) {
				case *ast.ValueSpec:
					doc := spec.Doc
					if doc == nil || len(doc.List) == 0 {
						doc = decl.Doc
					}
					kind := Variables
					if decl.Tok == token.CONST {
						kind = Constants
					}
					for _, id := range spec.Names {
						c.computeAnnotationsFromElement(file, kind, id, doc, nil, processed)
					}
				case *ast.TypeSpec:
					doc := spec.Doc
					if doc == nil || len(doc.List) == 0 {
						doc = decl.Doc
					}
					c.computeAnnotationsFromType(file, spec, doc, processed)
				}
			}
		case *ast.FuncDecl:
			kind := Functions
			if decl.Recv != nil {
				kind = Methods
			}
			c.computeAnnotationsFromElement(file, kind, decl.Name, decl.Doc, nil, processed)
		}
	}

	ast.Inspect(file, func(node ast.Node) bool {
		var doc *ast.CommentGroup
		switch node := node.(type) {
		case *ast.ImportSpec:
			doc = node.Doc
		case *ast.GenDecl:
			doc = node.Doc
		case *ast.TypeSpec:
			doc = node.Doc
		case *ast.ValueSpec:
			doc = node.Doc
		case *ast.Field:
			doc = node.Doc
		case *ast.File:
			doc = node.Doc
		}
		if _, ok := processed[doc]; ok {
			return true
		}
		if pos, found := hasAnnotations(doc); found {
			p := c.Program.Fset.Position(pos)
			c.Report(Diagnostic{
				Severity: SeverityWarning,
				Pos:      p,
				Err:      fmt.Errorf("annotation ignored: annotations are only allowed on top-level types, functions, variables, and constants or fields of top-level types"),
			})
		}
		return true
	})
}

func (c *Context) computeAnnotationsFromElement(file *ast.File, kind ElementKind, id *ast.Ident, doc *ast.CommentGroup, parent *AnnotatedElement, processed map[*ast.CommentGroup]struct{}) *AnnotatedElement {
	obj := c.Package.ObjectOf(id)
	if obj == nil {
		return nil
	}
	if ae, ok := c.byObject[obj]; ok {
		// already processed this one
		return ae
	}
	if doc != nil {
		processed[doc] = struct{}{}
	}
	annos := c.parseAnnotations(file, doc)
	return c.newElement(file, kind, id, obj, annos, parent)
}

func (c *Context) computeAnnotationsFromType(file *ast.File, spec *ast.TypeSpec, doc *ast.CommentGroup, processed map[*ast.CommentGroup]struct{}) {
	ae := c.computeAnnotationsFromElement(file, Types, spec.Name, doc, nil, processed)
	if ae == nil {
		return
	}
	strct, ok := spec.Type.(*ast.StructType)
	if !ok || strct.Fields == nil {
		return
	}
	for _, fld := range strct.Fields.List {
		names := fld.Names
		if names == nil {
			// anonymous/embedded field
			if id := embeddedIdent(fld.Type); id != nil {
				names = []*ast.Ident{id}
			}
		}
		for _, n := range names {
			c.computeAnnotationsFromElement(file, Fields, n, fld.Doc, ae, processed)
		}
	}
}

func embeddedIdent(expr ast.Expr) *ast.Ident {
	switch e := expr.(type) {
	case *ast.Ident:
		return e
	case *ast.StarExpr:
		return embeddedIdent(e.X)
	case *ast.SelectorExpr:
		return e.Sel
	case *ast.IndexExpr:
		return embeddedIdent(e.X)
	case *ast.IndexListExpr:
		return embeddedIdent(e.X)
	}
	return nil
}

func (c *Context) newElement(file *ast.File, kind ElementKind, id *ast.Ident, obj types.Object, annos []AnnotationMirror, p *AnnotatedElement) *AnnotatedElement {
	ae := &AnnotatedElement{
		Context:     c,
		Ident:       id,
		File:        file,
		Obj:         obj,
		Kind:        kind,
		Parent:      p,
		Annotations: annos,
	}
	c.byObject[obj] = ae
	c.allElements = append(c.allElements, ae)
	c.byKind[kind] = append(c.byKind[kind], ae)
	seen := map[annoType]bool{}
	for _, anno := range annos {
		at := anno.annoType()
		if !seen[at] {
			c.byAnnotation[at] = append(c.byAnnotation[at], ae)
			seen[at] = true
		}
	}
	if p != nil {
		p.Children = append(p.Children, ae)
	}
	return ae
}

func (c *Context) parseAnnotations(file *ast.File, doc *ast.CommentGroup) []AnnotationMirror {
	at := c.annotationText(doc)
	if at == nil {
		return nil
	}

	annos, err := parser.ParseAnnotations("", strings.NewReader(at.text.String()))
	if err != nil {
		c.Report(Diagnostic{
			Severity: SeverityError,
			Pos:      at.position(err.Pos()),
			Err:      err.Underlying(),
		})
		return nil
	}

	mirrors := make([]AnnotationMirror, len(annos))
	for i, a := range annos {
		mirrors[i] = AnnotationMirror{
			Type:        a.Type,
			PackagePath: c.resolvePackage(file, a.Type),
			Name:        a.Type.Name,
			Value:       a.Value,
			Pos:         at.position(a.Pos),
			src:         at,
		}
	}
	return mirrors
}

// resolvePackage determines the import path of the package that declares the
// given annotation type. Annotation types are matched by name only; they need
// not be declared in, or imported by, the processed package.
func (c *Context) resolvePackage(file *ast.File, id parser.Identifier) string {
	if id.PackageAlias == "" {
		if c.Package.Pkg.Scope().Lookup(id.Name) != nil {
			return c.Package.Pkg.Path()
		}
		for _, imp := range file.Imports {
			if imp.Name != nil && imp.Name.Name == "." {
				if p := c.importedPackage(imp); p != nil && p.Scope().Lookup(id.Name) != nil {
					return p.Path()
				}
			}
		}
		return ""
	}

	for _, imp := range file.Imports {
		if c.importName(imp) == id.PackageAlias {
			impPath, _ := strconv.Unquote(imp.Path.Value)
			return impPath
		}
	}
	if p, ok := c.defaults[id.PackageAlias]; ok {
		return p
	}
	return id.PackageAlias
}

// importName returns the name by which the given import is referenced in the
// importing file.
func (c *Context) importName(imp *ast.ImportSpec) string {
	if imp.Name != nil {
		return imp.Name.Name
	}
	if p := c.importedPackage(imp); p != nil {
		return p.Name()
	}
	impPath, _ := strconv.Unquote(imp.Path.Value)
	return impPath[strings.LastIndex(impPath, "/")+1:]
}

func (c *Context) importedPackage(imp *ast.ImportSpec) *types.Package {
	impPath, err := strconv.Unquote(imp.Path.Value)
	if err != nil {
		return nil
	}
	for _, p := range c.Package.Pkg.Imports() {
		if p.Path() == impPath {
			return p
		}
	}
	return nil
}

// annotationText is the annotation part of a doc comment: its lines from the
// first one that starts with '@', joined with newlines.
type annotationText struct {
	text  strings.Builder
	lines []lineStart
}

// lineStart maps the start of a line of annotationText to the source.
type lineStart struct {
	src token.Position
	out int
}

// position maps a position in the text back to the source.
func (t *annotationText) position(p scanner.Position) token.Position {
	if t == nil || len(t.lines) == 0 {
		return token.Position{}
	}
	i := p.Line - 1
	if i < 0 {
		i = 0
	} else if i >= len(t.lines) {
		i = len(t.lines) - 1
	}
	ls := t.lines[i]
	pos := ls.src
	pos.Column += p.Column - 1
	if p.Offset >= ls.out {
		pos.Offset += p.Offset - ls.out
	}
	return pos
}

// commentLines calls fn for every line of the given comments, with comment
// markers removed, and the source position where the line's text starts.
func (c *Context) commentLines(doc *ast.CommentGroup, fn func(line string, pos token.Position)) {
	for _, cmt := range doc.List {
		txt := cmt.Text[2:]
		if strings.HasPrefix(cmt.Text, "/*") {
			txt = strings.TrimSuffix(txt, "*/")
		}
		pos := c.Program.Fset.Position(cmt.Slash)
		pos.Offset += 2
		pos.Column += 2
		for _, line := range strings.Split(txt, "\n") {
			fn(line, pos)
			pos.Offset += len(line) + 1
			pos.Line++
			pos.Column = 1
		}
	}
}

func (c *Context) annotationText(doc *ast.CommentGroup) *annotationText {
	if doc == nil {
		return nil
	}
	var at *annotationText
	c.commentLines(doc, func(line string, pos token.Position) {
		if at == nil {
			if t := strings.TrimSpace(line); t == "" || t[0] != '@' {
				return
			}
			at = &annotationText{}
		}
		at.lines = append(at.lines, lineStart{src: pos, out: at.text.Len()})
		at.text.WriteString(line)
		at.text.WriteByte('\n')
	})
	return at
}

func hasAnnotations(doc *ast.CommentGroup) (token.Pos, bool) {
	if doc == nil {
		return 0, false
	}
	for _, l := range doc.List {
		txt := strings.TrimPrefix(strings.TrimPrefix(l.Text, "//"), "/*")
		for _, line := range strings.Split(txt, "\n") {
			trimmed := strings.TrimLeft(line, " \t*")
			if trimmed != "" && trimmed[0] == '@' {
				return l.Slash, true
			}
		}
	}
	return 0, false
}
