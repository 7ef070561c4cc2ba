package binding

import (
	"fmt"
	"go/token"
	"go/types"
	"strings"

	"github.com/zakli/viewbind"
	"github.com/zakli/viewbind/processor"
)

// LookupMethod is the name of the method that generated code calls on a host
// to resolve a view identifier.
const LookupMethod = "FindViewByID"

var bindViewPkg, bindViewName = processor.SplitAnnotationType(viewbind.BindViewAnnotation)

// Spec describes the binding generated for one host type: the host and, in
// declaration order, its fields annotated with @viewbind.BindView.
type Spec struct {
	Host   *types.TypeName
	Fields []FieldBinding
	// Lookup is the host's lookup method.
	Lookup *types.Func
}

// FieldBinding is one annotated field of a host.
type FieldBinding struct {
	Field *types.Var
	// ViewID is the evaluated value of the annotation.
	ViewID int64
	// Const is the constant that the annotation referred to, if its value
	// was nothing more than a reference to a constant that can be passed
	// to the lookup method as is.
	Const *types.Const
	// Assert is true if the result of the lookup method must be asserted to
	// the field's type.
	Assert bool
	Pos    token.Position
}

// BindingName returns the name of the generated binding type.
func (s Spec) BindingName() string {
	return s.Host.Name() + viewbind.BindingSuffix
}

// ConstructorName returns the name of the generated constructor, which
// performs the binding.
func (s Spec) ConstructorName() string {
	return "New" + s.BindingName()
}

// FileName returns the name of the generated file.
func (s Spec) FileName() string {
	return strings.ToLower(s.Host.Name()) + "_binding.go"
}

// Specs computes the binding specs for the package of the given context, one
// for each top-level type with at least one annotated field, in source order.
// Hosts that cannot be bound are left out; the returned diagnostics explain
// why.
func Specs(ctx *processor.Context) ([]Spec, []processor.Diagnostic) {
	var specs []Spec
	var diags []processor.Diagnostic

	for _, el := range ctx.ElementsAnnotatedWith(bindViewPkg, bindViewName) {
		if el.Kind != processor.Fields {
			for _, m := range el.FindAnnotations(bindViewPkg, bindViewName) {
				diags = append(diags, processor.Diagnostic{
					Severity: processor.SeverityWarning,
					Pos:      m.Pos,
					Err:      fmt.Errorf("@%v ignored: it can only be used on struct fields, not %s", m.Type, el.Kind),
				})
			}
		}
	}

	for _, host := range ctx.RootElements() {
		spec, ds, ok := hostSpec(ctx, host)
		diags = append(diags, ds...)
		if ok {
			specs = append(specs, spec)
		}
	}
	return specs, diags
}

func hostSpec(ctx *processor.Context, host *processor.AnnotatedElement) (Spec, []processor.Diagnostic, bool) {
	spec := Spec{Host: host.Obj.(*types.TypeName)}
	var diags []processor.Diagnostic
	fail := func(pos token.Position, format string, args ...interface{}) {
		diags = append(diags, processor.Diagnostic{
			Severity: processor.SeverityError,
			Pos:      pos,
			Err:      fmt.Errorf(format, args...),
		})
	}

	var annotated []*processor.AnnotatedElement
	for _, fld := range host.Children {
		annos := fld.FindAnnotations(bindViewPkg, bindViewName)
		switch {
		case len(annos) == 0:
			continue
		case len(annos) > 1:
			fail(annos[1].Pos, "@%v cannot be repeated on field %s", annos[1].Type, fld.Obj.Name())
			continue
		}
		annotated = append(annotated, fld)
	}
	if len(annotated) == 0 {
		return spec, diags, false
	}

	if spec.Host.IsAlias() {
		fail(host.Pos(), "%s cannot be bound: it is an alias", spec.Host.Name())
		return spec, diags, false
	}
	if named, ok := spec.Host.Type().(*types.Named); ok && named.TypeParams().Len() > 0 {
		fail(host.Pos(), "%s cannot be bound: generic types are not supported", spec.Host.Name())
		return spec, diags, false
	}
	lookup, param, result := lookupMethod(spec.Host)
	if lookup == nil {
		fail(host.Pos(), "%s cannot be bound: *%s has no method %s(int) with a single result", spec.Host.Name(), spec.Host.Name(), LookupMethod)
		return spec, diags, false
	}
	spec.Lookup = lookup

	for _, fld := range annotated {
		m := fld.FindAnnotations(bindViewPkg, bindViewName)[0]
		id, cnst, err := ctx.EvalInt(fld, m)
		if err != nil {
			d := processor.DiagnosticFor(processor.SeverityError, err)
			d.Err = fmt.Errorf("field %s: %w", fld.Obj.Name(), d.Err)
			diags = append(diags, d)
			continue
		}
		if cnst != nil && !types.AssignableTo(cnst.Type(), param) {
			cnst = nil
		}

		field := fld.Obj.(*types.Var)
		fb := FieldBinding{Field: field, ViewID: id, Const: cnst, Pos: fld.Pos()}
		switch {
		case types.AssignableTo(result, field.Type()):
		case types.IsInterface(result) && (types.IsInterface(field.Type()) || types.AssignableTo(field.Type(), result)):
			fb.Assert = true
			if instantiated(field.Type()) {
				fail(fld.Pos(), "field %s cannot be bound: type %s has type arguments and cannot be asserted to", field.Name(), field.Type())
				continue
			}
		default:
			fail(fld.Pos(), "field %s of type %s cannot hold a view of type %s", field.Name(), field.Type(), result)
			continue
		}
		spec.Fields = append(spec.Fields, fb)
	}

	if len(diags) > 0 {
		return spec, diags, false
	}
	return spec, nil, true
}

// lookupMethod finds the host's lookup method, which must accept a single
// integer and return a single result. It returns the method, its parameter
// type, and its result type.
func lookupMethod(host *types.TypeName) (*types.Func, types.Type, types.Type) {
	obj, _, _ := types.LookupFieldOrMethod(types.NewPointer(host.Type()), false, host.Pkg(), LookupMethod)
	fn, ok := obj.(*types.Func)
	if !ok {
		return nil, nil, nil
	}
	sig := fn.Type().(*types.Signature)
	if sig.Params().Len() != 1 || sig.Results().Len() != 1 || sig.Variadic() {
		return nil, nil, nil
	}
	param := sig.Params().At(0).Type()
	if b, ok := param.Underlying().(*types.Basic); !ok || b.Info()&types.IsInteger == 0 {
		return nil, nil, nil
	}
	return fn, param, sig.Results().At(0).Type()
}

// instantiated reports whether t refers to an instantiated generic type. The
// generated code cannot name such a type in a type assertion.
func instantiated(t types.Type) bool {
	switch t := t.(type) {
	case *types.Named:
		return t.TypeArgs().Len() > 0
	case *types.Pointer:
		return instantiated(t.Elem())
	case *types.Slice:
		return instantiated(t.Elem())
	case *types.Array:
		return instantiated(t.Elem())
	case *types.Chan:
		return instantiated(t.Elem())
	case *types.Map:
		return instantiated(t.Key()) || instantiated(t.Elem())
	case *types.Signature:
		return tupleInstantiated(t.Params()) || tupleInstantiated(t.Results())
	case *types.Struct:
		for i := 0; i < t.NumFields(); i++ {
			if instantiated(t.Field(i).Type()) {
				return true
			}
		}
	case *types.Interface:
		for i := 0; i < t.NumMethods(); i++ {
			if instantiated(t.Method(i).Type()) {
				return true
			}
		}
	}
	return false
}

func tupleInstantiated(tup *types.Tuple) bool {
	for i := 0; i < tup.Len(); i++ {
		if instantiated(tup.At(i).Type()) {
			return true
		}
	}
	return false
}
