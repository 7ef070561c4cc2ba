package binding

import (
	"bytes"
	"errors"
	"fmt"
	"go/ast"
	goparser "go/parser"
	"go/token"
	"go/types"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/go/loader"

	"github.com/zakli/viewbind/processor"
)

const appPkg = "example.com/app"

type memFile struct {
	bytes.Buffer
}

func (*memFile) Close() error {
	return nil
}

type memOutputs map[string]*memFile

func (m memOutputs) factory(p string) (io.WriteCloser, error) {
	f := &memFile{}
	m[p] = f
	return f, nil
}

type countingProcessor struct {
	calls int
}

func (*countingProcessor) SupportedAnnotationTypes() []string {
	return []string{"github.com/zakli/viewbind.BindView"}
}

func (p *countingProcessor) Process(*processor.Context, processor.OutputFactory) (bool, error) {
	p.calls++
	return false, nil
}

// run processes src as package example.com/app. The given config supplies
// everything but the package.
func run(t *testing.T, src string, cfg processor.Config) *processor.Report {
	t.Helper()
	fn := filepath.Join(t.TempDir(), "app.go")
	if err := os.WriteFile(fn, []byte(src), 0644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}
	cfg.CreatePkgs = []loader.PkgSpec{{Path: appPkg, Filenames: []string{fn}}}
	if cfg.Processors == nil {
		cfg.Processors = []processor.Processor{Processor{}}
	}
	report, err := cfg.Execute()
	if err != nil {
		t.Fatalf("failed to execute: %v", err)
	}
	return report
}

// viewbindStub declares the parts of package viewbind that generated code uses.
const viewbindStub = `package viewbind

type BindingFunc func(host interface{})

func RegisterBinding(host interface{}, fn BindingFunc) {}
`

type importerFunc func(path string) (*types.Package, error)

func (f importerFunc) Import(path string) (*types.Package, error) {
	return f(path)
}

// typeCheck type-checks the generated file together with the source it was
// generated from.
func typeCheck(t *testing.T, pkgPath, src, generated string) {
	t.Helper()
	fset := token.NewFileSet()
	parse := func(name, text string) *ast.File {
		f, err := goparser.ParseFile(fset, name, text, 0)
		if err != nil {
			t.Fatalf("failed to parse %s: %v\n%s", name, err, text)
		}
		return f
	}
	stub, err := (&types.Config{}).Check(bindViewPkg, fset, []*ast.File{parse("viewbind.go", viewbindStub)}, nil)
	if err != nil {
		t.Fatalf("failed to check viewbind stub: %v", err)
	}
	conf := types.Config{Importer: importerFunc(func(path string) (*types.Package, error) {
		if path == bindViewPkg {
			return stub, nil
		}
		return nil, fmt.Errorf("unexpected import %q", path)
	})}
	files := []*ast.File{parse("app.go", src), parse("generated.go", generated)}
	if _, err := conf.Check(pkgPath, fset, files, nil); err != nil {
		t.Fatalf("generated code does not compile: %v\n%s", err, generated)
	}
}

const sampleSource = `package app

const SubtitleID = 102

type TextView struct {
	Text string
}

type Views map[int]interface{}

func (v Views) FindViewByID(id int) interface{} {
	return v[id]
}

type Sample struct {
	Views

	// @viewbind.BindView(101)
	title *TextView
	// @viewbind.BindView(SubtitleID)
	subtitle *TextView
	// @viewbind.BindView(SubtitleID * 2)
	footer interface{}

	plain *TextView
}

type Plain struct {
	Views
	title *TextView
}
`

func TestProcess(t *testing.T) {
	outputs := memOutputs{}
	report := run(t, sampleSource, processor.Config{OutputFactory: outputs.factory})
	if ds := report.Diagnostics(processor.SeverityWarning); len(ds) != 0 {
		t.Fatalf("unexpected diagnostics: %v", ds)
	}
	path := appPkg + "/sample_binding.go"
	if got := report.Outputs(); len(got) != 1 || got[0] != path {
		t.Fatalf("wrong outputs: %v", got)
	}
	if len(outputs) != 1 {
		t.Fatalf("expecting only one file to be created; got %d", len(outputs))
	}
	src := outputs[path].String()
	typeCheck(t, appPkg, sampleSource, src)

	file, err := goparser.ParseFile(token.NewFileSet(), "sample_binding.go", src, 0)
	if err != nil {
		t.Fatalf("generated code does not parse: %v\n%s", err, src)
	}
	if file.Name.Name != "app" {
		t.Fatalf("wrong package name: %s", file.Name.Name)
	}
	var ctor *ast.FuncDecl
	for _, decl := range file.Decls {
		if fd, ok := decl.(*ast.FuncDecl); ok && fd.Name.Name == "NewSampleBinding" {
			ctor = fd
		}
	}
	if ctor == nil {
		t.Fatalf("constructor not generated:\n%s", src)
	}
	// one statement per annotated field, and the return
	if len(ctor.Body.List) != 4 {
		t.Fatalf("expecting 4 statements in constructor; got %d:\n%s", len(ctor.Body.List), src)
	}

	expected := []string{
		"type SampleBinding struct",
		"func NewSampleBinding(host *Sample) SampleBinding {",
		"host.title, _ = host.FindViewByID(101).(*TextView)",
		"host.subtitle, _ = host.FindViewByID(SubtitleID).(*TextView)",
		"host.footer = host.FindViewByID(204)",
		"return SampleBinding{}",
		"viewbind.RegisterBinding((*Sample)(nil), func(host interface{}) {",
		"NewSampleBinding(host.(*Sample))",
	}
	last := -1
	for _, e := range expected {
		i := strings.Index(src, e)
		if i < 0 {
			t.Fatalf("expecting generated code to contain %q:\n%s", e, src)
		}
		if i < last {
			t.Fatalf("%q is out of order:\n%s", e, src)
		}
		last = i
	}
	if !strings.Contains(src, `"github.com/zakli/viewbind"`) {
		t.Fatalf("expecting generated code to import viewbind:\n%s", src)
	}
	if strings.Contains(src, "plain") {
		t.Fatalf("unannotated field should not be bound:\n%s", src)
	}
}

func TestProcess_RoundTrip(t *testing.T) {
	const src = `package app

type Views map[int]interface{}

func (v Views) FindViewByID(id int) interface{} {
	return v[id]
}

type Sample struct {
	Views
	// @viewbind.BindView(101)
	title interface{}
	// @viewbind.BindView(102)
	subtitle interface{}
}
`
	outputs := memOutputs{}
	run(t, src, processor.Config{OutputFactory: outputs.factory})
	f := outputs[appPkg+"/sample_binding.go"]
	if f == nil {
		t.Fatalf("expecting sample_binding.go; got %v", outputs)
	}
	typeCheck(t, appPkg, src, f.String())
	file, err := goparser.ParseFile(token.NewFileSet(), "sample_binding.go", f.String(), 0)
	if err != nil {
		t.Fatalf("generated code does not parse: %v", err)
	}
	var assigns []string
	for _, decl := range file.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Name.Name != "NewSampleBinding" {
			continue
		}
		for _, stmt := range fd.Body.List {
			if as, ok := stmt.(*ast.AssignStmt); ok {
				sel := as.Lhs[0].(*ast.SelectorExpr)
				call := as.Rhs[0].(*ast.CallExpr)
				assigns = append(assigns, sel.Sel.Name+"="+call.Args[0].(*ast.BasicLit).Value)
			}
		}
	}
	if got := strings.Join(assigns, " "); got != "title=101 subtitle=102" {
		t.Fatalf("wrong assignments: %s\n%s", got, f.String())
	}
}

func TestProcess_Deterministic(t *testing.T) {
	first, second := memOutputs{}, memOutputs{}
	run(t, sampleSource, processor.Config{OutputFactory: first.factory})
	run(t, sampleSource, processor.Config{OutputFactory: second.factory})
	path := appPkg + "/sample_binding.go"
	if first[path] == nil || second[path] == nil {
		t.Fatalf("expecting %s to be generated", path)
	}
	if !bytes.Equal(first[path].Bytes(), second[path].Bytes()) {
		t.Fatalf("output differs between runs:\n%s\n---\n%s", first[path], second[path])
	}
}

func TestProcess_NothingAnnotated(t *testing.T) {
	const src = `package app

type Views map[int]interface{}

func (v Views) FindViewByID(id int) interface{} {
	return v[id]
}

type Plain struct {
	Views
	title interface{}
}
`
	outputs := memOutputs{}
	next := &countingProcessor{}
	report := run(t, src, processor.Config{
		OutputFactory: outputs.factory,
		Processors:    []processor.Processor{Processor{}, next},
	})
	if len(outputs) != 0 || len(report.Outputs()) != 0 {
		t.Fatalf("expecting no outputs; got %v", report.Outputs())
	}
	if ds := report.Diagnostics(processor.SeverityInfo); len(ds) != 0 {
		t.Fatalf("unexpected diagnostics: %v", ds)
	}
	if next.calls != 1 {
		t.Fatalf("annotation should not be claimed; next processor called %d times", next.calls)
	}
}

func TestProcess_NotClaimed(t *testing.T) {
	next := &countingProcessor{}
	run(t, sampleSource, processor.Config{
		OutputFactory: memOutputs{}.factory,
		Processors:    []processor.Processor{Processor{}, next},
	})
	if next.calls != 1 {
		t.Fatalf("annotation should not be claimed; next processor called %d times", next.calls)
	}
}

const twoHostsSource = `package app

type Views map[int]interface{}

func (v Views) FindViewByID(id int) interface{} {
	return v[id]
}

type First struct {
	Views
	// @viewbind.BindView(1)
	view interface{}
}

type Second struct {
	Views
	// @viewbind.BindView(2)
	view interface{}
}
`

func TestProcess_WriteFailure(t *testing.T) {
	outputs := memOutputs{}
	factory := func(p string) (io.WriteCloser, error) {
		if strings.HasSuffix(p, "/first_binding.go") {
			return nil, errors.New("disk full")
		}
		return outputs.factory(p)
	}
	report := run(t, twoHostsSource, processor.Config{OutputFactory: factory})

	errs := report.Diagnostics(processor.SeverityError)
	if len(errs) != 1 {
		t.Fatalf("expecting one error; got %v", errs)
	}
	if msg := errs[0].Err.Error(); !strings.Contains(msg, "first_binding.go") || !strings.Contains(msg, "disk full") {
		t.Fatalf("wrong error: %s", msg)
	}
	if errs[0].Pos.Line != 9 {
		t.Fatalf("expecting error at the First host; got %v", errs[0].Pos)
	}
	if got := report.Outputs(); len(got) != 1 || got[0] != appPkg+"/second_binding.go" {
		t.Fatalf("expecting the second host to be generated; got %v", got)
	}
}

const invalidSource = `package app

type TextView struct{}

type ImageView struct{}

type Finder struct{}

func (Finder) FindViewByID(id int) *TextView {
	return nil
}

// NoLookup has no FindViewByID method.
type NoLookup struct {
	// @viewbind.BindView(1)
	view interface{}
}

type Mismatch struct {
	Finder
	// @viewbind.BindView(1)
	image *ImageView
}

type Repeated struct {
	Finder
	// @viewbind.BindView(1)
	// @viewbind.BindView(2)
	view *TextView
}

type BadValue struct {
	Finder
	// @viewbind.BindView(Missing)
	view *TextView
}

type Valid struct {
	Finder
	// @viewbind.BindView(3)
	view *TextView
}

// @viewbind.BindView(4)
func Misplaced() {}
`

func TestProcess_Invalid(t *testing.T) {
	outputs := memOutputs{}
	report := run(t, invalidSource, processor.Config{OutputFactory: outputs.factory})

	errs := report.Diagnostics(processor.SeverityError)
	want := []string{
		"*NoLookup has no method FindViewByID",
		"field image of type *example.com/app.ImageView cannot hold a view of type *example.com/app.TextView",
		"cannot be repeated on field view",
		"field view: symbol Missing does not exist",
	}
	if len(errs) != len(want) {
		t.Fatalf("expecting %d errors; got %v", len(want), errs)
	}
	for _, w := range want {
		found := false
		for _, d := range errs {
			if strings.Contains(d.Err.Error(), w) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expecting an error containing %q; got %v", w, errs)
		}
	}

	var warnings []processor.Diagnostic
	for _, d := range report.Diagnostics(processor.SeverityWarning) {
		if d.Severity == processor.SeverityWarning {
			warnings = append(warnings, d)
		}
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0].Err.Error(), "can only be used on struct fields") {
		t.Fatalf("expecting a warning for the misplaced annotation; got %v", warnings)
	}

	if got := report.Outputs(); len(got) != 1 || got[0] != appPkg+"/valid_binding.go" {
		t.Fatalf("expecting only the valid host to be generated; got %v", got)
	}
	if src := outputs[appPkg+"/valid_binding.go"].String(); !strings.Contains(src, "host.view = host.FindViewByID(3)") {
		t.Fatalf("wrong generated code:\n%s", src)
	}
}

func TestProcess_Logging(t *testing.T) {
	var buf bytes.Buffer
	run(t, sampleSource, processor.Config{
		OutputFactory: memOutputs{}.factory,
		Logger:        log.New(&buf, "", 0),
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expecting 1 line of trace output; got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "round 1: processing example.com/app") {
		t.Fatalf("wrong trace output: %q", lines[0])
	}
}

const mainSource = `package main

type Views map[int]interface{}

func (v Views) FindViewByID(id int) interface{} {
	return v[id]
}

type TextView struct{}

type MainActivity struct {
	Views
	// @viewbind.BindView(101)
	title *TextView
}

func main() {}
`

func TestProcess_MainPackage(t *testing.T) {
	outputs := memOutputs{}
	report := run(t, mainSource, processor.Config{OutputFactory: outputs.factory})
	if ds := report.Diagnostics(processor.SeverityWarning); len(ds) != 0 {
		t.Fatalf("unexpected diagnostics: %v", ds)
	}
	f := outputs[appPkg+"/mainactivity_binding.go"]
	if f == nil {
		t.Fatalf("expecting mainactivity_binding.go; got %v", report.Outputs())
	}
	src := f.String()
	typeCheck(t, appPkg, mainSource, src)
	// registered by type: a main package's types report "main" as their
	// package path at runtime, not the path the package was loaded with
	if !strings.Contains(src, "viewbind.RegisterBinding((*MainActivity)(nil), func(host interface{}) {") {
		t.Fatalf("binding should be registered for the host type:\n%s", src)
	}
	if strings.Contains(src, appPkg) {
		t.Fatalf("binding should not depend on the package path:\n%s", src)
	}
}

const genericSource = `package app

type Box[T any] struct {
	V T
}

type Views map[int]interface{}

func (v Views) FindViewByID(id int) interface{} {
	return v[id]
}

type Boxes map[int]*Box[int]

func (b Boxes) FindViewByID(id int) *Box[int] {
	return b[id]
}

type Asserted struct {
	Views
	// @viewbind.BindView(7)
	box *Box[int]
	// @viewbind.BindView(8)
	boxes []Box[string]
}

type Direct struct {
	Boxes
	// @viewbind.BindView(7)
	box *Box[int]
}
`

func TestProcess_GenericFieldTypes(t *testing.T) {
	outputs := memOutputs{}
	report := run(t, genericSource, processor.Config{OutputFactory: outputs.factory})

	errs := report.Diagnostics(processor.SeverityError)
	if len(errs) != 2 {
		t.Fatalf("expecting 2 errors; got %v", errs)
	}
	for i, name := range []string{"box", "boxes"} {
		if msg := errs[i].Err.Error(); !strings.Contains(msg, "field "+name+" cannot be bound") || !strings.Contains(msg, "type arguments") {
			t.Fatalf("wrong error for %s: %s", name, msg)
		}
	}
	if errs[0].Pos.Line != 22 || errs[1].Pos.Line != 24 {
		t.Fatalf("wrong error positions: %v, %v", errs[0].Pos, errs[1].Pos)
	}

	// no assertion is needed when the lookup already returns the field's type
	path := appPkg + "/direct_binding.go"
	if got := report.Outputs(); len(got) != 1 || got[0] != path {
		t.Fatalf("expecting only the direct host to be generated; got %v", got)
	}
	src := outputs[path].String()
	if !strings.Contains(src, "host.box = host.FindViewByID(7)") {
		t.Fatalf("wrong generated code:\n%s", src)
	}
	typeCheck(t, appPkg, genericSource, src)
}
