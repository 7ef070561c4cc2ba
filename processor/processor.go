package processor

import (
	"fmt"
	goparser "go/parser"
	"go/types"
	"io"
	"log"
	"path"
	"sort"

	"golang.org/x/tools/go/loader"
)

// OutputFactory is a function that creates a writer to an output for the
// given location. The path is a Go import path followed by a file name, such
// as "github.com/foo/bar/baz_binding.go". Output factories typically use
// os.OpenFile to create files but this function allows the behavior to be
// customized.
type OutputFactory func(path string) (io.WriteCloser, error)

// Processor acts on annotations and is invoked from the annotation processor
// tool. Typical processor implementations generate code based on the
// annotations present in source.
type Processor interface {
	// SupportedAnnotationTypes returns the fully qualified names (package
	// import path, a dot, and the type name) of the annotations the processor
	// handles. The name "*" stands for all annotations.
	SupportedAnnotationTypes() []string

	// Process is invoked once per round, which is once per package. All
	// output must be written using the given factory. If the processor
	// returns true, it claims its supported annotations: processors that
	// come after it, and that support only claimed annotations, are not
	// invoked for the round.
	//
	// A non-nil error is reported as a diagnostic for the round; it does not
	// stop other processors or later rounds.
	Process(ctx *Context, output OutputFactory) (claimed bool, err error)
}

// ProcessAll invokes all registered Processor instances to process the given
// packages. If the given outputDir is blank, output files are written to the
// directory that contains the sources for their package.
func ProcessAll(pkgPaths []string, includeTest bool, outputDir string) (*Report, error) {
	return Process(pkgPaths, includeTest, outputDir, AllRegisteredProcessors()...)
}

// Process invokes the given processors to process the given packages.
func Process(pkgPaths []string, includeTest bool, outputDir string, procs ...Processor) (*Report, error) {
	importPkgs := map[string]bool{}
	for _, pkgPath := range pkgPaths {
		importPkgs[pkgPath] = includeTest
	}
	cfg := Config{
		ImportPkgs:    importPkgs,
		Processors:    procs,
		OutputFactory: DefaultOutputFactory(outputDir),
	}
	return cfg.Execute()
}

// Config represents the configuration for running one or more Processors.
// Callers should configure all of the exported fields and then call the
// Execute method to actually invoke the processors.
type Config struct {
	// ImportPkgs are the import paths of packages to process. The value
	// indicates whether the package's test files are also processed.
	ImportPkgs map[string]bool
	// CreatePkgs are packages, not necessarily importable, whose files are
	// given explicitly.
	CreatePkgs []loader.PkgSpec
	// Processors are invoked for every package, in order.
	Processors []Processor
	// OutputFactory creates output files. If nil, DefaultOutputFactory("")
	// is used.
	OutputFactory OutputFactory
	// Logger receives trace output from processors. If nil, trace output
	// is discarded.
	Logger *log.Logger
}

// Execute invokes the configured processors for the configured packages,
// writing outputs using the configured OutputFactory.
//
// Each package is processed in its own round. Problems found while processing
// (including processor errors and failures to write output) are recorded in
// the returned report and do not stop processing. An error is returned only
// if the packages cannot be loaded.
func (cfg *Config) Execute() (*Report, error) {
	conf := loader.Config{
		ParserMode:          goparser.ParseComments,
		TypeCheckFuncBodies: func(string) bool { return false },
		ImportPkgs:          cfg.ImportPkgs,
		CreatePkgs:          cfg.CreatePkgs,
	}
	prg, err := conf.Load()
	if err != nil {
		return nil, err
	}

	output := cfg.OutputFactory
	if output == nil {
		output = DefaultOutputFactory("")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	defaults := defaultAnnotationPackages(cfg.Processors)

	pkgs := prg.InitialPackages()
	sort.SliceStable(pkgs, func(i, j int) bool {
		return pkgs[i].Pkg.Path() < pkgs[j].Pkg.Path()
	})

	var report Report
	for i, pkgInfo := range pkgs {
		round := &Round{Number: i + 1, Package: pkgInfo.Pkg.Path()}
		ctx := newContext(pkgInfo, prg, round, logger, defaults)
		ctx.computeAllAnnotations()
		cfg.runRound(ctx, output)
		report.Rounds = append(report.Rounds, *round)
	}
	return &report, nil
}

func (cfg *Config) runRound(ctx *Context, output OutputFactory) {
	claimed := map[string]bool{}
	tracked := ctx.round.track(output)
	for _, proc := range cfg.Processors {
		supported := proc.SupportedAnnotationTypes()
		if allClaimed(supported, claimed) {
			ctx.Logf("%T skipped: annotations already claimed", proc)
			continue
		}
		c, err := proc.Process(ctx, tracked)
		if err != nil {
			ctx.Report(DiagnosticFor(SeverityError, fmt.Errorf("%T: %w", proc, err)))
			continue
		}
		if c {
			for _, t := range supported {
				claimed[t] = true
			}
		}
	}
}

func allClaimed(supported []string, claimed map[string]bool) bool {
	if len(supported) == 0 || len(claimed) == 0 {
		return false
	}
	if claimed["*"] {
		return true
	}
	for _, t := range supported {
		if !claimed[t] {
			return false
		}
	}
	return true
}

// defaultAnnotationPackages maps package names to the import paths of the
// packages that declare supported annotation types. It lets sources refer to
// an annotation by the default name of its package without importing it.
func defaultAnnotationPackages(procs []Processor) map[string]string {
	defaults := map[string]string{}
	for _, proc := range procs {
		for _, t := range proc.SupportedAnnotationTypes() {
			pkgPath, _ := SplitAnnotationType(t)
			if pkgPath == "" {
				continue
			}
			defaults[path.Base(pkgPath)] = pkgPath
		}
	}
	return defaults
}

// SplitAnnotationType splits a fully qualified annotation type name into its
// package import path and type name. The package path is empty if the name is
// not qualified.
func SplitAnnotationType(name string) (pkgPath, typeName string) {
	for i := len(name) - 1; i >= 0; i-- {
		switch name[i] {
		case '.':
			return name[:i], name[i+1:]
		case '/':
			return "", name
		}
	}
	return "", name
}

// Context represents the environment for an annotation processor. It represents
// a single package (for which the processors were invoked). It provides access
// to all annotations and annotated elements encountered in the package.
type Context struct {
	// Package holds all information about the package being processed. It
	// provides access to the ASTs of files in the package as well as the
	// results of type analysis, to allow for introspection of package elements.
	Package *loader.PackageInfo

	// Program holds information about an entire program being processed, which
	// includes any packages that are being processed as well as their
	// dependencies. This also provides access to the token.FileSet, which can
	// be used to resolve details for source code locations.
	Program *loader.Program

	round    *Round
	logger   *log.Logger
	defaults map[string]string

	allElements  []*AnnotatedElement
	byKind       map[ElementKind][]*AnnotatedElement
	byAnnotation map[annoType][]*AnnotatedElement
	byObject     map[types.Object]*AnnotatedElement
}

func newContext(pkg *loader.PackageInfo, prg *loader.Program, round *Round, logger *log.Logger, defaults map[string]string) *Context {
	return &Context{
		Package:      pkg,
		Program:      prg,
		round:        round,
		logger:       logger,
		defaults:     defaults,
		byKind:       map[ElementKind][]*AnnotatedElement{},
		byAnnotation: map[annoType][]*AnnotatedElement{},
		byObject:     map[types.Object]*AnnotatedElement{},
	}
}

// Round returns the number of the current round. Rounds are numbered from 1.
func (c *Context) Round() int {
	return c.round.Number
}

// Logf writes a trace line to the configured logger.
func (c *Context) Logf(format string, args ...interface{}) {
	c.logger.Printf(format, args...)
}

// Report records a diagnostic for the current round.
func (c *Context) Report(d Diagnostic) {
	c.round.Diagnostics = append(c.round.Diagnostics, d)
}

// NumElements returns the number of elements for the context's package. Every
// declared type, struct field of a declared type, function, method, variable,
// and constant at the top level of the package is an element, whether or not
// it has annotations.
func (c *Context) NumElements() int {
	return len(c.allElements)
}

// GetElement returns the element at the given index. The given index must be
// greater than or equal to zero and less than c.NumElements(). Elements are in
// source order: files in the order the package lists them, then declarations
// in the order they appear in each file, with a type's fields immediately
// following it.
func (c *Context) GetElement(index int) *AnnotatedElement {
	return c.allElements[index]
}

// ElementFor returns the element for the given object, or nil if the object
// is not an element of this package.
func (c *Context) ElementFor(obj types.Object) *AnnotatedElement {
	return c.byObject[obj]
}

// RootElements returns the named types declared at the top level of the
// package, in source order. Their fields are available as their children.
func (c *Context) RootElements() []*AnnotatedElement {
	return c.byKind[Types]
}

// ElementsOfKind returns a slice of elements of the given kind, in source
// order.
func (c *Context) ElementsOfKind(k ElementKind) []*AnnotatedElement {
	return c.byKind[k]
}

// ElementsAnnotatedWith returns a slice of elements, in source order, that
// have been annotated with the given annotation type.
func (c *Context) ElementsAnnotatedWith(packagePath, typeName string) []*AnnotatedElement {
	return c.byAnnotation[annoType{packagePath: packagePath, name: typeName}]
}
