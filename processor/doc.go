// Package processor contains the library used by code that processes
// annotations found in Go doc comments.
//
// This package defines an interface, Processor, which is implemented by things
// that can process annotations:
//
//    type Processor interface {
//        SupportedAnnotationTypes() []string
//        Process(ctx *Context, output OutputFactory) (claimed bool, err error)
//    }
//
// Processing generally generates code derived from the annotations. The
// OutputFactory passed to the processor is used to write that code. A
// processor should use the factory to create an output whose path includes
// both the Go import path and source file name. The factory can be used with
// the WriteGoFiles function in the github.com/jhump/gopoet package, making it
// easy to author Go source code from an annotation processor.
//
// Rounds
//
// Processors are invoked in rounds, one round per package. A round starts by
// parsing and type-checking the package, then extracting the annotations in
// the doc comments of its top-level declarations and of the fields of its
// top-level types. Each configured processor is then invoked, in order, with a
// Context for the package. Nothing is carried from one round to the next.
//
// A processor can claim the annotation types it supports by returning true.
// Processors later in the same round that only support claimed annotation
// types are skipped. A processor that returns false leaves the annotations
// available to the processors after it.
//
// Diagnostics
//
// Problems found during processing do not stop it. Malformed annotations,
// errors returned by processors, and problems that processors report through
// Context.Report are all recorded as diagnostics in the Report returned by
// Config.Execute. Validation errors should be constructed with
// NewErrorWithPosition so that they can report locations in the source code,
// to aid users in resolving the error.
//
// Processor Registration
//
// Processor implementations can be registered with this package using the
// RegisterProcessor function. All registered processors can later be queried
// with the AllRegisteredProcessors function. These can be used to create
// command-line tools that will run custom processors, such as viewbindgen.
//
// Processor Invocation
//
// The Config struct defines the packages that will be processed, the
// processors that will be invoked, and the output factory (which controls
// where generated output files are actually written). After a Config is
// constructed, its Execute method is used to actually invoke the configured
// processors.
//
// There are also some "shortcut" functions in this package: Process and
// ProcessAll. These functions create a Config using the arguments given and
// using "typical" values for other settings and then call the resulting
// config's Execute method. ProcessAll invokes all processors that have been
// registered with this package.
//
// Elements
//
// An AnnotatedElement is an element in Go source that may have annotations.
// It provides access to the Go program element via the corresponding
// types.Object as well as references to the element in the program AST. Its
// annotations are available as AnnotationMirror values, which identify the
// annotation type and carry its unevaluated value. Context.EvalInt evaluates
// a value as a constant integer.
//
// Annotation types are identified by package import path and name. The
// qualifier of an annotation is resolved using the imports of the file in
// which it appears. An annotation whose package is not imported may still be
// qualified with the default name of its package, as long as a configured
// processor supports an annotation type from that package.
package processor
