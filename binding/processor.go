package binding

import (
	"fmt"

	"github.com/zakli/viewbind"
	"github.com/zakli/viewbind/processor"
)

func init() {
	processor.RegisterProcessor(Processor{})
}

// Processor generates a binding for every type in a package that has fields
// annotated with @viewbind.BindView. It never claims the annotation, so other
// processors that support it still run.
type Processor struct{}

// SupportedAnnotationTypes implements processor.Processor.
func (Processor) SupportedAnnotationTypes() []string {
	return []string{viewbind.BindViewAnnotation}
}

// Process implements processor.Processor. Hosts that cannot be bound, and
// hosts whose file cannot be written, are reported as diagnostics. They do
// not prevent the other hosts of the package from being generated.
func (Processor) Process(ctx *processor.Context, output processor.OutputFactory) (bool, error) {
	ctx.Logf("round %d: processing %s with %d elements", ctx.Round(), ctx.Package.Pkg.Path(), ctx.NumElements())

	specs, diags := Specs(ctx)
	for _, d := range diags {
		ctx.Report(d)
	}
	for _, spec := range specs {
		if p, err := write(spec, output); err != nil {
			ctx.Report(processor.Diagnostic{
				Severity: processor.SeverityError,
				Pos:      ctx.ElementFor(spec.Host).Pos(),
				Err:      fmt.Errorf("could not write %s: %w", p, err),
			})
		}
	}
	return false, nil
}
