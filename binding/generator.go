package binding

import (
	"fmt"
	"go/types"
	"path"

	"github.com/jhump/gopoet"

	"github.com/zakli/viewbind/processor"
)

var registerBinding = gopoet.NewPackage(bindViewPkg).Symbol("RegisterBinding")

// Generate returns the Go file that implements the given binding. The file
// declares the binding type, its constructor (which assigns one field of the
// host per statement, in the order of spec.Fields), and an init function that
// registers the constructor with viewbind.RegisterBinding, keyed by the
// host's pointer type, so that viewbind.BindGenerated can find it.
func Generate(spec Spec) *gopoet.GoFile {
	pkg := spec.Host.Pkg()
	file := gopoet.NewGoFile(spec.FileName(), pkg.Path(), pkg.Name())

	bindingType := gopoet.NewStructTypeSpec(spec.BindingName())
	bindingType.SetComment(fmt.Sprintf("%s binds the views of a %s. It is created by %s.",
		spec.BindingName(), spec.Host.Name(), spec.ConstructorName()))
	file.AddType(bindingType)

	hostType := gopoet.TypeNameForGoType(types.NewPointer(spec.Host.Type()))
	ctor := gopoet.NewFunc(spec.ConstructorName()).
		AddArg("host", hostType).
		AddResult("", bindingType.ToTypeName())
	ctor.SetComment(fmt.Sprintf("%s assigns the fields of host to the views that host.%s returns for them.",
		spec.ConstructorName(), LookupMethod))
	for _, f := range spec.Fields {
		ctor.Printf("host.%s", f.Field.Name())
		if f.Assert {
			ctor.Print(", _")
		}
		ctor.Printf(" = host.%s(", LookupMethod)
		if f.Const != nil {
			ctor.Printf("%s", f.Const)
		} else {
			ctor.Printf("%d", f.ViewID)
		}
		if f.Assert {
			ctor.Printlnf(").(%s)", f.Field.Type())
		} else {
			ctor.Println(")")
		}
	}
	ctor.Printlnf("return %s{}", spec.BindingName())
	file.AddElement(ctor)

	initFunc := gopoet.NewFunc("init")
	initFunc.Printlnf("%s((*%s)(nil), func(host interface{}) {", registerBinding, spec.Host.Name())
	initFunc.Printlnf("%s(host.(*%s))", spec.ConstructorName(), spec.Host.Name())
	initFunc.Println("})")
	file.AddElement(initFunc)

	return file
}

// write generates the file for the given spec and writes it using the given
// output factory. It returns the path of the file.
func write(spec Spec, output processor.OutputFactory) (string, error) {
	file := Generate(spec)
	p := path.Join(spec.Host.Pkg().Path(), file.Name)
	out, err := output(p)
	if err != nil {
		return p, err
	}
	err = gopoet.WriteGoFile(out, file)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return p, err
}
