package viewbind

// BindView is the compile-time binding annotation. It is never instantiated;
// it names the annotation that the viewbindgen processor looks for in doc
// comments of struct fields:
//
//    type MainActivity struct {
//        // @viewbind.BindView(101)
//        title *widget.TextView
//
//        // @viewbind.BindView(ids.Subtitle)
//        subtitle *widget.TextView
//    }
//
// The value is a constant integer expression: a literal, a reference to an
// integer constant (qualified by an import name when declared in another
// package), or arithmetic over those. It is handed, unchecked, to the host's
// FindViewByID method. Zero and negative values are not rejected.
//
// The annotation only lives in source. The generated code does not refer to
// it, so a host file does not need to import this package just to use it.
// For a binding that is resolved at runtime instead, see the "bind" struct tag
// used by Bind.
type BindView int

// BindViewAnnotation is the fully qualified name of the BindView annotation.
// It is the only annotation type supported by the binding processor.
const BindViewAnnotation = "github.com/zakli/viewbind.BindView"

// TagName is the struct tag key read by Bind. Its value is a base-10 view
// identifier:
//
//    type MainActivity struct {
//        title *widget.TextView `bind:"101"`
//    }
const TagName = "bind"

// BindingSuffix is appended to a host type's name to form the name of its
// generated binding type.
const BindingSuffix = "Binding"

// Finder is implemented by hosts: types whose fields are bound to views. It
// resolves a view identifier to a view. Unknown identifiers should yield nil.
type Finder interface {
	FindViewByID(id int) interface{}
}
