// Package binding contains the annotation processor that generates view
// bindings. Importing it, even with a blank import, registers the processor
// with the processor package:
//
//    import _ "github.com/zakli/viewbind/binding"
//
// For each type in a package with at least one field annotated with
// @viewbind.BindView, the processor writes a file named after the type,
// lowercased, with a "_binding.go" suffix. Given this host:
//
//    type MainActivity struct {
//        // @viewbind.BindView(101)
//        title View
//        // @viewbind.BindView(102)
//        subtitle View
//    }
//
//    func (a *MainActivity) FindViewByID(id int) View { ... }
//
// the generated mainactivity_binding.go contains the following:
//
//    type MainActivityBinding struct{}
//
//    func NewMainActivityBinding(host *MainActivity) MainActivityBinding {
//        host.title = host.FindViewByID(101)
//        host.subtitle = host.FindViewByID(102)
//        return MainActivityBinding{}
//    }
//
//    func init() {
//        viewbind.RegisterBinding((*MainActivity)(nil), func(host interface{}) {
//            NewMainActivityBinding(host.(*MainActivity))
//        })
//    }
//
// When the result of FindViewByID is an interface that the field's type does
// not match, the generated statement uses a type assertion that leaves the
// field at its zero value if the view has another type.
package binding
