package viewbind

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/ygrebnov/errorc"
)

// BindingFunc is a generated binding constructor, adapted to accept any host.
// It panics if given a host of the wrong type.
type BindingFunc func(host interface{})

var (
	registryLock sync.RWMutex
	bindings     = map[reflect.Type]BindingFunc{}
)

// RegisterBinding registers the generated binding for the type of host, which
// is a pointer to the host type. Generated init functions pass a nil pointer:
//
//    viewbind.RegisterBinding((*MainActivity)(nil), func(host interface{}) { ... })
//
// Registering a binding for the same type twice panics, as that means two
// generated files claim the same host.
func RegisterBinding(host interface{}, fn BindingFunc) {
	t := reflect.TypeOf(host)
	if t == nil || t.Kind() != reflect.Ptr {
		panic(fmt.Sprintf("viewbind: binding must be registered for a pointer type, not %v", t))
	}
	if fn == nil {
		panic(fmt.Sprintf("viewbind: nil binding registered for %s", BindingName(t)))
	}
	registryLock.Lock()
	defer registryLock.Unlock()
	if _, ok := bindings[t]; ok {
		panic(fmt.Sprintf("viewbind: binding %s registered twice", BindingName(t)))
	}
	bindings[t] = fn
}

// RegisteredBindings returns the names, as computed by BindingName, of all
// registered bindings, sorted.
func RegisteredBindings() []string {
	registryLock.RLock()
	defer registryLock.RUnlock()
	names := make([]string, 0, len(bindings))
	for t := range bindings {
		names = append(names, BindingName(t))
	}
	sort.Strings(names)
	return names
}

func lookupBinding(t reflect.Type) (BindingFunc, bool) {
	registryLock.RLock()
	defer registryLock.RUnlock()
	fn, ok := bindings[t]
	return fn, ok
}

// BindingName returns the qualified name of the generated binding for the
// given host type: the host's package path and name, with BindingSuffix
// appended. A pointer type is replaced by its element type. The name is only
// descriptive; bindings are registered and found by type.
func BindingName(t reflect.Type) string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.PkgPath() + "." + t.Name() + BindingSuffix
}

// BindGenerated binds host using the binding that viewbindgen generated for
// its type. It has the same effect as Bind on the equivalent struct tags, but
// without inspecting the host at runtime.
//
// If there is no generated binding for the host's type, or the binding fails,
// the failure is logged and returned and the host is left as it was (or, for
// a binding that panics part way, partially bound). BindGenerated never
// panics.
func BindGenerated(host Finder) (err error) {
	if _, err := hostStruct(host); err != nil {
		logf("%v", err)
		return err
	}
	t := reflect.TypeOf(host)
	if t.Elem().Name() == "" {
		err := errorc.With(ErrNotStructPtr, errorc.String(ErrorFieldHostType, t.String()))
		logf("%v", err)
		return err
	}

	name := BindingName(t)
	fn, ok := lookupBinding(t)
	if !ok {
		err := errorc.With(ErrBindingNotFound,
			errorc.String(ErrorFieldHostType, t.String()),
			errorc.String(ErrorFieldBinding, name))
		logf("%v", err)
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			err = errorc.With(ErrBindingFailed,
				errorc.String(ErrorFieldHostType, t.String()),
				errorc.String(ErrorFieldBinding, name),
				errorc.String(ErrorFieldCause, fmt.Sprint(p)))
			logf("%v", err)
		}
	}()
	fn(host)
	return nil
}
