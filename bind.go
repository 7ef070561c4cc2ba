package viewbind

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unsafe"

	"github.com/ygrebnov/errorc"
)

// fieldBinding is one (field, view identifier) pair of a host type. A tag that
// could not be parsed is kept, with tagErr set, so that every call to Bind
// reports it.
type fieldBinding struct {
	index  int
	name   string
	id     int
	tag    string
	tagErr error
}

// plans caches the field bindings of each host struct type.
var plans sync.Map // reflect.Type -> []fieldBinding

// Bind assigns every field of host that has a "bind" struct tag, using the
// view that host.FindViewByID returns for the tag's identifier. The host must
// be a non-nil pointer to a struct. Unexported fields are assigned too.
//
// Only fields declared directly on the host's struct type are considered;
// fields promoted from embedded structs are not. A nil view assigns the
// field's zero value.
//
// A failure to bind one field does not stop the others from being bound.
// Every failure is logged, and all of them are joined into the returned
// error, so callers that do not care can ignore it.
func Bind(host Finder) error {
	elem, err := hostStruct(host)
	if err != nil {
		logf("%v", err)
		return err
	}

	var errs []error
	for _, fb := range planFor(elem.Type()) {
		if err := bindField(host, elem, fb); err != nil {
			logf("%v", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func hostStruct(host Finder) (reflect.Value, error) {
	if host == nil {
		return reflect.Value{}, ErrNilHost
	}
	v := reflect.ValueOf(host)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, errorc.With(ErrNotStructPtr,
			errorc.String(ErrorFieldHostType, v.Type().String()))
	}
	return v.Elem(), nil
}

func planFor(t reflect.Type) []fieldBinding {
	if p, ok := plans.Load(t); ok {
		return p.([]fieldBinding)
	}
	var plan []fieldBinding
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, ok := f.Tag.Lookup(TagName)
		if !ok {
			continue
		}
		fb := fieldBinding{index: i, name: f.Name, tag: tag}
		id, err := strconv.Atoi(strings.TrimSpace(tag))
		if err != nil {
			fb.tagErr = err
		} else {
			fb.id = id
		}
		plan = append(plan, fb)
	}
	p, _ := plans.LoadOrStore(t, plan)
	return p.([]fieldBinding)
}

func bindField(host Finder, elem reflect.Value, fb fieldBinding) error {
	hostType := elem.Type().String()
	if fb.tagErr != nil {
		return errorc.With(ErrInvalidTag,
			errorc.String(ErrorFieldHostType, hostType),
			errorc.String(ErrorFieldField, fb.name),
			errorc.String(ErrorFieldTag, fb.tag),
			errorc.String(ErrorFieldCause, fb.tagErr.Error()))
	}

	field, err := settable(elem.Field(fb.index))
	if err != nil {
		return errorc.With(ErrFieldAccess,
			errorc.String(ErrorFieldHostType, hostType),
			errorc.String(ErrorFieldField, fb.name),
			errorc.String(ErrorFieldCause, err.Error()))
	}

	view := host.FindViewByID(fb.id)
	if view == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}
	vv := reflect.ValueOf(view)
	if !vv.Type().AssignableTo(field.Type()) {
		return errorc.With(ErrViewType,
			errorc.String(ErrorFieldHostType, hostType),
			errorc.String(ErrorFieldField, fb.name),
			errorc.String(ErrorFieldViewID, strconv.Itoa(fb.id)),
			errorc.String(ErrorFieldViewType, vv.Type().String()))
	}
	field.Set(vv)
	return nil
}

// settable returns a settable view of the given struct field, bypassing the
// restriction on writing unexported fields.
func settable(field reflect.Value) (reflect.Value, error) {
	if field.CanSet() {
		return field, nil
	}
	if !field.CanAddr() {
		return reflect.Value{}, errors.New("field is not addressable")
	}
	return reflect.NewAt(field.Type(), unsafe.Pointer(field.UnsafeAddr())).Elem(), nil
}
