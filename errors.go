package viewbind

import "github.com/ygrebnov/errorc"

var namespace = errorc.Namespace("viewbind")

// Sentinel errors returned by Bind and BindGenerated. Use errors.Is to match;
// the returned errors carry structured fields (see the ErrorField* keys).
var (
	ErrNilHost         = namespace.NewError("nil host")
	ErrNotStructPtr    = namespace.NewError("host must be a non-nil pointer to a struct")
	ErrInvalidTag      = namespace.NewError("invalid bind tag")
	ErrFieldAccess     = namespace.NewError("cannot access field")
	ErrViewType        = namespace.NewError("view is not assignable to field")
	ErrBindingNotFound = namespace.NewError("no generated binding registered")
	ErrBindingFailed   = namespace.NewError("generated binding failed")
)

var newKey = errorc.KeyFactory("viewbind")

// Structured error field keys.
var (
	ErrorFieldHostType = newKey("type", "host")
	ErrorFieldField    = newKey("name", "field")
	ErrorFieldViewID   = newKey("view_id")
	ErrorFieldViewType = newKey("view_type")
	ErrorFieldTag      = newKey("tag")
	ErrorFieldBinding  = newKey("name", "binding")
	ErrorFieldCause    = newKey("cause")
)
