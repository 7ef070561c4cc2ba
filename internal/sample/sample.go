// Package sample declares hosts used to exercise both kinds of binding.
package sample

//go:generate viewbindgen github.com/zakli/viewbind/internal/sample

// View identifiers.
const (
	TitleID    = 101
	SubtitleID = 102
	FooterID   = 200
)

// TextView is a view that shows text.
type TextView struct {
	Text string
}

// ImageView is a view that shows an image.
type ImageView struct {
	Src string
}

// Views is a fixed set of views, keyed by identifier.
type Views map[int]interface{}

// FindViewByID returns the view with the given identifier, or nil.
func (v Views) FindViewByID(id int) interface{} {
	return v[id]
}

// MainActivity is bound by generated code.
type MainActivity struct {
	Views

	// @viewbind.BindView(101)
	title *TextView
	// @viewbind.BindView(SubtitleID)
	subtitle *TextView
	// @viewbind.BindView(FooterID + 1)
	footer interface{}

	unbound *TextView
}

// Title returns the bound title view.
func (a *MainActivity) Title() *TextView { return a.title }

// Subtitle returns the bound subtitle view.
func (a *MainActivity) Subtitle() *TextView { return a.subtitle }

// Footer returns the bound footer view.
func (a *MainActivity) Footer() interface{} { return a.footer }

// Unbound returns a field that no binding touches.
func (a *MainActivity) Unbound() *TextView { return a.unbound }

// DetailActivity is bound at runtime, using struct tags.
type DetailActivity struct {
	Views

	header *TextView  `bind:"101"`
	Banner *ImageView `bind:"300"`
	plain  *TextView
}

// Header returns the bound header view.
func (a *DetailActivity) Header() *TextView { return a.header }

// Plain returns a field that no binding touches.
func (a *DetailActivity) Plain() *TextView { return a.plain }

// Unannotated has no bindings at all.
type Unannotated struct {
	Views
	title *TextView
}

// Title returns the title field.
func (u *Unannotated) Title() *TextView { return u.title }
