package sample

import "github.com/zakli/viewbind"

// MainActivityBinding binds the views of a MainActivity. It is created by NewMainActivityBinding.
type MainActivityBinding struct {
}

// NewMainActivityBinding assigns the fields of host to the views that host.FindViewByID returns for them.
func NewMainActivityBinding(host *MainActivity) MainActivityBinding {
	host.title, _ = host.FindViewByID(101).(*TextView)
	host.subtitle, _ = host.FindViewByID(SubtitleID).(*TextView)
	host.footer = host.FindViewByID(201)
	return MainActivityBinding{}
}

func init() {
	viewbind.RegisterBinding((*MainActivity)(nil), func(host interface{}) {
		NewMainActivityBinding(host.(*MainActivity))
	})
}
