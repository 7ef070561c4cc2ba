package main

import (
	"github.com/zakli/viewbind"
	"github.com/zakli/viewbind/internal/sample"
)

// LoginActivityBinding binds the views of a LoginActivity. It is created by NewLoginActivityBinding.
type LoginActivityBinding struct {
}

// NewLoginActivityBinding assigns the fields of host to the views that host.FindViewByID returns for them.
func NewLoginActivityBinding(host *LoginActivity) LoginActivityBinding {
	host.user, _ = host.FindViewByID(userID).(*sample.TextView)
	host.password, _ = host.FindViewByID(passwordID).(*sample.TextView)
	return LoginActivityBinding{}
}

func init() {
	viewbind.RegisterBinding((*LoginActivity)(nil), func(host interface{}) {
		NewLoginActivityBinding(host.(*LoginActivity))
	})
}
