// Command loginapp is a host declared in a main package. Types in a main
// package report "main" as their package path at runtime, so its generated
// binding is only found because bindings are registered by type.
package main

//go:generate viewbindgen github.com/zakli/viewbind/internal/loginapp

import (
	"fmt"
	"os"

	"github.com/zakli/viewbind"
	"github.com/zakli/viewbind/internal/sample"
)

const (
	userID     = 1
	passwordID = 2
)

// LoginActivity is bound by generated code.
type LoginActivity struct {
	sample.Views

	// @viewbind.BindView(userID)
	user *sample.TextView
	// @viewbind.BindView(passwordID)
	password *sample.TextView
}

func newLoginActivity() *LoginActivity {
	return &LoginActivity{Views: sample.Views{
		userID:     &sample.TextView{Text: "user"},
		passwordID: &sample.TextView{Text: "********"},
	}}
}

func main() {
	a := newLoginActivity()
	if err := viewbind.BindGenerated(a); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(a.user.Text, a.password.Text)
}
