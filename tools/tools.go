//go:build tools

// Package tools pins the versions of the linters run over this module.
package tools

import (
	_ "github.com/gordonklaus/ineffassign"
	_ "github.com/nishanths/predeclared"
	_ "honnef.co/go/tools/cmd/staticcheck"
)
