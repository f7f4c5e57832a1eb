//go:build !statsview
// +build !statsview

// Package statsview optionally serves live runtime statistics over HTTP
// when built with the statsview build constraint.
package statsview

import (
	"fmt"
	"io"
)

// Launch does nothing in builds without the statsview constraint.
func Launch(output io.Writer) {
	fmt.Fprintf(output, "statsview not included in this build\n")
}

// Available returns false; no statsview in this build.
func Available() bool {
	return false
}
