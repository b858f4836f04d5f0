// Package clipboard provides utilities for working with the system clipboard
package clipboard

import (
	"errors"

	"github.com/atotto/clipboard"
)

// ErrUnsupported indicates that no clipboard utility is installed
var ErrUnsupported = errors.New("clipboard not supported on this system")

// Available reports whether the system clipboard can be used
func Available() bool {
	return !clipboard.Unsupported
}

// SetText puts text into the system clipboard
func SetText(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	return clipboard.WriteAll(text)
}
