// Package wininput moves the OS cursor.
package wininput

import "errors"

// ErrUnsupported indicates OS input injection is not available.
var ErrUnsupported = errors.New("wininput is only supported on Windows")

// Injector defines the cursor operations used by gaze following.
type Injector interface {
	MoveAbs(x, y int) error
	CursorPos() (x, y int, ok bool)
}
