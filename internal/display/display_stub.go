//go:build !windows

package display

// List returns ErrUnsupported on non-Windows platforms.
func List() ([]Display, error) {
	return nil, ErrUnsupported
}
