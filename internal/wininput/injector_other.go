//go:build !windows

package wininput

// NoopInjector is a placeholder injector for non-Windows builds.
type NoopInjector struct{}

// NewInjector returns a non-functional injector on non-Windows platforms.
func NewInjector() (Injector, error) {
	return &NoopInjector{}, ErrUnsupported
}

// MoveAbs returns ErrUnsupported.
func (n *NoopInjector) MoveAbs(int, int) error {
	return ErrUnsupported
}

// CursorPos reports no cursor.
func (n *NoopInjector) CursorPos() (int, int, bool) {
	return 0, 0, false
}
