//go:build !darwin && !linux

package native

// Library is unavailable on this platform.
type Library struct {
	path string
	fn   funcs
}

// Open always fails with ErrUnsupported.
func Open(path, prefix string) (*Library, error) {
	return nil, ErrUnsupported
}

// Close is a no-op.
func (l *Library) Close() error {
	return nil
}
