package util

// CloseAndIgnoreError is for the places where we deliberately do not care
// about an error on closing of a resource. It forces an explicit opt-in at
// the call site instead of a bare `_ = f.Close()` that a linter would flag.
func CloseAndIgnoreError(closer interface{ Close() error }) {
	_ = closer.Close()
}
