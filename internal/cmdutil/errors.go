package cmdutil

// Error carries an exit code for the process alongside the underlying
// error, so commands can signal "report failure to the shell" without
// calling os.Exit themselves.
type Error struct {
	ExitCode int
	Err      error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }
