// Package pippath teaches the Go type system about absolute paths on
// the host filesystem. Paths that have been checked, or that come from
// APIs guaranteed to produce absolute paths, are stamped with the
// AbsoluteSystemPath type so that path-handling mistakes surface at
// compile time instead of at runtime.
package pippath

import (
	"fmt"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

// AbsoluteSystemPathFromUpstream takes a path string and casts it to an
// AbsoluteSystemPath without checking. It exists to communicate intent
// when importing paths from APIs that are already known to produce
// absolute paths. If the input is not absolute it will result in
// downstream errors.
func AbsoluteSystemPathFromUpstream(path string) AbsoluteSystemPath {
	return AbsoluteSystemPath(path)
}

// CheckedToAbsoluteSystemPath verifies that the string is an absolute
// path before casting it.
func CheckedToAbsoluteSystemPath(s string) (AbsoluteSystemPath, error) {
	if filepath.IsAbs(s) {
		return AbsoluteSystemPath(s), nil
	}
	return "", fmt.Errorf("%v is not an absolute path", s)
}

// GetCwd returns the calling process's working directory.
func GetCwd() (AbsoluteSystemPath, error) {
	cwdRaw, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("invalid working directory: %w", err)
	}
	cwd, err := CheckedToAbsoluteSystemPath(cwdRaw)
	if err != nil {
		return "", fmt.Errorf("cwd is not an absolute path %v: %v", cwdRaw, err)
	}
	return cwd, nil
}

// ResolveUserPath turns a user-supplied path into an AbsoluteSystemPath,
// expanding a leading ~ to the user's home directory and resolving
// relative paths against base.
func ResolveUserPath(base AbsoluteSystemPath, input string) (AbsoluteSystemPath, error) {
	expanded, err := homedir.Expand(input)
	if err != nil {
		return "", errors.Wrapf(err, "expanding %v", input)
	}
	if filepath.IsAbs(expanded) {
		return AbsoluteSystemPath(expanded), nil
	}
	return base.UntypedJoin(expanded), nil
}
