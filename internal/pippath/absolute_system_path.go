package pippath

import (
	"io/ioutil"
	"os"
	"path/filepath"
)

// AbsoluteSystemPath is an absolute path using system separators.
type AbsoluteSystemPath string

// _dirPermissions are the default permission bits we apply to directories.
const _dirPermissions = os.ModeDir | 0775

// ToString returns a string representation of this path.
// Used for interfacing with APIs that require a string.
func (p AbsoluteSystemPath) ToString() string {
	return string(p)
}

// UntypedJoin appends relative path segments to this AbsoluteSystemPath.
// It does not constrain the type of the arguments, so it does not protect
// you from garbage in.
func (p AbsoluteSystemPath) UntypedJoin(args ...string) AbsoluteSystemPath {
	return AbsoluteSystemPath(filepath.Join(p.ToString(), filepath.Join(args...)))
}

// Dir implements filepath.Dir() for an AbsoluteSystemPath.
func (p AbsoluteSystemPath) Dir() AbsoluteSystemPath {
	return AbsoluteSystemPath(filepath.Dir(p.ToString()))
}

// Base implements filepath.Base for an absolute path.
func (p AbsoluteSystemPath) Base() string {
	return filepath.Base(p.ToString())
}

// Ext implements filepath.Ext(p) for an absolute path.
func (p AbsoluteSystemPath) Ext() string {
	return filepath.Ext(p.ToString())
}

// MkdirAll implements os.MkdirAll(p, perm).
func (p AbsoluteSystemPath) MkdirAll(perm os.FileMode) error {
	return os.MkdirAll(p.ToString(), perm)
}

// Open implements os.Open(p) for an AbsoluteSystemPath.
func (p AbsoluteSystemPath) Open() (*os.File, error) {
	return os.Open(p.ToString())
}

// Create is the AbsoluteSystemPath wrapper for os.Create.
func (p AbsoluteSystemPath) Create() (*os.File, error) {
	return os.Create(p.ToString())
}

// Lstat implements os.Lstat for an absolute path.
func (p AbsoluteSystemPath) Lstat() (os.FileInfo, error) {
	return os.Lstat(p.ToString())
}

// Exists returns true if the given path exists.
func (p AbsoluteSystemPath) Exists() bool {
	_, err := p.Lstat()
	return err == nil
}

// FileExists returns true if the given path exists and is a file.
func (p AbsoluteSystemPath) FileExists() bool {
	info, err := p.Lstat()
	return err == nil && !info.IsDir()
}

// DirExists returns true if the given path exists and is a directory.
func (p AbsoluteSystemPath) DirExists() bool {
	info, err := p.Lstat()
	return err == nil && info.IsDir()
}

// ReadFile reads the contents of the specified file.
func (p AbsoluteSystemPath) ReadFile() ([]byte, error) {
	return ioutil.ReadFile(p.ToString())
}

// WriteFile writes the contents of the specified file.
func (p AbsoluteSystemPath) WriteFile(contents []byte, mode os.FileMode) error {
	return ioutil.WriteFile(p.ToString(), contents, mode)
}

// EnsureDir ensures that the directory containing this file exists.
func (p AbsoluteSystemPath) EnsureDir() error {
	dir := p.Dir()
	err := os.MkdirAll(dir.ToString(), _dirPermissions)
	if err != nil && dir.FileExists() {
		// A file is occupying the directory's spot. Attempt to remove it and
		// retry once.
		if err2 := dir.Remove(); err2 == nil {
			err = os.MkdirAll(dir.ToString(), _dirPermissions)
		} else {
			return err
		}
	}
	return err
}

// Remove removes the file or (empty) directory at the given path.
func (p AbsoluteSystemPath) Remove() error {
	return os.Remove(p.ToString())
}
