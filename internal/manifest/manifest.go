// Package manifest reads pip requirements files and produces the set of
// explicitly pinned packages (the roots of the dependency closure).
package manifest

import (
	"bufio"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/katsuya-horiuchi/pip-dependency-management/internal/pippath"
	"github.com/katsuya-horiuchi/pip-dependency-management/internal/util"
)

// Canonical normalizes a package name: lowercased with surrounding
// whitespace removed. Every boundary (manifest entries, metadata results,
// CLI arguments) applies it so that uniqueness is by canonical form.
func Canonical(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Entry is a single pinned package from a requirements file.
type Entry struct {
	Name    string
	Version string
}

// Manifest is the parsed requirements file. Entries are kept in file order
// with duplicate names collapsed to the first occurrence.
type Manifest struct {
	entries  []Entry
	versions map[string]string
}

// Len returns the number of distinct pinned packages.
func (m *Manifest) Len() int {
	return len(m.entries)
}

// Roots returns the canonical package names in lexicographic order.
func (m *Manifest) Roots() []string {
	roots := make([]string, 0, len(m.entries))
	for _, entry := range m.entries {
		roots = append(roots, entry.Name)
	}
	sort.Strings(roots)
	return roots
}

// Version reports the pinned version for a canonical name.
func (m *Manifest) Version(name string) (string, bool) {
	version, ok := m.versions[Canonical(name)]
	return version, ok
}

// Parse reads a requirements listing. Only `name==version` lines count:
// anything without exactly one `==`, with a `#` in the name half, or with an
// empty version is skipped. Names are canonicalized and the first pin wins
// when a name repeats.
func Parse(reader io.Reader) (*Manifest, error) {
	m := &Manifest{versions: make(map[string]string)}
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, "==")
		if len(parts) != 2 || strings.Contains(parts[0], "#") {
			continue
		}
		name := Canonical(parts[0])
		version := strings.TrimSpace(parts[1])
		if name == "" || version == "" {
			continue
		}
		if _, ok := m.versions[name]; ok {
			continue
		}
		m.versions[name] = version
		m.entries = append(m.entries, Entry{Name: name, Version: version})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading requirements")
	}
	return m, nil
}

// ReadRequirements parses the requirements file at path. A missing file is
// an error naming the file.
func ReadRequirements(path pippath.AbsoluteSystemPath) (*Manifest, error) {
	file, err := path.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "Not found: `%v`", path)
	}
	defer util.CloseAndIgnoreError(file)
	return Parse(file)
}
