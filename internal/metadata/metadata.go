// Package metadata resolves the direct dependencies of installed packages.
//
// A Source answers one question: given a package name, which packages does
// it require directly. Three implementations exist, selected by config or
// the --source flag: "pip" shells out to `pip show`, "pypi" queries a
// package registry over HTTP, and "dist-info" reads installed *.dist-info
// metadata from a site-packages directory.
package metadata

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"

	"github.com/katsuya-horiuchi/pip-dependency-management/internal/manifest"
	"github.com/katsuya-horiuchi/pip-dependency-management/internal/pippath"
)

// Source kinds accepted by New.
const (
	SourcePip      = "pip"
	SourcePyPI     = "pypi"
	SourceDistInfo = "dist-info"
)

// ErrPackageUnknown reports that the metadata source has no record of the
// requested package. Callers degrade the package rather than abort.
var ErrPackageUnknown = errors.New("package not known to the metadata source")

// Source resolves direct dependencies by package name. Results are
// canonicalized, deduplicated and sorted.
type Source interface {
	// Name identifies the source kind for logs and progress messages.
	Name() string
	// DirectDependencies returns the packages name requires directly.
	// Unknown packages return an error wrapping ErrPackageUnknown.
	DirectDependencies(ctx context.Context, name string) ([]string, error)
}

// Options carries the configurable knobs shared by all source kinds. Each
// implementation reads the fields it needs and ignores the rest.
type Options struct {
	// PipCommand is the executable for the pip source, default "pip".
	PipCommand string
	// QueryTimeout bounds a single metadata lookup.
	QueryTimeout time.Duration
	// RegistryURL is the package index for the pypi source.
	RegistryURL string
	// SitePackages is the directory scanned by the dist-info source.
	SitePackages pippath.AbsoluteSystemPath
	// Version tags outbound requests.
	Version string
	Logger  hclog.Logger
}

// New constructs the Source named by kind.
func New(kind string, opts Options) (Source, error) {
	switch kind {
	case SourcePip:
		return newPipSource(opts), nil
	case SourcePyPI:
		return newPyPISource(opts)
	case SourceDistInfo:
		return newDistInfoSource(opts)
	default:
		return nil, errors.Errorf("unknown metadata source %q (expected %v, %v, or %v)", kind, SourcePip, SourcePyPI, SourceDistInfo)
	}
}

// requirementPattern matches the leading package name of a requirement
// specifier such as "requests (>=2.0) ; python_version >= \"3\"". Dots stay
// part of the name so namespaced distributions survive intact.
var requirementPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*`)

// requirementName extracts the package name from a requirement specifier,
// or "" when the specifier doesn't start with one.
func requirementName(spec string) string {
	return requirementPattern.FindString(strings.TrimSpace(spec))
}

// splitMarker separates a requirement specifier from its environment
// marker ("pytest ; extra == 'test'" -> "pytest", "extra == 'test'").
func splitMarker(entry string) (string, string) {
	parts := strings.SplitN(entry, ";", 2)
	if len(parts) == 1 {
		return strings.TrimSpace(parts[0]), ""
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}

// parseRequiresDist resolves Requires-Dist style entries to a normalized
// name list. Entries guarded by an extras marker are optional and skipped.
func parseRequiresDist(entries []string) []string {
	var names []string
	for _, entry := range entries {
		spec, marker := splitMarker(entry)
		if strings.Contains(marker, "extra ==") {
			continue
		}
		if name := requirementName(spec); name != "" {
			names = append(names, name)
		}
	}
	return normalize(names)
}

// normalize canonicalizes, deduplicates and sorts a name list. The result
// is never nil so callers can range and serialize it directly.
func normalize(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		canonical := manifest.Canonical(name)
		if canonical == "" {
			continue
		}
		seen[canonical] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
