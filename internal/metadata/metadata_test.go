package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/fs"

	"github.com/katsuya-horiuchi/pip-dependency-management/internal/pippath"
)

func TestRequirementName(t *testing.T) {
	cases := []struct {
		spec string
		want string
	}{
		{"requests (>=2.0)", "requests"},
		{"ruamel.yaml.clib (>=0.1.2)", "ruamel.yaml.clib"},
		{"PySocks!=1.5.7", "PySocks"},
		{"  click >= 8.0 ", "click"},
		{"(garbage)", ""},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, requirementName(tc.spec), tc.want, "spec %q", tc.spec)
	}
}

func TestParseRequiresLine(t *testing.T) {
	output := `Name: Flask
Version: 2.0.1
Summary: A simple framework for building complex web applications.
Location: /usr/lib/python3/dist-packages
Requires: Werkzeug, Jinja2, itsdangerous, click
Required-by:
`
	deps, found := parseRequiresLine(output)
	assert.Assert(t, found)
	assert.DeepEqual(t, deps, []string{"click", "itsdangerous", "jinja2", "werkzeug"})
}

func TestParseRequiresLineLeaf(t *testing.T) {
	output := "Name: six\nVersion: 1.16.0\nRequires: \nRequired-by: pytest\n"
	deps, found := parseRequiresLine(output)
	assert.Assert(t, found)
	assert.DeepEqual(t, deps, []string{})
}

func TestParseRequiresLineAbsent(t *testing.T) {
	_, found := parseRequiresLine("WARNING: Package(s) not found: nope\n")
	assert.Assert(t, !found)
}

func TestParseRequiresDist(t *testing.T) {
	entries := []string{
		"Werkzeug (>=2.0)",
		"itsdangerous (>=2.0)",
		"pytest ; extra == 'test'",
		`colorama ; platform_system == "Windows"`,
		"Werkzeug",
	}
	assert.DeepEqual(t, parseRequiresDist(entries), []string{"colorama", "itsdangerous", "werkzeug"})
}

func TestParseCoreMetadata(t *testing.T) {
	metadata := `Metadata-Version: 2.1
Name: Flask
Version: 2.0.1
Requires-Dist: Werkzeug (>=2.0)
Requires-Dist: click (>=7.1.2)
Requires-Dist: python-dotenv ; extra == 'dotenv'

Flask is a lightweight WSGI framework.
Requires-Dist: not-a-real-header
`
	name, deps, err := parseCoreMetadata(strings.NewReader(metadata))
	assert.NilError(t, err)
	assert.Equal(t, name, "flask")
	assert.DeepEqual(t, deps, []string{"click", "werkzeug"})
}

func TestNewRejectsUnknownKind(t *testing.T) {
	_, err := New("conda", Options{})
	assert.ErrorContains(t, err, "unknown metadata source")
}

func TestNewRejectsBadRegistryURL(t *testing.T) {
	_, err := New(SourcePyPI, Options{RegistryURL: "://not-a-url"})
	assert.ErrorContains(t, err, "invalid registry URL")
}

func TestDistInfoSource(t *testing.T) {
	d := fs.NewDir(t, "site-packages",
		fs.WithDir("flask-2.0.1.dist-info",
			fs.WithFile("METADATA", "Name: Flask\nRequires-Dist: Werkzeug (>=2.0)\nRequires-Dist: click (>=7.1.2)\n\ndescription\n")),
		fs.WithDir("click-8.0.1.dist-info",
			fs.WithFile("METADATA", "Name: click\n\ndescription\n")),
		fs.WithDir("flask", fs.WithFile("__init__.py", "")),
		fs.WithFile("six.py", ""),
	)
	defer d.Remove()

	source, err := New(SourceDistInfo, Options{
		SitePackages: pippath.AbsoluteSystemPathFromUpstream(d.Path()),
		Logger:       hclog.NewNullLogger(),
	})
	assert.NilError(t, err)
	assert.Equal(t, source.Name(), SourceDistInfo)

	ctx := context.Background()
	deps, err := source.DirectDependencies(ctx, "Flask")
	assert.NilError(t, err)
	assert.DeepEqual(t, deps, []string{"click", "werkzeug"})

	deps, err = source.DirectDependencies(ctx, "click")
	assert.NilError(t, err)
	assert.DeepEqual(t, deps, []string{})

	_, err = source.DirectDependencies(ctx, "nope")
	assert.Assert(t, errors.Is(err, ErrPackageUnknown))
}

func TestDistInfoSourceNeedsSitePackages(t *testing.T) {
	_, err := New(SourceDistInfo, Options{})
	assert.ErrorContains(t, err, "site-packages")
}

func TestPyPISource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pypi/flask/json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"info":{"requires_dist":["Werkzeug (>=2.0)","pytest ; extra == 'test'"]}}`))
	}))
	defer server.Close()

	source, err := New(SourcePyPI, Options{
		RegistryURL:  server.URL,
		QueryTimeout: 5 * time.Second,
		Logger:       hclog.NewNullLogger(),
		Version:      "test",
	})
	assert.NilError(t, err)

	ctx := context.Background()
	deps, err := source.DirectDependencies(ctx, "flask")
	assert.NilError(t, err)
	assert.DeepEqual(t, deps, []string{"werkzeug"})

	_, err = source.DirectDependencies(ctx, "nope")
	assert.Assert(t, errors.Is(err, ErrPackageUnknown))
}
