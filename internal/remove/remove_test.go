package remove

import (
	"encoding/json"
	"testing"

	"github.com/mitchellh/cli"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/fs"

	"github.com/katsuya-horiuchi/pip-dependency-management/internal/cmdutil"
	"github.com/katsuya-horiuchi/pip-dependency-management/internal/pippath"
	"github.com/katsuya-horiuchi/pip-dependency-management/internal/removal"
)

const closureFixture = `{
    "click": [],
    "flask": ["click", "itsdangerous", "werkzeug"],
    "sphinx": ["click"]
}`

func testBase(t *testing.T, projectDir string) (*cmdutil.CmdBase, *cli.MockUi) {
	t.Helper()
	flags := pflag.NewFlagSet("test-flags", pflag.ContinueOnError)
	helper := cmdutil.NewHelper("test-version")
	helper.AddFlags(flags)
	helper.UserConfigPath = pippath.AbsoluteSystemPathFromUpstream(t.TempDir()).UntypedJoin("pipdeps", "config.json")
	assert.NilError(t, flags.Set("cwd", projectDir))
	base, err := helper.GetCmdBase(flags)
	assert.NilError(t, err)
	mockUI := &cli.MockUi{}
	base.UI = mockUI
	return base, mockUI
}

func TestDeleteReportsOrphans(t *testing.T) {
	project := fs.NewDir(t, "project", fs.WithFile("requirements.json", closureFixture))
	defer project.Remove()

	base, mockUI := testBase(t, project.Path())
	r := &remove{base}
	assert.NilError(t, r.run("flask", false))

	assert.Equal(t, mockUI.OutputWriter.String(),
		"Dependencies of `flask`: click, itsdangerous, werkzeug\n"+
			"No package has `flask` as dependency. You can delete it if you'd like.\n"+
			"Additionally, you can uninstall these packages: itsdangerous, werkzeug\n")
}

func TestDeleteLeafWithParents(t *testing.T) {
	project := fs.NewDir(t, "project", fs.WithFile("requirements.json", closureFixture))
	defer project.Remove()

	base, mockUI := testBase(t, project.Path())
	r := &remove{base}
	assert.NilError(t, r.run("click", false))

	assert.Equal(t, mockUI.OutputWriter.String(),
		"Package `click` doesn't have any dependency.\n"+
			"Package `click` is a dependency of these one(s): flask, sphinx\n")
}

func TestDeleteUnknownPackage(t *testing.T) {
	project := fs.NewDir(t, "project", fs.WithFile("requirements.json", closureFixture))
	defer project.Remove()

	base, mockUI := testBase(t, project.Path())
	r := &remove{base}
	err := r.run("numpy", false)

	exitErr := &cmdutil.Error{}
	assert.Assert(t, errors.As(err, &exitErr))
	assert.Equal(t, exitErr.ExitCode, 1)
	assert.Assert(t, errors.Is(err, removal.ErrUnknownPackage))
	assert.Equal(t, mockUI.ErrorWriter.String(),
		"Package `numpy` isn't in requirements.json. Make sure the file is up to date.\n")
}

func TestDeleteJSON(t *testing.T) {
	project := fs.NewDir(t, "project", fs.WithFile("requirements.json", closureFixture))
	defer project.Remove()

	base, mockUI := testBase(t, project.Path())
	r := &remove{base}
	assert.NilError(t, r.run("flask", true))

	var analysis removal.Analysis
	assert.NilError(t, json.Unmarshal(mockUI.OutputWriter.Bytes(), &analysis))
	assert.DeepEqual(t, analysis, removal.Analysis{
		Target:       "flask",
		Dependencies: []string{"click", "itsdangerous", "werkzeug"},
		Parents:      []string{},
		Orphans:      []string{"itsdangerous", "werkzeug"},
	})
}

func TestDeleteMissingClosureFile(t *testing.T) {
	project := fs.NewDir(t, "project")
	defer project.Remove()

	base, _ := testBase(t, project.Path())
	r := &remove{base}
	err := r.run("flask", false)
	assert.ErrorContains(t, err, "pipdeps configure")
}
