package configure

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/mitchellh/cli"
	"github.com/spf13/pflag"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/fs"

	"github.com/katsuya-horiuchi/pip-dependency-management/internal/closure"
	"github.com/katsuya-horiuchi/pip-dependency-management/internal/cmdutil"
	"github.com/katsuya-horiuchi/pip-dependency-management/internal/pippath"
)

// testBase builds a CmdBase wired to the dist-info source so tests never
// shell out to pip or touch the network.
func testBase(t *testing.T, projectDir string, sitePackages string) (*cmdutil.CmdBase, *cli.MockUi) {
	t.Helper()
	flags := pflag.NewFlagSet("test-flags", pflag.ContinueOnError)
	helper := cmdutil.NewHelper("test-version")
	helper.AddFlags(flags)
	helper.UserConfigPath = pippath.AbsoluteSystemPathFromUpstream(t.TempDir()).UntypedJoin("pipdeps", "config.json")
	assert.NilError(t, flags.Set("cwd", projectDir))
	assert.NilError(t, flags.Set("source", "dist-info"))
	assert.NilError(t, flags.Set("site-packages", sitePackages))
	base, err := helper.GetCmdBase(flags)
	assert.NilError(t, err)
	mockUI := &cli.MockUi{}
	base.UI = mockUI
	return base, mockUI
}

func TestConfigureWritesClosureFile(t *testing.T) {
	site := fs.NewDir(t, "site-packages",
		fs.WithDir("flask-2.2.2.dist-info",
			fs.WithFile("METADATA", "Metadata-Version: 2.1\nName: Flask\nRequires-Dist: click (>=8.0)\nRequires-Dist: itsdangerous (>=2.0)\n\nweb framework\n")),
		fs.WithDir("click-8.1.3.dist-info",
			fs.WithFile("METADATA", "Metadata-Version: 2.1\nName: click\n\ncli toolkit\n")),
		fs.WithDir("itsdangerous-2.1.2.dist-info",
			fs.WithFile("METADATA", "Metadata-Version: 2.1\nName: itsdangerous\n\nsigning helpers\n")),
	)
	defer site.Remove()
	project := fs.NewDir(t, "project",
		fs.WithFile("requirements.txt", "flask==2.2.2\nclick==8.1.3\n"))
	defer project.Remove()

	base, mockUI := testBase(t, project.Path(), site.Path())
	c := &configure{base}
	err := c.run(context.Background(), &opts{})
	assert.NilError(t, err)

	closurePath := pippath.AbsoluteSystemPathFromUpstream(project.Path()).UntypedJoin("requirements.json")
	table, err := closure.ReadTable(closurePath)
	assert.NilError(t, err)
	assert.DeepEqual(t, table, closure.Table{
		"click": {},
		"flask": {"click", "itsdangerous"},
	})

	output := mockUI.OutputWriter.String()
	assert.Assert(t, strings.Contains(output, "Creating `requirements.json` file..."))
	assert.Assert(t, strings.Contains(output, "requirements.json was created."))
}

func TestConfigureMissingRequirements(t *testing.T) {
	project := fs.NewDir(t, "project")
	defer project.Remove()

	base, _ := testBase(t, project.Path(), t.TempDir())
	c := &configure{base}
	err := c.run(context.Background(), &opts{})
	assert.ErrorContains(t, err, "Not found:")
}

func TestConfigureCanceledContext(t *testing.T) {
	project := fs.NewDir(t, "project",
		fs.WithFile("requirements.txt", "flask==2.2.2\n"))
	defer project.Remove()

	base, _ := testBase(t, project.Path(), t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &configure{base}
	err := c.run(ctx, &opts{})
	assert.ErrorContains(t, err, "context canceled")
}

func TestGraphFlagParsing(t *testing.T) {
	cases := []struct {
		Name string
		Args []string
		Dot  bool
		File string
	}{
		{"bare flag renders dot", []string{"--graph"}, true, ""},
		{"explicit true renders dot", []string{"--graph=true"}, true, ""},
		{"filename generates a file", []string{"--graph=deps.svg"}, false, "deps.svg"},
	}
	for i, tc := range cases {
		t.Run(fmt.Sprintf("%d-%s", i, tc.Name), func(t *testing.T) {
			opts := &opts{}
			flags := pflag.NewFlagSet("test-flags", pflag.ContinueOnError)
			addConfigureFlags(opts, flags)
			assert.NilError(t, flags.Parse(tc.Args))
			assert.Equal(t, opts.graphDot, tc.Dot)
			assert.Equal(t, opts.graphFile, tc.File)
		})
	}
}
