// Package configure implements `pipdeps configure`: it reads the pinned
// requirements, queries the configured metadata source for every package,
// expands the results into transitive closures, and writes the closure
// file the other commands answer queries from.
package configure

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/katsuya-horiuchi/pip-dependency-management/internal/closure"
	"github.com/katsuya-horiuchi/pip-dependency-management/internal/cmdutil"
	"github.com/katsuya-horiuchi/pip-dependency-management/internal/graph"
	"github.com/katsuya-horiuchi/pip-dependency-management/internal/manifest"
	"github.com/katsuya-horiuchi/pip-dependency-management/internal/metadata"
	"github.com/katsuya-horiuchi/pip-dependency-management/internal/spinner"
	"github.com/katsuya-horiuchi/pip-dependency-management/internal/ui"
)

type opts struct {
	graphDot  bool
	graphFile string
}

// GetCmd returns the configure subcommand for use on the root cobra command.
func GetCmd(helper *cmdutil.Helper) *cobra.Command {
	opts := &opts{}
	cmd := &cobra.Command{
		Use:           "configure",
		Short:         "Resolve every pinned package and write the dependency closure file",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := helper.GetCmdBase(cmd.Flags())
			if err != nil {
				return err
			}
			c := &configure{base}
			if err := c.run(cmd.Context(), opts); err != nil {
				base.LogError("%v", err)
				return err
			}
			return nil
		},
	}
	addConfigureFlags(opts, cmd.Flags())
	return cmd
}

type configure struct {
	base *cmdutil.CmdBase
}

func (c *configure) run(ctx context.Context, opts *opts) error {
	requirementsPath, err := c.base.ProjectConfig.RequirementsPath()
	if err != nil {
		return err
	}
	closurePath, err := c.base.ProjectConfig.ClosurePath()
	if err != nil {
		return err
	}
	pinned, err := manifest.ReadRequirements(requirementsPath)
	if err != nil {
		return err
	}
	roots := pinned.Roots()
	c.base.Logger.Debug(fmt.Sprintf("%v pinned packages in %v", pinned.Len(), requirementsPath))

	c.base.UI.Output(fmt.Sprintf("Creating `%v` file...", closurePath.Base()))

	source, err := c.base.MetadataSource()
	if err != nil {
		return err
	}
	builder := &closure.Builder{
		Source:      source,
		Base:        c.base.ProjectConfig.BasePackageSet(),
		Concurrency: c.base.ProjectConfig.Concurrency(),
		Logger:      c.base.Logger,
	}
	var result *closure.Result
	var buildErr error
	err = spinner.WaitFor(ctx, func() {
		result, buildErr = builder.Build(ctx, roots)
	}, c.base.UI, c.waitMessage(source), 2*time.Second)
	if err != nil {
		return err
	}
	// WaitFor returns nil when ctx is canceled, possibly before fn has
	// assigned result. Check ctx before touching it.
	if err := ctx.Err(); err != nil {
		return err
	}
	if buildErr != nil {
		return buildErr
	}
	for _, name := range result.Degraded {
		c.base.LogWarning("could not resolve dependencies of `%v`, recording it with none", name)
	}
	if result.Failures != nil {
		c.base.Logger.Debug(fmt.Sprintf("resolution failures: %v", result.Failures))
	}

	depGraph := graph.New(result.Direct, builder.Base)
	if err := depGraph.Validate(); err != nil {
		c.base.LogWarning("%v", err)
	}

	if err := closure.WriteTable(closurePath, result.Table); err != nil {
		return err
	}
	c.base.UI.Output(fmt.Sprintf("%v was created.", ui.Bold(closurePath.Base())))

	if opts.graphFile != "" || opts.graphDot {
		visualizer := graph.NewVisualizer(c.base.ProjectRoot, c.base.UI, depGraph)
		if opts.graphDot {
			visualizer.RenderDotGraph()
		} else {
			if err := visualizer.GenerateGraphFile(opts.graphFile); err != nil {
				return err
			}
		}
	}
	return nil
}

// waitMessage names what the build is waiting on. Kept source-specific so
// `pip show` users recognize the subprocess fan-out.
func (c *configure) waitMessage(source metadata.Source) string {
	if source.Name() == metadata.SourcePip {
		return fmt.Sprintf("Executing `%v show` for every package. This might take a while...", c.base.ProjectConfig.PipCommand())
	}
	return fmt.Sprintf("Querying the %v metadata source for every package. This might take a while...", source.Name())
}

var _graphHelp = `Generate a graph of the package dependencies and output to a file when a filename is specified (.svg, .png, .jpg, .pdf, .json, .html, .mermaid).
Outputs dot graph to stdout when if no filename is provided`

func addConfigureFlags(opts *opts, flags *pflag.FlagSet) {
	flags.AddFlag(&pflag.Flag{
		Name:        "graph",
		Usage:       _graphHelp,
		DefValue:    "",
		NoOptDefVal: _graphNoValue,
		Value:       &graphValue{opts: opts},
	})
}

const (
	_graphText      = "graph"
	_graphNoValue   = "<output filename>"
	_graphTextValue = "true"
)

// graphValue implements a flag that can be treated as a boolean (--graph)
// or a string (--graph=output.svg).
type graphValue struct {
	opts *opts
}

var _ pflag.Value = &graphValue{}

func (d *graphValue) String() string {
	if d.opts.graphDot {
		return _graphText
	}
	return d.opts.graphFile
}

func (d *graphValue) Set(value string) error {
	if value == _graphNoValue {
		// this case matches the NoOptDefValue, which is used when the flag
		// is passed, but does not have a value (i.e. boolean flag)
		d.opts.graphDot = true
	} else if value == _graphTextValue {
		// "true" is equivalent to just setting the boolean flag
		d.opts.graphDot = true
	} else {
		d.opts.graphDot = false
		d.opts.graphFile = value
	}
	return nil
}

// Type implements Value.Type, and in this case is used to
// show the alias in the usage test.
func (d *graphValue) Type() string {
	return ""
}
