// Package cmdutil holds the shared plumbing between subcommands: global
// flags, logger construction, and resolution of the two config scopes into
// a per-invocation CmdBase.
package cmdutil

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/katsuya-horiuchi/pip-dependency-management/internal/config"
	"github.com/katsuya-horiuchi/pip-dependency-management/internal/metadata"
	"github.com/katsuya-horiuchi/pip-dependency-management/internal/pippath"
	"github.com/katsuya-horiuchi/pip-dependency-management/internal/ui"
)

const (
	// EnvLogLevel is the environment log level
	EnvLogLevel = "PIPDEPS_LOG_LEVEL"
)

// Helper is a struct used to hold configuration values passed via flags or
// env vars so they can be resolved into a CmdBase once a command runs.
type Helper struct {
	// Version is the version of the pipdeps binary in use.
	Version string

	// UserConfigPath is the path to where we expect to find a user config
	// file. Settable so tests can redirect it.
	UserConfigPath pippath.AbsoluteSystemPath

	rawProjectDir string
	verbosity     int
	forceColor    bool
	noColor       bool
}

// NewHelper returns a new helper instance to hold configuration values
// for the root command.
func NewHelper(version string) *Helper {
	return &Helper{
		Version:        version,
		UserConfigPath: config.DefaultUserConfigPath(),
	}
}

// AddFlags registers the global flags shared by every subcommand.
func (h *Helper) AddFlags(flags *pflag.FlagSet) {
	flags.StringVar(&h.rawProjectDir, "cwd", "", "Directory containing the requirements file. Defaults to the current working directory")
	flags.CountVarP(&h.verbosity, "verbosity", "v", "verbosity")
	flags.BoolVar(&h.forceColor, "color", false, "Force color usage in the terminal")
	flags.BoolVar(&h.noColor, "no-color", false, "Suppress color usage in the terminal")
	config.AddUserConfigFlags(flags)
	config.AddProjectConfigFlags(flags)
}

func (h *Helper) getUI() *cli.ColoredUi {
	return ui.BuildColoredUi(ui.ResolveColorMode(h.forceColor, h.noColor))
}

func (h *Helper) getLogger() (hclog.Logger, error) {
	var level hclog.Level
	switch h.verbosity {
	case 0:
		if v := os.Getenv(EnvLogLevel); v != "" {
			level = hclog.LevelFromString(v)
			if level == hclog.NoLevel {
				return nil, errors.Errorf("%v is an invalid log level, valid levels are: trace, debug, info, warn, error", v)
			}
		} else {
			level = hclog.NoLevel
		}
	case 1:
		level = hclog.Info
	case 2:
		level = hclog.Debug
	default:
		level = hclog.Trace
	}
	// Default output is nowhere unless we enable logging.
	var output io.Writer = ioutil.Discard
	logColor := hclog.ColorOff
	if level != hclog.NoLevel {
		output = os.Stderr
		logColor = hclog.AutoColor
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "pipdeps",
		Level:  level,
		Color:  logColor,
		Output: output,
	}), nil
}

func (h *Helper) projectRoot() (pippath.AbsoluteSystemPath, error) {
	cwd, err := pippath.GetCwd()
	if err != nil {
		return "", err
	}
	if h.rawProjectDir == "" {
		return cwd, nil
	}
	return pippath.ResolveUserPath(cwd, h.rawProjectDir)
}

// GetCmdBase resolves the helper's accumulated state plus any config
// flags set on flags into a CmdBase.
func (h *Helper) GetCmdBase(flags *pflag.FlagSet) (*CmdBase, error) {
	terminal := h.getUI()
	logger, err := h.getLogger()
	if err != nil {
		return nil, err
	}
	projectRoot, err := h.projectRoot()
	if err != nil {
		return nil, err
	}
	logger.Debug(fmt.Sprintf("project root %v", projectRoot))
	userConfig, err := config.ReadUserConfigFile(h.UserConfigPath, stringFlag(flags, "source"), stringFlag(flags, "registry"))
	if err != nil {
		return nil, errors.Wrapf(err, "reading user config %v", h.UserConfigPath)
	}
	projectConfig, err := config.ReadProjectConfigFile(projectRoot, projectOverrides(flags))
	if err != nil {
		return nil, errors.Wrapf(err, "reading project config %v", config.GetProjectConfigPath(projectRoot))
	}
	return &CmdBase{
		UI:            terminal,
		Logger:        logger,
		ProjectRoot:   projectRoot,
		UserConfig:    userConfig,
		ProjectConfig: projectConfig,
		Version:       h.Version,
	}, nil
}

func stringFlag(flags *pflag.FlagSet, name string) *string {
	if flags == nil || !flags.Changed(name) {
		return nil
	}
	if value, err := flags.GetString(name); err == nil {
		return &value
	}
	return nil
}

func intFlag(flags *pflag.FlagSet, name string) *int {
	if flags == nil || !flags.Changed(name) {
		return nil
	}
	if value, err := flags.GetInt(name); err == nil {
		return &value
	}
	return nil
}

func uint64Flag(flags *pflag.FlagSet, name string) *uint64 {
	if flags == nil || !flags.Changed(name) {
		return nil
	}
	if value, err := flags.GetUint64(name); err == nil {
		return &value
	}
	return nil
}

func stringSliceFlag(flags *pflag.FlagSet, name string) *[]string {
	if flags == nil || !flags.Changed(name) {
		return nil
	}
	if value, err := flags.GetStringSlice(name); err == nil {
		return &value
	}
	return nil
}

func projectOverrides(flags *pflag.FlagSet) *config.ProjectOverrides {
	return &config.ProjectOverrides{
		Requirements: stringFlag(flags, "requirements"),
		ClosureFile:  stringFlag(flags, "closure-file"),
		BasePackages: stringSliceFlag(flags, "base-packages"),
		Concurrency:  intFlag(flags, "concurrency"),
		QueryTimeout: uint64Flag(flags, "query-timeout"),
		PipCommand:   stringFlag(flags, "pip-command"),
		SitePackages: stringFlag(flags, "site-packages"),
	}
}

// CmdBase encompasses configured resources for a single command
// invocation.
type CmdBase struct {
	UI            cli.Ui
	Logger        hclog.Logger
	ProjectRoot   pippath.AbsoluteSystemPath
	UserConfig    *config.UserConfig
	ProjectConfig *config.ProjectConfig
	Version       string
}

// LogError logs an error and outputs it to the UI.
func (b *CmdBase) LogError(format string, args ...interface{}) {
	err := fmt.Errorf(format, args...)
	b.Logger.Error(fmt.Sprintf("error: %v", err))
	b.UI.Error(fmt.Sprintf("%s%s", ui.ERROR_PREFIX, color.RedString(" %v", err)))
}

// LogWarning logs an error and outputs it to the UI as a warning.
func (b *CmdBase) LogWarning(format string, args ...interface{}) {
	err := fmt.Errorf(format, args...)
	b.Logger.Warn(fmt.Sprintf("warning: %v", err))
	b.UI.Warn(fmt.Sprintf("%s%s", ui.WARNING_PREFIX, color.YellowString(" %v", err)))
}

// MetadataSource constructs the metadata source the configuration selects.
func (b *CmdBase) MetadataSource() (metadata.Source, error) {
	sitePackages, err := b.ProjectConfig.SitePackages()
	if err != nil {
		return nil, err
	}
	return metadata.New(b.UserConfig.Source(), metadata.Options{
		PipCommand:   b.ProjectConfig.PipCommand(),
		QueryTimeout: b.ProjectConfig.QueryTimeout(),
		RegistryURL:  b.UserConfig.RegistryURL(),
		SitePackages: sitePackages,
		Version:      b.Version,
		Logger:       b.Logger,
	})
}
