// Package config loads the two configuration scopes of pipdeps: a user
// config that travels across projects (which metadata source to use, which
// registry to ask) and a project config pinned next to the requirements
// file it describes. PIPDEPS_* environment variables and command flags
// override both.
package config

import (
	"os"
	"time"

	mapset "github.com/deckarep/golang-set"

	"github.com/adrg/xdg"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/katsuya-horiuchi/pip-dependency-management/internal/manifest"
	"github.com/katsuya-horiuchi/pip-dependency-management/internal/pippath"
)

const (
	_defaultSource      = "pip"
	_defaultRegistryURL = "https://pypi.org"

	_defaultRequirements = "requirements.txt"
	_defaultClosureFile  = "requirements.json"
	_defaultConcurrency  = 4
	// seconds
	_defaultQueryTimeout = 30
	_defaultPipCommand   = "pip"
)

// _defaultBasePackages ship with every environment and never show up in a
// requirements file.
var _defaultBasePackages = []string{"setuptools", "wheel"}

// UserConfig is a wrapper around the user-specific configuration values
// for pipdeps.
type UserConfig struct {
	userViper *viper.Viper
	path      pippath.AbsoluteSystemPath
}

// Source returns the configured metadata source kind.
func (uc *UserConfig) Source() string {
	return uc.userViper.GetString("source")
}

// RegistryURL returns the package index queried by the pypi source.
func (uc *UserConfig) RegistryURL() string {
	return uc.userViper.GetString("registryurl")
}

// Path returns the location this configuration was read from.
func (uc *UserConfig) Path() pippath.AbsoluteSystemPath {
	return uc.path
}

// ReadUserConfigFile creates a UserConfig using the specified path as the
// user config file. The path and its parents do not need to exist.
func ReadUserConfigFile(path pippath.AbsoluteSystemPath, source *string, registryURL *string) (*UserConfig, error) {
	userViper := viper.New()
	userViper.SetConfigFile(path.ToString())
	userViper.SetConfigType("json")
	userViper.SetEnvPrefix("pipdeps")
	userViper.MustBindEnv("source")
	userViper.MustBindEnv("registryurl", "PIPDEPS_REGISTRY")
	userViper.SetDefault("source", _defaultSource)
	userViper.SetDefault("registryurl", _defaultRegistryURL)
	if err := userViper.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	// Flag values outrank both the file and the environment.
	if source != nil {
		userViper.Set("source", *source)
	}
	if registryURL != nil {
		userViper.Set("registryurl", *registryURL)
	}
	return &UserConfig{
		userViper: userViper,
		path:      path,
	}, nil
}

// AddUserConfigFlags adds per-user configuration item flags to the given
// flagset.
func AddUserConfigFlags(flags *pflag.FlagSet) {
	flags.String("source", "", "Set the metadata source: pip, pypi, or dist-info")
	flags.String("registry", "", "Override the package registry queried by the pypi source")
}

// DefaultUserConfigPath returns the default platform-dependent place that
// we store the user-specific configuration.
func DefaultUserConfigPath() pippath.AbsoluteSystemPath {
	configHome := pippath.AbsoluteSystemPathFromUpstream(xdg.ConfigHome)
	return configHome.UntypedJoin("pipdeps", "config.json")
}

// ProjectOverrides carries flag values that take precedence over the
// project config file. A nil field means the flag was not passed.
type ProjectOverrides struct {
	Requirements *string
	ClosureFile  *string
	BasePackages *[]string
	Concurrency  *int
	QueryTimeout *uint64
	PipCommand   *string
	SitePackages *string
}

// ProjectConfig is a wrapper around the configuration values scoped to one
// project directory.
type ProjectConfig struct {
	projectViper *viper.Viper
	projectRoot  pippath.AbsoluteSystemPath
	path         pippath.AbsoluteSystemPath
}

// RequirementsPath returns the manifest location, resolved against the
// project root when configured relative.
func (pc *ProjectConfig) RequirementsPath() (pippath.AbsoluteSystemPath, error) {
	return pippath.ResolveUserPath(pc.projectRoot, pc.projectViper.GetString("requirements"))
}

// ClosurePath returns the closure artifact location, resolved against the
// project root when configured relative.
func (pc *ProjectConfig) ClosurePath() (pippath.AbsoluteSystemPath, error) {
	return pippath.ResolveUserPath(pc.projectRoot, pc.projectViper.GetString("closurefile"))
}

// BasePackages returns the canonical names treated as preinstalled.
func (pc *ProjectConfig) BasePackages() []string {
	configured := pc.projectViper.GetStringSlice("basepackages")
	names := make([]string, 0, len(configured))
	for _, name := range configured {
		if canonical := manifest.Canonical(name); canonical != "" {
			names = append(names, canonical)
		}
	}
	return names
}

// BasePackageSet returns BasePackages as a set.
func (pc *ProjectConfig) BasePackageSet() mapset.Set {
	base := mapset.NewSet()
	for _, name := range pc.BasePackages() {
		base.Add(name)
	}
	return base
}

// Concurrency bounds simultaneous metadata queries, at least 1.
func (pc *ProjectConfig) Concurrency() int {
	concurrency := pc.projectViper.GetInt("concurrency")
	if concurrency < 1 {
		return 1
	}
	return concurrency
}

// QueryTimeout bounds a single metadata query. Configured in seconds.
func (pc *ProjectConfig) QueryTimeout() time.Duration {
	return time.Duration(pc.projectViper.GetUint64("querytimeout")) * time.Second
}

// PipCommand returns the executable the pip source shells out to.
func (pc *ProjectConfig) PipCommand() string {
	return pc.projectViper.GetString("pipcommand")
}

// SitePackages returns the directory the dist-info source scans, or ""
// when not configured.
func (pc *ProjectConfig) SitePackages() (pippath.AbsoluteSystemPath, error) {
	configured := pc.projectViper.GetString("sitepackages")
	if configured == "" {
		return "", nil
	}
	return pippath.ResolveUserPath(pc.projectRoot, configured)
}

// Path returns the location this configuration was read from.
func (pc *ProjectConfig) Path() pippath.AbsoluteSystemPath {
	return pc.path
}

// ReadProjectConfigFile creates a ProjectConfig for the given project
// root. The config file and its parents do not need to exist.
func ReadProjectConfigFile(projectRoot pippath.AbsoluteSystemPath, overrides *ProjectOverrides) (*ProjectConfig, error) {
	path := GetProjectConfigPath(projectRoot)
	projectViper := viper.New()
	projectViper.SetConfigFile(path.ToString())
	projectViper.SetConfigType("json")
	projectViper.SetEnvPrefix("pipdeps")
	projectViper.MustBindEnv("requirements")
	projectViper.MustBindEnv("closurefile", "PIPDEPS_CLOSURE")
	projectViper.MustBindEnv("basepackages", "PIPDEPS_BASE_PACKAGES")
	projectViper.MustBindEnv("concurrency")
	projectViper.MustBindEnv("querytimeout", "PIPDEPS_QUERY_TIMEOUT")
	projectViper.MustBindEnv("pipcommand", "PIPDEPS_PIP_COMMAND")
	projectViper.MustBindEnv("sitepackages", "PIPDEPS_SITE_PACKAGES")
	projectViper.SetDefault("requirements", _defaultRequirements)
	projectViper.SetDefault("closurefile", _defaultClosureFile)
	projectViper.SetDefault("basepackages", _defaultBasePackages)
	projectViper.SetDefault("concurrency", _defaultConcurrency)
	projectViper.SetDefault("querytimeout", _defaultQueryTimeout)
	projectViper.SetDefault("pipcommand", _defaultPipCommand)
	projectViper.SetDefault("sitepackages", "")
	if err := projectViper.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if overrides != nil {
		overrides.apply(projectViper)
	}
	return &ProjectConfig{
		projectViper: projectViper,
		projectRoot:  projectRoot,
		path:         path,
	}, nil
}

func (o *ProjectOverrides) apply(projectViper *viper.Viper) {
	if o.Requirements != nil {
		projectViper.Set("requirements", *o.Requirements)
	}
	if o.ClosureFile != nil {
		projectViper.Set("closurefile", *o.ClosureFile)
	}
	if o.BasePackages != nil {
		projectViper.Set("basepackages", *o.BasePackages)
	}
	if o.Concurrency != nil {
		projectViper.Set("concurrency", *o.Concurrency)
	}
	if o.QueryTimeout != nil {
		projectViper.Set("querytimeout", *o.QueryTimeout)
	}
	if o.PipCommand != nil {
		projectViper.Set("pipcommand", *o.PipCommand)
	}
	if o.SitePackages != nil {
		projectViper.Set("sitepackages", *o.SitePackages)
	}
}

// AddProjectConfigFlags adds per-project configuration item flags to the
// given flagset.
func AddProjectConfigFlags(flags *pflag.FlagSet) {
	flags.String("requirements", "", "Override the requirements file location")
	flags.String("closure-file", "", "Override the dependency closure file location")
	flags.StringSlice("base-packages", nil, "Override the packages treated as preinstalled")
	flags.Int("concurrency", 0, "Bound the number of concurrent metadata queries")
	flags.Uint64("query-timeout", 0, "Timeout for a single metadata query, in seconds")
	flags.String("pip-command", "", "Override the pip executable used by the pip source")
	flags.String("site-packages", "", "Directory scanned by the dist-info source")
}

// GetProjectConfigPath returns where the project-scoped configuration
// lives under a given project root.
func GetProjectConfigPath(projectRoot pippath.AbsoluteSystemPath) pippath.AbsoluteSystemPath {
	return projectRoot.UntypedJoin(".pipdeps", "config.json")
}
