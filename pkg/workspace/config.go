package workspace

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	spmerrors "github.com/matzehuels/spmgraph/pkg/errors"
)

// ConfigFiles are the configuration file names looked up at the workspace
// root, in order.
var ConfigFiles = []string{"spmgraph.toml", "spmgraph.yaml", "spmgraph.yml"}

// Config is the workspace configuration.
//
// Zero values mean "use the default"; call [Config.WithDefaults] before use.
type Config struct {
	BuildCommand string `toml:"build_command" yaml:"build_command" json:"build_command"`
	TestCommand  string `toml:"test_command" yaml:"test_command" json:"test_command"`
	LintCommand  string `toml:"lint_command" yaml:"lint_command" json:"lint_command"`

	// IncludeTestTargets and IncludeLintTargets default to true.
	IncludeTestTargets *bool `toml:"include_test_targets" yaml:"include_test_targets" json:"include_test_targets,omitempty"`
	IncludeLintTargets *bool `toml:"include_lint_targets" yaml:"include_lint_targets" json:"include_lint_targets,omitempty"`

	// SwiftBinary is the toolchain driver used for dump-package.
	SwiftBinary string `toml:"swift_binary" yaml:"swift_binary" json:"swift_binary"`

	// Concurrency bounds the number of manifests processed at once.
	Concurrency int `toml:"concurrency" yaml:"concurrency" json:"concurrency"`

	// Exclude holds gitignore-style patterns skipped during discovery.
	Exclude []string `toml:"exclude" yaml:"exclude" json:"exclude,omitempty"`

	// Projects lists project roots explicitly. When set, no directory walk
	// happens.
	Projects []string `toml:"projects" yaml:"projects" json:"projects,omitempty"`

	Cache CacheConfig `toml:"cache" yaml:"cache" json:"cache"`
}

// CacheConfig selects the dump cache backend.
type CacheConfig struct {
	// Backend is one of "file", "redis" or "none".
	Backend  string `toml:"backend" yaml:"backend" json:"backend"`
	RedisURL string `toml:"redis_url" yaml:"redis_url" json:"redis_url,omitempty"`
	Dir      string `toml:"dir" yaml:"dir" json:"dir,omitempty"`
}

// Default configuration values.
const (
	DefaultBuildCommand = "swift build"
	DefaultTestCommand  = "swift test"
	DefaultLintCommand  = "swiftlint"
	DefaultCleanCommand = "swift package clean"
	DefaultSwiftBinary  = "swift"
	DefaultConcurrency  = 8
	DefaultCacheBackend = "file"
)

// WithDefaults returns a copy of c with zero values replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.BuildCommand == "" {
		c.BuildCommand = DefaultBuildCommand
	}
	if c.TestCommand == "" {
		c.TestCommand = DefaultTestCommand
	}
	if c.LintCommand == "" {
		c.LintCommand = DefaultLintCommand
	}
	if c.SwiftBinary == "" {
		c.SwiftBinary = DefaultSwiftBinary
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.IncludeTestTargets == nil {
		c.IncludeTestTargets = boolPtr(true)
	}
	if c.IncludeLintTargets == nil {
		c.IncludeLintTargets = boolPtr(true)
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = DefaultCacheBackend
	}
	return c
}

// TestsEnabled reports whether test tasks should be inferred.
func (c Config) TestsEnabled() bool {
	return c.IncludeTestTargets == nil || *c.IncludeTestTargets
}

// LintEnabled reports whether lint tasks should be inferred.
func (c Config) LintEnabled() bool {
	return c.IncludeLintTargets == nil || *c.IncludeLintTargets
}

func boolPtr(b bool) *bool { return &b }

// LoadConfig reads the first configuration file found in root. It returns
// the zero Config and an empty path when there is none.
func LoadConfig(root string) (Config, string, error) {
	for _, name := range ConfigFiles {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cfg, err := ReadConfig(path)
		return cfg, path, err
	}
	return Config{}, "", nil
}

// ReadConfig decodes a TOML or YAML configuration file, chosen by extension.
// Unknown keys are rejected.
func ReadConfig(path string) (Config, error) {
	var cfg Config
	switch filepath.Ext(path) {
	case ".toml":
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, spmerrors.Wrap(spmerrors.ErrCodeInvalidInput, err, "read %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, spmerrors.New(spmerrors.ErrCodeInvalidInput, "%s: unknown key %q", path, undecoded[0].String())
		}
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return Config{}, spmerrors.Wrap(spmerrors.ErrCodeIO, err, "open %s", path)
		}
		defer f.Close()
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, spmerrors.Wrap(spmerrors.ErrCodeInvalidInput, err, "read %s", path)
		}
	default:
		return Config{}, spmerrors.New(spmerrors.ErrCodeInvalidInput, "unsupported config format %q", filepath.Ext(path))
	}
	return cfg, nil
}
