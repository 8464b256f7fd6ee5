package driver

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"visualg/interpreter-go/pkg/ast"
)

// ConfigNames lists the file names FindConfig looks for, in priority order.
var ConfigNames = []string{"visualg.yml", "visualg.yaml", "visualg.toml"}

// ErrConfigNotFound is returned by FindConfig when no config file exists in
// the start directory or any parent.
var ErrConfigNotFound = errors.New("config: no visualg config found")

// Config represents the parsed contents of visualg.yml or visualg.toml.
type Config struct {
	Path string `yaml:"-" toml:"-"`

	LogLevel     string            `yaml:"log_level" toml:"log_level"`
	InputTimeout Duration          `yaml:"input_timeout" toml:"input_timeout"`
	Random       RandomConfig      `yaml:"random" toml:"random"`
	Echo         bool              `yaml:"echo" toml:"echo"`
	Color        bool              `yaml:"color" toml:"color"`
	DebugServer  DebugServerConfig `yaml:"debug_server" toml:"debug_server"`
	Breakpoints  []int             `yaml:"breakpoints" toml:"breakpoints"`
}

// RandomConfig seeds the aleatorio pseudo-command. Seed 0 picks a random seed.
type RandomConfig struct {
	Min  float64 `yaml:"min" toml:"min"`
	Max  float64 `yaml:"max" toml:"max"`
	Seed uint64  `yaml:"seed" toml:"seed"`
}

type DebugServerConfig struct {
	Addr string `yaml:"addr" toml:"addr"`
}

// Duration wraps time.Duration so both formats accept strings like "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a string", value.Line)
	}
	if err := d.UnmarshalText([]byte(value.Value)); err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	return nil
}

// DefaultConfig returns the settings used when no config file is present.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:    "warn",
		Random:      RandomConfig{Min: 0, Max: 100},
		Color:       true,
		DebugServer: DebugServerConfig{Addr: "127.0.0.1:4711"},
	}
}

// ValidationError aggregates config validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadConfig parses a config file over DefaultConfig and validates it. The
// format follows the extension: .toml is TOML, anything else is YAML.
// Unknown keys are rejected in both formats.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if strings.EqualFold(filepath.Ext(absPath), ".toml") {
		err = decodeTOML(absPath, cfg)
	} else {
		err = decodeYAML(absPath, cfg)
	}
	if err != nil {
		return nil, err
	}
	cfg.Path = absPath
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeYAML(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			// An empty file keeps the defaults.
			return nil
		}
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func decodeTOML(path string, cfg *Config) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		sort.Strings(keys)
		return fmt.Errorf("config: parse %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func (c *Config) validate() error {
	var errs ValidationError
	if _, ok := parseLevel(c.LogLevel); !ok {
		errs.Issues = append(errs.Issues, fmt.Sprintf("log_level %q must be one of debug, info, warn, error", c.LogLevel))
	}
	if c.InputTimeout.Duration < 0 {
		errs.Issues = append(errs.Issues, "input_timeout must not be negative")
	}
	if c.Random.Min > c.Random.Max {
		errs.Issues = append(errs.Issues, fmt.Sprintf("random.min (%v) must not exceed random.max (%v)", c.Random.Min, c.Random.Max))
	}
	if strings.TrimSpace(c.DebugServer.Addr) == "" {
		errs.Issues = append(errs.Issues, "debug_server.addr must be provided")
	}
	for i, line := range c.Breakpoints {
		if line <= 0 {
			errs.Issues = append(errs.Issues, fmt.Sprintf("breakpoints[%d] must be a positive line number", i))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// Level maps log_level onto a slog level; unknown names fall back to warn.
func (c *Config) Level() slog.Level {
	level, ok := parseLevel(c.LogLevel)
	if !ok {
		return slog.LevelWarn
	}
	return level
}

func parseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return 0, false
}

// BreakpointLocations converts the configured line numbers into whole-line
// breakpoint locations.
func (c *Config) BreakpointLocations() []ast.Location {
	out := make([]ast.Location, 0, len(c.Breakpoints))
	for _, line := range c.Breakpoints {
		out = append(out, ast.Line(line))
	}
	return out
}

// FindConfig walks from start up to the filesystem root and returns the first
// config file found.
func FindConfig(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory %q: %w", start, err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	origin := dir
	for {
		for _, name := range ConfigNames {
			candidate := filepath.Join(dir, name)
			info, err := os.Stat(candidate)
			if err == nil && !info.IsDir() {
				return candidate, nil
			}
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				return "", err
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("searched from %s upwards: %w", origin, ErrConfigNotFound)
		}
		dir = parent
	}
}
