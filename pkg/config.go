package finddup

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-ini/ini"
)

// Config represents the finddup configuration
type Config struct {
	configPath string
	ini        *ini.File
}

// MatchConfig represents the matching strategy configuration
type MatchConfig struct {
	Strategy   string // name, fuzzy or md5
	BlockSize  string // Prefix size for md5, human-readable
	Digest     string // Digest algorithm for fuzzy and md5
	SkipErrors bool   // Warn and skip files that fail to read instead of aborting
}

// FilterConfig represents file selection configuration
type FilterConfig struct {
	Exclude    string // Regex matched against full paths
	Only       string // Regex matched against file names
	IgnoreFile string // Path to a file of glob patterns
}

// OutputConfig represents output format configuration
type OutputConfig struct {
	Format string // human, fdupes, json, yaml
}

// VerboseConfig represents verbosity configuration
type VerboseConfig struct {
	Level int    // 0=quiet, 1=basic, 2=detailed, 3=trace
	Debug string // Comma-separated debug flags
}

// PerformanceConfig represents performance-related configuration
type PerformanceConfig struct {
	HashWorkers int // Number of concurrent key workers
}

// AllConfig represents all configuration options
type AllConfig struct {
	Match       *MatchConfig
	Filter      *FilterConfig
	Output      *OutputConfig
	Verbose     *VerboseConfig
	Performance *PerformanceConfig
}

// overrideKeys maps override keys to their section
var overrideKeys = map[string]string{
	"strategy":     "match",
	"blocksize":    "match",
	"digest":       "match",
	"skip_errors":  "match",
	"exclude":      "filter",
	"only":         "filter",
	"ignore_file":  "filter",
	"format":       "output",
	"level":        "verbose",
	"debug":        "verbose",
	"hash_workers": "performance",
}

// NewDefaultConfig returns an in-memory configuration holding the defaults
func NewDefaultConfig() *Config {
	cfg := &Config{ini: ini.Empty()}
	// Writing keys into a fresh file cannot fail
	_ = cfg.setDefaults()
	return cfg
}

// LoadConfig loads configuration from path. An empty path or a missing file yields the
// defaults; Save will then create the file at path.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		return NewDefaultConfig(), nil
	}

	// A missing file is not an error; Save creates it later
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := NewDefaultConfig()
		cfg.configPath = configPath
		return cfg, nil
	}

	iniFile, err := ini.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	VerboseLog(2, "Loaded config from %s", configPath)

	return &Config{configPath: configPath, ini: iniFile}, nil
}

// setDefaults sets default configuration values
func (c *Config) setDefaults() error {
	defaults := []struct {
		section, key, value string
	}{
		{"match", "strategy", DefaultStrategy},
		{"match", "blocksize", DefaultBlockSize},
		{"match", "digest", DefaultDigest},
		{"match", "skip_errors", "false"},
		{"filter", "exclude", ""},
		{"filter", "only", ""},
		{"filter", "ignore_file", ""},
		{"output", "format", DefaultFormat},
		{"verbose", "level", "0"},
		{"verbose", "debug", ""},
		{"performance", "hash_workers", fmt.Sprintf("%d", DefaultHashWorkers)},
	}

	for _, d := range defaults {
		section, err := c.ini.NewSection(d.section)
		if err != nil {
			return fmt.Errorf("failed to create %s section: %w", d.section, err)
		}
		if _, err := section.NewKey(d.key, d.value); err != nil {
			return fmt.Errorf("failed to set default %s.%s: %w", d.section, d.key, err)
		}
	}

	return nil
}

// stringValue returns section.key or the fallback when unset
func (c *Config) stringValue(section, key, fallback string) string {
	if c.ini.HasSection(section) {
		s := c.ini.Section(section)
		if s.HasKey(key) {
			return s.Key(key).String()
		}
	}
	return fallback
}

// GetMatchConfig returns the matching strategy configuration
func (c *Config) GetMatchConfig() *MatchConfig {
	matchConfig := &MatchConfig{
		Strategy:  c.stringValue("match", "strategy", DefaultStrategy),
		BlockSize: c.stringValue("match", "blocksize", DefaultBlockSize),
		Digest:    c.stringValue("match", "digest", DefaultDigest),
	}

	if c.ini.HasSection("match") {
		section := c.ini.Section("match")
		if section.HasKey("skip_errors") {
			if skip, err := section.Key("skip_errors").Bool(); err == nil {
				matchConfig.SkipErrors = skip
			}
		}
	}

	return matchConfig
}

// GetFilterConfig returns the file selection configuration
func (c *Config) GetFilterConfig() *FilterConfig {
	return &FilterConfig{
		Exclude:    c.stringValue("filter", "exclude", ""),
		Only:       c.stringValue("filter", "only", ""),
		IgnoreFile: c.stringValue("filter", "ignore_file", ""),
	}
}

// GetOutputConfig returns the output configuration
func (c *Config) GetOutputConfig() *OutputConfig {
	return &OutputConfig{
		Format: c.stringValue("output", "format", DefaultFormat),
	}
}

// GetVerboseConfig returns the verbose configuration
func (c *Config) GetVerboseConfig() *VerboseConfig {
	verboseConfig := &VerboseConfig{
		Debug: c.stringValue("verbose", "debug", ""),
	}

	if c.ini.HasSection("verbose") {
		section := c.ini.Section("verbose")
		if section.HasKey("level") {
			if level, err := section.Key("level").Int(); err == nil {
				verboseConfig.Level = level
			}
		}
	}

	return verboseConfig
}

// GetPerformanceConfig returns the performance configuration
func (c *Config) GetPerformanceConfig() *PerformanceConfig {
	performanceConfig := &PerformanceConfig{
		HashWorkers: DefaultHashWorkers,
	}

	if c.ini.HasSection("performance") {
		section := c.ini.Section("performance")
		if section.HasKey("hash_workers") {
			if workers, err := section.Key("hash_workers").Int(); err == nil {
				performanceConfig.HashWorkers = workers
			}
		}
	}

	return performanceConfig
}

// GetAllConfig returns all configuration options
func (c *Config) GetAllConfig() *AllConfig {
	return &AllConfig{
		Match:       c.GetMatchConfig(),
		Filter:      c.GetFilterConfig(),
		Output:      c.GetOutputConfig(),
		Verbose:     c.GetVerboseConfig(),
		Performance: c.GetPerformanceConfig(),
	}
}

// Set assigns a single configuration key by its override name
func (c *Config) Set(key, value string) error {
	section, ok := overrideKeys[key]
	if !ok {
		return fmt.Errorf("unsupported config key '%s' (supported: %s)", key, supportedOverrideKeys())
	}
	c.ini.Section(section).Key(key).SetValue(value)
	return nil
}

// ApplyOverrides applies command-line overrides to the configuration
// Accepts strings like "strategy:md5", "blocksize:1M", "level:2", "exclude:\.git/"
func (c *Config) ApplyOverrides(overrides []string) error {
	for _, override := range overrides {
		// Split on the first colon only, regex values may contain more
		parts := strings.SplitN(override, ":", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid override format '%s', expected 'key:value'", override)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if err := c.Set(key, value); err != nil {
			return err
		}
		if IsDebugEnabled("config") {
			VerboseLog(2, "config override %s=%s", key, value)
		}
	}

	return nil
}

func supportedOverrideKeys() string {
	return "strategy, blocksize, digest, skip_errors, exclude, only, ignore_file, format, level, debug, hash_workers"
}

// Path returns the file the configuration was loaded from or will be saved to
func (c *Config) Path() string {
	return c.configPath
}

// Save saves the configuration to the path it was loaded from
func (c *Config) Save() error {
	if c.configPath == "" {
		return fmt.Errorf("config has no file path")
	}
	return c.ini.SaveTo(c.configPath)
}

// SaveTo saves the configuration to path and remembers it
func (c *Config) SaveTo(path string) error {
	c.configPath = path
	return c.ini.SaveTo(path)
}

// WriteTo writes the configuration in INI form
func (c *Config) WriteTo(w io.Writer) (int64, error) {
	return c.ini.WriteTo(w)
}

// Validate checks every value needed to start a run
func (c *Config) Validate() error {
	// The getters fall back to defaults on unparsable values, so check the raw text first
	if err := c.validateTypedValues(); err != nil {
		return err
	}

	all := c.GetAllConfig()

	if err := ValidateStrategy(all.Match.Strategy); err != nil {
		return err
	}
	if _, err := ValidateBlockSize(all.Match.BlockSize); err != nil {
		return err
	}
	if err := ValidateDigest(all.Match.Digest); err != nil {
		return err
	}
	if err := ValidateOutputFormat(all.Output.Format); err != nil {
		return err
	}
	if err := ValidateVerboseLevel(all.Verbose.Level); err != nil {
		return err
	}
	return ValidateHashWorkers(all.Performance.HashWorkers)
}

// validateTypedValues reports numeric and boolean keys whose text does not parse
func (c *Config) validateTypedValues() error {
	typed := []struct {
		section, key string
		isBool       bool
	}{
		{"match", "skip_errors", true},
		{"verbose", "level", false},
		{"performance", "hash_workers", false},
	}

	for _, v := range typed {
		if !c.ini.HasSection(v.section) || !c.ini.Section(v.section).HasKey(v.key) {
			continue
		}
		key := c.ini.Section(v.section).Key(v.key)

		var err error
		if v.isBool {
			_, err = key.Bool()
		} else {
			_, err = key.Int()
		}
		if err != nil {
			return fmt.Errorf("invalid %s value '%s': %w", v.key, key.String(), err)
		}
	}

	return nil
}

// ValidateStrategy validates that a strategy is supported
func ValidateStrategy(strategy string) error {
	switch strategy {
	case StrategyName, StrategyFuzzy, StrategyMD5:
		return nil
	default:
		return fmt.Errorf("unsupported strategy: %s (supported: name, fuzzy, md5)", strategy)
	}
}

// ValidateDigest validates that a digest algorithm is supported
func ValidateDigest(digest string) error {
	if _, ok := DigestTypeFromName(digest); !ok {
		return fmt.Errorf("unsupported digest algorithm: %s (supported: md5, sha1, sha256, sha512, blake3)", digest)
	}
	return nil
}

// ValidateOutputFormat validates that an output format is supported
func ValidateOutputFormat(format string) error {
	switch strings.ToLower(format) {
	case FormatHuman, FormatFdupes, FormatJSON, FormatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s (supported: human, fdupes, json, yaml)", format)
	}
}

// ValidateVerboseLevel validates that a verbose level is valid
func ValidateVerboseLevel(level int) error {
	if level < 0 || level > 3 {
		return fmt.Errorf("invalid verbose level: %d (supported: 0-3)", level)
	}
	return nil
}

// ValidateHashWorkers validates that the hash worker count is reasonable
func ValidateHashWorkers(workers int) error {
	if workers < 1 {
		return fmt.Errorf("hash workers must be at least 1, got: %d", workers)
	}
	if workers > MaxHashWorkers {
		return fmt.Errorf("hash workers should not exceed %d, got: %d", MaxHashWorkers, workers)
	}
	return nil
}
