// Package config loads configuration for the rule merger.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"rulemerge/pkg/sources"
)

const (
	defaultConfigPath = "rulemerge.toml"
	configEnvVar      = "RULEMERGE_CONFIG"
	envPrefix         = "RULEMERGE"
)

// Config contains all runtime options of a merge run.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Sources SourcesConfig `mapstructure:"sources"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Output  OutputConfig  `mapstructure:"output"`
	Watch   WatchConfig   `mapstructure:"watch"`
	Publish PublishConfig `mapstructure:"publish"`
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// SourcesConfig describes where block lists come from.
type SourcesConfig struct {
	File            string                        `mapstructure:"file"`
	AliasFile       string                        `mapstructure:"alias_file"`
	AllowedPrefixes string                        `mapstructure:"allowed_prefixes"`
	Concurrency     int                           `mapstructure:"concurrency"`
	Timeout         time.Duration                 `mapstructure:"-"`
	Lists           map[string]sources.ListConfig `mapstructure:"-"`
}

// CacheConfig holds settings for last-good copies of downloaded lists.
type CacheConfig struct {
	Dir string `mapstructure:"dir"`
}

// OutputConfig holds result file settings.
type OutputConfig struct {
	Dir            string `mapstructure:"dir"`
	MergedFile     string `mapstructure:"merged_file"`
	DuplicatesFile string `mapstructure:"duplicates_file"`
}

// WatchConfig holds settings for the watch command.
type WatchConfig struct {
	Interval time.Duration `mapstructure:"-"`
}

// PublishConfig holds S3-compatible upload settings.
type PublishConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Endpoint  string        `mapstructure:"endpoint"`
	AccessKey string        `mapstructure:"access_key"`
	SecretKey string        `mapstructure:"secret_key"`
	Bucket    string        `mapstructure:"bucket"`
	Region    string        `mapstructure:"region"`
	Prefix    string        `mapstructure:"prefix"`
	UseSSL    bool          `mapstructure:"use_ssl"`
	Timeout   time.Duration `mapstructure:"-"`
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"sources":   "sources.file",
	"aliases":   "sources.alias_file",
	"prefixes":  "sources.allowed_prefixes",
	"output":    "output.dir",
	"cache-dir": "cache.dir",
	"log-level": "logging.level",
	"log-file":  "logging.file",
	"interval":  "watch.interval",
}

// ValidateLogLevel ensures the user-provided log level matches the supported set.
func ValidateLogLevel(level string) error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(level)] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", level)
	}
	return nil
}

// ValidateFileName ensures name is a plain file name without directories.
func ValidateFileName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("file name is empty")
	}
	if filepath.Base(name) != name || name == "." || name == ".." {
		return fmt.Errorf("invalid file name %s: must not contain a directory", name)
	}
	return nil
}

// Load reads the TOML configuration file and applies flag overrides. The
// path comes from path, then RULEMERGE_CONFIG, then rulemerge.toml in the
// working directory. Only the default file may be absent.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	configPath, explicit := resolvePath(path)
	if _, err := os.Stat(configPath); err == nil || explicit {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	lists, err := parseListConfigs(v)
	if err != nil {
		return nil, err
	}
	cfg.Sources.Lists = lists

	cfg.Sources.Timeout, err = parseDuration(v.GetString("sources.timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid sources.timeout: %w", err)
	}
	cfg.Watch.Interval, err = parseDuration(v.GetString("watch.interval"))
	if err != nil {
		return nil, fmt.Errorf("invalid watch.interval: %w", err)
	}
	cfg.Publish.Timeout, err = parseDuration(v.GetString("publish.timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid publish.timeout: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func resolvePath(path string) (string, bool) {
	if path = strings.TrimSpace(path); path != "" {
		return path, true
	}
	if fromEnv := strings.TrimSpace(os.Getenv(configEnvVar)); fromEnv != "" {
		return fromEnv, true
	}
	return defaultConfigPath, false
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "stdout")
	v.SetDefault("sources.file", "urls.txt")
	v.SetDefault("sources.alias_file", "aliases.txt")
	v.SetDefault("sources.allowed_prefixes", "")
	v.SetDefault("sources.concurrency", 4)
	v.SetDefault("sources.timeout", "10s")
	v.SetDefault("cache.dir", "")
	v.SetDefault("output.dir", "result")
	v.SetDefault("output.merged_file", "merged_rules.txt")
	v.SetDefault("output.duplicates_file", "duplicate_rules.txt")
	v.SetDefault("watch.interval", "24h")
	// Every key needs a default so AutomaticEnv can override it.
	v.SetDefault("publish.enabled", false)
	v.SetDefault("publish.endpoint", "")
	v.SetDefault("publish.access_key", "")
	v.SetDefault("publish.secret_key", "")
	v.SetDefault("publish.bucket", "")
	v.SetDefault("publish.region", "")
	v.SetDefault("publish.prefix", "")
	v.SetDefault("publish.use_ssl", true)
	v.SetDefault("publish.timeout", "30s")
}

func parseDuration(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	return time.ParseDuration(raw)
}

func validateConfig(cfg *Config) error {
	if err := ValidateLogLevel(cfg.Logging.Level); err != nil {
		return err
	}

	if strings.TrimSpace(cfg.Sources.File) == "" && len(cfg.Sources.Lists) == 0 {
		return errors.New("sources.file or sources.lists is required")
	}
	if cfg.Sources.Timeout <= 0 {
		return errors.New("sources.timeout must be > 0")
	}
	if cfg.Sources.Concurrency < 1 {
		return errors.New("sources.concurrency must be >= 1")
	}

	if strings.TrimSpace(cfg.Output.Dir) == "" {
		return errors.New("output.dir is required")
	}
	if err := ValidateFileName(cfg.Output.MergedFile); err != nil {
		return fmt.Errorf("invalid output.merged_file: %w", err)
	}
	if err := ValidateFileName(cfg.Output.DuplicatesFile); err != nil {
		return fmt.Errorf("invalid output.duplicates_file: %w", err)
	}
	if cfg.Output.MergedFile == cfg.Output.DuplicatesFile {
		return errors.New("output.merged_file and output.duplicates_file must differ")
	}

	if cfg.Watch.Interval < 0 {
		return errors.New("watch.interval must be >= 0")
	}

	if cfg.Publish.Enabled {
		if cfg.Publish.Endpoint == "" {
			return errors.New("publish.endpoint is required when publishing is enabled")
		}
		if cfg.Publish.Bucket == "" {
			return errors.New("publish.bucket is required when publishing is enabled")
		}
		if cfg.Publish.Timeout <= 0 {
			return errors.New("publish.timeout must be > 0")
		}
	}

	return nil
}

func parseListConfigs(v *viper.Viper) (map[string]sources.ListConfig, error) {
	raw := v.GetStringMap("sources.lists")
	if len(raw) == 0 {
		return map[string]sources.ListConfig{}, nil
	}

	listConfigs := make(map[string]sources.ListConfig, len(raw))
	for key, value := range raw {
		subMap, ok := value.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("sources.lists.%s must be a table", key)
		}
		var cfg sources.ListConfig
		if err := mapstructure.Decode(subMap, &cfg); err != nil {
			return nil, fmt.Errorf("parse sources.lists.%s: %w", key, err)
		}
		if strings.TrimSpace(cfg.URL) == "" {
			return nil, fmt.Errorf("sources.lists.%s.url is required", key)
		}
		listConfigs[key] = cfg
	}

	return listConfigs, nil
}
