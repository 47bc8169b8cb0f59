package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/firefly-engineering/repolens/internal/catalog"
)

const (
	// FileName is the config file base name searched for without an explicit path.
	FileName = "repolens"
	// EnvPrefix prefixes environment overrides (REPOLENS_LLM_MODEL).
	EnvPrefix = "REPOLENS"
)

// LLM providers.
const (
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

var defaultModels = map[string]string{
	ProviderOllama: "llama3.2:latest",
	ProviderGemini: "gemini-2.0-flash",
}

// DefaultModel returns the model used for provider when none is configured.
func DefaultModel(provider string) string {
	return defaultModels[provider]
}

// Config is the full repolens configuration.
type Config struct {
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Readme   ReadmeConfig   `mapstructure:"readme"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// AnalysisConfig tunes the repository walk.
type AnalysisConfig struct {
	Workers          int          `mapstructure:"workers"`
	SampleFiles      int          `mapstructure:"sample_files"`
	SampleBytes      int          `mapstructure:"sample_bytes"`
	MaxManifestBytes int64        `mapstructure:"max_manifest_bytes"`
	Insights         bool         `mapstructure:"insights"`
	ExtraIgnore      []IgnoreRule `mapstructure:"extra_ignore"`
}

// IgnoreRule is an additional ignore pattern declared in the config file.
type IgnoreRule struct {
	Pattern string `mapstructure:"pattern"`
	Reason  string `mapstructure:"reason"`
	Kind    string `mapstructure:"kind"`
}

// CatalogConfig lists catalog extension files merged over the embedded data.
type CatalogConfig struct {
	Files []string `mapstructure:"files"`
}

// LLMConfig selects and configures the README generation backend.
type LLMConfig struct {
	Provider       string        `mapstructure:"provider"`
	Model          string        `mapstructure:"model"`
	Host           string        `mapstructure:"host"`
	APIKeyEnv      string        `mapstructure:"api_key_env"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxPromptChars int           `mapstructure:"max_prompt_chars"`
}

// ReadmeConfig controls the readme command.
type ReadmeConfig struct {
	Output       string `mapstructure:"output"`
	CloneDir     string `mapstructure:"clone_dir"`
	KeepClone    bool   `mapstructure:"keep_clone"`
	MaxKeyFiles  int    `mapstructure:"max_key_files"`
	MaxFileBytes int    `mapstructure:"max_file_bytes"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("analysis.workers", runtime.NumCPU())
	v.SetDefault("analysis.sample_files", 10)
	v.SetDefault("analysis.sample_bytes", 4096)
	v.SetDefault("analysis.max_manifest_bytes", 1<<20)
	v.SetDefault("analysis.insights", true)
	v.SetDefault("analysis.extra_ignore", []IgnoreRule{})
	v.SetDefault("catalog.files", []string{})

	v.SetDefault("llm.provider", ProviderOllama)
	v.SetDefault("llm.model", DefaultModel(ProviderOllama))
	v.SetDefault("llm.host", "http://localhost:11434")
	v.SetDefault("llm.api_key_env", "GEMINI_API_KEY")
	v.SetDefault("llm.timeout", 15*time.Minute)
	v.SetDefault("llm.max_prompt_chars", 40000)

	v.SetDefault("readme.output", "README.md")
	v.SetDefault("readme.clone_dir", "cloned_repo")
	v.SetDefault("readme.keep_clone", false)
	v.SetDefault("readme.max_key_files", 15)
	v.SetDefault("readme.max_file_bytes", 3000)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// SearchPaths returns the directories searched for repolens.toml.
func SearchPaths() []string {
	paths := []string{"."}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "repolens"))
	}
	return paths
}

// Default returns the built-in configuration with environment overrides
// applied and no config file read.
func Default() *Config {
	cfg, err := decode(newViper())
	if err != nil {
		panic(fmt.Sprintf("config: built-in defaults do not decode: %v", err))
	}
	return cfg
}

// Load reads configuration. An explicit path must exist; without one the
// search paths are tried and a missing file is not an error. Environment
// variables override file values.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		for _, p := range SearchPaths() {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that the Config is usable.
func (c *Config) Validate() error {
	if c.Analysis.Workers < 1 {
		return fmt.Errorf("analysis.workers must be at least 1, got %d", c.Analysis.Workers)
	}
	if c.Analysis.SampleFiles < 0 {
		return fmt.Errorf("analysis.sample_files cannot be negative")
	}
	if c.Analysis.SampleBytes < 1 {
		return fmt.Errorf("analysis.sample_bytes must be positive")
	}
	if c.Analysis.MaxManifestBytes < 1 {
		return fmt.Errorf("analysis.max_manifest_bytes must be positive")
	}
	for _, r := range c.Analysis.ExtraIgnore {
		if err := catalog.ValidateIgnoreRule(r.rule()); err != nil {
			return fmt.Errorf("analysis.extra_ignore: %w", err)
		}
	}

	switch c.LLM.Provider {
	case ProviderOllama, ProviderGemini:
	default:
		return fmt.Errorf("llm.provider must be %q or %q, got %q", ProviderOllama, ProviderGemini, c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be positive")
	}
	if c.LLM.Provider == ProviderGemini && c.LLM.APIKeyEnv == "" {
		return fmt.Errorf("llm.api_key_env is required for the gemini provider")
	}

	if c.Readme.Output == "" {
		return fmt.Errorf("readme.output is required")
	}
	if c.Readme.CloneDir == "" {
		return fmt.Errorf("readme.clone_dir is required")
	}
	if c.Readme.MaxKeyFiles < 1 {
		return fmt.Errorf("readme.max_key_files must be at least 1")
	}
	return nil
}

func (r IgnoreRule) rule() catalog.IgnoreRule {
	reason := r.Reason
	if reason == "" {
		reason = "configured"
	}
	return catalog.IgnoreRule{Pattern: r.Pattern, Reason: reason, Kind: catalog.Kind(r.Kind)}
}

// IgnoreRules returns the extra ignore rules in catalog form.
func (c *AnalysisConfig) IgnoreRules() []catalog.IgnoreRule {
	rules := make([]catalog.IgnoreRule, len(c.ExtraIgnore))
	for i, r := range c.ExtraIgnore {
		rules[i] = r.rule()
	}
	return rules
}

// LoadCatalog returns the embedded catalog, extended by the configured files.
func (c *Config) LoadCatalog() (*catalog.Catalog, error) {
	if len(c.Catalog.Files) == 0 {
		return catalog.Default(), nil
	}
	return catalog.Load(c.Catalog.Files...)
}
