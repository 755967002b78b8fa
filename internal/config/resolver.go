// Package config resolves rolodex settings from config file, environment,
// and CLI flags, tracking where each value came from. Precedence, lowest to
// highest: built-in default, config file, environment, CLI flag.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type ValueSource string

const (
	SourceUnknown ValueSource = "unknown"
	SourceConfig  ValueSource = "config"
	SourceEnv     ValueSource = "env"
	SourceCLI     ValueSource = "cli"
	SourceDefault ValueSource = "default"
)

// ResolvedValue is a setting plus its provenance.
type ResolvedValue struct {
	Value  string      `json:"value"`
	Source ValueSource `json:"source"`
	From   string      `json:"from,omitempty"`
}

// ResolveOptions carries CLI-level overrides into resolution.
type ResolveOptions struct {
	ConfigPath string
	CLILLM     string // --llm provider/model
	CLIDelay   string // --delay duration (e.g. "1s", "500ms")
}

// ResolvedConfig is the fully resolved settings set.
type ResolvedConfig struct {
	ConfigPath string `json:"config_path"`

	LLM   ResolvedValue `json:"llm"`
	Delay ResolvedValue `json:"delay"`

	LLMKeys map[string]ResolvedValue `json:"llm_keys,omitempty"`
}

type fileConfig struct {
	LLM struct {
		Provider string `yaml:"provider"`
		APIKey   string `yaml:"api_key"`
	} `yaml:"llm"`
	Enrich struct {
		Delay string `yaml:"delay"`
	} `yaml:"enrich"`
}

// DefaultDelay is the inter-record pacing delay when nothing overrides it.
const DefaultDelay = time.Second

func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".rolodex", "config.yaml")
}

// Resolve loads the config file (if present) and layers env and CLI values
// over it.
func Resolve(opts ResolveOptions) (ResolvedConfig, error) {
	path := strings.TrimSpace(opts.ConfigPath)
	if path == "" {
		path = DefaultConfigPath()
	}

	out := ResolvedConfig{
		ConfigPath: path,
		Delay:      ResolvedValue{Value: DefaultDelay.String(), Source: SourceDefault, From: "built-in default"},
		LLMKeys:    map[string]ResolvedValue{},
	}

	cfg, err := loadConfig(path)
	if err != nil {
		return out, err
	}

	if cfg != nil {
		apply(&out.LLM, cfg.LLM.Provider, SourceConfig, path)
		apply(&out.Delay, cfg.Enrich.Delay, SourceConfig, path)

		if key := strings.TrimSpace(cfg.LLM.APIKey); key != "" {
			provider := providerOf(cfg.LLM.Provider)
			if provider == "" {
				provider = "default"
			}
			out.LLMKeys[provider] = ResolvedValue{Value: key, Source: SourceConfig, From: path}
		}
	}

	applyEnv(&out.LLM, "ROLODEX_LLM")
	applyEnv(&out.Delay, "ROLODEX_DELAY")

	for env, provider := range map[string]string{
		"OPENROUTER_API_KEY": "openrouter",
		"GEMINI_API_KEY":     "google",
		"GOOGLE_API_KEY":     "google",
	} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			out.LLMKeys[provider] = ResolvedValue{Value: v, Source: SourceEnv, From: env}
		}
	}

	apply(&out.LLM, opts.CLILLM, SourceCLI, "--llm")
	apply(&out.Delay, opts.CLIDelay, SourceCLI, "--delay")

	if _, err := out.EnrichDelay(); err != nil {
		return out, err
	}

	return out, nil
}

// EnrichDelay parses the resolved pacing delay. Accepts Go durations ("1s",
// "750ms") and bare millisecond counts ("1000").
func (r ResolvedConfig) EnrichDelay() (time.Duration, error) {
	v := strings.TrimSpace(r.Delay.Value)
	if v == "" {
		return DefaultDelay, nil
	}
	if ms, err := strconv.Atoi(v); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("negative delay %q (from %s)", v, r.Delay.From)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid delay %q (from %s): %w", v, r.Delay.From, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative delay %q (from %s)", v, r.Delay.From)
	}
	return d, nil
}

// APIKeyForProvider returns the key for a "provider" or "provider/model" value.
func (r ResolvedConfig) APIKeyForProvider(providerOrModel string) ResolvedValue {
	provider := providerOf(providerOrModel)
	if provider == "" {
		return ResolvedValue{}
	}
	if v, ok := r.LLMKeys[provider]; ok && strings.TrimSpace(v.Value) != "" {
		return v
	}
	if v, ok := r.LLMKeys["default"]; ok && strings.TrimSpace(v.Value) != "" {
		return v
	}
	return ResolvedValue{}
}

func providerOf(providerOrModel string) string {
	v := strings.ToLower(strings.TrimSpace(providerOrModel))
	if v == "" {
		return ""
	}
	if idx := strings.Index(v, "/"); idx > 0 {
		return v[:idx]
	}
	return v
}

func apply(dst *ResolvedValue, raw string, source ValueSource, from string) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return
	}
	*dst = ResolvedValue{Value: v, Source: source, From: from}
}

func applyEnv(dst *ResolvedValue, envKey string) {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		*dst = ResolvedValue{Value: v, Source: SourceEnv, From: envKey}
	}
}

func loadConfig(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}
