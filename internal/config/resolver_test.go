package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestResolve_Precedence_ConfigEnvCLI(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.yaml")
	yaml := `llm:
  provider: openrouter/openai/gpt-4o-mini
  api_key: from-config
enrich:
  delay: 2s
`
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("ROLODEX_LLM", "google/gemini-2.5-flash")
	t.Setenv("OPENROUTER_API_KEY", "")

	resolved, err := Resolve(ResolveOptions{
		ConfigPath: cfgPath,
		CLILLM:     "openrouter/x-ai/grok-4.1-fast",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if resolved.LLM.Source != SourceCLI {
		t.Fatalf("expected llm source cli, got %s", resolved.LLM.Source)
	}
	if resolved.LLM.Value != "openrouter/x-ai/grok-4.1-fast" {
		t.Fatalf("unexpected llm value %q", resolved.LLM.Value)
	}
	if resolved.Delay.Source != SourceConfig {
		t.Fatalf("expected delay from config, got %s", resolved.Delay.Source)
	}

	key := resolved.APIKeyForProvider("openrouter/x-ai/grok-4.1-fast")
	if key.Value != "from-config" {
		t.Fatalf("expected config api key, got %q", key.Value)
	}
}

func TestResolve_EnvBeatsConfig(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("enrich:\n  delay: 5s\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("ROLODEX_DELAY", "250ms")

	resolved, err := Resolve(ResolveOptions{ConfigPath: cfgPath})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Delay.Source != SourceEnv {
		t.Fatalf("expected delay from env, got %s", resolved.Delay.Source)
	}
	d, err := resolved.EnrichDelay()
	if err != nil {
		t.Fatalf("EnrichDelay: %v", err)
	}
	if d != 250*time.Millisecond {
		t.Fatalf("unexpected delay %s", d)
	}
}

func TestResolve_MissingConfigFileIsFine(t *testing.T) {
	resolved, err := Resolve(ResolveOptions{
		ConfigPath: filepath.Join(t.TempDir(), "nope.yaml"),
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Delay.Source != SourceDefault {
		t.Fatalf("expected default delay, got %s", resolved.Delay.Source)
	}
	d, err := resolved.EnrichDelay()
	if err != nil {
		t.Fatalf("EnrichDelay: %v", err)
	}
	if d != DefaultDelay {
		t.Fatalf("unexpected default delay %s", d)
	}
}

func TestEnrichDelay_Formats(t *testing.T) {
	for _, tc := range []struct {
		value string
		want  time.Duration
		err   bool
	}{
		{"1s", time.Second, false},
		{"750ms", 750 * time.Millisecond, false},
		{"500", 500 * time.Millisecond, false}, // bare millisecond count
		{"", DefaultDelay, false},
		{"-1s", 0, true},
		{"soon", 0, true},
	} {
		r := ResolvedConfig{Delay: ResolvedValue{Value: tc.value, From: "test"}}
		d, err := r.EnrichDelay()
		if tc.err {
			if err == nil {
				t.Errorf("%q: expected error", tc.value)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error %v", tc.value, err)
			continue
		}
		if d != tc.want {
			t.Errorf("%q: got %s, want %s", tc.value, d, tc.want)
		}
	}
}

func TestAPIKeyForProvider_EnvKeys(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")

	resolved, err := Resolve(ResolveOptions{
		ConfigPath: filepath.Join(t.TempDir(), "nope.yaml"),
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if got := resolved.APIKeyForProvider("google/gemini-2.5-flash"); got.Value != "env-key" {
		t.Fatalf("expected env key, got %q", got.Value)
	}
	if got := resolved.APIKeyForProvider("openrouter"); got.Value != "" {
		t.Fatalf("expected no key for openrouter, got %q", got.Value)
	}
}
