package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileDefaults(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Model != DefaultModel {
		t.Errorf("model=%q", cfg.Model)
	}
	if cfg.Voice != DefaultVoice {
		t.Errorf("voice=%q", cfg.Voice)
	}
	if cfg.InputRate != DefaultInputRate {
		t.Errorf("input_rate=%d", cfg.InputRate)
	}
	if cfg.APIKey != "" {
		t.Errorf("api_key=%q, want empty", cfg.APIKey)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "api_key: from-file\nmodel: models/custom\nvoice: Puck\ninput_rate: 16000\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv(EnvAPIKey, "from-env")
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIKey != "from-file" {
		t.Errorf("api_key=%q, file must win over env", cfg.APIKey)
	}
	if cfg.Model != "models/custom" || cfg.Voice != "Puck" || cfg.InputRate != 16000 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoadFileEnvFallback(t *testing.T) {
	t.Setenv(EnvAPIKey, "env-key")
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIKey != "env-key" {
		t.Errorf("api_key=%q, want env fallback", cfg.APIKey)
	}
}

func TestLoadFileBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":\n  - ["), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("expected parse error")
	}
}
