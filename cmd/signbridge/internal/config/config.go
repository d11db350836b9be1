// Package config loads the signbridge CLI configuration.
//
// Configuration lives in the OS config directory
// (e.g. ~/.config/signbridge/config.yaml on Linux) and can be
// overridden by environment variables. The API key falls back to
// GEMINI_API_KEY when the file does not set one.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// Default session parameters.
const (
	DefaultModel     = "models/gemini-2.0-flash-exp"
	DefaultVoice     = "Aoede"
	DefaultInputRate = 48000

	DefaultSystemInstruction = "You are a real-time interpreter. Watch the " +
		"camera and listen to the microphone, and speak a clear, faithful " +
		"interpretation of what the person is communicating. Keep your " +
		"responses short and conversational."
)

// EnvAPIKey is the environment fallback for the credential.
const EnvAPIKey = "GEMINI_API_KEY"

// Config is the on-disk configuration.
type Config struct {
	// APIKey is the Gemini credential. Required to start a session.
	APIKey string `yaml:"api_key"`

	// Model is the live model resource name.
	Model string `yaml:"model"`

	// Voice selects the spoken response voice.
	Voice string `yaml:"voice"`

	// SystemInstruction sets the interpreter persona.
	SystemInstruction string `yaml:"system_instruction"`

	// InputRate is the microphone capture rate in Hz; audio is
	// downsampled to the 16kHz transport rate.
	InputRate int `yaml:"input_rate"`

	// VideoDir, when set, cycles camera frames from image files in a
	// directory instead of the synthetic test pattern.
	VideoDir string `yaml:"video_dir"`
}

// Dir returns the configuration directory.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: locate config dir: %w", err)
	}
	return filepath.Join(base, "signbridge"), nil
}

// Path returns the configuration file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config file, applies defaults, and fills the API key
// from the environment when the file leaves it empty. A missing file is
// not an error; defaults (and the environment) apply.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads a specific config file.
func LoadFile(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults only.
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.APIKey == "" {
		c.APIKey = os.Getenv(EnvAPIKey)
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Voice == "" {
		c.Voice = DefaultVoice
	}
	if c.SystemInstruction == "" {
		c.SystemInstruction = DefaultSystemInstruction
	}
	if c.InputRate == 0 {
		c.InputRate = DefaultInputRate
	}
}

// Save writes the config file, creating the directory as needed.
func Save(cfg *Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("config: create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
