package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the OpenProject connection settings and the import/cleanup tuning parameters.
type Config struct {
	OpenProject OpenProjectConfig `toml:"openproject"`
	Import      ImportConfig      `toml:"import"`
	Cleanup     CleanupConfig     `toml:"cleanup"`
}

type OpenProjectConfig struct {
	URL       string   `toml:"url"`
	APIKey    string   `toml:"api-key"`
	Project   string   `toml:"project"`
	PhaseType string   `toml:"phase-type"`
	TaskType  string   `toml:"task-type"`
	Timeout   Duration `toml:"timeout"`
}

type ImportConfig struct {
	Attempts   int      `toml:"attempts"`
	RetryDelay Duration `toml:"retry-delay"`
	Delay      Duration `toml:"delay"`
}

type CleanupConfig struct {
	Attempts int      `toml:"attempts"`
	PageSize int      `toml:"page-size"`
	Delay    Duration `toml:"delay"`
}

// Duration is a time.Duration that is written as a string e.g. "1.5s" in the TOML file.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}

	*d = Duration(v)

	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// APIKeyEnv is the environment variable that overrides the api-key setting.
const APIKeyEnv = "OPENPROJECT_API_KEY"

// Default returns a Config with the settings used when there is no configuration file.
func Default() *Config {
	return &Config{
		OpenProject: OpenProjectConfig{
			URL:       "",
			APIKey:    "",
			Project:   "",
			PhaseType: "3",
			TaskType:  "1",
			Timeout:   Duration(30 * time.Second),
		},
		Import: ImportConfig{
			Attempts:   3,
			RetryDelay: Duration(2 * time.Second),
			Delay:      Duration(1 * time.Second),
		},
		Cleanup: CleanupConfig{
			Attempts: 3,
			PageSize: 100,
			Delay:    Duration(500 * time.Millisecond),
		},
	}
}

// Load reads the configuration from a TOML file, falling back to the defaults for a missing
// file or missing settings. The API key can be supplied (or overridden) with the
// OPENPROJECT_API_KEY environment variable.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(ExpandPath(path))
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}

		if err == nil {
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("invalid configuration file %v (%w)", path, err)
			}
		}
	}

	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		cfg.OpenProject.APIKey = key
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) validate() error {
	if cfg.Import.Attempts < 1 {
		return fmt.Errorf("invalid import attempts (%v) - must be at least 1", cfg.Import.Attempts)
	}

	if cfg.Cleanup.Attempts < 1 {
		return fmt.Errorf("invalid cleanup attempts (%v) - must be at least 1", cfg.Cleanup.Attempts)
	}

	if cfg.Cleanup.PageSize < 1 {
		return fmt.Errorf("invalid cleanup page-size (%v) - must be at least 1", cfg.Cleanup.PageSize)
	}

	return nil
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}

	return path
}
