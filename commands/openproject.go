package commands

import (
	"fmt"
	"strings"

	"github.com/xinotrix/openproject-app-sheets/config"
	"github.com/xinotrix/openproject-app-sheets/openproject"
)

func loadConfig(options *Options) (*config.Config, error) {
	file := options.Config
	if file == "" {
		file = DEFAULT_CONFIG
	}

	cfg, err := config.Load(file)
	if err != nil {
		return nil, fmt.Errorf("could not load configuration (%v)", err)
	}

	if options.Debug {
		debugf("configuration %v  url:%v  project:%v  phase-type:%v  task-type:%v",
			file, cfg.OpenProject.URL, cfg.OpenProject.Project, cfg.OpenProject.PhaseType, cfg.OpenProject.TaskType)
	}

	return cfg, nil
}

func newClient(cfg *config.Config, debug bool) (*openproject.Client, error) {
	if strings.TrimSpace(cfg.OpenProject.URL) == "" {
		return nil, fmt.Errorf("missing OpenProject URL - set 'url' in the [openproject] section of the configuration file")
	}

	if strings.TrimSpace(cfg.OpenProject.APIKey) == "" {
		return nil, fmt.Errorf("missing OpenProject API key - set 'api-key' in the configuration file or %v", config.APIKeyEnv)
	}

	return openproject.NewClient(cfg.OpenProject.URL, cfg.OpenProject.APIKey, cfg.OpenProject.Timeout.Duration(), debug)
}
