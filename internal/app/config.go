package app

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

// Config holds everything an App instance needs to run. Scene location and
// logging knobs can come from the environment; CLI flags override them.
type Config struct {
	ScenePath    string `env:"NODEFACADE_SCENE"`
	LuaScenePath string `env:"NODEFACADE_LUA_SCENE"`

	LogFormat string `env:"NODEFACADE_LOG_FORMAT" envDefault:"text"`
	LogLevel  string `env:"NODEFACADE_LOG_LEVEL" envDefault:"info"`

	// Command and Args are the operation to perform against the scene,
	// e.g. Command "get" with Args ["/obj/geo1", "scale"].
	Command string
	Args    []string
}

// FromEnv returns a Config populated from environment variables.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewConfig validates a Config assembled from the environment and CLI.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ScenePath == "" && cfg.LuaScenePath == "" {
		return nil, errors.New("a scene is required: set --scene or --lua-scene")
	}
	if cfg.ScenePath != "" && cfg.LuaScenePath != "" {
		return nil, errors.New("--scene and --lua-scene are mutually exclusive")
	}
	if cfg.Command == "" {
		return nil, errors.New("a command is required")
	}
	return &cfg, nil
}
