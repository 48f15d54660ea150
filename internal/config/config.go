package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the server configuration, loadable from a YAML file with env
// overrides applied afterwards.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Game   GameConfig   `yaml:"game"`

	// Words replaces the built-in guessing-word corpus when non-empty.
	Words []string `yaml:"words"`
}

// ServerConfig holds the HTTP/WebSocket listener settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// GameConfig holds the session timing knobs. All durations are fixed by the
// game design but kept configurable so tests can shrink them.
type GameConfig struct {
	CountdownSec    int `yaml:"countdown_sec"`     // pre-round countdown
	WordGraceSec    int `yaml:"word_grace_sec"`    // word-selection window
	LeaderboardSec  int `yaml:"leaderboard_sec"`   // round leaderboard display
	ReconnectSec    int `yaml:"reconnect_sec"`     // disconnect grace period
	RoomMaxAgeHours int `yaml:"room_max_age_hours"` // empty-room sweep threshold
}

func (c GameConfig) CountdownDuration() time.Duration {
	return time.Duration(c.CountdownSec) * time.Second
}

func (c GameConfig) WordGraceDuration() time.Duration {
	return time.Duration(c.WordGraceSec) * time.Second
}

func (c GameConfig) LeaderboardDuration() time.Duration {
	return time.Duration(c.LeaderboardSec) * time.Second
}

func (c GameConfig) ReconnectGraceDuration() time.Duration {
	return time.Duration(c.ReconnectSec) * time.Second
}

func (c GameConfig) RoomMaxAge() time.Duration {
	return time.Duration(c.RoomMaxAgeHours) * time.Hour
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a YAML config file and applies defaults for any omitted field.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// FromEnv loads the file named by DRAWDASH_CONFIG if set, otherwise the
// defaults, then applies PORT on top.
func FromEnv() (*Config, error) {
	var cfg *Config
	if path := os.Getenv("DRAWDASH_CONFIG"); path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = Default()
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Addr = ":" + port
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Game.CountdownSec == 0 {
		c.Game.CountdownSec = 5
	}
	if c.Game.WordGraceSec == 0 {
		c.Game.WordGraceSec = 5
	}
	if c.Game.LeaderboardSec == 0 {
		c.Game.LeaderboardSec = 5
	}
	if c.Game.ReconnectSec == 0 {
		c.Game.ReconnectSec = 150
	}
	if c.Game.RoomMaxAgeHours == 0 {
		c.Game.RoomMaxAgeHours = 24
	}
}
