package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port              int    `envconfig:"PORT" default:"8080"`
	LogLevel          string `envconfig:"LOG_LEVEL" default:"info"`
	Version           string `envconfig:"VERSION" default:"dev"`
	DatabaseURL       string `envconfig:"DATABASE_URL" default:"sqlite://data/rosters.db"`
	DiscordToken      string `envconfig:"DISCORD_TOKEN" required:"true"`
	ClientID          string `envconfig:"CLIENT_ID" required:"true"`
	GuildID           string `envconfig:"GUILD_ID" required:"true"`
	RostersChannelID  string `envconfig:"ROSTERS_CHANNEL_ID" default:""`
	CaptainsChannelID string `envconfig:"CAPTAINS_CHANNEL_ID" default:""`
	RosterFile        string `envconfig:"ROSTER_FILE" default:"roster.yaml"`
	BoardSyncInterval int    `envconfig:"BOARD_SYNC_INTERVAL" default:"300"`
	AdminAPIKeyHash   string `envconfig:"ADMIN_API_KEY_HASH" default:""`
}

// Load reads configuration from environment variables into a Config struct.
// A .env file in the working directory, when present, seeds variables that are not already set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SyncInterval returns the periodic board pass interval; zero disables it.
func (c *Config) SyncInterval() time.Duration {
	if c.BoardSyncInterval <= 0 {
		return 0
	}
	return time.Duration(c.BoardSyncInterval) * time.Second
}
