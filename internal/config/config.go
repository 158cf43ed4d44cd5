// /internal/config/config.go
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config is loaded from the environment (optionally seeded by a .env file).
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required,notEmpty"`
	GuildID      string `env:"GUILD_ID"`

	// Default channel bindings used when a guild has no stored mapping.
	CommandChannelID string `env:"COMMAND_CHANNEL_ID"`
	VoiceChannelID   string `env:"VOICE_CHANNEL_ID"`
	StatusChannelID  string `env:"STATUS_CHANNEL_ID"`

	VideosDir   string `env:"VIDEOS_DIR" envDefault:"./videos"`
	TempDir     string `env:"TEMP_DIR"`
	StoragePath string `env:"STORAGE_PATH" envDefault:"datastore.json"`
	CatalogPath string `env:"CATALOG_PATH" envDefault:"streambot.db"`

	FFmpegPath  string `env:"FFMPEG_PATH" envDefault:"ffmpeg"`
	FFprobePath string `env:"FFPROBE_PATH" envDefault:"ffprobe"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE" envDefault:"streambot.log"`

	Stream   StreamConfig
	Jellyfin JellyfinConfig
	Server   ServerConfig
}

// StreamConfig holds the encoding parameters handed to the transcode pipeline.
type StreamConfig struct {
	Width          int    `env:"STREAM_WIDTH" envDefault:"1280"`
	Height         int    `env:"STREAM_HEIGHT" envDefault:"720"`
	FPS            int    `env:"STREAM_FPS" envDefault:"30"`
	BitrateKbps    int    `env:"STREAM_BITRATE_KBPS" envDefault:"2000"`
	MaxBitrateKbps int    `env:"STREAM_MAX_BITRATE_KBPS" envDefault:"2500"`
	Codec          string `env:"STREAM_CODEC" envDefault:"libx264"`
	Preset         string `env:"STREAM_H26X_PRESET" envDefault:"ultrafast"`
	HWAccel        bool   `env:"HW_ACCEL_ENABLED" envDefault:"true"`
}

// Resolution returns the configured target as a "WxH" string, the form
// renditions advertise in stream manifests.
func (s StreamConfig) Resolution() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

type JellyfinConfig struct {
	URL    string `env:"JELLYFIN_URL"`
	APIKey string `env:"JELLYFIN_API_KEY"`
}

type ServerConfig struct {
	Enabled  bool   `env:"SERVER_ENABLED" envDefault:"false"`
	Port     int    `env:"SERVER_PORT" envDefault:"8080"`
	Username string `env:"SERVER_USERNAME" envDefault:"admin"`
	Password string `env:"SERVER_PASSWORD" envDefault:"admin"`
}

// New loads configuration from .env and the process environment.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, falling back to system environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
