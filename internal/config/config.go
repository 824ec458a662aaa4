// /internal/config/config.go
package config

import (
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}
}

// Config is the full environment surface of the bot.
type Config struct {
	Token       string  `env:"DISCORD_BOT_TOKEN,required,notEmpty"`
	Prefix      string  `env:"DISCORD_BOT_PREFIX" envDefault:"🦑"`
	Lang        string  `env:"DISCORD_BOT_LANG" envDefault:"ja"`
	MaxTextLen  int     `env:"DISCORD_BOT_TEXT_LEN" envDefault:"40"`
	TTSEndpoint string  `env:"TTS_ENDPOINT" envDefault:"http://translate.google.com/translate_tts"`
	Volume      float64 `env:"TTS_VOLUME" envDefault:"0.8"`
	StoragePath string  `env:"STORAGE_PATH" envDefault:"datastore.json"`
}

// New parses configuration from the environment.
func New() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
