package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr           string        `env:"ADDR" envDefault:":5000"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	Debug          bool          `env:"DEBUG" envDefault:"false"`
	DayDuration    time.Duration `env:"DAY_DURATION" envDefault:"2m"`
	VotingDuration time.Duration `env:"VOTING_DURATION" envDefault:"1m"`
	NightDuration  time.Duration `env:"NIGHT_DURATION" envDefault:"45s"`
	MinPlayers     int           `env:"MIN_PLAYERS" envDefault:"6"`
	MaxPlayers     int           `env:"MAX_PLAYERS" envDefault:"20"`
	RewriteURL     string        `env:"REWRITE_URL"`
}

// Load reads a .env file when present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return env.ParseAs[Config]()
}
