package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config is read from YUT_* environment variables, optionally seeded from
// a .env file.
type Config struct {
	KnightsPerPlayer int           `env:"YUT_KNIGHTS" envDefault:"4" validate:"gte=1,lte=8"`
	Defenders        int           `env:"YUT_DEFENDERS" envDefault:"1" validate:"gte=0,ltfield=KnightsPerPlayer"`
	TurnDuration     time.Duration `env:"YUT_TURN_DURATION" envDefault:"120s" validate:"gt=0"`
	BattleExtension  time.Duration `env:"YUT_BATTLE_EXTENSION" envDefault:"60s" validate:"gte=0"`
	AckTimeout       time.Duration `env:"YUT_ACK_TIMEOUT" envDefault:"0s" validate:"gte=0"`
	GameTimeout      time.Duration `env:"YUT_GAME_TIMEOUT" envDefault:"1m" validate:"gt=0"`
	Games            int           `env:"YUT_GAMES" envDefault:"10" validate:"gte=1"`
	Parallel         int           `env:"YUT_PARALLEL" envDefault:"4" validate:"gte=1"`
	Seed             uint64        `env:"YUT_SEED" envDefault:"1"`
	LogLevel         string        `env:"YUT_LOG_LEVEL" envDefault:"info" validate:"oneof=trace debug info warn error"`
	LogFormat        string        `env:"YUT_LOG_FORMAT" envDefault:"console" validate:"oneof=console json"`
	OutDir           string        `env:"YUT_OUT_DIR" envDefault:"experiments/results" validate:"required"`
}

// Load reads the given .env files (missing files are skipped), then the
// environment, and validates the result. Variables already set in the
// environment win over the files.
func Load(files ...string) (Config, error) {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SetupLogger points the global zerolog logger at w.
func SetupLogger(level, format string, w io.Writer) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)

	if format == "json" {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
	}
	return nil
}
