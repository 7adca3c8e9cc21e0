package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Settings holds the runtime configuration read from DAYTIME_* environment variables.
type Settings struct {
	Port            string        `envconfig:"DAYTIME_PORT" default:"18090"`
	Language        string        `envconfig:"DAYTIME_LANG" default:"en"`
	Debug           bool          `envconfig:"DAYTIME_DEBUG" default:"false"`
	RefreshInterval time.Duration `envconfig:"DAYTIME_REFRESH_INTERVAL" default:"1h"`
	RateLimit       int           `envconfig:"DAYTIME_RATE_LIMIT" default:"60"`

	// Reminder is an ISO8601 duration used as VALARM trigger (e.g. "-PT5M"). Empty disables alarms.
	Reminder string `envconfig:"DAYTIME_REMINDER"`
}

// LoadSettings seeds the environment from the given env files (default: .env in the
// working directory) and decodes the DAYTIME_* variables.
// Missing env files are ignored; variables already set in the process win.
func LoadSettings(envFiles ...string) (*Settings, error) {
	if len(envFiles) == 0 {
		envFiles = []string{EnvFileName}
	}

	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				slog.Debug(MsgEnvFileSkip,
					LogKeyComponent, CompConfig,
					LogKeyFile, file,
				)
				continue
			}
			return nil, fmt.Errorf("%s: %w", ErrEnvFile, err)
		}
	}

	// Keys are fully qualified in the tags so bare LANG, PORT or DEBUG are never read.
	var s Settings
	if err := envconfig.Process("", &s); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrEnvConfig, err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that the settings can be used to start the application.
func (s *Settings) Validate() error {
	if err := ValidatePort(s.Port); err != nil {
		return err
	}
	if !slices.Contains(SupportedLanguages, s.Language) {
		return fmt.Errorf("%s: %q", ErrLangUnsupported, s.Language)
	}
	if s.RefreshInterval <= 0 {
		return errors.New(ErrRefreshInterval)
	}
	if s.RateLimit <= 0 {
		return errors.New(ErrRateLimit)
	}
	return nil
}

// ValidatePort checks that port is a number within the TCP range.
func ValidatePort(port string) error {
	if port == "" {
		return errors.New(ErrPortRequired)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrPortNumber, err)
	}
	if n < MinPort || n > MaxPort {
		return errors.New(ErrPortRange)
	}
	return nil
}
