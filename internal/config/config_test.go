package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-daytime/internal/config"
)

// TestConstants_Integrity ensures critical constants are not empty or malformed.
func TestConstants_Integrity(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"AppName", config.AppName},
		{"AppID", config.AppID},
		{"Version", config.Version},
		{"EnvPrefix", config.EnvPrefix},
		{"ICalVersion", config.ICalVersion},
		{"ICalProdid", config.ICalProdid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEmpty(t, tt.value, "Critical constant %s should not be empty", tt.name)
		})
	}
}

// TestDefaults_Sanity checks that default values make sense logically.
func TestDefaults_Sanity(t *testing.T) {
	assert.Greater(t, config.DefaultRefreshInterval, time.Duration(0))
	assert.Greater(t, config.DefaultRateLimit, 0)
	assert.Contains(t, config.SupportedLanguages, config.DefaultLanguage)
	assert.NoError(t, config.ValidatePort(config.DefaultPort))
	assert.True(t, strings.Contains(config.RouteDay, config.RouteParamDay))

	// Outside -serve, logs only go to the cache-dir file.
	assert.NotContains(t, config.FlagDescDebug, "stdout")
}

func TestValidatePort(t *testing.T) {
	tests := []struct {
		name    string
		port    string
		wantErr string
	}{
		{"Valid", "8080", ""},
		{"Lower bound", "1", ""},
		{"Upper bound", "65535", ""},
		{"Empty", "", config.ErrPortRequired},
		{"Not a number", "http", config.ErrPortNumber},
		{"Zero", "0", config.ErrPortRange},
		{"Too large", "70000", config.ErrPortRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := config.ValidatePort(tt.port)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// unsetEnv clears key for the duration of the test and restores it afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func clearSettingsEnv(t *testing.T) {
	for _, k := range []string{"PORT", "LANG", "DEBUG", "REFRESH_INTERVAL", "RATE_LIMIT", "REMINDER"} {
		unsetEnv(t, config.EnvPrefix+"_"+k)
	}
}

func TestLoadSettings_Defaults(t *testing.T) {
	clearSettingsEnv(t)

	s, err := config.LoadSettings(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultPort, s.Port)
	assert.Equal(t, config.DefaultLanguage, s.Language)
	assert.False(t, s.Debug)
	assert.Equal(t, config.DefaultRefreshInterval, s.RefreshInterval)
	assert.Equal(t, config.DefaultRateLimit, s.RateLimit)
	assert.Empty(t, s.Reminder)
}

// TestLoadSettings_IgnoresBareVariables checks that shell and platform variables
// sharing a setting name do not leak into the configuration.
func TestLoadSettings_IgnoresBareVariables(t *testing.T) {
	clearSettingsEnv(t)
	t.Setenv("LANG", "en_US.UTF-8")
	t.Setenv("PORT", "3000")
	t.Setenv("DEBUG", "true")
	t.Setenv("REMINDER", "-PT1M")

	s, err := config.LoadSettings(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultLanguage, s.Language)
	assert.Equal(t, config.DefaultPort, s.Port)
	assert.False(t, s.Debug)
	assert.Empty(t, s.Reminder)
}

func TestLoadSettings_Environment(t *testing.T) {
	clearSettingsEnv(t)
	t.Setenv("DAYTIME_PORT", "19000")
	t.Setenv("DAYTIME_LANG", "fr")
	t.Setenv("DAYTIME_DEBUG", "true")
	t.Setenv("DAYTIME_REFRESH_INTERVAL", "15m")
	t.Setenv("DAYTIME_REMINDER", "-PT5M")

	s, err := config.LoadSettings(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "19000", s.Port)
	assert.Equal(t, "fr", s.Language)
	assert.True(t, s.Debug)
	assert.Equal(t, 15*time.Minute, s.RefreshInterval)
	assert.Equal(t, "-PT5M", s.Reminder)
}

// TestLoadSettings_EnvFile verifies that .env values apply but never override the process environment.
func TestLoadSettings_EnvFile(t *testing.T) {
	clearSettingsEnv(t)
	t.Setenv("DAYTIME_PORT", "19001")

	path := filepath.Join(t.TempDir(), "test.env")
	content := "DAYTIME_LANG=fr\nDAYTIME_PORT=20000\nDAYTIME_RATE_LIMIT=5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), config.FilePermUserRW))

	s, err := config.LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, "fr", s.Language)
	assert.Equal(t, "19001", s.Port, "process environment must take precedence")
	assert.Equal(t, 5, s.RateLimit)
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"Bad port", "DAYTIME_PORT", "99999", config.ErrPortRange},
		{"Bad language", "DAYTIME_LANG", "de", config.ErrLangUnsupported},
		{"Bad interval", "DAYTIME_REFRESH_INTERVAL", "-1m", config.ErrRefreshInterval},
		{"Bad rate", "DAYTIME_RATE_LIMIT", "0", config.ErrRateLimit},
		{"Unparsable duration", "DAYTIME_REFRESH_INTERVAL", "soon", config.ErrEnvConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearSettingsEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := config.LoadSettings(filepath.Join(t.TempDir(), "missing.env"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
