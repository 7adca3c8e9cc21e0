// Package i18n provides localized labels and messages for the periods of the day.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-daytime/internal/config"
	"github.com/tartampluch/go-daytime/internal/day"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator resolves translation keys for a single language.
// It is safe for concurrent use once constructed.
type Translator struct {
	lang      string
	languages []string
	localizer *i18n.Localizer
}

// NewTranslator loads the embedded catalogues and binds a localizer to lang.
// Loading problems are logged; the translator then falls back to the canonical texts.
func NewTranslator(lang string) *Translator {
	if lang == "" {
		lang = config.DefaultLanguage
	}

	bundle, detected := loadBundle()

	return &Translator{
		lang:      lang,
		languages: detected,
		localizer: i18n.NewLocalizer(bundle, lang),
	}
}

func loadBundle() (*i18n.Bundle, []string) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return bundle, nil
	}

	var detectedLangs []string

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}

		detectedLangs = append(detectedLangs, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
			config.LogKeyFile, name,
		)
	}

	return bundle, detectedLangs
}

// Language returns the language the translator was created for.
func (t *Translator) Language() string {
	return t.lang
}

// SupportedLanguages lists the languages found in the embedded catalogues.
func (t *Translator) SupportedLanguages() []string {
	return append([]string(nil), t.languages...)
}

// Message returns the localized greeting for d, or d.Message() when no translation exists.
func (t *Translator) Message(d day.Day) string {
	return t.lookup(MessageKey(d), d.Message())
}

// Label returns the localized display name for d, or d.String() when no translation exists.
func (t *Translator) Label(d day.Day) string {
	return t.lookup(LabelKey(d), d.String())
}

// FeedName returns the localized calendar name.
func (t *Translator) FeedName() string {
	return t.lookup(config.TKeyFeedName, config.ICalCalName)
}

// MessageKey returns the catalogue key holding the greeting for d.
func MessageKey(d day.Day) string {
	return fmt.Sprintf(config.TKeyFormatDayMessage, d)
}

// LabelKey returns the catalogue key holding the display name for d.
func LabelKey(d day.Day) string {
	return fmt.Sprintf(config.TKeyFormatDayLabel, d)
}

func (t *Translator) lookup(key, fallback string) string {
	if t == nil || t.localizer == nil {
		return fallback
	}
	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{MessageID: key})
	if err != nil || msg == "" {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return fallback
	}
	return msg
}
