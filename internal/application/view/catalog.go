package view

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Catalog holds the translated view and action labels
type Catalog struct {
	bundle        *i18n.Bundle
	defaultLocale string
}

// NewCatalog loads every embedded locale file
func NewCatalog(defaultLocale string) (*Catalog, error) {
	if defaultLocale == "" {
		defaultLocale = language.English.String()
	}

	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, e.Name()); err != nil {
			return nil, fmt.Errorf("parse %s: %w", e.Name(), err)
		}
	}

	return &Catalog{bundle: bundle, defaultLocale: defaultLocale}, nil
}

// Languages lists the loaded locales
func (c *Catalog) Languages() []language.Tag {
	return c.bundle.LanguageTags()
}

// T translates messageID for locale, falling back to the default locale and
// then to the id itself.
func (c *Catalog) T(locale, messageID string, data map[string]any) string {
	l := i18n.NewLocalizer(c.bundle, locale, c.defaultLocale)

	cfg := &i18n.LocalizeConfig{MessageID: messageID}
	if data != nil {
		cfg.TemplateData = data
	}

	msg, err := l.Localize(cfg)
	if err != nil {
		return messageID
	}
	return msg
}
