// Package i18n resolves localization keys for widget labels and property
// descriptors.
//
// Keys follow the source-string convention: the English text is the key, so
// an absent catalog (or an absent entry) degrades to the key itself and the
// service stays fully usable without any files on disk.
package i18n

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/reportdeck/backend/internal/infrastructure/config"
	"github.com/reportdeck/backend/internal/infrastructure/logging"

	"go.uber.org/zap"
)

// Translator resolves one localization key to display text.
type Translator interface {
	Translate(key string) string
}

// Passthrough returns every key unchanged.
type Passthrough struct{}

// Translate returns the key itself.
func (Passthrough) Translate(key string) string { return key }

// Catalog is a flat key -> text mapping loaded from a YAML file.
type Catalog struct {
	locale  string
	entries map[string]string
}

// NewCatalog loads "<dir>/<locale>.yaml" (or .yml).
func NewCatalog(dir, locale string) (*Catalog, error) {
	path := filepath.Join(dir, locale+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			alt := filepath.Join(dir, locale+".yml")
			if data, err = os.ReadFile(alt); err != nil {
				return nil, fmt.Errorf("i18n: no catalog for locale %q in %s", locale, dir)
			}
		} else {
			return nil, fmt.Errorf("i18n: read catalog: %w", err)
		}
	}

	entries := make(map[string]string)
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("i18n: parse catalog for %q: %w", locale, err)
	}

	return &Catalog{locale: locale, entries: entries}, nil
}

// Translate returns the catalog entry, or the key when absent.
func (c *Catalog) Translate(key string) string {
	if text, ok := c.entries[key]; ok {
		return text
	}
	return key
}

// Locale returns the catalog's locale tag.
func (c *Catalog) Locale() string { return c.locale }

// Open builds the configured translator. An empty catalog directory selects
// passthrough; a broken catalog logs a warning and falls back rather than
// failing startup.
func Open(cfg config.I18nConfig, logger *logging.Logger) Translator {
	if cfg.Dir == "" {
		return Passthrough{}
	}
	catalog, err := NewCatalog(cfg.Dir, cfg.Locale)
	if err != nil {
		if logger != nil {
			logger.Warn("falling back to passthrough translator", zap.Error(err))
		}
		return Passthrough{}
	}
	if logger != nil {
		logger.Info("translation catalog loaded",
			zap.String("locale", cfg.Locale),
			zap.String("dir", cfg.Dir))
	}
	return catalog
}
