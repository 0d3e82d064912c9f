package config

import (
	"os"
	"strings"
)

// AppConfig holds the settings needed to run the content store.
type AppConfig struct {
	DatabasePath    string
	MediaRoot       string
	SiteSlug        string
	SiteMediaDomain string
}

// Load reads the configuration from environment variables, providing
// safe defaults for anything missing.
func Load() AppConfig {
	databasePath := strings.TrimSpace(os.Getenv("DATABASE_PATH"))
	if databasePath == "" {
		databasePath = "wikivault.db"
	}

	mediaRoot := strings.TrimSpace(os.Getenv("MEDIA_ROOT"))
	if mediaRoot == "" {
		mediaRoot = "media"
	}

	siteSlug := strings.TrimSpace(os.Getenv("SITE_SLUG"))
	if siteSlug == "" {
		siteSlug = "main"
	}

	siteMediaDomain := strings.TrimSpace(os.Getenv("SITE_MEDIA_DOMAIN"))
	if siteMediaDomain == "" {
		siteMediaDomain = "media.localhost"
	}

	return AppConfig{
		DatabasePath:    databasePath,
		MediaRoot:       mediaRoot,
		SiteSlug:        siteSlug,
		SiteMediaDomain: siteMediaDomain,
	}
}
