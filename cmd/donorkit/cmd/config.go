package cmd

import (
	"fmt"

	"github.com/PaulFidika/donorkit/core"
	"github.com/PaulFidika/donorkit/entitlements"
	"github.com/caarlos0/env/v8"
)

// Config is read from DONORKIT_* environment variables. Flags given on the
// command line override Store and Lang.
type Config struct {
	Store         string `env:"STORE" envDefault:"sqlite"`
	Lang          string `env:"LANG" envDefault:"en"`
	SQLitePath    string `env:"SQLITE_PATH"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX"`
	DatabaseURL   string `env:"DATABASE_URL"`
	Listen        string `env:"LISTEN" envDefault:":8080"`
	SweepCron     string `env:"SWEEP_CRON" envDefault:"@every 10m"`
	SecureCookies bool   `env:"SECURE_COOKIES"`
	StorageKey    string `env:"STORAGE_KEY" envDefault:"crossero_donor"`
	LandingURL    string `env:"LANDING_URL" envDefault:"index.html"`
	CatalogFile   string `env:"CATALOG_FILE"`
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "DONORKIT_"}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// serviceConfig builds the core config, loading the code catalog from
// CatalogFile when one is set.
func (c Config) serviceConfig() (core.Config, error) {
	out := core.Config{StorageKey: c.StorageKey, LandingURL: c.LandingURL}
	if c.CatalogFile == "" {
		out.Catalog = entitlements.DefaultCatalog()
		return out, nil
	}
	cat, err := entitlements.LoadCatalogFile(c.CatalogFile)
	if err != nil {
		return core.Config{}, fmt.Errorf("load catalog %s: %w", c.CatalogFile, err)
	}
	out.Catalog = cat
	return out, nil
}
