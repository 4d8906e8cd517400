package core

import (
	"strings"

	"github.com/PaulFidika/donorkit/entitlements"
)

const (
	DefaultStorageKey = "crossero_donor"
	DefaultLandingURL = "index.html"
)

// Config configures a Service.
type Config struct {
	StorageKey string // key holding the single record
	LandingURL string // destination after a successful redemption
	Catalog    *entitlements.Catalog
}

func (c Config) defaulted() Config {
	out := c
	if strings.TrimSpace(out.StorageKey) == "" {
		out.StorageKey = DefaultStorageKey
	}
	if strings.TrimSpace(out.LandingURL) == "" {
		out.LandingURL = DefaultLandingURL
	}
	if out.Catalog == nil {
		out.Catalog = entitlements.DefaultCatalog()
	}
	return out
}
