package entitlements

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

type tierFile struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Duration string   `json:"duration"` // time.ParseDuration syntax, e.g. "168h"
	Quota    int      `json:"quota"`
	Codes    []string `json:"codes"`
}

// LoadCatalog reads a JSON array of tiers and validates it like NewCatalog,
// so overlapping allow-lists are rejected at load time.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var raw []tierFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	tiers := make([]Tier, 0, len(raw))
	for _, t := range raw {
		d, err := time.ParseDuration(t.Duration)
		if err != nil {
			return nil, fmt.Errorf("tier %s: duration: %w", t.ID, err)
		}
		tiers = append(tiers, Tier{ID: t.ID, Label: t.Label, Duration: d, Quota: t.Quota, Codes: t.Codes})
	}
	return NewCatalog(tiers...)
}

// LoadCatalogFile is LoadCatalog on a file.
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadCatalog(f)
}
