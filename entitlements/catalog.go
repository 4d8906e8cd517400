package entitlements

import (
	"fmt"
	"strings"
	"time"
)

// Tier is one entitlement class: how long a redeemed code lasts, how many
// prints it carries, and which codes unlock it.
type Tier struct {
	ID       string
	Label    string
	Duration time.Duration
	Quota    int
	Codes    []string
}

// Catalog is the ordered, validated tier table. Lookups are first-match-wins
// in catalog order, but NewCatalog rejects overlapping allow-lists so the
// order never decides an outcome.
type Catalog struct {
	tiers []Tier
	index map[string]int
}

// NewCatalog validates tiers and builds the code index.
func NewCatalog(tiers ...Tier) (*Catalog, error) {
	c := &Catalog{index: make(map[string]int)}
	seen := make(map[string]struct{}, len(tiers))
	for i, t := range tiers {
		if strings.TrimSpace(t.ID) == "" {
			return nil, fmt.Errorf("tier %d: missing id", i)
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("tier %s: declared twice", t.ID)
		}
		seen[t.ID] = struct{}{}
		if t.Duration <= 0 {
			return nil, fmt.Errorf("tier %s: duration must be positive", t.ID)
		}
		if t.Quota < 0 {
			return nil, fmt.Errorf("tier %s: quota must not be negative", t.ID)
		}
		for _, code := range t.Codes {
			if code == "" {
				return nil, fmt.Errorf("tier %s: empty code", t.ID)
			}
			if j, ok := c.index[code]; ok {
				return nil, fmt.Errorf("%w: %q in tiers %s and %s", ErrDuplicateCode, code, tiers[j].ID, t.ID)
			}
			c.index[code] = i
		}
		t.Codes = append([]string(nil), t.Codes...)
		c.tiers = append(c.tiers, t)
	}
	return c, nil
}

// MustCatalog is NewCatalog for static tables.
func MustCatalog(tiers ...Tier) *Catalog {
	c, err := NewCatalog(tiers...)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the tier a code belongs to. Matching is exact.
func (c *Catalog) Lookup(code string) (Tier, bool) {
	if c == nil {
		return Tier{}, false
	}
	i, ok := c.index[code]
	if !ok {
		return Tier{}, false
	}
	return c.tiers[i], true
}

// Tiers returns the tiers in lookup order.
func (c *Catalog) Tiers() []Tier {
	if c == nil {
		return nil
	}
	return append([]Tier(nil), c.tiers...)
}

// Tier returns a tier by id.
func (c *Catalog) Tier(id string) (Tier, bool) {
	if c == nil {
		return Tier{}, false
	}
	for _, t := range c.tiers {
		if t.ID == id {
			return t, true
		}
	}
	return Tier{}, false
}

// Grant builds a fresh record for code under tier t.
func Grant(t Tier, code string, now time.Time) Record {
	return Record{
		IsPremium:   true,
		Code:        code,
		Expiry:      now.Add(t.Duration).UnixMilli(),
		PrintCount:  t.Quota,
		TypeName:    t.Label,
		ActivatedAt: now.UnixMilli(),
	}
}
