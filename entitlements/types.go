package entitlements

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrInvalidCode     = errors.New("invalid_code")
	ErrNoEntitlement   = errors.New("no_entitlement")
	ErrQuotaExhausted  = errors.New("quota_exhausted")
	ErrMalformedRecord = errors.New("malformed_record")
	ErrDuplicateCode   = errors.New("duplicate_code")
)

// Record is the persisted entitlement. The JSON field names are shared with
// pages that read the record directly, so they must not change.
type Record struct {
	IsPremium   bool   `json:"isPremium"`
	Code        string `json:"code"`
	Expiry      int64  `json:"expiry"` // unix ms
	PrintCount  int    `json:"printCount"`
	TypeName    string `json:"typeName"`
	ActivatedAt int64  `json:"activatedAt"` // unix ms
}

// ExpiresAt returns the expiry as a time.
func (r Record) ExpiresAt() time.Time { return time.UnixMilli(r.Expiry) }

// Expired reports whether the record is no longer live at now.
// A record expiring exactly at now counts as expired.
func (r Record) Expired(now time.Time) bool { return now.UnixMilli() >= r.Expiry }

// Exhausted reports whether no prints remain.
func (r Record) Exhausted() bool { return r.PrintCount <= 0 }

// Encode serializes the record for storage.
func (r Record) Encode() (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Decode parses a stored value. Anything that is not a JSON object carrying
// an expiry is reported as ErrMalformedRecord.
func Decode(raw string) (*Record, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &probe); err != nil || probe == nil {
		return nil, ErrMalformedRecord
	}
	if _, ok := probe["expiry"]; !ok {
		return nil, ErrMalformedRecord
	}
	var r Record
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, ErrMalformedRecord
	}
	if r.PrintCount < 0 {
		r.PrintCount = 0
	}
	return &r, nil
}

// ExpiryOf extracts the expiry of a stored value, if it decodes.
// Stores use it to maintain expiry columns and TTLs.
func ExpiryOf(raw string) (time.Time, bool) {
	r, err := Decode(raw)
	if err != nil {
		return time.Time{}, false
	}
	return r.ExpiresAt(), true
}
