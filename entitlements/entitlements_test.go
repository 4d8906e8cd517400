package entitlements

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDefaultCatalogTiers(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	cases := []struct {
		id       string
		label    string
		duration time.Duration
		quota    int
		count    int
	}{
		{TierDay, "1-day pass", 24 * time.Hour, 5, 16},
		{TierWeek, "7-day pass", 7 * 24 * time.Hour, 30, 20},
		{TierMonth, "1-month pass", 30 * 24 * time.Hour, 100, 21},
	}
	cat := DefaultCatalog()
	for _, tc := range cases {
		tier, ok := cat.Tier(tc.id)
		if !ok {
			t.Fatalf("tier %s missing", tc.id)
		}
		if len(tier.Codes) != tc.count {
			t.Fatalf("tier %s: expected %d codes, got %d", tc.id, tc.count, len(tier.Codes))
		}
		for _, code := range tier.Codes {
			got, ok := cat.Lookup(code)
			if !ok || got.ID != tc.id {
				t.Fatalf("code %s: expected tier %s, got %q (ok=%v)", code, tc.id, got.ID, ok)
			}
			rec := Grant(got, code, now)
			if rec.TypeName != tc.label || rec.PrintCount != tc.quota {
				t.Fatalf("code %s: got label %q quota %d", code, rec.TypeName, rec.PrintCount)
			}
			if rec.Expiry != now.Add(tc.duration).UnixMilli() {
				t.Fatalf("code %s: unexpected expiry %d", code, rec.Expiry)
			}
			if !rec.IsPremium || rec.Code != code || rec.ActivatedAt != now.UnixMilli() {
				t.Fatalf("code %s: unexpected record %+v", code, rec)
			}
		}
	}
}

func TestLookupIsExact(t *testing.T) {
	cat := DefaultCatalog()
	for _, code := range []string{"", "crs-d1-x3g6", " CRS-D1-X3G6", "CRS-D1-X3G6 ", "CRS-D1-XXXX", "CRS-W7"} {
		if _, ok := cat.Lookup(code); ok {
			t.Fatalf("expected %q to be rejected", code)
		}
	}
}

func TestNewCatalogRejectsOverlap(t *testing.T) {
	_, err := NewCatalog(
		Tier{ID: "A", Label: "a", Duration: time.Hour, Quota: 1, Codes: []string{"X", "Y"}},
		Tier{ID: "B", Label: "b", Duration: time.Hour, Quota: 1, Codes: []string{"Z", "Y"}},
	)
	if !errors.Is(err, ErrDuplicateCode) {
		t.Fatalf("expected ErrDuplicateCode, got %v", err)
	}
}

func TestNewCatalogValidation(t *testing.T) {
	bad := []Tier{
		{ID: "", Duration: time.Hour},
		{ID: "A", Duration: 0},
		{ID: "A", Duration: time.Hour, Quota: -1},
		{ID: "A", Duration: time.Hour, Codes: []string{""}},
	}
	for i, tier := range bad {
		if _, err := NewCatalog(tier); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
	if _, err := NewCatalog(
		Tier{ID: "A", Duration: time.Hour},
		Tier{ID: "A", Duration: time.Hour},
	); err == nil {
		t.Fatal("expected duplicate tier id to be rejected")
	}
}

func TestDecode(t *testing.T) {
	for _, raw := range []string{"", "not json", "42", "null", "[]", `{"code":"x"}`, `{"expiry":"soon"}`} {
		if _, err := Decode(raw); !errors.Is(err, ErrMalformedRecord) {
			t.Fatalf("%q: expected ErrMalformedRecord, got %v", raw, err)
		}
	}
	rec, err := Decode(`{"isPremium":true,"code":"CRS-D1-X3G6","expiry":1000,"printCount":3,"typeName":"1-day pass","activatedAt":10}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.PrintCount != 3 || rec.Code != "CRS-D1-X3G6" || rec.Expiry != 1000 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if !rec.Expired(time.UnixMilli(1000)) || rec.Expired(time.UnixMilli(999)) {
		t.Fatal("expiry boundary: a record is expired once now reaches expiry")
	}
}

func TestEncodeFieldNames(t *testing.T) {
	raw, err := Record{IsPremium: true, Code: "c", Expiry: 5, PrintCount: 2, TypeName: "t", ActivatedAt: 1}.Encode()
	if err != nil {
		t.Fatal(err)
	}
	want := `{"isPremium":true,"code":"c","expiry":5,"printCount":2,"typeName":"t","activatedAt":1}`
	if raw != want {
		t.Fatalf("got %s\nwant %s", raw, want)
	}
}

func TestLoadCatalog(t *testing.T) {
	cat, err := LoadCatalog(strings.NewReader(`[
		{"id":"D1","label":"1-day pass","duration":"24h","quota":5,"codes":["A-1","A-2"]},
		{"id":"M1","label":"1-month pass","duration":"720h","quota":100,"codes":["B-1"]}
	]`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	tier, ok := cat.Lookup("B-1")
	if !ok || tier.ID != "M1" || tier.Duration != 30*24*time.Hour || tier.Quota != 100 {
		t.Fatalf("unexpected tier %+v", tier)
	}

	_, err = LoadCatalog(strings.NewReader(`[
		{"id":"D1","label":"a","duration":"24h","quota":5,"codes":["A-1"]},
		{"id":"D7","label":"b","duration":"168h","quota":30,"codes":["A-1"]}
	]`))
	if !errors.Is(err, ErrDuplicateCode) {
		t.Fatalf("expected ErrDuplicateCode, got %v", err)
	}

	if _, err := LoadCatalog(strings.NewReader(`[{"id":"D1","duration":"one day","codes":["x"]}]`)); err == nil {
		t.Fatal("expected duration error")
	}
}
