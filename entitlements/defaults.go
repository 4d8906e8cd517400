package entitlements

import "time"

const (
	TierDay   = "D1"
	TierWeek  = "D7"
	TierMonth = "M1"
)

var (
	dayCodes = []string{
		"CRS-D1-X3G6", "CRS-D1-FHVX", "CRS-D1-6KST", "CRS-D1-9SGZ",
		"CRS-D1-Q6SF", "CRS-D1-GN6R", "CRS-D1-AR6D", "CRS-D1-NBX4",
		"CRS-D1-UA69", "CRS-D1-3MSF", "CRS-D1-RFXZ", "CRS-D1-RUK5",
		"CRS-D1-T9FN", "CRS-D1-7NB5", "CRS-D1-W3CG", "CRS-D1-MZB7",
	}
	weekCodes = []string{
		"CRS-W7-SGJQ", "CRS-W7-9WRF", "CRS-W7-8DCV", "CRS-W7-CR93",
		"CRS-W7-928D", "CRS-W7-NE3X", "CRS-W7-4DGY", "CRS-W7-PCEU",
		"CRS-W7-JEVF", "CRS-W7-95CH", "CRS-W7-B4RY", "CRS-W7-P487",
		"CRS-W7-7J68", "CRS-W7-Y4KM", "CRS-W7-5SJW", "CRS-W7-6ENQ",
		"CRS-W7-T8VG", "CRS-W7-JAX4", "CRS-W7-Y53J", "CRS-W7-TS6H",
	}
	monthCodes = []string{
		"CRS-M1-JZ9B", "CRS-M1-RUPT", "CRS-M1-GYWE", "CRS-M1-M3WZ",
		"CRS-M1-XRTY", "CRS-M1-49JY", "CRS-M1-2QHB", "CRS-M1-YCUF",
		"CRS-M1-AFVD", "CRS-M1-XY7B", "CRS-M1-5EK6", "CRS-M1-RESV",
		"CRS-M1-2FBY", "CRS-M1-UQRN", "CRS-M1-N4ZQ", "CRS-M1-MCZF",
		"CRS-M1-ESNA", "CRS-M1-FR26", "CRS-M1-SGK7", "CRS-M1-VPMS",
		"CRS-M1-EZC5",
	}
)

// DefaultTiers returns the shipped tier table in lookup order.
func DefaultTiers() []Tier {
	return []Tier{
		{ID: TierDay, Label: "1-day pass", Duration: 24 * time.Hour, Quota: 5, Codes: dayCodes},
		{ID: TierWeek, Label: "7-day pass", Duration: 7 * 24 * time.Hour, Quota: 30, Codes: weekCodes},
		{ID: TierMonth, Label: "1-month pass", Duration: 30 * 24 * time.Hour, Quota: 100, Codes: monthCodes},
	}
}

// DefaultCatalog returns the shipped catalog.
func DefaultCatalog() *Catalog { return MustCatalog(DefaultTiers()...) }
