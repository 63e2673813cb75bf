// Package feed projects vehicle snapshots into marketplace export schemas.
// Each schema owns its column list and one translation table per enum;
// projection is pure, row order follows input order, and output is
// deterministic for identical input.
package feed

import (
	"strconv"
	"time"

	"github.com/dms/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// Translation maps internal enum values to one schema's external vocabulary.
type Translation map[string]string

// Apply returns the external value for raw. Unknown values fall back to
// the raw internal value so an unexpected enum degrades the single field
// instead of failing the whole export.
func (t Translation) Apply(raw string) string {
	if v, ok := t[raw]; ok {
		return v
	}
	return raw
}

// Reverse returns the inverse table (external value to internal value).
// Tables must be injective for this to be lossless.
func (t Translation) Reverse() Translation {
	r := make(Translation, len(t))
	for k, v := range t {
		r[v] = k
	}
	return r
}

// Schema describes one marketplace export target
type Schema interface {
	// Code is the stable identifier used in export requests and filenames
	Code() string
	// Separator is the CSV field separator the marketplace ingests
	Separator() rune
	// Columns is the fixed, ordered header row
	Columns() []string
	// Row projects one snapshot into the column order of Columns
	Row(s VehicleSnapshot) []string
}

// padImages returns exactly inventory.MaxFeedImages image cells,
// populated in input order and padded with empty strings.
func padImages(images []string) []string {
	out := make([]string, inventory.MaxFeedImages)
	for i := 0; i < len(images) && i < inventory.MaxFeedImages; i++ {
		out[i] = images[i]
	}
	return out
}

func formatPrice(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func formatDate(t *time.Time, layout string) string {
	if t == nil {
		return ""
	}
	return t.Format(layout)
}

func formatInt(v int) string {
	return strconv.Itoa(v)
}
