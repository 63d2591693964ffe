package domain

import (
	"strings"
	"time"
	"unicode"
)

type Product struct {
	ID        string
	Name      string // canonical, lower-cased
	Unit      string // empty when unknown
	CreatedAt time.Time
}

// SearchHit is a single ranked match returned by the text search index.
type SearchHit struct {
	ProductID string
	Name      string
	Score     float64
}

// NormalizeName trims, collapses inner whitespace and lower-cases a product name.
func NormalizeName(raw string) string {
	return strings.ToLower(strings.Join(strings.Fields(raw), " "))
}

func NormalizeUnit(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// ConflictsWith reports whether a requested unit contradicts the product's
// established unit. An empty requested unit or an unset product unit never conflicts.
func (p Product) ConflictsWith(unit string) bool {
	unit = NormalizeUnit(unit)
	return p.Unit != "" && unit != "" && p.Unit != unit
}

// Tokens splits a name into lower-cased runs of letters and digits.
func Tokens(name string) []string {
	return strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
