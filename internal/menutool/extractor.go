package menutool

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// RouteKeywords send a question to the keyword path when any appears in it.
var RouteKeywords = []string{"menu", "makanan", "minuman", "harga", "restoran", "pesan", "order", "food", "drink", "price"}

// CategoryRule assigns Category when any token occurs in the text.
type CategoryRule struct {
	Tokens   []string
	Category string
}

// PriceBound says which side of the range a price rule sets.
type PriceBound int

const (
	BoundMax PriceBound = iota
	BoundMin
)

// PriceRule sets one bound from the first capture group of Pattern.
type PriceRule struct {
	Pattern *regexp.Regexp
	Bound   PriceBound
}

// Extractor turns free text into lookup parameters with ordered rules.
// Category rules are tried in order and the first match wins; every price
// rule is applied and the bounds merged.
type Extractor struct {
	Keywords     []string
	Categories   []CategoryRule
	Prices       []PriceRule
	StopTokens   []*regexp.Regexp
	MinSearchLen int
	Limit        int
}

// DefaultExtractor returns the restaurant rule set.
func DefaultExtractor() *Extractor {
	return &Extractor{
		Keywords: RouteKeywords,
		Categories: []CategoryRule{
			{Tokens: []string{"makanan", "food"}, Category: "makanan"},
			{Tokens: []string{"minuman", "drink"}, Category: "minuman"},
			{Tokens: []string{"dessert"}, Category: "dessert"},
		},
		Prices: []PriceRule{
			{Pattern: regexp.MustCompile(`(?i)(?:di\s*bawah|under|kurang\s+dari)\s+(\d+)`), Bound: BoundMax},
			{Pattern: regexp.MustCompile(`(?i)(?:di\s*atas|above|lebih\s+dari)\s+(\d+)`), Bound: BoundMin},
		},
		StopTokens:   StopTokenPatterns("makanan", "minuman", "dessert", "harga", "menu"),
		MinSearchLen: 3,
		Limit:        DefaultLimit,
	}
}

// StopTokenPatterns compiles case-insensitive literal matchers for tokens.
func StopTokenPatterns(tokens ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(tokens))
	for i, tok := range tokens {
		out[i] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(tok))
	}
	return out
}

// Matches reports whether text contains a routing keyword (case-insensitive).
func (e *Extractor) Matches(text string) bool {
	lower := strings.ToLower(text)
	for _, k := range e.Keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// Extract builds lookup parameters from text.
func (e *Extractor) Extract(text string) Params {
	var p Params
	lower := strings.ToLower(text)

	for _, rule := range e.Categories {
		if containsAny(lower, rule.Tokens) {
			p.Category = rule.Category
			break
		}
	}

	for _, rule := range e.Prices {
		m := rule.Pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if p.PriceRange == nil {
			p.PriceRange = &PriceRange{}
		}
		switch rule.Bound {
		case BoundMax:
			p.PriceRange.Max = floatPtr(v)
		case BoundMin:
			p.PriceRange.Min = floatPtr(v)
		}
	}

	if term := e.searchTerm(text); utf8.RuneCountInString(term) >= e.MinSearchLen {
		p.Search = term
	}

	p.Limit = intPtr(e.Limit)
	return p
}

// searchTerm removes each stop token in turn, case-insensitively, then trims.
func (e *Extractor) searchTerm(text string) string {
	out := text
	for _, stop := range e.StopTokens {
		out = stop.ReplaceAllString(out, "")
	}
	return strings.TrimSpace(out)
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
