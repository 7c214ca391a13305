// Package extract pulls metadata embedded in campaign and ad group names and
// normalizes placeholder and placement values.
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"adreport/internal/config"
	"adreport/internal/models"
)

// Metadata is what a naming convention encodes in campaign and ad group names.
type Metadata struct {
	ProductCode string
	Target      float64 // percent, 0 when absent
	DateToken   string
}

// Extractor applies the configured extraction rules.
type Extractor struct {
	product *regexp.Regexp
	target  *regexp.Regexp
	date    *regexp.Regexp

	placeholders     map[string]struct{}
	nonSearchMarkers []string
	totalMarkers     map[string]struct{}

	nonSearchLabel  string
	unassignedLabel string
	maxTarget       float64
}

// New compiles the extraction rules.
func New(rules *config.Rules) (*Extractor, error) {
	e := &Extractor{
		placeholders:    make(map[string]struct{}),
		totalMarkers:    make(map[string]struct{}),
		nonSearchLabel:  rules.Extraction.NonSearchLabel,
		unassignedLabel: rules.Extraction.UnassignedLabel,
		maxTarget:       rules.Thresholds.MaxTarget,
	}

	var err error
	if e.product, err = regexp.Compile(rules.Extraction.ProductPattern); err != nil {
		return nil, fmt.Errorf("product pattern: %w", err)
	}
	if e.target, err = regexp.Compile(rules.Extraction.TargetPattern); err != nil {
		return nil, fmt.Errorf("target pattern: %w", err)
	}
	if e.date, err = regexp.Compile(rules.Extraction.DatePattern); err != nil {
		return nil, fmt.Errorf("date pattern: %w", err)
	}

	for _, p := range rules.Extraction.Placeholders {
		e.placeholders[fold(p)] = struct{}{}
	}
	for _, m := range rules.Extraction.NonSearchMarkers {
		e.nonSearchMarkers = append(e.nonSearchMarkers, squash(m))
	}
	for _, m := range rules.Extraction.TotalMarkers {
		e.totalMarkers[squash(m)] = struct{}{}
	}
	return e, nil
}

// Extract reads product code, target and date token. Each field is taken
// from the campaign name when present there, otherwise from the ad group name.
func (e *Extractor) Extract(campaign, adGroup string) Metadata {
	c := e.scan(e.Clean(campaign))
	g := e.scan(e.Clean(adGroup))

	md := c
	if md.ProductCode == "" {
		md.ProductCode = g.ProductCode
	}
	if md.Target == 0 {
		md.Target = g.Target
	}
	if md.DateToken == "" {
		md.DateToken = g.DateToken
	}
	return md
}

// scan extracts from a single text. Target, then date, then product: each
// match is blanked out so later patterns can't reuse its digits.
func (e *Extractor) scan(text string) Metadata {
	var md Metadata
	if text == "" {
		return md
	}

	if raw, rest, ok := take(e.target, text, nil); ok {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 && (e.maxTarget == 0 || v <= e.maxTarget) {
			md.Target = v
		}
		text = rest
	}
	if raw, rest, ok := take(e.date, text, plausibleDate); ok {
		md.DateToken = raw
		text = rest
	}
	if raw, _, ok := take(e.product, text, nil); ok {
		md.ProductCode = NormalizeCode(raw)
	}
	return md
}

// take returns the capture group of the first match accepted by keep (any
// match when keep is nil) and text with that whole match blanked.
func take(re *regexp.Regexp, text string, keep func(string) bool) (string, string, bool) {
	for start := 0; start < len(text); {
		loc := re.FindStringSubmatchIndex(text[start:])
		if loc == nil || len(loc) < 4 || loc[2] < 0 {
			break
		}
		value := text[start+loc[2] : start+loc[3]]
		if keep == nil || keep(value) {
			from, to := start+loc[0], start+loc[1]
			return value, text[:from] + strings.Repeat(" ", to-from) + text[to:], true
		}
		// Resume after the rejected group so its trailing delimiter can
		// start the next match.
		start += max(loc[3], loc[0]+1)
	}
	return "", text, false
}

// plausibleDate reports whether a date token has a real month and day:
// YYYYMMDD, YYMMDD or M/D, with or without separators.
func plausibleDate(token string) bool {
	parts := strings.FieldsFunc(token, func(r rune) bool {
		return r == '.' || r == '-' || r == '/'
	})
	digits := strings.Join(parts, "")

	var month, day string
	switch {
	case len(parts) == 2 && len(digits) <= 4:
		month, day = parts[0], parts[1]
	case len(digits) == 8:
		month, day = digits[4:6], digits[6:8]
	case len(digits) == 6:
		month, day = digits[2:4], digits[4:6]
	default:
		return false
	}

	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return false
	}
	d, err := strconv.Atoi(day)
	return err == nil && d >= 1 && d <= 31
}

// NormalizeCode upper-cases a product code and strips hyphens and spaces.
func NormalizeCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	return strings.NewReplacer("-", "", " ", "").Replace(code)
}

// Clean NFC-normalizes, trims and collapses whitespace. Placeholders become "".
func (e *Extractor) Clean(s string) string {
	s = norm.NFC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	if e.IsPlaceholder(s) {
		return ""
	}
	return s
}

// IsPlaceholder reports whether a cell holds no real value.
func (e *Extractor) IsPlaceholder(s string) bool {
	f := fold(s)
	if f == "" {
		return true
	}
	_, ok := e.placeholders[f]
	return ok
}

// IsTotalRow reports whether a campaign cell marks a summary row.
func (e *Extractor) IsTotalRow(campaign string) bool {
	_, ok := e.totalMarkers[squash(campaign)]
	return ok
}

// NormalizePlacement maps a raw placement to a canonical label.
func (e *Extractor) NormalizePlacement(raw string) (string, bool) {
	clean := e.Clean(raw)
	if clean == "" {
		return "", false
	}
	s := squash(clean)
	for _, m := range e.nonSearchMarkers {
		if strings.Contains(s, m) {
			return models.PlacementNonSearch, true
		}
	}
	if strings.Contains(s, "검색") || strings.Contains(s, "search") {
		return models.PlacementSearch, false
	}
	return clean, false
}

// NormalizeKeyword returns the keyword bucket for a row. Non-search
// placements and rows without a real keyword share the non-search label.
func (e *Extractor) NormalizeKeyword(keyword string, nonSearch bool) (string, bool) {
	if nonSearch {
		return e.nonSearchLabel, true
	}
	clean := e.Clean(keyword)
	if clean == "" {
		return e.nonSearchLabel, true
	}
	return clean, false
}

// UnassignedLabel is the product bucket for rows without a product code.
func (e *Extractor) UnassignedLabel() string {
	return e.unassignedLabel
}

// NonSearchLabel is the keyword bucket for non-search traffic.
func (e *Extractor) NonSearchLabel() string {
	return e.nonSearchLabel
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}

// squash lower-cases and drops all whitespace.
func squash(s string) string {
	s = norm.NFC.String(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}
