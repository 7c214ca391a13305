package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Canonical column names used by the ingest package.
const (
	ColDate        = "date"
	ColAccount     = "account"
	ColCampaign    = "campaign"
	ColAdGroup     = "ad_group"
	ColKeyword     = "keyword"
	ColPlacement   = "placement"
	ColProductName = "product_name"
	ColImpressions = "impressions"
	ColClicks      = "clicks"
	ColOrders      = "orders"
	ColSpend       = "spend"
	ColSales       = "sales"
)

// RequiredColumns must be present in every export.
var RequiredColumns = []string{ColCampaign, ColSpend}

// Rules is the structure of the rules.yaml file.
// Naming conventions change more often than code, so they live in YAML.
type Rules struct {
	Columns    map[string][]string `yaml:"columns" validate:"required,dive,keys,required,endkeys,min=1"`
	Extraction ExtractionRules     `yaml:"extraction"`
	Thresholds Thresholds          `yaml:"thresholds"`
	Products   []ProductRule       `yaml:"products" validate:"dive"`
}

// ExtractionRules configures metadata extraction from campaign and ad group names.
type ExtractionRules struct {
	ProductPattern   string   `yaml:"product_pattern" validate:"required"`
	TargetPattern    string   `yaml:"target_pattern" validate:"required"`
	DatePattern      string   `yaml:"date_pattern" validate:"required"`
	Placeholders     []string `yaml:"placeholders"`
	NonSearchMarkers []string `yaml:"non_search_markers" validate:"min=1"`
	TotalMarkers     []string `yaml:"total_markers"`
	NonSearchLabel   string   `yaml:"non_search_label" validate:"required"`
	UnassignedLabel  string   `yaml:"unassigned_label" validate:"required"`
}

// Thresholds drive ROAS colour grading.
type Thresholds struct {
	DefaultTarget float64 `yaml:"default_target" validate:"gt=0"`              // percent
	WarnRatio     float64 `yaml:"warn_ratio" validate:"gt=0,lte=1"`            // share of target still graded "warn"
	MaxTarget     float64 `yaml:"max_target" validate:"gtfield=DefaultTarget"` // extracted targets above this are ignored
}

// ProductRule seeds the product catalog.
type ProductRule struct {
	Code   string  `yaml:"code" validate:"required"`
	Name   string  `yaml:"name"`
	Target float64 `yaml:"target" validate:"gte=0"`
}

// DefaultRules returns the built-in rules for Coupang ads manager exports.
func DefaultRules() *Rules {
	return &Rules{
		Columns: map[string][]string{
			ColDate:        {"날짜", "일자", "기간", "date", "day"},
			ColAccount:     {"계정", "계정명", "광고계정", "광고주", "account", "account name"},
			ColCampaign:    {"캠페인명", "캠페인", "campaign name", "campaign"},
			ColAdGroup:     {"광고그룹명", "광고그룹", "ad group name", "ad group", "adgroup"},
			ColKeyword:     {"키워드", "검색 키워드", "keyword", "search keyword"},
			ColPlacement:   {"광고 노출 지면", "광고노출지면", "노출지면", "노출 영역", "placement"},
			ColProductName: {"광고집행 상품명", "광고 전환 매출 발생 상품명", "상품명", "product name", "product"},
			ColImpressions: {"노출수", "impressions", "impr"},
			ColClicks:      {"클릭수", "clicks"},
			ColOrders:      {"총 주문수(14일)", "총 주문수(1일)", "주문수", "orders", "conversions"},
			ColSpend:       {"광고비", "집행 광고비", "spend", "cost", "ad spend"},
			ColSales:       {"총 전환매출액(14일)", "총 전환매출액(1일)", "전환매출액", "매출액", "sales", "revenue"},
		},
		Extraction: ExtractionRules{
			ProductPattern:   `(?:^|[^A-Za-z0-9])([A-Za-z]{1,4}-?\d{2,6})(?:[^A-Za-z0-9]|$)`,
			TargetPattern:    `(?i)(?:roas|목표|target|tgt)\s*[:=_\-]?\s*(\d{2,5}(?:\.\d+)?)\s*%?`,
			DatePattern:      `(?:^|[^0-9A-Za-z])((?:20)?\d{2}[.\-/]?\d{2}[.\-/]?\d{2}|\d{1,2}[.\-/]\d{1,2})(?:[^0-9]|$)`,
			Placeholders:     []string{"-", "--", "n/a", "na", "nan", "null", "none", "없음", "(없음)"},
			NonSearchMarkers: []string{"비검색", "non-search", "nonsearch", "non search"},
			TotalMarkers:     []string{"합계", "총계", "total", "sum"},
			NonSearchLabel:   "비검색 영역",
			UnassignedLabel:  "미분류",
		},
		Thresholds: Thresholds{
			DefaultTarget: 300,
			WarnRatio:     0.8,
			MaxTarget:     10000,
		},
	}
}

// LoadRules loads the rules file and merges it over the defaults.
// Returns the defaults without error if the file doesn't exist.
func LoadRules(path string) (*Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Rules file is optional
			return rules, nil
		}
		return nil, err
	}

	var file Rules
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}
	rules.merge(&file)

	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules file %s: %w", path, err)
	}
	return rules, nil
}

// merge overlays non-zero values from other.
func (r *Rules) merge(other *Rules) {
	for col, aliases := range other.Columns {
		if len(aliases) > 0 {
			r.Columns[col] = aliases
		}
	}

	e := &other.Extraction
	if e.ProductPattern != "" {
		r.Extraction.ProductPattern = e.ProductPattern
	}
	if e.TargetPattern != "" {
		r.Extraction.TargetPattern = e.TargetPattern
	}
	if e.DatePattern != "" {
		r.Extraction.DatePattern = e.DatePattern
	}
	if e.Placeholders != nil {
		r.Extraction.Placeholders = e.Placeholders
	}
	if e.NonSearchMarkers != nil {
		r.Extraction.NonSearchMarkers = e.NonSearchMarkers
	}
	if e.TotalMarkers != nil {
		r.Extraction.TotalMarkers = e.TotalMarkers
	}
	if e.NonSearchLabel != "" {
		r.Extraction.NonSearchLabel = e.NonSearchLabel
	}
	if e.UnassignedLabel != "" {
		r.Extraction.UnassignedLabel = e.UnassignedLabel
	}

	if other.Thresholds.DefaultTarget != 0 {
		r.Thresholds.DefaultTarget = other.Thresholds.DefaultTarget
	}
	if other.Thresholds.WarnRatio != 0 {
		r.Thresholds.WarnRatio = other.Thresholds.WarnRatio
	}
	if other.Thresholds.MaxTarget != 0 {
		r.Thresholds.MaxTarget = other.Thresholds.MaxTarget
	}

	r.Products = append(r.Products, other.Products...)
}

// Validate checks struct constraints and that every pattern compiles.
func (r *Rules) Validate() error {
	if err := validator.New().Struct(r); err != nil {
		return err
	}
	for _, col := range RequiredColumns {
		if len(r.Columns[col]) == 0 {
			return fmt.Errorf("no aliases for required column %q", col)
		}
	}
	patterns := map[string]string{
		"product_pattern": r.Extraction.ProductPattern,
		"target_pattern":  r.Extraction.TargetPattern,
		"date_pattern":    r.Extraction.DatePattern,
	}
	for name, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if re.NumSubexp() < 1 {
			return fmt.Errorf("%s must contain a capture group", name)
		}
	}
	return nil
}
