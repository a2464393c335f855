package models

import "github.com/shopspring/decimal"

// RateTable holds the jurisdiction guideline rate for a run: a default
// rate plus per-property overrides. Rates are decimal fractions (0.025
// for 2.5%). Immutable per run.
type RateTable struct {
	Default   *decimal.Decimal           `json:"default,omitempty"`
	Overrides map[string]decimal.Decimal `json:"overrides,omitempty"`
}

// AboveGuidelineAdjustment is an optional AGI on one lease: a flat monthly
// amount or a percent of current rent, plus an optional supporting
// document. Zero values mean not applicable; the flat amount wins when
// both are present.
type AboveGuidelineAdjustment struct {
	MonthlyAmount decimal.Decimal `json:"monthly_amount"`
	Percent       decimal.Decimal `json:"percent"`
	DocumentId    string          `json:"document_id,omitempty"`
}
