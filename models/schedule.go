package models

import "github.com/shopspring/decimal"

// RentIncreaseSchedule is the computed outcome for one lease. Immutable
// once computed; the completion phase replays it verbatim rather than
// recomputing.
type RentIncreaseSchedule struct {
	LeaseId          string          `json:"lease_id"`
	PropertyId       string          `json:"property_id"`
	UnitId           string          `json:"unit_id"`
	PropertyName     string          `json:"property_name"`
	UnitName         string          `json:"unit_name"`
	TenantNames      []string        `json:"tenant_names,omitempty"`
	CurrentRent      decimal.Decimal `json:"current_rent"`
	NewRent          decimal.Decimal `json:"new_rent"`
	Rate             decimal.Decimal `json:"rate"`
	RatePercent      string          `json:"rate_percent"`
	IncreaseAmount   decimal.Decimal `json:"increase_amount"`
	AgiAmount        decimal.Decimal `json:"agi_amount"`
	AgiPercent       string          `json:"agi_percent,omitempty"`
	EffectiveDate    string          `json:"effective_date"`
	IsExtended       bool            `json:"is_extended"`
	ExtensionEndDate string          `json:"extension_end_date,omitempty"`
}

func (s RentIncreaseSchedule) TenantDisplayName() string {
	if len(s.TenantNames) == 0 {
		return ""
	}
	out := s.TenantNames[0]
	for _, name := range s.TenantNames[1:] {
		out += ", " + name
	}
	return out
}

// FormatPercent renders a decimal fraction for documents, e.g. 0.035 ->
// "3.50%".
func FormatPercent(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}
