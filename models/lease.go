package models

import (
	"github.com/shopspring/decimal"
)

// LeaseEligibilityRecord is one lease flagged by the property-management
// system as eligible for a guideline increase. Sourced read-only per run.
type LeaseEligibilityRecord struct {
	LeaseId          string          `json:"lease_id"`
	PropertyId       string          `json:"property_id"`
	UnitId           string          `json:"unit_id"`
	PropertyName     string          `json:"property_name"`
	UnitName         string          `json:"unit_name"`
	TenantNames      []string        `json:"tenant_names"`
	CurrentRent      decimal.Decimal `json:"current_rent"`
	EffectiveDate    string          `json:"effective_date"`
	IsExtended       bool            `json:"is_extended"`
	ExtensionEndDate string          `json:"extension_end_date,omitempty"`
}

// LeaseUpdate is the payload applied back to the source system when the
// completion phase commits an increase.
type LeaseUpdate struct {
	RentAmount    decimal.Decimal `json:"rent_amount"`
	EffectiveDate string          `json:"effective_date"`
	Comment       string          `json:"comment,omitempty"`
}

func (l LeaseEligibilityRecord) TenantDisplayName() string {
	if len(l.TenantNames) == 0 {
		return ""
	}
	out := l.TenantNames[0]
	for _, name := range l.TenantNames[1:] {
		out += ", " + name
	}
	return out
}
