package propwise

import (
	"encoding/json"
	"fmt"

	"bitbucket.org/mmdatafocus/rentnotice_backend/models"
	"github.com/shopspring/decimal"
)

// Wire types mirror the Propwise REST payloads. Money arrives as JSON
// numbers or numeric strings; json.Number accepts both.

type propwiseLease struct {
	ID               string   `json:"id"`
	PropertyID       string   `json:"property_id"`
	UnitID           string   `json:"unit_id"`
	PropertyName     string   `json:"property_name"`
	UnitName         string   `json:"unit_name"`
	TenantNames      []string `json:"tenant_names"`
	CurrentRent      json.Number `json:"current_rent"`
	EffectiveDate    string   `json:"effective_date"`
	IsExtended       bool     `json:"is_extended"`
	ExtensionEndDate string   `json:"extension_end_date"`
}

type propwiseRates struct {
	DefaultRate *json.Number           `json:"default_rate"`
	Overrides   map[string]json.Number `json:"overrides"`
}

type propwiseNote struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type propwiseTransaction struct {
	ID          string      `json:"id"`
	LeaseID     string      `json:"lease_id"`
	GlAccountID string      `json:"gl_account_id"`
	Amount      json.Number `json:"amount"`
	Frequency   string      `json:"frequency"`
	Memo        string      `json:"memo"`
}

type propwiseAGI struct {
	MonthlyAmount json.Number `json:"monthly_amount"`
	Percent       json.Number `json:"percent"`
	DocumentID    string      `json:"document_id"`
}

type propwiseGlAccount struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type propwiseTaskCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type propwiseCompany struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

type propwiseTemplate struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type presignedDownloadResponse struct {
	URL string `json:"url"`
}

type createTaskRequest struct {
	CategoryID  string `json:"category_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type createTaskResponse struct {
	ID string `json:"id"`
}

type uploadDocumentRequest struct {
	PropertyID  string `json:"property_id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"` // base64
}

type extendLeaseRequest struct {
	EndDate string `json:"end_date"`
}

type marketRentResponse struct {
	MarketRent json.Number `json:"market_rent"`
}

func decimalFromNumber(field string, num json.Number) (decimal.Decimal, error) {
	if num == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(num.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", field, num, err)
	}
	return d, nil
}

func (l propwiseLease) toModel() (models.LeaseEligibilityRecord, error) {
	rent, err := decimalFromNumber("current_rent", l.CurrentRent)
	if err != nil {
		return models.LeaseEligibilityRecord{}, err
	}
	return models.LeaseEligibilityRecord{
		LeaseId:          l.ID,
		PropertyId:       l.PropertyID,
		UnitId:           l.UnitID,
		PropertyName:     l.PropertyName,
		UnitName:         l.UnitName,
		TenantNames:      l.TenantNames,
		CurrentRent:      rent,
		EffectiveDate:    l.EffectiveDate,
		IsExtended:       l.IsExtended,
		ExtensionEndDate: l.ExtensionEndDate,
	}, nil
}

func (r propwiseRates) toModel() (models.RateTable, error) {
	table := models.RateTable{}
	if r.DefaultRate != nil {
		d, err := decimalFromNumber("default_rate", *r.DefaultRate)
		if err != nil {
			return table, err
		}
		table.Default = &d
	}
	if len(r.Overrides) > 0 {
		table.Overrides = make(map[string]decimal.Decimal, len(r.Overrides))
		for propertyID, num := range r.Overrides {
			d, err := decimalFromNumber("override_rate", num)
			if err != nil {
				return table, err
			}
			table.Overrides[propertyID] = d
		}
	}
	return table, nil
}

func (t propwiseTransaction) toModel() (models.RecurringTransaction, error) {
	amount, err := decimalFromNumber("amount", t.Amount)
	if err != nil {
		return models.RecurringTransaction{}, err
	}
	return models.RecurringTransaction{
		TransactionId: t.ID,
		LeaseId:       t.LeaseID,
		GlAccountId:   t.GlAccountID,
		Amount:        amount,
		Frequency:     t.Frequency,
		Memo:          t.Memo,
	}, nil
}

func (a propwiseAGI) toModel() (*models.AboveGuidelineAdjustment, error) {
	amount, err := decimalFromNumber("monthly_amount", a.MonthlyAmount)
	if err != nil {
		return nil, err
	}
	percent, err := decimalFromNumber("percent", a.Percent)
	if err != nil {
		return nil, err
	}
	if amount.IsZero() && percent.IsZero() && a.DocumentID == "" {
		return nil, nil
	}
	return &models.AboveGuidelineAdjustment{
		MonthlyAmount: amount,
		Percent:       percent,
		DocumentId:    a.DocumentID,
	}, nil
}
