package workflow

import (
	"context"
	"fmt"

	"bitbucket.org/mmdatafocus/rentnotice_backend/models"
	"bitbucket.org/mmdatafocus/rentnotice_backend/propwise"
	"github.com/shopspring/decimal"
)

var decimalOne = decimal.NewFromInt(1)

// ComputeSchedule derives the increase for one lease. Monetary rounding
// is 2dp round-half-up (shopspring Round), applied to the guideline rent
// and the AGI amount independently before they are added; the flat AGI
// amount wins when both amount and percent are given.
func ComputeSchedule(lease models.LeaseEligibilityRecord, rate decimal.Decimal, agi *models.AboveGuidelineAdjustment) models.RentIncreaseSchedule {
	guidelineRent := lease.CurrentRent.Mul(decimalOne.Add(rate)).Round(2)

	agiAmount := decimal.Zero
	agiPercent := ""
	if agi != nil {
		switch {
		case !agi.MonthlyAmount.IsZero():
			agiAmount = agi.MonthlyAmount.Round(2)
		case !agi.Percent.IsZero():
			agiAmount = lease.CurrentRent.Mul(agi.Percent).Round(2)
			agiPercent = models.FormatPercent(agi.Percent)
		}
	}

	newRent := guidelineRent.Add(agiAmount)

	return models.RentIncreaseSchedule{
		LeaseId:          lease.LeaseId,
		PropertyId:       lease.PropertyId,
		UnitId:           lease.UnitId,
		PropertyName:     lease.PropertyName,
		UnitName:         lease.UnitName,
		TenantNames:      lease.TenantNames,
		CurrentRent:      lease.CurrentRent,
		NewRent:          newRent,
		Rate:             rate,
		RatePercent:      models.FormatPercent(rate),
		IncreaseAmount:   newRent.Sub(lease.CurrentRent),
		AgiAmount:        agiAmount,
		AgiPercent:       agiPercent,
		EffectiveDate:    lease.EffectiveDate,
		IsExtended:       lease.IsExtended,
		ExtensionEndDate: lease.ExtensionEndDate,
	}
}

// BuildPayloadEntry computes a lease's schedule and stages it with its
// rent transaction. When the AGI references a supporting document, the
// raw bytes are fetched through the presigned-download flow and attached.
func BuildPayloadEntry(ctx context.Context, api propwise.API, el EligibleLease, rate decimal.Decimal, agi *models.AboveGuidelineAdjustment) (models.PayloadEntry, error) {
	entry := models.PayloadEntry{
		Schedule:        ComputeSchedule(el.Lease, rate, agi),
		RentTransaction: el.RentTransaction,
	}

	if agi != nil && agi.DocumentId != "" {
		url, err := api.GetPresignedDownload(ctx, agi.DocumentId)
		if err != nil {
			return models.PayloadEntry{}, fmt.Errorf("resolve agi document %s for lease %s: %w", agi.DocumentId, el.Lease.LeaseId, err)
		}
		raw, err := api.DownloadPresignedURL(ctx, url)
		if err != nil {
			return models.PayloadEntry{}, fmt.Errorf("download agi document %s for lease %s: %w", agi.DocumentId, el.Lease.LeaseId, err)
		}
		entry.Attachment = raw
	}

	return entry, nil
}
