package workflow

import (
	"testing"

	"bitbucket.org/mmdatafocus/rentnotice_backend/models"
	"github.com/shopspring/decimal"
)

func lease(rent string) models.LeaseEligibilityRecord {
	return models.LeaseEligibilityRecord{
		LeaseId:       "lease-1",
		PropertyId:    "prop-1",
		UnitId:        "unit-1",
		PropertyName:  "Maple Court",
		UnitName:      "101",
		TenantNames:   []string{"A. Tenant"},
		CurrentRent:   decimal.RequireFromString(rent),
		EffectiveDate: "2026-12-01",
	}
}

func TestComputeSchedule_GuidelineOnly(t *testing.T) {
	s := ComputeSchedule(lease("1000.00"), decimal.RequireFromString("0.0236"), nil)

	if got := s.NewRent.StringFixed(2); got != "1023.60" {
		t.Fatalf("new rent: expected 1023.60, got %s", got)
	}
	if got := s.IncreaseAmount.StringFixed(2); got != "23.60" {
		t.Fatalf("increase: expected 23.60, got %s", got)
	}
	if s.RatePercent != "2.36%" {
		t.Fatalf("rate percent: expected 2.36%%, got %s", s.RatePercent)
	}
	if !s.AgiAmount.IsZero() || s.AgiPercent != "" {
		t.Fatalf("expected no AGI, got %s / %q", s.AgiAmount, s.AgiPercent)
	}
}

func TestComputeSchedule_AgiFlatAmount(t *testing.T) {
	agi := &models.AboveGuidelineAdjustment{MonthlyAmount: decimal.RequireFromString("25.00")}
	s := ComputeSchedule(lease("1200.00"), decimal.RequireFromString("0.03"), agi)

	if got := s.NewRent.StringFixed(2); got != "1261.00" {
		t.Fatalf("new rent: expected 1261.00, got %s", got)
	}
	if got := s.AgiAmount.StringFixed(2); got != "25.00" {
		t.Fatalf("agi amount: expected 25.00, got %s", got)
	}
	if got := s.IncreaseAmount.StringFixed(2); got != "61.00" {
		t.Fatalf("increase: expected 61.00, got %s", got)
	}
}

func TestComputeSchedule_AgiPercent(t *testing.T) {
	agi := &models.AboveGuidelineAdjustment{Percent: decimal.RequireFromString("0.02")}
	s := ComputeSchedule(lease("1000.00"), decimal.RequireFromString("0.0236"), agi)

	if got := s.AgiAmount.StringFixed(2); got != "20.00" {
		t.Fatalf("agi amount: expected 20.00, got %s", got)
	}
	if s.AgiPercent != "2.00%" {
		t.Fatalf("agi percent: expected 2.00%%, got %s", s.AgiPercent)
	}
	if got := s.NewRent.StringFixed(2); got != "1043.60" {
		t.Fatalf("new rent: expected 1043.60, got %s", got)
	}
}

func TestComputeSchedule_FlatAmountWinsOverPercent(t *testing.T) {
	agi := &models.AboveGuidelineAdjustment{
		MonthlyAmount: decimal.RequireFromString("30.00"),
		Percent:       decimal.RequireFromString("0.10"),
	}
	s := ComputeSchedule(lease("1000.00"), decimal.RequireFromString("0.02"), agi)

	if got := s.AgiAmount.StringFixed(2); got != "30.00" {
		t.Fatalf("agi amount: expected flat 30.00, got %s", got)
	}
	if s.AgiPercent != "" {
		t.Fatalf("agi percent should be empty when flat amount wins, got %q", s.AgiPercent)
	}
}

func TestComputeSchedule_ZeroRateKeepsRentFlat(t *testing.T) {
	s := ComputeSchedule(lease("987.65"), decimal.Zero, nil)

	if !s.NewRent.Equal(s.CurrentRent) {
		t.Fatalf("expected unchanged rent, got %s", s.NewRent)
	}
	if !s.IncreaseAmount.IsZero() {
		t.Fatalf("expected zero increase, got %s", s.IncreaseAmount)
	}
}

func TestComputeSchedule_NewRentNeverBelowCurrent(t *testing.T) {
	rents := []string{"1.00", "499.99", "1000.00", "1234.56", "9999.99"}
	rates := []string{"0", "0.005", "0.02", "0.0236", "0.10"}
	agis := []*models.AboveGuidelineAdjustment{
		nil,
		{MonthlyAmount: decimal.RequireFromString("12.34")},
		{Percent: decimal.RequireFromString("0.03")},
	}

	for _, rent := range rents {
		for _, rate := range rates {
			for _, agi := range agis {
				s := ComputeSchedule(lease(rent), decimal.RequireFromString(rate), agi)
				if s.NewRent.LessThan(s.CurrentRent) {
					t.Fatalf("rent=%s rate=%s: new rent %s below current", rent, rate, s.NewRent)
				}
			}
		}
	}
}
