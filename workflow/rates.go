package workflow

import (
	"errors"

	"bitbucket.org/mmdatafocus/rentnotice_backend/models"
	"github.com/shopspring/decimal"
)

// ErrNoRate means neither an override nor a default rate exists for a
// property. Callers must exclude the lease, never assume zero.
var ErrNoRate = errors.New("no applicable increase rate")

// ResolveRate returns the property's override rate when present, else the
// table default.
func ResolveRate(table models.RateTable, propertyId string) (decimal.Decimal, error) {
	if rate, ok := table.Overrides[propertyId]; ok {
		return rate, nil
	}
	if table.Default != nil {
		return *table.Default, nil
	}
	return decimal.Zero, ErrNoRate
}
