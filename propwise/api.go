package propwise

import (
	"context"

	"bitbucket.org/mmdatafocus/rentnotice_backend/models"
	"github.com/shopspring/decimal"
)

// API is the property-management surface this repo consumes. Workflows
// depend on this interface; Client is the HTTP implementation and tests
// substitute fakes.
type API interface {
	ListEligibleLeases(ctx context.Context) ([]models.LeaseEligibilityRecord, error)
	GetMarketRent(ctx context.Context, propertyId, unitId string) (decimal.Decimal, error)
	GetIncreaseRates(ctx context.Context) (models.RateTable, error)
	ListLeaseNotes(ctx context.Context, leaseId string) ([]models.Note, error)
	ListBuildingNotes(ctx context.Context, propertyId string) ([]models.Note, error)
	ListRecurringTransactions(ctx context.Context, leaseId string) ([]models.RecurringTransaction, error)
	GetAboveGuidelineIncrease(ctx context.Context, leaseId string) (*models.AboveGuidelineAdjustment, error)
	GetPresignedDownload(ctx context.Context, documentId string) (string, error)
	DownloadPresignedURL(ctx context.Context, url string) ([]byte, error)
	UploadDocument(ctx context.Context, leaseId, propertyId, filename string, content []byte, contentType string) error
	UpdateLease(ctx context.Context, leaseId string, payload models.LeaseUpdate) error
	ExtendLease(ctx context.Context, leaseId, endDate string) error
	CreateTask(ctx context.Context, categoryId, name, description string) (string, error)
	ListGlAccounts(ctx context.Context) ([]models.GlAccount, error)
	ListTaskCategories(ctx context.Context) ([]models.TaskCategory, error)
	GetCompanyProfile(ctx context.Context) (models.CompanyProfile, error)
	ListDocumentTemplates(ctx context.Context) ([]models.DocumentTemplate, error)
}
