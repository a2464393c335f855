package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/rentnotice_backend/config"
	"bitbucket.org/mmdatafocus/rentnotice_backend/models"
	"github.com/sirupsen/logrus"
)

// ErrNotInitiated means a completion event arrived before any successful
// initiation run persisted schedules for the account.
var ErrNotInitiated = errors.New("rent increase automation not initiated")

// RentIncreaseAutomation is the two-phase rent increase workflow:
// task.created stages schedules, chunks and summary documents into the
// account's automation state; task.status_changed=completed replays the
// persisted schedules into notices and lease updates. Both phases are
// safe to re-deliver.
type RentIncreaseAutomation struct {
	ChunkByteBudget int
	XorKey          []byte
}

func NewRentIncreaseAutomation() *RentIncreaseAutomation {
	return &RentIncreaseAutomation{
		ChunkByteBudget: config.ChunkByteBudget(),
		XorKey:          config.ChunkXorKey(),
	}
}

func (a *RentIncreaseAutomation) Id() AutomationId {
	return AutomationRentIncrease
}

func (a *RentIncreaseAutomation) Handle(ctx context.Context, acct *AccountContext, event models.WorkflowEvent) error {
	switch {
	case event.Type == models.EventTaskCreated:
		return a.initiate(ctx, acct, event)
	case event.IsCompletion():
		return a.complete(ctx, acct)
	default:
		return nil
	}
}

func (a *RentIncreaseAutomation) initiate(ctx context.Context, acct *AccountContext, event models.WorkflowEvent) error {
	api := acct.API

	rateTable, err := api.GetIncreaseRates(ctx)
	if err != nil {
		return fmt.Errorf("fetch increase rates: %w", err)
	}
	leases, err := api.ListEligibleLeases(ctx)
	if err != nil {
		return fmt.Errorf("list eligible leases: %w", err)
	}
	company, err := api.GetCompanyProfile(ctx)
	if err != nil {
		return fmt.Errorf("fetch company profile: %w", err)
	}

	input := EligibilityInput{
		LeaseNotes:       map[string][]models.Note{},
		BuildingNotes:    map[string][]models.Note{},
		Transactions:     map[string][]models.RecurringTransaction{},
		BlockedPhrases:   acct.Settings.EffectiveBlockedPhrases(),
		RentGlAccountIds: acct.Settings.RentGlAccountIds,
	}
	for _, lease := range leases {
		notes, err := api.ListLeaseNotes(ctx, lease.LeaseId)
		if err != nil {
			return fmt.Errorf("list notes for lease %s: %w", lease.LeaseId, err)
		}
		input.LeaseNotes[lease.LeaseId] = notes

		if _, seen := input.BuildingNotes[lease.PropertyId]; !seen {
			bNotes, err := api.ListBuildingNotes(ctx, lease.PropertyId)
			if err != nil {
				return fmt.Errorf("list notes for property %s: %w", lease.PropertyId, err)
			}
			input.BuildingNotes[lease.PropertyId] = bNotes
		}

		txns, err := api.ListRecurringTransactions(ctx, lease.LeaseId)
		if err != nil {
			return fmt.Errorf("list transactions for lease %s: %w", lease.LeaseId, err)
		}
		input.Transactions[lease.LeaseId] = txns
	}

	included, excluded := PartitionEligible(leases, input)

	var entries []models.PayloadEntry
	var schedules []models.RentIncreaseSchedule
	for _, el := range included {
		rate, err := ResolveRate(rateTable, el.Lease.PropertyId)
		if err != nil {
			excluded = append(excluded, ExclusionRecord{LeaseId: el.Lease.LeaseId, Reason: ReasonNoRate})
			continue
		}
		agi, err := api.GetAboveGuidelineIncrease(ctx, el.Lease.LeaseId)
		if err != nil {
			return fmt.Errorf("fetch agi for lease %s: %w", el.Lease.LeaseId, err)
		}
		entry, err := BuildPayloadEntry(ctx, api, el, rate, agi)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
		schedules = append(schedules, entry.Schedule)
	}

	for _, ex := range excluded {
		acct.Logger.WithFields(logrus.Fields{
			"account_id": acct.AccountId,
			"lease_id":   ex.LeaseId,
			"reason":     ex.Reason,
		}).Info("lease excluded from rent increase run")
	}

	budget := a.ChunkByteBudget
	if acct.Settings.ChunkByteBudget > 0 {
		budget = acct.Settings.ChunkByteBudget
	}
	var chunks []models.PayloadChunk
	if len(entries) > 0 {
		chunks, err = ChunkEntries(entries, budget, a.XorKey)
		if err != nil {
			return fmt.Errorf("chunk payload entries: %w", err)
		}
	}

	workbook, err := BuildSummaryWorkbook(schedules)
	if err != nil {
		return fmt.Errorf("build summary workbook: %w", err)
	}
	portfolio, err := BuildPortfolioSummary(company.Name, schedules)
	if err != nil {
		return fmt.Errorf("build portfolio summary: %w", err)
	}

	summaryDocs := []models.DocumentRef{
		{Filename: SummaryWorkbookName, ContentType: XlsxContentType},
		{Filename: PortfolioSummaryName, ContentType: PdfContentType},
	}
	if acct.Archive != nil {
		runPrefix := fmt.Sprintf("%s/%s", acct.AccountId, time.Now().UTC().Format("2006-01-02"))
		contents := [][]byte{workbook, portfolio}
		for i := range summaryDocs {
			objectName := runPrefix + "/" + summaryDocs[i].Filename
			if err := acct.Archive.Archive(ctx, objectName, contents[i], summaryDocs[i].ContentType); err != nil {
				return fmt.Errorf("archive %s: %w", summaryDocs[i].Filename, err)
			}
			summaryDocs[i].ArchivePath = objectName
		}
	}

	glAccounts, err := api.ListGlAccounts(ctx)
	if err != nil {
		return fmt.Errorf("list gl accounts: %w", err)
	}
	glCache := make(map[string]string, len(glAccounts))
	for _, gl := range glAccounts {
		glCache[gl.Id] = gl.Name
	}

	categoryId, err := a.resolveTaskCategory(ctx, acct)
	if err != nil {
		return err
	}

	taskId, err := api.CreateTask(ctx, categoryId,
		"Rent increase schedule prepared",
		fmt.Sprintf("Computed %d rent increase schedule(s); %d lease(s) excluded. Review the summary documents, then mark this task completed to issue notices.", len(schedules), len(excluded)),
	)
	if err != nil {
		return fmt.Errorf("create follow-up task: %w", err)
	}

	patch := models.AutomationStatePatch{
		CategoryId:          models.StringPtr(categoryId),
		TaskId:              models.StringPtr(taskId),
		CompanyName:         models.StringPtr(company.Name),
		GlAccounts:          &glCache,
		Schedules:           &schedules,
		Chunks:              &chunks,
		SummaryDocs:         &summaryDocs,
		InitiationCompleted: models.BoolPtr(true),
		LeaseCount:          models.IntPtr(len(schedules)),
	}
	if err := acct.States.Save(ctx, acct.AccountId, patch); err != nil {
		return fmt.Errorf("persist automation state: %w", err)
	}

	acct.Logger.WithFields(logrus.Fields{
		"account_id":  acct.AccountId,
		"lease_count": len(schedules),
		"excluded":    len(excluded),
		"chunks":      len(chunks),
	}).Info("rent increase initiation completed")
	return nil
}

func (a *RentIncreaseAutomation) resolveTaskCategory(ctx context.Context, acct *AccountContext) (string, error) {
	categories, err := acct.API.ListTaskCategories(ctx)
	if err != nil {
		return "", fmt.Errorf("list task categories: %w", err)
	}
	if len(categories) == 0 {
		return "", errors.New("no task categories configured in source system")
	}
	if want := acct.Settings.TaskCategoryName; want != "" {
		for _, cat := range categories {
			if cat.Name == want {
				return cat.Id, nil
			}
		}
	}
	return categories[0].Id, nil
}

func (a *RentIncreaseAutomation) complete(ctx context.Context, acct *AccountContext) error {
	state, ok, err := acct.States.Load(ctx, acct.AccountId)
	if err != nil {
		return fmt.Errorf("load automation state: %w", err)
	}
	if !ok || !state.InitiationCompleted {
		return ErrNotInitiated
	}

	api := acct.API
	uploaded := 0
	byProperty := map[string][]models.RentIncreaseSchedule{}
	var propertyOrder []string

	for _, s := range state.Schedules {
		notice, err := BuildNoticePDF(state.CompanyName, s)
		if err != nil {
			return fmt.Errorf("build notice for lease %s: %w", s.LeaseId, err)
		}
		filename := NoticeFilename(s)
		if err := api.UploadDocument(ctx, s.LeaseId, s.PropertyId, filename, notice, PdfContentType); err != nil {
			return fmt.Errorf("upload notice for lease %s: %w", s.LeaseId, err)
		}
		uploaded++

		update := models.LeaseUpdate{
			RentAmount:    s.NewRent,
			EffectiveDate: s.EffectiveDate,
			Comment:       fmt.Sprintf("Guideline rent increase %s applied", s.RatePercent),
		}
		if err := api.UpdateLease(ctx, s.LeaseId, update); err != nil {
			return fmt.Errorf("update lease %s: %w", s.LeaseId, err)
		}
		if s.IsExtended && s.ExtensionEndDate != "" {
			if err := api.ExtendLease(ctx, s.LeaseId, s.ExtensionEndDate); err != nil {
				return fmt.Errorf("extend lease %s: %w", s.LeaseId, err)
			}
		}

		if _, seen := byProperty[s.PropertyId]; !seen {
			propertyOrder = append(propertyOrder, s.PropertyId)
		}
		byProperty[s.PropertyId] = append(byProperty[s.PropertyId], s)
	}

	for _, propertyId := range propertyOrder {
		group := byProperty[propertyId]
		_, err := api.CreateTask(ctx, state.CategoryId,
			fmt.Sprintf("Rent increase notices issued: %s", group[0].PropertyName),
			fmt.Sprintf("%d notice(s) uploaded and lease rent(s) updated for %s.", len(group), group[0].PropertyName),
		)
		if err != nil {
			return fmt.Errorf("create property follow-up task for %s: %w", propertyId, err)
		}
	}

	patch := models.AutomationStatePatch{
		FormsUploaded: models.IntPtr(uploaded),
	}
	if err := acct.States.Save(ctx, acct.AccountId, patch); err != nil {
		return fmt.Errorf("persist forms uploaded count: %w", err)
	}

	acct.Logger.WithFields(logrus.Fields{
		"account_id":     acct.AccountId,
		"forms_uploaded": uploaded,
		"properties":     len(propertyOrder),
	}).Info("rent increase completion finished")
	return nil
}
