package workflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"bitbucket.org/mmdatafocus/rentnotice_backend/models"
	"bitbucket.org/mmdatafocus/rentnotice_backend/propwise"
	"bitbucket.org/mmdatafocus/rentnotice_backend/store"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type createdTask struct {
	CategoryId  string
	Name        string
	Description string
}

type uploadedDoc struct {
	LeaseId     string
	PropertyId  string
	Filename    string
	ContentType string
	Content     []byte
}

type fakeAPI struct {
	leases        []models.LeaseEligibilityRecord
	rates         models.RateTable
	leaseNotes    map[string][]models.Note
	buildingNotes map[string][]models.Note
	transactions  map[string][]models.RecurringTransaction
	agis          map[string]*models.AboveGuidelineAdjustment
	attachments   map[string][]byte
	glAccounts    []models.GlAccount
	categories    []models.TaskCategory
	company       models.CompanyProfile

	createdTasks []createdTask
	uploads      []uploadedDoc
	leaseUpdates map[string]models.LeaseUpdate
	extensions   map[string]string
	taskSeq      int
}

var _ propwise.API = (*fakeAPI)(nil)

func (f *fakeAPI) ListEligibleLeases(ctx context.Context) ([]models.LeaseEligibilityRecord, error) {
	return f.leases, nil
}

func (f *fakeAPI) GetMarketRent(ctx context.Context, propertyId, unitId string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (f *fakeAPI) GetIncreaseRates(ctx context.Context) (models.RateTable, error) {
	return f.rates, nil
}

func (f *fakeAPI) ListLeaseNotes(ctx context.Context, leaseId string) ([]models.Note, error) {
	return f.leaseNotes[leaseId], nil
}

func (f *fakeAPI) ListBuildingNotes(ctx context.Context, propertyId string) ([]models.Note, error) {
	return f.buildingNotes[propertyId], nil
}

func (f *fakeAPI) ListRecurringTransactions(ctx context.Context, leaseId string) ([]models.RecurringTransaction, error) {
	return f.transactions[leaseId], nil
}

func (f *fakeAPI) GetAboveGuidelineIncrease(ctx context.Context, leaseId string) (*models.AboveGuidelineAdjustment, error) {
	return f.agis[leaseId], nil
}

func (f *fakeAPI) GetPresignedDownload(ctx context.Context, documentId string) (string, error) {
	return "https://signed.example/" + documentId, nil
}

func (f *fakeAPI) DownloadPresignedURL(ctx context.Context, url string) ([]byte, error) {
	for id, content := range f.attachments {
		if url == "https://signed.example/"+id {
			return content, nil
		}
	}
	return nil, errors.New("unknown presigned url " + url)
}

func (f *fakeAPI) UploadDocument(ctx context.Context, leaseId, propertyId, filename string, content []byte, contentType string) error {
	f.uploads = append(f.uploads, uploadedDoc{
		LeaseId:     leaseId,
		PropertyId:  propertyId,
		Filename:    filename,
		ContentType: contentType,
		Content:     content,
	})
	return nil
}

func (f *fakeAPI) UpdateLease(ctx context.Context, leaseId string, payload models.LeaseUpdate) error {
	if f.leaseUpdates == nil {
		f.leaseUpdates = map[string]models.LeaseUpdate{}
	}
	f.leaseUpdates[leaseId] = payload
	return nil
}

func (f *fakeAPI) ExtendLease(ctx context.Context, leaseId, endDate string) error {
	if f.extensions == nil {
		f.extensions = map[string]string{}
	}
	f.extensions[leaseId] = endDate
	return nil
}

func (f *fakeAPI) CreateTask(ctx context.Context, categoryId, name, description string) (string, error) {
	f.taskSeq++
	f.createdTasks = append(f.createdTasks, createdTask{CategoryId: categoryId, Name: name, Description: description})
	return fmt.Sprintf("task-%d", f.taskSeq), nil
}

func (f *fakeAPI) ListGlAccounts(ctx context.Context) ([]models.GlAccount, error) {
	return f.glAccounts, nil
}

func (f *fakeAPI) ListTaskCategories(ctx context.Context) ([]models.TaskCategory, error) {
	return f.categories, nil
}

func (f *fakeAPI) GetCompanyProfile(ctx context.Context) (models.CompanyProfile, error) {
	return f.company, nil
}

func (f *fakeAPI) ListDocumentTemplates(ctx context.Context) ([]models.DocumentTemplate, error) {
	return nil, nil
}

type fakeArchiver struct {
	objects map[string][]byte
	types   map[string]string
}

func (a *fakeArchiver) Archive(ctx context.Context, objectName string, content []byte, contentType string) error {
	if a.objects == nil {
		a.objects = map[string][]byte{}
		a.types = map[string]string{}
	}
	a.objects[objectName] = content
	a.types[objectName] = contentType
	return nil
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(bytes.NewBuffer(nil))
	return l
}

func defaultRate(v string) models.RateTable {
	d := decimal.RequireFromString(v)
	return models.RateTable{Default: &d}
}

func rentTxn(leaseId string) []models.RecurringTransaction {
	return []models.RecurringTransaction{
		{TransactionId: "T-" + leaseId, LeaseId: leaseId, GlAccountId: "gl-rent", Amount: decimal.RequireFromString("1000"), Frequency: "monthly"},
	}
}

func workflowFixture() (*fakeAPI, *AccountContext, *fakeArchiver) {
	api := &fakeAPI{
		leases: []models.LeaseEligibilityRecord{
			{
				LeaseId: "L1", PropertyId: "P1", UnitId: "U1",
				PropertyName: "Maple Court", UnitName: "101",
				TenantNames: []string{"A. Tenant"},
				CurrentRent: decimal.RequireFromString("1000.00"),
				EffectiveDate: "2026-12-01",
			},
			{
				LeaseId: "L2", PropertyId: "P1", UnitId: "U2",
				PropertyName: "Maple Court", UnitName: "102",
				TenantNames: []string{"B. Tenant"},
				CurrentRent: decimal.RequireFromString("900.00"),
				EffectiveDate: "2026-12-01",
			},
			{
				LeaseId: "L3", PropertyId: "P2", UnitId: "U3",
				PropertyName: "Oak Terrace", UnitName: "2B",
				TenantNames: []string{"C. Tenant"},
				CurrentRent:      decimal.RequireFromString("1200.00"),
				EffectiveDate:    "2027-01-01",
				IsExtended:       true,
				ExtensionEndDate: "2028-01-01",
			},
		},
		rates: defaultRate("0.0236"),
		leaseNotes: map[string][]models.Note{
			"L2": {{Id: "N1", Subject: "Instruction", Body: "Do NOT increase this tenant"}},
		},
		buildingNotes: map[string][]models.Note{},
		transactions: map[string][]models.RecurringTransaction{
			"L1": rentTxn("L1"),
			"L2": rentTxn("L2"),
			"L3": rentTxn("L3"),
		},
		agis:       map[string]*models.AboveGuidelineAdjustment{},
		glAccounts: []models.GlAccount{{Id: "gl-rent", Name: "Rental Income"}},
		categories: []models.TaskCategory{
			{Id: "cat-1", Name: "General"},
			{Id: "cat-2", Name: "Rent Increases"},
		},
		company: models.CompanyProfile{Name: "Maple Property Management"},
	}
	archive := &fakeArchiver{}
	acct := &AccountContext{
		AccountId: "acct-1",
		Settings: models.AccountSettings{
			AccountName:      "Maple",
			SecretName:       "projects/x/secrets/maple",
			RentGlAccountIds: []string{"gl-rent"},
			TaskCategoryName: "Rent Increases",
		},
		API:     api,
		States:  store.NewAutomationStateStore(store.NewMemoryDocuments()),
		Archive: archive,
		Logger:  testLogger(),
	}
	return api, acct, archive
}

func TestRentIncreaseInitiate(t *testing.T) {
	ctx := context.Background()
	api, acct, archive := workflowFixture()
	auto := &RentIncreaseAutomation{ChunkByteBudget: 900_000, XorKey: []byte("test-key")}

	err := auto.Handle(ctx, acct, models.WorkflowEvent{Type: models.EventTaskCreated})
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	state, ok, err := acct.States.Load(ctx, acct.AccountId)
	if err != nil || !ok {
		t.Fatalf("expected persisted state, ok=%v err=%v", ok, err)
	}
	if !state.InitiationCompleted {
		t.Fatal("expected InitiationCompleted")
	}
	if state.Phase() != models.PhaseInitiated {
		t.Fatalf("expected INITIATED phase, got %s", state.Phase())
	}
	if state.LeaseCount != 2 {
		t.Fatalf("expected 2 schedules (L2 is note-blocked), got %d", state.LeaseCount)
	}
	if state.CompanyName != "Maple Property Management" {
		t.Fatalf("unexpected company name %q", state.CompanyName)
	}
	if state.CategoryId != "cat-2" {
		t.Fatalf("expected configured category cat-2, got %q", state.CategoryId)
	}
	if state.GlAccounts["gl-rent"] != "Rental Income" {
		t.Fatalf("expected gl account cache, got %v", state.GlAccounts)
	}
	if len(state.Chunks) == 0 {
		t.Fatal("expected at least one payload chunk")
	}

	for _, s := range state.Schedules {
		if s.LeaseId == "L2" {
			t.Fatal("note-blocked lease L2 must not be scheduled")
		}
		if s.LeaseId == "L1" && s.NewRent.StringFixed(2) != "1023.60" {
			t.Fatalf("L1 new rent: expected 1023.60, got %s", s.NewRent.StringFixed(2))
		}
	}

	// Staged chunks decode back into the same schedules.
	entries, err := DecodeChunks(state.Chunks, []byte("test-key"))
	if err != nil {
		t.Fatalf("decode staged chunks: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 staged entries, got %d", len(entries))
	}

	// Summary documents were archived under the account/date prefix.
	if len(archive.objects) != 2 {
		t.Fatalf("expected 2 archived documents, got %d", len(archive.objects))
	}
	for name, content := range archive.objects {
		switch archive.types[name] {
		case XlsxContentType:
			if !bytes.HasPrefix(content, []byte("PK")) {
				t.Fatalf("archived workbook %s is not a zip container", name)
			}
		case PdfContentType:
			if !bytes.HasPrefix(content, []byte("%PDF")) {
				t.Fatalf("archived summary %s is not a PDF", name)
			}
		default:
			t.Fatalf("unexpected archived content type for %s", name)
		}
	}

	if len(api.createdTasks) != 1 {
		t.Fatalf("expected one review task, got %d", len(api.createdTasks))
	}
	if api.createdTasks[0].CategoryId != "cat-2" {
		t.Fatalf("review task category: got %q", api.createdTasks[0].CategoryId)
	}
}

func TestRentIncreaseInitiate_NoRateExclusion(t *testing.T) {
	ctx := context.Background()
	_, acct, _ := workflowFixture()
	api := acct.API.(*fakeAPI)
	api.rates = models.RateTable{
		Overrides: map[string]decimal.Decimal{"P2": decimal.RequireFromString("0.03")},
	}
	auto := &RentIncreaseAutomation{ChunkByteBudget: 900_000, XorKey: []byte("test-key")}

	if err := auto.Handle(ctx, acct, models.WorkflowEvent{Type: models.EventTaskCreated}); err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	state, _, err := acct.States.Load(ctx, acct.AccountId)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if state.LeaseCount != 1 {
		t.Fatalf("only P2 has a rate; expected 1 schedule, got %d", state.LeaseCount)
	}
	if state.Schedules[0].LeaseId != "L3" {
		t.Fatalf("expected only L3 scheduled, got %s", state.Schedules[0].LeaseId)
	}
}

func TestRentIncreaseInitiate_ZeroLeases(t *testing.T) {
	ctx := context.Background()
	_, acct, archive := workflowFixture()
	api := acct.API.(*fakeAPI)
	api.leases = nil
	auto := &RentIncreaseAutomation{ChunkByteBudget: 900_000, XorKey: []byte("test-key")}

	if err := auto.Handle(ctx, acct, models.WorkflowEvent{Type: models.EventTaskCreated}); err != nil {
		t.Fatalf("zero-lease initiate failed: %v", err)
	}

	state, ok, err := acct.States.Load(ctx, acct.AccountId)
	if err != nil || !ok {
		t.Fatalf("expected persisted state, ok=%v err=%v", ok, err)
	}
	if state.LeaseCount != 0 || len(state.Chunks) != 0 {
		t.Fatalf("expected empty run, got count=%d chunks=%d", state.LeaseCount, len(state.Chunks))
	}
	if !state.InitiationCompleted {
		t.Fatal("zero-lease run still completes initiation")
	}
	if len(archive.objects) != 2 {
		t.Fatalf("summary documents are produced even for zero leases, got %d", len(archive.objects))
	}
	if len(api.createdTasks) != 1 {
		t.Fatalf("review task is created even for zero leases, got %d", len(api.createdTasks))
	}
}

func TestRentIncreaseInitiate_AgiAttachmentStaged(t *testing.T) {
	ctx := context.Background()
	_, acct, _ := workflowFixture()
	api := acct.API.(*fakeAPI)
	attachment := []byte("agi supporting document bytes")
	api.agis["L1"] = &models.AboveGuidelineAdjustment{
		MonthlyAmount: decimal.RequireFromString("25.00"),
		DocumentId:    "doc-9",
	}
	api.attachments = map[string][]byte{"doc-9": attachment}
	auto := &RentIncreaseAutomation{ChunkByteBudget: 900_000, XorKey: []byte("test-key")}

	if err := auto.Handle(ctx, acct, models.WorkflowEvent{Type: models.EventTaskCreated}); err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	state, _, err := acct.States.Load(ctx, acct.AccountId)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	entries, err := DecodeChunks(state.Chunks, []byte("test-key"))
	if err != nil {
		t.Fatalf("decode chunks: %v", err)
	}
	found := false
	for _, e := range entries {
		if e.Schedule.LeaseId == "L1" {
			found = true
			if !bytes.Equal(e.Attachment, attachment) {
				t.Fatal("attachment bytes did not survive staging")
			}
			if e.Schedule.NewRent.StringFixed(2) != "1048.60" {
				t.Fatalf("expected 1023.60 + 25.00 AGI = 1048.60, got %s", e.Schedule.NewRent.StringFixed(2))
			}
		}
	}
	if !found {
		t.Fatal("L1 entry missing from staged payload")
	}
}

func TestRentIncreaseComplete(t *testing.T) {
	ctx := context.Background()
	api, acct, _ := workflowFixture()
	auto := &RentIncreaseAutomation{ChunkByteBudget: 900_000, XorKey: []byte("test-key")}

	if err := auto.Handle(ctx, acct, models.WorkflowEvent{Type: models.EventTaskCreated}); err != nil {
		t.Fatalf("initiate failed: %v", err)
	}
	initiateTasks := len(api.createdTasks)

	err := auto.Handle(ctx, acct, models.WorkflowEvent{Type: models.EventTaskStatusChanged, Status: "completed"})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	if len(api.uploads) != 2 {
		t.Fatalf("expected 2 notice uploads, got %d", len(api.uploads))
	}
	for _, up := range api.uploads {
		if up.ContentType != PdfContentType {
			t.Fatalf("notice content type: got %q", up.ContentType)
		}
		if !bytes.HasPrefix(up.Content, []byte("%PDF")) {
			t.Fatalf("uploaded notice %s is not a PDF", up.Filename)
		}
	}

	if len(api.leaseUpdates) != 2 {
		t.Fatalf("expected 2 lease updates, got %d", len(api.leaseUpdates))
	}
	if got := api.leaseUpdates["L1"].RentAmount.StringFixed(2); got != "1023.60" {
		t.Fatalf("L1 committed rent: expected 1023.60, got %s", got)
	}

	// Only L3 carries an extension.
	if len(api.extensions) != 1 {
		t.Fatalf("expected exactly one lease extension, got %d", len(api.extensions))
	}
	if api.extensions["L3"] != "2028-01-01" {
		t.Fatalf("L3 extension end date: got %q", api.extensions["L3"])
	}

	// One follow-up task per property: P1 (L1) and P2 (L3).
	propertyTasks := api.createdTasks[initiateTasks:]
	if len(propertyTasks) != 2 {
		t.Fatalf("expected 2 per-property tasks, got %d", len(propertyTasks))
	}

	state, _, err := acct.States.Load(ctx, acct.AccountId)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if state.FormsUploaded != 2 {
		t.Fatalf("expected FormsUploaded=2, got %d", state.FormsUploaded)
	}
	if state.Phase() != models.PhaseCompleted {
		t.Fatalf("expected COMPLETED phase, got %s", state.Phase())
	}
	if state.LeaseCount != 2 || len(state.Schedules) != 2 {
		t.Fatal("completion must not disturb the initiation record")
	}
}

func TestRentIncreaseComplete_Redelivered(t *testing.T) {
	ctx := context.Background()
	api, acct, _ := workflowFixture()
	auto := &RentIncreaseAutomation{ChunkByteBudget: 900_000, XorKey: []byte("test-key")}

	if err := auto.Handle(ctx, acct, models.WorkflowEvent{Type: models.EventTaskCreated}); err != nil {
		t.Fatalf("initiate failed: %v", err)
	}
	completion := models.WorkflowEvent{Type: models.EventTaskStatusChanged, Status: "completed"}
	if err := auto.Handle(ctx, acct, completion); err != nil {
		t.Fatalf("first completion failed: %v", err)
	}
	uploadsAfterFirst := len(api.uploads)

	if err := auto.Handle(ctx, acct, completion); err != nil {
		t.Fatalf("redelivered completion failed: %v", err)
	}

	state, _, err := acct.States.Load(ctx, acct.AccountId)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if state.FormsUploaded != uploadsAfterFirst {
		t.Fatalf("redelivery must overwrite, not accumulate: got %d", state.FormsUploaded)
	}
}

func TestRentIncreaseComplete_NotInitiated(t *testing.T) {
	ctx := context.Background()
	_, acct, _ := workflowFixture()
	auto := &RentIncreaseAutomation{ChunkByteBudget: 900_000, XorKey: []byte("test-key")}

	err := auto.Handle(ctx, acct, models.WorkflowEvent{Type: models.EventTaskStatusChanged, Status: "completed"})
	if !errors.Is(err, ErrNotInitiated) {
		t.Fatalf("expected ErrNotInitiated, got %v", err)
	}
}

func TestRentIncreaseIgnoresOtherEvents(t *testing.T) {
	ctx := context.Background()
	api, acct, _ := workflowFixture()
	auto := &RentIncreaseAutomation{ChunkByteBudget: 900_000, XorKey: []byte("test-key")}

	err := auto.Handle(ctx, acct, models.WorkflowEvent{Type: models.EventTaskStatusChanged, Status: "in_progress"})
	if err != nil {
		t.Fatalf("non-completion status change should be a no-op, got %v", err)
	}
	if len(api.createdTasks) != 0 || len(api.uploads) != 0 {
		t.Fatal("no-op event must not touch the source system")
	}
	if _, ok, _ := acct.States.Load(ctx, acct.AccountId); ok {
		t.Fatal("no-op event must not persist state")
	}
}
