package models

import "time"

// AutomationState is the single persisted record per account. Writes go
// through AutomationStatePatch so unrelated fields survive every save.
// Never deleted by this system.
type AutomationState struct {
	AccountId           string                 `json:"account_id"`
	CategoryId          string                 `json:"category_id,omitempty"`
	TaskId              string                 `json:"task_id,omitempty"`
	CompanyName         string                 `json:"company_name,omitempty"`
	GlAccounts          map[string]string      `json:"gl_accounts,omitempty"`
	Schedules           []RentIncreaseSchedule `json:"schedules,omitempty"`
	Chunks              []PayloadChunk         `json:"chunks,omitempty"`
	SummaryDocs         []DocumentRef          `json:"summary_docs,omitempty"`
	InitiationCompleted bool                   `json:"initiation_completed"`
	LeaseCount          int                    `json:"lease_count"`
	FormsUploaded       int                    `json:"forms_uploaded"`
	UpdatedAt           time.Time              `json:"updated_at"`
}

// AutomationStatePatch is a partial update: only non-nil fields are
// written. This replaces arbitrary nested-map merging with a total,
// typed merge contract per top-level field.
type AutomationStatePatch struct {
	AccountId           *string                 `json:"account_id,omitempty"`
	CategoryId          *string                 `json:"category_id,omitempty"`
	TaskId              *string                 `json:"task_id,omitempty"`
	CompanyName         *string                 `json:"company_name,omitempty"`
	GlAccounts          *map[string]string      `json:"gl_accounts,omitempty"`
	Schedules           *[]RentIncreaseSchedule `json:"schedules,omitempty"`
	Chunks              *[]PayloadChunk         `json:"chunks,omitempty"`
	SummaryDocs         *[]DocumentRef          `json:"summary_docs,omitempty"`
	InitiationCompleted *bool                   `json:"initiation_completed,omitempty"`
	LeaseCount          *int                    `json:"lease_count,omitempty"`
	FormsUploaded       *int                    `json:"forms_uploaded,omitempty"`
	UpdatedAt           *time.Time              `json:"updated_at,omitempty"`
}

func StringPtr(v string) *string { return &v }
func BoolPtr(v bool) *bool       { return &v }
func IntPtr(v int) *int          { return &v }

// WorkflowPhase is the automation state machine position derived from the
// persisted record.
type WorkflowPhase string

const (
	PhaseUninitiated WorkflowPhase = "UNINITIATED"
	PhaseInitiated   WorkflowPhase = "INITIATED"
	PhaseCompleted   WorkflowPhase = "COMPLETED"
)

func (s *AutomationState) Phase() WorkflowPhase {
	if s == nil || !s.InitiationCompleted {
		return PhaseUninitiated
	}
	if s.FormsUploaded > 0 {
		return PhaseCompleted
	}
	return PhaseInitiated
}
