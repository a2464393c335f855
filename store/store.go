package store

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/rentnotice_backend/models"
	"bitbucket.org/mmdatafocus/rentnotice_backend/utils"
)

// StateDocuments is the document-store boundary: a collection keyed by
// account id. Firestore implements it in production; MemoryDocuments in
// tests.
type StateDocuments interface {
	Get(ctx context.Context, id string) (map[string]interface{}, bool, error)
	Set(ctx context.Context, id string, data map[string]interface{}, merge bool) error
}

// AutomationStateStore persists one automation-state record per account
// with merge-on-write semantics. No locking: a given account has at most
// one in-flight workflow, and concurrent writes are last-write-wins per
// key.
type AutomationStateStore struct {
	docs StateDocuments
}

func NewAutomationStateStore(docs StateDocuments) *AutomationStateStore {
	return &AutomationStateStore{docs: docs}
}

func (s *AutomationStateStore) Load(ctx context.Context, accountId string) (*models.AutomationState, bool, error) {
	data, ok, err := s.docs.Get(ctx, accountId)
	if err != nil || !ok {
		return nil, false, err
	}
	var state models.AutomationState
	if err := utils.FromFieldMap(data, &state); err != nil {
		return nil, false, err
	}
	state.AccountId = accountId
	return &state, true, nil
}

// Save merge-writes only the patch's non-nil fields; everything else in
// the stored record survives.
func (s *AutomationStateStore) Save(ctx context.Context, accountId string, patch models.AutomationStatePatch) error {
	if patch.UpdatedAt == nil {
		now := time.Now().UTC()
		patch.UpdatedAt = &now
	}
	patch.AccountId = models.StringPtr(accountId)
	data, err := utils.ToFieldMap(patch)
	if err != nil {
		return err
	}
	return s.docs.Set(ctx, accountId, data, true)
}

// Replace performs an explicit destructive full overwrite. No workflow
// calls this; it exists for operator tooling.
func (s *AutomationStateStore) Replace(ctx context.Context, accountId string, state models.AutomationState) error {
	state.AccountId = accountId
	state.UpdatedAt = time.Now().UTC()
	data, err := utils.ToFieldMap(state)
	if err != nil {
		return err
	}
	return s.docs.Set(ctx, accountId, data, false)
}
