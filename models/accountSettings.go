package models

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// AccountSettings is the per-account configuration held in the account
// document. The API key itself lives in Secret Manager; the document only
// carries the secret resource name.
type AccountSettings struct {
	AccountName      string   `json:"account_name" validate:"required"`
	SecretName       string   `json:"secret_name" validate:"required"`
	BlockedPhrases   []string `json:"blocked_phrases"`
	RentGlAccountIds []string `json:"rent_gl_account_ids" validate:"required,min=1"`
	TaskCategoryName string   `json:"task_category_name"`
	ChunkByteBudget  int      `json:"chunk_byte_budget" validate:"gte=0"`
}

// DefaultBlockedPhrases blocks a lease when any of these appears in a
// lease or building note, case-insensitively.
var DefaultBlockedPhrases = []string{"do not increase", "no increase", "rent freeze"}

func (s *AccountSettings) Validate() error {
	return validate.Struct(s)
}

// EffectiveBlockedPhrases falls back to the default block list when the
// account configures none.
func (s *AccountSettings) EffectiveBlockedPhrases() []string {
	if len(s.BlockedPhrases) > 0 {
		return s.BlockedPhrases
	}
	return DefaultBlockedPhrases
}

// AccountRecord is one tenant account as read from the account directory.
type AccountRecord struct {
	AccountId string          `json:"account_id"`
	Settings  AccountSettings `json:"settings"`
}
