package workflow

import (
	"context"
	"fmt"

	"bitbucket.org/mmdatafocus/rentnotice_backend/config"
	"bitbucket.org/mmdatafocus/rentnotice_backend/models"
	"bitbucket.org/mmdatafocus/rentnotice_backend/propwise"
	"bitbucket.org/mmdatafocus/rentnotice_backend/store"
	"bitbucket.org/mmdatafocus/rentnotice_backend/utils"
	"github.com/sirupsen/logrus"
)

// AccountDirectory lists the tenant accounts this deployment serves.
type AccountDirectory interface {
	Get(ctx context.Context, accountId string) (models.AccountRecord, error)
	List(ctx context.Context) ([]models.AccountRecord, error)
}

// JobProcessor dispatches one inbound event across accounts. Accounts are
// processed sequentially and independently; one account's failure never
// blocks its siblings.
type JobProcessor struct {
	Directory AccountDirectory
	States    *store.AutomationStateStore
	Registry  *Registry
	Secrets   func(ctx context.Context, name string) (string, error)
	NewAPI    func(apiKey string) (propwise.API, error)
	Archive   DocumentArchiver
	Logger    *logrus.Logger
}

// Run resolves each requested account (all accounts when accountIds is
// empty) and invokes every registered automation with the event. Returns
// the number of successful (account x automation) dispatches.
func (p *JobProcessor) Run(ctx context.Context, accountIds []string, event models.WorkflowEvent) (int, error) {
	accounts, err := p.resolveAccounts(ctx, accountIds)
	if err != nil {
		return 0, err
	}

	dispatched := 0
	for _, account := range accounts {
		n, err := p.processAccount(ctx, account, event)
		dispatched += n
		if err != nil {
			config.LogError(p.Logger, "workflow", "JobProcessor.Run", "account isolated after failure",
				map[string]any{"account_id": account.AccountId}, err)
			continue
		}
	}
	return dispatched, nil
}

func (p *JobProcessor) resolveAccounts(ctx context.Context, accountIds []string) ([]models.AccountRecord, error) {
	if len(accountIds) == 0 {
		return p.Directory.List(ctx)
	}
	out := make([]models.AccountRecord, 0, len(accountIds))
	for _, id := range accountIds {
		account, err := p.Directory.Get(ctx, id)
		if err != nil {
			if err == utils.ErrorAccountNotFound {
				config.LogError(p.Logger, "workflow", "JobProcessor.resolveAccounts", "unknown account skipped",
					map[string]any{"account_id": id}, err)
				continue
			}
			return nil, err
		}
		out = append(out, account)
	}
	return out, nil
}

func (p *JobProcessor) processAccount(ctx context.Context, account models.AccountRecord, event models.WorkflowEvent) (int, error) {
	if err := account.Settings.Validate(); err != nil {
		return 0, fmt.Errorf("invalid settings for account %s: %w", account.AccountId, err)
	}

	apiKey, err := p.Secrets(ctx, account.Settings.SecretName)
	if err != nil {
		return 0, fmt.Errorf("resolve credentials for account %s: %w", account.AccountId, err)
	}
	api, err := p.NewAPI(apiKey)
	if err != nil {
		return 0, fmt.Errorf("build api client for account %s: %w", account.AccountId, err)
	}

	ctx = utils.SetAccountIdInContext(ctx, account.AccountId)
	ctx = utils.SetAccountNameInContext(ctx, account.Settings.AccountName)

	acct := &AccountContext{
		AccountId: account.AccountId,
		Settings:  account.Settings,
		API:       api,
		States:    p.States,
		Archive:   p.Archive,
		Logger:    p.Logger,
	}

	dispatched := 0
	for _, automation := range p.Registry.All() {
		if err := automation.Handle(ctx, acct, event); err != nil {
			return dispatched, fmt.Errorf("automation %s: %w", automation.Id(), err)
		}
		dispatched++
	}
	return dispatched, nil
}
