package workflow

import (
	"context"

	"bitbucket.org/mmdatafocus/rentnotice_backend/models"
	"bitbucket.org/mmdatafocus/rentnotice_backend/propwise"
	"bitbucket.org/mmdatafocus/rentnotice_backend/store"
	"github.com/sirupsen/logrus"
)

type AutomationId string

const AutomationRentIncrease AutomationId = "rent_increase_notice"

// Automation is one event-driven workflow registered for every account.
// The registry is built at startup; there is no stringly-typed lookup at
// dispatch time.
type Automation interface {
	Id() AutomationId
	Handle(ctx context.Context, acct *AccountContext, event models.WorkflowEvent) error
}

// AccountContext is everything an automation needs to run for one
// account: isolated credentials, the state store, and the archive sink.
type AccountContext struct {
	AccountId string
	Settings  models.AccountSettings
	API       propwise.API
	States    *store.AutomationStateStore
	Archive   DocumentArchiver
	Logger    *logrus.Logger
}

// DocumentArchiver keeps an audit copy of generated documents. May be nil
// (archiving disabled).
type DocumentArchiver interface {
	Archive(ctx context.Context, objectName string, content []byte, contentType string) error
}

type Registry struct {
	order    []AutomationId
	handlers map[AutomationId]Automation
}

func NewRegistry(automations ...Automation) *Registry {
	r := &Registry{handlers: make(map[AutomationId]Automation, len(automations))}
	for _, a := range automations {
		if _, dup := r.handlers[a.Id()]; dup {
			continue
		}
		r.handlers[a.Id()] = a
		r.order = append(r.order, a.Id())
	}
	return r
}

func (r *Registry) Get(id AutomationId) (Automation, bool) {
	a, ok := r.handlers[id]
	return a, ok
}

// All returns automations in registration order.
func (r *Registry) All() []Automation {
	out := make([]Automation, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.handlers[id])
	}
	return out
}
