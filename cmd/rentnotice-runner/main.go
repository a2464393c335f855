package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"bitbucket.org/mmdatafocus/rentnotice_backend/config"
	"bitbucket.org/mmdatafocus/rentnotice_backend/models"
	"bitbucket.org/mmdatafocus/rentnotice_backend/propwise"
	"bitbucket.org/mmdatafocus/rentnotice_backend/store"
	"bitbucket.org/mmdatafocus/rentnotice_backend/utils"
	"bitbucket.org/mmdatafocus/rentnotice_backend/workflow"
)

func main() {
	accountIds := flag.String("account-id", "", "Optional: comma-separated account ids (default: all accounts)")
	eventType := flag.String("event", "created", "Event to dispatch: created | completed")
	publish := flag.Bool("publish", false, "Publish the event to Pub/Sub instead of processing inline")
	flag.Parse()

	event, err := eventFromFlag(*eventType)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ids := splitAndTrim(*accountIds)
	ctx := context.Background()
	logger := config.GetLogger()

	if *publish {
		if len(ids) == 0 {
			fmt.Fprintln(os.Stderr, "--account-id is required with --publish")
			os.Exit(1)
		}
		for _, id := range ids {
			payload := workflow.TaskEventPayload{AccountId: id, Event: event}
			if err := workflow.PublishTaskEvent(ctx, payload); err != nil {
				fmt.Fprintf(os.Stderr, "publish for account %s: %v\n", id, err)
				os.Exit(1)
			}
		}
		fmt.Printf("published %d event(s)\n", len(ids))
		return
	}

	fsClient, err := config.GetFirestoreClient(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	processor := &workflow.JobProcessor{
		Directory: store.NewFirestoreAccounts(fsClient, config.AccountCollection()),
		States:    store.NewAutomationStateStore(store.NewFirestoreDocuments(fsClient, config.AutomationStateCollection())),
		Registry:  workflow.NewRegistry(workflow.NewRentIncreaseAutomation()),
		Secrets:   config.AccessSecret,
		NewAPI: func(apiKey string) (propwise.API, error) {
			return propwise.NewClient(apiKey)
		},
		Logger: logger,
	}
	if archiver := utils.NewGCSArchiverFromEnv(); archiver != nil {
		processor.Archive = archiver
	}

	dispatched, err := processor.Run(ctx, ids, event)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("dispatched %d automation run(s)\n", dispatched)
}

func eventFromFlag(name string) (models.WorkflowEvent, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "created":
		return models.WorkflowEvent{Type: models.EventTaskCreated}, nil
	case "completed":
		return models.WorkflowEvent{Type: models.EventTaskStatusChanged, Status: models.TaskStatusCompleted}, nil
	default:
		return models.WorkflowEvent{}, fmt.Errorf("unknown event %q (want created or completed)", name)
	}
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
