package config

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

var (
	pubsubClient   *pubsub.Client
	pubsubClientMu sync.Mutex
)

// GetPubSubClient returns a Pub/Sub client, initializing with retries if
// needed. It uses Application Default Credentials unless
// PUBSUB_CREDENTIALS_JSON is provided.
func GetPubSubClient(ctx context.Context) (*pubsub.Client, error) {
	pubsubClientMu.Lock()
	if pubsubClient != nil {
		c := pubsubClient
		pubsubClientMu.Unlock()
		return c, nil
	}
	pubsubClientMu.Unlock()

	projectID := gcpProjectID()
	if projectID == "" {
		return nil, errors.New("GOOGLE_CLOUD_PROJECT/GCP_PROJECT not set")
	}

	credJSON := os.Getenv("PUBSUB_CREDENTIALS_JSON")

	var attempt int
	for {
		attempt++

		var opts []option.ClientOption
		if strings.TrimSpace(credJSON) != "" {
			opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
		}

		client, err := pubsub.NewClient(ctx, projectID, opts...)
		if err == nil {
			pubsubClientMu.Lock()
			pubsubClient = client
			pubsubClientMu.Unlock()
			return client, nil
		}

		if attempt >= 3 {
			return nil, err
		}
		time.Sleep(time.Duration(attempt) * time.Second)
	}
}

// CreateTopicIfNotExists returns the named topic, creating it when absent.
func CreateTopicIfNotExists(ctx context.Context, client *pubsub.Client, topicName string) (*pubsub.Topic, error) {
	topic := client.Topic(topicName)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if exists {
		return topic, nil
	}
	return client.CreateTopic(ctx, topicName)
}

// TaskEventTopic is the topic carrying task lifecycle events from the
// property-management side.
func TaskEventTopic() string {
	return EnvString("TASK_EVENT_TOPIC", "task-events")
}
