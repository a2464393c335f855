package workflow

import (
	"context"
	"encoding/json"
	"errors"

	"cloud.google.com/go/pubsub"

	"bitbucket.org/mmdatafocus/rentnotice_backend/config"
	"bitbucket.org/mmdatafocus/rentnotice_backend/models"
)

// TaskEventPayload is the Pub/Sub message body carrying one inbound
// lifecycle event for one account. Outer transport validation happened
// upstream; this is the already-validated form.
type TaskEventPayload struct {
	AccountId string               `json:"account_id"`
	Event     models.WorkflowEvent `json:"event"`
}

type PubSubPushEnvelope struct {
	Message struct {
		Data []byte `json:"data,omitempty"`
		ID   string `json:"id"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// PublishTaskEvent hands an event to the task-event topic, for the runner
// to feed the service deployment instead of processing inline.
func PublishTaskEvent(ctx context.Context, payload TaskEventPayload) error {
	client, err := config.GetPubSubClient(ctx)
	if err != nil {
		return err
	}

	topicName := config.TaskEventTopic()
	topic := client.Topic(topicName)
	if config.EnvBool("TASK_EVENT_CREATE_TOPIC", false) {
		topic, err = config.CreateTopicIfNotExists(ctx, client, topicName)
		if err != nil {
			return err
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	res := topic.Publish(ctx, &pubsub.Message{Data: data})
	_, err = res.Get(ctx)
	return err
}

// DecodePushEnvelope unwraps a Pub/Sub push delivery into the event
// payload.
func DecodePushEnvelope(body []byte) (TaskEventPayload, error) {
	var envelope PubSubPushEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return TaskEventPayload{}, err
	}
	var payload TaskEventPayload
	if err := json.Unmarshal(envelope.Message.Data, &payload); err != nil {
		return TaskEventPayload{}, err
	}
	if payload.AccountId == "" || payload.Event.Type == "" {
		return TaskEventPayload{}, errors.New("invalid task event payload")
	}
	return payload, nil
}
