package events

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/charmbracelet/log"
)

// PubSubClient publishes events to Google Cloud Pub/Sub topics named after
// the event type. Subscriptions push them back to /pubsub/{topic}.
type PubSubClient struct {
	client *pubsub.Client
}

var _ Publisher = (*PubSubClient)(nil)

func NewPubSub(ctx context.Context, projectID string) (*PubSubClient, error) {
	c, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}
	return &PubSubClient{client: c}, nil
}

func (c *PubSubClient) SendMessage(ctx context.Context, topic EventType, data any) error {
	payload, err := Encode(data)
	if err != nil {
		return err
	}
	result := c.client.Topic(string(topic)).Publish(ctx, &pubsub.Message{Data: payload})
	serverID, err := result.Get(ctx)
	if err != nil {
		log.Error("Failed to publish message", "error", err, "topic", topic)
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	log.Info("Published event", "topic", topic, "serverID", serverID)
	return nil
}

func (c *PubSubClient) Close() error {
	return c.client.Close()
}
