package inngest

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"
	"github.com/mauv0809/ladder/internal/events"
)

// New registers one function per topic on the Inngest client. Each function
// hands the event to the dispatcher inside a retried step.
func New(inngestClient inngestgo.Client, dispatcher Dispatcher) (InngestClient, error) {
	c := &client{
		inngestClient: inngestClient,
		sender:        inngestClient,
		dispatcher:    dispatcher,
	}
	for _, topic := range events.Topics {
		if err := c.createTopicFunction(topic); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (i *client) createTopicFunction(topic events.EventType) error {
	config := inngestgo.FunctionOpts{
		ID:   "handle-" + string(topic),
		Name: "Handle " + string(topic),
	}
	_, err := inngestgo.CreateFunction(
		i.inngestClient,
		config,
		inngestgo.EventTrigger(eventName(topic), nil),
		func(ctx context.Context, input inngestgo.Input[EventData]) (any, error) {
			// Wrapped in a step so Inngest retries the handlers on failure.
			_, err := step.Run(ctx, "dispatch", func(ctx context.Context) (string, error) {
				return "OK", i.handle(ctx, input.Event.Data)
			})
			if err != nil {
				return nil, err
			}
			return "OK", nil
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create function for %s: %w", topic, err)
	}
	return nil
}

func (i *client) handle(ctx context.Context, data EventData) error {
	payload, err := base64.StdEncoding.DecodeString(data.Payload)
	if err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}
	log.Info("Handling Inngest event", "topic", data.Topic)
	return i.dispatcher.Dispatch(ctx, data.Topic, payload)
}

func (i *client) Serve() http.Handler {
	return i.inngestClient.Serve()
}

func (i *client) SendMessage(ctx context.Context, topic events.EventType, data any) error {
	payload, err := events.Encode(data)
	if err != nil {
		return err
	}
	id, err := i.sender.Send(ctx, inngestgo.Event{
		Name: eventName(topic),
		Data: map[string]any{
			"topic":   string(topic),
			"payload": base64.StdEncoding.EncodeToString(payload),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send Inngest event %s: %w", topic, err)
	}
	log.Debug("Sent Inngest event", "topic", topic, "id", id)
	return nil
}
