package inngest

import (
	"github.com/inngest/inngestgo"
	"github.com/mauv0809/ladder/internal/events"
)

// eventPrefix namespaces the Inngest event names of this app.
const eventPrefix = "ladder/"

type client struct {
	inngestClient inngestgo.Client
	sender        eventSender
	dispatcher    Dispatcher
}

// EventData is the payload of every Inngest event. The tournament event
// itself travels MessagePack encoded, then base64 encoded.
type EventData struct {
	Topic   events.EventType `json:"topic"`
	Payload string           `json:"payload"`
}

func eventName(topic events.EventType) string {
	return eventPrefix + string(topic)
}
