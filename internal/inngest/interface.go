package inngest

import (
	"context"
	"net/http"

	"github.com/mauv0809/ladder/internal/events"
)

// InngestClient publishes tournament events to Inngest and serves the
// functions that consume them.
type InngestClient interface {
	events.Publisher
	Serve() http.Handler
}

// Dispatcher runs the handlers registered for a topic.
type Dispatcher interface {
	Dispatch(ctx context.Context, topic events.EventType, data []byte) error
}

// eventSender is the part of inngestgo.Client used to publish.
type eventSender interface {
	Send(ctx context.Context, evt any) (string, error)
}
