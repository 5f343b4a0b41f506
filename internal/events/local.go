package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// Local delivers events in process to subscribed handlers. Handler errors and
// panics are logged and never reach the publisher.
type Local struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	onError  func(topic EventType, err error)
}

var _ Publisher = (*Local)(nil)

func NewLocal() *Local {
	return &Local{handlers: make(map[EventType][]Handler)}
}

// OnError registers a callback for failed handlers, e.g. to count them.
func (l *Local) OnError(fn func(topic EventType, err error)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onError = fn
}

func (l *Local) Subscribe(topic EventType, h Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers[topic] = append(l.handlers[topic], h)
}

func (l *Local) SendMessage(ctx context.Context, topic EventType, data any) error {
	payload, err := Encode(data)
	if err != nil {
		return err
	}
	l.mu.RLock()
	handlers := append([]Handler(nil), l.handlers[topic]...)
	onError := l.onError
	l.mu.RUnlock()

	for _, h := range handlers {
		if err := runHandler(ctx, h, payload); err != nil {
			log.Error("Event handler failed", "topic", topic, "error", err)
			if onError != nil {
				onError(topic, err)
			}
		}
	}
	return nil
}

func runHandler(ctx context.Context, h Handler, payload []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h(ctx, payload)
}
