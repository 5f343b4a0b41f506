package events

import "context"

// Publisher hands events to whatever delivers them after a commit.
type Publisher interface {
	SendMessage(ctx context.Context, topic EventType, data any) error
}
