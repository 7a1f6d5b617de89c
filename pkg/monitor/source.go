package monitor

import "context"

// EventSource is implemented by anything that emits socket events
type EventSource interface {
	Start(ctx context.Context) error
	Events() <-chan Event
}
