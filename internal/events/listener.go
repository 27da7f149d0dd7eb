package events

import "context"

// ListenerFunc handles a single event
type ListenerFunc func(ctx context.Context, event Event) error

type funcListener struct {
	id       string
	priority int
	fn       ListenerFunc
}

// NewListener adapts a function into an EventListener
func NewListener(id string, priority int, fn ListenerFunc) EventListener {
	return &funcListener{id: id, priority: priority, fn: fn}
}

func (l *funcListener) HandleEvent(ctx context.Context, event Event) error {
	return l.fn(ctx, event)
}

func (l *funcListener) Priority() int { return l.priority }
func (l *funcListener) ID() string    { return l.id }
