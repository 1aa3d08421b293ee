package events

import "context"

// Channel is a Publisher that hands events to a background worker over a
// buffered channel, decoupling emission from request handling.
type Channel struct {
	ch chan Event
}

func NewChannel(buffer int) *Channel {
	return &Channel{ch: make(chan Event, buffer)}
}

func (c *Channel) Publish(ctx context.Context, event Event) error {
	select {
	case c.ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Inbox exposes the channel for the worker to drain.
func (c *Channel) Inbox() <-chan Event {
	return c.ch
}
