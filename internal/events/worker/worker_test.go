package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verdict/internal/events"
	"verdict/internal/events/memory"
	id "verdict/pkg/domain"
)

func TestWorkerDrainsInbox(t *testing.T) {
	channel := events.NewChannel(8)
	sink := memory.NewSink()
	w := New(sink, channel.Inbox(), slog.New(slog.DiscardHandler))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, channel.Publish(ctx, events.VoteCast(id.CaseID(1), id.JurorID{}, time.Now())))
	require.NoError(t, channel.Publish(ctx, events.CaseRevealed(id.CaseID(1), true, 2, 1, 3, time.Now())))

	require.Eventually(t, func() bool {
		return len(sink.Events()) == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on cancel")
	}
}

type failingPublisher struct{ calls atomic.Int32 }

func (f *failingPublisher) Publish(context.Context, events.Event) error {
	f.calls.Add(1)
	return errors.New("broker down")
}

func TestWorkerKeepsDrainingAfterDeliveryFailure(t *testing.T) {
	channel := events.NewChannel(8)
	pub := &failingPublisher{}
	w := New(pub, channel.Inbox(), slog.New(slog.DiscardHandler))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	ctxBg := context.Background()
	require.NoError(t, channel.Publish(ctxBg, events.VoteCast(id.CaseID(1), id.JurorID{}, time.Now())))
	require.NoError(t, channel.Publish(ctxBg, events.VoteCast(id.CaseID(2), id.JurorID{}, time.Now())))

	require.Eventually(t, func() bool {
		return pub.calls.Load() == 2
	}, time.Second, 5*time.Millisecond)
}
