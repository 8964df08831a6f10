package mail

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreakerSender_OpensAfterConsecutiveFailures(t *testing.T) {
	var calls int32
	failing := SenderFunc(func(context.Context, Message) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("connection refused")
	})
	b := NewBreakerSender(failing, "test-open", time.Second)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := b.Send(ctx, Message{To: "a@x.com"})
		assert.EqualError(t, err, "connection refused")
	}
	assert.Equal(t, "open", b.State())

	err := b.Send(ctx, Message{To: "a@x.com"})
	assert.ErrorIs(t, err, ErrRelayUnavailable)
	assert.Equal(t, int32(5), atomic.LoadInt32(&calls), "open breaker must not reach the relay")
}

func TestBreakerSender_NotConfiguredDoesNotTrip(t *testing.T) {
	b := NewBreakerSender(SenderFunc(func(context.Context, Message) error { return ErrNotConfigured }), "test-unconfigured", time.Second)

	for i := 0; i < 10; i++ {
		assert.ErrorIs(t, b.Send(context.Background(), Message{}), ErrNotConfigured)
	}
	assert.Equal(t, "closed", b.State())
}

func TestBreakerSender_AppliesTimeout(t *testing.T) {
	slow := SenderFunc(func(ctx context.Context, _ Message) error {
		<-ctx.Done()
		return ctx.Err()
	})
	b := NewBreakerSender(slow, "test-timeout", 10*time.Millisecond)

	start := time.Now()
	err := b.Send(context.Background(), Message{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestBreakerSender_PassesSuccess(t *testing.T) {
	var got Message
	b := NewBreakerSender(SenderFunc(func(_ context.Context, m Message) error {
		got = m
		return nil
	}), "test-ok", time.Second)

	assert.NoError(t, b.Send(context.Background(), Message{To: "a@x.com", Subject: "hi"}))
	assert.Equal(t, "hi", got.Subject)
}
