package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"appsuite-backend/internal/logger"
	"appsuite-backend/internal/metrics"

	"github.com/sony/gobreaker"
)

// ErrRelayUnavailable is returned while the breaker is open
var ErrRelayUnavailable = errors.New("mail relay temporarily unavailable")

// BreakerSender bounds every send with a timeout and stops calling a relay
// that keeps failing. After 5 consecutive failures the breaker opens for 60s,
// then lets a single probe through.
type BreakerSender struct {
	next     Sender
	provider string
	timeout  time.Duration
	cb       *gobreaker.CircuitBreaker
}

func NewBreakerSender(next Sender, provider string, timeout time.Duration) *BreakerSender {
	settings := gobreaker.Settings{
		Name:        "mail-" + provider,
		MaxRequests: 1,
		Interval:    2 * time.Minute,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// ErrNotConfigured is a local problem, not a relay failure
			return err == nil || errors.Is(err, ErrNotConfigured)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "component", name, "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	}
	return &BreakerSender{
		next:     next,
		provider: provider,
		timeout:  timeout,
		cb:       gobreaker.NewCircuitBreaker(settings),
	}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

func (b *BreakerSender) Send(ctx context.Context, msg Message) error {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	start := time.Now()
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Send(ctx, msg)
	})
	metrics.MailSendDuration.WithLabelValues(b.provider).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.MailSendTotal.WithLabelValues(b.provider, "sent").Inc()
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.MailSendTotal.WithLabelValues(b.provider, "rejected").Inc()
		return fmt.Errorf("%w: %v", ErrRelayUnavailable, err)
	default:
		metrics.MailSendTotal.WithLabelValues(b.provider, "failed").Inc()
		return err
	}
}

// State reports the breaker state, for health checks
func (b *BreakerSender) State() string {
	return b.cb.State().String()
}
