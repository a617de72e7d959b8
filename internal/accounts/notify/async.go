package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

const DefaultSendTimeout = 30 * time.Second

// AsyncSender hands each message to a goroutine so callers never wait on
// delivery. Failures are logged. Close waits for in-flight sends.
type AsyncSender struct {
	next    Sender
	timeout time.Duration

	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

func NewAsyncSender(next Sender, timeout time.Duration) *AsyncSender {
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	return &AsyncSender{next: next, timeout: timeout}
}

func (s *AsyncSender) Send(ctx context.Context, msg Message) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return &DeliveryError{To: msg.To, Err: context.Canceled}
	}

	// Keep request-scoped values such as the logger but outlive the request.
	ctx = context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		sendCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		if err := s.next.Send(sendCtx, msg); err != nil {
			slogx.FromContext(ctx).Error("email delivery failed",
				slog.String("subject", msg.Subject),
				slog.Any("err", err),
			)
		}
	}()
	return nil
}

// Close stops accepting messages and blocks until pending sends finish or
// ctx is done.
func (s *AsyncSender) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
