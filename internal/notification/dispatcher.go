package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/placement-portal/internal/application"
)

const defaultSendTimeout = 10 * time.Second

// Dispatcher implements application.Notifier. With a queue it only enqueues;
// without one it sends inline, bounded by the send timeout.
type Dispatcher struct {
	mailer  Mailer
	queue   Queue
	timeout time.Duration
	logger  *slog.Logger
}

// NewDispatcher returns a dispatcher. A nil queue selects inline delivery.
func NewDispatcher(mailer Mailer, queue Queue, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{mailer: mailer, queue: queue, timeout: timeout, logger: logger}
}

func (d *Dispatcher) Notify(ctx context.Context, n application.Notification) error {
	if d == nil {
		return fmt.Errorf("notification dispatcher not configured")
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	if d.queue != nil {
		payload, err := encodeEnvelope(newEnvelope(n))
		if err != nil {
			return err
		}
		if err := d.queue.Push(ctx, payload); err != nil {
			return fmt.Errorf("enqueue notification %s: %w", n.ID, err)
		}
		d.logger.DebugContext(ctx, "notification enqueued", "notification_id", n.ID, "notification_kind", string(n.Kind))
		return nil
	}

	if d.mailer == nil {
		return fmt.Errorf("mailer not configured")
	}
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()
	return d.mailer.Send(sendCtx, n)
}
