package notification

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

const (
	defaultPopTimeout   = 5 * time.Second
	defaultMaxAttempts  = 5
	defaultRetryDelay   = 2 * time.Second
	maxRetryDelay       = 5 * time.Minute
	defaultPollInterval = 250 * time.Millisecond
)

// Worker drains the outbox and hands each notification to the mailer.
// Failed sends are re-queued with exponential backoff until maxAttempts,
// then dead-lettered. A popped notification is always pushed back or
// dead-lettered, even after ctx is cancelled.
type Worker struct {
	queue        Queue
	mailer       Mailer
	maxAttempts  int
	popTimeout   time.Duration
	sendTimeout  time.Duration
	retryDelay   time.Duration
	pollInterval time.Duration
	now          func() time.Time
	logger       *slog.Logger
}

// NewWorker constructs a worker. Non-positive values fall back to defaults.
func NewWorker(queue Queue, mailer Mailer, maxAttempts int, sendTimeout time.Duration, logger *slog.Logger) *Worker {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		queue:        queue,
		mailer:       mailer,
		maxAttempts:  maxAttempts,
		popTimeout:   defaultPopTimeout,
		sendTimeout:  sendTimeout,
		retryDelay:   defaultRetryDelay,
		pollInterval: defaultPollInterval,
		now:          time.Now,
		logger:       logger.With("component", "notification_worker"),
	}
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	w.logger.InfoContext(ctx, "notification worker started")
	defer w.logger.InfoContext(ctx, "notification worker stopped")

	for {
		if ctx.Err() != nil {
			return
		}

		payload, err := w.queue.Pop(ctx, w.popTimeout)
		switch {
		case err == nil:
			w.process(ctx, payload)
		case errors.Is(err, ErrQueueEmpty):
		case ctx.Err() != nil:
			return
		default:
			w.logger.ErrorContext(ctx, "failed to pop notification", "error", err)
			if !sleep(ctx, w.retryDelay) {
				return
			}
		}
	}
}

func (w *Worker) process(ctx context.Context, payload []byte) {
	persistCtx := context.WithoutCancel(ctx)

	e, err := decodeEnvelope(payload)
	if err != nil {
		w.logger.ErrorContext(ctx, "dropping malformed notification", "error", err)
		w.deadLetter(persistCtx, payload)
		return
	}

	logger := w.logger.With("notification_id", e.ID, "notification_kind", e.Kind, "attempt", e.Attempts+1)

	if wait := e.NotBefore.Sub(w.now()); wait > 0 {
		if err := w.queue.Push(persistCtx, payload); err != nil {
			logger.ErrorContext(ctx, "failed to re-queue deferred notification", "error", err)
			return
		}
		sleep(ctx, min(wait, w.pollInterval))
		return
	}

	sendCtx, cancel := context.WithTimeout(persistCtx, w.sendTimeout)
	err = w.mailer.Send(sendCtx, e.notification())
	cancel()
	if err == nil {
		logger.InfoContext(ctx, "notification sent")
		return
	}

	e.Attempts++
	e.LastError = err.Error()
	e.NotBefore = w.now().Add(w.backoff(e.Attempts))
	next, encErr := encodeEnvelope(e)
	if encErr != nil {
		logger.ErrorContext(ctx, "failed to re-encode notification", "error", encErr)
		w.deadLetter(persistCtx, payload)
		return
	}

	if e.Attempts >= w.maxAttempts {
		logger.ErrorContext(ctx, "notification exhausted retries", "error", err)
		w.deadLetter(persistCtx, next)
		return
	}

	logger.WarnContext(ctx, "notification send failed; re-queueing", "error", err, "not_before", e.NotBefore)
	if pushErr := w.queue.Push(persistCtx, next); pushErr != nil {
		logger.ErrorContext(ctx, "failed to re-queue notification", "error", pushErr)
	}
}

// backoff doubles retryDelay per failed attempt, capped at maxRetryDelay.
func (w *Worker) backoff(attempts int) time.Duration {
	if attempts < 1 {
		return 0
	}
	if attempts > 16 {
		return maxRetryDelay
	}
	return min(w.retryDelay<<(attempts-1), maxRetryDelay)
}

func (w *Worker) deadLetter(ctx context.Context, payload []byte) {
	if err := w.queue.DeadLetter(ctx, payload); err != nil {
		w.logger.ErrorContext(ctx, "failed to dead-letter notification", "error", err)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
