package notification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/smtp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/example/placement-portal/internal/application"
)

type memQueue struct {
	mu    sync.Mutex
	items [][]byte
	dead  [][]byte
	err   error
}

func (q *memQueue) Push(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.items = append([][]byte{payload}, q.items...)
	return nil
}

func (q *memQueue) Pop(ctx context.Context, timeout time.Duration) ([]byte, error) {
	q.mu.Lock()
	if len(q.items) > 0 {
		last := q.items[len(q.items)-1]
		q.items = q.items[:len(q.items)-1]
		q.mu.Unlock()
		return last, nil
	}
	q.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(10 * time.Millisecond):
		return nil, ErrQueueEmpty
	}
}

func (q *memQueue) DeadLetter(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.dead = append(q.dead, payload)
	return nil
}

func (q *memQueue) len() (int, int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items), len(q.dead)
}

type mailerStub struct {
	mu       sync.Mutex
	sent     []application.Notification
	attempts []time.Time
	err      error
}

func (m *mailerStub) Send(ctx context.Context, n application.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, time.Now())
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, n)
	return nil
}

func (m *mailerStub) attemptTimes() []time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Time(nil), m.attempts...)
}

func (m *mailerStub) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleNotification() application.Notification {
	return application.Notification{
		ID:        "n-1",
		Kind:      application.NotificationApplicationStatus,
		To:        "asha@example.com",
		Subject:   "Update on your application for SRE",
		Body:      "Hello Asha,\nYour status is Hired.\n",
		CreatedAt: time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC),
	}
}

func TestSMTPMailer_Send(t *testing.T) {
	t.Parallel()

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	mailer := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "noreply@example.com", Password: "pw"})
	mailer.now = func() time.Time { return time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC) }
	mailer.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	if err := mailer.Send(context.Background(), sampleNotification()); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if gotAddr != "smtp.example.com:587" || gotFrom != "noreply@example.com" {
		t.Fatalf("unexpected envelope addr=%q from=%q", gotAddr, gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "asha@example.com" {
		t.Fatalf("unexpected recipients %v", gotTo)
	}

	msg := string(gotMsg)
	for _, want := range []string{
		"To: asha@example.com\r\n",
		"Subject: Update on your application for SRE\r\n",
		"Message-ID: <n-1@example.com>\r\n",
		"\r\n\r\nHello Asha,\r\nYour status is Hired.\r\n",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected message to contain %q, got:\n%s", want, msg)
		}
	}
}

func TestSMTPMailer_Failures(t *testing.T) {
	t.Parallel()

	t.Run("relay error is wrapped", func(t *testing.T) {
		t.Parallel()
		relayErr := errors.New("535 authentication failed")
		mailer := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 587})
		mailer.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return relayErr }

		if err := mailer.Send(context.Background(), sampleNotification()); !errors.Is(err, relayErr) {
			t.Fatalf("expected relay error, got %v", err)
		}
	})

	t.Run("context deadline wins over a slow relay", func(t *testing.T) {
		t.Parallel()
		release := make(chan struct{})
		defer close(release)
		mailer := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 587})
		mailer.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
			<-release
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		if err := mailer.Send(ctx, sampleNotification()); !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected deadline exceeded, got %v", err)
		}
	})

	t.Run("missing recipient", func(t *testing.T) {
		t.Parallel()
		mailer := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 587})
		n := sampleNotification()
		n.To = ""
		if err := mailer.Send(context.Background(), n); err == nil {
			t.Fatalf("expected missing recipient to fail")
		}
	})
}

func TestDispatcher_Notify(t *testing.T) {
	t.Parallel()

	t.Run("inline delivery", func(t *testing.T) {
		t.Parallel()
		mailer := &mailerStub{}
		d := NewDispatcher(mailer, nil, time.Second, discardLogger())

		if err := d.Notify(context.Background(), sampleNotification()); err != nil {
			t.Fatalf("Notify failed: %v", err)
		}
		if mailer.count() != 1 {
			t.Fatalf("expected one inline send, got %d", mailer.count())
		}
	})

	t.Run("queued delivery assigns an id", func(t *testing.T) {
		t.Parallel()
		mailer := &mailerStub{}
		queue := &memQueue{}
		d := NewDispatcher(mailer, queue, time.Second, discardLogger())

		n := sampleNotification()
		n.ID = ""
		if err := d.Notify(context.Background(), n); err != nil {
			t.Fatalf("Notify failed: %v", err)
		}
		if mailer.count() != 0 {
			t.Fatalf("expected no inline send when queued")
		}
		if pending, _ := queue.len(); pending != 1 {
			t.Fatalf("expected one queued item, got %d", pending)
		}
		e, err := decodeEnvelope(queue.items[0])
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if e.ID == "" || e.To != "asha@example.com" || e.Attempts != 0 {
			t.Fatalf("unexpected envelope %+v", e)
		}
	})

	t.Run("enqueue failure is returned", func(t *testing.T) {
		t.Parallel()
		queueErr := errors.New("redis unavailable")
		d := NewDispatcher(&mailerStub{}, &memQueue{err: queueErr}, time.Second, discardLogger())

		if err := d.Notify(context.Background(), sampleNotification()); !errors.Is(err, queueErr) {
			t.Fatalf("expected queue error, got %v", err)
		}
	})
}

func TestWorker_Process(t *testing.T) {
	t.Parallel()

	payload, err := encodeEnvelope(newEnvelope(sampleNotification()))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	t.Run("sends and acknowledges", func(t *testing.T) {
		t.Parallel()
		mailer := &mailerStub{}
		queue := &memQueue{}
		w := NewWorker(queue, mailer, 3, time.Second, discardLogger())

		w.process(context.Background(), payload)
		if mailer.count() != 1 {
			t.Fatalf("expected one send, got %d", mailer.count())
		}
		if pending, dead := queue.len(); pending != 0 || dead != 0 {
			t.Fatalf("expected empty queues, got pending=%d dead=%d", pending, dead)
		}
		if got := mailer.sent[0]; got.Kind != application.NotificationApplicationStatus || !got.CreatedAt.Equal(sampleNotification().CreatedAt) {
			t.Fatalf("unexpected notification %+v", got)
		}
	})

	t.Run("re-queues with backoff then dead-letters", func(t *testing.T) {
		t.Parallel()
		mailer := &mailerStub{err: errors.New("relay down")}
		queue := &memQueue{}
		w := NewWorker(queue, mailer, 3, time.Second, discardLogger())
		current := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)
		w.now = func() time.Time { return current }

		w.process(context.Background(), payload)
		retry, _ := queue.Pop(context.Background(), 0)
		e, _ := decodeEnvelope(retry)
		if e.Attempts != 1 || e.LastError != "relay down" {
			t.Fatalf("unexpected retry envelope %+v", e)
		}
		if want := current.Add(defaultRetryDelay); !e.NotBefore.Equal(want) {
			t.Fatalf("expected first retry at %s, got %s", want, e.NotBefore)
		}

		current = e.NotBefore
		w.process(context.Background(), retry)
		retry, _ = queue.Pop(context.Background(), 0)
		e, _ = decodeEnvelope(retry)
		if want := current.Add(2 * defaultRetryDelay); e.Attempts != 2 || !e.NotBefore.Equal(want) {
			t.Fatalf("expected second retry at %s, got attempts=%d at %s", want, e.Attempts, e.NotBefore)
		}

		current = e.NotBefore
		w.process(context.Background(), retry)
		if pending, dead := queue.len(); pending != 0 || dead != 1 {
			t.Fatalf("expected dead letter after max attempts, got pending=%d dead=%d", pending, dead)
		}
		if got := len(mailer.attemptTimes()); got != 3 {
			t.Fatalf("expected three send attempts, got %d", got)
		}
	})

	t.Run("defers notifications that are not yet due", func(t *testing.T) {
		t.Parallel()
		mailer := &mailerStub{}
		queue := &memQueue{}
		w := NewWorker(queue, mailer, 3, time.Second, discardLogger())
		current := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)
		w.now = func() time.Time { return current }
		w.pollInterval = time.Millisecond

		e := newEnvelope(sampleNotification())
		e.Attempts = 1
		e.NotBefore = current.Add(time.Minute)
		deferred, err := encodeEnvelope(e)
		if err != nil {
			t.Fatalf("encode failed: %v", err)
		}

		w.process(context.Background(), deferred)
		if mailer.count() != 0 {
			t.Fatalf("expected no send before the retry time")
		}
		if pending, _ := queue.len(); pending != 1 {
			t.Fatalf("expected deferred notification back in the queue, got %d", pending)
		}

		current = current.Add(time.Minute)
		requeued, _ := queue.Pop(context.Background(), 0)
		w.process(context.Background(), requeued)
		if mailer.count() != 1 {
			t.Fatalf("expected send once due, got %d", mailer.count())
		}
	})

	t.Run("in-flight work survives shutdown", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		mailer := &mailerStub{}
		queue := &memQueue{}
		NewWorker(queue, mailer, 3, time.Second, discardLogger()).process(ctx, payload)
		if mailer.count() != 1 {
			t.Fatalf("expected the popped notification to be sent, got %d", mailer.count())
		}

		failing := &mailerStub{err: errors.New("relay down")}
		NewWorker(queue, failing, 3, time.Second, discardLogger()).process(ctx, payload)
		if pending, dead := queue.len(); pending != 1 || dead != 0 {
			t.Fatalf("expected failed send to be re-queued, got pending=%d dead=%d", pending, dead)
		}

		exhausted := &memQueue{}
		NewWorker(exhausted, failing, 1, time.Second, discardLogger()).process(ctx, payload)
		if pending, dead := exhausted.len(); pending != 0 || dead != 1 {
			t.Fatalf("expected dead letter after shutdown, got pending=%d dead=%d", pending, dead)
		}
	})

	t.Run("malformed payloads are dead-lettered", func(t *testing.T) {
		t.Parallel()
		queue := &memQueue{}
		w := NewWorker(queue, &mailerStub{}, 3, time.Second, discardLogger())

		w.process(context.Background(), []byte("{not json"))
		if _, dead := queue.len(); dead != 1 {
			t.Fatalf("expected malformed payload to be dead-lettered")
		}
	})
}

func TestWorker_RunSpacesRetries(t *testing.T) {
	t.Parallel()

	mailer := &mailerStub{err: errors.New("relay down")}
	queue := &memQueue{}
	if err := NewDispatcher(mailer, queue, time.Second, discardLogger()).Notify(context.Background(), sampleNotification()); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	w := NewWorker(queue, mailer, 3, time.Second, discardLogger())
	w.retryDelay = 20 * time.Millisecond
	w.pollInterval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, dead := queue.len(); dead == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if _, dead := queue.len(); dead != 1 {
		t.Fatalf("expected the notification to be dead-lettered")
	}
	attempts := mailer.attemptTimes()
	if len(attempts) != 3 {
		t.Fatalf("expected three attempts, got %d", len(attempts))
	}
	if gap := attempts[1].Sub(attempts[0]); gap < 20*time.Millisecond {
		t.Fatalf("expected at least 20ms before the second attempt, got %s", gap)
	}
	if gap := attempts[2].Sub(attempts[1]); gap < 40*time.Millisecond {
		t.Fatalf("expected at least 40ms before the third attempt, got %s", gap)
	}
}

func TestWorker_RunDrainsUntilCancelled(t *testing.T) {
	t.Parallel()

	mailer := &mailerStub{}
	queue := &memQueue{}
	d := NewDispatcher(mailer, queue, time.Second, discardLogger())
	for i := 0; i < 3; i++ {
		if err := d.Notify(context.Background(), sampleNotification()); err != nil {
			t.Fatalf("Notify failed: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewWorker(queue, mailer, 3, time.Second, discardLogger()).Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for mailer.count() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if mailer.count() != 3 {
		t.Fatalf("expected three sends, got %d", mailer.count())
	}
}
