// Package sender queues outbound Telegram calls so handlers never block on
// the API: approver order notifications, invoice delivery, and ordinary chat
// replies all go through the same dispatcher with bounded retries.
package sender

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/storebot/core/logger"
	"github.com/m3rciful/storebot/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

// ErrQueueClosed is returned by Enqueue after Close.
var ErrQueueClosed = errors.New("telegram sender: queue closed")

// ErrQueueFull is returned when the queue cannot accept the task; callers
// fall back to a synchronous send.
var ErrQueueFull = errors.New("telegram sender: queue full")

var botTokenPattern = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)

// Options tunes the dispatcher. Zero values pick defaults suitable for a
// single-shop bot.
type Options struct {
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the total time spent on one task, retries included.
	MaxDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 12 * time.Second
	}
	return o
}

type task struct {
	ctx      context.Context
	action   string
	endpoint string
	do       func() error
}

// Dispatcher runs queued Telegram calls on a small worker pool, retrying
// transient transport failures.
type Dispatcher struct {
	opts     Options
	queue    chan task
	closing  chan struct{}
	stopOnce sync.Once
	workers  sync.WaitGroup
	failed   atomic.Uint64
}

// NewDispatcher starts the worker pool immediately.
func NewDispatcher(opts Options) *Dispatcher {
	d := &Dispatcher{
		opts:    opts.withDefaults(),
		closing: make(chan struct{}),
	}
	d.queue = make(chan task, d.opts.QueueSize)

	d.workers.Add(d.opts.Workers)
	for i := 0; i < d.opts.Workers; i++ {
		go func() {
			defer d.workers.Done()
			for t := range d.queue {
				d.execute(t)
			}
		}()
	}
	return d
}

// Enqueue schedules do for asynchronous execution. The closure must tolerate
// re-invocation when retries are enabled. action and endpoint only label the
// task in logs.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, do func() error) error {
	if do == nil {
		return errors.New("telegram sender: nil task")
	}
	select {
	case <-d.closing:
		return ErrQueueClosed
	default:
	}
	select {
	case d.queue <- task{ctx: ctx, action: action, endpoint: endpoint, do: do}:
		return nil
	default:
		return ErrQueueFull
	}
}

// ErrorCount reports how many tasks exhausted their retries.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.failed.Load()
}

// Close drains the queue and stops the workers. Safe to call twice.
func (d *Dispatcher) Close() {
	d.stopOnce.Do(func() {
		close(d.closing)
		close(d.queue)
		d.workers.Wait()
	})
}

func (d *Dispatcher) execute(t task) {
	ctx := t.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	bounded, cancel := context.WithTimeout(ctx, d.opts.MaxDuration)
	defer cancel()

	started := time.Now()
	logger.Debug(ctx, "tg.sender", "send.start", t.attrs(ctx)...)

	budget := d.opts.MaxRetries + 1
	for attempt := 1; ; attempt++ {
		if err := bounded.Err(); err != nil {
			d.fail(ctx, t, err, budget, started)
			return
		}

		err := t.do()
		if err == nil {
			d.succeed(ctx, t, attempt, started)
			return
		}
		if attempt >= budget || !netutil.ShouldRetry(err) {
			d.fail(ctx, t, err, budget, started)
			return
		}

		delay := d.opts.RetryBackoff * time.Duration(attempt)
		if !sleepUnless(bounded, delay) {
			d.fail(ctx, t, bounded.Err(), budget, started)
			return
		}
		logger.Debug(ctx, "tg.sender", "send.retry.backoff",
			append(t.attrs(ctx),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
			)...,
		)
	}
}

// sleepUnless waits for delay unless ctx is done first; it reports whether
// the full delay elapsed.
func sleepUnless(ctx context.Context, delay time.Duration) bool {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (d *Dispatcher) succeed(ctx context.Context, t task, attempt int, started time.Time) {
	attrs := t.attrs(ctx)
	if attempt > 1 {
		logger.Info(ctx, "tg.sender", "send.retry.success",
			append(t.attrs(ctx),
				slog.Int("attempt", attempt),
				slog.Int("elapsed_ms", elapsedMS(started)),
			)...,
		)
		attrs = append(attrs, slog.Int("attempt", attempt))
	}
	attrs = append(attrs, slog.Int("elapsed_ms", elapsedMS(started)))
	logger.Debug(ctx, "tg.sender", "send.success", attrs...)
}

func (d *Dispatcher) fail(ctx context.Context, t task, err error, attempts int, started time.Time) {
	d.failed.Add(1)
	attrs := append(t.attrs(ctx),
		slog.String("error", redactToken(err)),
		slog.String("error_kind", errorKind(err)),
		slog.Int("elapsed_ms", elapsedMS(started)),
	)
	if attempts > 0 {
		attrs = append(attrs, slog.Int("attempts", attempts))
	}
	logger.Error(ctx, "tg.sender", "send.fail", attrs...)
}

func (t task) attrs(ctx context.Context) []slog.Attr {
	attrs := []slog.Attr{slog.String("action", t.action)}
	if t.endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", t.endpoint))
	}
	if rid := logger.RIDFrom(ctx); rid != "" {
		attrs = append(attrs, slog.String("rid", rid))
	}
	if id := logger.UpdateIDFrom(ctx); id != 0 {
		attrs = append(attrs, slog.Int("update_id", id))
	}
	if id := logger.ChatIDFrom(ctx); id != 0 {
		attrs = append(attrs, slog.Int64("chat_id", id))
	}
	if id := logger.UserIDFrom(ctx); id != 0 {
		attrs = append(attrs, slog.Int64("user_id", id))
	}
	return attrs
}

func elapsedMS(started time.Time) int {
	d := time.Since(started)
	if d <= 0 {
		return 0
	}
	return int(logger.RoundMS(d) / time.Millisecond)
}

// errorKind buckets a send failure for the error_kind log field.
func errorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return "timeout"
		}
		return "dns"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch {
		case opErr.Timeout():
			return "timeout"
		case opErr.Op == "dial":
			return "dial"
		case opErr.Op == "read" || opErr.Op == "write":
			if kind := errorKind(opErr.Err); kind != "" && kind != "unknown" {
				return kind
			}
		}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return "timeout"
		}
		if urlErr.Err != nil && !errors.Is(urlErr.Err, err) {
			if kind := errorKind(urlErr.Err); kind != "" && kind != "unknown" {
				return kind
			}
		}
	}
	var alertErr tls.AlertError
	if errors.As(err, &alertErr) {
		return "tls"
	}

	switch status := httpStatus(err); {
	case status >= 500:
		return "http_5xx"
	case status >= 400:
		return "http_4xx"
	}
	return "unknown"
}

// redactToken strips bot tokens the Telegram client may echo inside error text.
func redactToken(err error) string {
	if err == nil {
		return ""
	}
	return botTokenPattern.ReplaceAllString(err.Error(), "bot<redacted>")
}

func httpStatus(err error) int {
	if err == nil {
		return 0
	}
	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var floodErr tele.FloodError
	if errors.As(err, &floodErr) {
		return http.StatusTooManyRequests
	}
	var groupErr tele.GroupError
	if errors.As(err, &groupErr) {
		return http.StatusBadRequest
	}

	// telebot renders unknown API errors as "... (400)"; recover the code
	// from the trailing parenthesized number.
	msg := err.Error()
	open := strings.LastIndex(msg, "(")
	closeIdx := strings.LastIndex(msg, ")")
	if open >= 0 && closeIdx > open+1 {
		if code, convErr := strconv.Atoi(strings.TrimSpace(msg[open+1 : closeIdx])); convErr == nil {
			return code
		}
	}
	return 0
}
