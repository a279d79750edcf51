// Package sender runs outbound Telegram calls off the update goroutine.
//
// Jobs are sharded by chat: every chat maps to one worker queue, so replies to
// the same user are delivered in the order they were enqueued while different
// chats proceed in parallel.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/fitbot/core/logger"
	"github.com/m3rciful/fitbot/core/telegram/netutil"
)

var (
	// ErrQueueClosed is returned when enqueue is attempted after Close.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull indicates the chat's shard is saturated and the job was not accepted.
	ErrQueueFull = errors.New("telegram sender: queue full")
)

const component = "tg.sender"

// Options controls the behaviour of the outbound dispatcher.
type Options struct {
	// QueueSize is the buffer of each worker shard.
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent retrying a single job.
	MaxDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 64
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

type job struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
}

// Dispatcher executes outbound Telegram calls asynchronously with retries.
type Dispatcher struct {
	opts   Options
	policy netutil.Policy
	shards []chan job

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	sent atomic.Uint64
	errs atomic.Uint64
}

// NewDispatcher starts the worker shards.
func NewDispatcher(opts Options) *Dispatcher {
	opts = opts.withDefaults()
	d := &Dispatcher{
		opts: opts,
		policy: netutil.Policy{
			MaxRetries: opts.MaxRetries,
			Backoff:    opts.RetryBackoff,
			MaxDelay:   opts.MaxDuration,
		},
		shards: make([]chan job, opts.Workers),
	}
	d.wg.Add(opts.Workers)
	for i := range d.shards {
		d.shards[i] = make(chan job, opts.QueueSize)
		go d.worker(d.shards[i])
	}
	return d
}

// Enqueue schedules run on the shard owning the chat found in ctx.
// run must tolerate being called again after a transient failure.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.shardFor(ctx) <- job{ctx: ctx, action: action, endpoint: endpoint, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *Dispatcher) shardFor(ctx context.Context) chan job {
	key := logger.ChatIDFrom(ctx)
	if key == 0 {
		key = logger.UserIDFrom(ctx)
	}
	if key < 0 {
		key = -key
	}
	return d.shards[key%int64(len(d.shards))]
}

// Sent returns the number of delivered jobs.
func (d *Dispatcher) Sent() uint64 { return d.sent.Load() }

// ErrorCount returns the number of failed jobs.
func (d *Dispatcher) ErrorCount() uint64 { return d.errs.Load() }

// Close stops accepting jobs and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.shards {
		close(ch)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) worker(jobs <-chan job) {
	defer d.wg.Done()
	for j := range jobs {
		d.handle(j)
	}
}

func (d *Dispatcher) handle(j job) {
	ctx, cancel := context.WithTimeout(j.ctx, d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	attempts, err := d.policy.Do(ctx, j.run, func(attempt int, delay time.Duration, err error) {
		logger.Debug(j.ctx, component, "send.retry.backoff",
			append(jobAttrs(j),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
				slog.String("error_kind", classifyError(err)),
			)...,
		)
	})
	elapsed := logger.RoundMS(time.Since(start))

	if err != nil {
		d.errs.Add(1)
		logger.Error(j.ctx, component, "send.fail",
			append(jobAttrs(j),
				slog.String("status", "fail"),
				slog.String("error", sanitizeErrorMessage(err)),
				slog.String("error_kind", classifyError(err)),
				slog.Int("attempts", attempts),
				slog.Duration("duration", elapsed),
			)...,
		)
		return
	}

	d.sent.Add(1)
	level := slog.LevelDebug
	if attempts > 1 {
		level = slog.LevelInfo
	}
	logger.Event(j.ctx, component, level, "send.success",
		append(jobAttrs(j),
			slog.String("status", "ok"),
			slog.Int("attempts", attempts),
			slog.Duration("duration", elapsed),
		)...,
	)
}

// jobAttrs carries only what the context does not: rid, user and chat come
// from the structured handler.
func jobAttrs(j job) []slog.Attr {
	attrs := []slog.Attr{slog.String("action", j.action)}
	if j.endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", j.endpoint))
	}
	return attrs
}
