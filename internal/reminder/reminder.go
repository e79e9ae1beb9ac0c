// Package reminder polls the agenda for due tasks and events and hands
// each one to a Notifier.
//
// A Poller checks once when it starts and then on a fixed cadence driven
// by a cron "@every" schedule. Failures are logged and polling continues;
// only RunOnce reports them to the caller.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"github.com/nibzard/agenda-go/internal/agenda"
)

// DefaultInterval is the polling cadence used when none is configured.
const DefaultInterval = time.Minute

// Source yields reminders that are due at now. *agenda.Book implements it.
type Source interface {
	DueReminders(ctx context.Context, now time.Time) ([]agenda.Reminder, error)
}

// Notifier delivers one reminder.
type Notifier interface {
	Notify(ctx context.Context, r agenda.Reminder) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, r agenda.Reminder) error

func (f NotifierFunc) Notify(ctx context.Context, r agenda.Reminder) error { return f(ctx, r) }

// WriterNotifier prints one line per reminder.
type WriterNotifier struct {
	W   io.Writer
	Now func() time.Time
}

func (n WriterNotifier) Notify(_ context.Context, r agenda.Reminder) error {
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	_, err := fmt.Fprintln(n.W, r.Describe(now()))
	return err
}

// LogNotifier reports reminders through a logger.
type LogNotifier struct {
	Logger *log.Logger
}

func (n LogNotifier) Notify(_ context.Context, r agenda.Reminder) error {
	n.Logger.Warn(r.Describe(time.Now()), "kind", r.Kind, "id", r.ID)
	return nil
}

// Status reports the outcome of one poll.
type Status struct {
	Time      time.Time
	Reminders []agenda.Reminder
	Error     error
}

// Poller periodically asks a Source for due reminders.
type Poller struct {
	src      Source
	notifier Notifier
	interval time.Duration
	now      func() time.Time
	logger   *log.Logger
}

// Option configures a Poller.
type Option func(*Poller)

// WithNow replaces the clock.
func WithNow(now func() time.Time) Option {
	return func(p *Poller) { p.now = now }
}

// WithLogger sets the logger for poll failures.
func WithLogger(l *log.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// New returns a Poller. Intervals under a second are raised to one second,
// the finest cadence the scheduler supports.
func New(src Source, notifier Notifier, interval time.Duration, opts ...Option) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if interval < time.Second {
		interval = time.Second
	}
	p := &Poller{
		src:      src,
		notifier: notifier,
		interval: interval,
		now:      time.Now,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Interval returns the polling cadence.
func (p *Poller) Interval() time.Duration { return p.interval }

// Spec returns the cron schedule the poller registers.
func (p *Poller) Spec() string { return "@every " + p.interval.String() }

// RunOnce polls the source and delivers every due reminder. Delivery
// failures do not stop the remaining deliveries; all of them are returned
// joined together with any source error.
func (p *Poller) RunOnce(ctx context.Context) ([]agenda.Reminder, error) {
	rems, err := p.src.DueReminders(ctx, p.now())
	if err != nil {
		return nil, fmt.Errorf("poll reminders: %w", err)
	}
	var errs []error
	for _, r := range rems {
		if err := p.notifier.Notify(ctx, r); err != nil {
			errs = append(errs, fmt.Errorf("notify %s %q: %w", r.Kind, r.Title, err))
		}
	}
	return rems, errors.Join(errs...)
}

// Run polls immediately and then on every interval until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	return p.run(ctx, func(Status) {})
}

// RunWithStatus behaves like Run and sends the outcome of every poll to
// statusCh, which it closes on return.
func (p *Poller) RunWithStatus(ctx context.Context, statusCh chan<- Status) error {
	defer close(statusCh)
	return p.run(ctx, func(s Status) {
		select {
		case statusCh <- s:
		case <-ctx.Done():
		}
	})
}

func (p *Poller) run(ctx context.Context, report func(Status)) error {
	tick := func() {
		if ctx.Err() != nil {
			return
		}
		rems, err := p.RunOnce(ctx)
		if err != nil {
			p.logger.Error("reminder poll failed", "err", err)
		}
		report(Status{Time: p.now(), Reminders: rems, Error: err})
	}

	c := cron.New(
		cron.WithLogger(cronLogger{p.logger}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{p.logger})),
	)
	if _, err := c.AddFunc(p.Spec(), tick); err != nil {
		return fmt.Errorf("schedule reminders: %w", err)
	}

	tick()
	c.Start()
	p.logger.Debug("reminder poller started", "every", p.interval)

	<-ctx.Done()
	<-c.Stop().Done()
	p.logger.Debug("reminder poller stopped")
	return nil
}

// cronLogger routes scheduler messages to the charm logger.
type cronLogger struct {
	l *log.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append(keysAndValues, "err", err)...)
}
