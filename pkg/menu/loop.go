package menu

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/piemenu/pkg/errors"
)

// ErrStopped is returned by Do once the loop has stopped.
var ErrStopped = errors.New(errors.ErrCodeInternal, "menu loop stopped")

// Loop is a Scheduler backed by a single goroutine. Everything posted to it
// runs in order on that goroutine, which makes it the owner of a Stack.
type Loop struct {
	fns    chan func()
	done   chan struct{}
	logger *log.Logger
}

// NewLoop returns a loop; call Run to start it.
func NewLoop(logger *log.Logger) *Loop {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Loop{
		fns:    make(chan func(), 64),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Run executes posted functions until ctx is done. It must be called once.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("menu loop stopped", "err", ctx.Err())
			return
		case fn := <-l.fns:
			l.run(fn)
		}
	}
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("menu loop task panicked", "panic", r)
		}
	}()
	fn()
}

// Schedule implements Scheduler. Functions posted after the loop stopped
// are dropped.
func (l *Loop) Schedule(fn func()) { l.Post(fn) }

// Post queues fn and reports whether it was accepted.
func (l *Loop) Post(fn func()) bool {
	select {
	case l.fns <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrStopped
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrStopped
	}
}

// Done is closed once Run returns.
func (l *Loop) Done() <-chan struct{} { return l.done }
