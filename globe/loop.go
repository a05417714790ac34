package globe

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Loop is the single goroutine that owns a Globe. Events are posted to it
// and run between ticks, so the globe never sees concurrent calls.
type Loop struct {
	g        *Globe
	interval time.Duration

	inbox chan func(*Globe)
	done  chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
	err    error
}

// NewLoop ticks g fps times per second once started.
func NewLoop(g *Globe, fps int) *Loop {
	if fps <= 0 {
		fps = 30
	}
	return &Loop{
		g:        g,
		interval: time.Second / time.Duration(fps),
		inbox:    make(chan func(*Globe), 64),
		done:     make(chan struct{}),
	}
}

// Start runs the loop until ctx is done, Stop is called or the surface
// fails. The globe is unmounted when the loop exits.
func (l *Loop) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	l.mu.Lock()
	l.cancel = cancel
	l.mu.Unlock()
	go l.run(ctx)
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)
	defer l.g.Unmount()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.inbox:
			fn(l.g)
		case <-ticker.C:
			err := l.g.Tick(l.g.clock.Now())
			switch {
			case err == nil, errors.Is(err, ErrNotMounted):
			case errors.Is(err, ErrSurface):
				l.fail(err)
				return
			case ctx.Err() != nil:
				return
			default:
				l.g.log.Warn("frame failed", "error", err)
			}
		}
	}
}

func (l *Loop) fail(err error) {
	l.mu.Lock()
	l.err = err
	l.mu.Unlock()
}

// Post queues fn to run on the loop goroutine. It reports false once the
// loop has exited.
func (l *Loop) Post(fn func(*Globe)) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.inbox <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Stop ends the loop and waits until the globe is unmounted.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel := l.cancel
	l.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-l.done
}

// Done is closed when the loop has exited.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Err is the surface failure that ended the loop, if any.
func (l *Loop) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}
