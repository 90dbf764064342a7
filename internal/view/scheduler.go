package view

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// pollTask runs fn at a fixed interval with skip-if-still-running semantics:
// a tick that arrives while the previous fetch is outstanding is dropped, not
// queued, so a slow provider never accumulates in-flight requests. Execution
// is strictly sequential per task; the two tasks of a viewer run fully
// independently of each other.
type pollTask struct {
	name     string
	interval time.Duration
	clock    clockwork.Clock
	fn       func(ctx context.Context)

	inFlight atomic.Bool
}

func newPollTask(name string, interval time.Duration, clock clockwork.Clock, fn func(ctx context.Context)) *pollTask {
	return &pollTask{
		name:     name,
		interval: interval,
		clock:    clock,
		fn:       fn,
	}
}

// loop drives the task until ctx is cancelled. Each fetch runs on its own
// goroutine so the loop keeps observing ticks (and skipping them) while a
// fetch is outstanding.
func (t *pollTask) loop(ctx context.Context) {
	ticker := t.clock.NewTicker(t.interval)
	defer ticker.Stop()

	log.Debug().Str("task", t.name).Dur("interval", t.interval).Msg("poll task armed")

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("task", t.name).Msg("poll task disarmed")
			return
		case <-ticker.Chan():
			if !t.inFlight.CompareAndSwap(false, true) {
				log.Debug().Str("task", t.name).Msg("skipping tick - previous fetch still in flight")
				continue
			}
			go func() {
				defer t.inFlight.Store(false)
				t.fn(ctx)
			}()
		}
	}
}
