package engine

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bookself/bookself/internal/store"
)

// DefaultInterval is the decay cadence while a session is active.
const DefaultInterval = 10 * time.Second

// Engine owns the retention decay ticker. It runs only while the access
// gate says a setup-complete profile exists; the gate starts it on
// entering the active phase and stops it on leaving. At most one ticker
// goroutine exists at a time — a second Start while running is a no-op,
// so decay can never compound twice per interval.
type Engine struct {
	state    *store.State
	log      *zap.Logger
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	stopCh  chan struct{}
	running bool
}

// New creates an Engine over the shared state. A zero interval falls
// back to DefaultInterval.
func New(state *store.State, log *zap.Logger, interval time.Duration) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Engine{
		state:    state,
		log:      log,
		interval: interval,
		now:      time.Now,
	}
}

// Start launches the decay ticker. Returns false if it was already
// running (the existing ticker keeps sole ownership).
func (e *Engine) Start() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return false
	}
	e.running = true
	e.stopCh = make(chan struct{})

	go e.loop(e.stopCh)
	e.log.Info("decay ticker started", zap.Duration("interval", e.interval))
	return true
}

// Stop tears the ticker down. Safe to call when not running.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return
	}
	close(e.stopCh)
	e.stopCh = nil
	e.running = false
	e.log.Info("decay ticker stopped")
}

// Running reports whether the ticker is live.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *Engine) loop(stop chan struct{}) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.Tick(e.now())
		case <-stop:
			return
		}
	}
}

// Tick applies one decay pass at the given instant. The whole page
// mapping is replaced in a single copy-on-write swap; repeating a tick
// with the same now changes nothing.
func (e *Engine) Tick(now time.Time) {
	pages := e.state.Pages()
	next, changed := DecayPages(pages, now)
	if changed == 0 {
		return
	}
	e.state.ReplacePages(next)
	e.log.Debug("retention decayed", zap.Int("pages", changed))
}
