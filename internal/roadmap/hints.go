package roadmap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bookself/bookself/internal/ai"
)

// DefaultHintDebounce is the inactivity window before a hint request
// fires.
const DefaultHintDebounce = time.Second

// maxHints caps the advisory hint list.
const maxHints = 3

// HintFetcher produces advisory prerequisite hints while the wizard is
// in setup. Each form change restarts a debounce window; the request
// fires only when the subject is longer than three characters and a
// level is chosen, and only if the wizard is still in setup when the
// window closes. Hints are display-only state, never part of the
// roadmap.
type HintFetcher struct {
	client   ai.Client
	log      *zap.Logger
	debounce time.Duration
	wizard   *Wizard
	topics   func() []string

	mu        sync.Mutex
	timer     *time.Timer
	hints     []string
	analyzing bool
}

// NewHintFetcher creates a HintFetcher bound to a wizard. topics
// supplies the learner's documented page titles per request. A
// non-positive debounce falls back to DefaultHintDebounce.
func NewHintFetcher(client ai.Client, wizard *Wizard, topics func() []string, log *zap.Logger, debounce time.Duration) *HintFetcher {
	if log == nil {
		log = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultHintDebounce
	}
	return &HintFetcher{
		client:   client,
		log:      log,
		debounce: debounce,
		wizard:   wizard,
		topics:   topics,
	}
}

// Update notes a setup form change and (re)starts the debounce window.
func (h *HintFetcher) Update(subject, level string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	if len(subject) <= 3 || !validLevels[level] {
		return
	}
	h.timer = time.AfterFunc(h.debounce, func() { h.fetch(subject, level) })
}

func (h *HintFetcher) fetch(subject, level string) {
	if h.wizard.Current() != StateSetup {
		return
	}

	h.mu.Lock()
	h.analyzing = true
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		h.analyzing = false
		h.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	goal := fmt.Sprintf("Briefly list 3 key prerequisites for %s at %s level.", subject, level)
	advice, err := h.client.GetLearningAdvice(ctx, h.topics(), goal)
	if err != nil {
		h.log.Debug("hint fetch failed", zap.Error(err))
		return
	}

	hints := advice.SuggestedPrerequisites
	if len(hints) > maxHints {
		hints = hints[:maxHints]
	}

	h.mu.Lock()
	h.hints = hints
	h.mu.Unlock()
}

// Hints returns a copy of the current advisory hints.
func (h *HintFetcher) Hints() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.hints == nil {
		return nil
	}
	hints := make([]string, len(h.hints))
	copy(hints, h.hints)
	return hints
}

// Analyzing reports whether a hint request is in flight.
func (h *HintFetcher) Analyzing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.analyzing
}

// Stop cancels any pending request trigger.
func (h *HintFetcher) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
}
