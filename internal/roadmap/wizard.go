package roadmap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bookself/bookself/internal/ai"
	"github.com/bookself/bookself/internal/store"
)

// State is the wizard's position in the setup → preview → editing →
// saved flow.
type State string

const (
	StateSetup   State = "setup"
	StatePreview State = "preview"
	StateEditing State = "editing"
	StateSaved   State = "saved"
)

// Levels accepted by the setup form.
var validLevels = map[string]bool{
	"beginner":     true,
	"intermediate": true,
	"advanced":     true,
}

var (
	// ErrBusy rejects a second generation while one is in flight.
	ErrBusy = errors.New("roadmap generation already in progress")
	// ErrWrongState rejects an operation the current state doesn't allow.
	ErrWrongState = errors.New("operation not allowed in current state")
	// ErrIncompleteSetup rejects generation before subject, level, and
	// goal are all set.
	ErrIncompleteSetup = errors.New("subject, level, and goal are required")
	// ErrInvalidItem rejects an edit naming an item that doesn't exist
	// or carrying no title.
	ErrInvalidItem = errors.New("invalid roadmap item")
)

// Wizard sequences the roadmap flow. Once generated, the item sequence
// is canonical: the system never reorders it, only explicit user
// removal or append changes membership or order.
type Wizard struct {
	client ai.Client
	log    *zap.Logger

	mu      sync.Mutex
	state   State
	subject string
	level   string
	goal    string
	busy    bool
	items   []store.RoadmapItem
}

// NewWizard creates a Wizard in the setup state.
func NewWizard(client ai.Client, log *zap.Logger) *Wizard {
	if log == nil {
		log = zap.NewNop()
	}
	return &Wizard{client: client, log: log, state: StateSetup}
}

// SetSetup records the setup form fields. Only valid while in setup.
func (w *Wizard) SetSetup(subject, level, goal string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateSetup {
		return fmt.Errorf("%w: %s", ErrWrongState, w.state)
	}
	if level != "" && !validLevels[level] {
		return fmt.Errorf("invalid level %q", level)
	}
	w.subject = strings.TrimSpace(subject)
	w.level = level
	w.goal = strings.TrimSpace(goal)
	return nil
}

// Generate asks the collaborator for the roadmap and moves to preview.
// Requires subject, level, and goal; on failure the wizard stays in
// setup with no items. The busy guard is released exactly once.
func (w *Wizard) Generate(ctx context.Context, knownTopics []string) error {
	w.mu.Lock()
	if w.state != StateSetup {
		w.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrWrongState, w.state)
	}
	if w.subject == "" || w.goal == "" || !validLevels[w.level] {
		w.mu.Unlock()
		return ErrIncompleteSetup
	}
	if w.busy {
		w.mu.Unlock()
		return ErrBusy
	}
	w.busy = true
	subject, level := w.subject, w.level
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.busy = false
		w.mu.Unlock()
	}()

	items, err := w.client.GenerateRoadmap(ctx, subject, level, knownTopics)
	if err != nil {
		return fmt.Errorf("generate roadmap: %w", err)
	}

	w.mu.Lock()
	w.items = items
	w.state = StatePreview
	w.mu.Unlock()

	w.log.Info("roadmap generated", zap.String("subject", subject),
		zap.String("level", level), zap.Int("items", len(items)))
	return nil
}

// StartEditing enters the edit loop from preview.
func (w *Wizard) StartEditing() error {
	return w.transition(StatePreview, StateEditing)
}

// FinishEditing returns to preview.
func (w *Wizard) FinishEditing() error {
	return w.transition(StateEditing, StatePreview)
}

// Save confirms the sequence. Valid from preview or editing.
func (w *Wizard) Save() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StatePreview && w.state != StateEditing {
		return fmt.Errorf("%w: %s", ErrWrongState, w.state)
	}
	w.state = StateSaved
	return nil
}

// Refine re-enters the edit loop over the saved sequence.
func (w *Wizard) Refine() error {
	return w.transition(StateSaved, StateEditing)
}

// Reset abandons the generated sequence and returns to setup. Valid
// from preview or editing.
func (w *Wizard) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StatePreview && w.state != StateEditing {
		return fmt.Errorf("%w: %s", ErrWrongState, w.state)
	}
	w.state = StateSetup
	w.items = nil
	return nil
}

// UpdateItem rewrites one item's title and description in place.
func (w *Wizard) UpdateItem(index int, title, description string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateEditing {
		return fmt.Errorf("%w: %s", ErrWrongState, w.state)
	}
	if index < 0 || index >= len(w.items) {
		return fmt.Errorf("%w: index %d out of range", ErrInvalidItem, index)
	}
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title required", ErrInvalidItem)
	}

	items := w.copyItemsLocked()
	items[index].Title = title
	items[index].Description = description
	w.items = items
	return nil
}

// RemoveItem drops one item; the relative order of the rest is
// preserved.
func (w *Wizard) RemoveItem(index int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateEditing {
		return fmt.Errorf("%w: %s", ErrWrongState, w.state)
	}
	if index < 0 || index >= len(w.items) {
		return fmt.Errorf("%w: index %d out of range", ErrInvalidItem, index)
	}

	items := make([]store.RoadmapItem, 0, len(w.items)-1)
	items = append(items, w.items[:index]...)
	items = append(items, w.items[index+1:]...)
	w.items = items
	return nil
}

// AddPhase appends a user-authored item with a fresh unique id to the
// end of the sequence and returns it.
func (w *Wizard) AddPhase() (store.RoadmapItem, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateEditing {
		return store.RoadmapItem{}, fmt.Errorf("%w: %s", ErrWrongState, w.state)
	}

	item := store.RoadmapItem{
		ID:          "custom_" + uuid.NewString(),
		Title:       "New Learning Phase",
		Description: "Define your learning goals for this step.",
	}
	items := w.copyItemsLocked()
	w.items = append(items, item)
	return item, nil
}

// Snapshot is the observable wizard state.
type Snapshot struct {
	State   State               `json:"state"`
	Subject string              `json:"subject"`
	Level   string              `json:"level"`
	Goal    string              `json:"goal"`
	Busy    bool                `json:"busy"`
	Items   []store.RoadmapItem `json:"items"`
}

// View returns the current observable state.
func (w *Wizard) View() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Snapshot{
		State:   w.state,
		Subject: w.subject,
		Level:   w.level,
		Goal:    w.goal,
		Busy:    w.busy,
		Items:   w.copyItemsLocked(),
	}
}

// Current returns the wizard state only.
func (w *Wizard) Current() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Wizard) transition(from, to State) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != from {
		return fmt.Errorf("%w: %s", ErrWrongState, w.state)
	}
	w.state = to
	return nil
}

func (w *Wizard) copyItemsLocked() []store.RoadmapItem {
	items := make([]store.RoadmapItem, len(w.items))
	copy(items, w.items)
	return items
}
