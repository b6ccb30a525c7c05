package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/bookself/bookself/internal/ai"
	"github.com/bookself/bookself/internal/store"
)

// DefaultLength is the number of questions per generated quiz.
const DefaultLength = 10

var (
	// ErrBusy rejects a second start while a generation request is in
	// flight.
	ErrBusy = errors.New("quiz generation already in progress")
	// ErrEmptyContent rejects starting a quiz with no source content.
	ErrEmptyContent = errors.New("quiz requires source content")
	// ErrNotInProgress rejects answers and state reads with no active
	// quiz.
	ErrNotInProgress = errors.New("no quiz in progress")
	// ErrInProgress rejects starting a quiz over an active run; the
	// caller cancels explicitly first.
	ErrInProgress = errors.New("a quiz is already in progress")
)

// Session sequences a single quiz run: Inactive until questions arrive,
// then one InProgress pass over them in order, then Inactive again on
// completion or cancellation. Score lives only inside the run; nothing
// is recorded once the session ends.
type Session struct {
	client ai.Client
	log    *zap.Logger
	length int

	mu        sync.Mutex
	busy      bool
	active    bool
	topic     string
	questions []store.QuizQuestion
	index     int
	score     int
}

// NewSession creates a quiz session. A non-positive length falls back
// to DefaultLength.
func NewSession(client ai.Client, log *zap.Logger, length int) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	if length <= 0 {
		length = DefaultLength
	}
	return &Session{client: client, log: log, length: length}
}

// Start generates questions and enters InProgress(0, 0). Starting over
// an active run is rejected with ErrInProgress; Cancel first. On any
// failure, or an empty question list, the session stays Inactive. The
// in-flight guard is released exactly once on every exit path.
func (s *Session) Start(ctx context.Context, topic, content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}

	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return ErrInProgress
	}
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.busy = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	questions, err := s.client.GenerateQuiz(ctx, topic, content, s.length)
	if err != nil {
		return fmt.Errorf("generate quiz: %w", err)
	}
	if len(questions) == 0 {
		return fmt.Errorf("generate quiz: empty question list")
	}

	s.mu.Lock()
	s.active = true
	s.topic = topic
	s.questions = questions
	s.index = 0
	s.score = 0
	s.mu.Unlock()

	s.log.Info("quiz started", zap.String("topic", topic), zap.Int("questions", len(questions)))
	return nil
}

// Result reports the outcome of one answered question.
type Result struct {
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation"`
	Done        bool   `json:"done"`
	Index       int    `json:"index"`
	Score       int    `json:"score"`
	Total       int    `json:"total"`
}

// Answer grades the current question against the chosen option index.
// A correct pick increments the score; the final question terminates
// the session and reports the final score.
func (s *Session) Answer(option int) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return Result{}, ErrNotInProgress
	}

	q := s.questions[s.index]
	if option < 0 || option >= len(q.Options) {
		return Result{}, fmt.Errorf("option %d out of range [0,%d)", option, len(q.Options))
	}

	res := Result{
		Correct:     option == q.CorrectIndex,
		Explanation: q.Explanation,
		Total:       len(s.questions),
	}
	if res.Correct {
		s.score++
	}

	if s.index < len(s.questions)-1 {
		s.index++
		res.Index = s.index
		res.Score = s.score
		return res, nil
	}

	// Last question: report the final score and return to Inactive.
	res.Done = true
	res.Index = s.index
	res.Score = s.score
	s.log.Info("quiz finished", zap.String("topic", s.topic),
		zap.Int("score", s.score), zap.Int("total", len(s.questions)))
	s.reset()
	return res, nil
}

// Cancel discards the run from any index and returns to Inactive.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.log.Info("quiz cancelled", zap.String("topic", s.topic), zap.Int("index", s.index))
	s.reset()
}

// Snapshot is the observable quiz state.
type Snapshot struct {
	Active   bool                `json:"active"`
	Busy     bool                `json:"busy"`
	Topic    string              `json:"topic,omitempty"`
	Index    int                 `json:"index"`
	Score    int                 `json:"score"`
	Total    int                 `json:"total"`
	Question *store.QuizQuestion `json:"question,omitempty"`
}

// State returns the current observable state.
func (s *Session) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{Active: s.active, Busy: s.busy}
	if s.active {
		snap.Topic = s.topic
		snap.Index = s.index
		snap.Score = s.score
		snap.Total = len(s.questions)
		q := s.questions[s.index]
		snap.Question = &q
	}
	return snap
}

func (s *Session) reset() {
	s.active = false
	s.topic = ""
	s.questions = nil
	s.index = 0
	s.score = 0
}
