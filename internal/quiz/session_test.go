package quiz

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bookself/bookself/internal/ai"
	"github.com/bookself/bookself/internal/store"
)

func testQuestions(n int) []store.QuizQuestion {
	qs := make([]store.QuizQuestion, n)
	for i := range qs {
		qs[i] = store.QuizQuestion{
			Question:     fmt.Sprintf("Question %d", i+1),
			Options:      []string{"A", "B", "C", "D"},
			CorrectIndex: i % 4,
			Explanation:  fmt.Sprintf("Because %d.", i+1),
		}
	}
	return qs
}

func TestQuizFullRun(t *testing.T) {
	client := &ai.MockClient{Quiz: testQuestions(10)}
	s := NewSession(client, nil, 10)

	if err := s.Start(context.Background(), "Ecology", "Forests absorb CO2."); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if snap := s.State(); !snap.Active || snap.Index != 0 || snap.Score != 0 {
		t.Fatalf("initial snapshot = %+v", snap)
	}

	// Answer every question correctly.
	for i := 0; i < 10; i++ {
		res, err := s.Answer(i % 4)
		if err != nil {
			t.Fatalf("Answer %d: %v", i, err)
		}
		if !res.Correct {
			t.Fatalf("answer %d graded incorrect", i)
		}
		if i < 9 && res.Done {
			t.Fatalf("done after question %d", i)
		}
		if i == 9 {
			if !res.Done {
				t.Fatal("final answer not done")
			}
			if res.Score != 10 || res.Total != 10 {
				t.Errorf("final score = %d/%d, want 10/10", res.Score, res.Total)
			}
		}
	}

	// The session returned to Inactive after the final question.
	if snap := s.State(); snap.Active {
		t.Errorf("snapshot after completion = %+v, want inactive", snap)
	}
}

func TestQuizWrongAnswersScoreZero(t *testing.T) {
	client := &ai.MockClient{Quiz: testQuestions(3)}
	s := NewSession(client, nil, 3)
	s.Start(context.Background(), "Ecology", "content")

	var last Result
	for i := 0; i < 3; i++ {
		// CorrectIndex is i%4, so option 3 is wrong for the first three.
		res, err := s.Answer(3)
		if err != nil {
			t.Fatalf("Answer: %v", err)
		}
		last = res
	}
	if last.Score != 0 {
		t.Errorf("score = %d, want 0", last.Score)
	}
}

func TestQuizCancelMidRun(t *testing.T) {
	client := &ai.MockClient{Quiz: testQuestions(10)}
	s := NewSession(client, nil, 10)
	s.Start(context.Background(), "Ecology", "content")

	for i := 0; i < 3; i++ {
		if _, err := s.Answer(0); err != nil {
			t.Fatalf("Answer: %v", err)
		}
	}
	s.Cancel()

	if snap := s.State(); snap.Active {
		t.Fatalf("snapshot after cancel = %+v, want inactive", snap)
	}
	if _, err := s.Answer(0); !errors.Is(err, ErrNotInProgress) {
		t.Errorf("Answer after cancel = %v, want ErrNotInProgress", err)
	}
	// Cancel when inactive is a no-op.
	s.Cancel()
}

func TestQuizStartWhileActive(t *testing.T) {
	client := &ai.MockClient{Quiz: testQuestions(5)}
	s := NewSession(client, nil, 5)
	s.Start(context.Background(), "Ecology", "content")

	if _, err := s.Answer(0); err != nil {
		t.Fatalf("Answer: %v", err)
	}

	if err := s.Start(context.Background(), "Botany", "other content"); !errors.Is(err, ErrInProgress) {
		t.Fatalf("Start while active = %v, want ErrInProgress", err)
	}
	// The original run survives untouched.
	if snap := s.State(); !snap.Active || snap.Topic != "Ecology" || snap.Index != 1 {
		t.Errorf("snapshot = %+v, want Ecology at index 1", snap)
	}

	// A cancelled session accepts a fresh start.
	s.Cancel()
	if err := s.Start(context.Background(), "Botany", "other content"); err != nil {
		t.Errorf("Start after cancel: %v", err)
	}
}

func TestQuizEmptyContent(t *testing.T) {
	s := NewSession(&ai.MockClient{Quiz: testQuestions(10)}, nil, 10)
	if err := s.Start(context.Background(), "Ecology", "   "); !errors.Is(err, ErrEmptyContent) {
		t.Errorf("Start with blank content = %v, want ErrEmptyContent", err)
	}
}

func TestQuizGenerationFailureStaysInactive(t *testing.T) {
	client := &ai.MockClient{Err: errors.New("provider down")}
	s := NewSession(client, nil, 10)

	if err := s.Start(context.Background(), "Ecology", "content"); err == nil {
		t.Fatal("Start with failing client succeeded")
	}
	if snap := s.State(); snap.Active || snap.Busy {
		t.Errorf("snapshot after failure = %+v, want inactive and not busy", snap)
	}

	// The guard was released, so a second attempt can proceed.
	client.Err = nil
	client.Quiz = testQuestions(10)
	if err := s.Start(context.Background(), "Ecology", "content"); err != nil {
		t.Errorf("Start after recovery: %v", err)
	}
}

func TestQuizEmptyQuestionList(t *testing.T) {
	s := NewSession(&ai.MockClient{}, nil, 10)
	if err := s.Start(context.Background(), "Ecology", "content"); err == nil {
		t.Fatal("Start with zero questions succeeded")
	}
	if snap := s.State(); snap.Active {
		t.Errorf("snapshot = %+v, want inactive", snap)
	}
}

func TestQuizAnswerOutOfRange(t *testing.T) {
	s := NewSession(&ai.MockClient{Quiz: testQuestions(2)}, nil, 2)
	s.Start(context.Background(), "Ecology", "content")

	if _, err := s.Answer(7); err == nil {
		t.Error("out-of-range option accepted")
	}
	// The run is untouched by the rejected answer.
	if snap := s.State(); !snap.Active || snap.Index != 0 {
		t.Errorf("snapshot = %+v, want active at index 0", snap)
	}
}
