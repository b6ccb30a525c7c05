package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bookself/bookself/internal/store"
)

// DecodeError reports a collaborator payload that did not match the
// expected shape. Callers treat it like any other call failure: the
// invoking state machine stays in its prior stable state.
type DecodeError struct {
	Call   string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s response: %s", e.Call, e.Reason)
}

// stripFences removes a markdown code fence if the model wrapped its
// JSON in one, and trims surrounding whitespace.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}

func decodeFeedback(raw string) (store.Feedback, error) {
	var fb store.Feedback
	if err := json.Unmarshal([]byte(stripFences(raw)), &fb); err != nil {
		return store.Feedback{}, &DecodeError{Call: "feedback", Reason: err.Error()}
	}
	if fb.ClarityFeedback == "" {
		return store.Feedback{}, &DecodeError{Call: "feedback", Reason: "missing clarityFeedback"}
	}
	if fb.ReasoningScore < 0 {
		fb.ReasoningScore = 0
	}
	if fb.ReasoningScore > 100 {
		fb.ReasoningScore = 100
	}
	if fb.Gaps == nil {
		fb.Gaps = []string{}
	}
	if fb.Suggestions == nil {
		fb.Suggestions = []string{}
	}
	return fb, nil
}

func decodeOptimized(raw string) (OptimizedContent, error) {
	var oc OptimizedContent
	if err := json.Unmarshal([]byte(stripFences(raw)), &oc); err != nil {
		return OptimizedContent{}, &DecodeError{Call: "optimize", Reason: err.Error()}
	}
	if oc.StructuredContent == "" {
		return OptimizedContent{}, &DecodeError{Call: "optimize", Reason: "missing structuredContent"}
	}
	return oc, nil
}

func decodeQuiz(raw string, n int) ([]store.QuizQuestion, error) {
	var qs []store.QuizQuestion
	if err := json.Unmarshal([]byte(stripFences(raw)), &qs); err != nil {
		return nil, &DecodeError{Call: "quiz", Reason: err.Error()}
	}
	if len(qs) != n {
		return nil, &DecodeError{Call: "quiz", Reason: fmt.Sprintf("expected %d questions, got %d", n, len(qs))}
	}
	for i, q := range qs {
		if q.Question == "" {
			return nil, &DecodeError{Call: "quiz", Reason: fmt.Sprintf("question %d: empty text", i)}
		}
		if len(q.Options) < 2 {
			return nil, &DecodeError{Call: "quiz", Reason: fmt.Sprintf("question %d: %d options", i, len(q.Options))}
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return nil, &DecodeError{Call: "quiz", Reason: fmt.Sprintf("question %d: correctIndex %d out of range", i, q.CorrectIndex)}
		}
	}
	return qs, nil
}

func decodeRoadmap(raw string) ([]store.RoadmapItem, error) {
	var items []store.RoadmapItem
	if err := json.Unmarshal([]byte(stripFences(raw)), &items); err != nil {
		return nil, &DecodeError{Call: "roadmap", Reason: err.Error()}
	}
	if len(items) == 0 {
		return nil, &DecodeError{Call: "roadmap", Reason: "empty item list"}
	}
	for i, it := range items {
		if it.ID == "" {
			return nil, &DecodeError{Call: "roadmap", Reason: fmt.Sprintf("item %d: missing id", i)}
		}
		if it.Title == "" {
			return nil, &DecodeError{Call: "roadmap", Reason: fmt.Sprintf("item %d: missing title", i)}
		}
	}
	return items, nil
}

func decodeAdvice(raw string) (LearningAdvice, error) {
	var la LearningAdvice
	if err := json.Unmarshal([]byte(stripFences(raw)), &la); err != nil {
		return LearningAdvice{}, &DecodeError{Call: "advice", Reason: err.Error()}
	}
	if la.Advice == "" {
		return LearningAdvice{}, &DecodeError{Call: "advice", Reason: "missing advice"}
	}
	if la.SuggestedPrerequisites == nil {
		la.SuggestedPrerequisites = []string{}
	}
	return la, nil
}
