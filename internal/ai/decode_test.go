package ai

import (
	"errors"
	"testing"
)

func TestDecodeFeedback(t *testing.T) {
	raw := `{"gaps":["depth"],"suggestions":[],"reasoningScore":85,"clarityFeedback":"Solid."}`
	fb, err := decodeFeedback(raw)
	if err != nil {
		t.Fatalf("decodeFeedback: %v", err)
	}
	if fb.ReasoningScore != 85 || fb.ClarityFeedback != "Solid." {
		t.Errorf("feedback = %+v", fb)
	}
}

func TestDecodeFeedbackClampsScore(t *testing.T) {
	fb, err := decodeFeedback(`{"reasoningScore":250,"clarityFeedback":"x"}`)
	if err != nil {
		t.Fatalf("decodeFeedback: %v", err)
	}
	if fb.ReasoningScore != 100 {
		t.Errorf("score = %d, want 100", fb.ReasoningScore)
	}
	// Absent list fields come back as empty slices, not nil.
	if fb.Gaps == nil || fb.Suggestions == nil {
		t.Error("nil list fields after decode")
	}
}

func TestDecodeFeedbackMissingClarity(t *testing.T) {
	_, err := decodeFeedback(`{"reasoningScore":85}`)
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want DecodeError", err)
	}
	if de.Call != "feedback" {
		t.Errorf("call = %s, want feedback", de.Call)
	}
}

func TestDecodeStripsCodeFences(t *testing.T) {
	raw := "```json\n{\"structuredContent\":\"# Notes\",\"summary\":\"Short.\"}\n```"
	oc, err := decodeOptimized(raw)
	if err != nil {
		t.Fatalf("decodeOptimized: %v", err)
	}
	if oc.StructuredContent != "# Notes" {
		t.Errorf("structuredContent = %q", oc.StructuredContent)
	}
}

func TestDecodeQuiz(t *testing.T) {
	raw := `[
		{"question":"Q1","options":["a","b","c","d"],"correctIndex":1,"explanation":"E1"},
		{"question":"Q2","options":["a","b"],"correctIndex":0,"explanation":"E2"}
	]`
	qs, err := decodeQuiz(raw, 2)
	if err != nil {
		t.Fatalf("decodeQuiz: %v", err)
	}
	if len(qs) != 2 || qs[0].CorrectIndex != 1 {
		t.Errorf("questions = %+v", qs)
	}
}

func TestDecodeQuizStrictness(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		n    int
	}{
		{"wrong count", `[{"question":"Q","options":["a","b"],"correctIndex":0}]`, 2},
		{"empty question", `[{"question":"","options":["a","b"],"correctIndex":0}]`, 1},
		{"one option", `[{"question":"Q","options":["a"],"correctIndex":0}]`, 1},
		{"index out of range", `[{"question":"Q","options":["a","b"],"correctIndex":2}]`, 1},
		{"not json", `the quiz is as follows`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := decodeQuiz(tt.raw, tt.n); err == nil {
				t.Error("decodeQuiz accepted malformed payload")
			}
		})
	}
}

func TestDecodeRoadmap(t *testing.T) {
	raw := `[{"id":"s1","title":"Basics","description":"","isPrerequisiteMissing":true}]`
	items, err := decodeRoadmap(raw)
	if err != nil {
		t.Fatalf("decodeRoadmap: %v", err)
	}
	if !items[0].IsPrerequisiteMissing {
		t.Error("isPrerequisiteMissing lost in decode")
	}

	if _, err := decodeRoadmap(`[]`); err == nil {
		t.Error("empty roadmap accepted")
	}
	if _, err := decodeRoadmap(`[{"id":"","title":"x"}]`); err == nil {
		t.Error("roadmap item without id accepted")
	}
}

func TestDecodeAdvice(t *testing.T) {
	la, err := decodeAdvice(`{"advice":"Study the basics first."}`)
	if err != nil {
		t.Fatalf("decodeAdvice: %v", err)
	}
	if la.SuggestedPrerequisites == nil {
		t.Error("nil prerequisites after decode")
	}

	if _, err := decodeAdvice(`{"suggestedPrerequisites":["x"]}`); err == nil {
		t.Error("advice without text accepted")
	}
}
