package ai

import (
	"context"
	"fmt"

	"github.com/bookself/bookself/internal/config"
	"github.com/bookself/bookself/internal/store"
)

// Client is the generative collaborator behind feedback analysis,
// content optimization, quizzes, roadmaps, advice, and cover images.
// Every call is plain request/response; there is no streaming and no
// cancellation beyond the context.
type Client interface {
	// AnalyzeFeedback reviews a student reflection. Callers neutralize
	// failures with NeutralFeedback rather than propagating them.
	AnalyzeFeedback(ctx context.Context, topic, content string) (store.Feedback, error)

	// OptimizeContent restructures content for memory retention.
	OptimizeContent(ctx context.Context, content string) (OptimizedContent, error)

	// GenerateQuiz produces exactly n ordered multiple-choice questions.
	GenerateQuiz(ctx context.Context, topic, content string, n int) ([]store.QuizQuestion, error)

	// GenerateRoadmap produces an ordered learning sequence; item order
	// as returned is canonical.
	GenerateRoadmap(ctx context.Context, subject, level string, knownTopics []string) ([]store.RoadmapItem, error)

	// GetLearningAdvice answers "how do I get from here to this goal".
	GetLearningAdvice(ctx context.Context, knownTopics []string, goal string) (LearningAdvice, error)

	// GenerateCoverImage returns image data (a data URL) or empty.
	GenerateCoverImage(ctx context.Context, title, styleDescription string) (string, error)
}

// OptimizedContent is the result of a content optimization call.
type OptimizedContent struct {
	StructuredContent string `json:"structuredContent"`
	Summary           string `json:"summary"`
}

// LearningAdvice is the planner response.
type LearningAdvice struct {
	Advice                 string   `json:"advice"`
	SuggestedPrerequisites []string `json:"suggestedPrerequisites"`
}

// NeutralFeedback is the substitute value when feedback analysis fails.
func NeutralFeedback() store.Feedback {
	return store.Feedback{
		Gaps:            []string{},
		Suggestions:     []string{},
		ReasoningScore:  50,
		ClarityFeedback: "Analysis unavailable.",
	}
}

// NewClient creates a collaborator client from config.
func NewClient(cfg config.AIConfig) (Client, error) {
	switch cfg.Provider {
	case "gemini":
		if cfg.GeminiKey == "" {
			return nil, fmt.Errorf("gemini provider requires GEMINI_API_KEY or config")
		}
		model := cfg.Model
		if model == "" {
			model = "gemini-3-flash-preview"
		}
		imageModel := cfg.ImageModel
		if imageModel == "" {
			imageModel = "gemini-2.5-flash-image"
		}
		return NewGemini(cfg.GeminiKey, model, imageModel), nil
	case "anthropic":
		if cfg.AnthropicKey == "" {
			return nil, fmt.Errorf("anthropic provider requires ANTHROPIC_API_KEY or config")
		}
		model := cfg.Model
		if model == "" {
			model = "claude-haiku-4-5-20251001"
		}
		return NewAnthropic(cfg.AnthropicKey, model), nil
	case "mock":
		return &MockClient{}, nil
	default:
		return nil, fmt.Errorf("unknown AI provider: %q", cfg.Provider)
	}
}
