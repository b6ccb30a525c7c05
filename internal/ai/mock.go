package ai

import (
	"context"
	"fmt"

	"github.com/bookself/bookself/internal/store"
)

// MockClient is a test double for the Client interface. It can also
// back a dry-run server when no provider is configured. Each call is
// recorded in Calls; Err, when set, is returned by every method.
type MockClient struct {
	Feedback  store.Feedback
	Optimized OptimizedContent
	Quiz      []store.QuizQuestion
	Roadmap   []store.RoadmapItem
	Advice    LearningAdvice
	Cover     string
	Err       error
	Calls     []string
}

func (m *MockClient) AnalyzeFeedback(ctx context.Context, topic, content string) (store.Feedback, error) {
	m.Calls = append(m.Calls, fmt.Sprintf("feedback:%s", topic))
	return m.Feedback, m.Err
}

func (m *MockClient) OptimizeContent(ctx context.Context, content string) (OptimizedContent, error) {
	m.Calls = append(m.Calls, "optimize")
	return m.Optimized, m.Err
}

func (m *MockClient) GenerateQuiz(ctx context.Context, topic, content string, n int) ([]store.QuizQuestion, error) {
	m.Calls = append(m.Calls, fmt.Sprintf("quiz:%s", topic))
	return m.Quiz, m.Err
}

func (m *MockClient) GenerateRoadmap(ctx context.Context, subject, level string, knownTopics []string) ([]store.RoadmapItem, error) {
	m.Calls = append(m.Calls, fmt.Sprintf("roadmap:%s:%s", subject, level))
	return m.Roadmap, m.Err
}

func (m *MockClient) GetLearningAdvice(ctx context.Context, knownTopics []string, goal string) (LearningAdvice, error) {
	m.Calls = append(m.Calls, fmt.Sprintf("advice:%s", goal))
	return m.Advice, m.Err
}

func (m *MockClient) GenerateCoverImage(ctx context.Context, title, styleDescription string) (string, error) {
	m.Calls = append(m.Calls, fmt.Sprintf("cover:%s", title))
	return m.Cover, m.Err
}
