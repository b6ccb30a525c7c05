package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bookself/bookself/internal/store"
)

const anthropicAPI = "https://api.anthropic.com/v1/messages"

// Anthropic calls the Anthropic Messages API directly. It covers every
// text call; image generation is not offered by the API, so cover
// requests return empty (the contract permits "image data or empty").
type Anthropic struct {
	apiKey  string
	model   string
	client  *http.Client
	baseURL string
}

// NewAnthropic creates a new Anthropic API client.
func NewAnthropic(apiKey, model string) *Anthropic {
	return &Anthropic{
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
		baseURL: anthropicAPI,
	}
}

func (a *Anthropic) AnalyzeFeedback(ctx context.Context, topic, content string) (store.Feedback, error) {
	raw, err := a.complete(ctx, feedbackPrompt(topic, content))
	if err != nil {
		return store.Feedback{}, err
	}
	return decodeFeedback(raw)
}

func (a *Anthropic) OptimizeContent(ctx context.Context, content string) (OptimizedContent, error) {
	raw, err := a.complete(ctx, optimizePrompt(content))
	if err != nil {
		return OptimizedContent{}, err
	}
	return decodeOptimized(raw)
}

func (a *Anthropic) GenerateQuiz(ctx context.Context, topic, content string, n int) ([]store.QuizQuestion, error) {
	raw, err := a.complete(ctx, quizPrompt(topic, content, n))
	if err != nil {
		return nil, err
	}
	return decodeQuiz(raw, n)
}

func (a *Anthropic) GenerateRoadmap(ctx context.Context, subject, level string, knownTopics []string) ([]store.RoadmapItem, error) {
	raw, err := a.complete(ctx, roadmapPrompt(subject, level, knownTopics))
	if err != nil {
		return nil, err
	}
	return decodeRoadmap(raw)
}

func (a *Anthropic) GetLearningAdvice(ctx context.Context, knownTopics []string, goal string) (LearningAdvice, error) {
	raw, err := a.complete(ctx, advicePrompt(knownTopics, goal))
	if err != nil {
		return LearningAdvice{}, err
	}
	return decodeAdvice(raw)
}

// GenerateCoverImage always returns empty: the Messages API does not
// generate images.
func (a *Anthropic) GenerateCoverImage(ctx context.Context, title, styleDescription string) (string, error) {
	return "", nil
}

func (a *Anthropic) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":       a.model,
		"max_tokens":  2048,
		"temperature": 0.3,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic api status %d: %s", resp.StatusCode, respBody)
	}

	var result struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(result.Content) == 0 {
		return "", fmt.Errorf("anthropic api: empty content")
	}
	return result.Content[0].Text, nil
}
