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

const geminiAPI = "https://generativelanguage.googleapis.com/v1beta/models"

// Gemini calls the Generative Language API directly.
type Gemini struct {
	apiKey     string
	model      string
	imageModel string
	client     *http.Client
	baseURL    string
}

// NewGemini creates a new Gemini API client.
func NewGemini(apiKey, model, imageModel string) *Gemini {
	return &Gemini{
		apiKey:     apiKey,
		model:      model,
		imageModel: imageModel,
		client:     &http.Client{Timeout: 120 * time.Second},
		baseURL:    geminiAPI,
	}
}

func (g *Gemini) AnalyzeFeedback(ctx context.Context, topic, content string) (store.Feedback, error) {
	raw, err := g.generateJSON(ctx, feedbackPrompt(topic, content))
	if err != nil {
		return store.Feedback{}, err
	}
	return decodeFeedback(raw)
}

func (g *Gemini) OptimizeContent(ctx context.Context, content string) (OptimizedContent, error) {
	raw, err := g.generateJSON(ctx, optimizePrompt(content))
	if err != nil {
		return OptimizedContent{}, err
	}
	return decodeOptimized(raw)
}

func (g *Gemini) GenerateQuiz(ctx context.Context, topic, content string, n int) ([]store.QuizQuestion, error) {
	raw, err := g.generateJSON(ctx, quizPrompt(topic, content, n))
	if err != nil {
		return nil, err
	}
	return decodeQuiz(raw, n)
}

func (g *Gemini) GenerateRoadmap(ctx context.Context, subject, level string, knownTopics []string) ([]store.RoadmapItem, error) {
	raw, err := g.generateJSON(ctx, roadmapPrompt(subject, level, knownTopics))
	if err != nil {
		return nil, err
	}
	return decodeRoadmap(raw)
}

func (g *Gemini) GetLearningAdvice(ctx context.Context, knownTopics []string, goal string) (LearningAdvice, error) {
	raw, err := g.generateJSON(ctx, advicePrompt(knownTopics, goal))
	if err != nil {
		return LearningAdvice{}, err
	}
	return decodeAdvice(raw)
}

// GenerateCoverImage asks the image model for a cover and returns it as
// a data URL, or empty when the response carries no image part.
func (g *Gemini) GenerateCoverImage(ctx context.Context, title, styleDescription string) (string, error) {
	result, err := g.generate(ctx, g.imageModel, coverPrompt(title, styleDescription), false)
	if err != nil {
		return "", err
	}
	if result.inlineData == "" {
		return "", nil
	}
	return "data:image/png;base64," + result.inlineData, nil
}

func (g *Gemini) generateJSON(ctx context.Context, prompt string) (string, error) {
	result, err := g.generate(ctx, g.model, prompt, true)
	if err != nil {
		return "", err
	}
	return result.text, nil
}

type geminiResult struct {
	text       string
	inlineData string
}

func (g *Gemini) generate(ctx context.Context, model, prompt string, jsonMode bool) (geminiResult, error) {
	reqBody := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}
	if jsonMode {
		reqBody["generationConfig"] = map[string]any{
			"responseMimeType": "application/json",
			"temperature":      0.3,
		}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return geminiResult{}, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent", g.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return geminiResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return geminiResult{}, fmt.Errorf("gemini api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return geminiResult{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return geminiResult{}, fmt.Errorf("gemini api status %d: %s", resp.StatusCode, respBody)
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text       string `json:"text"`
					InlineData struct {
						Data string `json:"data"`
					} `json:"inlineData"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return geminiResult{}, fmt.Errorf("decode response: %w", err)
	}

	var out geminiResult
	if len(result.Candidates) > 0 {
		for _, part := range result.Candidates[0].Content.Parts {
			if part.Text != "" && out.text == "" {
				out.text = part.Text
			}
			if part.InlineData.Data != "" && out.inlineData == "" {
				out.inlineData = part.InlineData.Data
			}
		}
	}
	return out, nil
}
