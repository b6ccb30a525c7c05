package ai

import (
	"fmt"
	"strings"
)

// Prompt builders for every collaborator call. Each prompt demands a
// bare JSON payload so the strict decoder can reject anything else.

func feedbackPrompt(topic, content string) string {
	return fmt.Sprintf(`Analyze this student reflection on %q.
Content: %q
Identify conceptual gaps, suggest improvements, and score reasoning clarity (0-100).

Return ONLY a JSON object, no other text:
{"gaps": ["..."], "suggestions": ["..."], "reasoningScore": 0, "clarityFeedback": "..."}`, topic, content)
}

func optimizePrompt(content string) string {
	return fmt.Sprintf(`Optimize this educational content for memory retention.
Return: 1) A structured Markdown version with clear headings. 2) A 2-sentence summary.
Content: %q

Return ONLY a JSON object, no other text:
{"structuredContent": "...", "summary": "..."}`, content)
}

func quizPrompt(topic, content string, n int) string {
	return fmt.Sprintf(`Generate exactly %d conceptual multiple-choice questions for: %q.
Content context: %q.
Each question has 4 options; correctIndex is the zero-based index of the right option.

Return ONLY a JSON array of exactly %d objects, no other text:
[{"question": "...", "options": ["...","...","...","..."], "correctIndex": 0, "explanation": "..."}]`,
		n, topic, content, n)
}

func roadmapPrompt(subject, level string, knownTopics []string) string {
	return fmt.Sprintf(`Generate a learning roadmap for Subject: %q at Level: %q.
The user already knows: %s.
Mark an item with "isPrerequisiteMissing": true if it is a fundamental concept the user has not explicitly documented.
Order the items from first to last step.

Return ONLY a JSON array, no other text:
[{"id": "...", "title": "...", "description": "...", "isPrerequisiteMissing": false}]`,
		subject, level, joinTopics(knownTopics))
}

func advicePrompt(knownTopics []string, goal string) string {
	return fmt.Sprintf(`The student wants to achieve this goal: %q.
Their current documented knowledge: %s.
Provide specific advice on how to get there and list suggested prerequisites they should focus on first.

Return ONLY a JSON object, no other text:
{"advice": "...", "suggestedPrerequisites": ["..."]}`, goal, joinTopics(knownTopics))
}

func coverPrompt(title, styleDescription string) string {
	return fmt.Sprintf(`A professional academic book cover for %q. Aesthetic: %s. Soft educational colors.`,
		title, styleDescription)
}

func joinTopics(topics []string) string {
	if len(topics) == 0 {
		return "(nothing documented yet)"
	}
	return strings.Join(topics, ", ")
}
