package store

import "time"

// UnderstandingLevel classifies mastery of a page, independent of retention.
type UnderstandingLevel string

const (
	NeedsReview    UnderstandingLevel = "NEEDS_REVIEW"
	Partial        UnderstandingLevel = "PARTIAL"
	WellUnderstood UnderstandingLevel = "WELL_UNDERSTOOD"
)

// QuizQuestion is one multiple-choice question of a generated quiz.
type QuizQuestion struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
}

// Feedback is the AI reflection analysis attached to a page.
type Feedback struct {
	Gaps            []string `json:"gaps"`
	Suggestions     []string `json:"suggestions"`
	ReasoningScore  int      `json:"reasoningScore"`
	ClarityFeedback string   `json:"clarityFeedback"`
}

// KnowledgePage is a unit of recorded knowledge. Retention is always in
// [1,100]; it decays with wall-clock time since LastUpdated and is reset
// to 100 on save. A zero LastUpdated means the page has never been
// reviewed and is exempt from decay.
type KnowledgePage struct {
	ID            string             `json:"id"`
	Title         string             `json:"title"`
	Content       string             `json:"content"`
	LastUpdated   time.Time          `json:"lastUpdated"`
	Retention     int                `json:"retention"`
	Understanding UnderstandingLevel `json:"understanding"`
	Feedback      *Feedback          `json:"feedback,omitempty"`
	Prerequisites []string           `json:"prerequisites"`
	Quiz          []QuizQuestion     `json:"quiz,omitempty"`
	ChapterID     string             `json:"chapterId,omitempty"`
}

// Chapter groups lesson references within one book. LessonIDs keep
// insertion order; that order is the display order. References may point
// at ids absent from the global page mapping and must be skipped, never
// treated as an error.
type Chapter struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	BookID    string   `json:"bookId"`
	LessonIDs []string `json:"lessonIds"`
}

// Book is a named collection of chapters owned by a user.
type Book struct {
	ID               string    `json:"id"`
	Owner            string    `json:"owner"`
	OwnerDisplayName string    `json:"ownerDisplayName,omitempty"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	CoverImage       string    `json:"coverImage,omitempty"`
	Chapters         []Chapter `json:"chapters"`
	IsPublic         bool      `json:"isPublic"`
	AllowCloning     bool      `json:"allowCloning"`
	Likes            int       `json:"likes"`
}

// Roadmap is a named, colored sequence of page ids. Completion is
// derived from page understanding, never stored.
type Roadmap struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ColorTheme  string   `json:"colorTheme"`
	PageIDs     []string `json:"pageIds"`
}

// RoadmapItem is one step of a generated or user-edited learning
// sequence. IsPrerequisiteMissing marks a step whose foundational
// concept is absent from the learner's recorded pages.
type RoadmapItem struct {
	ID                    string `json:"id"`
	Title                 string `json:"title"`
	Description           string `json:"description"`
	IsPrerequisiteMissing bool   `json:"isPrerequisiteMissing"`
}

// UserProfile is the signed-in learner. IsSetupComplete gates the full
// route surface; an incomplete profile can only reach the setup screen.
type UserProfile struct {
	UID             string `json:"uid"`
	Email           string `json:"email"`
	Username        string `json:"username"`
	DisplayName     string `json:"displayName"`
	PhotoURL        string `json:"photoURL,omitempty"`
	Bio             string `json:"bio,omitempty"`
	IsSetupComplete bool   `json:"isSetupComplete"`
}
