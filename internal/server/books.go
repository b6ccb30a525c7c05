package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bookself/bookself/internal/engine"
	"github.com/bookself/bookself/internal/store"
)

// bookSummary is a book plus the derived counts the dashboard shows.
type bookSummary struct {
	store.Book
	PageCount    int  `json:"pageCount"`
	AvgRetention int  `json:"avgRetention"`
	Liked        bool `json:"liked"`
}

func (s *Server) summarize(b store.Book) bookSummary {
	sum := bookSummary{Book: b}
	total := 0
	for _, c := range b.Chapters {
		for _, p := range s.state.ChapterPages(c) {
			sum.PageCount++
			total += p.Retention
		}
	}
	if sum.PageCount > 0 {
		sum.AvgRetention = total / sum.PageCount
	}
	for _, id := range s.state.LikedBooks() {
		if id == b.ID {
			sum.Liked = true
		}
	}
	return sum
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	profile, ok := s.currentProfile(w)
	if !ok {
		return
	}
	books := make([]bookSummary, 0)
	for _, b := range s.state.Books() {
		if b.Owner == profile.Username {
			books = append(books, s.summarize(b))
		}
	}
	pages := s.state.Pages()
	debt, mastered := engine.ReviewBuckets(pages)
	writeJSON(w, http.StatusOK, map[string]any{
		"profile":       profile,
		"books":         books,
		"pageCount":     len(pages),
		"debtCount":     len(debt),
		"masteredCount": len(mastered),
	})
}

type createBookRequest struct {
	Title       string `json:"title" validate:"required,max=120"`
	Description string `json:"description" validate:"max=1000"`
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var req createBookRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	p, ok := s.currentProfile(w)
	if !ok {
		return
	}
	id := s.state.CreateBook(p.Username, p.DisplayName, req.Title, req.Description)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// chapterView is a chapter with its lesson ids resolved to pages.
// Reserved lesson ids with no saved page yet are skipped.
type chapterView struct {
	store.Chapter
	Pages []store.KnowledgePage `json:"pages"`
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	book, ok := s.state.BookByID(chi.URLParam(r, "bookID"))
	if !ok {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	chapters := make([]chapterView, 0, len(book.Chapters))
	for _, c := range book.Chapters {
		chapters = append(chapters, chapterView{Chapter: c, Pages: s.state.ChapterPages(c)})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"book":     s.summarize(book),
		"chapters": chapters,
	})
}

type bookSettingsRequest struct {
	Title        string `json:"title" validate:"required,max=120"`
	Description  string `json:"description" validate:"max=1000"`
	IsPublic     bool   `json:"isPublic"`
	AllowCloning bool   `json:"allowCloning"`
}

func (s *Server) handleUpdateBookSettings(w http.ResponseWriter, r *http.Request) {
	var req bookSettingsRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	err := s.state.UpdateBookSettings(chi.URLParam(r, "bookID"), store.BookSettings{
		Title:        req.Title,
		Description:  req.Description,
		IsPublic:     req.IsPublic,
		AllowCloning: req.AllowCloning,
	})
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleGenerateCover(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookID")
	book, ok := s.state.BookByID(bookID)
	if !ok {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	if !s.inflight.acquire("cover:" + bookID) {
		writeError(w, http.StatusConflict, "cover generation already in progress")
		return
	}
	defer s.inflight.release("cover:" + bookID)

	image, err := s.client.GenerateCoverImage(r.Context(), book.Title, book.Description)
	if err != nil {
		writeError(w, http.StatusBadGateway, "cover generation failed")
		return
	}
	if image != "" {
		s.state.SetBookCover(bookID, image)
	}
	writeJSON(w, http.StatusOK, map[string]string{"coverImage": image})
}

type addChapterRequest struct {
	Title string `json:"title" validate:"required,max=120"`
}

func (s *Server) handleAddChapter(w http.ResponseWriter, r *http.Request) {
	var req addChapterRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	id, err := s.state.AddChapter(chi.URLParam(r, "bookID"), req.Title)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// handleAddLesson reserves a lesson slot in a chapter. The id dangles
// until a page is saved under it; book views skip unresolved slots.
func (s *Server) handleAddLesson(w http.ResponseWriter, r *http.Request) {
	id, err := s.state.AddLesson(chi.URLParam(r, "bookID"), chi.URLParam(r, "chapterID"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleCommunity(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	books := make([]bookSummary, 0)
	for _, b := range s.state.Books() {
		if !b.IsPublic {
			continue
		}
		if q != "" && !matchesQuery(b, q) {
			continue
		}
		books = append(books, s.summarize(b))
	}
	writeJSON(w, http.StatusOK, map[string]any{"books": books})
}

func matchesQuery(b store.Book, q string) bool {
	return strings.Contains(strings.ToLower(b.Title), q) ||
		strings.Contains(strings.ToLower(b.Description), q) ||
		strings.Contains(strings.ToLower(b.OwnerDisplayName), q) ||
		strings.Contains(strings.ToLower(b.Owner), q)
}

func (s *Server) handleCloneBook(w http.ResponseWriter, r *http.Request) {
	p, ok := s.currentProfile(w)
	if !ok {
		return
	}
	id, err := s.state.CloneBook(chi.URLParam(r, "bookID"), p.Username, p.DisplayName)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleLikeBook(w http.ResponseWriter, r *http.Request) {
	liked, err := s.state.ToggleLike(chi.URLParam(r, "bookID"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}
