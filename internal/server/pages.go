package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bookself/bookself/internal/ai"
	"github.com/bookself/bookself/internal/quiz"
	"github.com/bookself/bookself/internal/store"
)

func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	page, ok := s.state.GetPage(chi.URLParam(r, "pageID"))
	if !ok {
		writeError(w, http.StatusNotFound, "page not found")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

type savePageRequest struct {
	Title         string   `json:"title" validate:"required,max=200"`
	Content       string   `json:"content"`
	ChapterID     string   `json:"chapterId"`
	Prerequisites []string `json:"prerequisites"`
}

// handleSavePage records a page. Saving always resets retention to 100
// and understanding to WellUnderstood; there is no partial save.
func (s *Server) handleSavePage(w http.ResponseWriter, r *http.Request) {
	var req savePageRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	page := store.KnowledgePage{
		ID:            chi.URLParam(r, "pageID"),
		Title:         req.Title,
		Content:       req.Content,
		ChapterID:     req.ChapterID,
		Prerequisites: req.Prerequisites,
	}
	if err := s.state.SavePage(page, time.Now()); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	saved, _ := s.state.GetPage(page.ID)
	writeJSON(w, http.StatusOK, saved)
}

type contentRequest struct {
	Content string `json:"content" validate:"required"`
}

// handleOptimize restructures draft content for retention. The draft is
// never stored; the client decides whether to adopt the result.
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	pageID := chi.URLParam(r, "pageID")
	if !s.inflight.acquire("optimize:" + pageID) {
		writeError(w, http.StatusConflict, "optimization already in progress")
		return
	}
	defer s.inflight.release("optimize:" + pageID)

	out, err := s.client.OptimizeContent(r.Context(), req.Content)
	if err != nil {
		s.log.Warn("optimize failed", zap.String("page", pageID), zap.Error(err))
		writeError(w, http.StatusBadGateway, "optimization failed")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleFeedback analyzes a reflection against the page's topic. A
// collaborator failure degrades to neutral feedback rather than an
// error: the save path must never be blocked by analysis.
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	pageID := chi.URLParam(r, "pageID")
	page, ok := s.state.GetPage(pageID)
	if !ok {
		writeError(w, http.StatusNotFound, "page not found")
		return
	}
	if !s.inflight.acquire("feedback:" + pageID) {
		writeError(w, http.StatusConflict, "analysis already in progress")
		return
	}
	defer s.inflight.release("feedback:" + pageID)

	fb, err := s.client.AnalyzeFeedback(r.Context(), page.Title, req.Content)
	if err != nil {
		s.log.Warn("feedback analysis failed", zap.String("page", pageID), zap.Error(err))
		fb = ai.NeutralFeedback()
	}
	s.state.AttachFeedback(pageID, fb)
	writeJSON(w, http.StatusOK, fb)
}

type startQuizRequest struct {
	Content string `json:"content"`
}

// handleStartQuiz generates a quiz over a page. Content may come from
// the request (an unsaved draft) or fall back to the stored page.
func (s *Server) handleStartQuiz(w http.ResponseWriter, r *http.Request) {
	var req startQuizRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	page, ok := s.state.GetPage(chi.URLParam(r, "pageID"))
	if !ok {
		writeError(w, http.StatusNotFound, "page not found")
		return
	}
	content := req.Content
	if content == "" {
		content = page.Content
	}

	err := s.quiz.Start(r.Context(), page.Title, content)
	switch {
	case errors.Is(err, quiz.ErrBusy), errors.Is(err, quiz.ErrInProgress):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, quiz.ErrEmptyContent):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusBadGateway, "quiz generation failed")
		return
	}
	writeJSON(w, http.StatusOK, s.quiz.State())
}

func (s *Server) handleQuizState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.quiz.State())
}

type quizAnswerRequest struct {
	Option *int `json:"option" validate:"required"`
}

func (s *Server) handleQuizAnswer(w http.ResponseWriter, r *http.Request) {
	var req quizAnswerRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	res, err := s.quiz.Answer(*req.Option)
	if err != nil {
		if errors.Is(err, quiz.ErrNotInProgress) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleQuizCancel(w http.ResponseWriter, r *http.Request) {
	s.quiz.Cancel()
	writeJSON(w, http.StatusOK, s.quiz.State())
}
