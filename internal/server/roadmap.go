package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bookself/bookself/internal/engine"
	"github.com/bookself/bookself/internal/roadmap"
	"github.com/bookself/bookself/internal/store"
)

func (s *Server) handleRoadmapView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.wizard.View())
}

func (s *Server) handleRoadmapHints(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"hints":     s.hints.Hints(),
		"analyzing": s.hints.Analyzing(),
	})
}

type roadmapSetupRequest struct {
	Subject string `json:"subject" validate:"required,max=200"`
	Level   string `json:"level" validate:"required,oneof=beginner intermediate advanced"`
	Goal    string `json:"goal" validate:"max=1000"`
}

// handleRoadmapSetup records the wizard inputs and kicks the debounced
// prerequisite hint fetch for the chosen subject. The goal may still be
// empty at this point: hints only need a subject and level, and
// Generate re-checks the full setup before producing anything.
func (s *Server) handleRoadmapSetup(w http.ResponseWriter, r *http.Request) {
	var req roadmapSetupRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := s.wizard.SetSetup(req.Subject, req.Level, req.Goal); err != nil {
		s.wizardError(w, err)
		return
	}
	s.hints.Update(req.Subject, req.Level)
	writeJSON(w, http.StatusOK, s.wizard.View())
}

func (s *Server) handleRoadmapGenerate(w http.ResponseWriter, r *http.Request) {
	if err := s.wizard.Generate(r.Context(), s.state.PageTitles()); err != nil {
		s.wizardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.wizard.View())
}

func (s *Server) handleRoadmapEdit(w http.ResponseWriter, r *http.Request) {
	s.wizardTransition(w, s.wizard.StartEditing())
}

func (s *Server) handleRoadmapPreview(w http.ResponseWriter, r *http.Request) {
	s.wizardTransition(w, s.wizard.FinishEditing())
}

func (s *Server) handleRoadmapSave(w http.ResponseWriter, r *http.Request) {
	s.wizardTransition(w, s.wizard.Save())
}

func (s *Server) handleRoadmapRefine(w http.ResponseWriter, r *http.Request) {
	s.wizardTransition(w, s.wizard.Refine())
}

func (s *Server) handleRoadmapReset(w http.ResponseWriter, r *http.Request) {
	s.wizardTransition(w, s.wizard.Reset())
}

func (s *Server) wizardTransition(w http.ResponseWriter, err error) {
	if err != nil {
		s.wizardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.wizard.View())
}

func (s *Server) wizardError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, roadmap.ErrIncompleteSetup), errors.Is(err, roadmap.ErrInvalidItem):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, roadmap.ErrBusy), errors.Is(err, roadmap.ErrWrongState):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusBadGateway, "roadmap generation failed")
	}
}

func (s *Server) handleRoadmapAddPhase(w http.ResponseWriter, r *http.Request) {
	item, err := s.wizard.AddPhase()
	if err != nil {
		s.wizardError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

type updateItemRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=1000"`
}

func (s *Server) handleRoadmapUpdateItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item index")
		return
	}
	var req updateItemRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := s.wizard.UpdateItem(index, req.Title, req.Description); err != nil {
		s.wizardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.wizard.View())
}

func (s *Server) handleRoadmapRemoveItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item index")
		return
	}
	if err := s.wizard.RemoveItem(index); err != nil {
		s.wizardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.wizard.View())
}

// roadmapView is a stored roadmap plus its derived completion.
type roadmapView struct {
	store.Roadmap
	Progress float64 `json:"progress"`
}

// handleReview reports retention debt, mastered pages, and per-roadmap
// progress, all derived from the current page snapshot.
func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	pages := s.state.Pages()
	debt, mastered := engine.ReviewBuckets(pages)

	roadmaps := make([]roadmapView, 0)
	for _, rm := range s.state.Roadmaps() {
		roadmaps = append(roadmaps, roadmapView{
			Roadmap:  rm,
			Progress: engine.RoadmapProgress(rm, pages),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"debt":     debt,
		"mastered": mastered,
		"roadmaps": roadmaps,
	})
}

type adviceRequest struct {
	Goal string `json:"goal" validate:"required,max=1000"`
}

func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	var req adviceRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if !s.inflight.acquire("advice") {
		writeError(w, http.StatusConflict, "advice request already in progress")
		return
	}
	defer s.inflight.release("advice")

	advice, err := s.client.GetLearningAdvice(r.Context(), s.state.PageTitles(), req.Goal)
	if err != nil {
		writeError(w, http.StatusBadGateway, "advice request failed")
		return
	}
	writeJSON(w, http.StatusOK, advice)
}
