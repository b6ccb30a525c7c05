package server

import (
	"net/http"

	"github.com/bookself/bookself/internal/session"
)

type signInRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"displayName"`
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	profile, err := s.gate.SignIn(req.Email, req.DisplayName)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"profile":  profile,
		"redirect": s.gate.Resolve(session.TargetDashboard),
	})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	s.gate.SignOut()
	writeJSON(w, http.StatusOK, map[string]string{
		"redirect": s.gate.Resolve(session.TargetLanding),
	})
}

// handleUsernameCheck validates a candidate username immediately. The
// interactive debounce lives client-side in session.Checker; over HTTP
// each request is already a settled keystroke.
func (s *Server) handleUsernameCheck(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("u")
	writeJSON(w, http.StatusOK, map[string]any{
		"username": session.Normalize(raw),
		"status":   session.CheckUsername(raw),
	})
}

type completeSetupRequest struct {
	Username    string `json:"username" validate:"required"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
}

func (s *Server) handleCompleteSetup(w http.ResponseWriter, r *http.Request) {
	var req completeSetupRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	profile, err := s.gate.CompleteSetup(req.Username, req.DisplayName, req.PhotoURL)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"profile":  profile,
		"redirect": s.gate.Resolve(session.TargetDashboard),
	})
}

type updateProfileRequest struct {
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio" validate:"max=500"`
	PhotoURL    string `json:"photoURL"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	profile, err := s.gate.UpdateProfile(req.DisplayName, req.Bio, req.PhotoURL)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// handleGenerateAvatar asks the collaborator for a profile image built
// from the display name. The result is returned, not stored; the client
// confirms it through a profile update.
func (s *Server) handleGenerateAvatar(w http.ResponseWriter, r *http.Request) {
	if !s.inflight.acquire("avatar") {
		writeError(w, http.StatusConflict, "avatar generation already in progress")
		return
	}
	defer s.inflight.release("avatar")

	name := "Learner"
	if p := s.state.Profile(); p != nil && p.DisplayName != "" {
		name = p.DisplayName
	}
	url, err := s.client.GenerateCoverImage(r.Context(), name, "abstract minimal avatar, soft colors")
	if err != nil {
		writeError(w, http.StatusBadGateway, "avatar generation failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"photoURL": url})
}
