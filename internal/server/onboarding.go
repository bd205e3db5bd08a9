package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleStartOnboarding(w http.ResponseWriter, r *http.Request) {
	sess, err := s.deps.Onboarding.Start(r.Context())
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.Success(w, http.StatusCreated, sess)
}

func (s *Server) handleGetOnboarding(w http.ResponseWriter, r *http.Request) {
	sess, err := s.deps.Onboarding.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.Success(w, http.StatusOK, sess)
}

func (s *Server) handleOnboardingIdentity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	if err := decode(r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	sess, err := s.deps.Onboarding.SubmitIdentity(r.Context(), chi.URLParam(r, "id"), req.Name, req.Type)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.Success(w, http.StatusOK, sess)
}

func (s *Server) handleOnboardingModules(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Modules []string `json:"modules"`
	}
	if err := decode(r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	sess, err := s.deps.Onboarding.SubmitModules(r.Context(), chi.URLParam(r, "id"), req.Modules)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.Success(w, http.StatusOK, sess)
}

func (s *Server) handleOnboardingIntegrations(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Settings map[string]string `json:"settings"`
	}
	if err := decode(r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	sess, err := s.deps.Onboarding.SubmitIntegrations(r.Context(), chi.URLParam(r, "id"), req.Settings)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.Success(w, http.StatusOK, sess)
}

func (s *Server) handleOnboardingAdmin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := decode(r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	sess, err := s.deps.Onboarding.SubmitAdmin(r.Context(), chi.URLParam(r, "id"), req.Name, req.Email)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.Success(w, http.StatusOK, sess)
}

func (s *Server) handleOnboardingComplete(w http.ResponseWriter, r *http.Request) {
	org, err := s.deps.Onboarding.Complete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.Error(w, r, err)
		return
	}
	// Completing onboarding activates the chosen modules immediately.
	s.syncRegistry(r.Context(), org.ID)
	s.Success(w, http.StatusOK, org)
}
