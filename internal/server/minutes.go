package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListMinutes(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Minutes.List(r.Context(), sessionOrg(r))
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.Success(w, http.StatusOK, list)
}

func (s *Server) handleCreateMinutes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string    `json:"title"`
		Body        string    `json:"body"`
		MeetingDate time.Time `json:"meeting_date"`
	}
	if err := decode(r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	m, err := s.deps.Minutes.Create(r.Context(), sessionOrg(r), req.Title, req.Body, req.MeetingDate)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.Success(w, http.StatusCreated, m)
}

type minutesResponse struct {
	Minutes any    `json:"minutes"`
	HTML    string `json:"html,omitempty"`
}

// minutesInOrg loads minutes and hides them when they belong to another
// organization.
func (s *Server) minutesInOrg(r *http.Request, id string) error {
	m, err := s.deps.Minutes.Get(r.Context(), id)
	if err != nil {
		return err
	}
	return orgGuard(r, m.OrgID, "minutes not found")
}

func (s *Server) handleGetMinutes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.minutesInOrg(r, id); err != nil {
		s.Error(w, r, err)
		return
	}
	if r.URL.Query().Get("rendered") == "true" {
		m, html, err := s.deps.Minutes.GetRendered(r.Context(), id)
		if err != nil {
			s.Error(w, r, err)
			return
		}
		s.Success(w, http.StatusOK, minutesResponse{Minutes: m, HTML: html})
		return
	}
	m, err := s.deps.Minutes.Get(r.Context(), id)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.Success(w, http.StatusOK, m)
}

func (s *Server) handleUpdateMinutes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := decode(r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	if err := s.minutesInOrg(r, chi.URLParam(r, "id")); err != nil {
		s.Error(w, r, err)
		return
	}
	m, err := s.deps.Minutes.UpdateBody(r.Context(), chi.URLParam(r, "id"), req.Title, req.Body)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.Success(w, http.StatusOK, m)
}

func (s *Server) handleApproveMinutes(w http.ResponseWriter, r *http.Request) {
	if err := s.minutesInOrg(r, chi.URLParam(r, "id")); err != nil {
		s.Error(w, r, err)
		return
	}
	m, err := s.deps.Minutes.Approve(r.Context(), chi.URLParam(r, "id"), sessionMember(r))
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.Success(w, http.StatusOK, m)
}
