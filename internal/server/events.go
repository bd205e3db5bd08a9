package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/thelogbook/logbook/internal/events"
)

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	from := time.Now()
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err == nil {
			from = parsed
		}
	}
	list, err := s.deps.Events.Upcoming(r.Context(), sessionOrg(r), from)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.Success(w, http.StatusOK, list)
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Location    string    `json:"location"`
		StartsAt    time.Time `json:"starts_at"`
		EndsAt      time.Time `json:"ends_at"`
	}
	if err := decode(r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	e, err := s.deps.Events.Create(r.Context(), sessionOrg(r), req.Title, req.Description, req.Location, req.StartsAt, req.EndsAt)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.Success(w, http.StatusCreated, e)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	e, err := s.deps.Events.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.Error(w, r, err)
		return
	}
	if err := orgGuard(r, e.OrgID, "event not found"); err != nil {
		s.Error(w, r, err)
		return
	}
	s.Success(w, http.StatusOK, e)
}

// eventInOrg loads an event and hides it when it belongs to another
// organization.
func (s *Server) eventInOrg(r *http.Request, id string) error {
	e, err := s.deps.Events.Get(r.Context(), id)
	if err != nil {
		return err
	}
	return orgGuard(r, e.OrgID, "event not found")
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.eventInOrg(r, chi.URLParam(r, "id")); err != nil {
		s.Error(w, r, err)
		return
	}
	if err := s.deps.Events.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.Error(w, r, err)
		return
	}
	s.Success(w, http.StatusOK, nil)
}

func (s *Server) handleRSVP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decode(r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	if err := s.eventInOrg(r, chi.URLParam(r, "id")); err != nil {
		s.Error(w, r, err)
		return
	}
	rsvp, err := s.deps.Events.Respond(r.Context(), chi.URLParam(r, "id"), sessionMember(r), events.RSVPStatus(req.Status))
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.Success(w, http.StatusOK, rsvp)
}

func (s *Server) handleListRSVPs(w http.ResponseWriter, r *http.Request) {
	if err := s.eventInOrg(r, chi.URLParam(r, "id")); err != nil {
		s.Error(w, r, err)
		return
	}
	list, err := s.deps.Events.Responses(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.Success(w, http.StatusOK, list)
}
