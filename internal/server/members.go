package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/thelogbook/logbook/internal/members"
)

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Members.Search(r.Context(), sessionOrg(r), r.URL.Query().Get("q"))
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.Success(w, http.StatusOK, list)
}

func (s *Server) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := decode(r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	m, err := s.deps.Members.Create(r.Context(), sessionOrg(r), req.Name, req.Email, req.Role)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.Success(w, http.StatusCreated, m)
}

func (s *Server) handleGetMember(w http.ResponseWriter, r *http.Request) {
	m, err := s.deps.Members.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.Error(w, r, err)
		return
	}
	if err := orgGuard(r, m.OrgID, "member not found"); err != nil {
		s.Error(w, r, err)
		return
	}
	s.Success(w, http.StatusOK, m)
}

// memberInOrg loads a member and hides it when it belongs to another
// organization.
func (s *Server) memberInOrg(r *http.Request, id string) error {
	m, err := s.deps.Members.Get(r.Context(), id)
	if err != nil {
		return err
	}
	return orgGuard(r, m.OrgID, "member not found")
}

func (s *Server) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string `json:"name"`
		Role   string `json:"role"`
		Status string `json:"status"`
	}
	if err := decode(r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	if err := s.memberInOrg(r, chi.URLParam(r, "id")); err != nil {
		s.Error(w, r, err)
		return
	}
	m, err := s.deps.Members.Update(r.Context(), chi.URLParam(r, "id"), req.Name, req.Role, members.Status(req.Status))
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.Success(w, http.StatusOK, m)
}

func (s *Server) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	if err := s.memberInOrg(r, chi.URLParam(r, "id")); err != nil {
		s.Error(w, r, err)
		return
	}
	if err := s.deps.Members.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.Error(w, r, err)
		return
	}
	s.Success(w, http.StatusOK, nil)
}
