package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/thelogbook/logbook/internal/foundation/errors"
	"github.com/thelogbook/logbook/internal/modules"
	"github.com/thelogbook/logbook/internal/observability"
)

func (s *Server) handleListModules(w http.ResponseWriter, r *http.Request) {
	s.Success(w, http.StatusOK, s.deps.Registry.Descriptors())
}

func (s *Server) handleToggleModule(w http.ResponseWriter, r *http.Request) {
	kind, err := modules.Parse(chi.URLParam(r, "kind"))
	if err != nil {
		s.Error(w, r, errors.ValidationError("unknown module").WithContext("module", chi.URLParam(r, "kind")).Build())
		return
	}
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := decode(r, &req); err != nil {
		s.Error(w, r, err)
		return
	}

	orgID := sessionOrg(r)
	if err := s.deps.Store.SetOrgModule(r.Context(), orgID, string(kind), req.Enabled); err != nil {
		s.Error(w, r, errors.WrapError(err, errors.CategoryDatabase, "persist module toggle").Build())
		return
	}
	s.deps.Registry.SetEnabled(kind, req.Enabled)
	s.Success(w, http.StatusOK, s.deps.Registry.Descriptors())
}

func (s *Server) handleListRoles(w http.ResponseWriter, r *http.Request) {
	matrix := modules.BuildMatrix(s.deps.Registry)
	out := make(map[string][]string, len(matrix))
	for role := range matrix {
		out[role] = matrix.Grants(role)
	}
	s.Success(w, http.StatusOK, out)
}

// syncRegistry loads an organization's persisted toggles into the live
// registry. Called after onboarding and config reloads.
func (s *Server) syncRegistry(ctx context.Context, orgID string) {
	toggles, err := s.deps.Store.OrgModules(ctx, orgID)
	if err != nil {
		observability.WarnContext(ctx, "Failed to load module toggles")
		return
	}
	for name, on := range toggles {
		if kind, err := modules.Parse(name); err == nil {
			s.deps.Registry.SetEnabled(kind, on)
		}
	}
}
