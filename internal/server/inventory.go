package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/thelogbook/logbook/internal/inventory"
)

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Inventory.List(r.Context(), sessionOrg(r))
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.Success(w, http.StatusOK, list)
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Category string `json:"category"`
		Location string `json:"location"`
		Quantity int    `json:"quantity"`
	}
	if err := decode(r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	item, err := s.deps.Inventory.Create(r.Context(), sessionOrg(r), sessionMember(r), req.Name, req.Category, req.Location, req.Quantity)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.deps.Recorder.IncAuditAppend("inventory_item")
	s.Success(w, http.StatusCreated, item)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.deps.Inventory.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.Error(w, r, err)
		return
	}
	if err := orgGuard(r, item.OrgID, "inventory item not found"); err != nil {
		s.Error(w, r, err)
		return
	}
	s.Success(w, http.StatusOK, item)
}

// itemInOrg loads an item and hides it when it belongs to another
// organization.
func (s *Server) itemInOrg(r *http.Request, id string) error {
	item, err := s.deps.Inventory.Get(r.Context(), id)
	if err != nil {
		return err
	}
	return orgGuard(r, item.OrgID, "inventory item not found")
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name"`
		Category  string `json:"category"`
		Location  string `json:"location"`
		Quantity  *int   `json:"quantity"`
		Condition string `json:"condition"`
	}
	if err := decode(r, &req); err != nil {
		s.Error(w, r, err)
		return
	}
	if err := s.itemInOrg(r, chi.URLParam(r, "id")); err != nil {
		s.Error(w, r, err)
		return
	}
	item, err := s.deps.Inventory.Update(r.Context(), chi.URLParam(r, "id"), sessionMember(r),
		req.Name, req.Category, req.Location, req.Quantity, inventory.Condition(req.Condition))
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.deps.Recorder.IncAuditAppend("inventory_item")
	s.Success(w, http.StatusOK, item)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.itemInOrg(r, chi.URLParam(r, "id")); err != nil {
		s.Error(w, r, err)
		return
	}
	if err := s.deps.Inventory.Delete(r.Context(), chi.URLParam(r, "id"), sessionMember(r)); err != nil {
		s.Error(w, r, err)
		return
	}
	s.deps.Recorder.IncAuditAppend("inventory_item")
	s.Success(w, http.StatusOK, nil)
}

func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := s.deps.Store.ListAudit(r.Context(), sessionOrg(r), limit)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.Success(w, http.StatusOK, entries)
}
