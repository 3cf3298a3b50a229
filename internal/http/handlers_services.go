package http

import (
	"fmt"
	"net/http"

	"finanzas/internal/core"
	"finanzas/internal/dashboard"
	"finanzas/internal/log"
	"finanzas/internal/services"
)

const (
	viewAll      = "all"
	viewUpcoming = "upcoming"
)

type amountRequest struct {
	Amount core.Money `json:"amount"`
}

// handleListServices serves ?view=all (unpaid by due day, paid last) or
// ?view=upcoming (unpaid deadlines for the current month).
func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	svcs := s.deps.View.Services()
	errs := s.deps.View.Errors()

	switch view := queryParam(r, "view"); view {
	case "", viewAll:
		writeList(w, dashboard.ListingOrder(svcs), errs)
	case viewUpcoming:
		n := queryInt(r, "limit", s.deps.Upcoming)
		writeList(w, dashboard.Deadlines(dashboard.UpcomingDeadlines(svcs, n), s.now()), errs)
	default:
		writeError(w, r, "list", fmt.Errorf("%w: view %q", core.ErrInvalidEnum, view))
	}
}

func (s *Server) handleCreateService(w http.ResponseWriter, r *http.Request) {
	var svc core.Service
	if err := decodeJSON(w, r, &svc); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	svc.Name = sanitizeInput(svc.Name)
	svc.Description = sanitizeInput(svc.Description)
	created, err := s.deps.Registry.CreateService(r.Context(), svc)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateService(w http.ResponseWriter, r *http.Request) {
	var edit services.ServiceEdit
	if err := decodeJSON(w, r, &edit); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	updated, err := s.deps.Registry.UpdateService(r.Context(), r.PathValue("id"), edit)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleAdvanceService(w http.ResponseWriter, r *http.Request) {
	svc, err := s.deps.Registry.AdvanceStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, log.OpAdvance, err)
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

func (s *Server) handleUpdateServiceAmount(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	svc, err := s.deps.Registry.UpdateAmount(r.Context(), r.PathValue("id"), req.Amount)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

func (s *Server) handleDeactivateService(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Registry.DeactivateService(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, log.OpDeactivate, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteService(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Registry.DeleteService(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
