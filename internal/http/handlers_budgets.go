package http

import (
	"net/http"

	"finanzas/internal/core"
	"finanzas/internal/dashboard"
	"finanzas/internal/log"
	"finanzas/internal/services"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	writeList(w, dashboard.EvaluateBudgets(s.deps.View.Budgets()), s.deps.View.Errors())
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var b core.Budget
	if err := decodeJSON(w, r, &b); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	created, err := s.deps.Budgets.CreateBudget(r.Context(), b)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, dashboard.BudgetView{Budget: created, Evaluation: created.Evaluate()})
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	var edit services.BudgetEdit
	if err := decodeJSON(w, r, &edit); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	updated, err := s.deps.Budgets.UpdateBudget(r.Context(), r.PathValue("id"), edit)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard.BudgetView{Budget: updated, Evaluation: updated.Evaluate()})
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Budgets.DeleteBudget(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dashboard.Build(s.deps.View.Input(), s.now(), s.deps.Upcoming))
}
