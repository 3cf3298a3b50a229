package http

import (
	"net/http"

	"finanzas/internal/core"
	"finanzas/internal/log"
	"finanzas/internal/services"
)

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	writeList(w, s.deps.View.Accounts(), s.deps.View.Errors())
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var a core.Account
	if err := decodeJSON(w, r, &a); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	a.Name = sanitizeInput(a.Name)
	created, err := s.deps.Accounts.CreateAccount(r.Context(), a)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var edit services.AccountEdit
	if err := decodeJSON(w, r, &edit); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	if edit.Name != nil {
		name := sanitizeInput(*edit.Name)
		edit.Name = &name
	}
	updated, err := s.deps.Accounts.UpdateAccount(r.Context(), r.PathValue("id"), edit)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeactivateAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Accounts.DeactivateAccount(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, log.OpDeactivate, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

const maxListLimit = 1000

// handleListTransactions lists newest first, optionally for one account,
// capped by ?limit (default 100, at most maxListLimit).
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	account := queryParam(r, "account")
	limit := min(queryInt(r, "limit", 100), maxListLimit)

	out := make([]core.Transaction, 0, limit)
	for _, tx := range s.deps.View.Transactions() {
		if account != "" && tx.Account != account {
			continue
		}
		out = append(out, tx)
		if len(out) == limit {
			break
		}
	}
	writeList(w, out, s.deps.View.Errors())
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.deps.Ledger.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, "get", err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handlePostTransaction(w http.ResponseWriter, r *http.Request) {
	var tx core.Transaction
	if err := decodeJSON(w, r, &tx); err != nil {
		writeError(w, r, log.OpPost, err)
		return
	}
	tx.Detail = sanitizeInput(tx.Detail)
	tx.Account = sanitizeInput(tx.Account)
	posted, err := s.deps.Ledger.PostTransaction(r.Context(), tx)
	if err != nil {
		writeError(w, r, log.OpPost, err)
		return
	}
	writeJSON(w, http.StatusCreated, posted)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var edit services.TransactionEdit
	if err := decodeJSON(w, r, &edit); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	updated, err := s.deps.Ledger.UpdateTransaction(r.Context(), r.PathValue("id"), edit)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Ledger.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
