package http

import (
	"fmt"
	"net/http"

	"finanzas/internal/catalog"
	"finanzas/internal/core"
)

// Selection levels accepted by POST /api/catalog/selection.
const (
	levelUnit     = "unit"
	levelCategory = "category"
	levelConcept  = "concept"
	levelDetail   = "detail"
)

// selectionRequest changes one level of the current selection. An empty
// level returns the catalog's default selection.
type selectionRequest struct {
	Selection catalog.Selection `json:"selection"`
	Level     string            `json:"level"`
	Value     string            `json:"value"`
}

func (s *Server) handleCatalogTree(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.Tree())
}

func (s *Server) handleUnits(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.Units())
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.CategoriesFor(core.Unit(queryParam(r, "unit"))))
}

func (s *Server) handleConcepts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.ConceptsFor(core.Unit(queryParam(r, "unit")), queryParam(r, "category")))
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.DetailSuggestionsFor(
		core.Unit(queryParam(r, "unit")), queryParam(r, "category"), queryParam(r, "concept")))
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "select", err)
		return
	}
	value := sanitizeInput(req.Value)

	var next catalog.Selection
	switch req.Level {
	case "":
		next = catalog.DefaultSelection()
	case levelUnit:
		next = req.Selection.WithUnit(core.Unit(value))
	case levelCategory:
		next = req.Selection.WithCategory(value)
	case levelConcept:
		next = req.Selection.WithConcept(value)
	case levelDetail:
		next = req.Selection.WithDetail(value)
	default:
		writeError(w, r, "select", fmt.Errorf("%w: selection level %q", core.ErrInvalidEnum, req.Level))
		return
	}
	writeJSON(w, http.StatusOK, struct {
		catalog.Selection
		Valid bool `json:"valid"`
	}{next, next.Valid()})
}
