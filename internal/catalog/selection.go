package catalog

import "finanzas/internal/core"

// Selection is the classification currently chosen on a transaction or
// service form. The With* methods cascade: changing a level resets every
// level below it to the first valid option, so a selection built through
// them always resolves in the catalog.
type Selection struct {
	Unit     core.Unit `json:"unit"`
	Category string    `json:"category"`
	Concept  string    `json:"concept"`
	Detail   string    `json:"detail"`
}

// DefaultSelection is the first path of the catalog.
func DefaultSelection() Selection {
	return Selection{}.WithUnit(tree[0].Name)
}

func (s Selection) WithUnit(unit core.Unit) Selection {
	s.Unit = unit
	return s.WithCategory(first(CategoriesFor(unit)))
}

func (s Selection) WithCategory(category string) Selection {
	s.Category = category
	return s.WithConcept(first(ConceptsFor(s.Unit, category)))
}

func (s Selection) WithConcept(concept string) Selection {
	s.Concept = concept
	s.Detail = first(DetailSuggestionsFor(s.Unit, s.Category, concept))
	return s
}

// WithDetail sets the free-text detail without touching other levels.
func (s Selection) WithDetail(detail string) Selection {
	s.Detail = detail
	return s
}

// Valid reports whether unit, category and concept resolve.
func (s Selection) Valid() bool {
	return Validate(s.Unit, s.Category, s.Concept) == nil
}

func first(xs []string) string {
	if len(xs) == 0 {
		return ""
	}
	return xs[0]
}
