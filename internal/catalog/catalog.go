// Package catalog is the static Unit > Category > Concept > Detail
// classification used to tag transactions, services and budgets.
//
// Lookups never fail: an unknown key yields an empty list so callers can
// always render a (possibly empty) set of options.
package catalog

import (
	"fmt"

	"finanzas/internal/core"
)

type (
	Unit struct {
		Name       core.Unit  `json:"name"`
		Categories []Category `json:"categories"`
	}

	Category struct {
		Name     string    `json:"name"`
		Concepts []Concept `json:"concepts"`
	}

	Concept struct {
		Name              string   `json:"name"`
		DetailSuggestions []string `json:"detailSuggestions"`
	}
)

// Units lists the unit names in catalog order.
func Units() []core.Unit {
	out := make([]core.Unit, 0, len(tree))
	for _, u := range tree {
		out = append(out, u.Name)
	}
	return out
}

// CategoriesFor lists category names under unit.
func CategoriesFor(unit core.Unit) []string {
	u := findUnit(unit)
	if u == nil {
		return []string{}
	}
	out := make([]string, 0, len(u.Categories))
	for _, c := range u.Categories {
		out = append(out, c.Name)
	}
	return out
}

// ConceptsFor lists concept names under unit/category.
func ConceptsFor(unit core.Unit, category string) []string {
	c := findCategory(unit, category)
	if c == nil {
		return []string{}
	}
	out := make([]string, 0, len(c.Concepts))
	for _, k := range c.Concepts {
		out = append(out, k.Name)
	}
	return out
}

// DetailSuggestionsFor lists the non-binding detail suggestions of a concept.
func DetailSuggestionsFor(unit core.Unit, category, concept string) []string {
	k := findConcept(unit, category, concept)
	if k == nil {
		return []string{}
	}
	return append([]string{}, k.DetailSuggestions...)
}

// Validate reports whether the triple resolves to a concept in the tree.
func Validate(unit core.Unit, category, concept string) error {
	if findConcept(unit, category, concept) == nil {
		return fmt.Errorf("%w: %s / %s / %s", core.ErrInvalidClassification, unit, category, concept)
	}
	return nil
}

// HasCategory reports whether a category with that name exists. An empty
// or GLOBAL unit searches every unit.
func HasCategory(unit core.Unit, category string) bool {
	for _, u := range scope(unit) {
		for _, c := range u.Categories {
			if c.Name == category {
				return true
			}
		}
	}
	return false
}

// HasConcept is HasCategory for concept names.
func HasConcept(unit core.Unit, concept string) bool {
	for _, u := range scope(unit) {
		for _, c := range u.Categories {
			for _, k := range c.Concepts {
				if k.Name == concept {
					return true
				}
			}
		}
	}
	return false
}

// Tree returns a deep copy of the whole classification.
func Tree() []Unit {
	out := make([]Unit, len(tree))
	for i, u := range tree {
		cats := make([]Category, len(u.Categories))
		for j, c := range u.Categories {
			concepts := make([]Concept, len(c.Concepts))
			for k, cc := range c.Concepts {
				concepts[k] = Concept{Name: cc.Name, DetailSuggestions: append([]string{}, cc.DetailSuggestions...)}
			}
			cats[j] = Category{Name: c.Name, Concepts: concepts}
		}
		out[i] = Unit{Name: u.Name, Categories: cats}
	}
	return out
}

func scope(unit core.Unit) []Unit {
	if unit == "" || unit == core.UnitGlobal {
		return tree
	}
	if u := findUnit(unit); u != nil {
		return []Unit{*u}
	}
	return nil
}

func findUnit(unit core.Unit) *Unit {
	for i := range tree {
		if tree[i].Name == unit {
			return &tree[i]
		}
	}
	return nil
}

func findCategory(unit core.Unit, category string) *Category {
	u := findUnit(unit)
	if u == nil {
		return nil
	}
	for i := range u.Categories {
		if u.Categories[i].Name == category {
			return &u.Categories[i]
		}
	}
	return nil
}

func findConcept(unit core.Unit, category, concept string) *Concept {
	c := findCategory(unit, category)
	if c == nil {
		return nil
	}
	for i := range c.Concepts {
		if c.Concepts[i].Name == concept {
			return &c.Concepts[i]
		}
	}
	return nil
}
