package catalog

import (
	"errors"
	"reflect"
	"testing"

	"finanzas/internal/core"
)

func TestUnits(t *testing.T) {
	want := []core.Unit{core.UnitHogar, core.UnitProfesional, core.UnitBrasil}
	if got := Units(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Units() = %v", got)
	}
}

func TestLookups(t *testing.T) {
	cats := CategoriesFor(core.UnitProfesional)
	want := []string{"Infraestructura y Difusión", "Cargas Profesionales", "Espacio Físico"}
	if !reflect.DeepEqual(cats, want) {
		t.Fatalf("CategoriesFor(PROFESIONAL) = %v", cats)
	}

	concepts := ConceptsFor(core.UnitHogar, "Auto")
	if !reflect.DeepEqual(concepts, []string{"Seguros", "Transporte"}) {
		t.Fatalf("ConceptsFor(HOGAR, Auto) = %v", concepts)
	}

	details := DetailSuggestionsFor(core.UnitBrasil, "Gestión de Inmueble", "Operativo")
	if !reflect.DeepEqual(details, []string{"Condominio", "Mantenimiento", "CELESC"}) {
		t.Fatalf("DetailSuggestionsFor = %v", details)
	}
}

func TestLookupsFailSoftly(t *testing.T) {
	cases := map[string][]string{
		"unknown unit":     CategoriesFor("NONEXISTENT"),
		"unknown category": ConceptsFor(core.UnitHogar, "Nope"),
		"wrong unit":       ConceptsFor(core.UnitBrasil, "Auto"),
		"unknown concept":  DetailSuggestionsFor(core.UnitHogar, "Auto", "Nope"),
	}
	for name, got := range cases {
		if got == nil || len(got) != 0 {
			t.Fatalf("%s: expected empty non-nil list, got %#v", name, got)
		}
	}
}

func TestDetailSuggestionsAreCopies(t *testing.T) {
	d := DetailSuggestionsFor(core.UnitHogar, "Auto", "Transporte")
	d[0] = "changed"
	if DetailSuggestionsFor(core.UnitHogar, "Auto", "Transporte")[0] != "Nafta" {
		t.Fatalf("catalog was mutated through a lookup result")
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(core.UnitHogar, "Vivienda y Vida Diaria", "Mascotas"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := Validate(core.UnitProfesional, "Vivienda y Vida Diaria", "Mascotas")
	if !errors.Is(err, core.ErrInvalidClassification) {
		t.Fatalf("Validate() = %v, want ErrInvalidClassification", err)
	}
}

func TestHasCategoryAndConcept(t *testing.T) {
	if !HasCategory(core.UnitGlobal, "Auto") || !HasCategory("", "Gestión de Inmueble") {
		t.Fatalf("expected global category lookup to succeed")
	}
	if HasCategory(core.UnitBrasil, "Auto") {
		t.Fatalf("Auto is not a BRASIL category")
	}
	if !HasConcept(core.UnitProfesional, "Digital") || HasConcept(core.UnitHogar, "Digital") {
		t.Fatalf("concept scope lookup wrong")
	}
}

func TestTreeIsACopy(t *testing.T) {
	tr := Tree()
	tr[0].Categories[0].Name = "changed"
	if CategoriesFor(core.UnitHogar)[0] != "Vivienda y Vida Diaria" {
		t.Fatalf("Tree() exposed internal state")
	}
}
