package catalog

import "finanzas/internal/core"

// tree is the fixed classification. Order matters: the first entry at each
// level is what a cascading selection falls back to.
var tree = []Unit{
	{
		Name: core.UnitHogar,
		Categories: []Category{
			{Name: "Vivienda y Vida Diaria", Concepts: []Concept{
				{"Alquiler", []string{"Balbuena Guillermo Ariel", "Sanchez Facundo"}},
				{"Impuestos", []string{"Cooperativa Horizonte", "Banco Roela"}},
				{"Servicios", []string{"EPEC", "Ecogas", "Personal"}},
				{"Abastecimiento", []string{"Carnicería", "Verdulería", "Pescadería", "Panadería", "Supermercado"}},
				{"Mascotas", []string{"Bocantino", "Veterinaria"}},
				{"Equipamiento", []string{"Electrodomésticos", "Arreglos", "Muebles"}},
			}},
			{Name: "Auto", Concepts: []Concept{
				{"Seguros", []string{"Sancor Seguros"}},
				{"Transporte", []string{"Nafta", "Peajes"}},
			}},
			{Name: "Personal", Concepts: []Concept{
				{"Social y Salidas", []string{"Comidas/Salidas", "Cine", "Teatro", "Juntada con amigos"}},
				{"Cuidado y Salud", []string{"Peluquería", "Farmacia", "Consulta médica"}},
				{"Compras personales", []string{"Ropa", "Calzado", "Tecnología"}},
				{"Viajes y Escapadas", []string{"Hoteles", "Pasajes", "Peajes de viaje", "Gastos vacaciones"}},
				{"Ahorros e Inversión", []string{"Transferencias a cuentas de inversión", "Compra de dólares", "Plazo fijo"}},
			}},
			{Name: "Pasivos", Concepts: []Concept{
				{"Cuota Préstamo", []string{"Préstamo BNA", "Préstamo ANSES", "Préstamo BBVA"}},
				{"Pago Tarjeta", []string{"Visa BNA", "Mastercard BNA", "Visa BBVA"}},
			}},
		},
	},
	{
		Name: core.UnitProfesional,
		Categories: []Category{
			{Name: "Infraestructura y Difusión", Concepts: []Concept{
				{"Digital", []string{"Hetzner", "Google Workspace", "Porkbun"}},
				{"Marketing", []string{"Red de Salud Mental Argentina", "Google Ads", "Meta"}},
			}},
			{Name: "Cargas Profesionales", Concepts: []Concept{
				{"Cargas profesionales", []string{"Monotributo", "Caja de Psicólogos", "Mala Praxis"}},
			}},
			{Name: "Espacio Físico", Concepts: []Concept{
				{"Alquiler Consultorio", []string{"(Nombre propietario/inmobiliaria)"}},
			}},
		},
	},
	{
		Name: core.UnitBrasil,
		Categories: []Category{
			{Name: "Gestión de Inmueble", Concepts: []Concept{
				{"Tributario", []string{"IPTU", "Tasas Ambientales"}},
				{"Operativo", []string{"Condominio", "Mantenimiento", "CELESC"}},
			}},
		},
	},
}
