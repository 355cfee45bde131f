package sync

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/RafaelPasos/PaystubGen-App/internal/docstore"
	"github.com/RafaelPasos/PaystubGen-App/internal/domain/entity"
	"github.com/RafaelPasos/PaystubGen-App/pkg/logger"
)

// SeedItem es un ítem del catálogo por defecto.
type SeedItem struct {
	Name string
	Rate decimal.Decimal
}

// SeedTeam es un equipo por defecto con su catálogo.
type SeedTeam struct {
	Name  string
	Items []SeedItem
}

// SeedCatalog es el conjunto por defecto que se aprovisiona en el primer
// arranque y que el pase de mantenimiento rellena en equipos sin ítems.
type SeedCatalog []SeedTeam

// DefaultCatalog devuelve los equipos e ítems de fábrica.
func DefaultCatalog() SeedCatalog {
	rate := func(n int64) decimal.Decimal { return decimal.NewFromInt(n) }
	return SeedCatalog{
		{Name: "Hojas", Items: []SeedItem{
			{Name: "Blanca", Rate: rate(13)},
			{Name: "Amarilla", Rate: rate(11)},
			{Name: "Manchada", Rate: rate(9)},
		}},
		{Name: "Capote", Items: []SeedItem{
			{Name: "Capote Fino", Rate: rate(15)},
			{Name: "Capote Regular", Rate: rate(12)},
		}},
		{Name: "Tripa", Items: []SeedItem{
			{Name: "Tripa Larga", Rate: rate(14)},
			{Name: "Tripa Corta", Rate: rate(10)},
		}},
	}
}

// Seeder aprovisiona los datos por defecto la primera vez que se observa la
// colección de equipos vacía. Dos clientes concurrentes podrían observar
// "vacío" a la vez y sembrar doble; se acepta como modo de fallo raro y
// tolerable en lugar de añadir un lock distribuido.
type Seeder struct {
	store   docstore.Store
	catalog SeedCatalog
	log     *logger.Logger
}

// NewSeeder construye el seeder con el catálogo indicado (nil = el de fábrica).
func NewSeeder(store docstore.Store, catalog SeedCatalog, log *logger.Logger) *Seeder {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Seeder{store: store, catalog: catalog, log: log}
}

// Run hace una lectura fuertemente consistente (servidor, no caché) de la
// colección de equipos y, solo si está vacía, confirma todos los equipos y
// catálogos en un único lote atómico. Devuelve si llegó a sembrar.
//
// Un fallo aquí no debe bloquear el arranque de las suscripciones: el
// llamador registra el error y continúa con el estado que exista.
func (s *Seeder) Run(ctx context.Context) (bool, error) {
	teams, err := s.store.GetAll(ctx, docstore.TeamsCollection, docstore.ReadServer)
	if err != nil {
		return false, fmt.Errorf("verificar colección de equipos: %w", err)
	}
	if len(teams) > 0 {
		s.log.Debug().Int("teams", len(teams)).Msg("ya hay equipos; no se siembra")
		return false, nil
	}

	batch := s.store.Batch()
	for _, st := range s.catalog {
		teamID := batch.Create(docstore.TeamsCollection, entity.Team{Name: st.Name}.DocData())
		for _, si := range st.Items {
			batch.Create(docstore.ItemsCollection(teamID), entity.ProductionItem{
				Name:    si.Name,
				PayRate: si.Rate,
				TeamID:  teamID,
			}.DocData())
		}
	}
	if err := batch.Commit(ctx); err != nil {
		return false, fmt.Errorf("sembrar datos por defecto: %w", err)
	}
	s.log.Info().Int("teams", len(s.catalog)).Msg("datos por defecto sembrados")
	return true, nil
}
