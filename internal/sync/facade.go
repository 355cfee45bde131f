package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/RafaelPasos/PaystubGen-App/internal/docstore"
	"github.com/RafaelPasos/PaystubGen-App/internal/domain/entity"
	"github.com/RafaelPasos/PaystubGen-App/internal/domain/payweek"
	"github.com/RafaelPasos/PaystubGen-App/pkg/logger"
)

// Facade agrupa las mutaciones estructurales: altas y bajas de empleados y
// equipos, con aprovisionamiento de placeholders y borrado en cascada. Las
// escrituras van directo al almacén; el Aggregate converge por suscripción.
// Los rechazos del almacén ya viajaron por el bus de errores cuando llegan
// aquí; la fachada los envuelve y re-lanza sin tumbar la maquinaria de
// suscripciones.
type Facade struct {
	store   docstore.Store
	catalog SeedCatalog
	now     func() time.Time
	log     *logger.Logger
}

// NewFacade construye la fachada. catalog alimenta el pase de relleno de
// catálogos; now es inyectable para fijar la semana en tests.
func NewFacade(store docstore.Store, catalog SeedCatalog, now func() time.Time, log *logger.Logger) *Facade {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if now == nil {
		now = time.Now
	}
	return &Facade{store: store, catalog: catalog, now: now, log: log}
}

// AddEmployee inserta el empleado y enseguida aprovisiona, en un lote
// atómico, una entrada de cantidad cero por cada
// (ítem existente del equipo × día lunes-sábado de la semana en curso).
// Si el equipo no tiene ítems el aprovisionamiento es un no-op, no un error.
func (f *Facade) AddEmployee(ctx context.Context, name, teamID string) (entity.Employee, error) {
	emp := entity.Employee{Name: name, TeamID: teamID}
	id, err := f.store.Add(ctx, docstore.EmployeesCollection(teamID), emp.DocData())
	if err != nil {
		return entity.Employee{}, fmt.Errorf("crear empleado: %w", err)
	}
	emp.ID = id

	items, err := f.store.GetAll(ctx, docstore.ItemsCollection(teamID), docstore.ReadCache)
	if err != nil {
		return entity.Employee{}, fmt.Errorf("leer catálogo del equipo: %w", err)
	}
	if len(items) == 0 {
		f.log.Debug().Str("team", teamID).Msg("equipo sin ítems; sin placeholders que crear")
		return emp, nil
	}

	batch := f.store.Batch()
	dates := payweek.Dates(f.now())
	for _, doc := range items {
		for _, date := range dates {
			batch.Create(docstore.EntriesCollection(teamID, id), entity.ProductionEntry{
				EmployeeID: id,
				ItemID:     doc.ID,
				Date:       date,
				Quantity:   0,
			}.DocData())
		}
	}
	if err := batch.Commit(ctx); err != nil {
		return entity.Employee{}, fmt.Errorf("aprovisionar placeholders: %w", err)
	}
	f.log.Info().Str("employee", id).Int("placeholders", batch.Len()).Msg("empleado creado")
	return emp, nil
}

// DeleteEmployee elimina al empleado junto con toda su producción en un solo
// lote atómico, leyendo antes sus entradas. El almacén soporta lotes
// multi-colección, así que no queda ventana entre borrar hijas y borrar el
// documento padre.
func (f *Facade) DeleteEmployee(ctx context.Context, teamID, employeeID string) error {
	entries, err := f.store.GetAll(ctx, docstore.EntriesCollection(teamID, employeeID), docstore.ReadServer)
	if err != nil {
		return fmt.Errorf("leer producción del empleado: %w", err)
	}

	batch := f.store.Batch()
	for _, doc := range entries {
		batch.Delete(doc.Path)
	}
	batch.Delete(docstore.EmployeePath(teamID, employeeID))
	if err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("eliminar empleado en cascada: %w", err)
	}
	f.log.Info().Str("employee", employeeID).Int("entries", len(entries)).Msg("empleado eliminado")
	return nil
}

// AddTeam inserta un equipo pelado, sin ítems: el catálogo por defecto lo
// rellena el pase de mantenimiento (BackfillCatalogs) en el siguiente cambio
// de la lista de equipos.
func (f *Facade) AddTeam(ctx context.Context, name string) (entity.Team, error) {
	team := entity.Team{Name: name}
	id, err := f.store.Add(ctx, docstore.TeamsCollection, team.DocData())
	if err != nil {
		return entity.Team{}, fmt.Errorf("crear equipo: %w", err)
	}
	team.ID = id
	f.log.Info().Str("team", id).Str("name", name).Msg("equipo creado")
	return team, nil
}

// DeleteTeam borra en cascada: todos los ítems del equipo, todos sus
// empleados con la producción de cada uno, y por último el documento del
// equipo, como un único lote atómico construido tras leer todas las
// subcolecciones afectadas.
func (f *Facade) DeleteTeam(ctx context.Context, teamID string) error {
	items, err := f.store.GetAll(ctx, docstore.ItemsCollection(teamID), docstore.ReadServer)
	if err != nil {
		return fmt.Errorf("leer ítems del equipo: %w", err)
	}
	employees, err := f.store.GetAll(ctx, docstore.EmployeesCollection(teamID), docstore.ReadServer)
	if err != nil {
		return fmt.Errorf("leer empleados del equipo: %w", err)
	}

	batch := f.store.Batch()
	for _, doc := range items {
		batch.Delete(doc.Path)
	}
	for _, empDoc := range employees {
		entries, err := f.store.GetAll(ctx, docstore.EntriesCollection(teamID, empDoc.ID), docstore.ReadServer)
		if err != nil {
			return fmt.Errorf("leer producción de %s: %w", empDoc.ID, err)
		}
		for _, doc := range entries {
			batch.Delete(doc.Path)
		}
		batch.Delete(empDoc.Path)
	}
	batch.Delete(docstore.TeamPath(teamID))
	if err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("eliminar equipo en cascada: %w", err)
	}
	f.log.Info().Str("team", teamID).Int("ops", batch.Len()).Msg("equipo eliminado en cascada")
	return nil
}

// BackfillCatalogs es el pase de mantenimiento best-effort: inspecciona el
// catálogo de cada equipo y, si alguno quedó sin ítems (equipos creados con
// AddTeam), le rellena el catálogo por defecto que le corresponda por nombre
// o, si no hay coincidencia, el primero del catálogo de fábrica.
func (f *Facade) BackfillCatalogs(ctx context.Context, teams []entity.Team) {
	for _, team := range teams {
		items, err := f.store.GetAll(ctx, docstore.ItemsCollection(team.ID), docstore.ReadCache)
		if err != nil || len(items) > 0 {
			continue
		}
		seed := f.seedFor(team.Name)
		if len(seed) == 0 {
			continue
		}
		batch := f.store.Batch()
		for _, si := range seed {
			batch.Create(docstore.ItemsCollection(team.ID), entity.ProductionItem{
				Name:    si.Name,
				PayRate: si.Rate,
				TeamID:  team.ID,
			}.DocData())
		}
		if err := batch.Commit(ctx); err != nil {
			// Best-effort: el error ya está en el bus; se reintenta en el
			// próximo cambio de la lista de equipos o en el pase periódico.
			f.log.Warn().Err(err).Str("team", team.ID).Msg("relleno de catálogo fallido")
			continue
		}
		f.log.Info().Str("team", team.ID).Int("items", len(seed)).Msg("catálogo por defecto rellenado")
	}
}

func (f *Facade) seedFor(teamName string) []SeedItem {
	for _, st := range f.catalog {
		if st.Name == teamName {
			return st.Items
		}
	}
	if len(f.catalog) == 0 {
		return nil
	}
	return f.catalog[0].Items
}
