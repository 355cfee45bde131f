package sync_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RafaelPasos/PaystubGen-App/internal/application/payroll"
	"github.com/RafaelPasos/PaystubGen-App/internal/docstore"
	"github.com/RafaelPasos/PaystubGen-App/internal/docstore/memory"
	"github.com/RafaelPasos/PaystubGen-App/internal/domain/entity"
	syncpkg "github.com/RafaelPasos/PaystubGen-App/internal/sync"
	"github.com/RafaelPasos/PaystubGen-App/pkg/logger"
)

func catalogHojas() syncpkg.SeedCatalog {
	return syncpkg.SeedCatalog{
		{Name: "Hojas", Items: []syncpkg.SeedItem{{Name: "Blanca", Rate: decimal.NewFromInt(13)}}},
	}
}

// newTestProvider levanta un provider completo sobre el almacén en memoria;
// las notificaciones síncronas del almacén hacen deterministas los flujos.
func newTestProvider(t *testing.T, catalog syncpkg.SeedCatalog) (*syncpkg.Provider, *memory.Store, *docstore.ErrorBus) {
	t.Helper()
	bus := docstore.NewErrorBus()
	store := memory.New(bus)
	p := syncpkg.NewProvider(store, bus, logger.Nop(), syncpkg.Options{Catalog: catalog, Now: fixedNow()})
	p.Start(context.Background())
	t.Cleanup(p.Stop)
	return p, store, bus
}

// teamByName busca un equipo en la vista por nombre.
func teamByName(t *testing.T, p *syncpkg.Provider, name string) entity.Team {
	t.Helper()
	for _, team := range p.View().Teams {
		if team.Name == name {
			return team
		}
	}
	t.Fatalf("equipo %q no encontrado en la vista", name)
	return entity.Team{}
}

func itemByName(t *testing.T, p *syncpkg.Provider, name string) entity.ProductionItem {
	t.Helper()
	for _, it := range p.View().Items {
		if it.Name == name {
			return it
		}
	}
	t.Fatalf("ítem %q no encontrado en la vista", name)
	return entity.ProductionItem{}
}

func TestStart_SiembraSoloSiLaColeccionEstaVacia(t *testing.T) {
	p, store, _ := newTestProvider(t, catalogHojas())

	view := p.View()
	require.Len(t, view.Teams, 1)
	assert.Equal(t, "Hojas", view.Teams[0].Name)
	require.Len(t, view.Items, 1)
	assert.True(t, decimal.NewFromInt(13).Equal(view.Items[0].PayRate))
	assert.False(t, p.Loading(), "con el almacén síncrono todo queda asentado tras Start")

	// Un segundo cliente que arranca contra el mismo almacén no re-siembra.
	p2 := syncpkg.NewProvider(store, nil, logger.Nop(), syncpkg.Options{Catalog: catalogHojas(), Now: fixedNow()})
	p2.Start(context.Background())
	defer p2.Stop()
	assert.Len(t, p2.View().Teams, 1, "observar equipos existentes debe inhibir la siembra")
}

func TestAddEmployee_AprovisionaSeisPlaceholders(t *testing.T) {
	p, store, _ := newTestProvider(t, catalogHojas())
	hojas := teamByName(t, p, "Hojas")

	maria, err := p.AddEmployee(context.Background(), "Maria", hojas.ID)
	require.NoError(t, err)

	// Exactamente 6 entradas (lunes..sábado) con cantidad 0 en el almacén.
	docs, err := store.GetAll(context.Background(), docstore.EntriesCollection(hojas.ID, maria.ID), docstore.ReadServer)
	require.NoError(t, err)
	require.Len(t, docs, 6)
	dates := map[string]bool{}
	for _, d := range docs {
		en := entity.EntryFromDoc(d.ID, maria.ID, d.Data)
		assert.Zero(t, en.Quantity)
		dates[en.Date] = true
	}
	for _, want := range []string{"2026-08-17", "2026-08-18", "2026-08-19", "2026-08-20", "2026-08-21", "2026-08-22"} {
		assert.True(t, dates[want], "falta placeholder para %s", want)
	}

	// Y el modelo de lectura ya convergió vía suscripciones.
	view := p.View()
	require.Len(t, view.Production, 6)
	for _, en := range view.Production {
		assert.False(t, syncpkg.IsLocalID(en.ID), "las entradas convergidas llevan id real del almacén")
	}
}

func TestAddEmployee_EquipoSinItemsEsNoOp(t *testing.T) {
	p, store, _ := newTestProvider(t, syncpkg.SeedCatalog{{Name: "Vacío"}})
	team := teamByName(t, p, "Vacío")

	emp, err := p.AddEmployee(context.Background(), "Maria", team.ID)
	require.NoError(t, err, "sin ítems no hay placeholders que crear, pero no es un error")

	docs, err := store.GetAll(context.Background(), docstore.EntriesCollection(team.ID, emp.ID), docstore.ReadServer)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestEscenarioSemanal_MartesVeinteBlancas(t *testing.T) {
	p, _, _ := newTestProvider(t, catalogHojas())
	hojas := teamByName(t, p, "Hojas")
	blanca := itemByName(t, p, "Blanca")

	maria, err := p.AddEmployee(context.Background(), "Maria", hojas.ID)
	require.NoError(t, err)

	// Martes (día 1): 20 blancas, solo en el overlay.
	p.SetQuantity(maria.ID, blanca.ID, 1, "20")
	assert.True(t, p.Dirty())

	ops, err := p.SaveAllChanges(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, ops, "solo la celda del martes difiere de la base")
	assert.False(t, p.Dirty())

	// El Aggregate re-convergió por suscripción y el overlay se re-sembró.
	assert.Equal(t, 20, p.QuantityAt(maria.ID, blanca.ID, 1))

	// Pago de la celda: 20 × 13 = 260.
	report := payroll.BuildWeek(p.View(), testNow())
	require.Len(t, report.Teams, 1)
	require.Len(t, report.Teams[0].Employees, 1)
	week := report.Teams[0].Employees[0]
	require.Len(t, week.Rows, 1)
	assert.True(t, decimal.NewFromInt(260).Equal(week.Rows[0].Cells[1].Pay))
	assert.True(t, decimal.NewFromInt(260).Equal(report.GrandTotal))
}

func TestSave_IdempotenteSinEdicionesIntermedias(t *testing.T) {
	p, _, _ := newTestProvider(t, catalogHojas())
	hojas := teamByName(t, p, "Hojas")
	blanca := itemByName(t, p, "Blanca")
	maria, err := p.AddEmployee(context.Background(), "Maria", hojas.ID)
	require.NoError(t, err)

	p.SetQuantity(maria.ID, blanca.ID, 3, "11")
	first, err := p.SaveAllChanges(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, first)

	second, err := p.SaveAllChanges(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second, "guardar dos veces seguidas no emite escrituras la segunda vez")
}

func TestSave_NuncaCreaPlaceholdersVacios(t *testing.T) {
	p, store, _ := newTestProvider(t, catalogHojas())
	hojas := teamByName(t, p, "Hojas")

	// Empleado insertado directo al almacén (sin pasar por la fachada): no
	// tiene entradas reales, el overlay le sintetiza 6 placeholders locales.
	_, err := store.Add(context.Background(), docstore.EmployeesCollection(hojas.ID),
		entity.Employee{Name: "Pedro", TeamID: hojas.ID}.DocData())
	require.NoError(t, err)
	require.Len(t, p.View().Production, 6, "placeholders locales sintetizados por el overlay")

	ops, err := p.SaveAllChanges(context.Background())
	require.NoError(t, err)
	assert.Zero(t, ops, "un placeholder con cantidad cero jamás produce un create")
}

func TestDeleteEmployee_SinEntradasHuerfanas(t *testing.T) {
	p, store, _ := newTestProvider(t, catalogHojas())
	hojas := teamByName(t, p, "Hojas")
	blanca := itemByName(t, p, "Blanca")

	maria, err := p.AddEmployee(context.Background(), "Maria", hojas.ID)
	require.NoError(t, err)
	p.SetQuantity(maria.ID, blanca.ID, 0, "3")
	_, err = p.SaveAllChanges(context.Background())
	require.NoError(t, err)

	require.NoError(t, p.DeleteEmployee(context.Background(), hojas.ID, maria.ID))

	docs, err := store.GetAll(context.Background(), docstore.EntriesCollection(hojas.ID, maria.ID), docstore.ReadServer)
	require.NoError(t, err)
	assert.Empty(t, docs, "la baja borra empleado y producción en el mismo lote")
	assert.Empty(t, p.View().Employees)
	assert.Empty(t, p.View().Production, "el árbol purga las entradas del empleado eliminado")
}

func TestDeleteTeam_CascadaCompletaSinTocarAlVecino(t *testing.T) {
	catalog := syncpkg.SeedCatalog{
		{Name: "Hojas", Items: []syncpkg.SeedItem{{Name: "Blanca", Rate: decimal.NewFromInt(13)}}},
		{Name: "Capote", Items: []syncpkg.SeedItem{{Name: "Capote Fino", Rate: decimal.NewFromInt(15)}}},
	}
	p, store, _ := newTestProvider(t, catalog)
	hojas := teamByName(t, p, "Hojas")
	capote := teamByName(t, p, "Capote")
	fino := itemByName(t, p, "Capote Fino")
	ctx := context.Background()

	// Hojas: un empleado con historial.
	luz, err := p.AddEmployee(ctx, "Luz", hojas.ID)
	require.NoError(t, err)
	p.SetQuantity(luz.ID, itemByName(t, p, "Blanca").ID, 0, "4")
	_, err = p.SaveAllChanges(ctx)
	require.NoError(t, err)

	// Capote: tres empleados con historial.
	var capoteEmps []entity.Employee
	for _, name := range []string{"Pedro", "Rosa", "Juan"} {
		e, err := p.AddEmployee(ctx, name, capote.ID)
		require.NoError(t, err)
		capoteEmps = append(capoteEmps, e)
		p.SetQuantity(e.ID, fino.ID, 2, "7")
	}
	_, err = p.SaveAllChanges(ctx)
	require.NoError(t, err)

	require.NoError(t, p.DeleteTeam(ctx, hojas.ID))

	// Cascada completa: nada alcanzable de Hojas.
	for _, collection := range []string{
		docstore.ItemsCollection(hojas.ID),
		docstore.EmployeesCollection(hojas.ID),
		docstore.EntriesCollection(hojas.ID, luz.ID),
	} {
		docs, err := store.GetAll(ctx, collection, docstore.ReadServer)
		require.NoError(t, err)
		assert.Empty(t, docs, "colección %s debería quedar vacía", collection)
	}

	// El vecino queda intacto y sus suscripciones siguen vivas.
	view := p.View()
	require.Len(t, view.Teams, 1)
	assert.Equal(t, "Capote", view.Teams[0].Name)
	assert.Len(t, view.Employees, 3)

	p.SetQuantity(capoteEmps[0].ID, fino.ID, 4, "9")
	ops, err := p.SaveAllChanges(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, ops)
	assert.Equal(t, 9, p.QuantityAt(capoteEmps[0].ID, fino.ID, 4),
		"las suscripciones del equipo superviviente siguen entregando")
}

func TestResync_DescartaEdicionLocalNoGuardada(t *testing.T) {
	p, store, _ := newTestProvider(t, catalogHojas())
	hojas := teamByName(t, p, "Hojas")
	blanca := itemByName(t, p, "Blanca")

	p.SetRate(blanca.ID, "99")
	require.True(t, p.Dirty())

	// Otro cliente guarda una tarifa distinta: el cambio confirmado por el
	// servidor tiene prioridad y descarta la edición local.
	err := store.Update(context.Background(), docstore.ItemPath(hojas.ID, blanca.ID),
		map[string]any{"payRate": "15"})
	require.NoError(t, err)

	assert.False(t, p.Dirty())
	assert.True(t, decimal.NewFromInt(15).Equal(p.RateOf(blanca.ID)))
}

func TestSaveRechazado_DirtyQuedaYElBusInforma(t *testing.T) {
	p, store, bus := newTestProvider(t, catalogHojas())
	hojas := teamByName(t, p, "Hojas")
	blanca := itemByName(t, p, "Blanca")
	maria, err := p.AddEmployee(context.Background(), "Maria", hojas.ID)
	require.NoError(t, err)

	var busErr *docstore.StoreError
	unsub := bus.Subscribe(func(e *docstore.StoreError) { busErr = e })
	defer unsub()

	store.Deny(docstore.EntriesCollection(hojas.ID, maria.ID))
	p.SetQuantity(maria.ID, blanca.ID, 1, "20")

	_, err = p.SaveAllChanges(context.Background())
	require.Error(t, err)
	assert.True(t, docstore.IsPermissionDenied(err))
	assert.True(t, p.Dirty(), "en fallo el flag dirty queda puesto; el usuario reintenta explícito")

	require.NotNil(t, busErr)
	assert.Equal(t, docstore.OpCommit, busErr.Operation)
}

func TestRamaDenegada_NoTumbaLasDemas(t *testing.T) {
	bus := docstore.NewErrorBus()
	store := memory.New(bus)
	ctx := context.Background()

	// Dos equipos pre-existentes; los empleados del segundo están denegados
	// antes de que el provider abra sus suscripciones.
	t1, err := store.Add(ctx, docstore.TeamsCollection, entity.Team{Name: "Hojas"}.DocData())
	require.NoError(t, err)
	_, err = store.Add(ctx, docstore.ItemsCollection(t1), entity.ProductionItem{
		Name: "Blanca", PayRate: decimal.NewFromInt(13), TeamID: t1,
	}.DocData())
	require.NoError(t, err)
	t2, err := store.Add(ctx, docstore.TeamsCollection, entity.Team{Name: "Capote"}.DocData())
	require.NoError(t, err)
	_, err = store.Add(ctx, docstore.ItemsCollection(t2), entity.ProductionItem{
		Name: "Capote Fino", PayRate: decimal.NewFromInt(15), TeamID: t2,
	}.DocData())
	require.NoError(t, err)
	store.Deny(docstore.EmployeesCollection(t2))

	p := syncpkg.NewProvider(store, bus, logger.Nop(), syncpkg.Options{Catalog: catalogHojas(), Now: fixedNow()})
	p.Start(ctx)
	defer p.Stop()

	assert.False(t, p.Loading(), "una rama denegada se asienta y no retiene el loading")
	assert.Len(t, p.View().Teams, 2)

	// La rama sana sigue operativa.
	maria, err := p.AddEmployee(ctx, "Maria", t1)
	require.NoError(t, err)
	assert.Len(t, p.View().Employees, 1)
	assert.Equal(t, maria.ID, p.View().Employees[0].ID)
}

func TestResetWeek_PoneEnCeroYGuardaActualizaciones(t *testing.T) {
	p, _, _ := newTestProvider(t, catalogHojas())
	hojas := teamByName(t, p, "Hojas")
	blanca := itemByName(t, p, "Blanca")
	maria, err := p.AddEmployee(context.Background(), "Maria", hojas.ID)
	require.NoError(t, err)

	p.SetQuantity(maria.ID, blanca.ID, 0, "5")
	p.SetQuantity(maria.ID, blanca.ID, 1, "6")
	_, err = p.SaveAllChanges(context.Background())
	require.NoError(t, err)

	p.ResetWeek(hojas.ID)
	assert.True(t, p.Dirty())
	assert.Zero(t, p.QuantityAt(maria.ID, blanca.ID, 0))

	ops, err := p.SaveAllChanges(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, ops, "las dos entradas reales no-cero se actualizan a cero")
	assert.Zero(t, p.QuantityAt(maria.ID, blanca.ID, 1))
}

func TestAddTeam_ElPaseDeMantenimientoRellenaElCatalogo(t *testing.T) {
	p, _, _ := newTestProvider(t, catalogHojas())

	team, err := p.AddTeam(context.Background(), "Hojas Nuevas")
	require.NoError(t, err)

	// AddTeam inserta el equipo pelado; el pase que corre en cada cambio de
	// la lista de equipos le rellena el catálogo por defecto.
	items := p.View().Items
	var backfilled []entity.ProductionItem
	for _, it := range items {
		if it.TeamID == team.ID {
			backfilled = append(backfilled, it)
		}
	}
	require.NotEmpty(t, backfilled, "el equipo nuevo debe recibir catálogo por defecto")
	assert.Equal(t, "Blanca", backfilled[0].Name)
}
