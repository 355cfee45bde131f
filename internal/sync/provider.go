package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/RafaelPasos/PaystubGen-App/internal/docstore"
	"github.com/RafaelPasos/PaystubGen-App/internal/domain/entity"
	"github.com/RafaelPasos/PaystubGen-App/pkg/logger"
)

// Provider es el objeto de inyección que se construye una sola vez en la
// raíz de la aplicación y se pasa hacia abajo: posee el Aggregate, el Draft,
// el árbol de suscripciones, el seeder, el reconciliador y la fachada de
// mutaciones. Serializa todo acceso al estado compartido detrás de un mutex
// (la versión Go del único hilo lógico del diseño original); la disciplina
// anti-reentrada es no hacer nunca I/O contra el almacén con el lock tomado.
type Provider struct {
	store docstore.Store
	bus   *docstore.ErrorBus
	log   *logger.Logger
	now   func() time.Time

	seeder *Seeder
	tree   *TreeManager
	rec    *Reconciler
	facade *Facade

	mu      sync.Mutex
	agg     *Aggregate
	draft   *Draft
	loading bool

	ctx context.Context
}

// Options ajusta la construcción del Provider.
type Options struct {
	Catalog SeedCatalog      // nil = catálogo de fábrica
	Now     func() time.Time // nil = time.Now; inyectable en tests
}

// NewProvider construye el provider completo sobre un almacén.
func NewProvider(store docstore.Store, bus *docstore.ErrorBus, log *logger.Logger, opts Options) *Provider {
	if bus == nil {
		bus = docstore.NewErrorBus()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	p := &Provider{
		store:   store,
		bus:     bus,
		log:     log,
		now:     now,
		agg:     NewAggregate(),
		draft:   NewDraft(now),
		loading: true,
	}
	p.seeder = NewSeeder(store, opts.Catalog, log)
	p.rec = NewReconciler(store, log)
	p.facade = NewFacade(store, opts.Catalog, now, log)
	p.tree = NewTreeManager(store, &providerSink{p}, log)
	return p
}

// Start siembra los datos por defecto si hace falta y abre el árbol de
// suscripciones. Un fallo de siembra se reporta pero no bloquea el arranque
// de los oyentes.
func (p *Provider) Start(ctx context.Context) {
	p.ctx = ctx
	if _, err := p.seeder.Run(ctx); err != nil {
		p.log.Error().Err(err).Msg("siembra inicial fallida; se continúa con el estado existente")
	}
	p.tree.Start(ctx)
}

// Stop cancela todas las suscripciones.
func (p *Provider) Stop() {
	p.tree.Stop()
}

// Bus expone el canal estructurado de errores para oyentes externos.
func (p *Provider) Bus() *docstore.ErrorBus { return p.bus }

// Loading indica si el árbol de suscripciones aún espera primeros snapshots.
func (p *Provider) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Dirty indica si hay ediciones locales sin guardar.
func (p *Provider) Dirty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.draft.Dirty()
}

// ── modelo de lectura ────────────────────────────────────────────────────────

// View es la fotografía que consumen la UI, el PDF y la nómina: el estado
// agregado del servidor con el overlay de edición aplicado encima.
type View struct {
	Loading    bool
	Dirty      bool
	Teams      []entity.Team
	Employees  []entity.Employee
	Items      []entity.ProductionItem  // tarifa = la del overlay
	Production []entity.ProductionEntry // entradas del overlay, placeholders incluidos
}

// View devuelve una copia coherente del estado visible.
func (p *Provider) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()

	items := p.agg.Items()
	for i := range items {
		items[i].PayRate = p.draft.RateOf(items[i].ID)
	}
	return View{
		Loading:    p.loading,
		Dirty:      p.draft.Dirty(),
		Teams:      p.agg.Teams(),
		Employees:  p.agg.Employees(),
		Items:      items,
		Production: p.draft.Entries(),
	}
}

// ── ediciones de overlay ─────────────────────────────────────────────────────

// SetRate fija la tarifa en edición de un ítem (coerción a 0 si la entrada
// no es numérica).
func (p *Provider) SetRate(itemID, raw string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.draft.SetRate(itemID, raw)
}

// SetQuantity fija la cantidad en edición de (empleado, ítem, día 0..5).
func (p *Provider) SetQuantity(employeeID, itemID string, weekday int, raw string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.draft.SetQuantity(employeeID, itemID, weekday, raw)
}

// ResetWeek pone en cero las cantidades del overlay (globalmente o solo para
// los empleados de un equipo) sin tocar tarifas ni borrar historial.
func (p *Provider) ResetWeek(teamID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.draft.Reset(teamID, p.agg)
}

// SaveAllChanges confirma el diff overlay-vs-base como un único lote
// atómico. Devuelve cuántas operaciones se escribieron. En éxito el flag
// dirty se limpia (y el overlay se re-siembra cuando las suscripciones
// entreguen el cambio confirmado); en fallo queda puesto, no se reintenta y
// el error estructurado ya viajó por el bus.
func (p *Provider) SaveAllChanges(ctx context.Context) (int, error) {
	p.mu.Lock()
	batch := p.rec.BuildBatch(p.agg, p.draft)
	p.mu.Unlock()

	n := batch.Len()
	if n == 0 {
		p.mu.Lock()
		p.draft.markSaved()
		p.mu.Unlock()
		p.log.Debug().Msg("guardado sin diferencias; lote vacío")
		return 0, nil
	}

	// Commit fuera del lock: las notificaciones que dispare re-entran por
	// el sink y necesitan tomarlo.
	if err := batch.Commit(ctx); err != nil {
		return 0, fmt.Errorf("confirmar lote de guardado: %w", err)
	}

	p.mu.Lock()
	p.draft.markSaved()
	p.mu.Unlock()
	p.log.Info().Int("ops", n).Msg("cambios guardados en un lote atómico")
	return n, nil
}

// ── fachada de mutaciones estructurales ──────────────────────────────────────

// AddEmployee delega en la fachada (ver Facade.AddEmployee).
func (p *Provider) AddEmployee(ctx context.Context, name, teamID string) (entity.Employee, error) {
	return p.facade.AddEmployee(ctx, name, teamID)
}

// DeleteEmployee delega en la fachada (ver Facade.DeleteEmployee).
func (p *Provider) DeleteEmployee(ctx context.Context, teamID, employeeID string) error {
	return p.facade.DeleteEmployee(ctx, teamID, employeeID)
}

// AddTeam delega en la fachada (ver Facade.AddTeam).
func (p *Provider) AddTeam(ctx context.Context, name string) (entity.Team, error) {
	return p.facade.AddTeam(ctx, name)
}

// DeleteTeam delega en la fachada (ver Facade.DeleteTeam).
func (p *Provider) DeleteTeam(ctx context.Context, teamID string) error {
	return p.facade.DeleteTeam(ctx, teamID)
}

// BackfillCatalogs corre el pase de relleno de catálogos sobre los equipos
// vigentes; lo invocan el sink en cada cambio de la lista de equipos y el
// scheduler periódico.
func (p *Provider) BackfillCatalogs(ctx context.Context) {
	p.mu.Lock()
	teams := p.agg.Teams()
	p.mu.Unlock()
	p.facade.BackfillCatalogs(ctx, teams)
}

// RateOf expone la tarifa vigente en el overlay (para handlers y tests).
func (p *Provider) RateOf(itemID string) decimal.Decimal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.draft.RateOf(itemID)
}

// QuantityAt expone la cantidad vigente en el overlay.
func (p *Provider) QuantityAt(employeeID, itemID string, weekday int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.draft.QuantityAt(employeeID, itemID, weekday)
}

// ── sink del árbol de suscripciones ──────────────────────────────────────────

// providerSink adapta el Provider al Sink del TreeManager. Cada merge
// acotado re-siembra el overlay: una edición local sin guardar cede ante el
// estado confirmado por el servidor (last-writer-wins a nivel de overlay).
type providerSink struct{ p *Provider }

var _ Sink = (*providerSink)(nil)

func (s *providerSink) ReplaceTeams(teams []entity.Team) {
	p := s.p
	p.mu.Lock()
	p.agg.ReplaceTeams(teams)
	p.mu.Unlock()

	// Pase de mantenimiento en cada cambio de la lista de equipos. Escribir
	// ítems dispara a su vez snapshots de ítems, que solo re-siembran el
	// overlay: la re-entrada termina.
	ctx := p.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	p.facade.BackfillCatalogs(ctx, teams)
}

func (s *providerSink) ReplaceTeamItems(teamID string, items []entity.ProductionItem) {
	p := s.p
	p.mu.Lock()
	defer p.mu.Unlock()
	p.agg.ReplaceTeamItems(teamID, items)
	p.draft.Rebaseline(p.agg)
}

func (s *providerSink) ReplaceTeamEmployees(teamID string, employees []entity.Employee) {
	p := s.p
	p.mu.Lock()
	defer p.mu.Unlock()
	p.agg.ReplaceTeamEmployees(teamID, employees)
	p.draft.Rebaseline(p.agg)
}

func (s *providerSink) ReplaceEmployeeEntries(employeeID string, entries []entity.ProductionEntry) {
	p := s.p
	p.mu.Lock()
	defer p.mu.Unlock()
	p.agg.ReplaceEmployeeEntries(employeeID, entries)
	p.draft.Rebaseline(p.agg)
}

func (s *providerSink) PurgeTeam(teamID string) {
	p := s.p
	p.mu.Lock()
	defer p.mu.Unlock()
	p.agg.PurgeTeam(teamID)
	p.draft.Rebaseline(p.agg)
}

func (s *providerSink) PurgeEmployee(employeeID string) {
	p := s.p
	p.mu.Lock()
	defer p.mu.Unlock()
	p.agg.PurgeEmployee(employeeID)
	p.draft.Rebaseline(p.agg)
}

func (s *providerSink) LoadingChanged(loading bool) {
	p := s.p
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = loading
}
