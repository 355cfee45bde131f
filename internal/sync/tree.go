package sync

import (
	"context"
	"sync"

	"github.com/RafaelPasos/PaystubGen-App/internal/docstore"
	"github.com/RafaelPasos/PaystubGen-App/internal/domain/entity"
	"github.com/RafaelPasos/PaystubGen-App/pkg/logger"
)

// Sink recibe los merges acotados por padre que produce el árbol de
// suscripciones. El Provider lo implementa.
type Sink interface {
	ReplaceTeams(teams []entity.Team)
	ReplaceTeamItems(teamID string, items []entity.ProductionItem)
	ReplaceTeamEmployees(teamID string, employees []entity.Employee)
	ReplaceEmployeeEntries(employeeID string, entries []entity.ProductionEntry)
	PurgeTeam(teamID string)
	PurgeEmployee(employeeID string)
	LoadingChanged(loading bool)
}

// teamBranch agrupa las suscripciones abiertas por cuenta de un equipo:
// sus ítems, sus empleados y una suscripción de producción por empleado.
type teamBranch struct {
	cancelItems     docstore.CancelFunc
	cancelEmployees docstore.CancelFunc
	production      map[string]docstore.CancelFunc // employeeID -> cancel
}

func (b *teamBranch) cancelAll() {
	if b.cancelItems != nil {
		b.cancelItems()
	}
	if b.cancelEmployees != nil {
		b.cancelEmployees()
	}
	for _, cancel := range b.production {
		cancel()
	}
}

// TreeManager es el supervisor del árbol de suscripciones en cascada: una
// suscripción sobre la colección de equipos; por equipo, una sobre sus ítems
// y otra sobre sus empleados; por empleado, una sobre su producción diaria.
// En cada snapshot de un padre, el conjunto de suscripciones hijas se
// reconstruye para coincidir exactamente con la membresía vigente, con
// disciplina de cancelar-antes-de-reemplazar: nunca dos oyentes vivos
// escribiendo sobre la misma ranura del Aggregate.
//
// Las notificaciones entre suscripciones distintas no tienen orden
// garantizado: un snapshot de empleados puede llegar antes que el del equipo
// padre; el manager tolera ambos órdenes y el Aggregate fusiona cuando el
// padre aparezca.
type TreeManager struct {
	store docstore.Store
	sink  Sink
	log   *logger.Logger

	mu       sync.Mutex
	ctx      context.Context
	teams    docstore.CancelFunc
	branches map[string]*teamBranch
	pending  int  // suscripciones que aún no entregan su primer snapshot
	loading  bool // expuesto vía el sink
	stopped  bool
}

// NewTreeManager construye el supervisor sin arrancarlo.
func NewTreeManager(store docstore.Store, sink Sink, log *logger.Logger) *TreeManager {
	return &TreeManager{
		store:    store,
		sink:     sink,
		log:      log,
		branches: make(map[string]*teamBranch),
	}
}

// Start abre la suscripción raíz sobre la colección de equipos.
func (m *TreeManager) Start(ctx context.Context) {
	m.mu.Lock()
	m.ctx = ctx
	m.stopped = false
	m.setLoadingLocked(true)
	m.mu.Unlock()

	cancel := m.subscribe(docstore.TeamsCollection, m.onTeams)

	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		cancel()
		return
	}
	m.teams = cancel
	m.mu.Unlock()
}

// Stop cancela todas las suscripciones abiertas. Idempotente.
func (m *TreeManager) Stop() {
	m.mu.Lock()
	m.stopped = true
	branches := m.branches
	m.branches = make(map[string]*teamBranch)
	teams := m.teams
	m.teams = nil
	m.mu.Unlock()

	if teams != nil {
		teams()
	}
	for _, b := range branches {
		b.cancelAll()
	}
}

// ── snapshots ────────────────────────────────────────────────────────────────

func (m *TreeManager) onTeams(snap docstore.Snapshot) {
	teams := make([]entity.Team, 0, len(snap.Docs))
	current := make(map[string]bool, len(snap.Docs))
	for _, doc := range snap.Docs {
		teams = append(teams, entity.TeamFromDoc(doc.ID, doc.Data))
		current[doc.ID] = true
	}
	m.sink.ReplaceTeams(teams)

	// Diferencia de membresía: cancelar ramas de equipos que ya no existen
	// antes de abrir las de los nuevos.
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	var stale []*teamBranch
	var staleIDs, fresh []string
	for id, b := range m.branches {
		if !current[id] {
			stale = append(stale, b)
			staleIDs = append(staleIDs, id)
			delete(m.branches, id)
		}
	}
	for id := range current {
		if _, ok := m.branches[id]; !ok {
			m.branches[id] = &teamBranch{production: make(map[string]docstore.CancelFunc)}
			fresh = append(fresh, id)
		}
	}
	m.mu.Unlock()

	for _, b := range stale {
		b.cancelAll()
	}
	for _, id := range staleIDs {
		m.sink.PurgeTeam(id)
	}
	for _, teamID := range fresh {
		id := teamID
		cancelItems := m.subscribe(docstore.ItemsCollection(id), func(s docstore.Snapshot) {
			m.onItems(id, s)
		})
		cancelEmployees := m.subscribe(docstore.EmployeesCollection(id), func(s docstore.Snapshot) {
			m.onEmployees(id, s)
		})

		m.mu.Lock()
		if b, ok := m.branches[id]; ok {
			b.cancelItems = cancelItems
			b.cancelEmployees = cancelEmployees
			m.mu.Unlock()
			continue
		}
		// El equipo desapareció mientras abríamos sus suscripciones.
		m.mu.Unlock()
		cancelItems()
		cancelEmployees()
	}
}

func (m *TreeManager) onItems(teamID string, snap docstore.Snapshot) {
	items := make([]entity.ProductionItem, 0, len(snap.Docs))
	for _, doc := range snap.Docs {
		items = append(items, entity.ItemFromDoc(doc.ID, teamID, doc.Data))
	}
	m.sink.ReplaceTeamItems(teamID, items)
}

func (m *TreeManager) onEmployees(teamID string, snap docstore.Snapshot) {
	employees := make([]entity.Employee, 0, len(snap.Docs))
	current := make(map[string]bool, len(snap.Docs))
	for _, doc := range snap.Docs {
		employees = append(employees, entity.EmployeeFromDoc(doc.ID, teamID, doc.Data))
		current[doc.ID] = true
	}
	m.sink.ReplaceTeamEmployees(teamID, employees)

	// Un equipo sin empleados no tiene suscripciones de producción que
	// esperar: la rama queda asentada de inmediato y no retiene el loading.
	m.mu.Lock()
	branch, ok := m.branches[teamID]
	if !ok || m.stopped {
		m.mu.Unlock()
		return
	}
	var stale []docstore.CancelFunc
	var staleIDs, fresh []string
	for empID, cancel := range branch.production {
		if !current[empID] {
			stale = append(stale, cancel)
			staleIDs = append(staleIDs, empID)
			delete(branch.production, empID)
		}
	}
	for empID := range current {
		if _, ok := branch.production[empID]; !ok {
			fresh = append(fresh, empID)
			branch.production[empID] = func() {} // reserva la ranura
		}
	}
	m.mu.Unlock()

	for _, cancel := range stale {
		cancel()
	}
	for _, empID := range staleIDs {
		m.sink.PurgeEmployee(empID)
	}
	for _, empID := range fresh {
		eid := empID
		cancel := m.subscribe(docstore.EntriesCollection(teamID, eid), func(s docstore.Snapshot) {
			m.onEntries(eid, s)
		})

		m.mu.Lock()
		if b, ok := m.branches[teamID]; ok {
			if _, alive := b.production[eid]; alive {
				b.production[eid] = cancel
				m.mu.Unlock()
				continue
			}
		}
		m.mu.Unlock()
		cancel()
	}
}

func (m *TreeManager) onEntries(employeeID string, snap docstore.Snapshot) {
	entries := make([]entity.ProductionEntry, 0, len(snap.Docs))
	for _, doc := range snap.Docs {
		entries = append(entries, entity.EntryFromDoc(doc.ID, employeeID, doc.Data))
	}
	m.sink.ReplaceEmployeeEntries(employeeID, entries)
}

// ── contabilidad de loading ──────────────────────────────────────────────────

// subscribe abre una suscripción contándola como pendiente hasta su primer
// snapshot (o su primer error: una rama denegada no retiene el loading para
// siempre, queda estancada-pero-presente).
func (m *TreeManager) subscribe(collection string, onSnapshot func(docstore.Snapshot)) docstore.CancelFunc {
	m.mu.Lock()
	m.pending++
	m.setLoadingLocked(true)
	ctx := m.ctx
	m.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	var first sync.Once
	settle := func() {
		first.Do(func() {
			m.mu.Lock()
			m.pending--
			if m.pending == 0 {
				m.setLoadingLocked(false)
			}
			m.mu.Unlock()
		})
	}

	cancel, err := m.store.Subscribe(ctx, collection,
		func(snap docstore.Snapshot) {
			onSnapshot(snap)
			settle()
		},
		func(err error) {
			// El almacén ya publicó el StoreError en el bus; aquí solo se
			// registra y se asienta la rama. Las demás siguen vivas.
			m.log.Warn().Err(err).Str("collection", collection).
				Msg("suscripción con error; la rama queda estancada")
			settle()
		})
	if err != nil {
		m.log.Error().Err(err).Str("collection", collection).Msg("no se pudo abrir la suscripción")
		settle()
		return func() {}
	}
	return cancel
}

func (m *TreeManager) setLoadingLocked(loading bool) {
	if m.loading == loading {
		return
	}
	m.loading = loading
	m.sink.LoadingChanged(loading)
}
