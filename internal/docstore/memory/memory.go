// Package memory implementa docstore.Store en memoria. Es la implementación
// de desarrollo y de tests: las notificaciones se entregan de forma síncrona
// en la goroutine que escribe, lo que hace deterministas los escenarios de
// suscripción en cascada.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/RafaelPasos/PaystubGen-App/internal/docstore"
)

var _ docstore.Store = (*Store)(nil)

type record struct {
	data map[string]any
	seq  int64 // orden de inserción, para snapshots estables
}

type subscriber struct {
	collection string
	onSnapshot func(docstore.Snapshot)
	onError    func(error)
}

// Store es el almacén en memoria. El cero no es utilizable; usar New.
type Store struct {
	mu     sync.Mutex
	seq    int64
	docs   map[string]map[string]*record // colección -> id -> doc
	subs   map[int]*subscriber
	nextID int
	denied []string // prefijos de path con acceso denegado (simulación)
	bus    *docstore.ErrorBus
}

// New construye el almacén. El bus puede ser nil si nadie escucha errores.
func New(bus *docstore.ErrorBus) *Store {
	if bus == nil {
		bus = docstore.NewErrorBus()
	}
	return &Store{
		docs: make(map[string]map[string]*record),
		subs: make(map[int]*subscriber),
		bus:  bus,
	}
}

// Deny marca un prefijo de path como denegado: toda operación que lo toque
// falla con ErrPermissionDenied. Pensado para ejercitar la taxonomía de
// errores en tests.
func (s *Store) Deny(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.denied = append(s.denied, prefix)
}

func (s *Store) isDenied(path string) bool {
	for _, p := range s.denied {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func (s *Store) fail(op docstore.Op, path string, data any, err error) error {
	se := &docstore.StoreError{Path: path, Operation: op, RequestData: data, Err: err}
	s.bus.Publish(se)
	return se
}

// Subscribe registra el oyente y entrega el snapshot inicial de forma
// síncrona antes de devolver la cancelación.
func (s *Store) Subscribe(_ context.Context, collection string, onSnapshot func(docstore.Snapshot), onError func(error)) (docstore.CancelFunc, error) {
	s.mu.Lock()
	if s.isDenied(collection) {
		s.mu.Unlock()
		err := s.fail(docstore.OpSubscribe, collection, nil, docstore.ErrPermissionDenied)
		if onError != nil {
			onError(err)
		}
		return func() {}, nil
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = &subscriber{collection: collection, onSnapshot: onSnapshot, onError: onError}
	snap := s.snapshotLocked(collection)
	s.mu.Unlock()

	onSnapshot(snap)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}, nil
}

// Get lee un documento puntual; en memoria ambas consistencias son iguales.
func (s *Store) Get(_ context.Context, docPath string, _ docstore.ReadSource) (docstore.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isDenied(docPath) {
		return docstore.Document{}, s.fail(docstore.OpGet, docPath, nil, docstore.ErrPermissionDenied)
	}
	collection, id := docstore.SplitPath(docPath)
	rec, ok := s.docs[collection][id]
	if !ok {
		return docstore.Document{}, s.fail(docstore.OpGet, docPath, nil, errNotFound)
	}
	return docstore.Document{ID: id, Path: docPath, Data: clone(rec.data)}, nil
}

// GetAll lee una colección completa en orden de inserción.
func (s *Store) GetAll(_ context.Context, collection string, _ docstore.ReadSource) ([]docstore.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isDenied(collection) {
		return nil, s.fail(docstore.OpList, collection, nil, docstore.ErrPermissionDenied)
	}
	return s.snapshotLocked(collection).Docs, nil
}

// Add crea el documento, notifica a los suscriptores de la colección y
// devuelve el id asignado.
func (s *Store) Add(_ context.Context, collection string, data map[string]any) (string, error) {
	s.mu.Lock()
	if s.isDenied(collection) {
		s.mu.Unlock()
		return "", s.fail(docstore.OpAdd, collection, data, docstore.ErrPermissionDenied)
	}
	id := uuid.NewString()
	s.putLocked(collection, id, data)
	snaps := s.collectLocked(collection)
	s.mu.Unlock()

	s.deliver(snaps)
	return id, nil
}

// Update aplica un parche parcial; falla si el documento no existe.
func (s *Store) Update(_ context.Context, docPath string, data map[string]any) error {
	s.mu.Lock()
	if s.isDenied(docPath) {
		s.mu.Unlock()
		return s.fail(docstore.OpUpdate, docPath, data, docstore.ErrPermissionDenied)
	}
	collection, id := docstore.SplitPath(docPath)
	rec, ok := s.docs[collection][id]
	if !ok {
		s.mu.Unlock()
		return s.fail(docstore.OpUpdate, docPath, data, errNotFound)
	}
	for k, v := range data {
		rec.data[k] = v
	}
	snaps := s.collectLocked(collection)
	s.mu.Unlock()

	s.deliver(snaps)
	return nil
}

// Delete elimina un documento. Borrar algo inexistente no es error.
func (s *Store) Delete(_ context.Context, docPath string) error {
	s.mu.Lock()
	if s.isDenied(docPath) {
		s.mu.Unlock()
		return s.fail(docstore.OpDelete, docPath, nil, docstore.ErrPermissionDenied)
	}
	collection, id := docstore.SplitPath(docPath)
	delete(s.docs[collection], id)
	snaps := s.collectLocked(collection)
	s.mu.Unlock()

	s.deliver(snaps)
	return nil
}

// Batch abre un lote atómico.
func (s *Store) Batch() docstore.Batch {
	return &batch{store: s}
}

// ── internos ─────────────────────────────────────────────────────────────────

func (s *Store) putLocked(collection, id string, data map[string]any) {
	if s.docs[collection] == nil {
		s.docs[collection] = make(map[string]*record)
	}
	s.seq++
	s.docs[collection][id] = &record{data: clone(data), seq: s.seq}
}

func (s *Store) snapshotLocked(collection string) docstore.Snapshot {
	recs := s.docs[collection]
	docs := make([]docstore.Document, 0, len(recs))
	ids := make([]string, 0, len(recs))
	for id := range recs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return recs[ids[i]].seq < recs[ids[j]].seq })
	for _, id := range ids {
		docs = append(docs, docstore.Document{
			ID:   id,
			Path: collection + "/" + id,
			Data: clone(recs[id].data),
		})
	}
	return docstore.Snapshot{Collection: collection, Docs: docs}
}

type delivery struct {
	snap docstore.Snapshot
	fns  []func(docstore.Snapshot)
}

// collectLocked arma las entregas pendientes para las colecciones tocadas.
// Se entregan fuera del lock: un callback puede volver a entrar al almacén
// (abrir suscripciones hijas, escribir) sin bloquearse.
func (s *Store) collectLocked(collections ...string) []delivery {
	seen := make(map[string]bool, len(collections))
	var out []delivery
	for _, c := range collections {
		if seen[c] {
			continue
		}
		seen[c] = true
		var fns []func(docstore.Snapshot)
		for _, sub := range s.subs {
			if sub.collection == c {
				fns = append(fns, sub.onSnapshot)
			}
		}
		if len(fns) > 0 {
			out = append(out, delivery{snap: s.snapshotLocked(c), fns: fns})
		}
	}
	return out
}

func (s *Store) deliver(ds []delivery) {
	for _, d := range ds {
		for _, fn := range d.fns {
			fn(d.snap)
		}
	}
}

func clone(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
