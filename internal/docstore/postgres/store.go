// Package postgres implementa docstore.Store sobre PostgreSQL: una tabla
// JSONB de documentos direccionados por path, suscripciones vía
// LISTEN/NOTIFY y lotes atómicos vía transacciones pgx.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/RafaelPasos/PaystubGen-App/internal/docstore"
	"github.com/RafaelPasos/PaystubGen-App/internal/domain"
	"github.com/RafaelPasos/PaystubGen-App/pkg/logger"
)

//go:embed schema.sql
var schemaDDL string

const notifyChannel = "document_changes"

var _ docstore.Store = (*Store)(nil)

type subscriber struct {
	collection string
	onSnapshot func(docstore.Snapshot)
	onError    func(error)
}

// Store es el almacén de documentos respaldado por PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
	bus  *docstore.ErrorBus
	log  *logger.Logger

	mu     sync.Mutex
	subs   map[int]*subscriber
	nextID int

	stopListen context.CancelFunc
	listenDone chan struct{}
}

// NewStore asegura el esquema, arranca el oyente de notificaciones y
// devuelve el almacén listo para suscribirse.
func NewStore(ctx context.Context, pool *pgxpool.Pool, bus *docstore.ErrorBus, log *logger.Logger) (*Store, error) {
	if bus == nil {
		bus = docstore.NewErrorBus()
	}
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		return nil, fmt.Errorf("asegurar esquema documents: %w", err)
	}

	listenCtx, cancel := context.WithCancel(context.Background())
	s := &Store{
		pool:       pool,
		bus:        bus,
		log:        log,
		subs:       make(map[int]*subscriber),
		stopListen: cancel,
		listenDone: make(chan struct{}),
	}
	go s.listenLoop(listenCtx)
	return s, nil
}

// Close detiene el oyente de notificaciones. No cierra el pool (lo posee el
// llamador).
func (s *Store) Close() {
	s.stopListen()
	<-s.listenDone
}

// Subscribe registra el oyente, entrega el snapshot inicial y devuelve la
// cancelación. Las notificaciones posteriores llegan desde la goroutine del
// oyente LISTEN, en orden por colección.
func (s *Store) Subscribe(ctx context.Context, collection string, onSnapshot func(docstore.Snapshot), onError func(error)) (docstore.CancelFunc, error) {
	docs, err := s.GetAll(ctx, collection, docstore.ReadServer)
	if err != nil {
		if onError != nil {
			onError(err)
		}
		return func() {}, nil
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = &subscriber{collection: collection, onSnapshot: onSnapshot, onError: onError}
	s.mu.Unlock()

	onSnapshot(docstore.Snapshot{Collection: collection, Docs: docs})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}, nil
}

// Get lee un documento puntual. No hay capa de caché local: ambas variantes
// de consistencia leen del servidor.
func (s *Store) Get(ctx context.Context, docPath string, _ docstore.ReadSource) (docstore.Document, error) {
	var data map[string]any
	err := s.pool.QueryRow(ctx, `SELECT data FROM documents WHERE path = $1`, docPath).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return docstore.Document{}, s.fail(docstore.OpGet, docPath, nil, domain.ErrNotFound)
	}
	if err != nil {
		return docstore.Document{}, s.fail(docstore.OpGet, docPath, nil, mapPgError(err))
	}
	_, id := docstore.SplitPath(docPath)
	return docstore.Document{ID: id, Path: docPath, Data: data}, nil
}

// GetAll lee una colección completa en orden de creación.
func (s *Store) GetAll(ctx context.Context, collection string, _ docstore.ReadSource) ([]docstore.Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT path, data FROM documents WHERE collection = $1 ORDER BY created_at, path`, collection)
	if err != nil {
		return nil, s.fail(docstore.OpList, collection, nil, mapPgError(err))
	}
	defer rows.Close()

	var docs []docstore.Document
	for rows.Next() {
		var path string
		var data map[string]any
		if err := rows.Scan(&path, &data); err != nil {
			return nil, s.fail(docstore.OpList, collection, nil, mapPgError(err))
		}
		_, id := docstore.SplitPath(path)
		docs = append(docs, docstore.Document{ID: id, Path: path, Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail(docstore.OpList, collection, nil, mapPgError(err))
	}
	return docs, nil
}

// Add crea un documento con id generado localmente y devuelve el id.
func (s *Store) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := uuid.NewString()
	path := collection + "/" + id
	_, err := s.pool.Exec(ctx,
		`INSERT INTO documents (path, collection, data) VALUES ($1, $2, $3)`, path, collection, data)
	if err != nil {
		return "", s.fail(docstore.OpAdd, collection, data, mapPgError(err))
	}
	return id, nil
}

// Update aplica un parche parcial (merge JSONB); falla si el documento no existe.
func (s *Store) Update(ctx context.Context, docPath string, data map[string]any) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE documents SET data = data || $2, updated_at = now() WHERE path = $1`, docPath, data)
	if err != nil {
		return s.fail(docstore.OpUpdate, docPath, data, mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return s.fail(docstore.OpUpdate, docPath, data, domain.ErrNotFound)
	}
	return nil
}

// Delete elimina un documento. Borrar algo inexistente no es error.
func (s *Store) Delete(ctx context.Context, docPath string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE path = $1`, docPath); err != nil {
		return s.fail(docstore.OpDelete, docPath, nil, mapPgError(err))
	}
	return nil
}

// Batch abre un lote que se confirma en una sola transacción.
func (s *Store) Batch() docstore.Batch {
	return &batch{store: s}
}

// ProductionTotals suma documentos y cantidades de producción registradas;
// la suma NUMERIC se escanea directo a decimal vía pgx-shopspring-decimal.
// Lo usan el seed y los diagnósticos de arranque.
func (s *Store) ProductionTotals(ctx context.Context) (count int64, quantity decimal.Decimal, err error) {
	err = s.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM((data->>'quantity')::numeric), 0)
		FROM documents
		WHERE collection LIKE '%/dailyProduction'`).Scan(&count, &quantity)
	if err != nil {
		return 0, decimal.Zero, fmt.Errorf("totales de producción: %w", err)
	}
	return count, quantity, nil
}

// ── internos ─────────────────────────────────────────────────────────────────

func (s *Store) fail(op docstore.Op, path string, data any, err error) error {
	se := &docstore.StoreError{Path: path, Operation: op, RequestData: data, Err: err}
	s.bus.Publish(se)
	return se
}

// mapPgError traduce errores del driver a la taxonomía del puerto:
// insufficient_privilege (42501) y fallos de autorización de conexión (28000)
// se reportan como denegación de permiso por path.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42501", "28000":
			return fmt.Errorf("%w: %s", docstore.ErrPermissionDenied, pgErr.Message)
		}
	}
	return err
}

// listenLoop mantiene una conexión dedicada en LISTEN y re-entrega snapshots
// a los suscriptores de cada colección notificada. Si la conexión cae, se
// reintenta; los errores se publican en el bus.
func (s *Store) listenLoop(ctx context.Context) {
	defer close(s.listenDone)
	for ctx.Err() == nil {
		if err := s.listenOnce(ctx); err != nil && ctx.Err() == nil {
			s.log.Warn().Err(err).Msg("oyente LISTEN caído; reintentando")
			s.bus.Publish(&docstore.StoreError{Path: notifyChannel, Operation: docstore.OpSubscribe, Err: err})
		}
	}
}

func (s *Store) listenOnce(ctx context.Context) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("adquirir conexión LISTEN: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		return fmt.Errorf("LISTEN %s: %w", notifyChannel, err)
	}
	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		s.dispatch(ctx, n.Payload)
	}
}

// dispatch relee la colección notificada una sola vez y reparte el snapshot
// entre sus suscriptores. Se ejecuta en la goroutine del oyente, lo que
// conserva el orden de entrega por suscripción.
func (s *Store) dispatch(ctx context.Context, collection string) {
	s.mu.Lock()
	var targets []*subscriber
	for _, sub := range s.subs {
		if sub.collection == collection {
			targets = append(targets, sub)
		}
	}
	s.mu.Unlock()
	if len(targets) == 0 {
		return
	}

	docs, err := s.GetAll(ctx, collection, docstore.ReadServer)
	if err != nil {
		for _, sub := range targets {
			if sub.onError != nil {
				sub.onError(err)
			}
		}
		return
	}
	snap := docstore.Snapshot{Collection: collection, Docs: docs}
	for _, sub := range targets {
		sub.onSnapshot(snap)
	}
}
