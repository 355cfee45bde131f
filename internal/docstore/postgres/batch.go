package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/RafaelPasos/PaystubGen-App/internal/docstore"
	"github.com/RafaelPasos/PaystubGen-App/internal/domain"
)

type opKind int

const (
	opCreate opKind = iota
	opUpdate
	opDelete
)

type batchOp struct {
	kind opKind
	path string
	data map[string]any
}

type batch struct {
	store *Store
	ops   []batchOp
}

var _ docstore.Batch = (*batch)(nil)

func (b *batch) Create(collection string, data map[string]any) string {
	id := uuid.NewString()
	b.ops = append(b.ops, batchOp{kind: opCreate, path: collection + "/" + id, data: data})
	return id
}

func (b *batch) Update(docPath string, data map[string]any) {
	b.ops = append(b.ops, batchOp{kind: opUpdate, path: docPath, data: data})
}

func (b *batch) Delete(docPath string) {
	b.ops = append(b.ops, batchOp{kind: opDelete, path: docPath})
}

func (b *batch) Len() int { return len(b.ops) }

// Commit aplica todas las operaciones en una transacción. Los triggers de la
// tabla emiten una notificación por colección tocada al confirmarse.
func (b *batch) Commit(ctx context.Context) error {
	s := b.store
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return s.fail(docstore.OpCommit, "", nil, fmt.Errorf("begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, op := range b.ops {
		collection, _ := docstore.SplitPath(op.path)
		switch op.kind {
		case opCreate:
			_, err = tx.Exec(ctx,
				`INSERT INTO documents (path, collection, data) VALUES ($1, $2, $3)`,
				op.path, collection, op.data)
		case opUpdate:
			var ct pgconn.CommandTag
			ct, err = tx.Exec(ctx,
				`UPDATE documents SET data = data || $2, updated_at = now() WHERE path = $1`,
				op.path, op.data)
			if err == nil && ct.RowsAffected() == 0 {
				err = domain.ErrNotFound
			}
		case opDelete:
			_, err = tx.Exec(ctx, `DELETE FROM documents WHERE path = $1`, op.path)
		}
		if err != nil {
			return s.fail(docstore.OpCommit, op.path, op.data, mapPgError(err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return s.fail(docstore.OpCommit, "", nil, fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}
