package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/RafaelPasos/PaystubGen-App/internal/docstore"
	"github.com/RafaelPasos/PaystubGen-App/internal/domain"
)

var errNotFound = domain.ErrNotFound

type opKind int

const (
	opCreate opKind = iota
	opUpdate
	opDelete
)

type batchOp struct {
	kind opKind
	path string // documento (create: colección + id pregenerado)
	data map[string]any
}

type batch struct {
	store *Store
	ops   []batchOp
}

var _ docstore.Batch = (*batch)(nil)

func (b *batch) Create(collection string, data map[string]any) string {
	id := uuid.NewString()
	b.ops = append(b.ops, batchOp{kind: opCreate, path: collection + "/" + id, data: clone(data)})
	return id
}

func (b *batch) Update(docPath string, data map[string]any) {
	b.ops = append(b.ops, batchOp{kind: opUpdate, path: docPath, data: clone(data)})
}

func (b *batch) Delete(docPath string) {
	b.ops = append(b.ops, batchOp{kind: opDelete, path: docPath})
}

func (b *batch) Len() int { return len(b.ops) }

// Commit valida todas las operaciones y solo entonces las aplica: si una
// falla, ninguna queda escrita. Cada colección tocada se notifica una sola
// vez, después de aplicar el lote completo.
func (b *batch) Commit(_ context.Context) error {
	s := b.store
	s.mu.Lock()

	for _, op := range b.ops {
		if s.isDenied(op.path) {
			s.mu.Unlock()
			return s.fail(docstore.OpCommit, op.path, op.data, docstore.ErrPermissionDenied)
		}
		if op.kind == opUpdate {
			collection, id := docstore.SplitPath(op.path)
			if _, ok := s.docs[collection][id]; !ok {
				s.mu.Unlock()
				return s.fail(docstore.OpCommit, op.path, op.data, errNotFound)
			}
		}
	}

	touched := make([]string, 0, len(b.ops))
	for _, op := range b.ops {
		collection, id := docstore.SplitPath(op.path)
		switch op.kind {
		case opCreate:
			s.putLocked(collection, id, op.data)
		case opUpdate:
			rec := s.docs[collection][id]
			for k, v := range op.data {
				rec.data[k] = v
			}
		case opDelete:
			delete(s.docs[collection], id)
		}
		touched = append(touched, collection)
	}
	snaps := s.collectLocked(touched...)
	s.mu.Unlock()

	s.deliver(snaps)
	return nil
}
