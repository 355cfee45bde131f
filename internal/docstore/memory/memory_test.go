package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RafaelPasos/PaystubGen-App/internal/docstore"
	"github.com/RafaelPasos/PaystubGen-App/internal/docstore/memory"
)

func TestAddGetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	s := memory.New(nil)

	id, err := s.Add(ctx, "teams", map[string]any{"name": "Hojas"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := s.Get(ctx, "teams/"+id, docstore.ReadServer)
	require.NoError(t, err)
	assert.Equal(t, "Hojas", doc.Data["name"])

	require.NoError(t, s.Update(ctx, "teams/"+id, map[string]any{"name": "Capote"}))
	doc, err = s.Get(ctx, "teams/"+id, docstore.ReadCache)
	require.NoError(t, err)
	assert.Equal(t, "Capote", doc.Data["name"])

	require.NoError(t, s.Delete(ctx, "teams/"+id))
	_, err = s.Get(ctx, "teams/"+id, docstore.ReadServer)
	assert.Error(t, err, "el documento borrado no debe poder leerse")
}

func TestSubscribe_SnapshotInicialYNotificaciones(t *testing.T) {
	ctx := context.Background()
	s := memory.New(nil)
	_, err := s.Add(ctx, "teams", map[string]any{"name": "Hojas"})
	require.NoError(t, err)

	var snaps []docstore.Snapshot
	cancel, err := s.Subscribe(ctx, "teams", func(snap docstore.Snapshot) {
		snaps = append(snaps, snap)
	}, nil)
	require.NoError(t, err)
	defer cancel()

	require.Len(t, snaps, 1, "el snapshot inicial se entrega al suscribirse")
	assert.Len(t, snaps[0].Docs, 1)

	_, err = s.Add(ctx, "teams", map[string]any{"name": "Capote"})
	require.NoError(t, err)
	require.Len(t, snaps, 2, "cada escritura notifica a la colección")
	assert.Len(t, snaps[1].Docs, 2)

	cancel()
	_, err = s.Add(ctx, "teams", map[string]any{"name": "Tripa"})
	require.NoError(t, err)
	assert.Len(t, snaps, 2, "tras cancelar no llegan más notificaciones")
}

func TestBatch_EsAtomico(t *testing.T) {
	ctx := context.Background()
	s := memory.New(nil)

	// Un update sobre un documento inexistente invalida el lote completo:
	// el create agendado en el mismo lote tampoco debe aplicarse.
	b := s.Batch()
	b.Create("teams", map[string]any{"name": "Hojas"})
	b.Update("teams/no-existe", map[string]any{"name": "X"})
	require.Equal(t, 2, b.Len())
	err := b.Commit(ctx)
	require.Error(t, err)

	docs, err := s.GetAll(ctx, "teams", docstore.ReadServer)
	require.NoError(t, err)
	assert.Empty(t, docs, "un lote fallido no debe dejar escrituras parciales")
}

func TestBatch_NotificaUnaVezPorColeccion(t *testing.T) {
	ctx := context.Background()
	s := memory.New(nil)

	notif := 0
	cancel, err := s.Subscribe(ctx, "teams", func(docstore.Snapshot) { notif++ }, nil)
	require.NoError(t, err)
	defer cancel()
	notif = 0 // descartar el snapshot inicial

	b := s.Batch()
	b.Create("teams", map[string]any{"name": "Hojas"})
	b.Create("teams", map[string]any{"name": "Capote"})
	b.Create("teams", map[string]any{"name": "Tripa"})
	require.NoError(t, b.Commit(ctx))

	assert.Equal(t, 1, notif, "el lote notifica la colección una sola vez")
}

func TestDeny_PublicaErrorEstructuradoEnElBus(t *testing.T) {
	ctx := context.Background()
	bus := docstore.NewErrorBus()
	s := memory.New(bus)

	var got *docstore.StoreError
	unsub := bus.Subscribe(func(e *docstore.StoreError) { got = e })
	defer unsub()

	s.Deny("teams")
	_, err := s.Add(ctx, "teams", map[string]any{"name": "Hojas"})
	require.Error(t, err)
	assert.True(t, docstore.IsPermissionDenied(err))

	require.NotNil(t, got, "el fallo debe publicarse en el bus global")
	assert.Equal(t, docstore.OpAdd, got.Operation)
	assert.Equal(t, "teams", got.Path)
	assert.NotNil(t, got.RequestData)
}

func TestSubscribe_ColeccionDenegadaAvisaPorOnError(t *testing.T) {
	ctx := context.Background()
	s := memory.New(nil)
	s.Deny("teams/t1/employees")

	var subErr error
	cancel, err := s.Subscribe(ctx, "teams/t1/employees", func(docstore.Snapshot) {
		t.Fatal("no debe llegar snapshot de una colección denegada")
	}, func(e error) { subErr = e })
	require.NoError(t, err)
	defer cancel()

	require.Error(t, subErr)
	assert.True(t, docstore.IsPermissionDenied(subErr))
}
