// Package docstore define el puerto hacia el almacén jerárquico de documentos:
// suscripción en vivo por colección, lecturas puntuales (caché o servidor),
// escrituras individuales y lotes atómicos multi-documento.
//
// El núcleo de sincronización depende solo de este puerto; las
// implementaciones viven en docstore/memory y docstore/postgres.
package docstore

import "context"

// Document es un documento del almacén: id opaco asignado por el almacén,
// path jerárquico completo y payload plano.
type Document struct {
	ID   string
	Path string
	Data map[string]any
}

// Snapshot es el contenido completo de una colección en un instante dado.
// Las notificaciones de una misma suscripción llegan en orden; entre
// suscripciones distintas no hay garantía de orden.
type Snapshot struct {
	Collection string
	Docs       []Document
}

// ReadSource selecciona la consistencia de una lectura puntual.
type ReadSource int

const (
	// ReadCache tolera resultados de caché local.
	ReadCache ReadSource = iota
	// ReadServer exige una lectura fuertemente consistente contra el servidor.
	ReadServer
)

// CancelFunc cancela una suscripción. Debe ser idempotente.
type CancelFunc func()

// Store es el contrato mínimo que consume el núcleo de sincronización.
type Store interface {
	// Subscribe abre una suscripción en vivo sobre una colección. Entrega un
	// snapshot inicial y luego uno por cada cambio. onError recibe fallos del
	// canal (típicamente denegación de permisos); la suscripción afectada
	// deja de actualizar pero no tumba a las demás.
	Subscribe(ctx context.Context, collection string, onSnapshot func(Snapshot), onError func(error)) (CancelFunc, error)

	// Get lee un documento puntual.
	Get(ctx context.Context, docPath string, src ReadSource) (Document, error)

	// GetAll lee una colección completa.
	GetAll(ctx context.Context, collection string, src ReadSource) ([]Document, error)

	// Add crea un documento con id asignado por el almacén y devuelve el id.
	Add(ctx context.Context, collection string, data map[string]any) (string, error)

	// Update aplica un parche parcial sobre un documento existente.
	Update(ctx context.Context, docPath string, data map[string]any) error

	// Delete elimina un documento.
	Delete(ctx context.Context, docPath string) error

	// Batch abre un lote atómico multi-documento.
	Batch() Batch
}

// Batch acumula operaciones que se confirman todas-o-ninguna en Commit.
type Batch interface {
	// Create agenda la creación de un documento y devuelve de inmediato el id
	// que tendrá al confirmarse (el id se genera localmente, como hacen los
	// almacenes de documentos jerárquicos).
	Create(collection string, data map[string]any) string

	// Update agenda un parche parcial.
	Update(docPath string, data map[string]any)

	// Delete agenda una eliminación.
	Delete(docPath string)

	// Len devuelve el número de operaciones agendadas.
	Len() int

	// Commit confirma el lote de forma atómica.
	Commit(ctx context.Context) error
}
