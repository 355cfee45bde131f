package docstore

import (
	"errors"
	"fmt"
	"sync"
)

// ErrPermissionDenied señala una denegación de acceso por path, la falla
// típica del canal de suscripciones y de escrituras rechazadas.
var ErrPermissionDenied = errors.New("permiso denegado")

// Op identifica la operación del almacén que falló.
type Op string

const (
	OpGet       Op = "get"
	OpList      Op = "list"
	OpAdd       Op = "add"
	OpUpdate    Op = "update"
	OpDelete    Op = "delete"
	OpCommit    Op = "batch-commit"
	OpSubscribe Op = "subscribe"
)

// StoreError es el error estructurado que viaja por el bus: qué path, qué
// operación y, si aplica, el payload que se intentaba escribir.
type StoreError struct {
	Path        string
	Operation   Op
	RequestData any
	Err         error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("docstore: %s %s: %v", e.Operation, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsPermissionDenied indica si err (o su cadena envuelta) es una denegación
// de acceso.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// ErrorBus es el canal único de errores de todo el proceso: cualquier
// componente publica sus StoreError aquí y un solo oyente externo
// puede presentar diagnósticos sin que cada call-site maneje el fallo.
type ErrorBus struct {
	mu   sync.Mutex
	next int
	subs map[int]func(*StoreError)
}

// NewErrorBus construye el bus.
func NewErrorBus() *ErrorBus {
	return &ErrorBus{subs: make(map[int]func(*StoreError))}
}

// Subscribe registra un oyente y devuelve su cancelación.
func (b *ErrorBus) Subscribe(fn func(*StoreError)) CancelFunc {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Publish notifica a todos los oyentes registrados. Nunca bloquea sobre el
// emisor más allá de la ejecución de los callbacks.
func (b *ErrorBus) Publish(e *StoreError) {
	b.mu.Lock()
	fns := make([]func(*StoreError), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn(e)
	}
}
