package sync

import (
	"github.com/RafaelPasos/PaystubGen-App/internal/docstore"
	"github.com/RafaelPasos/PaystubGen-App/pkg/logger"
)

// Reconciler calcula el diff mínimo entre el overlay y el último estado
// conocido del Aggregate y lo arma como un único lote atómico. El Provider
// confirma el lote fuera de su lock; por eso construir y confirmar van
// separados.
type Reconciler struct {
	store docstore.Store
	log   *logger.Logger
}

// NewReconciler construye el reconciliador.
func NewReconciler(store docstore.Store, log *logger.Logger) *Reconciler {
	return &Reconciler{store: store, log: log}
}

// BuildBatch arma el lote de guardado:
//   - un update por cada tarifa del overlay distinta del payRate del ítem;
//   - un update por cada entrada con id real cuya cantidad difiera de la base;
//   - un create por cada entrada provisional (id local) con cantidad
//     distinta de cero — nunca se crean filas de historial vacías.
//
// Todas las operaciones, de ambas categorías y de todos los equipos y
// empleados afectados, viajan en el mismo lote. Un lote de longitud cero
// significa que no había nada que guardar.
func (r *Reconciler) BuildBatch(agg *Aggregate, draft *Draft) docstore.Batch {
	batch := r.store.Batch()

	for itemID, rate := range draft.Rates() {
		item, ok := agg.ItemByID(itemID)
		if !ok {
			// El ítem desapareció del servidor después de la edición; el
			// overlay se re-sembrará cuando llegue el snapshot.
			continue
		}
		if !rate.Equal(item.PayRate) {
			batch.Update(docstore.ItemPath(item.TeamID, itemID), map[string]any{
				"payRate": rate.String(),
			})
		}
	}

	for _, en := range draft.Entries() {
		if IsLocalID(en.ID) {
			if en.Quantity == 0 {
				continue
			}
			emp, ok := agg.EmployeeByID(en.EmployeeID)
			if !ok {
				continue
			}
			batch.Create(docstore.EntriesCollection(emp.TeamID, emp.ID), en.DocData())
			continue
		}

		base, ok := agg.EntryByID(en.ID)
		if !ok || base.Quantity == en.Quantity {
			continue
		}
		emp, ok := agg.EmployeeByID(en.EmployeeID)
		if !ok {
			continue
		}
		batch.Update(docstore.EntryPath(emp.TeamID, emp.ID, en.ID), map[string]any{
			"quantity": en.Quantity,
		})
	}

	return batch
}
