package views

import (
	"github.com/Belphemur/CatalogLens/internal/metrics"
	"github.com/Belphemur/CatalogLens/internal/models"
)

// numberAt reads column as a float for row i. Unparseable cells are counted
// as coercion skips; null cells are silently absent.
func numberAt(t *models.Table, i int, column string) (float64, bool) {
	v, state := t.Float(i, column)
	switch state {
	case models.CellOK:
		return v, true
	case models.CellInvalid:
		metrics.CoercionSkipsTotal.WithLabelValues(column).Inc()
	}
	return 0, false
}

// yearAt reads column as an integer year for row i.
func yearAt(t *models.Table, i int, column string) (int, bool) {
	v, state := t.Int(i, column)
	switch state {
	case models.CellOK:
		return v, true
	case models.CellInvalid:
		metrics.CoercionSkipsTotal.WithLabelValues(column).Inc()
	}
	return 0, false
}
