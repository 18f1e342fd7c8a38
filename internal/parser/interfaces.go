package parser

import "github.com/Belphemur/CatalogLens/internal/models"

// TableParser turns the raw bytes of a named source into a table.
type TableParser interface {
	ParseTable(name string, data []byte) (*models.Table, error)
}
