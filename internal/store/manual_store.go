package store

import (
	"database/sql"

	"github.com/vbonduro/fieldtech/internal/domain"
)

type ManualStore struct {
	*Table[domain.Manual, *domain.Manual]
}

func NewManualStore(db *sql.DB) *ManualStore {
	return &ManualStore{NewTable[domain.Manual](db, Schema[domain.Manual]{
		Table: domain.CollectionManuals,
		Columns: []string{
			"title", "manufacturer", "model", "equipment_type", "url", "storage_key", "mime_type", "notes",
		},
		Values: func(m *domain.Manual) []any {
			return []any{m.Title, m.Manufacturer, m.Model, m.EquipmentType, m.URL, m.StorageKey, m.MimeType, m.Notes}
		},
		Fields: func(m *domain.Manual) []any {
			return []any{&m.Title, &m.Manufacturer, &m.Model, &m.EquipmentType, &m.URL, &m.StorageKey, &m.MimeType, &m.Notes}
		},
		Filters: map[string]Filter{
			"manufacturer":  {Column: "manufacturer"},
			"model":         {Column: "model"},
			"equipmentType": {Column: "equipment_type"},
		},
		Search:      []string{"title", "manufacturer", "model", "notes"},
		Sorts:       map[string]string{"title": "title", "manufacturer": "manufacturer"},
		DefaultSort: "title",
	})}
}
