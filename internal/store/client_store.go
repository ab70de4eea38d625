package store

import (
	"database/sql"

	"github.com/vbonduro/fieldtech/internal/domain"
)

type ClientStore struct {
	*Table[domain.Client, *domain.Client]
}

func NewClientStore(db *sql.DB) *ClientStore {
	return &ClientStore{NewTable[domain.Client](db, Schema[domain.Client]{
		Table: domain.CollectionClients,
		Columns: []string{
			"name", "contact_name", "email", "phone", "address", "city", "state",
			"postal_code", "account_number", "status", "notes",
		},
		Values: func(c *domain.Client) []any {
			return []any{
				c.Name, c.ContactName, c.Email, c.Phone, c.Address, c.City, c.State,
				c.PostalCode, c.AccountNumber, c.Status, c.Notes,
			}
		},
		Fields: func(c *domain.Client) []any {
			return []any{
				&c.Name, &c.ContactName, &c.Email, &c.Phone, &c.Address, &c.City, &c.State,
				&c.PostalCode, &c.AccountNumber, &c.Status, &c.Notes,
			}
		},
		Filters: map[string]Filter{
			"status": {Column: "status"},
			"state":  {Column: "state"},
			"city":   {Column: "city"},
		},
		Search:      []string{"name", "contact_name", "email", "account_number", "city"},
		Sorts:       map[string]string{"name": "name", "city": "city", "status": "status"},
		DefaultSort: "name",
	})}
}
