package domain

import "github.com/vbonduro/fieldtech/internal/validation"

type ClientStatus string

const (
	ClientActive   ClientStatus = "active"
	ClientInactive ClientStatus = "inactive"
	ClientProspect ClientStatus = "prospect"
)

var ClientStatuses = []ClientStatus{ClientActive, ClientInactive, ClientProspect}

// Client is a dental clinic account.
type Client struct {
	Meta
	Name          string       `json:"name"`
	ContactName   string       `json:"contactName"`
	Email         string       `json:"email"`
	Phone         string       `json:"phone"`
	Address       string       `json:"address"`
	City          string       `json:"city"`
	State         string       `json:"state"`
	PostalCode    string       `json:"postalCode"`
	AccountNumber string       `json:"accountNumber"`
	Status        ClientStatus `json:"status"`
	Notes         string       `json:"notes"`
}

func (c *Client) Validate() error {
	ve := &validation.Errors{}
	validation.Required(ve, "name", c.Name)
	validation.MaxLength(ve, "name", c.Name, 200)
	validation.Email(ve, "email", c.Email)
	validation.Enum(ve, "status", c.Status, ClientStatuses)
	return ve.Err()
}

func (c *Client) Defaults() {
	if c.Status == "" {
		c.Status = ClientActive
	}
}
