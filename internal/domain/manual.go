package domain

import "github.com/vbonduro/fieldtech/internal/validation"

// Manual is a service manual or document for an equipment model.
type Manual struct {
	Meta
	Title         string        `json:"title"`
	Manufacturer  string        `json:"manufacturer"`
	Model         string        `json:"model"`
	EquipmentType EquipmentType `json:"equipmentType"`
	URL           string        `json:"url"`
	StorageKey    string        `json:"-"`
	MimeType      string        `json:"mimeType"`
	Notes         string        `json:"notes"`
}

func (m *Manual) Validate() error {
	ve := &validation.Errors{}
	validation.Required(ve, "title", m.Title)
	validation.Enum(ve, "equipmentType", m.EquipmentType, EquipmentTypes)
	return ve.Err()
}

// HasFile reports whether an uploaded document is attached.
func (m *Manual) HasFile() bool {
	return m.StorageKey != ""
}
