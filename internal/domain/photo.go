package domain

import (
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/vbonduro/fieldtech/internal/validation"
)

type OwnerType string

const (
	OwnerEquipment  OwnerType = "equipment"
	OwnerRepair     OwnerType = "repair"
	OwnerInspection OwnerType = "inspection"
	OwnerClient     OwnerType = "client"
)

var OwnerTypes = []OwnerType{OwnerEquipment, OwnerRepair, OwnerInspection, OwnerClient}

type Photo struct {
	Meta
	OwnerType  OwnerType `json:"ownerType"`
	OwnerID    uuid.UUID `json:"ownerId"`
	StorageKey string    `json:"-"`
	MimeType   string    `json:"mimeType"`
	Caption    string    `json:"caption"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func (p *Photo) Validate() error {
	ve := &validation.Errors{}
	validation.Required(ve, "ownerType", string(p.OwnerType))
	validation.Enum(ve, "ownerType", p.OwnerType, OwnerTypes)
	validation.RequiredID(ve, "ownerId", p.OwnerID)
	validation.Required(ve, "storageKey", p.StorageKey)
	return ve.Err()
}
