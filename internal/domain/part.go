package domain

import (
	"github.com/shopspring/decimal"

	"github.com/vbonduro/fieldtech/internal/validation"
)

// Part is an inventory item.
type Part struct {
	Meta
	PartNumber       string          `json:"partNumber"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Manufacturer     string          `json:"manufacturer"`
	Category         string          `json:"category"`
	UnitCost         decimal.Decimal `json:"unitCost"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	QuantityOnHand   int             `json:"quantityOnHand"`
	ReorderThreshold int             `json:"reorderThreshold"`
	ReorderQuantity  int             `json:"reorderQuantity"`
	QuantityOnOrder  int             `json:"quantityOnOrder"`
	Location         string          `json:"location"`
	Supplier         string          `json:"supplier"`
}

func (p *Part) Validate() error {
	ve := &validation.Errors{}
	validation.Required(ve, "partNumber", p.PartNumber)
	validation.Required(ve, "name", p.Name)
	validation.DecimalNonNegative(ve, "unitCost", p.UnitCost)
	validation.DecimalNonNegative(ve, "unitPrice", p.UnitPrice)
	validation.NonNegative(ve, "quantityOnHand", p.QuantityOnHand)
	validation.NonNegative(ve, "reorderThreshold", p.ReorderThreshold)
	validation.NonNegative(ve, "reorderQuantity", p.ReorderQuantity)
	validation.NonNegative(ve, "quantityOnOrder", p.QuantityOnOrder)
	return ve.Err()
}

// NeedsReorder reports whether stock is at or below the threshold.
func (p *Part) NeedsReorder() bool {
	return p.QuantityOnHand <= p.ReorderThreshold
}
