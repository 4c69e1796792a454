package domain

import (
	"time"
)

// Unit codes used for stock quantities. Free-text codes outside this list
// are passed through unchanged by the export engine.
const (
	UnitPiece      = "piece"
	UnitKilogram   = "kg"
	UnitGram       = "g"
	UnitLitre      = "l"
	UnitCentilitre = "cl"
	UnitBottle     = "bouteille"
)

// StockRecord is an immutable snapshot of one stock item
type StockRecord struct {
	ID              string     `json:"id" validate:"required"`
	Name            string     `json:"name" validate:"required"`
	Category        *string    `json:"category,omitempty"`
	QuantityInStock float64    `json:"quantity_in_stock"`
	Unit            string     `json:"unit"`
	AlertThreshold  float64    `json:"alert_threshold"`
	PurchasePrice   *float64   `json:"purchase_price,omitempty"`
	Supplier        *string    `json:"supplier,omitempty"`
	ExpiryDate      *time.Time `json:"expiry_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
