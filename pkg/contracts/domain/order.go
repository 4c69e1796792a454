package domain

import (
	"time"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "en_attente"
	OrderStatusPreparing OrderStatus = "en_preparation"
	OrderStatusDone      OrderStatus = "terminee"
	OrderStatusCancelled OrderStatus = "annulee"
)

// PaymentMethod represents how an order was paid
type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "especes"
	PaymentCard        PaymentMethod = "carte"
	PaymentOrangeMoney PaymentMethod = "orange_money"
	PaymentMTNMoney    PaymentMethod = "mtn_money"
	PaymentMoovMoney   PaymentMethod = "moov_money"
	PaymentWave        PaymentMethod = "wave"
)

// ServerRef identifies the staff member who took an order.
// Orders taken at the counter carry no server.
type ServerRef struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// OrderItem is a single line of an order
type OrderItem struct {
	Label     string   `json:"label" validate:"required"`
	Quantity  int      `json:"quantity" validate:"min=1"`
	UnitPrice *float64 `json:"unit_price,omitempty"`
	// MenuItemLabel is the catalog label when the line references a menu item;
	// free-entry lines leave it empty and rely on Label.
	MenuItemLabel string `json:"menu_item_label,omitempty"`
}

// OrderRecord is an immutable snapshot of one order as supplied by the
// caller. The export engine never mutates or persists it.
type OrderRecord struct {
	ID            string         `json:"id" validate:"required"`
	OrderNumber   string         `json:"order_number" validate:"required"`
	Server        *ServerRef     `json:"server,omitempty"`
	TableNumber   *int           `json:"table_number,omitempty"`
	Items         []OrderItem    `json:"items"`
	TotalAmount   float64        `json:"total_amount"`
	Status        OrderStatus    `json:"status"`
	PaymentMethod *PaymentMethod `json:"payment_method,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}
