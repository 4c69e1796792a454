package domain

import (
	"time"
)

// StaffRole represents the role of a staff member.
//
// Historical quirk kept on purpose: "caissier" exists both as a role of its
// own and as the HasCashierAccess capability flag on other roles (mostly
// servers). Both are exported as-is; neither is authoritative alone.
type StaffRole string

const (
	RoleAdmin   StaffRole = "admin"
	RoleServer  StaffRole = "serveur"
	RoleCook    StaffRole = "cuisinier"
	RoleCashier StaffRole = "caissier"
)

// StaffRecord is an immutable snapshot of one staff member
type StaffRecord struct {
	ID               string    `json:"id" validate:"required"`
	LastName         string    `json:"last_name" validate:"required"`
	FirstName        string    `json:"first_name" validate:"required"`
	Email            *string   `json:"email,omitempty" validate:"omitempty,email"`
	Phone            *string   `json:"phone,omitempty"`
	Role             StaffRole `json:"role"`
	HasCashierAccess bool      `json:"has_cashier_access"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"created_at"`
}
