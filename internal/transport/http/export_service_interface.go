package http

import (
	"context"

	"chezblos/internal/export"
	"chezblos/pkg/contracts/domain"
)

// ExportServiceInterface defines the contract the export handler depends on.
// Satisfied by *export.Service; tests substitute their own implementation.
type ExportServiceInterface interface {
	ExportOrders(ctx context.Context, records []domain.OrderRecord, opts export.Options) (*export.Artifact, error)
	ExportOrderStats(ctx context.Context, records []domain.OrderRecord, opts export.Options) (*export.Artifact, error)
	ExportStaff(ctx context.Context, records []domain.StaffRecord, opts export.Options) (*export.Artifact, error)
	ExportStaffStats(ctx context.Context, records []domain.StaffRecord, opts export.Options) (*export.Artifact, error)
	ExportStock(ctx context.Context, records []domain.StockRecord, opts export.Options) (*export.Artifact, error)
	ExportStockStats(ctx context.Context, records []domain.StockRecord, opts export.Options) (*export.Artifact, error)
}
