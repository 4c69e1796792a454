package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"chezblos/pkg/contracts/domain"
)

func order(total float64, status domain.OrderStatus, server *domain.ServerRef, payment *domain.PaymentMethod) domain.OrderRecord {
	return domain.OrderRecord{
		ID:            "ord",
		OrderNumber:   "CMD",
		TotalAmount:   total,
		Status:        status,
		Server:        server,
		PaymentMethod: payment,
		CreatedAt:     time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestAggregateOrdersRevenue(t *testing.T) {
	records := []domain.OrderRecord{
		order(1000, domain.OrderStatusDone, nil, nil),
		order(500, domain.OrderStatusCancelled, nil, nil),
		order(2000, domain.OrderStatusDone, nil, nil),
	}

	stats := AggregateOrders(records)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Done)
	assert.Equal(t, 1, stats.Cancelled)
	assert.Equal(t, 3000.0, stats.Revenue)
	assert.Equal(t, 2, stats.ByStatus[domain.OrderStatusDone])
	assert.Equal(t, 1, stats.ByStatus[domain.OrderStatusCancelled])
}

func TestAggregateOrdersByServer(t *testing.T) {
	awa := &domain.ServerRef{FirstName: "Awa", LastName: "Diop"}
	records := []domain.OrderRecord{
		order(1000, domain.OrderStatusDone, awa, nil),
		order(2000, domain.OrderStatusDone, awa, nil),
		order(500, domain.OrderStatusCancelled, awa, nil),
		order(3000, domain.OrderStatusDone, nil, nil),
	}

	stats := AggregateOrders(records)

	assert.Equal(t, GroupStat{Count: 3, Amount: 3000}, stats.ByServer["Awa Diop"])
	// Serverless orders land in the literal fallback bucket.
	assert.Equal(t, GroupStat{Count: 1, Amount: 3000}, stats.ByServer["Non défini"])
}

func TestAggregateOrdersFallbackBucketCollision(t *testing.T) {
	// A server literally named "Non défini" shares the fallback bucket.
	// Documented, accepted collision.
	odd := &domain.ServerRef{FirstName: "Non", LastName: "défini"}
	records := []domain.OrderRecord{
		order(1000, domain.OrderStatusDone, odd, nil),
		order(2000, domain.OrderStatusDone, nil, nil),
	}

	stats := AggregateOrders(records)
	assert.Len(t, stats.ByServer, 1)
	assert.Equal(t, GroupStat{Count: 2, Amount: 3000}, stats.ByServer["Non défini"])
}

func TestAggregateOrdersByPayment(t *testing.T) {
	cash := domain.PaymentCash
	om := domain.PaymentOrangeMoney
	records := []domain.OrderRecord{
		order(1000, domain.OrderStatusDone, nil, &cash),
		order(2000, domain.OrderStatusDone, nil, &om),
		order(1500, domain.OrderStatusCancelled, nil, &cash),
		order(700, domain.OrderStatusDone, nil, nil),
	}

	stats := AggregateOrders(records)
	assert.Equal(t, GroupStat{Count: 2, Amount: 1000}, stats.ByPayment["Espèces"])
	assert.Equal(t, GroupStat{Count: 1, Amount: 2000}, stats.ByPayment["Orange Money"])
	assert.Equal(t, GroupStat{Count: 1, Amount: 700}, stats.ByPayment["N/A"])
}

func TestAggregateOrdersEmpty(t *testing.T) {
	stats := AggregateOrders([]domain.OrderRecord{})
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0.0, stats.Revenue)
	assert.Empty(t, stats.ByServer)
	assert.Empty(t, stats.ByPayment)
}

func TestAggregateOrdersDeterministic(t *testing.T) {
	awa := &domain.ServerRef{FirstName: "Awa", LastName: "Diop"}
	records := []domain.OrderRecord{
		order(1000, domain.OrderStatusDone, awa, nil),
		order(2000, domain.OrderStatusPending, nil, nil),
	}
	assert.Equal(t, AggregateOrders(records), AggregateOrders(records))
}

func TestAggregateStaff(t *testing.T) {
	records := []domain.StaffRecord{
		{ID: "1", LastName: "A", FirstName: "A", Role: domain.RoleAdmin, Active: true},
		{ID: "2", LastName: "B", FirstName: "B", Role: domain.RoleServer, Active: true, HasCashierAccess: true},
		{ID: "3", LastName: "C", FirstName: "C", Role: domain.RoleServer, Active: false},
	}

	stats := AggregateStaff(records)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Active)
	assert.Equal(t, 1, stats.Inactive)
	assert.Equal(t, 1, stats.ByRole[domain.RoleAdmin])
	assert.Equal(t, 2, stats.ByRole[domain.RoleServer])
	assert.Equal(t, 1, stats.CashierAccess)
}

func TestAggregateStockBuckets(t *testing.T) {
	price := 100.0
	records := []domain.StockRecord{
		{ID: "1", Name: "ok", QuantityInStock: 10, AlertThreshold: 5, PurchasePrice: &price},
		{ID: "2", Name: "low", QuantityInStock: 5, AlertThreshold: 5},
		{ID: "3", Name: "low2", QuantityInStock: 1, AlertThreshold: 5},
		{ID: "4", Name: "out", QuantityInStock: 0, AlertThreshold: 5},
	}

	stats := AggregateStock(records)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.OK)
	assert.Equal(t, 2, stats.Low)
	assert.Equal(t, 1, stats.Out)
}

func TestAggregateStockValuation(t *testing.T) {
	price := 100.0
	boissons := "Boissons"
	records := []domain.StockRecord{
		{ID: "1", Name: "a", QuantityInStock: 5, PurchasePrice: &price, Category: &boissons},
		// Missing purchase price counts as zero, never panics.
		{ID: "2", Name: "b", QuantityInStock: 3},
	}

	stats := AggregateStock(records)
	assert.Equal(t, 500.0, stats.Valuation)
	assert.Equal(t, GroupStat{Count: 1, Amount: 500}, stats.ValuationByCategory["Boissons"])
	assert.Equal(t, GroupStat{Count: 1, Amount: 0}, stats.ValuationByCategory["Non défini"])
}

func TestAggregateStockEmpty(t *testing.T) {
	stats := AggregateStock([]domain.StockRecord{})
	assert.Equal(t, StockStats{ValuationByCategory: map[string]GroupStat{}}, stats)
}

func TestPercentZeroDenominator(t *testing.T) {
	// 0% on an empty collection, never a division by zero.
	assert.Equal(t, 0.0, Percent(0, 0))
	assert.Equal(t, 0.0, Percent(5, 0))
	assert.InDelta(t, 66.66, Percent(2, 3), 0.01)
	assert.Equal(t, 100.0, Percent(3, 3))
}
