package export

import (
	"sort"
	"strings"

	"chezblos/pkg/contracts/domain"
)

// GroupStat is one bucket of a group-by breakdown: how many records landed
// in it and the money they represent.
type GroupStat struct {
	Count  int
	Amount float64
}

// OrderStats is the statistics bundle computed over a collection of orders.
// Revenue counts terminated orders only; cancelled and in-flight orders
// contribute to counts, never to revenue.
type OrderStats struct {
	Total     int
	ByStatus  map[domain.OrderStatus]int
	Done      int
	Cancelled int
	Revenue   float64
	// ByServer groups by the trimmed concatenated server name. Orders
	// without a server land in the literal "Non défini" bucket.
	ByServer  map[string]GroupStat
	ByPayment map[string]GroupStat
}

// StaffStats is the statistics bundle computed over a staff collection.
type StaffStats struct {
	Total         int
	Active        int
	Inactive      int
	ByRole        map[domain.StaffRole]int
	CashierAccess int
}

// StockStats is the statistics bundle computed over a stock collection.
// OK/Low/Out partition the collection by quantity against the alert
// threshold; Valuation is Σ purchase-price × quantity, with a missing price
// counting as zero.
type StockStats struct {
	Total               int
	OK                  int
	Low                 int
	Out                 int
	Valuation           float64
	ValuationByCategory map[string]GroupStat
}

// AggregateOrders computes OrderStats over the given collection. Pure: the
// same input always yields the same bundle, and an empty collection yields
// an all-zero one.
func AggregateOrders(records []domain.OrderRecord) OrderStats {
	stats := OrderStats{
		ByStatus:  make(map[domain.OrderStatus]int),
		ByServer:  make(map[string]GroupStat),
		ByPayment: make(map[string]GroupStat),
	}
	for _, rec := range records {
		stats.Total++
		stats.ByStatus[rec.Status]++

		revenue := 0.0
		switch rec.Status {
		case domain.OrderStatusDone:
			stats.Done++
			revenue = rec.TotalAmount
			stats.Revenue += revenue
		case domain.OrderStatusCancelled:
			stats.Cancelled++
		}

		server := ServerDisplayName(rec.Server)
		byServer := stats.ByServer[server]
		byServer.Count++
		byServer.Amount += revenue
		stats.ByServer[server] = byServer

		payment := placeholderNA
		if rec.PaymentMethod != nil {
			payment = PaymentLabel(*rec.PaymentMethod)
		}
		byPayment := stats.ByPayment[payment]
		byPayment.Count++
		byPayment.Amount += revenue
		stats.ByPayment[payment] = byPayment
	}
	return stats
}

// AggregateStaff computes StaffStats over the given collection.
func AggregateStaff(records []domain.StaffRecord) StaffStats {
	stats := StaffStats{
		ByRole: make(map[domain.StaffRole]int),
	}
	for _, rec := range records {
		stats.Total++
		if rec.Active {
			stats.Active++
		} else {
			stats.Inactive++
		}
		stats.ByRole[rec.Role]++
		if rec.HasCashierAccess {
			stats.CashierAccess++
		}
	}
	return stats
}

// AggregateStock computes StockStats over the given collection.
func AggregateStock(records []domain.StockRecord) StockStats {
	stats := StockStats{
		ValuationByCategory: make(map[string]GroupStat),
	}
	for _, rec := range records {
		stats.Total++
		switch {
		case rec.QuantityInStock <= 0:
			stats.Out++
		case rec.QuantityInStock <= rec.AlertThreshold:
			stats.Low++
		default:
			stats.OK++
		}

		value := 0.0
		if rec.PurchasePrice != nil {
			value = *rec.PurchasePrice * rec.QuantityInStock
		}
		stats.Valuation += value

		category := placeholderUndefined
		if rec.Category != nil && strings.TrimSpace(*rec.Category) != "" {
			category = *rec.Category
		}
		byCategory := stats.ValuationByCategory[category]
		byCategory.Count++
		byCategory.Amount += value
		stats.ValuationByCategory[category] = byCategory
	}
	return stats
}

// Percent returns part/total as a whole percentage. A zero total yields 0,
// never a division by zero; empty collections produce 0% lines everywhere.
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// sortedKeys returns the bucket names of a group-by in lexical order, so
// that sheet and table rows come out identical on every run.
func sortedKeys(groups map[string]GroupStat) []string {
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// sortedRoles returns the roles of a role breakdown in lexical order.
func sortedRoles(byRole map[domain.StaffRole]int) []domain.StaffRole {
	roles := make([]domain.StaffRole, 0, len(byRole))
	for role := range byRole {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}
