package export

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"chezblos/pkg/contracts/domain"
)

// Placeholders substituted for absent optional fields. A missing field never
// removes its column; both builders rely on every row carrying every column.
const (
	placeholderNA        = "N/A"
	placeholderUndefined = "Non défini"
)

// Date layouts shared by the workbook and the document. Single locale, no
// exceptions: dd/mm/yyyy, with time appended where the record carries one.
const (
	dateLayout     = "02/01/2006"
	dateTimeLayout = "02/01/2006 15:04"
)

// Table is the display-ready projection of a record collection: one fixed
// column list and one row of values per record, in input order.
type Table struct {
	Columns []string
	Rows    [][]string
}

// OrderColumns returns the fixed column list for order exports.
// The order is part of the output contract and must not change between the
// spreadsheet and the document.
func OrderColumns() []string {
	return []string{
		"N° Commande", "Date", "Serveur", "Table", "Articles", "Total", "Statut", "Paiement",
	}
}

// StaffColumns returns the fixed column list for staff exports.
func StaffColumns() []string {
	return []string{
		"Nom", "Prénom", "Email", "Téléphone", "Rôle", "Accès Caisse", "Statut", "Créé le",
	}
}

// StockColumns returns the fixed column list for stock exports.
func StockColumns() []string {
	return []string{
		"Nom", "Catégorie", "Quantité", "Unité", "Seuil d'alerte",
		"Prix d'achat", "Fournisseur", "Expiration", "Modifié le",
	}
}

var orderStatusLabels = map[domain.OrderStatus]string{
	domain.OrderStatusPending:   "En attente",
	domain.OrderStatusPreparing: "En préparation",
	domain.OrderStatusDone:      "Terminée",
	domain.OrderStatusCancelled: "Annulée",
}

var paymentMethodLabels = map[domain.PaymentMethod]string{
	domain.PaymentCash:        "Espèces",
	domain.PaymentCard:        "Carte Bancaire",
	domain.PaymentOrangeMoney: "Orange Money",
	domain.PaymentMTNMoney:    "MTN Money",
	domain.PaymentMoovMoney:   "Moov Money",
	domain.PaymentWave:        "Wave",
}

var staffRoleLabels = map[domain.StaffRole]string{
	domain.RoleAdmin:   "Administrateur",
	domain.RoleServer:  "Serveur",
	domain.RoleCook:    "Cuisinier",
	domain.RoleCashier: "Caissier",
}

// StatusLabel maps an order status to its display label. Unknown codes pass
// through unchanged; a stale enum value must never abort an export.
func StatusLabel(s domain.OrderStatus) string {
	if label, ok := orderStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// PaymentLabel maps a payment method to its display label, passing unknown
// codes through unchanged.
func PaymentLabel(p domain.PaymentMethod) string {
	if label, ok := paymentMethodLabels[p]; ok {
		return label
	}
	return string(p)
}

// RoleLabel maps a staff role to its display label, passing unknown codes
// through unchanged.
func RoleLabel(r domain.StaffRole) string {
	if label, ok := staffRoleLabels[r]; ok {
		return label
	}
	return string(r)
}

// ServerDisplayName returns the grouping and display name for an order's
// server: first and last name concatenated and trimmed, or "Non défini" when
// the order carries none. A real server whose name equals the literal
// placeholder lands in the same bucket; that collision is accepted.
func ServerDisplayName(ref *domain.ServerRef) string {
	if ref == nil {
		return placeholderUndefined
	}
	name := strings.TrimSpace(strings.TrimSpace(ref.FirstName) + " " + strings.TrimSpace(ref.LastName))
	if name == "" {
		return placeholderUndefined
	}
	return name
}

// FormatOrderRow projects one order into its display row. Values align with
// OrderColumns by index.
func FormatOrderRow(o domain.OrderRecord) []string {
	table := placeholderNA
	if o.TableNumber != nil {
		table = strconv.Itoa(*o.TableNumber)
	}
	payment := placeholderNA
	if o.PaymentMethod != nil {
		payment = PaymentLabel(*o.PaymentMethod)
	}
	return []string{
		o.OrderNumber,
		FormatDateTime(o.CreatedAt),
		ServerDisplayName(o.Server),
		table,
		itemsSummary(o.Items),
		FormatMoney(o.TotalAmount),
		StatusLabel(o.Status),
		payment,
	}
}

// FormatStaffRow projects one staff member into its display row. The role
// label and the cashier-access flag are rendered side by side; the overlap
// between the two is historical and preserved as-is.
func FormatStaffRow(s domain.StaffRecord) []string {
	email := placeholderNA
	if s.Email != nil && strings.TrimSpace(*s.Email) != "" {
		email = *s.Email
	}
	phone := placeholderNA
	if s.Phone != nil && strings.TrimSpace(*s.Phone) != "" {
		phone = *s.Phone
	}
	access := "Non"
	if s.HasCashierAccess {
		access = "Oui"
	}
	status := "Inactif"
	if s.Active {
		status = "Actif"
	}
	return []string{
		s.LastName,
		s.FirstName,
		email,
		phone,
		RoleLabel(s.Role),
		access,
		status,
		FormatDate(s.CreatedAt),
	}
}

// FormatStockRow projects one stock item into its display row.
func FormatStockRow(it domain.StockRecord) []string {
	category := placeholderUndefined
	if it.Category != nil && strings.TrimSpace(*it.Category) != "" {
		category = *it.Category
	}
	price := placeholderNA
	if it.PurchasePrice != nil {
		price = FormatMoney(*it.PurchasePrice)
	}
	supplier := placeholderUndefined
	if it.Supplier != nil && strings.TrimSpace(*it.Supplier) != "" {
		supplier = *it.Supplier
	}
	expiry := placeholderNA
	if it.ExpiryDate != nil {
		expiry = FormatDate(*it.ExpiryDate)
	}
	return []string{
		it.Name,
		category,
		FormatQuantity(it.QuantityInStock),
		it.Unit,
		FormatQuantity(it.AlertThreshold),
		price,
		supplier,
		expiry,
		FormatDate(it.UpdatedAt),
	}
}

// BuildOrderTable projects a collection of orders into a Table, keeping
// input order.
func BuildOrderTable(records []domain.OrderRecord) Table {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, FormatOrderRow(rec))
	}
	return Table{Columns: OrderColumns(), Rows: rows}
}

// BuildStaffTable projects a collection of staff members into a Table.
func BuildStaffTable(records []domain.StaffRecord) Table {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, FormatStaffRow(rec))
	}
	return Table{Columns: StaffColumns(), Rows: rows}
}

// BuildStockTable projects a collection of stock items into a Table.
func BuildStockTable(records []domain.StockRecord) Table {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, FormatStockRow(rec))
	}
	return Table{Columns: StockColumns(), Rows: rows}
}

// FormatMoney renders an amount in CFA francs with French thousands grouping
// and no decimal places. The separator is a non-breaking space pinned here
// rather than taken from locale tables, so the artifact bytes cannot drift
// with a library upgrade.
func FormatMoney(amount float64) string {
	n := int64(amount + 0.5)
	if amount < 0 {
		n = int64(amount - 0.5)
	}
	return groupThousands(n) + " FCFA"
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(s[i : i+3])
	}
	return sign + b.String()
}

// FormatDate renders a date as dd/mm/yyyy.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// FormatDateTime renders a timestamp as dd/mm/yyyy hh:mm.
func FormatDateTime(t time.Time) string {
	return t.Format(dateTimeLayout)
}

// FormatQuantity renders a stock quantity without trailing zeros.
func FormatQuantity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// itemsSummary flattens order lines into "2x Poulet braisé, 1x Jus de
// bissap". Lines referencing a menu item use the catalog label.
func itemsSummary(items []domain.OrderItem) string {
	if len(items) == 0 {
		return placeholderNA
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		label := item.Label
		if item.MenuItemLabel != "" {
			label = item.MenuItemLabel
		}
		parts = append(parts, fmt.Sprintf("%dx %s", item.Quantity, label))
	}
	return strings.Join(parts, ", ")
}
