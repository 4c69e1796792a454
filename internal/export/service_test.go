package export

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chezblos/pkg/contracts/domain"
)

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2026, 8, 29, 14, 5, 0, 0, time.UTC)
	}
}

func newTestService(metrics *Metrics) *Service {
	svc := NewService(DocumentConfig{BrandName: "Chez Blos"}, nil, metrics)
	svc.SetClock(fixedClock())
	return svc
}

func sampleOrders() []domain.OrderRecord {
	cash := domain.PaymentCash
	return []domain.OrderRecord{
		{
			ID:          "ord-1",
			OrderNumber: "CMD-0001",
			Server:      &domain.ServerRef{FirstName: "Awa", LastName: "Diop"},
			Items:       []domain.OrderItem{{Label: "Attiéké poisson", Quantity: 1}},
			TotalAmount: 3500,
			Status:      domain.OrderStatusDone,
			PaymentMethod: &cash,
			CreatedAt:   time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:          "ord-2",
			OrderNumber: "CMD-0002",
			TotalAmount: 1000,
			Status:      domain.OrderStatusCancelled,
			CreatedAt:   time.Date(2026, 8, 29, 12, 30, 0, 0, time.UTC),
		},
	}
}

func sampleStaff() []domain.StaffRecord {
	return []domain.StaffRecord{
		{ID: "1", LastName: "Diop", FirstName: "Awa", Role: domain.RoleAdmin, Active: true},
		{ID: "2", LastName: "Traoré", FirstName: "Moussa", Role: domain.RoleServer, Active: true},
		{ID: "3", LastName: "Kone", FirstName: "Fatou", Role: domain.RoleServer, Active: false},
	}
}

func TestExportOrdersExcelDefaults(t *testing.T) {
	svc := newTestService(nil)

	artifact, err := svc.ExportOrders(context.Background(), sampleOrders(), Options{})
	require.NoError(t, err)

	assert.Equal(t, "commandes_chez_blos_2026-08-29.xlsx", artifact.Filename)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", artifact.MIME)

	f := openWorkbook(t, artifact.Content)
	assert.Equal(t, []string{sheetOrders}, f.GetSheetList())

	rows, err := f.GetRows(sheetOrders)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, OrderColumns(), rows[0])
}

func TestExportOrdersEmptyCollection(t *testing.T) {
	// Empty is valid: one sheet, header row only, still openable.
	svc := newTestService(nil)

	artifact, err := svc.ExportOrders(context.Background(), []domain.OrderRecord{}, Options{})
	require.NoError(t, err)

	f := openWorkbook(t, artifact.Content)
	assert.Equal(t, []string{sheetOrders}, f.GetSheetList())

	rows, err := f.GetRows(sheetOrders)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, OrderColumns(), rows[0])
}

func TestExportOrdersNilCollection(t *testing.T) {
	svc := newTestService(nil)

	_, err := svc.ExportOrders(context.Background(), nil, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNilRecords)

	var exportErr *Error
	require.ErrorAs(t, err, &exportErr)
	assert.Equal(t, KindOrders, exportErr.Kind)
}

func TestExportOrdersWithStatsSheets(t *testing.T) {
	svc := newTestService(nil)

	artifact, err := svc.ExportOrders(context.Background(), sampleOrders(), Options{IncludeStats: true})
	require.NoError(t, err)

	f := openWorkbook(t, artifact.Content)
	assert.Equal(t, []string{sheetOrders, sheetGeneralStats, sheetByServer, sheetByPayment}, f.GetSheetList())

	value, err := f.GetCellValue(sheetGeneralStats, "B2")
	require.NoError(t, err)
	assert.Equal(t, "2", value)
}

func TestExportOrdersPDF(t *testing.T) {
	svc := newTestService(nil)

	artifact, err := svc.ExportOrders(context.Background(), sampleOrders(), Options{Format: FormatPDF})
	require.NoError(t, err)

	assert.Equal(t, "commandes_chez_blos_2026-08-29.pdf", artifact.Filename)
	assert.Equal(t, "application/pdf", artifact.MIME)
	assert.Equal(t, "%PDF-", string(artifact.Content[:5]))
}

func TestExportOrdersDeterministic(t *testing.T) {
	// Fixed input and fixed clock: two invocations, identical bytes.
	records := sampleOrders()

	for _, format := range []Format{FormatExcel, FormatPDF} {
		svc := newTestService(nil)
		first, err := svc.ExportOrders(context.Background(), records, Options{Format: format})
		require.NoError(t, err)
		second, err := svc.ExportOrders(context.Background(), records, Options{Format: format})
		require.NoError(t, err)
		assert.Equal(t, first.Content, second.Content, "format %s", format)
		assert.Equal(t, first.Filename, second.Filename)
	}
}

func TestExportOrdersFilenameOverride(t *testing.T) {
	svc := newTestService(nil)

	artifact, err := svc.ExportOrders(context.Background(), sampleOrders(), Options{Filename: "rapport_soiree"})
	require.NoError(t, err)
	assert.Equal(t, "rapport_soiree.xlsx", artifact.Filename)
}

func TestExportStaffExcel(t *testing.T) {
	svc := newTestService(nil)

	artifact, err := svc.ExportStaff(context.Background(), sampleStaff(), Options{})
	require.NoError(t, err)
	assert.Equal(t, "personnel_chez_blos_2026-08-29.xlsx", artifact.Filename)

	f := openWorkbook(t, artifact.Content)
	rows, err := f.GetRows(sheetStaff)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, StaffColumns(), rows[0])
	// Missing email renders the placeholder in the cell.
	assert.Equal(t, "N/A", rows[1][2])
}

func TestExportStaffStatsScenario(t *testing.T) {
	svc := newTestService(nil)

	artifact, err := svc.ExportStaffStats(context.Background(), sampleStaff(), Options{})
	require.NoError(t, err)
	assert.Equal(t, "statistiques_personnel_chez_blos_2026-08-29.xlsx", artifact.Filename)

	f := openWorkbook(t, artifact.Content)
	assert.Equal(t, []string{sheetGeneralStats, sheetByRole}, f.GetSheetList())

	rows, err := f.GetRows(sheetGeneralStats)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 5)
	assert.Equal(t, []string{"Total personnel", "3"}, rows[1][:2])
	assert.Equal(t, []string{"Utilisateurs actifs", "2"}, rows[2][:2])
	assert.Equal(t, []string{"Administrateurs", "1"}, rows[4][:2])
}

func TestExportOrderStats(t *testing.T) {
	svc := newTestService(nil)

	artifact, err := svc.ExportOrderStats(context.Background(), sampleOrders(), Options{})
	require.NoError(t, err)

	f := openWorkbook(t, artifact.Content)
	assert.Equal(t, []string{sheetGeneralStats, sheetByServer, sheetByPayment}, f.GetSheetList())

	rows, err := f.GetRows(sheetGeneralStats)
	require.NoError(t, err)
	assert.Equal(t, []string{"Chiffre d'affaires", "3 500 FCFA"}, rows[5][:2])
}

func TestExportOrderStatsEmpty(t *testing.T) {
	// Zeroed statistics, 0% success rate, no division by zero.
	svc := newTestService(nil)

	artifact, err := svc.ExportOrderStats(context.Background(), []domain.OrderRecord{}, Options{})
	require.NoError(t, err)

	f := openWorkbook(t, artifact.Content)
	rows, err := f.GetRows(sheetGeneralStats)
	require.NoError(t, err)
	assert.Equal(t, []string{"Total commandes", "0"}, rows[1][:2])
	assert.Equal(t, []string{"Taux de réussite", "0%"}, rows[4][:2])
}

func TestExportStockExcelAndPDF(t *testing.T) {
	price := 100.0
	records := []domain.StockRecord{
		{ID: "1", Name: "Riz", QuantityInStock: 20, Unit: domain.UnitKilogram, AlertThreshold: 5, PurchasePrice: &price,
			UpdatedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
	}
	svc := newTestService(nil)

	excel, err := svc.ExportStock(context.Background(), records, Options{})
	require.NoError(t, err)
	assert.Equal(t, "stock_chez_blos_2026-08-29.xlsx", excel.Filename)

	pdf, err := svc.ExportStock(context.Background(), records, Options{Format: FormatPDF})
	require.NoError(t, err)
	assert.Equal(t, "stock_chez_blos_2026-08-29.pdf", pdf.Filename)
}

func TestExportStockStats(t *testing.T) {
	svc := newTestService(nil)

	artifact, err := svc.ExportStockStats(context.Background(), []domain.StockRecord{}, Options{})
	require.NoError(t, err)

	f := openWorkbook(t, artifact.Content)
	assert.Equal(t, []string{sheetGeneralStats, sheetByCategory}, f.GetSheetList())

	rows, err := f.GetRows(sheetGeneralStats)
	require.NoError(t, err)
	assert.Equal(t, []string{"Valorisation totale", "0 FCFA"}, rows[5][:2])
}

func TestExportMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	svc := newTestService(metrics)

	_, err := svc.ExportOrders(context.Background(), sampleOrders(), Options{})
	require.NoError(t, err)
	_, err = svc.ExportOrders(context.Background(), nil, Options{})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.exports.WithLabelValues("commandes", "excel")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.failures.WithLabelValues("commandes", "excel")))
}
