package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"chezblos/pkg/contracts/domain"
)

// Kind identifies the record family being exported. The value doubles as
// the filename prefix.
type Kind string

const (
	KindOrders Kind = "commandes"
	KindStaff  Kind = "personnel"
	KindStock  Kind = "stock"
)

// Format selects the target artifact format
type Format string

const (
	FormatExcel Format = "excel"
	FormatPDF   Format = "pdf"
)

// Extension returns the file extension for the format
func (f Format) Extension() string {
	if f == FormatPDF {
		return "pdf"
	}
	return "xlsx"
}

// MIME returns the content type for the format
func (f Format) MIME() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Options tunes one export call. The zero value exports a data-only Excel
// workbook under the default filename.
type Options struct {
	// Format defaults to FormatExcel when empty.
	Format Format
	// Filename overrides the default {kind}_chez_blos_{date} name.
	// The extension is always appended by the engine.
	Filename string
	// IncludeStats appends the statistics sheets to a data workbook,
	// up to four sheets total. Ignored for PDF exports, whose template
	// already carries the key-statistics strip.
	IncludeStats bool
}

// Artifact is the finished export: opaque bytes, the filename to save them
// under, and the MIME type to serve them with. It is handed to the download
// trigger and discarded; nothing is retained.
type Artifact struct {
	Filename string
	MIME     string
	Content  []byte
}

// Metrics counts exports per kind and format. All methods are nil-safe so
// the service works without a registry (CLI usage).
type Metrics struct {
	exports  *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// NewMetrics creates and registers the export counters
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chezblos_exports_total",
			Help: "Completed exports by record kind and format.",
		}, []string{"kind", "format"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chezblos_export_failures_total",
			Help: "Failed exports by record kind and format.",
		}, []string{"kind", "format"}),
	}
	if reg != nil {
		reg.MustRegister(m.exports, m.failures)
	}
	return m
}

func (m *Metrics) observe(kind Kind, format Format, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.failures.WithLabelValues(string(kind), string(format)).Inc()
		return
	}
	m.exports.WithLabelValues(string(kind), string(format)).Inc()
}

// Service is the export facade, the only entry point collaborators call.
// It selects formatter, aggregator and builder per record kind and target
// format. Stateless between calls; the clock is the single injected input
// besides the records themselves, so two calls with identical input and
// clock produce byte-identical artifacts.
type Service struct {
	logger   *slog.Logger
	workbook *WorkbookBuilder
	document *DocumentBuilder
	metrics  *Metrics
	clock    func() time.Time
}

// NewService creates the export facade
func NewService(cfg DocumentConfig, logger *slog.Logger, metrics *Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		logger:   logger.With(slog.String("component", "export_service")),
		workbook: NewWorkbookBuilder(logger),
		document: NewDocumentBuilder(cfg, logger),
		metrics:  metrics,
		clock:    time.Now,
	}
}

// SetClock overrides the time source, primarily for deterministic tests
func (s *Service) SetClock(clock func() time.Time) {
	if clock != nil {
		s.clock = clock
	}
}

// Sheet names. French labels are part of the output contract.
const (
	sheetOrders       = "Historique Commandes"
	sheetStaff        = "Personnel"
	sheetStock        = "Stock"
	sheetGeneralStats = "Statistiques Générales"
	sheetByServer     = "Par Serveur"
	sheetByPayment    = "Par Paiement"
	sheetByRole       = "Par Rôle"
	sheetByCategory   = "Par Catégorie"
)

// Column width hints (characters) matching the Formatter's column
// semantics, per record kind.
var (
	orderColWidths = []float64{16, 18, 22, 8, 50, 16, 16, 18}
	staffColWidths = []float64{18, 18, 30, 16, 16, 12, 10, 14}
	stockColWidths = []float64{24, 18, 10, 10, 13, 16, 22, 13, 13}
)

// Document column layouts (mm; zero width = flexible column). The items,
// email and name columns absorb the remaining width and carry the
// character budgets.
var (
	orderDocColumns = []ColumnSpec{
		{Width: 26}, {Width: 30}, {Width: 34}, {Width: 14},
		{Width: 0, MaxChars: 40}, {Width: 28}, {Width: 26}, {Width: 30},
	}
	staffDocColumns = []ColumnSpec{
		{Width: 34}, {Width: 34}, {Width: 0, MaxChars: 40}, {Width: 32},
		{Width: 30}, {Width: 22}, {Width: 20}, {Width: 24},
	}
	stockDocColumns = []ColumnSpec{
		{Width: 0, MaxChars: 40}, {Width: 30}, {Width: 20}, {Width: 16},
		{Width: 22}, {Width: 28}, {Width: 35, MaxChars: 25}, {Width: 24}, {Width: 24},
	}
)

// ExportOrders exports an order collection to the requested format. A nil
// collection violates the caller contract; an empty one is valid and yields
// a header-only artifact.
func (s *Service) ExportOrders(ctx context.Context, records []domain.OrderRecord, opts Options) (*Artifact, error) {
	format := normalizeFormat(opts.Format)
	if records == nil {
		err := newError(KindOrders, format, "precondition", ErrNilRecords)
		s.finish(ctx, KindOrders, format, 0, nil, err)
		return nil, err
	}

	table := BuildOrderTable(records)
	stats := AggregateOrders(records)

	var artifact *Artifact
	var err error
	switch format {
	case FormatPDF:
		artifact, err = s.buildDocument(KindOrders, opts, Document{
			Title:       "Historique des Commandes",
			GeneratedAt: s.clock(),
			Stats: []KeyStat{
				{Label: "Total commandes", Value: formatCount(stats.Total)},
				{Label: "Terminées", Value: formatCount(stats.Done)},
				{Label: "Chiffre d'affaires", Value: FormatMoney(stats.Revenue)},
			},
			Table:   table,
			Columns: orderDocColumns,
		})
	default:
		sheets := []Sheet{{Name: sheetOrders, Table: table, ColWidths: orderColWidths}}
		if opts.IncludeStats {
			sheets = append(sheets, orderStatsSheets(stats)...)
		}
		artifact, err = s.buildWorkbook(KindOrders, opts, sheets)
	}

	s.finish(ctx, KindOrders, format, len(records), artifact, err)
	return artifact, err
}

// ExportStaff exports a staff collection to the requested format
func (s *Service) ExportStaff(ctx context.Context, records []domain.StaffRecord, opts Options) (*Artifact, error) {
	format := normalizeFormat(opts.Format)
	if records == nil {
		err := newError(KindStaff, format, "precondition", ErrNilRecords)
		s.finish(ctx, KindStaff, format, 0, nil, err)
		return nil, err
	}

	table := BuildStaffTable(records)
	stats := AggregateStaff(records)

	var artifact *Artifact
	var err error
	switch format {
	case FormatPDF:
		artifact, err = s.buildDocument(KindStaff, opts, Document{
			Title:       "Liste du Personnel",
			GeneratedAt: s.clock(),
			Stats: []KeyStat{
				{Label: "Total personnel", Value: formatCount(stats.Total)},
				{Label: "Actifs", Value: formatCount(stats.Active)},
				{Label: "Accès caisse", Value: formatCount(stats.CashierAccess)},
			},
			Table:   table,
			Columns: staffDocColumns,
		})
	default:
		sheets := []Sheet{{Name: sheetStaff, Table: table, ColWidths: staffColWidths}}
		if opts.IncludeStats {
			sheets = append(sheets, staffStatsSheets(stats)...)
		}
		artifact, err = s.buildWorkbook(KindStaff, opts, sheets)
	}

	s.finish(ctx, KindStaff, format, len(records), artifact, err)
	return artifact, err
}

// ExportStock exports a stock collection to the requested format
func (s *Service) ExportStock(ctx context.Context, records []domain.StockRecord, opts Options) (*Artifact, error) {
	format := normalizeFormat(opts.Format)
	if records == nil {
		err := newError(KindStock, format, "precondition", ErrNilRecords)
		s.finish(ctx, KindStock, format, 0, nil, err)
		return nil, err
	}

	table := BuildStockTable(records)
	stats := AggregateStock(records)

	var artifact *Artifact
	var err error
	switch format {
	case FormatPDF:
		artifact, err = s.buildDocument(KindStock, opts, Document{
			Title:       "État du Stock",
			GeneratedAt: s.clock(),
			Stats: []KeyStat{
				{Label: "Total articles", Value: formatCount(stats.Total)},
				{Label: "Alertes", Value: formatCount(stats.Low + stats.Out)},
				{Label: "Valorisation", Value: FormatMoney(stats.Valuation)},
			},
			Table:   table,
			Columns: stockDocColumns,
		})
	default:
		sheets := []Sheet{{Name: sheetStock, Table: table, ColWidths: stockColWidths}}
		if opts.IncludeStats {
			sheets = append(sheets, stockStatsSheets(stats)...)
		}
		artifact, err = s.buildWorkbook(KindStock, opts, sheets)
	}

	s.finish(ctx, KindStock, format, len(records), artifact, err)
	return artifact, err
}

// ExportOrderStats exports the order statistics alone, as a workbook with
// the general sheet and both breakdown sheets.
func (s *Service) ExportOrderStats(ctx context.Context, records []domain.OrderRecord, opts Options) (*Artifact, error) {
	if records == nil {
		err := newError(KindOrders, FormatExcel, "precondition", ErrNilRecords)
		s.finish(ctx, KindOrders, FormatExcel, 0, nil, err)
		return nil, err
	}
	opts = s.statsOptions(KindOrders, opts)
	artifact, err := s.buildWorkbook(KindOrders, opts, orderStatsSheets(AggregateOrders(records)))
	s.finish(ctx, KindOrders, FormatExcel, len(records), artifact, err)
	return artifact, err
}

// ExportStaffStats exports the staff statistics alone
func (s *Service) ExportStaffStats(ctx context.Context, records []domain.StaffRecord, opts Options) (*Artifact, error) {
	if records == nil {
		err := newError(KindStaff, FormatExcel, "precondition", ErrNilRecords)
		s.finish(ctx, KindStaff, FormatExcel, 0, nil, err)
		return nil, err
	}
	opts = s.statsOptions(KindStaff, opts)
	artifact, err := s.buildWorkbook(KindStaff, opts, staffStatsSheets(AggregateStaff(records)))
	s.finish(ctx, KindStaff, FormatExcel, len(records), artifact, err)
	return artifact, err
}

// ExportStockStats exports the stock statistics alone
func (s *Service) ExportStockStats(ctx context.Context, records []domain.StockRecord, opts Options) (*Artifact, error) {
	if records == nil {
		err := newError(KindStock, FormatExcel, "precondition", ErrNilRecords)
		s.finish(ctx, KindStock, FormatExcel, 0, nil, err)
		return nil, err
	}
	opts = s.statsOptions(KindStock, opts)
	artifact, err := s.buildWorkbook(KindStock, opts, stockStatsSheets(AggregateStock(records)))
	s.finish(ctx, KindStock, FormatExcel, len(records), artifact, err)
	return artifact, err
}

func (s *Service) buildWorkbook(kind Kind, opts Options, sheets []Sheet) (*Artifact, error) {
	content, err := s.workbook.Build(sheets)
	if err != nil {
		return nil, newError(kind, FormatExcel, "build workbook", err)
	}
	return &Artifact{
		Filename: s.filename(kind, opts, FormatExcel),
		MIME:     FormatExcel.MIME(),
		Content:  content,
	}, nil
}

func (s *Service) buildDocument(kind Kind, opts Options, doc Document) (*Artifact, error) {
	content, err := s.document.Build(doc)
	if err != nil {
		return nil, newError(kind, FormatPDF, "build document", err)
	}
	return &Artifact{
		Filename: s.filename(kind, opts, FormatPDF),
		MIME:     FormatPDF.MIME(),
		Content:  content,
	}, nil
}

func (s *Service) filename(kind Kind, opts Options, format Format) string {
	base := opts.Filename
	if base == "" {
		base = fmt.Sprintf("%s_chez_blos_%s", kind, s.clock().Format("2006-01-02"))
	}
	return base + "." + format.Extension()
}

func (s *Service) finish(ctx context.Context, kind Kind, format Format, count int, artifact *Artifact, err error) {
	s.metrics.observe(kind, format, err)
	if err != nil {
		s.logger.ErrorContext(ctx, "export failed",
			slog.String("kind", string(kind)),
			slog.String("format", string(format)),
			slog.Int("records", count),
			slog.String("error", err.Error()))
		return
	}
	s.logger.InfoContext(ctx, "export completed",
		slog.String("kind", string(kind)),
		slog.String("format", string(format)),
		slog.Int("records", count),
		slog.String("filename", artifact.Filename),
		slog.Int("bytes", len(artifact.Content)))
}

func normalizeFormat(f Format) Format {
	if f == FormatPDF {
		return FormatPDF
	}
	return FormatExcel
}

// statsOptions forces the workbook format and gives statistics-only exports
// their own default filename prefix.
func (s *Service) statsOptions(kind Kind, opts Options) Options {
	opts.Format = FormatExcel
	if opts.Filename == "" {
		opts.Filename = fmt.Sprintf("statistiques_%s_chez_blos_%s", kind, s.clock().Format("2006-01-02"))
	}
	return opts
}

// orderStatsSheets lays the order statistics out as workbook sheets
func orderStatsSheets(stats OrderStats) []Sheet {
	general := Table{
		Columns: []string{"Indicateur", "Valeur"},
		Rows: [][]string{
			{"Total commandes", formatCount(stats.Total)},
			{"Commandes terminées", formatCount(stats.Done)},
			{"Commandes annulées", formatCount(stats.Cancelled)},
			{"Taux de réussite", formatPercent(Percent(stats.Done, stats.Total))},
			{"Chiffre d'affaires", FormatMoney(stats.Revenue)},
		},
	}

	byServer := Table{Columns: []string{"Serveur", "Commandes", "Chiffre d'affaires"}}
	for _, server := range sortedKeys(stats.ByServer) {
		group := stats.ByServer[server]
		byServer.Rows = append(byServer.Rows, []string{
			server, formatCount(group.Count), FormatMoney(group.Amount),
		})
	}

	byPayment := Table{Columns: []string{"Paiement", "Commandes", "Chiffre d'affaires"}}
	for _, payment := range sortedKeys(stats.ByPayment) {
		group := stats.ByPayment[payment]
		byPayment.Rows = append(byPayment.Rows, []string{
			payment, formatCount(group.Count), FormatMoney(group.Amount),
		})
	}

	statsWidths := []float64{26, 14, 20}
	return []Sheet{
		{Name: sheetGeneralStats, Table: general, ColWidths: []float64{26, 20}},
		{Name: sheetByServer, Table: byServer, ColWidths: statsWidths},
		{Name: sheetByPayment, Table: byPayment, ColWidths: statsWidths},
	}
}

// staffStatsSheets lays the staff statistics out as workbook sheets
func staffStatsSheets(stats StaffStats) []Sheet {
	general := Table{
		Columns: []string{"Indicateur", "Valeur"},
		Rows: [][]string{
			{"Total personnel", formatCount(stats.Total)},
			{"Utilisateurs actifs", formatCount(stats.Active)},
			{"Utilisateurs inactifs", formatCount(stats.Inactive)},
			{"Administrateurs", formatCount(stats.ByRole[domain.RoleAdmin])},
			{"Accès caisse", formatCount(stats.CashierAccess)},
		},
	}

	byRole := Table{Columns: []string{"Rôle", "Nombre"}}
	for _, role := range sortedRoles(stats.ByRole) {
		byRole.Rows = append(byRole.Rows, []string{RoleLabel(role), formatCount(stats.ByRole[role])})
	}

	return []Sheet{
		{Name: sheetGeneralStats, Table: general, ColWidths: []float64{26, 20}},
		{Name: sheetByRole, Table: byRole, ColWidths: []float64{22, 12}},
	}
}

// stockStatsSheets lays the stock statistics out as workbook sheets
func stockStatsSheets(stats StockStats) []Sheet {
	general := Table{
		Columns: []string{"Indicateur", "Valeur"},
		Rows: [][]string{
			{"Total articles", formatCount(stats.Total)},
			{"En stock", formatCount(stats.OK)},
			{"Stock bas", formatCount(stats.Low)},
			{"Rupture", formatCount(stats.Out)},
			{"Valorisation totale", FormatMoney(stats.Valuation)},
		},
	}

	byCategory := Table{Columns: []string{"Catégorie", "Articles", "Valorisation"}}
	for _, category := range sortedKeys(stats.ValuationByCategory) {
		group := stats.ValuationByCategory[category]
		byCategory.Rows = append(byCategory.Rows, []string{
			category, formatCount(group.Count), FormatMoney(group.Amount),
		})
	}

	return []Sheet{
		{Name: sheetGeneralStats, Table: general, ColWidths: []float64{26, 20}},
		{Name: sheetByCategory, Table: byCategory, ColWidths: []float64{26, 14, 20}},
	}
}

func formatCount(n int) string {
	return fmt.Sprintf("%d", n)
}

func formatPercent(p float64) string {
	return fmt.Sprintf("%.0f%%", p)
}
