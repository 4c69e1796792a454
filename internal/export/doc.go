// Package export is the reporting/export engine of Chez Blos.
//
// It turns immutable snapshots of domain records (orders, staff, stock)
// into two downloadable artifacts — a multi-sheet Excel workbook and a
// paginated landscape PDF report — plus derived aggregate statistics.
//
// The package is organized as a small pipeline:
//
//	records -> Formatter (format.go)   -> Table (fixed columns per kind)
//	records -> Aggregator (aggregate.go) -> statistics bundles
//	Table + stats -> WorkbookBuilder (workbook.go) -> xlsx bytes
//	Table + stats -> DocumentBuilder (document.go) -> pdf bytes
//	Service (service.go) -> wires the above per (kind, format) and names
//	the resulting Artifact
//
// Everything is pure or stateless: no package-level mutable state, all
// inputs passed as parameters, clock injected. For a fixed input and clock
// two calls produce byte-identical artifacts.
package export
