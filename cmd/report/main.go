package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"chezblos/internal/config"
	"chezblos/internal/export"
	"chezblos/internal/infrastructure"
	"chezblos/pkg/contracts/domain"
)

// reportFlags holds the parsed command line options
type reportFlags struct {
	kind     string
	input    string
	output   string
	format   string
	stats    bool
	filename string
}

func main() {
	flags := parseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := infrastructure.MustInitializeLogger(cfg.Logging)

	svc := export.NewService(export.DocumentConfig{
		BrandName: cfg.Export.BrandName,
		LogoPath:  cfg.Export.LogoPath,
	}, logger, nil)

	if err := run(context.Background(), svc, logger, flags); err != nil {
		logger.Error("report generation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func parseFlags() reportFlags {
	var flags reportFlags
	flag.StringVar(&flags.kind, "kind", "", "record kind: commandes, personnel or stock")
	flag.StringVar(&flags.input, "in", "", "path to the JSON snapshot of records")
	flag.StringVar(&flags.output, "out", ".", "directory to write the artifacts into")
	flag.StringVar(&flags.format, "format", "both", "artifact format: excel, pdf or both")
	flag.BoolVar(&flags.stats, "stats", false, "append statistics sheets to the Excel workbook")
	flag.StringVar(&flags.filename, "name", "", "override the default artifact filename (without extension)")
	flag.Parse()

	if flags.kind == "" || flags.input == "" {
		fmt.Fprintln(os.Stderr, "usage: report -kind <commandes|personnel|stock> -in <records.json> [-out dir] [-format excel|pdf|both] [-stats]")
		os.Exit(2)
	}
	return flags
}

// run loads the snapshot and builds every requested artifact. Formats are
// built concurrently; each one walks the records independently.
func run(ctx context.Context, svc *export.Service, logger *slog.Logger, flags reportFlags) error {
	formats, err := resolveFormats(flags.format)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(flags.output, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	build, err := newBuilder(svc, flags)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, format := range formats {
		format := format
		g.Go(func() error {
			artifact, err := build(ctx, format)
			if err != nil {
				return err
			}

			path := filepath.Join(flags.output, artifact.Filename)
			if err := os.WriteFile(path, artifact.Content, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}

			logger.Info("artifact written",
				slog.String("path", path),
				slog.Int("bytes", len(artifact.Content)),
			)
			return nil
		})
	}
	return g.Wait()
}

// buildFunc builds one artifact for the given format
type buildFunc func(ctx context.Context, format export.Format) (*export.Artifact, error)

// newBuilder decodes the snapshot for the requested kind and returns a
// builder closed over the records
func newBuilder(svc *export.Service, flags reportFlags) (buildFunc, error) {
	data, err := os.ReadFile(flags.input)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	opts := func(format export.Format) export.Options {
		return export.Options{
			Format:       format,
			Filename:     flags.filename,
			IncludeStats: flags.stats,
		}
	}

	switch export.Kind(flags.kind) {
	case export.KindOrders:
		var records []domain.OrderRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decode orders snapshot: %w", err)
		}
		if records == nil {
			records = []domain.OrderRecord{}
		}
		return func(ctx context.Context, format export.Format) (*export.Artifact, error) {
			return svc.ExportOrders(ctx, records, opts(format))
		}, nil
	case export.KindStaff:
		var records []domain.StaffRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decode staff snapshot: %w", err)
		}
		if records == nil {
			records = []domain.StaffRecord{}
		}
		return func(ctx context.Context, format export.Format) (*export.Artifact, error) {
			return svc.ExportStaff(ctx, records, opts(format))
		}, nil
	case export.KindStock:
		var records []domain.StockRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decode stock snapshot: %w", err)
		}
		if records == nil {
			records = []domain.StockRecord{}
		}
		return func(ctx context.Context, format export.Format) (*export.Artifact, error) {
			return svc.ExportStock(ctx, records, opts(format))
		}, nil
	default:
		return nil, fmt.Errorf("unknown kind %q", flags.kind)
	}
}

// resolveFormats expands the format flag into the list of artifacts to build
func resolveFormats(format string) ([]export.Format, error) {
	switch format {
	case "both", "":
		return []export.Format{export.FormatExcel, export.FormatPDF}, nil
	case string(export.FormatExcel):
		return []export.Format{export.FormatExcel}, nil
	case string(export.FormatPDF):
		return []export.Format{export.FormatPDF}, nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}
