package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/receipt-reconciler/internal/reconcile"
)

// columns fixes the report column order and the human-facing labels. The
// same transform feeds the CSV and XLSX writers.
type column struct {
	label string
	value func(r *reconcile.Record) any
}

func boolFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

var columns = []column{
	{"Relative Path", func(r *reconcile.Record) any { return r.RelativePath }},
	{"Directory", func(r *reconcile.Record) any { return r.Directory }},
	{"Filename", func(r *reconcile.Record) any { return r.Filename }},
	{"Content Type", func(r *reconcile.Record) any { return r.ContentType }},
	{"File Size", func(r *reconcile.Record) any { return r.FileSize }},
	{"Modified At", func(r *reconcile.Record) any { return fmtTime(r.ModifiedAt) }},
	{"Created At", func(r *reconcile.Record) any { return fmtTime(r.CreatedAt) }},
	{"Changed At", func(r *reconcile.Record) any { return fmtTime(r.ChangedAt) }},
	{"Fingerprint", func(r *reconcile.Record) any { return r.Fingerprint }},
	{"Total Amount", func(r *reconcile.Record) any { return r.TotalAmount }},
	{"Total Amount Text", func(r *reconcile.Record) any { return r.TotalAmountText }},
	{"Tax Amount", func(r *reconcile.Record) any { return r.TaxAmount }},
	{"Tax Amount Text", func(r *reconcile.Record) any { return r.TaxAmountText }},
	{"Date", func(r *reconcile.Record) any { return r.Date }},
	{"Date Text", func(r *reconcile.Record) any { return r.DateText }},
	{"Merchant Name", func(r *reconcile.Record) any { return r.MerchantName }},
	{"Merchant Name Text", func(r *reconcile.Record) any { return r.MerchantNameText }},
	{"Merchant Address", func(r *reconcile.Record) any { return r.MerchantAddress }},
	{"Merchant Address Text", func(r *reconcile.Record) any { return r.MerchantAddressText }},
	{"Text", func(r *reconcile.Record) any { return r.Text }},
	{"OCR Error", func(r *reconcile.Record) any { return boolFlag(r.OCRErrorOccurred) }},
}

// Service writes the reconciliation report in its three on-disk forms:
// CSV, indented JSON, and an XLSX workbook.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// WriteCSV writes the report as a headered CSV with the fixed column order.
func (s *Service) WriteCSV(w io.Writer, recs []reconcile.Record) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.label
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}

	row := make([]string, len(columns))
	for i := range recs {
		for j, c := range columns {
			row[j] = fmt.Sprintf("%v", c.value(&recs[i]))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the report as an indented, newline-terminated JSON array.
func (s *Service) WriteJSON(w io.Writer, recs []reconcile.Record) error {
	b, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("json write: %w", err)
	}
	return nil
}

// BuildXLSX returns an XLSX workbook (as bytes) for the report.
func (s *Service) BuildXLSX(recs []reconcile.Record) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Reconciliation"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	for i, c := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, c.label)
	}

	for i := range recs {
		for j, c := range columns {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			_ = f.SetCellValue(sheet, cell, c.value(&recs[i]))
		}
	}

	// Widen the columns that carry paths and free text
	_ = f.SetColWidth(sheet, "A", "A", 40) // relative path
	_ = f.SetColWidth(sheet, "I", "I", 40) // fingerprint
	_ = f.SetColWidth(sheet, "P", "S", 24) // merchant fields
	_ = f.SetColWidth(sheet, "T", "T", 60) // text

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteAll writes results.csv, results.json, and results.xlsx into outDir.
func (s *Service) WriteAll(outDir string, recs []reconcile.Record) error {
	start := time.Now()
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	csvPath := filepath.Join(outDir, "results.csv")
	cf, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", csvPath, err)
	}
	if err := s.WriteCSV(cf, recs); err != nil {
		cf.Close()
		return err
	}
	if err := cf.Close(); err != nil {
		return err
	}

	jsonPath := filepath.Join(outDir, "results.json")
	jf, err := os.Create(jsonPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", jsonPath, err)
	}
	if err := s.WriteJSON(jf, recs); err != nil {
		jf.Close()
		return err
	}
	if err := jf.Close(); err != nil {
		return err
	}

	xlsxBytes, err := s.BuildXLSX(recs)
	if err != nil {
		return err
	}
	xlsxPath := filepath.Join(outDir, "results.xlsx")
	if err := os.WriteFile(xlsxPath, xlsxBytes, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", xlsxPath, err)
	}

	s.logger.Info("export.ok",
		"rows", len(recs),
		"out_dir", outDir,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
