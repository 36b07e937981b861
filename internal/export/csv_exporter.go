package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ps-vitor/espc-sys/internal/domain"
	"github.com/ps-vitor/espc-sys/pkg/logger"
)

// utf8BOM lets spreadsheet tools pick the right encoding for "£" and
// accented street names.
const utf8BOM = "\ufeff"

// CSVExporter writes a deduplicated result set to a single CSV file,
// replacing any previous contents.
type CSVExporter struct {
	path string
	log  *logger.Logger
}

func NewCSVExporter(path string, log *logger.Logger) *CSVExporter {
	return &CSVExporter{path: path, log: log}
}

func (e *CSVExporter) Path() string { return e.path }

// Export dedupes records and writes them to the exporter's path. It returns
// the number of data rows written.
func (e *CSVExporter) Export(records domain.ResultSet) (int, error) {
	if dir := filepath.Dir(e.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("csv: create output dir: %w", err)
		}
	}

	f, err := os.Create(e.path)
	if err != nil {
		return 0, fmt.Errorf("csv: create file %q: %w", e.path, err)
	}

	unique := records.Dedupe()
	e.log.Infof("Saving %d items to csv file (%s)...", len(unique), e.path)

	n, err := Encode(f, unique)
	if err != nil {
		_ = f.Close()
		return n, err
	}
	if err := f.Close(); err != nil {
		return n, fmt.Errorf("csv: close %q: %w", e.path, err)
	}
	return n, nil
}

// Encode writes the BOM, the header row and one row per record. Records are
// written as given; callers dedupe first.
func Encode(w io.Writer, records domain.ResultSet) (int, error) {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return 0, fmt.Errorf("csv: write bom: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(domain.ListingColumns); err != nil {
		return 0, fmt.Errorf("csv: write header: %w", err)
	}
	for i, l := range records {
		if err := cw.Write(l.Row()); err != nil {
			return i, fmt.Errorf("csv: write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("csv: flush: %w", err)
	}
	return len(records), nil
}
