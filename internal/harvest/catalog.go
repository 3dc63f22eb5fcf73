package harvest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nattapongw/dede-harvester/internal/classify"
)

// CatalogRow is one discovered link in the run catalog: what the
// classifier decided and what the pipeline did about it.
type CatalogRow struct {
	Href    string
	Title   string
	Year    *int
	Period  classify.Period
	Outcome string
}

// WriteCatalog writes the run catalog as CSV. The file starts with a
// UTF-8 BOM so Thai titles open correctly in spreadsheet software.
func WriteCatalog(path string, rows []CatalogRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create catalog dir for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create catalog %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString("\xEF\xBB\xBF"); err != nil {
		return fmt.Errorf("write catalog BOM: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{"href", "title", "year", "period", "outcome"}); err != nil {
		return fmt.Errorf("write catalog header: %w", err)
	}
	for _, row := range rows {
		year := ""
		if row.Year != nil {
			year = strconv.Itoa(*row.Year)
		}
		record := []string{row.Href, row.Title, year, string(row.Period), row.Outcome}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write catalog row for %s: %w", row.Href, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush catalog: %w", err)
	}
	return nil
}
