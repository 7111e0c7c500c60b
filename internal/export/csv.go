package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"saishi/internal/core"
)

// BOM makes spreadsheet applications detect UTF-8.
const BOM = "\ufeff"

// WriteCSV writes a BOM, the header line and one line per record. An
// empty record set produces no output at all.
func WriteCSV(w io.Writer, records []core.Tournament) error {
	if len(records) == 0 {
		return nil
	}
	if _, err := io.WriteString(w, BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, t := range records {
		if err := cw.Write(Row(t)); err != nil {
			return fmt.Errorf("write row %s: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
