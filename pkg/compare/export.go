package compare

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the exported differences.
const SheetName = "differences"

// Header is the exported column header row.
var Header = []any{"iden", "rotacio_pre", "rotacio_dev", "objectid_pre", "objectid_dev"}

// FileName returns the export file name for a run started at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("rotacio_differences_%s.xlsx", t.Format("20060102_150405"))
}

// Export writes diffs to a new spreadsheet at path, one row per difference.
func Export(path string, diffs []Difference) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, d := range diffs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			cellValue(d.Iden),
			cellValue(d.RotacioPre),
			cellValue(d.RotacioDev),
			d.ObjectIDPre,
			d.ObjectIDDev,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	return nil
}

// cellValue converts JSON numbers so they are stored as numeric cells.
func cellValue(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if fl, err := n.Float64(); err == nil {
		return fl
	}
	return string(n)
}
