package export

import (
	"fmt"

	"github.com/pfrederiksen/diz-scraper/internal/seminar"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the seminars
const SheetName = "Seminars"

// WriteXLSX writes seminars to a spreadsheet at path
func WriteXLSX(path string, seminars []*seminar.Seminar) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("creating sheet writer: %w", err)
	}

	if err := sw.SetRow("A1", toCells(seminar.Columns)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, s := range seminars {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, toCells(s.Row())); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flushing sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving spreadsheet: %w", err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
