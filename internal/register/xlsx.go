package register

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"invoicer/internal/store"
)

// DefaultSheet is the worksheet name used when none is given.
const DefaultSheet = "Invoices"

// WriteXLSX writes the register as a single-sheet workbook.
func WriteXLSX(w io.Writer, records []store.Record, sheetName string) error {
	const op = "WriteXLSX"

	if sheetName == "" {
		sheetName = DefaultSheet
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("%s: failed to create sheet: %w", op, err)
	}
	f.SetActiveSheet(index)
	if sheetName != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("%s: failed to remove default sheet: %w", op, err)
		}
	}

	for i, header := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("%s: failed to write header: %w", op, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("%s: failed to create header style: %w", op, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(Headers), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("%s: failed to style header: %w", op, err)
	}

	for r, row := range Rows(records) {
		for c, value := range row.Values() {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("%s: failed to write row %d: %w", op, r+1, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("%s: failed to write workbook: %w", op, err)
	}
	return nil
}
