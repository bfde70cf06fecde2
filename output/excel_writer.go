package output

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"sheetfolio/portfolio"
)

// ExcelWriter writes one tab per sheet kind.
type ExcelWriter struct{}

func (w *ExcelWriter) Write(path string, page portfolio.Page) error {
	file := excelize.NewFile()
	defer file.Close()

	defaultSheet := file.GetSheetName(0)
	for i, data := range pageSheets(page) {
		if i == 0 {
			if err := file.SetSheetName(defaultSheet, data.name); err != nil {
				return fmt.Errorf("rename excel sheet %s: %w", data.name, err)
			}
		} else if _, err := file.NewSheet(data.name); err != nil {
			return fmt.Errorf("create excel sheet %s: %w", data.name, err)
		}

		if err := writeExcelRow(file, data.name, 1, data.headers); err != nil {
			return err
		}
		for j, row := range data.rows {
			if err := writeExcelRow(file, data.name, j+2, row); err != nil {
				return err
			}
		}
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("save excel output %s: %w", path, err)
	}
	return nil
}

func writeExcelRow(file *excelize.File, sheetName string, row int, values []string) error {
	for col, value := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		if err := file.SetCellValue(sheetName, cell, value); err != nil {
			return fmt.Errorf("set excel value %s!%s: %w", sheetName, cell, err)
		}
	}
	return nil
}
