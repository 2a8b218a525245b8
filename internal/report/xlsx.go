package report

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/starlinker/internal/model"
)

// WriteXLSX writes the report as a single-sheet XLSX workbook at outputPath.
func WriteXLSX(devices []*model.Device, outputPath string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Reconciliation")
	if err != nil {
		return eris.Wrap(err, "report: add xlsx sheet")
	}

	header := sheet.AddRow()
	for _, col := range columns {
		header.AddCell().SetString(col)
	}

	for _, d := range devices {
		row := sheet.AddRow()
		for _, cell := range buildRow(d) {
			row.AddCell().SetString(cell)
		}
	}

	return eris.Wrap(f.Save(outputPath), "report: save xlsx")
}
