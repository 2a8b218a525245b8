package report

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/starlinker/internal/model"
)

// WriteCSV writes the report as a CSV file at outputPath.
func WriteCSV(devices []*model.Device, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return eris.Wrap(err, "report: create csv file")
	}
	defer f.Close()

	return writeCSV(devices, f)
}

func writeCSV(devices []*model.Device, out io.Writer) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	if err := w.Write(columns); err != nil {
		return eris.Wrap(err, "report: write csv header")
	}

	for _, d := range devices {
		if err := w.Write(buildRow(d)); err != nil {
			return eris.Wrap(err, "report: write csv row")
		}
	}

	w.Flush()
	return eris.Wrap(w.Error(), "report: flush csv")
}
