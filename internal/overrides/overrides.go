// Package overrides loads manually curated nicknames for devices whose
// nickname is set in the Starlink GUI but not visible through the API.
package overrides

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/starlinker/internal/model"
)

const noteApplied = "nickname retrieved from local override file; "

// Load reads an override file: column 1 = nickname, column 2 = sln.
func Load(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "overrides: open %s", path)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads override rows from r. Rows with fewer than two columns are
// rejected.
func Parse(r io.Reader) (map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	nicknames := make(map[string]string)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "overrides: read row")
		}
		if len(row) < 2 {
			return nil, eris.Errorf("overrides: row has %d columns, want 2", len(row))
		}
		nicknames[row[1]] = row[0]
	}
	return nicknames, nil
}

// Apply fills in missing nicknames from the override map. Devices that
// already have a nickname keep it; applied overrides are marked with
// provenance and a note.
func Apply(devices map[string]*model.Device, nicknames map[string]string) int {
	applied := 0
	for sln, d := range devices {
		if d.CurrentLabel != "" {
			continue
		}
		nick, ok := nicknames[sln]
		if !ok {
			continue
		}
		d.CurrentLabel = nick
		d.LabelSource = model.LabelSourceOverride
		d.AppendNote(noteApplied)
		applied++
	}
	if applied > 0 {
		zap.L().Info("overrides: applied hidden nicknames", zap.Int("applied", applied))
	}
	return applied
}
