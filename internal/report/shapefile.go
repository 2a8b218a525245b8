package report

import (
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/starlinker/internal/model"
)

// DBF field names are capped at 10 characters.
var shapeFields = []shp.Field{
	shp.StringField("SLN", 64),
	shp.StringField("CURRENT", 128),
	shp.StringField("KIT", 16),
	shp.StringField("RECOMMEND", 128),
	shp.StringField("NOTE", 254),
	shp.StringField("ROUTERSRC", 8),
	shp.StringField("RESULT", 24),
}

// WriteShapefile writes devices with known coordinates as a point shapefile
// at outputPath. Devices without a coordinate are skipped.
func WriteShapefile(devices []*model.Device, coords map[string]geom.Coord, outputPath string) error {
	w, err := shp.Create(outputPath, shp.POINT)
	if err != nil {
		return eris.Wrap(err, "report: create shapefile")
	}
	defer w.Close()

	if err := w.SetFields(shapeFields); err != nil {
		return eris.Wrap(err, "report: set shapefile fields")
	}

	for _, d := range devices {
		coord, ok := coords[d.Sln]
		if !ok {
			continue
		}

		row := int(w.Write(&shp.Point{X: coord[0], Y: coord[1]}))
		attrs := []string{
			d.Sln,
			d.CurrentLabel,
			d.Kit,
			d.RecommendedLabel,
			d.Note,
			string(d.RouterSource),
			string(d.Status),
		}
		for i, v := range attrs {
			if err := w.WriteAttribute(row, i, v); err != nil {
				return eris.Wrapf(err, "report: write attribute %s", shapeFields[i].String())
			}
		}
	}

	return nil
}
