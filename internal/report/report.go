// Package report writes reconciliation results in CSV, XLSX, and shapefile
// formats.
package report

import (
	"strconv"

	"github.com/sells-group/starlinker/internal/model"
)

// Format selects an output writer.
type Format string

const (
	FormatCSV       Format = "csv"
	FormatXLSX      Format = "xlsx"
	FormatShapefile Format = "shp"
)

// columns defines the ordered report output columns.
var columns = []string{
	"Current Nickname",
	"Starlink SLN",
	"Starlink Kit #",
	"Starlink Address",
	"Router via Nick",
	"Site via Nick",
	"Router via Lat/Lon",
	"Site via Lat/Lon",
	"Recommended Nickname",
	"Note",
	"Starlink API Updated",
	"Current Name Source",
	"Router Source",
	"Result",
}

// buildRow maps a Device to a report row, one cell per column.
func buildRow(d *model.Device) []string {
	return []string{
		d.CurrentLabel,               // Current Nickname
		d.Sln,                        // Starlink SLN
		d.Kit,                        // Starlink Kit #
		d.AddressRef,                 // Starlink Address
		d.LabelRouter,                // Router via Nick
		d.LabelSite,                  // Site via Nick
		d.GeoRouter,                  // Router via Lat/Lon
		d.GeoSite,                    // Site via Lat/Lon
		d.RecommendedLabel,           // Recommended Nickname
		d.Note,                       // Note
		strconv.FormatBool(d.Updated), // Starlink API Updated
		string(d.LabelSource),        // Current Name Source
		string(d.RouterSource),       // Router Source
		string(d.Status),             // Result
	}
}
