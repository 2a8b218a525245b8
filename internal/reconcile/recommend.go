package reconcile

import (
	"fmt"

	"github.com/sells-group/starlinker/internal/model"
)

// Diagnostic clauses appended when a recommendation cannot be produced. Each
// applies independently; the terminal clause is always appended.
const (
	noteSiteNoRouterText = "site in current nickname, but that site has multiple routers in Nox (or none with a valid name); "
	noteRouterNoSiteText = "router in current nickname, but not site, and no router/site association found in Nox; "
	noteSiteNoRouterGeo  = "lat/lon matched a site, but associated router name missing in Nox; "
	noteRouterNoSiteGeo  = "lat/lon matched a router, but associated site name missing in Nox; "
	noteUnmatched        = "could not match device to a valid router"
	noteAlreadyCorrect   = "current nickname already correct"
)

// recommend resolves the merged evidence into a canonical nickname, a status,
// and, when evidence is incomplete, a diagnostic note. Text evidence wins
// over geo evidence for both the site and the router slot.
func recommend(d *model.Device) {
	site := d.LabelSite
	if site == "" {
		site = d.GeoSite
	}

	var router string
	switch {
	case d.LabelRouter != "":
		router = d.LabelRouter
		d.RouterSource = model.RouterSourceText
	case d.GeoRouter != "":
		router = d.GeoRouter
		d.RouterSource = model.RouterSourceGeo
	}

	if site != "" && router != "" && d.Kit != "" {
		d.RecommendedLabel = fmt.Sprintf("%s-SK%s-%s", d.Kit, router, site)
		d.Status = model.StatusCanUpdate
	} else {
		d.RouterSource = model.RouterSourceNone
		explain(d)
	}

	// Dominates a prior can-update classification.
	if d.RecommendedLabel == d.CurrentLabel {
		d.AppendNote(noteAlreadyCorrect)
		d.Status = model.StatusNoUpdateRequired
	}
}

// explain appends the note taxonomy for missing evidence.
func explain(d *model.Device) {
	if d.LabelSite != "" && d.LabelRouter == "" {
		d.AppendNote(noteSiteNoRouterText)
	} else if d.LabelRouter != "" && d.LabelSite == "" {
		d.AppendNote(noteRouterNoSiteText)
	}

	if d.GeoSite != "" && d.GeoRouter == "" {
		d.AppendNote(noteSiteNoRouterGeo)
	} else if d.GeoRouter != "" && d.GeoSite == "" {
		d.AppendNote(noteRouterNoSiteGeo)
	}

	d.AppendNote(noteUnmatched)
}
