package reconcile

import (
	"github.com/sells-group/starlinker/internal/directory"
	"github.com/sells-group/starlinker/internal/label"
	"github.com/sells-group/starlinker/internal/model"
)

// matchLabel populates LabelRouter/LabelSite from the device's current
// nickname against the directory indexes.
//
// Resolution order mirrors how nicknames are actually written in the field:
// router token first, then site token verified against the Site Index. When
// the site is known but the router token is missing, a site with exactly one
// validly-named router implies that router. When only a router token is
// present, the site is recovered by reverse lookup across the Site Index;
// nicknames like that are rare but occur.
func matchLabel(d *model.Device, idx *directory.Index) {
	if d.CurrentLabel == "" {
		return
	}

	if router := label.RouterCode(d.CurrentLabel); router != "" {
		d.LabelRouter = router
	}

	if site := label.SiteCode(d.CurrentLabel); site != "" {
		if idx.HasSite(site) {
			d.LabelSite = site
			if d.LabelRouter == "" {
				names := idx.SiteRouters[site]
				if len(names) == 1 {
					if router := label.RouterCode(names[0]); router != "" {
						d.LabelRouter = router
					}
				}
			}
		}
	} else if d.LabelRouter != "" {
		if site := idx.SiteOf(d.LabelRouter); site != "" {
			d.LabelSite = site
		}
	}
}
