// Package directory builds lookup indexes over the Nox router directory,
// filtered to routers served by the Starlink ISP.
package directory

import (
	"sort"

	"github.com/twpayne/go-geom"

	"github.com/sells-group/starlinker/internal/label"
)

// Router is one raw directory record, assembled from the Nox router listing
// and its independent location listing.
type Router struct {
	ID          string
	Name        string
	Description string
	// Coord is the router's location as a go-geom coordinate in lon/lat
	// order, or nil when Nox reports no location.
	Coord geom.Coord
}

// Info is the resolved view of an ISP-member router.
type Info struct {
	Name  string
	Code  string
	Site  string
	Coord geom.Coord
}

// Index holds the two lookup structures built once per reconciliation pass.
type Index struct {
	// SiteRouters maps site code to router display names at that site, in
	// insertion order.
	SiteRouters map[string][]string
	// Routers maps directory router id to resolved router info.
	Routers map[string]Info
}

// Build filters raw records to ISP members and constructs the indexes.
// Records whose display name yields no router code, or whose code is not in
// the ISP set, are discarded.
func Build(records []Router, ispRouters map[string]bool) *Index {
	idx := &Index{
		SiteRouters: make(map[string][]string),
		Routers:     make(map[string]Info),
	}

	for _, r := range records {
		code := label.RouterCode(r.Name)
		if code == "" || !ispRouters[code] {
			continue
		}

		site := ""
		if r.Description != "" {
			site = label.SiteCode(r.Description)
		}

		idx.Routers[r.ID] = Info{
			Name:  r.Name,
			Code:  code,
			Site:  site,
			Coord: r.Coord,
		}

		if site != "" {
			idx.SiteRouters[site] = append(idx.SiteRouters[site], r.Name)
		}
	}

	return idx
}

// HasSite reports whether the site code is known to the directory.
func (idx *Index) HasSite(site string) bool {
	_, ok := idx.SiteRouters[site]
	return ok
}

// SiteOf returns the site whose router list contains a name resolving to the
// given router code, or "" if none does. Sites are scanned in sorted order so
// the result is deterministic.
func (idx *Index) SiteOf(routerCode string) string {
	sites := make([]string, 0, len(idx.SiteRouters))
	for site := range idx.SiteRouters {
		sites = append(sites, site)
	}
	sort.Strings(sites)

	for _, site := range sites {
		for _, name := range idx.SiteRouters[site] {
			if label.RouterCode(name) == routerCode {
				return site
			}
		}
	}
	return ""
}

// RouterIDs returns all indexed router ids in sorted order, for deterministic
// iteration.
func (idx *Index) RouterIDs() []string {
	ids := make([]string, 0, len(idx.Routers))
	for id := range idx.Routers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
