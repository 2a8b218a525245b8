// Package source materializes reconciliation inputs from the three external
// services: Starlink (devices), Venus (ISP membership), and Nox (directory).
package source

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/starlinker/internal/directory"
	"github.com/sells-group/starlinker/internal/label"
	"github.com/sells-group/starlinker/internal/model"
	"github.com/sells-group/starlinker/pkg/nox"
	"github.com/sells-group/starlinker/pkg/starlink"
	"github.com/sells-group/starlinker/pkg/venus"
)

// PullDevices walks the paginated Starlink service line and user terminal
// listings and returns the devices to reconcile, keyed by sln. Inactive
// lines and mobile units are dropped. A kit serial reported by the terminal
// listing overrides any kit guess taken from the nickname.
func PullDevices(ctx context.Context, c starlink.Client) (map[string]*model.Device, error) {
	devices := make(map[string]*model.Device)

	for pageNum, last := 0, false; !last; pageNum++ {
		pg, err := c.ServiceLines(ctx, pageNum)
		if err != nil {
			return nil, eris.Wrapf(err, "source: service lines page %d", pageNum)
		}
		for _, line := range pg.Results {
			if !line.Active {
				continue
			}
			if line.Nickname != "" && label.IsMobile(line.Nickname) {
				continue
			}

			d := model.NewDevice(line.ServiceLineNumber)
			d.AddressRef = line.AddressReferenceID
			if line.Nickname != "" {
				d.CurrentLabel = line.Nickname
				d.LabelSource = model.LabelSourceAPI
				d.Kit = label.KitCode(line.Nickname)
			}
			devices[d.Sln] = d
		}
		last = pg.IsLastPage
	}

	for pageNum, last := 0, false; !last; pageNum++ {
		pg, err := c.UserTerminals(ctx, pageNum)
		if err != nil {
			return nil, eris.Wrapf(err, "source: user terminals page %d", pageNum)
		}
		for _, term := range pg.Results {
			d, ok := devices[term.ServiceLineNumber]
			if !ok || term.KitSerialNumber == "" {
				continue
			}
			if kit := label.KitCode(term.KitSerialNumber); kit != "" {
				d.Kit = kit
			}
		}
		last = pg.IsLastPage
	}

	zap.L().Info("source: pulled starlink devices", zap.Int("devices", len(devices)))
	return devices, nil
}

// PullAddressCoords walks the paginated address listing and returns lon/lat
// coordinates keyed by address reference. Addresses with a null coordinate
// are omitted.
func PullAddressCoords(ctx context.Context, c starlink.Client) (map[string]geom.Coord, error) {
	coords := make(map[string]geom.Coord)

	for pageNum, last := 0, false; !last; pageNum++ {
		pg, err := c.Addresses(ctx, pageNum)
		if err != nil {
			return nil, eris.Wrapf(err, "source: addresses page %d", pageNum)
		}
		for _, adr := range pg.Results {
			if adr.Latitude == nil || adr.Longitude == nil {
				continue
			}
			coords[adr.AddressReferenceID] = geom.Coord{*adr.Longitude, *adr.Latitude}
		}
		last = pg.IsLastPage
	}

	zap.L().Info("source: pulled starlink addresses", zap.Int("located", len(coords)))
	return coords, nil
}

// DeviceCoords joins devices to address coordinates by address reference.
// Devices whose address has no known location are absent from the result.
func DeviceCoords(devices map[string]*model.Device, addrCoords map[string]geom.Coord) map[string]geom.Coord {
	out := make(map[string]geom.Coord)
	for sln, d := range devices {
		if coord, ok := addrCoords[d.AddressRef]; ok {
			out[sln] = coord
		}
	}
	return out
}

// PullISPRouters returns the set of router codes with a Starlink uplink in
// Venus, normalized through the token grammar.
func PullISPRouters(ctx context.Context, c venus.Client) (map[string]bool, error) {
	routers, err := c.Routers(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "source: venus routers")
	}

	set := make(map[string]bool)
	for _, r := range routers {
		if !r.HasISP(venus.ISPStarlink) {
			continue
		}
		if code := label.RouterCode(r.Name); code != "" {
			set[code] = true
		}
	}

	zap.L().Info("source: pulled venus isp routers", zap.Int("routers", len(set)))
	return set, nil
}

// PullDirectory joins the Nox router listing with its location listing into
// raw directory records.
func PullDirectory(ctx context.Context, c nox.Client) ([]directory.Router, error) {
	routers, err := c.Routers(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "source: nox routers")
	}
	locations, err := c.Locations(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "source: nox locations")
	}

	records := make([]directory.Router, 0, len(routers))
	for id, r := range routers {
		rec := directory.Router{
			ID:          id,
			Name:        r.Name,
			Description: r.Description,
		}
		if loc, ok := locations[id]; ok && loc.Latitude != nil && loc.Longitude != nil {
			rec.Coord = geom.Coord{*loc.Longitude, *loc.Latitude}
		}
		records = append(records, rec)
	}

	zap.L().Info("source: pulled nox directory", zap.Int("routers", len(records)))
	return records, nil
}
