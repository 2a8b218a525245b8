// Package reconcile drives one reconciliation pass: text evidence, geo
// evidence, and the final recommendation for every device in a snapshot.
package reconcile

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/starlinker/internal/directory"
	"github.com/sells-group/starlinker/internal/geomatch"
	"github.com/sells-group/starlinker/internal/model"
)

// Snapshot is the fully materialized input to a pass. All three sources must
// be complete before Run is called; no component reads partially fetched
// data.
type Snapshot struct {
	// Devices is keyed by sln. Mobile and inactive units are filtered out
	// before the snapshot is built.
	Devices map[string]*model.Device
	// DeviceCoords maps sln to lon/lat coordinates; nil or absent entries
	// mean the device location is unknown.
	DeviceCoords map[string]geom.Coord
	// Routers is the raw Nox directory listing joined with locations.
	Routers []directory.Router
	// ISPRouters is the Venus-derived set of Starlink-connected router codes.
	ISPRouters map[string]bool
}

// Result is the outcome of one pass.
type Result struct {
	Run     model.Run
	Devices []*model.Device
}

// Run executes a full pass over the snapshot. Devices are processed in sln
// order and the geo assignment itself is deterministic, so two runs over the
// same snapshot produce identical results.
func Run(snap *Snapshot) *Result {
	started := time.Now().UTC()

	idx := directory.Build(snap.Routers, snap.ISPRouters)
	zap.L().Info("reconcile: directory indexed",
		zap.Int("routers", len(idx.Routers)),
		zap.Int("sites", len(idx.SiteRouters)),
	)

	slns := make([]string, 0, len(snap.Devices))
	for sln := range snap.Devices {
		slns = append(slns, sln)
	}
	sort.Strings(slns)

	// Text evidence pass.
	for _, sln := range slns {
		matchLabel(snap.Devices[sln], idx)
	}

	// Geo evidence: one global pass over the full device x router geometry.
	matches := geomatch.Run(idx, snap.DeviceCoords, snap.ISPRouters)
	for sln, m := range matches {
		if d, ok := snap.Devices[sln]; ok {
			d.GeoRouter = m.RouterCode
			d.GeoSite = m.Site
		}
	}
	zap.L().Info("reconcile: geo evidence resolved", zap.Int("matches", len(matches)))

	// Recommendation pass.
	devices := make([]*model.Device, 0, len(slns))
	for _, sln := range slns {
		d := snap.Devices[sln]
		recommend(d)
		devices = append(devices, d)
	}

	summary := model.Summarize(devices)
	zap.L().Info("reconcile: pass complete",
		zap.Int("devices", summary.Devices),
		zap.Int("can_update", summary.CanUpdate),
		zap.Int("no_update_required", summary.NoUpdateRequired),
		zap.Int("cannot_update", summary.CannotUpdate),
	)

	return &Result{
		Run: model.Run{
			ID:         uuid.NewString(),
			StartedAt:  started,
			FinishedAt: time.Now().UTC(),
			Summary:    summary,
		},
		Devices: devices,
	}
}
