// Package fixture loads a reconciliation snapshot from a local YAML file,
// for offline runs and tests that need no API access.
package fixture

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/starlinker/internal/directory"
	"github.com/sells-group/starlinker/internal/label"
	"github.com/sells-group/starlinker/internal/model"
	"github.com/sells-group/starlinker/internal/reconcile"
)

// File is the on-disk fixture layout.
type File struct {
	Devices    []Device `yaml:"devices"`
	Routers    []Router `yaml:"routers"`
	ISPRouters []string `yaml:"isp_routers"`
}

// Device is one fixture device.
type Device struct {
	Sln        string   `yaml:"sln"`
	Nickname   string   `yaml:"nickname"`
	Kit        string   `yaml:"kit"`
	AddressRef string   `yaml:"address_ref"`
	Latitude   *float64 `yaml:"latitude"`
	Longitude  *float64 `yaml:"longitude"`
}

// Router is one fixture directory router.
type Router struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Latitude    *float64 `yaml:"latitude"`
	Longitude   *float64 `yaml:"longitude"`
}

// Load reads and assembles a snapshot from a YAML fixture file.
func Load(path string) (*reconcile.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fixture: read %s", path)
	}
	return Parse(data)
}

// Parse assembles a snapshot from YAML fixture bytes. Mobile devices are
// filtered here, matching the live source behavior.
func Parse(data []byte) (*reconcile.Snapshot, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "fixture: unmarshal")
	}

	snap := &reconcile.Snapshot{
		Devices:      make(map[string]*model.Device),
		DeviceCoords: make(map[string]geom.Coord),
		ISPRouters:   make(map[string]bool),
	}

	for _, fd := range f.Devices {
		if fd.Nickname != "" && label.IsMobile(fd.Nickname) {
			continue
		}
		d := model.NewDevice(fd.Sln)
		d.AddressRef = fd.AddressRef
		d.Kit = fd.Kit
		if fd.Nickname != "" {
			d.CurrentLabel = fd.Nickname
			d.LabelSource = model.LabelSourceAPI
			if d.Kit == "" {
				d.Kit = label.KitCode(fd.Nickname)
			}
		}
		snap.Devices[d.Sln] = d

		if fd.Latitude != nil && fd.Longitude != nil {
			snap.DeviceCoords[d.Sln] = geom.Coord{*fd.Longitude, *fd.Latitude}
		}
	}

	for _, fr := range f.Routers {
		rec := directory.Router{
			ID:          fr.ID,
			Name:        fr.Name,
			Description: fr.Description,
		}
		if fr.Latitude != nil && fr.Longitude != nil {
			rec.Coord = geom.Coord{*fr.Longitude, *fr.Latitude}
		}
		snap.Routers = append(snap.Routers, rec)
	}

	for _, code := range f.ISPRouters {
		if norm := label.RouterCode(code); norm != "" {
			snap.ISPRouters[norm] = true
		}
	}

	return snap, nil
}
