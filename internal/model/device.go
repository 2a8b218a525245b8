// Package model defines the device, run, and provenance types shared across
// the reconciliation pipeline.
package model

import "time"

// LabelSource records where a device's current nickname came from.
type LabelSource string

const (
	LabelSourceNone     LabelSource = "none"
	LabelSourceAPI      LabelSource = "api"
	LabelSourceOverride LabelSource = "override"
)

// RouterSource records which evidence stream produced the router code used in
// the recommendation.
type RouterSource string

const (
	RouterSourceNone RouterSource = "none"
	RouterSourceText RouterSource = "text"
	RouterSourceGeo  RouterSource = "geo"
)

// Status classifies the outcome of reconciling one device.
type Status string

const (
	StatusCannotUpdate     Status = "cannot-update"
	StatusCanUpdate        Status = "can-update"
	StatusNoUpdateRequired Status = "no-update-required"
)

// Device is one Starlink unit under reconciliation, keyed by service line
// number. Fields are populated in stages: source pull, text evidence pass,
// geo evidence pass, recommendation.
type Device struct {
	Sln          string `json:"sln"`
	CurrentLabel string `json:"current_label,omitempty"`
	Kit          string `json:"kit,omitempty"`
	AddressRef   string `json:"address_ref,omitempty"`

	LabelRouter string `json:"label_router,omitempty"`
	LabelSite   string `json:"label_site,omitempty"`

	GeoRouter string `json:"geo_router,omitempty"`
	GeoSite   string `json:"geo_site,omitempty"`

	RecommendedLabel string `json:"recommended_label,omitempty"`
	Note             string `json:"note,omitempty"`
	Updated          bool   `json:"updated"`

	LabelSource  LabelSource  `json:"label_source"`
	RouterSource RouterSource `json:"router_source"`
	Status       Status       `json:"status"`
}

// NewDevice returns a Device with provenance fields at their zero states.
func NewDevice(sln string) *Device {
	return &Device{
		Sln:          sln,
		LabelSource:  LabelSourceNone,
		RouterSource: RouterSourceNone,
		Status:       StatusCannotUpdate,
	}
}

// AppendNote accumulates a diagnostic clause on the device.
func (d *Device) AppendNote(clause string) {
	d.Note += clause
}

// Summary holds per-run aggregate counts.
type Summary struct {
	Devices          int `json:"devices"`
	CanUpdate        int `json:"can_update"`
	NoUpdateRequired int `json:"no_update_required"`
	CannotUpdate     int `json:"cannot_update"`
	Pushed           int `json:"pushed"`
}

// Run is one reconciliation pass, persisted for audit history.
type Run struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Summary    Summary   `json:"summary"`
}

// Summarize tallies device statuses into a Summary.
func Summarize(devices []*Device) Summary {
	var s Summary
	s.Devices = len(devices)
	for _, d := range devices {
		switch d.Status {
		case StatusCanUpdate:
			s.CanUpdate++
		case StatusNoUpdateRequired:
			s.NoUpdateRequired++
		default:
			s.CannotUpdate++
		}
		if d.Updated {
			s.Pushed++
		}
	}
	return s
}
