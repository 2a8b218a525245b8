package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/starlinker/internal/model"
	"github.com/sells-group/starlinker/pkg/nox"
	"github.com/sells-group/starlinker/pkg/starlink"
	"github.com/sells-group/starlinker/pkg/venus"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// stubStarlink serves canned pages.
type stubStarlink struct {
	linePages     []*starlink.ServiceLinesPage
	terminalPages []*starlink.UserTerminalsPage
	addressPages  []*starlink.AddressesPage
}

func (s *stubStarlink) ServiceLines(_ context.Context, page int) (*starlink.ServiceLinesPage, error) {
	return s.linePages[page], nil
}

func (s *stubStarlink) UserTerminals(_ context.Context, page int) (*starlink.UserTerminalsPage, error) {
	return s.terminalPages[page], nil
}

func (s *stubStarlink) Addresses(_ context.Context, page int) (*starlink.AddressesPage, error) {
	return s.addressPages[page], nil
}

func (s *stubStarlink) UpdateNickname(context.Context, string, string) error {
	return nil
}

func float(v float64) *float64 { return &v }

func TestPullDevices(t *testing.T) {
	stub := &stubStarlink{
		linePages: []*starlink.ServiceLinesPage{
			{
				Results: []starlink.ServiceLine{
					{ServiceLineNumber: "sl-1", Nickname: "KIT7-SKR12-SITEA", AddressReferenceID: "adr-1", Active: true},
					{ServiceLineNumber: "sl-2", Nickname: "", AddressReferenceID: "adr-2", Active: true},
					{ServiceLineNumber: "sl-3", Nickname: "MOBILE-unit-1", Active: true},
					{ServiceLineNumber: "sl-4", Nickname: "KIT1-SKR1-SITEB", Active: false},
				},
			},
			{IsLastPage: true},
		},
		terminalPages: []*starlink.UserTerminalsPage{
			{
				Results: []starlink.UserTerminal{
					{ServiceLineNumber: "sl-1", KitSerialNumber: "KIT900012345"},
					{ServiceLineNumber: "sl-2", KitSerialNumber: ""},
					{ServiceLineNumber: "sl-unknown", KitSerialNumber: "KIT1"},
				},
				IsLastPage: true,
			},
		},
	}

	devices, err := PullDevices(context.Background(), stub)
	require.NoError(t, err)

	// Mobile and inactive lines never enter the snapshot.
	require.Len(t, devices, 2)
	assert.NotContains(t, devices, "sl-3")
	assert.NotContains(t, devices, "sl-4")

	// Terminal kit serial overrides the nickname-derived guess.
	assert.Equal(t, "KIT900012345", devices["sl-1"].Kit)
	assert.Equal(t, "KIT7-SKR12-SITEA", devices["sl-1"].CurrentLabel)
	assert.Equal(t, model.LabelSourceAPI, devices["sl-1"].LabelSource)

	// No nickname: label source stays none, kit stays empty.
	assert.Empty(t, devices["sl-2"].CurrentLabel)
	assert.Equal(t, model.LabelSourceNone, devices["sl-2"].LabelSource)
	assert.Empty(t, devices["sl-2"].Kit)
}

func TestPullAddressCoords(t *testing.T) {
	stub := &stubStarlink{
		addressPages: []*starlink.AddressesPage{
			{
				Results: []starlink.Address{
					{AddressReferenceID: "adr-1", Latitude: float(40.0), Longitude: float(-70.0)},
					{AddressReferenceID: "adr-2", Latitude: nil, Longitude: float(-70.0)},
				},
				IsLastPage: true,
			},
		},
	}

	coords, err := PullAddressCoords(context.Background(), stub)
	require.NoError(t, err)
	require.Len(t, coords, 1)
	assert.Equal(t, geom.Coord{-70.0, 40.0}, coords["adr-1"])
}

func TestDeviceCoords(t *testing.T) {
	devices := map[string]*model.Device{
		"sl-1": {Sln: "sl-1", AddressRef: "adr-1"},
		"sl-2": {Sln: "sl-2", AddressRef: "adr-missing"},
	}
	addrCoords := map[string]geom.Coord{
		"adr-1": {-70.0, 40.0},
	}

	coords := DeviceCoords(devices, addrCoords)
	require.Len(t, coords, 1)
	assert.Equal(t, geom.Coord{-70.0, 40.0}, coords["sl-1"])
}

type stubVenus struct {
	routers []venus.Router
}

func (s *stubVenus) Routers(context.Context) ([]venus.Router, error) {
	return s.routers, nil
}

func TestPullISPRouters(t *testing.T) {
	stub := &stubVenus{
		routers: []venus.Router{
			{Name: "R12", Links: []venus.Link{{ISP: "Starlink"}}},
			{Name: "r13", Links: []venus.Link{{ISP: "Starlink"}}},
			{Name: "R14", Links: []venus.Link{{ISP: "Fiber"}}},
			{Name: "no code", Links: []venus.Link{{ISP: "Starlink"}}},
		},
	}

	set, err := PullISPRouters(context.Background(), stub)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"R12": true, "R13": true}, set)
}

type stubNox struct {
	routers   map[string]nox.Router
	locations map[string]nox.Location
}

func (s *stubNox) Routers(context.Context) (map[string]nox.Router, error) {
	return s.routers, nil
}

func (s *stubNox) Locations(context.Context) (map[string]nox.Location, error) {
	return s.locations, nil
}

func TestPullDirectory(t *testing.T) {
	stub := &stubNox{
		routers: map[string]nox.Router{
			"n1": {Name: "EDGE-SKR12", Description: "cabinet at SITEA"},
			"n2": {Name: "EDGE-SKR13", Description: "SITEB"},
		},
		locations: map[string]nox.Location{
			"n1": {Latitude: float(40.0), Longitude: float(-70.0)},
			"n2": {Latitude: nil, Longitude: nil},
		},
	}

	records, err := PullDirectory(context.Background(), stub)
	require.NoError(t, err)
	require.Len(t, records, 2)

	byID := map[string]int{}
	for i, r := range records {
		byID[r.ID] = i
	}
	assert.Equal(t, geom.Coord{-70.0, 40.0}, records[byID["n1"]].Coord)
	assert.Nil(t, records[byID["n2"]].Coord)
}
