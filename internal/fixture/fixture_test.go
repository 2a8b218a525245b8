package fixture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/starlinker/internal/model"
)

const sample = `
devices:
  - sln: SL-100
    nickname: KIT7-SKR12-SITEA
    address_ref: ADDR-1
    latitude: 30.2672
    longitude: -97.7431
  - sln: SL-200
    kit: KIT9
  - sln: SL-300
    nickname: Mobile unit 3
routers:
  - id: router-1
    name: EDGE-SKR12
    description: Site A edge
    latitude: 30.2672
    longitude: -97.7431
  - id: router-2
    name: spare
isp_routers:
  - skr12
  - not a code
`

func TestParse(t *testing.T) {
	snap, err := Parse([]byte(sample))
	require.NoError(t, err)

	require.Len(t, snap.Devices, 2)

	d := snap.Devices["SL-100"]
	require.NotNil(t, d)
	assert.Equal(t, "KIT7-SKR12-SITEA", d.CurrentLabel)
	assert.Equal(t, model.LabelSourceAPI, d.LabelSource)
	assert.Equal(t, "KIT7", d.Kit)
	assert.Equal(t, "ADDR-1", d.AddressRef)

	coord, ok := snap.DeviceCoords["SL-100"]
	require.True(t, ok)
	assert.InDelta(t, -97.7431, coord[0], 1e-9)
	assert.InDelta(t, 30.2672, coord[1], 1e-9)

	d = snap.Devices["SL-200"]
	require.NotNil(t, d)
	assert.Empty(t, d.CurrentLabel)
	assert.Equal(t, model.LabelSourceNone, d.LabelSource)
	assert.Equal(t, "KIT9", d.Kit)
	_, ok = snap.DeviceCoords["SL-200"]
	assert.False(t, ok, "device without coordinates should have no entry")

	assert.NotContains(t, snap.Devices, "SL-300", "mobile devices are skipped")

	require.Len(t, snap.Routers, 2)
	assert.Equal(t, "EDGE-SKR12", snap.Routers[0].Name)
	assert.NotNil(t, snap.Routers[0].Coord)
	assert.Nil(t, snap.Routers[1].Coord)

	assert.True(t, snap.ISPRouters["R12"])
	assert.Len(t, snap.ISPRouters, 1, "unparseable codes are dropped")
}

func TestParseBadYAML(t *testing.T) {
	_, err := Parse([]byte("devices: [unclosed"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("testdata/does-not-exist.yaml")
	assert.Error(t, err)
}
