package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlScenario = `
vehicles:
  - id: v1
    start: {lat: 48.85, lon: 2.35}
    capacity: 100
    speed_kmh: 50
  - id: v2
    start: {lat: 48.80, lon: 2.30}
    base: {lat: 48.90, lon: 2.40}
    capacity: 200
    speed_kmh: 70
freights:
  - id: f1
    weight: 40
    pickup: {lat: 48.86, lon: 2.36}
    delivery: {lat: 48.88, lon: 2.30}
    pickup_offset: 0
    delivery_offset: 3600
  - id: f2
    weight: 10
    pickup: {lat: 48.82, lon: 2.33}
    delivery: {lat: 48.84, lon: 2.40}
    pickup_at: 2024-05-01T08:00:00Z
    delivery_at: 2024-05-01T09:30:00Z
`

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paris.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlScenario), 0o644))
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "paris", s.Name)
	require.Len(t, s.Vehicles, 2)
	require.NotNil(t, s.Vehicles[1].Base)
	assert.Equal(t, 48.90, s.Vehicles[1].Base.Lat)
	assert.Nil(t, s.Vehicles[0].Base)
	require.Len(t, s.Freights, 2)
	assert.Equal(t, 3600.0, s.Freights[0].DeliveryOffset)
	assert.Equal(t, time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC), s.Freights[1].PickupAt.UTC())
}

func TestLoadJSON(t *testing.T) {
	doc := `{"name":"tiny","vehicles":[{"id":"v","start":{"lat":1,"lon":2},"capacity":5,"speed_kmh":30}],
"freights":[{"id":"f","weight":1,"pickup":{"lat":1,"lon":2},"delivery":{"lat":1.1,"lon":2},"pickup_offset":10,"delivery_offset":20}]}`
	path := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tiny", s.Name)
	assert.Equal(t, 30.0, s.Vehicles[0].SpeedKmh)
	assert.Equal(t, 10.0, s.Freights[0].PickupOffset)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load("fleet.csv")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Decode(strings.NewReader("vehicles: [{id: v, speed_kmh: 0}]"), FormatYAML)
	assert.Error(t, err)

	_, err = Decode(strings.NewReader("vehicles: [{id: v, speed_kmh: 10, colour: red}]"), FormatYAML)
	assert.Error(t, err)

	_, err = Decode(strings.NewReader(`{"freights":[{"id":"a"},{"id":"a"}]}`), FormatJSON)
	assert.Error(t, err)

	_, err = Decode(strings.NewReader(""), Format("toml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
