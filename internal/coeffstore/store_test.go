package coeffstore

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
longitude_offset_deg: 12.5
longitude:
  amplitude: [1.0, 0.5]
  frequency: [0.25, 1.0]
  phase: [0.0, 1.5707963267948966]
latitude:
  amplitude: [5.0]
  frequency: [0.0366]
  phase: [0.1]
distance:
  amplitude: [20000]
  frequency: [0.0363]
  phase: [0.2]
`

func TestParseYAML(t *testing.T) {
	tables, err := Parse([]byte(validYAML), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, 2, tables.Longitude.Len())
	assert.Equal(t, 1, tables.Latitude.Len())
	assert.Equal(t, 1, tables.Distance.Len())
	assert.Equal(t, 12.5, tables.LongitudeOffsetDeg)
	assert.Equal(t, 385000.4411, tables.DistanceMeanKm, "missing mean distance should take the default")

	// Frequencies are stored in cycles/day and converted to rad/day.
	terms := tables.Longitude.Terms()
	assert.InDelta(t, 2*math.Pi*0.25, terms[0].Omega, 1e-15)
	assert.InDelta(t, 2*math.Pi, terms[1].Omega, 1e-15)

	// At t=0: 1·sin(0) + 0.5·sin(π/2).
	assert.InDelta(t, 0.5, tables.Longitude.Eval(0), 1e-12)
}

func TestParseJSON(t *testing.T) {
	doc := `{
		"distance_mean_km": 384400,
		"longitude": {"amplitude": [1], "frequency": [0.1], "phase": [0]},
		"latitude":  {"amplitude": [1], "frequency": [0.1], "phase": [0]},
		"distance":  {"amplitude": [1], "frequency": [0.1], "phase": [0]}
	}`
	tables, err := Parse([]byte(doc), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 384400.0, tables.DistanceMeanKm)
	assert.Equal(t, 262827.5235067, tables.LongitudeOffsetDeg)
}

func TestParseRejectsMalformedTables(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "missing table",
			doc: `
longitude: {amplitude: [1], frequency: [1], phase: [0]}
latitude: {amplitude: [1], frequency: [1], phase: [0]}
`,
		},
		{
			name: "mismatched lengths",
			doc: `
longitude: {amplitude: [1, 2], frequency: [1], phase: [0, 0]}
latitude: {amplitude: [1], frequency: [1], phase: [0]}
distance: {amplitude: [1], frequency: [1], phase: [0]}
`,
		},
		{
			name: "empty table",
			doc: `
longitude: {amplitude: [], frequency: [], phase: []}
latitude: {amplitude: [1], frequency: [1], phase: [0]}
distance: {amplitude: [1], frequency: [1], phase: [0]}
`,
		},
		{
			name: "non-finite value",
			doc: `
longitude: {amplitude: [.nan], frequency: [1], phase: [0]}
latitude: {amplitude: [1], frequency: [1], phase: [0]}
distance: {amplitude: [1], frequency: [1], phase: [0]}
`,
		},
		{
			name: "negative mean distance",
			doc: `
distance_mean_km: -1
longitude: {amplitude: [1], frequency: [1], phase: [0]}
latitude: {amplitude: [1], frequency: [1], phase: [0]}
distance: {amplitude: [1], frequency: [1], phase: [0]}
`,
		},
		{
			name: "not yaml",
			doc:  "longitude: [unterminated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), FormatYAML)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "coeffs.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(validYAML), 0o644))
	tables, err := Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 2, tables.Longitude.Len())

	jsonPath := filepath.Join(dir, "coeffs.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"longitude": {}}`), 0o644))
	_, err = Load(jsonPath)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestSeed(t *testing.T) {
	tables, err := Seed()
	require.NoError(t, err)

	assert.Greater(t, tables.Longitude.Len(), 30)
	assert.Greater(t, tables.Latitude.Len(), 20)
	assert.Greater(t, tables.Distance.Len(), 20)
	assert.InDelta(t, 27.545, tables.LongitudeOffsetDeg, 1e-3)

	// The dominant latitude term is the 5.13° inclination of the lunar orbit.
	var maxLat float64
	for _, term := range tables.Latitude.Terms() {
		maxLat = math.Max(maxLat, term.Amplitude)
	}
	assert.InDelta(t, 5.128, maxLat, 1e-3)
}

func TestOpen(t *testing.T) {
	seed, err := Open("")
	require.NoError(t, err)
	assert.Greater(t, seed.Longitude.Len(), 30)

	path := filepath.Join(t.TempDir(), "coeffs.yml")
	require.NoError(t, os.WriteFile(path, []byte(validYAML), 0o644))
	tables, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 2, tables.Longitude.Len())
}
