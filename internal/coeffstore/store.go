// Package coeffstore loads the fitted lunar coefficient tables that drive
// the harmonic ephemeris model.
//
// A coefficient file holds three tables (longitude, latitude, distance),
// each as parallel amplitude/frequency/phase sequences. Frequencies are
// persisted in cycles per day and converted to angular frequency on load.
// YAML and JSON encodings are accepted. A seed table is embedded in the
// binary so the engine can start without any external file.
package coeffstore

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/pedrokkrause/fourier-ephem/internal/ephemeris"
)

// ErrConfiguration is returned when coefficient tables are missing or
// malformed. The engine must not run with partial tables.
var ErrConfiguration = errors.New("coefficient configuration error")

//go:embed seed.yaml
var seedYAML []byte

// Format identifies a coefficient file encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// Table is the persisted form of one harmonic series.
type Table struct {
	Amplitude []float64 `yaml:"amplitude" json:"amplitude"`
	Frequency []float64 `yaml:"frequency" json:"frequency"` // cycles/day
	Phase     []float64 `yaml:"phase" json:"phase"`         // radians
}

// File is the persisted form of a full coefficient set.
type File struct {
	LongitudeOffsetDeg *float64 `yaml:"longitude_offset_deg" json:"longitude_offset_deg"`
	DistanceMeanKm     *float64 `yaml:"distance_mean_km" json:"distance_mean_km"`
	Longitude          *Table   `yaml:"longitude" json:"longitude"`
	Latitude           *Table   `yaml:"latitude" json:"latitude"`
	Distance           *Table   `yaml:"distance" json:"distance"`
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Load reads a coefficient file. The format is chosen from the extension:
// .json is JSON, anything else is YAML.
func Load(path string) (ephemeris.Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ephemeris.Tables{}, fmt.Errorf("%w: reading %s: %v", ErrConfiguration, path, err)
	}

	format := FormatYAML
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = FormatJSON
	}

	tables, err := Parse(data, format)
	if err != nil {
		return ephemeris.Tables{}, fmt.Errorf("%s: %w", path, err)
	}
	return tables, nil
}

// Seed returns the embedded seed tables.
func Seed() (ephemeris.Tables, error) {
	return Parse(seedYAML, FormatYAML)
}

// Open loads path, or the seed tables when path is empty.
func Open(path string) (ephemeris.Tables, error) {
	if path == "" {
		return Seed()
	}
	return Load(path)
}

// Parse decodes and validates a coefficient set.
func Parse(data []byte, format Format) (ephemeris.Tables, error) {
	var f File
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &f)
	default:
		err = yaml.Unmarshal(data, &f)
	}
	if err != nil {
		return ephemeris.Tables{}, fmt.Errorf("%w: decoding: %v", ErrConfiguration, err)
	}
	return f.Tables()
}

// Tables validates f and converts it into model tables.
func (f *File) Tables() (ephemeris.Tables, error) {
	lon, err := f.Longitude.series("longitude")
	if err != nil {
		return ephemeris.Tables{}, err
	}
	lat, err := f.Latitude.series("latitude")
	if err != nil {
		return ephemeris.Tables{}, err
	}
	dist, err := f.Distance.series("distance")
	if err != nil {
		return ephemeris.Tables{}, err
	}

	tables := ephemeris.Tables{
		Longitude:          lon,
		Latitude:           lat,
		Distance:           dist,
		LongitudeOffsetDeg: ephemeris.DefaultLongitudeOffsetDeg,
		DistanceMeanKm:     ephemeris.DefaultDistanceMeanKm,
	}
	if f.LongitudeOffsetDeg != nil {
		if !finite(*f.LongitudeOffsetDeg) {
			return ephemeris.Tables{}, fmt.Errorf("%w: longitude_offset_deg is not finite", ErrConfiguration)
		}
		tables.LongitudeOffsetDeg = *f.LongitudeOffsetDeg
	}
	if f.DistanceMeanKm != nil {
		if !finite(*f.DistanceMeanKm) || *f.DistanceMeanKm <= 0 {
			return ephemeris.Tables{}, fmt.Errorf("%w: distance_mean_km must be a positive number", ErrConfiguration)
		}
		tables.DistanceMeanKm = *f.DistanceMeanKm
	}
	return tables, nil
}

func (t *Table) series(name string) (ephemeris.HarmonicSeries, error) {
	if t == nil {
		return ephemeris.HarmonicSeries{}, fmt.Errorf("%w: %s table missing", ErrConfiguration, name)
	}
	n := len(t.Amplitude)
	if n == 0 {
		return ephemeris.HarmonicSeries{}, fmt.Errorf("%w: %s table is empty", ErrConfiguration, name)
	}
	if len(t.Frequency) != n || len(t.Phase) != n {
		return ephemeris.HarmonicSeries{}, fmt.Errorf("%w: %s table has mismatched lengths (amplitude=%d frequency=%d phase=%d)",
			ErrConfiguration, name, n, len(t.Frequency), len(t.Phase))
	}

	terms := make([]ephemeris.Term, n)
	for i := 0; i < n; i++ {
		if !finite(t.Amplitude[i]) || !finite(t.Frequency[i]) || !finite(t.Phase[i]) {
			return ephemeris.HarmonicSeries{}, fmt.Errorf("%w: %s term %d is not finite", ErrConfiguration, name, i)
		}
		terms[i] = ephemeris.Term{
			Amplitude: t.Amplitude[i],
			Omega:     2 * math.Pi * t.Frequency[i],
			Phase:     t.Phase[i],
		}
	}
	return ephemeris.NewHarmonicSeries(terms), nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
