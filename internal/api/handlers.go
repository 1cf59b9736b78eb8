package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/pedrokkrause/fourier-ephem/internal/eclipse"
	"github.com/pedrokkrause/fourier-ephem/internal/ephemeris"
	"github.com/pedrokkrause/fourier-ephem/internal/epoch"
	"github.com/pedrokkrause/fourier-ephem/internal/httputil"
	"github.com/pedrokkrause/fourier-ephem/internal/metrics"
	"github.com/pedrokkrause/fourier-ephem/internal/transform"
	"github.com/pedrokkrause/fourier-ephem/internal/vecmath"
)

const daysPerYear = 365.25

type eclipseJSON struct {
	Time      string         `json:"time"`
	Candidate string         `json:"candidate"`
	T         float64        `json:"t"`
	Observer  eclipse.LatLon `json:"observer"`
}

type eclipsesResponse struct {
	From       string        `json:"from"`
	To         string        `json:"to"`
	Candidates int           `json:"candidates"`
	Dropped    int           `json:"dropped"`
	Eclipses   []eclipseJSON `json:"eclipses"`
}

// eclipsesHandler serves GET /api/v1/eclipses?from=...&to=...
func eclipsesHandler(logger *slog.Logger, deps Deps, limiter *httputil.Limiter) http.HandlerFunc {
	maxSpan := deps.Config.API.MaxSpanYears * daysPerYear
	timeout := time.Duration(deps.Config.API.RequestTimeoutSec) * time.Second
	trustProxy := deps.Config.API.TrustProxy

	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		from, err := timeParam(q.Get("from"), "from")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		to, err := timeParam(q.Get("to"), "to")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if to <= from {
			writeError(w, http.StatusBadRequest, "to must be after from")
			return
		}
		if to-from > maxSpan {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("span of %.1f years exceeds the limit of %g", (to-from)/daysPerYear, deps.Config.API.MaxSpanYears))
			return
		}

		client := httputil.ClientIP(r, trustProxy)
		if !limiter.Acquire(client) {
			metrics.IncRejected("rate_limit")
			logger.Warn("eclipse search limit exceeded", "client", client, "active", limiter.Active(client))
			w.Header().Set("Retry-After", "5")
			writeError(w, http.StatusTooManyRequests, "too many concurrent searches")
			return
		}
		defer limiter.Release(client)

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		res, err := deps.Searcher.Search(ctx, from, to)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				writeError(w, http.StatusServiceUnavailable, "search did not finish in time")
				return
			}
			logger.Error("eclipse search failed", "from", from, "to", to, "error", err)
			writeError(w, http.StatusInternalServerError, "search failed")
			return
		}

		resp := eclipsesResponse{
			From:       epoch.Format(from),
			To:         epoch.Format(to),
			Candidates: len(res.Candidates),
			Dropped:    res.Dropped,
			Eclipses:   make([]eclipseJSON, 0, len(res.Eclipses)),
		}
		for _, e := range res.Eclipses {
			resp.Eclipses = append(resp.Eclipses, eclipseJSON{
				Time:      epoch.Format(e.Time),
				Candidate: epoch.Format(e.Candidate),
				T:         e.Time,
				Observer:  e.Observer,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type moonResponse struct {
	T              float64    `json:"t"`
	Time           string     `json:"time"`
	LatDeg         float64    `json:"lat_deg"`
	LonDeg         float64    `json:"lon_deg"`
	DistanceKm     float64    `json:"distance_km"`
	Position       [3]float64 `json:"position_km"`
	SunDistanceKm  float64    `json:"sun_distance_km"`
	ObliquityDeg   float64    `json:"obliquity_deg"`
	TrueAnomalyDeg float64    `json:"true_anomaly_deg"`
	SubsolarLatDeg float64    `json:"subsolar_lat_deg"`
	SubsolarLonDeg float64    `json:"subsolar_lon_deg"`
}

// moonHandler serves GET /api/v1/moon?t=...
func moonHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := timeParam(r.URL.Query().Get("t"), "t")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		lat, lon, dist := deps.Model.MoonGSE(t)
		pos := deps.Model.MoonPosition(t)
		sLat, sLon := transform.SubsolarPoint(t)
		writeJSON(w, http.StatusOK, moonResponse{
			T:              t,
			Time:           epoch.Format(t),
			LatDeg:         lat,
			LonDeg:         lon - 360*math.Round(lon/360),
			DistanceKm:     dist,
			Position:       [3]float64{pos.X, pos.Y, pos.Z},
			SunDistanceKm:  deps.Model.SunDistance(t),
			ObliquityDeg:   ephemeris.Obliquity(t),
			TrueAnomalyDeg: wrap360(vecmath.RadToDeg(ephemeris.TrueAnomaly(t))),
			SubsolarLatDeg: sLat,
			SubsolarLonDeg: sLon,
		})
	}
}

type occultationResponse struct {
	T                 float64  `json:"t"`
	Time              string   `json:"time"`
	Lat               float64  `json:"lat"`
	Lon               float64  `json:"lon"`
	Fraction          float64  `json:"fraction"`
	SunVisible        bool     `json:"sun_visible"`
	SunAltitudeDeg    float64  `json:"sun_altitude_deg"`
	SunApparentAltDeg float64  `json:"sun_apparent_altitude_deg"`
	SunAzimuthDeg     *float64 `json:"sun_azimuth_deg,omitempty"`
	MoonAltitudeDeg   float64  `json:"moon_altitude_deg"`
	SeparationDeg     float64  `json:"separation_deg"`
	SunRadiusDeg      float64  `json:"sun_radius_deg"`
	MoonRadiusDeg     float64  `json:"moon_radius_deg"`
}

// occultationHandler serves GET /api/v1/occultation?t=...&lat=...&lon=...
func occultationHandler(deps Deps) http.HandlerFunc {
	atm := eclipse.Atmosphere{
		TemperatureC: deps.Config.Atmosphere.TemperatureC,
		PressureHPa:  deps.Config.Atmosphere.PressureHPa,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		t, err := timeParam(q.Get("t"), "t")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		lat, err := floatParam(q.Get("lat"), "lat", -90, 90)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		lon, err := floatParam(q.Get("lon"), "lon", -180, 180)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		resp, err := occultation(deps.Model, t, lat, lon, atm)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func occultation(model *ephemeris.Model, t, lat, lon float64, atm eclipse.Atmosphere) (occultationResponse, error) {
	c, err := eclipse.Local(model, t, lat, lon, atm)
	if err != nil {
		return occultationResponse{}, err
	}
	resp := occultationResponse{
		T:                 t,
		Time:              epoch.Format(t),
		Lat:               lat,
		Lon:               lon,
		Fraction:          c.Fraction,
		SunVisible:        c.SunVisible(),
		SunAltitudeDeg:    c.SunAltitudeDeg,
		SunApparentAltDeg: c.SunApparentAltitudeDeg,
		MoonAltitudeDeg:   c.MoonAltitudeDeg,
		SeparationDeg:     c.SeparationDeg,
		SunRadiusDeg:      c.SunRadiusDeg,
		MoonRadiusDeg:     c.MoonRadiusDeg,
	}
	if c.HasAzimuth {
		az := c.SunAzimuthDeg
		resp.SunAzimuthDeg = &az
	}
	return resp, nil
}

func wrap360(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

func timeParam(v, name string) (float64, error) {
	if v == "" {
		return 0, fmt.Errorf("missing %s", name)
	}
	t, err := epoch.Parse(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return t, nil
}

func floatParam(v, name string, lo, hi float64) (float64, error) {
	if v == "" {
		return 0, fmt.Errorf("missing %s", name)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) {
		return 0, fmt.Errorf("invalid %s %q", name, v)
	}
	if f < lo || f > hi {
		return 0, fmt.Errorf("%s %g outside [%g, %g]", name, f, lo, hi)
	}
	return f, nil
}
