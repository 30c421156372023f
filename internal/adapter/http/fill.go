package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/couchcryptid/tank-level-service/internal/domain"
	"github.com/couchcryptid/tank-level-service/internal/volume"
)

const maxFillRequestBytes = 1 << 16

// fillRequest describes an ad-hoc calculation. Either tank_id selects a
// configured tank's geometry, or diameter is given directly. Without
// cylinder_length and end_cap the tank is treated as a bare cylinder.
type fillRequest struct {
	TankID          string   `json:"tank_id,omitempty"`
	FillHeight      *float64 `json:"fill_height"`
	Diameter        *float64 `json:"diameter,omitempty"`
	CylinderLength  *float64 `json:"cylinder_length,omitempty"`
	EndCap          string   `json:"end_cap,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
	TemperatureUnit string   `json:"temperature_unit,omitempty"`
}

type fillResponse struct {
	Status              string   `json:"status"`
	Percentage          float64  `json:"percentage"`
	RawPercentage       float64  `json:"raw_percentage"`
	HeadVolume          *float64 `json:"head_volume,omitempty"`
	Volume              *float64 `json:"volume,omitempty"`
	Compensated         bool     `json:"compensated"`
	CompensationSkipped string   `json:"compensation_skipped,omitempty"`
}

// geometry is the resolved shape a fill request is evaluated against.
type geometry struct {
	diameter       float64
	cylinderLength float64
	endCap         volume.EndCap
	withHeads      bool
	tankVolume     float64
}

func (s *Server) handleFill(w http.ResponseWriter, r *http.Request) {
	var req fillRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFillRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.FillHeight == nil {
		writeError(w, http.StatusBadRequest, "fill_height is required")
		return
	}

	geo, status, err := s.resolveGeometry(req)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}

	h := *req.FillHeight
	var (
		pct float64
		ok  bool
	)
	if geo.withHeads {
		pct, ok = volume.TankFillPercentageWithHeads(h, geo.diameter, geo.cylinderLength, geo.endCap)
	} else {
		pct, ok = volume.CylinderFillPercentage(h, geo.diameter)
	}
	if !ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"status": "unavailable"})
		return
	}

	resp := fillResponse{Status: "ok", RawPercentage: pct}
	if geo.withHeads && geo.endCap == volume.EndCapEllipsoidal21 {
		radius := geo.diameter / 2
		head := volume.HeadVolume(h, radius, geo.endCap.HeadDepth(geo.diameter))
		resp.HeadVolume = &head
	}

	if req.Temperature != nil {
		pct = s.compensate(&resp, pct, *req.Temperature, req.TemperatureUnit)
	}
	resp.Percentage = pct

	if geo.tankVolume > 0 {
		gallons := pct / 100 * geo.tankVolume
		resp.Volume = &gallons
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) resolveGeometry(req fillRequest) (geometry, int, error) {
	if req.TankID != "" {
		tank, ok := s.tanks.Lookup(req.TankID)
		if !ok {
			return geometry{}, http.StatusNotFound, errors.New("tank not found")
		}
		return geometry{
			diameter:       tank.Diameter,
			cylinderLength: tank.CylinderLength,
			endCap:         tank.EndCap,
			withHeads:      true,
			tankVolume:     tank.Volume,
		}, 0, nil
	}

	if req.Diameter == nil {
		return geometry{}, http.StatusBadRequest, errors.New("diameter or tank_id is required")
	}
	geo := geometry{diameter: *req.Diameter}
	if req.EndCap == "" && req.CylinderLength == nil {
		return geo, 0, nil
	}

	geo.withHeads = true
	geo.endCap = volume.EndCapEllipsoidal21
	if req.EndCap != "" {
		endCap, err := volume.ParseEndCap(req.EndCap)
		if err != nil {
			return geometry{}, http.StatusBadRequest, err
		}
		geo.endCap = endCap
	}
	if req.CylinderLength == nil {
		return geometry{}, http.StatusBadRequest, errors.New("cylinder_length is required with end_cap")
	}
	geo.cylinderLength = *req.CylinderLength
	return geo, 0, nil
}

// compensate mirrors the level pipeline: problems with the temperature skip
// compensation rather than failing the request.
func (s *Server) compensate(resp *fillResponse, pct, temperature float64, unitText string) float64 {
	unit, err := volume.ParseTemperatureUnit(unitText)
	if err != nil {
		resp.CompensationSkipped = domain.ReasonUnsupportedTemperatureUnit
		return pct
	}
	corrected, err := s.compensator.Apply(pct, temperature, unit)
	if err != nil {
		if errors.Is(err, volume.ErrUnsupportedUnit) {
			resp.CompensationSkipped = domain.ReasonUnsupportedTemperatureUnit
		} else {
			resp.CompensationSkipped = domain.ReasonTemperatureOutOfRange
		}
		return pct
	}
	resp.Compensated = true
	return corrected
}
