package http

import (
	"net/http"

	"github.com/couchcryptid/tank-level-service/internal/domain"
	"github.com/julienschmidt/httprouter"
)

// tankView pairs a tank's configuration with its latest level. Level is nil
// until the first level has been computed.
type tankView struct {
	Tank  domain.TankConfig  `json:"tank"`
	Level *domain.LevelEvent `json:"level"`
}

func (s *Server) view(tank domain.TankConfig) tankView {
	v := tankView{Tank: tank}
	if level, ok := s.levels.Level(tank.ID); ok {
		v.Level = &level
	}
	return v
}

func (s *Server) handleListTanks(w http.ResponseWriter, _ *http.Request) {
	all := s.tanks.All()
	views := make([]tankView, 0, len(all))
	for _, tank := range all {
		views = append(views, s.view(tank))
	}
	writeJSON(w, http.StatusOK, map[string]any{"tanks": views})
}

func (s *Server) handleGetTank(w http.ResponseWriter, r *http.Request) {
	tank, ok := s.tanks.Lookup(httprouter.ParamsFromContext(r.Context()).ByName("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "tank not found")
		return
	}
	writeJSON(w, http.StatusOK, s.view(tank))
}
