package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"

	"github.com/arc-research/housing-dashboard/internal/cache"
	"github.com/arc-research/housing-dashboard/internal/model"
	"github.com/arc-research/housing-dashboard/internal/selection"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleOptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, selection.Options())
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	keys := selection.Keys{
		View:     chi.URLParam(r, "view"),
		County:   q.Get("county"),
		Category: q.Get("category"),
		Horizon:  q.Get("horizon"),
		Basemap:  q.Get("basemap"),
	}
	if raw := q.Get("extruded"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			s.writeError(w, r, eris.Wrapf(model.ErrConfiguration, "invalid extruded value %q", raw))
			return
		}
		keys.Extruded = b
	}
	if err := s.validate.Struct(keys); err != nil {
		s.writeError(w, r, eris.Wrapf(model.ErrConfiguration, "invalid selection: %v", err))
		return
	}

	sel, err := selection.Parse(keys)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := s.renderer.RenderJSON(r.Context(), sel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type historyQuery struct {
	County string `validate:"omitempty,max=40"`
	ZIP    string `validate:"omitempty,numeric,len=5"`
}

type historyResponse struct {
	County string         `json:"county"`
	Series []model.Series `json:"series"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := historyQuery{County: r.URL.Query().Get("county"), ZIP: r.URL.Query().Get("zip")}
	if err := s.validate.Struct(q); err != nil {
		s.writeError(w, r, eris.Wrapf(model.ErrConfiguration, "invalid history query: %v", err))
		return
	}

	county := selection.AllCounties
	if q.County != "" {
		c, err := selection.ParseCounty(q.County)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		county = c
	}
	writeJSON(w, http.StatusOK, historyResponse{
		County: county.Key(),
		Series: s.renderer.History(county, q.ZIP),
	})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	c := s.renderer.Cache()
	if c == nil {
		writeJSON(w, http.StatusOK, cache.Stats{Driver: cache.DriverNone})
		return
	}
	stats, err := c.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
