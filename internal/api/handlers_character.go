package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dgallion1/riostats/internal/render"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	labels := s.lookup.Catalog().Labels()
	keys := make([]string, 0, len(labels))
	for _, l := range labels {
		keys = append(keys, l.Key)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"labels":  keys,
		"ok":      true,
		"message": "riostats: Mythic+ character stats extracted from raider.io profiles",
		"usage":   "/character?region=" + s.cfg.DefaultRegion + "&realm=<realm>&name=<name>&season=" + s.cfg.DefaultSeason,
	})
}

// handleCharacter renders one profile and returns its resolved stats.
func (s *Server) handleCharacter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := render.Request{
		Region: strings.ToLower(strings.TrimSpace(q.Get("region"))),
		Realm:  strings.TrimSpace(q.Get("realm")),
		Name:   strings.TrimSpace(q.Get("name")),
		Season: strings.TrimSpace(q.Get("season")),
	}
	if req.Region == "" {
		req.Region = s.cfg.DefaultRegion
	}
	if req.Season == "" {
		req.Season = s.cfg.DefaultSeason
	}
	if req.Realm == "" || req.Name == "" {
		jsonError(w, "realm and name query parameters are required", http.StatusBadRequest)
		return
	}

	res, err := s.lookup.Lookup(r.Context(), req)
	if err != nil {
		attrs := []any{"region", req.Region, "realm", req.Realm, "name", req.Name, "error", err}
		var renderErr *render.Error
		if errors.As(err, &renderErr) {
			attrs = append(attrs, "url", renderErr.URL)
		}
		s.log.Error("character lookup failed", attrs...)
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	body := res.Fields()
	body["ok"] = true
	body["region"] = req.Region
	body["realm"] = req.Realm
	body["name"] = req.Name
	body["season"] = req.Season
	if debug, _ := strconv.ParseBool(q.Get("debug")); debug {
		body["title"] = res.Title()
		body["resolutions"] = res.Resolutions()
	}
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]any{"ok": false, "error": msg})
}
