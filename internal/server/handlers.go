package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ga2230/reefscout/internal/aggregator"
	"github.com/ga2230/reefscout/internal/model"
	"github.com/ga2230/reefscout/internal/ratings"
	"github.com/ga2230/reefscout/internal/storage"
)

func (h *Handler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{"error": message})
}

// Health check endpoint
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": h.now().UTC(),
	})
}

// boolParam parses an optional boolean query parameter.
func boolParam(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %q", name, v)
	}
	return b, nil
}

// viewOptions reads the shared aggregation parameters from the query string.
func viewOptions(r *http.Request) (aggregator.Options, error) {
	opts := aggregator.DefaultOptions()
	q := r.URL.Query()

	if s := q.Get("sort"); s != "" {
		k, err := model.ParseMetricKey(s)
		if err != nil {
			return opts, err
		}
		opts.SortKey = k
	}
	asc, err := boolParam(r, "asc")
	if err != nil {
		return opts, err
	}
	opts.SortDescending = !asc

	if opts.ExcludeDefense, err = boolParam(r, "excludeDefense"); err != nil {
		return opts, err
	}
	if opts.BlendExternal, err = boolParam(r, "epa"); err != nil {
		return opts, err
	}
	opts.Search = strings.TrimSpace(q.Get("search"))
	return opts, nil
}

// aggregate reads the store and computes ranked stats. Ratings are fetched
// on first use and shared across requests.
func (h *Handler) aggregate(r *http.Request, opts aggregator.Options) ([]model.TeamStat, []model.MatchRecord, error) {
	start := time.Now()
	records, err := h.store.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read records: %w", err)
	}
	var ext model.Ratings
	if h.ratings != nil {
		ext = h.ratings.Get(r.Context())
	}
	stats := aggregator.Aggregate(records, h.teams, opts, ext)
	aggregationsTotal.Inc()
	aggregationDuration.Observe(time.Since(start).Seconds())
	return stats, records, nil
}

func (h *Handler) ratingsStatus() ratings.Status {
	if h.ratings == nil {
		return ratings.StatusOff
	}
	st, _, _ := h.ratings.Status()
	return st
}

// GetLeaderboard returns every known team ranked by the requested metric.
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	opts, err := viewOptions(r)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	stats, _, err := h.aggregate(r, opts)
	if err != nil {
		h.logger.Errorw("Failed to aggregate leaderboard", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to load records")
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"teams":      stats,
		"sort":       opts.SortKey,
		"descending": opts.SortDescending,
		"ratings":    h.ratingsStatus(),
	})
}

// GetTeam returns one team's averages, match history and capabilities.
func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	team := chi.URLParam(r, "team")
	if !h.known[team] {
		h.errorResponse(w, http.StatusNotFound, "Unknown team")
		return
	}
	opts, err := viewOptions(r)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	opts.Search = ""
	stats, records, err := h.aggregate(r, opts)
	if err != nil {
		h.logger.Errorw("Failed to aggregate team", "team", team, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to load records")
		return
	}
	h.jsonResponse(w, http.StatusOK, aggregator.Detail(team, records, aggregator.Find(stats, team)))
}

// GetCompare returns the chosen teams in ranked order, at most aggregator.MaxCompare.
func (h *Handler) GetCompare(w http.ResponseWriter, r *http.Request) {
	var teams []string
	for _, t := range strings.Split(r.URL.Query().Get("teams"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			teams = append(teams, t)
		}
	}
	if len(teams) == 0 {
		h.errorResponse(w, http.StatusBadRequest, "teams is required")
		return
	}
	if len(teams) > aggregator.MaxCompare {
		h.errorResponse(w, http.StatusBadRequest,
			fmt.Sprintf("at most %d teams can be compared", aggregator.MaxCompare))
		return
	}
	opts, err := viewOptions(r)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	opts.Search = ""
	stats, _, err := h.aggregate(r, opts)
	if err != nil {
		h.logger.Errorw("Failed to aggregate comparison", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to load records")
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"teams": aggregator.Select(stats, teams, aggregator.MaxCompare),
	})
}

// GetRatingsStatus reports whether external ratings were loaded.
func (h *Handler) GetRatingsStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{"status": ratings.StatusOff, "teams": 0}
	if h.ratings != nil {
		st, n, at := h.ratings.Status()
		resp["status"] = st
		resp["teams"] = n
		if !at.IsZero() {
			resp["loadedAt"] = at.UTC()
		}
	}
	h.jsonResponse(w, http.StatusOK, resp)
}

// ListEntries returns every stored record in insertion order.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.ReadAll()
	if err != nil {
		h.logger.Errorw("Failed to read records", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to load records")
		return
	}
	if records == nil {
		records = []model.MatchRecord{}
	}
	h.jsonResponse(w, http.StatusOK, records)
}

// AppendEntry stores one record. A missing id or timestamp is filled in.
func (h *Handler) AppendEntry(w http.ResponseWriter, r *http.Request) {
	var rec model.MatchRecord
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize)).Decode(&rec); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp == 0 {
		rec.Timestamp = h.now().UnixMilli()
	}
	if err := rec.Validate(); err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.store.Append(rec); err != nil {
		if errors.Is(err, storage.ErrDuplicateID) {
			h.errorResponse(w, http.StatusConflict, err.Error())
			return
		}
		h.logger.Errorw("Failed to append record", "id", rec.ID, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to store record")
		return
	}
	entriesWritten.WithLabelValues("append").Inc()
	h.jsonResponse(w, http.StatusCreated, rec)
}

// ImportEntries replaces the store with a JSON array of records, all or nothing.
func (h *Handler) ImportEntries(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		h.errorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}
	if err := h.store.Import(data); err != nil {
		if errors.Is(err, storage.ErrInvalidImport) {
			h.errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Errorw("Failed to import records", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to import records")
		return
	}
	entriesWritten.WithLabelValues("import").Inc()
	w.WriteHeader(http.StatusNoContent)
}

// ClearEntries removes every stored record.
func (h *Handler) ClearEntries(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(); err != nil {
		h.logger.Errorw("Failed to clear records", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to clear records")
		return
	}
	entriesWritten.WithLabelValues("clear").Inc()
	w.WriteHeader(http.StatusNoContent)
}
