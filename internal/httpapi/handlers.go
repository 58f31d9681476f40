package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Sammers21/owl-esports/internal/engine"
	"github.com/Sammers21/owl-esports/internal/metrics"
	"github.com/Sammers21/owl-esports/internal/room"
	"github.com/Sammers21/owl-esports/internal/types"
	"github.com/Sammers21/owl-esports/internal/winrate"
	pubtypes "github.com/Sammers21/owl-esports/pkg/types"
)

const (
	defaultHistorySize = 20
	maxHistorySize     = 100
	actorTimeout       = 2 * time.Second
	maxBodySize        = 4 << 10
)

// PickLine applies ?line= (and optional ?match=) to the room of ?tg=.
func PickLine(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		line := q.Get(pubtypes.ParamLine)
		if line == "" {
			d.Metrics.ObservePickLine(metrics.ResultInvalid)
			writeError(w, http.StatusBadRequest, "line is required")
			return
		}
		trackerID, err := types.ParseTrackerID(q.Get(pubtypes.ParamID))
		if err != nil {
			d.Metrics.ObservePickLine(metrics.ResultInvalid)
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		ctx, cancel := contextWithTimeout(r)
		defer cancel()

		rm, err := d.Hub.Ensure(ctx, trackerID)
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "tracker unavailable")
			return
		}

		reply := make(chan room.Outcome, 1)
		cmd := engine.Command{Type: engine.CmdSubmitPickLine, Line: line, Match: q.Get(pubtypes.ParamMatch)}
		select {
		case rm.Inbox() <- room.FromClient{Cmd: cmd, Reply: reply}:
		case <-rm.Done():
			writeError(w, http.StatusServiceUnavailable, "tracker closed")
			return
		case <-ctx.Done():
			writeError(w, http.StatusServiceUnavailable, "tracker busy")
			return
		}

		var out room.Outcome
		select {
		case out = <-reply:
		case <-ctx.Done():
			writeError(w, http.StatusServiceUnavailable, "tracker busy")
			return
		}

		if out.Err != nil {
			d.Metrics.ObservePickLine(metrics.ResultRejected)
			d.Logger.Info("pick line rejected", zap.String("tracker", trackerID), zap.Error(out.Err))
			writeError(w, statusOf(out.Err), out.Err.Error())
			return
		}

		resp := pubtypes.PickLineResponse{Message: "pick line accepted", Version: out.Version, Changed: out.Changed}
		if out.Changed {
			d.Metrics.ObservePickLine(metrics.ResultAccepted)
		} else {
			d.Metrics.ObservePickLine(metrics.ResultUnchanged)
			resp.Message = "pick line unchanged"
		}
		resp.WinRate = winRateOf(d, line)
		writeJSON(w, http.StatusOK, resp)
	}
}

// PickWinRate predicts both sides of a draft named by full or short hero
// names.
func PickWinRate(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !d.WinRates.Loaded() {
			d.Metrics.ObservePrediction(metrics.ResultUnavailable)
			writeError(w, http.StatusServiceUnavailable, winrate.ErrNotLoaded.Error())
			return
		}

		var req pubtypes.WinRateRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
			d.Metrics.ObservePrediction(metrics.ResultInvalid)
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}

		p, err := d.WinRates.PickWinRate(req.Radiant, req.Dire)
		if err != nil {
			d.Metrics.ObservePrediction(metrics.ResultRejected)
			d.Logger.Info("win rate rejected", zap.Strings("radiant", req.Radiant), zap.Strings("dire", req.Dire), zap.Error(err))
			writeError(w, statusOf(err), err.Error())
			return
		}
		d.Metrics.ObservePrediction(metrics.ResultAccepted)
		writeJSON(w, http.StatusOK, pubtypes.WinRate{Radiant: p.Radiant, Dire: p.Dire})
	}
}

// winRateOf scores an accepted pick line. Lines the counter data cannot
// score are still accepted, just without a prediction.
func winRateOf(d Deps, line string) *pubtypes.WinRate {
	if !d.WinRates.Loaded() {
		return nil
	}
	heroes, err := engine.ParsePickLine(line)
	if err != nil {
		return nil
	}
	p, err := d.WinRates.PickWinRateFromLines(heroes)
	if err != nil {
		d.Logger.Debug("no win rate for pick line", zap.Error(err))
		d.Metrics.ObservePrediction(metrics.ResultRejected)
		return nil
	}
	d.Metrics.ObservePrediction(metrics.ResultAccepted)
	return &pubtypes.WinRate{Radiant: p.Radiant, Dire: p.Dire}
}

func Status(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := contextWithTimeout(r)
		defer cancel()

		status := pubtypes.Status{Ready: d.WinRates.Loaded(), Persistence: d.History != nil}
		n, err := d.Hub.Count(ctx)
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		d.Metrics.TrackersAlive.Set(float64(n))
		status.Trackers = n
		writeJSON(w, http.StatusOK, status)
	}
}

// Tracker returns the current snapshot of a room that has already been seen.
func Tracker(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trackerID, err := types.ParseTrackerID(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		ctx, cancel := contextWithTimeout(r)
		defer cancel()

		rm, err := d.Hub.Get(ctx, trackerID)
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "tracker unavailable")
			return
		}
		if rm == nil {
			writeError(w, http.StatusNotFound, "tracker not found")
			return
		}

		reply := make(chan room.View, 1)
		select {
		case rm.Inbox() <- room.GetState{Reply: reply}:
		case <-rm.Done():
			writeError(w, http.StatusNotFound, "tracker not found")
			return
		case <-ctx.Done():
			writeError(w, http.StatusServiceUnavailable, "tracker busy")
			return
		}
		select {
		case v := <-reply:
			writeJSON(w, http.StatusOK, types.ServerMessage{
				Type:    "StateSnapshot",
				Tracker: trackerID,
				Version: v.Version,
				State:   &v.State,
			})
		case <-ctx.Done():
			writeError(w, http.StatusServiceUnavailable, "tracker busy")
		}
	}
}

func TrackerHistory(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.History == nil {
			writeError(w, http.StatusServiceUnavailable, "persistence disabled")
			return
		}
		trackerID, err := types.ParseTrackerID(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		limit := d.HistorySize
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = min(n, maxHistorySize)
		}

		entries, err := d.History.History(r.Context(), trackerID, limit)
		if err != nil {
			d.Logger.Error("failed to load history", zap.String("tracker", trackerID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load history")
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, engine.ErrWrongHeroCount),
		errors.Is(err, engine.ErrEmptyHero),
		errors.Is(err, engine.ErrDuplicateHero),
		errors.Is(err, winrate.ErrWrongHeroCount),
		errors.Is(err, winrate.ErrUnknownHero):
		return http.StatusUnprocessableEntity
	case errors.Is(err, winrate.ErrNotLoaded):
		return http.StatusServiceUnavailable
	case errors.Is(err, winrate.ErrMissingMatchup):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func contextWithTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), actorTimeout)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, pubtypes.ErrorResponse{Error: msg})
}

func hostOf(origin string) (string, bool) {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return "", false
	}
	if !strings.Contains(origin, "://") {
		return origin, true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return "", false
	}
	return u.Host, true
}
