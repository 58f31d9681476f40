package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sammers21/owl-esports/internal/engine"
	"github.com/Sammers21/owl-esports/internal/hub"
	"github.com/Sammers21/owl-esports/internal/metrics"
	"github.com/Sammers21/owl-esports/internal/types"
	"github.com/Sammers21/owl-esports/internal/winrate"
	pubtypes "github.com/Sammers21/owl-esports/pkg/types"
)

const line = "anti_mage,shadow_fiend,lion,axe,tiny,doom,io,treant_protector,timbersaw,windranger"

type fakeHistory struct {
	entries  []pubtypes.HistoryEntry
	err      error
	gotID    string
	gotLimit int
}

func (f *fakeHistory) History(_ context.Context, trackerID string, limit int) ([]pubtypes.HistoryEntry, error) {
	f.gotID, f.gotLimit = trackerID, limit
	return f.entries, f.err
}

func newDeps(t *testing.T) Deps {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return Deps{
		Hub:         hub.NewHub(ctx),
		Metrics:     metrics.New(),
		CORSOrigins: []string{"*"},
	}
}

// Heroes of line, Radiant first. On the page of H the row of X rates X at
// 50 + idx(X) - idx(H), so the line scores 45 for Radiant and 55 for Dire.
var lineHeroes = []string{
	"Anti-Mage", "Shadow Fiend", "Lion", "Axe", "Tiny",
	"Doom", "Io", "Treant Protector", "Timbersaw", "Windranger",
}

func loadedPredictor() *winrate.Predictor {
	pages := make(map[string][]winrate.Counter, len(lineHeroes))
	for hi, h := range lineHeroes {
		for xi, x := range lineHeroes {
			if x != h {
				pages[h] = append(pages[h], winrate.Counter{Hero: winrate.Hero{Name: x}, WinRate: float64(50 + xi - hi)})
			}
		}
	}
	p := winrate.NewPredictor(nil)
	p.Set(winrate.NewTable(pages))
	return p
}

func post(t *testing.T, h http.Handler, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func pickLineURL(line, tg, match string) string {
	q := url.Values{}
	if line != "" {
		q.Set(pubtypes.ParamLine, line)
	}
	if tg != "" {
		q.Set(pubtypes.ParamID, tg)
	}
	if match != "" {
		q.Set(pubtypes.ParamMatch, match)
	}
	return pubtypes.PickLinePath + "?" + q.Encode()
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestPickLine_BadParams(t *testing.T) {
	d := newDeps(t)
	h := SetupRoutes(d)

	rec := get(t, h, pickLineURL("", "77107633", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "line is required", decode[pubtypes.ErrorResponse](t, rec).Error)

	rec = get(t, h, pickLineURL(line, "", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, h, pickLineURL(line, "not-a-number", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, 3.0, testutil.ToFloat64(d.Metrics.PickLines.WithLabelValues(metrics.ResultInvalid)))
}

func TestPickLine_InvalidLine(t *testing.T) {
	d := newDeps(t)
	h := SetupRoutes(d)

	rec := get(t, h, pickLineURL("axe,lion", "1", ""))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode[pubtypes.ErrorResponse](t, rec).Error, "wrong number of heroes")

	rec = get(t, h, pickLineURL("axe,lion,tiny,io,axe,doom,sven,puck,mars,lina", "1", ""))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	assert.Equal(t, 2.0, testutil.ToFloat64(d.Metrics.PickLines.WithLabelValues(metrics.ResultRejected)))
}

func TestPickLine_AcceptThenUnchanged(t *testing.T) {
	d := newDeps(t)
	h := SetupRoutes(d)

	rec := get(t, h, pickLineURL(line, "77107633", "Team Spirit vs Tundra"))
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[pubtypes.PickLineResponse](t, rec)
	assert.True(t, resp.Changed)
	assert.Equal(t, 1, resp.Version)

	rec = get(t, h, pickLineURL(line, "77107633", "Team Spirit vs Tundra"))
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[pubtypes.PickLineResponse](t, rec)
	assert.False(t, resp.Changed)
	assert.Equal(t, 1, resp.Version)

	assert.Equal(t, 1.0, testutil.ToFloat64(d.Metrics.PickLines.WithLabelValues(metrics.ResultAccepted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(d.Metrics.PickLines.WithLabelValues(metrics.ResultUnchanged)))

	rec = get(t, h, "/trackers/77107633")
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decode[types.ServerMessage](t, rec)
	assert.Equal(t, "StateSnapshot", snap.Type)
	assert.Equal(t, 1, snap.Version)
	require.NotNil(t, snap.State)
	assert.Equal(t, engine.PhaseDrafted, snap.State.Phase)
	assert.Equal(t, "Team Spirit vs Tundra", snap.State.Match)
	assert.Equal(t, []string{"anti mage", "shadow fiend", "lion", "axe", "tiny"}, snap.State.Picks[engine.TeamRadiant])
}

func TestTracker_UnknownAndInvalid(t *testing.T) {
	h := SetupRoutes(newDeps(t))

	assert.Equal(t, http.StatusNotFound, get(t, h, "/trackers/42").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/trackers/abc").Code)
}

func TestTrackerHistory(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		h := SetupRoutes(newDeps(t))
		assert.Equal(t, http.StatusServiceUnavailable, get(t, h, "/trackers/1/history").Code)
	})

	t.Run("default and capped limit", func(t *testing.T) {
		d := newDeps(t)
		f := &fakeHistory{entries: []pubtypes.HistoryEntry{{Version: 2, Line: "x"}}}
		d.History = f
		d.HistorySize = 5
		h := SetupRoutes(d)

		rec := get(t, h, "/trackers/007/history")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "7", f.gotID)
		assert.Equal(t, 5, f.gotLimit)
		assert.Len(t, decode[[]pubtypes.HistoryEntry](t, rec), 1)

		require.Equal(t, http.StatusOK, get(t, h, "/trackers/7/history?limit=1000").Code)
		assert.Equal(t, maxHistorySize, f.gotLimit)

		assert.Equal(t, http.StatusBadRequest, get(t, h, "/trackers/7/history?limit=-1").Code)
	})

	t.Run("store failure", func(t *testing.T) {
		d := newDeps(t)
		d.History = &fakeHistory{err: errors.New("db down")}
		h := SetupRoutes(d)
		assert.Equal(t, http.StatusInternalServerError, get(t, h, "/trackers/1/history").Code)
	})
}

func TestStatus(t *testing.T) {
	d := newDeps(t)
	h := SetupRoutes(d)

	require.Equal(t, http.StatusOK, get(t, h, pickLineURL(line, "1", "")).Code)
	require.Equal(t, http.StatusOK, get(t, h, pickLineURL(line, "2", "")).Code)

	rec := get(t, h, "/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pubtypes.Status{Ready: false, Trackers: 2, Persistence: false}, decode[pubtypes.Status](t, rec))
	assert.Equal(t, 2.0, testutil.ToFloat64(d.Metrics.TrackersAlive))

	d.WinRates = loadedPredictor()
	rec = get(t, SetupRoutes(d), "/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[pubtypes.Status](t, rec).Ready)
}

func TestPickWinRate_NotLoaded(t *testing.T) {
	d := newDeps(t)
	d.WinRates = winrate.NewPredictor(nil)
	h := SetupRoutes(d)

	rec := post(t, h, pubtypes.PickWinRatePath, `{"radiant":[],"dire":[]}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, winrate.ErrNotLoaded.Error(), decode[pubtypes.ErrorResponse](t, rec).Error)
	assert.Equal(t, 1.0, testutil.ToFloat64(d.Metrics.Predictions.WithLabelValues(metrics.ResultUnavailable)))

	// GET is not routed.
	assert.Equal(t, http.StatusMethodNotAllowed, get(t, h, pubtypes.PickWinRatePath).Code)
}

func TestPickWinRate(t *testing.T) {
	d := newDeps(t)
	d.WinRates = loadedPredictor()
	h := SetupRoutes(d)

	rec := post(t, h, pubtypes.PickWinRatePath,
		`{"radiant":["AM","sf","lion","axe","tiny"],"dire":["doom","io","TP","timb","wind"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	wr := decode[pubtypes.WinRate](t, rec)
	assert.InDelta(t, 45.0, wr.Radiant, 1e-9)
	assert.InDelta(t, 55.0, wr.Dire, 1e-9)
	assert.Contains(t, rec.Body.String(), `"radiant_winrate"`)

	assert.Equal(t, http.StatusBadRequest, post(t, h, pubtypes.PickWinRatePath, `{"radiant":`).Code)

	rec = post(t, h, pubtypes.PickWinRatePath,
		`{"radiant":["pudge","sf","lion","axe","tiny"],"dire":["doom","io","TP","timb","wind"]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode[pubtypes.ErrorResponse](t, rec).Error, "pudge")

	rec = post(t, h, pubtypes.PickWinRatePath, `{"radiant":["sf"],"dire":["doom"]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(d.Metrics.Predictions.WithLabelValues(metrics.ResultAccepted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(d.Metrics.Predictions.WithLabelValues(metrics.ResultInvalid)))
	assert.Equal(t, 2.0, testutil.ToFloat64(d.Metrics.Predictions.WithLabelValues(metrics.ResultRejected)))
}

func TestPickLine_CarriesWinRate(t *testing.T) {
	d := newDeps(t)
	h := SetupRoutes(d)

	rec := get(t, h, pickLineURL(line, "5", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[pubtypes.PickLineResponse](t, rec).WinRate)
	assert.NotContains(t, rec.Body.String(), "winrate")

	d.WinRates = loadedPredictor()
	h = SetupRoutes(d)

	rec = get(t, h, pickLineURL(line, "5", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[pubtypes.PickLineResponse](t, rec)
	assert.False(t, resp.Changed)
	require.NotNil(t, resp.WinRate)
	assert.InDelta(t, 45.0, resp.WinRate.Radiant, 1e-9)
	assert.InDelta(t, 55.0, resp.WinRate.Dire, 1e-9)

	// Heroes without counter data are still tracked.
	rec = get(t, h, pickLineURL("axe,lion,tiny,io,doom,sven,puck,mars,lina,zeus", "5", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[pubtypes.PickLineResponse](t, rec)
	assert.True(t, resp.Changed)
	assert.Nil(t, resp.WinRate)
}

func TestHealthzMetricsAndCORS(t *testing.T) {
	h := SetupRoutes(newDeps(t))

	assert.Equal(t, http.StatusOK, get(t, h, "/healthz").Code)

	rec := get(t, h, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://pvpq.net")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestOriginPatterns(t *testing.T) {
	assert.Equal(t, []string{"*", "pvpq.net", "localhost:3000"},
		originPatterns([]string{"*", "https://pvpq.net", " ", "localhost:3000"}))
}
