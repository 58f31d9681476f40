package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/Sammers21/owl-esports/internal/hub"
	"github.com/Sammers21/owl-esports/internal/metrics"
	"github.com/Sammers21/owl-esports/internal/winrate"
	"github.com/Sammers21/owl-esports/internal/ws"
	pubtypes "github.com/Sammers21/owl-esports/pkg/types"
)

// History serves persisted drafts; *store.Store implements it.
type History interface {
	History(ctx context.Context, trackerID string, limit int) ([]pubtypes.HistoryEntry, error)
}

type Deps struct {
	Hub         *hub.Hub
	History     History            // nil when persistence is disabled
	WinRates    *winrate.Predictor // nil when no counter data is configured
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
	CORSOrigins []string
	HistorySize int
}

func SetupRoutes(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	if d.HistorySize <= 0 {
		d.HistorySize = defaultHistorySize
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(accessLog(d.Logger))

	// Public routes
	r.Get(pubtypes.PickLinePath, PickLine(d))
	r.Post(pubtypes.PickWinRatePath, PickWinRate(d))
	r.Get("/status", Status(d))
	r.Get("/healthz", Healthz)
	r.Get("/trackers/{id}", Tracker(d))
	r.Get("/trackers/{id}/history", TrackerHistory(d))
	r.Get("/ws", ws.Handler(d.Hub, ws.Options{OriginPatterns: originPatterns(d.CORSOrigins), Logger: d.Logger}))
	r.Handle("/metrics", d.Metrics.Handler())

	return cors.New(cors.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}).Handler(r)
}

func accessLog(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("took", time.Since(start)))
		})
	}
}

// originPatterns maps CORS origins onto websocket.AcceptOptions patterns,
// which match hosts rather than full origins.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, ok := hostOf(o); ok {
			patterns = append(patterns, u)
		}
	}
	return patterns
}
