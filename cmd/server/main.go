package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Sammers21/owl-esports/internal/config"
	"github.com/Sammers21/owl-esports/internal/httpapi"
	"github.com/Sammers21/owl-esports/internal/hub"
	"github.com/Sammers21/owl-esports/internal/logging"
	"github.com/Sammers21/owl-esports/internal/metrics"
	"github.com/Sammers21/owl-esports/internal/room"
	"github.com/Sammers21/owl-esports/internal/store"
	"github.com/Sammers21/owl-esports/internal/winrate"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log.Logging())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Server, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New().WithRuntime()
	roomOpts := []room.Option{
		room.WithLogger(logger.Named("room")),
		room.WithClientHook(m.SubscribersChanged),
	}

	deps := httpapi.Deps{
		Metrics:     m,
		Logger:      logger.Named("http"),
		CORSOrigins: cfg.CORSOrigins,
		HistorySize: cfg.HistorySize,
	}

	if cfg.DatabaseURL != "" {
		st, err := store.Open(cfg.DatabaseURL, logger.Named("store"))
		if err != nil {
			return err
		}
		defer st.Close()
		roomOpts = append(roomOpts, room.WithRecorder(observedRecorder{Recorder: st, m: m}))
		deps.History = st
		logger.Info("persistence enabled")
	} else {
		logger.Info("persistence disabled, DATABASE_URL is empty")
	}

	if cfg.CountersDir != "" {
		deps.WinRates = winrate.NewPredictor(logger.Named("winrate"))
		go deps.WinRates.Run(ctx, cfg.CountersDir, cfg.CountersReload)
	} else {
		logger.Info("win rates disabled, COUNTERS_DIR is empty")
	}

	// Rooms outlive the signal context so they can be closed before the listener.
	hubCtx, closeHub := context.WithCancel(context.Background())
	defer closeHub()
	deps.Hub = hub.NewHub(hubCtx, roomOpts...)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           httpapi.SetupRoutes(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil

	case <-ctx.Done():
		logger.Info("shutting down")
		// Closing the rooms ends every WebSocket subscription.
		stopHub(deps.Hub, closeHub)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", zap.Duration("timeout", shutdownTimeout), zap.Error(err))
			return srv.Close()
		}
		return nil
	}
}

// stopHub shuts every room down and waits for the hub to finish. A hub that
// does not take the message within the timeout is cancelled instead.
func stopHub(h *hub.Hub, cancel context.CancelFunc) {
	select {
	case h.Inbox() <- hub.ShutdownHub{}:
	case <-time.After(time.Second):
		cancel()
	}
	<-h.Done()
}

// observedRecorder counts writes to the store.
type observedRecorder struct {
	room.Recorder
	m *metrics.Metrics
}

func (r observedRecorder) Record(ctx context.Context, rec room.Record) error {
	err := r.Recorder.Record(ctx, rec)
	r.m.ObserveStored(err)
	return err
}
