package winrate

import (
	"context"
	"os"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Predictor serves win rates from the most recently loaded Table. A nil
// Predictor is never loaded.
type Predictor struct {
	table  atomic.Pointer[Table]
	logger *zap.Logger
}

func NewPredictor(logger *zap.Logger) *Predictor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Predictor{logger: logger}
}

func (p *Predictor) Loaded() bool {
	return p.current() != nil
}

// Set swaps in t for every later prediction.
func (p *Predictor) Set(t *Table) {
	p.table.Store(t)
}

// LoadDir replaces the table with the counter files of dir. On error the
// previous table stays in place.
func (p *Predictor) LoadDir(dir string) error {
	start := time.Now()
	t, err := Load(os.DirFS(dir))
	if err != nil {
		return err
	}
	p.Set(t)
	p.logger.Info("counter data loaded",
		zap.String("dir", dir),
		zap.Int("heroes", len(t.heroes)),
		zap.Duration("took", time.Since(start)))
	return nil
}

// Run loads dir now and again every interval until ctx is done. A zero
// interval loads once.
func (p *Predictor) Run(ctx context.Context, dir string, interval time.Duration) {
	if err := p.LoadDir(dir); err != nil {
		p.logger.Error("failed to load counter data", zap.String("dir", dir), zap.Error(err))
	}
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.LoadDir(dir); err != nil {
				p.logger.Warn("failed to reload counter data, keeping the previous set", zap.Error(err))
			}
		}
	}
}

func (p *Predictor) PickWinRate(radiant, dire []string) (Prediction, error) {
	t := p.current()
	if t == nil {
		return Prediction{}, ErrNotLoaded
	}
	return t.PickWinRate(radiant, dire)
}

func (p *Predictor) PickWinRateFromLines(all []string) (Prediction, error) {
	t := p.current()
	if t == nil {
		return Prediction{}, ErrNotLoaded
	}
	return t.PickWinRateFromLines(all)
}

func (p *Predictor) current() *Table {
	if p == nil {
		return nil
	}
	return p.table.Load()
}
