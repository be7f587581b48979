package logic

import (
	"context"
	"time"

	"agroai-backend/internal/db"

	"go.uber.org/zap"
)

// MarketRefresher pulls live prices for the tracked crops once a day and
// appends them to the repository
type MarketRefresher struct {
	Repo   db.Repository
	Source MarketSource
	Crops  []string
	Hour   int // local hour of day, 0-23
	Logger *zap.Logger

	now func() time.Time
}

func NewMarketRefresher(repo db.Repository, source MarketSource, crops []string, hour int, logger *zap.Logger) *MarketRefresher {
	return &MarketRefresher{
		Repo:   repo,
		Source: source,
		Crops:  crops,
		Hour:   hour,
		Logger: logger,
		now:    time.Now,
	}
}

// RefreshOnce returns how many entries were stored. A failing crop is logged
// and skipped.
func (m *MarketRefresher) RefreshOnce(ctx context.Context) int {
	stored := 0
	for _, crop := range m.Crops {
		entries, err := m.Source.Prices(ctx, crop, "", "")
		if err != nil {
			m.Logger.Warn("market refresh failed", zap.String("crop", crop), zap.Error(err))
			continue
		}
		for _, e := range entries {
			if _, err := m.Repo.AddMarketData(ctx, e); err != nil {
				m.Logger.Error("store market entry failed", zap.String("crop", crop), zap.Error(err))
				continue
			}
			stored++
		}
	}
	m.Logger.Info("market refresh done", zap.Int("crops", len(m.Crops)), zap.Int("stored", stored))
	return stored
}

// Start runs the daily refresh in a goroutine until ctx is cancelled.
// Does nothing when the source has no api key. The returned channel is
// closed once the loop has exited.
func (m *MarketRefresher) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if m.Source == nil || !m.Source.Enabled() || len(m.Crops) == 0 {
		m.Logger.Info("market refresher disabled")
		close(done)
		return done
	}
	go func() {
		defer close(done)
		for {
			now := m.now()
			next := nextRun(now, m.Hour)
			m.Logger.Info("next market refresh",
				zap.String("at", next.Format("2006-01-02 15:04:05")),
				zap.Duration("wait", next.Sub(now)))

			timer := time.NewTimer(next.Sub(now))
			select {
			case <-ctx.Done():
				timer.Stop()
				m.Logger.Info("market refresher stopped")
				return
			case <-timer.C:
				m.RefreshOnce(ctx)
			}
		}
	}()
	return done
}

// nextRun first hour:00 strictly after now
func nextRun(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
