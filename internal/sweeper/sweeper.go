// Package sweeper expires overdue open orders on a fixed schedule.
package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

var sweptOrdersTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "swept_orders_total",
		Help: "Number of open orders expired and refunded by the sweeper.",
	},
)

// Repo provides repository layer interface needed by the sweeper.
//
//go:generate mockgen -source sweeper.go -destination sweeper_mock.go -package sweeper
type Repo interface {
	ExpireDue(ctx context.Context) (int, error)
}

// Sweeper runs the expiry pass periodically. Every pass is idempotent, so
// overlapping or repeated runs refund each order at most once.
type Sweeper struct {
	repo   Repo
	cron   *cron.Cron
	logger zerolog.Logger
}

// New returns a sweeper scheduled at the given interval.
func New(repo Repo, interval time.Duration, logger zerolog.Logger) (*Sweeper, error) {
	s := &Sweeper{
		repo:   repo,
		cron:   cron.New(),
		logger: logger,
	}

	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), s.Sweep)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Start launches the schedule in its own goroutine.
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop stops the schedule and waits for a running pass to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep expires every open order past its deadline and refunds the sellers.
func (s *Sweeper) Sweep() {
	ctx := s.logger.WithContext(context.Background())

	count, err := s.repo.ExpireDue(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("expiry sweep failed")
		return
	}

	if count > 0 {
		sweptOrdersTotal.Add(float64(count))
		s.logger.Info().Int("count", count).Msg("expired overdue orders")
	}
}
