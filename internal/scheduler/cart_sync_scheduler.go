package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/valorin/storefront-backend/internal/app/store"
	"github.com/valorin/storefront-backend/pkg/logger"
)

const syncTimeout = 60 * time.Second

// CartSyncScheduler periodically reconciles the local cart against the
// remote one so an expired or externally modified cart is noticed even
// when the drawer stays closed.
type CartSyncScheduler struct {
	cron     *cron.Cron
	cart     *store.CartStore
	cronSpec string
}

func NewCartSyncScheduler(cart *store.CartStore, cronSpec string) *CartSyncScheduler {
	return &CartSyncScheduler{
		cron:     cron.New(),
		cart:     cart,
		cronSpec: cronSpec,
	}
}

// Start registers the sync job and starts the cron loop.
func (s *CartSyncScheduler) Start() error {
	_, err := s.cron.AddFunc(s.cronSpec, func() {
		logger.Debug("Starting scheduled cart sync", nil)

		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()

		if err := s.cart.Sync(ctx); err != nil {
			logger.Warn("Scheduled cart sync failed", map[string]interface{}{
				"error": err.Error(),
			})
			return
		}

		logger.Debug("Scheduled cart sync completed", nil)
	})

	if err != nil {
		logger.Error("Failed to add cron job for cart sync", err)
		return err
	}

	s.cron.Start()
	logger.Info("Cart sync scheduler started", map[string]interface{}{
		"cron_spec": s.cronSpec,
	})

	return nil
}

// Stop halts the scheduler.
func (s *CartSyncScheduler) Stop() {
	logger.Info("Stopping cart sync scheduler...", nil)
	s.cron.Stop()
	logger.Info("Cart sync scheduler stopped", nil)
}
