package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/sellaro/sellaro-backend/internal/app/service"
	"github.com/sellaro/sellaro-backend/pkg/logger"
)

// CartExpiryScheduler periodically reclaims abandoned carts so their
// reserved quantities flow back to the shelves.
type CartExpiryScheduler struct {
	cron        *cron.Cron
	cartService service.CartService
	spec        string
}

func NewCartExpiryScheduler(cartService service.CartService, spec string) *CartExpiryScheduler {
	return &CartExpiryScheduler{
		cron:        cron.New(),
		cartService: cartService,
		spec:        spec,
	}
}

// Start registers the reclaim job and starts the cron loop.
func (s *CartExpiryScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, s.run)
	if err != nil {
		logger.Error("Failed to schedule cart expiry job", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Cart expiry scheduler started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

// Stop halts the cron loop, waiting for a running job to finish.
func (s *CartExpiryScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cart expiry scheduler stopped", nil)
}

func (s *CartExpiryScheduler) run() {
	count, err := s.cartService.ReclaimExpired()
	if err != nil {
		logger.Error("Cart expiry job failed", err, nil)
		return
	}
	logger.Debug("Cart expiry job finished", map[string]interface{}{
		"reclaimed": count,
	})
}
