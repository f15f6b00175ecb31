package service

import (
	"time"

	"github.com/sellaro/sellaro-backend/internal/app/repository"
	"github.com/sellaro/sellaro-backend/pkg/logger"
)

type CartService interface {
	// ReclaimExpired returns abandoned carts' reservations to their
	// shelves and deletes the carts. Safe to run repeatedly.
	ReclaimExpired() (int64, error)
}

type cartService struct {
	cartRepo repository.CartRepository
	ttl      time.Duration
}

func NewCartService(cartRepo repository.CartRepository, ttl time.Duration) CartService {
	return &cartService{
		cartRepo: cartRepo,
		ttl:      ttl,
	}
}

func (s *cartService) ReclaimExpired() (int64, error) {
	cutoff := time.Now().UTC().Add(-s.ttl)

	count, err := s.cartRepo.ReclaimExpired(cutoff)
	if err != nil {
		return 0, err
	}

	if count > 0 {
		logger.Info("Reclaimed expired carts", map[string]interface{}{
			"count":  count,
			"cutoff": cutoff,
		})
	} else {
		logger.Debug("No expired carts to reclaim", map[string]interface{}{
			"cutoff": cutoff,
		})
	}
	return count, nil
}
