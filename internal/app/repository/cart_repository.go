package repository

import (
	"time"

	"github.com/sellaro/sellaro-backend/internal/app/model"
	"github.com/sellaro/sellaro-backend/pkg/logger"
	"gorm.io/gorm"
)

type CartRepository interface {
	Create(cart *model.Cart) error
	FindByCustomerID(customerID uint) ([]model.Cart, error)
	// ReclaimExpired restores shelf quantities reserved by carts untouched
	// since the cutoff, then deletes those carts. One transaction; returns
	// the number of carts reclaimed.
	ReclaimExpired(cutoff time.Time) (int64, error)

	CreateShelf(shelf *model.Shelf) error
	FindShelfByPriceOption(priceOptionID uint) (*model.Shelf, error)
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) Create(cart *model.Cart) error {
	logger.Debug("Creating cart in database", map[string]interface{}{
		"customer_id":     cart.CustomerID,
		"price_option_id": cart.PriceOptionID,
		"amount":          cart.Amount,
	})

	if err := r.db.Create(cart).Error; err != nil {
		logger.Error("Failed to create cart in database", err, map[string]interface{}{
			"customer_id": cart.CustomerID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) FindByCustomerID(customerID uint) ([]model.Cart, error) {
	var carts []model.Cart
	err := r.db.Where("customer_id = ?", customerID).Find(&carts).Error
	if err != nil {
		return nil, err
	}
	return carts, nil
}

func (r *cartRepository) ReclaimExpired(cutoff time.Time) (int64, error) {
	var reclaimed int64

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var expired []model.Cart
		if err := tx.Where("updated_at < ?", cutoff).Find(&expired).Error; err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}

		ids := make([]uint, 0, len(expired))
		for _, cart := range expired {
			err := tx.Model(&model.Shelf{}).
				Where("price_option_id = ?", cart.PriceOptionID).
				Update("quantity", gorm.Expr("quantity + ?", cart.Amount)).Error
			if err != nil {
				return err
			}
			ids = append(ids, cart.ID)
		}

		if err := tx.Delete(&model.Cart{}, ids).Error; err != nil {
			return err
		}

		reclaimed = int64(len(expired))
		return nil
	})
	if err != nil {
		logger.Error("Failed to reclaim expired carts", err, map[string]interface{}{
			"cutoff": cutoff,
		})
		return 0, err
	}
	return reclaimed, nil
}

func (r *cartRepository) CreateShelf(shelf *model.Shelf) error {
	if err := r.db.Create(shelf).Error; err != nil {
		logger.Error("Failed to create shelf in database", err, map[string]interface{}{
			"price_option_id": shelf.PriceOptionID,
		})
		return err
	}
	return nil
}

func (r *cartRepository) FindShelfByPriceOption(priceOptionID uint) (*model.Shelf, error) {
	var shelf model.Shelf
	err := r.db.Where("price_option_id = ?", priceOptionID).First(&shelf).Error
	if err != nil {
		return nil, err
	}
	return &shelf, nil
}
