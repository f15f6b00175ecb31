package repository

import (
	"github.com/sellaro/sellaro-backend/internal/app/model"
	"github.com/sellaro/sellaro-backend/pkg/logger"
	"gorm.io/gorm"
)

type CustomerRepository interface {
	Create(customer *model.Customer) error
	FindByID(id uint) (*model.Customer, error)
	FindByUserID(userID uint) (*model.Customer, error)
	Update(customer *model.Customer) error
	// MergeAnonymousInto moves the anonymous customer's cart onto the
	// target customer and deletes the anonymous record, atomically.
	MergeAnonymousInto(anonymousID, targetID uint) error
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(customer *model.Customer) error {
	logger.Debug("Creating customer in database", map[string]interface{}{
		"user_id": customer.UserID,
		"email":   customer.Email,
	})

	if err := r.db.Create(customer).Error; err != nil {
		logger.Error("Failed to create customer in database", err, map[string]interface{}{
			"email": customer.Email,
		})
		return err
	}
	return nil
}

func (r *customerRepository) FindByID(id uint) (*model.Customer, error) {
	var customer model.Customer
	if err := r.db.First(&customer, id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) FindByUserID(userID uint) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.Where("user_id = ?", userID).First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) Update(customer *model.Customer) error {
	logger.Debug("Updating customer in database", map[string]interface{}{
		"customer_id": customer.ID,
	})

	if err := r.db.Save(customer).Error; err != nil {
		logger.Error("Failed to update customer in database", err, map[string]interface{}{
			"customer_id": customer.ID,
		})
		return err
	}
	return nil
}

func (r *customerRepository) MergeAnonymousInto(anonymousID, targetID uint) error {
	logger.Debug("Merging anonymous customer into user customer", map[string]interface{}{
		"anonymous_id": anonymousID,
		"target_id":    targetID,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&model.Cart{}).
			Where("customer_id = ?", anonymousID).
			Update("customer_id", targetID).Error
		if err != nil {
			return err
		}
		return tx.Delete(&model.Customer{}, anonymousID).Error
	})
	if err != nil {
		logger.Error("Failed to merge anonymous customer", err, map[string]interface{}{
			"anonymous_id": anonymousID,
			"target_id":    targetID,
		})
		return err
	}

	logger.Debug("Anonymous customer merged", map[string]interface{}{
		"anonymous_id": anonymousID,
		"target_id":    targetID,
	})
	return nil
}
