package db

import (
	"github.com/sellaro/sellaro-backend/internal/app/model"
	"github.com/sellaro/sellaro-backend/pkg/logger"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.Role{},
		&model.Customer{},
		&model.Address{},
		&model.BankAccount{},
		&model.Cart{},
		&model.Shelf{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedRoles(); err != nil {
		logger.Error("Failed to seed roles during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// seedRoles guarantees the built-in roles exist. Roles are never deleted
// through the API, so this only ever inserts.
func seedRoles() error {
	for _, name := range []string{model.RoleAdmin, "manager", "user"} {
		var count int64
		if err := DB.Model(&model.Role{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := DB.Create(&model.Role{Name: name}).Error; err != nil {
			return err
		}
		logger.Info("Seeded role", map[string]interface{}{"role": name})
	}
	return nil
}
