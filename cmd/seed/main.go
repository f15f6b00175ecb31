package main

import (
	"errors"

	"github.com/sellaro/sellaro-backend/config"
	"github.com/sellaro/sellaro-backend/internal/app/model"
	"github.com/sellaro/sellaro-backend/internal/app/repository"
	"github.com/sellaro/sellaro-backend/internal/db"
	"github.com/sellaro/sellaro-backend/pkg/logger"
	"github.com/sellaro/sellaro-backend/pkg/util"
	"gorm.io/gorm"
)

// Seeds a development database with an admin account and a few shelves.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logger.Initialize(logger.Config{
		Level:       "debug",
		Format:      "console",
		EnableColor: true,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	database := db.GetDB()
	userRepo := repository.NewUserRepository(database)
	roleRepo := repository.NewRoleRepository(database)
	customerRepo := repository.NewCustomerRepository(database)
	cartRepo := repository.NewCartRepository(database)

	seedAdmin(userRepo, roleRepo, customerRepo)
	seedShelves(cartRepo)

	logger.Info("Seeding finished", nil)
}

func seedAdmin(userRepo repository.UserRepository, roleRepo repository.RoleRepository, customerRepo repository.CustomerRepository) {
	const adminEmail = "admin@sellaro.local"

	if _, err := userRepo.FindByEmail(adminEmail); err == nil {
		logger.Info("Admin account already present", map[string]interface{}{
			"email": adminEmail,
		})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Fatal("Failed to look up admin account", err)
	}

	hash, err := util.HashPassword("admin1234")
	if err != nil {
		logger.Fatal("Failed to hash admin password", err)
	}

	admin := &model.User{
		Email:        adminEmail,
		PasswordHash: hash,
		FirstName:    "Admin",
		Active:       true,
		Superuser:    true,
	}
	if err := userRepo.Create(admin); err != nil {
		logger.Fatal("Failed to create admin account", err)
	}

	if role, err := roleRepo.FindByName(model.RoleAdmin); err == nil {
		if err := userRepo.AddRole(admin, role); err != nil {
			logger.Fatal("Failed to grant admin role", err)
		}
	}

	customer := &model.Customer{
		UserID: &admin.ID,
		Email:  adminEmail,
	}
	if err := customerRepo.Create(customer); err != nil {
		logger.Fatal("Failed to create admin customer", err)
	}

	logger.Info("Admin account created", map[string]interface{}{
		"email": adminEmail,
	})
}

func seedShelves(cartRepo repository.CartRepository) {
	shelves := []model.Shelf{
		{PriceOptionID: 1, Quantity: 100},
		{PriceOptionID: 2, Quantity: 50},
		{PriceOptionID: 3, Quantity: 25},
	}

	for i := range shelves {
		if _, err := cartRepo.FindShelfByPriceOption(shelves[i].PriceOptionID); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Fatal("Failed to look up shelf", err)
		}

		if err := cartRepo.CreateShelf(&shelves[i]); err != nil {
			logger.Fatal("Failed to create shelf", err)
		}
		logger.Info("Shelf created", map[string]interface{}{
			"price_option_id": shelves[i].PriceOptionID,
			"quantity":        shelves[i].Quantity,
		})
	}
}
