package repository

import (
	"github.com/sellaro/sellaro-backend/internal/app/model"
	"github.com/sellaro/sellaro-backend/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByIDFull(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	Update(user *model.User) error
	AddRole(user *model.User, role *model.Role) error
	Search(firstName, lastName, email string, limit, offset int) ([]model.User, int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"email": user.Email,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDFull loads the user together with roles and customer, the shape
// request contexts and profile views need.
func (r *userRepository) FindByIDFull(id uint) (*model.User, error) {
	var user model.User
	err := r.db.Preload("Roles").Preload("Customer").First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Preload("Roles").Preload("Customer").
		Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(user *model.User) error {
	logger.Debug("Updating user in database", map[string]interface{}{
		"user_id": user.ID,
	})

	if err := r.db.Save(user).Error; err != nil {
		logger.Error("Failed to update user in database", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}
	return nil
}

func (r *userRepository) AddRole(user *model.User, role *model.Role) error {
	logger.Debug("Granting role to user", map[string]interface{}{
		"user_id": user.ID,
		"role":    role.Name,
	})

	if err := r.db.Model(user).Association("Roles").Append(role); err != nil {
		logger.Error("Failed to grant role to user", err, map[string]interface{}{
			"user_id": user.ID,
			"role":    role.Name,
		})
		return err
	}
	return nil
}

// Search matches users by substring on first name, last name or email.
// Empty arguments are skipped; with none given every user matches.
func (r *userRepository) Search(firstName, lastName, email string, limit, offset int) ([]model.User, int64, error) {
	query := r.db.Model(&model.User{})

	var conditions *gorm.DB
	like := func(column, value string) {
		clause := r.db.Where(column+" LIKE ?", "%"+value+"%")
		if conditions == nil {
			conditions = clause
		} else {
			conditions = conditions.Or(clause)
		}
	}
	if firstName != "" {
		like("first_name", firstName)
	}
	if lastName != "" {
		like("last_name", lastName)
	}
	if email != "" {
		like("email", email)
	}
	if conditions != nil {
		query = query.Where(conditions)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	err := query.Session(&gorm.Session{}).
		Preload("Roles").
		Limit(limit).Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

type RoleRepository interface {
	FindByID(id uint) (*model.Role, error)
	FindByName(name string) (*model.Role, error)
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) FindByID(id uint) (*model.Role, error) {
	var role model.Role
	if err := r.db.First(&role, id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) FindByName(name string) (*model.Role, error) {
	var role model.Role
	if err := r.db.Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}
