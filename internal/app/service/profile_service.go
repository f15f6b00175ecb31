package service

import (
	"errors"

	"github.com/sellaro/sellaro-backend/internal/app/model"
	"github.com/sellaro/sellaro-backend/internal/app/repository"
	"github.com/sellaro/sellaro-backend/pkg/logger"
	"github.com/sellaro/sellaro-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrPasswordPairIncomplete = errors.New("password and confirmation must be given together")
	ErrPasswordTooShort       = errors.New("password is too short")
	ErrPasswordMismatch       = errors.New("passwords do not match")
	ErrRoleChangeDenied       = errors.New("role change denied")
	ErrRoleNotFound           = errors.New("role not found")
)

const minPasswordLength = 6

// ProfileUpdate carries the mutable profile fields. Pointer fields
// distinguish "absent" from "set to empty".
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Email     *string

	Password        *string
	PasswordConfirm *string

	RoleID *uint
}

type ProfileService interface {
	// Update applies a profile update on behalf of the actor. Password
	// changes require a matching confirmation; role grants require a
	// superuser actor unless the target already holds the role.
	Update(actor *model.User, target *model.User, update ProfileUpdate) error
}

type profileService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
}

func NewProfileService(userRepo repository.UserRepository, roleRepo repository.RoleRepository) ProfileService {
	return &profileService{
		userRepo: userRepo,
		roleRepo: roleRepo,
	}
}

func (s *profileService) Update(actor *model.User, target *model.User, update ProfileUpdate) error {
	if update.FirstName != nil {
		target.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		target.LastName = *update.LastName
	}
	if update.Phone != nil {
		target.Phone = *update.Phone
	}
	if update.Email != nil {
		target.Email = *update.Email
	}

	if err := s.applyPassword(target, update); err != nil {
		return err
	}

	var grant *model.Role
	if update.RoleID != nil {
		role, err := s.resolveRoleChange(actor, target, *update.RoleID)
		if err != nil {
			return err
		}
		grant = role
	}

	if err := s.userRepo.Update(target); err != nil {
		return err
	}

	if grant != nil {
		if err := s.userRepo.AddRole(target, grant); err != nil {
			return err
		}
		logger.Info("Role granted", map[string]interface{}{
			"actor_id":  actor.ID,
			"target_id": target.ID,
			"role":      grant.Name,
		})
	}

	logger.Info("Profile updated", map[string]interface{}{
		"actor_id":  actor.ID,
		"target_id": target.ID,
	})
	return nil
}

func (s *profileService) applyPassword(target *model.User, update ProfileUpdate) error {
	if update.Password == nil && update.PasswordConfirm == nil {
		return nil
	}
	if update.Password == nil || update.PasswordConfirm == nil {
		return ErrPasswordPairIncomplete
	}
	if len(*update.Password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if *update.Password != *update.PasswordConfirm {
		return ErrPasswordMismatch
	}

	hash, err := util.HashPassword(*update.Password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"user_id": target.ID,
		})
		return err
	}
	target.PasswordHash = hash
	return nil
}

// resolveRoleChange returns the role to grant, or nil when the target
// already holds it. Only superusers may grant new roles.
func (s *profileService) resolveRoleChange(actor, target *model.User, roleID uint) (*model.Role, error) {
	if target.HasRoleID(roleID) {
		return nil, nil
	}
	if !actor.Superuser {
		logger.Warn("Role change denied", map[string]interface{}{
			"actor_id":  actor.ID,
			"target_id": target.ID,
			"role_id":   roleID,
		})
		return nil, ErrRoleChangeDenied
	}

	role, err := s.roleRepo.FindByID(roleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return role, nil
}
