package service

import (
	"testing"

	"github.com/sellaro/sellaro-backend/internal/app/model"
	"github.com/sellaro/sellaro-backend/internal/app/repository"
	"github.com/sellaro/sellaro-backend/internal/db"
	"github.com/sellaro/sellaro-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }
func uintPtr(v uint) *uint    { return &v }

func setupProfileTest(t *testing.T) (*gorm.DB, repository.UserRepository, ProfileService) {
	t.Helper()

	database, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(database) })

	userRepo := repository.NewUserRepository(database)
	roleRepo := repository.NewRoleRepository(database)
	return database, userRepo, NewProfileService(userRepo, roleRepo)
}

func createTestUser(t *testing.T, userRepo repository.UserRepository, email string, superuser bool) *model.User {
	t.Helper()
	user := &model.User{
		Email:        email,
		PasswordHash: "$2a$12$invalidinvalidinvalidinvalidinvalidinvalidinvalidinv",
		Active:       true,
		Superuser:    superuser,
	}
	require.NoError(t, userRepo.Create(user))
	return user
}

func TestProfileUpdateBasicFields(t *testing.T) {
	_, userRepo, svc := setupProfileTest(t)
	user := createTestUser(t, userRepo, "alice@example.com", false)

	err := svc.Update(user, user, ProfileUpdate{
		FirstName: strPtr("Alice"),
		LastName:  strPtr("Smith"),
		Phone:     strPtr("555-0100"),
	})
	require.NoError(t, err)

	stored, err := userRepo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", stored.FirstName)
	assert.Equal(t, "Smith", stored.LastName)
	assert.Equal(t, "555-0100", stored.Phone)
}

func TestProfileUpdatePasswordChange(t *testing.T) {
	_, userRepo, svc := setupProfileTest(t)
	user := createTestUser(t, userRepo, "alice@example.com", false)

	err := svc.Update(user, user, ProfileUpdate{
		Password:        strPtr("newsecret"),
		PasswordConfirm: strPtr("newsecret"),
	})
	require.NoError(t, err)

	stored, err := userRepo.FindByID(user.ID)
	require.NoError(t, err)
	assert.True(t, util.VerifyPassword(stored.PasswordHash, "newsecret"))
}

func TestProfileUpdatePasswordRules(t *testing.T) {
	_, userRepo, svc := setupProfileTest(t)
	user := createTestUser(t, userRepo, "alice@example.com", false)

	tests := []struct {
		name    string
		update  ProfileUpdate
		wantErr error
	}{
		{
			name:    "password without confirmation",
			update:  ProfileUpdate{Password: strPtr("newsecret")},
			wantErr: ErrPasswordPairIncomplete,
		},
		{
			name:    "confirmation without password",
			update:  ProfileUpdate{PasswordConfirm: strPtr("newsecret")},
			wantErr: ErrPasswordPairIncomplete,
		},
		{
			name: "too short",
			update: ProfileUpdate{
				Password:        strPtr("abc"),
				PasswordConfirm: strPtr("abc"),
			},
			wantErr: ErrPasswordTooShort,
		},
		{
			name: "mismatch",
			update: ProfileUpdate{
				Password:        strPtr("newsecret"),
				PasswordConfirm: strPtr("otherthing"),
			},
			wantErr: ErrPasswordMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Update(user, user, tt.update)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestProfileRoleGrantBySuperuser(t *testing.T) {
	database, userRepo, svc := setupProfileTest(t)
	admin := createTestUser(t, userRepo, "root@example.com", true)
	target := createTestUser(t, userRepo, "alice@example.com", false)

	role := model.Role{Name: "manager"}
	require.NoError(t, database.Create(&role).Error)

	err := svc.Update(admin, target, ProfileUpdate{RoleID: uintPtr(role.ID)})
	require.NoError(t, err)

	stored, err := userRepo.FindByIDFull(target.ID)
	require.NoError(t, err)
	assert.True(t, stored.HasRole("manager"))
}

func TestProfileRoleGrantDeniedForRegularUser(t *testing.T) {
	database, userRepo, svc := setupProfileTest(t)
	user := createTestUser(t, userRepo, "alice@example.com", false)

	role := model.Role{Name: "manager"}
	require.NoError(t, database.Create(&role).Error)

	err := svc.Update(user, user, ProfileUpdate{RoleID: uintPtr(role.ID)})
	assert.ErrorIs(t, err, ErrRoleChangeDenied)
}

func TestProfileRoleAlreadyHeldIsNoop(t *testing.T) {
	database, userRepo, svc := setupProfileTest(t)
	user := createTestUser(t, userRepo, "alice@example.com", false)

	role := model.Role{Name: "manager"}
	require.NoError(t, database.Create(&role).Error)
	require.NoError(t, userRepo.AddRole(user, &role))

	loaded, err := userRepo.FindByIDFull(user.ID)
	require.NoError(t, err)

	// Resubmitting a held role is fine even without superuser rights.
	err = svc.Update(loaded, loaded, ProfileUpdate{RoleID: uintPtr(role.ID)})
	assert.NoError(t, err)
}

func TestProfileRoleGrantUnknownRole(t *testing.T) {
	_, userRepo, svc := setupProfileTest(t)
	admin := createTestUser(t, userRepo, "root@example.com", true)
	target := createTestUser(t, userRepo, "alice@example.com", false)

	err := svc.Update(admin, target, ProfileUpdate{RoleID: uintPtr(999)})
	assert.ErrorIs(t, err, ErrRoleNotFound)
}
