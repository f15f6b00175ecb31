package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sellaro/sellaro-backend/internal/app/model"
	"github.com/sellaro/sellaro-backend/internal/app/repository"
	"github.com/sellaro/sellaro-backend/internal/app/service"
	apperrors "github.com/sellaro/sellaro-backend/internal/errors"
	"github.com/sellaro/sellaro-backend/internal/middleware"
	"github.com/sellaro/sellaro-backend/internal/rest"
	"github.com/sellaro/sellaro-backend/internal/session"
	"gorm.io/gorm"
)

// ProfileController exposes user profiles. Profiles are created through
// the session resource; POST here always answers 405.
type ProfileController struct {
	userRepo       repository.UserRepository
	profileService service.ProfileService
	authService    service.AuthService
	store          session.Store
}

func NewProfileController(userRepo repository.UserRepository, profileService service.ProfileService, authService service.AuthService, store session.Store) *ProfileController {
	return &ProfileController{
		userRepo:       userRepo,
		profileService: profileService,
		authService:    authService,
		store:          store,
	}
}

type profileListQuery struct {
	rest.PageParams
	FirstName string `form:"first_name"`
	LastName  string `form:"last_name"`
	Email     string `form:"email"`
}

type profileUpdateRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email" binding:"omitempty,email"`

	Password        *string `json:"password"`
	PasswordConfirm *string `json:"password_confirm"`

	RoleID *uint `json:"role_id"`
}

// serializeProfile builds the public mapping for a user. The email is
// visible only to the user themselves and to superusers.
func serializeProfile(rc *middleware.RequestContext, user *model.User) gin.H {
	out := gin.H{
		"id":           user.ID,
		"first_name":   user.FirstName,
		"last_name":    user.LastName,
		"phone":        user.Phone,
		"active":       user.Active,
		"is_superuser": user.Superuser,
		"created_at":   user.CreatedAt,
	}

	if rc != nil && (rc.IsSuperuser() || (rc.User != nil && rc.User.ID == user.ID)) {
		out["email"] = user.Email
		out["confirmed_at"] = user.ConfirmedAt
		out["current_login_at"] = user.CurrentLoginAt

		roles := make([]gin.H, 0, len(user.Roles))
		for _, r := range user.Roles {
			roles = append(roles, gin.H{"id": r.ID, "name": r.Name})
		}
		out["roles"] = roles
	}
	return out
}

// List answers GET /profiles with substring filters on first name, last
// name and email.
func (ctrl *ProfileController) List(c *gin.Context) {
	rc := middleware.GetRequestContext(c)
	log := middleware.GetLoggerFromContext(c)

	var query profileListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		apperrors.BadRequestFields(c, apperrors.FieldsFromBinding(err))
		return
	}

	// Resolve paging in two passes: the total drives the clamped window.
	total, err := ctrl.count(query)
	if err != nil {
		log.Error("Failed to count profiles", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	paging := rest.ComputePaging(total, query.PageParams)
	users, _, err := ctrl.userRepo.Search(query.FirstName, query.LastName, query.Email, paging.PageSize, paging.Offset)
	if err != nil {
		log.Error("Failed to list profiles", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	objects := make([]any, 0, len(users))
	for i := range users {
		objects = append(objects, serializeProfile(rc, &users[i]))
	}

	c.JSON(http.StatusOK, rest.NewListResponse(objects, paging))
}

func (ctrl *ProfileController) count(query profileListQuery) (int64, error) {
	_, total, err := ctrl.userRepo.Search(query.FirstName, query.LastName, query.Email, 1, 0)
	return total, err
}

// Retrieve answers GET /profiles/:id. A numeric id fetches that profile;
// anything else is treated as an email confirmation token. Only superusers
// resolve other users' ids; an authenticated caller always gets their own
// profile, whatever id they ask for.
func (ctrl *ProfileController) Retrieve(c *gin.Context) {
	rc := middleware.GetRequestContext(c)
	id := c.Param("id")

	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		ctrl.confirm(c, id)
		return
	}

	if rc.User != nil && !rc.IsSuperuser() {
		c.JSON(http.StatusOK, serializeProfile(rc, rc.User))
		return
	}

	user, err := ctrl.fetch(c, id)
	if err != nil {
		return
	}
	c.JSON(http.StatusOK, serializeProfile(rc, user))
}

// confirm resolves a confirmation token, marks the account confirmed,
// signs the session in as the confirmed user and returns the profile.
func (ctrl *ProfileController) confirm(c *gin.Context, token string) {
	rc := middleware.GetRequestContext(c)
	log := middleware.GetLoggerFromContext(c)

	user, err := ctrl.authService.ConfirmEmail(token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken):
			apperrors.NotFound(c, apperrors.AuthTokenInvalid, "Profile not found")
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Profile not found")
		default:
			log.Error("Email confirmation failed", err, nil)
			apperrors.InternalError(c, "")
		}
		return
	}

	rc.Session.UserID = &user.ID
	if user.Customer != nil {
		rc.Session.CustomerID = &user.Customer.ID
	}
	if err := ctrl.store.Save(c.Request.Context(), rc.Session); err != nil {
		log.Error("Failed to persist session", err, nil)
		apperrors.InternalError(c, "")
		return
	}
	rc.User = user

	c.JSON(http.StatusOK, serializeProfile(rc, user))
}

// Update answers PUT /profiles/:id. Users edit themselves; superusers
// edit anyone and may grant roles.
func (ctrl *ProfileController) Update(c *gin.Context) {
	rc := middleware.GetRequestContext(c)
	log := middleware.GetLoggerFromContext(c)

	target, err := ctrl.fetch(c, c.Param("id"))
	if err != nil {
		return
	}

	if !rc.IsSuperuser() && rc.User.ID != target.ID {
		apperrors.Forbidden(c, "")
		return
	}

	var req profileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequestFields(c, apperrors.FieldsFromBinding(err))
		return
	}

	update := service.ProfileUpdate{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Phone:           req.Phone,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		RoleID:          req.RoleID,
	}

	if err := ctrl.profileService.Update(rc.User, target, update); err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordPairIncomplete):
			apperrors.BadRequestFields(c, apperrors.Fields{
				"password_confirm": "Both password fields are required",
			})
		case errors.Is(err, service.ErrPasswordTooShort):
			apperrors.BadRequestFields(c, apperrors.Fields{
				"password": "Must be at least 6 characters long",
			})
		case errors.Is(err, service.ErrPasswordMismatch):
			apperrors.BadRequestFields(c, apperrors.Fields{
				"password_confirm": "Passwords do not match",
			})
		case errors.Is(err, service.ErrRoleChangeDenied):
			apperrors.Forbidden(c, "Only administrators may change roles")
		case errors.Is(err, service.ErrRoleNotFound):
			apperrors.NotFound(c, apperrors.AuthzRoleNotFound, "Role not found")
		default:
			log.Error("Profile update failed", err, map[string]interface{}{
				"target_id": target.ID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusAccepted, serializeProfile(rc, target))
}

// Create answers POST /profiles: profiles are only created via session
// registration.
func (ctrl *ProfileController) Create(c *gin.Context) {
	apperrors.MethodNotAllowed(c, "Profiles are created through registration")
}

func (ctrl *ProfileController) fetch(c *gin.Context, id string) (*model.User, error) {
	log := middleware.GetLoggerFromContext(c)

	pk, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		apperrors.NotFound(c, apperrors.ResourceNotFound, "Profile not found")
		return nil, err
	}

	user, err := ctrl.userRepo.FindByIDFull(uint(pk))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Profile not found")
			return nil, err
		}
		log.Error("Failed to fetch profile", err, map[string]interface{}{
			"profile_id": pk,
		})
		apperrors.InternalError(c, "")
		return nil, err
	}
	return user, nil
}
