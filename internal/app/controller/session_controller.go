package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sellaro/sellaro-backend/internal/app/service"
	apperrors "github.com/sellaro/sellaro-backend/internal/errors"
	"github.com/sellaro/sellaro-backend/internal/middleware"
	"github.com/sellaro/sellaro-backend/internal/session"
)

// SessionController drives the anonymous/authenticated state machine.
// POST registers, PUT authenticates, DELETE logs out; every answer is the
// session snapshot.
type SessionController struct {
	authService service.AuthService
	store       session.Store
}

func NewSessionController(authService service.AuthService, store session.Store) *SessionController {
	return &SessionController{
		authService: authService,
		store:       store,
	}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password"`
}

type authenticateRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// snapshot is the public view of a session. uid is null while anonymous.
func snapshot(rc *middleware.RequestContext) gin.H {
	var uid *uint
	if rc.User != nil {
		uid = &rc.User.ID
	}
	return gin.H{
		"id":           rc.Session.ID,
		"is_anonymous": rc.Session.IsAnonymous(),
		"uid":          uid,
	}
}

// Get answers GET /sessions and GET /sessions/:id with the caller's own
// session snapshot. The id is accepted but never dereferenced; sessions
// are private to their cookie.
func (ctrl *SessionController) Get(c *gin.Context) {
	rc := middleware.GetRequestContext(c)
	c.JSON(http.StatusOK, snapshot(rc))
}

// Register answers POST /sessions: create an account for the current
// session. A taken email is a field error on email.
func (ctrl *SessionController) Register(c *gin.Context) {
	rc := middleware.GetRequestContext(c)
	log := middleware.GetLoggerFromContext(c)

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequestFields(c, apperrors.FieldsFromBinding(err))
		return
	}

	user, err := ctrl.authService.Register(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			apperrors.BadRequestFields(c, apperrors.Fields{
				"email": "This email is already taken",
			})
			return
		}
		log.Error("Registration failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.InternalError(c, "")
		return
	}

	// Registration does not sign the user in; the session stays anonymous
	// until PUT /sessions/:id presents the credentials.
	log.Debug("Registered new account", map[string]interface{}{
		"user_id": user.ID,
	})

	if err := ctrl.store.Save(c.Request.Context(), rc.Session); err != nil {
		log.Error("Failed to persist session", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusCreated, snapshot(rc))
}

// Authenticate answers PUT /sessions/:id: sign the session in. Every
// failure, malformed input included, answers 404 so a caller cannot tell
// a bad password from a missing account.
func (ctrl *SessionController) Authenticate(c *gin.Context) {
	rc := middleware.GetRequestContext(c)
	log := middleware.GetLoggerFromContext(c)

	credentialsError := func() {
		apperrors.RespondWithFields(c, http.StatusNotFound, apperrors.Fields{
			"email": "Can't find anyone with this credentials",
		})
	}

	var req authenticateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		credentialsError()
		return
	}

	user, err := ctrl.authService.Authenticate(rc.Session, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			credentialsError()
			return
		}
		log.Error("Authentication failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.InternalError(c, "")
		return
	}
	rc.User = user

	if err := ctrl.store.Save(c.Request.Context(), rc.Session); err != nil {
		log.Error("Failed to persist session", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusAccepted, snapshot(rc))
}

// Logout answers DELETE /sessions/:id: demote to anonymous. The snapshot
// of the now-anonymous session rides along with the 204.
func (ctrl *SessionController) Logout(c *gin.Context) {
	rc := middleware.GetRequestContext(c)
	log := middleware.GetLoggerFromContext(c)

	ctrl.authService.Logout(rc.Session)
	rc.User = nil

	if err := ctrl.store.Save(c.Request.Context(), rc.Session); err != nil {
		log.Error("Failed to persist session", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusNoContent, snapshot(rc))
}
