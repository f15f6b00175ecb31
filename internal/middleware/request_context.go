package middleware

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sellaro/sellaro-backend/internal/app/model"
	"github.com/sellaro/sellaro-backend/internal/app/repository"
	apperrors "github.com/sellaro/sellaro-backend/internal/errors"
	"github.com/sellaro/sellaro-backend/internal/session"
	"gorm.io/gorm"
)

const requestContextKey = "request_context"

// RequestContext carries everything a handler needs to know about the
// caller: the session, the authenticated user (nil when anonymous) and a
// request id. It is built once per request and passed through the gin
// context instead of ambient globals.
type RequestContext struct {
	RequestID string
	Session   *session.Session
	User      *model.User
}

// IsAnonymous reports whether no authenticated user is attached.
func (rc *RequestContext) IsAnonymous() bool {
	return rc.User == nil
}

// IsSuperuser reports whether the caller is a superuser.
func (rc *RequestContext) IsSuperuser() bool {
	return rc.User != nil && rc.User.Superuser
}

// HasRole reports whether the caller carries the named role.
func (rc *RequestContext) HasRole(name string) bool {
	return rc.User != nil && rc.User.HasRole(name)
}

// SessionMiddleware loads or creates the per-request session and resolves
// the authenticated user behind it.
type SessionMiddleware struct {
	store      session.Store
	users      repository.UserRepository
	cookieName string
	ttl        time.Duration
}

func NewSessionMiddleware(store session.Store, users repository.UserRepository, cookieName string, ttl time.Duration) *SessionMiddleware {
	return &SessionMiddleware{
		store:      store,
		users:      users,
		cookieName: cookieName,
		ttl:        ttl,
	}
}

// Load attaches a RequestContext to every request. A missing or expired
// session cookie starts a fresh anonymous session.
func (m *SessionMiddleware) Load() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)
		ctx := c.Request.Context()

		var sess *session.Session
		if cookie, err := c.Cookie(m.cookieName); err == nil {
			sess, err = m.store.Load(ctx, cookie)
			if err != nil && !errors.Is(err, session.ErrSessionNotFound) {
				log.Error("Failed to load session", err, map[string]interface{}{
					"session_id": cookie,
				})
				apperrors.InternalError(c, "")
				c.Abort()
				return
			}
		}

		if sess == nil {
			sess = session.New()
			if err := m.store.Save(ctx, sess); err != nil {
				log.Error("Failed to persist new session", err, nil)
				apperrors.InternalError(c, "")
				c.Abort()
				return
			}
			c.SetCookie(m.cookieName, sess.ID, int(m.ttl.Seconds()), "/", "", false, true)
			log.Debug("Started anonymous session", map[string]interface{}{
				"session_id": sess.ID,
			})
		}

		rc := &RequestContext{
			RequestID: uuid.NewString(),
			Session:   sess,
		}

		if sess.UserID != nil {
			user, err := m.users.FindByIDFull(*sess.UserID)
			switch {
			case err == nil:
				rc.User = user
			case errors.Is(err, gorm.ErrRecordNotFound):
				// The account behind this session is gone; demote to
				// anonymous rather than failing every request.
				log.Warn("Session references a missing user", map[string]interface{}{
					"session_id": sess.ID,
					"user_id":    *sess.UserID,
				})
				sess.Reset()
				if err := m.store.Save(ctx, sess); err != nil {
					log.Error("Failed to reset orphaned session", err, nil)
				}
			default:
				log.Error("Failed to resolve session user", err, map[string]interface{}{
					"user_id": *sess.UserID,
				})
				apperrors.InternalError(c, "")
				c.Abort()
				return
			}
		}

		c.Set(requestContextKey, rc)
		c.Next()
	}
}

// GetRequestContext extracts the RequestContext from the gin context.
func GetRequestContext(c *gin.Context) *RequestContext {
	if v, exists := c.Get(requestContextKey); exists {
		if rc, ok := v.(*RequestContext); ok {
			return rc
		}
	}
	return nil
}

// LoginRequired rejects anonymous callers with 401.
func LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		rc := GetRequestContext(c)
		if rc == nil || rc.IsAnonymous() {
			apperrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole rejects callers that carry none of the given roles with 403.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc := GetRequestContext(c)
		if rc == nil || rc.IsAnonymous() {
			apperrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		for _, role := range roles {
			if rc.HasRole(role) {
				c.Next()
				return
			}
		}

		GetLoggerFromContext(c).Warn("Insufficient permissions", map[string]interface{}{
			"user_id":        rc.User.ID,
			"required_roles": roles,
			"path":           c.Request.URL.Path,
		})
		apperrors.Forbidden(c, "")
		c.Abort()
	}
}
