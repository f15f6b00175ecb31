package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sellaro/sellaro-backend/config"
	"github.com/sellaro/sellaro-backend/internal/app/model"
	"github.com/sellaro/sellaro-backend/internal/app/repository"
	"github.com/sellaro/sellaro-backend/internal/app/service"
	"github.com/sellaro/sellaro-backend/internal/db"
	"github.com/sellaro/sellaro-backend/internal/middleware"
	"github.com/sellaro/sellaro-backend/internal/session"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testCookieName = "sid"

// testEnv hosts the full HTTP surface over sqlite and an in-process
// session store. The catalogue is left out; it needs a live document
// store and has its own backend tests.
type testEnv struct {
	db     *gorm.DB
	store  *session.MemoryStore
	router *gin.Engine

	userRepo     repository.UserRepository
	roleRepo     repository.RoleRepository
	customerRepo repository.CustomerRepository
	authService  service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(database) })

	store := session.NewMemoryStore()
	userRepo := repository.NewUserRepository(database)
	roleRepo := repository.NewRoleRepository(database)
	customerRepo := repository.NewCustomerRepository(database)

	sessionCfg := &config.SessionConfig{
		CookieName: testCookieName,
		TTL:        time.Hour,
		Secret:     "test-secret",
	}
	authService := service.NewAuthService(userRepo, customerRepo, sessionCfg)
	profileService := service.NewProfileService(userRepo, roleRepo)

	sessionMw := middleware.NewSessionMiddleware(store, userRepo, testCookieName, time.Hour)

	r := gin.New()
	r.Use(sessionMw.Load())

	api := r.Group("/api/v1")

	sessionCtrl := NewSessionController(authService, store)
	sessions := api.Group("/sessions")
	sessions.GET("", sessionCtrl.Get)
	sessions.GET("/:id", sessionCtrl.Get)
	sessions.POST("", sessionCtrl.Register)
	sessions.PUT("/:id", sessionCtrl.Authenticate)
	sessions.DELETE("/:id", sessionCtrl.Logout)

	profileCtrl := NewProfileController(userRepo, profileService, authService, store)
	profiles := api.Group("/profiles")
	profiles.GET("", middleware.LoginRequired(), profileCtrl.List)
	profiles.GET("/:id", profileCtrl.Retrieve)
	profiles.POST("", profileCtrl.Create)
	profiles.PUT("/:id", middleware.LoginRequired(), profileCtrl.Update)

	NewAddressController(database, customerRepo).Mount(api.Group("/addresses"))
	NewRoleController(database).Mount(api.Group("/roles"))
	NewBankAccountController(database).Mount(api.Group("/bank_accounts"))
	NewCustomerController(database, customerRepo, store).Mount(api.Group("/customers"))

	return &testEnv{
		db:           database,
		store:        store,
		router:       r,
		userRepo:     userRepo,
		roleRepo:     roleRepo,
		customerRepo: customerRepo,
		authService:  authService,
	}
}

// createUser registers a user through the auth service so the customer
// record comes along, then applies role and superuser flags.
func (e *testEnv) createUser(t *testing.T, email, password string, roles ...string) *model.User {
	t.Helper()

	user, err := e.authService.Register(email, password)
	require.NoError(t, err)

	for _, name := range roles {
		role, err := e.roleRepo.FindByName(name)
		if err != nil {
			role = &model.Role{Name: name}
			require.NoError(t, e.db.Create(role).Error)
		}
		require.NoError(t, e.userRepo.AddRole(user, role))
	}

	full, err := e.userRepo.FindByIDFull(user.ID)
	require.NoError(t, err)
	return full
}

func (e *testEnv) makeSuperuser(t *testing.T, user *model.User) {
	t.Helper()
	user.Superuser = true
	require.NoError(t, e.userRepo.Update(user))
}

// login builds a saved session for the user. A nil user yields a fresh
// anonymous session.
func (e *testEnv) login(t *testing.T, user *model.User) *session.Session {
	t.Helper()

	sess := session.New()
	if user != nil {
		sess.UserID = &user.ID
		if user.Customer != nil {
			sess.CustomerID = &user.Customer.ID
		}
	}
	require.NoError(t, e.store.Save(context.Background(), sess))
	return sess
}

func (e *testEnv) request(method, path string, body any, sess *session.Session) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if sess != nil {
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: sess.ID})
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}
