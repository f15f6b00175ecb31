package service

import (
	"errors"
	"time"

	"github.com/sellaro/sellaro-backend/config"
	"github.com/sellaro/sellaro-backend/internal/app/model"
	"github.com/sellaro/sellaro-backend/internal/app/repository"
	"github.com/sellaro/sellaro-backend/internal/session"
	"github.com/sellaro/sellaro-backend/pkg/logger"
	"github.com/sellaro/sellaro-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid confirmation token")
)

// Accounts registered without a password carry this placeholder so the
// hash column is never empty. It can never verify against real input.
const unsetPassword = "*"

type AuthService interface {
	// Register creates a user together with its customer record. An empty
	// password registers the account with an unusable placeholder.
	Register(email, password string) (*model.User, error)
	// Authenticate verifies credentials and promotes the session. Any cart
	// collected anonymously is carried over onto the user's customer.
	Authenticate(sess *session.Session, email, password string) (*model.User, error)
	// Logout demotes the session back to anonymous, keeping its id.
	Logout(sess *session.Session)
	// IssueConfirmationToken builds a signed email confirmation token.
	IssueConfirmationToken(user *model.User) (string, error)
	// ConfirmEmail validates a confirmation token and marks the account
	// confirmed.
	ConfirmEmail(token string) (*model.User, error)
}

type authService struct {
	userRepo     repository.UserRepository
	customerRepo repository.CustomerRepository
	cfg          *config.SessionConfig
}

func NewAuthService(userRepo repository.UserRepository, customerRepo repository.CustomerRepository, cfg *config.SessionConfig) AuthService {
	return &authService{
		userRepo:     userRepo,
		customerRepo: customerRepo,
		cfg:          cfg,
	}
}

func (s *authService) Register(email, password string) (*model.User, error) {
	logger.Info("Registering new user", map[string]interface{}{
		"email": email,
	})

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		logger.Warn("Registration with taken email", map[string]interface{}{
			"email": email,
		})
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash := unsetPassword
	if password != "" {
		var err error
		hash, err = util.HashPassword(password)
		if err != nil {
			logger.Error("Failed to hash password", err, nil)
			return nil, err
		}
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		Active:       true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	customer := &model.Customer{
		UserID: &user.ID,
		Email:  email,
	}
	if err := s.customerRepo.Create(customer); err != nil {
		return nil, err
	}
	user.Customer = customer

	logger.Info("User registered", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
	})
	return user, nil
}

func (s *authService) Authenticate(sess *session.Session, email, password string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Authentication for unknown email", map[string]interface{}{
				"email": email,
			})
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Authentication with wrong password", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, ErrInvalidCredentials
	}

	if err := s.adoptAnonymousCart(sess, user); err != nil {
		return nil, err
	}

	sess.UserID = &user.ID
	if user.Customer != nil {
		sess.CustomerID = &user.Customer.ID
	}

	now := time.Now().UTC()
	user.CurrentLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		logger.Error("Failed to record login time", err, map[string]interface{}{
			"user_id": user.ID,
		})
	}

	logger.Info("User authenticated", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, nil
}

// adoptAnonymousCart moves carts collected before login onto the user's
// own customer record. Sessions pointing at a customer already owned by
// some user are left alone.
func (s *authService) adoptAnonymousCart(sess *session.Session, user *model.User) error {
	if sess.CustomerID == nil || user.Customer == nil {
		return nil
	}
	if *sess.CustomerID == user.Customer.ID {
		return nil
	}

	anonymous, err := s.customerRepo.FindByID(*sess.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if anonymous.UserID != nil {
		return nil
	}

	if err := s.customerRepo.MergeAnonymousInto(anonymous.ID, user.Customer.ID); err != nil {
		return err
	}

	logger.Info("Anonymous cart adopted on login", map[string]interface{}{
		"user_id":     user.ID,
		"customer_id": user.Customer.ID,
	})
	return nil
}

func (s *authService) Logout(sess *session.Session) {
	logger.Info("User logged out", map[string]interface{}{
		"session_id": sess.ID,
	})
	sess.Reset()
}

func (s *authService) IssueConfirmationToken(user *model.User) (string, error) {
	return util.GenerateConfirmationToken(user.ID, user.Email, s.cfg.Secret, 72*time.Hour)
}

func (s *authService) ConfirmEmail(token string) (*model.User, error) {
	claims, err := util.ValidateConfirmationToken(token, s.cfg.Secret)
	if err != nil {
		logger.Warn("Invalid confirmation token", map[string]interface{}{
			"reason": err.Error(),
		})
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.FindByIDFull(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if user.ConfirmedAt == nil {
		now := time.Now().UTC()
		user.ConfirmedAt = &now
		if err := s.userRepo.Update(user); err != nil {
			return nil, err
		}
		logger.Info("Email confirmed", map[string]interface{}{
			"user_id": user.ID,
		})
	}
	return user, nil
}
