package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/taskmanager/taskmanager-api/internal/auth"
	"github.com/taskmanager/taskmanager-api/internal/constants"
	"github.com/taskmanager/taskmanager-api/internal/mailer"
	"github.com/taskmanager/taskmanager-api/internal/models"
	"github.com/taskmanager/taskmanager-api/internal/repository"
	"github.com/taskmanager/taskmanager-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken          = errors.New("user already registered")
	ErrNameRequired        = errors.New("name is required")
	ErrEmailRequired       = errors.New("email is required")
	ErrPasswordTooShort    = errors.New("password too short")
	ErrPasswordTooLong     = errors.New("password too long")
	ErrUserNotFound        = errors.New("user not found")
	ErrAccountNotConfirmed = errors.New("account not confirmed")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidToken        = errors.New("invalid token")
	ErrFailedToCreateUser  = errors.New("failed to create user")
	ErrFailedToIssueToken  = errors.New("failed to issue token")
)

const mailTimeout = 30 * time.Second

// AuthService owns user identity: registration, confirmation, login and the
// password reset flow.
type AuthService struct {
	userRepo repository.UserRepository
	mailer   mailer.Mailer
	tokens   *auth.TokenIssuer
	log      *logrus.Entry

	pending sync.WaitGroup
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, m mailer.Mailer, tokens *auth.TokenIssuer, log *logrus.Entry) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		mailer:   m,
		tokens:   tokens,
		log:      log.WithField("component", "auth"),
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// Signup creates an unconfirmed user and mails the confirmation link.
func (s *AuthService) Signup(input SignupInput) (*models.User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	taken, err := s.userRepo.EmailExists(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	token, err := utils.GenerateToken()
	if err != nil {
		return nil, ErrFailedToIssueToken
	}

	user := &models.User{
		Name:      name,
		Email:     email,
		Password:  input.Password,
		Token:     token,
		Confirmed: false,
	}

	if err := s.userRepo.Create(user); err != nil {
		// A concurrent signup can claim the email after the check above
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		s.log.WithError(err).Error("failed to create user")
		return nil, ErrFailedToCreateUser
	}

	msg := mailer.AccountEmail{Name: user.Name, Email: user.Email, Token: user.Token}
	s.sendAsync("confirmation", func(ctx context.Context) error {
		return s.mailer.SendConfirmation(ctx, msg)
	})

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is the authenticated user with a fresh session credential.
type LoginResult struct {
	User         *models.User
	SessionToken string
}

// Login verifies credentials and issues a session credential.
func (s *AuthService) Login(input LoginInput) (*LoginResult, error) {
	user, err := s.userRepo.FindByEmail(normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !user.Confirmed {
		return nil, ErrAccountNotConfirmed
	}

	if !user.CheckPassword(input.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToIssueToken, err)
	}

	return &LoginResult{User: user, SessionToken: token}, nil
}

// ConfirmAccount marks the token holder as confirmed and consumes the token.
func (s *AuthService) ConfirmAccount(token string) error {
	user, err := s.findByToken(token)
	if err != nil {
		return err
	}

	user.Confirmed = true
	user.Token = ""
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to confirm account: %w", err)
	}
	return nil
}

// RequestPasswordReset issues a fresh token and mails the reset link.
func (s *AuthService) RequestPasswordReset(email string) error {
	user, err := s.userRepo.FindByEmail(normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	token, err := utils.GenerateToken()
	if err != nil {
		return ErrFailedToIssueToken
	}

	user.Token = token
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	msg := mailer.AccountEmail{Name: user.Name, Email: user.Email, Token: token}
	s.sendAsync("password_reset", func(ctx context.Context) error {
		return s.mailer.SendPasswordReset(ctx, msg)
	})

	return nil
}

// ValidateResetToken reports whether token belongs to a user. It does not
// consume the token.
func (s *AuthService) ValidateResetToken(token string) error {
	_, err := s.findByToken(token)
	return err
}

// ResetPassword sets a new password for the token holder and consumes the token.
func (s *AuthService) ResetPassword(token, password string) error {
	user, err := s.findByToken(token)
	if err != nil {
		return err
	}

	if err := validatePassword(password); err != nil {
		return err
	}

	user.Password = password
	user.Token = ""
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// Wait blocks until every queued mail has been attempted.
func (s *AuthService) Wait() {
	s.pending.Wait()
}

func (s *AuthService) findByToken(token string) (*models.User, error) {
	user, err := s.userRepo.FindByToken(strings.TrimSpace(token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to find token: %w", err)
	}
	return user, nil
}

// sendAsync delivers a mail off the request path. Failures are logged and
// never undo the operation that queued the mail.
func (s *AuthService) sendAsync(kind string, send func(ctx context.Context) error) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()

		if err := send(ctx); err != nil {
			s.log.WithError(err).WithField("mail", kind).Warn("failed to send mail")
		}
	}()
}

func validatePassword(password string) error {
	if len(password) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > constants.MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
