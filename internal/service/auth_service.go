package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"storefront-backend/internal/logging"
	"storefront-backend/internal/models"
	"storefront-backend/internal/otp"
	"storefront-backend/internal/repository"
)

// AdminUserID is the subject of tokens issued to the configured admin,
// who has no user document.
const AdminUserID = "admin"

type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	AdminLogin(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	SetUserActive(ctx context.Context, userID string, active bool) (*models.User, error)
}

type AdminCredentials struct {
	Email    string
	Password string
}

type authService struct {
	users  repository.UserRepository
	tokens *TokenIssuer
	otps   *otp.Service
	admin  AdminCredentials
	log    *logging.Logger
}

func NewAuthService(users repository.UserRepository, tokens *TokenIssuer, otps *otp.Service, admin AdminCredentials, log *logging.Logger) AuthService {
	return &authService{
		users:  users,
		tokens: tokens,
		otps:   otps,
		admin:  admin,
		log:    log.Named("auth"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &models.User{
		Name:        strings.TrimSpace(req.Name),
		Email:       normalizeEmail(req.Email),
		Password:    string(hashed),
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
		Address:     req.Address,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID.Hex(), models.RoleUser)
	if err != nil {
		return nil, err
	}
	s.log.WithContext(ctx).Info("user registered", "user_id", user.ID.Hex())
	return &models.AuthResponse{User: user, Token: token, Role: models.RoleUser}, nil
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	now := time.Now()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.log.WithContext(ctx).WithError(err).Warn("failed to record last login", "user_id", user.ID.Hex())
	} else {
		user.LastLogin = &now
	}

	token, err := s.tokens.Issue(user.ID.Hex(), models.RoleUser)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{User: user, Token: token, Role: models.RoleUser}, nil
}

func (s *authService) AdminLogin(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if s.admin.Email == "" || s.admin.Password == "" {
		return nil, ErrInvalidCredentials
	}
	emailOK := subtle.ConstantTimeCompare([]byte(normalizeEmail(req.Email)), []byte(normalizeEmail(s.admin.Email))) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.admin.Password)) == 1
	if !emailOK || !passOK {
		s.log.WithContext(ctx).Warn("admin login rejected")
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(AdminUserID, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, Role: models.RoleAdmin}, nil
}

func (s *authService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	email := normalizeEmail(req.Email)
	if err := s.otps.Verify(ctx, models.OTPPurposeReset, email, req.OTP); err != nil {
		return otpError(err)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return notFound(err, "user")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.SetPassword(ctx, user.ID, string(hashed)); err != nil {
		return notFound(err, "user")
	}
	s.log.WithContext(ctx).Info("password reset", "user_id", user.ID.Hex())
	return nil
}

func (s *authService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	id, err := parseID(userID, "user")
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalid("name cannot be empty")
		}
		user.Name = name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.DateOfBirth != nil {
		user.DateOfBirth = req.DateOfBirth
	}
	if req.Gender != nil {
		user.Gender = *req.Gender
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	user.UpdatedAt = time.Now()

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

func (s *authService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.users.List(ctx)
}

func (s *authService) SetUserActive(ctx context.Context, userID string, active bool) (*models.User, error) {
	id, err := parseID(userID, "user")
	if err != nil {
		return nil, err
	}
	if err := s.users.SetActive(ctx, id, active); err != nil {
		return nil, notFound(err, "user")
	}
	return s.GetUser(ctx, userID)
}

func otpError(err error) error {
	if errors.Is(err, otp.ErrInvalidCode) || errors.Is(err, otp.ErrTooManyAttempts) {
		return fmt.Errorf("%w: %v", ErrInvalidOTP, err)
	}
	return err
}
