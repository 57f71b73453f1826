package services

import (
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/workhaven/coworking-backend/internal/apperrors"
	"github.com/workhaven/coworking-backend/internal/database"
	"github.com/workhaven/coworking-backend/internal/models"
	"github.com/workhaven/coworking-backend/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// RegisterRequest is the payload for POST /auth/register
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role"`
}

// LoginRequest is the payload for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries the issued token and the user it belongs to
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// AuthService handles registration, login and profile management
type AuthService struct {
	userRepo   *database.UserRepository
	jwtManager *jwt.Manager
	bcryptCost int
	logger     *logrus.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *database.UserRepository, jwtManager *jwt.Manager, bcryptCost int, logger *logrus.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register creates a new account and issues a token. Self-service signup
// covers clients and managers; admin accounts are provisioned out of band.
func (s *AuthService) Register(req *RegisterRequest) (*AuthResponse, error) {
	role := models.RoleClient
	switch strings.ToLower(req.Role) {
	case "", string(models.RoleClient):
	case string(models.RoleManager):
		role = models.RoleManager
	default:
		return nil, apperrors.Validation("role must be client or manager")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, apperrors.Internal("failed to hash password", err)
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		FullName:     req.FullName,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	token, err := s.jwtManager.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, apperrors.Internal("failed to issue token", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("User registered")

	return &AuthResponse{Token: token, User: user}, nil
}

// Login verifies credentials and issues a token. The error is the same for
// an unknown email and a wrong password.
func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, apperrors.Unauthorized("invalid email or password")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.Unauthorized("invalid email or password")
	}
	if user.Status != "active" {
		return nil, apperrors.Forbidden("account is suspended")
	}

	token, err := s.jwtManager.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, apperrors.Internal("failed to issue token", err)
	}

	return &AuthResponse{Token: token, User: user}, nil
}

// ListUsers retrieves all accounts for platform operators
func (s *AuthService) ListUsers() ([]models.User, error) {
	return s.userRepo.List()
}

// GetProfile retrieves a user's profile
func (s *AuthService) GetProfile(userID uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(userID)
}

// UpdateProfile updates the caller's name and/or password
func (s *AuthService) UpdateProfile(userID uuid.UUID, req *models.UpdateProfileRequest) (*models.User, error) {
	var passwordHash *string
	if req.Password != nil {
		if len(*req.Password) < 8 {
			return nil, apperrors.Validation("password must be at least 8 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.bcryptCost)
		if err != nil {
			return nil, apperrors.Internal("failed to hash password", err)
		}
		hashStr := string(hash)
		passwordHash = &hashStr
	}

	if err := s.userRepo.UpdateProfile(userID, req.FullName, passwordHash); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(userID)
}
