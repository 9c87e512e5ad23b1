package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gdpr-tracker/internal/apperrors"
	"gdpr-tracker/internal/dto"
	"gdpr-tracker/internal/logger"
	"gdpr-tracker/internal/models"
	"gdpr-tracker/internal/repositories"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const TokenTypeBearer = "Bearer"

type AuthService interface {
	Login(ctx context.Context, email, password string) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	GenerateToken(ctx context.Context, user *models.User) (*dto.TokenResponse, error)
}

type AuthConfig struct {
	Secret          string
	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type AuthServiceImpl struct {
	users  repositories.UserRepository
	tokens repositories.RefreshTokenRepository
	config AuthConfig
	now    func() time.Time
}

func NewAuthService(users repositories.UserRepository, tokens repositories.RefreshTokenRepository, config AuthConfig) *AuthServiceImpl {
	if config.AccessTokenTTL <= 0 {
		config.AccessTokenTTL = time.Hour
	}
	if config.RefreshTokenTTL <= 0 {
		config.RefreshTokenTTL = 7 * 24 * time.Hour
	}
	return &AuthServiceImpl{
		users:  users,
		tokens: tokens,
		config: config,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func VerifyPassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*dto.TokenResponse, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WarnContext(ctx, "Login failed", "reason", "unknown email")
			return nil, apperrors.Unauthorized("Invalid email or password")
		}
		return nil, err
	}
	if !VerifyPassword(user.PasswordHash, password) {
		logger.WarnContext(ctx, "Login failed", "user_id", user.ID, "reason", "bad password")
		return nil, apperrors.Unauthorized("Invalid email or password")
	}

	return s.GenerateToken(ctx, user)
}

// Refresh exchanges a live refresh token for a new pair. The presented
// token is revoked so each refresh token is single-use.
func (s *AuthServiceImpl) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	token, err := s.tokens.FindValid(ctx, refreshToken, s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Unauthorized("Invalid or expired refresh token")
		}
		return nil, err
	}

	user, err := s.users.FindByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Unauthorized("Invalid or expired refresh token")
		}
		return nil, err
	}

	if _, err := s.tokens.Delete(ctx, refreshToken); err != nil {
		return nil, err
	}
	return s.GenerateToken(ctx, user)
}

func (s *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	deleted, err := s.tokens.Delete(ctx, refreshToken)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NotFound("Refresh token not found")
	}
	return nil
}

func (s *AuthServiceImpl) GenerateToken(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	now := s.now()

	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    string(user.Role),
		"iss":     s.config.Issuer,
		"iat":     now.Unix(),
		"exp":     now.Add(s.config.AccessTokenTTL).Unix(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshUUID, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	refresh := &models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshUUID.String(),
		ExpiresAt: now.Add(s.config.RefreshTokenTTL),
	}
	if err := s.tokens.Create(ctx, refresh); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Tokens issued", "user_id", user.ID)
	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refresh.Token,
		TokenType:    TokenTypeBearer,
		ExpiresIn:    int64(s.config.AccessTokenTTL.Seconds()),
	}, nil
}
