package services_test

import (
	"time"

	"gdpr-tracker/internal/apperrors"
	"gdpr-tracker/internal/models"
	"gdpr-tracker/internal/services"

	"github.com/golang-jwt/jwt/v5"
)

func (s *ServicesTestSuite) TestLogin_IssuesSignedTokens() {
	alice := s.register("alice", models.RoleEditor)

	tokens, err := s.auth.Login(s.ctx, "Alice@Example.com", "password123")
	s.Require().NoError(err)
	s.Equal(services.TokenTypeBearer, tokens.TokenType)
	s.EqualValues(3600, tokens.ExpiresIn)
	s.NotEmpty(tokens.RefreshToken)

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(tokens.AccessToken, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithIssuer("gdpr-tracker-test"))
	s.Require().NoError(err)
	s.True(parsed.Valid)
	s.Equal(alice.ID.String(), claims["user_id"])
	s.Equal("EDITOR", claims["role"])
}

func (s *ServicesTestSuite) TestLogin_BadCredentials() {
	s.register("alice", models.RoleViewer)

	_, err := s.auth.Login(s.ctx, "alice@example.com", "wrong")
	s.assertKind(err, apperrors.KindUnauthorized, "Invalid email or password")

	_, err = s.auth.Login(s.ctx, "ghost@example.com", "password123")
	s.assertKind(err, apperrors.KindUnauthorized, "Invalid email or password")
}

func (s *ServicesTestSuite) TestRefresh_IsSingleUse() {
	s.register("alice", models.RoleViewer)
	first, err := s.auth.Login(s.ctx, "alice@example.com", "password123")
	s.Require().NoError(err)

	second, err := s.auth.Refresh(s.ctx, first.RefreshToken)
	s.Require().NoError(err)
	s.NotEqual(first.RefreshToken, second.RefreshToken)

	_, err = s.auth.Refresh(s.ctx, first.RefreshToken)
	s.assertKind(err, apperrors.KindUnauthorized, "Invalid or expired refresh token")

	_, err = s.auth.Refresh(s.ctx, second.RefreshToken)
	s.NoError(err)
}

func (s *ServicesTestSuite) TestRefresh_Expired() {
	s.register("alice", models.RoleViewer)
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.auth.SetClock(func() time.Time { return issued })

	tokens, err := s.auth.Login(s.ctx, "alice@example.com", "password123")
	s.Require().NoError(err)

	s.auth.SetClock(func() time.Time { return issued.Add(25 * time.Hour) })
	_, err = s.auth.Refresh(s.ctx, tokens.RefreshToken)
	s.assertKind(err, apperrors.KindUnauthorized, "Invalid or expired refresh token")
}

func (s *ServicesTestSuite) TestLogout() {
	s.register("alice", models.RoleViewer)
	tokens, err := s.auth.Login(s.ctx, "alice@example.com", "password123")
	s.Require().NoError(err)

	s.Require().NoError(s.auth.Logout(s.ctx, tokens.RefreshToken))

	_, err = s.auth.Refresh(s.ctx, tokens.RefreshToken)
	s.assertKind(err, apperrors.KindUnauthorized, "")

	err = s.auth.Logout(s.ctx, tokens.RefreshToken)
	s.assertKind(err, apperrors.KindNotFound, "Refresh token not found")
}
