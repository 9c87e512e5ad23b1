package services_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"gdpr-tracker/internal/apperrors"
	"gdpr-tracker/internal/dto"
	"gdpr-tracker/internal/models"
	"gdpr-tracker/internal/services"
)

func pngBytes() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func (s *ServicesTestSuite) TestCreateUser_DefaultsAndNormalizes() {
	user, err := s.users.CreateUser(s.ctx, dto.RegistrationRequest{
		Email:    "  Alice@Example.COM ",
		Username: "alice",
		Password: "password123",
	})
	s.Require().NoError(err)
	s.Equal("alice@example.com", user.Email)
	s.Equal(models.RoleViewer, user.Role)

	stored, err := s.userRepo.FindByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.NotEqual("password123", stored.PasswordHash)
	s.True(services.VerifyPassword(stored.PasswordHash, "password123"))
}

func (s *ServicesTestSuite) TestCreateUser_Conflicts() {
	s.register("alice", models.RoleViewer)

	_, err := s.users.CreateUser(s.ctx, dto.RegistrationRequest{
		Email: "ALICE@example.com", Username: "someone", Password: "password123",
	})
	s.assertKind(err, apperrors.KindAlreadyExists, "Email already registered")

	_, err = s.users.CreateUser(s.ctx, dto.RegistrationRequest{
		Email: "other@example.com", Username: "alice", Password: "password123",
	})
	s.assertKind(err, apperrors.KindAlreadyExists, "Username already taken")

	_, err = s.users.CreateUser(s.ctx, dto.RegistrationRequest{
		Email: "new@example.com", Username: "new", Password: "password123", Role: "ROOT",
	})
	s.assertKind(err, apperrors.KindInvalidInput, "Invalid role: ROOT")

	all, err := s.users.GetAllUsers(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *ServicesTestSuite) TestGetUser() {
	alice := s.register("alice", models.RoleEditor)

	byID, err := s.users.GetUserByID(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal("alice", byID.Username)

	byEmail, err := s.users.GetUserByEmail(s.ctx, "ALICE@example.com")
	s.Require().NoError(err)
	s.Equal(alice.ID, byEmail.ID)

	_, err = s.users.GetUserByID(s.ctx, randomID())
	s.assertKind(err, apperrors.KindNotFound, "User not found")

	_, err = s.users.GetUserByEmail(s.ctx, "nobody@example.com")
	s.assertKind(err, apperrors.KindNotFound, "User not found")
}

func (s *ServicesTestSuite) TestUpdateUser() {
	alice := s.register("alice", models.RoleViewer)
	s.register("bob", models.RoleViewer)

	title := "Privacy Counsel"
	updated, err := s.users.UpdateUser(s.ctx, alice.ID, dto.UpdateUserRequest{JobTitle: &title})
	s.Require().NoError(err)
	s.Equal("Privacy Counsel", updated.JobTitle)
	s.Equal("alice@example.com", updated.Email)

	taken := "bob@example.com"
	_, err = s.users.UpdateUser(s.ctx, alice.ID, dto.UpdateUserRequest{Email: &taken})
	s.assertKind(err, apperrors.KindAlreadyExists, "Email already registered")

	name := "bob"
	_, err = s.users.UpdateUser(s.ctx, alice.ID, dto.UpdateUserRequest{Username: &name})
	s.assertKind(err, apperrors.KindAlreadyExists, "Username already taken")

	same := "alice@example.com"
	_, err = s.users.UpdateUser(s.ctx, alice.ID, dto.UpdateUserRequest{Email: &same})
	s.NoError(err, "keeping the current email is not a conflict")

	_, err = s.users.UpdateUser(s.ctx, randomID(), dto.UpdateUserRequest{JobTitle: &title})
	s.assertKind(err, apperrors.KindNotFound, "User not found")
}

func (s *ServicesTestSuite) TestUpdateUserRole() {
	alice := s.register("alice", models.RoleViewer)

	updated, err := s.users.UpdateUserRole(s.ctx, alice.ID, models.RoleAdmin)
	s.Require().NoError(err)
	s.Equal(models.RoleAdmin, updated.Role)

	_, err = s.users.UpdateUserRole(s.ctx, alice.ID, "OWNER")
	s.assertKind(err, apperrors.KindInvalidInput, "Invalid role: OWNER")
}

func (s *ServicesTestSuite) TestDeleteUser() {
	alice := s.register("alice", models.RoleViewer)

	s.Require().NoError(s.users.DeleteUser(s.ctx, alice.ID))
	_, err := s.users.GetUserByID(s.ctx, alice.ID)
	s.assertKind(err, apperrors.KindNotFound, "User not found")

	err = s.users.DeleteUser(s.ctx, alice.ID)
	s.assertKind(err, apperrors.KindNotFound, "User not found")
}

func (s *ServicesTestSuite) TestUpdateAvatar() {
	alice := s.register("alice", models.RoleViewer)
	img := pngBytes()

	updated, err := s.users.UpdateAvatar(s.ctx, alice.ID, bytes.NewReader(img), int64(len(img)))
	s.Require().NoError(err)
	s.True(strings.HasPrefix(updated.AvatarURL, services.AvatarURLPrefix+alice.ID.String()+"_"))
	s.True(strings.HasSuffix(updated.AvatarURL, ".png"))

	first := filepath.Join(s.avatars.Root(), strings.TrimPrefix(updated.AvatarURL, services.AvatarURLPrefix))
	s.FileExists(first)

	replaced, err := s.users.UpdateAvatar(s.ctx, alice.ID, bytes.NewReader(img), int64(len(img)))
	s.Require().NoError(err)
	s.NotEqual(updated.AvatarURL, replaced.AvatarURL)
	_, statErr := os.Stat(first)
	s.True(os.IsNotExist(statErr), "previous avatar should be removed")
}

func (s *ServicesTestSuite) TestUpdateAvatar_Rejections() {
	alice := s.register("alice", models.RoleViewer)

	_, err := s.users.UpdateAvatar(s.ctx, alice.ID, bytes.NewReader(nil), 0)
	s.assertKind(err, apperrors.KindInvalidInput, "Avatar file is empty")

	text := []byte("definitely not an image")
	_, err = s.users.UpdateAvatar(s.ctx, alice.ID, bytes.NewReader(text), int64(len(text)))
	s.assertKind(err, apperrors.KindInvalidInput, "Only JPEG, PNG and GIF images are allowed")

	_, err = s.users.UpdateAvatar(s.ctx, alice.ID, bytes.NewReader(text), 2*1024*1024)
	s.assertKind(err, apperrors.KindInvalidInput, "")

	img := pngBytes()
	_, err = s.users.UpdateAvatar(s.ctx, randomID(), bytes.NewReader(img), int64(len(img)))
	s.assertKind(err, apperrors.KindNotFound, "User not found")

	noStore := services.NewUserService(s.userRepo, nil, services.UserServiceConfig{})
	_, err = noStore.UpdateAvatar(s.ctx, alice.ID, bytes.NewReader(img), int64(len(img)))
	s.assertKind(err, apperrors.KindFileStorage, "")
}
