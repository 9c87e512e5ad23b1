package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gdpr-tracker/internal/apperrors"
	"gdpr-tracker/internal/dto"
	"gdpr-tracker/internal/logger"
	"gdpr-tracker/internal/models"
	"gdpr-tracker/internal/repositories"
	"gdpr-tracker/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofrs/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AvatarURLPrefix is the public route avatars are served from.
const AvatarURLPrefix = "/api/avatars/"

const sniffLen = 3072

var allowedAvatarTypes = []string{"image/jpeg", "image/png", "image/gif"}

type UserService interface {
	CreateUser(ctx context.Context, req dto.RegistrationRequest) (*dto.UserDTO, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*dto.UserDTO, error)
	GetUserByEmail(ctx context.Context, email string) (*dto.UserDTO, error)
	GetAllUsers(ctx context.Context) ([]dto.UserDTO, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserDTO, error)
	UpdateUserRole(ctx context.Context, id uuid.UUID, role models.UserRole) (*dto.UserDTO, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	UpdateAvatar(ctx context.Context, id uuid.UUID, content io.Reader, size int64) (*dto.UserDTO, error)
}

type UserServiceConfig struct {
	BCryptCost    int
	MaxAvatarSize int64
}

type UserServiceImpl struct {
	users   repositories.UserRepository
	avatars storage.FileStore
	config  UserServiceConfig
}

func NewUserService(users repositories.UserRepository, avatars storage.FileStore, config UserServiceConfig) *UserServiceImpl {
	if config.BCryptCost == 0 {
		config.BCryptCost = bcrypt.DefaultCost
	}
	if config.MaxAvatarSize <= 0 {
		config.MaxAvatarSize = 5 * 1024 * 1024
	}
	return &UserServiceImpl{users: users, avatars: avatars, config: config}
}

func (s *UserServiceImpl) CreateUser(ctx context.Context, req dto.RegistrationRequest) (*dto.UserDTO, error) {
	email := normalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)

	if err := s.checkEmailFree(ctx, email); err != nil {
		return nil, err
	}
	if err := s.checkUsernameFree(ctx, username); err != nil {
		return nil, err
	}

	role := models.RoleViewer
	if req.Role != "" {
		parsed, ok := models.ParseUserRole(string(req.Role))
		if !ok {
			return nil, apperrors.InvalidInput("Invalid role: %s", req.Role)
		}
		role = parsed
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BCryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hashedPassword),
		Role:         role,
		JobTitle:     req.JobTitle,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if isDuplicateKey(err) {
			return nil, s.conflict(ctx, email)
		}
		return nil, err
	}

	logger.InfoContext(ctx, "User registered", "user_id", user.ID, "role", user.Role)
	result := dto.ToUserDTO(user)
	return &result, nil
}

func (s *UserServiceImpl) GetUserByID(ctx context.Context, id uuid.UUID) (*dto.UserDTO, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	result := dto.ToUserDTO(user)
	return &result, nil
}

func (s *UserServiceImpl) GetUserByEmail(ctx context.Context, email string) (*dto.UserDTO, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	result := dto.ToUserDTO(user)
	return &result, nil
}

func (s *UserServiceImpl) GetAllUsers(ctx context.Context) ([]dto.UserDTO, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return dto.ToUserDTOs(users), nil
}

func (s *UserServiceImpl) UpdateUser(ctx context.Context, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserDTO, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email != user.Email {
			if err := s.checkEmailFree(ctx, email); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username != user.Username {
			if err := s.checkUsernameFree(ctx, username); err != nil {
				return nil, err
			}
			user.Username = username
		}
	}
	if req.JobTitle != nil {
		user.JobTitle = *req.JobTitle
	}
	if req.Role != nil {
		role, ok := models.ParseUserRole(string(*req.Role))
		if !ok {
			return nil, apperrors.InvalidInput("Invalid role: %s", *req.Role)
		}
		user.Role = role
	}

	if err := s.users.Update(ctx, user); err != nil {
		if isDuplicateKey(err) {
			return nil, s.conflict(ctx, user.Email)
		}
		return nil, err
	}

	logger.InfoContext(ctx, "User updated", "user_id", user.ID)
	result := dto.ToUserDTO(user)
	return &result, nil
}

func (s *UserServiceImpl) UpdateUserRole(ctx context.Context, id uuid.UUID, role models.UserRole) (*dto.UserDTO, error) {
	parsed, ok := models.ParseUserRole(string(role))
	if !ok {
		return nil, apperrors.InvalidInput("Invalid role: %s", role)
	}

	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := user.Role
	user.Role = parsed
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "User role changed", "user_id", user.ID, "from", previous, "to", parsed)
	result := dto.ToUserDTO(user)
	return &result, nil
}

func (s *UserServiceImpl) DeleteUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.removeAvatar(ctx, user.AvatarURL)

	logger.InfoContext(ctx, "User deleted", "user_id", id)
	return nil
}

// UpdateAvatar stores a JPEG, PNG or GIF image and points the user's avatar
// reference at it. The previous image is removed on a best-effort basis.
func (s *UserServiceImpl) UpdateAvatar(ctx context.Context, id uuid.UUID, content io.Reader, size int64) (*dto.UserDTO, error) {
	if s.avatars == nil {
		return nil, apperrors.FileStorage(nil, "Avatar storage is not configured")
	}
	if size == 0 {
		return nil, apperrors.InvalidInput("Avatar file is empty")
	}
	if size > s.config.MaxAvatarSize {
		return nil, apperrors.InvalidInput("Avatar exceeds maximum size of %d bytes", s.config.MaxAvatarSize)
	}

	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	body, mtype, err := sniff(content)
	if err != nil {
		return nil, apperrors.FileStorage(err, "Could not read avatar")
	}
	if !mimetype.EqualsAny(mtype.String(), allowedAvatarTypes...) {
		return nil, apperrors.InvalidInput("Only JPEG, PNG and GIF images are allowed")
	}

	suffix, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("%s_%s%s", user.ID, suffix, mtype.Extension())
	if _, err := s.avatars.Save(ctx, name, body, size, mtype.String()); err != nil {
		return nil, apperrors.FileStorage(err, "Could not store avatar")
	}

	previous := user.AvatarURL
	user.AvatarURL = AvatarURLPrefix + name
	if err := s.users.Update(ctx, user); err != nil {
		s.removeAvatar(ctx, user.AvatarURL)
		return nil, err
	}
	s.removeAvatar(ctx, previous)

	logger.InfoContext(ctx, "Avatar updated", "user_id", user.ID, "content_type", mtype.String())
	result := dto.ToUserDTO(user)
	return &result, nil
}

func (s *UserServiceImpl) removeAvatar(ctx context.Context, avatarURL string) {
	if s.avatars == nil || !strings.HasPrefix(avatarURL, AvatarURLPrefix) {
		return
	}
	name := strings.TrimPrefix(avatarURL, AvatarURLPrefix)
	if err := s.avatars.Delete(ctx, name); err != nil {
		logger.WarnContext(ctx, "Failed to remove avatar", "name", name, "error", err)
	}
}

func (s *UserServiceImpl) findUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	return user, nil
}

func (s *UserServiceImpl) checkEmailFree(ctx context.Context, email string) error {
	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		return apperrors.AlreadyExists("Email already registered")
	}
	return nil
}

func (s *UserServiceImpl) checkUsernameFree(ctx context.Context, username string) error {
	taken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return err
	}
	if taken {
		return apperrors.AlreadyExists("Username already taken")
	}
	return nil
}

// conflict names the column behind a unique-index violation that slipped
// past the pre-checks.
func (s *UserServiceImpl) conflict(ctx context.Context, email string) error {
	if taken, err := s.users.ExistsByEmail(ctx, email); err == nil && taken {
		return apperrors.AlreadyExists("Email already registered")
	}
	return apperrors.AlreadyExists("Username already taken")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// sniff detects the content type from the first bytes of r and returns a
// reader that still yields the whole stream.
func sniff(r io.Reader) (io.Reader, *mimetype.MIME, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, nil, err
	}
	head = head[:n]
	return io.MultiReader(bytes.NewReader(head), r), mimetype.Detect(head), nil
}
