package dto

import (
	"time"

	"gdpr-tracker/internal/models"

	"github.com/gofrs/uuid"
)

type UserDTO struct {
	ID        uuid.UUID       `json:"id"`
	Email     string          `json:"email"`
	Username  string          `json:"username"`
	JobTitle  string          `json:"job_title"`
	Role      models.UserRole `json:"role"`
	AvatarURL string          `json:"avatar_url"`
	CreatedAt time.Time       `json:"created_at"`
}

type RegistrationRequest struct {
	Email    string          `json:"email" binding:"required,email,max=255"`
	Username string          `json:"username" binding:"required,min=3,max=50"`
	Password string          `json:"password" binding:"required,min=8,max=72"`
	JobTitle string          `json:"job_title" binding:"max=255"`
	Role     models.UserRole `json:"role,omitempty" binding:"omitempty,userrole"`
}

// UpdateUserRequest carries only the fields to change.
type UpdateUserRequest struct {
	Email    *string          `json:"email" binding:"omitempty,email,max=255"`
	Username *string          `json:"username" binding:"omitempty,min=3,max=50"`
	JobTitle *string          `json:"job_title" binding:"omitempty,max=255"`
	Role     *models.UserRole `json:"role" binding:"omitempty,userrole"`
}

type UpdateRoleRequest struct {
	Role models.UserRole `json:"role" binding:"required,userrole"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// TaskCreateRequest is the input to task creation. Status is accepted for
// client convenience but ignored: new tasks always start OPEN.
type TaskCreateRequest struct {
	Title       string            `json:"title" binding:"required,max=255"`
	Description string            `json:"description" binding:"required"`
	Priority    models.Priority   `json:"priority" binding:"required,priority"`
	Status      models.TaskStatus `json:"status,omitempty"`
	AssigneeID  *uuid.UUID        `json:"assignee_id"`
	DueDate     time.Time         `json:"due_date" binding:"required"`
}

type TaskUpdateRequest struct {
	Title       *string            `json:"title" binding:"omitempty,max=255"`
	Description *string            `json:"description"`
	Status      *models.TaskStatus `json:"status" binding:"omitempty,taskstatus"`
	Priority    *models.Priority   `json:"priority" binding:"omitempty,priority"`
	DueDate     *time.Time         `json:"due_date"`
	AssigneeID  *uuid.UUID         `json:"assignee_id"`
}

type StatusUpdateRequest struct {
	Status models.TaskStatus `json:"status" binding:"required,taskstatus"`
}

type TaskDTO struct {
	ID          uuid.UUID         `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Priority    models.Priority   `json:"priority"`
	Status      models.TaskStatus `json:"status"`
	DueDate     time.Time         `json:"due_date"`
	CreatorID   uuid.UUID         `json:"creator_id"`
	AssigneeID  *uuid.UUID        `json:"assignee_id,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type CommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type CommentDTO struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	UserID    uuid.UUID `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type AttachmentDTO struct {
	ID         uuid.UUID `json:"id"`
	TaskID     uuid.UUID `json:"task_id"`
	FileName   string    `json:"file_name"`
	FileType   string    `json:"file_type"`
	FileSize   int64     `json:"file_size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type ArticleRequest struct {
	ArticleNumber string   `json:"article_number" binding:"required,max=32"`
	Title         string   `json:"title" binding:"required,max=255"`
	Content       string   `json:"content"`
	Keywords      []string `json:"keywords" binding:"omitempty,dive,max=100"`
}

type ArticleDTO struct {
	ID            uuid.UUID `json:"id"`
	ArticleNumber string    `json:"article_number"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Keywords      []string  `json:"keywords"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type SavedArticleDTO struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	ArticleID     uuid.UUID `json:"article_id"`
	ArticleNumber string    `json:"article_number"`
	ArticleTitle  string    `json:"article_title"`
	SavedAt       time.Time `json:"saved_at"`
}
