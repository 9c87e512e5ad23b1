package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"gdpr-tracker/internal/apperrors"
	"gdpr-tracker/internal/dto"
	"gdpr-tracker/internal/logger"
	"gdpr-tracker/internal/models"
	"gdpr-tracker/internal/repositories"
	"gdpr-tracker/internal/storage"

	"github.com/gofrs/uuid"
)

const maxTitleLength = 255

type TaskService interface {
	CreateTask(ctx context.Context, req dto.TaskCreateRequest, creatorID uuid.UUID) (*dto.TaskDTO, error)
	GetTaskByID(ctx context.Context, id uuid.UUID) (*dto.TaskDTO, error)
	GetTasksByAssignee(ctx context.Context, assigneeID uuid.UUID) ([]dto.TaskDTO, error)
	GetTasksByCreator(ctx context.Context, creatorID uuid.UUID) ([]dto.TaskDTO, error)
	GetAllTasks(ctx context.Context) ([]dto.TaskDTO, error)
	SearchTasks(ctx context.Context, term, status, priority string) ([]dto.TaskDTO, error)
	UpdateTaskStatus(ctx context.Context, id uuid.UUID, status models.TaskStatus, actor Actor) (*dto.TaskDTO, error)
	UpdateTask(ctx context.Context, id uuid.UUID, req dto.TaskUpdateRequest, actor Actor) (*dto.TaskDTO, error)
	DeleteTask(ctx context.Context, id uuid.UUID, actor Actor) error
	AddComment(ctx context.Context, taskID, authorID uuid.UUID, content string) (*dto.CommentDTO, error)
	GetTaskComments(ctx context.Context, taskID uuid.UUID) ([]dto.CommentDTO, error)
}

type TaskServiceImpl struct {
	tasks    repositories.TaskRepository
	comments repositories.CommentRepository
	users    repositories.UserRepository
	policy   AuthorizationService

	attachments repositories.AttachmentRepository
	files       storage.FileStore
}

type TaskServiceOption func(*TaskServiceImpl)

// WithAttachmentFiles lets DeleteTask unlink the files behind a task's
// attachments once the task is gone.
func WithAttachmentFiles(attachments repositories.AttachmentRepository, files storage.FileStore) TaskServiceOption {
	return func(s *TaskServiceImpl) {
		s.attachments = attachments
		s.files = files
	}
}

func WithAuthorizationService(policy AuthorizationService) TaskServiceOption {
	return func(s *TaskServiceImpl) {
		s.policy = policy
	}
}

func NewTaskService(tasks repositories.TaskRepository, comments repositories.CommentRepository, users repositories.UserRepository, opts ...TaskServiceOption) *TaskServiceImpl {
	s := &TaskServiceImpl{
		tasks:    tasks,
		comments: comments,
		users:    users,
		policy:   NewAuthorizationService(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TaskServiceImpl) CreateTask(ctx context.Context, req dto.TaskCreateRequest, creatorID uuid.UUID) (*dto.TaskDTO, error) {
	if err := s.requireUser(ctx, creatorID, "Creator not found"); err != nil {
		return nil, err
	}
	assigneeID, err := s.resolveAssignee(ctx, req.AssigneeID)
	if err != nil {
		return nil, err
	}
	if err := validateTitle(req.Title); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, apperrors.InvalidInput("Description is required")
	}
	if !req.Priority.IsValid() {
		return nil, apperrors.InvalidInput("Invalid priority: %s", req.Priority)
	}
	if req.DueDate.IsZero() {
		return nil, apperrors.InvalidInput("Due date is required")
	}

	task := &models.Task{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      models.StatusOpen,
		DueDate:     req.DueDate.UTC(),
		CreatorID:   creatorID,
		AssigneeID:  assigneeID,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Task created", "task_id", task.ID, "creator_id", creatorID)
	result := dto.ToTaskDTO(task)
	return &result, nil
}

func (s *TaskServiceImpl) GetTaskByID(ctx context.Context, id uuid.UUID) (*dto.TaskDTO, error) {
	task, err := s.findTask(ctx, id)
	if err != nil {
		return nil, err
	}
	result := dto.ToTaskDTO(task)
	return &result, nil
}

func (s *TaskServiceImpl) GetTasksByAssignee(ctx context.Context, assigneeID uuid.UUID) ([]dto.TaskDTO, error) {
	tasks, err := s.tasks.FindByAssignee(ctx, assigneeID)
	if err != nil {
		return nil, err
	}
	return dto.ToTaskDTOs(tasks), nil
}

func (s *TaskServiceImpl) GetTasksByCreator(ctx context.Context, creatorID uuid.UUID) ([]dto.TaskDTO, error) {
	tasks, err := s.tasks.FindByCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	return dto.ToTaskDTOs(tasks), nil
}

func (s *TaskServiceImpl) GetAllTasks(ctx context.Context) ([]dto.TaskDTO, error) {
	tasks, err := s.tasks.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return dto.ToTaskDTOs(tasks), nil
}

// SearchTasks treats an empty or "ALL" status/priority as no filter.
func (s *TaskServiceImpl) SearchTasks(ctx context.Context, term, status, priority string) ([]dto.TaskDTO, error) {
	filter := repositories.TaskFilter{Term: term}

	if !isWildcard(status) {
		parsed, ok := models.ParseTaskStatus(status)
		if !ok {
			return nil, apperrors.InvalidInput("Invalid status: %s", status)
		}
		filter.Status = parsed
	}
	if !isWildcard(priority) {
		parsed, ok := models.ParsePriority(priority)
		if !ok {
			return nil, apperrors.InvalidInput("Invalid priority: %s", priority)
		}
		filter.Priority = parsed
	}

	tasks, err := s.tasks.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.ToTaskDTOs(tasks), nil
}

func (s *TaskServiceImpl) UpdateTaskStatus(ctx context.Context, id uuid.UUID, status models.TaskStatus, actor Actor) (*dto.TaskDTO, error) {
	if !status.IsValid() {
		return nil, apperrors.InvalidInput("Invalid status: %s", status)
	}

	task, err := s.findTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, ActionUpdateStatus, task, "User not authorized to update this task"); err != nil {
		return nil, err
	}

	previous := task.Status
	task.Status = status
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Task status updated", "task_id", task.ID, "from", previous, "to", status, "user_id", actor.UserID)
	result := dto.ToTaskDTO(task)
	return &result, nil
}

// UpdateTask applies every supplied field. A nil-UUID assignee clears the
// assignment.
func (s *TaskServiceImpl) UpdateTask(ctx context.Context, id uuid.UUID, req dto.TaskUpdateRequest, actor Actor) (*dto.TaskDTO, error) {
	task, err := s.findTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, ActionEdit, task, "User not authorized to update this task"); err != nil {
		return nil, err
	}

	if req.Title != nil {
		if err := validateTitle(*req.Title); err != nil {
			return nil, err
		}
		task.Title = *req.Title
	}
	if req.Description != nil {
		if strings.TrimSpace(*req.Description) == "" {
			return nil, apperrors.InvalidInput("Description is required")
		}
		task.Description = *req.Description
	}
	if req.Status != nil {
		if !req.Status.IsValid() {
			return nil, apperrors.InvalidInput("Invalid status: %s", *req.Status)
		}
		task.Status = *req.Status
	}
	if req.Priority != nil {
		if !req.Priority.IsValid() {
			return nil, apperrors.InvalidInput("Invalid priority: %s", *req.Priority)
		}
		task.Priority = *req.Priority
	}
	if req.DueDate != nil {
		if req.DueDate.IsZero() {
			return nil, apperrors.InvalidInput("Due date is required")
		}
		task.DueDate = req.DueDate.UTC()
	}
	if req.AssigneeID != nil {
		assigneeID, err := s.resolveAssignee(ctx, req.AssigneeID)
		if err != nil {
			return nil, err
		}
		task.AssigneeID = assigneeID
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Task updated", "task_id", task.ID, "user_id", actor.UserID)
	result := dto.ToTaskDTO(task)
	return &result, nil
}

func (s *TaskServiceImpl) DeleteTask(ctx context.Context, id uuid.UUID, actor Actor) error {
	task, err := s.findTask(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, actor, ActionDelete, task, "User not authorized to delete this task"); err != nil {
		return err
	}

	var orphans []models.Attachment
	if s.attachments != nil && s.files != nil {
		if orphans, err = s.attachments.FindByTask(ctx, id); err != nil {
			return err
		}
	}

	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}

	for _, a := range orphans {
		if err := s.files.Delete(ctx, a.FilePath); err != nil {
			logger.WarnContext(ctx, "Failed to remove attachment file", "attachment_id", a.ID, "error", err)
		}
	}

	logger.InfoContext(ctx, "Task deleted", "task_id", id, "user_id", actor.UserID, "attachments", len(orphans))
	return nil
}

func (s *TaskServiceImpl) AddComment(ctx context.Context, taskID, authorID uuid.UUID, content string) (*dto.CommentDTO, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.InvalidInput("Comment content must not be blank")
	}
	if _, err := s.findTask(ctx, taskID); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, authorID, "Author not found"); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		TaskID:  taskID,
		UserID:  authorID,
		Content: content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Comment added", "task_id", taskID, "comment_id", comment.ID)
	result := dto.ToCommentDTO(comment)
	return &result, nil
}

func (s *TaskServiceImpl) GetTaskComments(ctx context.Context, taskID uuid.UUID) ([]dto.CommentDTO, error) {
	if _, err := s.findTask(ctx, taskID); err != nil {
		return nil, err
	}
	comments, err := s.comments.FindByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return dto.ToCommentDTOs(comments), nil
}

func (s *TaskServiceImpl) findTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Task not found")
	}
	return task, nil
}

func (s *TaskServiceImpl) requireUser(ctx context.Context, id uuid.UUID, message string) error {
	ok, err := s.users.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound(message)
	}
	return nil
}

func (s *TaskServiceImpl) resolveAssignee(ctx context.Context, id *uuid.UUID) (*uuid.UUID, error) {
	if id == nil || *id == uuid.Nil {
		return nil, nil
	}
	if err := s.requireUser(ctx, *id, "Assignee not found"); err != nil {
		return nil, err
	}
	assignee := *id
	return &assignee, nil
}

func (s *TaskServiceImpl) authorize(ctx context.Context, actor Actor, action TaskAction, task *models.Task, message string) error {
	decision := s.policy.IsAuthorized(AuthorizationRequest{Actor: actor, Action: action, Task: task})
	if decision.Allowed {
		return nil
	}
	logger.WarnContext(ctx, "Task access denied",
		"task_id", task.ID,
		"user_id", actor.UserID,
		"role", actor.Role,
		"action", action,
		"reason", decision.Reason,
	)
	return apperrors.Unauthorized(message)
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return apperrors.InvalidInput("Title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return apperrors.InvalidInput("Title must be between 1 and %d characters", maxTitleLength)
	}
	return nil
}

func isWildcard(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, "ALL")
}
