package services

import (
	"context"
	"fmt"
	"io"

	"gdpr-tracker/internal/apperrors"
	"gdpr-tracker/internal/dto"
	"gdpr-tracker/internal/logger"
	"gdpr-tracker/internal/models"
	"gdpr-tracker/internal/repositories"
	"gdpr-tracker/internal/storage"

	"github.com/gofrs/uuid"
)

const DefaultMaxUploadSize = 35 * 1024 * 1024

// Upload is a file as received from a client.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Download is an attachment record plus an open handle to its bytes. The
// caller must close Content.
type Download struct {
	Attachment dto.AttachmentDTO
	Content    io.ReadCloser
}

type AttachmentService interface {
	Upload(ctx context.Context, taskID uuid.UUID, file Upload) (*dto.AttachmentDTO, error)
	Download(ctx context.Context, id uuid.UUID) (*Download, error)
	ListForTask(ctx context.Context, taskID uuid.UUID) ([]dto.AttachmentDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type AttachmentServiceImpl struct {
	attachments   repositories.AttachmentRepository
	tasks         repositories.TaskRepository
	files         storage.FileStore
	maxUploadSize int64
}

func NewAttachmentService(attachments repositories.AttachmentRepository, tasks repositories.TaskRepository, files storage.FileStore, maxUploadSize int64) *AttachmentServiceImpl {
	if maxUploadSize <= 0 {
		maxUploadSize = DefaultMaxUploadSize
	}
	return &AttachmentServiceImpl{
		attachments:   attachments,
		tasks:         tasks,
		files:         files,
		maxUploadSize: maxUploadSize,
	}
}

// Upload writes the file under a collision-free stored name and records it.
// No record is written unless the bytes were stored.
func (s *AttachmentServiceImpl) Upload(ctx context.Context, taskID uuid.UUID, file Upload) (*dto.AttachmentDTO, error) {
	if err := s.requireTask(ctx, taskID); err != nil {
		return nil, err
	}
	if storage.HasTraversal(file.FileName) {
		logger.WarnContext(ctx, "Rejected attachment name", "task_id", taskID, "file_name", file.FileName)
		return nil, apperrors.FileStorage(storage.ErrUnsafePath, "Filename contains invalid path sequence %s", file.FileName)
	}
	if file.Size == 0 {
		return nil, apperrors.InvalidInput("Failed to store empty file %s", file.FileName)
	}
	if file.Size > s.maxUploadSize {
		return nil, apperrors.InvalidInput("File exceeds maximum upload size of %d bytes", s.maxUploadSize)
	}

	body := file.Content
	contentType := file.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		sniffed, mtype, err := sniff(file.Content)
		if err != nil {
			return nil, apperrors.FileStorage(err, "Could not read file %s", file.FileName)
		}
		body, contentType = sniffed, mtype.String()
	}

	prefix, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	originalName := storage.SanitizeFileName(file.FileName)
	storedName := fmt.Sprintf("%s_%s", prefix, originalName)

	path, err := s.files.Save(ctx, storedName, body, file.Size, contentType)
	if err != nil {
		return nil, apperrors.FileStorage(err, "Could not store file %s. Please try again!", originalName)
	}

	attachment := &models.Attachment{
		TaskID:   taskID,
		FileName: originalName,
		FilePath: path,
		FileType: contentType,
		FileSize: file.Size,
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		if delErr := s.files.Delete(ctx, path); delErr != nil {
			logger.WarnContext(ctx, "Failed to roll back stored file", "path", path, "error", delErr)
		}
		return nil, err
	}

	logger.InfoContext(ctx, "Attachment uploaded", "attachment_id", attachment.ID, "task_id", taskID, "size", file.Size)
	result := dto.ToAttachmentDTO(attachment)
	return &result, nil
}

// Download does not check the file against the record first; a missing
// file surfaces as a FileStorage error from the open.
func (s *AttachmentServiceImpl) Download(ctx context.Context, id uuid.UUID) (*Download, error) {
	attachment, err := s.findAttachment(ctx, id)
	if err != nil {
		return nil, err
	}

	content, err := s.files.Open(ctx, attachment.FilePath)
	if err != nil {
		return nil, apperrors.FileStorage(err, "Could not read file %s", attachment.FileName)
	}
	return &Download{Attachment: dto.ToAttachmentDTO(attachment), Content: content}, nil
}

func (s *AttachmentServiceImpl) ListForTask(ctx context.Context, taskID uuid.UUID) ([]dto.AttachmentDTO, error) {
	if err := s.requireTask(ctx, taskID); err != nil {
		return nil, err
	}
	attachments, err := s.attachments.FindByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return dto.ToAttachmentDTOs(attachments), nil
}

// Delete always removes the record; the file is unlinked best-effort.
func (s *AttachmentServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	attachment, err := s.findAttachment(ctx, id)
	if err != nil {
		return err
	}

	if err := s.files.Delete(ctx, attachment.FilePath); err != nil {
		logger.WarnContext(ctx, "Failed to delete attachment file", "attachment_id", id, "error", err)
	}
	if err := s.attachments.Delete(ctx, id); err != nil {
		return err
	}

	logger.InfoContext(ctx, "Attachment deleted", "attachment_id", id, "task_id", attachment.TaskID)
	return nil
}

func (s *AttachmentServiceImpl) requireTask(ctx context.Context, taskID uuid.UUID) error {
	ok, err := s.tasks.ExistsByID(ctx, taskID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound("Task not found with id: %s", taskID)
	}
	return nil
}

func (s *AttachmentServiceImpl) findAttachment(ctx context.Context, id uuid.UUID) (*models.Attachment, error) {
	attachment, err := s.attachments.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Attachment not found with id: %s", id)
	}
	return attachment, nil
}
