package services_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gdpr-tracker/internal/apperrors"
	"gdpr-tracker/internal/models"
	"gdpr-tracker/internal/services"
	"gdpr-tracker/internal/storage"
)

func upload(name, contentType, body string) services.Upload {
	return services.Upload{
		FileName:    name,
		ContentType: contentType,
		Size:        int64(len(body)),
		Content:     strings.NewReader(body),
	}
}

func (s *ServicesTestSuite) TestUploadAndDownload() {
	owner := s.register("owner", models.RoleViewer)
	task := s.newTask(owner, nil)

	att, err := s.attachments.Upload(s.ctx, task.ID, upload("dpia.txt", "text/plain", "impact assessment"))
	s.Require().NoError(err)
	s.Equal("dpia.txt", att.FileName)
	s.Equal("text/plain", att.FileType)
	s.EqualValues(17, att.FileSize)
	s.Equal(task.ID, att.TaskID)

	stored, err := s.attachmentRepo.FindByID(s.ctx, att.ID)
	s.Require().NoError(err)
	s.True(strings.HasSuffix(stored.FilePath, "_dpia.txt"))
	s.Equal(s.files.Root(), filepath.Dir(stored.FilePath))

	dl, err := s.attachments.Download(s.ctx, att.ID)
	s.Require().NoError(err)
	defer dl.Content.Close()
	body, err := io.ReadAll(dl.Content)
	s.Require().NoError(err)
	s.Equal("impact assessment", string(body))
	s.Equal(att.ID, dl.Attachment.ID)

	listed, err := s.attachments.ListForTask(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Len(listed, 1)
}

func (s *ServicesTestSuite) TestUpload_SameNameTwiceKeepsBoth() {
	owner := s.register("owner", models.RoleViewer)
	task := s.newTask(owner, nil)

	a, err := s.attachments.Upload(s.ctx, task.ID, upload("notes.txt", "text/plain", "one"))
	s.Require().NoError(err)
	b, err := s.attachments.Upload(s.ctx, task.ID, upload("notes.txt", "text/plain", "two"))
	s.Require().NoError(err)

	ra, _ := s.attachmentRepo.FindByID(s.ctx, a.ID)
	rb, _ := s.attachmentRepo.FindByID(s.ctx, b.ID)
	s.NotEqual(ra.FilePath, rb.FilePath)
	s.FileExists(ra.FilePath)
	s.FileExists(rb.FilePath)
}

func (s *ServicesTestSuite) TestUpload_SniffsMissingContentType() {
	owner := s.register("owner", models.RoleViewer)
	task := s.newTask(owner, nil)
	img := pngBytes()

	att, err := s.attachments.Upload(s.ctx, task.ID, services.Upload{
		FileName:    "scan",
		ContentType: "application/octet-stream",
		Size:        int64(len(img)),
		Content:     bytes.NewReader(img),
	})
	s.Require().NoError(err)
	s.Equal("image/png", att.FileType)

	stored, _ := s.attachmentRepo.FindByID(s.ctx, att.ID)
	onDisk, err := os.ReadFile(stored.FilePath)
	s.Require().NoError(err)
	s.Equal(img, onDisk)
}

func (s *ServicesTestSuite) TestUpload_RejectsTraversal() {
	owner := s.register("owner", models.RoleViewer)
	task := s.newTask(owner, nil)

	_, err := s.attachments.Upload(s.ctx, task.ID, upload("../../etc/passwd", "text/plain", "root:x"))
	s.assertKind(err, apperrors.KindFileStorage, "Filename contains invalid path sequence ../../etc/passwd")
	s.ErrorIs(err, storage.ErrUnsafePath)

	listed, err := s.attachments.ListForTask(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Empty(listed)

	entries, err := os.ReadDir(s.files.Root())
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *ServicesTestSuite) TestUpload_Rejections() {
	owner := s.register("owner", models.RoleViewer)
	task := s.newTask(owner, nil)

	_, err := s.attachments.Upload(s.ctx, randomID(), upload("a.txt", "text/plain", "x"))
	s.assertKind(err, apperrors.KindNotFound, "")

	_, err = s.attachments.Upload(s.ctx, task.ID, upload("empty.txt", "text/plain", ""))
	s.assertKind(err, apperrors.KindInvalidInput, "Failed to store empty file empty.txt")

	_, err = s.attachments.Upload(s.ctx, task.ID, upload("big.txt", "text/plain", strings.Repeat("x", 2048)))
	s.assertKind(err, apperrors.KindInvalidInput, "File exceeds maximum upload size of 1024 bytes")
}

func (s *ServicesTestSuite) TestAttachment_MissingIDs() {
	missing := randomID()

	_, err := s.attachments.Download(s.ctx, missing)
	s.assertKind(err, apperrors.KindNotFound, "Attachment not found with id: "+missing.String())

	err = s.attachments.Delete(s.ctx, missing)
	s.assertKind(err, apperrors.KindNotFound, "Attachment not found with id: "+missing.String())

	_, err = s.attachments.ListForTask(s.ctx, missing)
	s.assertKind(err, apperrors.KindNotFound, "Task not found with id: "+missing.String())
}

func (s *ServicesTestSuite) TestAttachmentDelete_FileAlreadyGone() {
	owner := s.register("owner", models.RoleViewer)
	task := s.newTask(owner, nil)

	att, err := s.attachments.Upload(s.ctx, task.ID, upload("gone.txt", "text/plain", "bytes"))
	s.Require().NoError(err)
	stored, _ := s.attachmentRepo.FindByID(s.ctx, att.ID)
	s.Require().NoError(os.Remove(stored.FilePath))

	_, err = s.attachments.Download(s.ctx, att.ID)
	s.assertKind(err, apperrors.KindFileStorage, "Could not read file gone.txt")

	s.Require().NoError(s.attachments.Delete(s.ctx, att.ID))
	_, err = s.attachments.Download(s.ctx, att.ID)
	s.assertKind(err, apperrors.KindNotFound, "")
}

func (s *ServicesTestSuite) TestDeleteTask_RemovesAttachmentFiles() {
	owner := s.register("owner", models.RoleViewer)
	task := s.newTask(owner, nil)

	att, err := s.attachments.Upload(s.ctx, task.ID, upload("contract.txt", "text/plain", "clause"))
	s.Require().NoError(err)
	stored, _ := s.attachmentRepo.FindByID(s.ctx, att.ID)

	s.Require().NoError(s.tasks.DeleteTask(s.ctx, task.ID, s.actor(owner)))

	_, statErr := os.Stat(stored.FilePath)
	s.True(os.IsNotExist(statErr))
	_, err = s.attachments.Download(s.ctx, att.ID)
	s.assertKind(err, apperrors.KindNotFound, "")
}
