package dto

import "gdpr-tracker/internal/models"

func ToUserDTO(u *models.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		JobTitle:  u.JobTitle,
		Role:      u.Role,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, 0, len(users))
	for i := range users {
		out = append(out, ToUserDTO(&users[i]))
	}
	return out
}

func ToTaskDTO(t *models.Task) TaskDTO {
	d := TaskDTO{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Status:      t.Status,
		DueDate:     t.DueDate,
		CreatorID:   t.CreatorID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.AssigneeID != nil {
		id := *t.AssigneeID
		d.AssigneeID = &id
	}
	return d
}

func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	out := make([]TaskDTO, 0, len(tasks))
	for i := range tasks {
		out = append(out, ToTaskDTO(&tasks[i]))
	}
	return out
}

func ToCommentDTO(c *models.Comment) CommentDTO {
	return CommentDTO{
		ID:        c.ID,
		TaskID:    c.TaskID,
		UserID:    c.UserID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}

func ToCommentDTOs(comments []models.Comment) []CommentDTO {
	out := make([]CommentDTO, 0, len(comments))
	for i := range comments {
		out = append(out, ToCommentDTO(&comments[i]))
	}
	return out
}

func ToAttachmentDTO(a *models.Attachment) AttachmentDTO {
	return AttachmentDTO{
		ID:         a.ID,
		TaskID:     a.TaskID,
		FileName:   a.FileName,
		FileType:   a.FileType,
		FileSize:   a.FileSize,
		UploadedAt: a.UploadedAt,
	}
}

func ToAttachmentDTOs(attachments []models.Attachment) []AttachmentDTO {
	out := make([]AttachmentDTO, 0, len(attachments))
	for i := range attachments {
		out = append(out, ToAttachmentDTO(&attachments[i]))
	}
	return out
}

func ToArticleDTO(a *models.GdprArticle) ArticleDTO {
	keywords := make([]string, len(a.Keywords))
	copy(keywords, a.Keywords)
	return ArticleDTO{
		ID:            a.ID,
		ArticleNumber: a.ArticleNumber,
		Title:         a.Title,
		Content:       a.Content,
		Keywords:      keywords,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func ToArticleDTOs(articles []models.GdprArticle) []ArticleDTO {
	out := make([]ArticleDTO, 0, len(articles))
	for i := range articles {
		out = append(out, ToArticleDTO(&articles[i]))
	}
	return out
}

// ToSavedArticleDTO flattens a bookmark with the article it points at.
// article may be nil when the catalog entry could not be loaded.
func ToSavedArticleDTO(s *models.SavedArticle, article *models.GdprArticle) SavedArticleDTO {
	d := SavedArticleDTO{
		ID:        s.ID,
		UserID:    s.UserID,
		ArticleID: s.ArticleID,
		SavedAt:   s.SavedAt,
	}
	if article != nil {
		d.ArticleNumber = article.ArticleNumber
		d.ArticleTitle = article.Title
	}
	return d
}
