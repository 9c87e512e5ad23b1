package services

import (
	"context"
	"strings"

	"gdpr-tracker/internal/apperrors"
	"gdpr-tracker/internal/dto"
	"gdpr-tracker/internal/logger"
	"gdpr-tracker/internal/models"
	"gdpr-tracker/internal/repositories"

	"github.com/gofrs/uuid"
)

type GdprArticleService interface {
	GetAllArticles(ctx context.Context) ([]dto.ArticleDTO, error)
	GetArticleByID(ctx context.Context, id uuid.UUID) (*dto.ArticleDTO, error)
	GetArticlesByNumber(ctx context.Context, number string) ([]dto.ArticleDTO, error)
	SearchArticles(ctx context.Context, term string) ([]dto.ArticleDTO, error)
	CreateArticle(ctx context.Context, req dto.ArticleRequest) (*dto.ArticleDTO, error)
	UpdateArticle(ctx context.Context, id uuid.UUID, req dto.ArticleRequest) (*dto.ArticleDTO, error)
	DeleteArticle(ctx context.Context, id uuid.UUID) error
	SaveArticleForUser(ctx context.Context, articleID, userID uuid.UUID) (*dto.SavedArticleDTO, error)
	GetUserSavedArticles(ctx context.Context, userID uuid.UUID) ([]dto.SavedArticleDTO, error)
	RemoveSavedArticle(ctx context.Context, userID, savedID uuid.UUID) error
}

type GdprArticleServiceImpl struct {
	articles repositories.ArticleRepository
	saved    repositories.SavedArticleRepository
	users    repositories.UserRepository
}

func NewGdprArticleService(articles repositories.ArticleRepository, saved repositories.SavedArticleRepository, users repositories.UserRepository) *GdprArticleServiceImpl {
	return &GdprArticleServiceImpl{articles: articles, saved: saved, users: users}
}

func (s *GdprArticleServiceImpl) GetAllArticles(ctx context.Context) ([]dto.ArticleDTO, error) {
	articles, err := s.articles.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return dto.ToArticleDTOs(articles), nil
}

func (s *GdprArticleServiceImpl) GetArticleByID(ctx context.Context, id uuid.UUID) (*dto.ArticleDTO, error) {
	article, err := s.findArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	result := dto.ToArticleDTO(article)
	return &result, nil
}

func (s *GdprArticleServiceImpl) GetArticlesByNumber(ctx context.Context, number string) ([]dto.ArticleDTO, error) {
	articles, err := s.articles.FindByNumber(ctx, strings.TrimSpace(number))
	if err != nil {
		return nil, err
	}
	return dto.ToArticleDTOs(articles), nil
}

// SearchArticles returns the whole catalog for a blank term.
func (s *GdprArticleServiceImpl) SearchArticles(ctx context.Context, term string) ([]dto.ArticleDTO, error) {
	if strings.TrimSpace(term) == "" {
		return s.GetAllArticles(ctx)
	}
	articles, err := s.articles.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	return dto.ToArticleDTOs(articles), nil
}

func (s *GdprArticleServiceImpl) CreateArticle(ctx context.Context, req dto.ArticleRequest) (*dto.ArticleDTO, error) {
	if err := validateArticle(req); err != nil {
		return nil, err
	}

	article := &models.GdprArticle{}
	applyArticle(article, req)
	if err := s.articles.Create(ctx, article); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "GDPR article created", "article_id", article.ID, "number", article.ArticleNumber)
	result := dto.ToArticleDTO(article)
	return &result, nil
}

func (s *GdprArticleServiceImpl) UpdateArticle(ctx context.Context, id uuid.UUID, req dto.ArticleRequest) (*dto.ArticleDTO, error) {
	article, err := s.findArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateArticle(req); err != nil {
		return nil, err
	}

	applyArticle(article, req)
	if err := s.articles.Update(ctx, article); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "GDPR article updated", "article_id", article.ID)
	result := dto.ToArticleDTO(article)
	return &result, nil
}

func (s *GdprArticleServiceImpl) DeleteArticle(ctx context.Context, id uuid.UUID) error {
	ok, err := s.articles.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound("Article not found")
	}
	if err := s.articles.Delete(ctx, id); err != nil {
		return err
	}

	logger.InfoContext(ctx, "GDPR article deleted", "article_id", id)
	return nil
}

// SaveArticleForUser bookmarks an article. An existing bookmark is reported
// before the user and article are looked up.
func (s *GdprArticleServiceImpl) SaveArticleForUser(ctx context.Context, articleID, userID uuid.UUID) (*dto.SavedArticleDTO, error) {
	already, err := s.saved.ExistsByUserAndArticle(ctx, userID, articleID)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, apperrors.Duplicate("Article already saved for this user")
	}

	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	article, err := s.findArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}

	saved := &models.SavedArticle{UserID: userID, ArticleID: articleID}
	if err := s.saved.Create(ctx, saved); err != nil {
		if isDuplicateKey(err) {
			return nil, apperrors.Duplicate("Article already saved for this user")
		}
		return nil, err
	}

	logger.InfoContext(ctx, "Article saved", "user_id", userID, "article_id", articleID)
	result := dto.ToSavedArticleDTO(saved, article)
	return &result, nil
}

func (s *GdprArticleServiceImpl) GetUserSavedArticles(ctx context.Context, userID uuid.UUID) ([]dto.SavedArticleDTO, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	saved, err := s.saved.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(saved))
	for _, sa := range saved {
		ids = append(ids, sa.ArticleID)
	}
	articles, err := s.articles.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.GdprArticle, len(articles))
	for i := range articles {
		byID[articles[i].ID] = &articles[i]
	}

	result := make([]dto.SavedArticleDTO, 0, len(saved))
	for i := range saved {
		result = append(result, dto.ToSavedArticleDTO(&saved[i], byID[saved[i].ArticleID]))
	}
	return result, nil
}

func (s *GdprArticleServiceImpl) RemoveSavedArticle(ctx context.Context, userID, savedID uuid.UUID) error {
	saved, err := s.saved.FindByID(ctx, savedID)
	if err != nil {
		return notFound(err, "Saved article not found")
	}
	if saved.UserID != userID {
		logger.WarnContext(ctx, "Saved article removal denied", "saved_id", savedID, "user_id", userID)
		return apperrors.Unauthorized("User not authorized to remove this saved article")
	}
	if err := s.saved.Delete(ctx, savedID); err != nil {
		return err
	}

	logger.InfoContext(ctx, "Saved article removed", "saved_id", savedID, "user_id", userID)
	return nil
}

func (s *GdprArticleServiceImpl) findArticle(ctx context.Context, id uuid.UUID) (*models.GdprArticle, error) {
	article, err := s.articles.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Article not found")
	}
	return article, nil
}

func (s *GdprArticleServiceImpl) requireUser(ctx context.Context, id uuid.UUID) error {
	ok, err := s.users.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound("User not found")
	}
	return nil
}

func validateArticle(req dto.ArticleRequest) error {
	if strings.TrimSpace(req.ArticleNumber) == "" {
		return apperrors.InvalidInput("Article number is required")
	}
	if strings.TrimSpace(req.Title) == "" {
		return apperrors.InvalidInput("Title is required")
	}
	return nil
}

func applyArticle(article *models.GdprArticle, req dto.ArticleRequest) {
	article.ArticleNumber = strings.TrimSpace(req.ArticleNumber)
	article.Title = req.Title
	article.Content = req.Content

	keywords := make(models.Keywords, 0, len(req.Keywords))
	for _, kw := range req.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	article.Keywords = keywords
}
