package repositories

import (
	"context"
	"strings"

	"gdpr-tracker/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type ArticleRepository interface {
	Create(ctx context.Context, article *models.GdprArticle) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.GdprArticle, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.GdprArticle, error)
	FindByNumber(ctx context.Context, number string) ([]models.GdprArticle, error)
	FindAll(ctx context.Context) ([]models.GdprArticle, error)
	Search(ctx context.Context, term string) ([]models.GdprArticle, error)
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
	Update(ctx context.Context, article *models.GdprArticle) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type articleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) Create(ctx context.Context, article *models.GdprArticle) error {
	return r.db.WithContext(ctx).Create(article).Error
}

func (r *articleRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.GdprArticle, error) {
	var article models.GdprArticle
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&article).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.GdprArticle, error) {
	var articles []models.GdprArticle
	if len(ids) == 0 {
		return articles, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&articles).Error
	return articles, err
}

func (r *articleRepository) FindByNumber(ctx context.Context, number string) ([]models.GdprArticle, error) {
	var articles []models.GdprArticle
	err := r.db.WithContext(ctx).Where("article_number = ?", number).Order("created_at asc").Find(&articles).Error
	return articles, err
}

func (r *articleRepository) FindAll(ctx context.Context) ([]models.GdprArticle, error) {
	var articles []models.GdprArticle
	err := r.db.WithContext(ctx).Order("article_number asc").Find(&articles).Error
	return articles, err
}

// Search matches title, content and keywords case-insensitively. The keyword
// column is cast to text so the query works for both text[] and text storage.
func (r *articleRepository) Search(ctx context.Context, term string) ([]models.GdprArticle, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
	var articles []models.GdprArticle
	err := r.db.WithContext(ctx).
		Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ? OR LOWER(CAST(keywords AS TEXT)) LIKE ?", like, like, like).
		Order("article_number asc").
		Find(&articles).Error
	return articles, err
}

func (r *articleRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists(ctx, r.db, &models.GdprArticle{}, "id = ?", id)
}

func (r *articleRepository) Update(ctx context.Context, article *models.GdprArticle) error {
	return r.db.WithContext(ctx).Save(article).Error
}

func (r *articleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("article_id = ?", id).Delete(&models.SavedArticle{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.GdprArticle{}).Error
	})
}

type SavedArticleRepository interface {
	Create(ctx context.Context, saved *models.SavedArticle) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.SavedArticle, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]models.SavedArticle, error)
	ExistsByUserAndArticle(ctx context.Context, userID, articleID uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type savedArticleRepository struct {
	db *gorm.DB
}

func NewSavedArticleRepository(db *gorm.DB) SavedArticleRepository {
	return &savedArticleRepository{db: db}
}

func (r *savedArticleRepository) Create(ctx context.Context, saved *models.SavedArticle) error {
	return r.db.WithContext(ctx).Create(saved).Error
}

func (r *savedArticleRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.SavedArticle, error) {
	var saved models.SavedArticle
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *savedArticleRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]models.SavedArticle, error) {
	var saved []models.SavedArticle
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("saved_at asc").Find(&saved).Error
	return saved, err
}

func (r *savedArticleRepository) ExistsByUserAndArticle(ctx context.Context, userID, articleID uuid.UUID) (bool, error) {
	return exists(ctx, r.db, &models.SavedArticle{}, "user_id = ? AND article_id = ?", userID, articleID)
}

func (r *savedArticleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.SavedArticle{}).Error
}
