package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gdpr-tracker/internal/cache"
	"gdpr-tracker/internal/dto"
	"gdpr-tracker/internal/logger"

	"github.com/gofrs/uuid"
)

const (
	articleCachePattern = "gdpr:*"
	allArticlesKey      = "gdpr:articles:all"
	defaultArticleTTL   = 30 * time.Minute
)

// CachedArticleService serves catalog reads from cache and clears every
// catalog key on any write. Cache failures are logged and fall through to
// the wrapped service.
type CachedArticleService struct {
	GdprArticleService
	cache cache.Cache
	ttl   time.Duration
}

func NewCachedArticleService(inner GdprArticleService, c cache.Cache, ttl time.Duration) *CachedArticleService {
	if ttl <= 0 {
		ttl = defaultArticleTTL
	}
	return &CachedArticleService{GdprArticleService: inner, cache: c, ttl: ttl}
}

func (s *CachedArticleService) GetAllArticles(ctx context.Context) ([]dto.ArticleDTO, error) {
	return cachedList(ctx, s, allArticlesKey, func() ([]dto.ArticleDTO, error) {
		return s.GdprArticleService.GetAllArticles(ctx)
	})
}

func (s *CachedArticleService) GetArticleByID(ctx context.Context, id uuid.UUID) (*dto.ArticleDTO, error) {
	key := fmt.Sprintf("gdpr:article:%s", id)

	var cached dto.ArticleDTO
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	article, err := s.GdprArticleService.GetArticleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, article)
	return article, nil
}

func (s *CachedArticleService) GetArticlesByNumber(ctx context.Context, number string) ([]dto.ArticleDTO, error) {
	key := fmt.Sprintf("gdpr:articles:number:%s", strings.TrimSpace(number))
	return cachedList(ctx, s, key, func() ([]dto.ArticleDTO, error) {
		return s.GdprArticleService.GetArticlesByNumber(ctx, number)
	})
}

func (s *CachedArticleService) SearchArticles(ctx context.Context, term string) ([]dto.ArticleDTO, error) {
	key := fmt.Sprintf("gdpr:articles:search:%s", strings.ToLower(strings.TrimSpace(term)))
	return cachedList(ctx, s, key, func() ([]dto.ArticleDTO, error) {
		return s.GdprArticleService.SearchArticles(ctx, term)
	})
}

func (s *CachedArticleService) CreateArticle(ctx context.Context, req dto.ArticleRequest) (*dto.ArticleDTO, error) {
	article, err := s.GdprArticleService.CreateArticle(ctx, req)
	if err == nil {
		s.invalidate(ctx)
	}
	return article, err
}

func (s *CachedArticleService) UpdateArticle(ctx context.Context, id uuid.UUID, req dto.ArticleRequest) (*dto.ArticleDTO, error) {
	article, err := s.GdprArticleService.UpdateArticle(ctx, id, req)
	if err == nil {
		s.invalidate(ctx)
	}
	return article, err
}

func (s *CachedArticleService) DeleteArticle(ctx context.Context, id uuid.UUID) error {
	err := s.GdprArticleService.DeleteArticle(ctx, id)
	if err == nil {
		s.invalidate(ctx)
	}
	return err
}

func (s *CachedArticleService) GetCacheStats() map[string]any {
	return s.cache.Stats()
}

func cachedList(ctx context.Context, s *CachedArticleService, key string, load func() ([]dto.ArticleDTO, error)) ([]dto.ArticleDTO, error) {
	var cached []dto.ArticleDTO
	if s.lookup(ctx, key, &cached) {
		return cached, nil
	}

	articles, err := load()
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, articles)
	return articles, nil
}

func (s *CachedArticleService) lookup(ctx context.Context, key string, dest any) bool {
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		logger.DebugContext(ctx, "Article cache read failed", "key", key, "error", err)
	}
	return false
}

func (s *CachedArticleService) store(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		logger.DebugContext(ctx, "Article cache write failed", "key", key, "error", err)
	}
}

func (s *CachedArticleService) invalidate(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, articleCachePattern); err != nil {
		logger.WarnContext(ctx, "Article cache invalidation failed", "error", err)
	}
}
