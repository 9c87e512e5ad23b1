package services_test

import (
	"time"

	"gdpr-tracker/internal/cache"
	"gdpr-tracker/internal/dto"
	"gdpr-tracker/internal/models"
	"gdpr-tracker/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func (s *ServicesTestSuite) newCachedArticles() (*services.CachedArticleService, *miniredis.Miniredis) {
	mr := miniredis.RunT(s.T())
	l2 := cache.NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	c := cache.NewMultiLevelCache(l2, cache.DefaultMultiLevelConfig())
	return services.NewCachedArticleService(s.articles, c, time.Minute), mr
}

func (s *ServicesTestSuite) TestCachedArticles_ServesFromCache() {
	cached, mr := s.newCachedArticles()
	s.createArticle("5", "Principles")

	first, err := cached.GetAllArticles(s.ctx)
	s.Require().NoError(err)
	s.Len(first, 1)
	s.True(mr.Exists("gdpr:articles:all"))

	// Written behind the cache's back, so the cached list stays stale.
	s.Require().NoError(s.articleRepo.Create(s.ctx, &models.GdprArticle{ArticleNumber: "6", Title: "Lawfulness"}))

	second, err := cached.GetAllArticles(s.ctx)
	s.Require().NoError(err)
	s.Len(second, 1)
}

func (s *ServicesTestSuite) TestCachedArticles_WritesInvalidate() {
	cached, mr := s.newCachedArticles()
	art := s.createArticle("5", "Principles")

	_, err := cached.GetArticleByID(s.ctx, art.ID)
	s.Require().NoError(err)
	_, err = cached.SearchArticles(s.ctx, "princ")
	s.Require().NoError(err)
	s.True(mr.Exists("gdpr:article:" + art.ID.String()))

	_, err = cached.CreateArticle(s.ctx, dto.ArticleRequest{ArticleNumber: "6", Title: "Lawfulness"})
	s.Require().NoError(err)
	s.Empty(mr.Keys())

	all, err := cached.GetAllArticles(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 2)

	updated, err := cached.UpdateArticle(s.ctx, art.ID, dto.ArticleRequest{ArticleNumber: "5", Title: "Principles of processing"})
	s.Require().NoError(err)
	got, err := cached.GetArticleByID(s.ctx, art.ID)
	s.Require().NoError(err)
	s.Equal(updated.Title, got.Title)

	s.Require().NoError(cached.DeleteArticle(s.ctx, art.ID))
	all, err = cached.GetAllArticles(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *ServicesTestSuite) TestCachedArticles_RedisDownFallsThrough() {
	cached, mr := s.newCachedArticles()
	s.createArticle("5", "Principles")
	mr.Close()

	all, err := cached.GetAllArticles(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 1)

	stats := cached.GetCacheStats()
	s.Contains(stats, "breaker")
}

func (s *ServicesTestSuite) TestCachedArticles_SearchTermWithSlashInvalidated() {
	cached := services.NewCachedArticleService(s.articles,
		cache.NewMultiLevelCache(nil, cache.DefaultMultiLevelConfig()), time.Minute)
	s.createArticle("6", "Lawfulness and/or consent")

	found, err := cached.SearchArticles(s.ctx, "and/or")
	s.Require().NoError(err)
	s.Len(found, 1)

	_, err = cached.CreateArticle(s.ctx, dto.ArticleRequest{ArticleNumber: "7", Title: "Conditions and/or withdrawal"})
	s.Require().NoError(err)

	found, err = cached.SearchArticles(s.ctx, "and/or")
	s.Require().NoError(err)
	s.Len(found, 2)
}

func (s *ServicesTestSuite) TestCachedArticles_InvalidationSurvivesRedisOutage() {
	cached, mr := s.newCachedArticles()
	s.createArticle("5", "Principles")

	all, err := cached.GetAllArticles(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 1)
	s.True(mr.Exists("gdpr:articles:all"))

	mr.Close()
	_, err = cached.CreateArticle(s.ctx, dto.ArticleRequest{ArticleNumber: "6", Title: "Lawfulness"})
	s.Require().NoError(err, "a cache outage never fails a write")
	s.Require().NoError(mr.Restart())

	all, err = cached.GetAllArticles(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 2)

	stats := cached.GetCacheStats()
	s.Empty(stats["pending"])
}
