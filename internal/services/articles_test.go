package services_test

import (
	"gdpr-tracker/internal/apperrors"
	"gdpr-tracker/internal/dto"
	"gdpr-tracker/internal/models"
)

func (s *ServicesTestSuite) TestArticleCatalog() {
	art5 := s.createArticle("5", "Principles relating to processing", " lawfulness ", "", "transparency")
	s.createArticle("17", "Right to erasure", "forgotten")

	s.Equal([]string{"lawfulness", "transparency"}, art5.Keywords)

	all, err := s.articles.GetAllArticles(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 2)

	byNumber, err := s.articles.GetArticlesByNumber(s.ctx, " 17 ")
	s.Require().NoError(err)
	s.Require().Len(byNumber, 1)
	s.Equal("Right to erasure", byNumber[0].Title)

	found, err := s.articles.SearchArticles(s.ctx, "ERASURE")
	s.Require().NoError(err)
	s.Len(found, 1)

	everything, err := s.articles.SearchArticles(s.ctx, "  ")
	s.Require().NoError(err)
	s.Len(everything, 2)
}

func (s *ServicesTestSuite) TestArticleUpdateAndDelete() {
	art := s.createArticle("6", "Lawfulness")

	updated, err := s.articles.UpdateArticle(s.ctx, art.ID, dto.ArticleRequest{
		ArticleNumber: "6",
		Title:         "Lawfulness of processing",
		Content:       "Processing shall be lawful only if...",
	})
	s.Require().NoError(err)
	s.Equal("Lawfulness of processing", updated.Title)
	s.Empty(updated.Keywords)

	_, err = s.articles.UpdateArticle(s.ctx, art.ID, dto.ArticleRequest{ArticleNumber: "6"})
	s.assertKind(err, apperrors.KindInvalidInput, "Title is required")

	_, err = s.articles.CreateArticle(s.ctx, dto.ArticleRequest{Title: "No number"})
	s.assertKind(err, apperrors.KindInvalidInput, "Article number is required")

	s.Require().NoError(s.articles.DeleteArticle(s.ctx, art.ID))
	_, err = s.articles.GetArticleByID(s.ctx, art.ID)
	s.assertKind(err, apperrors.KindNotFound, "Article not found")

	err = s.articles.DeleteArticle(s.ctx, art.ID)
	s.assertKind(err, apperrors.KindNotFound, "Article not found")
}

func (s *ServicesTestSuite) TestSaveArticle() {
	alice := s.register("alice", models.RoleViewer)
	art := s.createArticle("32", "Security of processing")

	saved, err := s.articles.SaveArticleForUser(s.ctx, art.ID, alice.ID)
	s.Require().NoError(err)
	s.Equal(alice.ID, saved.UserID)
	s.Equal("32", saved.ArticleNumber)
	s.Equal("Security of processing", saved.ArticleTitle)

	_, err = s.articles.SaveArticleForUser(s.ctx, art.ID, alice.ID)
	s.assertKind(err, apperrors.KindDuplicate, "")

	list, err := s.articles.GetUserSavedArticles(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(saved.ID, list[0].ID)

	_, err = s.articles.SaveArticleForUser(s.ctx, randomID(), alice.ID)
	s.assertKind(err, apperrors.KindNotFound, "Article not found")

	_, err = s.articles.SaveArticleForUser(s.ctx, art.ID, randomID())
	s.assertKind(err, apperrors.KindNotFound, "User not found")

	_, err = s.articles.GetUserSavedArticles(s.ctx, randomID())
	s.assertKind(err, apperrors.KindNotFound, "User not found")
}

func (s *ServicesTestSuite) TestRemoveSavedArticle_OwnerOnly() {
	alice := s.register("alice", models.RoleViewer)
	bob := s.register("bob", models.RoleAdmin)
	art := s.createArticle("33", "Notification of a breach")

	saved, err := s.articles.SaveArticleForUser(s.ctx, art.ID, alice.ID)
	s.Require().NoError(err)

	err = s.articles.RemoveSavedArticle(s.ctx, bob.ID, saved.ID)
	s.assertKind(err, apperrors.KindUnauthorized, "User not authorized to remove this saved article")

	s.Require().NoError(s.articles.RemoveSavedArticle(s.ctx, alice.ID, saved.ID))

	list, err := s.articles.GetUserSavedArticles(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Empty(list)

	err = s.articles.RemoveSavedArticle(s.ctx, alice.ID, saved.ID)
	s.assertKind(err, apperrors.KindNotFound, "Saved article not found")

	// Saving again after removal is allowed.
	_, err = s.articles.SaveArticleForUser(s.ctx, art.ID, alice.ID)
	s.NoError(err)
}
