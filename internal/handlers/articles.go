package handlers

import (
	"net/http"

	"gdpr-tracker/internal/dto"
	"gdpr-tracker/internal/services"

	"github.com/gin-gonic/gin"
)

type ArticleHandler struct {
	articleService services.GdprArticleService
}

func NewArticleHandler(articleService services.GdprArticleService) *ArticleHandler {
	return &ArticleHandler{articleService: articleService}
}

func (h *ArticleHandler) GetAllArticles(c *gin.Context) {
	articles, err := h.articleService.GetAllArticles(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, articles)
}

func (h *ArticleHandler) SearchArticles(c *gin.Context) {
	articles, err := h.articleService.SearchArticles(c.Request.Context(), c.Query("searchTerm"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, articles)
}

func (h *ArticleHandler) GetArticlesByNumber(c *gin.Context) {
	articles, err := h.articleService.GetArticlesByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, articles)
}

func (h *ArticleHandler) GetArticle(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	article, err := h.articleService.GetArticleByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

func (h *ArticleHandler) CreateArticle(c *gin.Context) {
	var req dto.ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	article, err := h.articleService.CreateArticle(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, article)
}

func (h *ArticleHandler) UpdateArticle(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	article, err := h.articleService.UpdateArticle(c.Request.Context(), id, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

func (h *ArticleHandler) DeleteArticle(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.articleService.DeleteArticle(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SaveArticle bookmarks an article for the caller.
func (h *ArticleHandler) SaveArticle(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	articleID, ok := uuidParam(c, "articleId")
	if !ok {
		return
	}
	saved, err := h.articleService.SaveArticleForUser(c.Request.Context(), articleID, actor.UserID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (h *ArticleHandler) GetSavedArticles(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	saved, err := h.articleService.GetUserSavedArticles(c.Request.Context(), actor.UserID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *ArticleHandler) RemoveSavedArticle(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	savedID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.articleService.RemoveSavedArticle(c.Request.Context(), actor.UserID, savedID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
