package handlers

import (
	"gdpr-tracker/internal/middleware"
	"gdpr-tracker/internal/models"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth        *AuthHandler
	Users       *UserHandler
	Tasks       *TaskHandler
	Attachments *AttachmentHandler
	Articles    *ArticleHandler
}

type RouteConfig struct {
	// Authn authenticates every route outside the public auth endpoints.
	Authn gin.HandlerFunc
	// AvatarDir is served under /api/avatars when set.
	AvatarDir string
}

func RegisterRoutes(r gin.IRouter, h Handlers, config RouteConfig) {
	api := r.Group("/api")

	public := api.Group("")
	{
		public.POST("/auth/login", h.Auth.Login)
		public.POST("/auth/refresh", h.Auth.Refresh)
		public.POST("/auth/logout", h.Auth.Logout)
		public.POST("/users/register", h.Users.Register)
	}

	protected := api.Group("")
	protected.Use(config.Authn)

	protected.GET("/auth/me", h.Auth.Me)

	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	selfOrAdmin := middleware.SelfOrRoles("id", models.RoleAdmin)
	articleEditors := middleware.RequireRoles(models.RoleAdmin, models.RoleEditor)

	users := protected.Group("/users")
	{
		users.GET("", h.Users.GetUsers)
		users.GET("/email/:email", h.Users.GetUserByEmail)
		users.GET("/:id", h.Users.GetUser)
		users.PUT("/:id", selfOrAdmin, h.Users.UpdateUser)
		users.PUT("/:id/role", adminOnly, h.Users.UpdateUserRole)
		users.DELETE("/:id", adminOnly, h.Users.DeleteUser)
		users.POST("/:id/avatar", selfOrAdmin, h.Users.UploadAvatar)
	}

	if config.AvatarDir != "" {
		protected.Static("/avatars", config.AvatarDir)
	}

	tasks := protected.Group("/tasks")
	{
		tasks.POST("", h.Tasks.CreateTask)
		tasks.GET("", h.Tasks.GetTasks)
		tasks.GET("/search", h.Tasks.SearchTasks)
		tasks.GET("/assignee/:userId", h.Tasks.GetTasksByAssignee)
		tasks.GET("/creator/:userId", h.Tasks.GetTasksByCreator)
		tasks.GET("/:id", h.Tasks.GetTaskByID)
		tasks.PUT("/:id", h.Tasks.UpdateTask)
		tasks.DELETE("/:id", h.Tasks.DeleteTask)
		tasks.PUT("/:id/status", h.Tasks.UpdateTaskStatus)
		tasks.POST("/:id/comments", h.Tasks.AddComment)
		tasks.GET("/:id/comments", h.Tasks.GetComments)
		tasks.POST("/:id/attachments", h.Attachments.Upload)
		tasks.GET("/:id/attachments", h.Attachments.ListForTask)
	}

	attachments := protected.Group("/attachments")
	{
		attachments.GET("/:id/download", h.Attachments.Download)
		attachments.DELETE("/:id", h.Attachments.Delete)
	}

	gdpr := protected.Group("/gdpr")
	{
		gdpr.GET("/articles", h.Articles.GetAllArticles)
		gdpr.GET("/articles/search", h.Articles.SearchArticles)
		gdpr.GET("/articles/number/:number", h.Articles.GetArticlesByNumber)
		gdpr.GET("/articles/:id", h.Articles.GetArticle)
		gdpr.POST("/articles", articleEditors, h.Articles.CreateArticle)
		gdpr.PUT("/articles/:id", articleEditors, h.Articles.UpdateArticle)
		gdpr.DELETE("/articles/:id", articleEditors, h.Articles.DeleteArticle)

		gdpr.POST("/saved/:articleId", h.Articles.SaveArticle)
		gdpr.GET("/saved", h.Articles.GetSavedArticles)
		gdpr.DELETE("/saved/:id", h.Articles.RemoveSavedArticle)
	}
}
