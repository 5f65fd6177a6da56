package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/adverto/adboard-backend/internal/http/handlers"
	httpMW "github.com/adverto/adboard-backend/internal/http/middleware"
	"github.com/adverto/adboard-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler          *httpH.AuthHandler
	UserHandler          *httpH.UserHandler
	CategoryHandler      *httpH.CategoryHandler
	AttributeHandler     *httpH.AttributeHandler
	AdvertisementHandler *httpH.AdvertisementHandler
	PackageHandler       *httpH.PackageHandler
	ChatHandler          *httpH.ChatHandler
	RealtimeHandler      *httpH.RealtimeHandler
	HealthHandler        *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
		}

		// Browse surface. No session needed; ad detail honors one when
		// present so owners can open their drafts.
		if cfg.CategoryHandler != nil {
			api.GET("/categories", cfg.CategoryHandler.Children)
			api.GET("/categories/tree", cfg.CategoryHandler.Tree)
			api.GET("/categories/:id", cfg.CategoryHandler.Get)
			api.GET("/categories/:id/versions", cfg.CategoryHandler.ListVersions)
		}
		if cfg.AttributeHandler != nil {
			api.GET("/attributes", cfg.AttributeHandler.List)
			api.GET("/attributes/:id", cfg.AttributeHandler.Get)
		}
		if cfg.PackageHandler != nil {
			api.GET("/packages", cfg.PackageHandler.List)
			api.GET("/packages/:id", cfg.PackageHandler.Get)
		}
		if cfg.AdvertisementHandler != nil {
			api.GET("/ads", cfg.AdvertisementHandler.ListPublic)
			adDetail := api.Group("/")
			if cfg.AuthMiddleware != nil {
				adDetail.Use(cfg.AuthMiddleware.OptionalAuth())
			}
			adDetail.GET("/ads/:id", cfg.AdvertisementHandler.Get)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		if cfg.RealtimeHandler != nil {
			protected.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
		}

		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
			protected.PATCH("/me", cfg.UserHandler.UpdateProfile)
			protected.POST("/me/password", cfg.UserHandler.ChangePassword)
			protected.POST("/me/avatar", cfg.UserHandler.UploadAvatar)
		}

		if cfg.AdvertisementHandler != nil {
			protected.GET("/me/ads", cfg.AdvertisementHandler.ListOwn)
			protected.POST("/ads", cfg.AdvertisementHandler.Create)
			protected.PATCH("/ads/:id", cfg.AdvertisementHandler.Update)
			protected.DELETE("/ads/:id", cfg.AdvertisementHandler.Delete)
			protected.POST("/ads/:id/publish", cfg.AdvertisementHandler.Publish)
			protected.POST("/ads/:id/media", cfg.AdvertisementHandler.UploadMedia)
			protected.DELETE("/ads/:id/media/:mediaID", cfg.AdvertisementHandler.RemoveMedia)
		}

		if cfg.ChatHandler != nil {
			protected.POST("/conversations", cfg.ChatHandler.StartConversation)
			protected.GET("/conversations", cfg.ChatHandler.ListConversations)
			protected.POST("/conversations/:id/messages", cfg.ChatHandler.SendMessage)
			protected.GET("/conversations/:id/messages", cfg.ChatHandler.ListMessages)
			protected.POST("/conversations/:id/read", cfg.ChatHandler.MarkRead)
		}
	}

	admin := api.Group("/admin")
	{
		if cfg.AuthMiddleware != nil {
			admin.Use(cfg.AuthMiddleware.RequireAuth(), cfg.AuthMiddleware.RequireAdmin())
		}

		if cfg.CategoryHandler != nil {
			admin.POST("/categories", cfg.CategoryHandler.Create)
			admin.PUT("/categories/:id", cfg.CategoryHandler.Update)
			admin.DELETE("/categories/:id", cfg.CategoryHandler.Delete)
			admin.POST("/categories/:id/restore", cfg.CategoryHandler.Restore)
		}
		if cfg.AttributeHandler != nil {
			admin.POST("/attributes", cfg.AttributeHandler.Create)
			admin.PATCH("/attributes/:id", cfg.AttributeHandler.Update)
			admin.DELETE("/attributes/:id", cfg.AttributeHandler.Delete)
		}
		if cfg.PackageHandler != nil {
			admin.POST("/packages", cfg.PackageHandler.Create)
			admin.PATCH("/packages/:id", cfg.PackageHandler.Update)
		}
		if cfg.AdvertisementHandler != nil {
			admin.POST("/ads/:id/suspend", cfg.AdvertisementHandler.Suspend)
		}
		if cfg.UserHandler != nil {
			admin.PATCH("/users/:id/status", cfg.UserHandler.SetUserStatus)
		}
	}

	return r
}
