package app

import (
	httpx "github.com/adverto/adboard-backend/internal/http"
	httpH "github.com/adverto/adboard-backend/internal/http/handlers"
	httpMW "github.com/adverto/adboard-backend/internal/http/middleware"
	"github.com/adverto/adboard-backend/internal/platform/logger"
	"github.com/adverto/adboard-backend/internal/realtime"
)

func wireRouterConfig(log *logger.Logger, s Services, hub *realtime.SSEHub) httpx.RouterConfig {
	return httpx.RouterConfig{
		Log:            log,
		AuthMiddleware: httpMW.NewAuthMiddleware(log, s.Auth),

		AuthHandler:          httpH.NewAuthHandler(s.Auth),
		UserHandler:          httpH.NewUserHandler(s.User),
		CategoryHandler:      httpH.NewCategoryHandler(s.Category, s.CategoryVersion),
		AttributeHandler:     httpH.NewAttributeHandler(s.AttributeDefinition),
		AdvertisementHandler: httpH.NewAdvertisementHandler(s.Advertisement),
		PackageHandler:       httpH.NewPackageHandler(s.AdPackage),
		ChatHandler:          httpH.NewChatHandler(s.Chat),
		RealtimeHandler:      httpH.NewRealtimeHandler(log, hub),
		HealthHandler:        httpH.NewHealthHandler(),
	}
}
