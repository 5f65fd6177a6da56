package app

import (
	"gorm.io/gorm"

	dataagg "github.com/adverto/adboard-backend/internal/data/aggregates"
	"github.com/adverto/adboard-backend/internal/platform/gcs"
	"github.com/adverto/adboard-backend/internal/platform/logger"
	"github.com/adverto/adboard-backend/internal/platform/sendgrid"
	"github.com/adverto/adboard-backend/internal/realtime"
	"github.com/adverto/adboard-backend/internal/realtime/bus"
	"github.com/adverto/adboard-backend/internal/services"
)

type Services struct {
	Auth                services.AuthService
	User                services.UserService
	AttributeDefinition services.AttributeDefinitionService
	CategoryVersion     services.CategoryVersionService
	Category            services.CategoryService
	AdBinding           services.AdBindingService
	Media               services.MediaService
	Advertisement       services.AdvertisementService
	AdPackage           services.AdPackageService
	Chat                services.ChatService
	Notifier            services.Notifier
	Emitter             services.SSEEmitter
	Bus                 bus.Bus
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, hub *realtime.SSEHub) Services {
	txRunner := dataagg.NewGormTxRunner(db)

	bucket, err := gcs.NewBucketService(log)
	if err != nil {
		log.Warn("bucket service unavailable, media uploads will fail", "error", err)
	}

	var notifier services.Notifier
	if mail, err := sendgrid.NewFromEnv(log); err != nil {
		log.Warn("email notifier disabled", "error", err)
		notifier = services.NewNoopNotifier()
	} else {
		notifier = services.NewEmailNotifier(log, mail, r.User)
	}

	var emitter services.SSEEmitter = &services.HubEmitter{Hub: hub}
	var sseBus bus.Bus
	if cfg.RedisAddr != "" {
		b, err := bus.NewRedisBus(log)
		if err != nil {
			log.Warn("redis bus unavailable, falling back to in-process SSE", "error", err)
		} else {
			sseBus = b
			emitter = &services.RedisEmitter{Bus: b}
		}
	}

	authService := services.NewAuthService(db, log, r.User, r.UserToken,
		cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	userService := services.NewUserService(db, log, r.User, bucket)
	defService := services.NewAttributeDefinitionService(db, log, txRunner, r.AttributeDefinition)
	versionService := services.NewCategoryVersionService(db, log, r.CategoryVersion, r.AttributeDefinition)
	categoryService := services.NewCategoryService(db, log, txRunner,
		r.Category, r.CategoryVersion, r.Advertisement, versionService, notifier)
	bindingService := services.NewAdBindingService(log, versionService)
	mediaService := services.NewMediaService(db, log, bucket, r.AdMedia)
	adService := services.NewAdvertisementService(db, log, txRunner,
		r.Advertisement, r.AdAttribute, r.AdPackage, versionService, bindingService, mediaService, notifier)
	packageService := services.NewAdPackageService(db, log, r.AdPackage)
	chatService := services.NewChatService(db, log, txRunner,
		r.Advertisement, r.Conversation, r.ChatMessage, emitter)

	return Services{
		Auth:                authService,
		User:                userService,
		AttributeDefinition: defService,
		CategoryVersion:     versionService,
		Category:            categoryService,
		AdBinding:           bindingService,
		Media:               mediaService,
		Advertisement:       adService,
		AdPackage:           packageService,
		Chat:                chatService,
		Notifier:            notifier,
		Emitter:             emitter,
		Bus:                 sseBus,
	}
}
