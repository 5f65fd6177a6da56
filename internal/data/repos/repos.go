package repos

import (
	"gorm.io/gorm"

	"github.com/adverto/adboard-backend/internal/data/repos/ads"
	"github.com/adverto/adboard-backend/internal/data/repos/auth"
	"github.com/adverto/adboard-backend/internal/data/repos/catalog"
	"github.com/adverto/adboard-backend/internal/data/repos/chat"
	"github.com/adverto/adboard-backend/internal/data/repos/user"
	"github.com/adverto/adboard-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo

type AttributeDefinitionRepo = catalog.AttributeDefinitionRepo
type CategoryRepo = catalog.CategoryRepo
type CategoryVersionRepo = catalog.CategoryVersionRepo

type AdvertisementRepo = ads.AdvertisementRepo
type AdAttributeRepo = ads.AdAttributeRepo
type AdMediaRepo = ads.AdMediaRepo
type AdPackageRepo = ads.AdPackageRepo

type ConversationRepo = chat.ConversationRepo
type ChatMessageRepo = chat.ChatMessageRepo

type AdListFilter = ads.AdListFilter

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}

func NewAttributeDefinitionRepo(db *gorm.DB, baseLog *logger.Logger) AttributeDefinitionRepo {
	return catalog.NewAttributeDefinitionRepo(db, baseLog)
}
func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return catalog.NewCategoryRepo(db, baseLog)
}
func NewCategoryVersionRepo(db *gorm.DB, baseLog *logger.Logger) CategoryVersionRepo {
	return catalog.NewCategoryVersionRepo(db, baseLog)
}

func NewAdvertisementRepo(db *gorm.DB, baseLog *logger.Logger) AdvertisementRepo {
	return ads.NewAdvertisementRepo(db, baseLog)
}
func NewAdAttributeRepo(db *gorm.DB, baseLog *logger.Logger) AdAttributeRepo {
	return ads.NewAdAttributeRepo(db, baseLog)
}
func NewAdMediaRepo(db *gorm.DB, baseLog *logger.Logger) AdMediaRepo {
	return ads.NewAdMediaRepo(db, baseLog)
}
func NewAdPackageRepo(db *gorm.DB, baseLog *logger.Logger) AdPackageRepo {
	return ads.NewAdPackageRepo(db, baseLog)
}

func NewConversationRepo(db *gorm.DB, baseLog *logger.Logger) ConversationRepo {
	return chat.NewConversationRepo(db, baseLog)
}
func NewChatMessageRepo(db *gorm.DB, baseLog *logger.Logger) ChatMessageRepo {
	return chat.NewChatMessageRepo(db, baseLog)
}
