package app

import (
	"gorm.io/gorm"

	"github.com/adverto/adboard-backend/internal/data/repos"
	"github.com/adverto/adboard-backend/internal/platform/logger"
)

type Repos struct {
	User                repos.UserRepo
	UserToken           repos.UserTokenRepo
	AttributeDefinition repos.AttributeDefinitionRepo
	Category            repos.CategoryRepo
	CategoryVersion     repos.CategoryVersionRepo
	Advertisement       repos.AdvertisementRepo
	AdAttribute         repos.AdAttributeRepo
	AdMedia             repos.AdMediaRepo
	AdPackage           repos.AdPackageRepo
	Conversation        repos.ConversationRepo
	ChatMessage         repos.ChatMessageRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		User:                repos.NewUserRepo(db, log),
		UserToken:           repos.NewUserTokenRepo(db, log),
		AttributeDefinition: repos.NewAttributeDefinitionRepo(db, log),
		Category:            repos.NewCategoryRepo(db, log),
		CategoryVersion:     repos.NewCategoryVersionRepo(db, log),
		Advertisement:       repos.NewAdvertisementRepo(db, log),
		AdAttribute:         repos.NewAdAttributeRepo(db, log),
		AdMedia:             repos.NewAdMediaRepo(db, log),
		AdPackage:           repos.NewAdPackageRepo(db, log),
		Conversation:        repos.NewConversationRepo(db, log),
		ChatMessage:         repos.NewChatMessageRepo(db, log),
	}
}
