package domain

import (
	"github.com/adverto/adboard-backend/internal/domain/ads"
	"github.com/adverto/adboard-backend/internal/domain/auth"
	"github.com/adverto/adboard-backend/internal/domain/catalog"
	"github.com/adverto/adboard-backend/internal/domain/chat"
	"github.com/adverto/adboard-backend/internal/domain/user"
)

type User = user.User
type UserToken = auth.UserToken

type AttributeDefinition = catalog.AttributeDefinition
type ValidationRules = catalog.ValidationRules
type DataType = catalog.DataType
type Category = catalog.Category
type CategoryVersion = catalog.CategoryVersion
type CategoryVersionAttribute = catalog.CategoryVersionAttribute
type CategoryStatus = catalog.CategoryStatus
type AttributeValue = catalog.AttributeValue

type Advertisement = ads.Advertisement
type AdAttribute = ads.AdAttribute
type AdMedia = ads.AdMedia
type AdPackage = ads.AdPackage
type AdStatus = ads.AdStatus
type ItemCondition = ads.ItemCondition

type Conversation = chat.Conversation
type ChatMessage = chat.ChatMessage

const (
	RoleUser  = user.RoleUser
	RoleAdmin = user.RoleAdmin

	MaxCategoryDepth = catalog.MaxDepth

	DataTypeText        = catalog.DataTypeText
	DataTypeNumber      = catalog.DataTypeNumber
	DataTypeDate        = catalog.DataTypeDate
	DataTypeBoolean     = catalog.DataTypeBoolean
	DataTypeSelect      = catalog.DataTypeSelect
	DataTypeMultiSelect = catalog.DataTypeMultiSelect
	DataTypeLocation    = catalog.DataTypeLocation

	CategoryStatusActive   = catalog.CategoryStatusActive
	CategoryStatusInactive = catalog.CategoryStatusInactive
	CategoryStatusDeleted  = catalog.CategoryStatusDeleted

	AdStatusDraft     = ads.AdStatusDraft
	AdStatusActive    = ads.AdStatusActive
	AdStatusSuspended = ads.AdStatusSuspended
	AdStatusExpired   = ads.AdStatusExpired
	AdStatusDeleted   = ads.AdStatusDeleted

	ConditionNew  = ads.ConditionNew
	ConditionUsed = ads.ConditionUsed
)
