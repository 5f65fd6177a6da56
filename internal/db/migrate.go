package db

import (
	"gorm.io/gorm"

	types "github.com/adverto/adboard-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(

		// Identity + auth
		&types.User{},
		&types.UserToken{},

		// Catalog (attribute registry, category tree, version history)
		&types.AttributeDefinition{},
		&types.Category{},
		&types.CategoryVersion{},
		&types.CategoryVersionAttribute{},

		// Advertisements
		&types.AdPackage{},
		&types.Advertisement{},
		&types.AdAttribute{},
		&types.AdMedia{},

		// Messaging
		&types.Conversation{},
		&types.ChatMessage{},
	); err != nil {
		return err
	}

	// The single-open-version invariant is enforced in the version service; the
	// partial unique index backs it at the store level as well.
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_category_version_open
		 ON category_version (category_id) WHERE valid_to IS NULL;`,
	).Error; err != nil {
		return err
	}

	// Case-insensitive uniqueness for attribute names.
	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_attribute_definition_name_ci
		 ON attribute_definition (lower(name));`,
	).Error
}
