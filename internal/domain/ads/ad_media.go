package ads

import (
	"time"

	"github.com/google/uuid"
)

type AdMedia struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AdvertisementID uuid.UUID `gorm:"type:uuid;not null;column:advertisement_id;index" json:"advertisement_id"`

	StorageKey  string `gorm:"not null;column:storage_key" json:"storage_key"`
	PublicURL   string `gorm:"not null;column:public_url" json:"public_url"`
	ContentType string `gorm:"column:content_type" json:"content_type,omitempty"`
	SortOrder   int    `gorm:"not null;default:0;column:sort_order" json:"sort_order"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (AdMedia) TableName() string { return "ad_media" }
