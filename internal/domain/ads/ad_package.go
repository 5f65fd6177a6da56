package ads

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdPackage is a listing plan an advertisement is published under.
type AdPackage struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name         string    `gorm:"uniqueIndex;not null;column:name" json:"name"`
	Description  string    `gorm:"type:text;column:description" json:"description,omitempty"`
	DurationDays int       `gorm:"not null;default:30;column:duration_days" json:"duration_days"`
	MaxPhotos    int       `gorm:"not null;default:5;column:max_photos" json:"max_photos"`
	Featured     bool      `gorm:"not null;default:false;column:featured" json:"featured"`
	TopAd        bool      `gorm:"not null;default:false;column:top_ad" json:"top_ad"`
	Price        float64   `gorm:"not null;default:0;column:price" json:"price"`
	Active       bool      `gorm:"not null;default:true;column:active" json:"active"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (AdPackage) TableName() string { return "ad_package" }
