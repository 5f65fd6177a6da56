package ads

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adverto/adboard-backend/internal/domain/catalog"
	"github.com/adverto/adboard-backend/internal/domain/user"
)

type AdStatus string

const (
	AdStatusDraft     AdStatus = "DRAFT"
	AdStatusActive    AdStatus = "ACTIVE"
	AdStatusSuspended AdStatus = "SUSPENDED"
	AdStatusExpired   AdStatus = "EXPIRED"
	AdStatusDeleted   AdStatus = "DELETED"
)

// adStatusTransitions encodes the one-directional lifecycle: no path leads back
// from SUSPENDED/EXPIRED/DELETED toward ACTIVE.
var adStatusTransitions = map[AdStatus][]AdStatus{
	AdStatusDraft:     {AdStatusActive, AdStatusDeleted},
	AdStatusActive:    {AdStatusSuspended, AdStatusExpired, AdStatusDeleted},
	AdStatusSuspended: {AdStatusExpired, AdStatusDeleted},
	AdStatusExpired:   {AdStatusDeleted},
	AdStatusDeleted:   {},
}

// CanTransition reports whether from → to is an allowed status move.
func CanTransition(from, to AdStatus) bool {
	for _, allowed := range adStatusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type ItemCondition string

const (
	ConditionNew  ItemCondition = "NEW"
	ConditionUsed ItemCondition = "USED"
)

// Advertisement binds to a specific category version, never to the category
// itself. The binding is frozen at creation time: later schema versions of the
// category do not apply to this ad.
type Advertisement struct {
	ID      uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerID uuid.UUID  `gorm:"type:uuid;not null;column:owner_id;index" json:"owner_id"`
	Owner   *user.User `gorm:"foreignKey:OwnerID;references:ID" json:"owner,omitempty"`

	CategoryVersionID uuid.UUID                `gorm:"type:uuid;not null;column:category_version_id;index" json:"category_version_id"`
	CategoryVersion   *catalog.CategoryVersion `gorm:"foreignKey:CategoryVersionID;references:ID" json:"category_version,omitempty"`

	PackageID uuid.UUID  `gorm:"type:uuid;not null;column:package_id" json:"package_id"`
	Package   *AdPackage `gorm:"foreignKey:PackageID;references:ID" json:"package,omitempty"`

	Title       string  `gorm:"not null;column:title" json:"title"`
	Description string  `gorm:"type:text;column:description" json:"description,omitempty"`
	Price       float64 `gorm:"not null;default:0;column:price" json:"price"`
	Negotiable  bool    `gorm:"not null;default:false;column:negotiable" json:"negotiable"`

	Latitude  *float64 `gorm:"column:latitude" json:"latitude,omitempty"`
	Longitude *float64 `gorm:"column:longitude" json:"longitude,omitempty"`
	Address   string   `gorm:"column:address" json:"address,omitempty"`

	Condition ItemCondition `gorm:"not null;default:'USED';column:condition" json:"condition"`
	Status    AdStatus      `gorm:"not null;default:'DRAFT';column:status;index" json:"status"`

	Featured         bool       `gorm:"not null;default:false;column:featured" json:"featured"`
	FeaturedUntil    *time.Time `gorm:"column:featured_until" json:"featured_until,omitempty"`
	TopAd            bool       `gorm:"not null;default:false;column:top_ad" json:"top_ad"`
	TopAdUntil       *time.Time `gorm:"column:top_ad_until" json:"top_ad_until,omitempty"`
	ViewCount        int64      `gorm:"not null;default:0;column:view_count" json:"view_count"`
	ExpiresAt        *time.Time `gorm:"column:expires_at;index" json:"expires_at,omitempty"`
	RejectionMessage string     `gorm:"column:rejection_message" json:"rejection_message,omitempty"`

	Attributes []AdAttribute `gorm:"foreignKey:AdvertisementID;references:ID" json:"attributes,omitempty"`
	Media      []AdMedia     `gorm:"foreignKey:AdvertisementID;references:ID" json:"media,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Advertisement) TableName() string { return "advertisement" }
