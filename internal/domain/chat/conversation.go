package chat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adverto/adboard-backend/internal/domain/ads"
	"github.com/adverto/adboard-backend/internal/domain/user"
)

// Conversation is a buyer/seller thread attached to one advertisement. One
// conversation per (advertisement, buyer).
type Conversation struct {
	ID              uuid.UUID          `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AdvertisementID uuid.UUID          `gorm:"type:uuid;not null;column:advertisement_id;index:idx_conversation_ad_buyer,unique,priority:1" json:"advertisement_id"`
	Advertisement   *ads.Advertisement `gorm:"foreignKey:AdvertisementID;references:ID" json:"advertisement,omitempty"`

	BuyerID  uuid.UUID  `gorm:"type:uuid;not null;column:buyer_id;index:idx_conversation_ad_buyer,unique,priority:2" json:"buyer_id"`
	Buyer    *user.User `gorm:"foreignKey:BuyerID;references:ID" json:"buyer,omitempty"`
	SellerID uuid.UUID  `gorm:"type:uuid;not null;column:seller_id;index" json:"seller_id"`
	Seller   *user.User `gorm:"foreignKey:SellerID;references:ID" json:"seller,omitempty"`

	LastMessageAt *time.Time `gorm:"column:last_message_at;index" json:"last_message_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Conversation) TableName() string { return "conversation" }

// Counterparty returns the other participant of the thread.
func (c *Conversation) Counterparty(userID uuid.UUID) uuid.UUID {
	if c == nil {
		return uuid.Nil
	}
	if c.BuyerID == userID {
		return c.SellerID
	}
	return c.BuyerID
}

// HasParticipant reports whether userID belongs to this conversation.
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	return c != nil && (c.BuyerID == userID || c.SellerID == userID)
}
