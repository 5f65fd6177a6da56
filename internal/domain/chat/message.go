package chat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adverto/adboard-backend/internal/domain/user"
)

type ChatMessage struct {
	ID             uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ConversationID uuid.UUID     `gorm:"type:uuid;not null;column:conversation_id;index" json:"conversation_id"`
	Conversation   *Conversation `gorm:"constraint:OnDelete:CASCADE;foreignKey:ConversationID;references:ID" json:"conversation,omitempty"`

	SenderID uuid.UUID  `gorm:"type:uuid;not null;column:sender_id;index" json:"sender_id"`
	Sender   *user.User `gorm:"foreignKey:SenderID;references:ID" json:"sender,omitempty"`

	Body   string     `gorm:"type:text;not null;column:body" json:"body"`
	ReadAt *time.Time `gorm:"column:read_at" json:"read_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ChatMessage) TableName() string { return "chat_message" }
