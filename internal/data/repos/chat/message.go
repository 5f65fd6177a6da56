package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/adverto/adboard-backend/internal/domain"
	"github.com/adverto/adboard-backend/internal/platform/logger"
)

type ChatMessageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.ChatMessage) (*types.ChatMessage, error)
	ListByConversationID(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID, limit, offset int) ([]*types.ChatMessage, error)
	// MarkRead stamps every unread message in the conversation that was sent by
	// someone other than readerID.
	MarkRead(ctx context.Context, tx *gorm.DB, conversationID, readerID uuid.UUID, at time.Time) error
	CountUnread(ctx context.Context, tx *gorm.DB, conversationID, readerID uuid.UUID) (int64, error)
}

type chatMessageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChatMessageRepo(db *gorm.DB, baseLog *logger.Logger) ChatMessageRepo {
	return &chatMessageRepo{db: db, log: baseLog.With("repo", "ChatMessageRepo")}
}

func (r *chatMessageRepo) base(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *chatMessageRepo) Create(ctx context.Context, tx *gorm.DB, row *types.ChatMessage) (*types.ChatMessage, error) {
	if row == nil {
		return nil, nil
	}
	if err := r.base(tx).WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *chatMessageRepo) ListByConversationID(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID, limit, offset int) ([]*types.ChatMessage, error) {
	var out []*types.ChatMessage
	if conversationID == uuid.Nil {
		return out, nil
	}
	q := r.base(tx).WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *chatMessageRepo) MarkRead(ctx context.Context, tx *gorm.DB, conversationID, readerID uuid.UUID, at time.Time) error {
	if conversationID == uuid.Nil || readerID == uuid.Nil {
		return nil
	}
	return r.base(tx).WithContext(ctx).
		Model(&types.ChatMessage{}).
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conversationID, readerID).
		Update("read_at", at).Error
}

func (r *chatMessageRepo) CountUnread(ctx context.Context, tx *gorm.DB, conversationID, readerID uuid.UUID) (int64, error) {
	if conversationID == uuid.Nil || readerID == uuid.Nil {
		return 0, nil
	}
	var n int64
	if err := r.base(tx).WithContext(ctx).
		Model(&types.ChatMessage{}).
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conversationID, readerID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
