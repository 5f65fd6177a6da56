package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/adverto/adboard-backend/internal/domain"
	"github.com/adverto/adboard-backend/internal/platform/logger"
)

type ConversationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Conversation) (*types.Conversation, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Conversation, error)
	GetByAdAndBuyer(ctx context.Context, tx *gorm.DB, adID, buyerID uuid.UUID) (*types.Conversation, error)
	ListForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Conversation, error)
	TouchLastMessage(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error
}

type conversationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConversationRepo(db *gorm.DB, baseLog *logger.Logger) ConversationRepo {
	return &conversationRepo{db: db, log: baseLog.With("repo", "ConversationRepo")}
}

func (r *conversationRepo) base(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *conversationRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Conversation) (*types.Conversation, error) {
	if row == nil {
		return nil, nil
	}
	if err := r.base(tx).WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *conversationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Conversation, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Conversation
	if err := r.base(tx).WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *conversationRepo) GetByAdAndBuyer(ctx context.Context, tx *gorm.DB, adID, buyerID uuid.UUID) (*types.Conversation, error) {
	if adID == uuid.Nil || buyerID == uuid.Nil {
		return nil, nil
	}
	var out []*types.Conversation
	if err := r.base(tx).WithContext(ctx).
		Where("advertisement_id = ? AND buyer_id = ?", adID, buyerID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *conversationRepo) ListForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Conversation, error) {
	var out []*types.Conversation
	if userID == uuid.Nil {
		return out, nil
	}
	if err := r.base(tx).WithContext(ctx).
		Preload("Advertisement").
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Order("last_message_at DESC NULLS LAST, created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conversationRepo) TouchLastMessage(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error {
	if id == uuid.Nil {
		return nil
	}
	return r.base(tx).WithContext(ctx).
		Model(&types.Conversation{}).
		Where("id = ?", id).
		Update("last_message_at", at).Error
}
