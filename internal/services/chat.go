package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dataagg "github.com/adverto/adboard-backend/internal/data/aggregates"
	"github.com/adverto/adboard-backend/internal/data/repos"
	types "github.com/adverto/adboard-backend/internal/domain"
	"github.com/adverto/adboard-backend/internal/domain/aggregates"
	"github.com/adverto/adboard-backend/internal/platform/dbctx"
	"github.com/adverto/adboard-backend/internal/platform/logger"
	"github.com/adverto/adboard-backend/internal/realtime"
)

const maxChatMessageLen = 4000

// ConversationView joins a conversation with its unread count for the caller.
type ConversationView struct {
	Conversation *types.Conversation `json:"conversation"`
	UnreadCount  int64               `json:"unread_count"`
}

type ChatService interface {
	// StartConversation finds or creates the buyer's thread on an ad. Sellers
	// cannot open threads on their own ads.
	StartConversation(ctx context.Context, buyerID, adID uuid.UUID) (*types.Conversation, error)
	SendMessage(ctx context.Context, senderID, conversationID uuid.UUID, body string) (*types.ChatMessage, error)
	ListConversations(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*ConversationView, error)
	ListMessages(ctx context.Context, userID, conversationID uuid.UUID, limit, offset int) ([]*types.ChatMessage, error)
	MarkRead(ctx context.Context, userID, conversationID uuid.UUID) error
}

type chatService struct {
	db               *gorm.DB
	log              *logger.Logger
	txRunner         dataagg.TxRunner
	adRepo           repos.AdvertisementRepo
	conversationRepo repos.ConversationRepo
	messageRepo      repos.ChatMessageRepo
	emit             SSEEmitter
}

func NewChatService(
	db *gorm.DB,
	baseLog *logger.Logger,
	txRunner dataagg.TxRunner,
	adRepo repos.AdvertisementRepo,
	conversationRepo repos.ConversationRepo,
	messageRepo repos.ChatMessageRepo,
	emit SSEEmitter,
) ChatService {
	return &chatService{
		db:               db,
		log:              baseLog.With("service", "ChatService"),
		txRunner:         txRunner,
		adRepo:           adRepo,
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		emit:             emit,
	}
}

func (s *chatService) StartConversation(ctx context.Context, buyerID, adID uuid.UUID) (*types.Conversation, error) {
	const op = "ChatService.StartConversation"
	if buyerID == uuid.Nil || adID == uuid.Nil {
		return nil, aggregates.ValidationError(op, "buyer and advertisement id required")
	}

	var conv *types.Conversation
	created := false
	err := s.txRunner.InTx(ctx, func(dbc dbctx.Context) error {
		ad, err := s.adRepo.GetByID(dbc.Ctx, dbc.Tx, adID)
		if err != nil {
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		if ad == nil || ad.Status != types.AdStatusActive {
			return aggregates.NotFoundError(op, "advertisement not found")
		}
		if ad.OwnerID == buyerID {
			return aggregates.ValidationError(op, "cannot start a conversation on your own advertisement")
		}

		conv, err = s.conversationRepo.GetByAdAndBuyer(dbc.Ctx, dbc.Tx, adID, buyerID)
		if err != nil {
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		if conv != nil {
			return nil
		}

		conv = &types.Conversation{
			ID:              uuid.New(),
			AdvertisementID: adID,
			BuyerID:         buyerID,
			SellerID:        ad.OwnerID,
		}
		if _, err := s.conversationRepo.Create(dbc.Ctx, dbc.Tx, conv); err != nil {
			s.log.Error("create conversation failed", "error", err, "ad_id", adID)
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created && s.emit != nil {
		s.emit.Emit(ctx, realtime.SSEMessage{
			Channel: conv.SellerID.String(),
			Event:   realtime.SSEEventConversationCreated,
			Data:    map[string]any{"conversation": conv},
		})
	}
	return conv, nil
}

func (s *chatService) SendMessage(ctx context.Context, senderID, conversationID uuid.UUID, body string) (*types.ChatMessage, error) {
	const op = "ChatService.SendMessage"
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, aggregates.ValidationError(op, "message body required")
	}
	if len(body) > maxChatMessageLen {
		return nil, aggregates.ValidationError(op, "message body too long")
	}

	var msg *types.ChatMessage
	var recipient uuid.UUID
	err := s.txRunner.InTx(ctx, func(dbc dbctx.Context) error {
		conv, err := s.requireParticipant(dbc.Ctx, dbc.Tx, op, senderID, conversationID)
		if err != nil {
			return err
		}
		recipient = conv.Counterparty(senderID)

		now := time.Now().UTC()
		msg = &types.ChatMessage{
			ID:             uuid.New(),
			ConversationID: conversationID,
			SenderID:       senderID,
			Body:           body,
			CreatedAt:      now,
		}
		if _, err := s.messageRepo.Create(dbc.Ctx, dbc.Tx, msg); err != nil {
			s.log.Error("create message failed", "error", err, "conversation_id", conversationID)
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		if err := s.conversationRepo.TouchLastMessage(dbc.Ctx, dbc.Tx, conversationID, now); err != nil {
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.emit != nil {
		s.emit.Emit(ctx, realtime.SSEMessage{
			Channel: recipient.String(),
			Event:   realtime.SSEEventChatMessageNew,
			Data:    map[string]any{"message": msg},
		})
	}
	return msg, nil
}

func (s *chatService) ListConversations(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*ConversationView, error) {
	const op = "ChatService.ListConversations"
	if userID == uuid.Nil {
		return nil, aggregates.ValidationError(op, "user id required")
	}
	convs, err := s.conversationRepo.ListForUser(ctx, tx, userID)
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	out := make([]*ConversationView, 0, len(convs))
	for _, c := range convs {
		unread, err := s.messageRepo.CountUnread(ctx, tx, c.ID, userID)
		if err != nil {
			return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		out = append(out, &ConversationView{Conversation: c, UnreadCount: unread})
	}
	return out, nil
}

func (s *chatService) ListMessages(ctx context.Context, userID, conversationID uuid.UUID, limit, offset int) ([]*types.ChatMessage, error) {
	const op = "ChatService.ListMessages"
	if _, err := s.requireParticipant(ctx, nil, op, userID, conversationID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	msgs, err := s.messageRepo.ListByConversationID(ctx, nil, conversationID, limit, offset)
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	return msgs, nil
}

func (s *chatService) MarkRead(ctx context.Context, userID, conversationID uuid.UUID) error {
	const op = "ChatService.MarkRead"
	var other uuid.UUID
	err := s.txRunner.InTx(ctx, func(dbc dbctx.Context) error {
		conv, err := s.requireParticipant(dbc.Ctx, dbc.Tx, op, userID, conversationID)
		if err != nil {
			return err
		}
		other = conv.Counterparty(userID)
		if err := s.messageRepo.MarkRead(dbc.Ctx, dbc.Tx, conversationID, userID, time.Now().UTC()); err != nil {
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.emit != nil {
		s.emit.Emit(ctx, realtime.SSEMessage{
			Channel: other.String(),
			Event:   realtime.SSEEventChatMessagesRead,
			Data:    map[string]any{"conversation_id": conversationID, "reader_id": userID},
		})
	}
	return nil
}

func (s *chatService) requireParticipant(ctx context.Context, tx *gorm.DB, op string, userID, conversationID uuid.UUID) (*types.Conversation, error) {
	if userID == uuid.Nil || conversationID == uuid.Nil {
		return nil, aggregates.ValidationError(op, "user and conversation id required")
	}
	conv, err := s.conversationRepo.GetByID(ctx, tx, conversationID)
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	if conv == nil || !conv.HasParticipant(userID) {
		return nil, aggregates.NotFoundError(op, "conversation not found")
	}
	return conv, nil
}
