package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/slate-hq/slate-api/internal/models"
)

// MessageCursor marks a position in the newest-first message ordering.
// The zero value means "start from the newest message".
type MessageCursor struct {
	CreatedAt time.Time
	ID        string
}

// IsZero reports whether the cursor is the start-of-listing marker.
func (c MessageCursor) IsZero() bool {
	return c.CreatedAt.IsZero() && c.ID == ""
}

// MessageFilter selects the container a message listing reads from.
// Exactly one of the three fields is set.
type MessageFilter struct {
	ChannelID       string
	ConversationID  string
	ParentMessageID string
}

// MessageRepository persists messages and serves the paginated listings.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	Get(ctx context.Context, id string) (models.Message, error)
	UpdateBody(ctx context.Context, id, body string) error
	DeleteWithReactions(ctx context.Context, id string) error
	ListPage(ctx context.Context, filter MessageFilter, cursor MessageCursor, limit int) ([]models.Message, error)
	ListReplies(ctx context.Context, parentMessageID string) ([]models.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository constructs a message repository backed by GORM.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) Get(ctx context.Context, id string) (models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).First(&message, "id = ?", id).Error; err != nil {
		return models.Message{}, err
	}
	return message, nil
}

func (r *messageRepository) UpdateBody(ctx context.Context, id, body string) error {
	return r.db.WithContext(ctx).Model(&models.Message{}).Where("id = ?", id).
		Updates(map[string]interface{}{"body": body, "updated_at": time.Now().UTC()}).Error
}

// DeleteWithReactions removes the message and its reactions atomically.
func (r *messageRepository) DeleteWithReactions(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", id).Delete(&models.Reaction{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Message{}, "id = ?", id).Error
	})
}

// ListPage returns up to limit messages from the selected container,
// newest first, starting strictly after the cursor position. Thread
// replies are excluded from channel and conversation listings; a
// parent-message filter returns only the replies of that message.
func (r *messageRepository) ListPage(ctx context.Context, filter MessageFilter, cursor MessageCursor, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := r.db.WithContext(ctx).Model(&models.Message{})

	switch {
	case filter.ParentMessageID != "":
		query = query.Where("parent_message_id = ?", filter.ParentMessageID)
	case filter.ChannelID != "":
		query = query.Where("channel_id = ? AND parent_message_id IS NULL", filter.ChannelID)
	case filter.ConversationID != "":
		query = query.Where("conversation_id = ? AND parent_message_id IS NULL", filter.ConversationID)
	}

	if !cursor.IsZero() {
		query = query.Where("created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var messages []models.Message
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) ListReplies(ctx context.Context, parentMessageID string) ([]models.Message, error) {
	var replies []models.Message
	err := r.db.WithContext(ctx).
		Where("parent_message_id = ?", parentMessageID).
		Order("created_at ASC, id ASC").
		Find(&replies).Error
	if err != nil {
		return nil, err
	}
	return replies, nil
}
