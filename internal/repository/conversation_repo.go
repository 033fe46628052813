package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/slate-hq/slate-api/internal/models"
)

// ConversationRepository persists 1:1 direct-message conversations.
type ConversationRepository interface {
	Create(ctx context.Context, conversation *models.Conversation) error
	Get(ctx context.Context, id string) (models.Conversation, error)
	FindByMembers(ctx context.Context, workspaceID, memberA, memberB string) (models.Conversation, error)
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository constructs a conversation repository backed by GORM.
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Create(ctx context.Context, conversation *models.Conversation) error {
	if conversation.ID == "" {
		conversation.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(conversation).Error
}

func (r *conversationRepository) Get(ctx context.Context, id string) (models.Conversation, error) {
	var conversation models.Conversation
	if err := r.db.WithContext(ctx).First(&conversation, "id = ?", id).Error; err != nil {
		return models.Conversation{}, err
	}
	return conversation, nil
}

// FindByMembers resolves the conversation for an unordered member pair,
// matching either assignment of the two sides.
func (r *conversationRepository) FindByMembers(ctx context.Context, workspaceID, memberA, memberB string) (models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Where("(member_one_id = ? AND member_two_id = ?) OR (member_one_id = ? AND member_two_id = ?)",
			memberA, memberB, memberB, memberA).
		First(&conversation).Error
	if err != nil {
		return models.Conversation{}, err
	}
	return conversation, nil
}
