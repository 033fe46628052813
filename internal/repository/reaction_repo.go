package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/slate-hq/slate-api/internal/models"
)

// ReactionRepository persists emoji reactions.
type ReactionRepository interface {
	Create(ctx context.Context, reaction *models.Reaction) error
	Find(ctx context.Context, messageID, memberID, value string) (models.Reaction, error)
	Delete(ctx context.Context, id string) error
	ListForMessages(ctx context.Context, messageIDs []string) ([]models.Reaction, error)
}

type reactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository constructs a reaction repository backed by GORM.
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) Create(ctx context.Context, reaction *models.Reaction) error {
	if reaction.ID == "" {
		reaction.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(reaction).Error
}

func (r *reactionRepository) Find(ctx context.Context, messageID, memberID, value string) (models.Reaction, error) {
	var reaction models.Reaction
	err := r.db.WithContext(ctx).
		Where("message_id = ? AND member_id = ? AND value = ?", messageID, memberID, value).
		First(&reaction).Error
	if err != nil {
		return models.Reaction{}, err
	}
	return reaction, nil
}

func (r *reactionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Reaction{}, "id = ?", id).Error
}

// ListForMessages returns the reactions of a batch of messages in
// creation order, which is the order member ids appear inside a
// grouped reaction summary.
func (r *reactionRepository) ListForMessages(ctx context.Context, messageIDs []string) ([]models.Reaction, error) {
	if len(messageIDs) == 0 {
		return []models.Reaction{}, nil
	}

	var reactions []models.Reaction
	err := r.db.WithContext(ctx).
		Where("message_id IN ?", messageIDs).
		Order("created_at ASC, id ASC").
		Find(&reactions).Error
	if err != nil {
		return nil, err
	}
	return reactions, nil
}
