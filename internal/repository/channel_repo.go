package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/slate-hq/slate-api/internal/models"
)

// ChannelRepository persists channels.
type ChannelRepository interface {
	Create(ctx context.Context, channel *models.Channel) error
	Get(ctx context.Context, id string) (models.Channel, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Channel, error)
	UpdateName(ctx context.Context, id, name string) error
	DeleteWithMessages(ctx context.Context, id string) error
}

type channelRepository struct {
	db *gorm.DB
}

// NewChannelRepository constructs a channel repository backed by GORM.
func NewChannelRepository(db *gorm.DB) ChannelRepository {
	return &channelRepository{db: db}
}

func (r *channelRepository) Create(ctx context.Context, channel *models.Channel) error {
	if channel.ID == "" {
		channel.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(channel).Error
}

func (r *channelRepository) Get(ctx context.Context, id string) (models.Channel, error) {
	var channel models.Channel
	if err := r.db.WithContext(ctx).First(&channel, "id = ?", id).Error; err != nil {
		return models.Channel{}, err
	}
	return channel, nil
}

func (r *channelRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Channel, error) {
	var channels []models.Channel
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at ASC").
		Find(&channels).Error
	if err != nil {
		return nil, err
	}
	return channels, nil
}

func (r *channelRepository) UpdateName(ctx context.Context, id, name string) error {
	return r.db.WithContext(ctx).Model(&models.Channel{}).Where("id = ?", id).Update("name", name).Error
}

// DeleteWithMessages removes the channel, every message in it, and the
// reactions attached to those messages, atomically.
func (r *channelRepository) DeleteWithMessages(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inChannel := tx.Model(&models.Message{}).Select("id").Where("channel_id = ?", id)
		if err := tx.Where("message_id IN (?)", inChannel).Delete(&models.Reaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("channel_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Channel{}, "id = ?", id).Error
	})
}
