package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/slate-hq/slate-api/internal/models"
)

// WorkspaceRepository persists workspaces and their cascading removal.
type WorkspaceRepository interface {
	Create(ctx context.Context, workspace *models.Workspace) error
	Get(ctx context.Context, id string) (models.Workspace, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Workspace, error)
	UpdateName(ctx context.Context, id, name string) error
	UpdateJoinCode(ctx context.Context, id, code string) error
	DeleteCascade(ctx context.Context, id string) error
	CreateWithOwner(ctx context.Context, workspace *models.Workspace, owner *models.Member, defaultChannel *models.Channel) error
}

type workspaceRepository struct {
	db *gorm.DB
}

// NewWorkspaceRepository constructs a workspace repository backed by GORM.
func NewWorkspaceRepository(db *gorm.DB) WorkspaceRepository {
	return &workspaceRepository{db: db}
}

func (r *workspaceRepository) Create(ctx context.Context, workspace *models.Workspace) error {
	if workspace.ID == "" {
		workspace.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(workspace).Error
}

func (r *workspaceRepository) Get(ctx context.Context, id string) (models.Workspace, error) {
	var workspace models.Workspace
	if err := r.db.WithContext(ctx).First(&workspace, "id = ?", id).Error; err != nil {
		return models.Workspace{}, err
	}
	return workspace, nil
}

func (r *workspaceRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Workspace, error) {
	if len(ids) == 0 {
		return []models.Workspace{}, nil
	}

	var workspaces []models.Workspace
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&workspaces).Error; err != nil {
		return nil, err
	}
	return workspaces, nil
}

func (r *workspaceRepository) UpdateName(ctx context.Context, id, name string) error {
	return r.db.WithContext(ctx).Model(&models.Workspace{}).Where("id = ?", id).Update("name", name).Error
}

func (r *workspaceRepository) UpdateJoinCode(ctx context.Context, id, code string) error {
	return r.db.WithContext(ctx).Model(&models.Workspace{}).Where("id = ?", id).Update("join_code", code).Error
}

// DeleteCascade removes the workspace and every dependent row in one
// transaction: reactions, messages, conversations, channels, members,
// then the workspace itself.
func (r *workspaceRepository) DeleteCascade(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("workspace_id = ?", id).Delete(&models.Reaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", id).Delete(&models.Conversation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", id).Delete(&models.Channel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", id).Delete(&models.Member{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Workspace{}, "id = ?", id).Error
	})
}

// CreateWithOwner inserts the workspace, its first admin member, and the
// default channel atomically.
func (r *workspaceRepository) CreateWithOwner(ctx context.Context, workspace *models.Workspace, owner *models.Member, defaultChannel *models.Channel) error {
	if workspace.ID == "" {
		workspace.ID = uuid.NewString()
	}
	if owner.ID == "" {
		owner.ID = uuid.NewString()
	}
	if defaultChannel.ID == "" {
		defaultChannel.ID = uuid.NewString()
	}
	owner.WorkspaceID = workspace.ID
	defaultChannel.WorkspaceID = workspace.ID

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(workspace).Error; err != nil {
			return err
		}
		if err := tx.Create(owner).Error; err != nil {
			return err
		}
		return tx.Create(defaultChannel).Error
	})
}
