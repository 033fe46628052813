package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/slate-hq/slate-api/internal/models"
)

// MemberRepository persists workspace memberships.
type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	Get(ctx context.Context, id string) (models.Member, error)
	GetByWorkspaceAndUser(ctx context.Context, workspaceID, userID string) (models.Member, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Member, error)
	ListByUser(ctx context.Context, userID string) ([]models.Member, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Member, error)
	UpdateRole(ctx context.Context, id, role string) error
	CountAdmins(ctx context.Context, workspaceID string) (int64, error)
	Purge(ctx context.Context, id string) error
}

type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository constructs a member repository backed by GORM.
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Create(ctx context.Context, member *models.Member) error {
	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *memberRepository) Get(ctx context.Context, id string) (models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).First(&member, "id = ?", id).Error; err != nil {
		return models.Member{}, err
	}
	return member, nil
}

func (r *memberRepository) GetByWorkspaceAndUser(ctx context.Context, workspaceID, userID string) (models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&member).Error
	if err != nil {
		return models.Member{}, err
	}
	return member, nil
}

func (r *memberRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Member, error) {
	var members []models.Member
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *memberRepository) ListByUser(ctx context.Context, userID string) ([]models.Member, error) {
	var members []models.Member
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *memberRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Member, error) {
	if len(ids) == 0 {
		return []models.Member{}, nil
	}

	var members []models.Member
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *memberRepository) UpdateRole(ctx context.Context, id, role string) error {
	return r.db.WithContext(ctx).Model(&models.Member{}).Where("id = ?", id).Update("role", role).Error
}

func (r *memberRepository) CountAdmins(ctx context.Context, workspaceID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Member{}).
		Where("workspace_id = ? AND role = ?", workspaceID, models.RoleAdmin).
		Count(&count).Error
	return count, err
}

// Purge removes a member together with everything they produced: their
// reactions, reactions left by others on their messages, their messages,
// and any conversation they are a side of. One transaction, so a failed
// cascade leaves nothing half-deleted.
func (r *memberRepository) Purge(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		authored := tx.Model(&models.Message{}).Select("id").Where("member_id = ?", id)
		if err := tx.Where("member_id = ?", id).Or("message_id IN (?)", authored).Delete(&models.Reaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("member_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("member_one_id = ? OR member_two_id = ?", id, id).Delete(&models.Conversation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Member{}, "id = ?", id).Error
	})
}
