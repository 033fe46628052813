package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/slate-hq/slate-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Workspace{},
		&models.Member{},
		&models.Channel{},
		&models.Conversation{},
		&models.Message{},
		&models.Reaction{},
	))
	return db
}

func TestWorkspaceRepositoryCreateWithOwner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkspaceRepository(db)

	workspace := models.Workspace{Name: "Acme", OwnerUserID: "alice", JoinCode: "a1b2c3"}
	owner := models.Member{UserID: "alice", Role: models.RoleAdmin}
	channel := models.Channel{Name: "general"}
	require.NoError(t, repo.CreateWithOwner(context.Background(), &workspace, &owner, &channel))

	require.NotEmpty(t, workspace.ID)
	require.Equal(t, workspace.ID, owner.WorkspaceID)
	require.Equal(t, workspace.ID, channel.WorkspaceID)

	var members []models.Member
	require.NoError(t, db.Where("workspace_id = ?", workspace.ID).Find(&members).Error)
	require.Len(t, members, 1)
	require.Equal(t, models.RoleAdmin, members[0].Role)

	var channels []models.Channel
	require.NoError(t, db.Where("workspace_id = ?", workspace.ID).Find(&channels).Error)
	require.Len(t, channels, 1)
	require.Equal(t, "general", channels[0].Name)
}

func TestWorkspaceRepositoryCreateWithOwnerRollsBack(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkspaceRepository(db)

	existing := models.Member{ID: "member-1", WorkspaceID: "ws-1", UserID: "alice", Role: models.RoleAdmin}
	require.NoError(t, db.Create(&existing).Error)

	// Reusing the member primary key fails mid-transaction; the
	// workspace insert must not survive it.
	workspace := models.Workspace{Name: "Acme", OwnerUserID: "alice", JoinCode: "a1b2c3"}
	owner := models.Member{ID: "member-1", UserID: "alice", Role: models.RoleAdmin}
	channel := models.Channel{Name: "general"}
	require.Error(t, repo.CreateWithOwner(context.Background(), &workspace, &owner, &channel))

	var count int64
	require.NoError(t, db.Model(&models.Workspace{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestWorkspaceRepositoryUpdates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkspaceRepository(db)

	workspace := models.Workspace{Name: "Before", OwnerUserID: "alice", JoinCode: "a1b2c3"}
	require.NoError(t, repo.Create(context.Background(), &workspace))

	require.NoError(t, repo.UpdateName(context.Background(), workspace.ID, "After"))
	require.NoError(t, repo.UpdateJoinCode(context.Background(), workspace.ID, "z9y8x7"))

	got, err := repo.Get(context.Background(), workspace.ID)
	require.NoError(t, err)
	require.Equal(t, "After", got.Name)
	require.Equal(t, "z9y8x7", got.JoinCode)

	_, err = repo.Get(context.Background(), "missing")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestWorkspaceRepositoryListByIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkspaceRepository(db)

	for _, name := range []string{"One", "Two"} {
		ws := models.Workspace{Name: name, OwnerUserID: "alice", JoinCode: "a1b2c3"}
		require.NoError(t, repo.Create(context.Background(), &ws))
	}

	empty, err := repo.ListByIDs(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, empty)

	var all []models.Workspace
	require.NoError(t, db.Find(&all).Error)
	listed, err := repo.ListByIDs(context.Background(), []string{all[0].ID, "missing"})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, all[0].ID, listed[0].ID)
}

func TestWorkspaceRepositoryDeleteCascade(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWorkspaceRepository(db)

	workspace := models.Workspace{Name: "Doomed", OwnerUserID: "alice", JoinCode: "a1b2c3"}
	require.NoError(t, repo.Create(context.Background(), &workspace))
	keeper := models.Workspace{Name: "Keeper", OwnerUserID: "bob", JoinCode: "d4e5f6"}
	require.NoError(t, repo.Create(context.Background(), &keeper))

	member := models.Member{ID: "member-1", WorkspaceID: workspace.ID, UserID: "alice", Role: models.RoleAdmin}
	channel := models.Channel{ID: "channel-1", WorkspaceID: workspace.ID, Name: "general"}
	conversation := models.Conversation{ID: "conv-1", WorkspaceID: workspace.ID, MemberOneID: "member-1", MemberTwoID: "member-2"}
	channelID := channel.ID
	message := models.Message{ID: "message-1", Body: "hi", MemberID: "member-1", WorkspaceID: workspace.ID, ChannelID: &channelID}
	reaction := models.Reaction{ID: "reaction-1", WorkspaceID: workspace.ID, MessageID: "message-1", MemberID: "member-1", Value: "👍"}
	survivor := models.Member{ID: "member-9", WorkspaceID: keeper.ID, UserID: "bob", Role: models.RoleAdmin}
	for _, row := range []interface{}{&member, &channel, &conversation, &message, &reaction, &survivor} {
		require.NoError(t, db.Create(row).Error)
	}

	require.NoError(t, repo.DeleteCascade(context.Background(), workspace.ID))

	for _, model := range []interface{}{&models.Member{}, &models.Channel{}, &models.Conversation{}, &models.Message{}, &models.Reaction{}} {
		var count int64
		require.NoError(t, db.Model(model).Where("workspace_id = ?", workspace.ID).Count(&count).Error)
		require.Zero(t, count)
	}
	_, err := repo.Get(context.Background(), workspace.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// The other workspace is untouched.
	var survivors int64
	require.NoError(t, db.Model(&models.Member{}).Where("workspace_id = ?", keeper.ID).Count(&survivors).Error)
	require.Equal(t, int64(1), survivors)
}
