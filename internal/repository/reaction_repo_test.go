package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/slate-hq/slate-api/internal/models"
)

func TestReactionRepositoryUniqueTriple(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReactionRepository(db)

	reaction := models.Reaction{WorkspaceID: "ws-1", MessageID: "msg-1", MemberID: "member-1", Value: "👍"}
	require.NoError(t, repo.Create(context.Background(), &reaction))
	require.NotEmpty(t, reaction.ID)

	dup := models.Reaction{WorkspaceID: "ws-1", MessageID: "msg-1", MemberID: "member-1", Value: "👍"}
	require.ErrorIs(t, repo.Create(context.Background(), &dup), gorm.ErrDuplicatedKey)

	// A different emoji or a different member is a new row.
	require.NoError(t, repo.Create(context.Background(), &models.Reaction{WorkspaceID: "ws-1", MessageID: "msg-1", MemberID: "member-1", Value: "🎉"}))
	require.NoError(t, repo.Create(context.Background(), &models.Reaction{WorkspaceID: "ws-1", MessageID: "msg-1", MemberID: "member-2", Value: "👍"}))
}

func TestReactionRepositoryFindAndDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReactionRepository(db)

	reaction := models.Reaction{WorkspaceID: "ws-1", MessageID: "msg-1", MemberID: "member-1", Value: "👍"}
	require.NoError(t, repo.Create(context.Background(), &reaction))

	found, err := repo.Find(context.Background(), "msg-1", "member-1", "👍")
	require.NoError(t, err)
	require.Equal(t, reaction.ID, found.ID)

	_, err = repo.Find(context.Background(), "msg-1", "member-1", "🎉")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.Delete(context.Background(), reaction.ID))
	_, err = repo.Find(context.Background(), "msg-1", "member-1", "👍")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestReactionRepositoryListForMessages(t *testing.T) {
	db := setupTestDB(t)
	repo := NewReactionRepository(db)

	base := time.Now().Add(-time.Minute).Truncate(time.Millisecond)
	rows := []models.Reaction{
		{ID: "r1", WorkspaceID: "ws-1", MessageID: "msg-1", MemberID: "member-1", Value: "👍", CreatedAt: base},
		{ID: "r2", WorkspaceID: "ws-1", MessageID: "msg-2", MemberID: "member-1", Value: "👍", CreatedAt: base.Add(time.Second)},
		{ID: "r3", WorkspaceID: "ws-1", MessageID: "msg-1", MemberID: "member-2", Value: "🎉", CreatedAt: base.Add(2 * time.Second)},
		{ID: "r4", WorkspaceID: "ws-1", MessageID: "msg-3", MemberID: "member-1", Value: "👍", CreatedAt: base.Add(3 * time.Second)},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}

	listed, err := repo.ListForMessages(context.Background(), []string{"msg-1", "msg-2"})
	require.NoError(t, err)
	require.Len(t, listed, 3)
	require.Equal(t, "r1", listed[0].ID, "expected creation order")
	require.Equal(t, "r2", listed[1].ID)
	require.Equal(t, "r3", listed[2].ID)

	empty, err := repo.ListForMessages(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}
