package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/slate-hq/slate-api/internal/dto"
	"github.com/slate-hq/slate-api/internal/models"
)

type reactionFixture struct {
	svc       ReactionService
	reactions *memoryReactionRepo
	messages  *memoryMessageRepo
	members   *memoryMemberRepo
	events    *capturePublisher

	alice   models.Member
	bob     models.Member
	channel string
	message models.Message
}

func newReactionFixture(t *testing.T) *reactionFixture {
	t.Helper()
	f := &reactionFixture{
		reactions: &memoryReactionRepo{},
		messages:  &memoryMessageRepo{},
		members:   &memoryMemberRepo{},
		events:    &capturePublisher{},
	}

	ctx := context.Background()
	f.alice = models.Member{WorkspaceID: "ws-1", UserID: "alice", Role: models.RoleAdmin}
	f.bob = models.Member{WorkspaceID: "ws-1", UserID: "bob", Role: models.RoleMember}
	require.NoError(t, f.members.Create(ctx, &f.alice))
	require.NoError(t, f.members.Create(ctx, &f.bob))

	f.channel = "channel-1"
	channelID := f.channel
	f.message = models.Message{
		Body:        "react here",
		MemberID:    f.alice.ID,
		WorkspaceID: "ws-1",
		ChannelID:   &channelID,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, f.messages.Create(ctx, &f.message))

	f.svc = NewReactionService(f.reactions, f.messages, f.members, f.events, testLogger())
	return f
}

func TestReactionServiceToggleAddsThenRemoves(t *testing.T) {
	f := newReactionFixture(t)
	req := dto.ReactionToggleRequest{MessageID: f.message.ID, Value: "👍"}

	resp, err := f.svc.Toggle(context.Background(), "bob", req)
	require.NoError(t, err)
	require.True(t, resp.Added)

	event, ok := f.events.last()
	require.True(t, ok)
	require.Equal(t, EventReactionToggled, event.Type)
	require.Equal(t, ChannelRoom(f.channel), event.Room)

	resp, err = f.svc.Toggle(context.Background(), "bob", req)
	require.NoError(t, err)
	require.False(t, resp.Added)

	listed, err := f.reactions.ListForMessages(context.Background(), []string{f.message.ID})
	require.NoError(t, err)
	require.Empty(t, listed)
}

func TestReactionServiceTogglesAreIndependentPerValueAndMember(t *testing.T) {
	f := newReactionFixture(t)

	_, err := f.svc.Toggle(context.Background(), "bob", dto.ReactionToggleRequest{MessageID: f.message.ID, Value: "👍"})
	require.NoError(t, err)
	_, err = f.svc.Toggle(context.Background(), "bob", dto.ReactionToggleRequest{MessageID: f.message.ID, Value: "🎉"})
	require.NoError(t, err)
	_, err = f.svc.Toggle(context.Background(), "alice", dto.ReactionToggleRequest{MessageID: f.message.ID, Value: "👍"})
	require.NoError(t, err)

	listed, err := f.reactions.ListForMessages(context.Background(), []string{f.message.ID})
	require.NoError(t, err)
	require.Len(t, listed, 3)

	// Removing bob's 👍 leaves the other two untouched.
	resp, err := f.svc.Toggle(context.Background(), "bob", dto.ReactionToggleRequest{MessageID: f.message.ID, Value: "👍"})
	require.NoError(t, err)
	require.False(t, resp.Added)

	listed, err = f.reactions.ListForMessages(context.Background(), []string{f.message.ID})
	require.NoError(t, err)
	require.Len(t, listed, 2)
}

func TestReactionServiceToggleSurvivesDuplicateRace(t *testing.T) {
	f := newReactionFixture(t)

	// Simulate a concurrent request landing the row between Find and
	// Create: the row already exists, so Create reports the unique index.
	require.NoError(t, f.reactions.Create(context.Background(), &models.Reaction{
		WorkspaceID: "ws-1", MessageID: f.message.ID, MemberID: f.bob.ID, Value: "👍",
	}))
	f.reactions.failNextFind = true

	resp, err := f.svc.Toggle(context.Background(), "bob", dto.ReactionToggleRequest{MessageID: f.message.ID, Value: "👍"})
	require.NoError(t, err)
	require.False(t, resp.Added)

	listed, err := f.reactions.ListForMessages(context.Background(), []string{f.message.ID})
	require.NoError(t, err)
	require.Empty(t, listed)
}

func TestReactionServiceToggleGuards(t *testing.T) {
	f := newReactionFixture(t)

	_, err := f.svc.Toggle(context.Background(), "bob", dto.ReactionToggleRequest{MessageID: "missing", Value: "👍"})
	require.ErrorIs(t, err, ErrMessageNotFound)

	_, err = f.svc.Toggle(context.Background(), "stranger", dto.ReactionToggleRequest{MessageID: f.message.ID, Value: "👍"})
	require.ErrorIs(t, err, ErrNotMember)

	_, err = f.svc.Toggle(context.Background(), "", dto.ReactionToggleRequest{MessageID: f.message.ID, Value: "👍"})
	require.ErrorIs(t, err, ErrUnauthenticated)

	_, err = f.svc.Toggle(context.Background(), "bob", dto.ReactionToggleRequest{MessageID: f.message.ID})
	require.Error(t, err)
}
