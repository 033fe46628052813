package service

import (
	"context"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/slate-hq/slate-api/internal/dto"
	"github.com/slate-hq/slate-api/internal/models"
)

type workspaceFixture struct {
	svc        WorkspaceService
	workspaces *memoryWorkspaceRepo
	members    *memoryMemberRepo
	channels   *memoryChannelRepo
	events     *capturePublisher
}

func newWorkspaceFixture(cache *redis.Client) workspaceFixture {
	members := &memoryMemberRepo{}
	channels := &memoryChannelRepo{}
	workspaces := &memoryWorkspaceRepo{members: members, channels: channels}
	events := &capturePublisher{}
	svc := NewWorkspaceService(workspaces, members, cache, time.Minute, events, testLogger())
	return workspaceFixture{svc: svc, workspaces: workspaces, members: members, channels: channels, events: events}
}

func TestWorkspaceServiceCreateProvisionsOwnerAndDefaultChannel(t *testing.T) {
	f := newWorkspaceFixture(nil)

	resp, err := f.svc.Create(context.Background(), "user-1", dto.WorkspaceCreateRequest{Name: "Acme Corp"})
	require.NoError(t, err)
	require.Equal(t, "Acme Corp", resp.Name)
	require.Equal(t, "user-1", resp.OwnerUserID)
	require.Len(t, resp.JoinCode, 6)

	member, err := f.members.GetByWorkspaceAndUser(context.Background(), resp.ID, "user-1")
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, member.Role)

	channels, err := f.channels.ListByWorkspace(context.Background(), resp.ID)
	require.NoError(t, err)
	require.Len(t, channels, 1)
	require.Equal(t, "general", channels[0].Name)
}

func TestWorkspaceServiceCreateRejectsBadNames(t *testing.T) {
	f := newWorkspaceFixture(nil)

	_, err := f.svc.Create(context.Background(), "user-1", dto.WorkspaceCreateRequest{Name: "ab"})
	require.ErrorIs(t, err, ErrInvalidName)

	_, err = f.svc.Create(context.Background(), "user-1", dto.WorkspaceCreateRequest{Name: "this name is way too long for a workspace"})
	require.ErrorIs(t, err, ErrInvalidName)

	_, err = f.svc.Create(context.Background(), "", dto.WorkspaceCreateRequest{Name: "Acme"})
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestWorkspaceServiceJoinIsCaseInsensitive(t *testing.T) {
	f := newWorkspaceFixture(nil)

	created, err := f.svc.Create(context.Background(), "owner", dto.WorkspaceCreateRequest{Name: "Acme Corp"})
	require.NoError(t, err)

	joined, err := f.svc.Join(context.Background(), "joiner", created.ID, dto.WorkspaceJoinRequest{
		JoinCode: "  " + strings.ToUpper(created.JoinCode) + " ",
	})
	require.NoError(t, err)
	require.Equal(t, created.ID, joined.ID)

	member, err := f.members.GetByWorkspaceAndUser(context.Background(), created.ID, "joiner")
	require.NoError(t, err)
	require.Equal(t, models.RoleMember, member.Role)

	event, ok := f.events.last()
	require.True(t, ok)
	require.Equal(t, EventMemberChanged, event.Type)
}

func TestWorkspaceServiceJoinRejectsWrongCodeAndDuplicates(t *testing.T) {
	f := newWorkspaceFixture(nil)

	created, err := f.svc.Create(context.Background(), "owner", dto.WorkspaceCreateRequest{Name: "Acme Corp"})
	require.NoError(t, err)

	_, err = f.svc.Join(context.Background(), "joiner", created.ID, dto.WorkspaceJoinRequest{JoinCode: "zzzzzz"})
	require.ErrorIs(t, err, ErrInvalidJoinCode)

	_, err = f.svc.Join(context.Background(), "joiner", created.ID, dto.WorkspaceJoinRequest{JoinCode: created.JoinCode})
	require.NoError(t, err)

	_, err = f.svc.Join(context.Background(), "joiner", created.ID, dto.WorkspaceJoinRequest{JoinCode: created.JoinCode})
	require.ErrorIs(t, err, ErrAlreadyMember)
}

func TestWorkspaceServiceRotateJoinCodeRequiresAdmin(t *testing.T) {
	f := newWorkspaceFixture(nil)

	created, err := f.svc.Create(context.Background(), "owner", dto.WorkspaceCreateRequest{Name: "Acme Corp"})
	require.NoError(t, err)
	_, err = f.svc.Join(context.Background(), "joiner", created.ID, dto.WorkspaceJoinRequest{JoinCode: created.JoinCode})
	require.NoError(t, err)

	_, err = f.svc.RotateJoinCode(context.Background(), "joiner", created.ID)
	require.ErrorIs(t, err, ErrForbidden)

	rotated, err := f.svc.RotateJoinCode(context.Background(), "owner", created.ID)
	require.NoError(t, err)
	require.Len(t, rotated.JoinCode, 6)
	require.NotEqual(t, created.JoinCode, rotated.JoinCode)

	// The old code no longer admits anyone.
	_, err = f.svc.Join(context.Background(), "late", created.ID, dto.WorkspaceJoinRequest{JoinCode: created.JoinCode})
	require.ErrorIs(t, err, ErrInvalidJoinCode)
}

func TestWorkspaceServiceInfoForNonMember(t *testing.T) {
	f := newWorkspaceFixture(nil)

	created, err := f.svc.Create(context.Background(), "owner", dto.WorkspaceCreateRequest{Name: "Acme Corp"})
	require.NoError(t, err)

	info, err := f.svc.Info(context.Background(), "stranger", created.ID)
	require.NoError(t, err)
	require.Equal(t, "Acme Corp", info.Name)
	require.False(t, info.IsMember)

	ownerInfo, err := f.svc.Info(context.Background(), "owner", created.ID)
	require.NoError(t, err)
	require.True(t, ownerInfo.IsMember)
}

func TestWorkspaceServiceGetHiddenFromNonMembers(t *testing.T) {
	f := newWorkspaceFixture(nil)

	created, err := f.svc.Create(context.Background(), "owner", dto.WorkspaceCreateRequest{Name: "Acme Corp"})
	require.NoError(t, err)

	// Outsiders get the same answer as for a workspace that does not
	// exist at all.
	_, err = f.svc.Get(context.Background(), "stranger", created.ID)
	require.ErrorIs(t, err, ErrWorkspaceNotFound)

	_, err = f.svc.Get(context.Background(), "", created.ID)
	require.ErrorIs(t, err, ErrWorkspaceNotFound)
}

func TestWorkspaceServiceListPreservesMembershipOrder(t *testing.T) {
	f := newWorkspaceFixture(nil)

	first, err := f.svc.Create(context.Background(), "user-1", dto.WorkspaceCreateRequest{Name: "First One"})
	require.NoError(t, err)
	second, err := f.svc.Create(context.Background(), "user-1", dto.WorkspaceCreateRequest{Name: "Second One"})
	require.NoError(t, err)

	list, err := f.svc.List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, first.ID, list[0].ID)
	require.Equal(t, second.ID, list[1].ID)
}

func TestWorkspaceServiceRemoveRequiresAdmin(t *testing.T) {
	f := newWorkspaceFixture(nil)

	created, err := f.svc.Create(context.Background(), "owner", dto.WorkspaceCreateRequest{Name: "Acme Corp"})
	require.NoError(t, err)
	_, err = f.svc.Join(context.Background(), "joiner", created.ID, dto.WorkspaceJoinRequest{JoinCode: created.JoinCode})
	require.NoError(t, err)

	err = f.svc.Remove(context.Background(), "joiner", created.ID)
	require.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, f.svc.Remove(context.Background(), "owner", created.ID))
	_, err = f.workspaces.Get(context.Background(), created.ID)
	require.Error(t, err)
}

func TestWorkspaceServiceInfoUsesNameCache(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer redisClient.Close()

	f := newWorkspaceFixture(redisClient)

	created, err := f.svc.Create(context.Background(), "owner", dto.WorkspaceCreateRequest{Name: "Acme Corp"})
	require.NoError(t, err)

	info, err := f.svc.Info(context.Background(), "owner", created.ID)
	require.NoError(t, err)
	require.Equal(t, "Acme Corp", info.Name)

	cached, err := redisClient.Get(context.Background(), workspaceNameCachePrefix+created.ID).Result()
	require.NoError(t, err)
	require.Equal(t, "Acme Corp", cached)

	// Renaming invalidates the cached name.
	_, err = f.svc.Update(context.Background(), "owner", created.ID, dto.WorkspaceUpdateRequest{Name: "Better Name"})
	require.NoError(t, err)

	info, err = f.svc.Info(context.Background(), "owner", created.ID)
	require.NoError(t, err)
	require.Equal(t, "Better Name", info.Name)
}
