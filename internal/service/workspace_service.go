package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/slate-hq/slate-api/internal/dto"
	"github.com/slate-hq/slate-api/internal/models"
	"github.com/slate-hq/slate-api/internal/repository"
)

const workspaceNameCachePrefix = "slate:workspace:name:"

// defaultChannelName is the channel every new workspace starts with.
const defaultChannelName = "general"

// WorkspaceService manages workspaces and join-code based invitations.
type WorkspaceService interface {
	Create(ctx context.Context, userID string, req dto.WorkspaceCreateRequest) (*dto.WorkspaceResponse, error)
	List(ctx context.Context, userID string) ([]dto.WorkspaceResponse, error)
	Get(ctx context.Context, userID, workspaceID string) (*dto.WorkspaceResponse, error)
	Info(ctx context.Context, userID, workspaceID string) (*dto.WorkspaceInfoResponse, error)
	Update(ctx context.Context, userID, workspaceID string, req dto.WorkspaceUpdateRequest) (*dto.WorkspaceResponse, error)
	Remove(ctx context.Context, userID, workspaceID string) error
	Join(ctx context.Context, userID, workspaceID string, req dto.WorkspaceJoinRequest) (*dto.WorkspaceResponse, error)
	RotateJoinCode(ctx context.Context, userID, workspaceID string) (*dto.WorkspaceResponse, error)
}

type workspaceService struct {
	workspaces repository.WorkspaceRepository
	guard      guard
	cache      *redis.Client
	cacheTTL   time.Duration
	events     EventPublisher
	log        zerolog.Logger
}

// NewWorkspaceService wires the workspace service. cache may be nil when
// redis is not configured.
func NewWorkspaceService(
	workspaces repository.WorkspaceRepository,
	members repository.MemberRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
	events EventPublisher,
	log zerolog.Logger,
) WorkspaceService {
	if events == nil {
		events = NopPublisher{}
	}
	return &workspaceService{
		workspaces: workspaces,
		guard:      guard{members: members},
		cache:      cache,
		cacheTTL:   cacheTTL,
		events:     events,
		log:        log.With().Str("component", "workspace-service").Logger(),
	}
}

func (s *workspaceService) Create(ctx context.Context, userID string, req dto.WorkspaceCreateRequest) (*dto.WorkspaceResponse, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if !validNameLength(req.Name) {
		return nil, ErrInvalidName
	}

	code, err := generateJoinCode()
	if err != nil {
		return nil, err
	}

	workspace := &models.Workspace{
		Name:        req.Name,
		OwnerUserID: userID,
		JoinCode:    code,
	}
	owner := &models.Member{
		UserID: userID,
		Role:   models.RoleAdmin,
	}
	general := &models.Channel{
		Name: defaultChannelName,
	}

	// Workspace, admin membership and the default channel land in one
	// transaction so a workspace is never visible half-built.
	if err := s.workspaces.CreateWithOwner(ctx, workspace, owner, general); err != nil {
		return nil, err
	}

	s.log.Info().Str("workspace_id", workspace.ID).Msg("workspace created")

	resp := dto.NewWorkspaceResponse(*workspace)
	return &resp, nil
}

func (s *workspaceService) List(ctx context.Context, userID string) ([]dto.WorkspaceResponse, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	memberships, err := s.guard.members.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return []dto.WorkspaceResponse{}, nil
	}

	ids := make([]string, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.WorkspaceID)
	}

	workspaces, err := s.workspaces.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.Workspace, len(workspaces))
	for _, w := range workspaces {
		byID[w.ID] = w
	}

	// Preserve membership order; skip dangling references.
	out := make([]dto.WorkspaceResponse, 0, len(memberships))
	for _, m := range memberships {
		workspace, ok := byID[m.WorkspaceID]
		if !ok {
			continue
		}
		out = append(out, dto.NewWorkspaceResponse(workspace))
	}

	return out, nil
}

func (s *workspaceService) Get(ctx context.Context, userID, workspaceID string) (*dto.WorkspaceResponse, error) {
	// Non-members cannot tell a hidden workspace from a missing one.
	_, ok, err := s.guard.resolve(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrWorkspaceNotFound
	}

	workspace, err := s.getWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	resp := dto.NewWorkspaceResponse(workspace)
	return &resp, nil
}

// Info returns the minimal view shown on a join page: the workspace name
// and whether the caller already belongs. Non-members are allowed.
func (s *workspaceService) Info(ctx context.Context, userID, workspaceID string) (*dto.WorkspaceInfoResponse, error) {
	name, cached := s.cachedName(ctx, workspaceID)
	if !cached {
		workspace, err := s.getWorkspace(ctx, workspaceID)
		if err != nil {
			return nil, err
		}
		name = workspace.Name
		s.cacheName(ctx, workspace.ID, workspace.Name)
	}

	_, isMember, err := s.guard.resolve(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}

	return &dto.WorkspaceInfoResponse{Name: name, IsMember: isMember}, nil
}

func (s *workspaceService) Update(ctx context.Context, userID, workspaceID string, req dto.WorkspaceUpdateRequest) (*dto.WorkspaceResponse, error) {
	if _, err := s.guard.requireAdmin(ctx, workspaceID, userID); err != nil {
		return nil, err
	}
	if !validNameLength(req.Name) {
		return nil, ErrInvalidName
	}

	workspace, err := s.getWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	if err := s.workspaces.UpdateName(ctx, workspaceID, req.Name); err != nil {
		return nil, err
	}
	workspace.Name = req.Name
	s.invalidateName(ctx, workspaceID)

	resp := dto.NewWorkspaceResponse(workspace)
	return &resp, nil
}

func (s *workspaceService) Remove(ctx context.Context, userID, workspaceID string) error {
	if _, err := s.guard.requireAdmin(ctx, workspaceID, userID); err != nil {
		return err
	}

	if _, err := s.getWorkspace(ctx, workspaceID); err != nil {
		return err
	}

	if err := s.workspaces.DeleteCascade(ctx, workspaceID); err != nil {
		return err
	}
	s.invalidateName(ctx, workspaceID)

	s.log.Info().Str("workspace_id", workspaceID).Msg("workspace removed")
	return nil
}

func (s *workspaceService) Join(ctx context.Context, userID, workspaceID string, req dto.WorkspaceJoinRequest) (*dto.WorkspaceResponse, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	workspace, err := s.getWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(strings.TrimSpace(req.JoinCode), workspace.JoinCode) {
		return nil, ErrInvalidJoinCode
	}

	member := &models.Member{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        models.RoleMember,
	}
	if err := s.guard.members.Create(ctx, member); err != nil {
		// The unique (workspace, user) index turns a duplicate join into
		// a conflict instead of a second membership.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyMember
		}
		return nil, err
	}

	s.events.Publish(Event{
		Type:        EventMemberChanged,
		WorkspaceID: workspaceID,
		Room:        WorkspaceRoom(workspaceID),
		Payload:     map[string]string{"memberId": member.ID, "action": "joined"},
	})

	resp := dto.NewWorkspaceResponse(workspace)
	return &resp, nil
}

func (s *workspaceService) RotateJoinCode(ctx context.Context, userID, workspaceID string) (*dto.WorkspaceResponse, error) {
	if _, err := s.guard.requireAdmin(ctx, workspaceID, userID); err != nil {
		return nil, err
	}

	workspace, err := s.getWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	code, err := generateJoinCode()
	if err != nil {
		return nil, err
	}
	if err := s.workspaces.UpdateJoinCode(ctx, workspaceID, code); err != nil {
		return nil, err
	}
	workspace.JoinCode = code

	resp := dto.NewWorkspaceResponse(workspace)
	return &resp, nil
}

func (s *workspaceService) getWorkspace(ctx context.Context, workspaceID string) (models.Workspace, error) {
	workspace, err := s.workspaces.Get(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Workspace{}, ErrWorkspaceNotFound
		}
		return models.Workspace{}, err
	}
	return workspace, nil
}

func (s *workspaceService) cachedName(ctx context.Context, workspaceID string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	name, err := s.cache.Get(ctx, workspaceNameCachePrefix+workspaceID).Result()
	if err != nil {
		return "", false
	}
	return name, true
}

func (s *workspaceService) cacheName(ctx context.Context, workspaceID, name string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, workspaceNameCachePrefix+workspaceID, name, s.cacheTTL).Err(); err != nil {
		s.log.Warn().Err(err).Msg("workspace name cache write failed")
	}
}

func (s *workspaceService) invalidateName(ctx context.Context, workspaceID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, workspaceNameCachePrefix+workspaceID).Err(); err != nil {
		s.log.Warn().Err(err).Msg("workspace name cache invalidation failed")
	}
}
