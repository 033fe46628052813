package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/slate-hq/slate-api/internal/dto"
	"github.com/slate-hq/slate-api/internal/models"
	"github.com/slate-hq/slate-api/internal/repository"
)

// ChannelService manages channels within a workspace. Creation and
// mutation are admin-only; listing degrades to empty for non-members.
type ChannelService interface {
	Create(ctx context.Context, userID string, req dto.ChannelCreateRequest) (*dto.ChannelResponse, error)
	List(ctx context.Context, userID, workspaceID string) ([]dto.ChannelResponse, error)
	Get(ctx context.Context, userID, channelID string) (*dto.ChannelResponse, error)
	Update(ctx context.Context, userID, channelID string, req dto.ChannelUpdateRequest) (*dto.ChannelResponse, error)
	Remove(ctx context.Context, userID, channelID string) error
}

type channelService struct {
	channels repository.ChannelRepository
	guard    guard
	events   EventPublisher
	log      zerolog.Logger
}

func NewChannelService(
	channels repository.ChannelRepository,
	members repository.MemberRepository,
	events EventPublisher,
	log zerolog.Logger,
) ChannelService {
	if events == nil {
		events = NopPublisher{}
	}
	return &channelService{
		channels: channels,
		guard:    guard{members: members},
		events:   events,
		log:      log.With().Str("component", "channel-service").Logger(),
	}
}

func (s *channelService) Create(ctx context.Context, userID string, req dto.ChannelCreateRequest) (*dto.ChannelResponse, error) {
	if _, err := s.guard.requireAdmin(ctx, req.WorkspaceID, userID); err != nil {
		return nil, err
	}
	// Length is checked against the raw name, before whitespace collapses
	// into hyphens.
	if !validNameLength(req.Name) {
		return nil, ErrInvalidName
	}

	channel := &models.Channel{
		WorkspaceID: req.WorkspaceID,
		Name:        normalizeChannelName(req.Name),
	}
	if err := s.channels.Create(ctx, channel); err != nil {
		return nil, err
	}

	s.publishChange(req.WorkspaceID, channel.ID, "created")

	resp := dto.NewChannelResponse(*channel)
	return &resp, nil
}

func (s *channelService) List(ctx context.Context, userID, workspaceID string) ([]dto.ChannelResponse, error) {
	_, ok, err := s.guard.resolve(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	// Non-members see an empty list rather than an error, so a stale
	// client does not surface a scary failure after removal.
	if !ok {
		return []dto.ChannelResponse{}, nil
	}

	channels, err := s.channels.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	return dto.NewChannelResponseSlice(channels), nil
}

func (s *channelService) Get(ctx context.Context, userID, channelID string) (*dto.ChannelResponse, error) {
	channel, err := s.getChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}

	_, ok, err := s.guard.resolve(ctx, channel.WorkspaceID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrChannelNotFound
	}

	resp := dto.NewChannelResponse(channel)
	return &resp, nil
}

func (s *channelService) Update(ctx context.Context, userID, channelID string, req dto.ChannelUpdateRequest) (*dto.ChannelResponse, error) {
	channel, err := s.getChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.requireAdmin(ctx, channel.WorkspaceID, userID); err != nil {
		return nil, err
	}
	if !validNameLength(req.Name) {
		return nil, ErrInvalidName
	}

	name := normalizeChannelName(req.Name)
	if err := s.channels.UpdateName(ctx, channelID, name); err != nil {
		return nil, err
	}
	channel.Name = name

	s.publishChange(channel.WorkspaceID, channelID, "updated")

	resp := dto.NewChannelResponse(channel)
	return &resp, nil
}

func (s *channelService) Remove(ctx context.Context, userID, channelID string) error {
	channel, err := s.getChannel(ctx, channelID)
	if err != nil {
		return err
	}
	if _, err := s.guard.requireAdmin(ctx, channel.WorkspaceID, userID); err != nil {
		return err
	}

	if err := s.channels.DeleteWithMessages(ctx, channelID); err != nil {
		return err
	}

	s.publishChange(channel.WorkspaceID, channelID, "deleted")
	s.log.Info().Str("channel_id", channelID).Msg("channel removed")
	return nil
}

func (s *channelService) getChannel(ctx context.Context, channelID string) (models.Channel, error) {
	channel, err := s.channels.Get(ctx, channelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Channel{}, ErrChannelNotFound
		}
		return models.Channel{}, err
	}
	return channel, nil
}

func (s *channelService) publishChange(workspaceID, channelID, action string) {
	s.events.Publish(Event{
		Type:        EventChannelChanged,
		WorkspaceID: workspaceID,
		Room:        WorkspaceRoom(workspaceID),
		Payload:     map[string]string{"channelId": channelID, "action": action},
	})
}
