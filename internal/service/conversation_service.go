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

// ConversationService manages one-to-one conversations inside a workspace.
type ConversationService interface {
	// CreateOrGet returns the conversation between the caller and another
	// member, creating it on first contact. The pair is unordered: either
	// side asking gets the same conversation.
	CreateOrGet(ctx context.Context, userID string, req dto.ConversationCreateRequest) (*dto.ConversationResponse, error)
	Get(ctx context.Context, userID, conversationID string) (*dto.ConversationResponse, error)
}

type conversationService struct {
	conversations repository.ConversationRepository
	guard         guard
	log           zerolog.Logger
}

func NewConversationService(
	conversations repository.ConversationRepository,
	members repository.MemberRepository,
	log zerolog.Logger,
) ConversationService {
	return &conversationService{
		conversations: conversations,
		guard:         guard{members: members},
		log:           log.With().Str("component", "conversation-service").Logger(),
	}
}

func (s *conversationService) CreateOrGet(ctx context.Context, userID string, req dto.ConversationCreateRequest) (*dto.ConversationResponse, error) {
	caller, err := s.guard.requireMember(ctx, req.WorkspaceID, userID)
	if err != nil {
		return nil, err
	}

	other, err := s.guard.members.Get(ctx, req.MemberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	if other.WorkspaceID != req.WorkspaceID {
		return nil, ErrMemberNotFound
	}

	existing, err := s.conversations.FindByMembers(ctx, req.WorkspaceID, caller.ID, other.ID)
	if err == nil {
		resp := dto.NewConversationResponse(existing)
		return &resp, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conversation := &models.Conversation{
		WorkspaceID: req.WorkspaceID,
		MemberOneID: caller.ID,
		MemberTwoID: other.ID,
	}
	if err := s.conversations.Create(ctx, conversation); err != nil {
		return nil, err
	}

	s.log.Info().Str("conversation_id", conversation.ID).Msg("conversation created")

	resp := dto.NewConversationResponse(*conversation)
	return &resp, nil
}

func (s *conversationService) Get(ctx context.Context, userID, conversationID string) (*dto.ConversationResponse, error) {
	conversation, err := s.conversations.Get(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	caller, err := s.guard.requireMember(ctx, conversation.WorkspaceID, userID)
	if err != nil {
		return nil, err
	}
	if caller.ID != conversation.MemberOneID && caller.ID != conversation.MemberTwoID {
		return nil, ErrConversationNotFound
	}

	resp := dto.NewConversationResponse(conversation)
	return &resp, nil
}
