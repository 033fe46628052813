package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/slate-hq/slate-api/internal/dto"
	"github.com/slate-hq/slate-api/internal/models"
	"github.com/slate-hq/slate-api/internal/observability"
	"github.com/slate-hq/slate-api/internal/repository"
)

// ReactionService toggles emoji reactions on messages. Toggling the same
// value twice returns the message to its prior state.
type ReactionService interface {
	Toggle(ctx context.Context, userID string, req dto.ReactionToggleRequest) (*dto.ReactionToggleResponse, error)
}

type reactionService struct {
	reactions repository.ReactionRepository
	messages  repository.MessageRepository
	guard     guard
	events    EventPublisher
	validate  *validator.Validate
	tracer    trace.Tracer
	log       zerolog.Logger
}

func NewReactionService(
	reactions repository.ReactionRepository,
	messages repository.MessageRepository,
	members repository.MemberRepository,
	events EventPublisher,
	log zerolog.Logger,
) ReactionService {
	if events == nil {
		events = NopPublisher{}
	}
	return &reactionService{
		reactions: reactions,
		messages:  messages,
		guard:     guard{members: members},
		events:    events,
		validate:  validator.New(),
		tracer:    otel.Tracer("reaction-service"),
		log:       log.With().Str("component", "reaction-service").Logger(),
	}
}

func (s *reactionService) Toggle(ctx context.Context, userID string, req dto.ReactionToggleRequest) (*dto.ReactionToggleResponse, error) {
	ctx, span := s.tracer.Start(ctx, "reaction.toggle")
	defer span.End()

	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	message, err := s.messages.Get(ctx, req.MessageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}

	member, err := s.guard.requireMember(ctx, message.WorkspaceID, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.reactions.Find(ctx, req.MessageID, member.ID, req.Value)
	if err == nil {
		if err := s.reactions.Delete(ctx, existing.ID); err != nil {
			return nil, err
		}
		observability.ReactionsToggled().WithLabelValues("removed").Inc()
		s.publishToggle(message, member.ID, req.Value, false)
		return &dto.ReactionToggleResponse{ID: existing.ID, Added: false}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	reaction := &models.Reaction{
		WorkspaceID: message.WorkspaceID,
		MessageID:   req.MessageID,
		MemberID:    member.ID,
		Value:       req.Value,
	}
	if err := s.reactions.Create(ctx, reaction); err != nil {
		// A concurrent toggle can land the row first. The unique index
		// reports it; treat the race as the removal half of the toggle.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			raced, findErr := s.reactions.Find(ctx, req.MessageID, member.ID, req.Value)
			if findErr != nil {
				return nil, findErr
			}
			if err := s.reactions.Delete(ctx, raced.ID); err != nil {
				return nil, err
			}
			observability.ReactionsToggled().WithLabelValues("removed").Inc()
			s.publishToggle(message, member.ID, req.Value, false)
			return &dto.ReactionToggleResponse{ID: raced.ID, Added: false}, nil
		}
		return nil, err
	}

	observability.ReactionsToggled().WithLabelValues("added").Inc()
	s.publishToggle(message, member.ID, req.Value, true)
	return &dto.ReactionToggleResponse{ID: reaction.ID, Added: true}, nil
}

func (s *reactionService) publishToggle(message models.Message, memberID, value string, added bool) {
	s.events.Publish(Event{
		Type:        EventReactionToggled,
		WorkspaceID: message.WorkspaceID,
		Room:        roomFor(message),
		Payload: map[string]interface{}{
			"messageId": message.ID,
			"memberId":  memberID,
			"value":     value,
			"added":     added,
		},
	})
}
