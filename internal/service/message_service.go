package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/slate-hq/slate-api/internal/dto"
	"github.com/slate-hq/slate-api/internal/models"
	"github.com/slate-hq/slate-api/internal/observability"
	"github.com/slate-hq/slate-api/internal/repository"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 99
)

// MessageService manages message creation, editing, and the enriched
// paginated listings that back the channel, conversation and thread views.
type MessageService interface {
	Create(ctx context.Context, userID string, req dto.MessageCreateRequest) (*dto.MessageResponse, error)
	Get(ctx context.Context, userID, messageID string) (*dto.MessageResponse, error)
	Update(ctx context.Context, userID, messageID string, req dto.MessageUpdateRequest) (*dto.MessageResponse, error)
	Remove(ctx context.Context, userID, messageID string) error
	List(ctx context.Context, userID string, query dto.MessageListQuery) (*dto.MessagePageResponse, error)
}

type messageService struct {
	messages      repository.MessageRepository
	reactions     repository.ReactionRepository
	channels      repository.ChannelRepository
	conversations repository.ConversationRepository
	users         repository.UserRepository
	guard         guard
	events        EventPublisher
	validate      *validator.Validate
	sanitizer     *bluemonday.Policy
	tracer        trace.Tracer
	log           zerolog.Logger
}

func NewMessageService(
	messages repository.MessageRepository,
	reactions repository.ReactionRepository,
	channels repository.ChannelRepository,
	conversations repository.ConversationRepository,
	members repository.MemberRepository,
	users repository.UserRepository,
	events EventPublisher,
	log zerolog.Logger,
) MessageService {
	if events == nil {
		events = NopPublisher{}
	}
	return &messageService{
		messages:      messages,
		reactions:     reactions,
		channels:      channels,
		conversations: conversations,
		users:         users,
		guard:         guard{members: members},
		events:        events,
		validate:      validator.New(),
		sanitizer:     bluemonday.UGCPolicy().AllowElements("br"),
		tracer:        otel.Tracer("message-service"),
		log:           log.With().Str("component", "message-service").Logger(),
	}
}

func (s *messageService) Create(ctx context.Context, userID string, req dto.MessageCreateRequest) (*dto.MessageResponse, error) {
	ctx, span := s.tracer.Start(ctx, "message.create")
	defer span.End()

	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	member, err := s.guard.requireMember(ctx, req.WorkspaceID, userID)
	if err != nil {
		return nil, err
	}

	body := strings.TrimSpace(s.sanitizer.Sanitize(req.Body))
	if body == "" {
		return nil, ErrEmptyBody
	}

	message := models.Message{
		Body:        body,
		Image:       req.Image,
		MemberID:    member.ID,
		WorkspaceID: req.WorkspaceID,
	}

	var container string
	if req.ParentMessageID != "" {
		// Replies inherit the parent's container; threads stay one
		// level deep.
		parent, err := s.messages.Get(ctx, req.ParentMessageID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrMessageNotFound
			}
			return nil, err
		}
		if parent.ParentMessageID != nil || parent.WorkspaceID != req.WorkspaceID {
			return nil, ErrMessageNotFound
		}
		if parent.ConversationID != nil {
			participant, err := s.conversationParticipant(ctx, member, *parent.ConversationID)
			if err != nil {
				return nil, err
			}
			if !participant {
				return nil, ErrMessageNotFound
			}
		}
		parentID := parent.ID
		message.ParentMessageID = &parentID
		message.ChannelID = parent.ChannelID
		message.ConversationID = parent.ConversationID
		container = "thread"
	} else {
		switch {
		case req.ChannelID != "" && req.ConversationID == "":
			channel, err := s.channels.Get(ctx, req.ChannelID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrChannelNotFound
				}
				return nil, err
			}
			if channel.WorkspaceID != req.WorkspaceID {
				return nil, ErrChannelNotFound
			}
			channelID := channel.ID
			message.ChannelID = &channelID
			container = "channel"
		case req.ConversationID != "" && req.ChannelID == "":
			conversation, err := s.conversations.Get(ctx, req.ConversationID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrConversationNotFound
				}
				return nil, err
			}
			if conversation.WorkspaceID != req.WorkspaceID {
				return nil, ErrConversationNotFound
			}
			if member.ID != conversation.MemberOneID && member.ID != conversation.MemberTwoID {
				return nil, ErrConversationNotFound
			}
			conversationID := conversation.ID
			message.ConversationID = &conversationID
			container = "conversation"
		default:
			return nil, ErrInvalidContainer
		}
	}

	if err := s.messages.Create(ctx, &message); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("message.container", container))
	observability.MessagesSent().WithLabelValues(container).Inc()

	resp, err := s.enrichOne(ctx, message)
	if err != nil {
		return nil, err
	}

	s.events.Publish(Event{
		Type:        EventMessageCreated,
		WorkspaceID: message.WorkspaceID,
		Room:        roomFor(message),
		Payload:     resp,
	})

	return resp, nil
}

func (s *messageService) Get(ctx context.Context, userID, messageID string) (*dto.MessageResponse, error) {
	message, err := s.getMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	member, err := s.guard.requireMember(ctx, message.WorkspaceID, userID)
	if err != nil {
		return nil, err
	}
	// Direct messages stay between their two participants; everyone else
	// cannot tell they exist.
	if message.ConversationID != nil {
		participant, err := s.conversationParticipant(ctx, member, *message.ConversationID)
		if err != nil {
			return nil, err
		}
		if !participant {
			return nil, ErrMessageNotFound
		}
	}
	return s.enrichOne(ctx, message)
}

func (s *messageService) Update(ctx context.Context, userID, messageID string, req dto.MessageUpdateRequest) (*dto.MessageResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	message, err := s.getMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAuthorOrAdmin(ctx, message, userID); err != nil {
		return nil, err
	}

	body := strings.TrimSpace(s.sanitizer.Sanitize(req.Body))
	if body == "" {
		return nil, ErrEmptyBody
	}

	if err := s.messages.UpdateBody(ctx, messageID, body); err != nil {
		return nil, err
	}
	message.Body = body

	resp, err := s.enrichOne(ctx, message)
	if err != nil {
		return nil, err
	}

	s.events.Publish(Event{
		Type:        EventMessageUpdated,
		WorkspaceID: message.WorkspaceID,
		Room:        roomFor(message),
		Payload:     resp,
	})

	return resp, nil
}

func (s *messageService) Remove(ctx context.Context, userID, messageID string) error {
	message, err := s.getMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if err := s.requireAuthorOrAdmin(ctx, message, userID); err != nil {
		return err
	}

	if err := s.messages.DeleteWithReactions(ctx, messageID); err != nil {
		return err
	}

	s.events.Publish(Event{
		Type:        EventMessageDeleted,
		WorkspaceID: message.WorkspaceID,
		Room:        roomFor(message),
		Payload:     map[string]string{"messageId": messageID},
	})

	return nil
}

func (s *messageService) List(ctx context.Context, userID string, query dto.MessageListQuery) (*dto.MessagePageResponse, error) {
	ctx, span := s.tracer.Start(ctx, "message.list")
	defer span.End()

	filter, allowed, err := s.resolveContainer(ctx, userID, query)
	if err != nil {
		return nil, err
	}
	// A non-member gets an empty, finished page instead of an error.
	if !allowed {
		return &dto.MessagePageResponse{Page: []dto.MessageResponse{}, IsDone: true}, nil
	}

	var cursor repository.MessageCursor
	if query.Cursor != "" {
		cursor, err = decodeCursor(query.Cursor)
		if err != nil {
			return nil, err
		}
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	// Fetch one extra row to learn whether another page exists.
	rows, err := s.messages.ListPage(ctx, filter, cursor, limit+1)
	if err != nil {
		return nil, err
	}

	isDone := len(rows) <= limit
	if !isDone {
		rows = rows[:limit]
	}

	includeThreads := filter.ParentMessageID == ""
	page, err := s.enrich(ctx, rows, includeThreads)
	if err != nil {
		return nil, err
	}

	resp := &dto.MessagePageResponse{Page: page, IsDone: isDone}
	if !isDone && len(rows) > 0 {
		last := rows[len(rows)-1]
		resp.ContinueCursor = encodeCursor(repository.MessageCursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	span.SetAttributes(attribute.Int("message.page_size", len(page)))
	return resp, nil
}

// resolveContainer validates the listing query and checks the caller can
// read the selected container. allowed=false means the caller is not a
// member (or not a conversation participant) and should see an empty page.
func (s *messageService) resolveContainer(ctx context.Context, userID string, query dto.MessageListQuery) (repository.MessageFilter, bool, error) {
	set := 0
	for _, v := range []string{query.ChannelID, query.ConversationID, query.ParentMessageID} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return repository.MessageFilter{}, false, ErrInvalidContainer
	}

	switch {
	case query.ChannelID != "":
		channel, err := s.channels.Get(ctx, query.ChannelID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.MessageFilter{}, false, ErrChannelNotFound
			}
			return repository.MessageFilter{}, false, err
		}
		_, ok, err := s.guard.resolve(ctx, channel.WorkspaceID, userID)
		if err != nil {
			return repository.MessageFilter{}, false, err
		}
		return repository.MessageFilter{ChannelID: channel.ID}, ok, nil

	case query.ConversationID != "":
		conversation, err := s.conversations.Get(ctx, query.ConversationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.MessageFilter{}, false, ErrConversationNotFound
			}
			return repository.MessageFilter{}, false, err
		}
		member, ok, err := s.guard.resolve(ctx, conversation.WorkspaceID, userID)
		if err != nil {
			return repository.MessageFilter{}, false, err
		}
		participant := ok && (member.ID == conversation.MemberOneID || member.ID == conversation.MemberTwoID)
		return repository.MessageFilter{ConversationID: conversation.ID}, participant, nil

	default:
		parent, err := s.messages.Get(ctx, query.ParentMessageID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.MessageFilter{}, false, ErrMessageNotFound
			}
			return repository.MessageFilter{}, false, err
		}
		member, ok, err := s.guard.resolve(ctx, parent.WorkspaceID, userID)
		if err != nil {
			return repository.MessageFilter{}, false, err
		}
		// Threads under a direct message inherit its participant rule.
		if ok && parent.ConversationID != nil {
			ok, err = s.conversationParticipant(ctx, member, *parent.ConversationID)
			if err != nil {
				return repository.MessageFilter{}, false, err
			}
		}
		return repository.MessageFilter{ParentMessageID: parent.ID}, ok, nil
	}
}

func (s *messageService) conversationParticipant(ctx context.Context, member models.Member, conversationID string) (bool, error) {
	conversation, err := s.conversations.Get(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return member.ID == conversation.MemberOneID || member.ID == conversation.MemberTwoID, nil
}

func (s *messageService) requireAuthorOrAdmin(ctx context.Context, message models.Message, userID string) error {
	caller, err := s.guard.requireMember(ctx, message.WorkspaceID, userID)
	if err != nil {
		return err
	}
	if caller.ID != message.MemberID && !caller.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func (s *messageService) getMessage(ctx context.Context, messageID string) (models.Message, error) {
	message, err := s.messages.Get(ctx, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Message{}, ErrMessageNotFound
		}
		return models.Message{}, err
	}
	return message, nil
}

func (s *messageService) enrichOne(ctx context.Context, message models.Message) (*dto.MessageResponse, error) {
	page, err := s.enrich(ctx, []models.Message{message}, message.ParentMessageID == nil)
	if err != nil {
		return nil, err
	}
	if len(page) == 0 {
		return nil, ErrMessageNotFound
	}
	return &page[0], nil
}

// enrich joins a batch of messages with their authors, grouped reactions
// and thread summaries. Messages whose author cannot be resolved are
// dropped, mirroring how removed members disappear from history views.
func (s *messageService) enrich(ctx context.Context, messages []models.Message, includeThreads bool) ([]dto.MessageResponse, error) {
	if len(messages) == 0 {
		return []dto.MessageResponse{}, nil
	}

	messageIDs := make([]string, 0, len(messages))
	for _, m := range messages {
		messageIDs = append(messageIDs, m.ID)
	}

	reactions, err := s.reactions.ListForMessages(ctx, messageIDs)
	if err != nil {
		return nil, err
	}
	reactionsByMessage := make(map[string][]models.Reaction)
	for _, r := range reactions {
		reactionsByMessage[r.MessageID] = append(reactionsByMessage[r.MessageID], r)
	}

	repliesByMessage := make(map[string][]models.Message)
	memberIDSet := make(map[string]struct{})
	for _, m := range messages {
		memberIDSet[m.MemberID] = struct{}{}
	}
	if includeThreads {
		for _, m := range messages {
			replies, err := s.messages.ListReplies(ctx, m.ID)
			if err != nil {
				return nil, err
			}
			if len(replies) > 0 {
				repliesByMessage[m.ID] = replies
				for _, reply := range replies {
					memberIDSet[reply.MemberID] = struct{}{}
				}
			}
		}
	}

	memberIDs := make([]string, 0, len(memberIDSet))
	for id := range memberIDSet {
		memberIDs = append(memberIDs, id)
	}
	members, err := s.guard.members.ListByIDs(ctx, memberIDs)
	if err != nil {
		return nil, err
	}
	membersByID := make(map[string]models.Member, len(members))
	userIDs := make([]string, 0, len(members))
	for _, m := range members {
		membersByID[m.ID] = m
		userIDs = append(userIDs, m.UserID)
	}
	users, err := s.users.ListByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	usersByID := make(map[string]models.User, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}

	// memberUsers maps a member ID straight to its user profile for
	// thread summaries.
	memberUsers := make(map[string]*models.User, len(members))
	for _, m := range members {
		if u, ok := usersByID[m.UserID]; ok {
			user := u
			memberUsers[m.ID] = &user
		}
	}

	out := make([]dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		member, ok := membersByID[m.MemberID]
		if !ok {
			continue
		}
		user, ok := usersByID[member.UserID]
		if !ok {
			continue
		}

		resp := dto.NewMessageResponse(m)
		resp.Author = dto.NewMemberResponse(member, user)
		if groups := groupReactions(reactionsByMessage[m.ID]); groups != nil {
			resp.Reactions = groups
		}
		if includeThreads {
			resp.Thread = summarizeThread(repliesByMessage[m.ID], memberUsers)
		}
		out = append(out, resp)
	}

	return out, nil
}

// roomFor picks the realtime room a message event belongs to.
func roomFor(message models.Message) string {
	switch {
	case message.ChannelID != nil:
		return ChannelRoom(*message.ChannelID)
	case message.ConversationID != nil:
		return ConversationRoom(*message.ConversationID)
	default:
		return WorkspaceRoom(message.WorkspaceID)
	}
}
