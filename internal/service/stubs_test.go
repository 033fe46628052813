package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/slate-hq/slate-api/internal/models"
	"github.com/slate-hq/slate-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *capturePublisher) Publish(event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *capturePublisher) last() (Event, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return Event{}, false
	}
	return p.events[len(p.events)-1], true
}

// The memory repositories below mirror the persistence semantics the
// services rely on: insertion order, unique indexes reported as
// gorm.ErrDuplicatedKey, and gorm.ErrRecordNotFound for misses.

type memoryMemberRepo struct {
	seq     int
	members []models.Member
}

func (m *memoryMemberRepo) nextID() string {
	m.seq++
	return fmt.Sprintf("member-%d", m.seq)
}

func (m *memoryMemberRepo) Create(_ context.Context, member *models.Member) error {
	for _, existing := range m.members {
		if existing.WorkspaceID == member.WorkspaceID && existing.UserID == member.UserID {
			return gorm.ErrDuplicatedKey
		}
	}
	if member.ID == "" {
		member.ID = m.nextID()
	}
	if member.CreatedAt.IsZero() {
		member.CreatedAt = time.Now()
	}
	m.members = append(m.members, *member)
	return nil
}

func (m *memoryMemberRepo) Get(_ context.Context, id string) (models.Member, error) {
	for _, member := range m.members {
		if member.ID == id {
			return member, nil
		}
	}
	return models.Member{}, gorm.ErrRecordNotFound
}

func (m *memoryMemberRepo) GetByWorkspaceAndUser(_ context.Context, workspaceID, userID string) (models.Member, error) {
	for _, member := range m.members {
		if member.WorkspaceID == workspaceID && member.UserID == userID {
			return member, nil
		}
	}
	return models.Member{}, gorm.ErrRecordNotFound
}

func (m *memoryMemberRepo) ListByWorkspace(_ context.Context, workspaceID string) ([]models.Member, error) {
	var out []models.Member
	for _, member := range m.members {
		if member.WorkspaceID == workspaceID {
			out = append(out, member)
		}
	}
	return out, nil
}

func (m *memoryMemberRepo) ListByUser(_ context.Context, userID string) ([]models.Member, error) {
	var out []models.Member
	for _, member := range m.members {
		if member.UserID == userID {
			out = append(out, member)
		}
	}
	return out, nil
}

func (m *memoryMemberRepo) ListByIDs(_ context.Context, ids []string) ([]models.Member, error) {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	var out []models.Member
	for _, member := range m.members {
		if _, ok := wanted[member.ID]; ok {
			out = append(out, member)
		}
	}
	return out, nil
}

func (m *memoryMemberRepo) UpdateRole(_ context.Context, id, role string) error {
	for i := range m.members {
		if m.members[i].ID == id {
			m.members[i].Role = role
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memoryMemberRepo) CountAdmins(_ context.Context, workspaceID string) (int64, error) {
	var count int64
	for _, member := range m.members {
		if member.WorkspaceID == workspaceID && member.Role == models.RoleAdmin {
			count++
		}
	}
	return count, nil
}

func (m *memoryMemberRepo) Purge(_ context.Context, id string) error {
	for i := range m.members {
		if m.members[i].ID == id {
			m.members = append(m.members[:i], m.members[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type memoryWorkspaceRepo struct {
	seq        int
	workspaces []models.Workspace
	members    *memoryMemberRepo
	channels   *memoryChannelRepo
}

func (m *memoryWorkspaceRepo) nextID() string {
	m.seq++
	return fmt.Sprintf("workspace-%d", m.seq)
}

func (m *memoryWorkspaceRepo) Create(_ context.Context, workspace *models.Workspace) error {
	if workspace.ID == "" {
		workspace.ID = m.nextID()
	}
	workspace.CreatedAt = time.Now()
	m.workspaces = append(m.workspaces, *workspace)
	return nil
}

func (m *memoryWorkspaceRepo) Get(_ context.Context, id string) (models.Workspace, error) {
	for _, workspace := range m.workspaces {
		if workspace.ID == id {
			return workspace, nil
		}
	}
	return models.Workspace{}, gorm.ErrRecordNotFound
}

func (m *memoryWorkspaceRepo) ListByIDs(_ context.Context, ids []string) ([]models.Workspace, error) {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	var out []models.Workspace
	for _, workspace := range m.workspaces {
		if _, ok := wanted[workspace.ID]; ok {
			out = append(out, workspace)
		}
	}
	return out, nil
}

func (m *memoryWorkspaceRepo) UpdateName(_ context.Context, id, name string) error {
	for i := range m.workspaces {
		if m.workspaces[i].ID == id {
			m.workspaces[i].Name = name
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memoryWorkspaceRepo) UpdateJoinCode(_ context.Context, id, code string) error {
	for i := range m.workspaces {
		if m.workspaces[i].ID == id {
			m.workspaces[i].JoinCode = code
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memoryWorkspaceRepo) DeleteCascade(_ context.Context, id string) error {
	for i := range m.workspaces {
		if m.workspaces[i].ID == id {
			m.workspaces = append(m.workspaces[:i], m.workspaces[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memoryWorkspaceRepo) CreateWithOwner(ctx context.Context, workspace *models.Workspace, owner *models.Member, defaultChannel *models.Channel) error {
	if err := m.Create(ctx, workspace); err != nil {
		return err
	}
	owner.WorkspaceID = workspace.ID
	if m.members != nil {
		if err := m.members.Create(ctx, owner); err != nil {
			return err
		}
	}
	defaultChannel.WorkspaceID = workspace.ID
	if m.channels != nil {
		if err := m.channels.Create(ctx, defaultChannel); err != nil {
			return err
		}
	}
	return nil
}

type memoryChannelRepo struct {
	seq      int
	channels []models.Channel
}

func (m *memoryChannelRepo) Create(_ context.Context, channel *models.Channel) error {
	if channel.ID == "" {
		m.seq++
		channel.ID = fmt.Sprintf("channel-%d", m.seq)
	}
	channel.CreatedAt = time.Now()
	m.channels = append(m.channels, *channel)
	return nil
}

func (m *memoryChannelRepo) Get(_ context.Context, id string) (models.Channel, error) {
	for _, channel := range m.channels {
		if channel.ID == id {
			return channel, nil
		}
	}
	return models.Channel{}, gorm.ErrRecordNotFound
}

func (m *memoryChannelRepo) ListByWorkspace(_ context.Context, workspaceID string) ([]models.Channel, error) {
	var out []models.Channel
	for _, channel := range m.channels {
		if channel.WorkspaceID == workspaceID {
			out = append(out, channel)
		}
	}
	return out, nil
}

func (m *memoryChannelRepo) UpdateName(_ context.Context, id, name string) error {
	for i := range m.channels {
		if m.channels[i].ID == id {
			m.channels[i].Name = name
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memoryChannelRepo) DeleteWithMessages(_ context.Context, id string) error {
	for i := range m.channels {
		if m.channels[i].ID == id {
			m.channels = append(m.channels[:i], m.channels[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type memoryConversationRepo struct {
	seq           int
	conversations []models.Conversation
}

func (m *memoryConversationRepo) Create(_ context.Context, conversation *models.Conversation) error {
	if conversation.ID == "" {
		m.seq++
		conversation.ID = fmt.Sprintf("conversation-%d", m.seq)
	}
	conversation.CreatedAt = time.Now()
	m.conversations = append(m.conversations, *conversation)
	return nil
}

func (m *memoryConversationRepo) Get(_ context.Context, id string) (models.Conversation, error) {
	for _, conversation := range m.conversations {
		if conversation.ID == id {
			return conversation, nil
		}
	}
	return models.Conversation{}, gorm.ErrRecordNotFound
}

func (m *memoryConversationRepo) FindByMembers(_ context.Context, workspaceID, memberA, memberB string) (models.Conversation, error) {
	for _, conversation := range m.conversations {
		if conversation.WorkspaceID != workspaceID {
			continue
		}
		straight := conversation.MemberOneID == memberA && conversation.MemberTwoID == memberB
		flipped := conversation.MemberOneID == memberB && conversation.MemberTwoID == memberA
		if straight || flipped {
			return conversation, nil
		}
	}
	return models.Conversation{}, gorm.ErrRecordNotFound
}

type memoryMessageRepo struct {
	seq      int
	messages []models.Message
}

func (m *memoryMessageRepo) Create(_ context.Context, message *models.Message) error {
	if message.ID == "" {
		m.seq++
		message.ID = fmt.Sprintf("message-%02d", m.seq)
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	message.UpdatedAt = message.CreatedAt
	m.messages = append(m.messages, *message)
	return nil
}

func (m *memoryMessageRepo) Get(_ context.Context, id string) (models.Message, error) {
	for _, message := range m.messages {
		if message.ID == id {
			return message, nil
		}
	}
	return models.Message{}, gorm.ErrRecordNotFound
}

func (m *memoryMessageRepo) UpdateBody(_ context.Context, id, body string) error {
	for i := range m.messages {
		if m.messages[i].ID == id {
			m.messages[i].Body = body
			m.messages[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memoryMessageRepo) DeleteWithReactions(_ context.Context, id string) error {
	for i := range m.messages {
		if m.messages[i].ID == id {
			m.messages = append(m.messages[:i], m.messages[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memoryMessageRepo) ListPage(_ context.Context, filter repository.MessageFilter, cursor repository.MessageCursor, limit int) ([]models.Message, error) {
	var matched []models.Message
	for _, message := range m.messages {
		switch {
		case filter.ParentMessageID != "":
			if message.ParentMessageID == nil || *message.ParentMessageID != filter.ParentMessageID {
				continue
			}
		case filter.ChannelID != "":
			if message.ChannelID == nil || *message.ChannelID != filter.ChannelID || message.ParentMessageID != nil {
				continue
			}
		case filter.ConversationID != "":
			if message.ConversationID == nil || *message.ConversationID != filter.ConversationID || message.ParentMessageID != nil {
				continue
			}
		}
		if !cursor.IsZero() {
			if message.CreatedAt.After(cursor.CreatedAt) {
				continue
			}
			if message.CreatedAt.Equal(cursor.CreatedAt) && message.ID >= cursor.ID {
				continue
			}
		}
		matched = append(matched, message)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return strings.Compare(matched[i].ID, matched[j].ID) > 0
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (m *memoryMessageRepo) ListReplies(_ context.Context, parentMessageID string) ([]models.Message, error) {
	var replies []models.Message
	for _, message := range m.messages {
		if message.ParentMessageID != nil && *message.ParentMessageID == parentMessageID {
			replies = append(replies, message)
		}
	}
	sort.Slice(replies, func(i, j int) bool {
		if !replies[i].CreatedAt.Equal(replies[j].CreatedAt) {
			return replies[i].CreatedAt.Before(replies[j].CreatedAt)
		}
		return replies[i].ID < replies[j].ID
	})
	return replies, nil
}

type memoryReactionRepo struct {
	seq       int
	reactions []models.Reaction

	// failNextFind makes the next Find miss, so Toggle takes the
	// Create path and hits the unique index on an existing row.
	failNextFind bool
}

func (m *memoryReactionRepo) Create(_ context.Context, reaction *models.Reaction) error {
	for _, existing := range m.reactions {
		if existing.MessageID == reaction.MessageID && existing.MemberID == reaction.MemberID && existing.Value == reaction.Value {
			return gorm.ErrDuplicatedKey
		}
	}
	if reaction.ID == "" {
		m.seq++
		reaction.ID = fmt.Sprintf("reaction-%d", m.seq)
	}
	reaction.CreatedAt = time.Now()
	m.reactions = append(m.reactions, *reaction)
	return nil
}

func (m *memoryReactionRepo) Find(_ context.Context, messageID, memberID, value string) (models.Reaction, error) {
	if m.failNextFind {
		m.failNextFind = false
		return models.Reaction{}, gorm.ErrRecordNotFound
	}
	for _, reaction := range m.reactions {
		if reaction.MessageID == messageID && reaction.MemberID == memberID && reaction.Value == value {
			return reaction, nil
		}
	}
	return models.Reaction{}, gorm.ErrRecordNotFound
}

func (m *memoryReactionRepo) Delete(_ context.Context, id string) error {
	for i := range m.reactions {
		if m.reactions[i].ID == id {
			m.reactions = append(m.reactions[:i], m.reactions[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memoryReactionRepo) ListForMessages(_ context.Context, messageIDs []string) ([]models.Reaction, error) {
	wanted := make(map[string]struct{}, len(messageIDs))
	for _, id := range messageIDs {
		wanted[id] = struct{}{}
	}
	var out []models.Reaction
	for _, reaction := range m.reactions {
		if _, ok := wanted[reaction.MessageID]; ok {
			out = append(out, reaction)
		}
	}
	return out, nil
}

type memoryUserRepo struct {
	users []models.User
}

func (m *memoryUserRepo) Get(_ context.Context, id string) (models.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (m *memoryUserRepo) ListByIDs(_ context.Context, ids []string) ([]models.User, error) {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	var out []models.User
	for _, user := range m.users {
		if _, ok := wanted[user.ID]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

func (m *memoryUserRepo) Upsert(_ context.Context, user *models.User) error {
	for i := range m.users {
		if m.users[i].ID == user.ID {
			m.users[i] = *user
			return nil
		}
	}
	m.users = append(m.users, *user)
	return nil
}
