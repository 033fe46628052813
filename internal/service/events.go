package service

// Event is a realtime notification fanned out to connected clients.
type Event struct {
	Type        string      `json:"type"`
	WorkspaceID string      `json:"workspaceId"`
	Room        string      `json:"room"`
	Payload     interface{} `json:"payload,omitempty"`
}

// Event types emitted by the chat services.
const (
	EventMessageCreated  = "message.created"
	EventMessageUpdated  = "message.updated"
	EventMessageDeleted  = "message.deleted"
	EventReactionToggled = "reaction.toggled"
	EventChannelChanged  = "channel.changed"
	EventMemberChanged   = "member.changed"
)

// EventPublisher delivers events to realtime subscribers. The hub implements
// it; services only see this interface.
type EventPublisher interface {
	Publish(event Event)
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}

// ChannelRoom names the realtime room for a channel's messages.
func ChannelRoom(channelID string) string {
	return "channel:" + channelID
}

// ConversationRoom names the realtime room for a direct conversation.
func ConversationRoom(conversationID string) string {
	return "conversation:" + conversationID
}

// WorkspaceRoom names the realtime room for workspace-level changes.
func WorkspaceRoom(workspaceID string) string {
	return "workspace:" + workspaceID
}
