package service

import "errors"

// Failure kinds surfaced by the chat services. Handlers map these to
// HTTP statuses; everything else is treated as an internal error.
var (
	// ErrUnauthenticated indicates no identity could be resolved for the request.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotMember indicates the caller is not a member of the workspace.
	ErrNotMember = errors.New("not a member of this workspace")
	// ErrForbidden indicates the caller's role does not permit the operation.
	ErrForbidden = errors.New("insufficient permissions")

	// ErrWorkspaceNotFound indicates the referenced workspace does not exist.
	ErrWorkspaceNotFound = errors.New("workspace not found")
	// ErrChannelNotFound indicates the referenced channel does not exist.
	ErrChannelNotFound = errors.New("channel not found")
	// ErrMemberNotFound indicates the referenced member does not exist.
	ErrMemberNotFound = errors.New("member not found")
	// ErrMessageNotFound indicates the referenced message does not exist.
	ErrMessageNotFound = errors.New("message not found")
	// ErrConversationNotFound indicates the referenced conversation does not exist.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrInvalidJoinCode indicates the submitted join code does not match.
	ErrInvalidJoinCode = errors.New("invalid join code")
	// ErrAlreadyMember indicates the caller already belongs to the workspace.
	ErrAlreadyMember = errors.New("already a member of this workspace")
	// ErrInvalidName indicates a workspace or channel name outside 3-20 characters.
	ErrInvalidName = errors.New("name must be between 3 and 20 characters")
	// ErrLastAdmin indicates the operation would leave the workspace without an admin.
	ErrLastAdmin = errors.New("workspace must keep at least one admin")
	// ErrEmptyBody indicates a message body that is empty after sanitization.
	ErrEmptyBody = errors.New("message body must not be empty")
	// ErrInvalidContainer indicates a message without exactly one container.
	ErrInvalidContainer = errors.New("message requires exactly one of channel or conversation")
	// ErrInvalidCursor indicates an unparseable pagination cursor.
	ErrInvalidCursor = errors.New("invalid pagination cursor")
)
