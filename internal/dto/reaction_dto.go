package dto

// ReactionToggleRequest toggles one emoji reaction by the caller on one
// message.
type ReactionToggleRequest struct {
	MessageID string `json:"message_id" validate:"required"`
	Value     string `json:"value" validate:"required,max=64"`
}

// ReactionToggleResponse reports the affected reaction row and whether
// the toggle added it (true) or removed it (false).
type ReactionToggleResponse struct {
	ID    string `json:"id"`
	Added bool   `json:"added"`
}

// UploadResponse carries the opaque attachment reference produced by a
// successful image upload.
type UploadResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}
