package dto

import (
	"time"

	"github.com/slate-hq/slate-api/internal/models"
)

// ChannelCreateRequest describes the payload for creating a channel.
// Name length is validated against the raw input; normalization happens
// in the service afterwards.
type ChannelCreateRequest struct {
	WorkspaceID string `json:"workspace_id" validate:"required"`
	Name        string `json:"name" validate:"required,min=3,max=20"`
}

// ChannelUpdateRequest describes the payload for renaming a channel.
type ChannelUpdateRequest struct {
	Name string `json:"name" validate:"required,min=3,max=20"`
}

// ChannelResponse is the serialized channel returned to API clients.
type ChannelResponse struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewChannelResponse converts a model into a DTO.
func NewChannelResponse(model models.Channel) ChannelResponse {
	return ChannelResponse{
		ID:          model.ID,
		WorkspaceID: model.WorkspaceID,
		Name:        model.Name,
		CreatedAt:   model.CreatedAt,
	}
}

// NewChannelResponseSlice converts a slice of models into DTOs.
func NewChannelResponseSlice(channels []models.Channel) []ChannelResponse {
	responses := make([]ChannelResponse, 0, len(channels))
	for _, channel := range channels {
		responses = append(responses, NewChannelResponse(channel))
	}

	return responses
}
