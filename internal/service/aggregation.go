package service

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/slate-hq/slate-api/internal/dto"
	"github.com/slate-hq/slate-api/internal/models"
	"github.com/slate-hq/slate-api/internal/repository"
)

// groupReactions folds raw reaction rows into per-value groups, preserving
// first-seen order so the client renders reactions stably.
func groupReactions(reactions []models.Reaction) []dto.ReactionGroup {
	if len(reactions) == 0 {
		return nil
	}

	index := make(map[string]int, len(reactions))
	groups := make([]dto.ReactionGroup, 0, len(reactions))

	for _, r := range reactions {
		i, ok := index[r.Value]
		if !ok {
			index[r.Value] = len(groups)
			groups = append(groups, dto.ReactionGroup{Value: r.Value})
			i = len(groups) - 1
		}
		groups[i].Count++
		groups[i].MemberIDs = append(groups[i].MemberIDs, r.MemberID)
	}

	return groups
}

// summarizeThread condenses a message's replies into the preview the
// message list renders: reply count, the first replier's avatar, the most
// recent replier's name and the last reply timestamp.
func summarizeThread(replies []models.Message, memberUsers map[string]*models.User) *dto.ThreadSummary {
	if len(replies) == 0 {
		return nil
	}

	summary := &dto.ThreadSummary{Count: len(replies)}

	if user, ok := memberUsers[replies[0].MemberID]; ok && user != nil {
		summary.Image = user.Image
	}

	last := replies[len(replies)-1]
	if user, ok := memberUsers[last.MemberID]; ok && user != nil {
		summary.Name = user.Name
	}
	summary.Timestamp = last.CreatedAt

	return summary
}

// encodeCursor serializes a pagination position as an opaque token.
func encodeCursor(c repository.MessageCursor) string {
	raw := fmt.Sprintf("%d|%s", c.CreatedAt.UnixNano(), c.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// decodeCursor parses a token produced by encodeCursor.
func decodeCursor(token string) (repository.MessageCursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return repository.MessageCursor{}, ErrInvalidCursor
	}

	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return repository.MessageCursor{}, ErrInvalidCursor
	}

	nanos, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return repository.MessageCursor{}, ErrInvalidCursor
	}

	return repository.MessageCursor{
		CreatedAt: time.Unix(0, nanos),
		ID:        parts[1],
	}, nil
}
