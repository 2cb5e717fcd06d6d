package messages

import (
	"cmp"
	"slices"
)

// BuildConversations folds userID's messages into one entry per counterpart,
// most recently active first. Messages userID sent to themselves are skipped.
func BuildConversations(userID string, msgs []Message) []Conversation {
	byUser := map[string]*Conversation{}
	for _, m := range msgs {
		other := m.SenderID
		if other == userID {
			other = m.ReceiverID
		}
		if other == userID {
			continue
		}

		conv, ok := byUser[other]
		if !ok {
			conv = &Conversation{UserID: other, LastMessage: m}
			byUser[other] = conv
		} else if !m.CreatedAt.Before(conv.LastMessage.CreatedAt) {
			conv.LastMessage = m
		}
		if m.ReceiverID == userID && !m.IsRead {
			conv.UnreadCount++
		}
	}

	out := make([]Conversation, 0, len(byUser))
	for _, conv := range byUser {
		out = append(out, *conv)
	}
	slices.SortFunc(out, func(a, b Conversation) int {
		if c := b.LastMessage.CreatedAt.Compare(a.LastMessage.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	return out
}
