package messages

import (
	"time"

	"backend-numeneon/internal/stream"
)

type Message struct {
	ID           string    `json:"id"`
	SenderID     string    `json:"sender_id"`
	ReceiverID   string    `json:"receiver_id"`
	Content      string    `json:"content"`
	ReplyToStory string    `json:"reply_to_story,omitempty"`
	IsRead       bool      `json:"is_read"`
	CreatedAt    time.Time `json:"created_at"`
}

type SendInput struct {
	ReceiverID   string `json:"receiver_id"`
	Content      string `json:"content"`
	ReplyToStory string `json:"reply_to_story"`
}

type Participant struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`
}

// Conversation summarizes the thread between the caller and one other user.
type Conversation struct {
	UserID      string       `json:"user_id"`
	User        *Participant `json:"user,omitempty"`
	LastMessage Message      `json:"last_message"`
	UnreadCount int          `json:"unread_count"`
}

type Publisher interface {
	Publish(userID string, ev stream.Event)
}
