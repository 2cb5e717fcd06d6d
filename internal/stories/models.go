package stories

import (
	"time"

	"backend-numeneon/internal/stream"
)

type Author struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`
}

type Story struct {
	ID         string    `json:"id"`
	User       Author    `json:"user"`
	MediaURL   string    `json:"media_url"`
	Caption    string    `json:"caption"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	Viewed     bool      `json:"viewed"`
	ViewsCount int       `json:"views_count"`
}

// AuthorStories is one author's ring in the stories bar.
type AuthorStories struct {
	User        Author  `json:"user"`
	Stories     []Story `json:"stories"`
	HasUnviewed bool    `json:"has_unviewed"`
}

type CreateInput struct {
	MediaURL string `json:"media_url"`
	Caption  string `json:"caption"`
}

type Reaction struct {
	StoryID string `json:"story_id"`
	UserID  string `json:"user_id"`
	Emoji   string `json:"emoji"`
}

type Options struct {
	TTL time.Duration
	Now func() time.Time
}

type Publisher interface {
	Publish(userID string, ev stream.Event)
}
