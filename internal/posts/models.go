package posts

import (
	"time"

	"backend-numeneon/internal/river"
)

// Post is the API shape of a post. It is the river pipeline's input type so
// listings can be grouped without conversion.
type Post = river.Post

type CreateInput struct {
	Type     string `json:"type"`
	Content  string `json:"content"`
	MediaURL string `json:"media_url"`
}

type UpdateInput struct {
	Content  *string `json:"content"`
	MediaURL *string `json:"media_url"`
}

type LikeResult struct {
	Liked      bool `json:"is_liked"`
	LikesCount int  `json:"likes_count"`
}

type Options struct {
	MaxPerRow int
	FeedLimit uint64
	Now       func() time.Time
}
