package friends

import (
	"context"
	"time"

	"backend-numeneon/internal/stream"
)

const (
	statusPending  = "pending"
	statusAccepted = "accepted"
)

type Friend struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Avatar    string    `json:"avatar"`
	Since     time.Time `json:"since"`
}

type Request struct {
	ID          string    `json:"id"`
	RequesterID string    `json:"requester_id"`
	AddresseeID string    `json:"addressee_id"`
	Status      string    `json:"status"`
	From        *Friend   `json:"from_user,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Publisher delivers realtime events to a user's open sockets.
type Publisher interface {
	Publish(userID string, ev stream.Event)
}

// FeedInvalidator drops cached rivers after the friend graph changes.
type FeedInvalidator interface {
	Invalidate(ctx context.Context)
}
