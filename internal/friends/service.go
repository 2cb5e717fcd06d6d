package friends

import (
	"context"
	"errors"

	"backend-numeneon/internal/db"
	"backend-numeneon/internal/shared/apperr"
	"backend-numeneon/internal/stream"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Service struct {
	db     db.Querier
	events Publisher
	feeds  FeedInvalidator
}

// NewService wires the friend graph. events and feeds may be nil.
func NewService(db db.Querier, events Publisher, feeds FeedInvalidator) *Service {
	return &Service{db: db, events: events, feeds: feeds}
}

func between(a, b string) sq.Or {
	return sq.Or{
		sq.Eq{"requester_id": a, "addressee_id": b},
		sq.Eq{"requester_id": b, "addressee_id": a},
	}
}

func (s *Service) SendRequest(ctx context.Context, fromID, toID string) (Request, error) {
	if toID == "" || fromID == toID {
		return Request{}, apperr.Invalid("cannot send a friend request to yourself")
	}

	query, args, err := db.SqBuilder.
		Select("status").
		From("friendships").
		Where(between(fromID, toID)).
		ToSql()
	if err != nil {
		return Request{}, db.ErrBadQuery
	}
	var status string
	err = s.db.QueryRow(ctx, query, args...).Scan(&status)
	switch {
	case err == nil && status == statusAccepted:
		return Request{}, apperr.Conflict("already friends")
	case err == nil:
		return Request{}, apperr.Conflict("friend request already pending")
	case !errors.Is(err, pgx.ErrNoRows):
		return Request{}, err
	}

	req := Request{
		ID:          uuid.NewString(),
		RequesterID: fromID,
		AddresseeID: toID,
		Status:      statusPending,
	}
	query, args, err = db.SqBuilder.
		Insert("friendships").
		Columns("id", "requester_id", "addressee_id", "status").
		Values(req.ID, req.RequesterID, req.AddresseeID, req.Status).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return Request{}, db.ErrBadQuery
	}
	if err := s.db.QueryRow(ctx, query, args...).Scan(&req.CreatedAt); err != nil {
		return Request{}, apperr.FromDB(err, "friend request")
	}

	s.publish(toID, "friend_request", req)
	return req, nil
}

// Pending lists requests waiting on userID, newest first.
func (s *Service) Pending(ctx context.Context, userID string) ([]Request, error) {
	query, args, err := db.SqBuilder.
		Select("f.id", "f.requester_id", "f.addressee_id", "f.status", "f.created_at",
			"u.username", "u.first_name", "u.last_name", "u.avatar_url").
		From("friendships f").
		Join("users u ON u.id = f.requester_id").
		Where(sq.Eq{"f.addressee_id": userID, "f.status": statusPending}).
		OrderBy("f.created_at DESC").
		ToSql()
	if err != nil {
		return nil, db.ErrBadQuery
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := []Request{}
	for rows.Next() {
		var (
			r    Request
			from Friend
		)
		if err := rows.Scan(&r.ID, &r.RequesterID, &r.AddresseeID, &r.Status, &r.CreatedAt,
			&from.Username, &from.FirstName, &from.LastName, &from.Avatar); err != nil {
			return nil, err
		}
		from.ID = r.RequesterID
		from.Since = r.CreatedAt
		r.From = &from
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

func (s *Service) Accept(ctx context.Context, requestID, userID string) error {
	req, err := s.pendingFor(ctx, requestID, userID)
	if err != nil {
		return err
	}

	query, args, err := db.SqBuilder.
		Update("friendships").
		Set("status", statusAccepted).
		Set("responded_at", sq.Expr("now()")).
		Where(sq.Eq{"id": requestID}).
		ToSql()
	if err != nil {
		return db.ErrBadQuery
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return err
	}

	s.invalidate(ctx)
	req.Status = statusAccepted
	s.publish(req.RequesterID, "friend_accepted", req)
	return nil
}

func (s *Service) Decline(ctx context.Context, requestID, userID string) error {
	if _, err := s.pendingFor(ctx, requestID, userID); err != nil {
		return err
	}
	query, args, err := db.SqBuilder.Delete("friendships").Where(sq.Eq{"id": requestID}).ToSql()
	if err != nil {
		return db.ErrBadQuery
	}
	_, err = s.db.Exec(ctx, query, args...)
	return err
}

// Remove ends a friendship, or withdraws a pending request, in either
// direction.
func (s *Service) Remove(ctx context.Context, userID, friendID string) error {
	query, args, err := db.SqBuilder.Delete("friendships").Where(between(userID, friendID)).ToSql()
	if err != nil {
		return db.ErrBadQuery
	}
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("friendship not found")
	}
	s.invalidate(ctx)
	return nil
}

// List returns userID's accepted friends ordered by username.
func (s *Service) List(ctx context.Context, userID string) ([]Friend, error) {
	query, args, err := db.SqBuilder.
		Select("u.id", "u.username", "u.first_name", "u.last_name", "u.avatar_url",
			"COALESCE(f.responded_at, f.created_at)").
		From("friendships f").
		Join("users u ON u.id = CASE WHEN f.requester_id = ? THEN f.addressee_id ELSE f.requester_id END", userID).
		Where(sq.Eq{"f.status": statusAccepted}).
		Where(sq.Or{sq.Eq{"f.requester_id": userID}, sq.Eq{"f.addressee_id": userID}}).
		OrderBy("u.username").
		ToSql()
	if err != nil {
		return nil, db.ErrBadQuery
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	friends := []Friend{}
	for rows.Next() {
		var f Friend
		if err := rows.Scan(&f.ID, &f.Username, &f.FirstName, &f.LastName, &f.Avatar, &f.Since); err != nil {
			return nil, err
		}
		friends = append(friends, f)
	}
	return friends, rows.Err()
}

func (s *Service) pendingFor(ctx context.Context, requestID, userID string) (Request, error) {
	query, args, err := db.SqBuilder.
		Select("id", "requester_id", "addressee_id", "status", "created_at").
		From("friendships").
		Where(sq.Eq{"id": requestID}).
		ToSql()
	if err != nil {
		return Request{}, db.ErrBadQuery
	}
	var req Request
	if err := s.db.QueryRow(ctx, query, args...).
		Scan(&req.ID, &req.RequesterID, &req.AddresseeID, &req.Status, &req.CreatedAt); err != nil {
		return Request{}, apperr.FromDB(err, "friend request")
	}
	if req.AddresseeID != userID {
		return Request{}, apperr.Forbidden("only the recipient can answer this request")
	}
	if req.Status != statusPending {
		return Request{}, apperr.Conflict("friend request already answered")
	}
	return req, nil
}

func (s *Service) publish(userID, kind string, data any) {
	if s.events == nil {
		return
	}
	s.events.Publish(userID, stream.Event{Type: kind, Data: data})
}

func (s *Service) invalidate(ctx context.Context) {
	if s.feeds == nil {
		return
	}
	s.feeds.Invalidate(ctx)
}
