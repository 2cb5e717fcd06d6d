package media

import (
	"context"
	"net/url"
	"path"
	"strings"
	"time"

	"backend-numeneon/internal/db"
	"backend-numeneon/internal/shared/apperr"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	KindAvatar = "avatar"
	KindMedia  = "media"

	uploadWindow = 15 * time.Minute
)

// Object is a stored upload record. ExpiresAt bounds how long the client
// may take to push the bytes to URL.
type Object struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Kind      string    `json:"kind"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FeedInvalidator drops cached rivers, which embed author avatars.
type FeedInvalidator interface {
	Invalidate(ctx context.Context)
}

type Service struct {
	db      db.Querier
	baseURL string
	feeds   FeedInvalidator
	now     func() time.Time
}

func NewService(db db.Querier, baseURL string, feeds FeedInvalidator) *Service {
	return &Service{
		db:      db,
		baseURL: strings.TrimRight(baseURL, "/"),
		feeds:   feeds,
		now:     time.Now,
	}
}

// SaveObject records an upload for userID. Avatar uploads also become the
// user's avatar.
func (s *Service) SaveObject(ctx context.Context, userID, fileName, kind string) (Object, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" {
		kind = KindMedia
	}
	if kind != KindAvatar && kind != KindMedia {
		return Object{}, apperr.Invalid("kind must be avatar or media")
	}

	obj := Object{
		ID:        uuid.NewString(),
		Kind:      kind,
		ExpiresAt: s.now().Add(uploadWindow),
	}
	obj.URL = s.objectURL(kind, obj.ID, fileName)

	query, args, err := db.SqBuilder.
		Insert("media_objects").
		Columns("id", "user_id", "url", "kind").
		Values(obj.ID, userID, obj.URL, obj.Kind).
		ToSql()
	if err != nil {
		return Object{}, db.ErrBadQuery
	}

	if kind == KindMedia {
		if _, err := s.db.Exec(ctx, query, args...); err != nil {
			return Object{}, apperr.FromDB(err, "user")
		}
		return obj, nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return Object{}, err
	}
	if err := saveAvatar(ctx, tx, query, args, userID, obj.URL); err != nil {
		_ = tx.Rollback(ctx)
		return Object{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Object{}, err
	}
	if s.feeds != nil {
		s.feeds.Invalidate(ctx)
	}
	return obj, nil
}

func saveAvatar(ctx context.Context, tx pgx.Tx, insert string, args []any, userID, avatarURL string) error {
	if _, err := tx.Exec(ctx, insert, args...); err != nil {
		return apperr.FromDB(err, "user")
	}
	return setAvatar(ctx, tx, userID, avatarURL)
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// SetAvatar points the user's avatar at avatarURL.
func (s *Service) SetAvatar(ctx context.Context, userID, avatarURL string) error {
	if err := setAvatar(ctx, s.db, userID, avatarURL); err != nil {
		return err
	}
	if s.feeds != nil {
		s.feeds.Invalidate(ctx)
	}
	return nil
}

func setAvatar(ctx context.Context, q execer, userID, avatarURL string) error {
	query, args, err := db.SqBuilder.
		Update("users").
		Set("avatar_url", avatarURL).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return db.ErrBadQuery
	}
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

func (s *Service) objectURL(kind, id, fileName string) string {
	name := path.Base(strings.TrimSpace(fileName))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	return s.baseURL + "/" + kind + "/" + id + "/" + url.PathEscape(name)
}
