package posts

import (
	"context"
	"strings"
	"time"

	"backend-numeneon/internal/db"
	"backend-numeneon/internal/river"
	"backend-numeneon/internal/shared/apperr"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var postColumns = []string{
	"p.id", "p.user_id", "u.username", "u.first_name", "u.last_name", "u.avatar_url",
	"p.type", "p.content", "p.media_url", "COALESCE(p.parent_id::text, '')",
	"p.likes_count", "p.replies_count", "p.shares_count", "p.created_at",
}

type Service struct {
	db    db.Querier
	cache *RiverCache
	opts  Options
}

func NewService(db db.Querier, cache *RiverCache, opts Options) *Service {
	if opts.MaxPerRow <= 0 {
		opts.MaxPerRow = river.MaxPerRow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{db: db, cache: cache, opts: opts}
}

// Invalidate drops every cached river. Friendship changes call it too, since
// they change whose posts a feed contains.
func (s *Service) Invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx)
}

func (s *Service) Create(ctx context.Context, authorID string, in CreateInput) (Post, error) {
	content, mediaURL := strings.TrimSpace(in.Content), strings.TrimSpace(in.MediaURL)
	if content == "" && mediaURL == "" {
		return Post{}, apperr.Invalid("content or media_url required")
	}

	id := uuid.NewString()
	query, args, err := db.SqBuilder.
		Insert("posts").
		Columns("id", "user_id", "type", "content", "media_url").
		Values(id, authorID, string(river.ParseCategory(in.Type)), content, mediaURL).
		ToSql()
	if err != nil {
		return Post{}, db.ErrBadQuery
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return Post{}, err
	}

	s.Invalidate(ctx)
	return s.Get(ctx, id, authorID)
}

func (s *Service) CreateReply(ctx context.Context, parentID, authorID string, in CreateInput) (Post, error) {
	content, mediaURL := strings.TrimSpace(in.Content), strings.TrimSpace(in.MediaURL)
	if content == "" && mediaURL == "" {
		return Post{}, apperr.Invalid("content or media_url required")
	}

	id := uuid.NewString()
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		query, args, err := db.SqBuilder.
			Select("type", "parent_id IS NOT NULL").
			From("posts").
			Where(sq.Eq{"id": parentID}).
			Suffix("FOR UPDATE").
			ToSql()
		if err != nil {
			return db.ErrBadQuery
		}
		var (
			category string
			isReply  bool
		)
		if err := tx.QueryRow(ctx, query, args...).Scan(&category, &isReply); err != nil {
			return apperr.FromDB(err, "post")
		}
		if isReply {
			return apperr.Invalid("cannot reply to a reply")
		}

		query, args, err = db.SqBuilder.
			Insert("posts").
			Columns("id", "user_id", "parent_id", "type", "content", "media_url").
			Values(id, authorID, parentID, category, content, mediaURL).
			ToSql()
		if err != nil {
			return db.ErrBadQuery
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return err
		}

		query, args, err = db.SqBuilder.
			Update("posts").
			Set("replies_count", sq.Expr("replies_count + 1")).
			Where(sq.Eq{"id": parentID}).
			ToSql()
		if err != nil {
			return db.ErrBadQuery
		}
		_, err = tx.Exec(ctx, query, args...)
		return err
	})
	if err != nil {
		return Post{}, err
	}

	s.Invalidate(ctx)
	return s.Get(ctx, id, authorID)
}

func (s *Service) Get(ctx context.Context, id, viewerID string) (Post, error) {
	query, args, err := s.selectPosts(viewerID).
		Where(sq.Eq{"p.id": id}).
		ToSql()
	if err != nil {
		return Post{}, db.ErrBadQuery
	}
	post, err := scanPost(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		return Post{}, apperr.FromDB(err, "post")
	}
	return post, nil
}

// List returns top-level posts, newest first. A non-empty username narrows
// it to that user's profile.
func (s *Service) List(ctx context.Context, viewerID, username string) ([]Post, error) {
	builder := s.selectPosts(viewerID).
		Where(sq.Eq{"p.parent_id": nil})
	if username != "" {
		builder = builder.Where(sq.Eq{"u.username": username})
	}
	return s.queryPosts(ctx, s.limit(builder.OrderBy("p.created_at DESC")))
}

// Replies returns a post's replies, oldest first.
func (s *Service) Replies(ctx context.Context, id, viewerID string) ([]Post, error) {
	return s.queryPosts(ctx, s.selectPosts(viewerID).
		Where(sq.Eq{"p.parent_id": id}).
		OrderBy("p.created_at ASC"))
}

// FeedPosts returns the user's own and accepted friends' top-level posts,
// newest first.
func (s *Service) FeedPosts(ctx context.Context, userID string) ([]Post, error) {
	builder := s.selectPosts(userID).
		Where(sq.Eq{"p.parent_id": nil}).
		Where(sq.Or{
			sq.Eq{"p.user_id": userID},
			sq.Expr(`p.user_id IN (
				SELECT CASE WHEN f.requester_id = ? THEN f.addressee_id ELSE f.requester_id END
				FROM friendships f
				WHERE f.status = 'accepted' AND (f.requester_id = ? OR f.addressee_id = ?))`, userID, userID, userID),
		}).
		OrderBy("p.created_at DESC")
	return s.queryPosts(ctx, s.limit(builder))
}

// River groups the user's feed into author rivers.
func (s *Service) River(ctx context.Context, userID string) ([]river.AuthorRiver, error) {
	return s.buildRiver(ctx, "feed:"+userID, func() ([]Post, error) {
		return s.FeedPosts(ctx, userID)
	})
}

// ProfileRiver groups one user's posts as seen by viewerID.
func (s *Service) ProfileRiver(ctx context.Context, viewerID, username string) ([]river.AuthorRiver, error) {
	return s.buildRiver(ctx, "profile:"+username+":"+viewerID, func() ([]Post, error) {
		return s.List(ctx, viewerID, username)
	})
}

func (s *Service) Update(ctx context.Context, id, authorID string, in UpdateInput) (Post, error) {
	if in.Content == nil && in.MediaURL == nil {
		return Post{}, apperr.Invalid("nothing to update")
	}
	owner, _, err := ownerOf(ctx, s.db, id)
	if err != nil {
		return Post{}, err
	}
	if owner != authorID {
		return Post{}, apperr.Forbidden("only the author can edit this post")
	}

	builder := db.SqBuilder.Update("posts").Set("updated_at", sq.Expr("now()"))
	if in.Content != nil {
		builder = builder.Set("content", strings.TrimSpace(*in.Content))
	}
	if in.MediaURL != nil {
		builder = builder.Set("media_url", strings.TrimSpace(*in.MediaURL))
	}
	query, args, err := builder.Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return Post{}, db.ErrBadQuery
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return Post{}, err
	}

	s.Invalidate(ctx)
	return s.Get(ctx, id, authorID)
}

func (s *Service) Delete(ctx context.Context, id, authorID string) error {
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		owner, parentID, err := ownerOf(ctx, tx, id)
		if err != nil {
			return err
		}
		if owner != authorID {
			return apperr.Forbidden("only the author can delete this post")
		}

		query, args, err := db.SqBuilder.Delete("posts").Where(sq.Eq{"id": id}).ToSql()
		if err != nil {
			return db.ErrBadQuery
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return err
		}
		if parentID == "" {
			return nil
		}

		query, args, err = db.SqBuilder.
			Update("posts").
			Set("replies_count", sq.Expr("GREATEST(replies_count - 1, 0)")).
			Where(sq.Eq{"id": parentID}).
			ToSql()
		if err != nil {
			return db.ErrBadQuery
		}
		_, err = tx.Exec(ctx, query, args...)
		return err
	})
	if err != nil {
		return err
	}

	s.Invalidate(ctx)
	return nil
}

// ToggleLike likes the post, or unlikes it when the user already did.
func (s *Service) ToggleLike(ctx context.Context, id, userID string) (LikeResult, error) {
	var res LikeResult
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		query, args, err := db.SqBuilder.
			Select("1").From("posts").Where(sq.Eq{"id": id}).Suffix("FOR UPDATE").
			ToSql()
		if err != nil {
			return db.ErrBadQuery
		}
		var one int
		if err := tx.QueryRow(ctx, query, args...).Scan(&one); err != nil {
			return apperr.FromDB(err, "post")
		}

		query, args, err = db.SqBuilder.
			Delete("post_likes").
			Where(sq.Eq{"post_id": id, "user_id": userID}).
			ToSql()
		if err != nil {
			return db.ErrBadQuery
		}
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			query, args, err = db.SqBuilder.
				Insert("post_likes").Columns("post_id", "user_id").Values(id, userID).
				ToSql()
			if err != nil {
				return db.ErrBadQuery
			}
			if _, err := tx.Exec(ctx, query, args...); err != nil {
				return err
			}
			res.Liked = true
		}

		query, args, err = db.SqBuilder.
			Update("posts").
			Set("likes_count", sq.Expr("(SELECT count(*) FROM post_likes WHERE post_id = ?)", id)).
			Where(sq.Eq{"id": id}).
			Suffix("RETURNING likes_count").
			ToSql()
		if err != nil {
			return db.ErrBadQuery
		}
		return tx.QueryRow(ctx, query, args...).Scan(&res.LikesCount)
	})
	if err != nil {
		return LikeResult{}, err
	}

	s.Invalidate(ctx)
	return res, nil
}

func (s *Service) Share(ctx context.Context, id string) (int, error) {
	query, args, err := db.SqBuilder.
		Update("posts").
		Set("shares_count", sq.Expr("shares_count + 1")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING shares_count").
		ToSql()
	if err != nil {
		return 0, db.ErrBadQuery
	}
	var shares int
	if err := s.db.QueryRow(ctx, query, args...).Scan(&shares); err != nil {
		return 0, apperr.FromDB(err, "post")
	}

	s.Invalidate(ctx)
	return shares, nil
}

func (s *Service) buildRiver(ctx context.Context, scope string, load func() ([]Post, error)) ([]river.AuthorRiver, error) {
	key := s.cache.Key(ctx, scope)
	if rivers, ok := s.cache.Get(ctx, key); ok {
		return rivers, nil
	}
	posts, err := load()
	if err != nil {
		return nil, err
	}
	rivers := river.Build(posts, river.Options{MaxPerRow: s.opts.MaxPerRow, Now: s.opts.Now()})
	s.cache.Set(ctx, key, rivers)
	return rivers, nil
}

func (s *Service) selectPosts(viewerID string) sq.SelectBuilder {
	return db.SqBuilder.
		Select(postColumns...).
		Column(sq.Expr("EXISTS (SELECT 1 FROM post_likes l WHERE l.post_id = p.id AND l.user_id = ?)", viewerID)).
		From("posts p").
		Join("users u ON u.id = p.user_id")
}

func (s *Service) limit(b sq.SelectBuilder) sq.SelectBuilder {
	if s.opts.FeedLimit > 0 {
		return b.Limit(s.opts.FeedLimit)
	}
	return b
}

func (s *Service) queryPosts(ctx context.Context, b sq.SelectBuilder) ([]Post, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, db.ErrBadQuery
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (s *Service) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func ownerOf(ctx context.Context, q rowQuerier, id string) (string, string, error) {
	query, args, err := db.SqBuilder.
		Select("user_id", "COALESCE(parent_id::text, '')").
		From("posts").
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return "", "", db.ErrBadQuery
	}
	var owner, parentID string
	if err := q.QueryRow(ctx, query, args...).Scan(&owner, &parentID); err != nil {
		return "", "", apperr.FromDB(err, "post")
	}
	return owner, parentID, nil
}

func scanPost(row pgx.Row) (Post, error) {
	var (
		p         Post
		author    river.AuthorRecord
		category  string
		createdAt time.Time
	)
	err := row.Scan(
		&p.ID, &p.UserID, &author.Username, &author.FirstName, &author.LastName, &author.Avatar,
		&category, &p.Content, &p.MediaURL, &p.ParentID,
		&p.LikesCount, &p.RepliesCount, &p.SharesCount, &createdAt, &p.IsLiked,
	)
	if err != nil {
		return Post{}, err
	}
	author.ID = p.UserID
	p.Author = river.StructuredAuthor(author)
	p.Category = river.Category(category)
	p.CreatedAt = river.At(createdAt)
	return p, nil
}
