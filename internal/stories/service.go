package stories

import (
	"context"
	"strings"
	"time"

	"backend-numeneon/internal/db"
	"backend-numeneon/internal/shared/apperr"
	"backend-numeneon/internal/stream"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

const defaultTTL = 24 * time.Hour

type Service struct {
	db     db.Querier
	events Publisher
	opts   Options
}

func NewService(db db.Querier, events Publisher, opts Options) *Service {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{db: db, events: events, opts: opts}
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Story, error) {
	mediaURL := strings.TrimSpace(in.MediaURL)
	if mediaURL == "" {
		return Story{}, apperr.Invalid("media_url required")
	}

	now := s.opts.Now()
	story := Story{
		ID:        uuid.NewString(),
		User:      Author{ID: userID},
		MediaURL:  mediaURL,
		Caption:   strings.TrimSpace(in.Caption),
		CreatedAt: now,
		ExpiresAt: now.Add(s.opts.TTL),
	}
	query, args, err := db.SqBuilder.
		Insert("stories").
		Columns("id", "user_id", "media_url", "caption", "created_at", "expires_at").
		Values(story.ID, userID, story.MediaURL, story.Caption, story.CreatedAt, story.ExpiresAt).
		ToSql()
	if err != nil {
		return Story{}, db.ErrBadQuery
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return Story{}, apperr.FromDB(err, "user")
	}
	return story, nil
}

// Active returns unexpired stories from userID and their friends, grouped
// per author.
func (s *Service) Active(ctx context.Context, userID string) ([]AuthorStories, error) {
	stories, err := s.query(ctx, s.selectStories(userID).
		Where(sq.Or{
			sq.Eq{"s.user_id": userID},
			sq.Expr(`s.user_id IN (
				SELECT CASE WHEN f.requester_id = ? THEN f.addressee_id ELSE f.requester_id END
				FROM friendships f
				WHERE f.status = 'accepted' AND (f.requester_id = ? OR f.addressee_id = ?))`, userID, userID, userID),
		}))
	if err != nil {
		return nil, err
	}
	return GroupByAuthor(stories), nil
}

// ByUser returns one author's unexpired stories, oldest first.
func (s *Service) ByUser(ctx context.Context, viewerID, authorID string) ([]Story, error) {
	return s.query(ctx, s.selectStories(viewerID).Where(sq.Eq{"s.user_id": authorID}))
}

func (s *Service) Delete(ctx context.Context, storyID, userID string) error {
	owner, err := s.ownerOf(ctx, storyID)
	if err != nil {
		return err
	}
	if owner != userID {
		return apperr.Forbidden("only the author can delete this story")
	}
	query, args, err := db.SqBuilder.Delete("stories").Where(sq.Eq{"id": storyID}).ToSql()
	if err != nil {
		return db.ErrBadQuery
	}
	_, err = s.db.Exec(ctx, query, args...)
	return err
}

// MarkViewed records that userID saw the story. Repeat views are ignored.
func (s *Service) MarkViewed(ctx context.Context, storyID, userID string) error {
	query, args, err := db.SqBuilder.
		Insert("story_views").
		Columns("story_id", "user_id").
		Values(storyID, userID).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return db.ErrBadQuery
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return apperr.FromDB(err, "story")
	}
	return nil
}

// React sets userID's reaction on a story, replacing any earlier one, and
// notifies the author.
func (s *Service) React(ctx context.Context, storyID, userID, emoji string) (Reaction, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return Reaction{}, apperr.Invalid("emoji required")
	}
	owner, err := s.ownerOf(ctx, storyID)
	if err != nil {
		return Reaction{}, err
	}

	query, args, err := db.SqBuilder.
		Insert("story_reactions").
		Columns("story_id", "user_id", "emoji").
		Values(storyID, userID, emoji).
		Suffix("ON CONFLICT (story_id, user_id) DO UPDATE SET emoji = EXCLUDED.emoji, created_at = now()").
		ToSql()
	if err != nil {
		return Reaction{}, db.ErrBadQuery
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return Reaction{}, err
	}

	reaction := Reaction{StoryID: storyID, UserID: userID, Emoji: emoji}
	if s.events != nil && owner != userID {
		s.events.Publish(owner, stream.Event{Type: "story_reaction", Data: reaction})
	}
	return reaction, nil
}

func (s *Service) RemoveReaction(ctx context.Context, storyID, userID string) error {
	query, args, err := db.SqBuilder.
		Delete("story_reactions").
		Where(sq.Eq{"story_id": storyID, "user_id": userID}).
		ToSql()
	if err != nil {
		return db.ErrBadQuery
	}
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("reaction not found")
	}
	return nil
}

// DeleteExpired purges stories past their expiry and reports how many were
// removed. It runs as a scheduled job.
func (s *Service) DeleteExpired(ctx context.Context) (int64, error) {
	query, args, err := db.SqBuilder.
		Delete("stories").
		Where(sq.LtOrEq{"expires_at": s.opts.Now()}).
		ToSql()
	if err != nil {
		return 0, db.ErrBadQuery
	}
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Service) selectStories(viewerID string) sq.SelectBuilder {
	return db.SqBuilder.
		Select("s.id", "s.user_id", "u.username", "u.first_name", "u.last_name", "u.avatar_url",
			"s.media_url", "s.caption", "s.created_at", "s.expires_at").
		Column(sq.Expr("EXISTS (SELECT 1 FROM story_views v WHERE v.story_id = s.id AND v.user_id = ?)", viewerID)).
		Column("(SELECT count(*) FROM story_views v WHERE v.story_id = s.id)").
		From("stories s").
		Join("users u ON u.id = s.user_id").
		Where(sq.Gt{"s.expires_at": s.opts.Now()}).
		OrderBy("s.created_at ASC")
}

func (s *Service) query(ctx context.Context, b sq.SelectBuilder) ([]Story, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, db.ErrBadQuery
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stories := []Story{}
	for rows.Next() {
		var st Story
		if err := rows.Scan(&st.ID, &st.User.ID, &st.User.Username, &st.User.FirstName, &st.User.LastName, &st.User.Avatar,
			&st.MediaURL, &st.Caption, &st.CreatedAt, &st.ExpiresAt, &st.Viewed, &st.ViewsCount); err != nil {
			return nil, err
		}
		stories = append(stories, st)
	}
	return stories, rows.Err()
}

func (s *Service) ownerOf(ctx context.Context, storyID string) (string, error) {
	query, args, err := db.SqBuilder.Select("user_id").From("stories").Where(sq.Eq{"id": storyID}).ToSql()
	if err != nil {
		return "", db.ErrBadQuery
	}
	var owner string
	if err := s.db.QueryRow(ctx, query, args...).Scan(&owner); err != nil {
		return "", apperr.FromDB(err, "story")
	}
	return owner, nil
}
