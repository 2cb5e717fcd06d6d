package myspace

import (
	"context"
	"strings"

	"backend-numeneon/internal/db"
	"backend-numeneon/internal/shared/apperr"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var profileColumns = []string{
	"u.id", "u.username",
	"COALESCE(m.song_title, '')", "COALESCE(m.song_artist, '')",
	"COALESCE(m.mood, '" + defaultMood + "')", "COALESCE(m.custom_bio, '')",
	"COALESCE(m.theme, '" + defaultTheme + "')", "COALESCE(m.top_friends, '{}')",
}

var songColumns = []string{
	"id", "title", "artist", "duration", "preview_url", "spotify_id", "album_art", "position", "created_at",
}

const upsertProfile = "ON CONFLICT (user_id) DO UPDATE SET " +
	"song_title = EXCLUDED.song_title, song_artist = EXCLUDED.song_artist, mood = EXCLUDED.mood, " +
	"custom_bio = EXCLUDED.custom_bio, theme = EXCLUDED.theme, top_friends = EXCLUDED.top_friends, updated_at = now()"

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Get(ctx context.Context, username string) (Profile, error) {
	return s.load(ctx, sq.Eq{"u.username": username})
}

func (s *Service) Update(ctx context.Context, userID string, in UpdateInput) (Profile, error) {
	p, err := s.load(ctx, sq.Eq{"u.id": userID})
	if err != nil {
		return Profile{}, err
	}
	if err := in.apply(&p); err != nil {
		return Profile{}, err
	}

	query, args, err := db.SqBuilder.
		Insert("myspace_profiles").
		Columns("user_id", "song_title", "song_artist", "mood", "custom_bio", "theme", "top_friends").
		Values(userID, p.SongTitle, p.SongArtist, p.Mood, p.CustomBio, p.Theme, p.TopFriends).
		Suffix(upsertProfile).
		ToSql()
	if err != nil {
		return Profile{}, db.ErrBadQuery
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return Profile{}, apperr.FromDB(err, "profile")
	}
	return p, nil
}

// AddSong appends a song to the end of the caller's playlist.
func (s *Service) AddSong(ctx context.Context, userID string, in SongInput) (Song, error) {
	song := Song{
		ID:         uuid.NewString(),
		Title:      strings.TrimSpace(in.Title),
		Artist:     strings.TrimSpace(in.Artist),
		Duration:   strings.TrimSpace(in.Duration),
		PreviewURL: in.PreviewURL,
		SpotifyID:  in.SpotifyID,
		AlbumArt:   in.AlbumArt,
	}
	if song.Title == "" || song.Artist == "" {
		return Song{}, apperr.Invalid("title and artist are required")
	}
	if len([]rune(song.Title)) > maxSongField || len([]rune(song.Artist)) > maxSongField {
		return Song{}, apperr.Invalid("song fields must be at most %d characters", maxSongField)
	}

	query, args, err := db.SqBuilder.
		Insert("playlist_songs").
		Columns("id", "user_id", "title", "artist", "duration", "preview_url", "spotify_id", "album_art", "position").
		Values(song.ID, userID, song.Title, song.Artist, song.Duration, song.PreviewURL, song.SpotifyID, song.AlbumArt,
			sq.Expr("(SELECT COALESCE(MAX(position) + 1, 0) FROM playlist_songs WHERE user_id = ?)", userID)).
		Suffix("RETURNING position, created_at").
		ToSql()
	if err != nil {
		return Song{}, db.ErrBadQuery
	}
	if err := s.db.QueryRow(ctx, query, args...).Scan(&song.Position, &song.CreatedAt); err != nil {
		return Song{}, apperr.FromDB(err, "user")
	}
	return song, nil
}

func (s *Service) RemoveSong(ctx context.Context, userID, songID string) error {
	query, args, err := db.SqBuilder.
		Delete("playlist_songs").
		Where(sq.Eq{"id": songID, "user_id": userID}).
		ToSql()
	if err != nil {
		return db.ErrBadQuery
	}
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("song not found")
	}
	return nil
}

// Reorder rewrites playlist positions to follow songIDs, which must name
// every song in the playlist exactly once. The playlist rows stay locked
// until every position is written.
func (s *Service) Reorder(ctx context.Context, userID string, songIDs []string) ([]Song, error) {
	if len(songIDs) == 0 {
		return nil, apperr.Invalid("song_ids is required")
	}

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		current, err := lockSongIDs(ctx, tx, userID)
		if err != nil {
			return err
		}
		if len(current) != len(songIDs) {
			return apperr.Invalid("song_ids must list every playlist song exactly once")
		}
		for _, id := range songIDs {
			if !current[id] {
				return apperr.Invalid("song_ids must list every playlist song exactly once")
			}
			delete(current, id)
		}

		for i, id := range songIDs {
			query, args, err := db.SqBuilder.
				Update("playlist_songs").
				Set("position", i).
				Where(sq.Eq{"id": id, "user_id": userID}).
				ToSql()
			if err != nil {
				return db.ErrBadQuery
			}
			if _, err := tx.Exec(ctx, query, args...); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.songs(ctx, userID)
}

func (s *Service) load(ctx context.Context, where sq.Eq) (Profile, error) {
	query, args, err := db.SqBuilder.
		Select(profileColumns...).
		From("users u").
		LeftJoin("myspace_profiles m ON m.user_id = u.id").
		Where(where).
		ToSql()
	if err != nil {
		return Profile{}, db.ErrBadQuery
	}

	var p Profile
	err = s.db.QueryRow(ctx, query, args...).
		Scan(&p.UserID, &p.Username, &p.SongTitle, &p.SongArtist, &p.Mood, &p.CustomBio, &p.Theme, &p.TopFriends)
	if err != nil {
		return Profile{}, apperr.FromDB(err, "user")
	}
	if p.TopFriends == nil {
		p.TopFriends = []string{}
	}

	p.Playlist, err = s.songs(ctx, p.UserID)
	if err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (s *Service) songs(ctx context.Context, userID string) ([]Song, error) {
	query, args, err := db.SqBuilder.
		Select(songColumns...).
		From("playlist_songs").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("position ASC", "created_at ASC").
		ToSql()
	if err != nil {
		return nil, db.ErrBadQuery
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	songs := []Song{}
	for rows.Next() {
		var song Song
		if err := rows.Scan(&song.ID, &song.Title, &song.Artist, &song.Duration, &song.PreviewURL,
			&song.SpotifyID, &song.AlbumArt, &song.Position, &song.CreatedAt); err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	return songs, rows.Err()
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

func lockSongIDs(ctx context.Context, tx pgx.Tx, userID string) (map[string]bool, error) {
	query, args, err := db.SqBuilder.
		Select("id").
		From("playlist_songs").
		Where(sq.Eq{"user_id": userID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, db.ErrBadQuery
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}
