package myspace

import (
	"context"
	"errors"
	"testing"
	"time"

	"backend-numeneon/internal/shared/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
)

const (
	selectProfileSQL = `FROM users u LEFT JOIN myspace_profiles m ON m.user_id = u.id WHERE `
	selectSongsSQL   = `SELECT id, title, artist, duration, preview_url, spotify_id, album_art, position, created_at FROM playlist_songs WHERE user_id = \$1 ORDER BY position ASC, created_at ASC`
)

var (
	profileCols = []string{"id", "username", "song_title", "song_artist", "mood", "custom_bio", "theme", "top_friends"}
	songCols    = []string{"id", "title", "artist", "duration", "preview_url", "spotify_id", "album_art", "position", "created_at"}
	fixedNow    = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	errDB       = errors.New("db down")
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func defaultProfileRow(userID, username string) *pgxmock.Rows {
	return pgxmock.NewRows(profileCols).AddRow(userID, username, "", "", defaultMood, "", defaultTheme, []string{})
}

func expectSongs(mock pgxmock.PgxPoolIface, userID string, ids ...string) {
	rows := pgxmock.NewRows(songCols)
	for i, id := range ids {
		rows.AddRow(id, "title "+id, "artist", "3:30", "", "", "", i, fixedNow)
	}
	mock.ExpectQuery(selectSongsSQL).WithArgs(userID).WillReturnRows(rows)
}

func ptr[T any](v T) *T { return &v }

func TestGetDefaults(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(selectProfileSQL + `u.username = \$1`).
		WithArgs("ana").
		WillReturnRows(defaultProfileRow("user-1", "ana"))
	expectSongs(mock, "user-1")

	p, err := NewService(mock).Get(context.Background(), "ana")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Mood != "chillin" || p.Theme != "classic" {
		t.Fatalf("expected defaults, got %+v", p)
	}
	if p.Playlist == nil || p.TopFriends == nil {
		t.Fatalf("expected non-nil lists")
	}
}

func TestGetWithPlaylist(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(selectProfileSQL + `u.username = \$1`).
		WithArgs("ana").
		WillReturnRows(pgxmock.NewRows(profileCols).
			AddRow("user-1", "ana", "Mr. Brightside", "The Killers", "rockin", "hi", "emo", []string{"user-2"}))
	expectSongs(mock, "user-1", "s1", "s2")

	p, err := NewService(mock).Get(context.Background(), "ana")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(p.Playlist) != 2 || p.Playlist[1].ID != "s2" || p.TopFriends[0] != "user-2" {
		t.Fatalf("unexpected profile %+v", p)
	}
}

func TestGetUnknownUser(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(selectProfileSQL).WithArgs("ghost").WillReturnError(pgx.ErrNoRows)

	if _, err := NewService(mock).Get(context.Background(), "ghost"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateMergesFields(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(selectProfileSQL + `u.id = \$1`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows(profileCols).
			AddRow("user-1", "ana", "old song", "old artist", "tired", "bio", "classic", []string{}))
	expectSongs(mock, "user-1", "s1")
	mock.ExpectExec(`INSERT INTO myspace_profiles .* ON CONFLICT \(user_id\) DO UPDATE`).
		WithArgs("user-1", "old song", "old artist", "hyped", "bio", "starry", []string{"user-2", "user-3"}).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	p, err := NewService(mock).Update(context.Background(), "user-1", UpdateInput{
		Mood:       ptr("hyped"),
		Theme:      ptr("starry"),
		TopFriends: &[]string{"user-2", "user-3"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if p.Mood != "hyped" || p.SongTitle != "old song" || len(p.Playlist) != 1 {
		t.Fatalf("unexpected profile %+v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateValidation(t *testing.T) {
	cases := map[string]UpdateInput{
		"theme":     {Theme: ptr("neon")},
		"mood":      {Mood: ptr("sleepy")},
		"too many":  {TopFriends: &[]string{"a", "b", "c", "d", "e", "f", "g", "h", "i"}},
		"duplicate": {TopFriends: &[]string{"user-2", "user-2"}},
		"self":      {TopFriends: &[]string{"user-1"}},
		"long bio":  {CustomBio: ptr(string(make([]rune, maxCustomBio+1)))},
	}
	for name, in := range cases {
		mock := newMock(t)
		mock.ExpectQuery(selectProfileSQL).WithArgs("user-1").WillReturnRows(defaultProfileRow("user-1", "ana"))
		expectSongs(mock, "user-1")

		if _, err := NewService(mock).Update(context.Background(), "user-1", in); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Fatalf("%s: expected invalid input, got %v", name, err)
		}
	}
}

func TestAddSongAppends(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO playlist_songs .* \(SELECT COALESCE\(MAX\(position\) \+ 1, 0\) FROM playlist_songs WHERE user_id = \$9\) RETURNING position, created_at`).
		WithArgs(pgxmock.AnyArg(), "user-1", "Mr. Brightside", "The Killers", "3:42", "", "", "", "user-1").
		WillReturnRows(pgxmock.NewRows([]string{"position", "created_at"}).AddRow(3, fixedNow))

	song, err := NewService(mock).AddSong(context.Background(), "user-1", SongInput{
		Title: " Mr. Brightside ", Artist: "The Killers", Duration: "3:42",
	})
	if err != nil {
		t.Fatalf("add song: %v", err)
	}
	if song.ID == "" || song.Position != 3 || song.Title != "Mr. Brightside" {
		t.Fatalf("unexpected song %+v", song)
	}
}

func TestAddSongRequiresTitleAndArtist(t *testing.T) {
	if _, err := NewService(newMock(t)).AddSong(context.Background(), "user-1", SongInput{Title: "x"}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestRemoveSong(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`DELETE FROM playlist_songs WHERE id = \$1 AND user_id = \$2`).
		WithArgs("s1", "user-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM playlist_songs`).
		WithArgs("s9", "user-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	svc := NewService(mock)
	if err := svc.RemoveSong(context.Background(), "user-1", "s1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := svc.RemoveSong(context.Background(), "user-1", "s9"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func expectLock(mock pgxmock.PgxPoolIface, userID string, ids ...string) {
	rows := pgxmock.NewRows([]string{"id"})
	for _, id := range ids {
		rows.AddRow(id)
	}
	mock.ExpectQuery(`SELECT id FROM playlist_songs WHERE user_id = \$1 FOR UPDATE`).WithArgs(userID).WillReturnRows(rows)
}

func TestReorder(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	expectLock(mock, "user-1", "s1", "s2", "s3")
	for i, id := range []string{"s3", "s1", "s2"} {
		mock.ExpectExec(`UPDATE playlist_songs SET position = \$1 WHERE id = \$2 AND user_id = \$3`).
			WithArgs(i, id, "user-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	}
	mock.ExpectCommit()
	expectSongs(mock, "user-1", "s3", "s1", "s2")

	songs, err := NewService(mock).Reorder(context.Background(), "user-1", []string{"s3", "s1", "s2"})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if len(songs) != 3 || songs[0].ID != "s3" || songs[0].Position != 0 {
		t.Fatalf("unexpected playlist %+v", songs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReorderRejectsPartialList(t *testing.T) {
	cases := map[string][]string{
		"missing":   {"s1"},
		"foreign":   {"s1", "s9"},
		"duplicate": {"s1", "s1"},
	}
	for name, ids := range cases {
		mock := newMock(t)
		mock.ExpectBegin()
		expectLock(mock, "user-1", "s1", "s2")
		mock.ExpectRollback()

		if _, err := NewService(mock).Reorder(context.Background(), "user-1", ids); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Fatalf("%s: expected invalid input, got %v", name, err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("%s: unmet expectations: %v", name, err)
		}
	}
}

func TestReorderRollsBackOnWriteError(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	expectLock(mock, "user-1", "s1", "s2")
	mock.ExpectExec(`UPDATE playlist_songs`).WithArgs(0, "s2", "user-1").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE playlist_songs`).WithArgs(1, "s1", "user-1").WillReturnError(errDB)
	mock.ExpectRollback()

	if _, err := NewService(mock).Reorder(context.Background(), "user-1", []string{"s2", "s1"}); !errors.Is(err, errDB) {
		t.Fatalf("expected db error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReorderEmpty(t *testing.T) {
	if _, err := NewService(newMock(t)).Reorder(context.Background(), "user-1", nil); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
