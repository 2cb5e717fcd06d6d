package myspace

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func newTestApp(mock pgxmock.PgxPoolIface) *fiber.App {
	app := fiber.New()
	authMiddleware := func(c *fiber.Ctx) error {
		c.Locals("user_id", "user-1")
		return c.Next()
	}
	noLimit := func(c *fiber.Ctx) error { return c.Next() }
	RegisterRoutes(app.Group("/myspace"), NewService(mock), authMiddleware, noLimit)
	return app
}

func jsonRequest(method, target string, body any) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestGetHandler(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(selectProfileSQL).WithArgs("ana").WillReturnRows(defaultProfileRow("user-2", "ana"))
	expectSongs(mock, "user-2", "s1")

	resp, err := newTestApp(mock).Test(httptest.NewRequest(http.MethodGet, "/myspace/ana", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("get status: %v", err)
	}
	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil || p.Username != "ana" || len(p.Playlist) != 1 {
		t.Fatalf("unexpected profile %+v", p)
	}
}

func TestUpdateHandlerInvalidTheme(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(selectProfileSQL).WithArgs("user-1").WillReturnRows(defaultProfileRow("user-1", "me"))
	expectSongs(mock, "user-1")

	resp, err := newTestApp(mock).Test(jsonRequest(http.MethodPut, "/myspace", map[string]string{"theme": "vaporwave"}))
	if err != nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request")
	}
}

func TestPlaylistHandlers(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO playlist_songs`).
		WithArgs(pgxmock.AnyArg(), "user-1", "Helena", "My Chemical Romance", "", "", "", "", "user-1").
		WillReturnRows(pgxmock.NewRows([]string{"position", "created_at"}).AddRow(0, fixedNow))
	mock.ExpectBegin()
	expectLock(mock, "user-1", "s1")
	mock.ExpectExec(`UPDATE playlist_songs`).WithArgs(0, "s1", "user-1").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	expectSongs(mock, "user-1", "s1")
	mock.ExpectExec(`DELETE FROM playlist_songs`).WithArgs("s1", "user-1").WillReturnResult(pgxmock.NewResult("DELETE", 1))

	app := newTestApp(mock)
	resp, err := app.Test(jsonRequest(http.MethodPost, "/myspace/playlist", map[string]string{"title": "Helena", "artist": "My Chemical Romance"}))
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("add status: %v", err)
	}

	resp, err = app.Test(jsonRequest(http.MethodPut, "/myspace/playlist/reorder", map[string][]string{"song_ids": {"s1"}}))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("reorder status: %v", err)
	}
	var songs []Song
	if err := json.NewDecoder(resp.Body).Decode(&songs); err != nil || len(songs) != 1 {
		t.Fatalf("unexpected playlist %+v", songs)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/myspace/playlist/s1", nil))
	if err != nil || resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddSongHandlerBadPayload(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/myspace/playlist", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := newTestApp(newMock(t)).Test(req)
	if err != nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request")
	}
}
