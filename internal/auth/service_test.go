package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"backend-numeneon/internal/shared/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pashagolub/pgxmock/v3"
)

var fixedTime = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func TestParseTokenInvalid(t *testing.T) {
	oldParse := parseClaimsFn
	parseClaimsFn = func(_ string, _ jwt.Claims, _ jwt.Keyfunc, _ ...jwt.ParserOption) (*jwt.Token, error) {
		return &jwt.Token{Valid: false, Claims: &Claims{UserID: "user-1"}}, nil
	}
	defer func() { parseClaimsFn = oldParse }()

	svc := NewService("test-secret", nil)
	if _, err := svc.parseToken("token"); !errors.Is(err, errTokenInvalid) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestParseTokenMissingUser(t *testing.T) {
	oldParse := parseClaimsFn
	parseClaimsFn = func(_ string, _ jwt.Claims, _ jwt.Keyfunc, _ ...jwt.ParserOption) (*jwt.Token, error) {
		return &jwt.Token{Valid: true, Claims: &Claims{}}, nil
	}
	defer func() { parseClaimsFn = oldParse }()

	svc := NewService("test-secret", nil)
	if _, err := svc.ValidateAccessToken("token"); !errors.Is(err, errTokenInvalid) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestSearchShortQuery(t *testing.T) {
	svc := NewService("secret", nil)
	users, err := svc.Search(context.Background(), "user-1", "  a ")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if users == nil || len(users) != 0 {
		t.Fatalf("expected empty non-nil result")
	}
}

func TestSearchEscapesWildcards(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM users WHERE`).
		WithArgs(`%50\%\_\_%`, `%50\%\_\_%`, `%50\%\_\_%`, "user-1").
		WillReturnRows(pgxmock.NewRows(userCols))

	svc := NewService("secret", mock)
	users, err := svc.Search(context.Background(), "user-1", "50%__")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("expected no users")
	}
}

func TestUpdateProfileValidation(t *testing.T) {
	svc := NewService("secret", nil)
	ctx := context.Background()

	bad := "ftp://example.com"
	if _, err := svc.UpdateProfile(ctx, "user-1", ProfileInput{Website: &bad}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected invalid website, got %v", err)
	}

	longBio := strings.Repeat("x", maxBioLen+1)
	if _, err := svc.UpdateProfile(ctx, "user-1", ProfileInput{Bio: &longBio}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected bio length error, got %v", err)
	}
}

func TestUpdateProfileClearsWebsite(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`UPDATE users SET location = \$1, website = \$2 WHERE id = \$3`).
		WithArgs("Lisbon", "", "user-1").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow("user-1", "me", "", "", "", "", "Lisbon", "", fixedTime))

	svc := NewService("secret", mock)
	loc, site := "Lisbon", ""
	u, err := svc.UpdateProfile(context.Background(), "user-1", ProfileInput{Location: &loc, Website: &site})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.Location != "Lisbon" || u.Website != "" {
		t.Fatalf("unexpected user %+v", u)
	}
}
