package auth

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"backend-numeneon/internal/db"
	"backend-numeneon/internal/shared/apperr"

	sq "github.com/Masterminds/squirrel"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
)

const (
	accessTokenTTL = 15 * time.Minute

	minSearchLen = 2
	searchLimit  = 20
	maxBioLen    = 500
	maxFieldLen  = 100
)

var userColumns = []string{
	"id", "username", "first_name", "last_name", "avatar_url", "bio", "location", "website", "created_at",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

var errTokenInvalid = errors.New("token invalid")

// Service verifies access tokens. Issuing them belongs to the identity
// provider; SignAccessToken exists for local tooling and tests.
type Service struct {
	secret []byte
	db     db.Querier
}

func NewService(secret string, db db.Querier) *Service {
	return &Service{
		secret: []byte(secret),
		db:     db,
	}
}

func (s *Service) ValidateAccessToken(token string) (string, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

func (s *Service) SignAccessToken(userID string) (string, error) {
	return s.signToken(userID, accessTokenTTL)
}

func (s *Service) Me(ctx context.Context, userID string) (User, error) {
	return s.findUser(ctx, sq.Eq{"id": userID})
}

// ByUsername returns the public profile for username.
func (s *Service) ByUsername(ctx context.Context, username string) (User, error) {
	return s.findUser(ctx, sq.Eq{"username": username})
}

// Search matches q against username and names, case-insensitively. Queries
// shorter than two characters return no users. The caller is excluded.
func (s *Service) Search(ctx context.Context, userID, q string) ([]User, error) {
	q = strings.TrimSpace(q)
	if len([]rune(q)) < minSearchLen {
		return []User{}, nil
	}
	pattern := "%" + likeEscaper.Replace(q) + "%"

	query, args, err := db.SqBuilder.
		Select(userColumns...).
		From("users").
		Where(sq.Or{
			sq.ILike{"username": pattern},
			sq.ILike{"first_name": pattern},
			sq.ILike{"last_name": pattern},
		}).
		Where(sq.NotEq{"id": userID}).
		OrderBy("username").
		Limit(searchLimit).
		ToSql()
	if err != nil {
		return nil, db.ErrBadQuery
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (User, error) {
	b := db.SqBuilder.Update("users")
	changed := false
	set := func(col string, v *string, max int) error {
		if v == nil {
			return nil
		}
		val := strings.TrimSpace(*v)
		if len([]rune(val)) > max {
			return apperr.Invalid("%s must be at most %d characters", col, max)
		}
		b = b.Set(col, val)
		changed = true
		return nil
	}
	if err := set("bio", in.Bio, maxBioLen); err != nil {
		return User{}, err
	}
	if err := set("location", in.Location, maxFieldLen); err != nil {
		return User{}, err
	}
	if in.Website != nil && strings.TrimSpace(*in.Website) != "" && !validWebsite(strings.TrimSpace(*in.Website)) {
		return User{}, apperr.Invalid("website must be an http or https url")
	}
	if err := set("website", in.Website, maxFieldLen); err != nil {
		return User{}, err
	}
	if !changed {
		return User{}, apperr.Invalid("nothing to update")
	}

	query, args, err := b.
		Where(sq.Eq{"id": userID}).
		Suffix("RETURNING " + strings.Join(userColumns, ", ")).
		ToSql()
	if err != nil {
		return User{}, db.ErrBadQuery
	}
	u, err := scanUser(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		return User{}, apperr.FromDB(err, "user")
	}
	return u, nil
}

func (s *Service) findUser(ctx context.Context, where sq.Eq) (User, error) {
	query, args, err := db.SqBuilder.
		Select(userColumns...).
		From("users").
		Where(where).
		ToSql()
	if err != nil {
		return User{}, db.ErrBadQuery
	}
	u, err := scanUser(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		return User{}, apperr.FromDB(err, "user")
	}
	return u, nil
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.AvatarURL, &u.Bio, &u.Location, &u.Website, &u.CreatedAt)
	return u, err
}

func validWebsite(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

func (s *Service) signToken(userID string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) parseToken(token string) (*Claims, error) {
	return parseClaims(token, s.secret)
}

func parseClaims(token string, secret []byte) (*Claims, error) {
	parsed, err := parseClaimsFn(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errTokenInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return nil, errTokenInvalid
	}
	return claims, nil
}

var parseClaimsFn = jwt.ParseWithClaims
