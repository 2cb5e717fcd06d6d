package river

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// MaxPerRow is the default number of posts a single category may show in one row.
const MaxPerRow = 12

type Category string

const (
	Thoughts   Category = "thoughts"
	Media      Category = "media"
	Milestones Category = "milestones"
)

// Categories lists the categories in display order.
var Categories = []Category{Thoughts, Media, Milestones}

// ParseCategory maps unknown or empty values to Thoughts.
func ParseCategory(s string) Category {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case Media:
		return Media
	case Milestones:
		return Milestones
	default:
		return Thoughts
	}
}

// AuthorRecord is the structured author shape returned by the API.
type AuthorRecord struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar,omitempty"`
}

func (a *AuthorRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        json.RawMessage `json:"id"`
		Username  string          `json:"username"`
		FirstName string          `json:"first_name"`
		LastName  string          `json:"last_name"`
		Avatar    string          `json:"avatar"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = AuthorRecord{
		ID:        looseString(raw.ID),
		Username:  raw.Username,
		FirstName: raw.FirstName,
		LastName:  raw.LastName,
		Avatar:    raw.Avatar,
	}
	return nil
}

// AuthorRef holds either a structured author or a bare username string.
// Legacy payloads send the latter.
type AuthorRef struct {
	Structured *AuthorRecord
	Raw        string
}

func StructuredAuthor(rec AuthorRecord) AuthorRef {
	return AuthorRef{Structured: &rec}
}

func RawAuthor(name string) AuthorRef {
	return AuthorRef{Raw: name}
}

func (a AuthorRef) IsZero() bool {
	return a.Structured == nil && a.Raw == ""
}

func (a AuthorRef) MarshalJSON() ([]byte, error) {
	switch {
	case a.Structured != nil:
		return json.Marshal(a.Structured)
	case a.Raw != "":
		return json.Marshal(a.Raw)
	default:
		return []byte("null"), nil
	}
}

func (a *AuthorRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*a = AuthorRef{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '{':
		var rec AuthorRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}
		a.Structured = &rec
	case '"':
		return json.Unmarshal(data, &a.Raw)
	default:
		a.Raw = looseString(data)
	}
	return nil
}

// AuthorSummary is the display data derived once per bucket.
type AuthorSummary struct {
	Key       string `json:"id"`
	Name      string `json:"name"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`
}

// Timestamp accepts RFC 3339 strings, date-only strings and epoch
// milliseconds. Anything else decodes to the zero time.
type Timestamp struct {
	time.Time
}

func At(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	t.Time = time.Time{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		t.Time = parseTimestamp(s)
		return nil
	}
	if ms, err := strconv.ParseFloat(string(data), 64); err == nil {
		t.Time = time.UnixMilli(int64(ms)).UTC()
	}
	return nil
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC()
	}
	return time.Time{}
}

// Post is one user-authored content item. The pipeline never modifies it.
type Post struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id,omitempty"`
	Author       AuthorRef `json:"author"`
	Category     Category  `json:"type"`
	Content      string    `json:"content"`
	MediaURL     string    `json:"media_url,omitempty"`
	Avatar       string    `json:"avatar,omitempty"`
	ParentID     string    `json:"parent_id,omitempty"`
	CreatedAt    Timestamp `json:"created_at"`
	LikesCount   int       `json:"likes_count"`
	RepliesCount int       `json:"replies_count"`
	SharesCount  int       `json:"shares_count"`
	IsLiked      bool      `json:"is_liked"`
}

// UnmarshalJSON accepts the camelCase aliases older clients send
// (userId, createdAt, category).
func (p *Post) UnmarshalJSON(data []byte) error {
	type plain Post
	var aux struct {
		plain
		ID           json.RawMessage `json:"id"`
		UserIDAlt    json.RawMessage `json:"userId"`
		UserID       json.RawMessage `json:"user_id"`
		CategoryAlt  string          `json:"category"`
		CreatedAtAlt Timestamp       `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = Post(aux.plain)
	p.ID = looseString(aux.ID)
	p.UserID = looseString(aux.UserID)
	if p.UserID == "" {
		p.UserID = looseString(aux.UserIDAlt)
	}
	if p.Category == "" && aux.CategoryAlt != "" {
		p.Category = Category(aux.CategoryAlt)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = aux.CreatedAtAlt
	}
	return nil
}

// Kind is the category the post is filed under.
func (p Post) Kind() Category {
	return ParseCategory(string(p.Category))
}

// Counts holds per-category totals.
type Counts struct {
	Thoughts   int `json:"thoughts"`
	Media      int `json:"media"`
	Milestones int `json:"milestones"`
}

func (c Counts) Total() int {
	return c.Thoughts + c.Media + c.Milestones
}

// Bucket aggregates one author's posts before chunking.
type Bucket struct {
	Author     AuthorSummary `json:"user"`
	Thoughts   []Post        `json:"thoughts"`
	Media      []Post        `json:"media"`
	Milestones []Post        `json:"milestones"`
	Totals     Counts        `json:"total_counts"`
	MostRecent time.Time     `json:"most_recent"`
}

// Posts returns the bucket's list for c.
func (b *Bucket) Posts(c Category) []Post {
	switch c {
	case Media:
		return b.Media
	case Milestones:
		return b.Milestones
	default:
		return b.Thoughts
	}
}

// Entry is a bucket placed in feed order.
type Entry struct {
	DateLabel  string
	AuthorKey  string
	Bucket     *Bucket
	MostRecent time.Time
	LastActive string
}

// Row is one renderable line of an author's river.
type Row struct {
	RowIndex   int           `json:"row_index"`
	Author     AuthorSummary `json:"user"`
	Thoughts   []Post        `json:"thoughts"`
	Media      []Post        `json:"media"`
	Milestones []Post        `json:"milestones"`
	Latest     Category      `json:"latest_type,omitempty"`
}

// AuthorRiver is an author's entry with its rows, ready to render.
type AuthorRiver struct {
	DateLabel           string        `json:"date"`
	AuthorKey           string        `json:"order_id"`
	Author              AuthorSummary `json:"user"`
	MostRecentTimestamp int64         `json:"most_recent_timestamp"`
	LastActive          string        `json:"last_active"`
	Totals              Counts        `json:"total_counts"`
	Rows                []Row         `json:"rows"`
}

func looseString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	}
	return string(raw)
}
