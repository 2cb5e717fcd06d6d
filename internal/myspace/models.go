package myspace

import (
	"strings"
	"time"

	"backend-numeneon/internal/shared/apperr"
)

const (
	defaultMood   = "chillin"
	defaultTheme  = "classic"
	maxTopFriends = 8
	maxCustomBio  = 1000
	maxSongField  = 200
)

var themes = map[string]bool{
	"classic": true,
	"emo":     true,
	"scene":   true,
	"starry":  true,
	"glitter": true,
}

var moods = map[string]bool{
	"chillin":  true,
	"hyped":    true,
	"tired":    true,
	"in-love":  true,
	"pissed":   true,
	"rockin":   true,
	"bored":    true,
	"on-fire":  true,
	"whatever": true,
	"emo":      true,
}

type Song struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist"`
	Duration   string    `json:"duration"`
	PreviewURL string    `json:"preview_url"`
	SpotifyID  string    `json:"spotify_id,omitempty"`
	AlbumArt   string    `json:"album_art,omitempty"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
}

// Profile is a user's retro profile page. Users who never saved one get the
// defaults and an empty playlist.
type Profile struct {
	UserID     string   `json:"user_id"`
	Username   string   `json:"username"`
	SongTitle  string   `json:"song_title"`
	SongArtist string   `json:"song_artist"`
	Mood       string   `json:"mood"`
	CustomBio  string   `json:"custom_bio"`
	Theme      string   `json:"theme"`
	TopFriends []string `json:"top_friends"`
	Playlist   []Song   `json:"playlist"`
}

// UpdateInput is a partial profile update; nil fields keep their value.
type UpdateInput struct {
	SongTitle  *string   `json:"song_title"`
	SongArtist *string   `json:"song_artist"`
	Mood       *string   `json:"mood"`
	CustomBio  *string   `json:"custom_bio"`
	Theme      *string   `json:"theme"`
	TopFriends *[]string `json:"top_friends"`
}

type SongInput struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Duration   string `json:"duration"`
	PreviewURL string `json:"preview_url"`
	SpotifyID  string `json:"spotify_id"`
	AlbumArt   string `json:"album_art"`
}

type ReorderInput struct {
	SongIDs []string `json:"song_ids"`
}

func (in UpdateInput) apply(p *Profile) error {
	if in.SongTitle != nil {
		p.SongTitle = strings.TrimSpace(*in.SongTitle)
	}
	if in.SongArtist != nil {
		p.SongArtist = strings.TrimSpace(*in.SongArtist)
	}
	if len([]rune(p.SongTitle)) > maxSongField || len([]rune(p.SongArtist)) > maxSongField {
		return apperr.Invalid("song fields must be at most %d characters", maxSongField)
	}
	if in.Mood != nil {
		if !moods[*in.Mood] {
			return apperr.Invalid("unknown mood %q", *in.Mood)
		}
		p.Mood = *in.Mood
	}
	if in.Theme != nil {
		if !themes[*in.Theme] {
			return apperr.Invalid("unknown theme %q", *in.Theme)
		}
		p.Theme = *in.Theme
	}
	if in.CustomBio != nil {
		if len([]rune(*in.CustomBio)) > maxCustomBio {
			return apperr.Invalid("custom_bio must be at most %d characters", maxCustomBio)
		}
		p.CustomBio = *in.CustomBio
	}
	if in.TopFriends != nil {
		top := *in.TopFriends
		if len(top) > maxTopFriends {
			return apperr.Invalid("top_friends holds at most %d users", maxTopFriends)
		}
		seen := make(map[string]bool, len(top))
		for _, id := range top {
			if id == "" || id == p.UserID || seen[id] {
				return apperr.Invalid("top_friends must list distinct other users")
			}
			seen[id] = true
		}
		p.TopFriends = append([]string{}, top...)
	}
	return nil
}
