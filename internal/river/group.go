package river

import (
	"cmp"
	"slices"
	"time"
)

// Group partitions posts into per-author buckets. Within a bucket each
// category keeps the input order. Posts without a timestamp count as the
// zero time, so they never advance an author's MostRecent.
func Group(posts []Post) map[string]*Bucket {
	buckets := make(map[string]*Bucket)

	for _, post := range posts {
		author := post.Author.Resolve(post.UserID, post.Avatar)

		b, ok := buckets[author.Key]
		if !ok {
			b = &Bucket{
				Author:     author,
				Thoughts:   []Post{},
				Media:      []Post{},
				Milestones: []Post{},
				MostRecent: post.CreatedAt.Time,
			}
			buckets[author.Key] = b
		}

		if post.CreatedAt.After(b.MostRecent) {
			b.MostRecent = post.CreatedAt.Time
		}

		switch post.Kind() {
		case Media:
			b.Media = append(b.Media, post)
			b.Totals.Media++
		case Milestones:
			b.Milestones = append(b.Milestones, post)
			b.Totals.Milestones++
		default:
			b.Thoughts = append(b.Thoughts, post)
			b.Totals.Thoughts++
		}
	}

	return buckets
}

// Sort orders buckets by most recent activity, newest first. Equal
// timestamps fall back to the author key so the result is deterministic.
func Sort(buckets map[string]*Bucket) []Entry {
	entries := make([]Entry, 0, len(buckets))
	for key, b := range buckets {
		entries = append(entries, Entry{
			DateLabel:  dateLabel(b.MostRecent),
			AuthorKey:  key,
			Bucket:     b,
			MostRecent: b.MostRecent,
		})
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		if c := b.MostRecent.Compare(a.MostRecent); c != 0 {
			return c
		}
		return cmp.Compare(a.AuthorKey, b.AuthorKey)
	})
	return entries
}

func dateLabel(t time.Time) string {
	if t.IsZero() {
		return time.Unix(0, 0).UTC().Format(time.DateOnly)
	}
	return t.UTC().Format(time.DateOnly)
}
