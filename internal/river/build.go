package river

import "time"

type Options struct {
	// MaxPerRow caps each category per row. Zero means MaxPerRow.
	MaxPerRow int
	// Now anchors relative labels. Zero means time.Now().
	Now time.Time
}

// Build runs the full pipeline: group by author, order by recency, then
// split every author into rows.
func Build(posts []Post, opts Options) []AuthorRiver {
	size := opts.MaxPerRow
	if size <= 0 {
		size = MaxPerRow
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	entries := Sort(Group(posts))
	out := make([]AuthorRiver, 0, len(entries))
	for _, e := range entries {
		out = append(out, AuthorRiver{
			DateLabel:           e.DateLabel,
			AuthorKey:           e.AuthorKey,
			Author:              e.Bucket.Author,
			MostRecentTimestamp: unixMilli(e.MostRecent),
			LastActive:          RelativeTime(e.MostRecent, now),
			Totals:              e.Bucket.Totals,
			Rows:                Rows(e.Bucket, size),
		})
	}
	return out
}

func unixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
