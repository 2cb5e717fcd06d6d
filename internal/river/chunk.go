package river

import "time"

// Chunk splits one category's posts into pages of at most size posts.
//
// Lists that fit in one page come back unchanged. Longer lists put the
// len%size remainder first, so the newest posts sit on a short row of their
// own, followed by full pages. An empty list yields a single empty page.
func Chunk(posts []Post, size int) [][]Post {
	if size <= 0 {
		size = MaxPerRow
	}
	if len(posts) == 0 {
		return [][]Post{{}}
	}
	if len(posts) <= size {
		return [][]Post{posts}
	}

	pages := make([][]Post, 0, len(posts)/size+1)
	start := 0
	if remainder := len(posts) % size; remainder > 0 {
		pages = append(pages, posts[:remainder:remainder])
		start = remainder
	}
	for i := start; i < len(posts); i += size {
		pages = append(pages, posts[i:i+size:i+size])
	}
	return pages
}

// Rows zips the bucket's category pages into aligned rows. A category with
// fewer pages than the row count contributes empty lists.
func Rows(b *Bucket, size int) []Row {
	thoughts := Chunk(b.Thoughts, size)
	media := Chunk(b.Media, size)
	milestones := Chunk(b.Milestones, size)

	count := max(len(thoughts), len(media), len(milestones))
	rows := make([]Row, count)
	for i := range rows {
		rows[i] = Row{
			RowIndex:   i,
			Author:     b.Author,
			Thoughts:   pageAt(thoughts, i),
			Media:      pageAt(media, i),
			Milestones: pageAt(milestones, i),
		}
		rows[i].Latest = latestCategory(rows[i])
	}
	return rows
}

func pageAt(pages [][]Post, i int) []Post {
	if i < len(pages) {
		return pages[i]
	}
	return []Post{}
}

// latestCategory reports which category holds the newest post in the row.
// Without timestamps it falls back to the first non-empty category.
func latestCategory(row Row) Category {
	var (
		latest Category
		best   time.Time
	)
	for _, c := range Categories {
		for _, p := range row.posts(c) {
			if p.CreatedAt.After(best) {
				best = p.CreatedAt.Time
				latest = c
			}
		}
	}
	if latest != "" {
		return latest
	}
	for _, c := range Categories {
		if len(row.posts(c)) > 0 {
			return c
		}
	}
	return ""
}

func (r Row) posts(c Category) []Post {
	switch c {
	case Media:
		return r.Media
	case Milestones:
		return r.Milestones
	default:
		return r.Thoughts
	}
}
