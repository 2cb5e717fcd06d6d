package river

import (
	"fmt"
	"testing"
	"time"
)

func makePosts(n int, category Category) []Post {
	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	posts := make([]Post, n)
	for i := range posts {
		posts[i] = Post{
			ID:        fmt.Sprintf("%s-%d", category, i),
			Author:    RawAuthor("ana"),
			Category:  category,
			CreatedAt: At(base.Add(-time.Duration(i) * time.Minute)),
		}
	}
	return posts
}

func TestChunkRemainderFirst(t *testing.T) {
	posts := makePosts(15, Thoughts)
	pages := Chunk(posts, MaxPerRow)
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if len(pages[0]) != 3 || len(pages[1]) != 12 {
		t.Fatalf("unexpected page sizes %d/%d", len(pages[0]), len(pages[1]))
	}
	for i, p := range pages[0] {
		if p.ID != posts[i].ID {
			t.Fatalf("page 0 should hold the newest posts, got %s at %d", p.ID, i)
		}
	}
	if pages[1][0].ID != posts[3].ID || pages[1][11].ID != posts[14].ID {
		t.Fatalf("page 1 should hold items 3-14")
	}
}

func TestChunkEvenSplit(t *testing.T) {
	pages := Chunk(makePosts(24, Media), MaxPerRow)
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	for i, page := range pages {
		if len(page) != MaxPerRow {
			t.Fatalf("page %d has %d posts", i, len(page))
		}
	}
}

func TestChunkSmallPassthrough(t *testing.T) {
	for _, n := range []int{1, 5, 12} {
		posts := makePosts(n, Thoughts)
		pages := Chunk(posts, MaxPerRow)
		if len(pages) != 1 || len(pages[0]) != n {
			t.Fatalf("n=%d: expected one page of %d", n, n)
		}
		for i := range posts {
			if pages[0][i].ID != posts[i].ID {
				t.Fatalf("n=%d: page differs from input at %d", n, i)
			}
		}
	}
}

func TestChunkEmpty(t *testing.T) {
	pages := Chunk(nil, MaxPerRow)
	if len(pages) != 1 || len(pages[0]) != 0 {
		t.Fatalf("expected [[]], got %v", pages)
	}
	if pages[0] == nil {
		t.Fatalf("expected non-nil empty page")
	}
}

func TestChunkDefaultSize(t *testing.T) {
	pages := Chunk(makePosts(13, Thoughts), 0)
	if len(pages) != 2 || len(pages[0]) != 1 {
		t.Fatalf("expected default page size of %d", MaxPerRow)
	}
}

func TestChunkPagesDoNotShareCapacity(t *testing.T) {
	posts := makePosts(15, Thoughts)
	pages := Chunk(posts, MaxPerRow)
	_ = append(pages[0], Post{ID: "intruder"})
	if pages[1][0].ID != posts[3].ID {
		t.Fatalf("appending to a page must not overwrite the next one")
	}
}

func TestChunkCoversEveryPostOnce(t *testing.T) {
	for n := 0; n <= 50; n++ {
		posts := makePosts(n, Thoughts)
		pages := Chunk(posts, MaxPerRow)

		var flat []Post
		for i, page := range pages {
			if len(page) > MaxPerRow {
				t.Fatalf("n=%d: page %d exceeds cap", n, i)
			}
			if i > 0 && len(page) != MaxPerRow {
				t.Fatalf("n=%d: only the first page may be short", n)
			}
			flat = append(flat, page...)
		}
		if len(flat) != n {
			t.Fatalf("n=%d: expected %d posts after chunking, got %d", n, n, len(flat))
		}
		for i := range flat {
			if flat[i].ID != posts[i].ID {
				t.Fatalf("n=%d: order broken at %d", n, i)
			}
		}
	}
}

func TestRowsAlignCategories(t *testing.T) {
	b := &Bucket{
		Author:     AuthorSummary{Key: "ana"},
		Thoughts:   makePosts(15, Thoughts),
		Media:      makePosts(2, Media),
		Milestones: []Post{},
	}

	rows := Rows(b, MaxPerRow)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if len(rows[0].Thoughts) != 3 || len(rows[1].Thoughts) != 12 {
		t.Fatalf("thought rows not remainder-first")
	}
	if len(rows[0].Media) != 2 || len(rows[1].Media) != 0 {
		t.Fatalf("media should only fill row 0")
	}
	if rows[1].Media == nil || rows[1].Milestones == nil {
		t.Fatalf("missing pages must be empty lists")
	}
	for i, row := range rows {
		if row.RowIndex != i {
			t.Fatalf("row %d has index %d", i, row.RowIndex)
		}
		if row.Author.Key != "ana" {
			t.Fatalf("row %d missing author", i)
		}
	}
}

func TestRowsSingleRowForEmptyBucket(t *testing.T) {
	rows := Rows(&Bucket{}, MaxPerRow)
	if len(rows) != 1 {
		t.Fatalf("expected a single row, got %d", len(rows))
	}
	if rows[0].Latest != "" {
		t.Fatalf("empty row should not report a latest category")
	}
}

func TestRowsLatestCategory(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	b := &Bucket{
		Thoughts:   []Post{{ID: "t", CreatedAt: At(now.Add(-time.Hour))}},
		Media:      []Post{{ID: "m", CreatedAt: At(now)}},
		Milestones: []Post{},
	}
	if got := Rows(b, MaxPerRow)[0].Latest; got != Media {
		t.Fatalf("expected media to be latest, got %q", got)
	}

	undated := &Bucket{
		Milestones: []Post{{ID: "x"}},
	}
	if got := Rows(undated, MaxPerRow)[0].Latest; got != Milestones {
		t.Fatalf("expected fallback to first non-empty category, got %q", got)
	}
}
