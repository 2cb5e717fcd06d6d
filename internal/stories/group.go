package stories

import (
	"cmp"
	"slices"
	"time"
)

// GroupByAuthor gathers stories per author. Each author's stories keep their
// input order; authors are ordered by their newest story, ties by id.
func GroupByAuthor(stories []Story) []AuthorStories {
	var (
		order  []string
		groups = map[string]*AuthorStories{}
		newest = map[string]time.Time{}
	)
	for _, s := range stories {
		g, ok := groups[s.User.ID]
		if !ok {
			g = &AuthorStories{User: s.User, Stories: []Story{}}
			groups[s.User.ID] = g
			order = append(order, s.User.ID)
		}
		g.Stories = append(g.Stories, s)
		if !s.Viewed {
			g.HasUnviewed = true
		}
		if s.CreatedAt.After(newest[s.User.ID]) {
			newest[s.User.ID] = s.CreatedAt
		}
	}

	slices.SortFunc(order, func(a, b string) int {
		if c := newest[b].Compare(newest[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	out := make([]AuthorStories, 0, len(order))
	for _, id := range order {
		out = append(out, *groups[id])
	}
	return out
}
