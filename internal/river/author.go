package river

import "strings"

const unknownAuthorKey = "unknown"

// Resolve derives the grouping key and display fields for a post's author.
// userID takes precedence over anything carried in the reference; avatar,
// when set, overrides computed initials.
func (a AuthorRef) Resolve(userID, avatar string) AuthorSummary {
	summary := AuthorSummary{Key: strings.TrimSpace(userID)}

	if rec := a.Structured; rec != nil {
		summary.Username = rec.Username
		summary.FirstName = rec.FirstName
		summary.LastName = rec.LastName
		if summary.Key == "" {
			summary.Key = firstNonEmpty(rec.ID, rec.Username)
		}
		if avatar == "" {
			avatar = rec.Avatar
		}
	} else if a.Raw != "" {
		summary.Username = a.Raw
		if summary.Key == "" {
			summary.Key = a.Raw
		}
	}

	if summary.Key == "" {
		summary.Key = unknownAuthorKey
	}
	summary.Name = displayName(summary.FirstName, summary.LastName, summary.Username)
	summary.Avatar = avatar
	if summary.Avatar == "" {
		summary.Avatar = initials(summary.FirstName, summary.LastName, summary.Username)
	}
	return summary
}

func displayName(first, last, username string) string {
	first, last = strings.TrimSpace(first), strings.TrimSpace(last)
	switch {
	case first != "" && last != "":
		return first + " " + last
	case username != "":
		return username
	case first != "":
		return first
	default:
		return "Unknown"
	}
}

func initials(first, last, username string) string {
	first, last = strings.TrimSpace(first), strings.TrimSpace(last)
	switch {
	case first != "" && last != "":
		return strings.ToUpper(prefix(first, 1) + prefix(last, 1))
	case first != "":
		return strings.ToUpper(prefix(first, 2))
	case username != "":
		return strings.ToUpper(prefix(username, 2))
	default:
		return "??"
	}
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
