package learning

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"backend-numeneon/internal/shared/apperr"
)

//go:embed catalogue.json
var catalogueJSON []byte

type Item struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
	Code       string `json:"code,omitempty"`
	Gotcha     string `json:"gotcha,omitempty"`
	Example    string `json:"example,omitempty"`
	Myth       string `json:"myth,omitempty"`
}

type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Items []Item `json:"items,omitempty"`
}

// DailyItem is one category's pick for a given day.
type DailyItem struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	Item     Item   `json:"item"`
}

type Service struct {
	categories []Category
	now        func() time.Time
}

// NewService loads the embedded catalogue. now may be nil.
func NewService(now func() time.Time) (*Service, error) {
	var doc struct {
		Categories []Category `json:"categories"`
	}
	if err := json.Unmarshal(catalogueJSON, &doc); err != nil {
		return nil, fmt.Errorf("decode learning catalogue: %w", err)
	}
	for _, c := range doc.Categories {
		if len(c.Items) == 0 {
			return nil, fmt.Errorf("learning category %s has no items", c.ID)
		}
	}
	if now == nil {
		now = time.Now
	}
	return &Service{categories: doc.Categories, now: now}, nil
}

// Today picks one item per category. The pick depends only on the day of the
// year, so every user sees the same items on a given day.
func (s *Service) Today() []DailyItem {
	day := s.now().YearDay()
	out := make([]DailyItem, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, DailyItem{
			Category: c.ID,
			Name:     c.Name,
			Icon:     c.Icon,
			Item:     c.Items[day%len(c.Items)],
		})
	}
	return out
}

// Categories lists category metadata without items.
func (s *Service) Categories() []Category {
	out := make([]Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, Category{ID: c.ID, Name: c.Name, Icon: c.Icon})
	}
	return out
}

func (s *Service) Category(id string) (Category, error) {
	for _, c := range s.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return Category{}, apperr.NotFound("learning category %s not found", id)
}
