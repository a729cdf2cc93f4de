// Package filter narrows already-fetched marketplace lists by search text,
// category and required skills. All functions are pure and keep input order.
package filter

import (
	"net/url"
	"strings"

	"hireloop/internal/models"
)

type Query struct {
	Search   string
	Category string
	Skills   []string
}

// Item is anything that can be browsed in a list view.
type Item interface {
	SearchText() []string
	CategoryName() string
	SkillSet() []string
}

// FromValues reads search, category and comma-separated skills.
func FromValues(v url.Values) Query {
	q := Query{
		Search:   strings.TrimSpace(v.Get("search")),
		Category: strings.TrimSpace(v.Get("category")),
	}
	for _, raw := range v["skills"] {
		q.Skills = append(q.Skills, SplitSkills(raw)...)
	}
	return q
}

// Values is the inverse of FromValues.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if len(q.Skills) > 0 {
		v.Set("skills", strings.Join(q.Skills, ","))
	}
	return v
}

func (q Query) IsZero() bool {
	return strings.TrimSpace(q.Search) == "" && !hasCategory(q.Category) && len(q.Skills) == 0
}

func SplitSkills(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func hasCategory(c string) bool {
	c = strings.TrimSpace(c)
	return c != "" && !strings.EqualFold(c, "all")
}

func (q Query) Match(it Item) bool {
	if s := strings.ToLower(strings.TrimSpace(q.Search)); s != "" {
		found := false
		for _, text := range it.SearchText() {
			if strings.Contains(strings.ToLower(text), s) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if hasCategory(q.Category) && !strings.EqualFold(strings.TrimSpace(q.Category), it.CategoryName()) {
		return false
	}

	if len(q.Skills) > 0 {
		have := make(map[string]struct{}, len(it.SkillSet()))
		for _, s := range it.SkillSet() {
			have[strings.ToLower(s)] = struct{}{}
		}
		for _, want := range q.Skills {
			if _, ok := have[strings.ToLower(strings.TrimSpace(want))]; !ok {
				return false
			}
		}
	}

	return true
}

// Apply returns the items matching q. The result never aliases items.
func Apply[T Item](items []T, q Query) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if q.Match(it) {
			out = append(out, it)
		}
	}
	return out
}

// Open keeps projects that are still accepting applications.
func Open(projects []models.Project) []models.Project {
	out := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if p.Status == models.ProjectOpen {
			out = append(out, p)
		}
	}
	return out
}
