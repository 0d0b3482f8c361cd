package models

import (
	"bytes"
	"encoding/json"
	"strings"

	"golang.org/x/text/cases"
)

// Idea represents a keyword-scoped content plan owned by a user.
//
// Articles is ordered newest first. LatestHTML mirrors Articles[0].HTML for
// readers that still expect the single-article shape.
type Idea struct {
	Keyword           string    `json:"keyword"`
	Title             string    `json:"titulo"`
	Keywords          []string  `json:"palabras_clave"`
	SuggestedHeadings []string  `json:"h2_sugeridos"`
	SEOTips           []string  `json:"tips_seo"`
	Articles          []Article `json:"articulos"`
	LatestHTML        string    `json:"articulo"`

	// repaired counts version entries that could not be decoded as-is
	repaired int
}

// IdeaPayload is an idea record produced by the idea-generation collaborator
type IdeaPayload struct {
	Keyword           string    `json:"keyword"`
	Title             string    `json:"titulo"`
	Keywords          []string  `json:"palabras_clave"`
	SuggestedHeadings []string  `json:"h2_sugeridos"`
	SEOTips           []string  `json:"tips_seo"`
	Articles          []Article `json:"articulos,omitempty"`
}

// NewIdea returns an idea with empty metadata for the given keyword
func NewIdea(keyword string) Idea {
	keyword = strings.TrimSpace(keyword)
	return Idea{
		Keyword:           keyword,
		Title:             keyword,
		Keywords:          []string{},
		SuggestedHeadings: []string{},
		SEOTips:           []string{},
		Articles:          []Article{},
	}
}

// MergeKey normalizes a keyword for deduplication: trimmed and case-folded.
// Every lookup, merge and delete path goes through it.
func MergeKey(keyword string) string {
	return cases.Fold().String(strings.TrimSpace(keyword))
}

// Key returns the merge key of the idea
func (i *Idea) Key() string {
	return MergeKey(i.Keyword)
}

// ContentCount returns the number of versions with non-blank html
func (i *Idea) ContentCount() int {
	n := 0
	for _, a := range i.Articles {
		if a.HasContent() {
			n++
		}
	}
	return n
}

// SyncLatest recomputes the compatibility alias from the newest version
func (i *Idea) SyncLatest() {
	if len(i.Articles) == 0 {
		i.LatestHTML = ""
		return
	}
	i.LatestHTML = i.Articles[0].HTML
}

// UnmarshalJSON tolerates records written before articles were versioned.
// When "articulos" is missing or is not a list, Articles is left nil so the
// legacy migration can rebuild it. List entries are decoded one by one: an
// entry with mistyped fields keeps its readable fields, and an entry that is
// not an object is dropped. Either case is reported by TakeRepaired.
func (i *Idea) UnmarshalJSON(data []byte) error {
	type ideaAlias Idea
	var raw struct {
		ideaAlias
		Articles json.RawMessage `json:"articulos"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*i = Idea(raw.ideaAlias)
	i.Articles = nil

	trimmed := bytes.TrimSpace(raw.Articles)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil
	}

	articles := make([]Article, 0, len(entries))
	for _, entry := range entries {
		var a Article
		if err := json.Unmarshal(entry, &a); err != nil {
			i.repaired++
			salvaged, ok := salvageArticle(entry)
			if !ok {
				continue
			}
			a = salvaged
		}
		articles = append(articles, a)
	}
	i.Articles = articles
	return nil
}

// TakeRepaired returns how many version entries were repaired or dropped
// while decoding, and resets the count.
func (i *Idea) TakeRepaired() int {
	n := i.repaired
	i.repaired = 0
	return n
}

// salvageArticle reads the fields of an article object one at a time,
// keeping those that decode and blanking the rest.
func salvageArticle(entry json.RawMessage) (Article, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(entry, &fields); err != nil || fields == nil {
		return Article{}, false
	}

	a := Article{
		ID:      scalarString(fields["id"]),
		Title:   scalarString(fields["titulo"]),
		Preview: scalarString(fields["preview"]),
		HTML:    scalarString(fields["html"]),
		Status:  ArticleStatus(scalarString(fields["estado"])),
	}
	if t, ok := parseTimestamp(fields["created_at"]); ok {
		a.CreatedAt = t
	}
	if t, ok := parseTimestamp(fields["updated_at"]); ok {
		a.UpdatedAt = &t
	}
	return a, true
}

// scalarString returns a JSON string as-is and a number or boolean as its
// literal text; anything else is blank.
func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	switch raw[0] {
	case '{', '[', 'n':
		return ""
	}
	return string(raw)
}

// FindIdea returns the index of the idea matching keyword, or -1
func FindIdea(ideas []Idea, keyword string) int {
	key := MergeKey(keyword)
	if key == "" {
		return -1
	}
	for idx := range ideas {
		if ideas[idx].Key() == key {
			return idx
		}
	}
	return -1
}

// FindArticle returns the index of the version with the given id, or -1
func (i *Idea) FindArticle(id string) int {
	for idx := range i.Articles {
		if i.Articles[idx].ID == id {
			return idx
		}
	}
	return -1
}
