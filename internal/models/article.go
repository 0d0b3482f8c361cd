package models

import (
	"encoding/json"
	"strings"
	"time"
)

// ArticleStatus is the editorial state of an article version
type ArticleStatus string

// Status values are stored with their original on-disk names
const (
	StatusDraft     ArticleStatus = "borrador"
	StatusReviewed  ArticleStatus = "revisado"
	StatusPublished ArticleStatus = "publicado"
	StatusArchived  ArticleStatus = "archivado"
)

// ValidStatuses defines allowed article statuses
var ValidStatuses = map[ArticleStatus]bool{
	StatusDraft:     true,
	StatusReviewed:  true,
	StatusPublished: true,
	StatusArchived:  true,
}

// statusAliases maps the English names accepted by the API to stored values
var statusAliases = map[string]ArticleStatus{
	"draft":     StatusDraft,
	"reviewed":  StatusReviewed,
	"published": StatusPublished,
	"archived":  StatusArchived,
}

// Valid reports whether s is one of the four stored statuses
func (s ArticleStatus) Valid() bool {
	return ValidStatuses[s]
}

// ParseStatus resolves a stored or English status name, case-insensitively
func ParseStatus(value string) (ArticleStatus, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if s := ArticleStatus(v); s.Valid() {
		return s, true
	}
	s, ok := statusAliases[v]
	return s, ok
}

// Article represents one version of the content written for an idea
type Article struct {
	ID        string        `json:"id"`
	Title     string        `json:"titulo"`
	Preview   string        `json:"preview"`
	HTML      string        `json:"html"`
	Status    ArticleStatus `json:"estado"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt *time.Time    `json:"updated_at,omitempty"`
}

// HasContent reports whether the version carries non-blank html
func (a Article) HasContent() bool {
	return strings.TrimSpace(a.HTML) != ""
}

// timestampLayouts are the formats found in stored documents, newest first
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
}

// UnmarshalJSON accepts null, empty or naive timestamps, which older writers produced
func (a *Article) UnmarshalJSON(data []byte) error {
	type articleAlias Article
	var raw struct {
		articleAlias
		CreatedAt json.RawMessage `json:"created_at"`
		UpdatedAt json.RawMessage `json:"updated_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*a = Article(raw.articleAlias)
	a.CreatedAt = time.Time{}
	a.UpdatedAt = nil
	if t, ok := parseTimestamp(raw.CreatedAt); ok {
		a.CreatedAt = t
	}
	if t, ok := parseTimestamp(raw.UpdatedAt); ok {
		a.UpdatedAt = &t
	}
	return nil
}

func parseTimestamp(raw json.RawMessage) (time.Time, bool) {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil || s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
