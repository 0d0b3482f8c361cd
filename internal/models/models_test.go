package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input string
		want  ArticleStatus
		ok    bool
	}{
		{"draft", StatusDraft, true},
		{"Reviewed", StatusReviewed, true},
		{" published ", StatusPublished, true},
		{"ARCHIVED", StatusArchived, true},
		{"borrador", StatusDraft, true},
		{"publicado", StatusPublished, true},
		{"pending", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseStatus(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseStatus(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestMergeKey(t *testing.T) {
	tests := []struct {
		a, b  string
		equal bool
	}{
		{"Café de Especialidad", "café de especialidad", true},
		{"  v60 ", "V60", true},
		{"ÁRBOL Ñandú", "árbol ñandú", true},
		{"chemex", "chemex filtro", false},
	}

	for _, tt := range tests {
		if got := MergeKey(tt.a) == MergeKey(tt.b); got != tt.equal {
			t.Errorf("MergeKey(%q) == MergeKey(%q) is %v, want %v", tt.a, tt.b, got, tt.equal)
		}
	}

	if MergeKey("   ") != "" {
		t.Error("blank keyword should have an empty merge key")
	}
}

func TestFindIdea(t *testing.T) {
	ideas := []Idea{NewIdea("Chemex"), NewIdea("Prensa Francesa")}

	if got := FindIdea(ideas, "prensa francesa"); got != 1 {
		t.Errorf("FindIdea = %d, want 1", got)
	}
	if got := FindIdea(ideas, "aeropress"); got != -1 {
		t.Errorf("FindIdea = %d, want -1", got)
	}
	if got := FindIdea(ideas, " "); got != -1 {
		t.Errorf("blank keyword matched index %d", got)
	}
}

func TestContentCountAndSyncLatest(t *testing.T) {
	idea := NewIdea("v60")
	idea.Articles = []Article{
		{ID: "b", HTML: "<p>nuevo</p>"},
		{ID: "blank", HTML: "   "},
		{ID: "a", HTML: "<p>viejo</p>"},
	}

	if got := idea.ContentCount(); got != 2 {
		t.Errorf("ContentCount = %d, want 2", got)
	}

	idea.SyncLatest()
	if idea.LatestHTML != "<p>nuevo</p>" {
		t.Errorf("LatestHTML = %q", idea.LatestHTML)
	}
	if idx := idea.FindArticle("a"); idx != 2 {
		t.Errorf("FindArticle = %d, want 2", idx)
	}

	idea.Articles = nil
	idea.SyncLatest()
	if idea.LatestHTML != "" {
		t.Errorf("LatestHTML should be cleared, got %q", idea.LatestHTML)
	}
}

func TestReconcile(t *testing.T) {
	got := Reconcile(Counters{IdeasGenerated: 5, ArticlesGenerated: 1}, 3, 4)
	want := Counts{Ideas: 5, Articles: 4}
	if got != want {
		t.Errorf("Reconcile = %+v, want %+v", got, want)
	}
}

func TestComputeCounts(t *testing.T) {
	ideas := []Idea{
		{Keyword: "a", Articles: []Article{{HTML: "<p>1</p>"}, {HTML: ""}}},
		{Keyword: "b", Articles: []Article{{HTML: "<p>2</p>"}}},
		{Keyword: "c"},
	}

	nIdeas, nArticles := ComputeCounts(ideas)
	if nIdeas != 3 || nArticles != 2 {
		t.Errorf("ComputeCounts = %d, %d; want 3, 2", nIdeas, nArticles)
	}
}

func TestArticleUnmarshalTimestamps(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		created time.Time
		updated bool
	}{
		{"rfc3339", `{"id":"a","created_at":"2024-05-01T10:00:00Z"}`, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), false},
		{"naive iso", `{"id":"a","created_at":"2024-05-01T10:00:00.123456"}`, time.Date(2024, 5, 1, 10, 0, 0, 123456000, time.UTC), false},
		{"space separated", `{"id":"a","created_at":"2024-05-01 10:00:00","updated_at":"2024-05-02 08:00:00"}`, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), true},
		{"null", `{"id":"a","created_at":null,"updated_at":null}`, time.Time{}, false},
		{"garbage", `{"id":"a","created_at":"yesterday"}`, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Article
			if err := json.Unmarshal([]byte(tt.raw), &a); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !a.CreatedAt.Equal(tt.created) {
				t.Errorf("CreatedAt = %v, want %v", a.CreatedAt, tt.created)
			}
			if (a.UpdatedAt != nil) != tt.updated {
				t.Errorf("UpdatedAt = %v, want set=%v", a.UpdatedAt, tt.updated)
			}
		})
	}
}

func TestIdeaUnmarshalLegacyShapes(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		articles int
		isNil    bool
	}{
		{"current", `{"keyword":"k","articulos":[{"id":"a","html":"x"}]}`, 1, false},
		{"empty list", `{"keyword":"k","articulos":[]}`, 0, false},
		{"missing", `{"keyword":"k","articulo":"<p>x</p>"}`, 0, true},
		{"null", `{"keyword":"k","articulos":null}`, 0, true},
		{"string", `{"keyword":"k","articulos":"oops"}`, 0, true},
		{"list of strings", `{"keyword":"k","articulos":["a","b"]}`, 0, false},
		{"one mistyped entry", `{"keyword":"k","articulos":[{"id":"a1","html":"<p>a</p>"},{"id":"a2","html":"<p>b</p>","titulo":7}]}`, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var idea Idea
			if err := json.Unmarshal([]byte(tt.raw), &idea); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if idea.Keyword != "k" {
				t.Errorf("Keyword = %q", idea.Keyword)
			}
			if (idea.Articles == nil) != tt.isNil {
				t.Errorf("Articles nil = %v, want %v", idea.Articles == nil, tt.isNil)
			}
			if len(idea.Articles) != tt.articles {
				t.Errorf("len(Articles) = %d, want %d", len(idea.Articles), tt.articles)
			}
		})
	}
}

func TestIdeaUnmarshalKeepsHistoryAroundBadEntries(t *testing.T) {
	raw := `{"keyword":"k","articulo":"<p>new</p>","articulos":[
		{"id":"a1","html":"<p>new</p>","estado":"publicado","created_at":"2024-05-01T10:00:00Z"},
		{"id":"a2","html":"<p>old</p>","titulo":7,"estado":["x"],"created_at":"2024-04-01T10:00:00Z"},
		"garbage",
		{"id":"a3","html":"<p>oldest</p>"}
	]}`

	var idea Idea
	if err := json.Unmarshal([]byte(raw), &idea); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(idea.Articles) != 3 {
		t.Fatalf("len(Articles) = %d, want 3", len(idea.Articles))
	}
	ids := []string{idea.Articles[0].ID, idea.Articles[1].ID, idea.Articles[2].ID}
	if ids[0] != "a1" || ids[1] != "a2" || ids[2] != "a3" {
		t.Errorf("ids = %v, want [a1 a2 a3]", ids)
	}

	salvaged := idea.Articles[1]
	if salvaged.HTML != "<p>old</p>" {
		t.Errorf("salvaged html = %q", salvaged.HTML)
	}
	if salvaged.Title != "7" {
		t.Errorf("salvaged title = %q, want numeric literal", salvaged.Title)
	}
	if salvaged.Status != "" {
		t.Errorf("salvaged status = %q, want blank", salvaged.Status)
	}
	if !salvaged.CreatedAt.Equal(time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("salvaged created_at = %v", salvaged.CreatedAt)
	}

	if n := idea.TakeRepaired(); n != 2 {
		t.Errorf("TakeRepaired = %d, want 2", n)
	}
	if n := idea.TakeRepaired(); n != 0 {
		t.Errorf("TakeRepaired after reset = %d, want 0", n)
	}
}
