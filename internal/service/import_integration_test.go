package service_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/content-ideas-api/internal/models"
)

// testdataPath returns the absolute path to a file in the testdata directory.
func testdataPath(t testing.TB, filename string) string {
	t.Helper()
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine test file path")
	}
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(currentFile)))
	path := filepath.Join(projectRoot, "testdata", filename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skipf("testdata file not found: %s", path)
	}
	return path
}

func TestImport_SampleNDJSON(t *testing.T) {
	h := newTestHarness(t)

	file, err := os.Open(testdataPath(t, "ideas_sample.ndjson"))
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	result, err := h.services.Import.Import(h.ctx, testUser, file)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}

	if result.Total != 8 {
		t.Errorf("expected 8 records, got %d", result.Total)
	}
	if result.Failed != 4 || result.Accepted != 4 {
		t.Errorf("expected 4 accepted and 4 failed, got %d / %d", result.Accepted, result.Failed)
	}
	// The two spellings of "café de especialidad" share a merge key
	if result.NewCount != 3 {
		t.Errorf("expected 3 new ideas, got %d", result.NewCount)
	}

	errorLines := make(map[int]bool)
	for _, e := range result.Errors {
		errorLines[e.Line] = true
	}
	for _, line := range []int{1, 5, 6, 7} {
		if !errorLines[line] {
			t.Errorf("expected an error reported on line %d, got %+v", line, result.Errors)
		}
	}

	ideas, _ := h.services.Ideas.Load(h.ctx, testUser)
	if len(ideas) != 3 {
		t.Fatalf("expected 3 stored ideas, got %d", len(ideas))
	}
	if ideas[0].Title != "Guía actualizada del café de especialidad" {
		t.Errorf("later record should win, got title %q", ideas[0].Title)
	}
	if len(ideas[1].Articles) != 1 || ideas[1].Articles[0].Status != models.StatusPublished {
		t.Errorf("expected imported article history on prensa francesa, got %+v", ideas[1].Articles)
	}
	if got := h.counterRepo.Snapshot(testUser).IdeasGenerated; got != 3 {
		t.Errorf("expected ideas counter 3, got %d", got)
	}

	// Importing the same file again adds nothing
	file.Seek(0, 0)
	again, err := h.services.Import.Import(h.ctx, testUser, file)
	if err != nil {
		t.Fatal(err)
	}
	if again.NewCount != 0 {
		t.Errorf("expected re-import to add nothing, got %d", again.NewCount)
	}
}

func TestImport_JSONArray(t *testing.T) {
	h := newTestHarness(t)
	body := `
	[
		{"keyword": "uno", "titulo": "Uno"},
		{"keyword": "", "titulo": "sin keyword"},
		{"keyword": "dos", "titulo": "Dos", "palabras_clave": ["a", "b"]}
	]`

	result, err := h.services.Import.Import(h.ctx, testUser, strings.NewReader(body))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.Total != 3 || result.Accepted != 2 || result.Failed != 1 || result.NewCount != 2 {
		t.Errorf("unexpected result %+v", result)
	}
	if len(result.Errors) != 1 || result.Errors[0].Line != 2 || result.Errors[0].Field != "keyword" {
		t.Errorf("expected keyword error at position 2, got %+v", result.Errors)
	}
}

func TestImport_MalformedArray(t *testing.T) {
	h := newTestHarness(t)

	_, err := h.services.Import.Import(h.ctx, testUser, strings.NewReader(`[{"keyword":"uno"}, {`))
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if h.ideaRepo.Saves() != 0 {
		t.Error("a malformed upload must not write")
	}
}

func TestImport_EmptyInput(t *testing.T) {
	h := newTestHarness(t)

	result, err := h.services.Import.Import(h.ctx, testUser, strings.NewReader("\n  \n"))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.Total != 0 || result.NewCount != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
	if h.ideaRepo.Saves() != 0 {
		t.Error("an empty import must not write")
	}
}

func TestExport_Formats(t *testing.T) {
	h := newTestHarness(t)
	if _, err := h.services.Ideas.Merge(h.ctx, testUser, []models.IdeaPayload{payload("uno", "Uno"), payload("dos", "Dos")}); err != nil {
		t.Fatal(err)
	}
	article, err := h.services.Articles.Append(h.ctx, testUser, "dos", "<h1>Dos & más</h1>", "published")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("ndjson", func(t *testing.T) {
		var buf bytes.Buffer
		count, err := h.services.Export.Export(h.ctx, &buf, testUser, "ndjson")
		if err != nil {
			t.Fatal(err)
		}
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if count != 2 || len(lines) != 2 {
			t.Fatalf("expected 2 records, got %d / %d", count, len(lines))
		}
		var idea models.Idea
		if err := json.Unmarshal([]byte(lines[1]), &idea); err != nil {
			t.Fatal(err)
		}
		if idea.LatestHTML != "<h1>Dos & más</h1>" {
			t.Errorf("unexpected alias %q", idea.LatestHTML)
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if _, err := h.services.Export.Export(h.ctx, &buf, testUser, "json"); err != nil {
			t.Fatal(err)
		}
		var ideas []models.Idea
		if err := json.Unmarshal(buf.Bytes(), &ideas); err != nil {
			t.Fatalf("export is not a JSON array: %v", err)
		}
		if len(ideas) != 2 {
			t.Errorf("expected 2 ideas, got %d", len(ideas))
		}
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		if _, err := h.services.Export.Export(h.ctx, &buf, testUser, "csv"); err != nil {
			t.Fatal(err)
		}
		records, err := csv.NewReader(&buf).ReadAll()
		if err != nil {
			t.Fatal(err)
		}
		if len(records) != 3 || records[0][0] != "keyword" {
			t.Fatalf("unexpected csv %v", records)
		}
		row := records[2]
		if row[0] != "dos" || row[5] != "1" || row[6] != article.ID || row[8] != "publicado" {
			t.Errorf("unexpected row %v", row)
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		var buf bytes.Buffer
		_, err := h.services.Export.Export(h.ctx, &buf, testUser, "xml")
		if !errors.Is(err, models.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
		if buf.Len() != 0 {
			t.Error("nothing should be written for an unsupported format")
		}
	})
}

func BenchmarkImport_SampleNDJSON(b *testing.B) {
	raw, err := os.ReadFile(testdataPath(b, "ideas_sample.ndjson"))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h := newTestHarness(b)
		if _, err := h.services.Import.Import(h.ctx, testUser, bytes.NewReader(raw)); err != nil {
			b.Fatal(err)
		}
	}
}
