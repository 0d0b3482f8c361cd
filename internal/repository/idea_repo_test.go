package repository

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/content-ideas-api/internal/models"
)

func newTestIdeaRepo(t *testing.T) (*fileIdeaRepo, string) {
	t.Helper()
	dataDir := t.TempDir()
	repo, err := NewFileIdeaRepo(dataDir)
	require.NoError(t, err)
	return repo.(*fileIdeaRepo), dataDir
}

func TestFileIdeaRepo_LoadMissing(t *testing.T) {
	repo, _ := newTestIdeaRepo(t)

	ideas, err := repo.Load(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, ideas)
}

func TestFileIdeaRepo_LoadEmptyFile(t *testing.T) {
	repo, _ := newTestIdeaRepo(t)
	require.NoError(t, os.WriteFile(repo.Path("ana@example.com"), []byte("  \n"), 0o644))

	ideas, err := repo.Load(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Nil(t, ideas)
}

func TestFileIdeaRepo_LoadCorrupt(t *testing.T) {
	repo, _ := newTestIdeaRepo(t)
	require.NoError(t, os.WriteFile(repo.Path("ana@example.com"), []byte("{not json"), 0o644))

	_, err := repo.Load(context.Background(), "ana@example.com")
	assert.Error(t, err)
}

func TestFileIdeaRepo_SaveAndLoad(t *testing.T) {
	repo, dataDir := newTestIdeaRepo(t)
	ctx := context.Background()
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	idea := models.NewIdea("café barato")
	idea.Articles = []models.Article{{
		ID:        "a1",
		Title:     "Café",
		Preview:   "Texto",
		HTML:      "<h1>Café</h1><p>Texto & más</p>",
		Status:    models.StatusDraft,
		CreatedAt: created,
	}}
	idea.SyncLatest()

	require.NoError(t, repo.Save(ctx, "ana@example.com", []models.Idea{idea}))

	// The document lives at <data_dir>/ideas/<email with @ replaced>.json
	path := filepath.Join(dataDir, "ideas", "ana_at_example.com.json")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"titulo": "café barato"`)
	assert.Contains(t, string(raw), "<h1>Café</h1>", "html must not be escaped")

	loaded, err := repo.Load(ctx, "ana@example.com")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "café barato", loaded[0].Keyword)
	require.Len(t, loaded[0].Articles, 1)
	assert.Equal(t, "a1", loaded[0].Articles[0].ID)
	assert.True(t, created.Equal(loaded[0].Articles[0].CreatedAt))
	assert.Equal(t, idea.LatestHTML, loaded[0].LatestHTML)
}

func TestFileIdeaRepo_SaveNilWritesEmptyList(t *testing.T) {
	repo, _ := newTestIdeaRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "ana@example.com", nil))

	raw, err := os.ReadFile(repo.Path("ana@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(raw))
}

func TestFileIdeaRepo_SaveLeavesNoTempFiles(t *testing.T) {
	repo, _ := newTestIdeaRepo(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Save(ctx, "ana@example.com", []models.Idea{models.NewIdea("seo")}))
	}

	entries, err := os.ReadDir(repo.dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ana_at_example.com.json", entries[0].Name())
}

func TestFileIdeaRepo_ConcurrentSavesStayReadable(t *testing.T) {
	repo, _ := newTestIdeaRepo(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ideas := make([]models.Idea, n+1)
			for j := range ideas {
				ideas[j] = models.NewIdea("kw")
			}
			assert.NoError(t, repo.Save(ctx, "ana@example.com", ideas))
		}(i)
	}
	wg.Wait()

	// Whichever writer won, the document is a complete collection
	loaded, err := repo.Load(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, loaded)
}

func TestFileIdeaRepo_Users(t *testing.T) {
	repo, _ := newTestIdeaRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "zoe@example.com", nil))
	require.NoError(t, repo.Save(ctx, "ana@example.com", nil))
	require.NoError(t, os.WriteFile(filepath.Join(repo.dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(repo.dir, "backup.json"), 0o755))

	users, err := repo.Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ana@example.com", "zoe@example.com"}, users)
}

func TestFileIdeaRepo_CanceledContext(t *testing.T) {
	repo, _ := newTestIdeaRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Load(ctx, "ana@example.com")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, repo.Save(ctx, "ana@example.com", nil), context.Canceled)
}
