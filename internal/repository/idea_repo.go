package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/content-ideas-api/internal/models"
)

const (
	ideasDirName = "ideas"
	fileExt      = ".json"
	lockExt      = ".lock"
	atMarker     = "_at_"
)

// fileIdeaRepo stores each user's collection as an indented JSON document
type fileIdeaRepo struct {
	dir string
}

// NewFileIdeaRepo creates an IdeaRepository rooted at <dataDir>/ideas
func NewFileIdeaRepo(dataDir string) (IdeaRepository, error) {
	dir := filepath.Join(dataDir, ideasDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create ideas dir: %w", err)
	}
	return &fileIdeaRepo{dir: dir}, nil
}

// Path returns the document path for a user
func (r *fileIdeaRepo) Path(user string) string {
	return filepath.Join(r.dir, fileName(user))
}

// Load reads and decodes the user's document
func (r *fileIdeaRepo) Load(ctx context.Context, user string) ([]models.Idea, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(r.Path(user))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ideas: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var ideas []models.Idea
	if err := json.Unmarshal(raw, &ideas); err != nil {
		return nil, fmt.Errorf("decode ideas: %w", err)
	}
	return ideas, nil
}

// Save writes to a temp file in the same directory and renames it over the
// document, so readers see either the old or the new collection.
func (r *fileIdeaRepo) Save(ctx context.Context, user string, ideas []models.Idea) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ideas == nil {
		ideas = []models.Idea{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ideas); err != nil {
		return fmt.Errorf("encode ideas: %w", err)
	}

	tmp, err := os.CreateTemp(r.dir, fileName(user)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write ideas: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync ideas: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, r.Path(user)); err != nil {
		return fmt.Errorf("replace ideas: %w", err)
	}
	return nil
}

// Users lists users by scanning document names
func (r *fileIdeaRepo) Users(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("list ideas dir: %w", err)
	}

	var users []string
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		users = append(users, userFromFileName(name))
	}
	sort.Strings(users)
	return users, nil
}

// fileName maps a user id (an email) to its document name
func fileName(user string) string {
	return strings.ReplaceAll(user, "@", atMarker) + fileExt
}

func userFromFileName(name string) string {
	return strings.ReplaceAll(strings.TrimSuffix(name, fileExt), atMarker, "@")
}
