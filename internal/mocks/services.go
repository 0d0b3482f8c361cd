package mocks

import (
	"bytes"
	"context"
	"io"

	"github.com/content-ideas-api/internal/models"
	"github.com/content-ideas-api/internal/service"
)

// MockIdeaService is a mock implementation of IdeaService
type MockIdeaService struct {
	LoadFunc   func(ctx context.Context, user string) ([]models.Idea, error)
	GetFunc    func(ctx context.Context, user, keyword string) (*models.Idea, error)
	MergeFunc  func(ctx context.Context, user string, payloads []models.IdeaPayload) (int, error)
	DeleteFunc func(ctx context.Context, user, keyword string) error
	Merged     [][]models.IdeaPayload
}

// Verify interface compliance
var _ service.IdeaService = (*MockIdeaService)(nil)

func NewMockIdeaService() *MockIdeaService {
	return &MockIdeaService{}
}

func (m *MockIdeaService) Load(ctx context.Context, user string) ([]models.Idea, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, user)
	}
	return []models.Idea{}, nil
}

func (m *MockIdeaService) Get(ctx context.Context, user, keyword string) (*models.Idea, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, user, keyword)
	}
	return nil, models.ErrNotFound
}

func (m *MockIdeaService) Merge(ctx context.Context, user string, payloads []models.IdeaPayload) (int, error) {
	m.Merged = append(m.Merged, payloads)
	if m.MergeFunc != nil {
		return m.MergeFunc(ctx, user, payloads)
	}
	return len(payloads), nil
}

func (m *MockIdeaService) Delete(ctx context.Context, user, keyword string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, user, keyword)
	}
	return nil
}

// MockArticleService is a mock implementation of ArticleService
type MockArticleService struct {
	AppendFunc       func(ctx context.Context, user, keyword, html, status string) (*models.Article, error)
	UpdateStatusFunc func(ctx context.Context, user, keyword, articleID, status string) (*models.Article, error)
	DeleteFunc       func(ctx context.Context, user, keyword, articleID string) error
}

// Verify interface compliance
var _ service.ArticleService = (*MockArticleService)(nil)

func NewMockArticleService() *MockArticleService {
	return &MockArticleService{}
}

func (m *MockArticleService) Append(ctx context.Context, user, keyword, html, status string) (*models.Article, error) {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, user, keyword, html, status)
	}
	return &models.Article{ID: "mock-article", HTML: html, Status: models.StatusDraft}, nil
}

func (m *MockArticleService) UpdateStatus(ctx context.Context, user, keyword, articleID, status string) (*models.Article, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, user, keyword, articleID, status)
	}
	return nil, models.ErrNotFound
}

func (m *MockArticleService) Delete(ctx context.Context, user, keyword, articleID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, user, keyword, articleID)
	}
	return nil
}

// MockCounterService is a mock implementation of CounterService
type MockCounterService struct {
	Counts             map[string]models.Counts
	GetCountsError     error
	RecalibrateFunc    func(ctx context.Context, user string) (*models.RecalibrationResult, error)
	RecalibrateAllFunc func(ctx context.Context) ([]models.RecalibrationResult, error)
	HealthError        error
	Increments         map[string]models.Counters
}

// Verify interface compliance
var _ service.CounterService = (*MockCounterService)(nil)

func NewMockCounterService() *MockCounterService {
	return &MockCounterService{
		Counts:     make(map[string]models.Counts),
		Increments: make(map[string]models.Counters),
	}
}

func (m *MockCounterService) GetCounts(ctx context.Context, user string) (models.Counts, error) {
	if m.GetCountsError != nil {
		return models.Counts{}, m.GetCountsError
	}
	return m.Counts[user], nil
}

func (m *MockCounterService) IncrementIdeas(ctx context.Context, user string, n int) error {
	if n <= 0 {
		return nil
	}
	c := m.Increments[user]
	c.IdeasGenerated += n
	m.Increments[user] = c
	return nil
}

func (m *MockCounterService) IncrementArticles(ctx context.Context, user string) error {
	c := m.Increments[user]
	c.ArticlesGenerated++
	m.Increments[user] = c
	return nil
}

func (m *MockCounterService) Recalibrate(ctx context.Context, user string) (*models.RecalibrationResult, error) {
	if m.RecalibrateFunc != nil {
		return m.RecalibrateFunc(ctx, user)
	}
	return &models.RecalibrationResult{User: user}, nil
}

func (m *MockCounterService) RecalibrateAll(ctx context.Context) ([]models.RecalibrationResult, error) {
	if m.RecalibrateAllFunc != nil {
		return m.RecalibrateAllFunc(ctx)
	}
	return []models.RecalibrationResult{}, nil
}

func (m *MockCounterService) HealthCheck(ctx context.Context) error {
	return m.HealthError
}

// MockImportService is a mock implementation of ImportService
type MockImportService struct {
	ImportFunc func(ctx context.Context, user string, r io.Reader) (*models.ImportResult, error)
	Received   []string
}

// Verify interface compliance
var _ service.ImportService = (*MockImportService)(nil)

func NewMockImportService() *MockImportService {
	return &MockImportService{}
}

func (m *MockImportService) Import(ctx context.Context, user string, r io.Reader) (*models.ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.Received = append(m.Received, string(data))
	if m.ImportFunc != nil {
		return m.ImportFunc(ctx, user, bytes.NewReader(data))
	}
	return &models.ImportResult{}, nil
}

// MockExportService is a mock implementation of ExportService
type MockExportService struct {
	ExportFunc func(ctx context.Context, w io.Writer, user, format string) (int, error)
}

// Verify interface compliance
var _ service.ExportService = (*MockExportService)(nil)

func NewMockExportService() *MockExportService {
	return &MockExportService{}
}

func (m *MockExportService) Export(ctx context.Context, w io.Writer, user, format string) (int, error) {
	if m.ExportFunc != nil {
		return m.ExportFunc(ctx, w, user, format)
	}
	return 0, nil
}
