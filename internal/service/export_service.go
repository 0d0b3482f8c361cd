package service

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/content-ideas-api/internal/models"
)

// Export formats
const (
	FormatNDJSON = "ndjson"
	FormatJSON   = "json"
	FormatCSV    = "csv"
)

// csvListSeparator joins list fields inside one CSV cell
const csvListSeparator = "; "

// exportService is the concrete implementation of ExportService
type exportService struct {
	ideas IdeaService
	log   zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(ideas IdeaService, log zerolog.Logger) *exportService {
	return &exportService{
		ideas: ideas,
		log:   log.With().Str("service", "export").Logger(),
	}
}

// ContentType returns the MIME type of an export format, or "" if unsupported
func ContentType(format string) string {
	switch format {
	case FormatNDJSON:
		return "application/x-ndjson"
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	default:
		return ""
	}
}

// Export writes the user's collection in the given format and returns the
// number of ideas written.
func (s *exportService) Export(ctx context.Context, w io.Writer, user, format string) (int, error) {
	if ContentType(format) == "" {
		return 0, fmt.Errorf("%w: unsupported format: %s", models.ErrValidation, format)
	}

	ideas, err := s.ideas.Load(ctx, user)
	if err != nil {
		return 0, err
	}

	s.log.Info().Str("user", user).Str("format", format).Msg("Starting ideas export")

	bw := bufio.NewWriter(w)
	var count int
	switch format {
	case FormatNDJSON:
		count, err = s.writeNDJSON(ctx, bw, ideas)
	case FormatJSON:
		count, err = s.writeJSON(ctx, bw, ideas)
	case FormatCSV:
		count, err = s.writeCSV(ctx, bw, ideas)
	}
	if flushErr := bw.Flush(); err == nil {
		err = flushErr
	}

	s.log.Info().Str("user", user).Int("count", count).Msg("Ideas export completed")
	return count, err
}

func (s *exportService) writeNDJSON(ctx context.Context, w io.Writer, ideas []models.Idea) (int, error) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	for i := range ideas {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := enc.Encode(&ideas[i]); err != nil {
			return i, err
		}
	}
	return len(ideas), nil
}

func (s *exportService) writeJSON(ctx context.Context, w io.Writer, ideas []models.Idea) (int, error) {
	if _, err := io.WriteString(w, "["); err != nil {
		return 0, err
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i := range ideas {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return i, err
			}
		}
		if err := enc.Encode(&ideas[i]); err != nil {
			return i, err
		}
	}

	_, err := io.WriteString(w, "]\n")
	return len(ideas), err
}

func (s *exportService) writeCSV(ctx context.Context, w io.Writer, ideas []models.Idea) (int, error) {
	writer := csv.NewWriter(w)

	// Write header
	header := []string{
		"keyword", "titulo", "palabras_clave", "h2_sugeridos", "tips_seo",
		"articulos", "ultimo_id", "ultimo_titulo", "ultimo_estado", "ultimo_created_at",
	}
	if err := writer.Write(header); err != nil {
		return 0, err
	}

	for i := range ideas {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		idea := &ideas[i]
		row := []string{
			idea.Keyword,
			idea.Title,
			strings.Join(idea.Keywords, csvListSeparator),
			strings.Join(idea.SuggestedHeadings, csvListSeparator),
			strings.Join(idea.SEOTips, csvListSeparator),
			strconv.Itoa(len(idea.Articles)),
			"", "", "", "",
		}
		if len(idea.Articles) > 0 {
			latest := idea.Articles[0]
			row[6] = latest.ID
			row[7] = latest.Title
			row[8] = string(latest.Status)
			if !latest.CreatedAt.IsZero() {
				row[9] = latest.CreatedAt.UTC().Format(time.RFC3339)
			}
		}
		if err := writer.Write(row); err != nil {
			return i, err
		}
	}

	writer.Flush()
	return len(ideas), writer.Error()
}
