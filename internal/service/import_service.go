package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/content-ideas-api/internal/models"
	"github.com/content-ideas-api/internal/validation"
)

// maxLineSize bounds a single NDJSON record
const maxLineSize = 4 * 1024 * 1024

// importService is the concrete implementation of ImportService
type importService struct {
	ideas IdeaService
	log   zerolog.Logger
}

// newImportService creates a new ImportService
func newImportService(ideas IdeaService, log zerolog.Logger) *importService {
	return &importService{
		ideas: ideas,
		log:   log.With().Str("service", "import").Logger(),
	}
}

// Import reads idea payloads as NDJSON or as a JSON array, validates each
// record, and merges every valid one in a single write. Invalid records are
// reported with their line (NDJSON) or position (array) and skipped.
func (s *importService) Import(ctx context.Context, user string, r io.Reader) (*models.ImportResult, error) {
	startTime := time.Now()
	if err := validation.ValidateUser(user); err != nil {
		return nil, err
	}

	br := bufio.NewReader(r)
	first, err := firstNonSpace(br)
	if err != nil {
		return nil, fmt.Errorf("%w: read import: %w", models.ErrValidation, err)
	}

	result := &models.ImportResult{}
	validator := validation.NewValidator()
	var accepted []models.IdeaPayload

	handle := func(raw []byte, lineNum int) {
		result.Total++

		var payload models.IdeaPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, models.ValidationError{
				Line:    lineNum,
				Field:   "json",
				Message: fmt.Sprintf("invalid JSON: %v", err),
			})
			return
		}

		if errs := validator.ValidateIdeaPayload(&payload, lineNum); len(errs) > 0 {
			result.Failed++
			result.Errors = append(result.Errors, validation.ToModelErrors(errs, lineNum)...)
			return
		}

		accepted = append(accepted, payload)
	}

	switch first {
	case 0:
		// empty input
	case '[':
		err = s.readArray(ctx, br, handle)
	default:
		err = s.readNDJSON(ctx, br, handle)
	}
	if err != nil {
		return nil, err
	}

	if len(accepted) > 0 {
		newCount, err := s.ideas.Merge(ctx, user, accepted)
		if err != nil {
			s.log.Error().Err(err).Str("user", user).Int("accepted", len(accepted)).Msg("Import merge failed")
			return nil, err
		}
		result.NewCount = newCount
	}
	result.Accepted = len(accepted)
	result.DurationMs = time.Since(startTime).Milliseconds()

	// Calculate error rate for observability
	var errorRate float64
	if result.Total > 0 {
		errorRate = float64(result.Failed) / float64(result.Total) * 100
	}

	s.log.Info().
		Str("user", user).
		Int("total", result.Total).
		Int("accepted", result.Accepted).
		Int("failed", result.Failed).
		Int("new", result.NewCount).
		Float64("error_rate_pct", errorRate).
		Int64("duration_ms", result.DurationMs).
		Msg("Import completed")

	return result, nil
}

// readNDJSON calls handle for every non-blank line
func (s *importService) readNDJSON(ctx context.Context, r io.Reader, handle func([]byte, int)) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for long lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++

		// Respect context cancellation for long-running imports
		if lineNum%1000 == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		handle(line, lineNum)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: read ndjson: %w", models.ErrValidation, err)
	}
	return nil
}

// readArray calls handle for every element of a JSON array, numbered from 1
func (s *importService) readArray(ctx context.Context, r io.Reader, handle func([]byte, int)) error {
	dec := json.NewDecoder(r)
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: read json array: %w", models.ErrValidation, err)
	}

	position := 0
	for dec.More() {
		position++
		if position%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("%w: json array element %d: %w", models.ErrValidation, position, err)
		}
		handle(raw, position)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: unterminated json array: %w", models.ErrValidation, err)
	}
	return nil
}

// firstNonSpace peeks at the first significant byte; 0 means empty input
func firstNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			return 0, nil
		}
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}
