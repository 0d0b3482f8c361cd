package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/content-ideas-api/internal/models"
)

// Field limits for idea payloads
const (
	MaxKeywordLength = 200
	MaxTitleLength   = 300
	MaxListItems     = 50
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Validator checks idea payloads within one batch
type Validator struct {
	articleIDCache map[string]bool
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		articleIDCache: make(map[string]bool),
	}
}

// ValidateUser checks that a user id is an email address. User ids name the
// per-user document, so anything else is rejected.
func ValidateUser(user string) error {
	if strings.TrimSpace(user) == "" {
		return fmt.Errorf("%w: user is required", models.ErrValidation)
	}
	if !emailRegex.MatchString(user) {
		return fmt.Errorf("%w: invalid user email %q", models.ErrValidation, user)
	}
	return nil
}

// ValidateKeyword rejects blank keywords
func ValidateKeyword(keyword string) error {
	if models.MergeKey(keyword) == "" {
		return fmt.Errorf("%w: keyword is required", models.ErrValidation)
	}
	if utf8.RuneCountInString(strings.TrimSpace(keyword)) > MaxKeywordLength {
		return fmt.Errorf("%w: keyword exceeds %d characters", models.ErrValidation, MaxKeywordLength)
	}
	return nil
}

// ParseStatus resolves a status name; an empty value means draft when allowEmpty is set
func ParseStatus(value string, allowEmpty bool) (models.ArticleStatus, error) {
	if allowEmpty && strings.TrimSpace(value) == "" {
		return models.StatusDraft, nil
	}
	status, ok := models.ParseStatus(value)
	if !ok {
		return "", fmt.Errorf("%w: invalid status %q, must be one of: draft, reviewed, published, archived", models.ErrValidation, value)
	}
	return status, nil
}

// ValidateIdeaPayload validates one idea record of an import or merge batch
func (v *Validator) ValidateIdeaPayload(p *models.IdeaPayload, lineNum int) []ValidationError {
	var errors []ValidationError

	// Validate keyword
	if models.MergeKey(p.Keyword) == "" {
		errors = append(errors, ValidationError{Field: "keyword", Message: "keyword is required"})
	} else if utf8.RuneCountInString(strings.TrimSpace(p.Keyword)) > MaxKeywordLength {
		errors = append(errors, ValidationError{
			Field:   "keyword",
			Message: fmt.Sprintf("keyword exceeds maximum of %d characters", MaxKeywordLength),
		})
	}

	// Validate title
	if utf8.RuneCountInString(p.Title) > MaxTitleLength {
		errors = append(errors, ValidationError{
			Field:   "titulo",
			Message: fmt.Sprintf("titulo exceeds maximum of %d characters", MaxTitleLength),
		})
	}

	// Validate lists
	lists := []struct {
		field string
		items []string
	}{
		{"palabras_clave", p.Keywords},
		{"h2_sugeridos", p.SuggestedHeadings},
		{"tips_seo", p.SEOTips},
	}
	for _, l := range lists {
		if len(l.items) > MaxListItems {
			errors = append(errors, ValidationError{
				Field:   l.field,
				Message: fmt.Sprintf("%s exceeds maximum of %d items (has %d)", l.field, MaxListItems, len(l.items)),
			})
		}
	}

	// Validate supplied article versions
	for i, a := range p.Articles {
		field := fmt.Sprintf("articulos[%d]", i)
		if strings.TrimSpace(a.ID) == "" {
			errors = append(errors, ValidationError{Field: field + ".id", Message: "id is required"})
		} else if v.articleIDCache[a.ID] {
			errors = append(errors, ValidationError{Field: field + ".id", Message: "duplicate article id", Value: a.ID})
		} else {
			v.articleIDCache[a.ID] = true
		}

		if a.Status != "" {
			if _, ok := models.ParseStatus(string(a.Status)); !ok {
				errors = append(errors, ValidationError{
					Field:   field + ".estado",
					Message: "invalid status, must be one of: draft, reviewed, published, archived",
					Value:   a.Status,
				})
			}
		}
	}

	return errors
}

// ToModelErrors attaches a line number to validation errors
func ToModelErrors(errs []ValidationError, lineNum int) []models.ValidationError {
	out := make([]models.ValidationError, 0, len(errs))
	for _, e := range errs {
		out = append(out, models.ValidationError{
			Line:    lineNum,
			Field:   e.Field,
			Message: e.Message,
			Value:   e.Value,
		})
	}
	return out
}
