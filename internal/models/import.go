package models

// ImportResult summarizes a bulk idea import
type ImportResult struct {
	Total      int               `json:"total_records"`
	Accepted   int               `json:"accepted"`
	Failed     int               `json:"failed"`
	NewCount   int               `json:"new_count"`
	DurationMs int64             `json:"duration_ms"`
	Errors     []ValidationError `json:"errors,omitempty"`
}
