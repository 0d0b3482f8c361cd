package models

// Counters holds a user's persistent historical totals
type Counters struct {
	IdeasGenerated    int `json:"ideas_generados"`
	ArticlesGenerated int `json:"articulos_generados"`
}

// Counts is the reconciled view shown to users: for each total, the larger
// of the persistent counter and the value computed from the stored ideas.
type Counts struct {
	Ideas    int `json:"ideas_generados"`
	Articles int `json:"articulos_generados"`
}

// Reconcile combines persistent counters with the computed totals
func Reconcile(persisted Counters, computedIdeas, computedArticles int) Counts {
	return Counts{
		Ideas:    max(persisted.IdeasGenerated, computedIdeas),
		Articles: max(persisted.ArticlesGenerated, computedArticles),
	}
}

// ComputeCounts derives totals from a user's current collection
func ComputeCounts(ideas []Idea) (ideasTotal, articlesTotal int) {
	for i := range ideas {
		articlesTotal += ideas[i].ContentCount()
	}
	return len(ideas), articlesTotal
}

// RecalibrationResult reports the outcome of recalibrating one user
type RecalibrationResult struct {
	User     string   `json:"user"`
	Previous Counters `json:"previous"`
	Current  Counters `json:"current"`
	Error    string   `json:"error,omitempty"`
}
