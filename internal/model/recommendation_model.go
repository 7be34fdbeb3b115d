package model

type InstitutionProbability struct {
	Institution string  `json:"institution"`
	Probability float64 `json:"probability"` // 0-100
}

// RecommendationSummary is replaced wholesale on every fetch and never mutated afterwards.
// AcceptanceProbabilities keeps the order the service sent.
type RecommendationSummary struct {
	ID                      string                   `json:"id,omitempty"`
	StudentID               string                   `json:"student_id"`
	AcceptanceProbabilities []InstitutionProbability `json:"acceptance_probabilities"`
	SuggestedImprovements   []string                 `json:"suggested_improvements"`
	RecommendedUniversities []string                 `json:"recommended_universities,omitempty"`
	RecommendedScholarships []string                 `json:"recommended_scholarships,omitempty"`
	Timeline                string                   `json:"timeline,omitempty"`
	GeneratedAt             Timestamp                `json:"generated_at,omitzero"`
}
