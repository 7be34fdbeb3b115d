package dto

import (
	"github.com/fadilmartias/studypath/internal/model"
	"github.com/fadilmartias/studypath/internal/response"
)

type SnapshotDTO struct {
	SessionID    string                `json:"session_id"`
	View         string                `json:"view"`           // landing, setup, dashboard
	Mode         string                `json:"mode,omitempty"` // create, edit (setup only)
	Profile      *model.StudentProfile `json:"profile,omitempty"`
	Completeness *int                  `json:"completeness,omitempty"`
	Draft        *ProfileDraft         `json:"draft,omitempty"`
	Dashboard    *DashboardDTO         `json:"dashboard,omitempty"`
}

type DashboardDTO struct {
	Chat               []model.ChatEntry   `json:"chat"`
	Recommendations    *RecommendationDTO  `json:"recommendations"`
	Universities       []model.University  `json:"universities"`
	UniversitiesWindow response.Window     `json:"universities_window"`
	Scholarships       []model.Scholarship `json:"scholarships"`
	ScholarshipsWindow response.Window     `json:"scholarships_window"`
	Loading            []string            `json:"loading"`
	Errors             map[string]string   `json:"errors,omitempty"`
}

// RecommendationDTO carries SuccessRate as null when there are no probabilities to average.
type RecommendationDTO struct {
	AcceptanceProbabilities []model.InstitutionProbability `json:"acceptance_probabilities"`
	SuggestedImprovements   []string                       `json:"suggested_improvements"`
	SuccessRate             *int                           `json:"success_rate"`
	RecommendedUniversities []string                       `json:"recommended_universities,omitempty"`
	RecommendedScholarships []string                       `json:"recommended_scholarships,omitempty"`
	Timeline                string                         `json:"timeline,omitempty"`
	GeneratedAt             model.Timestamp                `json:"generated_at,omitzero"`
}
