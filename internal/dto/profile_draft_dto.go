package dto

// ProfileDraft is the profile form as typed by the student. Numeric fields are raw text and the
// list fields are comma-separated.
type ProfileDraft struct {
	Name               string `json:"name"`
	Email              string `json:"email"`
	University         string `json:"university"`
	Faculty            string `json:"faculty"`
	GPA                string `json:"gpa"`
	TotalCredits       string `json:"total_credits"`
	CompletedCredits   string `json:"completed_credits"`
	Achievements       string `json:"achievements"`
	Extracurriculars   string `json:"extracurriculars"`
	PreferredCountries string `json:"preferred_countries"`
	FinancialSituation string `json:"financial_situation"`
	CareerGoals        string `json:"career_goals"`
}

type ChatRequestDTO struct {
	Message string `json:"message"`
}
