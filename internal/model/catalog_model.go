package model

type University struct {
	ID                    string   `json:"id"`
	Name                  string   `json:"name"`
	Country               string   `json:"country"`
	Ranking               int      `json:"ranking"`
	Programs              []string `json:"programs"`
	AcceptanceRate        float64  `json:"acceptance_rate"` // fraction, e.g. 0.07
	TuitionFee            float64  `json:"tuition_fee"`
	ScholarshipsAvailable bool     `json:"scholarships_available"`
	LanguageRequirements  []string `json:"language_requirements"`
	MinGPA                float64  `json:"min_gpa"`
	ApplicationDeadline   string   `json:"application_deadline"`
}

type Scholarship struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Provider     string   `json:"provider"`
	Countries    []string `json:"countries"`
	Fields       []string `json:"fields"`
	Amount       float64  `json:"amount"`
	Requirements []string `json:"requirements"`
	Deadline     string   `json:"deadline"`
	Description  string   `json:"description"`
}

type UniversityFilter struct {
	Country string
	Program string
}

type ScholarshipFilter struct {
	Country string
	Field   string
}
