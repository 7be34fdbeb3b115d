package model

import (
	"encoding/json"
	"fmt"
)

type FinancialSituation string

const (
	FinancialUnset            FinancialSituation = ""
	FinancialExcellent        FinancialSituation = "excellent"
	FinancialGood             FinancialSituation = "good"
	FinancialNeedsScholarship FinancialSituation = "needs_scholarship"
	FinancialLimited          FinancialSituation = "limited"
)

var FinancialSituations = []FinancialSituation{
	FinancialExcellent,
	FinancialGood,
	FinancialNeedsScholarship,
	FinancialLimited,
}

// IsValid reports whether f is one of the known situations or unset.
func (f FinancialSituation) IsValid() bool {
	if f == FinancialUnset {
		return true
	}
	for _, known := range FinancialSituations {
		if f == known {
			return true
		}
	}
	return false
}

func ParseFinancialSituation(s string) (FinancialSituation, error) {
	f := FinancialSituation(s)
	if !f.IsValid() {
		return FinancialUnset, fmt.Errorf("unknown financial situation %q", s)
	}
	return f, nil
}

func (f *FinancialSituation) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("financial_situation: %w", err)
	}
	if raw == nil {
		*f = FinancialUnset
		return nil
	}
	parsed, err := ParseFinancialSituation(*raw)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

type StudentProfile struct {
	ID                 string             `json:"id,omitempty"`
	Name               string             `json:"name"`
	Email              string             `json:"email"`
	University         string             `json:"university"`
	Faculty            string             `json:"faculty"`
	GPA                *float64           `json:"gpa" validate:"required,gte=0,lte=4"`
	TotalCredits       int                `json:"total_credits" validate:"gte=0"`
	CompletedCredits   int                `json:"completed_credits" validate:"gte=0,ltefield=TotalCredits"`
	Achievements       []string           `json:"achievements"`
	Extracurriculars   []string           `json:"extracurriculars"`
	PreferredCountries []string           `json:"preferred_countries"`
	FinancialSituation FinancialSituation `json:"financial_situation" validate:"financial_situation"`
	CareerGoals        string             `json:"career_goals"`
	CreatedAt          Timestamp          `json:"created_at,omitzero"`
	UpdatedAt          Timestamp          `json:"updated_at,omitzero"`
}

// Clone returns a copy that shares no slices with p.
func (p *StudentProfile) Clone() *StudentProfile {
	if p == nil {
		return nil
	}
	c := *p
	if p.GPA != nil {
		gpa := *p.GPA
		c.GPA = &gpa
	}
	c.Achievements = append([]string(nil), p.Achievements...)
	c.Extracurriculars = append([]string(nil), p.Extracurriculars...)
	c.PreferredCountries = append([]string(nil), p.PreferredCountries...)
	return &c
}
