package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fadilmartias/studypath/internal/config"
	"github.com/fadilmartias/studypath/internal/model"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

type AdvisorServiceInterface interface {
	Ping(ctx context.Context) (string, error)
	CreateStudent(ctx context.Context, profile model.StudentProfile) (*model.StudentProfile, error)
	UpdateStudent(ctx context.Context, id string, profile model.StudentProfile) (*model.StudentProfile, error)
	ListChat(ctx context.Context, studentID string) ([]model.ChatEntry, error)
	PostChat(ctx context.Context, studentID, message string) (*model.ChatEntry, error)
	GenerateRecommendations(ctx context.Context, studentID string) (*model.RecommendationSummary, error)
	ListUniversities(ctx context.Context, filter model.UniversityFilter) ([]model.University, error)
	ListScholarships(ctx context.Context, filter model.ScholarshipFilter) ([]model.Scholarship, error)
}

var _ AdvisorServiceInterface = (*AdvisorService)(nil)

// APIError is a non-2xx answer from the advisory API.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("advisor api returned %d: %s", e.StatusCode, e.Detail)
}

func newAPIError(resp *resty.Response) *APIError {
	detail := gjson.GetBytes(resp.Body(), "detail")
	msg := detail.String()
	if detail.IsArray() {
		msg = joinValidationDetail(detail)
	}
	if !detail.Exists() || msg == "" {
		msg = http.StatusText(resp.StatusCode())
	}
	return &APIError{StatusCode: resp.StatusCode(), Detail: msg}
}

// joinValidationDetail flattens a validation error list into "field: msg; field: msg".
func joinValidationDetail(detail gjson.Result) string {
	var parts []string
	detail.ForEach(func(_, item gjson.Result) bool {
		msg := item.Get("msg").String()
		if msg == "" {
			return true
		}
		if loc := item.Get("loc").Array(); len(loc) > 0 {
			if field := loc[len(loc)-1].String(); field != "body" {
				msg = field + ": " + msg
			}
		}
		parts = append(parts, msg)
		return true
	})
	return strings.Join(parts, "; ")
}

type AdvisorService struct {
	client *resty.Client
	log    *zap.Logger
}

func NewAdvisorService(cfg *config.AdvisorConfig, log *zap.Logger) *AdvisorService {
	return newAdvisorService(strings.TrimSuffix(cfg.BaseURL, "/")+"/api", cfg.Timeout, log)
}

func newAdvisorService(apiURL string, timeout time.Duration, log *zap.Logger) *AdvisorService {
	client := resty.New().
		SetBaseURL(apiURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	return &AdvisorService{
		client: client,
		log:    log.Named("AdvisorService"),
	}
}

// studentPayload is the create/update body; id and timestamps are owned by the service.
// financial_situation is always sent, as "" when unset, so an edit can clear it.
type studentPayload struct {
	Name               string                   `json:"name"`
	Email              string                   `json:"email"`
	University         string                   `json:"university"`
	Faculty            string                   `json:"faculty"`
	GPA                *float64                 `json:"gpa"`
	TotalCredits       int                      `json:"total_credits"`
	CompletedCredits   int                      `json:"completed_credits"`
	Achievements       []string                 `json:"achievements"`
	Extracurriculars   []string                 `json:"extracurriculars"`
	PreferredCountries []string                 `json:"preferred_countries"`
	FinancialSituation model.FinancialSituation `json:"financial_situation"`
	CareerGoals        string                   `json:"career_goals"`
}

func toStudentPayload(p model.StudentProfile) studentPayload {
	return studentPayload{
		Name:               p.Name,
		Email:              p.Email,
		University:         p.University,
		Faculty:            p.Faculty,
		GPA:                p.GPA,
		TotalCredits:       p.TotalCredits,
		CompletedCredits:   p.CompletedCredits,
		Achievements:       nonNil(p.Achievements),
		Extracurriculars:   nonNil(p.Extracurriculars),
		PreferredCountries: nonNil(p.PreferredCountries),
		FinancialSituation: p.FinancialSituation,
		CareerGoals:        p.CareerGoals,
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func (s *AdvisorService) Ping(ctx context.Context) (string, error) {
	resp, err := s.client.R().SetContext(ctx).Get("/")
	if err != nil {
		return "", fmt.Errorf("ping advisor api: %w", err)
	}
	if resp.IsError() {
		return "", newAPIError(resp)
	}
	return gjson.GetBytes(resp.Body(), "message").String(), nil
}

func (s *AdvisorService) CreateStudent(ctx context.Context, profile model.StudentProfile) (*model.StudentProfile, error) {
	var created model.StudentProfile
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(toStudentPayload(profile)).
		SetResult(&created).
		Post("/students")
	if err != nil {
		s.log.Error("Failed to create student profile", zap.Error(err))
		return nil, fmt.Errorf("create student: %w", err)
	}
	if resp.IsError() {
		apiErr := newAPIError(resp)
		s.log.Warn("Advisor api rejected student profile", zap.Int("status_code", apiErr.StatusCode), zap.String("detail", apiErr.Detail))
		return nil, apiErr
	}
	if created.ID == "" {
		return nil, fmt.Errorf("create student: response carries no id")
	}
	s.log.Debug("Student profile created", zap.String("student_id", created.ID))
	return &created, nil
}

func (s *AdvisorService) UpdateStudent(ctx context.Context, id string, profile model.StudentProfile) (*model.StudentProfile, error) {
	if id == "" {
		return nil, fmt.Errorf("update student: empty id")
	}
	var updated model.StudentProfile
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetBody(toStudentPayload(profile)).
		SetResult(&updated).
		Put("/students/{id}")
	if err != nil {
		s.log.Error("Failed to update student profile", zap.String("student_id", id), zap.Error(err))
		return nil, fmt.Errorf("update student %s: %w", id, err)
	}
	if resp.IsError() {
		apiErr := newAPIError(resp)
		s.log.Warn("Advisor api rejected profile update", zap.String("student_id", id), zap.Int("status_code", apiErr.StatusCode))
		return nil, apiErr
	}
	return &updated, nil
}

func (s *AdvisorService) ListChat(ctx context.Context, studentID string) ([]model.ChatEntry, error) {
	var entries []model.ChatEntry
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("student_id", studentID).
		SetResult(&entries).
		Get("/chat/{student_id}")
	if err != nil {
		return nil, fmt.Errorf("list chat for %s: %w", studentID, err)
	}
	if resp.IsError() {
		return nil, newAPIError(resp)
	}
	return entries, nil
}

func (s *AdvisorService) PostChat(ctx context.Context, studentID, message string) (*model.ChatEntry, error) {
	var entry model.ChatEntry
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"student_id": studentID,
			"message":    message,
		}).
		SetResult(&entry).
		Post("/chat")
	if err != nil {
		return nil, fmt.Errorf("post chat for %s: %w", studentID, err)
	}
	if resp.IsError() {
		return nil, newAPIError(resp)
	}
	return &entry, nil
}

func (s *AdvisorService) GenerateRecommendations(ctx context.Context, studentID string) (*model.RecommendationSummary, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("student_id", studentID).
		Post("/recommendations/{student_id}")
	if err != nil {
		return nil, fmt.Errorf("generate recommendations for %s: %w", studentID, err)
	}
	if resp.IsError() {
		return nil, newAPIError(resp)
	}
	summary, err := parseRecommendation(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("generate recommendations for %s: %w", studentID, err)
	}
	return summary, nil
}

// parseRecommendation reads the recommendation document with gjson so that the
// acceptance_probabilities object keeps the key order the service produced.
func parseRecommendation(body []byte) (*model.RecommendationSummary, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid recommendation json")
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return nil, fmt.Errorf("recommendation is not an object")
	}

	summary := &model.RecommendationSummary{
		ID:                      doc.Get("id").String(),
		StudentID:               doc.Get("student_id").String(),
		AcceptanceProbabilities: []model.InstitutionProbability{},
		SuggestedImprovements:   []string{},
	}

	doc.Get("acceptance_probabilities").ForEach(func(key, value gjson.Result) bool {
		summary.AcceptanceProbabilities = append(summary.AcceptanceProbabilities, model.InstitutionProbability{
			Institution: key.String(),
			Probability: value.Float(),
		})
		return true
	})
	doc.Get("suggested_improvements").ForEach(func(_, value gjson.Result) bool {
		summary.SuggestedImprovements = append(summary.SuggestedImprovements, value.String())
		return true
	})

	recs := doc.Get("recommendations")
	summary.RecommendedUniversities = names(recs.Get("universities"))
	summary.RecommendedScholarships = names(recs.Get("scholarships"))
	if timeline := recs.Get("timeline"); timeline.Exists() {
		if timeline.Type == gjson.String {
			summary.Timeline = timeline.String()
		} else {
			summary.Timeline = timeline.Raw
		}
	}

	if generated := doc.Get("generated_at"); generated.Exists() {
		if err := summary.GeneratedAt.UnmarshalJSON([]byte(generated.Raw)); err != nil {
			return nil, err
		}
	}
	return summary, nil
}

// names flattens a free-form list that may hold plain strings or objects with a name.
func names(list gjson.Result) []string {
	if !list.IsArray() {
		return nil
	}
	var out []string
	list.ForEach(func(_, item gjson.Result) bool {
		switch {
		case item.Type == gjson.String:
			out = append(out, item.String())
		case item.IsObject():
			if name := item.Get("name"); name.Exists() {
				out = append(out, name.String())
			}
		}
		return true
	})
	return out
}

func (s *AdvisorService) ListUniversities(ctx context.Context, filter model.UniversityFilter) ([]model.University, error) {
	var universities []model.University
	req := s.client.R().SetContext(ctx).SetResult(&universities)
	if filter.Country != "" {
		req.SetQueryParam("country", filter.Country)
	}
	if filter.Program != "" {
		req.SetQueryParam("program", filter.Program)
	}
	resp, err := req.Get("/universities")
	if err != nil {
		return nil, fmt.Errorf("list universities: %w", err)
	}
	if resp.IsError() {
		return nil, newAPIError(resp)
	}
	return universities, nil
}

func (s *AdvisorService) ListScholarships(ctx context.Context, filter model.ScholarshipFilter) ([]model.Scholarship, error) {
	var scholarships []model.Scholarship
	req := s.client.R().SetContext(ctx).SetResult(&scholarships)
	if filter.Country != "" {
		req.SetQueryParam("country", filter.Country)
	}
	if filter.Field != "" {
		req.SetQueryParam("field", filter.Field)
	}
	resp, err := req.Get("/scholarships")
	if err != nil {
		return nil, fmt.Errorf("list scholarships: %w", err)
	}
	if resp.IsError() {
		return nil, newAPIError(resp)
	}
	return scholarships, nil
}
