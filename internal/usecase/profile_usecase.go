package usecase

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/fadilmartias/studypath/internal/dto"
	"github.com/fadilmartias/studypath/internal/model"
	"github.com/fadilmartias/studypath/internal/service"
	"github.com/fadilmartias/studypath/internal/util"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const profileFormMessage = "profile is invalid"

func init() {
	_ = util.Validate.RegisterValidation("financial_situation", func(fl validator.FieldLevel) bool {
		return model.FinancialSituation(fl.Field().String()).IsValid()
	})
	util.RegisterCustomTranslation("financial_situation", "{0} must be one of excellent, good, needs_scholarship, limited")
	util.RegisterCustomTranslation("ltefield", "{0} cannot exceed total_credits", true)
}

type ProfileUsecase struct {
	advisor service.AdvisorServiceInterface
	log     *zap.Logger
}

func NewProfileUsecase(advisor service.AdvisorServiceInterface, log *zap.Logger) *ProfileUsecase {
	return &ProfileUsecase{advisor: advisor, log: log.Named("ProfileUsecase")}
}

// Normalize turns a draft into a profile ready to send, or returns a *util.FormError.
func Normalize(draft dto.ProfileDraft) (model.StudentProfile, error) {
	formErr := util.NewFormError(profileFormMessage, nil)
	profile := model.StudentProfile{
		Name:               strings.TrimSpace(draft.Name),
		Email:              strings.TrimSpace(draft.Email),
		University:         strings.TrimSpace(draft.University),
		Faculty:            strings.TrimSpace(draft.Faculty),
		Achievements:       util.ExtractList(draft.Achievements),
		Extracurriculars:   util.ExtractList(draft.Extracurriculars),
		PreferredCountries: util.ExtractList(draft.PreferredCountries),
		FinancialSituation: model.FinancialSituation(strings.TrimSpace(draft.FinancialSituation)),
		CareerGoals:        strings.TrimSpace(draft.CareerGoals),
	}

	if gpa, err := strconv.ParseFloat(strings.TrimSpace(draft.GPA), 64); err != nil || math.IsNaN(gpa) {
		formErr.Add("gpa", "gpa must be a number between 0 and 4")
	} else {
		profile.GPA = &gpa
	}
	if total, err := strconv.Atoi(strings.TrimSpace(draft.TotalCredits)); err != nil {
		formErr.Add("total_credits", "total_credits must be a whole number")
	} else {
		profile.TotalCredits = total
	}
	if completed, err := strconv.Atoi(strings.TrimSpace(draft.CompletedCredits)); err != nil {
		formErr.Add("completed_credits", "completed_credits must be a whole number")
	} else {
		profile.CompletedCredits = completed
	}

	if err := util.ValidateStruct(profileFormMessage, profile); err != nil {
		var fieldErr *util.FormError
		if !errors.As(err, &fieldErr) {
			return model.StudentProfile{}, err
		}
		_, badTotal := formErr.Errors["total_credits"]
		if _, ok := fieldErr.Errors["total_credits"]; ok {
			badTotal = true
		}
		for field, msg := range fieldErr.Errors {
			// a non-negative completed count can only fail the order check, which needs a valid total
			if field == "completed_credits" && badTotal && profile.CompletedCredits >= 0 {
				continue
			}
			formErr.Add(field, msg)
		}
	}
	if formErr.HasErrors() {
		return model.StudentProfile{}, formErr
	}
	return profile, nil
}

// Submit validates the draft and saves it. A nil existing profile (or one without an id)
// creates a new record; otherwise the existing record is updated. The returned profile is
// the service's canonical copy.
func (uc *ProfileUsecase) Submit(ctx context.Context, draft dto.ProfileDraft, existing *model.StudentProfile) (*model.StudentProfile, error) {
	profile, err := Normalize(draft)
	if err != nil {
		uc.log.Debug("Profile draft rejected", zap.Error(err))
		return nil, err
	}

	if existing != nil && existing.ID != "" {
		saved, err := uc.advisor.UpdateStudent(ctx, existing.ID, profile)
		if err != nil {
			uc.log.Error("Failed to update profile", zap.String("student_id", existing.ID), zap.Error(err))
			return nil, err
		}
		return saved, nil
	}

	saved, err := uc.advisor.CreateStudent(ctx, profile)
	if err != nil {
		uc.log.Error("Failed to create profile", zap.Error(err))
		return nil, err
	}
	uc.log.Info("Profile created", zap.String("student_id", saved.ID))
	return saved, nil
}

// DraftFromProfile prefills the edit form.
func DraftFromProfile(p *model.StudentProfile) dto.ProfileDraft {
	if p == nil {
		return dto.ProfileDraft{}
	}
	draft := dto.ProfileDraft{
		Name:               p.Name,
		Email:              p.Email,
		University:         p.University,
		Faculty:            p.Faculty,
		TotalCredits:       strconv.Itoa(p.TotalCredits),
		CompletedCredits:   strconv.Itoa(p.CompletedCredits),
		Achievements:       util.JoinList(p.Achievements),
		Extracurriculars:   util.JoinList(p.Extracurriculars),
		PreferredCountries: util.JoinList(p.PreferredCountries),
		FinancialSituation: string(p.FinancialSituation),
		CareerGoals:        p.CareerGoals,
	}
	if p.GPA != nil {
		draft.GPA = strconv.FormatFloat(*p.GPA, 'f', -1, 64)
	}
	return draft
}

// Completeness is the share of the eight profile checklist items that are filled in, as a
// rounded percentage. It is recomputed on every read.
func Completeness(p *model.StudentProfile) int {
	if p == nil {
		return 0
	}
	checks := []bool{
		strings.TrimSpace(p.Name) != "",
		strings.TrimSpace(p.University) != "",
		strings.TrimSpace(p.Faculty) != "",
		p.GPA != nil && *p.GPA != 0,
		len(p.Achievements) > 0,
		len(p.Extracurriculars) > 0,
		len(p.PreferredCountries) > 0,
		strings.TrimSpace(p.CareerGoals) != "",
	}
	done := 0
	for _, ok := range checks {
		if ok {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(checks)) * 100))
}
