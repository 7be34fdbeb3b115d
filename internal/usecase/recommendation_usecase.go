package usecase

import (
	"context"
	"math"
	"sync"

	"github.com/fadilmartias/studypath/internal/model"
	"github.com/fadilmartias/studypath/internal/service"
	"go.uber.org/zap"
)

// RecommendationSession holds the latest recommendation summary of one student.
type RecommendationSession struct {
	advisor service.AdvisorServiceInterface
	log     *zap.Logger

	mu      sync.Mutex
	started uint64
	applied uint64
	summary *model.RecommendationSummary
}

func NewRecommendationSession(advisor service.AdvisorServiceInterface, log *zap.Logger) *RecommendationSession {
	return &RecommendationSession{
		advisor: advisor,
		log:     log.Named("RecommendationSession"),
	}
}

// Refresh asks the service for a freshly computed summary and swaps it in. When refreshes
// overlap, a result never replaces one from a refresh started after it.
func (rs *RecommendationSession) Refresh(ctx context.Context, studentID string) (*model.RecommendationSummary, error) {
	rs.mu.Lock()
	rs.started++
	gen := rs.started
	rs.mu.Unlock()

	summary, err := rs.advisor.GenerateRecommendations(ctx, studentID)
	if err != nil {
		rs.log.Error("Failed to generate recommendations", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()
	if gen < rs.applied {
		rs.log.Debug("Dropping outdated recommendations", zap.String("student_id", studentID), zap.Uint64("generation", gen))
		return rs.summary, nil
	}
	rs.applied = gen
	rs.summary = summary
	return summary, nil
}

// Summary returns the held summary or nil before the first successful refresh.
func (rs *RecommendationSession) Summary() *model.RecommendationSummary {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.summary
}

// AggregateSuccessRate is the mean acceptance probability rounded to a whole percent.
// ok is false when there is nothing to average.
func AggregateSuccessRate(summary *model.RecommendationSummary) (rate int, ok bool) {
	if summary == nil || len(summary.AcceptanceProbabilities) == 0 {
		return 0, false
	}
	var sum float64
	for _, p := range summary.AcceptanceProbabilities {
		sum += p.Probability
	}
	return int(math.Round(sum / float64(len(summary.AcceptanceProbabilities)))), true
}
