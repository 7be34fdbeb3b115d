package usecase

import (
	"context"
	"fmt"
	"slices"

	"github.com/fadilmartias/studypath/internal/model"
	"github.com/fadilmartias/studypath/internal/response"
	"github.com/fadilmartias/studypath/internal/service"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DashboardUniversityLimit  = 6
	DashboardScholarshipLimit = 4
)

// CatalogUsecase lists universities and scholarships. It is shared by all sessions, and
// identical lookups that overlap share one request to the advisory API.
type CatalogUsecase struct {
	advisor service.AdvisorServiceInterface
	log     *zap.Logger
	group   singleflight.Group
}

func NewCatalogUsecase(advisor service.AdvisorServiceInterface, log *zap.Logger) *CatalogUsecase {
	return &CatalogUsecase{advisor: advisor, log: log.Named("CatalogUsecase")}
}

func (uc *CatalogUsecase) Universities(ctx context.Context, filter model.UniversityFilter) ([]model.University, error) {
	key := fmt.Sprintf("universities?country=%s&program=%s", filter.Country, filter.Program)
	v, err := uc.do(ctx, key, func(ctx context.Context) (any, error) {
		return uc.advisor.ListUniversities(ctx, filter)
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]model.University)), nil
}

func (uc *CatalogUsecase) Scholarships(ctx context.Context, filter model.ScholarshipFilter) ([]model.Scholarship, error) {
	key := fmt.Sprintf("scholarships?country=%s&field=%s", filter.Country, filter.Field)
	v, err := uc.do(ctx, key, func(ctx context.Context) (any, error) {
		return uc.advisor.ListScholarships(ctx, filter)
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]model.Scholarship)), nil
}

// do runs fn once per key at a time. The shared call is detached from any single caller's
// cancellation; each caller still stops waiting when its own ctx ends.
func (uc *CatalogUsecase) do(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	ch := uc.group.DoChan(key, func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			uc.log.Error("Catalog lookup failed", zap.String("key", key), zap.Error(res.Err))
			return nil, res.Err
		}
		if res.Shared {
			uc.log.Debug("Catalog lookup shared", zap.String("key", key))
		}
		return res.Val, nil
	}
}

// DashboardUniversities returns the unfiltered list cut to the dashboard size.
func (uc *CatalogUsecase) DashboardUniversities(ctx context.Context) ([]model.University, response.Window, error) {
	all, err := uc.Universities(ctx, model.UniversityFilter{})
	if err != nil {
		return nil, response.Window{}, err
	}
	window := response.NewWindow(DashboardUniversityLimit, len(all))
	return all[:window.Shown], window, nil
}

// DashboardScholarships returns the unfiltered list cut to the dashboard size.
func (uc *CatalogUsecase) DashboardScholarships(ctx context.Context) ([]model.Scholarship, response.Window, error) {
	all, err := uc.Scholarships(ctx, model.ScholarshipFilter{})
	if err != nil {
		return nil, response.Window{}, err
	}
	window := response.NewWindow(DashboardScholarshipLimit, len(all))
	return all[:window.Shown], window, nil
}
