package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fadilmartias/studypath/internal/model"
	"github.com/fadilmartias/studypath/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func universities(n int) []model.University {
	out := make([]model.University, n)
	for i := range out {
		out[i] = model.University{ID: fmt.Sprintf("u%d", i), Name: fmt.Sprintf("University %d", i)}
	}
	return out
}

func scholarships(n int) []model.Scholarship {
	out := make([]model.Scholarship, n)
	for i := range out {
		out[i] = model.Scholarship{ID: fmt.Sprintf("s%d", i)}
	}
	return out
}

func TestDashboardUniversitiesWindow(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		wantShown int
		truncated bool
	}{
		{name: "more than limit", total: 9, wantShown: DashboardUniversityLimit, truncated: true},
		{name: "exactly limit", total: 6, wantShown: 6, truncated: false},
		{name: "fewer", total: 2, wantShown: 2, truncated: false},
		{name: "none", total: 0, wantShown: 0, truncated: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			advisor := new(mocks.AdvisorService)
			advisor.On("ListUniversities", mock.Anything, model.UniversityFilter{}).Return(universities(tt.total), nil)
			uc := NewCatalogUsecase(advisor, zap.NewNop())

			items, window, err := uc.DashboardUniversities(context.Background())
			require.NoError(t, err)
			assert.Len(t, items, tt.wantShown)
			assert.Equal(t, tt.wantShown, window.Shown)
			assert.Equal(t, tt.total, window.Total)
			assert.Equal(t, tt.truncated, window.Truncated)
		})
	}
}

func TestDashboardScholarshipsWindow(t *testing.T) {
	advisor := new(mocks.AdvisorService)
	advisor.On("ListScholarships", mock.Anything, model.ScholarshipFilter{}).Return(scholarships(5), nil)
	uc := NewCatalogUsecase(advisor, zap.NewNop())

	items, window, err := uc.DashboardScholarships(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, DashboardScholarshipLimit)
	assert.Equal(t, "s0", items[0].ID)
	assert.True(t, window.Truncated)
}

func TestCatalogPassesFilters(t *testing.T) {
	advisor := new(mocks.AdvisorService)
	filter := model.UniversityFilter{Country: "Germany", Program: "Physics"}
	advisor.On("ListUniversities", mock.Anything, filter).Return(universities(1), nil).Once()
	advisor.On("ListScholarships", mock.Anything, model.ScholarshipFilter{Field: "Engineering"}).Return(scholarships(2), nil).Once()
	uc := NewCatalogUsecase(advisor, zap.NewNop())

	unis, err := uc.Universities(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, unis, 1)

	sch, err := uc.Scholarships(context.Background(), model.ScholarshipFilter{Field: "Engineering"})
	require.NoError(t, err)
	assert.Len(t, sch, 2)
	advisor.AssertExpectations(t)
}

func TestCatalogError(t *testing.T) {
	advisor := new(mocks.AdvisorService)
	boom := errors.New("unreachable")
	advisor.On("ListScholarships", mock.Anything, mock.Anything).Return(nil, boom)
	uc := NewCatalogUsecase(advisor, zap.NewNop())

	items, _, err := uc.DashboardScholarships(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, items)
}

func TestCatalogSharesConcurrentLookups(t *testing.T) {
	advisor := new(mocks.AdvisorService)
	release := make(chan struct{})
	advisor.On("ListUniversities", mock.Anything, model.UniversityFilter{}).
		Run(func(mock.Arguments) { <-release }).
		Return(universities(3), nil).Once()
	uc := NewCatalogUsecase(advisor, zap.NewNop())

	const callers = 5
	var wg sync.WaitGroup
	results := make([][]model.University, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			items, err := uc.Universities(context.Background(), model.UniversityFilter{})
			assert.NoError(t, err)
			results[i] = items
		}(i)
	}
	// let every caller join the in-flight lookup
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	advisor.AssertNumberOfCalls(t, "ListUniversities", 1)
	for _, items := range results {
		assert.Len(t, items, 3)
	}
	results[0][0].Name = "changed"
	assert.Equal(t, "University 0", results[1][0].Name)
}

func TestCatalogCallerCancellation(t *testing.T) {
	advisor := new(mocks.AdvisorService)
	release := make(chan struct{})
	defer close(release)
	advisor.On("ListUniversities", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(universities(1), nil)
	uc := NewCatalogUsecase(advisor, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := uc.Universities(ctx, model.UniversityFilter{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
