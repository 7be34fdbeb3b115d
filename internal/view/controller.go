package view

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fadilmartias/studypath/internal/dto"
	"github.com/fadilmartias/studypath/internal/model"
	"github.com/fadilmartias/studypath/internal/response"
	"github.com/fadilmartias/studypath/internal/service"
	"github.com/fadilmartias/studypath/internal/usecase"
	"go.uber.org/zap"
)

type Deps struct {
	Advisor  service.AdvisorServiceInterface
	Profiles *usecase.ProfileUsecase
	Catalog  *usecase.CatalogUsecase
	Log      *zap.Logger
}

// Controller is one user's dashboard session. It owns the view state, runs the effects the
// reducer asks for and keeps the data fetched for the current dashboard visit.
type Controller struct {
	id    string
	deps  Deps
	log   *zap.Logger
	tasks *taskSet
	now   func() time.Time

	mu         sync.Mutex
	state      State
	dash       *dashboard
	chatSeq    uint64
	lastActive time.Time
}

// dashboard holds the sections of one dashboard visit. A new visit gets a new value, so
// results that arrive for an older visit have nowhere to land.
type dashboard struct {
	epoch     uint64
	studentID string

	chat *usecase.ChatSession
	recs *usecase.RecommendationSession

	universities       []model.University
	universitiesWindow response.Window
	scholarships       []model.Scholarship
	scholarshipsWindow response.Window

	loading map[Resource]bool
	errors  map[Resource]string
}

func NewController(id string, deps Deps) *Controller {
	c := &Controller{
		id:    id,
		deps:  deps,
		log:   deps.Log.Named("Controller").With(zap.String("session_id", id)),
		tasks: newTaskSet(),
		now:   time.Now,
		state: Initial(),
	}
	c.lastActive = c.now()
	return c
}

func (c *Controller) ID() string { return c.id }

func (c *Controller) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) touchLocked() {
	c.lastActive = c.now()
}

func (c *Controller) Start() error {
	return c.dispatch(Start{}, nil)
}

// Submit saves the setup form. Create mode creates a profile; edit mode updates the held one.
func (c *Controller) Submit(ctx context.Context, draft dto.ProfileDraft) (*model.StudentProfile, error) {
	c.mu.Lock()
	c.touchLocked()
	if c.state.Screen != ScreenSetup {
		screen := c.state.Screen
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: submit on %s", ErrInvalidTransition, screen)
	}
	epoch := c.state.Epoch
	var existing *model.StudentProfile
	if c.state.Mode == ModeEdit {
		existing = c.state.Profile.Clone()
	}
	c.mu.Unlock()

	saved, err := c.deps.Profiles.Submit(ctx, draft, existing)
	if err != nil {
		return nil, err
	}
	if err := c.dispatch(SubmitSucceeded{Profile: saved}, &epoch); err != nil {
		return nil, err
	}
	return saved.Clone(), nil
}

// Edit opens setup in edit mode and returns the prefilled form.
func (c *Controller) Edit() (dto.ProfileDraft, error) {
	if err := c.dispatch(EditRequested{}, nil); err != nil {
		return dto.ProfileDraft{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return usecase.DraftFromProfile(c.state.Profile), nil
}

func (c *Controller) Cancel() error {
	return c.dispatch(SetupCancelled{}, nil)
}

func (c *Controller) ClearProfile() error {
	return c.dispatch(ProfileCleared{}, nil)
}

// dispatch reduces ev and runs the resulting effects. A non-nil epoch makes the event apply
// only if the screen has not changed since that epoch.
func (c *Controller) dispatch(ev Event, epoch *uint64) error {
	c.mu.Lock()
	c.touchLocked()
	if epoch != nil && *epoch != c.state.Epoch {
		c.mu.Unlock()
		c.log.Debug("Dropping event for a screen that was left", zap.String("event", ev.eventName()))
		return ErrStaleResult
	}
	next, effects, err := Reduce(c.state, ev)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	prev := c.state
	c.state = next
	if next.Screen == ScreenDashboard && next.Epoch != prev.Epoch {
		c.dash = c.newDashboard(next)
	} else if next.Screen != ScreenDashboard {
		c.dash = nil
	}
	c.mu.Unlock()

	c.log.Info("View changed",
		zap.String("event", ev.eventName()),
		zap.String("from", string(prev.Screen)),
		zap.String("to", string(next.Screen)),
		zap.Uint64("epoch", next.Epoch),
	)
	c.run(effects)
	return nil
}

func (c *Controller) newDashboard(s State) *dashboard {
	d := &dashboard{
		epoch:     s.Epoch,
		studentID: s.Profile.ID,
		chat:      usecase.NewChatSession(c.deps.Advisor, c.log),
		recs:      usecase.NewRecommendationSession(c.deps.Advisor, c.log),
		loading:   make(map[Resource]bool),
		errors:    make(map[Resource]string),
	}
	for _, r := range DashboardResources {
		d.loading[r] = true
	}
	return d
}

func (c *Controller) run(effects []Effect) {
	for _, eff := range effects {
		switch e := eff.(type) {
		case CancelScreen:
			if n := c.tasks.cancelScreen(e.Screen); n > 0 {
				c.log.Debug("Cancelled screen tasks", zap.String("screen", string(e.Screen)), zap.Int("count", n))
			}
		case Fetch:
			c.fetch(e)
		}
	}
}

// Refresh reloads one dashboard section on user request.
func (c *Controller) Refresh(resource Resource) error {
	if _, err := ParseResource(string(resource)); err != nil {
		return err
	}
	c.mu.Lock()
	c.touchLocked()
	if c.state.Screen != ScreenDashboard || c.dash == nil {
		c.mu.Unlock()
		return ErrNotOnDashboard
	}
	f := Fetch{Resource: resource, StudentID: c.dash.studentID, Epoch: c.dash.epoch}
	c.dash.loading[resource] = true
	c.mu.Unlock()

	c.fetch(f)
	return nil
}

func (c *Controller) fetch(f Fetch) {
	c.mu.Lock()
	d := c.dash
	c.mu.Unlock()
	if d == nil || d.epoch != f.Epoch {
		return
	}

	key := TaskKey{Screen: ScreenDashboard, Resource: f.Resource}
	err := c.tasks.goKey(key, func(ctx context.Context) {
		switch f.Resource {
		case ResourceChat:
			_ = c.apply(f, d.chat.Load(ctx, f.StudentID), nil)
		case ResourceRecommendations:
			_, err := d.recs.Refresh(ctx, f.StudentID)
			_ = c.apply(f, err, nil)
		case ResourceUniversities:
			items, window, err := c.deps.Catalog.DashboardUniversities(ctx)
			_ = c.apply(f, err, func(d *dashboard) {
				d.universities, d.universitiesWindow = items, window
			})
		case ResourceScholarships:
			items, window, err := c.deps.Catalog.DashboardScholarships(ctx)
			_ = c.apply(f, err, func(d *dashboard) {
				d.scholarships, d.scholarshipsWindow = items, window
			})
		}
	})
	if err != nil {
		c.log.Debug("Fetch not started", zap.String("resource", string(f.Resource)), zap.Error(err))
	}
}

// apply records the outcome of a fetch if it still belongs to the current dashboard visit.
func (c *Controller) apply(f Fetch, err error, set func(d *dashboard)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.dash
	if d == nil || d.epoch != f.Epoch {
		c.log.Debug("Discarding stale result",
			zap.String("resource", string(f.Resource)),
			zap.Uint64("epoch", f.Epoch),
			zap.Uint64("current_epoch", c.state.Epoch),
		)
		return ErrStaleResult
	}
	if err != nil && errors.Is(err, context.Canceled) {
		// replaced by a newer fetch of the same section
		return err
	}

	delete(d.loading, f.Resource)
	if err != nil {
		c.log.Warn("Dashboard section failed", zap.String("resource", string(f.Resource)), zap.Error(err))
		d.errors[f.Resource] = err.Error()
		return err
	}
	delete(d.errors, f.Resource)
	if set != nil {
		set(d)
	}
	return nil
}

// SendChat posts a chat message from the dashboard. Leaving the dashboard cancels the send.
func (c *Controller) SendChat(ctx context.Context, message string) (*model.ChatEntry, error) {
	c.mu.Lock()
	c.touchLocked()
	if c.state.Screen != ScreenDashboard || c.dash == nil {
		c.mu.Unlock()
		return nil, ErrNotOnDashboard
	}
	d := c.dash
	c.chatSeq++
	key := TaskKey{Screen: ScreenDashboard, Resource: ResourceChat, Seq: c.chatSeq}
	c.mu.Unlock()

	ctx, release, err := c.tasks.bind(ctx, key)
	if err != nil {
		return nil, err
	}
	defer release()

	return d.chat.Send(ctx, d.studentID, message)
}

// Snapshot renders the session for display.
func (c *Controller) Snapshot() (dto.SnapshotDTO, error) {
	c.mu.Lock()
	if err := c.state.Validate(); err != nil {
		c.log.Error("Invalid view state, returning to landing", zap.String("screen", string(c.state.Screen)), zap.Error(err))
		c.state = State{Screen: ScreenLanding, Epoch: c.state.Epoch + 1}
		c.dash = nil
		c.mu.Unlock()
		c.tasks.cancelScreen(ScreenDashboard)
		return dto.SnapshotDTO{}, err
	}
	defer c.mu.Unlock()

	s := c.state
	snap := dto.SnapshotDTO{SessionID: c.id, View: string(s.Screen)}
	if s.Profile != nil {
		snap.Profile = s.Profile.Clone()
		completeness := usecase.Completeness(s.Profile)
		snap.Completeness = &completeness
	}

	switch s.Screen {
	case ScreenSetup:
		snap.Mode = string(s.Mode)
		draft := dto.ProfileDraft{}
		if s.Mode == ModeEdit {
			draft = usecase.DraftFromProfile(s.Profile)
		}
		snap.Draft = &draft
	case ScreenDashboard:
		snap.Dashboard = c.dashboardDTOLocked()
	}
	return snap, nil
}

func (c *Controller) dashboardDTOLocked() *dto.DashboardDTO {
	d := c.dash
	out := &dto.DashboardDTO{
		Chat:         []model.ChatEntry{},
		Universities: []model.University{},
		Scholarships: []model.Scholarship{},
		Loading:      []string{},
	}
	if d == nil {
		return out
	}

	failed := func(r Resource) bool {
		_, ok := d.errors[r]
		return ok
	}
	// sends still land after a failed history load; the load error is reported alongside
	out.Chat = d.chat.Entries()
	if !failed(ResourceRecommendations) {
		out.Recommendations = toRecommendationDTO(d.recs.Summary())
	}
	if !failed(ResourceUniversities) && d.universities != nil {
		out.Universities = append(out.Universities, d.universities...)
		out.UniversitiesWindow = d.universitiesWindow
	}
	if !failed(ResourceScholarships) && d.scholarships != nil {
		out.Scholarships = append(out.Scholarships, d.scholarships...)
		out.ScholarshipsWindow = d.scholarshipsWindow
	}

	for _, r := range DashboardResources {
		if d.loading[r] {
			out.Loading = append(out.Loading, string(r))
		}
		if msg, ok := d.errors[r]; ok {
			if out.Errors == nil {
				out.Errors = make(map[string]string)
			}
			out.Errors[string(r)] = msg
		}
	}
	return out
}

func toRecommendationDTO(summary *model.RecommendationSummary) *dto.RecommendationDTO {
	if summary == nil {
		return nil
	}
	out := &dto.RecommendationDTO{
		AcceptanceProbabilities: summary.AcceptanceProbabilities,
		SuggestedImprovements:   summary.SuggestedImprovements,
		RecommendedUniversities: summary.RecommendedUniversities,
		RecommendedScholarships: summary.RecommendedScholarships,
		Timeline:                summary.Timeline,
		GeneratedAt:             summary.GeneratedAt,
	}
	if rate, ok := usecase.AggregateSuccessRate(summary); ok {
		out.SuccessRate = &rate
	}
	return out
}

// Wait blocks until no background fetch is running.
func (c *Controller) Wait() {
	c.tasks.wait()
}

// Close cancels all outstanding work and waits for it to stop.
func (c *Controller) Close() {
	c.tasks.closeAll()
	c.tasks.wait()
	c.log.Debug("Session closed")
}
