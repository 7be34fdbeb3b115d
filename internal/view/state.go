package view

import (
	"errors"
	"fmt"

	"github.com/fadilmartias/studypath/internal/model"
)

type Screen string

const (
	ScreenLanding   Screen = "landing"
	ScreenSetup     Screen = "setup"
	ScreenDashboard Screen = "dashboard"
)

type SetupMode string

const (
	ModeCreate SetupMode = "create"
	ModeEdit   SetupMode = "edit"
)

// Resource is one independently fetched dashboard section.
type Resource string

const (
	ResourceChat            Resource = "chat"
	ResourceRecommendations Resource = "recommendations"
	ResourceUniversities    Resource = "universities"
	ResourceScholarships    Resource = "scholarships"
)

// DashboardResources lists the sections fetched on dashboard entry, in display order.
var DashboardResources = []Resource{
	ResourceChat,
	ResourceRecommendations,
	ResourceUniversities,
	ResourceScholarships,
}

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrNoProfile         = errors.New("dashboard has no profile")
	ErrNotOnDashboard    = errors.New("not on dashboard")
	ErrStaleResult       = errors.New("result belongs to a screen that was left")
	ErrUnknownResource   = errors.New("unknown resource")
)

func ParseResource(s string) (Resource, error) {
	for _, r := range DashboardResources {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownResource, s)
}

// State is the controller state. Epoch grows every time the screen changes; work started
// under an older epoch must not touch the current screen.
type State struct {
	Screen  Screen
	Mode    SetupMode
	Profile *model.StudentProfile
	Epoch   uint64
}

func Initial() State {
	return State{Screen: ScreenLanding}
}

// Validate reports states no transition can produce.
func (s State) Validate() error {
	switch s.Screen {
	case ScreenDashboard:
		if s.Profile == nil {
			return ErrNoProfile
		}
	case ScreenSetup:
		if s.Mode == ModeEdit && s.Profile == nil {
			return ErrNoProfile
		}
	}
	return nil
}

type Event interface {
	eventName() string
}

type Start struct{}

type SubmitSucceeded struct {
	Profile *model.StudentProfile
}

type EditRequested struct{}

// SetupCancelled leaves an edit without saving.
type SetupCancelled struct{}

type ProfileCleared struct{}

func (Start) eventName() string { return "start" }
func (SubmitSucceeded) eventName() string { return "submit_succeeded" }
func (EditRequested) eventName() string { return "edit_requested" }
func (SetupCancelled) eventName() string { return "setup_cancelled" }
func (ProfileCleared) eventName() string { return "profile_cleared" }

type Effect interface {
	isEffect()
}

// Fetch loads one dashboard section for the student.
type Fetch struct {
	Resource  Resource
	StudentID string
	Epoch     uint64
}

// CancelScreen stops the work still running for a screen that was left.
type CancelScreen struct {
	Screen Screen
}

func (Fetch) isEffect() {}
func (CancelScreen) isEffect() {}

// Reduce applies ev to s. It never mutates s and performs no I/O; the effects describe the
// work the caller has to run. Events that do not apply to the current screen return
// ErrInvalidTransition together with the unchanged state.
func Reduce(s State, ev Event) (State, []Effect, error) {
	switch e := ev.(type) {
	case Start:
		if s.Screen == ScreenLanding {
			next := moveTo(s, ScreenSetup)
			next.Mode = ModeCreate
			return next, nil, nil
		}

	case SubmitSucceeded:
		if s.Screen == ScreenSetup {
			if e.Profile == nil {
				return s, nil, ErrNoProfile
			}
			if s.Mode == ModeEdit && s.Profile != nil && s.Profile.ID != e.Profile.ID {
				return s, nil, fmt.Errorf("%w: edit of %s saved as %s", ErrInvalidTransition, s.Profile.ID, e.Profile.ID)
			}
			next := moveTo(s, ScreenDashboard)
			next.Profile = e.Profile
			return next, enterDashboard(s, next), nil
		}

	case EditRequested:
		if s.Screen == ScreenDashboard && s.Profile != nil {
			next := moveTo(s, ScreenSetup)
			next.Mode = ModeEdit
			return next, []Effect{CancelScreen{Screen: ScreenDashboard}}, nil
		}

	case SetupCancelled:
		if s.Screen == ScreenSetup && s.Mode == ModeEdit && s.Profile != nil {
			next := moveTo(s, ScreenDashboard)
			return next, enterDashboard(s, next), nil
		}

	case ProfileCleared:
		if s.Screen == ScreenLanding && s.Profile == nil {
			return s, nil, nil
		}
		next := moveTo(s, ScreenLanding)
		next.Profile = nil
		var effects []Effect
		if s.Screen == ScreenDashboard {
			effects = append(effects, CancelScreen{Screen: ScreenDashboard})
		}
		return next, effects, nil

	default:
		return s, nil, fmt.Errorf("%w: unknown event %T", ErrInvalidTransition, ev)
	}

	desc := string(s.Screen)
	if s.Screen == ScreenSetup {
		desc += "(" + string(s.Mode) + ")"
	}
	return s, nil, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, ev.eventName(), desc)
}

func moveTo(s State, screen Screen) State {
	return State{
		Screen:  screen,
		Profile: s.Profile,
		Epoch:   s.Epoch + 1,
	}
}

func enterDashboard(prev, next State) []Effect {
	effects := make([]Effect, 0, len(DashboardResources)+1)
	effects = append(effects, CancelScreen{Screen: prev.Screen})
	for _, r := range DashboardResources {
		effects = append(effects, Fetch{Resource: r, StudentID: next.Profile.ID, Epoch: next.Epoch})
	}
	return effects
}
