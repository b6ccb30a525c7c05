package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bookself/bookself/internal/store"
)

// Phase is the access-gate state. Exactly one of three view surfaces is
// reachable per phase; the gate is the single routing authority.
type Phase string

const (
	PhaseAnonymous Phase = "anonymous"
	PhaseSettingUp Phase = "setting_up"
	PhaseActive    Phase = "active"
)

// Navigation targets.
const (
	TargetLanding   = "landing"
	TargetSetup     = "setup"
	TargetDashboard = "dashboard"
	TargetBook      = "book"
	TargetPage      = "page"
	TargetRoadmap   = "roadmap"
	TargetCommunity = "community"
	TargetProfile   = "profile"
)

var activeTargets = map[string]bool{
	TargetDashboard: true,
	TargetBook:      true,
	TargetPage:      true,
	TargetRoadmap:   true,
	TargetCommunity: true,
	TargetProfile:   true,
}

// DecayRunner is the engine lifecycle the gate owns: started on
// entering Active, stopped on leaving it.
type DecayRunner interface {
	Start() bool
	Stop()
}

// Gate is the session access state machine. The phase is derived from
// the stored profile, so the gate and the state can never disagree.
type Gate struct {
	mu    sync.Mutex
	state *store.State
	decay DecayRunner
	log   *zap.Logger
}

// NewGate creates a Gate over the shared state. decay may be nil in
// tests that don't exercise the engine lifecycle.
func NewGate(state *store.State, decay DecayRunner, log *zap.Logger) *Gate {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gate{state: state, decay: decay, log: log}
}

// Phase reports the current gate phase.
func (g *Gate) Phase() Phase {
	p := g.state.Profile()
	switch {
	case p == nil:
		return PhaseAnonymous
	case !p.IsSetupComplete:
		return PhaseSettingUp
	default:
		return PhaseActive
	}
}

// Resolve maps a requested navigation target to the one the current
// phase allows. Anonymous sessions land; mid-setup sessions are pinned
// to the setup surface; active sessions reach everything, with unknown
// paths resolving to the dashboard.
func (g *Gate) Resolve(target string) string {
	switch g.Phase() {
	case PhaseAnonymous:
		return TargetLanding
	case PhaseSettingUp:
		return TargetSetup
	default:
		if activeTargets[target] {
			return target
		}
		return TargetDashboard
	}
}

// SignIn starts a session: a profile exists from here on, but setup is
// incomplete, so only the setup surface is reachable.
func (g *Gate) SignIn(email, displayName string) (store.UserProfile, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Phase() != PhaseAnonymous {
		return store.UserProfile{}, fmt.Errorf("already signed in")
	}

	profile := store.UserProfile{
		UID:         "u_" + uuid.NewString(),
		Email:       email,
		DisplayName: displayName,
	}
	g.state.SetProfile(profile)
	g.log.Info("signed in", zap.String("uid", profile.UID))
	return profile, nil
}

// CompleteSetup finishes profile setup with a validated username and
// activates the session, starting the decay ticker.
func (g *Gate) CompleteSetup(username, displayName, photoURL string) (store.UserProfile, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Phase() != PhaseSettingUp {
		return store.UserProfile{}, fmt.Errorf("no setup in progress")
	}

	name := Normalize(username)
	switch CheckUsername(name) {
	case StatusAvailable:
	case StatusTaken:
		return store.UserProfile{}, fmt.Errorf("username %q is taken", name)
	default:
		return store.UserProfile{}, fmt.Errorf("username required")
	}

	profile := *g.state.Profile()
	profile.Username = name
	profile.DisplayName = displayName
	if profile.DisplayName == "" {
		profile.DisplayName = name
	}
	profile.PhotoURL = photoURL
	profile.IsSetupComplete = true
	g.state.SetProfile(profile)
	g.state.AdoptShelf(profile.Username, profile.DisplayName)

	if g.decay != nil {
		g.decay.Start()
	}
	g.log.Info("setup complete", zap.String("username", name))
	return profile, nil
}

// SignOut discards the profile entirely and stops the decay ticker.
// Valid from SettingUp and Active alike; a no-op when anonymous.
func (g *Gate) SignOut() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Phase() == PhaseAnonymous {
		return
	}
	g.state.ClearProfile()
	if g.decay != nil {
		g.decay.Stop()
	}
	g.log.Info("signed out")
}

// UpdateProfile edits the active profile's display fields. The username
// is fixed after setup.
func (g *Gate) UpdateProfile(displayName, bio, photoURL string) (store.UserProfile, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Phase() != PhaseActive {
		return store.UserProfile{}, fmt.Errorf("no active session")
	}

	profile := *g.state.Profile()
	if displayName != "" {
		profile.DisplayName = displayName
	}
	profile.Bio = bio
	if photoURL != "" {
		profile.PhotoURL = photoURL
	}
	g.state.SetProfile(profile)
	return profile, nil
}
