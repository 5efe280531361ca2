// Package authstate owns the in-memory picture of who is logged in and pushes
// every change of it to the registered listeners.
package authstate

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vedran77/huddle/internal/backend"
	"github.com/vedran77/huddle/internal/domain"
)

var ErrNotAuthenticated = errors.New("no user is logged in")

// State is a snapshot of the session. The zero value is the logged-out state.
type State struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName *string   `json:"display_name"`
	Bio         *string   `json:"bio"`
	Career      *string   `json:"career"`
}

func (s State) LoggedIn() bool {
	return s.ID != uuid.Nil
}

// Listener receives a full State snapshot on every change.
type Listener func(State)

// Unsubscribe removes the listener it was returned for. Calling it more than
// once has no further effect.
type Unsubscribe func()

type subscriber struct {
	id uint64
	fn Listener
}

// Broadcaster is the single source of truth for the session state.
//
// Listeners are called synchronously, in registration order, one state change
// at a time. A listener must not call Subscribe or any of the mutating
// methods from inside the callback; calling the Unsubscribe handle is fine.
type Broadcaster struct {
	auth     backend.Auth
	profiles backend.Profiles
	log      *logrus.Entry

	mu         sync.Mutex
	state      State
	subs       []subscriber
	nextID     uint64
	generation uint64
	signingOut chan struct{}
	closed     bool

	// deliverMu serializes state changes with their deliveries.
	deliverMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(auth backend.Auth, profiles backend.Profiles, log *logrus.Entry) *Broadcaster {
	ctx, cancel := context.WithCancel(context.Background())
	return &Broadcaster{
		auth:     auth,
		profiles: profiles,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Init loads the session stored by the backend client, if any. Identity is
// published right away; the extended profile fields follow in a second
// notification once they have been fetched.
func (b *Broadcaster) Init(ctx context.Context) error {
	user, err := b.auth.CurrentUser(ctx)
	if err != nil {
		b.log.WithError(err).Error("fetching current session failed")
		return fmt.Errorf("fetching current session: %w", err)
	}
	if user == nil {
		return nil
	}

	gen := b.reset(State{ID: user.ID, Email: user.Email})
	b.loadProfile(gen, user.ID)
	return nil
}

// Register creates the account and its profile row. The session state is only
// touched when both succeed. If the profile insert fails the remote account is
// left without a profile.
func (b *Broadcaster) Register(ctx context.Context, email, password string) (*domain.User, error) {
	if err := b.waitSignOut(ctx); err != nil {
		return nil, err
	}

	user, err := b.auth.SignUp(ctx, email, password)
	if err != nil {
		b.log.WithError(err).WithField("email", email).Error("sign up failed")
		return nil, fmt.Errorf("signing up: %w", err)
	}

	if err := b.profiles.CreateProfile(ctx, &domain.Profile{ID: user.ID, Email: user.Email}); err != nil {
		b.log.WithError(err).WithField("user_id", user.ID).Error("creating profile after sign up failed")
		return nil, fmt.Errorf("creating profile: %w", err)
	}

	b.reset(State{ID: user.ID, Email: user.Email})
	return user, nil
}

// Login signs in and publishes the identity synchronously. The extended
// profile is fetched in the background.
func (b *Broadcaster) Login(ctx context.Context, email, password string) (*domain.User, error) {
	if err := b.waitSignOut(ctx); err != nil {
		return nil, err
	}

	user, err := b.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		b.log.WithError(err).WithField("email", email).Error("sign in failed")
		return nil, fmt.Errorf("signing in: %w", err)
	}

	gen := b.reset(State{ID: user.ID, Email: user.Email})
	b.loadProfile(gen, user.ID)
	return user, nil
}

// Logout resets the state to logged out. The remote sign-out runs detached
// and its failure is only logged.
func (b *Broadcaster) Logout(ctx context.Context) {
	detached := context.WithoutCancel(ctx)

	b.mu.Lock()
	if !b.closed {
		done := make(chan struct{})
		b.signingOut = done
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			defer close(done)
			if err := b.auth.SignOut(detached); err != nil {
				b.log.WithError(err).Warn("remote sign out failed")
			}
		}()
	}
	b.mu.Unlock()

	b.reset(State{})
}

// UpdateProfile writes patch to the current user's profile and merges it into
// the local state once the backend accepted it.
func (b *Broadcaster) UpdateProfile(ctx context.Context, patch domain.ProfilePatch) error {
	current := b.Snapshot()
	if !current.LoggedIn() {
		return ErrNotAuthenticated
	}
	if patch.IsEmpty() {
		return nil
	}

	if err := b.profiles.UpdateProfile(ctx, current.ID, patch); err != nil {
		b.log.WithError(err).WithField("user_id", current.ID).Error("updating profile failed")
		return fmt.Errorf("updating profile: %w", err)
	}

	b.apply(func(st *State) bool {
		if st.ID != current.ID {
			return false
		}
		if patch.DisplayName != nil {
			st.DisplayName = cloneString(patch.DisplayName)
		}
		if patch.Bio != nil {
			st.Bio = cloneString(patch.Bio)
		}
		if patch.Career != nil {
			st.Career = cloneString(patch.Career)
		}
		return true
	})
	return nil
}

// Subscribe registers fn and calls it once with the current state before
// returning. The same function may be registered several times; each
// registration is notified separately.
func (b *Broadcaster) Subscribe(fn Listener) Unsubscribe {
	b.deliverMu.Lock()
	defer b.deliverMu.Unlock()

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscriber{id: id, fn: fn})
	snapshot := b.state
	b.mu.Unlock()

	fn(snapshot)

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

// Snapshot returns a copy of the current state.
func (b *Broadcaster) Snapshot() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Close cancels background work and waits for it to finish.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	b.cancel()
	b.wg.Wait()
}

func (b *Broadcaster) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = slices.DeleteFunc(b.subs, func(s subscriber) bool { return s.id == id })
}

// reset replaces the whole state and starts a new generation, which makes
// any profile load still in flight stale.
func (b *Broadcaster) reset(next State) uint64 {
	var gen uint64
	b.apply(func(st *State) bool {
		b.generation++
		gen = b.generation
		*st = next
		return true
	})
	return gen
}

// apply runs mutate under the state lock. When mutate reports a change the
// resulting snapshot is delivered to every listener.
func (b *Broadcaster) apply(mutate func(st *State) bool) {
	b.deliverMu.Lock()
	defer b.deliverMu.Unlock()

	b.mu.Lock()
	if !mutate(&b.state) {
		b.mu.Unlock()
		return
	}
	snapshot := b.state
	subs := slices.Clone(b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		s.fn(snapshot)
	}
}

func (b *Broadcaster) loadProfile(gen uint64, id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		profile, err := b.profiles.GetProfile(b.ctx, id)
		if err != nil {
			b.log.WithError(err).WithField("user_id", id).Warn("loading profile failed")
			return
		}
		if profile == nil {
			b.log.WithField("user_id", id).Debug("user has no profile row")
			return
		}

		b.apply(func(st *State) bool {
			if b.generation != gen || st.ID != id {
				return false
			}
			st.DisplayName = cloneString(profile.DisplayName)
			st.Bio = cloneString(profile.Bio)
			st.Career = cloneString(profile.Career)
			return true
		})
	}()
}

func (b *Broadcaster) waitSignOut(ctx context.Context) error {
	b.mu.Lock()
	pending := b.signingOut
	b.mu.Unlock()

	if pending == nil {
		return nil
	}
	select {
	case <-pending:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
