// Package auth tracks the login session of the local user and notifies
// subscribers of every change.
package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/unowned-ai/daybook/pkg/users"
)

// subscriberBuffer is the number of undelivered states a subscriber may hold.
const subscriberBuffer = 8

type State struct {
	LoggedIn   bool   `json:"logged_in"`
	HasAccount bool   `json:"has_account"`
	Username   string `json:"username"`
}

type Service struct {
	users *users.Repository
	log   zerolog.Logger

	mu    sync.Mutex
	state State
	subs  map[int]chan State
	next  int
}

// NewService loads the persisted account state. The session starts logged out.
func NewService(ctx context.Context, repo *users.Repository, log zerolog.Logger) (*Service, error) {
	s := &Service{
		users: repo,
		log:   log.With().Str("component", "auth").Logger(),
		subs:  map[int]chan State{},
	}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Refresh rereads the account from the store, keeping the login flag unless
// the account no longer has a PIN.
func (s *Service) Refresh(ctx context.Context) error {
	u, err := s.users.Get(ctx)
	if err != nil && !errors.Is(err, users.ErrNoUser) {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state
	next.HasAccount = u.HasPin()
	next.Username = u.Username
	if !next.HasAccount {
		next.LoggedIn = false
	}
	s.setLocked(next)
	return nil
}

// Register sets the username and PIN together and logs the user in. Nothing
// is stored when either is empty.
func (s *Service) Register(ctx context.Context, username, pin string) error {
	if err := s.users.SetAccount(ctx, username, pin); err != nil {
		return err
	}
	return s.logIn(ctx)
}

// SetPin replaces the PIN and logs the user in.
func (s *Service) SetPin(ctx context.Context, pin string) error {
	if err := s.users.SetPin(ctx, pin); err != nil {
		return err
	}
	return s.logIn(ctx)
}

func (s *Service) logIn(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state
	next.LoggedIn = true
	s.setLocked(next)
	return nil
}

// Login checks pin against the stored hash and updates the session.
func (s *Service) Login(ctx context.Context, pin string) (bool, error) {
	ok, err := s.users.VerifyPin(ctx, pin)
	if err != nil {
		return false, err
	}
	if err := s.Refresh(ctx); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state
	next.LoggedIn = ok
	s.setLocked(next)
	if !ok {
		s.log.Warn().Msg("login rejected")
	}
	return ok, nil
}

func (s *Service) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state
	next.LoggedIn = false
	s.setLocked(next)
}

// ClearPin removes the PIN, which also ends the session.
func (s *Service) ClearPin(ctx context.Context) error {
	if err := s.users.ClearPin(ctx); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers a channel that receives every subsequent state change.
// Slow subscribers miss states once their buffer is full.
func (s *Service) Subscribe() (int, <-chan State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	ch := make(chan State, subscriberBuffer)
	s.subs[id] = ch
	return id, ch
}

// Unsubscribe closes and forgets the channel of id.
func (s *Service) Unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.subs[id]; ok {
		close(ch)
		delete(s.subs, id)
	}
}

func (s *Service) setLocked(next State) {
	if next == s.state {
		return
	}
	s.state = next
	for id, ch := range s.subs {
		select {
		case ch <- next:
		default:
			s.log.Warn().Int("subscriber", id).Msg("auth state dropped for slow subscriber")
		}
	}
}
