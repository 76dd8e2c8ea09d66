package sync

import (
	"context"

	"homeboard/internal/model"
	"homeboard/internal/session"
)

// Restore loads a previously saved session and installs its credential.
// It reports whether a signed-in session was found.
func (s *Syncer) Restore() (*model.User, bool) {
	if s.session == nil {
		return nil, false
	}
	state := s.session.Load()
	if state.Token == "" {
		return nil, false
	}
	s.client.SetToken(state.Token)
	return state.User, true
}

// SignIn exchanges credentials for a token and persists the session.
func (s *Syncer) SignIn(ctx context.Context, email, password string) (*model.User, error) {
	resp, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.client.SetToken(resp.Token)
	if s.session != nil {
		if err := s.session.Save(session.State{Token: resp.Token, User: resp.User}); err != nil {
			return nil, err
		}
	}
	return resp.User, nil
}

// Register creates an account, signing the client in on success.
func (s *Syncer) Register(ctx context.Context, email, name, password string) (*model.User, error) {
	resp, err := s.client.Register(ctx, email, name, password)
	if err != nil {
		return nil, err
	}
	s.client.SetToken(resp.Token)
	if s.session != nil {
		if err := s.session.Save(session.State{Token: resp.Token, User: resp.User}); err != nil {
			return nil, err
		}
	}
	return resp.User, nil
}

// SignOut discards the credential and the saved session.
func (s *Syncer) SignOut() {
	s.client.SetToken("")
	if s.session != nil {
		s.session.Clear()
	}
}
