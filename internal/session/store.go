package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/calebmoss/inkwell/internal/storage"
)

// Storage keys, shared with every previous version of the client state file.
const (
	tokenKey    = "authToken"
	userDataKey = "userData"
)

// Store is the single owner of the session. It mediates login, registration
// and logout against the auth endpoints, and writes through to durable
// storage before replacing the in-memory value, so storage and memory are
// never observably out of step.
//
// A Store starts in StatusLoading; call Initialize once at startup to
// restore any persisted session.
type Store struct {
	baseURL string
	client  *http.Client
	persist storage.Store
	logger  *slog.Logger

	mu      sync.RWMutex
	session Session
}

// NewStore creates a session store talking to the auth endpoints under
// baseURL (e.g. "https://api.example.com"), persisting into persist.
func NewStore(baseURL string, client *http.Client, persist storage.Store, logger *slog.Logger) *Store {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
		persist: persist,
		logger:  logger,
		session: Session{Status: StatusLoading},
	}
}

// Current returns a snapshot of the session.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Initialize restores the session from durable storage. A missing or
// unparsable stored session clears both keys and leaves the client
// anonymous; Initialize never fails to its caller.
func (s *Store) Initialize(ctx context.Context) Session {
	token, tokenOK, tokenErr := s.persist.Get(tokenKey)
	data, dataOK, dataErr := s.persist.Get(userDataKey)

	if tokenErr != nil || dataErr != nil {
		s.logger.Error("reading stored session failed", "token_error", tokenErr, "data_error", dataErr)
		return s.clearToAnonymous()
	}
	if !tokenOK || !dataOK || token == "" {
		return s.clearToAnonymous()
	}

	var profile Profile
	if err := json.Unmarshal([]byte(data), &profile); err != nil {
		s.logger.Error("stored user data is malformed, discarding", "error", err)
		return s.clearToAnonymous()
	}

	restored := Session{Status: StatusAuthenticated, Profile: profile, Token: token}
	s.mu.Lock()
	s.session = restored
	s.mu.Unlock()

	s.logger.Debug("session restored", "user_id", profile.ID, "role", profile.Role)
	return restored
}

// Login exchanges credentials for a session. On failure the prior session
// survives untouched (a bad password does not log anyone out) and the error
// is an *AuthError carrying the server's message.
func (s *Store) Login(ctx context.Context, creds Credentials) (Session, error) {
	return s.authenticate(ctx, "/api/v1/auth/login", creds, "login failed")
}

// Register creates an account and signs the new user in. Same failure
// contract as Login.
func (s *Store) Register(ctx context.Context, reg Registration) (Session, error) {
	return s.authenticate(ctx, "/api/v1/auth/register", reg, "registration failed")
}

// authResponse is the body both auth endpoints return on success.
type authResponse struct {
	ID              string `json:"id"`
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	ProfileImageURL string `json:"profileImageUrl"`
	Role            string `json:"role"`
	Token           string `json:"token"`
}

func (s *Store) authenticate(ctx context.Context, path string, payload any, defaultMsg string) (Session, error) {
	prior := s.beginLoading()

	body, err := json.Marshal(payload)
	if err != nil {
		s.restore(prior)
		return Session{}, fmt.Errorf("encode auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		s.restore(prior)
		return Session{}, fmt.Errorf("create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.restore(prior)
		return Session{}, fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		s.restore(prior)
		return Session{}, fmt.Errorf("read auth response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.restore(prior)
		msg := serverMessage(respBody)
		if msg == "" {
			msg = defaultMsg
		}
		s.logger.Warn("authentication rejected", "status", resp.StatusCode, "message", msg)
		return Session{}, &AuthError{StatusCode: resp.StatusCode, Message: msg}
	}

	var auth authResponse
	if err := json.Unmarshal(respBody, &auth); err != nil {
		s.restore(prior)
		return Session{}, fmt.Errorf("decode auth response: %w", err)
	}

	next := Session{
		Status: StatusAuthenticated,
		Profile: Profile{
			ID:              auth.ID,
			FullName:        auth.FullName,
			Email:           auth.Email,
			ProfileImageURL: auth.ProfileImageURL,
			Role:            auth.Role,
		},
		Token: auth.Token,
	}

	// Persist first, then replace in memory.
	if err := s.persistSession(next); err != nil {
		s.restore(prior)
		return Session{}, err
	}

	s.mu.Lock()
	s.session = next
	s.mu.Unlock()

	s.logger.Info("signed in", "user_id", next.Profile.ID, "email", next.Profile.Email)
	return next, nil
}

// Logout clears the persisted session and resets to anonymous. It is
// synchronous and makes no network call.
func (s *Store) Logout() {
	s.clearToAnonymous()
	s.logger.Info("signed out")
}

// AuthHeaders returns the headers an authenticated API call should carry.
// The token is read from durable storage, so the headers reflect whatever a
// concurrent login or logout last persisted. Anonymous callers get an empty
// bearer value; endpoints requiring auth should be gated on IsAuthenticated
// first.
func (s *Store) AuthHeaders() http.Header {
	token, _, err := s.persist.Get(tokenKey)
	if err != nil {
		s.logger.Error("reading stored token failed", "error", err)
		token = ""
	}
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Authorization", "Bearer "+token)
	return h
}

// RefreshProfile merges updated display fields into the current session
// after a profile edit, persisting the merged copy. No-op when not
// authenticated.
func (s *Store) RefreshProfile(fullName, profileImageURL string) error {
	s.mu.Lock()
	if !s.session.IsAuthenticated() {
		s.mu.Unlock()
		return nil
	}
	next := s.session
	next.Profile.FullName = fullName
	next.Profile.ProfileImageURL = profileImageURL
	s.mu.Unlock()

	if err := s.persistSession(next); err != nil {
		return err
	}

	s.mu.Lock()
	s.session = next
	s.mu.Unlock()
	return nil
}

func (s *Store) beginLoading() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	prior := s.session
	s.session = Session{Status: StatusLoading, Profile: prior.Profile, Token: prior.Token}
	return prior
}

func (s *Store) restore(prior Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Ending the loading phase must not leave Status stuck on loading even
	// when the prior session was the initial pre-Initialize value.
	if prior.Status == StatusLoading {
		prior = Anonymous()
	}
	s.session = prior
}

func (s *Store) clearToAnonymous() Session {
	if err := s.persist.Delete(tokenKey); err != nil {
		s.logger.Error("clearing stored token failed", "error", err)
	}
	if err := s.persist.Delete(userDataKey); err != nil {
		s.logger.Error("clearing stored user data failed", "error", err)
	}

	s.mu.Lock()
	s.session = Anonymous()
	s.mu.Unlock()
	return Anonymous()
}

func (s *Store) persistSession(sess Session) error {
	data, err := json.Marshal(sess.Profile)
	if err != nil {
		return fmt.Errorf("encode user data: %w", err)
	}
	if err := s.persist.Set(tokenKey, sess.Token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if err := s.persist.Set(userDataKey, string(data)); err != nil {
		return fmt.Errorf("persist user data: %w", err)
	}
	return nil
}

// serverMessage pulls the "message" field out of an error response body,
// returning "" when there is none.
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}
