// Package auth is the client's authentication gate. It owns the session
// token, mirrors it in durable storage and keeps the Store's user profile in
// step with it.
package auth

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/harrylevesque/emailforms/internal/logging"
	"github.com/harrylevesque/emailforms/internal/models"
	"github.com/harrylevesque/emailforms/internal/storage"
	"github.com/harrylevesque/emailforms/internal/store"
)

// LoginPath is where Logout sends the user.
const LoginPath = "/login"

var (
	errNoToken   = errors.New("login response did not include an access token")
	errNoProfile = errors.New("user profile is missing an email")
)

// Backend is the subset of the REST client the gate needs.
type Backend interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.Message, error)
	CurrentUser(ctx context.Context) (*models.User, error)
}

// Navigator is implemented by the router.
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

type Gate struct {
	mu      sync.RWMutex
	token   string
	backend Backend
	kv      storage.KV
	store   *store.Store
	nav     Navigator
	log     *logging.Logger
}

// New creates a gate and restores any token saved in kv.
func New(backend Backend, kv storage.KV, st *store.Store, log *logging.Logger) *Gate {
	if log == nil {
		log = logging.Nop()
	}
	g := &Gate{backend: backend, kv: kv, store: st, log: log}
	tok, err := kv.Get(storage.KeyToken)
	switch {
	case err == nil:
		g.token = tok
	case !errors.Is(err, storage.ErrNotFound):
		log.Warn("Reading saved token", zap.Error(err))
	}
	return g
}

// SetNavigator wires the router in after both have been constructed.
func (g *Gate) SetNavigator(n Navigator) {
	g.mu.Lock()
	g.nav = n
	g.mu.Unlock()
}

func (g *Gate) IsAuthenticated() bool {
	return g.Token() != ""
}

// Token returns the current bearer token, or "".
func (g *Gate) Token() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.token
}

// CheckAuth verifies the saved token against the backend and loads the
// user profile. Any failure clears the session and reports false; it never
// navigates.
func (g *Gate) CheckAuth(ctx context.Context) bool {
	if !g.IsAuthenticated() {
		return false
	}
	user, err := g.backend.CurrentUser(ctx)
	if err == nil && (user == nil || user.Email == "") {
		err = errNoProfile
	}
	if err != nil {
		g.log.Warn("Authentication check failed", zap.Error(err))
		g.clearSession()
		return false
	}
	g.store.SetState(store.WithUser(user))
	return true
}

// Login signs in and stores the new token and profile. On failure the
// backend's error is returned as is and any existing session is kept.
func (g *Gate) Login(ctx context.Context, email, password string) error {
	if err := Validate(LoginForm{Email: email, Password: password}); err != nil {
		return err
	}
	resp, err := g.backend.Login(ctx, email, password)
	if err != nil {
		g.log.Info("Login failed", zap.String("email", email), zap.Error(err))
		return err
	}
	if resp.AccessToken == "" {
		return errNoToken
	}
	if err := g.kv.Set(storage.KeyToken, resp.AccessToken); err != nil {
		g.log.Error("Saving token", zap.Error(err))
	}
	g.mu.Lock()
	g.token = resp.AccessToken
	g.mu.Unlock()

	user := resp.User
	g.store.SetState(store.WithUser(&user))
	g.log.Info("Logged in", zap.String("email", user.Email))
	return nil
}

// Register validates the form locally and creates the account. Invalid
// forms return a *ValidationError without contacting the backend. It does
// not sign in.
func (g *Gate) Register(ctx context.Context, form RegisterForm) error {
	if err := Validate(form); err != nil {
		return err
	}
	_, err := g.backend.Register(ctx, models.RegisterRequest{
		Email:     form.Email,
		Password:  form.Password,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Phone:     form.Phone,
		Company:   form.Company,
	})
	if err != nil {
		g.log.Info("Registration failed", zap.String("email", form.Email), zap.Error(err))
		return err
	}
	return nil
}

// Logout ends the session, resets the Store and navigates to the login page.
// It is safe to call when already logged out.
func (g *Gate) Logout(ctx context.Context) {
	g.mu.Lock()
	g.token = ""
	nav := g.nav
	g.mu.Unlock()
	if err := g.kv.Remove(storage.KeyToken); err != nil {
		g.log.Error("Removing token", zap.Error(err))
	}
	g.store.Reset()
	if nav != nil {
		nav.Navigate(ctx, LoginPath)
	}
}

func (g *Gate) clearSession() {
	g.mu.Lock()
	g.token = ""
	g.mu.Unlock()
	if err := g.kv.Remove(storage.KeyToken); err != nil {
		g.log.Error("Removing token", zap.Error(err))
	}
	g.store.SetState(store.WithUser(nil))
}
