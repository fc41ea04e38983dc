package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrylevesque/emailforms/internal/api"
	"github.com/harrylevesque/emailforms/internal/logging"
	"github.com/harrylevesque/emailforms/internal/models"
	"github.com/harrylevesque/emailforms/internal/storage"
	"github.com/harrylevesque/emailforms/internal/store"
)

type fakeBackend struct {
	user     *models.User
	userErr  error
	login    *models.LoginResponse
	loginErr error
	regErr   error

	userCalls, loginCalls, registerCalls int
	registered                           models.RegisterRequest
}

func (f *fakeBackend) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	f.loginCalls++
	return f.login, f.loginErr
}

func (f *fakeBackend) Register(ctx context.Context, req models.RegisterRequest) (*models.Message, error) {
	f.registerCalls++
	f.registered = req
	if f.regErr != nil {
		return nil, f.regErr
	}
	return &models.Message{Message: "User registered successfully"}, nil
}

func (f *fakeBackend) CurrentUser(ctx context.Context) (*models.User, error) {
	f.userCalls++
	return f.user, f.userErr
}

type recordingNav struct{ paths []string }

func (n *recordingNav) Navigate(ctx context.Context, path string) { n.paths = append(n.paths, path) }

func newGate(t *testing.T, b *fakeBackend, token string) (*Gate, storage.KV, *store.Store) {
	t.Helper()
	kv := storage.NewMemoryKV()
	if token != "" {
		require.NoError(t, kv.Set(storage.KeyToken, token))
	}
	st := store.New(kv, logging.Nop())
	return New(b, kv, st, logging.Nop()), kv, st
}

func TestCheckAuthWithoutToken(t *testing.T) {
	b := &fakeBackend{}
	g, _, _ := newGate(t, b, "")
	assert.False(t, g.CheckAuth(context.Background()))
	assert.Zero(t, b.userCalls)
}

func TestCheckAuthLoadsUser(t *testing.T) {
	b := &fakeBackend{user: &models.User{ID: 1, Name: "Ann", Email: "a@x.com"}}
	g, _, st := newGate(t, b, "abc")

	require.True(t, g.IsAuthenticated())
	assert.True(t, g.CheckAuth(context.Background()))
	require.NotNil(t, st.GetState().User)
	assert.Equal(t, "Ann", st.GetState().User.Name)
}

func TestCheckAuthFailureClearsSession(t *testing.T) {
	b := &fakeBackend{userErr: &api.Error{Status: 401, Message: "Token has expired"}}
	g, kv, st := newGate(t, b, "abc")
	st.SetState(store.WithUser(&models.User{Name: "stale"}))
	nav := &recordingNav{}
	g.SetNavigator(nav)

	assert.False(t, g.CheckAuth(context.Background()))
	assert.False(t, g.IsAuthenticated())
	assert.Empty(t, g.Token())
	assert.Nil(t, st.GetState().User)
	_, err := kv.Get(storage.KeyToken)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Empty(t, nav.paths)
}

func TestCheckAuthRejectsMalformedProfile(t *testing.T) {
	for _, tc := range []struct{ ctype, body string }{
		{"text/html", "<html>proxy login</html>"},
		{"application/json", "null"},
		{"application/json", "{}"},
	} {
		t.Run(tc.body, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tc.ctype)
				io.WriteString(w, tc.body)
			}))
			t.Cleanup(srv.Close)

			kv := storage.NewMemoryKV()
			require.NoError(t, kv.Set(storage.KeyToken, "abc"))
			st := store.New(kv, logging.Nop())
			client := api.New(srv.URL, api.WithHTTPClient(srv.Client()))
			g := New(client, kv, st, logging.Nop())
			client.UseTokens(g)

			assert.False(t, g.CheckAuth(context.Background()))
			assert.False(t, g.IsAuthenticated())
			assert.Nil(t, st.GetState().User)
			_, err := kv.Get(storage.KeyToken)
			assert.ErrorIs(t, err, storage.ErrNotFound)
		})
	}
}

func TestCheckAuthRejectsProfileWithoutEmail(t *testing.T) {
	b := &fakeBackend{user: &models.User{}}
	g, _, st := newGate(t, b, "abc")

	assert.False(t, g.CheckAuth(context.Background()))
	assert.False(t, g.IsAuthenticated())
	assert.Nil(t, st.GetState().User)
}

func TestLoginStoresTokenAndUser(t *testing.T) {
	b := &fakeBackend{login: &models.LoginResponse{
		AccessToken: "tok-1",
		User:        models.User{Email: "a@x.com", Name: "Ann", Role: "admin"},
	}}
	g, kv, st := newGate(t, b, "")

	require.NoError(t, g.Login(context.Background(), "a@x.com", "password123"))
	assert.Equal(t, "tok-1", g.Token())
	saved, err := kv.Get(storage.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", saved)
	assert.Equal(t, "admin", st.GetState().User.Role)
}

func TestLoginFailureKeepsExistingSession(t *testing.T) {
	backendErr := &api.Error{Status: 401, Message: "Invalid credentials"}
	b := &fakeBackend{loginErr: backendErr}
	g, kv, _ := newGate(t, b, "existing")

	err := g.Login(context.Background(), "a@x.com", "bad")
	require.Error(t, err)
	assert.Same(t, backendErr, err)
	assert.Equal(t, "Invalid credentials", err.Error())

	assert.Equal(t, "existing", g.Token())
	saved, _ := kv.Get(storage.KeyToken)
	assert.Equal(t, "existing", saved)
}

func TestLoginValidation(t *testing.T) {
	b := &fakeBackend{}
	g, _, _ := newGate(t, b, "")

	err := g.Login(context.Background(), "not-an-email", "")
	assert.ErrorIs(t, err, ErrValidation)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Email is invalid", ve.Fields["email"])
	assert.Equal(t, "Password is required", ve.Fields["password"])
	assert.Zero(t, b.loginCalls)
}

func TestRegister(t *testing.T) {
	valid := RegisterForm{
		Email:           "new@x.com",
		Password:        "longenough",
		ConfirmPassword: "longenough",
		FirstName:       "Ann",
		LastName:        "Lee",
		AgreeToTerms:    true,
	}

	t.Run("valid", func(t *testing.T) {
		b := &fakeBackend{}
		g, _, _ := newGate(t, b, "")
		require.NoError(t, g.Register(context.Background(), valid))
		assert.Equal(t, 1, b.registerCalls)
		assert.Equal(t, "Ann", b.registered.FirstName)
		assert.False(t, g.IsAuthenticated())
	})

	tests := []struct {
		name   string
		mutate func(*RegisterForm)
		field  string
		msg    string
	}{
		{"missing email", func(f *RegisterForm) { f.Email = "" }, "email", "Email is required"},
		{"short password", func(f *RegisterForm) { f.Password, f.ConfirmPassword = "short", "short" }, "password", "Password must be at least 8 characters"},
		{"no confirm", func(f *RegisterForm) { f.ConfirmPassword = "" }, "confirmPassword", "Please confirm your password"},
		{"mismatch", func(f *RegisterForm) { f.ConfirmPassword = "different1" }, "confirmPassword", "Passwords do not match"},
		{"first name", func(f *RegisterForm) { f.FirstName = "" }, "firstName", "First name is required"},
		{"last name", func(f *RegisterForm) { f.LastName = "" }, "lastName", "Last name is required"},
		{"terms", func(f *RegisterForm) { f.AgreeToTerms = false }, "terms", "You must agree to the terms and conditions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBackend{}
			g, _, _ := newGate(t, b, "")
			form := valid
			tt.mutate(&form)

			err := g.Register(context.Background(), form)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.msg, ve.Fields[tt.field])
			assert.Zero(t, b.registerCalls)
		})
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	b := &fakeBackend{}
	g, kv, st := newGate(t, b, "abc")
	st.SetState(store.WithUser(&models.User{Name: "Ann"}), store.WithForms([]models.Form{{ID: "f1"}}))
	nav := &recordingNav{}
	g.SetNavigator(nav)

	g.Logout(context.Background())
	g.Logout(context.Background())

	assert.False(t, g.IsAuthenticated())
	assert.Nil(t, st.GetState().User)
	assert.Empty(t, st.GetState().Forms)
	_, err := kv.Get(storage.KeyAppState)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, []string{LoginPath, LoginPath}, nav.paths)
}
