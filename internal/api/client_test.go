package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrylevesque/emailforms/internal/models"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api", WithHTTPClient(srv.Client()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestRequestHeaders(t *testing.T) {
	var auth, reqID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		reqID = r.Header.Get("X-Request-ID")
		assert.Equal(t, "/api/auth/user", r.URL.Path)
		writeJSON(w, http.StatusOK, models.User{ID: 1, Name: "Ann", Email: "a@x.com"})
	})

	u, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Empty(t, auth)
	assert.NotEmpty(t, reqID)
	assert.Equal(t, "Ann", u.Name)

	c.UseTokens(staticToken("abc"))
	_, err = c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", auth)
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		status int
		ctype  string
		body   string
		want   string
	}{
		{"error field", 401, "application/json", `{"error":"Invalid credentials"}`, "Invalid credentials"},
		{"message field", 400, "application/json", `{"message":"Email already registered"}`, "Email already registered"},
		{"no message", 500, "application/json", `{}`, defaultErrorMessage},
		{"not json", 502, "text/html", `<h1>Bad gateway</h1>`, defaultErrorMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.ctype)
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})
			_, err := c.Login(context.Background(), "a@x.com", "secret123")
			require.Error(t, err)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.want, err.Error())
			assert.Equal(t, tt.status == 401, errors.Is(err, ErrUnauthorized))
		})
	}
}

func TestCurrentUserRejectsMalformedProfile(t *testing.T) {
	tests := []struct {
		name  string
		ctype string
		body  string
	}{
		{"html page", "text/html", "<html>proxy login</html>"},
		{"null", "application/json", "null"},
		{"empty object", "application/json", "{}"},
		{"broken json", "application/json", `{"email":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.ctype)
				io.WriteString(w, tt.body)
			})
			u, err := c.CurrentUser(context.Background())
			assert.ErrorIs(t, err, ErrMalformedResponse)
			assert.Nil(t, u)
		})
	}
}

func TestNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Form not found"})
	})
	err := c.DeleteForm(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "Form not found")
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := New(srv.URL + "/api")
	_, err := c.ListForms(context.Background())
	require.Error(t, err)
	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr))
}

func TestUploadFormRejectsNonPDF(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})
	_, err := c.UploadForm(context.Background(), "notes.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrNotPDF)
	assert.Zero(t, calls.Load())
}

func TestUploadForm(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "survey.PDF", hdr.Filename)
		writeJSON(w, http.StatusCreated, models.Form{ID: "f1", Name: hdr.Filename, Size: int64(len(data))})
	})
	form, err := c.UploadForm(context.Background(), "/tmp/survey.PDF", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "f1", form.ID)
	assert.EqualValues(t, 8, form.Size)
}

func TestTrackingReportQuery(t *testing.T) {
	var query string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		writeJSON(w, http.StatusOK, models.Report{Total: 2, Returned: 1})
	})
	returned := true
	rep, err := c.TrackingReport(context.Background(), models.ReportOptions{FormID: "f1", Returned: &returned})
	require.NoError(t, err)
	assert.Equal(t, "formId=f1&returned=true", query)
	assert.Equal(t, 2, rep.Total)
}

func TestUpdateSettingsStripsMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var upd models.SettingsUpdate
		require.NoError(t, json.NewDecoder(r.Body).Decode(&upd))
		require.NotNil(t, upd.EmailTemplates)
		writeJSON(w, http.StatusOK, map[string]any{
			"message":        "Settings updated successfully",
			"emailTemplates": upd.EmailTemplates,
			"integration":    map[string]any{"clientId": true, "clientSecret": false, "sharepointSite": ""},
		})
	})
	s, err := c.UpdateSettings(context.Background(), models.SettingsUpdate{
		EmailTemplates: &models.EmailTemplates{DefaultSubject: "Please fill in"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Please fill in", s.EmailTemplates.DefaultSubject)
	assert.True(t, s.Integration.ClientID)
}
