// Package devserver is an in-memory implementation of the email form
// backend. It serves the same REST contract as the production backend so
// the client can be developed and tested without one. Nothing is emailed:
// sent messages are collected in an outbox.
package devserver

import (
	"crypto/rand"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/harrylevesque/emailforms/internal/logging"
	"github.com/harrylevesque/emailforms/internal/models"
)

const (
	AdminEmail    = "admin@example.com"
	AdminPassword = "admin123"

	defaultTokenTTL = 24 * time.Hour
)

var defaultTemplates = models.EmailTemplates{
	DefaultSubject: "Please complete the attached form",
	DefaultBody:    "Hello {Name},\n\nPlease complete the attached form and return it at your earliest convenience.\n\nThank you.",
	Signature:      "Best regards,\nAdmin User\nEmail Form System",
}

type account struct {
	email        string
	name         string
	role         string
	passwordHash string
}

func (a *account) profile() models.User {
	return models.User{Email: a.email, Name: a.name, Role: a.role}
}

type storedForm struct {
	models.Form
	data []byte
}

type record struct {
	models.TrackingRecord
	// awaitingCheck marks a return that the next check-returns will report.
	awaitingCheck bool
}

type integration struct {
	clientID     string
	clientSecret string
	site         string
}

// Email is one message the server would have delivered.
type Email struct {
	To         string
	Subject    string
	Body       string
	Attachment string
}

type Server struct {
	mu         sync.Mutex
	users      map[string]*account
	forms      map[string]*storedForm
	recipients map[string]*models.Recipient
	tracking   []*record
	extracted  []models.ExtractedData
	templates  models.EmailTemplates
	intg       integration
	outbox     []Email

	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
	log      *logging.Logger
}

type Option func(*Server)

func WithLogger(l *logging.Logger) Option { return func(s *Server) { s.log = l } }

// WithSecret sets the HMAC key used to sign access tokens. A random key is
// generated when unset.
func WithSecret(key []byte) Option { return func(s *Server) { s.secret = key } }

func WithTokenTTL(d time.Duration) Option { return func(s *Server) { s.tokenTTL = d } }

func WithClock(now func() time.Time) Option { return func(s *Server) { s.now = now } }

// New returns a server seeded with the admin account and default email
// templates.
func New(opts ...Option) (*Server, error) {
	s := &Server{
		users:      make(map[string]*account),
		forms:      make(map[string]*storedForm),
		recipients: make(map[string]*models.Recipient),
		templates:  defaultTemplates,
		tokenTTL:   defaultTokenTTL,
		now:        time.Now,
		log:        logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Named("devserver")
	if len(s.secret) == 0 {
		s.secret = make([]byte, 32)
		if _, err := rand.Read(s.secret); err != nil {
			return nil, fmt.Errorf("generating token secret: %w", err)
		}
	}
	hash, err := HashPassword(AdminPassword)
	if err != nil {
		return nil, err
	}
	s.users[AdminEmail] = &account{email: AdminEmail, name: "Admin User", role: "admin", passwordHash: hash}
	return s, nil
}

// Outbox returns a copy of every message sent so far.
func (s *Server) Outbox() []Email {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Email(nil), s.outbox...)
}

// SimulateReturn marks a tracked form as returned by its recipient. The
// return is reported by the next check-returns call.
func (s *Server) SimulateReturn(trackingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.findRecord(trackingID)
	if rec == nil {
		return fmt.Errorf("tracking record %s not found", trackingID)
	}
	if !rec.Returned {
		rec.awaitingCheck = true
	}
	return nil
}

func (s *Server) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// The helpers below expect s.mu to be held.

func (s *Server) findRecord(id string) *record {
	for _, r := range s.tracking {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (s *Server) recipientByEmail(email string) *models.Recipient {
	for _, r := range s.recipients {
		if strings.EqualFold(r.Email, email) {
			return r
		}
	}
	return nil
}

// recipientList returns the directory sorted by name, with send and return
// counts taken from tracking.
func (s *Server) recipientList() []models.Recipient {
	out := make([]models.Recipient, 0, len(s.recipients))
	for _, r := range s.recipients {
		out = append(out, s.withCounts(*r))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Email < out[j].Email
	})
	return out
}

func (s *Server) withCounts(r models.Recipient) models.Recipient {
	r.FormsSent, r.FormsReturned = 0, 0
	for _, rec := range s.tracking {
		if !strings.EqualFold(rec.RecipientEmail, r.Email) {
			continue
		}
		r.FormsSent++
		if rec.Returned {
			r.FormsReturned++
		}
	}
	return r
}

func (s *Server) formList() []models.Form {
	out := make([]models.Form, 0, len(s.forms))
	for _, f := range s.forms {
		out = append(out, f.Form)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Server) trackingList() []models.TrackingRecord {
	out := make([]models.TrackingRecord, 0, len(s.tracking))
	for _, r := range s.tracking {
		out = append(out, r.TrackingRecord)
	}
	return out
}

func (s *Server) settings() models.Settings {
	return models.Settings{
		EmailTemplates: s.templates,
		Integration: models.Integration{
			ClientID:       s.intg.clientID != "",
			ClientSecret:   s.intg.clientSecret != "",
			SharepointSite: s.intg.site,
		},
	}
}
