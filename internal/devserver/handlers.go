package devserver

import (
	"net/http"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/harrylevesque/emailforms/internal/models"
)

const recentActivityLimit = 5

// ===== Auth =====

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		errorResponse(w, http.StatusBadRequest, "Missing email or password")
		return
	}

	s.mu.Lock()
	acct, ok := s.users[strings.ToLower(req.Email)]
	s.mu.Unlock()
	if !ok || !CheckPasswordHash(req.Password, acct.passwordHash) {
		s.log.Info("Failed login", zap.String("email", req.Email))
		errorResponse(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	token, err := s.issueToken(acct)
	if err != nil {
		s.log.Error("Failed to sign token", zap.Error(err))
		errorResponse(w, http.StatusInternalServerError, "Could not create token")
		return
	}
	jsonResponse(w, http.StatusOK, models.LoginResponse{AccessToken: token, User: acct.profile()})
}

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		errorResponse(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	email := strings.ToLower(req.Email)

	s.mu.Lock()
	_, exists := s.users[email]
	s.mu.Unlock()
	if exists {
		errorResponse(w, http.StatusBadRequest, "Email already registered")
		return
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "Could not register user")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[email]; exists {
		errorResponse(w, http.StatusBadRequest, "Email already registered")
		return
	}
	s.users[email] = &account{
		email:        email,
		name:         req.FirstName + " " + req.LastName,
		role:         "user",
		passwordHash: hash,
	}
	s.log.Info("Registered user", zap.String("email", email))
	jsonResponse(w, http.StatusOK, models.Message{Message: "Registration successful"})
}

func (s *Server) userHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	acct, ok := s.users[currentEmail(r.Context())]
	s.mu.Unlock()
	if !ok {
		errorResponse(w, http.StatusNotFound, "User not found")
		return
	}
	jsonResponse(w, http.StatusOK, acct.profile())
}

// ===== Dashboard =====

func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := models.DashboardSummary{
		FormsCount:      len(s.forms),
		EmailsSentCount: len(s.tracking),
		RecentActivity:  []models.Activity{},
	}
	seen := make(map[string]bool)
	for _, rec := range s.tracking {
		seen[strings.ToLower(rec.RecipientEmail)] = true
		sum.RecentActivity = append(sum.RecentActivity, models.Activity{
			Date:     rec.DateSent,
			Activity: "Form sent to " + rec.RecipientName,
			Status:   "Sent",
		})
		if rec.Returned {
			sum.FormsReturnedCount++
			if rec.DateReturned != nil {
				sum.RecentActivity = append(sum.RecentActivity, models.Activity{
					Date:     *rec.DateReturned,
					Activity: "Form returned from " + rec.RecipientName,
					Status:   "Returned",
				})
			}
		}
	}
	sum.RecipientsCount = len(seen)

	sort.SliceStable(sum.RecentActivity, func(i, j int) bool {
		return sum.RecentActivity[i].Date > sum.RecentActivity[j].Date
	})
	if len(sum.RecentActivity) > recentActivityLimit {
		sum.RecentActivity = sum.RecentActivity[:recentActivityLimit]
	}
	jsonResponse(w, http.StatusOK, sum)
}

// ===== Settings =====

func (s *Server) getSettingsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	jsonResponse(w, http.StatusOK, s.settings())
}

type settingsResponse struct {
	Message string `json:"message"`
	models.Settings
}

// updateSettingsHandler replaces the email templates wholesale when they are
// present and sets each non-empty integration field.
func (s *Server) updateSettingsHandler(w http.ResponseWriter, r *http.Request) {
	var upd models.SettingsUpdate
	if !decodeJSON(w, r, &upd) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if upd.EmailTemplates != nil {
		s.templates = *upd.EmailTemplates
	}
	if in := upd.Integration; in != nil {
		if in.ClientID != "" {
			s.intg.clientID = in.ClientID
		}
		if in.ClientSecret != "" {
			s.intg.clientSecret = in.ClientSecret
		}
		if in.SharepointSite != "" {
			s.intg.site = in.SharepointSite
		}
	}
	jsonResponse(w, http.StatusOK, settingsResponse{Message: "Settings updated successfully", Settings: s.settings()})
}

func (s *Server) testIntegrationHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	intg := s.intg
	s.mu.Unlock()

	res := models.IntegrationTestResult{Message: "Integration is not configured"}
	if intg.clientID != "" && intg.clientSecret != "" && intg.site != "" {
		res = models.IntegrationTestResult{Success: true, Message: "Connected to " + intg.site}
	}
	jsonResponse(w, http.StatusOK, res)
}

func (s *Server) backupHandler(w http.ResponseWriter, r *http.Request) {
	file := "backup_" + s.now().UTC().Format("20060102T150405Z") + ".json"
	s.log.Info("Backup requested", zap.String("file", file))
	jsonResponse(w, http.StatusOK, models.BackupResult{Message: "Backup created successfully", File: file})
}
