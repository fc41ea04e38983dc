package devserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Handler returns the HTTP handler serving /health and the /api routes.
func (s *Server) Handler() http.Handler {
	return s.NewRouter()
}

func (s *Server) NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "OK")
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/login", s.loginHandler).Methods("POST")
	api.HandleFunc("/auth/register", s.registerHandler).Methods("POST")

	p := api.NewRoute().Subrouter()
	p.Use(s.requireAuth)
	p.HandleFunc("/auth/user", s.userHandler).Methods("GET")
	p.HandleFunc("/dashboard/summary", s.dashboardHandler).Methods("GET")

	p.HandleFunc("/forms", s.listFormsHandler).Methods("GET")
	p.HandleFunc("/forms", s.uploadFormHandler).Methods("POST")
	p.HandleFunc("/forms/{id}", s.getFormHandler).Methods("GET")
	p.HandleFunc("/forms/{id}", s.updateFormHandler).Methods("PUT")
	p.HandleFunc("/forms/{id}", s.deleteFormHandler).Methods("DELETE")
	p.HandleFunc("/forms/{id}/send", s.sendFormHandler).Methods("POST")

	p.HandleFunc("/recipients", s.listRecipientsHandler).Methods("GET")
	p.HandleFunc("/recipients", s.createRecipientHandler).Methods("POST")
	p.HandleFunc("/recipients/import", s.importRecipientsHandler).Methods("POST")
	p.HandleFunc("/recipients/{id}", s.getRecipientHandler).Methods("GET")
	p.HandleFunc("/recipients/{id}", s.updateRecipientHandler).Methods("PUT")
	p.HandleFunc("/recipients/{id}", s.deleteRecipientHandler).Methods("DELETE")

	p.HandleFunc("/tracking", s.listTrackingHandler).Methods("GET")
	p.HandleFunc("/tracking/check-returns", s.checkReturnsHandler).Methods("POST")
	p.HandleFunc("/tracking/report", s.reportHandler).Methods("GET")
	p.HandleFunc("/tracking/{id}", s.getTrackingHandler).Methods("GET")
	p.HandleFunc("/tracking/{id}/resend", s.resendHandler).Methods("POST")

	p.HandleFunc("/extraction", s.pendingExtractionsHandler).Methods("GET")
	p.HandleFunc("/extraction/extract", s.extractHandler).Methods("POST")
	p.HandleFunc("/extraction/data", s.extractedDataHandler).Methods("GET")
	p.HandleFunc("/extraction/export", s.exportHandler).Methods("POST")

	p.HandleFunc("/settings", s.getSettingsHandler).Methods("GET")
	p.HandleFunc("/settings", s.updateSettingsHandler).Methods("PUT")
	p.HandleFunc("/settings/test-integration", s.testIntegrationHandler).Methods("POST")
	p.HandleFunc("/settings/backup", s.backupHandler).Methods("POST")

	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errorResponse(w, http.StatusNotFound, "Not found")
	})
	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("Request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.String("request_id", r.Header.Get("X-Request-ID")),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
