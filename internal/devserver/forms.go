package devserver

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/harrylevesque/emailforms/internal/models"
)

const maxUploadSize = 32 << 20

// ===== Forms =====

func (s *Server) listFormsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	jsonResponse(w, http.StatusOK, s.formList())
}

func (s *Server) getFormHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	f, ok := s.forms[mux.Vars(r)["id"]]
	s.mu.Unlock()
	if !ok {
		errorResponse(w, http.StatusNotFound, "Form not found")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+f.ID+`"`)
	w.Write(f.data)
}

// uploadFormHandler stores a PDF sent as multipart field "file". The form id
// is the file name; uploading the same name again replaces the form.
func (s *Server) uploadFormHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		errorResponse(w, http.StatusBadRequest, "No file part")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "No file part")
		return
	}
	defer file.Close()
	filename := filepath.Base(header.Filename)
	if header.Filename == "" || filename == "." || filename == "/" {
		errorResponse(w, http.StatusBadRequest, "No selected file")
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "No file part")
		return
	}
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") || !mimetype.Detect(data).Is("application/pdf") {
		errorResponse(w, http.StatusBadRequest, "Invalid file type")
		return
	}

	f := &storedForm{
		Form: models.Form{
			ID:      filename,
			Name:    strings.TrimSuffix(filename, filepath.Ext(filename)),
			Size:    int64(len(data)),
			Created: s.timestamp(),
		},
		data: data,
	}
	s.mu.Lock()
	s.forms[f.ID] = f
	s.mu.Unlock()
	s.log.Info("Stored form", zap.String("id", f.ID), zap.Int64("size", f.Size))
	jsonResponse(w, http.StatusOK, f.Form)
}

func (s *Server) updateFormHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		errorResponse(w, http.StatusBadRequest, "Missing form name")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forms[mux.Vars(r)["id"]]
	if !ok {
		errorResponse(w, http.StatusNotFound, "Form not found")
		return
	}
	f.Name = strings.TrimSpace(req.Name)
	jsonResponse(w, http.StatusOK, f.Form)
}

func (s *Server) deleteFormHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.forms[id]; !ok {
		errorResponse(w, http.StatusNotFound, "Form not found")
		return
	}
	delete(s.forms, id)
	messageResponse(w, "Form deleted successfully")
}

// sendFormHandler emails a form to each recipient and records a tracking
// entry per delivery. Each recipient gets its own result; a bad address
// fails that recipient only.
func (s *Server) sendFormHandler(w http.ResponseWriter, r *http.Request) {
	var req models.SendRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Recipients) == 0 {
		errorResponse(w, http.StatusBadRequest, "No recipients specified")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forms[mux.Vars(r)["id"]]
	if !ok {
		errorResponse(w, http.StatusNotFound, "Form not found")
		return
	}
	results := make([]models.SendResult, 0, len(req.Recipients))
	for _, rcpt := range req.Recipients {
		results = append(results, s.deliver(f, rcpt, req.Subject, req.Message))
	}
	jsonResponse(w, http.StatusOK, results)
}

// deliver sends f to one recipient. s.mu must be held.
func (s *Server) deliver(f *storedForm, rcpt models.SendRecipient, subject, body string) models.SendResult {
	if !strings.Contains(rcpt.Email, "@") {
		return models.SendResult{Recipient: rcpt, Status: "failed", Message: "Invalid email address: " + rcpt.Email}
	}
	if subject == "" {
		subject = s.templates.DefaultSubject
	}
	if body == "" {
		body = s.templates.DefaultBody
	}
	msg := strings.ReplaceAll(body, "{Name}", rcpt.Name) + "\n\n" + s.templates.Signature
	s.outbox = append(s.outbox, Email{To: rcpt.Email, Subject: subject, Body: msg, Attachment: f.ID})

	if s.recipientByEmail(rcpt.Email) == nil {
		id := uuid.NewString()
		s.recipients[id] = &models.Recipient{ID: id, Email: rcpt.Email, Name: rcpt.Name}
	}
	s.tracking = append(s.tracking, &record{TrackingRecord: models.TrackingRecord{
		ID:             uuid.NewString(),
		RecipientEmail: rcpt.Email,
		RecipientName:  rcpt.Name,
		FormID:         f.ID,
		FormName:       f.Name,
		DateSent:       s.timestamp(),
	}})
	s.log.Info("Sent form", zap.String("form", f.ID), zap.String("to", rcpt.Email))
	return models.SendResult{Recipient: rcpt, Status: "sent", Message: "Email sent successfully"}
}
