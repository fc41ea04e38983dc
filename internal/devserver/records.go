package devserver

import (
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/harrylevesque/emailforms/internal/models"
)

// ===== Recipients =====

func (s *Server) listRecipientsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	jsonResponse(w, http.StatusOK, s.recipientList())
}

func (s *Server) getRecipientHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rcpt, ok := s.recipients[mux.Vars(r)["id"]]
	if !ok {
		errorResponse(w, http.StatusNotFound, "Recipient not found")
		return
	}
	jsonResponse(w, http.StatusOK, s.withCounts(*rcpt))
}

func (s *Server) createRecipientHandler(w http.ResponseWriter, r *http.Request) {
	var req models.SendRecipient
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Name == "" {
		errorResponse(w, http.StatusBadRequest, "Missing email or name")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recipientByEmail(req.Email) != nil {
		errorResponse(w, http.StatusBadRequest, "Recipient already exists")
		return
	}
	rcpt := &models.Recipient{ID: uuid.NewString(), Email: req.Email, Name: req.Name}
	s.recipients[rcpt.ID] = rcpt
	jsonResponse(w, http.StatusOK, s.withCounts(*rcpt))
}

func (s *Server) updateRecipientHandler(w http.ResponseWriter, r *http.Request) {
	var req models.SendRecipient
	if !decodeJSON(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rcpt, ok := s.recipients[mux.Vars(r)["id"]]
	if !ok {
		errorResponse(w, http.StatusNotFound, "Recipient not found")
		return
	}
	if req.Email != "" {
		if other := s.recipientByEmail(req.Email); other != nil && other.ID != rcpt.ID {
			errorResponse(w, http.StatusBadRequest, "Recipient already exists")
			return
		}
		rcpt.Email = req.Email
	}
	if req.Name != "" {
		rcpt.Name = req.Name
	}
	jsonResponse(w, http.StatusOK, s.withCounts(*rcpt))
}

func (s *Server) deleteRecipientHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recipients[id]; !ok {
		errorResponse(w, http.StatusNotFound, "Recipient not found")
		return
	}
	delete(s.recipients, id)
	messageResponse(w, "Recipient deleted successfully")
}

// importRecipientsHandler reads name,email rows from an uploaded CSV. A
// header row, rows without an address and addresses already in the
// directory are skipped.
func (s *Server) importRecipientsHandler(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "No file part")
		return
	}
	defer file.Close()
	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		errorResponse(w, http.StatusBadRequest, "Only CSV files can be imported")
		return
	}

	cr := csv.NewReader(file)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	s.mu.Lock()
	defer s.mu.Unlock()
	res := models.ImportResult{Message: "Import completed"}
	for line := 0; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			errorResponse(w, http.StatusBadRequest, "Invalid CSV: "+err.Error())
			return
		}
		if len(row) < 2 {
			res.Skipped++
			continue
		}
		name, email := strings.TrimSpace(row[0]), strings.TrimSpace(row[1])
		if line == 0 && strings.EqualFold(email, "email") {
			continue
		}
		if name == "" || !strings.Contains(email, "@") || s.recipientByEmail(email) != nil {
			res.Skipped++
			continue
		}
		id := uuid.NewString()
		s.recipients[id] = &models.Recipient{ID: id, Email: email, Name: name}
		res.Imported++
	}
	s.log.Info("Imported recipients", zap.Int("imported", res.Imported), zap.Int("skipped", res.Skipped))
	jsonResponse(w, http.StatusOK, res)
}

// ===== Tracking =====

func (s *Server) listTrackingHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	jsonResponse(w, http.StatusOK, s.trackingList())
}

func (s *Server) getTrackingHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.findRecord(mux.Vars(r)["id"])
	if rec == nil {
		errorResponse(w, http.StatusNotFound, "Tracking record not found")
		return
	}
	jsonResponse(w, http.StatusOK, rec.TrackingRecord)
}

// checkReturnsHandler marks every return received since the last check.
func (s *Server) checkReturnsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := models.CheckReturnsResult{Message: "Check completed"}
	for _, rec := range s.tracking {
		if !rec.awaitingCheck {
			continue
		}
		now := s.timestamp()
		rec.Returned, rec.DateReturned, rec.awaitingCheck = true, &now, false
		res.NewReturns++
	}
	jsonResponse(w, http.StatusOK, res)
}

// reportHandler summarises tracking, filtered by formId, returned and a
// from/to range (YYYY-MM-DD, inclusive) on the send date.
func (s *Server) reportHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var returned *bool
	if v := q.Get("returned"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errorResponse(w, http.StatusBadRequest, "Invalid returned filter")
			return
		}
		returned = &b
	}
	formID, from, to := q.Get("formId"), q.Get("from"), q.Get("to")

	s.mu.Lock()
	defer s.mu.Unlock()
	rep := models.Report{Records: []models.TrackingRecord{}}
	for _, rec := range s.tracking {
		day := rec.DateSent
		if len(day) > 10 {
			day = day[:10]
		}
		switch {
		case formID != "" && rec.FormID != formID,
			returned != nil && rec.Returned != *returned,
			from != "" && day < from,
			to != "" && day > to:
			continue
		}
		rep.Total++
		if rec.Returned {
			rep.Returned++
		} else {
			rep.Pending++
		}
		if rec.Processed {
			rep.Processed++
		}
		rep.Records = append(rep.Records, rec.TrackingRecord)
	}
	jsonResponse(w, http.StatusOK, rep)
}

// resendHandler delivers the tracked form to its recipient again, which
// starts a new tracking record.
func (s *Server) resendHandler(w http.ResponseWriter, r *http.Request) {
	var req models.SendRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.findRecord(mux.Vars(r)["id"])
	if rec == nil {
		errorResponse(w, http.StatusNotFound, "Tracking record not found")
		return
	}
	f, ok := s.forms[rec.FormID]
	if !ok {
		errorResponse(w, http.StatusNotFound, "Form not found")
		return
	}
	rcpt := models.SendRecipient{Email: rec.RecipientEmail, Name: rec.RecipientName}
	jsonResponse(w, http.StatusOK, s.deliver(f, rcpt, req.Subject, req.Message))
}

// ===== Extraction =====

func (s *Server) pendingExtractionsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.PendingExtraction{}
	for _, rec := range s.tracking {
		if !rec.Returned || rec.Processed {
			continue
		}
		p := models.PendingExtraction{
			ID:             rec.ID,
			RecipientEmail: rec.RecipientEmail,
			RecipientName:  rec.RecipientName,
			FormID:         rec.FormID,
			FormName:       rec.FormName,
		}
		if rec.DateReturned != nil {
			p.DateReturned = *rec.DateReturned
		}
		out = append(out, p)
	}
	jsonResponse(w, http.StatusOK, out)
}

// extractHandler processes returned forms by tracking id. Ids that are
// unknown, not returned or already processed count as failed.
func (s *Server) extractHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FormIDs []string `json:"formIds"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.FormIDs) == 0 {
		errorResponse(w, http.StatusBadRequest, "No forms specified")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	res := models.ExtractResult{Message: "Extraction completed", Processed: len(req.FormIDs)}
	for _, id := range req.FormIDs {
		rec := s.findRecord(id)
		if rec == nil || !rec.Returned || rec.Processed {
			res.Failed++
			continue
		}
		now := s.timestamp()
		rec.Processed, rec.DateProcessed = true, &now
		s.extracted = append(s.extracted, models.ExtractedData{
			ID:            uuid.NewString(),
			TrackingID:    rec.ID,
			FormName:      rec.FormName,
			RecipientName: rec.RecipientName,
			Fields: map[string]string{
				"Name":  rec.RecipientName,
				"Email": rec.RecipientEmail,
			},
			ExtractedAt: now,
		})
		res.Successful++
	}
	jsonResponse(w, http.StatusOK, res)
}

func (s *Server) extractedDataHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	jsonResponse(w, http.StatusOK, append([]models.ExtractedData{}, s.extracted...))
}

// exportHandler exports the selected rows, or all rows when none are given.
func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DataIDs []string `json:"dataIds"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	want := make(map[string]bool, len(req.DataIDs))
	for _, id := range req.DataIDs {
		want[id] = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	res := models.ExportResult{
		Message: "Export completed",
		File:    "extracted_data_" + s.now().UTC().Format("20060102T150405Z") + ".csv",
	}
	for _, d := range s.extracted {
		if len(want) == 0 || want[d.ID] {
			res.Rows++
		}
	}
	jsonResponse(w, http.StatusOK, res)
}
