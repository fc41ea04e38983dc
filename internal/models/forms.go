package models

// ===== Domain Models =====

type Form struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Path    string `json:"path,omitempty"`
	Size    int64  `json:"size"`
	Created string `json:"created"`
}

type Recipient struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	FormsSent     int    `json:"formsSent"`
	FormsReturned int    `json:"formsReturned"`
}

type TrackingRecord struct {
	ID             string  `json:"id"`
	RecipientEmail string  `json:"recipientEmail"`
	RecipientName  string  `json:"recipientName"`
	FormID         string  `json:"formId"`
	FormName       string  `json:"formName"`
	DateSent       string  `json:"dateSent"`
	Returned       bool    `json:"returned"`
	DateReturned   *string `json:"dateReturned"`
	Processed      bool    `json:"processed"`
	DateProcessed  *string `json:"dateProcessed"`
}

// PendingExtraction is a returned form that has not been processed yet.
type PendingExtraction struct {
	ID             string `json:"id"`
	RecipientEmail string `json:"recipientEmail"`
	RecipientName  string `json:"recipientName"`
	FormID         string `json:"formId"`
	FormName       string `json:"formName"`
	DateReturned   string `json:"dateReturned"`
}

// ExtractedData holds the field values read from a returned form.
type ExtractedData struct {
	ID            string            `json:"id"`
	TrackingID    string            `json:"trackingId"`
	FormName      string            `json:"formName"`
	RecipientName string            `json:"recipientName"`
	Fields        map[string]string `json:"fields"`
	ExtractedAt   string            `json:"extractedAt"`
}

type SendRequest struct {
	Recipients []SendRecipient `json:"recipients"`
	Subject    string          `json:"subject,omitempty"`
	Message    string          `json:"message,omitempty"`
}

type SendRecipient struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type SendResult struct {
	Recipient SendRecipient `json:"recipient"`
	Status    string        `json:"status"`
	Message   string        `json:"message"`
}

type ExtractResult struct {
	Message    string `json:"message"`
	Processed  int    `json:"processed"`
	Successful int    `json:"successful"`
	Failed     int    `json:"failed"`
}

type CheckReturnsResult struct {
	Message    string `json:"message"`
	NewReturns int    `json:"newReturns"`
}

// ReportOptions filters a tracking report.
type ReportOptions struct {
	FormID   string `json:"formId,omitempty"`
	Returned *bool  `json:"returned,omitempty"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
}

type Report struct {
	Total     int              `json:"total"`
	Returned  int              `json:"returned"`
	Pending   int              `json:"pending"`
	Processed int              `json:"processed"`
	Records   []TrackingRecord `json:"records"`
}

type ExportResult struct {
	Message string `json:"message"`
	File    string `json:"file"`
	Rows    int    `json:"rows"`
}

type BackupResult struct {
	Message string `json:"message"`
	File    string `json:"file"`
}

// Activity is one row of the dashboard recent-activity table.
type Activity struct {
	Date     string `json:"date"`
	Activity string `json:"activity"`
	Status   string `json:"status"`
}

type DashboardSummary struct {
	FormsCount         int        `json:"formsCount"`
	RecipientsCount    int        `json:"recipientsCount"`
	EmailsSentCount    int        `json:"emailsSentCount"`
	FormsReturnedCount int        `json:"formsReturnedCount"`
	RecentActivity     []Activity `json:"recentActivity"`
}

type ImportResult struct {
	Message  string `json:"message"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
}
