package models

type EmailTemplates struct {
	DefaultSubject string `json:"default_subject"`
	DefaultBody    string `json:"default_body"`
	Signature      string `json:"signature"`
}

// Integration reports which SharePoint/OneDrive credentials are configured.
// The backend never returns secret values, only whether they are set.
type Integration struct {
	ClientID       bool   `json:"clientId"`
	ClientSecret   bool   `json:"clientSecret"`
	SharepointSite string `json:"sharepointSite"`
}

type Settings struct {
	EmailTemplates EmailTemplates `json:"emailTemplates"`
	Integration    Integration    `json:"integration"`
}

// IntegrationUpdate carries new credential values; empty fields are left unchanged.
type IntegrationUpdate struct {
	ClientID       string `json:"clientId,omitempty"`
	ClientSecret   string `json:"clientSecret,omitempty"`
	SharepointSite string `json:"sharepointSite,omitempty"`
}

type SettingsUpdate struct {
	EmailTemplates *EmailTemplates    `json:"emailTemplates,omitempty"`
	Integration    *IntegrationUpdate `json:"integration,omitempty"`
}

type IntegrationTestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
