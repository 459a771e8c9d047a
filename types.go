package casinocms

import "time"

// TemplateRecord is the metadata kept for an uploaded template. FilePath
// points at the generated component once a conversion has succeeded.
type TemplateRecord struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	ComponentName string    `json:"componentName"`
	Category      string    `json:"category"`
	Description   string    `json:"description"`
	Active        bool      `json:"isActive"`
	FilePath      string    `json:"filePath,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// UploadResult is the JSON body returned by a successful upload.
type UploadResult struct {
	ComponentName string `json:"componentName"`
	Slug          string `json:"slug"`
	TemplateID    string `json:"templateId"`
	Message       string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}
