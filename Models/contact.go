package Models

import "strings"

// Submission is the payload of the contact form.
type Submission struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required"`
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (s Submission) Trimmed() Submission {
	return Submission{
		Name:    strings.TrimSpace(s.Name),
		Email:   strings.TrimSpace(s.Email),
		Subject: strings.TrimSpace(s.Subject),
		Message: strings.TrimSpace(s.Message),
	}
}

// Result is the JSON body returned by the contact endpoint.
type Result struct {
	Ok    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}
