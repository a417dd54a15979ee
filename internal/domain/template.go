package domain

import (
	"errors"
	"strings"
	"time"
)

// PromptTemplate is a reusable text template with {{name}} placeholders.
// Registering a template with an existing id replaces it.
type PromptTemplate struct {
	ID         string
	Name       string
	Type       ContentType
	Body       string
	Variables  []string
	Tags       []string
	GuardianID string
	Negative   string
}

func (t PromptTemplate) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("template id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("template name is required")
	}
	if strings.TrimSpace(string(t.Type)) == "" {
		return errors.New("template type is required")
	}
	if strings.TrimSpace(t.Body) == "" {
		return errors.New("template body is required")
	}
	return nil
}

// GeneratedPrompt is the immutable result of rendering a template.
type GeneratedPrompt struct {
	TemplateID string
	Text       string
	Negative   string
	Variables  map[string]string
	Context    map[string]string
	CreatedAt  time.Time
}
