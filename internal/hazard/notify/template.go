package notify

import (
	"bytes"
	"errors"
	"fmt"
	"text/template"
	"time"

	hazard "aura-panel/internal/hazard/domain"
)

const DefaultTemplate = `[Rover {{.EventLabel}}]
Hazard: {{.Channel}}
{{.Message}}
Rover State: {{.RoverState}}
Detected: {{.DetectedAt}}`

// TemplateData provides fields for rendering notification content.
type TemplateData struct {
	Channel    string
	EventLabel string
	Message    string
	RoverState string
	GasLevel   string
	DetectedAt string
}

// Template renders hazard notification content.
type Template struct {
	tpl *template.Template
}

// NewTemplate parses a notification template, falling back to DefaultTemplate.
func NewTemplate(tpl string) (*Template, error) {
	if tpl == "" {
		tpl = DefaultTemplate
	}
	parsed, err := template.New("hazard-notification").Parse(tpl)
	if err != nil {
		return nil, err
	}
	return &Template{tpl: parsed}, nil
}

// Render applies the template to a hazard.
func (t *Template) Render(h hazard.Hazard) (string, error) {
	if t == nil || t.tpl == nil {
		return "", errors.New("hazard template: nil")
	}
	data := TemplateData{
		Channel:    string(h.Type),
		EventLabel: eventLabel(h.Type),
		Message:    h.Message,
		RoverState: h.RoverState,
		DetectedAt: h.DetectedAt.UTC().Format(time.RFC3339),
	}
	if h.GasLevel != nil {
		data.GasLevel = fmt.Sprintf("%.0f", *h.GasLevel)
	}
	var buf bytes.Buffer
	if err := t.tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func eventLabel(verdict hazard.Verdict) string {
	switch verdict {
	case hazard.VerdictFire:
		return "Fire Alert"
	case hazard.VerdictGas:
		return "Gas Alert"
	default:
		return "Alert"
	}
}
