package notify

import (
	"bytes"
	"errors"
	"text/template"
)

const DefaultTemplate = `[Community Simulation {{.RunID}}]
Season: {{.Season}}
Members: {{.CommunitySize}} (PV {{.PVPercentage}}%, smart devices {{.SDPercentage}}%, battery {{.WithBattery}})
Timesteps: {{.Steps}}
Cost with community: {{printf "%.2f" .CostWithLEC}}
Cost without community: {{printf "%.2f" .CostWithoutLEC}}
Traded locally (kWh): {{printf "%.3f" .TradingVolume}}`

// Template renders notification content.
type Template struct {
	tpl *template.Template
}

// NewTemplate parses a notification template, falling back to DefaultTemplate.
func NewTemplate(tpl string) (*Template, error) {
	if tpl == "" {
		tpl = DefaultTemplate
	}
	parsed, err := template.New("run-notification").Parse(tpl)
	if err != nil {
		return nil, err
	}
	return &Template{tpl: parsed}, nil
}

// Render applies the template to a run message.
func (t *Template) Render(msg RunMessage) (string, error) {
	if t == nil || t.tpl == nil {
		return "", errors.New("run template: nil")
	}
	var buf bytes.Buffer
	if err := t.tpl.Execute(&buf, msg); err != nil {
		return "", err
	}
	return buf.String(), nil
}
