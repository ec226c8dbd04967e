// Package plan serves the static strategic improvement plan shown next to the
// dashboard.
package plan

import (
	"bytes"
	_ "embed"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed plan.yaml
var planYAML []byte

// Priority of a corrective action.
const (
	PriorityCritical = "Crítica"
	PriorityHigh     = "Alta"
)

// Plan is the full strategic plan document.
type Plan struct {
	Title          string         `yaml:"title" json:"title"`
	Subtitle       string         `yaml:"subtitle" json:"subtitle"`
	Actions        []Action       `yaml:"actions" json:"actions"`
	Incentives     []Item         `yaml:"incentives" json:"incentives"`
	Tools          []Item         `yaml:"tools" json:"tools"`
	ObjectionCycle ObjectionCycle `yaml:"objection_cycle" json:"objectionCycle"`
	Summary        Summary        `yaml:"summary" json:"summary"`
}

// Action is a corrective action tied to one indicator.
type Action struct {
	Title       string `yaml:"title" json:"title"`
	Indicator   string `yaml:"indicator" json:"indicator"`
	Priority    string `yaml:"priority" json:"priority"`
	Description string `yaml:"description" json:"description"`
}

type Item struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

// ObjectionCycle is the ordered objection handling model.
type ObjectionCycle struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Steps       []Step `yaml:"steps" json:"steps"`
}

type Step struct {
	Key         string `yaml:"key" json:"key"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

type Summary struct {
	Title string `yaml:"title" json:"title"`
	Body  string `yaml:"body" json:"body"`
}

// Load decodes the embedded plan.
func Load() (Plan, error) {
	var p Plan
	dec := yaml.NewDecoder(bytes.NewReader(planYAML))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return Plan{}, eris.Wrap(err, "plan: decode")
	}
	return p, nil
}
