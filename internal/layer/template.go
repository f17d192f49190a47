package layer

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Navigator compatibility note: several layer fields are boolean-like but
// must serialize as the literal strings "true"/"false", not JSON booleans.
// They are plain strings here for that reason.

// Versions pins the layer to Navigator's expected format versions.
type Versions struct {
	Attack    string `json:"attack" yaml:"attack"`
	Navigator string `json:"navigator" yaml:"navigator"`
	Layer     string `json:"layer" yaml:"layer"`
}

// Filters holds the platform filter rendered into the layer.
type Filters struct {
	Platforms []string `json:"platforms"`
}

// Layout controls how Navigator renders the matrix.
type Layout struct {
	Layout   string `json:"layout" yaml:"layout"`
	ShowID   string `json:"showID" yaml:"showID"`
	ShowName string `json:"showName" yaml:"showName"`
}

// Gradient maps scores to cell colors.
type Gradient struct {
	Colors   []string `json:"colors" yaml:"colors"`
	MinValue int      `json:"minValue" yaml:"minValue"`
	MaxValue int      `json:"maxValue" yaml:"maxValue"`
}

// Document is a complete ATT&CK Navigator layer.
type Document struct {
	Versions                      Versions      `json:"versions"`
	Domain                        string        `json:"domain"`
	Description                   string        `json:"description"`
	Name                          string        `json:"name"`
	Filters                       Filters       `json:"filters"`
	Sorting                       int           `json:"sorting"`
	Layout                        Layout        `json:"layout"`
	HideDisabled                  string        `json:"hideDisabled"`
	Gradient                      Gradient      `json:"gradient"`
	LegendItems                   []interface{} `json:"legendItems"`
	Metadata                      []interface{} `json:"metadata"`
	ShowTacticRowBackground       string        `json:"showTacticRowBackground"`
	TacticRowBackground           string        `json:"tacticRowBackground"`
	SelectTechniquesAcrossTactics string        `json:"selectTechniquesAcrossTactics"`
	SelectSubtechniquesWithParent string        `json:"selectSubtechniquesWithParent"`
	Techniques                    []Entry       `json:"techniques"`
}

// NewDocument returns a fresh layer with the default template values. Each
// invocation gets its own value, so mutating one layer can never bleed into
// another.
func NewDocument() *Document {
	return &Document{
		Versions: Versions{
			Attack:    "8",
			Navigator: "4.2",
			Layer:     "4.1",
		},
		Domain:      "enterprise-attack",
		Description: "",
		Sorting:     0,
		Layout: Layout{
			Layout:   "side",
			ShowID:   "false",
			ShowName: "true",
		},
		HideDisabled: "false",
		Gradient: Gradient{
			Colors:   []string{"#ff6666", "#ffe766", "#8ec843"},
			MinValue: 0,
			MaxValue: 100,
		},
		LegendItems:                   []interface{}{},
		Metadata:                      []interface{}{},
		ShowTacticRowBackground:       "false",
		TacticRowBackground:           "#dddddd",
		SelectTechniquesAcrossTactics: "true",
		SelectSubtechniquesWithParent: "false",
	}
}

// Overrides is the YAML template-override file: every field is optional and
// replaces the corresponding default when present.
type Overrides struct {
	Versions                *Versions `yaml:"versions"`
	Layout                  *Layout   `yaml:"layout"`
	Gradient                *Gradient `yaml:"gradient"`
	ShowTacticRowBackground *bool     `yaml:"showTacticRowBackground"`
	TacticRowBackground     *string   `yaml:"tacticRowBackground"`
}

// LoadOverrides parses a template-override file. Unknown keys are an error
// so a typo cannot silently produce the default template.
func LoadOverrides(path string) (*Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template overrides: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var o Overrides
	if err := dec.Decode(&o); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &o, nil
}

// Apply folds the overrides into the document.
func (o *Overrides) Apply(doc *Document) {
	if o == nil {
		return
	}
	if o.Versions != nil {
		doc.Versions = *o.Versions
	}
	if o.Layout != nil {
		doc.Layout = *o.Layout
	}
	if o.Gradient != nil {
		doc.Gradient = *o.Gradient
	}
	if o.ShowTacticRowBackground != nil {
		doc.ShowTacticRowBackground = boolString(*o.ShowTacticRowBackground)
	}
	if o.TacticRowBackground != nil {
		doc.TacticRowBackground = *o.TacticRowBackground
	}
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
