// Package harp holds the HARP X-ray inspection checklist template and the
// tolerance rules applied to measured exposure values.
package harp

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed checklist.yaml
var checklistYAML []byte

type Item struct {
	Code string `yaml:"code" json:"code"`
	Text string `yaml:"text" json:"text"`
}

type Section struct {
	Title string `yaml:"title" json:"title"`
	Items []Item `yaml:"items" json:"items"`
}

type Checklist struct {
	Version  int       `yaml:"version" json:"version"`
	Sections []Section `yaml:"sections" json:"sections"`
}

// LoadChecklist parses the embedded checklist template.
func LoadChecklist() (*Checklist, error) {
	return ParseChecklist(checklistYAML)
}

// ParseChecklist parses a checklist template and rejects empty or duplicate
// item codes.
func ParseChecklist(data []byte) (*Checklist, error) {
	var c Checklist
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse checklist: %w", err)
	}

	seen := make(map[string]bool)
	for _, s := range c.Sections {
		for _, it := range s.Items {
			if it.Code == "" {
				return nil, fmt.Errorf("checklist section %q has an item without a code", s.Title)
			}
			if seen[it.Code] {
				return nil, fmt.Errorf("duplicate checklist code %q", it.Code)
			}
			seen[it.Code] = true
		}
	}
	if len(seen) == 0 {
		return nil, fmt.Errorf("checklist has no items")
	}
	return &c, nil
}

// Codes lists every item code in template order.
func (c *Checklist) Codes() []string {
	var codes []string
	for _, s := range c.Sections {
		for _, it := range s.Items {
			codes = append(codes, it.Code)
		}
	}
	return codes
}

// Lookup returns the item with code.
func (c *Checklist) Lookup(code string) (Item, bool) {
	for _, s := range c.Sections {
		for _, it := range s.Items {
			if it.Code == code {
				return it, true
			}
		}
	}
	return Item{}, false
}
