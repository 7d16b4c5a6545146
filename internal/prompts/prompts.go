package prompts

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	HandoverSummary = "handover_summary"
	SPOFDetection   = "spof_detection"
)

//go:embed prompts.yaml
var promptsFS embed.FS

// Prompt is a system instruction plus its sampling settings.
type Prompt struct {
	Name        string  `yaml:"name"`
	System      string  `yaml:"system"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

type yamlCatalog struct {
	Catalog string   `yaml:"catalog"`
	Version int      `yaml:"version"`
	Prompts []Prompt `yaml:"prompts"`
}

type Catalog struct {
	prompts map[string]Prompt
}

// Load reads the catalog from path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	var (
		data []byte
		err  error
	)
	if p := strings.TrimSpace(path); p != "" {
		data, err = os.ReadFile(p)
	} else {
		data, err = promptsFS.ReadFile("prompts.yaml")
	}
	if err != nil {
		return nil, fmt.Errorf("read prompts: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var raw yamlCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}
	if strings.TrimSpace(raw.Catalog) != "continuity" {
		return nil, fmt.Errorf("unexpected catalog: %q", raw.Catalog)
	}

	c := &Catalog{prompts: make(map[string]Prompt, len(raw.Prompts))}
	for _, p := range raw.Prompts {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, errors.New("prompt name is required")
		}
		if _, dup := c.prompts[name]; dup {
			return nil, fmt.Errorf("duplicate prompt: %s", name)
		}
		if strings.TrimSpace(p.System) == "" {
			return nil, fmt.Errorf("prompt %s: system is required", name)
		}
		if p.Temperature < 0 || p.Temperature > 2 {
			return nil, fmt.Errorf("prompt %s: temperature out of range", name)
		}
		if p.MaxTokens <= 0 {
			p.MaxTokens = 2048
		}
		p.Name = name
		p.System = strings.TrimSpace(p.System)
		c.prompts[name] = p
	}
	for _, required := range []string{HandoverSummary, SPOFDetection} {
		if _, ok := c.prompts[required]; !ok {
			return nil, fmt.Errorf("missing prompt: %s", required)
		}
	}
	return c, nil
}

func (c *Catalog) Get(name string) (Prompt, bool) {
	if c == nil {
		return Prompt{}, false
	}
	p, ok := c.prompts[name]
	return p, ok
}

// MustGet is for prompts Parse already guarantees exist.
func (c *Catalog) MustGet(name string) Prompt {
	p, ok := c.Get(name)
	if !ok {
		panic("prompts: unknown prompt " + name)
	}
	return p
}
