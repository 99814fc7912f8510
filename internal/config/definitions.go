package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go-quality-pipeline/internal/model"
	"go-quality-pipeline/internal/store"

	"github.com/google/uuid"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ruleDef mirrors model.QualityRule with an optional active flag so rules
// declared without one default to active.
type ruleDef struct {
	ID          string                 `json:"id" yaml:"id" toml:"id"`
	Name        string                 `json:"name" yaml:"name" toml:"name"`
	Description string                 `json:"description" yaml:"description" toml:"description"`
	RuleType    string                 `json:"rule_type" yaml:"rule_type" toml:"rule_type"`
	Field       string                 `json:"field" yaml:"field" toml:"field"`
	Condition   map[string]interface{} `json:"condition" yaml:"condition" toml:"condition"`
	Severity    string                 `json:"severity" yaml:"severity" toml:"severity"`
	Active      *bool                  `json:"active" yaml:"active" toml:"active"`
}

type definitionsFile struct {
	Sources   []model.DataSource `json:"data_sources" yaml:"data_sources" toml:"data_sources"`
	Pipelines []model.Pipeline   `json:"pipelines" yaml:"pipelines" toml:"pipelines"`
	Rules     []ruleDef          `json:"quality_rules" yaml:"quality_rules" toml:"quality_rules"`
}

// LoadDefinitions reads sources, pipelines and rules from a YAML, TOML or
// JSON file, chosen by extension.
func LoadDefinitions(path string) (*store.Definitions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definitions: %w", err)
	}
	defs, err := ParseDefinitions(data, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

// ParseDefinitions decodes definitions in format (yaml, yml, toml or json).
// Sources without an id get one, and a pipeline source_id naming a source by
// name is rewritten to that source's id.
func ParseDefinitions(data []byte, format string) (*store.Definitions, error) {
	var file definitionsFile
	var err error
	switch strings.ToLower(format) {
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &file)
	case "toml":
		err = toml.Unmarshal(data, &file)
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&file)
	default:
		return nil, fmt.Errorf("unsupported definitions format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s definitions: %w", format, err)
	}

	defs := &store.Definitions{
		Sources:   file.Sources,
		Pipelines: file.Pipelines,
		Rules:     make([]model.QualityRule, 0, len(file.Rules)),
	}
	for _, r := range file.Rules {
		active := true
		if r.Active != nil {
			active = *r.Active
		}
		defs.Rules = append(defs.Rules, model.QualityRule{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			RuleType:    r.RuleType,
			Field:       r.Field,
			Condition:   r.Condition,
			Severity:    r.Severity,
			Active:      active,
		})
	}

	resolveSources(defs)
	if err := validateDefinitions(defs); err != nil {
		return nil, err
	}
	return defs, nil
}

func resolveSources(defs *store.Definitions) {
	byName := make(map[string]string, len(defs.Sources))
	for i := range defs.Sources {
		src := &defs.Sources[i]
		if src.ID == "" {
			src.ID = uuid.New().String()
		}
		byName[src.Name] = src.ID
	}
	for i := range defs.Pipelines {
		p := &defs.Pipelines[i]
		if id, ok := byName[p.SourceID]; ok {
			p.SourceID = id
		}
	}
}

func validateDefinitions(defs *store.Definitions) error {
	seen := make(map[string]bool)
	check := func(kind, id, name string) error {
		if name == "" {
			return fmt.Errorf("%s without a name", kind)
		}
		if id == "" {
			return nil
		}
		if seen[kind+"/"+id] {
			return fmt.Errorf("duplicate %s id %q", kind, id)
		}
		seen[kind+"/"+id] = true
		return nil
	}
	for _, s := range defs.Sources {
		if err := check("data source", s.ID, s.Name); err != nil {
			return err
		}
	}
	for _, p := range defs.Pipelines {
		if err := check("pipeline", p.ID, p.Name); err != nil {
			return err
		}
	}
	for _, r := range defs.Rules {
		if err := check("quality rule", r.ID, r.Name); err != nil {
			return err
		}
	}
	return nil
}
