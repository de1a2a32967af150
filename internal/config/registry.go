package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"jobradar-engine/internal/domain"
)

// LoadRegistry reads the company registry: the static ordered list of sources
// the orchestrator walks. The pipeline treats it as read-only.
func LoadRegistry(path string) ([]domain.Company, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read companies file: %w", err)
	}

	var doc struct {
		Companies []domain.Company `yaml:"companies"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse companies file: %w", err)
	}

	ids := make([]string, 0, len(doc.Companies))
	for _, c := range doc.Companies {
		ids = append(ids, c.ID)
	}
	if err := ValidateRegistry(ids); err != nil {
		return nil, err
	}
	return doc.Companies, nil
}
