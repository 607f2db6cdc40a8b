package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/civicsprep/civics-practice/internal/domain/entities"
)

var ErrTestConfigNotFound = errors.New("test config not found")

type testConfigsFile struct {
	Configs []entities.TestConfig `json:"configs"`
}

// TestConfigRepository holds the test variant definitions, loaded once
// at startup from a JSON file and validated.
type TestConfigRepository struct {
	configs []entities.TestConfig
}

// NewTestConfigRepository loads and validates the test configs at path.
func NewTestConfigRepository(path string) (*TestConfigRepository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read test configs: %w", err)
	}

	var file testConfigsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse test configs: %w", err)
	}
	if len(file.Configs) == 0 {
		return nil, errors.New("no test configs defined")
	}

	for _, cfg := range file.Configs {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return &TestConfigRepository{configs: file.Configs}, nil
}

// All returns every test variant definition.
func (r *TestConfigRepository) All() []entities.TestConfig {
	out := make([]entities.TestConfig, len(r.configs))
	copy(out, r.configs)
	return out
}

// GetByType returns the config for the given variant identifier.
func (r *TestConfigRepository) GetByType(testType string) (entities.TestConfig, error) {
	for _, cfg := range r.configs {
		if cfg.TestType == testType {
			return cfg, nil
		}
	}
	return entities.TestConfig{}, ErrTestConfigNotFound
}
