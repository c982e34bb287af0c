package api

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"sales_admin/internal/sales"
)

// Fixture is the stub's initial data set.
type Fixture struct {
	Catalog sales.Catalog  `yaml:"catalog"`
	Sales   []sales.Detail `yaml:"sales"`
}

// LoadFixture reads a YAML fixture file. An empty path yields an empty
// fixture.
func LoadFixture(path string) (Fixture, error) {
	var fx Fixture
	if path == "" {
		return fx, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fx, fmt.Errorf("read fixture: %w", err)
	}
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		return fx, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return fx, nil
}
