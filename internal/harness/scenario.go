package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sqlfinder/internal/finder"
)

// Scenario defines one finder run against a fixture.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Fixture is the path of the host fixture to seed.
	// Relative paths are resolved against the scenario file.
	Fixture string `yaml:"fixture"`

	// Language is the requested content language. Empty reads the default.
	Language string `yaml:"language,omitempty"`

	// Finder is the finder under test.
	Finder finder.Definition `yaml:"finder"`

	// Assertions validate the rows and the composed statement.
	Assertions []Assertion `yaml:"assertions"`

	// ExpectError, when set, makes the scenario pass only if building or
	// running the finder fails with an error containing this text.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Assertion validates the result of a scenario.
type Assertion struct {
	// Type is one of row_count, column_values, row_contains, columns or
	// sql_contains.
	Type string `yaml:"type"`

	// Count is the expected number of rows (row_count).
	Count int `yaml:"count,omitempty"`

	// Column names the checked column (column_values).
	Column string `yaml:"column,omitempty"`

	// Values are the expected column values in row order (column_values)
	// or the expected column names (columns).
	Values []any `yaml:"values,omitempty"`

	// Where selects the row by exact column values (row_contains).
	Where map[string]any `yaml:"where,omitempty"`

	// Expect contains expected column values (row_contains).
	// Subset match - only specified columns are validated.
	Expect map[string]any `yaml:"expect,omitempty"`

	// Text must occur in the composed statement (sql_contains).
	Text string `yaml:"text,omitempty"`
}

// Assertion type constants.
const (
	AssertRowCount     = "row_count"
	AssertColumnValues = "column_values"
	AssertRowContains  = "row_contains"
	AssertColumns      = "columns"
	AssertSQLContains  = "sql_contains"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve the fixture relative to the scenario BEFORE validation
	if scenario.Fixture != "" && !filepath.IsAbs(scenario.Fixture) {
		scenario.Fixture = filepath.Join(filepath.Dir(path), scenario.Fixture)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Fixture == "" {
		return fmt.Errorf("fixture is required")
	}
	if _, err := os.Stat(s.Fixture); os.IsNotExist(err) {
		return fmt.Errorf("fixture file not found: %s", s.Fixture)
	}
	if len(s.Assertions) == 0 && s.ExpectError == "" {
		return fmt.Errorf("assertions list is required unless expect_error is set")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertRowCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for row_count", index)
		}
	case AssertColumnValues:
		if a.Column == "" {
			return fmt.Errorf("assertions[%d]: column is required for column_values", index)
		}
	case AssertRowContains:
		if len(a.Where) == 0 {
			return fmt.Errorf("assertions[%d]: where is required for row_contains", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for row_contains", index)
		}
	case AssertColumns:
		if len(a.Values) == 0 {
			return fmt.Errorf("assertions[%d]: values list is required for columns", index)
		}
	case AssertSQLContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for sql_contains", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
