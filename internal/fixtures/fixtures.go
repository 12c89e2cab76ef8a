// Package fixtures loads YAML-described models for tests: scalars,
// tables, and the formulas attached to them, plus the expected results
// once Evaluate has run.
//
// What: Load reads a fixtures file into a File holding its schema and the
// Expected values to assert against afterward; File.BuildModel turns it
// into a Model ready to hand to calcengine.Evaluate.
// How: gopkg.in/yaml.v3 unmarshals into a plain schema struct, mirroring
// the "struct tagged with yaml, unmarshal once, build the runtime objects
// from it" pattern the SQL engine's own example-driven test suite used for
// its tables/queries/expected fixtures.
// Why: every testable property and end-to-end scenario in this engine is
// most naturally expressed as "given this model, evaluating it produces
// these values" — a YAML fixture keeps that input/output pair in one
// readable file instead of constructing Model literals by hand in every
// test.
package fixtures

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/planforge/calcengine/internal/model"
	"github.com/planforge/calcengine/internal/value"
)

// File is the top-level shape of a fixtures YAML document.
type File struct {
	Scalars map[string]struct {
		Literal *float64 `yaml:"literal"`
		Formula string   `yaml:"formula"`
	} `yaml:"scalars"`

	Tables map[string]struct {
		Columns map[string][]interface{} `yaml:"columns"`
		Rows    map[string]string        `yaml:"row_formulas"`
	} `yaml:"tables"`

	Expected struct {
		Scalars map[string]interface{}              `yaml:"scalars"`
		Columns map[string]map[string][]interface{} `yaml:"columns"`
	} `yaml:"expected"`

	ExpectError string `yaml:"expect_error"`
}

// Load reads path and unmarshals it into a File.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixtures: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("fixtures: parsing %s: %w", path, err)
	}
	return &f, nil
}

// ScenarioSet is a fixtures file holding several independent named cases,
// each a File in its own right.
type ScenarioSet struct {
	Cases map[string]File `yaml:"cases"`
}

// LoadScenarios reads path and unmarshals it into a ScenarioSet.
func LoadScenarios(path string) (*ScenarioSet, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixtures: %w", err)
	}
	var s ScenarioSet
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("fixtures: parsing %s: %w", path, err)
	}
	return &s, nil
}

// BuildModel constructs a *model.Model from f, ready for Evaluate.
func (f *File) BuildModel() (*model.Model, error) {
	m := model.New()

	for name, s := range f.Scalars {
		switch {
		case s.Formula != "":
			m.AddScalar(model.NewFormulaScalar(name, s.Formula))
		case s.Literal != nil:
			m.AddScalar(model.NewLiteralScalar(name, *s.Literal))
		default:
			return nil, fmt.Errorf("fixtures: scalar %q has neither literal nor formula", name)
		}
	}

	for name, tbl := range f.Tables {
		t := model.NewTable(name)
		for colName, raw := range tbl.Columns {
			col, err := columnFromYAML(colName, raw)
			if err != nil {
				return nil, fmt.Errorf("fixtures: table %q column %q: %w", name, colName, err)
			}
			if err := t.AddColumn(col); err != nil {
				return nil, err
			}
		}
		for colName, formula := range tbl.Rows {
			t.AddRowFormula(colName, formula)
		}
		m.AddTable(t)
	}

	return m, nil
}

func columnFromYAML(name string, raw []interface{}) (*model.Column, error) {
	if len(raw) == 0 {
		return model.NewTextColumn(name, nil), nil
	}
	switch raw[0].(type) {
	case int, int64, float64:
		nums := make([]float64, len(raw))
		for i, v := range raw {
			f, ok := toFloat(v)
			if !ok {
				return nil, fmt.Errorf("row %d: expected number, got %T", i, v)
			}
			nums[i] = f
		}
		return model.NewNumberColumn(name, nums), nil
	case bool:
		bools := make([]bool, len(raw))
		for i, v := range raw {
			b, ok := v.(bool)
			if !ok {
				return nil, fmt.Errorf("row %d: expected boolean, got %T", i, v)
			}
			bools[i] = b
		}
		return model.NewBooleanColumn(name, bools), nil
	default:
		strs := make([]string, len(raw))
		for i, v := range raw {
			strs[i] = fmt.Sprintf("%v", v)
		}
		return model.NewTextColumn(name, strs), nil
	}
}

// ExpectedValue converts a raw YAML-decoded scalar (float64, int, string,
// or bool) into the Value it should compare equal to.
func ExpectedValue(raw interface{}) value.Value {
	switch x := raw.(type) {
	case float64:
		return value.Num(x)
	case int:
		return value.Num(float64(x))
	case bool:
		return value.Bool(x)
	case string:
		return value.Text(x)
	default:
		return value.Nil
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}
