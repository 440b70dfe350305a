package tuning

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Tuning holds scan defaults. Query documents and command-line flags override
// individual fields.
type Tuning struct {
	Workers    int    `yaml:"workers"`
	MaxMatches uint32 `yaml:"max_matches"`

	Scoring Scoring `yaml:"scoring"`

	// OutputDir is where finder writes result logs when no -out flag is given.
	OutputDir string `yaml:"output_dir"`
}

type Scoring struct {
	Tolerance int32 `yaml:"tolerance"`
	MaxScore  int32 `yaml:"max_score"`
}

func Defaults() Tuning {
	return Tuning{
		Workers:    runtime.NumCPU(),
		MaxMatches: 100,
		Scoring: Scoring{
			Tolerance: 1,
			MaxScore:  8,
		},
		OutputDir: "./data/results",
	}
}

// Load reads path over Defaults(); fields absent from the file keep their
// default values.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.Workers < 1 {
		return fmt.Errorf("workers must be >= 1")
	}
	if t.Scoring.Tolerance < 0 || t.Scoring.Tolerance > 15 {
		return fmt.Errorf("scoring.tolerance must be in [0, 15]")
	}
	if t.Scoring.MaxScore < 0 {
		return fmt.Errorf("scoring.max_score must be >= 0")
	}
	return nil
}
