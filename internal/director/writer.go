package director

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WritePlan writes a plan to a YAML file.
func WritePlan(plan Plan, path string) error {
	data, err := yaml.Marshal(plan)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadPlan reads a plan from a YAML (or JSON) file and normalizes it.
func ReadPlan(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, err
	}

	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return Plan{}, fmt.Errorf("invalid plan file %s: %w", path, err)
	}
	plan.Normalize()
	return plan, nil
}
