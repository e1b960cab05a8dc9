package director

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DefaultPlansDir holds saved plans.
const DefaultPlansDir = "output/plans"

// GeneratePlanPath creates a timestamped plan filename in dir.
func GeneratePlanPath(dir string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("plan_%s.yaml", timestamp))
}

// FindLatestPlan finds the most recently modified plan file in dir.
func FindLatestPlan(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read plans directory: %w", err)
	}

	type candidate struct {
		path    string
		modTime time.Time
	}
	var plans []candidate
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !(strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") || strings.HasSuffix(name, ".json")) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		plans = append(plans, candidate{filepath.Join(dir, name), info.ModTime()})
	}

	if len(plans) == 0 {
		return "", fmt.Errorf("no plan files found in %s", dir)
	}

	sort.Slice(plans, func(i, j int) bool {
		return plans[i].modTime.After(plans[j].modTime)
	})
	return plans[0].path, nil
}
