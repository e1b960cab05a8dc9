package director

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePlanPath(t *testing.T) {
	path := GeneratePlanPath("output/plans")

	assert.True(t, strings.HasPrefix(path, filepath.Join("output", "plans", "plan_")), path)
	assert.Equal(t, ".yaml", filepath.Ext(path))
}

func TestFindLatestPlan(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		filepath.Join(dir, "plan_2026-02-12_10-00-00.yaml"),
		filepath.Join(dir, "plan_2026-02-13_01-00-00.yaml"),
		filepath.Join(dir, "plan_2026-02-11_15-30-00.yaml"),
	}
	for i, f := range files {
		require.NoError(t, os.WriteFile(f, []byte("scenes: []\n"), 0644))
		modTime := time.Now().Add(time.Duration(i) * time.Hour)
		require.NoError(t, os.Chtimes(f, modTime, modTime))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	latest, err := FindLatestPlan(dir)
	require.NoError(t, err)
	assert.Equal(t, files[len(files)-1], latest)
}

func TestFindLatestPlanEmptyDir(t *testing.T) {
	_, err := FindLatestPlan(t.TempDir())
	assert.Error(t, err)
}
