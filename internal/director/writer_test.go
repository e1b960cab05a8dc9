package director

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanWriteRead(t *testing.T) {
	plan := Plan{Scenes: []Scene{
		{ImageIndex: 0, Duration: 1.0, Motion: MotionNone, Text: "Hi"},
		{ImageIndex: 1, Duration: 2.0, Motion: MotionZoomIn},
	}}
	path := filepath.Join(t.TempDir(), "plan.yaml")

	require.NoError(t, WritePlan(plan, path))
	got, err := ReadPlan(path)
	require.NoError(t, err)
	assert.Equal(t, plan, got)
}

func TestReadPlanAcceptsJSONAndNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	raw := `{"scenes":[{"image_index":-3,"duration":0,"motion":"spin","text":"x"}]}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	got, err := ReadPlan(path)
	require.NoError(t, err)
	require.Len(t, got.Scenes, 1)
	assert.Equal(t, Scene{ImageIndex: 0, Duration: DefaultSceneDuration, Motion: MotionNone, Text: "x"}, got.Scenes[0])
}

func TestReadPlanMissingFile(t *testing.T) {
	_, err := ReadPlan(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
