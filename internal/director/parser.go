package director

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ParseResult is the outcome of reading model output: either a plan was
// found (OK) or nothing usable was (zero value).
type ParseResult struct {
	Plan Plan
	OK   bool
}

// Parse extracts a scene plan from unstructured model output. It first
// decodes the whole text, then falls back to the span between the first
// '{' and the last '}'. A result is OK only when a JSON object with a
// "scenes" array was decoded; scene fields are read with defaults.
func Parse(raw string) ParseResult {
	text := strings.TrimSpace(raw)
	if plan, ok := decodePlan(text); ok {
		return ParseResult{Plan: plan, OK: true}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ParseResult{}
	}
	if plan, ok := decodePlan(text[start : end+1]); ok {
		return ParseResult{Plan: plan, OK: true}
	}
	return ParseResult{}
}

func decodePlan(text string) (Plan, bool) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return Plan{}, false
	}
	rawScenes, ok := doc["scenes"]
	if !ok {
		return Plan{}, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(rawScenes, &items); err != nil {
		return Plan{}, false
	}

	plan := Plan{Scenes: make([]Scene, 0, len(items))}
	for _, item := range items {
		var fields map[string]any
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			continue
		}
		scene := Scene{
			ImageIndex: intField(fields, "image_index", 0),
			Duration:   floatField(fields, "duration", DefaultSceneDuration),
			Motion:     Motion(stringField(fields, "motion", string(MotionNone))),
			Text:       stringField(fields, "text", ""),
		}
		scene.Normalize()
		plan.Scenes = append(plan.Scenes, scene)
	}
	return plan, true
}

func floatField(fields map[string]any, key string, def float64) float64 {
	switch v := fields[key].(type) {
	case float64:
		return v
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil {
			return f
		}
	}
	return def
}

func intField(fields map[string]any, key string, def int) int {
	f := floatField(fields, key, math.NaN())
	switch {
	case math.IsNaN(f):
		return def
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int(f)
}

func stringField(fields map[string]any, key, def string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return def
}
