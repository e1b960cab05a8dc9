package director

import (
	"context"
	"fmt"
	"strings"

	"github.com/ivlev/adforge/internal/config"
	"github.com/ivlev/adforge/internal/llm"
	"github.com/ivlev/adforge/internal/logger"

	"go.uber.org/zap"
)

const systemPrompt = "You are a professional ad director. Return ONLY valid JSON."

// DefaultTemperature keeps plans close to reproducible.
const DefaultTemperature = 0.4

// Director turns an ad description into a scene plan via a language model.
type Director struct {
	Client      llm.Completer
	Canvas      config.Canvas
	Temperature float64
	log         *zap.Logger
}

// NewDirector creates a Director with the default temperature.
func NewDirector(client llm.Completer, canvas config.Canvas, log *zap.Logger) *Director {
	return &Director{
		Client:      client,
		Canvas:      canvas,
		Temperature: DefaultTemperature,
		log:         logger.OrNop(log),
	}
}

// Generate asks the model for a plan. Any failure yields an empty plan.
func (d *Director) Generate(ctx context.Context, description string) Plan {
	raw, err := d.Client.Complete(ctx, llm.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   BuildPrompt(description, d.Canvas),
		Temperature:  d.Temperature,
	})
	if err != nil {
		d.log.Warn("scene plan generation failed", zap.Error(err))
		return Plan{}
	}

	res := Parse(raw)
	if !res.OK {
		d.log.Warn("model response contained no scene plan", zap.Int("response_bytes", len(raw)))
		return Plan{}
	}

	d.log.Info("scene plan generated", zap.Int("scenes", len(res.Plan.Scenes)))
	return res.Plan
}

// BuildPrompt embeds the description in the fixed rule set.
func BuildPrompt(description string, canvas config.Canvas) string {
	motions := make([]string, len(Motions))
	for i, m := range Motions {
		motions[i] = string(m)
	}

	return fmt.Sprintf(`
Create a scene plan for a %s video ad based on this description:
%s

Rules:
- Return JSON with key "scenes": [{"image_index": 0, "duration": 1.5, "motion":"zoom_in", "text":"Scene text"}]
- Use motions: %s
- Provide duration per scene in seconds
- Respect order of scenes
- Maximum %d scenes
- Return ONLY valid JSON, no explanations
`, canvas.Orientation(), description, strings.Join(motions, ", "), MaxScenes)
}
