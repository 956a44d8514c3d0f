package genplan

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// workoutSchema constrains the model's reply to a JSON array of workout
// objects matching the plan shape.
var workoutSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"week":  {Type: genai.TypeInteger, Description: "The week number of the plan (1-12)"},
			"day":   {Type: genai.TypeInteger, Description: "Day of the workout week (1-5)"},
			"focus": {Type: genai.TypeString, Description: "Main focus of the workout, e.g. 'Upper Body Push'"},
			"weightExercises": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":        {Type: genai.TypeString},
						"sets":        {Type: genai.TypeInteger},
						"reps":        {Type: genai.TypeString, Description: "Repetition range, e.g. '8-12'"},
						"description": {Type: genai.TypeString, Description: "A brief instruction for the exercise."},
						"completed":   {Type: genai.TypeBoolean, Description: "Always false initially"},
					},
					Required: []string{"name", "sets", "reps", "description", "completed"},
				},
			},
			"cardio": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"type":     {Type: genai.TypeString, Description: "e.g. Treadmill"},
					"duration": {Type: genai.TypeInteger, Description: "Duration in minutes"},
				},
				Required: []string{"type", "duration"},
			},
		},
		Required: []string{"week", "day", "focus", "weightExercises", "cardio"},
	},
}

// GeminiCaller invokes the Gemini API with the workout response schema.
// The underlying client is created lazily on first use because client
// construction needs a context.
type GeminiCaller struct {
	apiKey string
	model  string
	client *genai.Client
}

// NewGeminiCaller creates a caller for the given API key and model.
func NewGeminiCaller(apiKey, model string) *GeminiCaller {
	return &GeminiCaller{apiKey: apiKey, model: model}
}

// Generate sends the prompt and returns the model's text reply. The reply is
// constrained to JSON matching the workout array schema.
func (g *GeminiCaller) Generate(ctx context.Context, prompt string) (string, error) {
	if g.client == nil {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  g.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return "", fmt.Errorf("creating Gemini client: %w", err)
		}
		g.client = client
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   workoutSchema,
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("Gemini call: %w", err)
	}
	if result == nil {
		return "", nil
	}
	return result.Text(), nil
}
