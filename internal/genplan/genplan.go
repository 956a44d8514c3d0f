// Package genplan wraps the generative model that produces and modifies
// 12-week workout plans.
package genplan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/claude/gymgenie/internal/models"
)

const (
	maxAttempts = 3
	backoffBase = 2 * time.Second
)

// ErrInvalidResponse marks a permanent failure: the model replied with
// malformed JSON or a plan violating the schema. Retrying without changing
// the request will not help, so these are never retried.
var ErrInvalidResponse = errors.New("invalid plan response")

// ErrAttemptsExhausted marks a generation where every attempt failed
// transiently. The last underlying failure is wrapped alongside it.
var ErrAttemptsExhausted = errors.New("plan generation retries exhausted")

// errEmptyResponse marks a reply with no textual payload — content filtering
// or a transient service hiccup. Treated as a failed attempt, not success.
var errEmptyResponse = errors.New("empty response from model")

// Caller is the injected model capability. One prompt in, one full text
// document out.
type Caller interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Generator produces and modifies workout plans through a Caller.
type Generator struct {
	caller Caller
	log    *slog.Logger
	sleep  func(time.Duration) // swapped out in tests
}

// New creates a Generator over the given caller.
func New(caller Caller, log *slog.Logger) *Generator {
	return &Generator{caller: caller, log: log, sleep: time.Sleep}
}

// GenerateInitialPlan asks the model for a fresh 12-week plan tailored to
// the profile. The returned plan is validated (60 workouts, unique keys) and
// sorted ascending by week then day regardless of the order the model
// emitted entries.
func (g *Generator) GenerateInitialPlan(ctx context.Context, profile models.Profile) (models.Plan, error) {
	return g.generate(ctx, initialPrompt(profile))
}

// ModifyPlan sends the current plan verbatim plus the user's free-text
// request and returns the complete updated plan, validated and sorted the
// same way as GenerateInitialPlan.
func (g *Generator) ModifyPlan(ctx context.Context, current models.Plan, request string) (models.Plan, error) {
	prompt, err := modifyPrompt(current, request)
	if err != nil {
		return nil, err
	}
	return g.generate(ctx, prompt)
}

// generate runs the call with bounded retries, then parses and normalizes
// the reply. Call failures and empty replies are transient and retried with
// exponential backoff (2s, 4s). A reply that parses but violates the plan
// shape is permanent and surfaced immediately.
func (g *Generator) generate(ctx context.Context, prompt string) (models.Plan, error) {
	var lastErr error
	for attempt := range maxAttempts {
		if attempt > 0 {
			g.log.Warn("plan generation attempt failed, retrying",
				"attempt", attempt, "error", lastErr)
			g.sleep(backoffBase << uint(attempt-1))
		}

		text, err := g.caller.Generate(ctx, prompt)
		if err != nil {
			lastErr = err
			continue
		}
		if strings.TrimSpace(text) == "" {
			lastErr = errEmptyResponse
			continue
		}

		return parsePlan(text)
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrAttemptsExhausted, maxAttempts, lastErr)
}

// parsePlan decodes the model reply into a plan and enforces the structural
// post-conditions. Any failure here is permanent.
func parsePlan(text string) (models.Plan, error) {
	var plan models.Plan
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &plan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	plan.Sort()
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return plan, nil
}

func initialPrompt(user models.Profile) string {
	return fmt.Sprintf(`
User Profile:
- Name: %s
- Height: %d' %d"
- Current Weight: %.0f lbs
- Goal Weight: %.0f lbs
- Primary Goal: %s
- Desired Physique: %s - The user wants to gain muscle and get lean (body recomposition), with an emphasis on achieving this physique.

Workout Constraints:
- Create a full 12-week plan.
- 5 workout days per week.
- 20-45 minutes of weight training per session.
- 30 minutes of treadmill cardio after each weight session.

Please generate a balanced 12-week workout plan tailored to this user's profile and constraints.
- The plan must be specifically designed to help the user go from their current weight to their goal weight with their desired physique in mind.
- The plan must incorporate the principle of progressive overload. This means the workouts should gradually become more challenging over the 12 weeks, for example by increasing reps, sets, or exercise difficulty.
- Each day should have a clear focus (e.g., Upper Body Push, Lower Body, etc.).
- The exercises should be common and effective for their goal.
- For each exercise, provide a brief description or instruction on how to perform it.
- Ensure the 'completed' field for each exercise is initially set to false.
- The final output should be a single JSON array containing 60 workout objects (12 weeks * 5 days).
`,
		user.Name, user.Height.Feet, user.Height.Inches,
		user.Weight, user.GoalWeight,
		models.GoalLabels[user.Goal], models.PhysiqueLabels[user.Physique])
}

func modifyPrompt(current models.Plan, request string) (string, error) {
	planJSON, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding current plan: %w", err)
	}

	return fmt.Sprintf(`
You are an AI assistant that modifies a user's 12-week workout plan based on their request.
The user's current plan is provided as a JSON object. The user's modification request is provided as a string.
Your task is to return the complete, updated 12-week workout plan as a single JSON array.

**CRITICAL INSTRUCTIONS:**
1.  Your ENTIRE response MUST be the raw JSON array.
2.  Do NOT wrap the JSON in markdown code blocks.
3.  Do NOT add any introductory text, explanations, or concluding remarks.
4.  The returned JSON MUST conform to the original schema.
5.  Preserve the 'completed' status of exercises unless the request implies otherwise.
6.  Ensure the plan still adheres to the principles of progressive overload and the user's original goals.

Here is the user's current 12-week workout plan:
%s

Here is the user's request: "%s"

Now, provide the complete, modified 12-week plan as a single JSON array.
`, planJSON, request), nil
}
