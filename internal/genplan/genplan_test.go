package genplan

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/claude/gymgenie/internal/models"
)

// scriptedCaller replays a fixed sequence of responses and records prompts.
type scriptedCaller struct {
	responses []response
	calls     int
	prompts   []string
}

type response struct {
	text string
	err  error
}

func (c *scriptedCaller) Generate(ctx context.Context, prompt string) (string, error) {
	c.prompts = append(c.prompts, prompt)
	r := c.responses[c.calls]
	c.calls++
	return r.text, r.err
}

// newTestGenerator wires a Generator with recorded sleeps instead of real
// backoff delays.
func newTestGenerator(caller Caller) (*Generator, *[]time.Duration) {
	g := New(caller, slog.New(slog.NewTextHandler(io.Discard, nil)))
	var slept []time.Duration
	g.sleep = func(d time.Duration) { slept = append(slept, d) }
	return g, &slept
}

func validPlanJSON(t *testing.T) string {
	t.Helper()
	var p models.Plan
	for week := 1; week <= models.PlanWeeks; week++ {
		for day := 1; day <= models.PlanDaysPerWeek; day++ {
			p = append(p, models.Workout{
				Week:  week,
				Day:   day,
				Focus: "Lower Body",
				WeightExercises: []models.Exercise{
					{Name: "Squat", Sets: 4, Reps: "6-8", Description: "Barbell back squat"},
				},
				Cardio: models.Cardio{Type: "Treadmill", Duration: 30},
			})
		}
	}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func testProfile() models.Profile {
	return models.Profile{
		Name:       "Alex",
		Height:     models.Height{Feet: 5, Inches: 10},
		Weight:     180,
		GoalWeight: 170,
		Goal:       models.GoalLoseWeight,
		Physique:   models.PhysiqueLean,
	}
}

// TestGenerateSucceedsOnThirdAttempt verifies two empty responses are
// retried with 2s and 4s delays, and the third attempt's plan is returned.
func TestGenerateSucceedsOnThirdAttempt(t *testing.T) {
	caller := &scriptedCaller{responses: []response{
		{text: ""},
		{text: "   "},
		{text: validPlanJSON(t)},
	}}
	g, slept := newTestGenerator(caller)

	plan, err := g.GenerateInitialPlan(context.Background(), testProfile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan) != models.PlanSize {
		t.Errorf("plan has %d workouts, want %d", len(plan), models.PlanSize)
	}
	if caller.calls != 3 {
		t.Errorf("calls = %d, want 3", caller.calls)
	}

	want := []time.Duration{2 * time.Second, 4 * time.Second}
	if len(*slept) != len(want) {
		t.Fatalf("slept %v, want %v", *slept, want)
	}
	for i, d := range want {
		if (*slept)[i] != d {
			t.Errorf("delay %d = %v, want %v", i, (*slept)[i], d)
		}
	}
}

// TestGenerateExhaustsAttempts verifies three failures produce an error
// naming the attempt count and wrapping the last underlying message.
func TestGenerateExhaustsAttempts(t *testing.T) {
	caller := &scriptedCaller{responses: []response{
		{err: errors.New("connection reset")},
		{text: ""},
		{err: errors.New("upstream timeout")},
	}}
	g, slept := newTestGenerator(caller)

	_, err := g.GenerateInitialPlan(context.Background(), testProfile())
	if !errors.Is(err, ErrAttemptsExhausted) {
		t.Fatalf("error = %v, want ErrAttemptsExhausted", err)
	}
	if !strings.Contains(err.Error(), "3") {
		t.Errorf("error %q does not name the attempt count", err)
	}
	if !strings.Contains(err.Error(), "upstream timeout") {
		t.Errorf("error %q does not include the last underlying message", err)
	}
	if len(*slept) != 2 {
		t.Errorf("slept %d times, want 2", len(*slept))
	}
}

// TestGenerateInvalidJSONIsPermanent verifies a malformed JSON reply is
// surfaced immediately without retrying.
func TestGenerateInvalidJSONIsPermanent(t *testing.T) {
	caller := &scriptedCaller{responses: []response{
		{text: "I'm sorry, here is your plan: ```json"},
	}}
	g, slept := newTestGenerator(caller)

	_, err := g.GenerateInitialPlan(context.Background(), testProfile())
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("error = %v, want ErrInvalidResponse", err)
	}
	if caller.calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on parse failure)", caller.calls)
	}
	if len(*slept) != 0 {
		t.Errorf("slept %d times, want 0", len(*slept))
	}
}

// TestGenerateShortPlanIsPermanent verifies a parseable reply with the wrong
// workout count is a permanent validation failure.
func TestGenerateShortPlanIsPermanent(t *testing.T) {
	var p models.Plan
	if err := json.Unmarshal([]byte(validPlanJSON(t)), &p); err != nil {
		t.Fatal(err)
	}
	short, err := json.Marshal(p[:59])
	if err != nil {
		t.Fatal(err)
	}

	caller := &scriptedCaller{responses: []response{{text: string(short)}}}
	g, _ := newTestGenerator(caller)

	_, err = g.GenerateInitialPlan(context.Background(), testProfile())
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("error = %v, want ErrInvalidResponse", err)
	}
	if caller.calls != 1 {
		t.Errorf("calls = %d, want 1", caller.calls)
	}
}

// TestGenerateSortsUnorderedReply verifies the returned plan is sorted by
// (week, day) regardless of the order the model emitted entries.
func TestGenerateSortsUnorderedReply(t *testing.T) {
	var p models.Plan
	if err := json.Unmarshal([]byte(validPlanJSON(t)), &p); err != nil {
		t.Fatal(err)
	}
	for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
		p[i], p[j] = p[j], p[i]
	}
	shuffled, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}

	caller := &scriptedCaller{responses: []response{{text: string(shuffled)}}}
	g, _ := newTestGenerator(caller)

	plan, err := g.GenerateInitialPlan(context.Background(), testProfile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(plan); i++ {
		prev, cur := plan[i-1], plan[i]
		if cur.Week < prev.Week || (cur.Week == prev.Week && cur.Day <= prev.Day) {
			t.Fatalf("plan not sorted at %d: (%d,%d) after (%d,%d)", i, cur.Week, cur.Day, prev.Week, prev.Day)
		}
	}
}

// TestInitialPromptEmbedsProfile verifies the generation prompt carries the
// profile attributes and structural constraints.
func TestInitialPromptEmbedsProfile(t *testing.T) {
	caller := &scriptedCaller{responses: []response{{text: validPlanJSON(t)}}}
	g, _ := newTestGenerator(caller)

	if _, err := g.GenerateInitialPlan(context.Background(), testProfile()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prompt := caller.prompts[0]
	for _, want := range []string{"Alex", "5' 10\"", "180 lbs", "170 lbs", "Lose Weight", "progressive overload", "12-week"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

// TestModifyPromptEmbedsPlanAndRequest verifies the modification prompt
// carries the current plan, the user request, and the preserve-completed
// instruction.
func TestModifyPromptEmbedsPlanAndRequest(t *testing.T) {
	var current models.Plan
	if err := json.Unmarshal([]byte(validPlanJSON(t)), &current); err != nil {
		t.Fatal(err)
	}
	current[0].WeightExercises[0].Completed = true

	reply, err := json.Marshal(current)
	if err != nil {
		t.Fatal(err)
	}
	caller := &scriptedCaller{responses: []response{{text: string(reply)}}}
	g, _ := newTestGenerator(caller)

	plan, err := g.ModifyPlan(context.Background(), current, "swap squats for leg press")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !plan[0].WeightExercises[0].Completed {
		t.Error("completed flag lost through modification round trip")
	}

	prompt := caller.prompts[0]
	for _, want := range []string{"swap squats for leg press", "Preserve the 'completed' status", "Squat"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
