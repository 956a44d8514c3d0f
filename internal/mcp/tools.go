package mcp

import (
	"context"

	"github.com/claude/gymgenie/internal/session"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolGetPlan = mcp.NewTool("get_plan",
	mcp.WithDescription("Retrieve the full 12-week workout plan (60 workouts), or a single week of it."),
	mcp.WithNumber("week", mcp.Description("Restrict to one plan week (1-12). Omit for the full plan.")),
)

var toolGetTodaysWorkout = mcp.NewTool("get_todays_workout",
	mcp.WithDescription("Get the workout for the current plan week and day, including whether it can be logged and whether it was already logged today."),
)

var toolToggleExercise = mcp.NewTool("toggle_exercise",
	mcp.WithDescription("Toggle the completion flag of an exercise (matched by name) in the workout at the given week and day. The change is persisted to the plan store."),
	mcp.WithNumber("week", mcp.Required(), mcp.Description("Plan week (1-12)")),
	mcp.WithNumber("day", mcp.Required(), mcp.Description("Plan day (1-5)")),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name, e.g. 'Barbell Bench Press'")),
)

var toolModifyPlan = mcp.NewTool("modify_plan",
	mcp.WithDescription("Send a free-text modification request to the plan generator (e.g. 'replace squats with leg press'). Returns the updated plan."),
	mcp.WithString("request", mcp.Required(), mcp.Description("Natural-language modification request")),
)

var toolLogWorkout = mcp.NewTool("log_workout",
	mcp.WithDescription("Log the current workout as completed. Refused unless every weight exercise is checked off, and at most once per calendar day."),
)

var toolGetHistory = mcp.NewTool("get_history",
	mcp.WithDescription("List logged workouts, newest first."),
)

// --- Tool handlers ---

func (h *handlers) manager(ctx context.Context) (*session.Manager, error) {
	return h.sessions.Get(ctx, UserIDFromContext(ctx))
}

func (h *handlers) getPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := h.manager(ctx)
	if err != nil {
		h.log.Error("mcp get_plan", "error", err)
		return mcp.NewToolResultError("session unavailable: " + err.Error()), nil
	}

	snap := m.Snapshot()
	if len(snap.Plan) == 0 {
		return mcp.NewToolResultError("no plan exists for this user"), nil
	}

	week := req.GetInt("week", 0)
	if week == 0 {
		result, err := mcp.NewToolResultJSON(snap.Plan)
		if err != nil {
			return mcp.NewToolResultError("serialization failed"), nil
		}
		return result, nil
	}

	var filtered []any
	for _, w := range snap.Plan {
		if w.Week == week {
			filtered = append(filtered, w)
		}
	}
	result, err := mcp.NewToolResultJSON(filtered)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTodaysWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := h.manager(ctx)
	if err != nil {
		return mcp.NewToolResultError("session unavailable: " + err.Error()), nil
	}

	workout, found := m.ActiveWorkout()
	if !found {
		return mcp.NewToolResultError("no workout for the current week and day"), nil
	}
	logged, err := m.LoggedToday()
	if err != nil {
		return mcp.NewToolResultError("history unavailable: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"workout":     workout,
		"canLog":      session.CanLog(workout),
		"loggedToday": logged,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) toggleExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	week, err := req.RequireInt("week")
	if err != nil {
		return mcp.NewToolResultError("week parameter is required"), nil
	}
	day, err := req.RequireInt("day")
	if err != nil {
		return mcp.NewToolResultError("day parameter is required"), nil
	}
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	m, err := h.manager(ctx)
	if err != nil {
		return mcp.NewToolResultError("session unavailable: " + err.Error()), nil
	}
	if err := m.ToggleExercise(ctx, week, day, exercise); err != nil {
		h.log.Error("mcp toggle_exercise", "error", err)
		return mcp.NewToolResultError("toggle failed: " + err.Error()), nil
	}

	workout, _ := m.Snapshot().Plan.Workout(week, day)
	result, err := mcp.NewToolResultJSON(workout)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) modifyPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	request, err := req.RequireString("request")
	if err != nil {
		return mcp.NewToolResultError("request parameter is required"), nil
	}

	m, err := h.manager(ctx)
	if err != nil {
		return mcp.NewToolResultError("session unavailable: " + err.Error()), nil
	}
	if err := m.ModifyPlan(ctx, request); err != nil {
		h.log.Error("mcp modify_plan", "error", err)
		return mcp.NewToolResultError("modification failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(m.Snapshot().Plan)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) logWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := h.manager(ctx)
	if err != nil {
		return mcp.NewToolResultError("session unavailable: " + err.Error()), nil
	}
	entries, err := m.LogWorkout(ctx)
	if err != nil {
		return mcp.NewToolResultError("log refused: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(entries)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := h.manager(ctx)
	if err != nil {
		return mcp.NewToolResultError("session unavailable: " + err.Error()), nil
	}
	entries, err := m.History()
	if err != nil {
		return mcp.NewToolResultError("history unavailable: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(entries)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
