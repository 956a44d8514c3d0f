package mcp

import (
	"context"
	"encoding/json"

	"github.com/claude/gymgenie/internal/session"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) todaysWorkout(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	m, err := h.manager(ctx)
	if err != nil {
		return nil, err
	}

	workout, found := m.ActiveWorkout()
	payload := map[string]any{"workout": nil}
	if found {
		logged, err := m.LoggedToday()
		if err != nil {
			h.log.Warn("todays_workout: history load failed", "error", err)
		}
		payload = map[string]any{
			"workout":     workout,
			"canLog":      session.CanLog(workout),
			"loggedToday": logged,
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) planSummary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	m, err := h.manager(ctx)
	if err != nil {
		return nil, err
	}

	snap := m.Snapshot()
	type row struct {
		Week      int    `json:"week"`
		Day       int    `json:"day"`
		Focus     string `json:"focus"`
		Completed int    `json:"completed"`
		Total     int    `json:"total"`
	}
	rows := make([]row, 0, len(snap.Plan))
	for _, w := range snap.Plan {
		done := 0
		for _, ex := range w.WeightExercises {
			if ex.Completed {
				done++
			}
		}
		rows = append(rows, row{
			Week: w.Week, Day: w.Day, Focus: w.Focus,
			Completed: done, Total: len(w.WeightExercises),
		})
	}

	data, err := json.Marshal(map[string]any{
		"state":       snap.State,
		"currentWeek": snap.Week,
		"currentDay":  snap.Day,
		"workouts":    rows,
	})
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
