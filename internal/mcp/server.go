package mcp

import (
	"context"
	"log/slog"

	"github.com/claude/gymgenie/internal/session"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
// Falls back to the local dev user when none is set.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(userIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("local"))
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(sessions *session.Registry, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("GymGenie", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("GymGenie workout plan server. Inspect the 12-week plan, check off exercises, request plan modifications, and log completed workouts. All data is scoped to the authenticated user."),
	)

	h := &handlers{sessions: sessions, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetPlan, Handler: h.getPlan},
		server.ServerTool{Tool: toolGetTodaysWorkout, Handler: h.getTodaysWorkout},
		server.ServerTool{Tool: toolToggleExercise, Handler: h.toggleExercise},
		server.ServerTool{Tool: toolModifyPlan, Handler: h.modifyPlan},
		server.ServerTool{Tool: toolLogWorkout, Handler: h.logWorkout},
		server.ServerTool{Tool: toolGetHistory, Handler: h.getHistory},
	)

	s.AddResources(
		server.ServerResource{Resource: resTodaysWorkout, Handler: h.todaysWorkout},
		server.ServerResource{Resource: resPlanSummary, Handler: h.planSummary},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	sessions *session.Registry
	log      *slog.Logger
}

// --- Resource definitions ---

var resTodaysWorkout = mcp.NewResource(
	"gymgenie://todays_workout",
	"Today's Workout",
	mcp.WithResourceDescription("The workout scheduled for the current plan week and day, with completion status"),
	mcp.WithMIMEType("application/json"),
)

var resPlanSummary = mcp.NewResource(
	"gymgenie://plan_summary",
	"Plan Summary",
	mcp.WithResourceDescription("Per-workout focus and completion counts across the full 12-week plan"),
	mcp.WithMIMEType("application/json"),
)
