package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/claude/gymgenie/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned by FetchRecord when no row exists for the user.
// The absence of a record is a valid application state (no profile yet), not
// a storage failure.
var ErrNotFound = errors.New("record not found")

// FetchRecord loads the profile and plan for a user. Returns ErrNotFound
// when the user has no record; any other error is a real failure.
func (db *DB) FetchRecord(ctx context.Context, id uuid.UUID) (*models.Record, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, name, height_feet, height_inches, weight, goal_weight,
		 goal, physique, plan_start_date, plan
		 FROM profiles WHERE id = $1`,
		id)

	var rec models.Record
	var planJSON []byte
	err := row.Scan(&rec.Profile.ID, &rec.Profile.Name,
		&rec.Profile.Height.Feet, &rec.Profile.Height.Inches,
		&rec.Profile.Weight, &rec.Profile.GoalWeight,
		&rec.Profile.Goal, &rec.Profile.Physique,
		&rec.Profile.PlanStartDate, &planJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying record: %w", err)
	}

	if planJSON != nil {
		if err := json.Unmarshal(planJSON, &rec.Plan); err != nil {
			return nil, fmt.Errorf("decoding stored plan: %w", err)
		}
	}
	return &rec, nil
}

// UpsertProfileAndPlan writes the full record: profile columns plus the plan
// as JSONB, creating or replacing the row.
func (db *DB) UpsertProfileAndPlan(ctx context.Context, profile models.Profile, plan models.Plan) error {
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO profiles (id, name, height_feet, height_inches, weight,
		 goal_weight, goal, physique, plan_start_date, plan, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW())
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name,
		   height_feet = EXCLUDED.height_feet,
		   height_inches = EXCLUDED.height_inches,
		   weight = EXCLUDED.weight,
		   goal_weight = EXCLUDED.goal_weight,
		   goal = EXCLUDED.goal,
		   physique = EXCLUDED.physique,
		   plan_start_date = EXCLUDED.plan_start_date,
		   plan = EXCLUDED.plan,
		   updated_at = NOW()`,
		profile.ID, profile.Name, profile.Height.Feet, profile.Height.Inches,
		profile.Weight, profile.GoalWeight, profile.Goal, profile.Physique,
		profile.PlanStartDate, planJSON)
	if err != nil {
		return fmt.Errorf("upserting record: %w", err)
	}
	return nil
}

// UpdatePlan updates only the plan column for an existing record.
func (db *DB) UpdatePlan(ctx context.Context, id uuid.UUID, plan models.Plan) error {
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}

	tag, err := db.Pool.Exec(ctx,
		`UPDATE profiles SET plan = $2, updated_at = NOW() WHERE id = $1`,
		id, planJSON)
	if err != nil {
		return fmt.Errorf("updating plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating plan: no record for user %s", id)
	}
	return nil
}
