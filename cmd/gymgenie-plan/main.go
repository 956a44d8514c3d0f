// Command gymgenie-plan generates an initial 12-week plan for a profile
// described in a YAML file, printing it as JSON or persisting it to the
// record store. Useful for seeding a user without going through the app.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/claude/gymgenie/internal/config"
	"github.com/claude/gymgenie/internal/genplan"
	"github.com/claude/gymgenie/internal/models"
	"github.com/claude/gymgenie/internal/storage"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type profileFile struct {
	ID         string  `yaml:"id"`
	Name       string  `yaml:"name"`
	HeightFeet int     `yaml:"height_feet"`
	HeightIn   int     `yaml:"height_inches"`
	Weight     float64 `yaml:"weight"`
	GoalWeight float64 `yaml:"goal_weight"`
	Goal       string  `yaml:"goal"`
	Physique   string  `yaml:"physique"`
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	profilePath := flag.String("profile", "", "path to profile YAML (required)")
	save := flag.Bool("save", false, "upsert the profile and generated plan into the record store")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *profilePath == "" {
		fmt.Fprintf(os.Stderr, "Usage: gymgenie-plan -config config.yaml -profile profile.yaml [-save]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	profile, err := loadProfile(*profilePath)
	if err != nil {
		log.Error("failed to load profile", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	caller := genplan.NewGeminiCaller(cfg.Gemini.APIKey, cfg.Gemini.Model)
	generator := genplan.New(caller, log)

	log.Info("generating plan", "user", profile.Name, "goal", profile.Goal)
	plan, err := generator.GenerateInitialPlan(ctx, profile)
	if err != nil {
		log.Error("plan generation failed", "error", err)
		os.Exit(1)
	}
	log.Info("plan generated", "workouts", len(plan))

	if *save {
		if err := storage.RunMigrations(cfg.Database.DSN()); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		db, err := storage.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.UpsertProfileAndPlan(ctx, profile, plan); err != nil {
			log.Error("failed to persist plan", "error", err)
			os.Exit(1)
		}
		log.Info("plan saved", "user_id", profile.ID)
		return
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(plan); err != nil {
		log.Error("failed to print plan", "error", err)
		os.Exit(1)
	}
}

func loadProfile(path string) (models.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Profile{}, fmt.Errorf("reading profile file: %w", err)
	}

	var pf profileFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return models.Profile{}, fmt.Errorf("parsing profile file: %w", err)
	}

	id := uuid.New()
	if pf.ID != "" {
		id, err = uuid.Parse(pf.ID)
		if err != nil {
			return models.Profile{}, fmt.Errorf("parsing profile id: %w", err)
		}
	}

	goal := models.Goal(pf.Goal)
	if _, ok := models.GoalLabels[goal]; !ok {
		return models.Profile{}, fmt.Errorf("unknown goal %q", pf.Goal)
	}
	physique := models.Physique(pf.Physique)
	if _, ok := models.PhysiqueLabels[physique]; !ok {
		return models.Profile{}, fmt.Errorf("unknown physique %q", pf.Physique)
	}

	start := time.Now()
	return models.Profile{
		ID:            id,
		Name:          pf.Name,
		Height:        models.Height{Feet: pf.HeightFeet, Inches: pf.HeightIn},
		Weight:        pf.Weight,
		GoalWeight:    pf.GoalWeight,
		Goal:          goal,
		Physique:      physique,
		PlanStartDate: &start,
	}, nil
}
