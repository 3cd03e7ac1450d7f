package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"atelier-learning-service/internal/config"
)

// NewSeedCmd loads the sample catalogue into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the database with the sample catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath)
		},
	}
}

func runSeed(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	for _, m := range sampleModules() {
		_, err := db.ExecContext(ctx, `INSERT INTO modules
			(id, title, category, level, description, is_premium, lessons_count, duration, rating, students, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO NOTHING`,
			m.ID, m.Title, m.Category, m.Level, m.Description, m.Premium, m.LessonsCount, m.Duration, m.Rating, m.Students, m.CreatedAt)
		if err != nil {
			return fmt.Errorf("seed module %s: %w", m.ID, err)
		}
	}

	for _, l := range sampleLessons() {
		_, err := db.ExecContext(ctx, `INSERT INTO lessons
			(id, module_id, title, content_kind, order_index, duration)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO NOTHING`,
			l.ID, l.ModuleID, l.Title, l.ContentKind, l.OrderIndex, l.Duration)
		if err != nil {
			return fmt.Errorf("seed lesson %s: %w", l.ID, err)
		}
	}

	for _, q := range sampleQuizQuestions() {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("marshal options for %s: %w", q.ID, err)
		}
		_, err = db.ExecContext(ctx, `INSERT INTO quiz_questions
			(id, module_id, prompt, options, correct_answer)
			VALUES (?, ?, ?, ?::jsonb, ?)
			ON CONFLICT (id) DO NOTHING`,
			q.ID, q.ModuleID, q.Prompt, string(options), q.CorrectAnswer)
		if err != nil {
			return fmt.Errorf("seed question %s: %w", q.ID, err)
		}
	}

	log.Printf("sample catalogue seeded")
	return nil
}
