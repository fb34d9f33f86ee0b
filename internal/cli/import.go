package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"assessment-engine/internal/config"
	pgstore "assessment-engine/internal/infra/postgres"
	rediscache "assessment-engine/internal/infra/redis"
	"assessment-engine/internal/ingest"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewImportCmd loads a question CSV into Postgres.
func NewImportCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import questions from a CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), *configPath, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "CSV file with question,option1..option4,correctAnswer,level rows")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runImport(ctx context.Context, configPath, file string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	questions, err := ingest.ParseCSV(f)
	if err != nil {
		return err
	}
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return err
		}
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	n, err := pgstore.NewQuestionWriter(pool).SaveQuestions(ctx, questions)
	if err != nil {
		return err
	}
	log.Printf("imported %d questions from %s", n, file)

	// running servers share the redis cache; drop the levels this import touched
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()

		levels := make([]string, 0)
		seen := make(map[string]struct{})
		for _, q := range questions {
			if _, ok := seen[q.Level]; !ok {
				seen[q.Level] = struct{}{}
				levels = append(levels, q.Level)
			}
		}
		bank := rediscache.NewQuestionBank(client, pgstore.NewQuestionLoader(pool), config.TTLDuration(cfg.Questions.TTL, 10*time.Minute))
		bank.Invalidate(ctx, levels...)
	}
	return nil
}
