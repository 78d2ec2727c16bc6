package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"surveyflow/internal/cache"
	"surveyflow/internal/config"
	"surveyflow/internal/repository"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load YAML survey definitions into MongoDB",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringSlice("file", nil, "YAML survey definition (repeatable)")
	_ = seedCmd.MarkFlagRequired("file")
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	paths, _ := cmd.Flags().GetStringSlice("file")

	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Backend != config.BackendMongo {
		return fmt.Errorf("seed writes to MongoDB; set backend to %q", config.BackendMongo)
	}

	db, disconnect, err := connectMongo(ctx, cfg.Mongo, log)
	if err != nil {
		return err
	}
	defer disconnect(context.Background())

	var definitions cache.DefinitionCache
	if cfg.Redis.Addr != "" {
		rdb, err := connectRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			return err
		}
		defer rdb.Close()
		definitions = cache.NewDefinitionCache(rdb, cfg.Redis.DefinitionTTL)
	}

	repo := repository.NewSurveyRepo(db)
	for _, path := range paths {
		survey, err := readDefinition(path)
		if err != nil {
			return err
		}
		if survey.ID == 0 {
			return fmt.Errorf("%s: survey id is required", path)
		}
		if err := repo.Upsert(ctx, survey); err != nil {
			return fmt.Errorf("seed survey %d: %w", survey.ID, err)
		}
		if definitions != nil {
			if err := definitions.Delete(ctx, survey.ID); err != nil {
				log.Warn("cache invalidation failed", zap.Int("survey_id", survey.ID), zap.Error(err))
			}
		}
		log.Info("seeded survey", zap.Int("survey_id", survey.ID), zap.String("name", survey.Name), zap.Int("questions", len(survey.Questions)))
		fmt.Fprintf(cmd.OutOrStdout(), "seeded survey %d (%s)\n", survey.ID, survey.Name)
	}
	return nil
}
