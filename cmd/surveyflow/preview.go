package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"surveyflow/internal/service"
)

var previewCmd = &cobra.Command{
	Use:   "preview [surveyId]",
	Short: "Show how a survey is split into pages",
	Long: `Print the pages of a survey as respondents will see them.

With --file the definition is read from a YAML file and no backend is needed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().String("file", "", "YAML survey definition")
}

func runPreview(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if path, _ := cmd.Flags().GetString("file"); path != "" {
		survey, err := readDefinition(path)
		if err != nil {
			return err
		}
		return writePages(out, survey)
	}

	if len(args) == 0 {
		return errors.New("give a survey id or --file")
	}
	surveyID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid survey id %q", args[0])
	}

	ctx := cmd.Context()
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.Close(context.Background())

	survey, err := service.NewSurveyService(b.source, b.cache, log).Load(ctx, surveyID)
	if err != nil {
		return err
	}
	return writePages(out, survey)
}
