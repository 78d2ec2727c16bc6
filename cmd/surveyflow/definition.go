package main

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"surveyflow/internal/engine"
	"surveyflow/internal/model"
)

// readDefinition loads a survey definition from a YAML file.
func readDefinition(path string) (*model.Survey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var survey model.Survey
	if err := yaml.Unmarshal(data, &survey); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := survey.Normalize(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &survey, nil
}

func writePages(w io.Writer, survey *model.Survey) error {
	pages := engine.BuildPages(survey.Questions, survey.Settings.Pagination)

	fmt.Fprintf(w, "Survey %d: %s\n", survey.ID, survey.Name)
	fmt.Fprintf(w, "pagination=%s progress=%s skipping=%t pages=%d\n",
		survey.Settings.Pagination, survey.Settings.ProgressDisplay, survey.Settings.SkippingAllowed(), len(pages))

	for _, p := range pages {
		fmt.Fprintf(w, "\nPage %d", p.Number)
		if p.Title != "" {
			fmt.Fprintf(w, " - %s", p.Title)
		}
		fmt.Fprintln(w)
		for _, q := range p.Questions {
			mark := ""
			if q.Required {
				mark = " *"
			}
			fmt.Fprintf(w, "  %d. [%s] %s%s\n", q.ID, q.Kind, q.Text, mark)
		}
	}
	if len(pages) == 0 {
		fmt.Fprintln(w, "\nNo answerable questions.")
	}
	if survey.Settings.ClosingMessage != "" {
		fmt.Fprintf(w, "\nClosing message: %s\n", survey.Settings.ClosingMessage)
	}
	return nil
}
