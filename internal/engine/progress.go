package engine

import (
	"fmt"
	"math"

	"surveyflow/internal/model"
)

// Progress is the respondent's progress through a survey
type Progress struct {
	Mode     model.ProgressMode `json:"mode"`
	Answered int                `json:"answered"`
	Total    int                `json:"total"`
	Percent  int                `json:"percent"`
	Display  string             `json:"display"`
}

// Value is the percentage in percentage mode and the "answered / total"
// label in count mode.
func (p Progress) Value() interface{} {
	if p.Mode == model.ProgressCount {
		return p.Display
	}
	return p.Percent
}

// ComputeProgress counts answer keys against the questions on all pages.
// Keys are not cross-checked against the pages, so a key that no longer
// maps to a page question still counts as answered.
func ComputeProgress(pages []model.Page, answers *AnswerStore, mode model.ProgressMode) Progress {
	total := 0
	for _, p := range pages {
		total += len(p.Questions)
	}
	answered := answers.Len()

	percent := 0
	if total > 0 {
		percent = int(math.Round(math.Min(100, float64(answered)/float64(total)*100)))
	}

	p := Progress{Mode: mode, Answered: answered, Total: total, Percent: percent}
	if mode == model.ProgressCount {
		p.Display = fmt.Sprintf("%d / %d", answered, total)
	} else {
		p.Mode = model.ProgressPercentage
		p.Display = fmt.Sprintf("%d%%", percent)
	}
	return p
}
