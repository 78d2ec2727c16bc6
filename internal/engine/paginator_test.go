package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyflow/internal/model"
)

func section(id int, text string) model.Question {
	return model.Question{ID: id, Text: text, Kind: model.KindSection}
}

func freeText(id int, required bool) model.Question {
	return model.Question{ID: id, Text: "question", Kind: model.KindFreeText, Required: required}
}

var policies = []model.PaginationPolicy{
	model.PaginationOnePage,
	model.PaginationPerSection,
	model.PaginationPerQuestion,
}

var paginationInputs = map[string][]model.Question{
	"empty":             nil,
	"no sections":       {freeText(1, false), freeText(2, true), freeText(3, false)},
	"leading section":   {section(10, "Intro"), freeText(1, false), freeText(2, false)},
	"back to back":      {section(10, "A"), section(11, "B"), freeText(1, false), section(12, "C"), freeText(2, false)},
	"trailing section":  {freeText(1, false), section(10, "End")},
	"only sections":     {section(10, "A"), section(11, "B")},
	"interleaved":       {freeText(1, true), section(10, "A"), freeText(2, false), freeText(3, false), section(11, "B"), freeText(4, true)},
	"section at middle": {freeText(1, false), section(10, "Mid"), freeText(2, false)},
}

func nonSections(questions []model.Question) []int {
	ids := []int{}
	for _, q := range questions {
		if !q.IsSection() {
			ids = append(ids, q.ID)
		}
	}
	return ids
}

func pageIDs(pages []model.Page) []int {
	ids := []int{}
	for _, p := range pages {
		for _, q := range p.Questions {
			ids = append(ids, q.ID)
		}
	}
	return ids
}

func TestBuildPages_PreservesQuestionOrder(t *testing.T) {
	for name, questions := range paginationInputs {
		for _, policy := range policies {
			t.Run(name+"/"+string(policy), func(t *testing.T) {
				pages := BuildPages(questions, policy)
				if diff := cmp.Diff(nonSections(questions), pageIDs(pages)); diff != "" {
					t.Errorf("page questions mismatch (-want +got):\n%s", diff)
				}
				for i, p := range pages {
					assert.Equal(t, i+1, p.Number)
					for _, q := range p.Questions {
						assert.False(t, q.IsSection(), "section %d placed on a page", q.ID)
					}
				}
			})
		}
	}
}

func TestBuildPages_PerSectionNeverEmitsEmptyPage(t *testing.T) {
	for name, questions := range paginationInputs {
		t.Run(name, func(t *testing.T) {
			for _, p := range BuildPages(questions, model.PaginationPerSection) {
				assert.NotEmpty(t, p.Questions, "page %d is empty", p.Number)
			}
		})
	}
}

func TestBuildPages_Idempotent(t *testing.T) {
	for name, questions := range paginationInputs {
		for _, policy := range policies {
			first := BuildPages(questions, policy)
			second := BuildPages(questions, policy)
			if diff := cmp.Diff(first, second); diff != "" {
				t.Errorf("%s/%s: second call differs (-first +second):\n%s", name, policy, diff)
			}
		}
	}
}

func TestBuildPages_OnePage(t *testing.T) {
	pages := BuildPages(paginationInputs["interleaved"], model.PaginationOnePage)
	require.Len(t, pages, 1)
	assert.Empty(t, pages[0].Title)
	assert.Equal(t, []int{1, 2, 3, 4}, pageIDs(pages))

	empty := BuildPages(nil, model.PaginationOnePage)
	require.Len(t, empty, 1)
	assert.Empty(t, empty[0].Questions)
}

func TestBuildPages_PerSectionTitles(t *testing.T) {
	pages := BuildPages(paginationInputs["back to back"], model.PaginationPerSection)
	require.Len(t, pages, 2)
	assert.Equal(t, "B", pages[0].Title)
	assert.Equal(t, []model.Question{freeText(1, false)}, pages[0].Questions)
	assert.Equal(t, "C", pages[1].Title)
	assert.Equal(t, 2, pages[1].Number)

	pages = BuildPages(paginationInputs["interleaved"], model.PaginationPerSection)
	require.Len(t, pages, 3)
	assert.Equal(t, []string{"", "A", "B"}, []string{pages[0].Title, pages[1].Title, pages[2].Title})

	assert.Empty(t, BuildPages(paginationInputs["only sections"], model.PaginationPerSection))
	assert.Len(t, BuildPages(paginationInputs["trailing section"], model.PaginationPerSection), 1)
}

func TestBuildPages_PerQuestionInheritsSectionTitle(t *testing.T) {
	questions := []model.Question{section(10, "Demographics"), freeText(1, false), freeText(2, false)}

	pages := BuildPages(questions, model.PaginationPerQuestion)
	require.Len(t, pages, 2)
	for i, p := range pages {
		assert.Equal(t, "Demographics", p.Title)
		require.Len(t, p.Questions, 1)
		assert.Equal(t, i+1, p.Questions[0].ID)
	}
}

func TestBuildPages_UnknownPolicyIsPerQuestion(t *testing.T) {
	questions := paginationInputs["interleaved"]
	assert.Equal(t,
		BuildPages(questions, model.PaginationPerQuestion),
		BuildPages(questions, model.PaginationPolicy("whatever")))
}
