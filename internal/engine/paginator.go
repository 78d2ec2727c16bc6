package engine

import "surveyflow/internal/model"

// BuildPages groups an ordered question list into pages. Section questions
// only ever title pages; they are never page members. Unknown policies
// paginate one question per page.
func BuildPages(questions []model.Question, policy model.PaginationPolicy) []model.Page {
	switch policy {
	case model.PaginationOnePage:
		return onePage(questions)
	case model.PaginationPerSection:
		return perSection(questions)
	default:
		return perQuestion(questions)
	}
}

func onePage(questions []model.Question) []model.Page {
	page := model.Page{Number: 1, Questions: []model.Question{}}
	for _, q := range questions {
		if !q.IsSection() {
			page.Questions = append(page.Questions, q)
		}
	}
	return []model.Page{page}
}

// perSection starts a page at each section. A section directly after
// another (or at the start) only retitles the pending page, and a pending
// page is flushed only when it has questions.
func perSection(questions []model.Question) []model.Page {
	var pages []model.Page
	counter := 1
	current := model.Page{Number: counter}

	for _, q := range questions {
		if !q.IsSection() {
			current.Questions = append(current.Questions, q)
			continue
		}
		if len(current.Questions) > 0 {
			pages = append(pages, current)
			counter++
		}
		current = model.Page{Number: counter, Title: q.Text}
	}
	if len(current.Questions) > 0 {
		pages = append(pages, current)
	}
	return pages
}

func perQuestion(questions []model.Question) []model.Page {
	var pages []model.Page
	title := ""
	for _, q := range questions {
		if q.IsSection() {
			title = q.Text
			continue
		}
		pages = append(pages, model.Page{
			Number:    len(pages) + 1,
			Title:     title,
			Questions: []model.Question{q},
		})
	}
	return pages
}
