package service

import (
	"curriculum_backend/internal/model"
	"curriculum_backend/internal/translation"
	"curriculum_backend/internal/util"
	"fmt"
	"unicode/utf8"
)

const maxTitleLength = 255

// TitledInput 课程/单元/课时的一行翻译；字段为 nil 表示该语言下缺失
type TitledInput struct {
	Locale      string  `json:"locale" binding:"required"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// BodyInput 题目/选项的一行翻译
type BodyInput struct {
	Locale      string  `json:"locale" binding:"required"`
	Text        *string `json:"text"`
	Explanation *string `json:"explanation"`
}

func (in TitledInput) locale() string { return in.Locale }
func (in BodyInput) locale() string   { return in.Locale }

func (in TitledInput) text() model.TitledText {
	return model.TitledText{Title: in.Title, Description: in.Description}
}

func (in BodyInput) text() model.BodyText {
	return model.BodyText{Text: in.Text, Explanation: in.Explanation}
}

type localized interface {
	locale() string
}

// parseLocales 每种语言至多一行
func parseLocales[T localized](field string, in []T) ([]translation.LanguageID, error) {
	langs := make([]translation.LanguageID, len(in))
	seen := make(map[translation.LanguageID]bool, len(in))
	for i, row := range in {
		lang, ok := translation.ParseLocale(row.locale())
		if !ok {
			return nil, util.NewValidationError(field, fmt.Sprintf("unsupported locale %q", row.locale()))
		}
		if seen[lang] {
			return nil, util.NewValidationError(field, fmt.Sprintf("duplicate locale %q", lang.Code()))
		}
		seen[lang] = true
		langs[i] = lang
	}
	return langs, nil
}

func validateTitled(field string, in []TitledInput) ([]translation.LanguageID, error) {
	langs, err := parseLocales(field, in)
	if err != nil {
		return nil, err
	}
	for _, row := range in {
		if row.Title != nil && utf8.RuneCountInString(*row.Title) > maxTitleLength {
			return nil, util.NewValidationError(field, fmt.Sprintf("title longer than %d characters", maxTitleLength))
		}
	}
	return langs, nil
}

func buildTitled[T any](in []TitledInput, langs []translation.LanguageID, mk func(translation.LanguageID, model.TitledText) T) []T {
	rows := make([]T, len(in))
	for i, row := range in {
		rows[i] = mk(langs[i], row.text())
	}
	return rows
}

func buildBody[T any](in []BodyInput, langs []translation.LanguageID, mk func(translation.LanguageID, model.BodyText) T) []T {
	rows := make([]T, len(in))
	for i, row := range in {
		rows[i] = mk(langs[i], row.text())
	}
	return rows
}
