package service

import (
	"curriculum_backend/internal/model"
	"curriculum_backend/internal/translation"
)

// 以下为按语言解析后的只读视图；选项不暴露 is_correct

type TextView struct {
	Locale       string `json:"locale"`
	FallbackUsed bool   `json:"fallbackUsed"`
	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
	Text         string `json:"text,omitempty"`
	Explanation  string `json:"explanation,omitempty"`
}

type OptionView struct {
	ID         uint     `json:"id"`
	OrderIndex int      `json:"orderIndex"`
	Content    TextView `json:"content"`
}

type QuestionView struct {
	ID         uint         `json:"id"`
	OrderIndex int          `json:"orderIndex"`
	Content    TextView     `json:"content"`
	Options    []OptionView `json:"options"`
}

type LessonView struct {
	ID         uint                `json:"id"`
	OrderIndex int                 `json:"orderIndex"`
	LessonType model.LessonType    `json:"lessonType"`
	Content    TextView            `json:"content"`
	Video      *model.VideoPayload `json:"video,omitempty"`
	Quiz       *QuizView           `json:"quiz,omitempty"`
}

type QuizView struct {
	PassingScore int            `json:"passingScore"`
	Questions    []QuestionView `json:"questions"`
}

type UnitView struct {
	ID         uint         `json:"id"`
	OrderIndex int          `json:"orderIndex"`
	Content    TextView     `json:"content"`
	Lessons    []LessonView `json:"lessons"`
}

type CourseView struct {
	ID          uint       `json:"id"`
	Slug        string     `json:"slug"`
	CoverURL    string     `json:"coverUrl"`
	PriceCents  int64      `json:"priceCents"`
	IsFree      bool       `json:"isFree"`
	IsPublished bool       `json:"isPublished"`
	Content     TextView   `json:"content"`
	Units       []UnitView `json:"units"`
}

func titledView(set translation.Set, locale translation.LanguageID) TextView {
	r := translation.Resolve(set, locale, translation.FieldTitle, translation.FieldDescription)
	return TextView{
		Locale:       r.LocaleCode,
		FallbackUsed: r.FallbackUsed,
		Title:        r.Get(translation.FieldTitle),
		Description:  r.Get(translation.FieldDescription),
	}
}

func bodyView(set translation.Set, locale translation.LanguageID) TextView {
	r := translation.Resolve(set, locale, translation.FieldText, translation.FieldExplanation)
	return TextView{
		Locale:       r.LocaleCode,
		FallbackUsed: r.FallbackUsed,
		Text:         r.Get(translation.FieldText),
		Explanation:  r.Get(translation.FieldExplanation),
	}
}

// ResolveCourse 把带原始翻译行的课程树解析为单一语言的展示视图，不修改输入
func ResolveCourse(course *model.Course, locale translation.LanguageID) *CourseView {
	view := &CourseView{
		ID:          course.ID,
		Slug:        course.Slug,
		CoverURL:    course.CoverURL,
		PriceCents:  course.PriceCents,
		IsFree:      course.IsFree,
		IsPublished: course.IsPublished,
		Content:     titledView(translation.FromRows(course.Translations), locale),
		Units:       make([]UnitView, 0, len(course.Units)),
	}
	for _, u := range course.Units {
		uv := UnitView{
			ID:         u.ID,
			OrderIndex: u.OrderIndex,
			Content:    titledView(translation.FromRows(u.Translations), locale),
			Lessons:    make([]LessonView, 0, len(u.Lessons)),
		}
		for i := range u.Lessons {
			uv.Lessons = append(uv.Lessons, resolveLesson(&u.Lessons[i], locale))
		}
		view.Units = append(view.Units, uv)
	}
	return view
}

func resolveLesson(l *model.Lesson, locale translation.LanguageID) LessonView {
	lv := LessonView{
		ID:         l.ID,
		OrderIndex: l.OrderIndex,
		LessonType: l.LessonType,
		Content:    titledView(translation.FromRows(l.Translations), locale),
	}
	switch {
	case l.Video != nil:
		lv.Video = &model.VideoPayload{
			URL:             l.Video.URL,
			DurationSeconds: l.Video.DurationSeconds,
			IsFreePreview:   l.Video.IsFreePreview,
		}
	case l.Quiz != nil:
		qv := &QuizView{PassingScore: l.Quiz.PassingScore, Questions: make([]QuestionView, 0, len(l.Questions))}
		for _, q := range l.Questions {
			questionView := QuestionView{
				ID:         q.ID,
				OrderIndex: q.OrderIndex,
				Content:    bodyView(translation.FromRows(q.Translations), locale),
				Options:    make([]OptionView, 0, len(q.Options)),
			}
			for _, o := range q.Options {
				questionView.Options = append(questionView.Options, OptionView{
					ID:         o.ID,
					OrderIndex: o.OrderIndex,
					Content:    bodyView(translation.FromRows(o.Translations), locale),
				})
			}
			qv.Questions = append(qv.Questions, questionView)
		}
		lv.Quiz = qv
	}
	return lv
}
