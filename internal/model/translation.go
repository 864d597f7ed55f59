package model

import "curriculum_backend/internal/translation"

// TitledText 课程/单元/课时翻译行的文本列
type TitledText struct {
	Title       *string `gorm:"size:255" json:"title"`
	Description *string `gorm:"type:text" json:"description"`
}

func (t TitledText) fields() translation.Fields {
	return translation.Fields{
		translation.FieldTitle:       t.Title,
		translation.FieldDescription: t.Description,
	}
}

// BodyText 题目/选项翻译行的文本列
type BodyText struct {
	Text        *string `gorm:"type:text" json:"text"`
	Explanation *string `gorm:"type:text" json:"explanation"`
}

func (t BodyText) fields() translation.Fields {
	return translation.Fields{
		translation.FieldText:        t.Text,
		translation.FieldExplanation: t.Explanation,
	}
}

// 每张 *_translations 表在 (owner_id, language_id) 上唯一

type CourseTranslation struct {
	ID         uint                   `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID    uint                   `gorm:"not null;uniqueIndex:idx_course_tr_owner_lang" json:"ownerId"`
	LanguageID translation.LanguageID `gorm:"not null;uniqueIndex:idx_course_tr_owner_lang" json:"languageId"`
	TitledText
}

func (CourseTranslation) TableName() string { return "course_translations" }

type UnitTranslation struct {
	ID         uint                   `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID    uint                   `gorm:"not null;uniqueIndex:idx_unit_tr_owner_lang" json:"ownerId"`
	LanguageID translation.LanguageID `gorm:"not null;uniqueIndex:idx_unit_tr_owner_lang" json:"languageId"`
	TitledText
}

func (UnitTranslation) TableName() string { return "course_unit_translations" }

type LessonTranslation struct {
	ID         uint                   `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID    uint                   `gorm:"not null;uniqueIndex:idx_lesson_tr_owner_lang" json:"ownerId"`
	LanguageID translation.LanguageID `gorm:"not null;uniqueIndex:idx_lesson_tr_owner_lang" json:"languageId"`
	TitledText
}

func (LessonTranslation) TableName() string { return "lesson_translations" }

type QuestionTranslation struct {
	ID         uint                   `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID    uint                   `gorm:"not null;uniqueIndex:idx_question_tr_owner_lang" json:"ownerId"`
	LanguageID translation.LanguageID `gorm:"not null;uniqueIndex:idx_question_tr_owner_lang" json:"languageId"`
	BodyText
}

func (QuestionTranslation) TableName() string { return "quiz_question_translations" }

type OptionTranslation struct {
	ID         uint                   `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID    uint                   `gorm:"not null;uniqueIndex:idx_option_tr_owner_lang" json:"ownerId"`
	LanguageID translation.LanguageID `gorm:"not null;uniqueIndex:idx_option_tr_owner_lang" json:"languageId"`
	BodyText
}

func (OptionTranslation) TableName() string { return "quiz_option_translations" }

func (t CourseTranslation) Language() translation.LanguageID   { return t.LanguageID }
func (t CourseTranslation) TextFields() translation.Fields     { return t.fields() }
func (t UnitTranslation) Language() translation.LanguageID     { return t.LanguageID }
func (t UnitTranslation) TextFields() translation.Fields       { return t.fields() }
func (t LessonTranslation) Language() translation.LanguageID   { return t.LanguageID }
func (t LessonTranslation) TextFields() translation.Fields     { return t.fields() }
func (t QuestionTranslation) Language() translation.LanguageID { return t.LanguageID }
func (t QuestionTranslation) TextFields() translation.Fields   { return t.fields() }
func (t OptionTranslation) Language() translation.LanguageID   { return t.LanguageID }
func (t OptionTranslation) TextFields() translation.Fields     { return t.fields() }
