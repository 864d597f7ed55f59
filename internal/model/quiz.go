package model

// swagger:model Question
type Question struct {
	BaseModel

	LessonID   uint `gorm:"index;not null" json:"lessonId"`
	OrderIndex int  `gorm:"not null;default:0" json:"orderIndex"`

	Translations []QuestionTranslation `gorm:"foreignKey:OwnerID" json:"translations"`
	Options      []Option              `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

func (Question) TableName() string {
	return "quiz_questions"
}

// swagger:model Option
type Option struct {
	BaseModel

	QuestionID uint `gorm:"index;not null" json:"questionId"`
	OrderIndex int  `gorm:"not null;default:0" json:"orderIndex"`
	IsCorrect  bool `gorm:"default:false" json:"isCorrect"`

	Translations []OptionTranslation `gorm:"foreignKey:OwnerID" json:"translations"`
}

func (Option) TableName() string {
	return "quiz_options"
}

// CorrectOptionIDs 返回正确选项的 ID 集合
func (q *Question) CorrectOptionIDs() map[uint]struct{} {
	ids := make(map[uint]struct{})
	for _, o := range q.Options {
		if o.IsCorrect {
			ids[o.ID] = struct{}{}
		}
	}
	return ids
}

// AllModels AutoMigrate 用到的全部模型
func AllModels() []interface{} {
	return []interface{}{
		&Course{},
		&CourseTranslation{},
		&Unit{},
		&UnitTranslation{},
		&Lesson{},
		&LessonTranslation{},
		&LessonVideo{},
		&LessonQuiz{},
		&Question{},
		&QuestionTranslation{},
		&Option{},
		&OptionTranslation{},
	}
}
