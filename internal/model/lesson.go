package model

type LessonType string

const (
	LessonTypeVideo LessonType = "video"
	LessonTypeQuiz  LessonType = "quiz"
)

// DefaultPassingScore 创建测验课时未指定及格线时使用
const DefaultPassingScore = 60

func (t LessonType) Valid() bool {
	return t == LessonTypeVideo || t == LessonTypeQuiz
}

// swagger:model Lesson
// 课时类型创建后不可变，Video 与 Quiz 有且仅有一个非空，且与 LessonType 一致
type Lesson struct {
	BaseModel

	UnitID     uint       `gorm:"index;not null" json:"unitId"`
	OrderIndex int        `gorm:"not null;default:0" json:"orderIndex"`
	LessonType LessonType `gorm:"size:16;not null" json:"lessonType"`

	Translations []LessonTranslation `gorm:"foreignKey:OwnerID" json:"translations"`
	Video        *LessonVideo        `gorm:"foreignKey:LessonID" json:"video,omitempty"`
	Quiz         *LessonQuiz         `gorm:"foreignKey:LessonID" json:"quiz,omitempty"`
	Questions    []Question          `gorm:"foreignKey:LessonID" json:"questions,omitempty"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// PayloadMatchesType 检查辅助记录与课时类型是否一致
func (l *Lesson) PayloadMatchesType() bool {
	switch l.LessonType {
	case LessonTypeVideo:
		return l.Video != nil && l.Quiz == nil
	case LessonTypeQuiz:
		return l.Quiz != nil && l.Video == nil
	}
	return false
}

type LessonVideo struct {
	ID              uint   `gorm:"primaryKey;autoIncrement" json:"-"`
	LessonID        uint   `gorm:"uniqueIndex;not null" json:"lessonId"`
	URL             string `gorm:"size:500;not null" json:"url"`
	DurationSeconds int    `gorm:"default:0" json:"durationSeconds"`
	IsFreePreview   bool   `gorm:"default:false" json:"isFreePreview"`
}

func (LessonVideo) TableName() string {
	return "lesson_videos"
}

type LessonQuiz struct {
	ID           uint `gorm:"primaryKey;autoIncrement" json:"-"`
	LessonID     uint `gorm:"uniqueIndex;not null" json:"lessonId"`
	PassingScore int  `gorm:"default:60" json:"passingScore"`
}

func (LessonQuiz) TableName() string {
	return "lesson_quizzes"
}

// LessonPayload 课时负载的标记联合：VideoPayload | QuizPayload
type LessonPayload interface {
	Type() LessonType
	isLessonPayload()
}

type VideoPayload struct {
	URL             string `json:"url"`
	DurationSeconds int    `json:"durationSeconds"`
	IsFreePreview   bool   `json:"isFreePreview"`
}

func (VideoPayload) Type() LessonType { return LessonTypeVideo }
func (VideoPayload) isLessonPayload() {}

type QuizPayload struct {
	// nil 时使用 DefaultPassingScore
	PassingScore *int `json:"passingScore,omitempty"`
}

func (QuizPayload) Type() LessonType { return LessonTypeQuiz }
func (QuizPayload) isLessonPayload() {}
