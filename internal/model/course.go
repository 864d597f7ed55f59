package model

import "time"

// swagger:model Course
type Course struct {
	BaseModel

	InstructorID uint       `gorm:"index;not null" json:"instructorId"`
	Slug         string     `gorm:"size:191;uniqueIndex;not null" json:"slug"`
	CoverURL     string     `gorm:"size:500" json:"coverUrl"`
	PriceCents   int64      `gorm:"default:0" json:"priceCents"`
	IsFree       bool       `gorm:"default:false" json:"isFree"`
	IsPublished  bool       `gorm:"default:false" json:"isPublished"`
	PublishedAt  *time.Time `json:"publishedAt,omitempty"`

	Translations []CourseTranslation `gorm:"foreignKey:OwnerID" json:"translations"`
	Units        []Unit              `gorm:"foreignKey:CourseID" json:"units,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Unit
type Unit struct {
	BaseModel

	CourseID   uint `gorm:"index;not null" json:"courseId"`
	OrderIndex int  `gorm:"not null;default:0" json:"orderIndex"`

	Translations []UnitTranslation `gorm:"foreignKey:OwnerID" json:"translations"`
	Lessons      []Lesson          `gorm:"foreignKey:UnitID" json:"lessons,omitempty"`
}

func (Unit) TableName() string {
	return "course_units"
}
