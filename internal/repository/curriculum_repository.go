package repository

import (
	"curriculum_backend/internal/model"
	"curriculum_backend/internal/util"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CurriculumRepository struct {
	DB *gorm.DB
}

func NewCurriculumRepository(db *gorm.DB) *CurriculumRepository {
	return &CurriculumRepository{DB: db}
}

// WithTx 返回绑定到事务的仓储
func (r *CurriculumRepository) WithTx(tx *gorm.DB) *CurriculumRepository {
	return &CurriculumRepository{DB: tx}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrNotFound
	}
	return err
}

func byOrderIndex(db *gorm.DB) *gorm.DB {
	return db.Order("order_index ASC, id ASC")
}

func byLanguage(db *gorm.DB) *gorm.DB {
	return db.Order("language_id ASC")
}

// ---- 课程 ----

func (r *CurriculumRepository) CreateCourse(course *model.Course) error {
	return r.DB.Omit(clause.Associations).Create(course).Error
}

func (r *CurriculumRepository) UpdateCourse(course *model.Course) error {
	return r.DB.Omit(clause.Associations).Save(course).Error
}

func (r *CurriculumRepository) FindCourse(id uint) (*model.Course, error) {
	var course model.Course
	if err := r.DB.First(&course, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &course, nil
}

func (r *CurriculumRepository) SlugExists(slug string) (bool, error) {
	var n int64
	err := r.DB.Model(&model.Course{}).Where("slug = ?", slug).Count(&n).Error
	return n > 0, err
}

func (r *CurriculumRepository) ListCourses(instructorID uint, page, limit int) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64
	query := r.DB.Model(&model.Course{})
	if instructorID > 0 {
		query = query.Where("instructor_id = ?", instructorID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Preload("Translations", byLanguage).
		Order("created_at desc, id desc").Offset(offset).Limit(limit).Find(&courses).Error
	return courses, total, err
}

// ---- 单元 / 课时 / 题目 / 选项 ----

func (r *CurriculumRepository) CreateUnit(unit *model.Unit) error {
	return r.DB.Omit(clause.Associations).Create(unit).Error
}

func (r *CurriculumRepository) FindUnit(id uint) (*model.Unit, error) {
	var unit model.Unit
	if err := r.DB.First(&unit, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &unit, nil
}

func (r *CurriculumRepository) CreateLesson(lesson *model.Lesson) error {
	if err := r.DB.Omit(clause.Associations).Create(lesson).Error; err != nil {
		return err
	}
	if lesson.Video != nil {
		lesson.Video.LessonID = lesson.ID
		if err := r.DB.Create(lesson.Video).Error; err != nil {
			return err
		}
	}
	if lesson.Quiz != nil {
		lesson.Quiz.LessonID = lesson.ID
		if err := r.DB.Create(lesson.Quiz).Error; err != nil {
			return err
		}
	}
	return nil
}

// FindLesson 连同视频/测验负载一起加载
func (r *CurriculumRepository) FindLesson(id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	if err := r.DB.Preload("Video").Preload("Quiz").First(&lesson, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &lesson, nil
}

func (r *CurriculumRepository) UpdateLessonVideo(video *model.LessonVideo) error {
	return r.DB.Save(video).Error
}

func (r *CurriculumRepository) UpdateLessonQuiz(quiz *model.LessonQuiz) error {
	return r.DB.Save(quiz).Error
}

func (r *CurriculumRepository) CreateQuestion(question *model.Question) error {
	return r.DB.Omit(clause.Associations).Create(question).Error
}

// FindQuestion 连同按顺序排列的选项一起加载
func (r *CurriculumRepository) FindQuestion(id uint) (*model.Question, error) {
	var q model.Question
	if err := r.DB.Preload("Options", byOrderIndex).First(&q, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &q, nil
}

func (r *CurriculumRepository) CreateOption(option *model.Option) error {
	return r.DB.Omit(clause.Associations).Create(option).Error
}

func (r *CurriculumRepository) UpdateOption(option *model.Option) error {
	return r.DB.Omit(clause.Associations).Save(option).Error
}

func (r *CurriculumRepository) FindOption(id uint) (*model.Option, error) {
	var o model.Option
	if err := r.DB.First(&o, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

// ---- 翻译行 ----

var (
	titledColumns = []string{"title", "description"}
	bodyColumns   = []string{"text", "explanation"}
)

// upsertTranslations 按 (owner_id, language_id) 插入或整行覆盖
func upsertTranslations[T any](db *gorm.DB, rows []T, columns []string) error {
	if len(rows) == 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}, {Name: "language_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(&rows).Error
}

func (r *CurriculumRepository) UpsertCourseTranslations(rows []model.CourseTranslation) error {
	return upsertTranslations(r.DB, rows, titledColumns)
}

func (r *CurriculumRepository) UpsertUnitTranslations(rows []model.UnitTranslation) error {
	return upsertTranslations(r.DB, rows, titledColumns)
}

func (r *CurriculumRepository) UpsertLessonTranslations(rows []model.LessonTranslation) error {
	return upsertTranslations(r.DB, rows, titledColumns)
}

func (r *CurriculumRepository) UpsertQuestionTranslations(rows []model.QuestionTranslation) error {
	return upsertTranslations(r.DB, rows, bodyColumns)
}

func (r *CurriculumRepository) UpsertOptionTranslations(rows []model.OptionTranslation) error {
	return upsertTranslations(r.DB, rows, bodyColumns)
}

// ---- 课程树读取 ----

func preloadLessonTree(db *gorm.DB, prefix string) *gorm.DB {
	return db.
		Preload(prefix+"Translations", byLanguage).
		Preload(prefix+"Video").
		Preload(prefix+"Quiz").
		Preload(prefix+"Questions", byOrderIndex).
		Preload(prefix+"Questions.Translations", byLanguage).
		Preload(prefix+"Questions.Options", byOrderIndex).
		Preload(prefix+"Questions.Options.Translations", byLanguage)
}

func preloadUnitTree(db *gorm.DB, prefix string) *gorm.DB {
	db = db.
		Preload(prefix+"Translations", byLanguage).
		Preload(prefix+"Lessons", byOrderIndex)
	return preloadLessonTree(db, prefix+"Lessons.")
}

// LoadCourseTree 加载整棵课程树，每一层都按 order_index 升序
func (r *CurriculumRepository) LoadCourseTree(id uint) (*model.Course, error) {
	var course model.Course
	db := r.DB.Preload("Translations", byLanguage).Preload("Units", byOrderIndex)
	db = preloadUnitTree(db, "Units.")
	if err := db.First(&course, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &course, nil
}

func (r *CurriculumRepository) LoadUnitTree(id uint) (*model.Unit, error) {
	var unit model.Unit
	if err := preloadUnitTree(r.DB, "").First(&unit, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &unit, nil
}

func (r *CurriculumRepository) LoadLessonTree(id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	if err := preloadLessonTree(r.DB, "").First(&lesson, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &lesson, nil
}

func (r *CurriculumRepository) LoadQuestionTree(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.
		Preload("Translations", byLanguage).
		Preload("Options", byOrderIndex).
		Preload("Options.Translations", byLanguage).
		First(&q, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &q, nil
}
