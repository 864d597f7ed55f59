package repository

import (
	"curriculum_backend/internal/model"
)

// CascadeReport 一次级联删除移除的节点数量
type CascadeReport struct {
	Units     int
	Lessons   int
	Questions int
	Options   int
}

// 级联删除严格自上而下：先删子节点与翻译行，再删节点本身

func (r *CurriculumRepository) deleteOptions(questionIDs []uint, report *CascadeReport) error {
	if len(questionIDs) == 0 {
		return nil
	}
	var optionIDs []uint
	if err := r.DB.Model(&model.Option{}).Where("question_id IN ?", questionIDs).Pluck("id", &optionIDs).Error; err != nil {
		return err
	}
	if len(optionIDs) == 0 {
		return nil
	}
	if err := r.DB.Where("owner_id IN ?", optionIDs).Delete(&model.OptionTranslation{}).Error; err != nil {
		return err
	}
	if err := r.DB.Where("id IN ?", optionIDs).Delete(&model.Option{}).Error; err != nil {
		return err
	}
	report.Options += len(optionIDs)
	return nil
}

func (r *CurriculumRepository) deleteQuestions(questionIDs []uint, report *CascadeReport) error {
	if len(questionIDs) == 0 {
		return nil
	}
	if err := r.deleteOptions(questionIDs, report); err != nil {
		return err
	}
	if err := r.DB.Where("owner_id IN ?", questionIDs).Delete(&model.QuestionTranslation{}).Error; err != nil {
		return err
	}
	if err := r.DB.Where("id IN ?", questionIDs).Delete(&model.Question{}).Error; err != nil {
		return err
	}
	report.Questions += len(questionIDs)
	return nil
}

func (r *CurriculumRepository) deleteLessons(lessonIDs []uint, report *CascadeReport) error {
	if len(lessonIDs) == 0 {
		return nil
	}
	var questionIDs []uint
	if err := r.DB.Model(&model.Question{}).Where("lesson_id IN ?", lessonIDs).Pluck("id", &questionIDs).Error; err != nil {
		return err
	}
	if err := r.deleteQuestions(questionIDs, report); err != nil {
		return err
	}
	if err := r.DB.Where("lesson_id IN ?", lessonIDs).Delete(&model.LessonVideo{}).Error; err != nil {
		return err
	}
	if err := r.DB.Where("lesson_id IN ?", lessonIDs).Delete(&model.LessonQuiz{}).Error; err != nil {
		return err
	}
	if err := r.DB.Where("owner_id IN ?", lessonIDs).Delete(&model.LessonTranslation{}).Error; err != nil {
		return err
	}
	if err := r.DB.Where("id IN ?", lessonIDs).Delete(&model.Lesson{}).Error; err != nil {
		return err
	}
	report.Lessons += len(lessonIDs)
	return nil
}

func (r *CurriculumRepository) deleteUnits(unitIDs []uint, report *CascadeReport) error {
	if len(unitIDs) == 0 {
		return nil
	}
	var lessonIDs []uint
	if err := r.DB.Model(&model.Lesson{}).Where("unit_id IN ?", unitIDs).Pluck("id", &lessonIDs).Error; err != nil {
		return err
	}
	if err := r.deleteLessons(lessonIDs, report); err != nil {
		return err
	}
	if err := r.DB.Where("owner_id IN ?", unitIDs).Delete(&model.UnitTranslation{}).Error; err != nil {
		return err
	}
	if err := r.DB.Where("id IN ?", unitIDs).Delete(&model.Unit{}).Error; err != nil {
		return err
	}
	report.Units += len(unitIDs)
	return nil
}

// DeleteCourseCascade 删除课程及其全部后代；需在事务中调用
func (r *CurriculumRepository) DeleteCourseCascade(courseID uint) (CascadeReport, error) {
	var report CascadeReport
	var unitIDs []uint
	if err := r.DB.Model(&model.Unit{}).Where("course_id = ?", courseID).Pluck("id", &unitIDs).Error; err != nil {
		return report, err
	}
	if err := r.deleteUnits(unitIDs, &report); err != nil {
		return report, err
	}
	if err := r.DB.Where("owner_id = ?", courseID).Delete(&model.CourseTranslation{}).Error; err != nil {
		return report, err
	}
	if err := r.DB.Delete(&model.Course{}, courseID).Error; err != nil {
		return report, err
	}
	return report, nil
}

func (r *CurriculumRepository) DeleteUnitCascade(unitID uint) (CascadeReport, error) {
	var report CascadeReport
	err := r.deleteUnits([]uint{unitID}, &report)
	return report, err
}

func (r *CurriculumRepository) DeleteLessonCascade(lessonID uint) (CascadeReport, error) {
	var report CascadeReport
	err := r.deleteLessons([]uint{lessonID}, &report)
	return report, err
}

func (r *CurriculumRepository) DeleteQuestionCascade(questionID uint) (CascadeReport, error) {
	var report CascadeReport
	err := r.deleteQuestions([]uint{questionID}, &report)
	return report, err
}

func (r *CurriculumRepository) DeleteOption(optionID uint) (CascadeReport, error) {
	report := CascadeReport{Options: 1}
	if err := r.DB.Where("owner_id = ?", optionID).Delete(&model.OptionTranslation{}).Error; err != nil {
		return CascadeReport{}, err
	}
	if err := r.DB.Delete(&model.Option{}, optionID).Error; err != nil {
		return CascadeReport{}, err
	}
	return report, nil
}
