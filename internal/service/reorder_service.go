package service

import (
	"context"
	"curriculum_backend/internal/repository"
	"curriculum_backend/internal/util"
	"curriculum_backend/pkg/monitoring"
	"fmt"
)

const orderedIDsField = "orderedIds"

// validatePermutation ids 必须恰好是当前兄弟 ID 集合的一个排列
func validatePermutation(current, ids []uint) error {
	existing := make(map[uint]bool, len(current))
	for _, id := range current {
		existing[id] = true
	}
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return util.NewValidationError(orderedIDsField, fmt.Sprintf("duplicate id %d", id))
		}
		seen[id] = true
		if !existing[id] {
			return util.NewValidationError(orderedIDsField, fmt.Sprintf("id %d is not a child of this parent", id))
		}
	}
	for _, id := range current {
		if !seen[id] {
			return util.NewValidationError(orderedIDsField, fmt.Sprintf("missing id %d", id))
		}
	}
	return nil
}

// reorderSiblings 在一个事务中把整组兄弟的 order_index 改写为 ids 中的位置。
// 并发调用不合并，后提交者生效。
func (s *CurriculumService) reorderSiblings(ctx context.Context, set repository.SiblingSet, parentID uint, ids []uint,
	owner func(ctx context.Context, repo *repository.CurriculumRepository) (uint, error)) error {
	return s.mutate(ctx, "reorder_"+set.Level, parentID, func(ctx context.Context, repo *repository.CurriculumRepository) (uint, error) {
		if err := repo.LockParent(set, parentID); err != nil {
			return 0, err
		}
		courseID, err := owner(ctx, repo)
		if err != nil {
			return 0, err
		}
		current, err := repo.SiblingIDs(set, parentID)
		if err != nil {
			return 0, err
		}
		if err := validatePermutation(current, ids); err != nil {
			return 0, err
		}
		if err := repo.ApplyOrder(set, parentID, ids); err != nil {
			return 0, err
		}
		monitoring.ReorderSiblings.WithLabelValues(set.Level).Observe(float64(len(ids)))
		return courseID, repo.AssertContiguous(set, parentID)
	})
}

func (s *CurriculumService) ReorderUnits(ctx context.Context, courseID uint, ids []uint) error {
	return s.reorderSiblings(ctx, repository.UnitsOfCourse, courseID, ids, func(ctx context.Context, repo *repository.CurriculumRepository) (uint, error) {
		course, err := s.ownedCourse(ctx, repo, courseID)
		if err != nil {
			return 0, err
		}
		return course.ID, nil
	})
}

func (s *CurriculumService) ReorderLessons(ctx context.Context, unitID uint, ids []uint) error {
	return s.reorderSiblings(ctx, repository.LessonsOfUnit, unitID, ids, func(ctx context.Context, repo *repository.CurriculumRepository) (uint, error) {
		_, course, err := s.ownedUnit(ctx, repo, unitID)
		if err != nil {
			return 0, err
		}
		return course.ID, nil
	})
}

func (s *CurriculumService) ReorderQuestions(ctx context.Context, lessonID uint, ids []uint) error {
	return s.reorderSiblings(ctx, repository.QuestionsOfLesson, lessonID, ids, func(ctx context.Context, repo *repository.CurriculumRepository) (uint, error) {
		_, course, err := s.ownedLesson(ctx, repo, lessonID)
		if err != nil {
			return 0, err
		}
		return course.ID, nil
	})
}

func (s *CurriculumService) ReorderOptions(ctx context.Context, questionID uint, ids []uint) error {
	return s.reorderSiblings(ctx, repository.OptionsOfQuestion, questionID, ids, func(ctx context.Context, repo *repository.CurriculumRepository) (uint, error) {
		_, course, err := s.ownedQuestion(ctx, repo, questionID)
		if err != nil {
			return 0, err
		}
		return course.ID, nil
	})
}
