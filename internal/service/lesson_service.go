package service

import (
	"context"
	"curriculum_backend/internal/model"
	"curriculum_backend/internal/repository"
	"curriculum_backend/internal/translation"
	"curriculum_backend/internal/util"
	"fmt"
)

// VideoPatch 视频负载的部分更新，nil 字段保持不变
type VideoPatch struct {
	URL             *string `json:"url"`
	DurationSeconds *int    `json:"durationSeconds"`
	IsFreePreview   *bool   `json:"isFreePreview"`
}

type QuizPatch struct {
	PassingScore *int `json:"passingScore"`
}

type UpdateLessonRequest struct {
	// 可选；若提供必须与现有类型一致
	LessonType   *model.LessonType `json:"lessonType"`
	Video        *VideoPatch       `json:"video"`
	Quiz         *QuizPatch        `json:"quiz"`
	Translations []TitledInput     `json:"translations"`
}

func validateVideo(url string, duration int) error {
	if url == "" {
		return util.NewValidationError("video.url", "must not be empty")
	}
	if duration < 0 {
		return util.NewValidationError("video.durationSeconds", "must not be negative")
	}
	return nil
}

// buildPayload 把负载变体转换为对应的辅助记录
func buildPayload(payload model.LessonPayload) (*model.LessonVideo, *model.LessonQuiz, error) {
	switch p := payload.(type) {
	case model.VideoPayload:
		if err := validateVideo(p.URL, p.DurationSeconds); err != nil {
			return nil, nil, err
		}
		return &model.LessonVideo{URL: p.URL, DurationSeconds: p.DurationSeconds, IsFreePreview: p.IsFreePreview}, nil, nil
	case model.QuizPayload:
		score := model.DefaultPassingScore
		if p.PassingScore != nil {
			score = *p.PassingScore
		}
		if err := ValidatePassingScore(score); err != nil {
			return nil, nil, err
		}
		return nil, &model.LessonQuiz{PassingScore: score}, nil
	case nil:
		return nil, nil, util.NewValidationError("payload", "lesson payload is required")
	}
	return nil, nil, util.NewValidationError("payload", fmt.Sprintf("unsupported lesson payload %T", payload))
}

func (s *CurriculumService) CreateLesson(ctx context.Context, unitID uint, payload model.LessonPayload, translations []TitledInput) (*model.Lesson, error) {
	var lesson *model.Lesson
	err := s.mutate(ctx, "create_lesson", unitID, func(ctx context.Context, repo *repository.CurriculumRepository) (uint, error) {
		if err := repo.LockParent(repository.LessonsOfUnit, unitID); err != nil {
			return 0, err
		}
		_, course, err := s.ownedUnit(ctx, repo, unitID)
		if err != nil {
			return 0, err
		}
		video, quiz, err := buildPayload(payload)
		if err != nil {
			return 0, err
		}
		langs, err := validateTitled("translations", translations)
		if err != nil {
			return 0, err
		}
		n, err := repo.CountSiblings(repository.LessonsOfUnit, unitID)
		if err != nil {
			return 0, err
		}

		lesson = &model.Lesson{
			UnitID:     unitID,
			OrderIndex: n,
			LessonType: payload.Type(),
			Video:      video,
			Quiz:       quiz,
		}
		if !lesson.PayloadMatchesType() {
			return 0, util.Invariantf("lesson payload does not match type %q", lesson.LessonType)
		}
		if err := repo.CreateLesson(lesson); err != nil {
			return 0, err
		}
		rows := buildTitled(translations, langs, func(l translation.LanguageID, t model.TitledText) model.LessonTranslation {
			return model.LessonTranslation{OwnerID: lesson.ID, LanguageID: l, TitledText: t}
		})
		if err := repo.UpsertLessonTranslations(rows); err != nil {
			return 0, err
		}
		lesson.Translations = rows
		return course.ID, repo.AssertContiguous(repository.LessonsOfUnit, unitID)
	})
	if err != nil {
		return nil, err
	}
	return lesson, nil
}

// checkLessonUpdate 课时类型不可变，也不能携带另一种变体的负载
func checkLessonUpdate(lesson *model.Lesson, req UpdateLessonRequest) error {
	if req.LessonType != nil && *req.LessonType != lesson.LessonType {
		return util.Invariantf("lesson %d is a %s lesson, its type cannot change to %q", lesson.ID, lesson.LessonType, *req.LessonType)
	}
	if lesson.LessonType == model.LessonTypeVideo && req.Quiz != nil {
		return util.Invariantf("lesson %d is a video lesson and cannot take a quiz payload", lesson.ID)
	}
	if lesson.LessonType == model.LessonTypeQuiz && req.Video != nil {
		return util.Invariantf("lesson %d is a quiz lesson and cannot take a video payload", lesson.ID)
	}
	if !lesson.PayloadMatchesType() {
		return util.Invariantf("lesson %d payload does not match its type %s", lesson.ID, lesson.LessonType)
	}
	return nil
}

func (s *CurriculumService) UpdateLesson(ctx context.Context, lessonID uint, req UpdateLessonRequest) error {
	return s.mutate(ctx, "update_lesson", lessonID, func(ctx context.Context, repo *repository.CurriculumRepository) (uint, error) {
		lesson, course, err := s.ownedLesson(ctx, repo, lessonID)
		if err != nil {
			return 0, err
		}
		if err := checkLessonUpdate(lesson, req); err != nil {
			return 0, err
		}
		langs, err := validateTitled("translations", req.Translations)
		if err != nil {
			return 0, err
		}

		if req.Video != nil {
			video := *lesson.Video
			if req.Video.URL != nil {
				video.URL = *req.Video.URL
			}
			if req.Video.DurationSeconds != nil {
				video.DurationSeconds = *req.Video.DurationSeconds
			}
			if req.Video.IsFreePreview != nil {
				video.IsFreePreview = *req.Video.IsFreePreview
			}
			if err := validateVideo(video.URL, video.DurationSeconds); err != nil {
				return 0, err
			}
			if err := repo.UpdateLessonVideo(&video); err != nil {
				return 0, err
			}
		}
		if req.Quiz != nil && req.Quiz.PassingScore != nil {
			if err := ValidatePassingScore(*req.Quiz.PassingScore); err != nil {
				return 0, err
			}
			quiz := *lesson.Quiz
			quiz.PassingScore = *req.Quiz.PassingScore
			if err := repo.UpdateLessonQuiz(&quiz); err != nil {
				return 0, err
			}
		}

		rows := buildTitled(req.Translations, langs, func(l translation.LanguageID, t model.TitledText) model.LessonTranslation {
			return model.LessonTranslation{OwnerID: lesson.ID, LanguageID: l, TitledText: t}
		})
		return course.ID, repo.UpsertLessonTranslations(rows)
	})
}

func (s *CurriculumService) DeleteLesson(ctx context.Context, lessonID uint) error {
	return s.mutate(ctx, "delete_lesson", lessonID, func(ctx context.Context, repo *repository.CurriculumRepository) (uint, error) {
		lesson, course, err := s.ownedLesson(ctx, repo, lessonID)
		if err != nil {
			return 0, err
		}
		if err := repo.LockParent(repository.LessonsOfUnit, lesson.UnitID); err != nil {
			return 0, err
		}
		if lesson, err = repo.FindLesson(lessonID); err != nil {
			return 0, err
		}
		if _, err := repo.DeleteLessonCascade(lesson.ID); err != nil {
			return 0, err
		}
		return course.ID, closeGapAndCheck(repo, repository.LessonsOfUnit, lesson.UnitID, lesson.OrderIndex)
	})
}
