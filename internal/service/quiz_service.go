package service

import (
	"context"
	"curriculum_backend/internal/model"
	"curriculum_backend/internal/repository"
	"curriculum_backend/internal/translation"
	"curriculum_backend/internal/util"
	"curriculum_backend/pkg/tracing"
	"fmt"
)

type OptionInput struct {
	IsCorrect    bool        `json:"isCorrect"`
	Translations []BodyInput `json:"translations"`
}

type CreateQuestionRequest struct {
	Translations []BodyInput   `json:"translations"`
	Options      []OptionInput `json:"options"`
}

type UpdateOptionRequest struct {
	IsCorrect    *bool       `json:"isCorrect"`
	Translations []BodyInput `json:"translations"`
}

func optionRows(optionID uint, in []BodyInput, langs []translation.LanguageID) []model.OptionTranslation {
	return buildBody(in, langs, func(l translation.LanguageID, t model.BodyText) model.OptionTranslation {
		return model.OptionTranslation{OwnerID: optionID, LanguageID: l, BodyText: t}
	})
}

func (s *CurriculumService) CreateQuestion(ctx context.Context, lessonID uint, req CreateQuestionRequest) (*model.Question, error) {
	var question *model.Question
	err := s.mutate(ctx, "create_question", lessonID, func(ctx context.Context, repo *repository.CurriculumRepository) (uint, error) {
		if err := repo.LockParent(repository.QuestionsOfLesson, lessonID); err != nil {
			return 0, err
		}
		lesson, course, err := s.ownedLesson(ctx, repo, lessonID)
		if err != nil {
			return 0, err
		}
		if lesson.LessonType != model.LessonTypeQuiz {
			return 0, util.NewValidationError("lessonId", "questions can only be added to quiz lessons")
		}

		flags := make([]bool, len(req.Options))
		for i, o := range req.Options {
			flags[i] = o.IsCorrect
		}
		if err := validateOptionSet(flags); err != nil {
			return 0, err
		}
		langs, err := parseLocales("translations", req.Translations)
		if err != nil {
			return 0, err
		}
		optionLangs := make([][]translation.LanguageID, len(req.Options))
		for i, o := range req.Options {
			if optionLangs[i], err = parseLocales(fmt.Sprintf("options[%d].translations", i), o.Translations); err != nil {
				return 0, err
			}
		}

		n, err := repo.CountSiblings(repository.QuestionsOfLesson, lessonID)
		if err != nil {
			return 0, err
		}
		question = &model.Question{LessonID: lessonID, OrderIndex: n}
		if err := repo.CreateQuestion(question); err != nil {
			return 0, err
		}
		rows := buildBody(req.Translations, langs, func(l translation.LanguageID, t model.BodyText) model.QuestionTranslation {
			return model.QuestionTranslation{OwnerID: question.ID, LanguageID: l, BodyText: t}
		})
		if err := repo.UpsertQuestionTranslations(rows); err != nil {
			return 0, err
		}
		question.Translations = rows

		for i, in := range req.Options {
			option := model.Option{QuestionID: question.ID, OrderIndex: i, IsCorrect: in.IsCorrect}
			if err := repo.CreateOption(&option); err != nil {
				return 0, err
			}
			option.Translations = optionRows(option.ID, in.Translations, optionLangs[i])
			if err := repo.UpsertOptionTranslations(option.Translations); err != nil {
				return 0, err
			}
			question.Options = append(question.Options, option)
		}

		if err := repo.AssertContiguous(repository.OptionsOfQuestion, question.ID); err != nil {
			return 0, err
		}
		return course.ID, repo.AssertContiguous(repository.QuestionsOfLesson, lessonID)
	})
	if err != nil {
		return nil, err
	}
	return question, nil
}

func (s *CurriculumService) UpdateQuestion(ctx context.Context, questionID uint, translations []BodyInput) error {
	return s.mutate(ctx, "update_question", questionID, func(ctx context.Context, repo *repository.CurriculumRepository) (uint, error) {
		q, course, err := s.ownedQuestion(ctx, repo, questionID)
		if err != nil {
			return 0, err
		}
		langs, err := parseLocales("translations", translations)
		if err != nil {
			return 0, err
		}
		rows := buildBody(translations, langs, func(l translation.LanguageID, t model.BodyText) model.QuestionTranslation {
			return model.QuestionTranslation{OwnerID: q.ID, LanguageID: l, BodyText: t}
		})
		return course.ID, repo.UpsertQuestionTranslations(rows)
	})
}

func (s *CurriculumService) DeleteQuestion(ctx context.Context, questionID uint) error {
	return s.mutate(ctx, "delete_question", questionID, func(ctx context.Context, repo *repository.CurriculumRepository) (uint, error) {
		q, course, err := s.ownedQuestion(ctx, repo, questionID)
		if err != nil {
			return 0, err
		}
		if err := repo.LockParent(repository.QuestionsOfLesson, q.LessonID); err != nil {
			return 0, err
		}
		if q, err = repo.FindQuestion(questionID); err != nil {
			return 0, err
		}
		if _, err := repo.DeleteQuestionCascade(q.ID); err != nil {
			return 0, err
		}
		return course.ID, closeGapAndCheck(repo, repository.QuestionsOfLesson, q.LessonID, q.OrderIndex)
	})
}

// ---- 选项 ----

func (s *CurriculumService) CreateOption(ctx context.Context, questionID uint, in OptionInput) (*model.Option, error) {
	var option *model.Option
	err := s.mutate(ctx, "create_option", questionID, func(ctx context.Context, repo *repository.CurriculumRepository) (uint, error) {
		if err := repo.LockParent(repository.OptionsOfQuestion, questionID); err != nil {
			return 0, err
		}
		_, course, err := s.ownedQuestion(ctx, repo, questionID)
		if err != nil {
			return 0, err
		}
		langs, err := parseLocales("translations", in.Translations)
		if err != nil {
			return 0, err
		}
		n, err := repo.CountSiblings(repository.OptionsOfQuestion, questionID)
		if err != nil {
			return 0, err
		}
		option = &model.Option{QuestionID: questionID, OrderIndex: n, IsCorrect: in.IsCorrect}
		if err := repo.CreateOption(option); err != nil {
			return 0, err
		}
		option.Translations = optionRows(option.ID, in.Translations, langs)
		if err := repo.UpsertOptionTranslations(option.Translations); err != nil {
			return 0, err
		}
		return course.ID, repo.AssertContiguous(repository.OptionsOfQuestion, questionID)
	})
	if err != nil {
		return nil, err
	}
	return option, nil
}

// UpdateOption 修改 is_correct 时，题目仍须保留至少一个正确选项
func (s *CurriculumService) UpdateOption(ctx context.Context, optionID uint, req UpdateOptionRequest) error {
	return s.mutate(ctx, "update_option", optionID, func(ctx context.Context, repo *repository.CurriculumRepository) (uint, error) {
		option, err := repo.FindOption(optionID)
		if err != nil {
			return 0, err
		}
		if err := repo.LockParent(repository.OptionsOfQuestion, option.QuestionID); err != nil {
			return 0, err
		}
		q, course, err := s.ownedQuestion(ctx, repo, option.QuestionID)
		if err != nil {
			return 0, err
		}
		langs, err := parseLocales("translations", req.Translations)
		if err != nil {
			return 0, err
		}
		// 加锁后以题目下的最新选项为准
		found := false
		for _, o := range q.Options {
			if o.ID == option.ID {
				*option = o
				found = true
			}
		}
		if !found {
			return 0, util.ErrNotFound
		}
		if req.IsCorrect != nil && *req.IsCorrect != option.IsCorrect {
			flags := optionFlags(q.Options)
			for i, o := range q.Options {
				if o.ID == option.ID {
					flags[i] = *req.IsCorrect
				}
			}
			if err := validateOptionSet(flags); err != nil {
				return 0, err
			}
			option.IsCorrect = *req.IsCorrect
			if err := repo.UpdateOption(option); err != nil {
				return 0, err
			}
		}
		return course.ID, repo.UpsertOptionTranslations(optionRows(option.ID, req.Translations, langs))
	})
}

// DeleteOption 删除后题目仍须满足至少两个选项、至少一个正确
func (s *CurriculumService) DeleteOption(ctx context.Context, optionID uint) error {
	return s.mutate(ctx, "delete_option", optionID, func(ctx context.Context, repo *repository.CurriculumRepository) (uint, error) {
		option, err := repo.FindOption(optionID)
		if err != nil {
			return 0, err
		}
		if err := repo.LockParent(repository.OptionsOfQuestion, option.QuestionID); err != nil {
			return 0, err
		}
		q, course, err := s.ownedQuestion(ctx, repo, option.QuestionID)
		if err != nil {
			return 0, err
		}

		remaining := make([]bool, 0, len(q.Options))
		removedIndex := -1
		for _, o := range q.Options {
			if o.ID == option.ID {
				removedIndex = o.OrderIndex
				continue
			}
			remaining = append(remaining, o.IsCorrect)
		}
		if removedIndex < 0 {
			return 0, util.ErrNotFound
		}
		if err := validateOptionSet(remaining); err != nil {
			return 0, err
		}
		if _, err := repo.DeleteOption(option.ID); err != nil {
			return 0, err
		}
		return course.ID, closeGapAndCheck(repo, repository.OptionsOfQuestion, q.ID, removedIndex)
	})
}

// ---- 评分 ----

// GradeSubmission answers 为 题目ID -> 所选选项ID 列表
func (s *CurriculumService) GradeSubmission(ctx context.Context, lessonID uint, answers map[uint][]uint) (result *ScoreResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "curriculum.grade_submission", lessonID)
	defer func() { tracing.EndSpan(span, err) }()

	// 已发布课程的测验对所有登录用户开放，身份校验在 HTTP 层完成
	repo := s.Repo.WithTx(s.DB.WithContext(ctx))
	lesson, err := repo.LoadLessonTree(lessonID)
	if err != nil {
		return nil, err
	}
	unit, err := repo.FindUnit(lesson.UnitID)
	if err != nil {
		return nil, err
	}
	course, err := repo.FindCourse(unit.CourseID)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished {
		if err = canEdit(ctx, s.Auth, course); err != nil {
			return nil, err
		}
	}
	if lesson.LessonType != model.LessonTypeQuiz || lesson.Quiz == nil {
		return nil, util.NewValidationError("lessonId", "only quiz lessons can be graded")
	}

	scored := Score(lesson.Questions, answers, lesson.Quiz.PassingScore)
	return &scored, nil
}
