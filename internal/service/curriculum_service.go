package service

import (
	"context"
	"curriculum_backend/internal/model"
	"curriculum_backend/internal/repository"
	"curriculum_backend/internal/translation"
	"curriculum_backend/internal/util"
	"curriculum_backend/pkg/logger"
	"curriculum_backend/pkg/monitoring"
	"curriculum_backend/pkg/tracing"
	"errors"
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CurriculumService struct {
	Repo  *repository.CurriculumRepository
	DB    *gorm.DB
	Auth  Authorizer
	Cache *repository.TreeCache
}

func NewCurriculumService(repo *repository.CurriculumRepository, db *gorm.DB, auth Authorizer, cache *repository.TreeCache) *CurriculumService {
	return &CurriculumService{
		Repo:  repo,
		DB:    db,
		Auth:  auth,
		Cache: cache,
	}
}

// mutate 在单个事务中执行写操作。fn 返回受影响的课程 ID，提交后使其缓存失效。
func (s *CurriculumService) mutate(ctx context.Context, op string, nodeID uint, fn func(ctx context.Context, repo *repository.CurriculumRepository) (uint, error)) (err error) {
	ctx, span := tracing.StartSpan(ctx, "curriculum."+op, nodeID)
	defer func() {
		tracing.EndSpan(span, err)
		monitoring.ObserveMutation(op, err)
	}()

	if _, err = requireCaller(ctx, s.Auth); err != nil {
		return err
	}

	var courseID uint
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, txErr := fn(ctx, s.Repo.WithTx(tx))
		courseID = id
		return txErr
	})
	if err != nil {
		if errors.Is(err, util.ErrInvariantViolation) {
			logger.Log.Error("curriculum invariant violated, transaction rolled back",
				zap.String("operation", op),
				zap.Uint("nodeId", nodeID),
				zap.Error(err))
		}
		return err
	}

	s.Cache.Invalidate(ctx, courseID)
	logger.Log.Debug("curriculum mutation committed", zap.String("operation", op), zap.Uint("courseId", courseID))
	return nil
}

// ---- 归属链 ----

func (s *CurriculumService) ownedCourse(ctx context.Context, repo *repository.CurriculumRepository, courseID uint) (*model.Course, error) {
	course, err := repo.FindCourse(courseID)
	if err != nil {
		return nil, err
	}
	if err := canEdit(ctx, s.Auth, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CurriculumService) ownedUnit(ctx context.Context, repo *repository.CurriculumRepository, unitID uint) (*model.Unit, *model.Course, error) {
	unit, err := repo.FindUnit(unitID)
	if err != nil {
		return nil, nil, err
	}
	course, err := s.ownedCourse(ctx, repo, unit.CourseID)
	if err != nil {
		return nil, nil, err
	}
	return unit, course, nil
}

func (s *CurriculumService) ownedLesson(ctx context.Context, repo *repository.CurriculumRepository, lessonID uint) (*model.Lesson, *model.Course, error) {
	lesson, err := repo.FindLesson(lessonID)
	if err != nil {
		return nil, nil, err
	}
	_, course, err := s.ownedUnit(ctx, repo, lesson.UnitID)
	if err != nil {
		return nil, nil, err
	}
	return lesson, course, nil
}

func (s *CurriculumService) ownedQuestion(ctx context.Context, repo *repository.CurriculumRepository, questionID uint) (*model.Question, *model.Course, error) {
	q, err := repo.FindQuestion(questionID)
	if err != nil {
		return nil, nil, err
	}
	_, course, err := s.ownedLesson(ctx, repo, q.LessonID)
	if err != nil {
		return nil, nil, err
	}
	return q, course, nil
}

// closeGapAndCheck 删除后前移后续兄弟并校验连续性
func closeGapAndCheck(repo *repository.CurriculumRepository, set repository.SiblingSet, parentID uint, removedIndex int) error {
	if err := repo.CloseGap(set, parentID, removedIndex); err != nil {
		return err
	}
	return repo.AssertContiguous(set, parentID)
}

// ---- 课程 ----

type CreateCourseRequest struct {
	Slug         string        `json:"slug"`
	CoverURL     string        `json:"coverUrl"`
	PriceCents   int64         `json:"priceCents"`
	IsFree       bool          `json:"isFree"`
	IsPublished  bool          `json:"isPublished"`
	Translations []TitledInput `json:"translations"`
}

type UpdateCourseRequest struct {
	CoverURL     *string       `json:"coverUrl"`
	PriceCents   *int64        `json:"priceCents"`
	IsFree       *bool         `json:"isFree"`
	IsPublished  *bool         `json:"isPublished"`
	Translations []TitledInput `json:"translations"`
}

func validatePrice(cents int64) error {
	if cents < 0 {
		return util.NewValidationError("priceCents", "must not be negative")
	}
	return nil
}

// slugSource 优先使用显式 slug，其次英语标题、阿拉伯语标题
func slugSource(req CreateCourseRequest, langs []translation.LanguageID) string {
	if req.Slug != "" {
		return req.Slug
	}
	for _, want := range []translation.LanguageID{translation.English, translation.Arabic} {
		for i, row := range req.Translations {
			if langs[i] == want && row.Title != nil && *row.Title != "" {
				return *row.Title
			}
		}
	}
	return ""
}

func (s *CurriculumService) uniqueSlug(repo *repository.CurriculumRepository, source string) (string, error) {
	base := slug.Make(source)
	if base == "" {
		base = "course"
	}
	candidate := base
	for n := 2; ; n++ {
		exists, err := repo.SlugExists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

func (s *CurriculumService) CreateCourse(ctx context.Context, req CreateCourseRequest) (*model.Course, error) {
	var course *model.Course
	err := s.mutate(ctx, "create_course", 0, func(ctx context.Context, repo *repository.CurriculumRepository) (uint, error) {
		instructorID, ok := s.Auth.CurrentInstructorID(ctx)
		if !ok {
			return 0, util.ErrUnauthorized
		}
		langs, err := validateTitled("translations", req.Translations)
		if err != nil {
			return 0, err
		}
		if err := validatePrice(req.PriceCents); err != nil {
			return 0, err
		}
		courseSlug, err := s.uniqueSlug(repo, slugSource(req, langs))
		if err != nil {
			return 0, err
		}

		course = &model.Course{
			InstructorID: instructorID,
			Slug:         courseSlug,
			CoverURL:     req.CoverURL,
			PriceCents:   req.PriceCents,
			IsFree:       req.IsFree,
		}
		setPublished(course, req.IsPublished)
		if err := repo.CreateCourse(course); err != nil {
			return 0, err
		}
		rows := buildTitled(req.Translations, langs, func(l translation.LanguageID, t model.TitledText) model.CourseTranslation {
			return model.CourseTranslation{OwnerID: course.ID, LanguageID: l, TitledText: t}
		})
		if err := repo.UpsertCourseTranslations(rows); err != nil {
			return 0, err
		}
		course.Translations = rows
		return course.ID, nil
	})
	if err != nil {
		return nil, err
	}
	return course, nil
}

func setPublished(course *model.Course, published bool) {
	if published && course.PublishedAt == nil {
		now := time.Now()
		course.PublishedAt = &now
	}
	if !published {
		course.PublishedAt = nil
	}
	course.IsPublished = published
}

func (s *CurriculumService) UpdateCourse(ctx context.Context, courseID uint, req UpdateCourseRequest) error {
	return s.mutate(ctx, "update_course", courseID, func(ctx context.Context, repo *repository.CurriculumRepository) (uint, error) {
		course, err := s.ownedCourse(ctx, repo, courseID)
		if err != nil {
			return 0, err
		}
		langs, err := validateTitled("translations", req.Translations)
		if err != nil {
			return 0, err
		}
		if req.PriceCents != nil {
			if err := validatePrice(*req.PriceCents); err != nil {
				return 0, err
			}
			course.PriceCents = *req.PriceCents
		}
		if req.CoverURL != nil {
			course.CoverURL = *req.CoverURL
		}
		if req.IsFree != nil {
			course.IsFree = *req.IsFree
		}
		if req.IsPublished != nil {
			setPublished(course, *req.IsPublished)
		}
		if err := repo.UpdateCourse(course); err != nil {
			return 0, err
		}
		rows := buildTitled(req.Translations, langs, func(l translation.LanguageID, t model.TitledText) model.CourseTranslation {
			return model.CourseTranslation{OwnerID: course.ID, LanguageID: l, TitledText: t}
		})
		return course.ID, repo.UpsertCourseTranslations(rows)
	})
}

func (s *CurriculumService) DeleteCourse(ctx context.Context, courseID uint) error {
	return s.mutate(ctx, "delete_course", courseID, func(ctx context.Context, repo *repository.CurriculumRepository) (uint, error) {
		if _, err := s.ownedCourse(ctx, repo, courseID); err != nil {
			return 0, err
		}
		report, err := repo.DeleteCourseCascade(courseID)
		if err != nil {
			return 0, err
		}
		logger.Log.Info("course deleted",
			zap.Uint("courseId", courseID),
			zap.Int("units", report.Units),
			zap.Int("lessons", report.Lessons),
			zap.Int("questions", report.Questions),
			zap.Int("options", report.Options))
		return courseID, nil
	})
}

// ListCourses 讲师只看到自己的课程，管理员看到全部
func (s *CurriculumService) ListCourses(ctx context.Context, page, limit int) ([]model.Course, int64, error) {
	callerID, err := requireCaller(ctx, s.Auth)
	if err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if s.Auth.IsAdmin(ctx) {
		callerID = 0
	}
	return s.Repo.WithTx(s.DB.WithContext(ctx)).ListCourses(callerID, page, limit)
}

// ---- 单元 ----

func (s *CurriculumService) CreateUnit(ctx context.Context, courseID uint, translations []TitledInput) (*model.Unit, error) {
	var unit *model.Unit
	err := s.mutate(ctx, "create_unit", courseID, func(ctx context.Context, repo *repository.CurriculumRepository) (uint, error) {
		if err := repo.LockParent(repository.UnitsOfCourse, courseID); err != nil {
			return 0, err
		}
		if _, err := s.ownedCourse(ctx, repo, courseID); err != nil {
			return 0, err
		}
		langs, err := validateTitled("translations", translations)
		if err != nil {
			return 0, err
		}
		n, err := repo.CountSiblings(repository.UnitsOfCourse, courseID)
		if err != nil {
			return 0, err
		}
		unit = &model.Unit{CourseID: courseID, OrderIndex: n}
		if err := repo.CreateUnit(unit); err != nil {
			return 0, err
		}
		rows := buildTitled(translations, langs, func(l translation.LanguageID, t model.TitledText) model.UnitTranslation {
			return model.UnitTranslation{OwnerID: unit.ID, LanguageID: l, TitledText: t}
		})
		if err := repo.UpsertUnitTranslations(rows); err != nil {
			return 0, err
		}
		unit.Translations = rows
		return courseID, repo.AssertContiguous(repository.UnitsOfCourse, courseID)
	})
	if err != nil {
		return nil, err
	}
	return unit, nil
}

// UpdateUnit 只更新翻译行，不触及排序与父节点
func (s *CurriculumService) UpdateUnit(ctx context.Context, unitID uint, translations []TitledInput) error {
	return s.mutate(ctx, "update_unit", unitID, func(ctx context.Context, repo *repository.CurriculumRepository) (uint, error) {
		unit, course, err := s.ownedUnit(ctx, repo, unitID)
		if err != nil {
			return 0, err
		}
		langs, err := validateTitled("translations", translations)
		if err != nil {
			return 0, err
		}
		rows := buildTitled(translations, langs, func(l translation.LanguageID, t model.TitledText) model.UnitTranslation {
			return model.UnitTranslation{OwnerID: unit.ID, LanguageID: l, TitledText: t}
		})
		return course.ID, repo.UpsertUnitTranslations(rows)
	})
}

func (s *CurriculumService) DeleteUnit(ctx context.Context, unitID uint) error {
	return s.mutate(ctx, "delete_unit", unitID, func(ctx context.Context, repo *repository.CurriculumRepository) (uint, error) {
		unit, course, err := s.ownedUnit(ctx, repo, unitID)
		if err != nil {
			return 0, err
		}
		if err := repo.LockParent(repository.UnitsOfCourse, course.ID); err != nil {
			return 0, err
		}
		// 加锁后重新读取，拿到最新的 order_index
		if unit, err = repo.FindUnit(unitID); err != nil {
			return 0, err
		}
		if _, err := repo.DeleteUnitCascade(unit.ID); err != nil {
			return 0, err
		}
		return course.ID, closeGapAndCheck(repo, repository.UnitsOfCourse, course.ID, unit.OrderIndex)
	})
}

// ---- 读取 ----

// GetCourseTree 返回完整课程树（原始翻译行），仅所有者或管理员可读
func (s *CurriculumService) GetCourseTree(ctx context.Context, courseID uint) (*model.Course, error) {
	course, err := s.loadCourseTree(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := canEdit(ctx, s.Auth, course); err != nil {
		return nil, err
	}
	return course, nil
}

// GetCourseView 已发布课程对所有登录用户可见，未发布课程仅所有者或管理员可见
func (s *CurriculumService) GetCourseView(ctx context.Context, courseID uint, locale translation.LanguageID) (*CourseView, error) {
	course, err := s.loadCourseTree(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished {
		if err := canEdit(ctx, s.Auth, course); err != nil {
			return nil, err
		}
	}
	return ResolveCourse(course, locale), nil
}

func (s *CurriculumService) loadCourseTree(ctx context.Context, courseID uint) (*model.Course, error) {
	return s.Cache.Get(ctx, courseID, func() (*model.Course, error) {
		return s.Repo.WithTx(s.DB.WithContext(ctx)).LoadCourseTree(courseID)
	})
}

func (s *CurriculumService) GetUnit(ctx context.Context, unitID uint) (*model.Unit, error) {
	repo := s.Repo.WithTx(s.DB.WithContext(ctx))
	if _, _, err := s.ownedUnit(ctx, repo, unitID); err != nil {
		return nil, err
	}
	return repo.LoadUnitTree(unitID)
}

func (s *CurriculumService) GetLesson(ctx context.Context, lessonID uint) (*model.Lesson, error) {
	repo := s.Repo.WithTx(s.DB.WithContext(ctx))
	if _, _, err := s.ownedLesson(ctx, repo, lessonID); err != nil {
		return nil, err
	}
	return repo.LoadLessonTree(lessonID)
}

func (s *CurriculumService) GetQuestion(ctx context.Context, questionID uint) (*model.Question, error) {
	repo := s.Repo.WithTx(s.DB.WithContext(ctx))
	if _, _, err := s.ownedQuestion(ctx, repo, questionID); err != nil {
		return nil, err
	}
	return repo.LoadQuestionTree(questionID)
}
