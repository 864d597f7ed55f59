package service

import (
	"context"
	"curriculum_backend/internal/config"
	"curriculum_backend/internal/model"
	"curriculum_backend/internal/repository"
	"curriculum_backend/internal/translation"
	"curriculum_backend/internal/util"
	"curriculum_backend/pkg/database"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	ownerID    uint = 7
	strangerID uint = 8
)

func newTestService(t *testing.T) *CurriculumService {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := &config.DatabaseConfig{
		Driver: "sqlite",
		Path:   fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	}
	db, err := database.Open(cfg, gormlogger.Silent)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	repo := repository.NewCurriculumRepository(db)
	return NewCurriculumService(repo, db, ClaimsAuthorizer{}, repository.NewTreeCache(nil, 0))
}

func as(userID uint, role model.UserRole) context.Context {
	return util.WithClaims(context.Background(), &util.Claims{UserID: userID, Role: role})
}

func owner() context.Context { return as(ownerID, model.Instructor) }

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func titled(locale, title string) []TitledInput {
	return []TitledInput{{Locale: locale, Title: strPtr(title)}}
}

func body(locale, text string) []BodyInput {
	return []BodyInput{{Locale: locale, Text: strPtr(text)}}
}

func mustCourse(t *testing.T, s *CurriculumService) *model.Course {
	t.Helper()
	c, err := s.CreateCourse(owner(), CreateCourseRequest{Translations: titled("en", "Intro to Go")})
	if err != nil {
		t.Fatalf("CreateCourse() error = %v", err)
	}
	return c
}

func mustUnit(t *testing.T, s *CurriculumService, courseID uint, title string) *model.Unit {
	t.Helper()
	u, err := s.CreateUnit(owner(), courseID, titled("en", title))
	if err != nil {
		t.Fatalf("CreateUnit(%q) error = %v", title, err)
	}
	return u
}

func mustVideoLesson(t *testing.T, s *CurriculumService, unitID uint) *model.Lesson {
	t.Helper()
	l, err := s.CreateLesson(owner(), unitID, model.VideoPayload{URL: "https://cdn.example.com/v.mp4", DurationSeconds: 90}, titled("en", "Video"))
	if err != nil {
		t.Fatalf("CreateLesson(video) error = %v", err)
	}
	return l
}

func mustQuizLesson(t *testing.T, s *CurriculumService, unitID uint) *model.Lesson {
	t.Helper()
	l, err := s.CreateLesson(owner(), unitID, model.QuizPayload{}, titled("en", "Quiz"))
	if err != nil {
		t.Fatalf("CreateLesson(quiz) error = %v", err)
	}
	return l
}

func twoOptions(correct ...bool) []OptionInput {
	opts := make([]OptionInput, len(correct))
	for i, c := range correct {
		opts[i] = OptionInput{IsCorrect: c, Translations: body("en", fmt.Sprintf("option %d", i))}
	}
	return opts
}

func mustQuestion(t *testing.T, s *CurriculumService, lessonID uint) *model.Question {
	t.Helper()
	q, err := s.CreateQuestion(owner(), lessonID, CreateQuestionRequest{
		Translations: body("en", "Pick one"),
		Options:      twoOptions(true, false),
	})
	if err != nil {
		t.Fatalf("CreateQuestion() error = %v", err)
	}
	return q
}

func orderOf(t *testing.T, s *CurriculumService, set repository.SiblingSet, parentID uint) []uint {
	t.Helper()
	ids, err := s.Repo.SiblingIDs(set, parentID)
	if err != nil {
		t.Fatalf("SiblingIDs() error = %v", err)
	}
	return ids
}

func assertContiguous(t *testing.T, db *gorm.DB, repo *repository.CurriculumRepository) {
	t.Helper()
	checks := []struct {
		set    repository.SiblingSet
		parent string
	}{
		{repository.UnitsOfCourse, "courses"},
		{repository.LessonsOfUnit, "course_units"},
		{repository.QuestionsOfLesson, "lessons"},
		{repository.OptionsOfQuestion, "quiz_questions"},
	}
	for _, c := range checks {
		var parentIDs []uint
		if err := db.Table(c.parent).Pluck("id", &parentIDs).Error; err != nil {
			t.Fatalf("pluck %s: %v", c.parent, err)
		}
		for _, id := range parentIDs {
			if err := repo.AssertContiguous(c.set, id); err != nil {
				t.Fatalf("%v", err)
			}
		}
	}
}

func TestEndToEndScenario(t *testing.T) {
	s := newTestService(t)
	course := mustCourse(t, s)
	a := mustUnit(t, s, course.ID, "A")
	b := mustUnit(t, s, course.ID, "B")

	if a.OrderIndex != 0 || b.OrderIndex != 1 {
		t.Fatalf("initial order = (%d, %d), want (0, 1)", a.OrderIndex, b.OrderIndex)
	}

	if err := s.ReorderUnits(owner(), course.ID, []uint{b.ID, a.ID}); err != nil {
		t.Fatalf("ReorderUnits() error = %v", err)
	}
	gotA, _ := s.GetUnit(owner(), a.ID)
	gotB, _ := s.GetUnit(owner(), b.ID)
	if gotA.OrderIndex != 1 || gotB.OrderIndex != 0 {
		t.Fatalf("after reorder A=%d B=%d, want A=1 B=0", gotA.OrderIndex, gotB.OrderIndex)
	}

	if err := s.DeleteUnit(owner(), b.ID); err != nil {
		t.Fatalf("DeleteUnit() error = %v", err)
	}
	gotA, err := s.GetUnit(owner(), a.ID)
	if err != nil {
		t.Fatalf("GetUnit(A) error = %v", err)
	}
	if gotA.OrderIndex != 0 {
		t.Errorf("A.OrderIndex = %d, want 0", gotA.OrderIndex)
	}
	if _, err := s.GetUnit(owner(), b.ID); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("GetUnit(B) error = %v, want ErrNotFound", err)
	}
}

func TestReorder_RejectsNonPermutation(t *testing.T) {
	s := newTestService(t)
	course := mustCourse(t, s)
	other, err := s.CreateCourse(owner(), CreateCourseRequest{Translations: titled("en", "Other")})
	if err != nil {
		t.Fatal(err)
	}
	u1 := mustUnit(t, s, course.ID, "1")
	u2 := mustUnit(t, s, course.ID, "2")
	u3 := mustUnit(t, s, course.ID, "3")
	foreign := mustUnit(t, s, other.ID, "foreign")

	before := orderOf(t, s, repository.UnitsOfCourse, course.ID)

	tests := []struct {
		name string
		ids  []uint
	}{
		{"missing id", []uint{u2.ID, u1.ID}},
		{"foreign id", []uint{u3.ID, u2.ID, foreign.ID}},
		{"duplicate id", []uint{u1.ID, u1.ID, u2.ID}},
		{"extra foreign id", []uint{u3.ID, u2.ID, u1.ID, foreign.ID}},
		{"empty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.ReorderUnits(owner(), course.ID, tt.ids)
			var verr *util.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ReorderUnits() error = %v, want ValidationError", err)
			}
			if verr.Field != "orderedIds" {
				t.Errorf("Field = %q, want orderedIds", verr.Field)
			}
			after := orderOf(t, s, repository.UnitsOfCourse, course.ID)
			if fmt.Sprint(after) != fmt.Sprint(before) {
				t.Errorf("order changed from %v to %v", before, after)
			}
		})
	}
}

func TestReorder_LastWriteWins(t *testing.T) {
	s := newTestService(t)
	course := mustCourse(t, s)
	u1 := mustUnit(t, s, course.ID, "1")
	u2 := mustUnit(t, s, course.ID, "2")
	u3 := mustUnit(t, s, course.ID, "3")

	if err := s.ReorderUnits(owner(), course.ID, []uint{u3.ID, u1.ID, u2.ID}); err != nil {
		t.Fatal(err)
	}
	if err := s.ReorderUnits(as(0, model.Admin), course.ID, []uint{u2.ID, u3.ID, u1.ID}); err != nil {
		t.Fatal(err)
	}
	want := fmt.Sprint([]uint{u2.ID, u3.ID, u1.ID})
	if got := fmt.Sprint(orderOf(t, s, repository.UnitsOfCourse, course.ID)); got != want {
		t.Errorf("order = %s, want %s", got, want)
	}
}

func TestDeleteUnit_CascadesToEveryDescendant(t *testing.T) {
	s := newTestService(t)
	course := mustCourse(t, s)
	unit := mustUnit(t, s, course.ID, "doomed")
	keep := mustUnit(t, s, course.ID, "keep")

	quiz := mustQuizLesson(t, s, unit.ID)
	video := mustVideoLesson(t, s, unit.ID)
	q1 := mustQuestion(t, s, quiz.ID)
	q2 := mustQuestion(t, s, quiz.ID)

	if err := s.DeleteUnit(owner(), unit.ID); err != nil {
		t.Fatalf("DeleteUnit() error = %v", err)
	}

	for _, m := range []interface{}{
		&model.Lesson{}, &model.LessonTranslation{}, &model.LessonVideo{}, &model.LessonQuiz{},
		&model.Question{}, &model.QuestionTranslation{}, &model.Option{}, &model.OptionTranslation{},
	} {
		var n int64
		if err := s.DB.Model(m).Count(&n).Error; err != nil {
			t.Fatal(err)
		}
		if n != 0 {
			t.Errorf("%T rows left = %d, want 0", m, n)
		}
	}
	var unitTr int64
	s.DB.Model(&model.UnitTranslation{}).Where("owner_id = ?", unit.ID).Count(&unitTr)
	if unitTr != 0 {
		t.Errorf("unit translations left = %d, want 0", unitTr)
	}

	for _, id := range []uint{quiz.ID, video.ID} {
		if _, err := s.GetLesson(owner(), id); !errors.Is(err, util.ErrNotFound) {
			t.Errorf("GetLesson(%d) error = %v, want ErrNotFound", id, err)
		}
	}
	for _, id := range []uint{q1.ID, q2.ID} {
		if _, err := s.GetQuestion(owner(), id); !errors.Is(err, util.ErrNotFound) {
			t.Errorf("GetQuestion(%d) error = %v, want ErrNotFound", id, err)
		}
	}

	// 剩余兄弟前移
	got, err := s.GetUnit(owner(), keep.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.OrderIndex != 0 {
		t.Errorf("remaining unit OrderIndex = %d, want 0", got.OrderIndex)
	}
}

func TestDeleteCourse_RemovesWholeTree(t *testing.T) {
	s := newTestService(t)
	course := mustCourse(t, s)
	unit := mustUnit(t, s, course.ID, "u")
	quiz := mustQuizLesson(t, s, unit.ID)
	mustQuestion(t, s, quiz.ID)

	if err := s.DeleteCourse(owner(), course.ID); err != nil {
		t.Fatalf("DeleteCourse() error = %v", err)
	}
	if _, err := s.GetCourseTree(owner(), course.ID); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("GetCourseTree() error = %v, want ErrNotFound", err)
	}
	var n int64
	s.DB.Model(&model.Option{}).Count(&n)
	if n != 0 {
		t.Errorf("options left = %d, want 0", n)
	}
}

func TestCreateQuestion_WriteGuard(t *testing.T) {
	s := newTestService(t)
	course := mustCourse(t, s)
	unit := mustUnit(t, s, course.ID, "u")
	quiz := mustQuizLesson(t, s, unit.ID)
	video := mustVideoLesson(t, s, unit.ID)

	tests := []struct {
		name     string
		lessonID uint
		options  []OptionInput
		wantErr  bool
	}{
		{"one option", quiz.ID, twoOptions(true), true},
		{"no correct option", quiz.ID, twoOptions(false, false), true},
		{"two options one correct", quiz.ID, twoOptions(false, true), false},
		{"video lesson", video.ID, twoOptions(false, true), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateQuestion(owner(), tt.lessonID, CreateQuestionRequest{Options: tt.options})
			if tt.wantErr {
				if !errors.Is(err, util.ErrValidation) {
					t.Errorf("CreateQuestion() error = %v, want ValidationError", err)
				}
				return
			}
			if err != nil {
				t.Errorf("CreateQuestion() error = %v", err)
			}
		})
	}

	// 被拒绝的写入不留下任何行
	var n int64
	s.DB.Model(&model.Question{}).Count(&n)
	if n != 1 {
		t.Errorf("questions = %d, want 1", n)
	}
}

func TestOptionMutations_KeepQuestionValid(t *testing.T) {
	s := newTestService(t)
	course := mustCourse(t, s)
	unit := mustUnit(t, s, course.ID, "u")
	quiz := mustQuizLesson(t, s, unit.ID)
	q := mustQuestion(t, s, quiz.ID)
	correct, wrong := q.Options[0], q.Options[1]

	if err := s.DeleteOption(owner(), wrong.ID); !errors.Is(err, util.ErrValidation) {
		t.Errorf("deleting down to one option: error = %v, want ValidationError", err)
	}
	if err := s.UpdateOption(owner(), correct.ID, UpdateOptionRequest{IsCorrect: new(bool)}); !errors.Is(err, util.ErrValidation) {
		t.Errorf("clearing the only correct option: error = %v, want ValidationError", err)
	}

	third, err := s.CreateOption(owner(), q.ID, OptionInput{IsCorrect: true, Translations: body("ar", "ثالث")})
	if err != nil {
		t.Fatalf("CreateOption() error = %v", err)
	}
	if third.OrderIndex != 2 {
		t.Errorf("new option OrderIndex = %d, want 2", third.OrderIndex)
	}
	if err := s.UpdateOption(owner(), correct.ID, UpdateOptionRequest{IsCorrect: new(bool)}); err != nil {
		t.Errorf("clearing one of two correct options: error = %v", err)
	}
	if err := s.DeleteOption(owner(), correct.ID); err != nil {
		t.Fatalf("DeleteOption() error = %v", err)
	}
	if err := s.ReorderOptions(owner(), q.ID, []uint{third.ID, wrong.ID}); err != nil {
		t.Fatalf("ReorderOptions() error = %v", err)
	}
	if got := fmt.Sprint(orderOf(t, s, repository.OptionsOfQuestion, q.ID)); got != fmt.Sprint([]uint{third.ID, wrong.ID}) {
		t.Errorf("option order = %s", got)
	}
}

func TestUpdateOption_ChecksStoredCorrectness(t *testing.T) {
	s := newTestService(t)
	course := mustCourse(t, s)
	unit := mustUnit(t, s, course.ID, "u")
	quiz := mustQuizLesson(t, s, unit.ID)
	q, err := s.CreateQuestion(owner(), quiz.ID, CreateQuestionRequest{
		Translations: body("en", "Pick all"),
		Options:      twoOptions(true, true),
	})
	if err != nil {
		t.Fatalf("CreateQuestion() error = %v", err)
	}
	first, second := q.Options[0], q.Options[1]

	// first 被清除后 second 是唯一正确选项，即使调用方持有的 second 仍是旧值
	if err := s.UpdateOption(owner(), first.ID, UpdateOptionRequest{IsCorrect: new(bool)}); err != nil {
		t.Fatalf("UpdateOption(first) error = %v", err)
	}
	if err := s.UpdateOption(owner(), second.ID, UpdateOptionRequest{IsCorrect: new(bool)}); !errors.Is(err, util.ErrValidation) {
		t.Errorf("clearing the last correct option: error = %v, want ValidationError", err)
	}

	yes := true
	if err := s.UpdateOption(owner(), first.ID, UpdateOptionRequest{IsCorrect: &yes}); err != nil {
		t.Fatalf("UpdateOption(first, true) error = %v", err)
	}
	stored, err := s.Repo.FindOption(first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.IsCorrect {
		t.Error("first option IsCorrect = false after setting it back to true")
	}
	if err := s.UpdateOption(owner(), second.ID, UpdateOptionRequest{IsCorrect: new(bool)}); err != nil {
		t.Errorf("clearing second once first is correct again: error = %v", err)
	}
}

func TestUpdateLesson_TypeIsImmutable(t *testing.T) {
	s := newTestService(t)
	course := mustCourse(t, s)
	unit := mustUnit(t, s, course.ID, "u")
	video := mustVideoLesson(t, s, unit.ID)
	quizType := model.LessonTypeQuiz

	tests := []struct {
		name string
		req  UpdateLessonRequest
	}{
		{"quiz payload on video lesson", UpdateLessonRequest{Quiz: &QuizPatch{PassingScore: intPtr(80)}, Video: &VideoPatch{URL: strPtr("https://x")}}},
		{"type change", UpdateLessonRequest{LessonType: &quizType}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.UpdateLesson(owner(), video.ID, tt.req)
			if !errors.Is(err, util.ErrInvariantViolation) {
				t.Fatalf("UpdateLesson() error = %v, want ErrInvariantViolation", err)
			}
			got, err := s.GetLesson(owner(), video.ID)
			if err != nil {
				t.Fatal(err)
			}
			if got.LessonType != model.LessonTypeVideo || got.Quiz != nil || got.Video == nil {
				t.Fatalf("lesson mutated: %+v", got)
			}
			if got.Video.URL != "https://cdn.example.com/v.mp4" || got.Video.DurationSeconds != 90 {
				t.Errorf("video payload mutated: %+v", got.Video)
			}
		})
	}

	// 视频负载本身可以自由修改
	err := s.UpdateLesson(owner(), video.ID, UpdateLessonRequest{Video: &VideoPatch{DurationSeconds: intPtr(120), IsFreePreview: new(bool)}})
	if err != nil {
		t.Fatalf("UpdateLesson(video patch) error = %v", err)
	}
	got, _ := s.GetLesson(owner(), video.ID)
	if got.Video.DurationSeconds != 120 {
		t.Errorf("DurationSeconds = %d, want 120", got.Video.DurationSeconds)
	}
}

func TestCreateLesson_PayloadValidation(t *testing.T) {
	s := newTestService(t)
	course := mustCourse(t, s)
	unit := mustUnit(t, s, course.ID, "u")

	tests := []struct {
		name    string
		payload model.LessonPayload
	}{
		{"empty video url", model.VideoPayload{}},
		{"negative duration", model.VideoPayload{URL: "https://x", DurationSeconds: -1}},
		{"passing score above range", model.QuizPayload{PassingScore: intPtr(101)}},
		{"passing score below range", model.QuizPayload{PassingScore: intPtr(-1)}},
		{"missing payload", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.CreateLesson(owner(), unit.ID, tt.payload, nil); !errors.Is(err, util.ErrValidation) {
				t.Errorf("CreateLesson() error = %v, want ValidationError", err)
			}
		})
	}

	quiz := mustQuizLesson(t, s, unit.ID)
	got, err := s.GetLesson(owner(), quiz.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Quiz == nil || got.Quiz.PassingScore != model.DefaultPassingScore {
		t.Errorf("quiz payload = %+v, want default passing score %d", got.Quiz, model.DefaultPassingScore)
	}
	if got.OrderIndex != 0 {
		t.Errorf("OrderIndex = %d, want 0 after rejected creates", got.OrderIndex)
	}
}

func TestMutations_RequireOwnership(t *testing.T) {
	s := newTestService(t)
	course := mustCourse(t, s)
	unit := mustUnit(t, s, course.ID, "u")

	stranger := as(strangerID, model.Instructor)
	student := as(ownerID, model.Student)

	if _, err := s.CreateUnit(stranger, course.ID, nil); !errors.Is(err, util.ErrUnauthorized) {
		t.Errorf("stranger CreateUnit() error = %v, want ErrUnauthorized", err)
	}
	if err := s.DeleteUnit(stranger, unit.ID); !errors.Is(err, util.ErrUnauthorized) {
		t.Errorf("stranger DeleteUnit() error = %v, want ErrUnauthorized", err)
	}
	if err := s.ReorderUnits(context.Background(), course.ID, []uint{unit.ID}); !errors.Is(err, util.ErrUnauthorized) {
		t.Errorf("anonymous ReorderUnits() error = %v, want ErrUnauthorized", err)
	}
	if _, err := s.CreateCourse(student, CreateCourseRequest{}); !errors.Is(err, util.ErrUnauthorized) {
		t.Errorf("student CreateCourse() error = %v, want ErrUnauthorized", err)
	}
	if _, err := s.GetCourseTree(stranger, course.ID); !errors.Is(err, util.ErrUnauthorized) {
		t.Errorf("stranger GetCourseTree() error = %v, want ErrUnauthorized", err)
	}

	// 管理员可以修改任意课程
	if _, err := s.CreateUnit(as(99, model.Admin), course.ID, titled("ar", "وحدة")); err != nil {
		t.Errorf("admin CreateUnit() error = %v", err)
	}
	if _, err := s.CreateUnit(owner(), 12345, nil); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("CreateUnit(unknown course) error = %v, want ErrNotFound", err)
	}
}

func TestCreateCourse_UniqueSlugs(t *testing.T) {
	s := newTestService(t)
	first := mustCourse(t, s)
	second := mustCourse(t, s)
	explicit, err := s.CreateCourse(owner(), CreateCourseRequest{Slug: "Go Basics!"})
	if err != nil {
		t.Fatal(err)
	}

	if first.Slug != "intro-to-go" {
		t.Errorf("first slug = %q, want intro-to-go", first.Slug)
	}
	if second.Slug != "intro-to-go-2" {
		t.Errorf("second slug = %q, want intro-to-go-2", second.Slug)
	}
	if explicit.Slug != "go-basics" {
		t.Errorf("explicit slug = %q, want go-basics", explicit.Slug)
	}
	if first.InstructorID != ownerID {
		t.Errorf("InstructorID = %d, want %d", first.InstructorID, ownerID)
	}
}

func TestCreateUnit_RejectsDuplicateLocale(t *testing.T) {
	s := newTestService(t)
	course := mustCourse(t, s)
	_, err := s.CreateUnit(owner(), course.ID, []TitledInput{
		{Locale: "en", Title: strPtr("a")},
		{Locale: "EN", Title: strPtr("b")},
	})
	if !errors.Is(err, util.ErrValidation) {
		t.Fatalf("CreateUnit() error = %v, want ValidationError", err)
	}
	if ids := orderOf(t, s, repository.UnitsOfCourse, course.ID); len(ids) != 0 {
		t.Errorf("units = %v, want none", ids)
	}
}

func TestUpdateUnit_UpsertsTranslationsOnly(t *testing.T) {
	s := newTestService(t)
	course := mustCourse(t, s)
	mustUnit(t, s, course.ID, "first")
	unit := mustUnit(t, s, course.ID, "second")

	err := s.UpdateUnit(owner(), unit.ID, []TitledInput{
		{Locale: "en", Title: strPtr("renamed")},
		{Locale: "ar", Title: strPtr("")},
	})
	if err != nil {
		t.Fatalf("UpdateUnit() error = %v", err)
	}

	got, err := s.GetUnit(owner(), unit.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.OrderIndex != 1 || got.CourseID != course.ID {
		t.Errorf("ordering or parent changed: %+v", got)
	}
	if len(got.Translations) != 2 {
		t.Fatalf("translations = %d, want 2", len(got.Translations))
	}

	view, err := s.GetCourseView(owner(), course.ID, translation.Arabic)
	if err != nil {
		t.Fatal(err)
	}
	// 阿拉伯语标题显式为空串，优先于英语回退
	if title := view.Units[1].Content.Title; title != "" {
		t.Errorf("arabic title = %q, want explicit empty", title)
	}
	if title := view.Units[0].Content.Title; title != "first" {
		t.Errorf("fallback title = %q, want first", title)
	}
}

func TestContiguity_RandomizedOperations(t *testing.T) {
	s := newTestService(t)
	course := mustCourse(t, s)
	rng := rand.New(rand.NewSource(42))

	var units []uint
	lessons := map[uint][]uint{}
	questions := map[uint][]uint{}
	// 题目 -> 选项；每题第一个选项是唯一的正确选项
	options := map[uint][]uint{}

	pick := func(ids []uint) (uint, bool) {
		if len(ids) == 0 {
			return 0, false
		}
		return ids[rng.Intn(len(ids))], true
	}
	remove := func(ids []uint, id uint) []uint {
		out := ids[:0:0]
		for _, x := range ids {
			if x != id {
				out = append(out, x)
			}
		}
		return out
	}
	allLessons := func() []uint {
		var out []uint
		for _, ls := range lessons {
			out = append(out, ls...)
		}
		return out
	}
	allQuestions := func() []uint {
		var out []uint
		for _, qs := range questions {
			out = append(out, qs...)
		}
		return out
	}
	shuffle := func(ids []uint) []uint {
		out := append([]uint(nil), ids...)
		rng.Shuffle(len(out), func(a, b int) { out[a], out[b] = out[b], out[a] })
		return out
	}
	dropQuestions := func(lessonID uint) {
		for _, q := range questions[lessonID] {
			delete(options, q)
		}
		delete(questions, lessonID)
	}

	for i := 0; i < 120; i++ {
		switch op := rng.Intn(13); op {
		case 0, 1:
			u := mustUnit(t, s, course.ID, fmt.Sprintf("u%d", i))
			units = append(units, u.ID)
		case 2:
			if id, ok := pick(units); ok {
				if err := s.DeleteUnit(owner(), id); err != nil {
					t.Fatalf("op %d DeleteUnit: %v", i, err)
				}
				units = remove(units, id)
				for _, l := range lessons[id] {
					dropQuestions(l)
				}
				delete(lessons, id)
			}
		case 3:
			if err := s.ReorderUnits(owner(), course.ID, shuffle(units)); err != nil {
				t.Fatalf("op %d ReorderUnits: %v", i, err)
			}
		case 4, 5:
			if id, ok := pick(units); ok {
				l := mustQuizLesson(t, s, id)
				lessons[id] = append(lessons[id], l.ID)
			}
		case 6:
			if unitID, ok := pick(units); ok {
				if id, ok := pick(lessons[unitID]); ok {
					if err := s.DeleteLesson(owner(), id); err != nil {
						t.Fatalf("op %d DeleteLesson: %v", i, err)
					}
					lessons[unitID] = remove(lessons[unitID], id)
					dropQuestions(id)
				}
			}
		case 7:
			if unitID, ok := pick(units); ok && len(lessons[unitID]) > 0 {
				if err := s.ReorderLessons(owner(), unitID, shuffle(lessons[unitID])); err != nil {
					t.Fatalf("op %d ReorderLessons: %v", i, err)
				}
			}
		case 8:
			if id, ok := pick(allLessons()); ok {
				if rng.Intn(2) == 0 || len(questions[id]) == 0 {
					q := mustQuestion(t, s, id)
					questions[id] = append(questions[id], q.ID)
					for _, o := range q.Options {
						options[q.ID] = append(options[q.ID], o.ID)
					}
				} else {
					qid, _ := pick(questions[id])
					if err := s.DeleteQuestion(owner(), qid); err != nil {
						t.Fatalf("op %d DeleteQuestion: %v", i, err)
					}
					questions[id] = remove(questions[id], qid)
					delete(options, qid)
				}
			}
		case 9:
			if id, ok := pick(allLessons()); ok && len(questions[id]) > 0 {
				if err := s.ReorderQuestions(owner(), id, shuffle(questions[id])); err != nil {
					t.Fatalf("op %d ReorderQuestions: %v", i, err)
				}
			}
		case 10:
			if qid, ok := pick(allQuestions()); ok {
				o, err := s.CreateOption(owner(), qid, OptionInput{Translations: body("en", fmt.Sprintf("extra %d", i))})
				if err != nil {
					t.Fatalf("op %d CreateOption: %v", i, err)
				}
				options[qid] = append(options[qid], o.ID)
			}
		case 11:
			// 只删除错误选项且保留至少两个，题目始终合法
			if qid, ok := pick(allQuestions()); ok && len(options[qid]) > 2 {
				id, _ := pick(options[qid][1:])
				if err := s.DeleteOption(owner(), id); err != nil {
					t.Fatalf("op %d DeleteOption: %v", i, err)
				}
				options[qid] = remove(options[qid], id)
			}
		case 12:
			if qid, ok := pick(allQuestions()); ok {
				if err := s.ReorderOptions(owner(), qid, shuffle(options[qid])); err != nil {
					t.Fatalf("op %d ReorderOptions: %v", i, err)
				}
			}
		}
		assertContiguous(t, s.DB, s.Repo)
	}

	if got := len(orderOf(t, s, repository.UnitsOfCourse, course.ID)); got != len(units) {
		t.Errorf("units stored = %d, tracked = %d", got, len(units))
	}
	for qid, ids := range options {
		if got := len(orderOf(t, s, repository.OptionsOfQuestion, qid)); got != len(ids) {
			t.Errorf("question %d options stored = %d, tracked = %d", qid, got, len(ids))
		}
	}
}
