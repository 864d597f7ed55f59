package service

import (
	"context"
	"curriculum_backend/internal/model"
	"curriculum_backend/internal/reorder"
	"curriculum_backend/internal/repository"
	"curriculum_backend/internal/translation"
	"curriculum_backend/internal/util"
	"errors"
	"fmt"
	"testing"
	"time"
)

func question(id uint, correct ...uint) model.Question {
	q := model.Question{BaseModel: model.BaseModel{ID: id}}
	isCorrect := make(map[uint]bool, len(correct))
	for _, c := range correct {
		isCorrect[c] = true
	}
	for _, optID := range []uint{id*10 + 1, id*10 + 2, id*10 + 3} {
		q.Options = append(q.Options, model.Option{BaseModel: model.BaseModel{ID: optID}, IsCorrect: isCorrect[optID]})
	}
	return q
}

func TestScore(t *testing.T) {
	questions := []model.Question{
		question(1, 11),
		question(2, 21, 23),
	}

	tests := []struct {
		name       string
		answers    map[uint][]uint
		passing    int
		wantScore  float64
		wantPassed bool
	}{
		{"all correct", map[uint][]uint{1: {11}, 2: {23, 21}}, 60, 100, true},
		{"subset is wrong", map[uint][]uint{1: {11}, 2: {21}}, 60, 50, false},
		{"superset is wrong", map[uint][]uint{1: {11, 12}, 2: {21, 23}}, 50, 50, true},
		{"duplicates collapse", map[uint][]uint{1: {11, 11}, 2: {21, 23}}, 100, 100, true},
		{"no answers", nil, 0, 0, true},
		{"no answers with passing score", map[uint][]uint{}, 1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(questions, tt.answers, tt.passing)
			if got.Score != tt.wantScore || got.Passed != tt.wantPassed {
				t.Errorf("Score() = (%v, %v), want (%v, %v)", got.Score, got.Passed, tt.wantScore, tt.wantPassed)
			}
			if got.Total != 2 {
				t.Errorf("Total = %d, want 2", got.Total)
			}
		})
	}
}

func TestScore_ZeroQuestions(t *testing.T) {
	if got := Score(nil, nil, 0); got.Score != 0 || !got.Passed {
		t.Errorf("Score(nil, passing 0) = %+v, want score 0 passed", got)
	}
	if got := Score(nil, nil, 60); got.Score != 0 || got.Passed {
		t.Errorf("Score(nil, passing 60) = %+v, want score 0 failed", got)
	}
}

func TestValidatePassingScore(t *testing.T) {
	for _, score := range []int{0, 60, 100} {
		if err := ValidatePassingScore(score); err != nil {
			t.Errorf("ValidatePassingScore(%d) = %v", score, err)
		}
	}
	for _, score := range []int{-1, 101} {
		var verr *util.ValidationError
		if err := ValidatePassingScore(score); !errors.As(err, &verr) || verr.Field != "passingScore" {
			t.Errorf("ValidatePassingScore(%d) = %v, want passingScore ValidationError", score, err)
		}
	}
}

func TestGradeSubmission(t *testing.T) {
	s := newTestService(t)
	course := mustCourse(t, s)
	unit := mustUnit(t, s, course.ID, "u")
	quiz := mustQuizLesson(t, s, unit.ID)
	q1 := mustQuestion(t, s, quiz.ID)
	q2 := mustQuestion(t, s, quiz.ID)

	answers := map[uint][]uint{
		q1.ID: {q1.Options[0].ID},
		q2.ID: {q2.Options[1].ID},
	}
	result, err := s.GradeSubmission(owner(), quiz.ID, answers)
	if err != nil {
		t.Fatalf("GradeSubmission() error = %v", err)
	}
	if result.Score != 50 || result.Passed || result.PassingScore != model.DefaultPassingScore {
		t.Errorf("result = %+v, want 50%% failing against %d", result, model.DefaultPassingScore)
	}

	// 未发布课程对其他用户不可见
	if _, err := s.GradeSubmission(as(strangerID, model.Student), quiz.ID, answers); !errors.Is(err, util.ErrUnauthorized) {
		t.Errorf("stranger GradeSubmission() error = %v, want ErrUnauthorized", err)
	}
	published := true
	if err := s.UpdateCourse(owner(), course.ID, UpdateCourseRequest{IsPublished: &published}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GradeSubmission(as(strangerID, model.Student), quiz.ID, answers); err != nil {
		t.Errorf("student GradeSubmission() on published course error = %v", err)
	}

	video := mustVideoLesson(t, s, unit.ID)
	if _, err := s.GradeSubmission(owner(), video.ID, nil); !errors.Is(err, util.ErrValidation) {
		t.Errorf("grading a video lesson: error = %v, want ValidationError", err)
	}
}

func TestResolveCourse_FallsBackPerNode(t *testing.T) {
	s := newTestService(t)
	course := mustCourse(t, s)
	unit, err := s.CreateUnit(owner(), course.ID, []TitledInput{
		{Locale: "ar", Title: strPtr("الوحدة")},
		{Locale: "en", Title: strPtr("Unit"), Description: strPtr("About")},
	})
	if err != nil {
		t.Fatal(err)
	}
	quiz, err := s.CreateLesson(owner(), unit.ID, model.QuizPayload{PassingScore: intPtr(75)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	mustQuestion(t, s, quiz.ID)

	tree, err := s.GetCourseTree(owner(), course.ID)
	if err != nil {
		t.Fatal(err)
	}
	view := ResolveCourse(tree, translation.Arabic)

	if view.Content.Title != "Intro to Go" || !view.Content.FallbackUsed {
		t.Errorf("course content = %+v, want english fallback", view.Content)
	}
	u := view.Units[0]
	// 标题取阿拉伯语，描述只有英语行提供
	if u.Content.Title != "الوحدة" || u.Content.Description != "About" || !u.Content.FallbackUsed {
		t.Errorf("unit content = %+v, want arabic title with english description", u.Content)
	}
	lesson := u.Lessons[0]
	if lesson.Content.Title != translation.Untitled {
		t.Errorf("lesson title = %q, want %q", lesson.Content.Title, translation.Untitled)
	}
	if lesson.Quiz == nil || lesson.Quiz.PassingScore != 75 || len(lesson.Quiz.Questions) != 1 {
		t.Fatalf("quiz view = %+v", lesson.Quiz)
	}
	if opts := lesson.Quiz.Questions[0].Options; len(opts) != 2 || opts[0].Content.Text != "option 0" {
		t.Errorf("options = %+v", opts)
	}
}

func TestCoalescer_CommitsThroughReorderUnits(t *testing.T) {
	s := newTestService(t)
	course := mustCourse(t, s)
	var ids []uint
	for i := 0; i < 4; i++ {
		ids = append(ids, mustUnit(t, s, course.ID, fmt.Sprint(i)).ID)
	}

	calls := 0
	list := reorder.NewList(ids)
	c := reorder.NewCoalescer(owner(), list, func(ctx context.Context, order []uint) error {
		calls++
		return s.ReorderUnits(ctx, course.ID, order)
	}, reorder.Options{Window: time.Hour})

	c.Submit(reorder.Move(list.Current(), 0, 3))
	c.Submit(reorder.Move(list.Current(), 0, 3))
	if err := c.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	want := []uint{ids[2], ids[3], ids[0], ids[1]}
	if got := orderOf(t, s, repository.UnitsOfCourse, course.ID); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("stored order = %v, want %v", got, want)
	}
	if calls != 1 {
		t.Errorf("commit calls = %d, want 1", calls)
	}

	// 非法顺序提交失败后回滚到最近一次成功的顺序
	c.Submit([]uint{ids[0]})
	if err := c.Flush(); !errors.Is(err, util.ErrValidation) {
		t.Fatalf("Flush() error = %v, want ValidationError", err)
	}
	if got := list.Current(); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Current() = %v, want %v", got, want)
	}
}
