package service

import (
	"curriculum_backend/internal/model"
	"curriculum_backend/internal/util"
	"fmt"
)

const (
	MinOptionsPerQuestion = 2
	MinPassingScore       = 0
	MaxPassingScore       = 100
)

// ValidatePassingScore 及格线为 [0,100] 的百分比
func ValidatePassingScore(score int) error {
	if score < MinPassingScore || score > MaxPassingScore {
		return util.NewValidationError("passingScore", fmt.Sprintf("must be between %d and %d, got %d", MinPassingScore, MaxPassingScore, score))
	}
	return nil
}

// validateOptionSet 题目至少两个选项且至少一个正确
func validateOptionSet(correct []bool) error {
	if len(correct) < MinOptionsPerQuestion {
		return util.NewValidationError("options", fmt.Sprintf("a question needs at least %d options", MinOptionsPerQuestion))
	}
	for _, c := range correct {
		if c {
			return nil
		}
	}
	return util.NewValidationError("options", "a question needs at least one correct option")
}

func optionFlags(options []model.Option) []bool {
	flags := make([]bool, len(options))
	for i, o := range options {
		flags[i] = o.IsCorrect
	}
	return flags
}

type QuestionResult struct {
	QuestionID uint `json:"questionId"`
	Correct    bool `json:"correct"`
}

type ScoreResult struct {
	Score        float64          `json:"score"`
	PassingScore int              `json:"passingScore"`
	Passed       bool             `json:"passed"`
	Correct      int              `json:"correct"`
	Total        int              `json:"total"`
	Questions    []QuestionResult `json:"questions"`
}

// Score 每道题所选选项集合与正确选项集合完全相同才算答对。
// 没有题目时得分为 0。
func Score(questions []model.Question, answers map[uint][]uint, passingScore int) ScoreResult {
	result := ScoreResult{
		PassingScore: passingScore,
		Total:        len(questions),
		Questions:    make([]QuestionResult, 0, len(questions)),
	}
	for i := range questions {
		q := &questions[i]
		ok := sameSet(q.CorrectOptionIDs(), answers[q.ID])
		if ok {
			result.Correct++
		}
		result.Questions = append(result.Questions, QuestionResult{QuestionID: q.ID, Correct: ok})
	}
	if result.Total > 0 {
		result.Score = float64(result.Correct) / float64(result.Total) * 100
	}
	result.Passed = result.Score >= float64(passingScore)
	return result
}

func sameSet(want map[uint]struct{}, selected []uint) bool {
	got := make(map[uint]struct{}, len(selected))
	for _, id := range selected {
		got[id] = struct{}{}
	}
	if len(got) != len(want) {
		return false
	}
	for id := range got {
		if _, ok := want[id]; !ok {
			return false
		}
	}
	return true
}
