package controller

import (
	"curriculum_backend/internal/service"
	"curriculum_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// QuizController 测验题目、选项与评分
type QuizController struct {
	CurriculumService *service.CurriculumService
}

func NewQuizController(curriculumService *service.CurriculumService) *QuizController {
	return &QuizController{CurriculumService: curriculumService}
}

type BodyTranslationsRequest struct {
	Translations []service.BodyInput `json:"translations"`
}

// GradeRequest answers 为 题目ID -> 所选选项ID
type GradeRequest struct {
	Answers map[uint][]uint `json:"answers"`
}

// @Summary 添加题目（至少两个选项、至少一个正确）
// @Tags 测验管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "课时ID"
// @Param question body service.CreateQuestionRequest true "题目与选项"
// @Success 201 {object} util.Response
// @Router /api/lessons/{id}/questions [post]
func (c *QuizController) CreateQuestion(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var req service.CreateQuestionRequest
	if !bindJSON(ctx, &req) {
		return
	}
	question, err := c.CurriculumService.CreateQuestion(ctx.Request.Context(), id, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, question)
}

// @Summary 题目排序
// @Tags 测验管理
// @Accept json
// @Security BearerAuth
// @Param id path int true "课时ID"
// @Param order body ReorderRequest true "完整的题目ID顺序"
// @Success 200 {object} util.Response
// @Router /api/lessons/{id}/questions/order [put]
func (c *QuizController) ReorderQuestions(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var req ReorderRequest
	if !bindJSON(ctx, &req) {
		return
	}
	if err := c.CurriculumService.ReorderQuestions(ctx.Request.Context(), id, req.OrderedIDs); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 提交测验答案并评分
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "课时ID"
// @Param answers body GradeRequest true "作答"
// @Success 200 {object} util.Response{data=service.ScoreResult}
// @Router /api/lessons/{id}/grade [post]
func (c *QuizController) GradeSubmission(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var req GradeRequest
	if !bindJSON(ctx, &req) {
		return
	}
	result, err := c.CurriculumService.GradeSubmission(ctx.Request.Context(), id, req.Answers)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 获取题目
// @Tags 测验管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/questions/{id} [get]
func (c *QuizController) GetQuestion(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	question, err := c.CurriculumService.GetQuestion(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, question)
}

// @Summary 更新题目文本
// @Tags 测验管理
// @Accept json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Param question body BodyTranslationsRequest true "题目文本"
// @Success 200 {object} util.Response
// @Router /api/questions/{id} [put]
func (c *QuizController) UpdateQuestion(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var req BodyTranslationsRequest
	if !bindJSON(ctx, &req) {
		return
	}
	if err := c.CurriculumService.UpdateQuestion(ctx.Request.Context(), id, req.Translations); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 删除题目
// @Tags 测验管理
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/questions/{id} [delete]
func (c *QuizController) DeleteQuestion(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	if err := c.CurriculumService.DeleteQuestion(ctx.Request.Context(), id); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 添加选项
// @Tags 测验管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Param option body service.OptionInput true "选项"
// @Success 201 {object} util.Response
// @Router /api/questions/{id}/options [post]
func (c *QuizController) CreateOption(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var req service.OptionInput
	if !bindJSON(ctx, &req) {
		return
	}
	option, err := c.CurriculumService.CreateOption(ctx.Request.Context(), id, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, option)
}

// @Summary 选项排序
// @Tags 测验管理
// @Accept json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Param order body ReorderRequest true "完整的选项ID顺序"
// @Success 200 {object} util.Response
// @Router /api/questions/{id}/options/order [put]
func (c *QuizController) ReorderOptions(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var req ReorderRequest
	if !bindJSON(ctx, &req) {
		return
	}
	if err := c.CurriculumService.ReorderOptions(ctx.Request.Context(), id, req.OrderedIDs); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 更新选项
// @Tags 测验管理
// @Accept json
// @Security BearerAuth
// @Param id path int true "选项ID"
// @Param option body service.UpdateOptionRequest true "更新内容"
// @Success 200 {object} util.Response
// @Router /api/options/{id} [put]
func (c *QuizController) UpdateOption(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var req service.UpdateOptionRequest
	if !bindJSON(ctx, &req) {
		return
	}
	if err := c.CurriculumService.UpdateOption(ctx.Request.Context(), id, req); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 删除选项
// @Tags 测验管理
// @Security BearerAuth
// @Param id path int true "选项ID"
// @Success 200 {object} util.Response
// @Router /api/options/{id} [delete]
func (c *QuizController) DeleteOption(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	if err := c.CurriculumService.DeleteOption(ctx.Request.Context(), id); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
