package controller

import (
	"curriculum_backend/internal/model"
	"curriculum_backend/internal/service"
	"curriculum_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// CurriculumController 单元与课时
type CurriculumController struct {
	CurriculumService *service.CurriculumService
}

func NewCurriculumController(curriculumService *service.CurriculumService) *CurriculumController {
	return &CurriculumController{CurriculumService: curriculumService}
}

// CreateLessonRequest lessonType 决定读取 video 还是 quiz
type CreateLessonRequest struct {
	LessonType   model.LessonType      `json:"lessonType"`
	Video        *model.VideoPayload   `json:"video"`
	Quiz         *model.QuizPayload    `json:"quiz"`
	Translations []service.TitledInput `json:"translations"`
}

// Payload 把请求体转换为课时负载变体
func (r CreateLessonRequest) Payload() (model.LessonPayload, error) {
	switch r.LessonType {
	case model.LessonTypeVideo:
		if r.Quiz != nil {
			return nil, util.NewValidationError("quiz", "video lessons do not take a quiz payload")
		}
		if r.Video == nil {
			return nil, util.NewValidationError("video", "video payload is required")
		}
		return *r.Video, nil
	case model.LessonTypeQuiz:
		if r.Video != nil {
			return nil, util.NewValidationError("video", "quiz lessons do not take a video payload")
		}
		if r.Quiz == nil {
			return model.QuizPayload{}, nil
		}
		return *r.Quiz, nil
	}
	return nil, util.NewValidationError("lessonType", "must be video or quiz")
}

// @Summary 获取单元
// @Tags 单元管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "单元ID"
// @Success 200 {object} util.Response
// @Router /api/units/{id} [get]
func (c *CurriculumController) GetUnit(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	unit, err := c.CurriculumService.GetUnit(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, unit)
}

// @Summary 更新单元标题
// @Tags 单元管理
// @Accept json
// @Security BearerAuth
// @Param id path int true "单元ID"
// @Param unit body TranslationsRequest true "单元标题"
// @Success 200 {object} util.Response
// @Router /api/units/{id} [put]
func (c *CurriculumController) UpdateUnit(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var req TranslationsRequest
	if !bindJSON(ctx, &req) {
		return
	}
	if err := c.CurriculumService.UpdateUnit(ctx.Request.Context(), id, req.Translations); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 删除单元
// @Tags 单元管理
// @Security BearerAuth
// @Param id path int true "单元ID"
// @Success 200 {object} util.Response
// @Router /api/units/{id} [delete]
func (c *CurriculumController) DeleteUnit(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	if err := c.CurriculumService.DeleteUnit(ctx.Request.Context(), id); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 添加课时
// @Tags 单元管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "单元ID"
// @Param lesson body CreateLessonRequest true "课时信息"
// @Success 201 {object} util.Response
// @Router /api/units/{id}/lessons [post]
func (c *CurriculumController) CreateLesson(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var req CreateLessonRequest
	if !bindJSON(ctx, &req) {
		return
	}
	payload, err := req.Payload()
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	lesson, err := c.CurriculumService.CreateLesson(ctx.Request.Context(), id, payload, req.Translations)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, lesson)
}

// @Summary 课时排序
// @Tags 单元管理
// @Accept json
// @Security BearerAuth
// @Param id path int true "单元ID"
// @Param order body ReorderRequest true "完整的课时ID顺序"
// @Success 200 {object} util.Response
// @Router /api/units/{id}/lessons/order [put]
func (c *CurriculumController) ReorderLessons(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var req ReorderRequest
	if !bindJSON(ctx, &req) {
		return
	}
	if err := c.CurriculumService.ReorderLessons(ctx.Request.Context(), id, req.OrderedIDs); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 获取课时
// @Tags 课时管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "课时ID"
// @Success 200 {object} util.Response
// @Router /api/lessons/{id} [get]
func (c *CurriculumController) GetLesson(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	lesson, err := c.CurriculumService.GetLesson(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

// @Summary 更新课时（类型不可变）
// @Tags 课时管理
// @Accept json
// @Security BearerAuth
// @Param id path int true "课时ID"
// @Param lesson body service.UpdateLessonRequest true "更新内容"
// @Success 200 {object} util.Response
// @Router /api/lessons/{id} [put]
func (c *CurriculumController) UpdateLesson(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var req service.UpdateLessonRequest
	if !bindJSON(ctx, &req) {
		return
	}
	if err := c.CurriculumService.UpdateLesson(ctx.Request.Context(), id, req); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 删除课时
// @Tags 课时管理
// @Security BearerAuth
// @Param id path int true "课时ID"
// @Success 200 {object} util.Response
// @Router /api/lessons/{id} [delete]
func (c *CurriculumController) DeleteLesson(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	if err := c.CurriculumService.DeleteLesson(ctx.Request.Context(), id); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
