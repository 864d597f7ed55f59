package controller

import (
	"curriculum_backend/internal/service"
	"curriculum_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CurriculumService *service.CurriculumService
}

func NewCourseController(curriculumService *service.CurriculumService) *CourseController {
	return &CourseController{CurriculumService: curriculumService}
}

// @Summary 创建课程
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param course body service.CreateCourseRequest true "课程信息"
// @Success 201 {object} util.Response
// @Router /api/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req service.CreateCourseRequest
	if !bindJSON(ctx, &req) {
		return
	}

	course, err := c.CurriculumService.CreateCourse(ctx.Request.Context(), req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// @Summary 课程列表
// @Tags 课程管理
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	courses, total, err := c.CurriculumService.ListCourses(ctx.Request.Context(), page, limit)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: courses, Total: total, Page: page, Limit: limit})
}

// @Summary 获取课程完整结构（含全部语言）
// @Tags 课程管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id} [get]
func (c *CourseController) GetCourseTree(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	course, err := c.CurriculumService.GetCourseTree(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// @Summary 获取课程本地化视图
// @Tags 课程管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Param locale query string false "ar / en，缺省按 Accept-Language"
// @Success 200 {object} util.Response{data=service.CourseView}
// @Router /api/courses/{id}/view [get]
func (c *CourseController) GetCourseView(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	view, err := c.CurriculumService.GetCourseView(ctx.Request.Context(), id, requestLocale(ctx))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 更新课程
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Param course body service.UpdateCourseRequest true "更新内容"
// @Success 200 {object} util.Response
// @Router /api/courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var req service.UpdateCourseRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.CurriculumService.UpdateCourse(ctx.Request.Context(), id, req); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 删除课程（级联删除单元、课时、题目与选项）
// @Tags 课程管理
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	if err := c.CurriculumService.DeleteCourse(ctx.Request.Context(), id); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

type TranslationsRequest struct {
	Translations []service.TitledInput `json:"translations"`
}

// @Summary 添加单元（追加到末尾）
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Param unit body TranslationsRequest true "单元标题"
// @Success 201 {object} util.Response
// @Router /api/courses/{id}/units [post]
func (c *CourseController) CreateUnit(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var req TranslationsRequest
	if !bindJSON(ctx, &req) {
		return
	}

	unit, err := c.CurriculumService.CreateUnit(ctx.Request.Context(), id, req.Translations)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, unit)
}

// @Summary 单元排序
// @Tags 课程管理
// @Accept json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Param order body ReorderRequest true "完整的单元ID顺序"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/units/order [put]
func (c *CourseController) ReorderUnits(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var req ReorderRequest
	if !bindJSON(ctx, &req) {
		return
	}
	if err := c.CurriculumService.ReorderUnits(ctx.Request.Context(), id, req.OrderedIDs); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
