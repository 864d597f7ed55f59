package controller

import (
	"context"
	"curriculum_backend/internal/service"
	"curriculum_backend/internal/util"
	"io"

	"github.com/gin-gonic/gin"
)

type UploadController struct {
	StorageService *service.StorageService
}

func NewUploadController(storageService *service.StorageService) *UploadController {
	return &UploadController{StorageService: storageService}
}

type uploadFunc func(ctx context.Context, filename string, r io.Reader, size int64) (*service.UploadResult, error)

func (c *UploadController) handle(ctx *gin.Context, upload uploadFunc) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "File is required")
		return
	}
	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	result, err := upload(ctx.Request.Context(), file.Filename, src, file.Size)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, result)
}

// @Summary 上传课时视频（返回地址与时长）
// @Tags 上传
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "视频文件"
// @Success 201 {object} util.Response{data=service.UploadResult}
// @Router /api/uploads/video [post]
func (c *UploadController) UploadVideo(ctx *gin.Context) {
	c.handle(ctx, c.StorageService.UploadVideo)
}

// @Summary 上传图片
// @Tags 上传
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "图片文件"
// @Success 201 {object} util.Response{data=service.UploadResult}
// @Router /api/uploads/image [post]
func (c *UploadController) UploadImage(ctx *gin.Context) {
	c.handle(ctx, c.StorageService.UploadImage)
}
