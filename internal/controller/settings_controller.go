package controller

import (
	"curriculum_backend/internal/config"
	"curriculum_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// SettingsController 下发客户端需要的运行时参数，配置热更新后立即生效
type SettingsController struct {
	Current func() *config.Config
}

func NewSettingsController(current func() *config.Config) *SettingsController {
	return &SettingsController{Current: current}
}

// @Summary 拖拽排序参数
// @Tags 系统
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/settings/reorder [get]
func (c *SettingsController) ReorderSettings(ctx *gin.Context) {
	cfg := c.Current()
	util.Success(ctx, gin.H{
		"debounceMs": cfg.Reorder.DebounceMS,
	})
}
