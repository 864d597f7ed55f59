package controller

import (
	"curriculum_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// HealthController 数据库不可用即不健康；缓存故障只降级为直接读库
type HealthController struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewHealthController(db *gorm.DB, rdb *redis.Client) *HealthController {
	return &HealthController{DB: db, Redis: rdb}
}

func (c *HealthController) cacheStatus(ctx *gin.Context) string {
	if c.Redis == nil {
		return "disabled"
	}
	if err := c.Redis.Ping(ctx.Request.Context()).Err(); err != nil {
		return "down"
	}
	return "up"
}

// @Summary 健康检查
// @Description 检查数据库与课程树缓存
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	sqlDB, err := c.DB.DB()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	if err := sqlDB.PingContext(ctx.Request.Context()); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	cache := c.cacheStatus(ctx)
	status := "ok"
	if cache == "down" {
		status = "degraded"
	}
	util.Success(ctx, gin.H{
		"status": status,
		"components": gin.H{
			"database": "up",
			"cache":    cache,
		},
	})
}
