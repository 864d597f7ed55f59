package util

import (
	"curriculum_backend/pkg/logger"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageResponse 分页响应结构
type PageResponse struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// LogInternalError 内部错误细节只进日志，不返回给客户端
func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err))
	Error(c, http.StatusInternalServerError, "Internal server error")
}

// RespondError 将服务层错误映射为 HTTP 响应：
// 校验失败 400，无权限 403，不存在 404，排序不变量被破坏 409
func RespondError(c *gin.Context, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, Response{
			Code:    http.StatusBadRequest,
			Message: verr.Error(),
			Data:    verr,
		})
	case errors.Is(err, ErrUnauthorized):
		Forbidden(c)
	case errors.Is(err, ErrNotFound):
		Error(c, http.StatusNotFound, "Resource not found")
	case errors.Is(err, ErrInvariantViolation):
		// 事务已回滚，出现即说明有并发或数据问题
		logger.Log.Warn("Ordering invariant violated", zap.String("path", c.FullPath()), zap.Error(err))
		Error(c, http.StatusConflict, err.Error())
	default:
		LogInternalError(c, err)
	}
}
