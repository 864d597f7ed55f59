package controller

import (
	"curriculum_backend/internal/translation"
	"curriculum_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ReorderRequest 拖拽排序提交的完整兄弟节点顺序
type ReorderRequest struct {
	OrderedIDs []uint `json:"orderedIds"`
}

// pathID 解析路径中的 :id，失败时已写入 400 响应
func pathID(ctx *gin.Context) (uint, bool) {
	id, err := util.ParseID(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return 0, false
	}
	return id, true
}

// requestLocale ?locale 优先，其次 Accept-Language
func requestLocale(ctx *gin.Context) translation.LanguageID {
	if q := ctx.Query("locale"); q != "" {
		if l, ok := translation.ParseLocale(q); ok {
			return l
		}
	}
	return translation.FromAcceptLanguage(ctx.GetHeader("Accept-Language"))
}

func bindJSON(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		util.BadRequest(ctx, err.Error())
		return false
	}
	return true
}
