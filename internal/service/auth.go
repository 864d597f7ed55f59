package service

import (
	"context"
	"curriculum_backend/internal/model"
	"curriculum_backend/internal/util"
)

// Authorizer 鉴权协作方：当前讲师身份与管理员标记
type Authorizer interface {
	CurrentInstructorID(ctx context.Context) (uint, bool)
	IsAdmin(ctx context.Context) bool
}

// ClaimsAuthorizer 从 JWT 中间件写入 context 的 Claims 读取身份
type ClaimsAuthorizer struct{}

func (ClaimsAuthorizer) CurrentInstructorID(ctx context.Context) (uint, bool) {
	claims := util.ClaimsFromContext(ctx)
	if claims == nil || claims.UserID == 0 {
		return 0, false
	}
	if claims.Role != model.Instructor && claims.Role != model.Admin {
		return 0, false
	}
	return claims.UserID, true
}

func (ClaimsAuthorizer) IsAdmin(ctx context.Context) bool {
	claims := util.ClaimsFromContext(ctx)
	return claims != nil && claims.Role == model.Admin
}

// requireCaller 未登录或非讲师/管理员直接拒绝
func requireCaller(ctx context.Context, auth Authorizer) (uint, error) {
	if auth.IsAdmin(ctx) {
		id, _ := auth.CurrentInstructorID(ctx)
		return id, nil
	}
	id, ok := auth.CurrentInstructorID(ctx)
	if !ok {
		return 0, util.ErrUnauthorized
	}
	return id, nil
}

// canEdit 课程所有者或管理员
func canEdit(ctx context.Context, auth Authorizer, course *model.Course) error {
	if auth.IsAdmin(ctx) {
		return nil
	}
	id, ok := auth.CurrentInstructorID(ctx)
	if !ok || id != course.InstructorID {
		return util.ErrUnauthorized
	}
	return nil
}
