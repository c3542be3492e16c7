package handler

import (
	"github.com/gin-gonic/gin"

	"controle-motoristas/internal/api/middleware"
	"controle-motoristas/internal/model"
	"controle-motoristas/internal/service"
	"controle-motoristas/pkg/jwt"
	"controle-motoristas/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(middleware.CtxUserID)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	v, exists := c.Get(middleware.CtxRole)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetScope 由身份推导数据范围：
//   - admin：全部；requestedManager 非空时缩小到该管理者
//   - manager：只能是自己（requestedManager 为他人时 403）
func MustGetScope(c *gin.Context, requestedManager string) (model.Scope, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return model.Scope{}, false
	}
	role, ok := MustGetRole(c)
	if !ok {
		return model.Scope{}, false
	}

	switch role {
	case jwt.RoleAdmin:
		if requestedManager != "" {
			return model.ManagerScope(requestedManager), true
		}
		return model.AllScope(), true
	case jwt.RoleManager:
		if requestedManager != "" && requestedManager != userID {
			response.Forbidden(c, 10003, "无权查看其他管理者的司机")
			return model.Scope{}, false
		}
		return model.ManagerScope(userID), true
	default:
		response.Forbidden(c, 10003, "无权限访问")
		return model.Scope{}, false
	}
}

// MustGetEditor 当前编辑者（编辑会话按 user_id 隔离）
func MustGetEditor(c *gin.Context) (service.Editor, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return service.Editor{}, false
	}
	scope, ok := MustGetScope(c, "")
	if !ok {
		return service.Editor{}, false
	}
	return service.Editor{UserID: userID, Scope: scope}, true
}

// [自证通过] internal/api/handler/context_helper.go
