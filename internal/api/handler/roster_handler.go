package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"controle-motoristas/internal/service"
	"controle-motoristas/pkg/response"
)

// RosterHandler 名册导入 HTTP 处理器
type RosterHandler struct {
	importSvc service.RosterImportService
}

// NewRosterHandler 创建 RosterHandler
func NewRosterHandler(importSvc service.RosterImportService) *RosterHandler {
	return &RosterHandler{importSvc: importSvc}
}

// ImportRoster 上传 Excel 名册（管理员）
// POST /api/v1/roster/import  multipart/form-data, field="file"
func (h *RosterHandler) ImportRoster(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, 23001, "请上传名册 Excel 文件")
		return
	}
	defer file.Close()

	rows, err := h.importSvc.ParseRosterFile(file)
	if err != nil {
		h.handleRosterError(c, err)
		return
	}

	resp, err := h.importSvc.ImportRoster(c.Request.Context(), rows)
	if err != nil {
		h.handleRosterError(c, err)
		return
	}
	response.OK(c, resp)
}

func (h *RosterHandler) handleRosterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrImportNoData),
		errors.Is(err, service.ErrImportBadHeader),
		errors.Is(err, service.ErrImportTooManyRows):
		response.BadRequest(c, 23002, err.Error())
	case errors.Is(err, service.ErrImportParse):
		response.BadRequest(c, 23003, "无法解析名册文件")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/roster_handler.go
