package dto

// ── 日记录模块 DTO ──

// ReconcileRequest 对账请求
// Date 为空时取 roster.timezone 时区下的今天；ManagerID 仅管理员可用于缩小范围
type ReconcileRequest struct {
	Date      string `json:"date"       binding:"omitempty,datetime=2006-01-02"`
	ManagerID string `json:"manager_id" binding:"omitempty,max=64"`
}

// CreateRecordRequest 手动新增日记录
type CreateRecordRequest struct {
	DriverID string `json:"driver_id" binding:"required,max=64"`
	Date     string `json:"date"      binding:"omitempty,datetime=2006-01-02"`
}

// ListRecordsRequest 日记录列表查询参数
// 指定 date 时查询单日；否则使用 start_date..end_date（闭区间）；都为空时取今天
type ListRecordsRequest struct {
	Date            string `form:"date"             binding:"omitempty,datetime=2006-01-02"`
	StartDate       string `form:"start_date"       binding:"omitempty,datetime=2006-01-02"`
	EndDate         string `form:"end_date"         binding:"omitempty,datetime=2006-01-02"`
	ManagerID       string `form:"manager_id"       binding:"omitempty,max=64"`
	Search          string `form:"search"           binding:"omitempty,max=100"`
	Status          string `form:"status"`
	TripStatus      string `form:"trip_status"`
	Overtime        string `form:"overtime"`
	Plates          string `form:"plates"`
	ConsecutiveDays string `form:"consecutive_days" binding:"omitempty,numeric"`
}

// ── 响应 ──

// RecordResponse 日记录响应（附带说明字段的必填判定）
type RecordResponse struct {
	ID                           string            `json:"id"`
	DriverID                     string            `json:"driver_id"`
	DriverName                   string            `json:"driver_name"`
	Date                         string            `json:"date"`
	ManagerID                    string            `json:"manager_id"`
	Plates                       string            `json:"plates"`
	Status                       string            `json:"status"`
	StatusJustification          string            `json:"status_justification"`
	TripStatus                   string            `json:"trip_status"`
	TripJustification            string            `json:"trip_justification"`
	Overtime                     string            `json:"overtime"`
	OvertimeJustification        string            `json:"overtime_justification"`
	ConsecutiveDays              int               `json:"consecutive_days"`
	ConsecutiveDaysJustification string            `json:"consecutive_days_justification"`
	Requirements                 RequirementsBrief `json:"requirements"`
	LastEditedBy                 string            `json:"last_edited_by,omitempty"`
	LastEditedAt                 *string           `json:"last_edited_at,omitempty"`
	Version                      int               `json:"version"`
}

// RecordListResponse 日记录列表
type RecordListResponse struct {
	List  []RecordResponse `json:"list"`
	Total int              `json:"total"`
}

// [自证通过] internal/dto/record.go
