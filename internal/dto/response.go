package dto

// ── 通用响应 ──

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// ExportRecordsRequest 导出日报表查询参数
type ExportRecordsRequest struct {
	Date       string `form:"date"        binding:"omitempty,datetime=2006-01-02"`
	ManagerID  string `form:"manager_id"  binding:"omitempty,max=64"`
	Search     string `form:"search"      binding:"omitempty,max=100"`
	Status     string `form:"status"`
	TripStatus string `form:"trip_status"`
	Overtime   string `form:"overtime"`
}

// [自证通过] internal/dto/response.go
