// Package rules 日记录的"说明必填"判定表
//
// 这里没有持久化的状态机："状态"就是当前的 (总体状态, 行程状态, 加班授权, 连续工作天数) 组合，
// 每个说明字段独立判定：需要说明时可见且必填，不需要时隐藏，并且在触发条件消失的同一次修改中清空。
package rules

import (
	"errors"
	"strings"

	"controle-motoristas/internal/model"
)

// ConsecutiveDaysThreshold 连续工作天数达到此值需要说明
const ConsecutiveDaysThreshold = 7

var ErrJustificationNotAllowed = errors.New("当前状态不需要说明，不能填写")

// GeneralJustificationRequired 总体状态不属于 {JORNADA, FOLGA EM CASA, FOLGA NA ESTRADA} 时需要说明
func GeneralJustificationRequired(s model.GeneralStatus) bool {
	switch s {
	case model.GeneralStatusOnDuty, model.GeneralStatusRestAtHome, model.GeneralStatusRestOnRoad:
		return false
	default:
		return true
	}
}

// TripJustificationRequired 仅装货/卸货需要说明
func TripJustificationRequired(s model.TripStatus) bool {
	return s == model.TripStatusLoading || s == model.TripStatusUnloading
}

// OvertimeJustificationRequired 已授权加班需要说明
func OvertimeJustificationRequired(s model.OvertimeStatus) bool {
	return s == model.OvertimeAuthorized
}

// ConsecutiveDaysJustificationRequired 连续工作天数 ≥ 7 需要说明
func ConsecutiveDaysJustificationRequired(days int) bool {
	return days >= ConsecutiveDaysThreshold
}

// Requirements 四个说明字段的判定结果
type Requirements struct {
	General         bool `json:"status_justification"`
	Trip            bool `json:"trip_justification"`
	Overtime        bool `json:"overtime_justification"`
	ConsecutiveDays bool `json:"consecutive_days_justification"`
}

// Evaluate 对记录当前取值求判定
func Evaluate(r *model.DailyRecord) Requirements {
	return Requirements{
		General:         GeneralJustificationRequired(r.GeneralStatus),
		Trip:            TripJustificationRequired(r.TripStatus),
		Overtime:        OvertimeJustificationRequired(r.Overtime),
		ConsecutiveDays: ConsecutiveDaysJustificationRequired(r.ConsecutiveDays),
	}
}

// Required 某说明字段当前是否需要（也即是否可见）
func (q Requirements) Required(f model.Field) bool {
	switch f {
	case model.FieldGeneralJustification:
		return q.General
	case model.FieldTripJustification:
		return q.Trip
	case model.FieldOvertimeJustification:
		return q.Overtime
	case model.FieldConsecutiveDaysJustification:
		return q.ConsecutiveDays
	default:
		return false
	}
}

// pairs 说明字段 → 对应的清空操作
var pairs = []struct {
	field model.Field
	text  func(r *model.DailyRecord) string
	clear model.FieldEdit
}{
	{model.FieldGeneralJustification, func(r *model.DailyRecord) string { return r.GeneralJustification }, model.SetGeneralJustification{}},
	{model.FieldTripJustification, func(r *model.DailyRecord) string { return r.TripJustification }, model.SetTripJustification{}},
	{model.FieldOvertimeJustification, func(r *model.DailyRecord) string { return r.OvertimeJustification }, model.SetOvertimeJustification{}},
	{model.FieldConsecutiveDaysJustification, func(r *model.DailyRecord) string { return r.ConsecutiveDaysJustification }, model.SetConsecutiveDaysJustification{}},
}

// IsJustification 是否为说明字段
func IsJustification(f model.Field) bool {
	for _, p := range pairs {
		if p.field == f {
			return true
		}
	}
	return false
}

// Apply 将 edit 应用到 r，并在同一次修改中清空不再需要的说明
// 返回实际执行的全部字段修改（edit 本身在前，随后是清空操作），调用方应整体缓存
func Apply(r *model.DailyRecord, edit model.FieldEdit) ([]model.FieldEdit, error) {
	if IsJustification(edit.Field()) && model.FieldEditValue(edit) != "" {
		if !Evaluate(r).Required(edit.Field()) {
			return nil, ErrJustificationNotAllowed
		}
	}

	edit.Apply(r)
	applied := []model.FieldEdit{edit}

	req := Evaluate(r)
	for _, p := range pairs {
		if p.field == edit.Field() || req.Required(p.field) {
			continue
		}
		if p.text(r) != "" {
			p.clear.Apply(r)
			applied = append(applied, p.clear)
		}
	}
	return applied, nil
}

// Validate 返回当前需要但为空的说明字段（保存前的必填校验）
func Validate(r *model.DailyRecord) []model.Field {
	req := Evaluate(r)
	var missing []model.Field
	for _, p := range pairs {
		if req.Required(p.field) && strings.TrimSpace(p.text(r)) == "" {
			missing = append(missing, p.field)
		}
	}
	return missing
}
