package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Field 日记录字段名（API 与筛选使用的列名）
type Field string

const (
	FieldGeneralStatus                Field = "status"
	FieldGeneralJustification         Field = "status_justification"
	FieldTripStatus                   Field = "trip_status"
	FieldTripJustification            Field = "trip_justification"
	FieldOvertime                     Field = "overtime"
	FieldOvertimeJustification        Field = "overtime_justification"
	FieldPlates                       Field = "plates"
	FieldConsecutiveDays              Field = "consecutive_days"
	FieldConsecutiveDaysJustification Field = "consecutive_days_justification"

	// 只读列，仅用于筛选
	FieldManagerID  Field = "manager_id"
	FieldDriverName Field = "driver_name"
)

// EditableFields 可编辑字段
var EditableFields = []Field{
	FieldGeneralStatus,
	FieldGeneralJustification,
	FieldTripStatus,
	FieldTripJustification,
	FieldOvertime,
	FieldOvertimeJustification,
	FieldPlates,
	FieldConsecutiveDays,
	FieldConsecutiveDaysJustification,
}

// FilterableFields 可筛选字段
var FilterableFields = append(append([]Field{}, EditableFields...), FieldManagerID, FieldDriverName)

func (f Field) Editable() bool {
	for _, e := range EditableFields {
		if f == e {
			return true
		}
	}
	return false
}

func (f Field) Filterable() bool {
	for _, e := range FilterableFields {
		if f == e {
			return true
		}
	}
	return false
}

var ErrUnknownField = errors.New("未知的字段")

// FieldEdit 对单个字段的一次修改（封闭的变体类型，每个可编辑字段一个实现）
type FieldEdit interface {
	Field() Field
	Apply(r *DailyRecord)
	isFieldEdit()
}

type SetGeneralStatus struct{ Value GeneralStatus }
type SetGeneralJustification struct{ Value string }
type SetTripStatus struct{ Value TripStatus }
type SetTripJustification struct{ Value string }
type SetOvertime struct{ Value OvertimeStatus }
type SetOvertimeJustification struct{ Value string }
type SetPlates struct{ Value string }
type SetConsecutiveDays struct{ Value int }
type SetConsecutiveDaysJustification struct{ Value string }

func (SetGeneralStatus) Field() Field                { return FieldGeneralStatus }
func (SetGeneralJustification) Field() Field         { return FieldGeneralJustification }
func (SetTripStatus) Field() Field                   { return FieldTripStatus }
func (SetTripJustification) Field() Field            { return FieldTripJustification }
func (SetOvertime) Field() Field                     { return FieldOvertime }
func (SetOvertimeJustification) Field() Field        { return FieldOvertimeJustification }
func (SetPlates) Field() Field                       { return FieldPlates }
func (SetConsecutiveDays) Field() Field              { return FieldConsecutiveDays }
func (SetConsecutiveDaysJustification) Field() Field { return FieldConsecutiveDaysJustification }

func (e SetGeneralStatus) Apply(r *DailyRecord)         { r.GeneralStatus = e.Value }
func (e SetGeneralJustification) Apply(r *DailyRecord)  { r.GeneralJustification = e.Value }
func (e SetTripStatus) Apply(r *DailyRecord)            { r.TripStatus = e.Value }
func (e SetTripJustification) Apply(r *DailyRecord)     { r.TripJustification = e.Value }
func (e SetOvertime) Apply(r *DailyRecord)              { r.Overtime = e.Value }
func (e SetOvertimeJustification) Apply(r *DailyRecord) { r.OvertimeJustification = e.Value }
func (e SetPlates) Apply(r *DailyRecord)                { r.Plates = e.Value }
func (e SetConsecutiveDays) Apply(r *DailyRecord)       { r.ConsecutiveDays = e.Value }
func (e SetConsecutiveDaysJustification) Apply(r *DailyRecord) {
	r.ConsecutiveDaysJustification = e.Value
}

func (SetGeneralStatus) isFieldEdit()                {}
func (SetGeneralJustification) isFieldEdit()         {}
func (SetTripStatus) isFieldEdit()                   {}
func (SetTripJustification) isFieldEdit()            {}
func (SetOvertime) isFieldEdit()                     {}
func (SetOvertimeJustification) isFieldEdit()        {}
func (SetPlates) isFieldEdit()                       {}
func (SetConsecutiveDays) isFieldEdit()              {}
func (SetConsecutiveDaysJustification) isFieldEdit() {}

// ParseFieldEdit 由 {field, value} 线上格式构造字段修改，并校验取值
func ParseFieldEdit(field Field, raw string) (FieldEdit, error) {
	switch field {
	case FieldGeneralStatus:
		v, err := ParseGeneralStatus(raw)
		if err != nil {
			return nil, err
		}
		return SetGeneralStatus{Value: v}, nil
	case FieldTripStatus:
		v, err := ParseTripStatus(raw)
		if err != nil {
			return nil, err
		}
		return SetTripStatus{Value: v}, nil
	case FieldOvertime:
		v, err := ParseOvertimeStatus(raw)
		if err != nil {
			return nil, err
		}
		return SetOvertime{Value: v}, nil
	case FieldConsecutiveDays:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: 无效的连续工作天数 %q", ErrInvalidValue, raw)
		}
		return SetConsecutiveDays{Value: n}, nil
	case FieldGeneralJustification:
		return SetGeneralJustification{Value: raw}, nil
	case FieldTripJustification:
		return SetTripJustification{Value: raw}, nil
	case FieldOvertimeJustification:
		return SetOvertimeJustification{Value: raw}, nil
	case FieldConsecutiveDaysJustification:
		return SetConsecutiveDaysJustification{Value: raw}, nil
	case FieldPlates:
		return SetPlates{Value: strings.TrimSpace(raw)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
}

// FieldEditValue 取字段修改的线上文本值
func FieldEditValue(e FieldEdit) string {
	var r DailyRecord
	e.Apply(&r)
	return r.FieldValue(e.Field())
}
