package model

// Manager 管理者（gestor）表，对应 managers
// Name 仅用于展示，所有引用使用 ManagerID
type Manager struct {
	ManagerID string  `gorm:"type:varchar(64);primaryKey"  json:"manager_id"`
	Name      string  `gorm:"type:varchar(128);not null"   json:"name"`
	Email     *string `gorm:"type:varchar(255);uniqueIndex" json:"email,omitempty"` // 名册导入时可能为空
	BaseModel
}

func (Manager) TableName() string { return "managers" }

// Driver 司机（motorista）表，对应 drivers
type Driver struct {
	DriverID         string           `gorm:"type:varchar(64);primaryKey"               json:"driver_id"`
	Name             string           `gorm:"type:varchar(128);not null"                json:"name"`
	ManagerID        string           `gorm:"type:varchar(64);not null;index"           json:"manager_id"`
	EmploymentStatus EmploymentStatus `gorm:"type:varchar(16);not null;default:'ATIVO'" json:"employment_status"`
	EmploymentStart  *CalendarDate    `gorm:"type:date"                                 json:"employment_start,omitempty"`
	EmploymentEnd    *CalendarDate    `gorm:"type:date"                                 json:"employment_end,omitempty"`
	VacationStart    *CalendarDate    `gorm:"type:date"                                 json:"vacation_start,omitempty"`
	VacationEnd      *CalendarDate    `gorm:"type:date"                                 json:"vacation_end,omitempty"`
	BaseModel

	// 关联
	Manager *Manager `gorm:"foreignKey:ManagerID;references:ManagerID" json:"manager,omitempty"`
}

func (Driver) TableName() string { return "drivers" }

// Vacation 返回休假区间；只有起止都设置时才有效
func (d *Driver) Vacation() (DateRange, bool) {
	if d.VacationStart == nil || d.VacationEnd == nil {
		return DateRange{}, false
	}
	return DateRange{Start: *d.VacationStart, End: *d.VacationEnd}, true
}

// AvailableOn 判断司机在某日是否需要一条日记录
//   - 非在职状态 → 否
//   - 入职日期晚于 date → 否
//   - 离职日期早于 date → 否（离职当天仍需记录）
//   - date 落在休假区间内（闭区间）→ 否
func (d *Driver) AvailableOn(date CalendarDate) bool {
	if d.EmploymentStatus != EmploymentActive {
		return false
	}
	if d.EmploymentStart != nil && d.EmploymentStart.After(date) {
		return false
	}
	if d.EmploymentEnd != nil && d.EmploymentEnd.Before(date) {
		return false
	}
	if vac, ok := d.Vacation(); ok && vac.Contains(date) {
		return false
	}
	return true
}
