package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// CalendarDateLayout 日历日期的文本格式（yyyy-MM-dd）
const CalendarDateLayout = "2006-01-02"

// CalendarDate 不带时区的日历日期
// 零值表示"未设置"
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// NewCalendarDate 构造日历日期，超出范围的日/月会被规范化（如 1月32日 → 2月1日）
func NewCalendarDate(year int, month time.Month, day int) CalendarDate {
	return CalendarDateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// CalendarDateOf 取时间在其自身时区下的日历日期
func CalendarDateOf(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

// ParseCalendarDate 解析 yyyy-MM-dd 文本
func ParseCalendarDate(s string) (CalendarDate, error) {
	t, err := time.Parse(CalendarDateLayout, s)
	if err != nil {
		return CalendarDate{}, fmt.Errorf("无效的日期 %q: %w", s, err)
	}
	return CalendarDateOf(t), nil
}

// IsZero 是否为零值
func (d CalendarDate) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Time 返回该日期 UTC 零点
func (d CalendarDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays 加减天数
func (d CalendarDate) AddDays(n int) CalendarDate {
	return NewCalendarDate(d.Year, d.Month, d.Day+n)
}

// Compare 比较两个日期：d<o 返回 -1，相等返回 0，d>o 返回 1
func (d CalendarDate) Compare(o CalendarDate) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d CalendarDate) Before(o CalendarDate) bool { return d.Compare(o) < 0 }
func (d CalendarDate) After(o CalendarDate) bool  { return d.Compare(o) > 0 }
func (d CalendarDate) Equal(o CalendarDate) bool  { return d.Compare(o) == 0 }

func (d CalendarDate) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalJSON 序列化为 "yyyy-MM-dd"，零值序列化为空串
func (d CalendarDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON 支持 "yyyy-MM-dd" 与空串
func (d *CalendarDate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = CalendarDate{}
		return nil
	}
	parsed, err := ParseCalendarDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ── GORM Scanner/Valuer（对应 PostgreSQL DATE 列）──

// Scan 读取 DATE 列；PostgreSQL 驱动返回 time.Time，按 UTC 取日期部分
func (d *CalendarDate) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = CalendarDate{}
		return nil
	case time.Time:
		*d = CalendarDateOf(v.UTC())
		return nil
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	default:
		return fmt.Errorf("CalendarDate.Scan: unsupported type %T", src)
	}
}

func (d *CalendarDate) scanString(s string) error {
	if len(s) > len(CalendarDateLayout) {
		s = s[:len(CalendarDateLayout)]
	}
	parsed, err := ParseCalendarDate(s)
	if err != nil {
		return fmt.Errorf("CalendarDate.Scan: %w", err)
	}
	*d = parsed
	return nil
}

// Value 写入 yyyy-MM-dd 文本
func (d CalendarDate) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// DateRange 闭区间日期范围 [Start, End]
type DateRange struct {
	Start CalendarDate `json:"start"`
	End   CalendarDate `json:"end"`
}

// Contains 两端都包含
func (r DateRange) Contains(d CalendarDate) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Valid 起始不晚于结束
func (r DateRange) Valid() bool {
	return !r.Start.IsZero() && !r.End.IsZero() && !r.End.Before(r.Start)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
