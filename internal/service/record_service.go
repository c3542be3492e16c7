package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"controle-motoristas/internal/dto"
	"controle-motoristas/internal/filter"
	"controle-motoristas/internal/model"
	"controle-motoristas/internal/repository"
	"controle-motoristas/internal/rules"
)

// ── 日记录模块业务错误 ──

var (
	ErrInvalidDate      = errors.New("无效的日期")
	ErrInvalidDateRange = errors.New("无效的日期范围")
	ErrInvalidFilter    = errors.New("无效的筛选条件")
)

// maxListRangeDays 列表查询允许的最大跨度
const maxListRangeDays = 62

// RecordService 日记录业务接口
type RecordService interface {
	// Reconcile 对账并返回当日记录
	Reconcile(ctx context.Context, scope model.Scope, req *dto.ReconcileRequest) (*dto.RecordListResponse, error)
	// List 查询并筛选日记录（不触发对账）
	List(ctx context.Context, scope model.Scope, req *dto.ListRecordsRequest) (*dto.RecordListResponse, error)
	// Create 手动新增日记录
	Create(ctx context.Context, scope model.Scope, req *dto.CreateRecordRequest, editorID string) (*dto.RecordResponse, error)
	// Delete 删除日记录（管理员）
	Delete(ctx context.Context, id string) error
	// Requirements 说明必填判定
	Requirements(req *dto.RequirementsRequest) (*dto.RequirementsResponse, error)
}

type recordService struct {
	repo   *repository.Repository
	roster RosterSyncService
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewRecordService 创建 RecordService 实例；loc 用于计算"今天"
func NewRecordService(repo *repository.Repository, roster RosterSyncService, loc *time.Location, logger *zap.Logger) RecordService {
	return &recordService{repo: repo, roster: roster, loc: loc, now: time.Now, logger: logger}
}

func (s *recordService) Reconcile(ctx context.Context, scope model.Scope, req *dto.ReconcileRequest) (*dto.RecordListResponse, error) {
	date, err := s.dateOrToday(req.Date)
	if err != nil {
		return nil, err
	}

	records, err := s.roster.Reconcile(ctx, scope, date)
	if err != nil {
		return nil, err
	}
	return toRecordListResponse(records), nil
}

func (s *recordService) List(ctx context.Context, scope model.Scope, req *dto.ListRecordsRequest) (*dto.RecordListResponse, error) {
	rng, err := s.listRange(req)
	if err != nil {
		return nil, err
	}

	opts := filter.Options{
		DateRange:     &rng,
		Scope:         scope,
		SearchTerm:    req.Search,
		ColumnFilters: columnFilters(req.Status, req.TripStatus, req.Overtime, req.Plates, req.ConsecutiveDays),
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}

	records, err := s.repo.DailyRecord.QueryByDateRangeAndScope(ctx, rng.Start, rng.End, scope)
	if err != nil {
		s.logger.Error("查询日记录失败", zap.String("scope", scope.String()), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrRecordFetch, err)
	}

	return toRecordListResponse(filter.Filter(records, opts)), nil
}

func (s *recordService) Create(ctx context.Context, scope model.Scope, req *dto.CreateRecordRequest, editorID string) (*dto.RecordResponse, error) {
	date, err := s.dateOrToday(req.Date)
	if err != nil {
		return nil, err
	}

	rec, err := s.roster.AddRecord(ctx, scope, req.DriverID, date, editorID)
	if err != nil {
		return nil, err
	}
	resp := toRecordResponse(rec)
	return &resp, nil
}

func (s *recordService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DailyRecord.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecordNotFound
		}
		s.logger.Error("删除日记录失败", zap.String("record_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("删除日记录", zap.String("record_id", id))
	return nil
}

func (s *recordService) Requirements(req *dto.RequirementsRequest) (*dto.RequirementsResponse, error) {
	r := model.DailyRecord{
		GeneralStatus:   model.GeneralStatusOnDuty,
		TripStatus:      model.TripStatusTraveling,
		Overtime:        model.OvertimeNotAuthorized,
		ConsecutiveDays: req.ConsecutiveDays,
	}
	if req.Status != "" {
		v, err := model.ParseGeneralStatus(req.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
		}
		r.GeneralStatus = v
	}
	if req.TripStatus != "" {
		v, err := model.ParseTripStatus(req.TripStatus)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
		}
		r.TripStatus = v
	}
	if req.Overtime != "" {
		v, err := model.ParseOvertimeStatus(req.Overtime)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
		}
		r.Overtime = v
	}

	resp := &dto.RequirementsResponse{
		Requirements:  toRequirementsBrief(rules.Evaluate(&r)),
		DaysThreshold: rules.ConsecutiveDaysThreshold,
	}
	for _, v := range model.GeneralStatuses {
		resp.Statuses = append(resp.Statuses, string(v))
	}
	for _, v := range model.TripStatuses {
		resp.TripStatuses = append(resp.TripStatuses, string(v))
	}
	for _, v := range model.OvertimeStatuses {
		resp.OvertimeStatuses = append(resp.OvertimeStatuses, string(v))
	}
	return resp, nil
}

// ── 内部方法 ──

// dateOrToday 解析日期；为空时取配置时区下的今天
func (s *recordService) dateOrToday(raw string) (model.CalendarDate, error) {
	return parseDateOrToday(raw, s.now, s.loc)
}

func (s *recordService) listRange(req *dto.ListRecordsRequest) (model.DateRange, error) {
	if req.Date != "" || (req.StartDate == "" && req.EndDate == "") {
		d, err := s.dateOrToday(req.Date)
		if err != nil {
			return model.DateRange{}, err
		}
		return model.DateRange{Start: d, End: d}, nil
	}

	if req.StartDate == "" || req.EndDate == "" {
		return model.DateRange{}, fmt.Errorf("%w: start_date 与 end_date 需同时提供", ErrInvalidDateRange)
	}
	start, err := model.ParseCalendarDate(req.StartDate)
	if err != nil {
		return model.DateRange{}, fmt.Errorf("%w: %w", ErrInvalidDate, err)
	}
	end, err := model.ParseCalendarDate(req.EndDate)
	if err != nil {
		return model.DateRange{}, fmt.Errorf("%w: %w", ErrInvalidDate, err)
	}
	rng := model.DateRange{Start: start, End: end}
	if !rng.Valid() {
		return model.DateRange{}, fmt.Errorf("%w: 开始日期晚于结束日期", ErrInvalidDateRange)
	}
	if end.Time().Sub(start.Time()) > maxListRangeDays*24*time.Hour {
		return model.DateRange{}, fmt.Errorf("%w: 跨度不能超过 %d 天", ErrInvalidDateRange, maxListRangeDays)
	}
	return rng, nil
}

func parseDateOrToday(raw string, now func() time.Time, loc *time.Location) (model.CalendarDate, error) {
	if raw == "" {
		return model.CalendarDateOf(now().In(loc)), nil
	}
	d, err := model.ParseCalendarDate(raw)
	if err != nil {
		return model.CalendarDate{}, fmt.Errorf("%w: %w", ErrInvalidDate, err)
	}
	return d, nil
}

// columnFilters 把查询参数转成列筛选；空值表示不约束
func columnFilters(status, tripStatus, overtime, plates, consecutiveDays string) map[model.Field]string {
	return map[model.Field]string{
		model.FieldGeneralStatus:   status,
		model.FieldTripStatus:      tripStatus,
		model.FieldOvertime:        overtime,
		model.FieldPlates:          plates,
		model.FieldConsecutiveDays: consecutiveDays,
	}
}

// [自证通过] internal/service/record_service.go
