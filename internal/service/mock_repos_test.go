package service

import (
	"context"
	"errors"
	"sort"

	"gorm.io/gorm"

	"controle-motoristas/internal/model"
	"controle-motoristas/internal/repository"
	pkgerrors "controle-motoristas/pkg/errors"
)

var errStoreUnavailable = errors.New("store unavailable")

// ── Mock DriverRepository ──

type mockDriverRepo struct {
	drivers map[string]*model.Driver
	listErr error
	upserts int
}

func newMockDriverRepo() *mockDriverRepo {
	return &mockDriverRepo{drivers: make(map[string]*model.Driver)}
}

func (m *mockDriverRepo) ListActive(_ context.Context, scope model.Scope) ([]model.Driver, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []model.Driver
	for _, d := range m.drivers {
		if d.EmploymentStatus == model.EmploymentActive && scope.Includes(d.ManagerID) {
			result = append(result, *d)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockDriverRepo) GetByID(_ context.Context, id string) (*model.Driver, error) {
	if d, ok := m.drivers[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDriverRepo) Create(_ context.Context, driver *model.Driver) error {
	m.drivers[driver.DriverID] = driver
	return nil
}

func (m *mockDriverRepo) Upsert(_ context.Context, driver *model.Driver) error {
	m.upserts++
	m.drivers[driver.DriverID] = driver
	return nil
}

// ── Mock ManagerRepository ──

type mockManagerRepo struct {
	managers map[string]*model.Manager
}

func newMockManagerRepo() *mockManagerRepo {
	return &mockManagerRepo{managers: make(map[string]*model.Manager)}
}

func (m *mockManagerRepo) GetByID(_ context.Context, id string) (*model.Manager, error) {
	if mg, ok := m.managers[id]; ok {
		return mg, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockManagerRepo) List(_ context.Context) ([]model.Manager, error) {
	var result []model.Manager
	for _, mg := range m.managers {
		result = append(result, *mg)
	}
	return result, nil
}

func (m *mockManagerRepo) Create(_ context.Context, manager *model.Manager) error {
	m.managers[manager.ManagerID] = manager
	return nil
}

// ── Mock DailyRecordRepository ──
// 与 gorm 实现相同的写入语义：Version==0 插入（已存在则忽略），Version>0 按版本更新

type mockDailyRecordRepo struct {
	records map[string]model.DailyRecord

	batchCalls int
	batchSizes []int
	// beforeBatch 模拟另一会话在本次批量写入之前抢先写入
	beforeBatch func(records map[string]model.DailyRecord)
	queryErr   error
	batchErr   error
	getErr     error
}

func newMockDailyRecordRepo() *mockDailyRecordRepo {
	return &mockDailyRecordRepo{records: make(map[string]model.DailyRecord)}
}

// seed 直接写入一条已持久化的记录
func (m *mockDailyRecordRepo) seed(r model.DailyRecord) {
	if r.Version == 0 {
		r.Version = 1
	}
	m.records[r.ID] = r
}

func (m *mockDailyRecordRepo) QueryByDateAndScope(ctx context.Context, date model.CalendarDate, scope model.Scope) ([]model.DailyRecord, error) {
	return m.QueryByDateRangeAndScope(ctx, date, date, scope)
}

func (m *mockDailyRecordRepo) QueryByDateRangeAndScope(_ context.Context, start, end model.CalendarDate, scope model.Scope) ([]model.DailyRecord, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	rng := model.DateRange{Start: start, End: end}
	var result []model.DailyRecord
	for _, r := range m.records {
		if rng.Contains(r.Date) && scope.Includes(r.ManagerID) {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].DriverName < result[j].DriverName
	})
	return result, nil
}

func (m *mockDailyRecordRepo) GetByID(_ context.Context, id string) (*model.DailyRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if r, ok := m.records[id]; ok {
		return &r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDailyRecordRepo) GetByIDs(_ context.Context, ids []string) ([]model.DailyRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var result []model.DailyRecord
	for _, id := range ids {
		if r, ok := m.records[id]; ok {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockDailyRecordRepo) Put(_ context.Context, record *model.DailyRecord) error {
	if old, ok := m.records[record.ID]; ok {
		record.Version = old.Version + 1
	} else {
		record.Version = 1
	}
	m.records[record.ID] = *record
	return nil
}

func (m *mockDailyRecordRepo) BatchWrite(_ context.Context, records []model.DailyRecord) error {
	m.batchCalls++
	m.batchSizes = append(m.batchSizes, len(records))
	if m.beforeBatch != nil {
		m.beforeBatch(m.records)
		m.beforeBatch = nil
	}
	if m.batchErr != nil {
		return m.batchErr
	}

	// 先在副本上执行，全部成功再提交，模拟事务
	staged := make(map[string]model.DailyRecord, len(m.records))
	for k, v := range m.records {
		staged[k] = v
	}
	for _, r := range records {
		if r.Version == 0 {
			if _, exists := staged[r.ID]; exists {
				continue
			}
			r.Version = 1
			staged[r.ID] = r
			continue
		}
		cur, ok := staged[r.ID]
		if !ok || cur.Version != r.Version {
			return pkgerrors.ErrStaleWrite
		}
		r.Version++
		staged[r.ID] = r
	}
	m.records = staged
	return nil
}

func (m *mockDailyRecordRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.records, id)
	return nil
}

// ── 测试辅助 ──

type mockRepos struct {
	drivers  *mockDriverRepo
	managers *mockManagerRepo
	records  *mockDailyRecordRepo
}

func newMockRepository() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		drivers:  newMockDriverRepo(),
		managers: newMockManagerRepo(),
		records:  newMockDailyRecordRepo(),
	}
	return &repository.Repository{
		Driver:      m.drivers,
		Manager:     m.managers,
		DailyRecord: m.records,
	}, m
}

func activeDriver(id, name, managerID string) *model.Driver {
	return &model.Driver{
		DriverID:         id,
		Name:             name,
		ManagerID:        managerID,
		EmploymentStatus: model.EmploymentActive,
	}
}

func datePtr(d model.CalendarDate) *model.CalendarDate {
	return &d
}
