package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"controle-motoristas/internal/dto"
	"controle-motoristas/internal/model"
)

func setupTestRecordService(t *testing.T) (*recordService, *mockRepos) {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("加载时区失败: %v", err)
	}
	repo, mocks := newMockRepository()
	svc := &recordService{
		repo:   repo,
		roster: NewRosterSyncService(repo, zap.NewNop()),
		loc:    loc,
		now:    fixedClock,
		logger: zap.NewNop(),
	}
	return svc, mocks
}

func TestRecordService_Reconcile_DefaultsToTodayInZone(t *testing.T) {
	svc, mocks := setupTestRecordService(t)
	// 2024-01-11 02:00 UTC 在 São Paulo 仍是 2024-01-10
	svc.now = func() time.Time { return time.Date(2024, 1, 11, 2, 0, 0, 0, time.UTC) }
	_ = mocks.drivers.Create(context.Background(), activeDriver("drv-a", "A", "mgr-1"))

	resp, err := svc.Reconcile(context.Background(), model.AllScope(), &dto.ReconcileRequest{})
	if err != nil {
		t.Fatalf("Reconcile 失败: %v", err)
	}
	if resp.Total != 1 || resp.List[0].Date != "2024-01-10" {
		t.Errorf("期望 2024-01-10 的 1 条记录，实际 %+v", resp)
	}
}

func TestRecordService_Reconcile_InvalidDate(t *testing.T) {
	svc, _ := setupTestRecordService(t)

	_, err := svc.Reconcile(context.Background(), model.AllScope(), &dto.ReconcileRequest{Date: "2024-13-40"})
	if !errors.Is(err, ErrInvalidDate) {
		t.Errorf("期望 ErrInvalidDate，实际: %v", err)
	}
}

func TestRecordService_List_FiltersWithoutReconciling(t *testing.T) {
	svc, mocks := setupTestRecordService(t)
	ctx := context.Background()
	day := model.NewCalendarDate(2024, 1, 11)

	ana := model.NewDefaultDailyRecord(activeDriver("drv-a", "Ana Silva", "mgr-1"), day, 1)
	ana.Plates = "ABC1D23"
	bruno := model.NewDefaultDailyRecord(activeDriver("drv-b", "Bruno", "mgr-1"), day, 1)
	bruno.GeneralStatus = model.GeneralStatusAbsence
	other := model.NewDefaultDailyRecord(activeDriver("drv-c", "Carla Silva", "mgr-2"), day, 1)
	for _, r := range []model.DailyRecord{ana, bruno, other} {
		mocks.records.seed(r)
	}
	_ = mocks.drivers.Create(ctx, activeDriver("drv-d", "Diego", "mgr-1"))

	resp, err := svc.List(ctx, model.ManagerScope("mgr-1"), &dto.ListRecordsRequest{Date: "2024-01-11", Search: "silva", Status: "JORNADA"})
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if resp.Total != 1 || resp.List[0].DriverName != "Ana Silva" {
		t.Errorf("期望只返回 Ana Silva，实际 %+v", resp.List)
	}
	if mocks.records.batchCalls != 0 {
		t.Error("List 不应触发对账写入")
	}

	resp, _ = svc.List(ctx, model.ManagerScope("mgr-1"), &dto.ListRecordsRequest{Date: "2024-01-11", Status: "FALTA"})
	if resp.Total != 1 || !resp.List[0].Requirements.StatusJustification {
		t.Errorf("FALTA 应要求状态说明，实际 %+v", resp.List)
	}
}

func TestRecordService_List_DateRange(t *testing.T) {
	svc, mocks := setupTestRecordService(t)
	d := activeDriver("drv-a", "Ana", "mgr-1")
	for i := 0; i < 5; i++ {
		mocks.records.seed(model.NewDefaultDailyRecord(d, model.NewCalendarDate(2024, 1, 8+i), i+1))
	}

	resp, err := svc.List(context.Background(), model.AllScope(), &dto.ListRecordsRequest{StartDate: "2024-01-09", EndDate: "2024-01-11"})
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if resp.Total != 3 {
		t.Errorf("闭区间应包含 3 天，实际 %d", resp.Total)
	}

	resp, _ = svc.List(context.Background(), model.AllScope(), &dto.ListRecordsRequest{StartDate: "2024-01-08", EndDate: "2024-01-12", ConsecutiveDays: "4"})
	if resp.Total != 1 || resp.List[0].Date != "2024-01-11" {
		t.Errorf("连续天数筛选错误: %+v", resp.List)
	}
}

func TestRecordService_List_InvalidRange(t *testing.T) {
	svc, _ := setupTestRecordService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  dto.ListRecordsRequest
	}{
		{"只给开始日期", dto.ListRecordsRequest{StartDate: "2024-01-01"}},
		{"开始晚于结束", dto.ListRecordsRequest{StartDate: "2024-01-10", EndDate: "2024-01-01"}},
		{"跨度过大", dto.ListRecordsRequest{StartDate: "2024-01-01", EndDate: "2024-06-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.List(ctx, model.AllScope(), &tt.req); !errors.Is(err, ErrInvalidDateRange) {
				t.Errorf("期望 ErrInvalidDateRange，实际: %v", err)
			}
		})
	}
}

func TestRecordService_List_QueryError(t *testing.T) {
	svc, mocks := setupTestRecordService(t)
	mocks.records.queryErr = errStoreUnavailable

	if _, err := svc.List(context.Background(), model.AllScope(), &dto.ListRecordsRequest{Date: "2024-01-11"}); !errors.Is(err, ErrRecordFetch) {
		t.Errorf("期望 ErrRecordFetch，实际: %v", err)
	}
}

func TestRecordService_CreateAndDelete(t *testing.T) {
	svc, mocks := setupTestRecordService(t)
	ctx := context.Background()
	_ = mocks.drivers.Create(ctx, activeDriver("drv-a", "Ana", "mgr-1"))

	resp, err := svc.Create(ctx, model.AllScope(), &dto.CreateRecordRequest{DriverID: "drv-a", Date: "2024-01-11"}, "admin-1")
	if err != nil {
		t.Fatalf("Create 失败: %v", err)
	}
	if resp.Version != 1 || resp.LastEditedBy != "admin-1" || resp.LastEditedAt == nil {
		t.Errorf("响应错误: %+v", resp)
	}

	if err := svc.Delete(ctx, resp.ID); err != nil {
		t.Fatalf("Delete 失败: %v", err)
	}
	if err := svc.Delete(ctx, resp.ID); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("重复删除期望 ErrRecordNotFound，实际: %v", err)
	}
}

func TestRecordService_Requirements(t *testing.T) {
	svc, _ := setupTestRecordService(t)

	resp, err := svc.Requirements(&dto.RequirementsRequest{TripStatus: "DESCARREGANDO", ConsecutiveDays: 7})
	if err != nil {
		t.Fatalf("Requirements 失败: %v", err)
	}
	want := dto.RequirementsBrief{TripJustification: true, ConsecutiveDaysJustification: true}
	if resp.Requirements != want {
		t.Errorf("期望 %+v，实际 %+v", want, resp.Requirements)
	}
	if len(resp.Statuses) != len(model.GeneralStatuses) || resp.DaysThreshold != 7 {
		t.Errorf("可选值或阈值错误: %+v", resp)
	}

	if _, err := svc.Requirements(&dto.RequirementsRequest{Overtime: "TALVEZ"}); !errors.Is(err, ErrInvalidFilter) {
		t.Errorf("期望 ErrInvalidFilter，实际: %v", err)
	}
}
